/*
edbx - Exchange EDB extraction and PST synthesis toolkit.
Copyright © 2024 edbx contributors

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <https://www.gnu.org/licenses/>.
*/

package ltp

import "encoding/binary"

// BTHEntry is one {key, value} leaf record, pre-sorted ascending by
// Key by the caller.
type BTHEntry struct {
	Key   []byte
	Value []byte
}

// WriteBTH packs entries into one leaf array plus a BTHHEADER
// allocation and returns the header's HID (the BTH's root).
//
// Only a single leaf level is written: every entry set this toolkit
// produces (property counts per message, rows per table) comfortably
// fits one heap page, so a multi-level BTH index is never required.
func WriteBTH(h *Heap, keySize, entrySize byte, entries []BTHEntry) HID {
	leaf := make([]byte, 0, len(entries)*(int(keySize)+int(entrySize)))
	for _, e := range entries {
		leaf = append(leaf, e.Key...)
		leaf = append(leaf, e.Value...)
	}
	leafHID := h.Alloc(leaf)

	header := make([]byte, 8)
	header[0] = clientSigBTH
	header[1] = keySize
	header[2] = entrySize
	header[3] = 0 // bIdxLevels: leaf-only
	binary.LittleEndian.PutUint32(header[4:8], uint32(leafHID))
	return h.Alloc(header)
}
