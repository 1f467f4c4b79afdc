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

import (
	"encoding/binary"

	"github.com/edbxtool/edbx/internal/mapi"
	"github.com/edbxtool/edbx/internal/pst/ndb"
)

// hidValueMax is the largest variable-length value stored as a heap
// allocation. Anything larger (attachment payloads, big HTML bodies)
// moves into its own subnode data-block chain, with the PC slot holding
// the subnode NID instead of an HID.
const hidValueMax = 3580

// WritePC encodes props as a Property Context: a BTH keyed by property
// ID, with an 8-byte leaf record per property - {wPropType, wPropId,
// dwValueHnid-or-inline-value}. Strings are UTF-16LE;
// booleans/longs fit the 4-byte inline slot; FILETIMEs and other
// 8-byte fixed values get a small heap allocation.
//
// Returns the heap holding the PC, its root HID, and the subnode
// entries for any value that spilled past hidValueMax - the caller must
// fold those into the owning node's subnode tree or the spilled values
// are unreachable.
func WritePC(w *ndb.Writer, props *mapi.Set) (*Heap, HID, []ndb.SubnodeEntry, error) {
	h := NewHeap(clientSigPC)
	var spill []ndb.SubnodeEntry

	tags := props.SortedTags()
	entries := make([]BTHEntry, 0, len(tags))
	for _, tag := range tags {
		v, _ := props.Get(tag)
		entry := make([]byte, 8)
		binary.LittleEndian.PutUint16(entry[0:2], tag.Type())
		binary.LittleEndian.PutUint16(entry[2:4], tag.ID())

		data := v.Bytes()
		switch {
		case !v.IsVariable():
			inline := v.Inline()
			copy(entry[4:8], inline[:4])
			if inline[4] != 0 || inline[5] != 0 || inline[6] != 0 || inline[7] != 0 {
				// 8-byte fixed values (FILETIME) don't fit the 4-byte
				// inline slot; heap-allocate the full 8 bytes instead.
				vhid := h.Alloc(inline[:])
				binary.LittleEndian.PutUint32(entry[4:8], uint32(vhid))
			}
		case len(data) <= 4:
			copy(entry[4:8], data)
		case len(data) <= hidValueMax:
			vhid := h.Alloc(data)
			binary.LittleEndian.PutUint32(entry[4:8], uint32(vhid))
		default:
			bid, err := w.WriteDataTree(data)
			if err != nil {
				return nil, 0, nil, err
			}
			nid := w.AllocNID(ndb.NIDTypeInternal)
			spill = append(spill, ndb.SubnodeEntry{NID: nid, DataBID: bid})
			binary.LittleEndian.PutUint32(entry[4:8], uint32(nid))
		}

		key := make([]byte, 2)
		binary.LittleEndian.PutUint16(key, tag.ID())
		entries = append(entries, BTHEntry{Key: key, Value: entry})
	}

	root := WriteBTH(h, 2, 8, entries)
	h.SetRoot(root)
	return h, root, spill, nil
}
