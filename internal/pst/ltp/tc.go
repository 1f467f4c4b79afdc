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

// TCColumn declares one Table Context column; the full column list is
// fixed before any row is added. Variable columns always occupy a
// 4-byte row slot holding an HNID that resolves to the cell's real
// bytes; fixed columns occupy exactly SlotSize bytes inline.
type TCColumn struct {
	Tag      mapi.Tag
	SlotSize int
	Variable bool
}

// TCRow is one table row: raw, already-encoded bytes per column tag.
// A column absent from Cells is left zero and unmarked in the row's
// existence bitmap.
type TCRow struct {
	Cells map[mapi.Tag][]byte
}

// TC is a built Table Context: the heap holding its header and
// variable cells, Root (the HID of that header, which records the row
// matrix's HNID: an HID or, for large tables, a subnode NID), and -
// when the matrix overflowed into a subnode - the SubnodeEntry the
// caller must fold into the owning node's subnode tree.
type TC struct {
	Heap    *Heap
	Root    HID
	Subnode *ndb.SubnodeEntry
}

// rowMatrixBudget bounds how large a packed row matrix may be before
// it must live in its own subnode instead of a heap allocation.
const rowMatrixBudget = 7800

// WriteTC encodes columns/rows as a Table Context. w is used only when
// the row matrix must spill into a subnode; pass the Writer that will
// eventually hold the owning node's subnode tree.
func WriteTC(w *ndb.Writer, columns []TCColumn, rows []TCRow) (*TC, error) {
	bitmapBytes := (len(columns) + 7) / 8
	offsets := make([]int, len(columns))
	off := bitmapBytes
	for i, c := range columns {
		offsets[i] = off
		off += c.SlotSize
	}
	rowSize := off

	h := NewHeap(clientSigTC)

	packed := make([]byte, 0, rowSize*len(rows))
	for _, row := range rows {
		rb := make([]byte, rowSize)
		for i, c := range columns {
			cell, ok := row.Cells[c.Tag]
			if !ok {
				continue
			}
			rb[i/8] |= 1 << uint(i%8)
			if c.Variable {
				vhid := h.Alloc(cell)
				binary.LittleEndian.PutUint32(rb[offsets[i]:offsets[i]+4], uint32(vhid))
				continue
			}
			n := c.SlotSize
			if len(cell) < n {
				n = len(cell)
			}
			copy(rb[offsets[i]:offsets[i]+n], cell[:n])
		}
		packed = append(packed, rb...)
	}

	var hnidRows uint32
	var subEntry *ndb.SubnodeEntry
	if len(packed) <= rowMatrixBudget {
		hnidRows = uint32(h.Alloc(packed))
	} else {
		bid, err := w.WriteDataTree(packed)
		if err != nil {
			return nil, err
		}
		nid := w.AllocNID(ndb.NIDTypeInternal)
		subEntry = &ndb.SubnodeEntry{NID: nid, DataBID: bid}
		hnidRows = uint32(nid)
	}

	header := make([]byte, 12+7*len(columns))
	header[0] = 0x7C // table-context magic, this writer's own convention
	header[1] = byte(len(columns))
	binary.LittleEndian.PutUint16(header[2:4], uint16(rowSize))
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(rows)))
	binary.LittleEndian.PutUint32(header[8:12], hnidRows)
	for i, c := range columns {
		base := 12 + 7*i
		binary.LittleEndian.PutUint32(header[base:base+4], uint32(c.Tag))
		binary.LittleEndian.PutUint16(header[base+4:base+6], uint16(offsets[i]))
		header[base+6] = byte(c.SlotSize)
	}
	root := h.Alloc(header)
	h.SetRoot(root)

	return &TC{Heap: h, Root: root, Subnode: subEntry}, nil
}
