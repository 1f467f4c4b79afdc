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

// Package ltp implements the Lists-Tables-Properties layer of a PST
// file: Heap-on-Node, BTree-on-Heap, Property Context and Table
// Context, layered on top of the NDB block/subnode primitives.
//
// This package is write-only, like the rest of the PST synthesis
// stack: it never needs to re-parse a heap it built.
package ltp

import (
	"encoding/binary"

	"github.com/edbxtool/edbx/internal/diag"
	"github.com/edbxtool/edbx/internal/pst/ndb"
)

// HID identifies one heap allocation: bits 0-4 are always zero (the
// discriminator that separates an HID from a subnode NID when stored in
// an HNID slot), bits 5-15 are a 1-based allocation index within the
// owning page, bits 16-31 are the page's 0-based index.
type HID uint32

// MakeHID builds an HID from a page index and a 1-based allocation index.
func MakeHID(page uint16, allocIndex uint16) HID {
	return HID(uint32(page)<<16 | uint32(allocIndex)<<5)
}

// HNHDR signature and BTH/PC/TC client-signature bytes, per [MS-PST] §2.3.1.
const (
	hnSig        byte = 0xEC
	clientSigBTH byte = 0xB5
	clientSigPC  byte = 0xBC
	clientSigTC  byte = 0x7C
)

// heapBudget is the usable payload size of one heap page, leaving room
// for the page's own header and page map within one 8,176-byte block.
const heapBudget = 8000

type heapPage struct {
	allocs [][]byte
	size   int
}

func (p *heapPage) fits(n int) bool {
	// +2 per allocation, this one included, for its rgibAlloc page-map entry.
	return p.size+n+2*(len(p.allocs)+1) <= heapBudget
}

func (p *heapPage) add(data []byte) int {
	p.allocs = append(p.allocs, data)
	p.size += len(data)
	return len(p.allocs) // 1-based index
}

// Heap accumulates heap-on-node allocations and flushes them into PST
// blocks, one block per heap page.
type Heap struct {
	clientSig byte
	pages     []*heapPage
	root      HID
}

// NewHeap returns an empty heap tagged with the bClientSig of its
// owner (BTH, PC, or TC).
func NewHeap(clientSig byte) *Heap {
	return &Heap{clientSig: clientSig, pages: []*heapPage{{}}}
}

// Alloc stores data as one heap allocation and returns its HID,
// starting a new page when the current one is full. WritePC caps its
// values at hidValueMax and spills anything larger into a subnode;
// WriteTC allocates its variable cells as given and keeps the row
// matrix in the heap only up to rowMatrixBudget. An allocation that does
// not fit an empty page still gets a fresh page of its own, and Finish
// fails if that page exceeds one block.
func (h *Heap) Alloc(data []byte) HID {
	cur := h.pages[len(h.pages)-1]
	if !cur.fits(len(data)) {
		cur = &heapPage{}
		h.pages = append(h.pages, cur)
	}
	idx := cur.add(data)
	return MakeHID(uint16(len(h.pages)-1), uint16(idx))
}

// SetRoot records the heap's root allocation (the BTH header, for a PC
// or BTH-backed TC index).
func (h *Heap) SetRoot(hid HID) { h.root = hid }

// encodePageMap packs {cAlloc, cFree, rgibAlloc[cAlloc+1]} for one page.
func encodePageMap(allocs [][]byte) []byte {
	out := make([]byte, 4+2*(len(allocs)+1))
	binary.LittleEndian.PutUint16(out[0:2], uint16(len(allocs)))
	binary.LittleEndian.PutUint16(out[2:4], 0)
	off := 0
	for i, a := range allocs {
		binary.LittleEndian.PutUint16(out[4+2*i:], uint16(off))
		off += len(a)
	}
	binary.LittleEndian.PutUint16(out[4+2*len(allocs):], uint16(off))
	return out
}

func (h *Heap) encodePage(index int, p *heapPage) []byte {
	var header []byte
	if index == 0 {
		header = make([]byte, 8)
		binary.LittleEndian.PutUint16(header[0:2], 0) // ibHnpm patched below
		header[2] = hnSig
		header[3] = h.clientSig
		binary.LittleEndian.PutUint32(header[4:8], uint32(h.root))
	} else {
		header = make([]byte, 6)
	}

	data := make([]byte, 0, p.size)
	for _, a := range p.allocs {
		data = append(data, a...)
	}
	pageMap := encodePageMap(p.allocs)

	ibHnpm := uint16(len(header) + len(data))
	binary.LittleEndian.PutUint16(header[0:2], ibHnpm)

	out := make([]byte, 0, len(header)+len(data)+len(pageMap))
	out = append(out, header...)
	out = append(out, data...)
	out = append(out, pageMap...)
	return out
}

// Finish writes every heap page as a PST block and returns the node's
// data BID (a single BID if one page, an XBLOCK chain otherwise).
func (h *Heap) Finish(w *ndb.Writer) (ndb.BID, error) {
	if len(h.pages) == 0 || (len(h.pages) == 1 && len(h.pages[0].allocs) == 0) {
		return 0, diag.New(diag.MalformedDatabase, "heap has no allocations")
	}
	bids := make([]ndb.BID, len(h.pages))
	total := 0
	for i, p := range h.pages {
		raw := h.encodePage(i, p)
		bid, err := w.WriteBlock(raw)
		if err != nil {
			return 0, diag.Wrap(diag.PstSpaceExhausted, "writing heap page", err)
		}
		bids[i] = bid
		total += len(raw)
	}
	return w.WriteXBlockChain(bids, total)
}
