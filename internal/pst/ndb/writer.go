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

package ndb

import "encoding/binary"

// nbtEntry is one Node B-tree leaf entry: {nid, bidData, bidSub, nidParent}.
type nbtEntry struct {
	nid       NID
	dataBID   BID
	subBID    BID
	parentNID NID
}

// Writer assembles a PST file's NDB layer: it owns linear block/page
// allocation, NID/BID counters, and final B-tree/AMap construction. It
// is a single append-only writer over the output file; block
// allocation is linear and non-reentrant.
type Writer struct {
	content []byte // everything after the 564-byte header, in allocation order

	nextBID     uint64
	nextPageNum uint64
	nidCounters map[byte]uint32

	nbt []nbtEntry
	bbt []bbtEntry
}

// NewWriter returns an empty Writer. BIDs start at 4; NID indexes start
// at 1 per node-type class, and AllocNID skips the well-known NIDs.
func NewWriter() *Writer {
	return &Writer{
		nextBID: 4,
		nextPageNum: 1,
		nidCounters: make(map[byte]uint32),
	}
}

func (w *Writer) allocBID() BID {
	bid := BID(w.nextBID)
	w.nextBID += 4
	return bid
}

// AllocNID returns the next NID of nodeType, monotonically increasing
// per node-type class. An index whose NID equals one of the well-known
// NIDs is skipped, so an allocated node never collides with them.
func (w *Writer) AllocNID(nodeType byte) NID {
	for {
		idx := w.nidCounters[nodeType] + 1
		w.nidCounters[nodeType] = idx
		nid := MakeNID(nodeType, idx)
		switch nid {
		case NID_MESSAGE_STORE, NID_NAME_TO_ID_MAP, NID_ROOT_FOLDER, NID_SEARCH_MANAGEMENT_QUEUE:
			continue
		}
		return nid
	}
}

// reserve appends encoded (page- or block-shaped) bytes to the content
// stream and returns its file offset (564-byte header included).
func (w *Writer) reserve(data []byte) uint64 {
	offset := uint64(HeaderSize) + uint64(len(w.content))
	w.content = append(w.content, data...)
	w.nextPageNum++
	return offset
}

// PutNode registers a node's NBT entry: dataBID points at the node's
// own Property/Table Context data (via WriteDataTree), subBID points
// at its subnode tree root (via WriteSubnodeTree, zero if none).
func (w *Writer) PutNode(nid NID, dataBID, subBID BID, parent NID) {
	w.nbt = append(w.nbt, nbtEntry{nid: nid, dataBID: dataBID, subBID: subBID, parentNID: parent})
}

// BlocksWritten returns the number of data blocks registered in the
// eventual BBT.
func (w *Writer) BlocksWritten() int { return len(w.bbt) }

// ReplaceSubnode sets nid's subnode-tree root BID after its NBT entry
// was already registered via PutNode (used once a node's subnode tree -
// e.g. a folder's Hierarchy/Contents tables - is only known after the
// node's own PC has been written).
func (w *Writer) ReplaceSubnode(nid NID, subBID BID) {
	for i := range w.nbt {
		if w.nbt[i].nid == nid {
			w.nbt[i].subBID = subBID
			return
		}
	}
}

const nbtEntrySize = 32 // nid(8) + bidData(8) + bidSub(8) + nidParent(8)
const bbtEntrySize = 24 // bref{bid(8)+ib(8)} + cb(2)+cRef(2)+padding(4)

func encodeNBTEntry(e nbtEntry) []byte {
	out := make([]byte, nbtEntrySize)
	copy(out[0:8], e.nid.Bytes())
	copy(out[8:16], e.dataBID.Bytes())
	copy(out[16:24], e.subBID.Bytes())
	copy(out[24:32], e.parentNID.Bytes())
	return out
}

func encodeBBTEntry(e bbtEntry) []byte {
	out := make([]byte, bbtEntrySize)
	copy(out[0:8], e.bid.Bytes())
	binary.LittleEndian.PutUint64(out[8:16], e.ib)
	binary.LittleEndian.PutUint16(out[16:18], e.cb)
	binary.LittleEndian.PutUint16(out[18:20], e.cRef)
	return out
}

// Build finalizes the NBT and BBT B-trees, the Allocation Map, and the
// PST header, returning the complete file bytes.
func (w *Writer) Build() []byte {
	nbtEntries := make([]btEntry, len(w.nbt))
	for i, e := range w.nbt {
		nbtEntries[i] = btEntry{key: uint64(e.nid), value: encodeNBTEntry(e)}
	}
	sortBTEntries(nbtEntries)
	nbtRoot := w.buildBTree(PtypeNBT, nbtEntries, nbtEntrySize)

	bbtEntries := make([]btEntry, len(w.bbt))
	for i, e := range w.bbt {
		bbtEntries[i] = btEntry{key: uint64(e.bid), value: encodeBBTEntry(e)}
	}
	sortBTEntries(bbtEntries)
	bbtRoot := w.buildBTree(PtypeBBT, bbtEntries, bbtEntrySize)

	amapFree := w.appendAMaps()

	fileSize := uint64(HeaderSize) + uint64(len(w.content))
	header := encodeHeader(fileSize, amapFree, nbtRoot, bbtRoot, w.nextBID, w.nextPageNum)

	out := make([]byte, 0, len(header)+len(w.content))
	out = append(out, header...)
	out = append(out, w.content...)
	return out
}

func sortBTEntries(entries []btEntry) {
	// Simple insertion sort: NBT/BBT entry counts are small relative to
	// a single mailbox export, and this keeps the writer dependency-free.
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j-1].key > entries[j].key; j-- {
			entries[j-1], entries[j] = entries[j], entries[j-1]
		}
	}
}

// appendAMaps marks every byte range allocated (the header, all
// content, and the AMap pages themselves) into one AMap page per
// 253,952-byte extent, and returns the total unallocated bytes left in
// the mapped extents for the header's cbAMapFree.
func (w *Writer) appendAMaps() uint64 {
	const extent = 253952 // 253,952 bytes per AMap page: 3968 bits * 64 bytes/bit
	const bitmapBytes = extent / 64 / 8 // 496 bytes - exactly the page body capacity

	// The AMap pages occupy file space too, and appending one can push
	// the file across an extent boundary that then needs its own AMap;
	// grow the page count until it stops changing before committing any
	// bitmap, so every bitmap marks the final layout.
	numMaps := 1
	for {
		total := uint64(HeaderSize) + uint64(len(w.content)) + uint64(numMaps)*pageSize
		need := int((total + extent - 1) / extent)
		if need <= numMaps {
			break
		}
		numMaps = need
	}

	totalAllocated := uint64(HeaderSize) + uint64(len(w.content)) + uint64(numMaps)*pageSize
	for m := 0; m < numMaps; m++ {
		bitmap := make([]byte, bitmapBytes)
		base := uint64(m) * extent
		for slot := 0; slot < extent/64; slot++ {
			if base+uint64(slot)*64 < totalAllocated {
				bitmap[slot/8] |= 1 << uint(slot%8)
			}
		}
		w.writeAMapPage(bitmap)
	}

	markedSlots := (totalAllocated + 63) / 64
	return uint64(numMaps)*extent - markedSlots*64
}

func (w *Writer) writeAMapPage(bitmap []byte) BID {
	bid := w.allocBID()
	page := make([]byte, pageSize)
	copy(page, bitmap)
	trailer := page[pageBody:]
	trailer[0] = PtypeAMap
	trailer[1] = PtypeAMap
	copy(trailer[8:16], bid.Bytes())
	w.reserve(page)
	return bid
}
