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

import (
	"encoding/binary"

	"github.com/edbxtool/edbx/internal/bytesx"
	"github.com/edbxtool/edbx/internal/diag"
)

const (
	maxBlockData = 8176 // 8192 - 16-byte trailer
	blockAlign   = 64
)

// signature is a cheap, file-local block/page signature: not a real
// MS-PST wSig algorithm (undocumented), but stable and verifiable by
// this writer's own trailer.
func signature(bid BID, data []byte) uint16 {
	crc := bytesx.CRC32NDB(data)
	return uint16(crc) ^ uint16(bid) ^ uint16(bid>>16)
}

func encodeBlockTrailer(rawLen int, bid BID, data []byte) []byte {
	trailer := make([]byte, 16)
	binary.LittleEndian.PutUint16(trailer[0:2], uint16(rawLen))
	binary.LittleEndian.PutUint16(trailer[2:4], signature(bid, data))
	binary.LittleEndian.PutUint32(trailer[4:8], bytesx.CRC32NDB(data))
	copy(trailer[8:16], bid.Bytes())
	return trailer
}

func ceilTo(n, multiple int) int {
	if n%multiple == 0 {
		return n
	}
	return n + (multiple - n%multiple)
}

// encodeBlock pads data to a 64-byte-aligned total size (data + padding
// + 16-byte trailer).
func encodeBlock(bid BID, data []byte) []byte {
	total := ceilTo(len(data)+16, blockAlign)
	out := make([]byte, total)
	copy(out, data)
	trailer := encodeBlockTrailer(len(data), bid, data)
	copy(out[total-16:], trailer)
	return out
}

// bbtEntry is one Block B-tree leaf entry: {bid, ib (file offset),
// cb (data size), cRef (reference count)}.
type bbtEntry struct {
	bid  BID
	ib   uint64
	cb   uint16
	cRef uint16
}

// WriteBlock allocates a new BID, encodes data as a single block (must
// be <= maxBlockData bytes), and registers it in the eventual BBT.
func (w *Writer) WriteBlock(data []byte) (BID, error) {
	if len(data) > maxBlockData {
		return 0, diag.New(diag.MalformedDatabase, "block data exceeds 8176 bytes")
	}
	bid := w.allocBID()
	encoded := encodeBlock(bid, data)
	ib := w.reserve(encoded)
	w.bbt = append(w.bbt, bbtEntry{bid: bid, ib: ib, cb: uint16(len(data)), cRef: 1})
	return bid, nil
}

// WriteDataTree writes data as a single block if it fits, or as an
// XBLOCK/XXBLOCK chain otherwise.
func (w *Writer) WriteDataTree(data []byte) (BID, error) {
	if len(data) <= maxBlockData {
		return w.WriteBlock(data)
	}
	var leaves []BID
	for off := 0; off < len(data); off += maxBlockData {
		end := off + maxBlockData
		if end > len(data) {
			end = len(data)
		}
		bid, err := w.WriteBlock(data[off:end])
		if err != nil {
			return 0, err
		}
		leaves = append(leaves, bid)
	}
	return w.writeXBlockLevel(leaves, 1, len(data))
}

const xblockHeaderLen = 8 // btype(1) cLevel(1) cEnt(2) lcbTotal(4)

// WriteXBlockChain wraps already-written leaf block BIDs in an
// XBLOCK/XXBLOCK chain, for callers (the LTP layer's heap pager) that
// must control each leaf's exact byte layout themselves rather than
// let WriteDataTree split a contiguous buffer.
func (w *Writer) WriteXBlockChain(leaves []BID, totalLen int) (BID, error) {
	if len(leaves) == 1 {
		return leaves[0], nil
	}
	return w.writeXBlockLevel(leaves, 1, totalLen)
}

func (w *Writer) writeXBlockLevel(bids []BID, level byte, totalLen int) (BID, error) {
	maxEntries := (maxBlockData - xblockHeaderLen) / 8
	if len(bids) <= maxEntries {
		return w.WriteBlock(encodeXBlock(level, totalLen, bids))
	}
	var next []BID
	for i := 0; i < len(bids); i += maxEntries {
		end := i + maxEntries
		if end > len(bids) {
			end = len(bids)
		}
		bid, err := w.WriteBlock(encodeXBlock(level, totalLen, bids[i:end]))
		if err != nil {
			return 0, err
		}
		next = append(next, bid)
	}
	return w.writeXBlockLevel(next, level+1, totalLen)
}

func encodeXBlock(level byte, totalLen int, bids []BID) []byte {
	out := make([]byte, xblockHeaderLen+8*len(bids))
	out[0] = btypeXBlock
	out[1] = level
	binary.LittleEndian.PutUint16(out[2:4], uint16(len(bids)))
	binary.LittleEndian.PutUint32(out[4:8], uint32(totalLen))
	for i, b := range bids {
		copy(out[xblockHeaderLen+8*i:], b.Bytes())
	}
	return out
}
