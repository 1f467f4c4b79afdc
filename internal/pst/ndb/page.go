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
)

const (
	pageSize    = 512
	pageTrailer = 16
	pageBody    = pageSize - pageTrailer // 496 bytes of entries + {cEnt,cEntMax,cbEnt,cLevel}
	pageEntries = pageBody - 4           // room left for rgentries once the 4-byte footer is reserved
)

// writePage encodes one 512-byte page: rgentries (packed, cEnt*entrySize
// bytes), zero padding, the {cEnt,cEntMax,cbEnt,cLevel} footer, and the
// 16-byte PAGETRAILER ("Page header").
func (w *Writer) writePage(ptype byte, level byte, entrySize int, packed []byte, cEnt int) BID {
	bid := w.allocBID()
	body := make([]byte, pageBody)
	copy(body, packed)
	maxEntries := pageEntries / entrySize
	body[pageEntries+0] = byte(cEnt)
	body[pageEntries+1] = byte(maxEntries)
	body[pageEntries+2] = byte(entrySize)
	body[pageEntries+3] = level

	page := make([]byte, pageSize)
	copy(page, body)
	trailer := page[pageBody:]
	trailer[0] = ptype
	trailer[1] = ptype
	binary.LittleEndian.PutUint16(trailer[2:4], signature(bid, body))
	binary.LittleEndian.PutUint32(trailer[4:8], bytesx.CRC32NDB(body))
	copy(trailer[8:16], bid.Bytes())

	w.reserve(page)
	return bid
}

// btEntry is a generic (key, on-disk value) pair used to build both the
// NBT (key = NID) and BBT (key = BID).
type btEntry struct {
	key   uint64
	value []byte
}

// buildBTree packs entries (already sorted ascending by key) into leaf
// pages, then consolidates parent pages bottom-up until one root page
// remains.
func (w *Writer) buildBTree(ptype byte, entries []btEntry, entrySize int) BID {
	maxLeaf := pageEntries / entrySize
	if len(entries) == 0 {
		return w.writePage(ptype, 0, entrySize, nil, 0)
	}

	type level struct {
		bids []BID
		keys []uint64
	}
	cur := level{}
	for i := 0; i < len(entries); i += maxLeaf {
		end := i + maxLeaf
		if end > len(entries) {
			end = len(entries)
		}
		chunk := entries[i:end]
		packed := make([]byte, 0, entrySize*len(chunk))
		for _, e := range chunk {
			packed = append(packed, e.value...)
		}
		bid := w.writePage(ptype, 0, entrySize, packed, len(chunk))
		cur.bids = append(cur.bids, bid)
		cur.keys = append(cur.keys, chunk[0].key)
	}

	const intEntrySize = 16 // key(8) + child BID(8)
	maxInt := pageEntries / intEntrySize
	lvl := byte(1)
	for len(cur.bids) > 1 {
		next := level{}
		for i := 0; i < len(cur.bids); i += maxInt {
			end := i + maxInt
			if end > len(cur.bids) {
				end = len(cur.bids)
			}
			packed := make([]byte, 0, intEntrySize*(end-i))
			for j := i; j < end; j++ {
				var kb [8]byte
				binary.LittleEndian.PutUint64(kb[:], cur.keys[j])
				packed = append(packed, kb[:]...)
				packed = append(packed, cur.bids[j].Bytes()...)
			}
			bid := w.writePage(ptype, lvl, intEntrySize, packed, end-i)
			next.bids = append(next.bids, bid)
			next.keys = append(next.keys, cur.keys[i])
		}
		cur = next
		lvl++
	}
	return cur.bids[0]
}
