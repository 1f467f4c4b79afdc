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
	"sort"
)

// SubnodeEntry is one subnode: an internal NID local to the owning
// node, a data BID, and an optional sub-subnode-tree BID, matching the
// {NID, data BID, sub BID} triple an SLBLOCK leaf stores.
type SubnodeEntry struct {
	NID     NID
	DataBID BID
	SubBID  BID
}

const slEntryLen = 24 // nid(8) + bidData(8) + bidSub(8)
const siEntryLen = 16 // nid(8) + bid(8)
const subnodeHeaderLen = 8 // btype(1) cLevel(1) cEnt(2) padding(4)

// WriteSubnodeTree builds an SLBLOCK, or an SIBLOCK of SLBLOCKs when
// entries don't fit one block, and returns the root BID. Entries are
// written in ascending NID order regardless of the order given.
func (w *Writer) WriteSubnodeTree(entries []SubnodeEntry) (BID, error) {
	if len(entries) == 0 {
		return 0, nil
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].NID < entries[j].NID })
	maxLeaf := (maxBlockData - subnodeHeaderLen) / slEntryLen
	var leaves []BID
	var firstNID []NID
	for i := 0; i < len(entries); i += maxLeaf {
		end := i + maxLeaf
		if end > len(entries) {
			end = len(entries)
		}
		chunk := entries[i:end]
		bid, err := w.WriteBlock(encodeSLBlock(chunk))
		if err != nil {
			return 0, err
		}
		leaves = append(leaves, bid)
		firstNID = append(firstNID, chunk[0].NID)
	}
	if len(leaves) == 1 {
		return leaves[0], nil
	}
	return w.writeSIBlockLevel(firstNID, leaves)
}

func (w *Writer) writeSIBlockLevel(keys []NID, bids []BID) (BID, error) {
	maxEntries := (maxBlockData - subnodeHeaderLen) / siEntryLen
	if len(bids) <= maxEntries {
		return w.WriteBlock(encodeSIBlock(keys, bids))
	}
	var nextKeys []NID
	var nextBIDs []BID
	for i := 0; i < len(bids); i += maxEntries {
		end := i + maxEntries
		if end > len(bids) {
			end = len(bids)
		}
		bid, err := w.WriteBlock(encodeSIBlock(keys[i:end], bids[i:end]))
		if err != nil {
			return 0, err
		}
		nextKeys = append(nextKeys, keys[i])
		nextBIDs = append(nextBIDs, bid)
	}
	return w.writeSIBlockLevel(nextKeys, nextBIDs)
}

func encodeSLBlock(entries []SubnodeEntry) []byte {
	out := make([]byte, subnodeHeaderLen+slEntryLen*len(entries))
	out[0] = btypeSubnode
	out[1] = 0
	binary.LittleEndian.PutUint16(out[2:4], uint16(len(entries)))
	for i, e := range entries {
		base := subnodeHeaderLen + slEntryLen*i
		copy(out[base:], e.NID.Bytes())
		copy(out[base+8:], e.DataBID.Bytes())
		copy(out[base+16:], e.SubBID.Bytes())
	}
	return out
}

func encodeSIBlock(keys []NID, bids []BID) []byte {
	out := make([]byte, subnodeHeaderLen+siEntryLen*len(keys))
	out[0] = btypeSubnode
	out[1] = 1
	binary.LittleEndian.PutUint16(out[2:4], uint16(len(keys)))
	for i := range keys {
		base := subnodeHeaderLen + siEntryLen*i
		copy(out[base:], keys[i].Bytes())
		copy(out[base+8:], bids[i].Bytes())
	}
	return out
}
