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

// Package ndb implements the Node Database layer of a PST file: blocks
// with CRC-32 trailers, NBT/BBT B-trees, the Allocation Map,
// XBLOCK/SLBLOCK data and subnode trees, and the 564-byte PST header.
// Everything here is write-only - there is no PST reader in this
// toolkit.
package ndb

import "encoding/binary"

// BID is a block identifier: bit 0 is the internal flag, bit 1 marks a
// block referenced from outside its owning node.
type BID uint64

// Bytes encodes bid as 8 little-endian bytes.
func (b BID) Bytes() []byte {
	var out [8]byte
	binary.LittleEndian.PutUint64(out[:], uint64(b))
	return out[:]
}

// NID is a node identifier: the low 5 bits are the node-type class,
// the remaining bits a per-type index the writer assigns in
// monotonically increasing order.
type NID uint32

// Bytes encodes nid as 8 little-endian bytes (4-byte NID + 4 bytes of
// alignment padding, matching the on-disk NBTENTRY shape).
func (n NID) Bytes() []byte {
	var out [8]byte
	binary.LittleEndian.PutUint32(out[:4], uint32(n))
	return out[:]
}

// Type returns nid's node-type class (low 5 bits).
func (n NID) Type() byte { return byte(n) & 0x1F }

// MakeNID builds a NID from a node-type class and a per-type index.
func MakeNID(nodeType byte, index uint32) NID {
	return NID(index<<5 | uint32(nodeType&0x1F))
}

// Node-type classes (low 5 bits of a NID), per [MS-PST] §2.4.1.
const (
	NIDTypeInternal             byte = 0x01
	NIDTypeNormalFolder         byte = 0x02
	NIDTypeSearchFolder         byte = 0x03
	NIDTypeNormalMessage        byte = 0x04
	NIDTypeAttachment           byte = 0x05
	NIDTypeSearchUpdateQueue    byte = 0x06
	NIDTypeSearchCriteriaObject byte = 0x07
	NIDTypeAssocMessage         byte = 0x08
	NIDTypeContentsTableIndex   byte = 0x0A
	NIDTypeReceiveFolderTable   byte = 0x0B
	NIDTypeOutgoingQueueTable   byte = 0x0C
	NIDTypeHierarchyTable       byte = 0x0D
	NIDTypeContentsTable        byte = 0x0E
	NIDTypeAssocContentsTable   byte = 0x0F
	NIDTypeSearchContentsTable  byte = 0x10
	NIDTypeAttachmentTable      byte = 0x11
	NIDTypeRecipientTable       byte = 0x12
	NIDTypeSearchTableIndex     byte = 0x13
	NIDTypeLTP                  byte = 0x1F
)

// Well-known NIDs, emitted with their prescribed values.
const (
	NID_MESSAGE_STORE           NID = 0x21
	NID_NAME_TO_ID_MAP          NID = 0x61
	NID_ROOT_FOLDER             NID = 0x122
	NID_SEARCH_MANAGEMENT_QUEUE NID = 0x1E1
)

// Page trailer ptype values.
const (
	PtypeBBT   byte = 0x80
	PtypeNBT   byte = 0x81
	PtypeFMap  byte = 0x82
	PtypePMap  byte = 0x83
	PtypeAMap  byte = 0x84
	PtypeFPMap byte = 0x85
	PtypeDList byte = 0x86
)

// Block type signatures (first byte of an XBLOCK/SLBLOCK's data).
const (
	btypeXBlock  byte = 0x01
	btypeSubnode byte = 0x02
)
