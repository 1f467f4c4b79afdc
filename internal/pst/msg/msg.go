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

// Package msg implements the Messaging layer of a PST file: the Store
// object, Name-to-ID Map, folder and message node emission, all wired
// onto the NDB and LTP layers.
package msg

import (
	"encoding/binary"

	"github.com/edbxtool/edbx/internal/entity"
	"github.com/edbxtool/edbx/internal/mapi"
	"github.com/edbxtool/edbx/internal/pst/ltp"
	"github.com/edbxtool/edbx/internal/pst/ndb"
)

// Builder assembles every folder and message of one mailbox into a
// single PST writer. Emission order is fixed: folders
// parent-before-child, then messages in ascending record order, which
// makes NID assignment (and the output bytes) deterministic for a
// given input sequence.
type Builder struct {
	w           *ndb.Writer
	mailboxGUID [16]byte

	nextNamedID uint16
	namedProps  map[string]uint16

	folderNIDs    map[entity.FolderID]ndb.NID
	folderOrder   []ndb.NID
	folderSpill   map[ndb.NID][]ndb.SubnodeEntry
	childFolders  map[ndb.NID][]ndb.NID
	folderMsgs    map[ndb.NID][]ndb.NID
	specialFolder map[int]ndb.NID
	rootNID       ndb.NID
}

// NewBuilder returns a Builder for one mailbox, identified by guid
// (becomes PR_RECORD_KEY and the provider UID half of every EntryID).
func NewBuilder(guid [16]byte) *Builder {
	return &Builder{
		w: ndb.NewWriter(),
		mailboxGUID: guid,
		nextNamedID: 0x8000,
		namedProps: make(map[string]uint16),
		folderNIDs: make(map[entity.FolderID]ndb.NID),
		folderSpill: make(map[ndb.NID][]ndb.SubnodeEntry),
		childFolders: make(map[ndb.NID][]ndb.NID),
		folderMsgs: make(map[ndb.NID][]ndb.NID),
		specialFolder: make(map[int]ndb.NID),
	}
}

// AllocNamedID assigns (or returns the previously assigned) named-
// property ID for name, sequentially from 0x8000 as named properties
// are first encountered.
func (b *Builder) AllocNamedID(name string) uint16 {
	if id, ok := b.namedProps[name]; ok {
		return id
	}
	id := b.nextNamedID
	b.nextNamedID++
	b.namedProps[name] = id
	return id
}

// entryID builds a PST EntryID: 4 zero flag bytes, the mailbox's
// provider UID (16-byte GUID), and the target node's NID.
func entryID(providerGUID [16]byte, nid ndb.NID) []byte {
	out := make([]byte, 24)
	copy(out[4:20], providerGUID[:])
	binary.LittleEndian.PutUint32(out[20:24], uint32(nid))
	return out
}

// writePCNode writes props as nid's Property Context and registers the
// NBT entry. The returned subnode entries cover any property value too
// large for the heap; callers owning a subnode tree must fold them in,
// others can pass them straight to WriteSubnodeTree/ReplaceSubnode.
func (b *Builder) writePCNode(nid ndb.NID, props *mapi.Set, parent ndb.NID) ([]ndb.SubnodeEntry, error) {
	h, _, spill, err := ltp.WritePC(b.w, props)
	if err != nil {
		return nil, err
	}
	dataBID, err := h.Finish(b.w)
	if err != nil {
		return nil, err
	}
	b.w.PutNode(nid, dataBID, 0, parent)
	return spill, nil
}

// writeTCNode writes a Table Context as a subnode of owner, returning
// the SubnodeEntry the caller folds into owner's subnode tree.
func (b *Builder) writeTCNode(tcNID ndb.NID, columns []ltp.TCColumn, rows []ltp.TCRow) (ndb.SubnodeEntry, error) {
	tc, err := ltp.WriteTC(b.w, columns, rows)
	if err != nil {
		return ndb.SubnodeEntry{}, err
	}
	dataBID, err := tc.Heap.Finish(b.w)
	if err != nil {
		return ndb.SubnodeEntry{}, err
	}
	var subBID ndb.BID
	if tc.Subnode != nil {
		subBID, err = b.w.WriteSubnodeTree([]ndb.SubnodeEntry{*tc.Subnode})
		if err != nil {
			return ndb.SubnodeEntry{}, err
		}
	}
	return ndb.SubnodeEntry{NID: tcNID, DataBID: dataBID, SubBID: subBID}, nil
}

// Build finalizes the NDB writer (NBT/BBT/AMap/header) and returns the
// complete PST file bytes. Call it once, after every folder, message,
// the Name-to-ID Map, and the Store object have been added.
func (b *Builder) Build() []byte {
	return b.w.Build()
}

// BlocksWritten returns how many NDB data blocks the builder has
// emitted so far, for operational counters.
func (b *Builder) BlocksWritten() int {
	return b.w.BlocksWritten()
}
