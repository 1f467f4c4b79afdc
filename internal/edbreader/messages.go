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

package edbreader

import (
	"sort"

	"github.com/edbxtool/edbx/internal/entity"
	"github.com/edbxtool/edbx/internal/ese"
)

// Ordered returns t's folders in parent-before-child topological order,
// root first, with any folder unreachable from root appended last in
// load order as a defensive fallback.
func (t *Topology) Ordered() []*entity.Folder {
	children := make(map[entity.FolderID][]*entity.Folder)
	for _, f := range t.Folders {
		if f.ID != t.root {
			children[f.ParentID] = append(children[f.ParentID], f)
		}
	}

	visited := make(map[entity.FolderID]bool, len(t.Folders))
	var out []*entity.Folder
	var visit func(id entity.FolderID)
	visit = func(id entity.FolderID) {
		f, ok := t.byID[id]
		if !ok || visited[id] {
			return
		}
		visited[id] = true
		out = append(out, f)
		for _, c := range children[id] {
			visit(c.ID)
		}
	}
	visit(t.root)
	for _, f := range t.Folders {
		if !visited[f.ID] {
			visited[f.ID] = true
			out = append(out, f)
		}
	}
	return out
}

// MessageIterator is a pull-based sequence over one mailbox's
// messages: a single cursor (current position within a precomputed,
// folder-then-docid-ordered row list) that callers advance one message
// at a time, restartable by re-seeking to a saved document ID.
type MessageIterator struct {
	reader      *Reader
	tbl         *ese.Table
	order       []int64
	pos         int
	topology    *Topology
	attachments *attachmentStore
	assembler   *entity.Assembler
	lastDocID   int64
}

// Messages opens mailboxNumber's Message_<N> table and precomputes the
// row visitation order: folders in top.Ordered sequence, and within
// each folder ascending MessageDocumentId.
func (r *Reader) Messages(mailboxNumber int, top *Topology, attachments *attachmentStore) (*MessageIterator, error) {
	tbl, err := ese.OpenTable(r.Backend, MessageTableName(mailboxNumber))
	if err != nil {
		return nil, err
	}

	folderPos := make(map[entity.FolderID]int)
	for i, f := range top.Ordered() {
		folderPos[f.ID] = i
	}

	type key struct {
		folderPos int
		docID int64
		idx int64
	}
	keys := make([]key, 0, tbl.Len())
	for i := int64(0); i < tbl.Len(); i++ {
		row := tbl.Row(i)
		var fid entity.FolderID
		if raw := r.rawBytes(row, "FolderId"); len(raw) == 26 {
			copy(fid[:], raw)
		}
		folder := top.Resolve(fid)
		docID, _ := row.ColumnUint64("MessageDocumentId")
		keys = append(keys, key{folderPos: folderPos[folder.ID], docID: int64(docID), idx: i})
	}
	sort.Slice(keys, func(a, b int) bool {
		if keys[a].folderPos != keys[b].folderPos {
			return keys[a].folderPos < keys[b].folderPos
		}
		return keys[a].docID < keys[b].docID
	})

	order := make([]int64, len(keys))
	for i, k := range keys {
		order[i] = k.idx
	}

	return &MessageIterator{
		reader: r,
		tbl: tbl,
		order: order,
		topology: top,
		attachments: attachments,
		assembler: entity.NewAssembler(r.Report),
	}, nil
}

// Len returns the total number of messages the iterator will yield.
func (it *MessageIterator) Len() int { return len(it.order) }

// Seek restarts iteration just after the message with the given
// MessageDocumentId, for resuming from a saved checkpoint.Cursor.
func (it *MessageIterator) Seek(docID int64) {
	for i, idx := range it.order {
		row := it.tbl.Row(idx)
		if v, ok := row.ColumnUint64("MessageDocumentId"); ok && int64(v) == docID {
			it.pos = i + 1
			return
		}
	}
}

// LastDocID returns the MessageDocumentId of the most recently yielded
// message, the value a resume checkpoint stores.
func (it *MessageIterator) LastDocID() int64 { return it.lastDocID }

// Next yields the next entity (an *entity.EmailMessage,
// *entity.CalendarEvent, or *entity.Contact depending on the row's
// MessageClass) along with the folder it was resolved
// into, or ok=false once the table is exhausted.
func (it *MessageIterator) Next() (record interface{}, folder *entity.Folder, ok bool) {
	if it.pos >= len(it.order) {
		return nil, nil, false
	}
	idx := it.order[it.pos]
	it.pos++

	row := it.tbl.Row(idx)
	var fid entity.FolderID
	if raw := it.reader.rawBytes(row, "FolderId"); len(raw) == 26 {
		copy(fid[:], raw)
	}
	folder = it.topology.Resolve(fid)
	if docID, ok := row.ColumnUint64("MessageDocumentId"); ok {
		it.lastDocID = int64(docID)
	}

	switch entity.Kind(it.assembler.MessageClassOf(row)) {
	case "calendar":
		return it.assembler.AssembleCalendarEvent(row, folder.ID), folder, true
	case "contact":
		return it.assembler.AssembleContact(row, folder.ID), folder, true
	default:
		var lvs entity.LongValueStore
		if it.attachments != nil {
			lvs = it.attachments
		}
		return it.assembler.AssembleEmail(row, folder.ID, lvs), folder, true
	}
}
