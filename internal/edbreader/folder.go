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
	"fmt"

	"github.com/edbxtool/edbx/internal/entity"
	"github.com/edbxtool/edbx/internal/ese"
)

// OrphanFolderID is the sentinel FolderID a Topology routes messages
// to when their declared folder ID names no folder that was actually
// loaded: orphan messages land in a synthesized "Orphaned" folder
// rather than being dropped.
var OrphanFolderID = entity.FolderID{
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
	0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF,
}

// Topology is one mailbox's folder arena, resolved once at load time
// and immutable after. Folders always include a trailing "Orphaned"
// folder rooted directly under the mailbox root, whether or not any
// message ever needs it.
type Topology struct {
	Folders []*entity.Folder
	byID    map[entity.FolderID]*entity.Folder
	root    entity.FolderID
}

// Folders loads mailboxNumber's folder tree from "Folder_<N>" and
// appends the synthesized Orphaned folder.
func (r *Reader) Folders(mailboxNumber int) (*Topology, error) {
	table := "Folder_" + mailboxTableSuffix(mailboxNumber)
	tbl, err := ese.OpenTable(r.Backend, table)
	if err != nil {
		return nil, err
	}

	top := &Topology{byID: make(map[entity.FolderID]*entity.Folder)}
	for i := int64(0); i < tbl.Len(); i++ {
		row := tbl.Row(i)
		f := &entity.Folder{
			DisplayName: r.decompressedStr(row, "DisplayName"),
		}
		if id := r.rawBytes(row, "FolderId"); len(id) == 26 {
			copy(f.ID[:], id)
		}
		if pid := r.rawBytes(row, "ParentFolderId"); len(pid) == 26 {
			copy(f.ParentID[:], pid)
		}
		f.SpecialNumber = int(row.ColumnByteDefault("SpecialFolderNumber", 0))
		if v, ok := row.ColumnUint64("MessageCount"); ok {
			f.MessageCount = int64(v)
		}
		if f.SpecialNumber == entity.SpecialRoot {
			f.ParentID = f.ID
			top.root = f.ID
		}
		top.Folders = append(top.Folders, f)
		top.byID[f.ID] = f
	}

	orphan := &entity.Folder{
		ID: OrphanFolderID,
		ParentID: top.root,
		DisplayName: "Orphaned",
	}
	top.Folders = append(top.Folders, orphan)
	top.byID[orphan.ID] = orphan

	return top, nil
}

// Resolve returns the folder a message with the given folder_id
// belongs under, substituting the Orphaned folder when id names no
// loaded folder.
func (t *Topology) Resolve(id entity.FolderID) *entity.Folder {
	if f, ok := t.byID[id]; ok {
		return f
	}
	return t.byID[OrphanFolderID]
}

// RootID returns the root folder's ID, or the zero value if no folder
// in the table declared SpecialRoot.
func (t *Topology) RootID() entity.FolderID { return t.root }

// PathTo returns the chain of folders from the mailbox root down to id
// (inclusive), root first. Used when synthesizing a PST for a single
// folder: every ancestor must be added before the target folder, since
// folders are written in parent-before-child order.
func (t *Topology) PathTo(id entity.FolderID) []*entity.Folder {
	f, ok := t.byID[id]
	if !ok {
		return nil
	}
	var chain []*entity.Folder
	for {
		chain = append([]*entity.Folder{f}, chain...)
		if f.ID == t.root {
			return chain
		}
		parent, ok := t.byID[f.ParentID]
		if !ok || parent.ID == f.ID {
			return chain
		}
		f = parent
	}
}

// MessageTableName returns the Message_<N> table name a folder's messages are
// physically stored in. In the source layout every folder in a mailbox
// shares one Message_<N> table (keyed by FolderId per row), matching
// Attachment_<N>'s layout.
func MessageTableName(mailboxNumber int) string {
	return fmt.Sprintf("Message_%d", mailboxNumber)
}

// AttachmentTableName returns the Attachment_<N> table name.
func AttachmentTableName(mailboxNumber int) string {
	return fmt.Sprintf("Attachment_%d", mailboxNumber)
}
