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

package msg

import (
	"github.com/edbxtool/edbx/internal/entity"
	"github.com/edbxtool/edbx/internal/mapi"
	"github.com/edbxtool/edbx/internal/pst/ltp"
	"github.com/edbxtool/edbx/internal/pst/ndb"
)

// AddFolder registers one folder's PC node. Callers must add folders
// in parent-before-child order; the root folder must be added first,
// with its parent set to its own FolderID.
func (b *Builder) AddFolder(f *entity.Folder) (ndb.NID, error) {
	isRoot := f.SpecialNumber == entity.SpecialRoot
	var nid ndb.NID
	if isRoot {
		nid = ndb.NID_ROOT_FOLDER
	} else {
		nid = b.w.AllocNID(ndb.NIDTypeNormalFolder)
	}
	b.folderNIDs[f.ID] = nid
	if f.SpecialNumber != 0 {
		b.specialFolder[f.SpecialNumber] = nid
	}
	if isRoot {
		b.rootNID = nid
	}

	var parentNID ndb.NID
	if !isRoot {
		parentNID = b.folderNIDs[f.ParentID]
		b.childFolders[parentNID] = append(b.childFolders[parentNID], nid)
	}

	props := mapi.NewSet()
	props.PutStr(mapi.PR_DISPLAY_NAME_W, f.DisplayName)
	props.Put(mapi.PR_CONTENT_COUNT, mapi.Long32(uint32(f.MessageCount)))
	props.Put(mapi.PR_CONTENT_UNREAD, mapi.Long32(0))
	// PR_SUBFOLDERS is advisory: a folder's children are only known
	// once every folder has been added, after this PC is written.
	props.Put(mapi.PR_SUBFOLDERS, mapi.Bool32(false))
	props.Put(mapi.PR_ENTRYID, mapi.Bin(entryID(b.mailboxGUID, nid)))
	if !isRoot {
		props.Put(mapi.PR_PARENT_ENTRYID, mapi.Bin(entryID(b.mailboxGUID, parentNID)))
	}
	if containerClass(f.SpecialNumber) != "" {
		props.PutStr(mapi.PR_CONTAINER_CLASS_W, containerClass(f.SpecialNumber))
	}

	spill, err := b.writePCNode(nid, props, parentNID)
	if err != nil {
		return 0, err
	}
	b.folderSpill[nid] = spill
	if _, ok := b.folderMsgs[nid]; !ok {
		b.folderMsgs[nid] = nil
	}
	b.folderOrder = append(b.folderOrder, nid)
	return nid, nil
}

func containerClass(special int) string {
	switch special {
	case entity.SpecialContacts:
		return "IPF.Contact"
	case entity.SpecialCalendar:
		return "IPF.Appointment"
	case entity.SpecialTasks:
		return "IPF.Task"
	case entity.SpecialNotes:
		return "IPF.StickyNote"
	case entity.SpecialJournal:
		return "IPF.Journal"
	default:
		return ""
	}
}

// FinishFolders writes every folder's Hierarchy, Contents, and (empty)
// Associated Contents Table as subnodes, once every folder and message
// has been added. Call this before WriteStore/Build.
func (b *Builder) FinishFolders() error {
	for _, folderNID := range b.folderOrder {
		msgNIDs := b.folderMsgs[folderNID]
		children := b.childFolders[folderNID]

		hierRows := make([]ltp.TCRow, 0, len(children))
		for _, childNID := range children {
			hierRows = append(hierRows, ltp.TCRow{Cells: map[mapi.Tag][]byte{
				mapi.LTP_ROW_ID: leU32(uint32(childNID)),
			}})
		}
		hierNID := b.w.AllocNID(ndb.NIDTypeHierarchyTable)
		hierEntry, err := b.writeTCNode(hierNID, hierarchyColumns, hierRows)
		if err != nil {
			return err
		}

		contRows := make([]ltp.TCRow, 0, len(msgNIDs))
		for _, msgNID := range msgNIDs {
			contRows = append(contRows, ltp.TCRow{Cells: map[mapi.Tag][]byte{
				mapi.LTP_ROW_ID: leU32(uint32(msgNID)),
			}})
		}
		contNID := b.w.AllocNID(ndb.NIDTypeContentsTable)
		contEntry, err := b.writeTCNode(contNID, contentsColumns, contRows)
		if err != nil {
			return err
		}

		assocNID := b.w.AllocNID(ndb.NIDTypeAssocContentsTable)
		assocEntry, err := b.writeTCNode(assocNID, contentsColumns, nil)
		if err != nil {
			return err
		}

		entries := append([]ndb.SubnodeEntry{hierEntry, contEntry, assocEntry}, b.folderSpill[folderNID]...)
		subBID, err := b.w.WriteSubnodeTree(entries)
		if err != nil {
			return err
		}
		b.w.ReplaceSubnode(folderNID, subBID)
	}
	return nil
}

var hierarchyColumns = []ltp.TCColumn{
	{Tag: mapi.LTP_ROW_ID, SlotSize: 4},
}

var contentsColumns = []ltp.TCColumn{
	{Tag: mapi.LTP_ROW_ID, SlotSize: 4},
}

func leU32(v uint32) []byte {
	return []byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)}
}
