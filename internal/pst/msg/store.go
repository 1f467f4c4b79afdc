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
	"github.com/edbxtool/edbx/internal/pst/ndb"
)

// WriteStore writes the message store object: a PC at
// NID_MESSAGE_STORE naming the mailbox and pointing at its root,
// wastebasket, and search-results (finder) folders. Call this after
// every folder has been added via AddFolder.
func (b *Builder) WriteStore(mailbox *entity.Mailbox) error {
	props := mapi.NewSet()
	props.PutStr(mapi.PR_DISPLAY_NAME_W, mailbox.OwnerDisplayName)
	props.Put(mapi.PR_RECORD_KEY, mapi.Bin(mailbox.GUID[:]))
	props.Put(mapi.PR_ROOT_MAILBOX, mapi.Long32(uint32(b.rootNID)))
	props.Put(mapi.PR_IPM_SUBTREE_ENTRYID, mapi.Bin(entryID(b.mailboxGUID, b.ipmSubtreeNID())))
	props.Put(mapi.PR_IPM_WASTEBASKET_ENTRYID, mapi.Bin(entryID(b.mailboxGUID, b.specialFolder[entity.SpecialDeletedItems])))
	props.Put(mapi.PR_FINDER_ENTRYID, mapi.Bin(entryID(b.mailboxGUID, b.specialFolder[entity.SpecialRoot])))

	spill, err := b.writePCNode(ndb.NID_MESSAGE_STORE, props, 0)
	if err != nil {
		return err
	}
	if len(spill) > 0 {
		subBID, err := b.w.WriteSubnodeTree(spill)
		if err != nil {
			return err
		}
		b.w.ReplaceSubnode(ndb.NID_MESSAGE_STORE, subBID)
	}
	return nil
}

func (b *Builder) ipmSubtreeNID() ndb.NID {
	if nid, ok := b.specialFolder[entity.SpecialIPMSubtree]; ok {
		return nid
	}
	return b.rootNID
}
