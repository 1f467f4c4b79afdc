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
	"github.com/edbxtool/edbx/internal/bytesx"
	"github.com/edbxtool/edbx/internal/entity"
	"github.com/edbxtool/edbx/internal/mapi"
	"github.com/edbxtool/edbx/internal/pst/ltp"
	"github.com/edbxtool/edbx/internal/pst/ndb"
)

var recipientColumns = []ltp.TCColumn{
	{Tag: mapi.LTP_ROW_ID, SlotSize: 4},
	{Tag: mapi.PR_DISPLAY_NAME_W, SlotSize: 4, Variable: true},
	{Tag: mapi.PR_EMAIL_ADDRESS_W, SlotSize: 4, Variable: true},
	{Tag: mapi.PR_RECIPIENT_TYPE, SlotSize: 4},
}

var attachmentColumns = []ltp.TCColumn{
	{Tag: mapi.LTP_ROW_ID, SlotSize: 4},
	{Tag: mapi.PR_ATTACH_LONG_FILENAME_W, SlotSize: 4, Variable: true},
	{Tag: mapi.PR_ATTACH_SIZE, SlotSize: 4},
}

// AddMessage writes msg's Property Context, Recipients Table and
// Attachments Table. Each attachment also gets its own PC: its
// Attachments Table row references a subnode holding that PC.
func (b *Builder) AddMessage(folderID entity.FolderID, m *entity.EmailMessage) (ndb.NID, error) {
	nid := b.w.AllocNID(ndb.NIDTypeNormalMessage)
	parentNID := b.folderNIDs[folderID]
	b.folderMsgs[parentNID] = append(b.folderMsgs[parentNID], nid)

	props := messageProps(m)
	spill, err := b.writePCNode(nid, props, parentNID)
	if err != nil {
		return 0, err
	}

	subEntries := make([]ndb.SubnodeEntry, 0, 2+len(m.Attachments)+len(spill))
	subEntries = append(subEntries, spill...)

	recipNID := b.w.AllocNID(ndb.NIDTypeRecipientTable)
	recipEntry, err := b.writeTCNode(recipNID, recipientColumns, recipientRows(m))
	if err != nil {
		return 0, err
	}
	subEntries = append(subEntries, recipEntry)

	attachNID := b.w.AllocNID(ndb.NIDTypeAttachmentTable)
	attachRows := make([]ltp.TCRow, 0, len(m.Attachments))
	for _, att := range m.Attachments {
		attNID := b.w.AllocNID(ndb.NIDTypeAttachment)
		data, err := att.Bytes()
		if err != nil {
			return 0, err
		}
		attProps := mapi.NewSet()
		attProps.PutStr(mapi.PR_ATTACH_LONG_FILENAME_W, att.Filename)
		attProps.PutStr(mapi.PR_ATTACH_FILENAME_W, att.Filename)
		attProps.PutStr(mapi.PR_ATTACH_MIME_TAG_W, att.ContentType)
		attProps.Put(mapi.PR_ATTACH_DATA_BIN, mapi.Bin(data))
		attProps.Put(mapi.PR_ATTACH_METHOD, mapi.Long32(1)) // ATTACH_BY_VALUE
		attProps.Put(mapi.PR_ATTACH_SIZE, mapi.Long32(uint32(len(data))))

		attH, _, attSpill, err := ltp.WritePC(b.w, attProps)
		if err != nil {
			return 0, err
		}
		attDataBID, err := attH.Finish(b.w)
		if err != nil {
			return 0, err
		}
		var attSubBID ndb.BID
		if len(attSpill) > 0 {
			// The attachment payload itself usually lands here: too big
			// for the heap, so it lives in the attachment node's own
			// subnode tree.
			attSubBID, err = b.w.WriteSubnodeTree(attSpill)
			if err != nil {
				return 0, err
			}
		}
		subEntries = append(subEntries, ndb.SubnodeEntry{NID: attNID, DataBID: attDataBID, SubBID: attSubBID})

		attachRows = append(attachRows, ltp.TCRow{Cells: map[mapi.Tag][]byte{
			mapi.LTP_ROW_ID: leU32(uint32(attNID)),
			mapi.PR_ATTACH_LONG_FILENAME_W: bytesx.EncodeUTF16LE(att.Filename),
			mapi.PR_ATTACH_SIZE: leU32(uint32(len(data))),
		}})
	}
	attachEntry, err := b.writeTCNode(attachNID, attachmentColumns, attachRows)
	if err != nil {
		return 0, err
	}
	subEntries = append(subEntries, attachEntry)

	subBID, err := b.w.WriteSubnodeTree(subEntries)
	if err != nil {
		return 0, err
	}
	b.w.ReplaceSubnode(nid, subBID)
	return nid, nil
}

func messageProps(m *entity.EmailMessage) *mapi.Set {
	props := mapi.NewSet()
	props.PutStr(mapi.PR_MESSAGE_CLASS_W, m.MessageClass)
	props.PutStr(mapi.PR_SUBJECT_W, m.Subject)
	props.PutStr(mapi.PR_SENDER_NAME_W, m.SenderName)
	props.PutStr(mapi.PR_SENDER_EMAIL_ADDRESS_W, m.SenderEmail)
	props.PutStr(mapi.PR_BODY_W, m.BodyText)
	if m.BodyHTML != "" {
		props.Put(mapi.PR_HTML, mapi.Bin([]byte(m.BodyHTML)))
	}
	props.PutStr(mapi.PR_INTERNET_MESSAGE_ID_W, m.MessageID)
	props.Put(mapi.PR_IMPORTANCE, mapi.Long32(uint32(m.Importance)))
	if m.DateSent != nil {
		props.Put(mapi.PR_CLIENT_SUBMIT_TIME, mapi.SysTime(*m.DateSent))
	}
	if m.DateReceived != nil {
		props.Put(mapi.PR_MESSAGE_DELIVERY_TIME, mapi.SysTime(*m.DateReceived))
	}
	props.Put(mapi.PR_HASATTACH, mapi.Bool32(m.HasAttachments()))
	size := len(m.BodyText) + len(m.BodyHTML)
	for _, a := range m.Attachments {
		size += int(a.Size)
	}
	props.Put(mapi.PR_MESSAGE_SIZE, mapi.Long32(uint32(size)))
	return props
}

func recipientRows(m *entity.EmailMessage) []ltp.TCRow {
	var rows []ltp.TCRow
	add := func(addr entity.Address, kind uint32, rowID uint32) {
		rows = append(rows, ltp.TCRow{Cells: map[mapi.Tag][]byte{
			mapi.LTP_ROW_ID: leU32(rowID),
			mapi.PR_DISPLAY_NAME_W: bytesx.EncodeUTF16LE(addr.Name),
			mapi.PR_EMAIL_ADDRESS_W: bytesx.EncodeUTF16LE(addr.Email),
			mapi.PR_RECIPIENT_TYPE: leU32(kind),
		}})
	}
	rowID := uint32(1)
	for _, a := range m.To {
		add(a, mapi.MAPI_TO, rowID)
		rowID++
	}
	for _, a := range m.Cc {
		add(a, mapi.MAPI_CC, rowID)
		rowID++
	}
	for _, a := range m.Bcc {
		add(a, mapi.MAPI_BCC, rowID)
		rowID++
	}
	return rows
}
