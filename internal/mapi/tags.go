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

// Package mapi defines the MAPI property tag constants and the tagged
// property-value model shared by the EML→MAPI translator and the PST
// messaging/LTP layers: a 32-bit tag is (property ID << 16) | property
// type.
package mapi

// Tag is a 32-bit MAPI property tag: (ID << 16) | Type.
type Tag uint32

// ID returns the 16-bit property ID half of the tag.
func (t Tag) ID() uint16 { return uint16(t >> 16) }

// Type returns the 16-bit property type half of the tag.
func (t Tag) Type() uint16 { return uint16(t) }

// Property types referenced by this toolkit (subset of [MS-OXCDATA] 2.11.1).
const (
	PT_UNSPECIFIED uint16 = 0x0000
	PT_BOOLEAN     uint16 = 0x000B
	PT_LONG        uint16 = 0x0003
	PT_SYSTIME     uint16 = 0x0040
	PT_BINARY      uint16 = 0x0102
	PT_UNICODE     uint16 = 0x001F
	PT_MV_UNICODE  uint16 = 0x101F
)

// MAPI property tags used by this toolkit - the set needed to
// reconstitute an email/calendar/contact in Outlook, not the full
// 10,000+ property space.
const (
	PR_SUBJECT_W               Tag = 0x0037001F
	PR_BODY_W                  Tag = 0x1000001F
	PR_HTML                    Tag = 0x10130102
	PR_SENDER_NAME_W           Tag = 0x0C1A001F
	PR_SENDER_EMAIL_ADDRESS_W  Tag = 0x0C1F001F
	PR_SENDER_ADDRTYPE_W       Tag = 0x0C1E001F
	PR_CLIENT_SUBMIT_TIME      Tag = 0x00390040
	PR_MESSAGE_DELIVERY_TIME   Tag = 0x0E060040
	PR_IMPORTANCE              Tag = 0x00170003
	PR_MESSAGE_CLASS_W         Tag = 0x001A001F
	PR_MESSAGE_FLAGS           Tag = 0x0E070003
	PR_HASATTACH               Tag = 0x0E1B000B
	PR_RECIPIENT_TYPE          Tag = 0x0C150003
	PR_DISPLAY_NAME_W          Tag = 0x3001001F
	PR_SMTP_ADDRESS_W          Tag = 0x39FE001F
	PR_ADDRTYPE_W              Tag = 0x3002001F
	PR_EMAIL_ADDRESS_W         Tag = 0x3003001F
	PR_ATTACH_FILENAME_W       Tag = 0x3704001F
	PR_ATTACH_LONG_FILENAME_W  Tag = 0x3707001F
	PR_ATTACH_DATA_BIN         Tag = 0x37010102
	PR_ATTACH_MIME_TAG_W       Tag = 0x370E001F
	PR_ATTACH_METHOD           Tag = 0x37050003
	PR_ATTACH_SIZE             Tag = 0x0E200003
	PR_RECORD_KEY              Tag = 0x0FF90102
	PR_CONTAINER_CLASS_W       Tag = 0x3613001F
	PR_ENTRYID                 Tag = 0x0FFF0102
	PR_PARENT_ENTRYID          Tag = 0x0E090102
	PR_STORE_ENTRYID           Tag = 0x0FFB0102
	PR_CONTENT_COUNT           Tag = 0x36020003
	PR_CONTENT_UNREAD          Tag = 0x36030003
	PR_SUBFOLDERS              Tag = 0x360A000B
	PR_IPM_SUBTREE_ENTRYID     Tag = 0x35E00102
	PR_IPM_WASTEBASKET_ENTRYID Tag = 0x35E30102
	PR_FINDER_ENTRYID          Tag = 0x35E70102
	PR_MESSAGE_SIZE            Tag = 0x0E080003
	PR_INTERNET_MESSAGE_ID_W   Tag = 0x1035001F
	PR_START_DATE              Tag = 0x00600040
	PR_END_DATE                Tag = 0x00610040
	PR_SENT_REPRESENTING_NAME_W Tag = 0x0042001F

	// PR_ROOT_MAILBOX has no standard hex assignment; this toolkit
	// gives the store's NID-of-root-folder property its own ID rather
	// than leaving it unwired.
	PR_ROOT_MAILBOX Tag = 0x0E1F0003

	// LTP_ROW_ID/LTP_ROW_VER are the Table Context's own row-identity
	// columns (every TC row carries one, per [MS-PST] §2.3.4.4), used
	// here so an Attachments/Recipients/Hierarchy row can reference the
	// subnode it describes.
	LTP_ROW_ID  Tag = 0x67F20003
	LTP_ROW_VER Tag = 0x67F30003
)

// RecipientType values for PR_RECIPIENT_TYPE.
const (
	MAPI_TO  uint32 = 1
	MAPI_CC  uint32 = 2
	MAPI_BCC uint32 = 3
)

// Importance values for PR_IMPORTANCE.
const (
	ImportanceLow    uint32 = 0
	ImportanceNormal uint32 = 1
	ImportanceHigh   uint32 = 2
)
