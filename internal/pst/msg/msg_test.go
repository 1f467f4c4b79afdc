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
	"testing"
	"time"

	"github.com/edbxtool/edbx/internal/entity"
)

func TestBuilderAssemblesMailboxIntoValidHeader(t *testing.T) {
	guid := [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	b := NewBuilder(guid)

	root := &entity.Folder{ID: entity.FolderID{0x01}, SpecialNumber: entity.SpecialRoot, DisplayName: "Root"}
	if _, err := b.AddFolder(root); err != nil {
		t.Fatalf("AddFolder(root): %v", err)
	}

	inbox := &entity.Folder{ID: entity.FolderID{0x02}, ParentID: root.ID, SpecialNumber: entity.SpecialInbox, DisplayName: "Inbox", MessageCount: 1}
	if _, err := b.AddFolder(inbox); err != nil {
		t.Fatalf("AddFolder(inbox): %v", err)
	}
	deleted := &entity.Folder{ID: entity.FolderID{0x03}, ParentID: root.ID, SpecialNumber: entity.SpecialDeletedItems, DisplayName: "Deleted Items"}
	if _, err := b.AddFolder(deleted); err != nil {
		t.Fatalf("AddFolder(deleted): %v", err)
	}

	sent := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	msg := &entity.EmailMessage{
		MessageClass: "IPM.Note",
		Subject: "Hello",
		SenderName: "Alice",
		SenderEmail: "alice@example.com",
		To: []entity.Address{{Name: "Bob", Email: "bob@example.com"}},
		BodyText: "Hi Bob",
		DateSent: &sent,
		Attachments: []*entity.Attachment{
			{Filename: "note.txt", ContentType: "text/plain", Size: 5, Data: []byte("hello")},
		},
	}
	if _, err := b.AddMessage(inbox.ID, msg); err != nil {
		t.Fatalf("AddMessage: %v", err)
	}

	if err := b.FinishFolders(); err != nil {
		t.Fatalf("FinishFolders: %v", err)
	}
	if err := b.WriteNameToIDMap(); err != nil {
		t.Fatalf("WriteNameToIDMap: %v", err)
	}
	mailbox := &entity.Mailbox{OwnerDisplayName: "Alice", GUID: guid}
	if err := b.WriteStore(mailbox); err != nil {
		t.Fatalf("WriteStore: %v", err)
	}

	out := b.Build()
	if len(out) < 564 {
		t.Fatalf("expected at least a full header, got %d bytes", len(out))
	}
	if string(out[0:4]) != "!BDN" {
		t.Fatalf("expected PST magic !BDN, got %q", out[0:4])
	}
	if out[10] != 0x17 || out[14] != 0x01 {
		t.Fatalf("unexpected header flag bytes")
	}
}
