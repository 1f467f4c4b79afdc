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

package emltomapi

import (
	"strings"
	"testing"

	"github.com/edbxtool/edbx/internal/pst/msg"

	"github.com/edbxtool/edbx/internal/entity"
)

// TestToEmailMessageFeedsPSTBuilder goes end to end: an EML translates
// into an entity.EmailMessage the messaging layer can place under a
// folder exactly like an EDB-sourced one.
func TestToEmailMessageFeedsPSTBuilder(t *testing.T) {
	raw := "Subject: Hello\r\n" +
		"From: \"A\" <a@x.test>\r\n" +
		"To: b@y.test\r\n" +
		"Date: Mon, 2 Jan 2006 15:04:05 -0700\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"world"

	res, err := Translate(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}

	m := ToEmailMessage(res)
	if m.Subject != "Hello" || m.SenderName != "A" || m.BodyText != "world" {
		t.Fatalf("ToEmailMessage = %+v", m)
	}
	if len(m.To) != 1 || m.To[0].Email != "b@y.test" {
		t.Fatalf("To = %+v", m.To)
	}

	guid := [16]byte{1}
	b := msg.NewBuilder(guid)
	root := &entity.Folder{ID: entity.FolderID{0x01}, SpecialNumber: entity.SpecialRoot}
	if _, err := b.AddFolder(root); err != nil {
		t.Fatalf("AddFolder(root): %v", err)
	}
	inbox := &entity.Folder{ID: entity.FolderID{0x02}, ParentID: root.ID, SpecialNumber: entity.SpecialInbox}
	if _, err := b.AddFolder(inbox); err != nil {
		t.Fatalf("AddFolder(inbox): %v", err)
	}
	if _, err := b.AddMessage(inbox.ID, m); err != nil {
		t.Fatalf("AddMessage: %v", err)
	}
	if err := b.FinishFolders(); err != nil {
		t.Fatalf("FinishFolders: %v", err)
	}
	if err := b.WriteNameToIDMap(); err != nil {
		t.Fatalf("WriteNameToIDMap: %v", err)
	}
	if err := b.WriteStore(&entity.Mailbox{GUID: guid}); err != nil {
		t.Fatalf("WriteStore: %v", err)
	}
	out := b.Build()
	if string(out[0:4]) != "!BDN" {
		t.Fatalf("expected PST magic, got %q", out[0:4])
	}
}
