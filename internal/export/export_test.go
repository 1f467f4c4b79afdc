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

package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/edbxtool/edbx/internal/entity"
)

func TestEMLPlainTextNoAttachments(t *testing.T) {
	sent := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)
	m := &entity.EmailMessage{
		Subject: "Hello",
		SenderName: "Alice",
		SenderEmail: "alice@example.com",
		To: []entity.Address{{Name: "Bob", Email: "bob@example.com"}},
		BodyText: "hi there",
		MessageID: "<abc@example.com>",
		DateSent: &sent,
	}
	out, err := EML(m)
	if err != nil {
		t.Fatalf("EML: %v", err)
	}
	if !bytes.Contains(out, []byte("hi there")) {
		t.Fatalf("expected body text in output, got:\n%s", out)
	}
	if !bytes.Contains(out, []byte("<abc@example.com>")) {
		t.Fatal("expected Message-Id preserved verbatim")
	}
}

func TestEMLWithAttachmentUsesMultipartMixed(t *testing.T) {
	m := &entity.EmailMessage{
		Subject: "With attachment",
		SenderName: "Alice",
		SenderEmail: "alice@example.com",
		BodyText: "see attached",
		Attachments: []*entity.Attachment{
			{Filename: "note.txt", ContentType: "text/plain", Data: []byte("attachment body")},
		},
	}
	out, err := EML(m)
	if err != nil {
		t.Fatalf("EML: %v", err)
	}
	if !bytes.Contains(out, []byte("multipart/mixed")) {
		t.Fatalf("expected multipart/mixed wrapper, got:\n%s", out)
	}
	if !bytes.Contains(out, []byte("note.txt")) {
		t.Fatal("expected attachment filename present")
	}
}

func TestICSLineFolding(t *testing.T) {
	ev := &entity.CalendarEvent{
		UID: "event-1",
		Subject: strings.Repeat("a very long summary line ", 5),
	}
	out := ICS([]*entity.CalendarEvent{ev})
	for _, line := range strings.Split(string(out), "\r\n") {
		if len(line) > 75 {
			t.Fatalf("line exceeds 75 octets: %q", line)
		}
	}
	if !bytes.Contains(out, []byte("BEGIN:VEVENT")) {
		t.Fatal("expected VEVENT block")
	}
}

func TestVCFOneCardPerContact(t *testing.T) {
	contacts := []*entity.Contact{
		{DisplayName: "Alice", Emails: []string{"alice@example.com"}},
		{DisplayName: "Bob", Emails: []string{"bob@example.com"}},
	}
	out := VCF(contacts)
	if strings.Count(string(out), "BEGIN:VCARD") != 2 {
		t.Fatalf("expected 2 VCARD blocks, got:\n%s", out)
	}
}
