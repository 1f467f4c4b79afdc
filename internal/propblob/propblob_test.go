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

package propblob

import "testing"

// TestParseASCIISubject: the sender name is recovered with title
// casing, the subject read via the VLQ-prefixed M sentinel.
func TestParseASCIISubject(t *testing.T) {
	blob := append([]byte("JOHN DOEM"), 6)
	blob = append(blob, []byte("Hi all")...)

	f := Parse(blob)
	if f.SenderName != "John Doe" {
		t.Fatalf("SenderName = %q", f.SenderName)
	}
	if f.Subject != "Hi all" {
		t.Fatalf("Subject = %q", f.Subject)
	}
}

// TestParseUTF16Subject: a Cyrillic sender name paired with a UTF-16LE
// subject via the 'I' sentinel and its 16-bit length prefix.
func TestParseUTF16Subject(t *testing.T) {
	name := "МАША ИВАНОВА"
	blob := append([]byte(name), 'I', 4, 0)
	blob = append(blob, 0x1F, 0x04, 0x40, 0x04, 0x38, 0x04, 0x32, 0x04) // "Прив" UTF-16LE

	f := Parse(blob)
	if f.Subject != "Прив" {
		t.Fatalf("Subject = %q", f.Subject)
	}
}

func TestParseEmptyBlobIsEmpty(t *testing.T) {
	f := Parse(nil)
	if f.SenderName != "" || f.Subject != "" || f.SenderEmail != "" || f.MessageID != "" {
		t.Fatalf("expected all-empty Fields, got %+v", f)
	}
}

func TestParseMessageID(t *testing.T) {
	blob := append([]byte("JANE ROEM"), 5)
	blob = append(blob, []byte("Hello")...)
	blob = append(blob, 'M', 20)
	blob = append(blob, []byte("<abc123@example.com>")...)

	f := Parse(blob)
	if f.MessageID != "<abc123@example.com>" {
		t.Fatalf("MessageID = %q", f.MessageID)
	}
}

func TestParseRecipientList(t *testing.T) {
	blob := []byte("ProP")
	blob = append(blob, []byte("JANE ROEM")...)
	blob = append(blob, 4)
	blob = append(blob, []byte("Jane")...)
	blob = append(blob, []byte("EXM")...)
	blob = append(blob, 'M', 16)
	blob = append(blob, []byte("jane@example.com")...)

	recipients := ParseRecipientList(blob)
	if len(recipients) != 1 {
		t.Fatalf("got %d recipients", len(recipients))
	}
	if recipients[0].Email != "jane@example.com" {
		t.Fatalf("Email = %q", recipients[0].Email)
	}
}
