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

package entity

import "testing"

func TestClassifyPrefixes(t *testing.T) {
	cases := map[string]string{
		"IPM.Note": "email",
		"IPM.Note.SMIME": "email",
		"IPM.Appointment": "calendar",
		"IPM.Schedule.Meeting.Request": "calendar",
		"IPM.Contact": "contact",
		"IPM.Task": "email",
		"": "email",
	}
	for class, want := range cases {
		if got := Kind(class); got != want {
			t.Errorf("Kind(%q) = %q, want %q", class, got, want)
		}
	}
}

func TestDecodeWithFallbackUTF8(t *testing.T) {
	if got := DecodeWithFallback([]byte("hello")); got != "hello" {
		t.Fatalf("got %q", got)
	}
}

func TestDecodeWithFallbackWindows1251(t *testing.T) {
	// "привет" in Windows-1251.
	cyrillic := []byte{0xEF, 0xF0, 0xE8, 0xE2, 0xE5, 0xF2}
	got := DecodeWithFallback(cyrillic)
	if got != "привет" {
		t.Fatalf("got %q, want %q", got, "привет")
	}
}

func TestHasAttachments(t *testing.T) {
	m := &EmailMessage{}
	if m.HasAttachments() {
		t.Fatal("expected no attachments")
	}
	m.Attachments = []*Attachment{{Filename: "a.txt"}}
	if !m.HasAttachments() {
		t.Fatal("expected attachments")
	}
}
