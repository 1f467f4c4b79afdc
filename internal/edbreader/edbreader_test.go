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
	"testing"

	"github.com/edbxtool/edbx/internal/entity"
)

// fakeBackend is a minimal in-memory ese.Backend, mirroring the pattern
// in internal/ese/ese_test.go. Long-value indirection isn't exercised
// here; every column is returned inline.
type fakeBackend struct {
	rows    map[string]int64
	columns map[string]map[int64]map[string][]byte
}

func (f *fakeBackend) TableNames(prefix string) ([]string, error) { return nil, nil }

func (f *fakeBackend) RowCount(table string) (int64, error) { return f.rows[table], nil }

func (f *fakeBackend) Column(table string, row int64, column string) ([]byte, bool, error) {
	return f.columns[table][row][column], false, nil
}

func (f *fakeBackend) ResolveLongValue(table string, lvID uint32) ([]byte, error) { return nil, nil }

// compressed wraps s as an uncompressed (tag 0x17) LZXPRESS column, the
// cheapest fixture shape for exercising decompressedStr.
func compressed(s string) []byte { return append([]byte{0x17}, []byte(s)...) }

func le64(v uint64) []byte {
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
	return b
}

func id26(b byte) []byte {
	out := make([]byte, 26)
	for i := range out {
		out[i] = b
	}
	return out
}

func newFixture() *fakeBackend {
	rootID := id26(0x01)
	inboxID := id26(0x02)

	return &fakeBackend{
		rows: map[string]int64{
			"Mailbox": 1,
			"Folder_1": 2,
			"Message_1": 3,
			"Attachment_1": 1,
		},
		columns: map[string]map[int64]map[string][]byte{
			"Mailbox": {
				0: {
					"DisplayName": compressed("Test User"),
					"MailboxNumber": le64(1),
					"MailboxGuid": make([]byte, 16),
					"MessageCount": le64(2),
				},
			},
			"Folder_1": {
				0: {
					"DisplayName": compressed("Root"),
					"FolderId": rootID,
					"ParentFolderId": rootID,
					"SpecialFolderNumber": {byte(entity.SpecialRoot)},
					"MessageCount": le64(0),
				},
				1: {
					"DisplayName": compressed("Inbox"),
					"FolderId": inboxID,
					"ParentFolderId": rootID,
					"SpecialFolderNumber": {byte(entity.SpecialInbox)},
					"MessageCount": le64(2),
				},
			},
			"Message_1": {
				// A: inbox, doc 20
				0: {
					"FolderId": inboxID,
					"MessageDocumentId": le64(20),
					"MessageClass": compressed("IPM.Note"),
				},
				// B: inbox, doc 10
				1: {
					"FolderId": inboxID,
					"MessageDocumentId": le64(10),
					"MessageClass": compressed("IPM.Note"),
				},
				// C: unknown folder -> orphan, doc 5
				2: {
					"FolderId": id26(0xEE),
					"MessageDocumentId": le64(5),
					"MessageClass": compressed("IPM.Note"),
				},
			},
			"Attachment_1": {
				0: {
					"Inid": le64(42),
					"FileName": compressed("file.txt"),
					"ContentType": compressed("text/plain"),
					"AttachSize": le64(7),
					"AttachData": []byte("payload"),
				},
			},
		},
	}
}

func TestMailboxes(t *testing.T) {
	r := New(newFixture(), nil)
	mbs, err := r.Mailboxes()
	if err != nil {
		t.Fatal(err)
	}
	if len(mbs) != 1 || mbs[0].OwnerDisplayName != "Test User" || mbs[0].Number != 1 {
		t.Fatalf("got %+v", mbs)
	}
}

func TestMailboxesEmptyIsMalformed(t *testing.T) {
	r := New(&fakeBackend{}, nil)
	if _, err := r.Mailboxes(); err == nil {
		t.Fatal("expected error for empty Mailbox table")
	}
}

func TestFoldersOrphanRouting(t *testing.T) {
	r := New(newFixture(), nil)
	top, err := r.Folders(1)
	if err != nil {
		t.Fatal(err)
	}
	if len(top.Folders) != 3 {
		t.Fatalf("expected root+inbox+orphan, got %d", len(top.Folders))
	}
	unknown := entity.FolderID{}
	copy(unknown[:], id26(0xEE))
	resolved := top.Resolve(unknown)
	if resolved.DisplayName != "Orphaned" {
		t.Fatalf("expected orphan routing, got %q", resolved.DisplayName)
	}
	if resolved.ParentID != top.RootID() {
		t.Fatal("orphan folder must be rooted under the mailbox root")
	}
}

func TestTopologyOrdered(t *testing.T) {
	r := New(newFixture(), nil)
	top, _ := r.Folders(1)
	ordered := top.Ordered()
	if len(ordered) != 3 {
		t.Fatalf("got %d folders", len(ordered))
	}
	if ordered[0].DisplayName != "Root" || ordered[1].DisplayName != "Inbox" || ordered[2].DisplayName != "Orphaned" {
		var names []string
		for _, f := range ordered {
			names = append(names, f.DisplayName)
		}
		t.Fatalf("unexpected order: %v", names)
	}
}

func TestAttachmentStoreFetch(t *testing.T) {
	r := New(newFixture(), nil)
	store, err := r.AttachmentStore(1)
	if err != nil {
		t.Fatal(err)
	}
	filename, contentType, size, fetch := store.FetchAttachment("Message_1", 42)
	if filename != "file.txt" || contentType != "text/plain" || size != 7 {
		t.Fatalf("got filename=%q contentType=%q size=%d", filename, contentType, size)
	}
	data, err := fetch()
	if err != nil || string(data) != "payload" {
		t.Fatalf("fetch = %q, %v", data, err)
	}
}

func TestAttachmentStoreFetchMissing(t *testing.T) {
	r := New(newFixture(), nil)
	store, _ := r.AttachmentStore(1)
	filename, _, _, fetch := store.FetchAttachment("Message_1", 999)
	if filename != "" || fetch != nil {
		t.Fatal("expected empty result for unknown Inid")
	}
}

func TestMessageIteratorOrderingAndOrphanRouting(t *testing.T) {
	r := New(newFixture(), nil)
	top, err := r.Folders(1)
	if err != nil {
		t.Fatal(err)
	}
	attachments, err := r.AttachmentStore(1)
	if err != nil {
		t.Fatal(err)
	}
	it, err := r.Messages(1, top, attachments)
	if err != nil {
		t.Fatal(err)
	}
	if it.Len() != 3 {
		t.Fatalf("expected 3 messages, got %d", it.Len())
	}

	var gotDocIDs []int64
	var gotFolders []string
	for {
		_, folder, ok := it.Next()
		if !ok {
			break
		}
		gotDocIDs = append(gotDocIDs, it.LastDocID())
		gotFolders = append(gotFolders, folder.DisplayName)
	}

	wantDocIDs := []int64{10, 20, 5}
	if len(gotDocIDs) != len(wantDocIDs) {
		t.Fatalf("got %v", gotDocIDs)
	}
	for i := range wantDocIDs {
		if gotDocIDs[i] != wantDocIDs[i] {
			t.Fatalf("doc order = %v, want %v", gotDocIDs, wantDocIDs)
		}
	}
	if gotFolders[0] != "Inbox" || gotFolders[1] != "Inbox" || gotFolders[2] != "Orphaned" {
		t.Fatalf("folder routing = %v", gotFolders)
	}
}

func TestMessageIteratorSeek(t *testing.T) {
	r := New(newFixture(), nil)
	top, _ := r.Folders(1)
	attachments, _ := r.AttachmentStore(1)
	it, err := r.Messages(1, top, attachments)
	if err != nil {
		t.Fatal(err)
	}

	it.Seek(10) // resume just after message B (doc 10)
	_, _, ok := it.Next()
	if !ok {
		t.Fatal("expected a message after seeking")
	}
	if it.LastDocID() != 20 {
		t.Fatalf("expected to resume at doc 20, got %d", it.LastDocID())
	}
}
