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

import "github.com/edbxtool/edbx/internal/ese"

// attachmentStore implements entity.LongValueStore against one
// mailbox's Attachment_<N> table, indexed once by Inid (the identifier
// SubobjectsBlob's 0x21 markers carry).
type attachmentStore struct {
	reader *Reader
	tbl    *ese.Table
	byInid map[uint32]int64
}

// AttachmentStore opens mailboxNumber's Attachment_<N> table and
// returns a store ready to resolve Inid references found while
// assembling messages.
func (r *Reader) AttachmentStore(mailboxNumber int) (*attachmentStore, error) {
	tbl, err := ese.OpenTable(r.Backend, AttachmentTableName(mailboxNumber))
	if err != nil {
		return nil, err
	}
	s := &attachmentStore{reader: r, tbl: tbl, byInid: make(map[uint32]int64, tbl.Len())}
	for i := int64(0); i < tbl.Len(); i++ {
		row := tbl.Row(i)
		if v, ok := row.ColumnUint64("Inid"); ok {
			s.byInid[uint32(v)] = i
		}
	}
	return s, nil
}

// FetchAttachment implements entity.LongValueStore.
func (s *attachmentStore) FetchAttachment(table string, inid uint32) (filename, contentType string, size int64, fetch func() ([]byte, error)) {
	idx, ok := s.byInid[inid]
	if !ok {
		return "", "", 0, nil
	}
	row := s.tbl.Row(idx)
	filename = s.reader.decompressedStr(row, "FileName")
	contentType = s.reader.decompressedStr(row, "ContentType")
	if v, ok := row.ColumnUint64("AttachSize"); ok {
		size = int64(v)
	}
	fetch = func() ([]byte, error) {
		return row.Bytes("AttachData")
	}
	return filename, contentType, size, fetch
}
