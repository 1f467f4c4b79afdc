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
	"github.com/google/uuid"

	"github.com/edbxtool/edbx/internal/diag"
	"github.com/edbxtool/edbx/internal/entity"
	"github.com/edbxtool/edbx/internal/ese"
)

// Mailboxes returns every mailbox in the "Mailbox" table, in
// table order. A missing Mailbox table is a MalformedDatabase error -
// every EDB mailbox export database carries exactly one.
func (r *Reader) Mailboxes() ([]*entity.Mailbox, error) {
	tbl, err := ese.OpenTable(r.Backend, "Mailbox")
	if err != nil {
		return nil, err
	}

	out := make([]*entity.Mailbox, 0, tbl.Len())
	for i := int64(0); i < tbl.Len(); i++ {
		row := tbl.Row(i)
		mb := &entity.Mailbox{
			OwnerDisplayName: r.decompressedStr(row, "DisplayName"),
		}
		if v, ok := row.ColumnUint64("MailboxNumber"); ok {
			mb.Number = int(v)
		} else {
			mb.Number = int(i)
		}
		if guid := r.rawBytes(row, "MailboxGuid"); len(guid) == 16 {
			copy(mb.GUID[:], guid)
		} else if id, err := uuid.NewRandom(); err == nil {
			// No MailboxGuid column (or a malformed one): the PST store's
			// PR_RECORD_KEY and EntryIDs still need a stable 16-byte
			// provider UID, so synthesize one rather than writing zeros.
			copy(mb.GUID[:], id[:])
		}
		if v, ok := row.ColumnUint64("MessageCount"); ok {
			mb.MessageCount = int64(v)
		}
		if t := fileTimeOrNil(row, "LastLogonTime"); t != nil {
			mb.LastLogon = *t
		}
		out = append(out, mb)
	}
	if len(out) == 0 {
		return nil, diag.New(diag.MalformedDatabase, "no rows in Mailbox table")
	}
	return out, nil
}
