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

// Package edbreader is the load-time half of the EDB entity model:
// it walks the Mailbox and Folder_XXX tables a conforming ese.Backend
// exposes and builds an arena of Folder records indexed by FolderID,
// with parent/child edges resolved in one pass.
// Message/CalendarEvent/Contact assembly itself stays in internal/entity;
// this package only owns discovery and the pull-based folder/message
// iteration.
package edbreader

import (
	"fmt"
	"time"

	"github.com/edbxtool/edbx/internal/bytesx"
	"github.com/edbxtool/edbx/internal/diag"
	"github.com/edbxtool/edbx/internal/ese"
	"github.com/edbxtool/edbx/internal/lzxpress"
	"github.com/edbxtool/edbx/internal/metrics"
)

// Reader adapts one ese.Backend into the typed Mailbox/Folder arena and
// message iteration the rest of the toolkit consumes. It is read-only
// and holds no mutable state beyond the diagnostics report: the ESE
// parser itself is treated as a read-only random-access byte provider.
type Reader struct {
	Backend ese.Backend
	Report  *diag.Report
}

// New returns a Reader over backend, recording recoverable diagnostics
// on report (nil discards them).
func New(backend ese.Backend, report *diag.Report) *Reader {
	return &Reader{Backend: backend, Report: report}
}

func (r *Reader) record(table string, row int64, column string, err error) {
	if r.Report == nil || err == nil {
		return
	}
	r.Report.RecordErr(table, row, column, err)
}

// decompressedStr resolves column on row, decompresses it, and decodes
// it as lenient UTF-8 - the shared treatment for every compressed
// string column (MessageClass, DisplayName, and so on).
func (r *Reader) decompressedStr(row *ese.Row, column string) string {
	raw, err := row.Bytes(column)
	if err != nil || len(raw) == 0 {
		if err != nil {
			r.record(row.Table(), row.Index(), column, err)
		}
		return ""
	}
	metrics.DecompressionVariant.WithLabelValues(fmt.Sprintf("0x%02x", raw[0])).Inc()
	out, err := lzxpress.Decompress(raw)
	if err != nil {
		r.record(row.Table(), row.Index(), column, err)
		return ""
	}
	return bytesx.DecodeUTF8Lenient(out)
}

func (r *Reader) rawBytes(row *ese.Row, column string) []byte {
	raw, err := row.Bytes(column)
	if err != nil {
		r.record(row.Table(), row.Index(), column, err)
		return nil
	}
	return raw
}

func mailboxTableSuffix(n int) string { return fmt.Sprintf("%d", n) }

func fileTimeOrNil(row *ese.Row, column string) *time.Time {
	v, ok := row.ColumnUint64(column)
	if !ok {
		return nil
	}
	t := bytesx.FromFileTime(v)
	return &t
}
