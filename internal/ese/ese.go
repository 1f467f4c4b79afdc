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

// Package ese normalizes raw ESE (JET Blue) row and long-value access
// behind a single narrow interface. This package never parses pages or
// B-trees itself - it specifies the capability any conforming ESE
// backend must expose and adapts it into the typed Row/Table views the
// rest of the engines consume. A conforming backend is free to be a
// third-party ESE parser; this package only depends on the narrow
// Backend interface below.
package ese

import (
	"fmt"

	"github.com/edbxtool/edbx/internal/diag"
)

// Backend is the capability interface an ESE/JET Blue parser must
// implement. It is intentionally narrow: table enumeration by name
// pattern, per-row column access returning raw bytes plus an
// is-long-value flag, and long-value resolution by 4-byte LV-ID. Page
// and B-tree traversal are the backend's concern, not this package's.
type Backend interface {
	// TableNames returns every table name matching a glob-style prefix,
	// e.g. "Folder_" or "Message_" (tables are suffixed per-mailbox).
	TableNames(prefix string) ([]string, error)

	// RowCount returns the number of rows in table.
	RowCount(table string) (int64, error)

	// Column returns the raw bytes stored for (table, row, column) and
	// whether the value is a long-value reference (in which case the
	// bytes are the 4-byte LV-ID, not the value itself).
	Column(table string, row int64, column string) (data []byte, isLongValue bool, err error)

	// ResolveLongValue returns the full byte sequence for a long-value
	// ID previously returned by Column in a table's long-value store.
	ResolveLongValue(table string, lvID uint32) ([]byte, error)
}

// Row is a normalized view over one ESE row: column access is resolved
// through long-value indirection transparently, so callers never see
// the is-long-value flag or handle LV-IDs themselves.
type Row struct {
	backend Backend
	table   string
	index   int64
}

// NewRow builds a Row bound to a specific (table, index) pair.
func NewRow(backend Backend, table string, index int64) *Row {
	return &Row{backend: backend, table: table, index: index}
}

// Index returns the row's ordinal position within its table, used as
// the stable record_index (MessageDocumentId is a column of its own).
func (r *Row) Index() int64 { return r.index }

// Table returns the row's source table name.
func (r *Row) Table() string { return r.table }

// Bytes returns the fully-resolved raw bytes for column, following
// long-value indirection when needed.
func (r *Row) Bytes(column string) ([]byte, error) {
	data, isLV, err := r.backend.Column(r.table, r.index, column)
	if err != nil {
		return nil, diag.Wrap(diag.MalformedDatabase, fmt.Sprintf("reading column %s", column), err).
			WithContext(r.table, r.index, column)
	}
	if !isLV {
		return data, nil
	}
	if len(data) < 4 {
		return nil, diag.New(diag.MalformedDatabase, "long-value reference shorter than 4 bytes").
			WithContext(r.table, r.index, column)
	}
	lvID := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
	full, err := r.backend.ResolveLongValue(r.table, lvID)
	if err != nil {
		return nil, diag.Wrap(diag.LongValueMissing, fmt.Sprintf("resolving long value for column %s", column), err).
			WithContext(r.table, r.index, column)
	}
	return full, nil
}

// ColumnUint64 reads column as a little-endian 8-byte integer (the
// shape of a FILETIME or Currency column), returning ok=false if the
// column is absent or the wrong width.
func (r *Row) ColumnUint64(column string) (uint64, bool) {
	data, err := r.Bytes(column)
	if err != nil || len(data) < 8 {
		return 0, false
	}
	var v uint64
	for i := 0; i < 8; i++ {
		v |= uint64(data[i]) << (8 * i)
	}
	return v, true
}

// ColumnByteDefault reads column as a single byte, returning def if the
// column is absent.
func (r *Row) ColumnByteDefault(column string, def byte) byte {
	data, err := r.Bytes(column)
	if err != nil || len(data) == 0 {
		return def
	}
	return data[0]
}

// ColumnBool reads column as a one-byte boolean flag: present and
// non-zero is true, anything else is false.
func (r *Row) ColumnBool(column string) bool {
	data, err := r.Bytes(column)
	if err != nil || len(data) == 0 {
		return false
	}
	return data[0] != 0
}

// Table is an iterable, stably-ordered view over one ESE table, used
// by the entity assembler to walk Message_XXX/Folder_XXX rows and by
// the message iterator as the source of resume checkpoints.
type Table struct {
	backend Backend
	name    string
	count   int64
}

// OpenTable resolves table's row count once and returns a Table handle.
func OpenTable(backend Backend, name string) (*Table, error) {
	n, err := backend.RowCount(name)
	if err != nil {
		return nil, diag.Wrap(diag.MalformedDatabase, "counting rows", err).WithContext(name, 0, "")
	}
	return &Table{backend: backend, name: name, count: n}, nil
}

// Name returns the table's name.
func (t *Table) Name() string { return t.name }

// Len returns the table's row count.
func (t *Table) Len() int64 { return t.count }

// Row returns a normalized Row for the given 0-based index.
func (t *Table) Row(index int64) *Row {
	return NewRow(t.backend, t.name, index)
}

// FindTables enumerates tables matching prefix on backend and opens each.
func FindTables(backend Backend, prefix string) ([]*Table, error) {
	names, err := backend.TableNames(prefix)
	if err != nil {
		return nil, diag.Wrap(diag.MalformedDatabase, "enumerating tables", err)
	}
	out := make([]*Table, 0, len(names))
	for _, n := range names {
		tbl, err := OpenTable(backend, n)
		if err != nil {
			return nil, err
		}
		out = append(out, tbl)
	}
	return out, nil
}
