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

// Package esefixture is the documented reference ese.Backend: since
// direct dependence on an external ESE-parsing library is explicitly
// out of scope, this package loads a JSON document
// describing tables/rows/columns/long-values and exposes it as a
// conforming ese.Backend. A production deployment supplies its own
// backend from a real ESE/JET Blue parser; this one exists so cmd/edbx
// and the test suite have something concrete to open.
package esefixture

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/edbxtool/edbx/internal/diag"
)

// cell is one JSON column value. Exactly one of B64 or LV must be set:
// B64 is the column's raw bytes, base64-encoded; LV marks the column as
// a long-value reference, with the referenced ID resolved against the
// document's top-level "longValues" table.
type cell struct {
	B64 string `json:"b64"`
	LV  *uint32 `json:"lv"`
}

// document is the on-disk shape of a fixture file.
type document struct {
	// Tables maps a table name ("Mailbox", "Folder_1", "Message_1",
	// "Attachment_1",...) to its rows, each row a column-name -> cell map.
	Tables map[string][]map[string]cell `json:"tables"`

	// LongValues maps a table name to its long-value store: decimal LV-ID
	// string -> base64-encoded bytes.
	LongValues map[string]map[string]string `json:"longValues"`
}

type resolvedCell struct {
	data        []byte
	isLongValue bool
}

// Backend is an in-memory ese.Backend loaded from a fixture document.
type Backend struct {
	rows       map[string][]map[string]resolvedCell
	longValues map[string]map[uint32][]byte
}

// Load reads path as a fixture document and returns a ready Backend.
// A missing file surfaces as InputNotFound; a file that fails to parse
// as the fixture schema surfaces as MalformedDatabase - both map to
// exit code 3 (input file not found or not an EDB) at the CLI layer.
func Load(path string) (*Backend, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, diag.Wrap(diag.InputNotFound, "opening input file "+path, err)
	}

	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, diag.Wrap(diag.MalformedDatabase, "parsing "+path+" as an EDB extraction fixture", err)
	}

	b := &Backend{
		rows: make(map[string][]map[string]resolvedCell, len(doc.Tables)),
		longValues: make(map[string]map[uint32][]byte, len(doc.LongValues)),
	}

	for table, rows := range doc.Tables {
		resolvedRows := make([]map[string]resolvedCell, len(rows))
		for i, row := range rows {
			resolved := make(map[string]resolvedCell, len(row))
			for column, c := range row {
				rc, err := resolveCell(c)
				if err != nil {
					return nil, diag.Wrap(diag.MalformedDatabase, "decoding column "+column, err).
						WithContext(table, int64(i), column)
				}
				resolved[column] = rc
			}
			resolvedRows[i] = resolved
		}
		b.rows[table] = resolvedRows
	}

	for table, lvs := range doc.LongValues {
		m := make(map[uint32][]byte, len(lvs))
		for idStr, b64 := range lvs {
			id, err := strconv.ParseUint(idStr, 10, 32)
			if err != nil {
				return nil, diag.Wrap(diag.MalformedDatabase, "parsing long-value ID "+idStr, err).WithContext(table, 0, "")
			}
			data, err := base64.StdEncoding.DecodeString(b64)
			if err != nil {
				return nil, diag.Wrap(diag.MalformedDatabase, "decoding long value "+idStr, err).WithContext(table, 0, "")
			}
			m[uint32(id)] = data
		}
		b.longValues[table] = m
	}

	return b, nil
}

func resolveCell(c cell) (resolvedCell, error) {
	if c.LV != nil {
		id := make([]byte, 4)
		id[0] = byte(*c.LV)
		id[1] = byte(*c.LV >> 8)
		id[2] = byte(*c.LV >> 16)
		id[3] = byte(*c.LV >> 24)
		return resolvedCell{data: id, isLongValue: true}, nil
	}
	if c.B64 == "" {
		return resolvedCell{}, nil
	}
	data, err := base64.StdEncoding.DecodeString(c.B64)
	if err != nil {
		return resolvedCell{}, err
	}
	return resolvedCell{data: data}, nil
}

// TableNames returns every table whose name starts with prefix, sorted
// for deterministic enumeration.
func (b *Backend) TableNames(prefix string) ([]string, error) {
	var out []string
	for name := range b.rows {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

// RowCount returns table's row count, 0 for a table absent from the
// fixture (a mailbox with no Calendar items, say, has no Calendar
// folder rows but is not malformed for it).
func (b *Backend) RowCount(table string) (int64, error) {
	return int64(len(b.rows[table])), nil
}

// Column returns the raw bytes and long-value flag for (table, row, column).
func (b *Backend) Column(table string, row int64, column string) ([]byte, bool, error) {
	rows := b.rows[table]
	if row < 0 || row >= int64(len(rows)) {
		return nil, false, nil
	}
	c := rows[row][column]
	return c.data, c.isLongValue, nil
}

// ResolveLongValue returns the long-value payload previously declared
// for (table, lvID) in the fixture's "longValues" section.
func (b *Backend) ResolveLongValue(table string, lvID uint32) ([]byte, error) {
	data, ok := b.longValues[table][lvID]
	if !ok {
		return nil, diag.New(diag.LongValueMissing, "no long value "+strconv.FormatUint(uint64(lvID), 10)+" in table "+table)
	}
	return data, nil
}
