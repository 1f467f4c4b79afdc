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

package ese

import "testing"

type fakeBackend struct {
	tables     map[string][]string
	rows       map[string]int64
	columns    map[string]map[int64]map[string][]byte
	longValues map[string]map[uint32][]byte
}

func (f *fakeBackend) TableNames(prefix string) ([]string, error) {
	return f.tables[prefix], nil
}

func (f *fakeBackend) RowCount(table string) (int64, error) {
	return f.rows[table], nil
}

func (f *fakeBackend) Column(table string, row int64, column string) ([]byte, bool, error) {
	data := f.columns[table][row][column]
	if len(data) == 4 && column == "LongCol" {
		return data, true, nil
	}
	return data, false, nil
}

func (f *fakeBackend) ResolveLongValue(table string, lvID uint32) ([]byte, error) {
	return f.longValues[table][lvID], nil
}

func TestRowBytesDirect(t *testing.T) {
	fb := &fakeBackend{
		columns: map[string]map[int64]map[string][]byte{
			"Message_1": {0: {"Subject": []byte("hello")}},
		},
	}
	row := NewRow(fb, "Message_1", 0)
	got, err := row.Bytes("Subject")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello" {
		t.Fatalf("got %q", got)
	}
}

func TestRowBytesLongValue(t *testing.T) {
	fb := &fakeBackend{
		columns: map[string]map[int64]map[string][]byte{
			"Message_1": {0: {"LongCol": {1, 0, 0, 0}}},
		},
		longValues: map[string]map[uint32][]byte{
			"Message_1": {1: []byte("resolved body")},
		},
	}
	row := NewRow(fb, "Message_1", 0)
	got, err := row.Bytes("LongCol")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "resolved body" {
		t.Fatalf("got %q", got)
	}
}

func TestFindTables(t *testing.T) {
	fb := &fakeBackend{
		tables: map[string][]string{"Message_": {"Message_1", "Message_2"}},
		rows: map[string]int64{"Message_1": 3, "Message_2": 0},
	}
	tables, err := FindTables(fb, "Message_")
	if err != nil {
		t.Fatal(err)
	}
	if len(tables) != 2 || tables[0].Len() != 3 {
		t.Fatalf("got %+v", tables)
	}
}
