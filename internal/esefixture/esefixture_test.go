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

package esefixture

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/edbxtool/edbx/internal/diag"
)

func writeFixture(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fixture.json")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func b64(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

func TestLoadInlineColumn(t *testing.T) {
	path := writeFixture(t, `{
		"tables": {
			"Mailbox": [
				{"DisplayName": {"b64": "`+b64("Test User")+`"}}
			]
		}
	}`)

	b, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	n, err := b.RowCount("Mailbox")
	if err != nil || n != 1 {
		t.Fatalf("RowCount = %d, %v", n, err)
	}
	data, isLV, err := b.Column("Mailbox", 0, "DisplayName")
	if err != nil || isLV || string(data) != "Test User" {
		t.Fatalf("Column = %q, %v, %v", data, isLV, err)
	}
}

func TestLoadLongValue(t *testing.T) {
	path := writeFixture(t, `{
		"tables": {
			"Message_1": [
				{"NativeBody": {"lv": 7}}
			]
		},
		"longValues": {
			"Message_1": {"7": "`+b64("resolved body")+`"}
		}
	}`)

	b, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	data, isLV, err := b.Column("Message_1", 0, "NativeBody")
	if err != nil || !isLV || len(data) != 4 {
		t.Fatalf("Column = %v, %v, %v", data, isLV, err)
	}
	id := uint32(data[0]) | uint32(data[1])<<8 | uint32(data[2])<<16 | uint32(data[3])<<24
	resolved, err := b.ResolveLongValue("Message_1", id)
	if err != nil || string(resolved) != "resolved body" {
		t.Fatalf("ResolveLongValue = %q, %v", resolved, err)
	}
}

func TestLoadMissingLongValue(t *testing.T) {
	path := writeFixture(t, `{"tables": {"Message_1": [{"NativeBody": {"lv": 1}}]}}`)
	b, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	_, err = b.ResolveLongValue("Message_1", 99)
	if diag.KindOf(err) != diag.LongValueMissing {
		t.Fatalf("expected LongValueMissing, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.json"))
	if diag.KindOf(err) != diag.InputNotFound {
		t.Fatalf("expected InputNotFound, got %v", err)
	}
}

func TestLoadMalformedJSON(t *testing.T) {
	path := writeFixture(t, `not json`)
	_, err := Load(path)
	if diag.KindOf(err) != diag.MalformedDatabase {
		t.Fatalf("expected MalformedDatabase, got %v", err)
	}
}

func TestTableNamesPrefix(t *testing.T) {
	path := writeFixture(t, `{
		"tables": {
			"Folder_1": [{}],
			"Folder_2": [{}],
			"Message_1": [{}]
		}
	}`)
	b, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	names, err := b.TableNames("Folder_")
	if err != nil || len(names) != 2 {
		t.Fatalf("TableNames = %v, %v", names, err)
	}
}
