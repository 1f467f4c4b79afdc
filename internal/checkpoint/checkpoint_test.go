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

package checkpoint

import (
	"path/filepath"
	"testing"
)

func TestLoadWithNoCheckpointReturnsNotOK(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "checkpoints.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if _, ok, err := s.Load("job-1"); err != nil || ok {
		t.Fatalf("Load on empty store: ok=%v err=%v", ok, err)
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "checkpoints.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	want := Cursor{FolderID: "folder-42", DocID: 1001}
	if err := s.Save("job-1", want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := s.Load("job-1")
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("Load = %+v, want %+v", got, want)
	}
}

func TestSaveOverwritesPriorCursor(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "checkpoints.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if err := s.Save("job-1", Cursor{FolderID: "a", DocID: 1}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Save("job-1", Cursor{FolderID: "b", DocID: 2}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, ok, err := s.Load("job-1")
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if got.FolderID != "b" || got.DocID != 2 {
		t.Fatalf("Load = %+v, want latest cursor", got)
	}
}

func TestClearRemovesCheckpoint(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "checkpoints.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if err := s.Save("job-1", Cursor{FolderID: "a", DocID: 1}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Clear("job-1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if _, ok, err := s.Load("job-1"); err != nil || ok {
		t.Fatalf("Load after Clear: ok=%v err=%v", ok, err)
	}
}

func TestJobsAreIndependent(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "checkpoints.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	if err := s.Save("job-a", Cursor{FolderID: "fa", DocID: 1}); err != nil {
		t.Fatalf("Save job-a: %v", err)
	}
	if err := s.Save("job-b", Cursor{FolderID: "fb", DocID: 2}); err != nil {
		t.Fatalf("Save job-b: %v", err)
	}

	a, ok, err := s.Load("job-a")
	if err != nil || !ok || a.FolderID != "fa" {
		t.Fatalf("Load job-a = %+v ok=%v err=%v", a, ok, err)
	}
	b, ok, err := s.Load("job-b")
	if err != nil || !ok || b.FolderID != "fb" {
		t.Fatalf("Load job-b = %+v ok=%v err=%v", b, ok, err)
	}
}
