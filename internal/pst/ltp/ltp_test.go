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

package ltp

import (
	"testing"
	"time"

	"github.com/edbxtool/edbx/internal/mapi"
	"github.com/edbxtool/edbx/internal/pst/ndb"
)

func TestWritePCRoundTripsThroughHeap(t *testing.T) {
	props := mapi.NewSet()
	props.PutStr(mapi.PR_SUBJECT_W, "Quarterly Report")
	props.Put(mapi.PR_IMPORTANCE, mapi.Long32(mapi.ImportanceHigh))
	props.Put(mapi.PR_HASATTACH, mapi.Bool32(true))
	props.Put(mapi.PR_CLIENT_SUBMIT_TIME, mapi.SysTime(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)))

	w := ndb.NewWriter()
	h, root, spill, err := WritePC(w, props)
	if err != nil {
		t.Fatalf("WritePC: %v", err)
	}
	if root == 0 {
		t.Fatal("expected non-zero PC root HID")
	}
	if len(spill) != 0 {
		t.Fatalf("small values must stay in the heap, got %d spilled", len(spill))
	}
	if len(h.pages) == 0 || len(h.pages[0].allocs) == 0 {
		t.Fatal("expected heap allocations for PC entries")
	}

	bid, err := h.Finish(w)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if bid == 0 {
		t.Fatal("expected non-zero data BID")
	}
}

func TestWritePCSpillsLargeValueToSubnode(t *testing.T) {
	big := make([]byte, 64*1024)
	for i := range big {
		big[i] = byte(i)
	}
	props := mapi.NewSet()
	props.Put(mapi.PR_ATTACH_DATA_BIN, mapi.Bin(big))
	props.PutStr(mapi.PR_ATTACH_LONG_FILENAME_W, "big.bin")

	w := ndb.NewWriter()
	h, _, spill, err := WritePC(w, props)
	if err != nil {
		t.Fatalf("WritePC: %v", err)
	}
	if len(spill) != 1 {
		t.Fatalf("expected exactly the payload to spill, got %d entries", len(spill))
	}
	if spill[0].DataBID == 0 {
		t.Fatal("expected spilled value to have a data BID")
	}
	if _, err := h.Finish(w); err != nil {
		t.Fatalf("Finish: %v", err)
	}
}

func TestWriteTCSmallRowMatrixStaysInHeap(t *testing.T) {
	columns := []TCColumn{
		{Tag: mapi.PR_DISPLAY_NAME_W, SlotSize: 4, Variable: true},
		{Tag: mapi.PR_CONTENT_COUNT, SlotSize: 4},
	}
	rows := []TCRow{
		{Cells: map[mapi.Tag][]byte{
			mapi.PR_DISPLAY_NAME_W: []byte("Inbox"),
			mapi.PR_CONTENT_COUNT: {5, 0, 0, 0},
		}},
		{Cells: map[mapi.Tag][]byte{
			mapi.PR_DISPLAY_NAME_W: []byte("Sent Items"),
			mapi.PR_CONTENT_COUNT: {12, 0, 0, 0},
		}},
	}

	w := ndb.NewWriter()
	tc, err := WriteTC(w, columns, rows)
	if err != nil {
		t.Fatalf("WriteTC: %v", err)
	}
	if tc.Subnode != nil {
		t.Fatal("expected small row matrix to stay inline in the heap")
	}
	if tc.Root == 0 {
		t.Fatal("expected non-zero TC root HID")
	}

	bid, err := tc.Heap.Finish(w)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if bid == 0 {
		t.Fatal("expected non-zero data BID")
	}
}

func TestWriteTCLargeRowMatrixSpillsToSubnode(t *testing.T) {
	columns := []TCColumn{
		{Tag: mapi.PR_SUBJECT_W, SlotSize: 4, Variable: true},
	}
	var rows []TCRow
	for i := 0; i < 3000; i++ {
		rows = append(rows, TCRow{Cells: map[mapi.Tag][]byte{
			mapi.PR_SUBJECT_W: []byte("row"),
		}})
	}

	w := ndb.NewWriter()
	tc, err := WriteTC(w, columns, rows)
	if err != nil {
		t.Fatalf("WriteTC: %v", err)
	}
	if tc.Subnode == nil {
		t.Fatal("expected large row matrix to spill into a subnode")
	}
	if tc.Subnode.DataBID == 0 {
		t.Fatal("expected subnode data BID to be set")
	}
}

func TestHeapAllocSpansMultiplePages(t *testing.T) {
	h := NewHeap(clientSigPC)
	var last HID
	for i := 0; i < 2000; i++ {
		last = h.Alloc([]byte("some property payload bytes"))
	}
	if len(h.pages) < 2 {
		t.Fatalf("expected heap to span multiple pages, got %d", len(h.pages))
	}

	w := ndb.NewWriter()
	h.SetRoot(last)
	bid, err := h.Finish(w)
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if bid == 0 {
		t.Fatal("expected non-zero data BID for multi-page heap")
	}
}
