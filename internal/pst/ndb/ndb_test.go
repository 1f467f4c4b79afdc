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

package ndb

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/edbxtool/edbx/internal/bytesx"
)

func TestMakeNIDRoundTrip(t *testing.T) {
	nid := MakeNID(NIDTypeNormalMessage, 7)
	if nid.Type() != NIDTypeNormalMessage {
		t.Fatalf("Type() = %#x", nid.Type())
	}
	if uint32(nid)>>5 != 7 {
		t.Fatalf("index = %d", uint32(nid)>>5)
	}
}

func TestAllocNIDMonotonicPerType(t *testing.T) {
	w := NewWriter()
	a := w.AllocNID(NIDTypeNormalMessage)
	b := w.AllocNID(NIDTypeNormalMessage)
	f := w.AllocNID(NIDTypeNormalFolder)
	if b <= a {
		t.Fatalf("message NIDs not increasing: %#x then %#x", a, b)
	}
	if f.Type() != NIDTypeNormalFolder {
		t.Fatalf("folder NID has type %#x", f.Type())
	}
	// The folder counter is independent of the message counter.
	if uint32(f)>>5 != 1 {
		t.Fatalf("folder index = %d, want 1", uint32(f)>>5)
	}
}

func TestWriteBlockAlignmentAndTrailer(t *testing.T) {
	w := NewWriter()
	data := []byte("some block payload")
	bid, err := w.WriteBlock(data)
	if err != nil {
		t.Fatal(err)
	}
	if bid == 0 {
		t.Fatal("expected non-zero BID")
	}
	if len(w.content)%blockAlign != 0 {
		t.Fatalf("block not 64-byte aligned: %d", len(w.content))
	}

	trailer := w.content[len(w.content)-16:]
	if got := binary.LittleEndian.Uint16(trailer[0:2]); int(got) != len(data) {
		t.Fatalf("trailer cb = %d, want %d", got, len(data))
	}
	if got := binary.LittleEndian.Uint32(trailer[4:8]); got != bytesx.CRC32NDB(data) {
		t.Fatalf("trailer CRC mismatch")
	}
}

func TestWriteBlockRejectsOversizedData(t *testing.T) {
	w := NewWriter()
	if _, err := w.WriteBlock(make([]byte, maxBlockData+1)); err == nil {
		t.Fatal("expected oversized block to be rejected")
	}
}

func TestWriteDataTreeSplitsIntoXBlock(t *testing.T) {
	w := NewWriter()
	big := make([]byte, 3*maxBlockData+100)
	for i := range big {
		big[i] = byte(i)
	}
	root, err := w.WriteDataTree(big)
	if err != nil {
		t.Fatal(err)
	}
	if root == 0 {
		t.Fatal("expected XBLOCK root BID")
	}
	// 4 leaves plus the XBLOCK itself.
	if w.BlocksWritten() != 5 {
		t.Fatalf("BlocksWritten = %d, want 5", w.BlocksWritten())
	}
}

func TestWriteSubnodeTreeSortsEntries(t *testing.T) {
	w := NewWriter()
	entries := []SubnodeEntry{
		{NID: MakeNID(NIDTypeAttachment, 2), DataBID: 8},
		{NID: MakeNID(NIDTypeRecipientTable, 1), DataBID: 12},
		{NID: MakeNID(NIDTypeAttachment, 1), DataBID: 4},
	}
	root, err := w.WriteSubnodeTree(entries)
	if err != nil {
		t.Fatal(err)
	}
	if root == 0 {
		t.Fatal("expected SLBLOCK root BID")
	}
	// The SLBLOCK is the only block written; decode its entries and
	// check NID ordering.
	raw := w.content
	cEnt := binary.LittleEndian.Uint16(raw[2:4])
	if cEnt != 3 {
		t.Fatalf("cEnt = %d", cEnt)
	}
	var prev uint64
	for i := 0; i < int(cEnt); i++ {
		nid := binary.LittleEndian.Uint64(raw[subnodeHeaderLen+slEntryLen*i:])
		if nid < prev {
			t.Fatalf("subnode entries not sorted by NID")
		}
		prev = nid
	}
}

func TestBuildEmitsHeaderAndAMap(t *testing.T) {
	w := NewWriter()
	bid, err := w.WriteBlock([]byte("node data"))
	if err != nil {
		t.Fatal(err)
	}
	w.PutNode(NID_MESSAGE_STORE, bid, 0, 0)

	out := w.Build()
	if !bytes.Equal(out[0:4], []byte("!BDN")) {
		t.Fatalf("magic = %q", out[0:4])
	}
	if binary.LittleEndian.Uint16(out[12:14]) != 23 {
		t.Fatal("wVer != 23")
	}
	if got := binary.LittleEndian.Uint64(out[184:192]); got != uint64(len(out)) {
		t.Fatalf("header file size = %d, actual %d", got, len(out))
	}
	if out[513] != 0 {
		t.Fatal("bCryptMethod must be 0")
	}
	wantCRC := bytesx.CRC32NDB(out[:524])
	if got := binary.LittleEndian.Uint32(out[524:528]); got != wantCRC {
		t.Fatal("header trailer CRC mismatch")
	}

	// cbAMapFree must account for every byte of the final file,
	// including the AMap pages themselves.
	const extent = 253952
	fileSize := uint64(len(out))
	numMaps := (fileSize + extent - 1) / extent
	marked := (fileSize + 63) / 64
	wantFree := numMaps*extent - marked*64
	if got := binary.LittleEndian.Uint64(out[200:208]); got != wantFree {
		t.Fatalf("cbAMapFree = %d, want %d", got, wantFree)
	}
}

func TestBuildDeterministic(t *testing.T) {
	build := func() []byte {
		w := NewWriter()
		b1, _ := w.WriteBlock([]byte("first"))
		b2, _ := w.WriteBlock([]byte("second"))
		w.PutNode(NID_MESSAGE_STORE, b1, 0, 0)
		w.PutNode(NID_ROOT_FOLDER, b2, 0, 0)
		return w.Build()
	}
	if !bytes.Equal(build(), build()) {
		t.Fatal("two identical input sequences produced different bytes")
	}
}
