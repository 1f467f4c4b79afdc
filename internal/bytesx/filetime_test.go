package bytesx

import (
	"testing"
	"time"
)

func TestFileTimeRoundTrip(t *testing.T) {
	cases := []time.Time{
		time.Date(1601, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 15, 12, 30, 45, 0, time.UTC),
		time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC),
	}
	for _, want := range cases {
		ft := ToFileTime(want)
		got := FromFileTime(ft)
		if !got.Equal(want) {
			t.Errorf("round trip for %v: got %v", want, got)
		}
	}
}

func TestCRC32NDB(t *testing.T) {
	// The all-zero-length input must CRC to zero regardless of table
	// contents; this is a property of any CRC with a zero initial
	// register and no final XOR.
	if got := CRC32NDB(nil); got != 0 {
		t.Errorf("CRC32NDB(nil) = %x, want 0", got)
	}
	a := CRC32NDB([]byte("hello world"))
	b := CRC32NDB([]byte("hello world"))
	if a != b {
		t.Errorf("CRC32NDB not deterministic: %x != %x", a, b)
	}
	if CRC32NDB([]byte("hello world")) == CRC32NDB([]byte("Hello world")) {
		t.Errorf("CRC32NDB collided on a single-byte change")
	}
}

func TestReadVLQ(t *testing.T) {
	cases := []struct {
		in []byte
		value int
		consumed int
	}{
		{[]byte{0x05}, 5, 1},
		{[]byte{0x7f}, 0x7f, 1},
		{[]byte{0x80, 0x01}, 0x80, 2},
		{[]byte{0xff, 0x7f}, 0x3fff, 2},
	}
	for _, c := range cases {
		v, n, err := ReadVLQ(c.in)
		if err != nil {
			t.Fatalf("ReadVLQ(%v): %v", c.in, err)
		}
		if v != c.value || n != c.consumed {
			t.Errorf("ReadVLQ(%v) = %d,%d want %d,%d", c.in, v, n, c.value, c.consumed)
		}
	}
	if _, _, err := ReadVLQ([]byte{0x80}); err == nil {
		t.Errorf("expected truncated VLQ error")
	}
}

func TestUTF16LERoundTrip(t *testing.T) {
	s := "Привет"
	enc := EncodeUTF16LE(s)
	if len(enc) != len([]rune(s))*2 {
		// Привет is all BMP runes, one UTF-16 unit each.
		t.Fatalf("unexpected encoded length %d", len(enc))
	}
	dec := DecodeUTF16LE(enc)
	if dec != s {
		t.Errorf("DecodeUTF16LE(EncodeUTF16LE(%q)) = %q", s, dec)
	}
}
