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

package lzxpress

import (
	"bytes"
	"testing"
)

func TestDecompressUncompressed(t *testing.T) {
	in := append([]byte{byte(TagUncompress)}, []byte("raw payload")...)
	out, err := Decompress(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != "raw payload" {
		t.Fatalf("got %q", out)
	}
}

func Test7BitASCII(t *testing.T) {
	// "Hi" packed as 7-bit octets: 'H'=0x48, 'i'=0x69.
	packed := pack7Bit([]byte("Hi"))
	in := append([]byte{byte(Tag7BitASCII)}, packed...)
	out, err := Decompress(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != "Hi" {
		t.Fatalf("got %q", out)
	}
}

// pack7Bit is the encoding inverse of unpack7Bit, used only by tests to
// build fixtures for the dictionary-free 7-bit form.
func pack7Bit(octets []byte) []byte {
	var out []byte
	var acc uint32
	var bits uint
	for _, o := range octets {
		acc |= uint32(o&0x7f) << bits
		bits += 7
		for bits >= 8 {
			out = append(out, byte(acc&0xff))
			acc >>= 8
			bits -= 8
		}
	}
	if bits > 0 {
		out = append(out, byte(acc&0xff))
	}
	return out
}

func Test7BitUTF16(t *testing.T) {
	// "A " as UTF-16LE code units (U+0041, U+0020): both have a zero
	// high byte, so the terminator must be found after pairing into
	// code units, not on the first raw octet.
	packed := pack7Bit([]byte{0x41, 0x00, 0x20, 0x00})
	in := append([]byte{byte(Tag7BitUTF16)}, packed...)
	out, err := Decompress(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{0x41, 0x00, 0x20, 0x00}
	if !bytes.Equal(out, want) {
		t.Fatalf("got %x, want %x", out, want)
	}
}

func Test7BitUTF16Terminator(t *testing.T) {
	// A genuine zero code unit (U+0000) terminates the string; the
	// octets that follow it in the packed stream must not appear in
	// the decoded output.
	packed := pack7Bit([]byte{0x41, 0x00, 0x00, 0x00, 0x42, 0x00})
	in := append([]byte{byte(Tag7BitUTF16)}, packed...)
	out, err := Decompress(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []byte{0x41, 0x00}
	if !bytes.Equal(out, want) {
		t.Fatalf("got %x, want %x", out, want)
	}
}

func TestDecompressXCALiteralOnly(t *testing.T) {
	// 0x18 0x0B 0x00 <payload> -> "Hello World" (11 bytes), encoded
	// here as a single all-literal flag word.
	in := []byte{byte(TagXCA), 0x0B, 0x00, 0x00, 0x00, 0x00, 0x00}
	in = append(in, []byte("Hello World")...)
	out, err := Decompress(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(out, []byte("Hello World")) {
		t.Fatalf("got %q", out)
	}
}

func TestDecompressXCAMatch(t *testing.T) {
	// literals "ab", then a match copying those 2 bytes (length 3 ->
	// encoded length field 0, offset 2 -> encoded offset field 1).
	flags := uint32(0x04) // bit0=0 (lit 'a'), bit1=0 (lit 'b'), bit2=1 (match)
	in := []byte{byte(TagXCA), 0x05, 0x00}
	in = append(in, byte(flags), byte(flags>>8), byte(flags>>16), byte(flags>>24))
	in = append(in, 'a', 'b')
	matchWord := uint16(1<<3 | 0)
	in = append(in, byte(matchWord), byte(matchWord>>8))
	out, err := Decompress(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != "ababa" {
		t.Fatalf("got %q", out)
	}
}

func TestDecompressXCANibbleLengthExtension(t *testing.T) {
	// literals "abc", then a match whose 3-bit length field saturates
	// at 7 and extends through the low nibble of the next byte:
	// nibble 2 -> length 2+7+3 = 12, offset 3, an overlapping copy.
	flags := uint32(0x08)
	in := []byte{byte(TagXCA), 0x0F, 0x00}
	in = append(in, byte(flags), byte(flags>>8), byte(flags>>16), byte(flags>>24))
	in = append(in, 'a', 'b', 'c')
	matchWord := uint16(2<<3 | 7)
	in = append(in, byte(matchWord), byte(matchWord>>8))
	in = append(in, 0x02)
	out, err := Decompress(in)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(out) != "abcabcabcabcabc" {
		t.Fatalf("got %q", out)
	}
}

func TestDecompressMalformedShortOutput(t *testing.T) {
	// Declares 100 bytes of output but supplies none: must fail Malformed.
	in := []byte{byte(TagXCA), 100, 0x00}
	_, err := Decompress(in)
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestDecompressUnsupportedTag(t *testing.T) {
	_, err := Decompress([]byte{0xFF, 0x01})
	if err == nil {
		t.Fatal("expected error")
	}
}
