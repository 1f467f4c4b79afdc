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
	"encoding/binary"

	"github.com/edbxtool/edbx/internal/diag"
)

// decodeXCA implements the MS-XCA plain LZ77 decoder used by the 0x18
// (2-byte uncompressed-size header) and 0x19 (4-byte header) tags.
//
// payload starts immediately after the size header; hdrWidth is 2 for
// 0x18 and 4 for 0x19, matching the header widths.
func decodeXCA(payload []byte, hdrWidth int) ([]byte, error) {
	if len(payload) < hdrWidth {
		return nil, diag.New(diag.DecompressionFailed, "truncated LZXPRESS size header")
	}

	var outLen int
	if hdrWidth == 2 {
		outLen = int(binary.LittleEndian.Uint16(payload[:2]))
	} else {
		outLen = int(binary.LittleEndian.Uint32(payload[:4]))
	}
	body := payload[hdrWidth:]

	out := make([]byte, 0, outLen)
	pos := 0
	var flags uint32
	var flagBits uint

	// Length extensions past the 3-bit field share nibbles pairwise:
	// the first extended match consumes the low nibble of an extension
	// byte, the second reuses that byte's high nibble.
	nibblePos := -1

	readByte := func() (byte, bool) {
		if pos >= len(body) {
			return 0, false
		}
		b := body[pos]
		pos++
		return b, true
	}
	readUint16 := func() (uint16, bool) {
		if pos+2 > len(body) {
			return 0, false
		}
		v := binary.LittleEndian.Uint16(body[pos : pos+2])
		pos += 2
		return v, true
	}

	for len(out) < outLen {
		if flagBits == 0 {
			if pos+4 > len(body) {
				return nil, diag.New(diag.DecompressionFailed, "truncated LZXPRESS flag word")
			}
			flags = binary.LittleEndian.Uint32(body[pos : pos+4])
			pos += 4
			flagBits = 32
		}
		isMatch := flags&1 != 0
		flags >>= 1
		flagBits--

		if !isMatch {
			b, ok := readByte()
			if !ok {
				return nil, diag.New(diag.DecompressionFailed, "LZXPRESS literal past end of input")
			}
			out = append(out, b)
			continue
		}

		matchWord, ok := readUint16()
		if !ok {
			return nil, diag.New(diag.DecompressionFailed, "LZXPRESS match word past end of input")
		}
		length := int(matchWord & 0x7)
		offset := int(matchWord>>3) + 1

		if length == 7 {
			var nibble int
			if nibblePos >= 0 {
				nibble = int(body[nibblePos] >> 4)
				nibblePos = -1
			} else {
				b, ok := readByte()
				if !ok {
					return nil, diag.New(diag.DecompressionFailed, "LZXPRESS length nibble past end of input")
				}
				nibblePos = pos - 1
				nibble = int(b & 0xF)
			}
			length = nibble
			if nibble == 15 {
				// Nibble overflowed: chain into a byte, then a two-byte
				// extension if the byte saturates too.
				b, ok := readByte()
				if !ok {
					return nil, diag.New(diag.DecompressionFailed, "LZXPRESS length extension past end of input")
				}
				length = int(b)
				if length == 255 {
					ext, ok := readUint16()
					if !ok {
						return nil, diag.New(diag.DecompressionFailed, "LZXPRESS wide length extension past end of input")
					}
					if int(ext) < 15+7 {
						return nil, diag.New(diag.MalformedDatabase, "LZXPRESS wide length below extension threshold")
					}
					length = int(ext) - 15 - 7
				}
				length += 15
			}
			length += 7
		}
		length += 3

		if offset > len(out) {
			return nil, diag.New(diag.MalformedDatabase, "LZXPRESS match offset precedes output start")
		}

		// Copy byte-by-byte: matches may overlap already-produced output.
		start := len(out) - offset
		for i := 0; i < length; i++ {
			out = append(out, out[start+i])
		}
	}

	if len(out) != outLen {
		return nil, diag.New(diag.MalformedDatabase, "LZXPRESS output length mismatch")
	}
	return out, nil
}
