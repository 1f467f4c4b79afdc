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

package bytesx

import (
	"errors"
	"unicode/utf16"
	"unicode/utf8"
)

// ErrTruncatedVLQ is returned by ReadVLQ when the high-bit-set chain
// never terminates within the supplied slice.
var ErrTruncatedVLQ = errors.New("bytesx: truncated VLQ length")

// ReadVLQ decodes the PropertyBlob variable-length quantity used ahead
// of subject/string payloads: a single byte if its value is below 0x80,
// otherwise a little-endian base-128 accumulation that terminates on
// the first byte with the high bit clear. Multi-byte forms past 16KiB
// have not been observed in real databases; the accumulator handles
// them anyway.
func ReadVLQ(data []byte) (value int, consumed int, err error) {
	shift := uint(0)
	for i := 0; i < len(data); i++ {
		b := data[i]
		value |= int(b&0x7f) << shift
		consumed++
		if b&0x80 == 0 {
			return value, consumed, nil
		}
		shift += 7
	}
	return 0, 0, ErrTruncatedVLQ
}

// DecodeUTF16LE decodes raw little-endian UTF-16 bytes to a Go string,
// substituting U+FFFD for any invalid or incomplete surrogate and
// dropping a dangling trailing byte.
func DecodeUTF16LE(data []byte) string {
	if len(data)%2 != 0 {
		data = data[:len(data)-1]
	}
	units := make([]uint16, len(data)/2)
	for i := range units {
		units[i] = uint16(data[2*i]) | uint16(data[2*i+1])<<8
	}
	runes := utf16.Decode(units)
	return string(runes)
}

// DecodeUTF8Lenient decodes data as UTF-8, substituting U+FFFD for any
// invalid byte sequence rather than failing.
func DecodeUTF8Lenient(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	buf := make([]rune, 0, len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		buf = append(buf, r)
		data = data[size:]
	}
	return string(buf)
}

// EncodeUTF16LE encodes s to little-endian UTF-16 bytes, with no BOM -
// the encoding the PST writer's Property Context uses for every string
// property.
func EncodeUTF16LE(s string) []byte {
	units := utf16.Encode([]rune(s))
	out := make([]byte, len(units)*2)
	for i, u := range units {
		out[2*i] = byte(u)
		out[2*i+1] = byte(u >> 8)
	}
	return out
}
