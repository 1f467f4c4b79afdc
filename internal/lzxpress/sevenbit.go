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

// decode7Bit implements the dictionary-free 7-bit-per-character form
// used by the 0x10/0x15 (ASCII) and 0x12 (UTF-16) variants: the payload
// is a bit-stream read LSB-first, 7 bits at a time, each group
// producing one octet with its high bit cleared. Decoding stops when
// the bit-stream is exhausted or a terminator unit is produced, since
// the source never declares an explicit output length for this form
// (see the open question about subjects beyond 16KiB). For the narrow
// (0x10/0x15) form the terminator is a zero octet; for the wide (0x12)
// form the octets must be paired into UTF-16LE code units first and
// the terminator is a zero *code unit* - almost every ASCII-range UTF-16
// code unit has a zero high byte, so truncating on a zero octet before
// pairing would cut every real-world string after its first character.
func decode7Bit(payload []byte, wide bool) ([]byte, error) {
	octets := unpack7Bit(payload)

	if !wide {
		// Truncate at the first zero octet, if any: the narrow form is
		// NUL-terminated text, not a length-prefixed blob.
		for i, b := range octets {
			if b == 0 {
				octets = octets[:i]
				break
			}
		}
		return octets, nil
	}

	// 0x12: pair up the decoded octets into UTF-16LE code units before
	// looking for the terminator.
	if len(octets)%2 != 0 {
		octets = octets[:len(octets)-1]
	}
	for i := 0; i+1 < len(octets); i += 2 {
		if octets[i] == 0 && octets[i+1] == 0 {
			octets = octets[:i]
			break
		}
	}
	return octets, nil
}

// unpack7Bit reads payload as a continuous LSB-first bit-stream and
// emits one byte per 7 consumed bits.
func unpack7Bit(payload []byte) []byte {
	var out []byte
	var acc uint32
	var bits uint

	for _, b := range payload {
		acc |= uint32(b) << bits
		bits += 8
		for bits >= 7 {
			out = append(out, byte(acc&0x7f))
			acc >>= 7
			bits -= 7
		}
	}
	return out
}
