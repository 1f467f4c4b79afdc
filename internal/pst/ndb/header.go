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
	"encoding/binary"

	"github.com/edbxtool/edbx/internal/bytesx"
)

// HeaderSize is the fixed PST header size.
const HeaderSize = 564

// encodeHeader builds the 564-byte PST header per field
// layout: bytes 0..3 "!BDN"; bytes 10..11 0x17; bytes 12..13 wVer=23;
// bytes 14..15 0x01; file-size u64 at 184; cbAMapFree u64 at 200; NBT
// root BID at 224; BBT root BID at 240; next-BID at 352; next-page at
// 368; bCryptMethod at 513; trailer CRC at 524. Every other byte is
// zero (reserved).
func encodeHeader(fileSize, amapFree uint64, nbtRoot, bbtRoot BID, nextBID uint64, nextPage uint64) []byte {
	h := make([]byte, HeaderSize)
	copy(h[0:4], []byte("!BDN"))
	h[10] = 0x17
	binary.LittleEndian.PutUint16(h[12:14], 23)
	h[14] = 0x01

	binary.LittleEndian.PutUint64(h[184:192], fileSize)
	binary.LittleEndian.PutUint64(h[200:208], amapFree)
	binary.LittleEndian.PutUint64(h[224:232], uint64(nbtRoot))
	binary.LittleEndian.PutUint64(h[240:248], uint64(bbtRoot))
	binary.LittleEndian.PutUint64(h[352:360], nextBID)
	binary.LittleEndian.PutUint64(h[368:376], nextPage)
	h[513] = 0 // bCryptMethod: this writer only emits unencoded Unicode PSTs

	binary.LittleEndian.PutUint32(h[524:528], bytesx.CRC32NDB(h[:524]))
	return h
}
