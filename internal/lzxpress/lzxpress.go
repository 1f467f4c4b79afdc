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

// Package lzxpress decodes the LZXPRESS family of Exchange column
// compression variants (the 0x10/0x12/0x15/0x17/0x18/0x19 tags seen on
// Message_XXX and Folder_XXX columns): a 7-bit-per-character dictionary
// form and an MS-XCA LZ77+flag-word form.
package lzxpress

import "github.com/edbxtool/edbx/internal/diag"

// Tag identifies the compression variant from the first byte of a
// compressed column.
type Tag byte

const (
	Tag7BitASCII  Tag = 0x10
	Tag7BitUTF16  Tag = 0x12
	Tag7BitAlt    Tag = 0x15
	TagUncompress Tag = 0x17
	TagXCA        Tag = 0x18
	TagXCAWide    Tag = 0x19
)

// Decompress dispatches on data[0] and returns the logical column
// value. The returned bytes are suitable for direct UTF-16LE/UTF-8
// decoding or further structural parsing (PropertyBlob, RecipientList).
func Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, diag.New(diag.DecompressionFailed, "empty compressed column")
	}

	switch Tag(data[0]) {
	case Tag7BitASCII, Tag7BitAlt:
		return decode7Bit(data[1:], false)
	case Tag7BitUTF16:
		return decode7Bit(data[1:], true)
	case TagUncompress:
		return data[1:], nil
	case TagXCA:
		return decodeXCA(data[1:], 2)
	case TagXCAWide:
		return decodeXCA(data[1:], 4)
	default:
		return nil, diag.New(diag.UnsupportedColumnType, "unrecognized compression tag")
	}
}
