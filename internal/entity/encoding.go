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

package entity

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// DecodeWithFallback implements the legacy code-page heuristic: try
// strict UTF-8 first; on failure, probe for Cyrillic signatures and
// pick Windows-1251 vs KOI8-R by whichever decode yields more
// printable/common letters, falling back to Windows-1252. The result
// is NFC-normalized for stable comparison.
func DecodeWithFallback(data []byte) string {
	if utf8.Valid(data) {
		return norm.NFC.String(string(data))
	}

	cyrillic := cyrillicByteRatio(data)
	var decoded string
	if cyrillic > 0.15 {
		win1251 := decodeCharmap(charmap.Windows1251, data)
		koi8r := decodeCharmap(charmap.KOI8R, data)
		if printableRatio(win1251) >= printableRatio(koi8r) {
			decoded = win1251
		} else {
			decoded = koi8r
		}
	} else {
		decoded = decodeCharmap(charmap.Windows1252, data)
	}
	return norm.NFC.String(decoded)
}

// cyrillicByteRatio estimates the fraction of bytes in the 0xC0..0xFF
// range, the Windows-1251/KOI8-R high half where Cyrillic letters live.
func cyrillicByteRatio(data []byte) float64 {
	if len(data) == 0 {
		return 0
	}
	var hi int
	for _, b := range data {
		if b >= 0xC0 {
			hi++
		}
	}
	return float64(hi) / float64(len(data))
}

func decodeCharmap(cm *charmap.Charmap, data []byte) string {
	out, err := cm.NewDecoder().String(string(data))
	if err != nil {
		return string(data)
	}
	return out
}

// printableRatio scores a decode attempt by the fraction of letters
// that are common Latin or Cyrillic printable characters, used to pick
// between two plausible legacy code-page decodes of the same bytes.
func printableRatio(s string) float64 {
	if s == "" {
		return 0
	}
	var good, total int
	for _, r := range s {
		total++
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
			good++
		case r >= 'а' && r <= 'я', r >= 'А' && r <= 'Я':
			good++
		case r == ' ' || r == '.' || r == ',':
			good++
		}
	}
	return float64(good) / float64(total)
}
