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

// Package bytesx collects the byte-level primitives shared by every
// other engine in this module: FILETIME conversion, the NDB CRC-32, and
// UTF-16LE/VLQ decoding. Nothing here is specific to ESE or PST.
package bytesx

import "time"

// epochOffset100ns is the number of 100ns ticks between the FILETIME
// epoch (1601-01-01 00:00:00 UTC) and the Unix epoch (1970-01-01).
const epochOffset100ns = 116444736000000000

// ToFileTime converts t to a Windows FILETIME: the number of 100ns
// ticks since 1601-01-01 UTC. Built from t.Unix() (seconds) rather
// than t.UnixNano(): UnixNano overflows int64 for years outside
// roughly [1678, 2262], but FILETIME covers [1601-01-01, 9999-12-31],
// well within range for seconds-since-epoch arithmetic.
func ToFileTime(t time.Time) uint64 {
	u := t.UTC()
	ticks := u.Unix()*10000000 + int64(u.Nanosecond())/100 + epochOffset100ns
	if ticks < 0 {
		return 0
	}
	return uint64(ticks)
}

// FromFileTime converts a Windows FILETIME back to a time.Time in UTC.
func FromFileTime(ft uint64) time.Time {
	ticks := int64(ft) - epochOffset100ns
	sec := ticks / 10000000
	rem := ticks % 10000000
	if rem < 0 {
		rem += 10000000
		sec--
	}
	return time.Unix(sec, rem*100).UTC()
}
