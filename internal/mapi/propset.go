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

package mapi

import (
	"sort"
	"time"

	"github.com/edbxtool/edbx/internal/bytesx"
)

// Value is one typed MAPI property value. Only the value kinds this
// toolkit's property set needs are represented: strings as UTF-16LE,
// booleans/longs inline, FILETIMEs inline, binaries/multi-valued as a
// byte slice or slice of byte slices.
type Value struct {
	String   string
	Bool     bool
	Long     uint32
	Time     time.Time
	Binary   []byte
	MVBinary [][]byte
	MVString []string
}

// Str constructs a PT_UNICODE value.
func Str(s string) Value { return Value{String: s} }

// Bool32 constructs a PT_BOOLEAN value.
func Bool32(b bool) Value { return Value{Bool: b} }

// Long32 constructs a PT_LONG value.
func Long32(v uint32) Value { return Value{Long: v} }

// SysTime constructs a PT_SYSTIME value.
func SysTime(t time.Time) Value { return Value{Time: t} }

// Bin constructs a PT_BINARY value.
func Bin(b []byte) Value { return Value{Binary: b} }

// Inline renders a value's 8-byte inline slot form, used by the
// Property Context for fixed-size types.
func (v Value) Inline() [8]byte {
	var out [8]byte
	switch {
	case v.Bool:
		out[0] = 1
	case v.Long != 0:
		out[0] = byte(v.Long)
		out[1] = byte(v.Long >> 8)
		out[2] = byte(v.Long >> 16)
		out[3] = byte(v.Long >> 24)
	case !v.Time.IsZero():
		ft := bytesx.ToFileTime(v.Time)
		for i := 0; i < 8; i++ {
			out[i] = byte(ft >> (8 * i))
		}
	}
	return out
}

// Bytes renders a value's variable-length payload: UTF-16LE for
// strings, raw bytes for binaries.
func (v Value) Bytes() []byte {
	if v.Binary != nil {
		return v.Binary
	}
	return bytesx.EncodeUTF16LE(v.String)
}

// IsVariable reports whether v must be stored as a heap allocation
// referenced by HID rather than inline in an 8-byte PC slot (strings,
// binaries, and multi-valued arrays all take the HID/NID path).
func (v Value) IsVariable() bool {
	return v.String != "" || v.Binary != nil || v.MVBinary != nil || v.MVString != nil
}

// Set is an ordered set of tag->Value pairs: a message, folder or
// store object's full property list before it is handed to the
// Property Context encoder. Ordering is insertion order, keeping the
// written output deterministic for a given input.
type Set struct {
	order []Tag
	byTag map[Tag]Value
}

// NewSet returns an empty property Set.
func NewSet() *Set {
	return &Set{byTag: make(map[Tag]Value)}
}

// Put sets tag's value, preserving first-insertion order on update.
func (s *Set) Put(tag Tag, v Value) {
	if _, ok := s.byTag[tag]; !ok {
		s.order = append(s.order, tag)
	}
	s.byTag[tag] = v
}

// PutStr is shorthand for Put(tag, Str(s)), skipping empty strings so
// the written PST never carries an empty-but-present property.
func (s *Set) PutStr(tag Tag, str string) {
	if str == "" {
		return
	}
	s.Put(tag, Str(str))
}

// Get returns tag's value and whether it is present.
func (s *Set) Get(tag Tag) (Value, bool) {
	v, ok := s.byTag[tag]
	return v, ok
}

// Tags returns every tag present, in insertion order.
func (s *Set) Tags() []Tag {
	out := make([]Tag, len(s.order))
	copy(out, s.order)
	return out
}

// SortedTags returns every tag present, sorted ascending by property
// ID - the order the Table/Property Context's BTH requires on disk.
func (s *Set) SortedTags() []Tag {
	out := s.Tags()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Len returns the number of properties set.
func (s *Set) Len() int { return len(s.order) }
