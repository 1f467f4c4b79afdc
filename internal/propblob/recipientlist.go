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

package propblob

import (
	"bytes"
)

// Recipient is one name/email pair recovered from a RecipientList blob.
// Email is "" when the sub-block never resolves to an alias@domain
// M-entry; unmatched names keep Email empty rather than failing.
type Recipient struct {
	Name  string
	Email string
}

var proPMarker = []byte("ProP")
var exmMarker = []byte("EXM")

// ParseRecipientList splits a decompressed RecipientList blob into its
// per-recipient sub-blocks (each introduced by a "ProP" fourcc) and
// extracts a display name and email from each, returning them in blob
// order (an ordered name->email map).
func ParseRecipientList(data []byte) []Recipient {
	bounds := markerOffsets(data, proPMarker)
	if len(bounds) == 0 {
		return nil
	}

	out := make([]Recipient, 0, len(bounds))
	for i, start := range bounds {
		end := len(data)
		if i+1 < len(bounds) {
			end = bounds[i+1]
		}
		chunk := data[start:end]
		out = append(out, parseRecipientChunk(chunk))
	}
	return out
}

func parseRecipientChunk(chunk []byte) Recipient {
	// Strip the "ProP" fourcc itself before scanning: its trailing 'P'
	// is uppercase ASCII and would otherwise bleed into the name run.
	body := chunk[len(proPMarker):]
	entries := scanEntries(body)

	nameUpper := ""
	displayPayload := ""
	for _, e := range entries {
		run := uppercaseRunBefore(body, e.off)
		if run == "" {
			continue
		}
		if len(run) > len(nameUpper) {
			nameUpper = run
			displayPayload = e.text
		}
	}

	rec := Recipient{Name: titleCase(nameUpper)}
	if rec.Name == "" && displayPayload != "" {
		rec.Name = displayPayload
	}

	// The email lives in the EXM sub-block: the legacy-DN path followed
	// by a final M-entry giving alias@domain. Scan entries that occur
	// at or after the EXM marker, in order, and keep the last one
	// shaped like an email.
	exmAt := bytes.Index(body, exmMarker)
	for _, e := range entries {
		if exmAt >= 0 && e.off < exmAt {
			continue
		}
		if e.kind == 'M' && looksLikeEmail(e.text) {
			rec.Email = e.text
		}
	}
	return rec
}

// markerOffsets returns every offset in data at which marker occurs.
func markerOffsets(data, marker []byte) []int {
	var out []int
	from := 0
	for {
		idx := bytes.Index(data[from:], marker)
		if idx < 0 {
			return out
		}
		out = append(out, from+idx)
		from += idx + len(marker)
	}
}
