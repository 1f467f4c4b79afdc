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

// Package propblob recovers subject, sender, recipients and Message-ID
// from the decompressed PropertyBlob/RecipientList column payloads.
// Neither layout is publicly documented; both are recovered by
// marker/sentinel scanning. See DESIGN.md for the scanning heuristics
// chosen where the source format is ambiguous.
package propblob

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/edbxtool/edbx/internal/bytesx"
)

// Fields is everything PropertyBlob scanning can recover from a single
// message's decompressed PropertyBlob column.
type Fields struct {
	SenderName  string
	SenderEmail string
	Subject     string
	MessageID   string
}

// entry is one VLQ-length-prefixed M (UTF-8) or I (UTF-16LE) payload
// discovered by scanning, tagged with the blob offset of its type byte.
type entry struct {
	kind byte // 'M' or 'I'
	text string
	off  int
}

var legacyDN = regexp.MustCompile(`cn=Recipients/cn=[0-9A-Za-z-]*-([A-Z][A-Z0-9 '.]*)`)

// Parse extracts Fields from a decompressed PropertyBlob.
func Parse(data []byte) Fields {
	entries := scanEntries(data)

	nameUpper, subject := findSenderNameAndSubject(data, entries)

	f := Fields{
		SenderName: titleCase(nameUpper),
		Subject: subject,
	}
	f.SenderEmail = findSenderEmail(data, entries, nameUpper)
	f.MessageID = findMessageID(entries)
	return f
}

// findSenderNameAndSubject locates the sender name two ways: first via
// the CN legacy-DN path, falling back to the same sentinel-scan used
// for the subject itself when no DN is present (short blobs from
// internal submissions carry the uppercase name with no DN at all).
func findSenderNameAndSubject(data []byte, entries []entry) (nameUpper, subject string) {
	if m := legacyDN.FindSubmatch(data); m != nil {
		nameUpper = strings.TrimRight(string(m[1]), " ")
	}

	if nameUpper != "" {
		if subj, ok := subjectForName(nameUpper, data, entries); ok {
			return nameUpper, subj
		}
	}

	// No DN, or DN name never matches a sentinel: scan for the longest
	// run of uppercase-name characters immediately preceding a
	// successfully-decoded entry, preferring the first entry with a
	// non-empty payload among duplicate sentinel matches.
	best := ""
	bestSubject := ""
	for _, e := range entries {
		run := uppercaseRunBefore(data, e.off)
		if run == "" {
			continue
		}
		if len(run) > len(best) || (len(run) == len(best) && bestSubject == "" && e.text != "") {
			best = run
			bestSubject = e.text
		}
	}
	return best, bestSubject
}

// subjectForName tries nameUpper, then progressively shorter uppercase
// prefixes of it, preferring the longest match.
func subjectForName(nameUpper string, data []byte, entries []entry) (string, bool) {
	for l := len(nameUpper); l > 0; l-- {
		prefix := nameUpper[:l]
		for _, e := range entries {
			if uppercaseRunBefore(data, e.off) == prefix {
				return e.text, true
			}
		}
	}
	return "", false
}

// uppercaseRunBefore returns the maximal run of uppercase letters/spaces
// ending exactly at offset off in data, decoded rune-by-rune backward so
// multi-byte (e.g. Cyrillic) names are recognized as well as ASCII.
func uppercaseRunBefore(data []byte, off int) string {
	start := off
	for start > 0 {
		r, size := utf8.DecodeLastRune(data[:start])
		if r == utf8.RuneError {
			break
		}
		if unicode.IsUpper(r) || r == ' ' {
			start -= size
			continue
		}
		break
	}
	return strings.TrimSpace(string(data[start:off]))
}

// findSenderEmail returns the first M-entry after the sender-name
// sentinel whose payload looks like local@domain. The sentinel is the
// entry preceded by nameUpper or its longest matching prefix, as in
// subjectForName; when no entry matches, the whole blob is searched.
func findSenderEmail(data []byte, entries []entry, nameUpper string) string {
	after := -1
	for l := len(nameUpper); l > 0 && after < 0; l-- {
		for _, e := range entries {
			if uppercaseRunBefore(data, e.off) == nameUpper[:l] {
				after = e.off
				break
			}
		}
	}
	for _, e := range entries {
		if e.kind != 'M' || e.off <= after {
			continue
		}
		if looksLikeEmail(e.text) {
			return e.text
		}
	}
	return ""
}

// findMessageID returns the first M-entry shaped like <local@domain>.
func findMessageID(entries []entry) string {
	for _, e := range entries {
		if e.kind != 'M' {
			continue
		}
		if strings.HasPrefix(e.text, "<") && strings.HasSuffix(e.text, ">") && strings.Contains(e.text, "@") {
			return e.text
		}
	}
	return ""
}

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

func looksLikeEmail(s string) bool {
	return emailRe.MatchString(s)
}

// scanEntries walks data for every byte equal to 'M' or 'I', and for
// each, attempts to decode a length prefix followed by a payload of
// that length (UTF-8 for 'M', UTF-16LE pairs for 'I'). A candidate is
// kept only if the decoded text is plausible (at least half of its
// runes printable), which is the best available discipline absent a
// documented grammar.
//
// 'M' entries carry a byte-wise VLQ length. 'I' entries store theirs in
// 16-bit little-endian units, matching the UTF-16 payload that follows
// (every wide entry observed so far has the high length byte zero, so
// reading the prefix byte-wise would leave a stray 0x00 glued to the
// front of the payload).
func scanEntries(data []byte) []entry {
	var out []entry
	for i := 0; i < len(data); i++ {
		if data[i] != 'M' && data[i] != 'I' {
			continue
		}
		rest := data[i+1:]
		var text string
		if data[i] == 'M' {
			length, consumed, err := bytesx.ReadVLQ(rest)
			if err != nil || length <= 0 {
				continue
			}
			payloadStart := i + 1 + consumed
			end := payloadStart + length
			if end > len(data) {
				continue
			}
			text = bytesx.DecodeUTF8Lenient(data[payloadStart:end])
		} else {
			length, consumed, err := readWideVLQ(rest)
			if err != nil || length <= 0 {
				continue
			}
			payloadStart := i + 1 + consumed
			end := payloadStart + 2*length
			if end > len(data) {
				continue
			}
			text = bytesx.DecodeUTF16LE(data[payloadStart:end])
		}
		if !plausibleText(text) {
			continue
		}
		out = append(out, entry{kind: data[i], text: text, off: i})
	}
	return out
}

// readWideVLQ decodes an 'I'-entry length: base-128 over 16-bit
// little-endian units, terminating on the first unit with bit 15 clear.
func readWideVLQ(data []byte) (value int, consumed int, err error) {
	shift := uint(0)
	for i := 0; i+2 <= len(data); i += 2 {
		u := int(data[i]) | int(data[i+1])<<8
		value |= (u & 0x7fff) << shift
		consumed += 2
		if u&0x8000 == 0 {
			return value, consumed, nil
		}
		shift += 15
	}
	return 0, 0, bytesx.ErrTruncatedVLQ
}

func plausibleText(s string) bool {
	if s == "" {
		// Empty subjects are legitimate; an empty candidate just
		// carries no signal for sentinel matching.
		return true
	}
	printable := 0
	for _, r := range s {
		if unicode.IsGraphic(r) {
			printable++
		}
	}
	return printable*2 >= len([]rune(s))
}

// titleCase recovers display casing from an all-uppercase name by
// capitalizing the first letter of each whitespace-separated token and
// lowercasing the rest.
func titleCase(upper string) string {
	if upper == "" {
		return ""
	}
	tokens := strings.Fields(upper)
	for i, tok := range tokens {
		r := []rune(strings.ToLower(tok))
		if len(r) > 0 {
			r[0] = unicode.ToUpper(r[0])
		}
		tokens[i] = string(r)
	}
	return strings.Join(tokens, " ")
}
