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

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/edbxtool/edbx/internal/entity"
)

// ICS renders events as an iCalendar VCALENDAR with one VEVENT per
// entry. Output is built directly against RFC 5545's line folding and
// escaping rules, which are mechanical enough that a dependency would
// only wrap this same string logic (see DESIGN.md).
func ICS(events []*entity.CalendarEvent) []byte {
	var b strings.Builder
	writeLine(&b, "BEGIN:VCALENDAR")
	writeLine(&b, "VERSION:2.0")
	writeLine(&b, "PRODID:-//edbx//EDB-Exporter//EN")
	for _, ev := range events {
		writeEvent(&b, ev)
	}
	writeLine(&b, "END:VCALENDAR")
	return []byte(b.String())
}

func writeEvent(b *strings.Builder, ev *entity.CalendarEvent) {
	writeLine(b, "BEGIN:VEVENT")
	writeLine(b, "UID:"+icsEscape(ev.UID))
	writeLine(b, "DTSTAMP:"+icsTime(time.Now()))
	if ev.Start != nil {
		writeLine(b, "DTSTART:"+icsTime(*ev.Start))
	}
	if ev.End != nil {
		writeLine(b, "DTEND:"+icsTime(*ev.End))
	}
	writeLine(b, "SUMMARY:"+icsEscape(ev.Subject))
	if ev.Body != "" {
		writeLine(b, "DESCRIPTION:"+icsEscape(ev.Body))
	}
	if ev.Location != "" {
		writeLine(b, "LOCATION:"+icsEscape(ev.Location))
	}
	if ev.Organizer.Email != "" {
		writeLine(b, "ORGANIZER;CN="+icsEscape(ev.Organizer.Name)+":MAILTO:"+ev.Organizer.Email)
	}
	for _, att := range ev.Attendees {
		writeLine(b, fmt.Sprintf("ATTENDEE;CN=%s;PARTSTAT=%s:MAILTO:%s",
			icsEscape(att.Name), partstat(att.Status), att.Email))
	}
	writeLine(b, "END:VEVENT")
}

func partstat(s entity.AttendeeStatus) string {
	switch s {
	case entity.AttendeeAccepted:
		return "ACCEPTED"
	case entity.AttendeeDeclined:
		return "DECLINED"
	case entity.AttendeeTentative:
		return "TENTATIVE"
	default:
		return "NEEDS-ACTION"
	}
}

func icsTime(t time.Time) string {
	return t.UTC().Format("20060102T150405Z")
}

func icsEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `;`, `\;`, `,`, `\,`, "\n", `\n`)
	return r.Replace(s)
}

// writeLine folds a CRLF-terminated content line at 75 octets, per
// [RFC 5545] §3.1.
func writeLine(b *strings.Builder, line string) {
	const maxOctets = 75
	rest := line
	first := true
	for len(rest) > 0 {
		limit := maxOctets
		if !first {
			limit = maxOctets - 1 // account for the folding space
		}
		if len(rest) <= limit {
			if !first {
				b.WriteByte(' ')
			}
			b.WriteString(rest)
			b.WriteString("\r\n")
			return
		}
		if !first {
			b.WriteByte(' ')
		}
		b.WriteString(rest[:limit])
		b.WriteString("\r\n")
		rest = rest[limit:]
		first = false
	}
}
