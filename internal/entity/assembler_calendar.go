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
	"github.com/edbxtool/edbx/internal/bytesx"
	"github.com/edbxtool/edbx/internal/ese"
	"github.com/edbxtool/edbx/internal/propblob"
)

// MessageClassOf decompresses and returns a row's MessageClass string,
// used by callers (typically the messaging layer) to pick which
// Assemble* method to call before doing the rest of the work.
func (a *Assembler) MessageClassOf(r *ese.Row) string {
	if mc := a.decompressColumn(r, "MessageClass"); mc != nil {
		return bytesx.DecodeUTF8Lenient(mc)
	}
	return "IPM.Note"
}

// Kind returns which entity variant messageClass maps to: "email",
// "calendar" or "contact".
func Kind(messageClass string) string { return classify(messageClass) }

// AssembleCalendarEvent builds a CalendarEvent from row.
func (a *Assembler) AssembleCalendarEvent(r *ese.Row, folderID FolderID) *CalendarEvent {
	ev := &CalendarEvent{RecordIndex: r.Index(), FolderID: folderID}

	propBlob := a.decompressColumn(r, "PropertyBlob")
	fields := propblob.Parse(propBlob)
	ev.Subject = fields.Subject
	ev.Organizer = Address{Name: fields.SenderName, Email: fields.SenderEmail}
	ev.UID = fields.MessageID

	if v, ok := r.ColumnUint64("StartDate"); ok {
		t := bytesx.FromFileTime(v)
		ev.Start = &t
	}
	if v, ok := r.ColumnUint64("EndDate"); ok {
		t := bytesx.FromFileTime(v)
		ev.End = &t
	}
	ev.AllDay = r.ColumnBool("AllDayEvent")

	if loc := a.decompressColumn(r, "Location"); loc != nil {
		ev.Location = DecodeWithFallback(loc)
	}
	if body := a.decodeNativeBody(r); body != "" {
		ev.Body = body
	}

	recipBlob := a.decompressColumn(r, "RecipientList")
	for _, rec := range propblob.ParseRecipientList(recipBlob) {
		ev.Attendees = append(ev.Attendees, Attendee{Address: Address{Name: rec.Name, Email: rec.Email}})
	}
	return ev
}

// AssembleContact builds a Contact from row.
func (a *Assembler) AssembleContact(r *ese.Row, folderID FolderID) *Contact {
	c := &Contact{RecordIndex: r.Index(), FolderID: folderID}

	propBlob := a.decompressColumn(r, "PropertyBlob")
	fields := propblob.Parse(propBlob)
	c.DisplayName = fields.SenderName
	if fields.SenderEmail != "" {
		c.Emails = append(c.Emails, fields.SenderEmail)
	}

	if company := a.decompressColumn(r, "CompanyName"); company != nil {
		c.Company = DecodeWithFallback(company)
	}
	if title := a.decompressColumn(r, "Title"); title != nil {
		c.Title = DecodeWithFallback(title)
	}

	phoneColumns := []struct {
		column string
		kind PhoneKind
	}{
		{"HomePhone", PhoneHome},
		{"BusinessPhone", PhoneWork},
		{"MobilePhone", PhoneMobile},
		{"FaxNumber", PhoneFax},
	}
	for _, pc := range phoneColumns {
		if raw := a.decompressColumn(r, pc.column); raw != nil {
			c.Phones = append(c.Phones, Phone{Kind: pc.kind, Value: DecodeWithFallback(raw)})
		}
	}
	if addr := a.decompressColumn(r, "PostalAddress"); addr != nil {
		c.Addresses = append(c.Addresses, DecodeWithFallback(addr))
	}
	return c
}
