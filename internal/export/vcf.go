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
	"strings"

	"github.com/edbxtool/edbx/internal/entity"
)

// VCF renders contacts as vCard 3.0, one VCARD per contact.
func VCF(contacts []*entity.Contact) []byte {
	var b strings.Builder
	for _, c := range contacts {
		writeCard(&b, c)
	}
	return []byte(b.String())
}

func writeCard(b *strings.Builder, c *entity.Contact) {
	b.WriteString("BEGIN:VCARD\r\n")
	b.WriteString("VERSION:3.0\r\n")
	b.WriteString("FN:" + vcfEscape(c.DisplayName) + "\r\n")
	b.WriteString("N:" + vcfEscape(c.DisplayName) + ";;;;\r\n")
	for _, email := range c.Emails {
		b.WriteString("EMAIL;TYPE=INTERNET:" + vcfEscape(email) + "\r\n")
	}
	for _, p := range c.Phones {
		b.WriteString("TEL;TYPE=" + phoneType(p.Kind) + ":" + vcfEscape(p.Value) + "\r\n")
	}
	if c.Company != "" {
		b.WriteString("ORG:" + vcfEscape(c.Company) + "\r\n")
	}
	if c.Title != "" {
		b.WriteString("TITLE:" + vcfEscape(c.Title) + "\r\n")
	}
	for _, addr := range c.Addresses {
		b.WriteString("ADR;TYPE=WORK:;;" + vcfEscape(addr) + ";;;;\r\n")
	}
	b.WriteString("END:VCARD\r\n")
}

func phoneType(k entity.PhoneKind) string {
	switch k {
	case entity.PhoneHome:
		return "HOME"
	case entity.PhoneWork:
		return "WORK"
	case entity.PhoneMobile:
		return "CELL"
	case entity.PhoneFax:
		return "FAX"
	default:
		return "VOICE"
	}
}

func vcfEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `;`, `\;`, `,`, `\,`, "\n", `\n`)
	return r.Replace(s)
}
