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
	"fmt"
	"strings"
	"time"

	"github.com/edbxtool/edbx/internal/bytesx"
	"github.com/edbxtool/edbx/internal/diag"
	"github.com/edbxtool/edbx/internal/ese"
	"github.com/edbxtool/edbx/internal/lzxpress"
	"github.com/edbxtool/edbx/internal/metrics"
	"github.com/edbxtool/edbx/internal/propblob"
)

// Assembler builds typed entities from Message_XXX rows. It is
// stateless and safe to reuse across rows within one table; per-row
// failures are recorded on report rather than aborting the caller's
// iteration.
type Assembler struct {
	Report *diag.Report
}

// NewAssembler returns an Assembler that records recoverable diagnostics
// on report (may be nil to discard them).
func NewAssembler(report *diag.Report) *Assembler {
	return &Assembler{Report: report}
}

func (a *Assembler) record(table string, row int64, column string, err error) {
	if err == nil {
		return
	}
	metrics.RecordsFailed.WithLabelValues(string(diag.KindOf(err))).Inc()
	if a.Report == nil {
		return
	}
	a.Report.RecordErr(table, row, column, err)
}

// decompressColumn resolves and decompresses one column, recording a
// diagnostic and returning nil on failure rather than propagating it -
// per-row failures degrade the field, not the row.
func (a *Assembler) decompressColumn(r *ese.Row, column string) []byte {
	raw, err := r.Bytes(column)
	if err != nil || len(raw) == 0 {
		if err != nil {
			a.record(r.Table(), r.Index(), column, err)
		}
		return nil
	}
	metrics.DecompressionVariant.WithLabelValues(fmt.Sprintf("0x%02x", raw[0])).Inc()
	out, err := lzxpress.Decompress(raw)
	if err != nil {
		a.record(r.Table(), r.Index(), column, err)
		return nil
	}
	return out
}

// classify dispatches a MessageClass string to the entity variant it
// produces, by longest matching IPM prefix.
func classify(messageClass string) string {
	switch {
	case strings.HasPrefix(messageClass, "IPM.Note"):
		return "email"
	case strings.HasPrefix(messageClass, "IPM.Appointment"),
		strings.HasPrefix(messageClass, "IPM.Schedule.Meeting."):
		return "calendar"
	case strings.HasPrefix(messageClass, "IPM.Contact"):
		return "contact"
	default:
		return "email"
	}
}

// AssembleEmail builds an EmailMessage from row. Fields fill in a
// fixed order: message class, sender fields, subject, recipients,
// dates, flags, body, attachments.
func (a *Assembler) AssembleEmail(r *ese.Row, folderID FolderID, longValues LongValueStore) *EmailMessage {
	msg := &EmailMessage{RecordIndex: r.Index(), FolderID: folderID}

	if mc := a.decompressColumn(r, "MessageClass"); mc != nil {
		msg.MessageClass = bytesx.DecodeUTF8Lenient(mc)
	} else {
		msg.MessageClass = "IPM.Note"
	}

	propBlob := a.decompressColumn(r, "PropertyBlob")
	fields := propblob.Parse(propBlob)
	if len(propBlob) > 0 && fields == (propblob.Fields{}) {
		metrics.PropertyBlobFailures.WithLabelValues(r.Table()).Inc()
	}
	msg.SenderName = fields.SenderName
	msg.SenderEmail = fields.SenderEmail
	msg.Subject = fields.Subject
	msg.MessageID = fields.MessageID

	msg.To, msg.Cc, msg.Bcc = a.assembleRecipients(r)

	if v, ok := r.ColumnUint64("ClientSubmitTime"); ok {
		t := bytesx.FromFileTime(v)
		msg.DateSent = &t
	}
	if v, ok := r.ColumnUint64("MessageDeliveryTime"); ok {
		t := bytesx.FromFileTime(v)
		msg.DateReceived = &t
	}

	msg.Importance = Importance(r.ColumnByteDefault("Importance", byte(ImportanceNormal)))
	msg.IsRead = r.ColumnBool("MessageFlagRead")
	msg.IsHidden = r.ColumnBool("MessageFlagHidden")

	if body := a.decodeNativeBody(r); body != "" {
		msg.BodyText = body
	}
	if html := a.decompressColumn(r, "BodyHTML"); html != nil {
		msg.BodyHTML = DecodeWithFallback(html)
	}

	msg.Attachments = a.assembleAttachments(r, longValues)

	return msg
}

// decodeNativeBody decompresses the NativeBody column, whose LZXPRESS
// stream carries its own 7-byte header (tag 0x18, 2-byte size) ahead of
// the generic column-compression envelope.
func (a *Assembler) decodeNativeBody(r *ese.Row) string {
	raw, err := r.Bytes("NativeBody")
	if err != nil || len(raw) < 7 {
		return ""
	}
	out, err := lzxpress.Decompress(raw)
	if err != nil {
		a.record(r.Table(), r.Index(), "NativeBody", err)
		return ""
	}
	return DecodeWithFallback(out)
}

// assembleRecipients joins RecipientList's name->email map against the
// comma/semicolon-tokenized DisplayTo/Cc/Bcc columns.
func (a *Assembler) assembleRecipients(r *ese.Row) (to, cc, bcc []Address) {
	recipBlob := a.decompressColumn(r, "RecipientList")
	recipients := propblob.ParseRecipientList(recipBlob)
	byName := make(map[string]string, len(recipients))
	for _, rec := range recipients {
		byName[strings.ToLower(rec.Name)] = rec.Email
	}

	resolve := func(column string) []Address {
		raw := a.decompressColumn(r, column)
		if raw == nil {
			return nil
		}
		names := tokenizeNames(bytesx.DecodeUTF8Lenient(raw))
		out := make([]Address, 0, len(names))
		for _, n := range names {
			out = append(out, Address{Name: n, Email: byName[strings.ToLower(n)]})
		}
		return out
	}

	return resolve("DisplayTo"), resolve("DisplayCc"), resolve("DisplayBcc")
}

func tokenizeNames(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' })
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

// LongValueStore resolves an attachment's binary payload lazily, given
// the Inid recovered from SubobjectsBlob.
type LongValueStore interface {
	FetchAttachment(table string, inid uint32) (filename, contentType string, size int64, fetch func() ([]byte, error))
}

// assembleAttachments resolves SubobjectsBlob's `0x21 + Inid` markers
// against the Attachment_XXX table.
func (a *Assembler) assembleAttachments(r *ese.Row, store LongValueStore) []*Attachment {
	if store == nil {
		return nil
	}
	raw := a.decompressColumn(r, "SubobjectsBlob")
	if raw == nil {
		return nil
	}
	var out []*Attachment
	for i := 0; i+5 <= len(raw); i++ {
		if raw[i] != 0x21 {
			continue
		}
		inid := uint32(raw[i+1]) | uint32(raw[i+2])<<8 | uint32(raw[i+3])<<16 | uint32(raw[i+4])<<24
		filename, contentType, size, fetch := store.FetchAttachment(r.Table(), inid)
		if filename == "" && fetch == nil {
			continue
		}
		out = append(out, &Attachment{
			Filename: filename,
			ContentType: contentType,
			Size: size,
			Fetch: fetch,
		})
		i += 4
	}
	return out
}

// timeOrNil is a convenience for constructing entities outside the
// ESE-backed assembler path: the zero time becomes nil.
func timeOrNil(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
