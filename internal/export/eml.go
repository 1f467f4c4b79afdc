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

// Package export renders assembled entities as interchange formats:
// EML for email messages, ICS for calendar events, VCF for contacts.
package export

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/quotedprintable"
	"time"
	"unicode"

	"github.com/emersion/go-message"
	"github.com/emersion/go-textwrapper"
	"golang.org/x/sync/errgroup"

	"github.com/edbxtool/edbx/internal/entity"
)

// EML renders m as an RFC 2822 message: plain+HTML bodies become
// multipart/alternative, wrapped in multipart/mixed if attachments are
// present; base64 for binary, quoted-printable for non-ASCII text.
func EML(m *entity.EmailMessage) ([]byte, error) {
	bodyEntity, err := bodyEntity(m)
	if err != nil {
		return nil, err
	}

	root := bodyEntity
	if len(m.Attachments) > 0 {
		data, err := fetchAttachments(m.Attachments)
		if err != nil {
			return nil, err
		}
		parts := []*message.Entity{bodyEntity}
		for i, att := range m.Attachments {
			ae, err := attachmentEntity(att.Filename, att.ContentType, data[i])
			if err != nil {
				return nil, err
			}
			parts = append(parts, ae)
		}
		var h message.Header
		h.SetContentType("multipart/mixed", nil)
		root, err = message.NewMultipart(h, parts)
		if err != nil {
			return nil, err
		}
	}

	setEnvelopeHeaders(&root.Header, m)

	var buf bytes.Buffer
	if err := root.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// fetchAttachments materializes every attachment's payload concurrently
// (each Attachment.Fetch is idempotent and safe to cancel) and returns
// the results in the same order as atts, or the first error encountered.
func fetchAttachments(atts []*entity.Attachment) ([][]byte, error) {
	out := make([][]byte, len(atts))
	var g errgroup.Group
	for i, att := range atts {
		i, att := i, att
		g.Go(func() error {
			data, err := att.Bytes()
			if err != nil {
				return fmt.Errorf("reading attachment %q: %w", att.Filename, err)
			}
			out[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func bodyEntity(m *entity.EmailMessage) (*message.Entity, error) {
	if m.BodyHTML == "" {
		return textPart(m.BodyText)
	}
	plain, err := textPart(m.BodyText)
	if err != nil {
		return nil, err
	}
	html, err := htmlPart(m.BodyHTML)
	if err != nil {
		return nil, err
	}
	var h message.Header
	h.SetContentType("multipart/alternative", nil)
	return message.NewMultipart(h, []*message.Entity{plain, html})
}

func textPart(body string) (*message.Entity, error) {
	var h message.Header
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	setTransferEncoding(&h, body)
	return message.New(h, encodedBody(&h, body))
}

func htmlPart(body string) (*message.Entity, error) {
	var h message.Header
	h.SetContentType("text/html", map[string]string{"charset": "utf-8"})
	setTransferEncoding(&h, body)
	return message.New(h, encodedBody(&h, body))
}

func setTransferEncoding(h *message.Header, body string) {
	if isASCII(body) {
		h.Set("Content-Transfer-Encoding", "7bit")
	} else {
		h.Set("Content-Transfer-Encoding", "quoted-printable")
	}
}

func encodedBody(h *message.Header, body string) io.Reader {
	if h.Get("Content-Transfer-Encoding") != "quoted-printable" {
		return bytes.NewReader([]byte(body))
	}
	var buf bytes.Buffer
	qw := quotedprintable.NewWriter(&buf)
	_, _ = qw.Write([]byte(body))
	_ = qw.Close()
	return bytes.NewReader(buf.Bytes())
}

func attachmentEntity(filename, contentType string, data []byte) (*message.Entity, error) {
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	var h message.Header
	h.SetContentType(contentType, map[string]string{"name": filename})
	h.Set("Content-Transfer-Encoding", "base64")
	h.SetContentDisposition("attachment", map[string]string{"filename": filename})

	var buf bytes.Buffer
	wrapped := textwrapper.NewRFC822(&buf)
	enc := base64.NewEncoder(base64.StdEncoding, wrapped)
	if _, err := enc.Write(data); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return message.New(h, bytes.NewReader(buf.Bytes()))
}

func setEnvelopeHeaders(h *message.Header, m *entity.EmailMessage) {
	h.Set("Subject", mime.QEncoding.Encode("utf-8", m.Subject))
	h.Set("From", formatAddress(m.SenderName, m.SenderEmail))
	if len(m.To) > 0 {
		h.Set("To", formatAddressList(m.To))
	}
	if len(m.Cc) > 0 {
		h.Set("Cc", formatAddressList(m.Cc))
	}
	if m.MessageID != "" {
		h.Set("Message-Id", m.MessageID)
	}
	if m.DateSent != nil {
		h.Set("Date", m.DateSent.Format(time.RFC1123Z))
	}
	h.Set("X-Priority", importanceHeader(m.Importance))
}

func formatAddress(name, addr string) string {
	if name == "" {
		return addr
	}
	return mime.QEncoding.Encode("utf-8", name) + " <" + addr + ">"
}

func formatAddressList(addrs []entity.Address) string {
	out := ""
	for i, a := range addrs {
		if i > 0 {
			out += ", "
		}
		out += formatAddress(a.Name, a.Email)
	}
	return out
}

func importanceHeader(imp entity.Importance) string {
	switch imp {
	case entity.ImportanceHigh:
		return "1 (Highest)"
	case entity.ImportanceLow:
		return "5 (Lowest)"
	default:
		return "3 (Normal)"
	}
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
