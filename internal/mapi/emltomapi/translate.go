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

// Package emltomapi is the EML → MAPI translator: it parses an RFC
// 5322 message with github.com/emersion/go-message and emits a
// mapi.Set plus recipient and attachment lists ready for the PST
// messaging layer.
package emltomapi

import (
	"bytes"
	"fmt"
	"io"
	"io/ioutil"
	"mime"
	"net/mail"
	"strings"

	gomessage "github.com/emersion/go-message"
	"github.com/google/uuid"

	"github.com/edbxtool/edbx/internal/diag"
	"github.com/edbxtool/edbx/internal/mapi"
)

// Recipient is one To/Cc/Bcc entry with its MAPI recipient type.
type Recipient struct {
	Name  string
	Email string
	Type  uint32
}

// Attachment is one MIME attachment part, fully read into memory.
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Result is everything Translate recovers from one EML.
type Result struct {
	Properties  *mapi.Set
	Recipients  []Recipient
	Attachments []Attachment
}

// Translate parses r as an RFC 5322 message and maps its headers and
// MIME body parts to the MAPI property tags.
func Translate(r io.Reader) (*Result, error) {
	entity, err := gomessage.Read(r)
	if err != nil && entity == nil {
		return nil, diag.Wrap(diag.MalformedDatabase, "parsing EML", err)
	}

	set := mapi.NewSet()
	res := &Result{Properties: set}

	subject := headerText(entity.Header, "Subject")
	set.PutStr(mapi.PR_SUBJECT_W, subject)

	if from := parseFirstAddress(entity.Header.Get("From")); from != nil {
		set.PutStr(mapi.PR_SENDER_NAME_W, displayOrLocal(from))
		set.PutStr(mapi.PR_SENDER_EMAIL_ADDRESS_W, from.Address)
		set.Put(mapi.PR_SENDER_ADDRTYPE_W, mapi.Str("SMTP"))
		set.PutStr(mapi.PR_SENT_REPRESENTING_NAME_W, displayOrLocal(from))
	}

	res.Recipients = append(res.Recipients, recipientsFor(entity.Header, "To", mapi.MAPI_TO)...)
	res.Recipients = append(res.Recipients, recipientsFor(entity.Header, "Cc", mapi.MAPI_CC)...)
	res.Recipients = append(res.Recipients, recipientsFor(entity.Header, "Bcc", mapi.MAPI_BCC)...)

	if date, err := mail.ParseDate(entity.Header.Get("Date")); err == nil {
		set.Put(mapi.PR_CLIENT_SUBMIT_TIME, mapi.SysTime(date))
		set.Put(mapi.PR_MESSAGE_DELIVERY_TIME, mapi.SysTime(date))
	}

	set.Put(mapi.PR_IMPORTANCE, mapi.Long32(importanceOf(entity.Header.Get("Importance"))))

	msgID := entity.Header.Get("Message-Id")
	if msgID == "" {
		if id, err := uuid.NewRandom(); err == nil {
			msgID = fmt.Sprintf("<%s@edbx.local>", id.String())
		}
	}
	if msgID != "" {
		set.PutStr(mapi.PR_INTERNET_MESSAGE_ID_W, msgID)
	}

	set.Put(mapi.PR_MESSAGE_CLASS_W, mapi.Str("IPM.Note"))

	if err := walkBody(entity, set, res); err != nil {
		return nil, err
	}

	return res, nil
}

func headerText(h gomessage.Header, key string) string {
	v, err := h.Text(key)
	if err != nil {
		return h.Get(key)
	}
	return v
}

func parseFirstAddress(raw string) *mail.Address {
	if raw == "" {
		return nil
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return nil
	}
	return addr
}

func displayOrLocal(a *mail.Address) string {
	if a.Name != "" {
		return a.Name
	}
	return a.Address
}

func recipientsFor(h gomessage.Header, header string, typ uint32) []Recipient {
	raw := h.Get(header)
	if raw == "" {
		return nil
	}
	list, err := mail.ParseAddressList(raw)
	if err != nil {
		return nil
	}
	out := make([]Recipient, 0, len(list))
	for _, a := range list {
		out = append(out, Recipient{Name: displayOrLocal(a), Email: a.Address, Type: typ})
	}
	return out
}

func importanceOf(header string) uint32 {
	switch strings.ToLower(strings.TrimSpace(header)) {
	case "high", "1", "urgent":
		return mapi.ImportanceHigh
	case "low", "5", "non-urgent":
		return mapi.ImportanceLow
	default:
		return mapi.ImportanceNormal
	}
}

// walkBody recurses through entity's MIME structure, filling in
// PR_BODY_W / PR_HTML for text parts and res.Attachments for anything
// else. RTF compressed bodies are never synthesized.
func walkBody(entity *gomessage.Entity, set *mapi.Set, res *Result) error {
	mr := entity.MultipartReader()
	if mr == nil {
		return consumePart(entity, set, res)
	}
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return diag.Wrap(diag.MalformedDatabase, "reading MIME part", err)
		}
		if err := walkBody(part, set, res); err != nil {
			return err
		}
	}
}

func consumePart(entity *gomessage.Entity, set *mapi.Set, res *Result) error {
	ctype, params, _ := entity.Header.ContentType()
	disp, dispParams, _ := entity.Header.ContentDisposition()

	data, err := ioutil.ReadAll(entity.Body)
	if err != nil {
		return diag.Wrap(diag.IoError, "reading MIME part body", err)
	}

	if disp == "attachment" || (ctype != "text/plain" && ctype != "text/html" && ctype != "") {
		filename := dispParams["filename"]
		if filename == "" {
			filename = params["name"]
		}
		filename = decodeWord(filename)
		res.Attachments = append(res.Attachments, Attachment{
			Filename: filename,
			ContentType: ctype,
			Data: data,
		})
		return nil
	}

	switch ctype {
	case "text/html":
		set.Put(mapi.PR_HTML, mapi.Bin(data))
	default:
		set.PutStr(mapi.PR_BODY_W, string(bytes.TrimRight(data, "\r\n")))
	}
	return nil
}

func decodeWord(s string) string {
	dec := new(mime.WordDecoder)
	out, err := dec.DecodeHeader(s)
	if err != nil {
		return s
	}
	return out
}
