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

package emltomapi

import (
	"github.com/edbxtool/edbx/internal/entity"
	"github.com/edbxtool/edbx/internal/mapi"
)

// ToEmailMessage folds a translated EML (res) into the same
// entity.EmailMessage shape the EDB assembler produces, so the PST
// messaging layer has one ingestion path regardless of whether a
// message originated from an EDB row or a standalone .eml file.
func ToEmailMessage(res *Result) *entity.EmailMessage {
	m := &entity.EmailMessage{MessageClass: "IPM.Note"}

	if v, ok := res.Properties.Get(mapi.PR_MESSAGE_CLASS_W); ok {
		m.MessageClass = v.String
	}
	if v, ok := res.Properties.Get(mapi.PR_SUBJECT_W); ok {
		m.Subject = v.String
	}
	if v, ok := res.Properties.Get(mapi.PR_SENDER_NAME_W); ok {
		m.SenderName = v.String
	}
	if v, ok := res.Properties.Get(mapi.PR_SENDER_EMAIL_ADDRESS_W); ok {
		m.SenderEmail = v.String
	}
	if v, ok := res.Properties.Get(mapi.PR_BODY_W); ok {
		m.BodyText = v.String
	}
	if v, ok := res.Properties.Get(mapi.PR_HTML); ok {
		m.BodyHTML = string(v.Binary)
	}
	if v, ok := res.Properties.Get(mapi.PR_INTERNET_MESSAGE_ID_W); ok {
		m.MessageID = v.String
	}
	if v, ok := res.Properties.Get(mapi.PR_CLIENT_SUBMIT_TIME); ok {
		t := v.Time
		m.DateSent = &t
	}
	if v, ok := res.Properties.Get(mapi.PR_MESSAGE_DELIVERY_TIME); ok {
		t := v.Time
		m.DateReceived = &t
	}
	if v, ok := res.Properties.Get(mapi.PR_IMPORTANCE); ok {
		m.Importance = entity.Importance(v.Long)
	}

	for _, r := range res.Recipients {
		addr := entity.Address{Name: r.Name, Email: r.Email}
		switch r.Type {
		case mapi.MAPI_CC:
			m.Cc = append(m.Cc, addr)
		case mapi.MAPI_BCC:
			m.Bcc = append(m.Bcc, addr)
		default:
			m.To = append(m.To, addr)
		}
	}

	for _, a := range res.Attachments {
		data := a.Data
		m.Attachments = append(m.Attachments, &entity.Attachment{
			Filename: a.Filename,
			ContentType: a.ContentType,
			Size: int64(len(data)),
			Data: data,
		})
	}

	return m
}
