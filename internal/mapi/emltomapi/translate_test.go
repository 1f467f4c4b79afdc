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
	"strings"
	"testing"

	"github.com/edbxtool/edbx/internal/mapi"
)

func TestTranslateBasicMessage(t *testing.T) {
	raw := "Subject: Hello\r\n" +
		"From: \"A\" <a@x.test>\r\n" +
		"To: b@y.test\r\n" +
		"Date: Mon, 2 Jan 2006 15:04:05 -0700\r\n" +
		"Content-Type: text/plain\r\n" +
		"\r\n" +
		"world"

	res, err := Translate(strings.NewReader(raw))
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}

	if v, ok := res.Properties.Get(mapi.PR_SUBJECT_W); !ok || v.String != "Hello" {
		t.Fatalf("PR_SUBJECT_W = %+v", v)
	}
	if v, ok := res.Properties.Get(mapi.PR_SENDER_NAME_W); !ok || v.String != "A" {
		t.Fatalf("PR_SENDER_NAME_W = %+v", v)
	}
	if v, ok := res.Properties.Get(mapi.PR_BODY_W); !ok || v.String != "world" {
		t.Fatalf("PR_BODY_W = %+v", v)
	}
	if len(res.Recipients) != 1 || res.Recipients[0].Email != "b@y.test" {
		t.Fatalf("Recipients = %+v", res.Recipients)
	}
}
