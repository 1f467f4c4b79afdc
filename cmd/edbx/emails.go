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

package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/edbxtool/edbx/internal/entity"
	"github.com/edbxtool/edbx/internal/export"
)

const dateFilterLayout = "2006-01-02"

var listEmailsCommand = &cli.Command{
	Name: "list-emails",
	Usage: "List email messages in one mailbox",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "mailbox", Aliases: []string{"m"}, Usage: "Mailbox number"},
		&cli.StringFlag{Name: "substr", Aliases: []string{"s"}, Usage: "Only list messages whose subject contains this substring"},
		&cli.StringFlag{Name: "date-from", Usage: "Only list messages sent on or after this date (YYYY-MM-DD)"},
		&cli.StringFlag{Name: "date-to", Usage: "Only list messages sent on or before this date (YYYY-MM-DD)"},
	},
	Action: func(ctx *cli.Context) error {
		j, err := openJob(ctx)
		if err != nil {
			return err
		}
		number, err := mailboxNumberFlag(ctx)
		if err != nil {
			return err
		}
		if _, err := findMailbox(j, number); err != nil {
			return err
		}

		from, to, err := parseDateFilters(ctx)
		if err != nil {
			return cli.Exit(err.Error(), 2)
		}
		substr := strings.ToLower(ctx.String("substr"))

		it, err := openMailboxIterator(j, number)
		if err != nil {
			return exitForErr(err)
		}

		for {
			record, folder, ok := it.Next()
			if !ok {
				break
			}
			msg, isEmail := record.(*entity.EmailMessage)
			if !isEmail {
				continue
			}
			if substr != "" && !strings.Contains(strings.ToLower(msg.Subject), substr) {
				continue
			}
			if !withinRange(msg.DateSent, from, to) {
				continue
			}
			fmt.Printf("%d\t%s\t%s\t%s\n", it.LastDocID(), folder.DisplayName, formatDate(msg.DateSent), msg.Subject)
		}
		return j.finish()
	},
}

var exportEmailCommand = &cli.Command{
	Name: "export-email",
	Usage: "Export a single email message as EML",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "mailbox", Aliases: []string{"m"}, Usage: "Mailbox number"},
		&cli.Int64Flag{Name: "docid", Aliases: []string{"r"}, Usage: "MessageDocumentId of the message to export"},
		&cli.PathFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output .eml path"},
	},
	Action: func(ctx *cli.Context) error {
		j, err := openJob(ctx)
		if err != nil {
			return err
		}
		number, err := mailboxNumberFlag(ctx)
		if err != nil {
			return err
		}
		docID := ctx.Int64("docid")
		output := ctx.Path("output")
		if output == "" {
			return cli.Exit("Error: -o/--output is required", 2)
		}
		if _, err := findMailbox(j, number); err != nil {
			return err
		}

		it, err := openMailboxIterator(j, number)
		if err != nil {
			return exitForErr(err)
		}

		for {
			record, _, ok := it.Next()
			if !ok {
				return cli.Exit(fmt.Sprintf("Error: no message with docid %d", docID), 2)
			}
			if it.LastDocID() != docID {
				continue
			}
			msg, isEmail := record.(*entity.EmailMessage)
			if !isEmail {
				return cli.Exit(fmt.Sprintf("Error: docid %d is not an email message", docID), 2)
			}
			data, err := export.EML(msg)
			if err != nil {
				return exitForErr(err)
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return exitForErr(err)
			}
			break
		}
		return j.finish()
	},
}

func parseDateFilters(ctx *cli.Context) (from, to *time.Time, err error) {
	if s := ctx.String("date-from"); s != "" {
		t, err := time.Parse(dateFilterLayout, s)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid --date-from %q: %w", s, err)
		}
		from = &t
	}
	if s := ctx.String("date-to"); s != "" {
		t, err := time.Parse(dateFilterLayout, s)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid --date-to %q: %w", s, err)
		}
		// Include the whole --date-to day, not just its first instant.
		end := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		to = &end
	}
	return from, to, nil
}

func withinRange(t *time.Time, from, to *time.Time) bool {
	if t == nil {
		return from == nil && to == nil
	}
	if from != nil && t.Before(*from) {
		return false
	}
	if to != nil && t.After(*to) {
		return false
	}
	return true
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dateFilterLayout)
}
