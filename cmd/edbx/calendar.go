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
	"os"

	"github.com/urfave/cli/v2"

	"github.com/edbxtool/edbx/internal/entity"
	"github.com/edbxtool/edbx/internal/export"
)

var exportCalendarCommand = &cli.Command{
	Name: "export-calendar",
	Usage: "Export every calendar event in a mailbox as a single ICS file",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "mailbox", Aliases: []string{"m"}, Usage: "Mailbox number"},
		&cli.PathFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output .ics path"},
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

		var events []*entity.CalendarEvent
		for {
			record, _, ok := it.Next()
			if !ok {
				break
			}
			if ev, isEvent := record.(*entity.CalendarEvent); isEvent {
				events = append(events, ev)
			}
		}

		if err := os.WriteFile(output, export.ICS(events), 0o644); err != nil {
			return exitForErr(err)
		}
		return j.finish()
	},
}
