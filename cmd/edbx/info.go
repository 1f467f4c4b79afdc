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

	"github.com/urfave/cli/v2"
)

var infoCommand = &cli.Command{
	Name: "info",
	Usage: "Print a summary of the input EDB",
	Action: func(ctx *cli.Context) error {
		j, err := openJob(ctx)
		if err != nil {
			return err
		}

		mailboxes, err := j.reader.Mailboxes()
		if err != nil {
			return exitForErr(err)
		}

		fmt.Printf("%d mailbox(es)\n", len(mailboxes))
		for _, mb := range mailboxes {
			fmt.Printf(" #%d %s (%d messages, last logon %s)\n",
				mb.Number, mb.OwnerDisplayName, mb.MessageCount, mb.LastLogon.Format("2006-01-02 15:04:05"))
		}
		return j.finish()
	},
}
