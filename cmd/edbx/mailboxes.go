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
	"encoding/hex"
	"fmt"

	"github.com/urfave/cli/v2"
)

var listMailboxesCommand = &cli.Command{
	Name: "list-mailboxes",
	Usage: "List every mailbox in the input EDB",
	Action: func(ctx *cli.Context) error {
		j, err := openJob(ctx)
		if err != nil {
			return err
		}

		mailboxes, err := j.reader.Mailboxes()
		if err != nil {
			return exitForErr(err)
		}
		for _, mb := range mailboxes {
			fmt.Printf("%d\t%s\t%s\t%d messages\n", mb.Number, hex.EncodeToString(mb.GUID[:]), mb.OwnerDisplayName, mb.MessageCount)
		}
		return j.finish()
	},
}

var listFoldersCommand = &cli.Command{
	Name: "list-folders",
	Usage: "List the folder tree of one mailbox",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "mailbox", Aliases: []string{"m"}, Usage: "Mailbox number"},
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

		top, err := j.reader.Folders(number)
		if err != nil {
			return exitForErr(err)
		}
		for _, f := range top.Ordered() {
			fmt.Printf("%s\t%s\t%d\t%d messages\n", folderIDHex(f.ID), f.DisplayName, f.SpecialNumber, f.MessageCount)
		}
		return j.finish()
	},
}
