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

// Command edbx is the CLI surface over the extraction and synthesis
// engines: it opens an EDB input (via the esefixture
// reference backend - see internal/esefixture's doc comment for why),
// walks mailboxes/folders/messages, and emits EML/ICS/VCF or a
// synthesized PST.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.NewApp()
	app.Name = "edbx"
	app.Usage = "Exchange EDB extraction and PST synthesis toolkit"
	app.ExitErrHandler = func(c *cli.Context, err error) {
		cli.HandleExitCoder(err)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			cli.OsExiter(1)
		}
	}

	app.Flags = []cli.Flag{
		&cli.PathFlag{
			Name: "input",
			Aliases: []string{"i"},
			Usage: "EDB extraction fixture to read (see internal/esefixture)",
			EnvVars: []string{"EDBX_INPUT"},
		},
		&cli.BoolFlag{
			Name: "verbose",
			Usage: "Enable debug logging",
		},
		&cli.StringFlag{
			Name: "metrics-addr",
			Usage: "Expose OpenMetrics counters on ADDR for the duration of the command",
		},
	}

	app.Commands = []*cli.Command{
		infoCommand,
		listMailboxesCommand,
		listFoldersCommand,
		listEmailsCommand,
		exportEmailCommand,
		exportFolderCommand,
		exportMailboxCommand,
		exportCalendarCommand,
	}

	if err := app.Run(os.Args); err != nil {
		cli.HandleExitCoder(err)
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}
