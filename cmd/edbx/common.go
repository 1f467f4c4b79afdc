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
	"os"

	"github.com/urfave/cli/v2"

	"github.com/edbxtool/edbx/framework/log"
	"github.com/edbxtool/edbx/internal/diag"
	"github.com/edbxtool/edbx/internal/edbreader"
	"github.com/edbxtool/edbx/internal/entity"
	"github.com/edbxtool/edbx/internal/esefixture"
)

// job bundles the pieces every command needs: a reader bound to the
// input file, a diagnostic report, and a logger, so each command.go
// file stays focused on its own business logic.
type job struct {
	reader *edbreader.Reader
	report *diag.Report
	logger log.Logger
}

func openJob(ctx *cli.Context) (*job, error) {
	input := ctx.String("input")
	if input == "" {
		return nil, cli.Exit("Error: --input is required", 2)
	}

	backend, err := esefixture.Load(input)
	if err != nil {
		return nil, exitForErr(err)
	}

	logger := log.Logger{Out: log.WriterOutput(os.Stderr, false), Name: "edbx", Debug: ctx.Bool("verbose")}
	report := diag.NewReport()
	return &job{
		reader: edbreader.New(backend, report),
		report: report,
		logger: logger,
	}, nil
}

// exitForErr maps err to a process exit code: InputNotFound and
// MalformedDatabase (a file that fails to load as an EDB at all) both
// surface as exit code 3.
func exitForErr(err error) error {
	switch diag.KindOf(err) {
	case diag.InputNotFound, diag.MalformedDatabase:
		return cli.Exit(err.Error(), 3)
	default:
		return cli.Exit(err.Error(), 1)
	}
}

// finish prints j's diagnostic summary to stderr and picks the final
// exit code: 0 if nothing was recorded, 4 (partial success with
// per-record diagnostics) otherwise.
func (j *job) finish() error {
	counts := j.report.Counts()
	if len(counts) == 0 {
		return nil
	}
	fmt.Fprintln(os.Stderr, "diagnostics:", j.report.Summary())
	return cli.Exit("", 4)
}

func mailboxNumberFlag(ctx *cli.Context) (int, error) {
	n := ctx.Int("mailbox")
	if n <= 0 {
		return 0, cli.Exit("Error: -m/--mailbox is required", 2)
	}
	return n, nil
}

// openMailboxIterator builds the folder topology and attachment store
// for number and returns a message iterator ready for folder-before-
// children, ascending-docid traversal.
func openMailboxIterator(j *job, number int) (*edbreader.MessageIterator, error) {
	top, err := j.reader.Folders(number)
	if err != nil {
		return nil, err
	}
	attachments, err := j.reader.AttachmentStore(number)
	if err != nil {
		return nil, err
	}
	return j.reader.Messages(number, top, attachments)
}

func findMailbox(j *job, number int) (*entity.Mailbox, error) {
	mailboxes, err := j.reader.Mailboxes()
	if err != nil {
		return nil, exitForErr(err)
	}
	for _, mb := range mailboxes {
		if mb.Number == number {
			return mb, nil
		}
	}
	return nil, cli.Exit(fmt.Sprintf("Error: no mailbox numbered %d", number), 2)
}

// parseFolderID decodes the hex form of a 26-byte FolderID as accepted
// by the -f/--folder flag (list-folders prints the same hex form).
func parseFolderID(s string) (entity.FolderID, error) {
	var id entity.FolderID
	raw, err := hex.DecodeString(s)
	if err != nil || len(raw) != len(id) {
		return id, fmt.Errorf("invalid folder id %q: want %d hex-encoded bytes", s, len(id))
	}
	copy(id[:], raw)
	return id, nil
}

func folderIDHex(id entity.FolderID) string {
	return id.String()
}
