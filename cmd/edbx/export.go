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
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/edbxtool/edbx/framework/exterrors"
	"github.com/edbxtool/edbx/internal/checkpoint"
	"github.com/edbxtool/edbx/internal/edbreader"
	"github.com/edbxtool/edbx/internal/entity"
	"github.com/edbxtool/edbx/internal/export"
	"github.com/edbxtool/edbx/internal/metrics"
	"github.com/edbxtool/edbx/internal/pst/msg"
)

var formatFlag = &cli.StringFlag{
	Name: "format",
	Usage: "Output format: eml (one .eml per email, plus calendar.ics/contacts.vcf) or pst (synthesized PST)",
	Value: "eml",
}

var exportFolderCommand = &cli.Command{
	Name: "export-folder",
	Usage: "Export one folder's messages",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "mailbox", Aliases: []string{"m"}, Usage: "Mailbox number"},
		&cli.StringFlag{Name: "folder", Aliases: []string{"f"}, Usage: "Folder ID, hex-encoded (see list-folders)"},
		&cli.PathFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output directory or .pst path"},
		formatFlag,
	},
	Action: func(ctx *cli.Context) error {
		number, err := mailboxNumberFlag(ctx)
		if err != nil {
			return err
		}
		folderID, err := parseFolderID(ctx.String("folder"))
		if err != nil {
			return cli.Exit("Error: "+err.Error(), 2)
		}
		include := func(f *entity.Folder) bool { return f.ID == folderID }
		return runExport(ctx, number, include, folderID)
	},
}

var exportMailboxCommand = &cli.Command{
	Name: "export-mailbox",
	Usage: "Export every folder in a mailbox",
	Flags: []cli.Flag{
		&cli.IntFlag{Name: "mailbox", Aliases: []string{"m"}, Usage: "Mailbox number"},
		&cli.PathFlag{Name: "output", Aliases: []string{"o"}, Usage: "Output directory or .pst path"},
		formatFlag,
	},
	Action: func(ctx *cli.Context) error {
		number, err := mailboxNumberFlag(ctx)
		if err != nil {
			return err
		}
		include := func(*entity.Folder) bool { return true }
		return runExport(ctx, number, include, entity.FolderID{})
	},
}

// runExport drives both export-folder and export-mailbox: they differ
// only in which folders are in scope (include) and, for PST synthesis,
// in whether the ancestor chain up to a single target folder also needs
// adding. folderID is the zero value for export-mailbox.
func runExport(ctx *cli.Context, number int, include func(*entity.Folder) bool, folderID entity.FolderID) error {
	j, err := openJob(ctx)
	if err != nil {
		return err
	}
	output := ctx.Path("output")
	if output == "" {
		return cli.Exit("Error: -o/--output is required", 2)
	}
	format := ctx.String("format")
	if format != "eml" && format != "pst" {
		return cli.Exit(fmt.Sprintf("Error: unknown --format %q (want eml or pst)", format), 2)
	}

	mailbox, err := findMailbox(j, number)
	if err != nil {
		return err
	}
	top, err := j.reader.Folders(number)
	if err != nil {
		return exitForErr(err)
	}

	stopMetrics := maybeServeMetrics(ctx, j)
	defer stopMetrics()

	cp, jobID, err := openCheckpoint(output)
	if err != nil {
		return exitForErr(err)
	}
	defer cp.Close()
	resumeDocID := int64(-1)
	if cursor, ok, err := cp.Load(jobID); err == nil && ok {
		resumeDocID = cursor.DocID
	}

	it, err := openMailboxIterator(j, number)
	if err != nil {
		return exitForErr(err)
	}
	if resumeDocID >= 0 {
		it.Seek(resumeDocID)
	}

	switch format {
	case "eml":
		err = exportLoose(it, include, output, j, cp, jobID)
	case "pst":
		err = exportPST(it, top, include, folderID, mailbox, output, j)
	}
	if err != nil {
		// A permanent failure (malformed input, unsupported compression,
		// a blown PST space budget) will fail again at the same point on
		// the next run, so the checkpoint is worthless - drop it rather
		// than leave a resume point nothing can ever resume past. A
		// temporary failure (Cancelled, IoError) keeps its checkpoint so
		// the next run picks up where this one stopped.
		if !exterrors.IsTemporaryOrUnspec(err) {
			if clearErr := cp.Clear(jobID); clearErr != nil {
				j.logger.Error("clear checkpoint after permanent failure", clearErr)
			}
		}
		return exitForErr(err)
	}
	if err := cp.Clear(jobID); err != nil {
		j.logger.Error("clear checkpoint", err)
	}
	return j.finish()
}

// exportLoose writes one .eml per email message plus a shared
// calendar.ics/contacts.vcf for any calendar/contact items
// encountered, checkpointing after every message so an interrupted
// run resumes from the last written file.
func exportLoose(it *edbreader.MessageIterator, include func(*entity.Folder) bool, outDir string, j *job, cp *checkpoint.Store, jobID string) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return err
	}
	var events []*entity.CalendarEvent
	var contacts []*entity.Contact
	for {
		record, folder, ok := it.Next()
		if !ok {
			break
		}
		if !include(folder) {
			continue
		}
		switch v := record.(type) {
		case *entity.EmailMessage:
			data, err := export.EML(v)
			if err != nil {
				j.report.RecordErr("Message", it.LastDocID(), "", err)
				j.logger.RecordContext("Message", it.LastDocID(), "").Error("export eml", err)
				continue
			}
			path := filepath.Join(outDir, fmt.Sprintf("%d.eml", it.LastDocID()))
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return err
			}
		case *entity.CalendarEvent:
			events = append(events, v)
		case *entity.Contact:
			contacts = append(contacts, v)
		}
		if err := cp.Save(jobID, checkpoint.Cursor{FolderID: folderIDHex(folder.ID), DocID: it.LastDocID()}); err != nil {
			j.logger.Error("save checkpoint", err)
		}
	}
	if len(events) > 0 {
		if err := os.WriteFile(filepath.Join(outDir, "calendar.ics"), export.ICS(events), 0o644); err != nil {
			return err
		}
	}
	if len(contacts) > 0 {
		if err := os.WriteFile(filepath.Join(outDir, "contacts.vcf"), export.VCF(contacts), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// exportPST synthesizes a PST containing every included folder (plus,
// for export-folder, its ancestor chain up to the mailbox root, so the
// single folder has somewhere to hang in the hierarchy) and every email
// message within scope. CalendarEvent and Contact records have no PST
// representation (msg.Builder.AddMessage only accepts
// *entity.EmailMessage); they are written alongside the PST as calendar.ics
// and contacts.vcf instead of being silently dropped. PST synthesis is
// not checkpointed: a partial PST with a truncated NDB is not a usable
// resume point, unlike loose EML output.
func exportPST(it *edbreader.MessageIterator, top *edbreader.Topology, include func(*entity.Folder) bool, folderID entity.FolderID, mailbox *entity.Mailbox, output string, j *job) error {
	builder := msg.NewBuilder(mailbox.GUID)

	var scope []*entity.Folder
	if folderID != (entity.FolderID{}) {
		scope = top.PathTo(folderID)
	} else {
		scope = top.Ordered()
	}
	if len(scope) == 0 {
		return fmt.Errorf("no folders in export scope")
	}
	added := make(map[entity.FolderID]bool)
	for _, f := range scope {
		if added[f.ID] {
			continue
		}
		if _, err := builder.AddFolder(f); err != nil {
			return err
		}
		added[f.ID] = true
	}

	var events []*entity.CalendarEvent
	var contacts []*entity.Contact
	for {
		record, folder, ok := it.Next()
		if !ok {
			break
		}
		if !include(folder) || !added[folder.ID] {
			continue
		}
		switch v := record.(type) {
		case *entity.EmailMessage:
			if _, err := builder.AddMessage(folder.ID, v); err != nil {
				j.report.RecordErr("Message", it.LastDocID(), "", err)
				j.logger.RecordContext("Message", it.LastDocID(), "").Error("add pst message", err)
			}
		case *entity.CalendarEvent:
			events = append(events, v)
		case *entity.Contact:
			contacts = append(contacts, v)
		}
	}

	if err := builder.FinishFolders(); err != nil {
		return err
	}
	if err := builder.WriteNameToIDMap(); err != nil {
		return err
	}
	if err := builder.WriteStore(mailbox); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return err
	}
	out := builder.Build()
	if err := os.WriteFile(output, out, 0o644); err != nil {
		return err
	}
	mbLabel := strconv.Itoa(mailbox.Number)
	metrics.PSTBlocksWritten.WithLabelValues(mbLabel).Add(float64(builder.BlocksWritten()))
	metrics.PSTBytesAllocated.WithLabelValues(mbLabel).Add(float64(len(out)))

	dir := filepath.Dir(output)
	if len(events) > 0 {
		if err := os.WriteFile(filepath.Join(dir, "calendar.ics"), export.ICS(events), 0o644); err != nil {
			return err
		}
	}
	if len(contacts) > 0 {
		if err := os.WriteFile(filepath.Join(dir, "contacts.vcf"), export.VCF(contacts), 0o644); err != nil {
			return err
		}
	}
	return nil
}

// maybeServeMetrics starts the OpenMetrics endpoint for the lifetime of
// the export if --metrics-addr was given, returning a stop function the
// caller should always defer.
func maybeServeMetrics(ctx *cli.Context, j *job) func() {
	addr := ctx.String("metrics-addr")
	if addr == "" {
		return func() {}
	}
	metricsCtx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- metrics.Serve(metricsCtx, addr, j.logger) }()
	return func() {
		cancel()
		<-done
	}
}

// openCheckpoint opens a resumability store next to the export output,
// keyed by the output path itself, so re-running the same export command
// resumes instead of restarting.
func openCheckpoint(output string) (*checkpoint.Store, string, error) {
	dir := filepath.Dir(output)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, "", err
	}
	path := filepath.Join(dir, ".edbx-checkpoints.db")
	store, err := checkpoint.Open(path)
	if err != nil {
		return nil, "", err
	}
	return store, output, nil
}
