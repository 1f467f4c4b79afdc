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

// Package checkpoint stores the restartable folder/message iteration
// cursor for export jobs: a single (folder_id, doc_id) pair per job,
// durable across process restarts, in a modernc.org/sqlite database
// (pure Go, no cgo, so the toolkit stays a single static binary).
package checkpoint

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/edbxtool/edbx/internal/diag"
)

const schema = `
CREATE TABLE IF NOT EXISTS checkpoints (job_id TEXT PRIMARY KEY,
	folder_id TEXT NOT NULL,
	doc_id INTEGER NOT NULL,
	updated_at INTEGER NOT NULL);
`

// Store is a durable cursor table for one or more resumable jobs,
// keyed by an arbitrary caller-chosen job ID (e.g. the output PST path).
type Store struct {
	db *sql.DB

	save *sql.Stmt
	load *sql.Stmt
	drop *sql.Stmt
}

// Open creates or attaches to the checkpoint database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, diag.Wrap(diag.IoError, "open checkpoint db", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, diag.Wrap(diag.IoError, "init checkpoint schema", err)
	}

	s := &Store{db: db}
	if s.save, err = db.Prepare(`
		INSERT INTO checkpoints(job_id, folder_id, doc_id, updated_at)
		VALUES (?, ?, ?, strftime('%s', 'now'))
		ON CONFLICT(job_id) DO UPDATE SET
			folder_id = excluded.folder_id,
			doc_id = excluded.doc_id,
			updated_at = excluded.updated_at
	`); err != nil {
		db.Close()
		return nil, diag.Wrap(diag.IoError, "prepare checkpoint save", err)
	}
	if s.load, err = db.Prepare(`
		SELECT folder_id, doc_id FROM checkpoints WHERE job_id = ?
	`); err != nil {
		db.Close()
		return nil, diag.Wrap(diag.IoError, "prepare checkpoint load", err)
	}
	if s.drop, err = db.Prepare(`DELETE FROM checkpoints WHERE job_id = ?`); err != nil {
		db.Close()
		return nil, diag.Wrap(diag.IoError, "prepare checkpoint clear", err)
	}
	return s, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	s.save.Close()
	s.load.Close()
	s.drop.Close()
	return s.db.Close()
}

// Cursor identifies the next record a paused job should resume from:
// the folder currently being walked and the last document ID emitted
// from it.
type Cursor struct {
	FolderID string
	DocID    int64
}

// Save persists c as the resume point for jobID, replacing any prior
// checkpoint for the same job.
func (s *Store) Save(jobID string, c Cursor) error {
	if _, err := s.save.Exec(jobID, c.FolderID, c.DocID); err != nil {
		return diag.Wrap(diag.IoError, fmt.Sprintf("save checkpoint for job %q", jobID), err)
	}
	return nil
}

// Load returns the last saved cursor for jobID. ok is false if the job
// has no checkpoint, in which case the caller starts from the beginning.
func (s *Store) Load(jobID string) (c Cursor, ok bool, err error) {
	row := s.load.QueryRow(jobID)
	if scanErr := row.Scan(&c.FolderID, &c.DocID); scanErr != nil {
		if scanErr == sql.ErrNoRows {
			return Cursor{}, false, nil
		}
		return Cursor{}, false, diag.Wrap(diag.IoError, fmt.Sprintf("load checkpoint for job %q", jobID), scanErr)
	}
	return c, true, nil
}

// Clear removes the checkpoint for jobID, called once a job completes
// successfully so a later run of the same job ID starts fresh.
func (s *Store) Clear(jobID string) error {
	if _, err := s.drop.Exec(jobID); err != nil {
		return diag.Wrap(diag.IoError, fmt.Sprintf("clear checkpoint for job %q", jobID), err)
	}
	return nil
}
