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

// Package diag implements the error taxonomy and per-job diagnostic
// reporting for the extraction and synthesis engines: every error that
// crosses a package boundary is one of the sentinel Kinds below,
// carrying table/row/column context via exterrors.Fields.
package diag

import (
	"errors"
	"fmt"
)

// Kind is one of the closed set of error categories engines may report.
type Kind string

const (
	InputNotFound               Kind = "InputNotFound"
	MalformedDatabase           Kind = "MalformedDatabase"
	UnsupportedColumnType       Kind = "UnsupportedColumnType"
	DecompressionFailed         Kind = "DecompressionFailed"
	UnexpectedPropertyBlobShape Kind = "UnexpectedPropertyBlobShape"
	LongValueMissing            Kind = "LongValueMissing"
	PstSpaceExhausted           Kind = "PstSpaceExhausted"
	Cancelled                   Kind = "Cancelled"
	IoError                     Kind = "IoError"
)

// Error is the concrete error type carrying a Kind plus structured
// context (table, row, column) usable both as a normal error and, via
// Fields, by framework/log.Logger.Error.
type Error struct {
	Kind    Kind
	Table   string
	Row     int64
	Column  string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	ctx := ""
	if e.Table != "" {
		ctx = fmt.Sprintf(" [table=%s row=%d column=%s]", e.Table, e.Row, e.Column)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s%s: %v", e.Kind, e.Message, ctx, e.Cause)
	}
	return fmt.Sprintf("%s: %s%s", e.Kind, e.Message, ctx)
}

func (e *Error) Unwrap() error { return e.Cause }

// Temporary reports whether re-running the job that produced e stands a
// chance of succeeding: Cancelled (the caller asked to stop, nothing
// about the data was wrong) and IoError (a transient filesystem/network
// condition) are temporary; every other Kind describes a property of the
// input itself (malformed bytes, an unsupported compression tag, a
// blown space budget) that a retry cannot fix. Consulted via
// exterrors.IsTemporaryOrUnspec by the CLI to decide whether a failed
// export's resume checkpoint is worth keeping.
func (e *Error) Temporary() bool {
	switch e.Kind {
	case Cancelled, IoError:
		return true
	default:
		return false
	}
}

func (e *Error) Fields() map[string]interface{} {
	f := map[string]interface{}{"kind": string(e.Kind)}
	if e.Table != "" {
		f["table"] = e.Table
	}
	if e.Row != 0 {
		f["row"] = e.Row
	}
	if e.Column != "" {
		f["column"] = e.Column
	}
	return f
}

// New builds a bare diagnostic error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds a diagnostic error of the given kind around a cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// WithContext returns a shallow copy of e annotated with table/row/column
// context, for use where a lower-level error is re-surfaced by a caller
// that knows which row produced it.
func (e *Error) WithContext(table string, row int64, column string) *Error {
	cp := *e
	cp.Table = table
	cp.Row = row
	cp.Column = column
	return &cp
}

// KindOf extracts the Kind of err if it (or something it wraps) is a
// *Error, and IoError otherwise - every failure that reaches the CLI
// boundary must be classifiable.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return IoError
}
