package pgimport

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors. Match them with errors.Is; the returned errors carry the
// file, table and step that failed.
var (
	// ErrEmptyData means a source has no header row, no sheets or no elements.
	ErrEmptyData = errors.New("pgimport: empty data source")
	// ErrUnsupportedFormat means the file extension is not a known data format.
	ErrUnsupportedFormat = errors.New("pgimport: unsupported file format")
	// ErrInvalidData means the content could not be parsed.
	ErrInvalidData = errors.New("pgimport: invalid data format")
	// ErrSourceConsumed is returned when a DatasetSource is iterated a second time.
	ErrSourceConsumed = errors.New("pgimport: dataset source already consumed")
	// ErrNoInputFiles means the given paths held no data file.
	ErrNoInputFiles = errors.New("pgimport: no input files")
	// ErrNothingLoaded means a run ended without a single table loaded.
	ErrNothingLoaded = errors.New("pgimport: no table was loaded")
	// ErrFileNotFound means an input path given to the Builder does not exist.
	ErrFileNotFound = errors.New("pgimport: file not found")
	// ErrInvalidOption means a builder, export or CLI option is out of range.
	ErrInvalidOption = errors.New("pgimport: invalid option")
)

// ErrorContext names the step an error happened in. It is a value, so
// WithTable and WithDetails return a copy and leave the receiver unchanged.
//
//	errCtx := NewErrorContext("parse csv", path)
//	return errCtx.WithDetails("row 3").Error(ErrInvalidData)
type ErrorContext struct {
	step    string
	path    string
	table   string
	details string
}

// NewErrorContext starts a context for step on the file or directory at path.
func NewErrorContext(step, path string) ErrorContext {
	return ErrorContext{step: step, path: path}
}

// WithTable returns a copy that also names the target table.
func (c ErrorContext) WithTable(table string) ErrorContext {
	c.table = table
	return c
}

// WithDetails returns a copy carrying a free-form note, such as a row or sheet.
func (c ErrorContext) WithDetails(details string) ErrorContext {
	c.details = details
	return c
}

// Error wraps cause with the context, for example
// "pgimport: parse csv data.csv (row 3): pgimport: invalid data format".
// A nil cause yields an error holding just the context.
func (c ErrorContext) Error(cause error) error {
	var b strings.Builder
	b.WriteString("pgimport: ")
	b.WriteString(c.step)
	if c.path != "" {
		b.WriteString(" " + c.path)
	}

	var notes []string
	if c.table != "" {
		notes = append(notes, "table "+c.table)
	}
	if c.details != "" {
		notes = append(notes, c.details)
	}
	if len(notes) > 0 {
		b.WriteString(" (" + strings.Join(notes, "; ") + ")")
	}

	if cause == nil {
		return errors.New(b.String())
	}
	return fmt.Errorf("%s: %w", b.String(), cause)
}
