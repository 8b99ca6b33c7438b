// Package model provides the domain model for pgimport: datasets, column
// types, name normalization, type inference and table specifications.
//
// Everything in this package is pure. No function performs I/O, so the
// schema pipeline can be tested without files or a database.
package model

import (
	"slices"
	"strings"
)

// Header holds the raw column names of a dataset, in source order.
type Header []string

// NewHeader wraps h without copying it.
func NewHeader(h []string) Header { return Header(h) }

// Equal reports whether both headers hold the same names in the same order.
func (h Header) Equal(other Header) bool { return slices.Equal(h, other) }

// Record is one dataset row. Cells are untyped text; an empty cell is null.
type Record []string

// NewRecord wraps r without copying it.
func NewRecord(r []string) Record { return Record(r) }

// Equal reports whether both records hold the same cells.
func (r Record) Equal(other Record) bool { return slices.Equal(r, other) }

// ColumnType is the SQL column type tag inferred for a column.
type ColumnType int

const (
	ColumnTypeText ColumnType = iota // fallback for anything else
	ColumnTypeInteger
	ColumnTypeFloat
	ColumnTypeBoolean
	ColumnTypeDate // calendar date, no time of day
	ColumnTypeTimestamp
)

const (
	tagText      = "TEXT"
	tagInteger   = "INTEGER"
	tagFloat     = "FLOAT"
	tagBoolean   = "BOOLEAN"
	tagDate      = "DATE"
	tagTimestamp = "TIMESTAMP"
)

// String returns the type tag name.
func (ct ColumnType) String() string {
	switch ct {
	case ColumnTypeInteger:
		return tagInteger
	case ColumnTypeFloat:
		return tagFloat
	case ColumnTypeBoolean:
		return tagBoolean
	case ColumnTypeDate:
		return tagDate
	case ColumnTypeTimestamp:
		return tagTimestamp
	default:
		return tagText
	}
}

// ParseColumnType returns the ColumnType for a tag name. Unknown names map to
// ColumnTypeText.
func ParseColumnType(tag string) ColumnType {
	switch strings.ToUpper(strings.TrimSpace(tag)) {
	case tagInteger:
		return ColumnTypeInteger
	case tagFloat:
		return ColumnTypeFloat
	case tagBoolean:
		return ColumnTypeBoolean
	case tagDate:
		return ColumnTypeDate
	case tagTimestamp:
		return ColumnTypeTimestamp
	default:
		return ColumnTypeText
	}
}
