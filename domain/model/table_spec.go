package model

import (
	"fmt"
	"strings"
)

// ColumnSpec is one column of a TableSpec.
type ColumnSpec struct {
	// Name is the normalized, collision-free column identifier.
	Name string
	// Original is the header as it appeared in the source.
	Original string
	// Type is the inferred column type.
	Type ColumnType
}

// TableSpec is the sanitized name and typed schema of one table.
// Columns keep the order of the source header.
type TableSpec struct {
	// Name is the normalized table name, unique within an import run.
	Name string
	// Source is the raw dataset name the table was derived from.
	Source string
	// Columns has exactly one entry per source column.
	Columns []ColumnSpec
}

// ColumnNames returns the column identifiers in order.
func (s *TableSpec) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// ColumnTypes returns the column types in order.
func (s *TableSpec) ColumnTypes() []ColumnType {
	types := make([]ColumnType, len(s.Columns))
	for i, c := range s.Columns {
		types[i] = c.Type
	}
	return types
}

// String renders the spec as "name (col TYPE, ...)".
func (s *TableSpec) String() string {
	cols := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		cols[i] = c.Name + " " + c.Type.String()
	}
	return fmt.Sprintf("%s (%s)", s.Name, strings.Join(cols, ", "))
}

// ConvertRecord converts a record's cells into typed values with ParseValue.
func (s *TableSpec) ConvertRecord(record Record) ([]any, error) {
	values := make([]any, len(s.Columns))
	for i, c := range s.Columns {
		var cell string
		if i < len(record) {
			cell = record[i]
		}
		v, err := ParseValue(c.Type, cell)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", c.Name, err)
		}
		values[i] = v
	}
	return values, nil
}

// BuildTableSpec derives the TableSpec of ds.
//
// Column names are normalized and de-duplicated within the dataset, so
// "Email" and "email" become "email" and "email_2". Column types are inferred
// from every value of the column. The table name is normalized from
// datasetName and reserved in names as the very last step, so a failed build
// leaves names untouched.
func BuildTableSpec(datasetName string, ds *Dataset, names *NameRegistry) (*TableSpec, error) {
	if ds == nil || ds.NumColumns() == 0 {
		return nil, fmt.Errorf("%w: %q", ErrEmptySchema, datasetName)
	}

	columnNames := NewNameRegistry()
	columns := make([]ColumnSpec, len(ds.Header))
	for i, original := range ds.Header {
		name, err := columnNames.Reserve(NormalizeColumnName(original))
		if err != nil {
			return nil, fmt.Errorf("column %q of %q: %w", original, datasetName, err)
		}
		columns[i] = ColumnSpec{
			Name:     name,
			Original: original,
			Type:     InferColumnType(ds.Column(i)),
		}
	}

	tableName, err := names.Reserve(NormalizeTableName(datasetName))
	if err != nil {
		return nil, fmt.Errorf("table %q: %w", datasetName, err)
	}

	return &TableSpec{
		Name:    tableName,
		Source:  datasetName,
		Columns: columns,
	}, nil
}
