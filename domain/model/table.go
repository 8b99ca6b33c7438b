package model

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Dataset is one tabular unit read from a file: a CSV file, a JSON record
// set or a single Excel sheet. It becomes exactly one database table.
type Dataset struct {
	// Name is the raw dataset name, usually derived from the file path.
	Name string
	// Header holds the original column names in file order.
	Header Header
	// Records holds the rows; every record has one cell per header column.
	Records []Record
}

// NewDataset create new Dataset.
func NewDataset(name string, header Header, records []Record) *Dataset {
	return &Dataset{
		Name:    name,
		Header:  header,
		Records: records,
	}
}

// NumColumns returns the number of columns.
func (d *Dataset) NumColumns() int {
	return len(d.Header)
}

// NumRows returns the number of records.
func (d *Dataset) NumRows() int {
	return len(d.Records)
}

// Column returns all cells of column i.
func (d *Dataset) Column(i int) []string {
	return ColumnValues(d.Records, i)
}

// Validate checks that every record has exactly one cell per column.
func (d *Dataset) Validate() error {
	for i, record := range d.Records {
		if len(record) != len(d.Header) {
			return fmt.Errorf("%w: dataset %q row %d has %d cells, header has %d",
				ErrRaggedRecord, d.Name, i+1, len(record), len(d.Header))
		}
	}
	return nil
}

// Equal compare Dataset.
func (d *Dataset) Equal(d2 *Dataset) bool {
	if d.Name != d2.Name {
		return false
	}
	if !d.Header.Equal(d2.Header) {
		return false
	}
	if len(d.Records) != len(d2.Records) {
		return false
	}
	for i, record := range d.Records {
		if !record.Equal(d2.Records[i]) {
			return false
		}
	}
	return true
}

// TableFromFilePath creates a dataset name from a file path: the base name
// without compression and format extensions ("/in/Sales 2024.csv.gz" -> "Sales 2024").
func TableFromFilePath(filePath string) string {
	fileName := filepath.Base(filePath)
	lower := strings.ToLower(fileName)
	for _, ext := range compressionExtensions {
		if strings.HasSuffix(lower, ext) {
			fileName = fileName[:len(fileName)-len(ext)]
			break
		}
	}
	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}
