package pgimport

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/pgimport/domain/model"
)

// ExportDataset writes ds to dir as <table><ext>, using the normalized column
// names of spec as header. It returns the path of the written file.
func ExportDataset(dir string, spec *model.TableSpec, ds *model.Dataset, options ExportOptions) (string, error) {
	errCtx := NewErrorContext("export", dir).WithTable(spec.Name)

	if err := options.Validate(); err != nil {
		return "", errCtx.Error(err)
	}
	if len(spec.Columns) != ds.NumColumns() {
		return "", errCtx.WithDetails(fmt.Sprintf("spec has %d columns, dataset has %d", len(spec.Columns), ds.NumColumns())).
			Error(ErrInvalidData)
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", errCtx.Error(fmt.Errorf("failed to create output directory: %w", err))
	}

	outputPath := filepath.Join(dir, spec.Name+options.FileExtension())
	writer, closer, err := createCompressed(outputPath, options.Compression)
	if err != nil {
		return "", errCtx.Error(err)
	}

	if err := writeDelimited(writer, options.Format.delimiter(), spec.ColumnNames(), ds.Records); err != nil {
		_ = closer()
		_ = os.Remove(outputPath)
		return "", errCtx.Error(err)
	}
	if err := closer(); err != nil {
		return "", errCtx.Error(err)
	}
	return outputPath, nil
}

func writeDelimited(w io.Writer, delimiter rune, header []string, records []model.Record) error {
	csvWriter := csv.NewWriter(w)
	csvWriter.Comma = delimiter

	if err := csvWriter.Write(header); err != nil {
		return err
	}
	for _, record := range records {
		if err := csvWriter.Write(record); err != nil {
			return err
		}
	}
	csvWriter.Flush()
	return csvWriter.Error()
}
