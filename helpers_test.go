package pgimport

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	"github.com/apache/arrow/go/v18/arrow/memory"
	"github.com/apache/arrow/go/v18/parquet"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/nao1215/pgimport/domain/model"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// writeTestFile writes content to name inside dir, compressing it according
// to the file extension.
func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	w, closer, err := createCompressed(path, model.DetectCompression(name))
	require.NoError(t, err)
	_, err = w.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, closer())
	return path
}

// writeTestWorkbook writes an xlsx file with one sheet per entry of sheets,
// in the given order.
func writeTestWorkbook(t *testing.T, dir, name string, sheetNames []string, sheets map[string][][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheetNames {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", sheet))
		} else {
			_, err := f.NewSheet(sheet)
			require.NoError(t, err)
		}
		for r, row := range sheets[sheet] {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			require.NoError(t, err)
			rowCopy := row
			require.NoError(t, f.SetSheetRow(sheet, cell, &rowCopy))
		}
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

// writeTestParquet writes a parquet file with an id, a nullable name and a score column.
func writeTestParquet(t *testing.T, dir, name string) string {
	t.Helper()

	schema := arrow.NewSchema([]arrow.Field{
		{Name: "ID", Type: arrow.PrimitiveTypes.Int64},
		{Name: "Full Name", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "Score", Type: arrow.PrimitiveTypes.Float64},
	}, nil)

	b := array.NewRecordBuilder(memory.DefaultAllocator, schema)
	defer b.Release()
	b.Field(0).(*array.Int64Builder).AppendValues([]int64{1, 2, 3}, nil)
	b.Field(1).(*array.StringBuilder).AppendValues([]string{"Ayşe", "", "Çağrı"}, []bool{true, false, true})
	b.Field(2).(*array.Float64Builder).AppendValues([]float64{1.5, 2, 3.25}, nil)

	rec := b.NewRecord()
	defer rec.Release()
	tbl := array.NewTableFromRecords(schema, []arrow.Record{rec})
	defer tbl.Release()

	var buf bytes.Buffer
	require.NoError(t, pqarrow.WriteTable(tbl, &buf, 1024, parquet.NewWriterProperties(), pqarrow.DefaultWriterProps()))

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0600))
	return path
}

// readAllDatasets drains a source.
func readAllDatasets(t *testing.T, path string) ([]*model.Dataset, []error) {
	t.Helper()

	src, err := NewDatasetSource(path)
	require.NoError(t, err)

	var (
		datasets []*model.Dataset
		errs     []error
	)
	for ds, err := range src.Datasets(t.Context()) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		datasets = append(datasets, ds)
	}
	return datasets, errs
}

// compressTestFile writes the contents of src to dir/name, compressed
// according to the extension of name.
func compressTestFile(t *testing.T, src, dir, name string) string {
	t.Helper()

	data, err := os.ReadFile(src) //nolint:gosec // test fixture
	require.NoError(t, err)
	return writeTestFile(t, dir, name, string(data))
}
