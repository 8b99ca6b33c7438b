package pgimport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
	"github.com/apache/arrow/go/v18/arrow/array"
	pqfile "github.com/apache/arrow/go/v18/parquet/file"
	"github.com/apache/arrow/go/v18/parquet/pqarrow"
	"github.com/nao1215/pgimport/domain/model"
)

// parquetBatchSize is the number of rows converted per record batch.
const parquetBatchSize = 4096

// readParquet reads a Parquet file into one dataset. Cells are rendered as
// text so that column types go through the same inference as other formats.
func readParquet(ctx context.Context, file *model.File, yield func(*model.Dataset, error) bool) {
	ds, err := parseParquet(ctx, file)
	yield(ds, err)
}

func parseParquet(ctx context.Context, file *model.File) (*model.Dataset, error) {
	errCtx := NewErrorContext("parse parquet", file.Path())

	reader, closer, err := openDecompressed(file)
	if err != nil {
		return nil, errCtx.Error(err)
	}
	defer closer() //nolint:errcheck // read-only file

	// Parquet requires random access
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, errCtx.Error(fmt.Errorf("failed to read parquet data: %w", err))
	}
	if len(data) == 0 {
		return nil, errCtx.Error(ErrEmptyData)
	}

	pqReader, err := pqfile.NewParquetReader(bytes.NewReader(data))
	if err != nil {
		return nil, errCtx.Error(fmt.Errorf("%w: %w", ErrInvalidData, err))
	}
	defer pqReader.Close()

	arrowReader, err := pqarrow.NewFileReader(pqReader, pqarrow.ArrowReadProperties{}, nil)
	if err != nil {
		return nil, errCtx.Error(fmt.Errorf("failed to create arrow reader: %w", err))
	}

	table, err := arrowReader.ReadTable(ctx)
	if err != nil {
		return nil, errCtx.Error(fmt.Errorf("failed to read table: %w", err))
	}
	defer table.Release()

	schema := table.Schema()
	header := make(model.Header, schema.NumFields())
	for i, field := range schema.Fields() {
		header[i] = field.Name
	}

	records := make([]model.Record, 0, table.NumRows())
	tableReader := array.NewTableReader(table, parquetBatchSize)
	defer tableReader.Release()

	for tableReader.Next() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		batch := tableReader.Record()
		for i := range int(batch.NumRows()) {
			row := make(model.Record, batch.NumCols())
			for j, col := range batch.Columns() {
				row[j] = arrowCellText(col, i)
			}
			records = append(records, row)
		}
	}
	if err := tableReader.Err(); err != nil && !errors.Is(err, io.EOF) {
		return nil, errCtx.Error(fmt.Errorf("error reading table records: %w", err))
	}

	return model.NewDataset(file.DatasetName(), header, records), nil
}

// arrowCellText renders one cell as text. Null cells become empty and
// timestamps are written as RFC 3339 in UTC.
func arrowCellText(col arrow.Array, i int) string {
	if col.IsNull(i) {
		return ""
	}
	if ts, ok := col.(*array.Timestamp); ok {
		unit := ts.DataType().(*arrow.TimestampType).Unit
		return ts.Value(i).ToTime(unit).UTC().Format(time.RFC3339Nano)
	}
	return col.ValueStr(i)
}
