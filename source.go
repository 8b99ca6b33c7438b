package pgimport

import (
	"context"
	"iter"
	"sync/atomic"

	"github.com/nao1215/pgimport/domain/model"
)

// ctxCheckInterval is the number of rows read between context checks.
const ctxCheckInterval = 1024

// DatasetSource yields the datasets contained in one data file. CSV, TSV,
// JSON and Parquet files contain exactly one dataset; an Excel workbook
// yields one dataset per sheet.
type DatasetSource interface {
	// File returns the file the source reads.
	File() *model.File
	// Datasets returns a lazy, finite sequence of datasets. A failing
	// dataset is yielded as a non-nil error and iteration continues with
	// the next one. The sequence may be ranged over only once; later
	// iterations yield ErrSourceConsumed.
	Datasets(ctx context.Context) iter.Seq2[*model.Dataset, error]
}

// readFunc reads every dataset of a file and hands it to yield until yield returns false.
type readFunc func(ctx context.Context, file *model.File, yield func(*model.Dataset, error) bool)

type fileSource struct {
	file     *model.File
	read     readFunc
	consumed atomic.Bool
}

// NewDatasetSource returns the DatasetSource for the file at path, chosen by its extension.
func NewDatasetSource(path string) (DatasetSource, error) {
	f := model.NewFile(path)

	var read readFunc
	switch f.Type() {
	case model.FileTypeCSV:
		read = readDelimited(csvDelimiter)
	case model.FileTypeTSV:
		read = readDelimited(tsvDelimiter)
	case model.FileTypeJSON:
		read = readJSON
	case model.FileTypeXLSX:
		read = readXLSX
	case model.FileTypeParquet:
		read = readParquet
	default:
		return nil, NewErrorContext("open source", path).Error(ErrUnsupportedFormat)
	}

	return &fileSource{file: f, read: read}, nil
}

// File returns the file the source reads.
func (s *fileSource) File() *model.File {
	return s.file
}

// Datasets implements DatasetSource.
func (s *fileSource) Datasets(ctx context.Context) iter.Seq2[*model.Dataset, error] {
	return func(yield func(*model.Dataset, error) bool) {
		if s.consumed.Swap(true) {
			yield(nil, NewErrorContext("read datasets", s.file.Path()).Error(ErrSourceConsumed))
			return
		}
		if err := ctx.Err(); err != nil {
			yield(nil, err)
			return
		}
		s.read(ctx, s.file, yield)
	}
}

// padRecord returns cells widened to width with empty cells.
func padRecord(cells []string, width int) model.Record {
	record := make(model.Record, width)
	copy(record, cells)
	return record
}
