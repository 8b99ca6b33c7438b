package pgimport

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/nao1215/pgimport/domain/model"
)

const (
	csvDelimiter = ','
	tsvDelimiter = '\t'
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readDelimited returns a readFunc for CSV or TSV files with the given delimiter.
func readDelimited(delimiter rune) readFunc {
	return func(ctx context.Context, file *model.File, yield func(*model.Dataset, error) bool) {
		ds, err := parseDelimited(ctx, file, delimiter)
		yield(ds, err)
	}
}

// parseDelimited parses a CSV or TSV file into one dataset. The first row is
// the header. Short rows are padded with empty cells, long rows are rejected.
func parseDelimited(ctx context.Context, file *model.File, delimiter rune) (*model.Dataset, error) {
	errCtx := NewErrorContext("parse "+file.Type().String(), file.Path())

	reader, closer, err := openDecompressed(file)
	if err != nil {
		return nil, errCtx.Error(err)
	}
	defer closer() //nolint:errcheck // read-only file

	buffered := bufio.NewReader(reader)
	if err := skipBOM(buffered); err != nil {
		return nil, errCtx.Error(err)
	}

	csvReader := csv.NewReader(buffered)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	headerRow, err := csvReader.Read()
	if errors.Is(err, io.EOF) {
		return nil, errCtx.Error(ErrEmptyData)
	}
	if err != nil {
		return nil, errCtx.Error(fmt.Errorf("%w: %w", ErrInvalidData, err))
	}

	header := model.NewHeader(headerRow)
	var records []model.Record
	for row := 2; ; row++ {
		if row%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		cells, err := csvReader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errCtx.Error(fmt.Errorf("%w: %w", ErrInvalidData, err))
		}
		if len(cells) > len(header) {
			return nil, errCtx.WithDetails(fmt.Sprintf("row %d has %d cells, header has %d", row, len(cells), len(header))).
				Error(model.ErrRaggedRecord)
		}
		records = append(records, padRecord(cells, len(header)))
	}

	return model.NewDataset(file.DatasetName(), header, records), nil
}

// skipBOM discards a leading UTF-8 byte order mark.
func skipBOM(r *bufio.Reader) error {
	prefix, err := r.Peek(len(utf8BOM))
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	if len(prefix) == len(utf8BOM) && string(prefix) == string(utf8BOM) {
		_, err = r.Discard(len(utf8BOM))
		return err
	}
	return nil
}
