package pgimport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/pgimport/domain/model"
	"github.com/xuri/excelize/v2"
)

// readXLSX yields one dataset per sheet. A workbook with a single sheet is
// named after the file; with several sheets each dataset is named
// "<file>_<sheet>". Empty sheets are skipped.
func readXLSX(ctx context.Context, file *model.File, yield func(*model.Dataset, error) bool) {
	errCtx := NewErrorContext("parse xlsx", file.Path())

	workbook, err := openWorkbook(file)
	if err != nil {
		yield(nil, errCtx.Error(err))
		return
	}
	defer func() {
		_ = workbook.Close() // Ignore close error
	}()

	sheetNames := workbook.GetSheetList()
	if len(sheetNames) == 0 {
		yield(nil, errCtx.WithDetails("no sheets found").Error(ErrEmptyData))
		return
	}

	for _, sheetName := range sheetNames {
		if err := ctx.Err(); err != nil {
			yield(nil, err)
			return
		}

		ds, err := parseSheet(workbook, sheetName, sheetDatasetName(file, sheetName, len(sheetNames)))
		if err != nil {
			if !yield(nil, NewErrorContext("parse xlsx", file.Path()).WithDetails("sheet "+sheetName).Error(err)) {
				return
			}
			continue
		}
		if ds == nil {
			continue
		}
		if !yield(ds, nil) {
			return
		}
	}
}

// openWorkbook opens the workbook from disk, reading compressed files into memory first.
func openWorkbook(file *model.File) (*excelize.File, error) {
	if !file.IsCompressed() {
		return excelize.OpenFile(file.Path())
	}

	reader, closer, err := openDecompressed(file)
	if err != nil {
		return nil, err
	}
	defer closer() //nolint:errcheck // read-only file

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, err
	}
	return excelize.OpenReader(bytes.NewReader(data))
}

// sheetDatasetName returns the dataset name of a sheet.
func sheetDatasetName(file *model.File, sheetName string, sheetCount int) string {
	if sheetCount == 1 {
		return file.DatasetName()
	}
	return file.DatasetName() + "_" + sheetName
}

// parseSheet converts a sheet into a dataset. The first row is the header.
// It returns nil without error for an empty sheet.
func parseSheet(workbook *excelize.File, sheetName, datasetName string) (*model.Dataset, error) {
	rows, err := workbook.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheetName, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	if err := newDateCells(workbook).restore(sheetName, rows); err != nil {
		return nil, fmt.Errorf("failed to read dates of sheet %s: %w", sheetName, err)
	}

	header, records := convertXLSXRows(rows)
	return model.NewDataset(datasetName, header, records), nil
}

// convertXLSXRows converts sheet rows to a header and records. Excel omits
// trailing empty cells, so the header is as wide as the widest row and
// short rows are padded.
func convertXLSXRows(rows [][]string) (model.Header, []model.Record) {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	header := make(model.Header, width)
	copy(header, rows[0])

	records := make([]model.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		records = append(records, padRecord(row, width))
	}
	return header, records
}

// dateCells rewrites date-formatted cells, which GetRows returns in their
// display format ("01-02-24"), as ISO dates so that type inference sees them.
type dateCells struct {
	workbook *excelize.File
	date1904 bool
	styles   map[int]bool // style ID -> has a date or time number format
}

func newDateCells(workbook *excelize.File) *dateCells {
	d := &dateCells{workbook: workbook, styles: make(map[int]bool)}
	if props, err := workbook.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		d.date1904 = *props.Date1904
	}
	return d
}

// restore replaces, in place, every cell of rows whose raw value is an Excel
// serial number and whose style has a date or time format. Only cells whose
// displayed text differs from the raw value are looked at.
func (d *dateCells) restore(sheetName string, rows [][]string) error {
	raw, err := d.workbook.GetRows(sheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		return err
	}

	for r, row := range rows {
		if r >= len(raw) {
			break
		}
		for c, shown := range row {
			if c >= len(raw[r]) || raw[r][c] == shown {
				continue
			}
			serial, err := strconv.ParseFloat(raw[r][c], 64)
			if err != nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			isDate, err := d.isDateCell(sheetName, cell)
			if err != nil {
				return err
			}
			if !isDate {
				continue
			}
			if text, ok := formatExcelSerial(serial, d.date1904); ok {
				row[c] = text
			}
		}
	}
	return nil
}

func (d *dateCells) isDateCell(sheetName, cell string) (bool, error) {
	styleID, err := d.workbook.GetCellStyle(sheetName, cell)
	if err != nil {
		return false, err
	}
	if isDate, ok := d.styles[styleID]; ok {
		return isDate, nil
	}

	style, err := d.workbook.GetStyle(styleID)
	if err != nil {
		return false, err
	}
	isDate := isDateNumFmt(style.NumFmt)
	if style.CustomNumFmt != nil {
		isDate = isDateFormatCode(*style.CustomNumFmt)
	}
	d.styles[styleID] = isDate
	return isDate, nil
}

// isDateNumFmt reports whether id is a built-in date or time number format.
func isDateNumFmt(id int) bool {
	return (id >= 14 && id <= 22) || (id >= 45 && id <= 47)
}

// isDateFormatCode reports whether a custom number format renders a date or
// a time. Quoted text, bracketed sections and escaped characters are ignored.
func isDateFormatCode(code string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for i := 0; i < len(code); i++ {
		ch := code[i]
		switch {
		case inQuote:
			inQuote = ch != '"'
		case inBracket:
			inBracket = ch != ']'
		case ch == '"':
			inQuote = true
		case ch == '[':
			inBracket = true
		case ch == '\\' || ch == '_' || ch == '*':
			i++
		default:
			b.WriteByte(ch)
		}
	}
	return strings.ContainsAny(strings.ToLower(b.String()), "ydhs")
}

// formatExcelSerial renders an Excel serial date as "2006-01-02", or as
// "2006-01-02 15:04:05" when it has a time of day. Serials below one day are
// plain times.
func formatExcelSerial(serial float64, date1904 bool) (string, bool) {
	t, err := excelize.ExcelDateToTime(serial, date1904)
	if err != nil {
		return "", false
	}
	if serial < 1 {
		return t.Format("15:04:05"), true
	}
	if h, m, s := t.Clock(); h == 0 && m == 0 && s == 0 {
		return t.Format("2006-01-02"), true
	}
	return t.Format("2006-01-02 15:04:05"), true
}
