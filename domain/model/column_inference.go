package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// typeMatcher pairs a column type with the parser deciding whether a single
// non-null cell belongs to it. The parser also yields the typed value that
// loaders send to the database.
type typeMatcher struct {
	columnType ColumnType
	parse      func(value string) (any, bool)
}

// typeMatchers lists candidate types from narrowest to widest. The first
// matcher that accepts every non-null cell of a column wins; TEXT is the
// fallback and never needs a matcher.
var typeMatchers = []typeMatcher{
	{columnType: ColumnTypeBoolean, parse: parseBoolean},
	{columnType: ColumnTypeInteger, parse: parseInteger},
	{columnType: ColumnTypeFloat, parse: parseFloat},
	{columnType: ColumnTypeDate, parse: parseDate},
	{columnType: ColumnTypeTimestamp, parse: parseTimestamp},
}

// nullTokens are cell values treated as missing, in addition to blank cells.
var nullTokens = map[string]struct{}{
	"NULL": {},
	"null": {},
	"NaN":  {},
	"nan":  {},
	"NA":   {},
	"N/A":  {},
	"#N/A": {},
}

// IsNull reports whether a cell is missing: blank or one of the null tokens.
func IsNull(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return true
	}
	_, ok := nullTokens[value]
	return ok
}

// InferColumnType returns the narrowest column type every non-null value
// parses as. A column with no non-null values is TEXT. Values are not modified.
func InferColumnType(values []string) ColumnType {
	remaining := make([]typeMatcher, len(typeMatchers))
	copy(remaining, typeMatchers)

	nonNull := 0
	for _, value := range values {
		if IsNull(value) {
			continue
		}
		nonNull++
		value = strings.TrimSpace(value)

		kept := remaining[:0]
		for _, m := range remaining {
			if _, ok := m.parse(value); ok {
				kept = append(kept, m)
			}
		}
		remaining = kept
		if len(remaining) == 0 {
			return ColumnTypeText
		}
	}

	if nonNull == 0 {
		return ColumnTypeText
	}
	return remaining[0].columnType
}

// ColumnValues returns the cells of column index i across records. Short
// records contribute an empty (null) cell.
func ColumnValues(records []Record, i int) []string {
	values := make([]string, len(records))
	for j, record := range records {
		if i < len(record) {
			values[j] = record[i]
		}
	}
	return values
}

// ParseValue converts a cell into the Go value loaders send for columnType:
// nil for null cells, bool, int64, float64, time.Time or string.
func ParseValue(columnType ColumnType, value string) (any, error) {
	if IsNull(value) {
		return nil, nil
	}
	if columnType == ColumnTypeText {
		return value, nil
	}
	for _, m := range typeMatchers {
		if m.columnType != columnType {
			continue
		}
		if v, ok := m.parse(strings.TrimSpace(value)); ok {
			return v, nil
		}
		break
	}
	return nil, fmt.Errorf("%w: %q is not a valid %s", ErrInvalidValue, value, columnType)
}

func parseBoolean(value string) (any, bool) {
	switch strings.ToLower(value) {
	case "true", "t", "yes", "y", "on":
		return true, true
	case "false", "f", "no", "n", "off":
		return false, true
	default:
		return nil, false
	}
}

func parseInteger(value string) (any, bool) {
	if hasLeadingZero(value) {
		return nil, false
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return nil, false
	}
	return n, true
}

// floatPattern accepts plain decimal and scientific notation only; hex
// floats and inf/nan spellings that strconv would accept are rejected.
var floatPattern = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

func parseFloat(value string) (any, bool) {
	if !floatPattern.MatchString(value) || hasLeadingZero(value) {
		return nil, false
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, false
	}
	return f, true
}

// hasLeadingZero reports zero-padded numbers such as "007" or "-01.5".
// Storing them as numbers would drop the padding.
func hasLeadingZero(value string) bool {
	if value != "" && (value[0] == '+' || value[0] == '-') {
		value = value[1:]
	}
	return len(value) > 1 && value[0] == '0' && isDigit(value[1])
}

// datetimePattern is a cheap regexp gate in front of the time layouts that
// may parse a value.
type datetimePattern struct {
	pattern *regexp.Regexp
	formats []string
}

var datePatterns = []datetimePattern{
	// ISO8601 date
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`),
		[]string{"2006-01-02"},
	},
	// US format
	{
		regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4}$`),
		[]string{"1/2/2006", "01/02/2006"},
	},
	// European format
	{
		regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.\d{4}$`),
		[]string{"2.1.2006", "02.01.2006"},
	},
}

var timestampPatterns = []datetimePattern{
	// ISO8601 with timezone
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d+)?(Z|[+-]\d{2}:\d{2})$`),
		[]string{time.RFC3339, time.RFC3339Nano},
	},
	// ISO8601 without timezone
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}(:\d{2}(\.\d+)?)?$`),
		[]string{"2006-01-02T15:04:05", "2006-01-02T15:04"},
	},
	// ISO8601 date and time with space
	{
		regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}(:\d{2}(\.\d+)?)?$`),
		[]string{"2006-01-02 15:04:05", "2006-01-02 15:04"},
	},
	// US formats
	{
		regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{4} \d{1,2}:\d{2}(:\d{2})?( (AM|PM))?$`),
		[]string{"1/2/2006 15:04:05", "1/2/2006 3:04:05 PM", "1/2/2006 15:04", "1/2/2006 3:04 PM"},
	},
	// European formats
	{
		regexp.MustCompile(`^\d{1,2}\.\d{1,2}\.\d{4} \d{1,2}:\d{2}(:\d{2})?$`),
		[]string{"2.1.2006 15:04:05", "2.1.2006 15:04"},
	},
}

func parseDate(value string) (any, bool) {
	if t, ok := matchLayouts(datePatterns, value); ok {
		return t, true
	}
	return nil, false
}

// parseTimestamp accepts date-times and plain dates, so a column mixing both
// widens to TIMESTAMP. Values carrying an offset are converted to UTC.
func parseTimestamp(value string) (any, bool) {
	if t, ok := matchLayouts(timestampPatterns, value); ok {
		return t.UTC(), true
	}
	return parseDate(value)
}

func matchLayouts(patterns []datetimePattern, value string) (time.Time, bool) {
	for _, dp := range patterns {
		if !dp.pattern.MatchString(value) {
			continue
		}
		for _, format := range dp.formats {
			if t, err := time.Parse(format, value); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}
