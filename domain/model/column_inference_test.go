package model

import (
	"errors"
	"testing"
	"time"
)

func TestInferColumnType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		values   []string
		expected ColumnType
	}{
		{
			name:     "all integers",
			values:   []string{"1", "2", "3"},
			expected: ColumnTypeInteger,
		},
		{
			name:     "mixed integers and floats",
			values:   []string{"1", "2.5"},
			expected: ColumnTypeFloat,
		},
		{
			name:     "all floats",
			values:   []string{"12.3", "45.6", "78.9"},
			expected: ColumnTypeFloat,
		},
		{
			name:     "mixed numbers and text",
			values:   []string{"1", "abc"},
			expected: ColumnTypeText,
		},
		{
			name:     "leading zeros stay text",
			values:   []string{"007", "008"},
			expected: ColumnTypeText,
		},
		{
			name:     "leading zero float stays text",
			values:   []string{"01.5", "2.5"},
			expected: ColumnTypeText,
		},
		{
			name:     "plain zero is an integer",
			values:   []string{"0", "10", "-3"},
			expected: ColumnTypeInteger,
		},
		{
			name:     "zero point something is a float",
			values:   []string{"0.5", "-0.25", ".75"},
			expected: ColumnTypeFloat,
		},
		{
			name:     "all null",
			values:   []string{"", "  ", "NULL", "NaN"},
			expected: ColumnTypeText,
		},
		{
			name:     "no values",
			values:   nil,
			expected: ColumnTypeText,
		},
		{
			name:     "integers with empty values",
			values:   []string{"123", "", "789", "null"},
			expected: ColumnTypeInteger,
		},
		{
			name:     "ones and zeros are integers not booleans",
			values:   []string{"1", "0", "1"},
			expected: ColumnTypeInteger,
		},
		{
			name:     "boolean literals",
			values:   []string{"true", "FALSE", "Yes", "no"},
			expected: ColumnTypeBoolean,
		},
		{
			name:     "boolean mixed with integers",
			values:   []string{"true", "1"},
			expected: ColumnTypeText,
		},
		{
			name:     "scientific notation",
			values:   []string{"1e10", "2.5e-3", "3.14e2"},
			expected: ColumnTypeFloat,
		},
		{
			name:     "integer overflow widens to float",
			values:   []string{"1", "99999999999999999999"},
			expected: ColumnTypeFloat,
		},
		{
			name:     "inf and nan spellings are text",
			values:   []string{"inf", "1.5"},
			expected: ColumnTypeText,
		},
		{
			name:     "hex is text",
			values:   []string{"0x1F"},
			expected: ColumnTypeText,
		},
		{
			name:     "ISO8601 dates",
			values:   []string{"2023-01-15", "2023-02-20"},
			expected: ColumnTypeDate,
		},
		{
			name:     "US and European dates",
			values:   []string{"1/15/2023", "15.01.2023"},
			expected: ColumnTypeDate,
		},
		{
			name:     "ISO8601 datetime",
			values:   []string{"2023-01-15T10:30:00", "2023-02-20 14:45:30"},
			expected: ColumnTypeTimestamp,
		},
		{
			name:     "RFC3339 with timezone",
			values:   []string{"2023-01-15T10:30:00Z", "2023-01-15T10:30:00+09:00"},
			expected: ColumnTypeTimestamp,
		},
		{
			name:     "dates mixed with datetimes widen to timestamp",
			values:   []string{"2023-01-15", "2023-01-16 08:00:00"},
			expected: ColumnTypeTimestamp,
		},
		{
			name:     "number mixed with date is text",
			values:   []string{"1", "2023-01-01"},
			expected: ColumnTypeText,
		},
		{
			name:     "invalid calendar date is text",
			values:   []string{"2023-02-30"},
			expected: ColumnTypeText,
		},
		{
			name:     "time only is text",
			values:   []string{"10:30:00"},
			expected: ColumnTypeText,
		},
		{
			name:     "whitespace around numbers is ignored",
			values:   []string{" 42 ", "7"},
			expected: ColumnTypeInteger,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			result := InferColumnType(tt.values)
			if result != tt.expected {
				t.Errorf("InferColumnType(%v) = %v, want %v", tt.values, result, tt.expected)
			}
		})
	}
}

func TestInferColumnType_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	values := []string{" 1 ", "2", ""}
	_ = InferColumnType(values)

	if values[0] != " 1 " || values[1] != "2" || values[2] != "" {
		t.Errorf("input was modified: %q", values)
	}
}

func TestInferColumnType_Deterministic(t *testing.T) {
	t.Parallel()

	values := []string{"2023-01-15", "2023-01-16 08:00:00", ""}
	first := InferColumnType(values)
	for range 10 {
		if got := InferColumnType(values); got != first {
			t.Fatalf("InferColumnType returned %v then %v", first, got)
		}
	}
}

func TestIsNull(t *testing.T) {
	t.Parallel()

	for _, v := range []string{"", " ", "\t", "NULL", "null", "NaN", "nan", "NA", "N/A", "#N/A"} {
		if !IsNull(v) {
			t.Errorf("IsNull(%q) = false, want true", v)
		}
	}
	for _, v := range []string{"0", "none", "Nullable", "n"} {
		if IsNull(v) {
			t.Errorf("IsNull(%q) = true, want false", v)
		}
	}
}

func TestParseValue(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		columnType ColumnType
		value      string
		expected   any
	}{
		{"null cell", ColumnTypeInteger, "", nil},
		{"null token", ColumnTypeText, "NULL", nil},
		{"text kept as is", ColumnTypeText, " hello ", " hello "},
		{"integer", ColumnTypeInteger, " 42", int64(42)},
		{"float", ColumnTypeFloat, "2.5", 2.5},
		{"integer value in float column", ColumnTypeFloat, "3", 3.0},
		{"boolean", ColumnTypeBoolean, "Yes", true},
		{"date", ColumnTypeDate, "2023-01-15", time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"timestamp", ColumnTypeTimestamp, "2023-01-15 10:30:00", time.Date(2023, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"timestamp with offset is converted to UTC", ColumnTypeTimestamp, "2023-01-15T10:30:00+09:00", time.Date(2023, 1, 15, 1, 30, 0, 0, time.UTC)},
		{"date in timestamp column", ColumnTypeTimestamp, "2023-01-15", time.Date(2023, 1, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseValue(tt.columnType, tt.value)
			if err != nil {
				t.Fatalf("ParseValue() error = %v", err)
			}
			if want, ok := tt.expected.(time.Time); ok {
				gotTime, isTime := got.(time.Time)
				if !isTime || !gotTime.Equal(want) {
					t.Errorf("ParseValue() = %v, want %v", got, want)
				}
				return
			}
			if got != tt.expected {
				t.Errorf("ParseValue() = %#v, want %#v", got, tt.expected)
			}
		})
	}
}

func TestParseValue_Invalid(t *testing.T) {
	t.Parallel()

	_, err := ParseValue(ColumnTypeInteger, "abc")
	if !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue, got %v", err)
	}
}
