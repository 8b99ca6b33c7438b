package pgimport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/pgimport/domain/model"
)

// jsonKeySeparator joins the keys of nested objects into one column name.
const jsonKeySeparator = "."

// jsonField is one key/value pair of a JSON object, kept in document order.
type jsonField struct {
	key   string
	value any
}

// jsonObject is a JSON object whose key order is preserved.
type jsonObject []jsonField

// MarshalJSON encodes the object with its original key order.
func (o jsonObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(field.key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(field.value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// readJSON reads a JSON file holding an array of objects or a single object.
func readJSON(ctx context.Context, file *model.File, yield func(*model.Dataset, error) bool) {
	ds, err := parseJSON(ctx, file)
	yield(ds, err)
}

func parseJSON(ctx context.Context, file *model.File) (*model.Dataset, error) {
	errCtx := NewErrorContext("parse json", file.Path())

	reader, closer, err := openDecompressed(file)
	if err != nil {
		return nil, errCtx.Error(err)
	}
	defer closer() //nolint:errcheck // read-only file

	dec := json.NewDecoder(reader)
	dec.UseNumber()

	doc, err := decodeJSONValue(dec)
	if errors.Is(err, io.EOF) {
		return nil, errCtx.Error(ErrEmptyData)
	}
	if err != nil {
		return nil, errCtx.Error(fmt.Errorf("%w: %w", ErrInvalidData, err))
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errCtx.WithDetails("unexpected data after top-level value").Error(ErrInvalidData)
	}

	var objects []jsonObject
	switch v := doc.(type) {
	case jsonObject:
		objects = []jsonObject{v}
	case []any:
		objects = make([]jsonObject, 0, len(v))
		for i, elem := range v {
			obj, ok := elem.(jsonObject)
			if !ok {
				return nil, errCtx.WithDetails(fmt.Sprintf("element %d is not an object", i)).Error(ErrInvalidData)
			}
			objects = append(objects, obj)
		}
	default:
		return nil, errCtx.WithDetails("top-level value must be an object or an array of objects").Error(ErrInvalidData)
	}

	columns := newColumnOrder()
	rows := make([]map[string]string, 0, len(objects))
	for i, obj := range objects {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row := make(map[string]string)
		if err := flattenJSONObject("", obj, row, columns); err != nil {
			return nil, errCtx.Error(err)
		}
		rows = append(rows, row)
	}

	if len(columns.names) == 0 {
		return nil, errCtx.Error(fmt.Errorf("%w: %w", ErrEmptyData, model.ErrEmptySchema))
	}

	records := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		record := make(model.Record, len(columns.names))
		for j, name := range columns.names {
			record[j] = row[name]
		}
		records = append(records, record)
	}

	return model.NewDataset(file.DatasetName(), model.NewHeader(columns.names), records), nil
}

// columnOrder collects column names in first-seen order.
type columnOrder struct {
	names []string
	seen  map[string]struct{}
}

func newColumnOrder() *columnOrder {
	return &columnOrder{seen: make(map[string]struct{})}
}

func (c *columnOrder) add(name string) {
	if _, ok := c.seen[name]; ok {
		return
	}
	c.seen[name] = struct{}{}
	c.names = append(c.names, name)
}

// flattenJSONObject writes the leaves of obj into row. Nested object keys are
// joined with jsonKeySeparator, arrays are stored as JSON text and null as an
// empty cell.
func flattenJSONObject(prefix string, obj jsonObject, row map[string]string, columns *columnOrder) error {
	for _, field := range obj {
		name := field.key
		if prefix != "" {
			name = prefix + jsonKeySeparator + field.key
		}

		switch v := field.value.(type) {
		case jsonObject:
			if err := flattenJSONObject(name, v, row, columns); err != nil {
				return err
			}
			continue
		case []any:
			encoded, err := json.Marshal(v)
			if err != nil {
				return fmt.Errorf("failed to encode array %q: %w", name, err)
			}
			row[name] = string(encoded)
		default:
			row[name] = jsonScalarText(v)
		}
		columns.add(name)
	}
	return nil
}

func jsonScalarText(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case json.Number:
		return s.String()
	case bool:
		return strconv.FormatBool(s)
	default:
		return fmt.Sprint(s)
	}
}

// decodeJSONValue decodes the next value from dec, keeping object key order.
func decodeJSONValue(dec *json.Decoder) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	delim, ok := tok.(json.Delim)
	if !ok {
		return tok, nil
	}

	switch delim {
	case '{':
		obj := jsonObject{}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return nil, err
			}
			key, ok := keyTok.(string)
			if !ok {
				return nil, fmt.Errorf("unexpected object key %v", keyTok)
			}
			value, err := decodeJSONValue(dec)
			if err != nil {
				return nil, unexpectedEOF(err)
			}
			obj = append(obj, jsonField{key: key, value: value})
		}
		if _, err := dec.Token(); err != nil {
			return nil, unexpectedEOF(err)
		}
		return obj, nil
	case '[':
		arr := []any{}
		for dec.More() {
			value, err := decodeJSONValue(dec)
			if err != nil {
				return nil, unexpectedEOF(err)
			}
			arr = append(arr, value)
		}
		if _, err := dec.Token(); err != nil {
			return nil, unexpectedEOF(err)
		}
		return arr, nil
	default:
		return nil, fmt.Errorf("unexpected delimiter %v", delim)
	}
}

// unexpectedEOF turns io.EOF inside a value into io.ErrUnexpectedEOF so a
// truncated document is not mistaken for an empty one.
func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
