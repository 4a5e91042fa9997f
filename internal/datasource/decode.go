package datasource

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strconv"

	"github.com/JonMunkholm/gridadmin/internal/grid"
)

// DecodeRecords reads a JSON array of flat objects. The key order of the
// first object fixes the column order; later objects contribute values only.
// Scalars are normalized to display strings: null becomes "", numbers keep
// their literal form, booleans become "true"/"false", and nested values are
// re-encoded as JSON.
func DecodeRecords(r io.Reader) ([]string, []grid.Record, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	if err := expectDelim(dec, '['); err != nil {
		return nil, nil, err
	}

	var columns []string
	var records []grid.Record
	for first := true; dec.More(); first = false {
		keys, rec, err := decodeRecord(dec)
		if err != nil {
			return nil, nil, fmt.Errorf("record %d: %w", len(records), err)
		}
		// The first record fixes the schema, even when it is empty.
		if first {
			columns = keys
		}
		records = append(records, rec)
	}

	if err := expectDelim(dec, ']'); err != nil {
		return nil, nil, err
	}
	return columns, records, nil
}

func decodeRecord(dec *json.Decoder) ([]string, grid.Record, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, nil, err
	}

	var keys []string
	rec := make(grid.Record)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("expected object key, got %v", tok)
		}

		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, nil, fmt.Errorf("value for %q: %w", key, err)
		}
		if !slices.Contains(keys, key) {
			keys = append(keys, key)
		}
		rec[key] = displayValue(v)
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, nil, err
	}
	return keys, rec, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return fmt.Errorf("decode records: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("decode records: expected %q, got %v", want, tok)
	}
	return nil
}

// displayValue renders a decoded JSON value as cell text.
func displayValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case bool:
		return strconv.FormatBool(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

// EncodeRecords writes rows as a JSON array of objects whose keys follow
// columns, the inverse of DecodeRecords for string-valued tables.
func EncodeRecords(w io.Writer, columns []string, rows []grid.Record) error {
	var buf []byte
	buf = append(buf, '[')
	for i, row := range rows {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, '\n', ' ', ' ', '{')
		for j, col := range columns {
			if j > 0 {
				buf = append(buf, ',', ' ')
			}
			k, err := json.Marshal(col)
			if err != nil {
				return err
			}
			v, err := json.Marshal(row.Get(col))
			if err != nil {
				return err
			}
			buf = append(buf, k...)
			buf = append(buf, ':', ' ')
			buf = append(buf, v...)
		}
		buf = append(buf, '}')
	}
	if len(rows) > 0 {
		buf = append(buf, '\n')
	}
	buf = append(buf, ']', '\n')
	_, err := w.Write(buf)
	return err
}
