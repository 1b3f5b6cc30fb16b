package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/BartekS5/assetimport/pkg/models"
)

var errNotArray = errors.New("JSON file should contain an array of asset objects")

// ParseJSON reads an array of flat objects. Headers follow first-seen key
// order across all objects. Nested objects and arrays are kept as JSON text.
func ParseJSON(r io.Reader) (*Table, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	tok, err := dec.Token()
	if err == io.EOF {
		return nil, &ParseError{Err: ErrEmptyFile}
	}
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, &ParseError{Err: errNotArray}
	}

	t := &Table{Headers: []string{}, Rows: []models.SourceRow{}}
	seen := map[string]bool{}

	for dec.More() {
		row, keys, err := readObject(dec)
		if err != nil {
			return nil, &ParseError{Err: fmt.Errorf("element %d: %w", len(t.Rows)+1, err)}
		}
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				t.Headers = append(t.Headers, k)
			}
		}
		t.Rows = append(t.Rows, row)
	}

	if _, err := dec.Token(); err != nil {
		return nil, &ParseError{Err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &ParseError{Err: errors.New("unexpected data after JSON array")}
	}
	return t, nil
}

func readObject(dec *json.Decoder) (models.SourceRow, []string, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, nil, errNotArray
	}

	row := models.SourceRow{}
	var keys []string
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, nil, err
		}
		key, _ := keyTok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, nil, err
		}
		val, err := scalar(raw)
		if err != nil {
			return nil, nil, err
		}
		if _, dup := row[key]; !dup {
			keys = append(keys, key)
		}
		row[key] = val
	}

	if _, err := dec.Token(); err != nil {
		return nil, nil, err
	}
	return row, keys, nil
}

// scalar decodes raw into string, json.Number, bool or nil. Composite values
// come back as compact JSON text.
func scalar(raw json.RawMessage) (interface{}, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return nil, err
		}
		return buf.String(), nil
	}

	d := json.NewDecoder(bytes.NewReader(trimmed))
	d.UseNumber()
	var v interface{}
	if err := d.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}
