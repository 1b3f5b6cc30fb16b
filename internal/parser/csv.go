package parser

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/jszwec/csvutil"

	"github.com/BartekS5/assetimport/pkg/models"
)

const bom = "\ufeff"

// ParseCSV reads a header row followed by data rows. Rows whose cells are all
// blank are skipped. A header with no data rows is a valid, empty table.
func ParseCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	decoder, err := csvutil.NewDecoder(reader)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &ParseError{Err: ErrEmptyFile}
		}
		return nil, &ParseError{Err: err}
	}

	headers := append([]string(nil), decoder.Header()...)
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], bom)
	}
	if err := checkHeaders(headers); err != nil {
		return nil, &ParseError{Err: err}
	}

	t := &Table{Headers: headers, Rows: []models.SourceRow{}}

	// csvutil needs a destination; the raw record is read back via Record().
	var discard struct{}
	for {
		// Ragged rows keep what they have: missing cells stay absent, extra cells are dropped.
		if err := decoder.Decode(&discard); err == io.EOF {
			break
		} else if err != nil && !errors.Is(err, csvutil.ErrFieldCount) {
			return nil, &ParseError{Err: err}
		}

		record := decoder.Record()
		if blankRecord(record) {
			continue
		}

		row := make(models.SourceRow, len(headers))
		for i, h := range headers {
			if i < len(record) {
				row[h] = record[i]
			}
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

func blankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
