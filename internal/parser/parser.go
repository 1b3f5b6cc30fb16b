// Package parser reads import files into ordered headers and flat rows.
package parser

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BartekS5/assetimport/pkg/models"
)

var (
	ErrEmptyFile       = errors.New("file is empty")
	ErrUnsupportedType = errors.New("unsupported file type, expected .csv or .json")
)

// Table is a parsed import file. Header and row order match the file.
type Table struct {
	Headers []string           `json:"headers"`
	Rows    []models.SourceRow `json:"rows"`
}

// ParseError wraps any failure to read or parse an import file.
type ParseError struct {
	File string
	Err  error
}

func (e *ParseError) Error() string {
	if e.File == "" {
		return fmt.Sprintf("parse error: %v", e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Format picks the parser from the file extension.
func Format(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return "csv", nil
	case ".json":
		return "json", nil
	}
	return "", ErrUnsupportedType
}

// ParseFile opens and parses a .csv or .json import file.
func ParseFile(path string) (*Table, error) {
	format, err := Format(path)
	if err != nil {
		return nil, &ParseError{File: path, Err: err}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &ParseError{File: path, Err: err}
	}
	defer f.Close()

	t, err := Parse(f, format)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.File = path
			return nil, pe
		}
		return nil, &ParseError{File: path, Err: err}
	}
	return t, nil
}

// Parse reads r in the given format ("csv" or "json").
func Parse(r io.Reader, format string) (*Table, error) {
	switch format {
	case "csv":
		return ParseCSV(r)
	case "json":
		return ParseJSON(r)
	}
	return nil, &ParseError{Err: ErrUnsupportedType}
}

func checkHeaders(headers []string) error {
	seen := make(map[string]bool, len(headers))
	for i, h := range headers {
		if strings.TrimSpace(h) == "" {
			return fmt.Errorf("column %d has an empty header", i+1)
		}
		if seen[h] {
			return fmt.Errorf("duplicate header %q", h)
		}
		seen[h] = true
	}
	return nil
}
