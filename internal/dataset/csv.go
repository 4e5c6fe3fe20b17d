package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// CSVOptions controls CSV parsing.
type CSVOptions struct {
	// Comma is the field delimiter. Zero means ','.
	Comma rune
	// Encoding selects the input character encoding: "" or "utf-8" for
	// UTF-8 (a leading BOM is stripped), "latin-1" for ISO 8859-1.
	Encoding string
}

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// LoadCSV parses the CSV file at path into a Dataset. The first row is the
// required header.
func LoadCSV(path string, opts CSVOptions) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	return FromCSV(f, filepath.Base(path), opts)
}

// FromCSV parses CSV content from r into a Dataset. name is used in error
// messages only.
func FromCSV(r io.Reader, name string, opts CSVOptions) (*Dataset, error) {
	br := bufio.NewReader(r)

	switch opts.Encoding {
	case "", "utf-8", "utf8":
		// Strip a UTF-8 BOM if present. Excel writes one.
		if head, err := br.Peek(len(utf8BOM)); err == nil && string(head) == string(utf8BOM) {
			_, _ = br.Discard(len(utf8BOM))
		}
	case "latin-1", "latin1", "iso-8859-1":
		br = bufio.NewReader(transform.NewReader(br, charmap.ISO8859_1.NewDecoder()))
	default:
		return nil, fmt.Errorf("unsupported encoding %q", opts.Encoding)
	}

	cr := csv.NewReader(br)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &ParseError{Path: name, Err: ErrEmptyFile}
	}
	if err != nil {
		return nil, csvParseError(name, err)
	}
	if len(header) == 0 || (len(header) == 1 && header[0] == "") {
		return nil, &ParseError{Path: name, Err: ErrNoColumns}
	}

	var raw [][]string
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, csvParseError(name, err)
		}
		raw = append(raw, record)
	}

	cols := inferColumns(header, raw)
	ds := &Dataset{
		Columns: cols,
		Rows:    convertRows(cols, raw),
	}
	if err := ds.validateShape(); err != nil {
		return nil, &ParseError{Path: name, Err: err}
	}
	return ds, nil
}

// csvParseError lifts encoding/csv position info into a ParseError.
func csvParseError(name string, err error) *ParseError {
	var ce *csv.ParseError
	if errors.As(err, &ce) {
		return &ParseError{Path: name, Row: ce.Line, Col: ce.Column, Err: ce.Err}
	}
	return &ParseError{Path: name, Err: err}
}
