package dataset

import (
	"errors"
	"fmt"
)

// ErrEmptyFile indicates the input had no header row.
var ErrEmptyFile = errors.New("file contains no header row")

// ErrNoColumns indicates the header row was present but empty.
var ErrNoColumns = errors.New("header row contains no columns")

// ParseError describes a malformed input file. Row and Col are 1-based and
// zero when the position could not be determined.
type ParseError struct {
	Path string
	Row  int
	Col  int
	Err  error
}

func (e *ParseError) Error() string {
	switch {
	case e.Row > 0 && e.Col > 0:
		return fmt.Sprintf("parse %s: row %d, column %d: %v", e.Path, e.Row, e.Col, e.Err)
	case e.Row > 0:
		return fmt.Sprintf("parse %s: row %d: %v", e.Path, e.Row, e.Err)
	default:
		return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
	}
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
