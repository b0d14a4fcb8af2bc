package loader

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindEncoding      ErrorKind = "encoding"
	KindMalformed     ErrorKind = "malformed"
	KindEmpty         ErrorKind = "empty"
	KindMissingColumn ErrorKind = "missing_column"
	KindBadCell       ErrorKind = "bad_cell"
)

var ErrInvalidUTF8 = errors.New("input is not valid UTF-8")

// LoadError reports why an input file could not be turned into a table.
// Row is the 1-based data row (header excluded), 0 when not tied to a row.
type LoadError struct {
	Kind   ErrorKind
	Column string
	Row    int
	Err    error
}

func (e *LoadError) Error() string {
	switch {
	case e.Column != "" && e.Row > 0:
		return fmt.Sprintf("load %s: row %d, column %q: %v", e.Kind, e.Row, e.Column, e.Err)
	case e.Column != "":
		return fmt.Sprintf("load %s: column %q: %v", e.Kind, e.Column, e.Err)
	case e.Row > 0:
		return fmt.Sprintf("load %s: row %d: %v", e.Kind, e.Row, e.Err)
	default:
		return fmt.Sprintf("load %s: %v", e.Kind, e.Err)
	}
}

func (e *LoadError) Unwrap() error { return e.Err }
