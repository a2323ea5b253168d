package contacts

import (
	"errors"
	"fmt"
)

var (
	ErrUnsupportedFormat = errors.New("contacts: unsupported file format")
	ErrNoHeader          = errors.New("contacts: missing header row")
	ErrTooManyFields     = errors.New("contacts: row has more fields than the header")
)

// ParseError is returned when an upload cannot be turned into a contact list.
// No partial result accompanies it.
type ParseError struct {
	Msg string
	Err error
}

func newParseError(msg string, err error) *ParseError {
	return &ParseError{Msg: msg, Err: err}
}

func (e *ParseError) Error() string {
	if e.Err == nil {
		return "error parsing file: " + e.Msg
	}
	return fmt.Sprintf("error parsing file: %s: %v", e.Msg, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
