package series

import (
	"fmt"
	"strings"
	"time"
)

// EmptyInputError is returned when the raw input holds no rows
type EmptyInputError struct{}

func (EmptyInputError) Error() string {
	return "no input rows"
}

// MalformedTimestampError identifies a raw row whose timestamp is missing or
// cannot be parsed
type MalformedTimestampError struct {
	Index int
	Text  string
	Err   error
}

func (e *MalformedTimestampError) Error() string {
	return fmt.Sprintf("row %d: malformed timestamp %q: %v", e.Index, e.Text, e.Err)
}

func (e *MalformedTimestampError) Unwrap() error {
	return e.Err
}

// InsufficientDataError is returned when a stage receives fewer readings than
// it needs
type InsufficientDataError struct {
	Stage string
	Need  int
	Got   int
}

func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("%s needs at least %d readings, got %d", e.Stage, e.Need, e.Got)
}

// InvalidValueError identifies a reading whose value is not an integer
type InvalidValueError struct {
	Reading Reading
	Err     error
}

func (e *InvalidValueError) Error() string {
	return fmt.Sprintf("row %d (%s): invalid value %q: %v",
		e.Reading.Index, e.Reading.Timestamp.Format(time.RFC3339Nano), e.Reading.Value, e.Err)
}

func (e *InvalidValueError) Unwrap() error {
	return e.Err
}

// ConflictingReadingError is returned under DuplicateTimestampsReject when two
// distinct rows share a timestamp
type ConflictingReadingError struct {
	First  Reading
	Second Reading
}

func (e *ConflictingReadingError) Error() string {
	return fmt.Sprintf("rows %d and %d share timestamp %s but differ (%q, %q)",
		e.First.Index, e.Second.Index, e.First.Timestamp.Format(time.RFC3339Nano),
		strings.Join(e.First.Row.Values(), ","), strings.Join(e.Second.Row.Values(), ","))
}
