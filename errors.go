package csvbits

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrUnterminatedQuote reports an input whose structural quote count is
	// odd at end-of-input: a quoted field was opened and never closed. The
	// tokenizer returns no boundaries alongside it.
	ErrUnterminatedQuote = errors.New("unterminated quoted field")

	// ErrFieldCount reports a record whose field count disagrees with
	// Reader.FieldsPerRecord.
	ErrFieldCount = errors.New("wrong number of fields")

	// ErrInvalidSeparator reports a separator that cannot drive a
	// classification table: '"', '\r', '\n', NUL, or a multi-byte rune.
	ErrInvalidSeparator = errors.New("invalid field separator")
)

// ParseError decorates a record-level error with its position.
type ParseError struct {
	Record int   // 1-based record number
	Err    error // underlying error
}

// Error returns a formatted message with the record number.
func (e *ParseError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Record, e.Err)
}

// Unwrap returns the underlying error for use with [errors.Is] and
// [errors.As].
func (e *ParseError) Unwrap() error {
	return e.Err
}
