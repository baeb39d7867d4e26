package rubytext

import (
	"errors"
	"fmt"
)

// Errors returned by rich text operations.
var (
	// ErrInvalidRange indicates a start/length pair outside the body.
	ErrInvalidRange = errors.New("invalid range")

	// ErrIndexOutOfRange indicates a ruby index outside the ruby list.
	ErrIndexOutOfRange = errors.New("index out of range")

	// ErrUnterminatedRuby indicates a '{' with no closing '}'.
	ErrUnterminatedRuby = errors.New("unterminated ruby annotation")

	// ErrMissingRubySeparator indicates a ruby annotation without ':'.
	ErrMissingRubySeparator = errors.New("ruby annotation missing ':' separator")

	// ErrInvalidJSON indicates a document that is not valid rich text JSON.
	ErrInvalidJSON = errors.New("invalid rich text json")
)

// ParseError describes malformed ruby markup in the source text.
type ParseError struct {
	Offset int // character offset of the offending '{'
	Token  string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("parse error at offset %d: %v", e.Offset, e.Err)
	}
	return fmt.Sprintf("parse error at offset %d in %q: %v", e.Offset, e.Token, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func rangeError(op string, start, length, size int) error {
	return fmt.Errorf("%s(%d, %d) on length %d: %w", op, start, length, size, ErrInvalidRange)
}
