package grid

import (
	"errors"
	"fmt"
)

var (
	// ErrParse is matched by every *ParseError through errors.Is.
	ErrParse = errors.New("grid parse error")

	// ErrShapeMismatch is matched by every *ShapeMismatchError through errors.Is.
	ErrShapeMismatch = errors.New("grid shape mismatch")
)

// ParseError reports a token that could not be read as a number.
type ParseError struct {
	// Line is the 1-based line number of the offending token.
	Line int

	// Token is the raw text that failed to parse.
	Token string

	// Err is the underlying strconv error.
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: invalid numeric token %q: %v", e.Line, e.Token, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ShapeMismatchError reports two grids that cannot be combined cell-for-cell.
type ShapeMismatchError struct {
	Want Shape
	Got  Shape
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("grid shape mismatch: want %s, got %s", e.Want, e.Got)
}

func (e *ShapeMismatchError) Is(target error) bool {
	return target == ErrShapeMismatch
}
