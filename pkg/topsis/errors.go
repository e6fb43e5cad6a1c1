package topsis

import (
	"errors"
	"fmt"
	"strings"
)

// Failure kinds. Every error returned by this package wraps exactly one of them.
var (
	ErrShapeMismatch    = errors.New("shape mismatch")
	ErrInvalidSymbol    = errors.New("invalid impact symbol")
	ErrNonNumeric       = errors.New("non-numeric input")
	ErrInvalidWeight    = errors.New("invalid weight")
	ErrDegenerateColumn = errors.New("degenerate column")
	ErrDegenerateRow    = errors.New("degenerate row")
)

// InputError reports which part of the input could not be scored.
// Row and Column are zero-based matrix indices, -1 when not applicable.
type InputError struct {
	Kind   error
	Row    int
	Column int
	Detail string
}

func (e *InputError) Error() string {
	var b strings.Builder
	b.WriteString("topsis: ")
	b.WriteString(e.Kind.Error())
	switch {
	case e.Row >= 0 && e.Column >= 0:
		fmt.Fprintf(&b, " at row %d, column %d", e.Row, e.Column)
	case e.Row >= 0:
		fmt.Fprintf(&b, " at row %d", e.Row)
	case e.Column >= 0:
		fmt.Fprintf(&b, " at column %d", e.Column)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	return b.String()
}

// Unwrap returns the failure kind so callers can use errors.Is.
func (e *InputError) Unwrap() error { return e.Kind }

// NewInputError creates an InputError. Pass -1 for an index that does not apply.
func NewInputError(kind error, row, column int, detail string) *InputError {
	return &InputError{Kind: kind, Row: row, Column: column, Detail: detail}
}

func shapeError(detail string) error {
	return NewInputError(ErrShapeMismatch, -1, -1, detail)
}

func columnError(kind error, column int, detail string) error {
	return NewInputError(kind, -1, column, detail)
}

// IsInputError reports whether err was caused by the caller's input
// rather than by I/O or an internal failure.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}
