package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrEmptyBody            = errors.New("empty body")
	ErrMalformedNumber      = errors.New("malformed number")
	ErrQueueSubmission      = errors.New("queue submission failed")
	ErrStoreWrite           = errors.New("store write failed")
	ErrNotFound             = errors.New("order not found")
)

// XMLParseError reports a document that is not well-formed XML.
// It is distinct from SchemaValidationError, which means "XML, but not a valid order".
type XMLParseError struct {
	Err error
}

func (e *XMLParseError) Error() string {
	return "malformed xml: " + e.Err.Error()
}

func (e *XMLParseError) Unwrap() error { return e.Err }

// JSONParseError reports a body that is not a single well-formed JSON value.
type JSONParseError struct {
	Err error
}

func (e *JSONParseError) Error() string {
	return "malformed json: " + e.Err.Error()
}

func (e *JSONParseError) Unwrap() error { return e.Err }

// Violation is one failed schema rule.
type Violation struct {
	Path    string `json:"path"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.Path == "" {
		return v.Message
	}
	return v.Path + ": " + v.Message
}

type SchemaValidationError struct {
	Violations []Violation
}

func (e *SchemaValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return "schema validation failed: " + strings.Join(parts, "; ")
}

// Mismatch is a declared arithmetic field that differs from its computed value.
type Mismatch struct {
	Path     string
	Declared decimal.Decimal
	Computed decimal.Decimal
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: declared %s, computed %s", m.Path, m.Declared, m.Computed)
}

type InvariantViolation struct {
	Mismatches []Mismatch
}

func (e *InvariantViolation) Error() string {
	parts := make([]string, 0, len(e.Mismatches))
	for _, m := range e.Mismatches {
		parts = append(parts, m.String())
	}
	return "invariant violation: " + strings.Join(parts, "; ")
}

// IsValidationError reports whether err means the payload is not an acceptable order,
// as opposed to a transport or storage problem.
func IsValidationError(err error) bool {
	var (
		schemaErr    *SchemaValidationError
		invariantErr *InvariantViolation
		xmlErr       *XMLParseError
		jsonErr      *JSONParseError
	)
	return errors.As(err, &schemaErr) ||
		errors.As(err, &invariantErr) ||
		errors.As(err, &xmlErr) ||
		errors.As(err, &jsonErr) ||
		errors.Is(err, ErrMalformedNumber)
}
