package query

import (
	"fmt"
	"strings"
)

// ErrorKind classifies request-time parse failures. Startup failures
// (registration conflicts) are plain errors returned by InitRegistry and are
// never carried in a ParseError.
type ErrorKind string

const (
	ErrUnknownField     ErrorKind = "unknown_field"
	ErrUnsupportedOp    ErrorKind = "unsupported_operator"
	ErrBadValue         ErrorKind = "bad_value"
	ErrDuplicateSortKey ErrorKind = "duplicate_sort_key"
)

// ParseError is one request-time validation failure. It is a value, not a
// fault: handlers render the collected errors into a 400 response.
type ParseError struct {
	Kind   ErrorKind `json:"kind"`
	Field  string    `json:"field"`
	Op     string    `json:"op,omitempty"`
	Raw    string    `json:"raw,omitempty"`
	Reason string    `json:"reason"`
}

func (e *ParseError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: field %q op %q: %s", e.Kind, e.Field, e.Op, e.Reason)
	}
	return fmt.Sprintf("%s: field %q: %s", e.Kind, e.Field, e.Reason)
}

// ParseErrors accumulates every independent failure of one ParseFiltering
// call, so a caller sees all mistakes in one round trip.
type ParseErrors []*ParseError

func (es ParseErrors) Error() string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.Error()
	}
	return strings.Join(parts, "; ")
}
