package query

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ErrRegistrationConflict marks startup-time declaration errors: duplicate
// operator tokens, unknown field types, operators a type does not define.
// The process must not start when InitRegistry returns one of these.
var ErrRegistrationConflict = errors.New("registration conflict")

// Operator is one catalog entry: the command token used in query strings,
// a description for generated docs, the parser from raw text to a typed
// value, and the encoder back to text. Encode must round-trip with Parse
// for every value Parse produces.
type Operator struct {
	Token       string
	Description string
	Parse       func(raw string) (any, error)
	Encode      func(v any) (string, error)
}

// Catalog maps field types to their registered operators.
type Catalog struct {
	ops map[FieldType]map[string]Operator
}

// Register adds an operator for a field type. Two operators claiming the
// same token for one type is a hard conflict, never resolved silently.
func (c *Catalog) Register(ft FieldType, op Operator) error {
	if c.ops == nil {
		c.ops = map[FieldType]map[string]Operator{}
	}
	byToken, ok := c.ops[ft]
	if !ok {
		byToken = map[string]Operator{}
		c.ops[ft] = byToken
	}
	if _, dup := byToken[op.Token]; dup {
		return fmt.Errorf("%w: operator %q already registered for type %s", ErrRegistrationConflict, op.Token, ft)
	}
	byToken[op.Token] = op
	return nil
}

// Lookup returns the operator registered for (type, token).
func (c *Catalog) Lookup(ft FieldType, token string) (Operator, bool) {
	if c == nil {
		return Operator{}, false
	}
	op, ok := c.ops[ft][token]
	return op, ok
}

// Operators returns the operators of a field type sorted by token.
func (c *Catalog) Operators(ft FieldType) []Operator {
	byToken := c.ops[ft]
	out := make([]Operator, 0, len(byToken))
	for _, op := range byToken {
		out = append(out, op)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })
	return out
}

// DefaultOperator is assumed when a filter key carries no bracket suffix.
const DefaultOperator = "eq"

// orderedTypes support the full comparison set; bool only equality and
// set membership.
var orderedTypes = []FieldType{TypeString, TypeInt, TypeFloat, TypeTime}

var comparisonDescriptions = []struct {
	token, desc string
}{
	{"eq", "equal to the value"},
	{"neq", "not equal to the value"},
	{"gt", "greater than the value"},
	{"gte", "greater than or equal to the value"},
	{"lt", "less than the value"},
	{"lte", "less than or equal to the value"},
}

// NewCatalog builds the default operator catalog. Every entry goes through
// Register, so token conflicts fail construction rather than shadowing.
func NewCatalog() (*Catalog, error) {
	c := &Catalog{}

	for _, ft := range append(orderedTypes, TypeBool) {
		parse, encode := scalarParser(ft), scalarEncoder(ft)
		tokens := comparisonDescriptions
		if ft == TypeBool {
			tokens = tokens[:2] // eq, neq
		}
		for _, t := range tokens {
			if err := c.Register(ft, Operator{Token: t.token, Description: t.desc, Parse: parse, Encode: encode}); err != nil {
				return nil, err
			}
		}
		if err := c.Register(ft, inOperator(parse, encode)); err != nil {
			return nil, err
		}
	}

	// String-only match operators. Raw text is the value; the backend turns
	// it into a prefix/suffix/substring match.
	for _, t := range []struct{ token, desc string }{
		{"start", "starts with the value"},
		{"end", "ends with the value"},
		{"cnt", "contains the value"},
	} {
		op := Operator{Token: t.token, Description: t.desc, Parse: parseString, Encode: encodeString}
		if err := c.Register(TypeString, op); err != nil {
			return nil, err
		}
	}

	return c, nil
}

// inOperator wraps a scalar parser into a comma-delimited list parser
// producing a []any set.
func inOperator(parse func(string) (any, error), encode func(any) (string, error)) Operator {
	return Operator{
		Token:       "in",
		Description: "member of the comma-delimited set",
		Parse: func(raw string) (any, error) {
			parts := strings.Split(raw, ",")
			vals := make([]any, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p == "" {
					return nil, fmt.Errorf("empty element in list %q", raw)
				}
				v, err := parse(p)
				if err != nil {
					return nil, err
				}
				vals = append(vals, v)
			}
			if len(vals) == 0 {
				return nil, fmt.Errorf("empty list")
			}
			return vals, nil
		},
		Encode: func(v any) (string, error) {
			vals, ok := v.([]any)
			if !ok {
				return "", fmt.Errorf("expected list value, got %T", v)
			}
			parts := make([]string, len(vals))
			for i, item := range vals {
				enc, err := encode(item)
				if err != nil {
					return "", err
				}
				parts[i] = enc
			}
			return strings.Join(parts, ","), nil
		},
	}
}

func parseString(raw string) (any, error) { return raw, nil }

func encodeString(v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("expected string, got %T", v)
	}
	return s, nil
}

// timeLayouts accepted for time fields; encoding always uses RFC3339.
var timeLayouts = []string{time.RFC3339, "2006-01-02"}

func scalarParser(ft FieldType) func(string) (any, error) {
	switch ft {
	case TypeString:
		return parseString
	case TypeInt:
		return func(raw string) (any, error) {
			n, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("not an integer: %q", raw)
			}
			return n, nil
		}
	case TypeFloat:
		return func(raw string) (any, error) {
			f, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("not a number: %q", raw)
			}
			return f, nil
		}
	case TypeBool:
		return func(raw string) (any, error) {
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, fmt.Errorf("not a boolean: %q", raw)
			}
			return b, nil
		}
	case TypeTime:
		return func(raw string) (any, error) {
			for _, layout := range timeLayouts {
				if t, err := time.Parse(layout, raw); err == nil {
					return t, nil
				}
			}
			return nil, fmt.Errorf("not a timestamp (RFC3339 or YYYY-MM-DD): %q", raw)
		}
	}
	return nil
}

func scalarEncoder(ft FieldType) func(any) (string, error) {
	switch ft {
	case TypeString:
		return encodeString
	case TypeInt:
		return func(v any) (string, error) {
			n, ok := v.(int64)
			if !ok {
				return "", fmt.Errorf("expected int64, got %T", v)
			}
			return strconv.FormatInt(n, 10), nil
		}
	case TypeFloat:
		return func(v any) (string, error) {
			f, ok := v.(float64)
			if !ok {
				return "", fmt.Errorf("expected float64, got %T", v)
			}
			return strconv.FormatFloat(f, 'g', -1, 64), nil
		}
	case TypeBool:
		return func(v any) (string, error) {
			b, ok := v.(bool)
			if !ok {
				return "", fmt.Errorf("expected bool, got %T", v)
			}
			return strconv.FormatBool(b), nil
		}
	case TypeTime:
		return func(v any) (string, error) {
			t, ok := v.(time.Time)
			if !ok {
				return "", fmt.Errorf("expected time, got %T", v)
			}
			return t.Format(time.RFC3339), nil
		}
	}
	return nil
}

func knownType(ft FieldType) bool {
	switch ft {
	case TypeString, TypeInt, TypeFloat, TypeBool, TypeTime:
		return true
	}
	return false
}
