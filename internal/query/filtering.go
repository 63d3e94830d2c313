package query

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// ParseFiltering turns raw filter parameters into a validated FilteringSpec.
// Key syntax is `field[op]=value`; a key without a bracket suffix means eq.
// Every key is processed independently and errors accumulate, so one response
// carries the complete diagnostic. A nil error slice means success; zero
// filter keys yield an empty spec (match everything).
//
// Params must contain filter keys only; the HTTP layer strips reserved
// parameters (sort, limit, offset) before calling.
func ParseFiltering(params url.Values, res *Resource) (FilteringSpec, ParseErrors) {
	var spec FilteringSpec
	var errs ParseErrors

	// url.Values iterates in random order; sort keys so clause order and
	// diagnostics are deterministic per request.
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		fieldName, opToken, perr := splitFilterKey(key)
		if perr != nil {
			errs = append(errs, perr)
			continue
		}

		field, ok := res.Field(fieldName)
		if !ok {
			errs = append(errs, &ParseError{
				Kind:   ErrUnknownField,
				Field:  fieldName,
				Op:     opToken,
				Reason: fmt.Sprintf("resource %q has no filterable field %q", res.Name, fieldName),
			})
			continue
		}

		if field.Manual {
			// Opaque pass-through: no operator, no catalog parsing. The
			// backend-specific meaning is supplied by the handler.
			if opToken != "" {
				errs = append(errs, &ParseError{
					Kind:   ErrUnsupportedOp,
					Field:  fieldName,
					Op:     opToken,
					Reason: "manual filter takes no operator",
				})
				continue
			}
			for _, raw := range params[key] {
				spec.Clauses = append(spec.Clauses, FilterClause{
					Field:  field.Name,
					Column: field.ColumnName(),
					Type:   field.Type,
					Kind:   ManualFilter,
					Value:  raw,
				})
			}
			continue
		}

		if opToken == "" {
			opToken = DefaultOperator
		}
		if !field.SupportsOperator(opToken) {
			errs = append(errs, &ParseError{
				Kind:   ErrUnsupportedOp,
				Field:  fieldName,
				Op:     opToken,
				Reason: fmt.Sprintf("field %q does not support operator %q", fieldName, opToken),
			})
			continue
		}
		op, ok := catalog.Lookup(field.Type, opToken)
		if !ok {
			// Unreachable after registry validation; kept as a guard for
			// resources constructed outside Register.
			errs = append(errs, &ParseError{
				Kind:   ErrUnsupportedOp,
				Field:  fieldName,
				Op:     opToken,
				Reason: fmt.Sprintf("operator %q not defined for type %s", opToken, field.Type),
			})
			continue
		}

		rawValues := params[key]
		if opToken == "in" && len(rawValues) > 1 {
			// Repeated parameters for a set operator merge into one list.
			rawValues = []string{strings.Join(rawValues, ",")}
		}
		for _, raw := range rawValues {
			value, err := op.Parse(raw)
			if err != nil {
				errs = append(errs, &ParseError{
					Kind:   ErrBadValue,
					Field:  fieldName,
					Op:     opToken,
					Raw:    raw,
					Reason: err.Error(),
				})
				continue
			}
			spec.Clauses = append(spec.Clauses, FilterClause{
				Field:  field.Name,
				Column: field.ColumnName(),
				Type:   field.Type,
				Kind:   AutoFilter,
				Op:     opToken,
				Value:  value,
			})
		}
	}

	if len(errs) > 0 {
		return FilteringSpec{}, errs
	}
	return spec, nil
}

// splitFilterKey separates `name[op]` into field name and operator token.
// A key without brackets is a bare field name (empty token).
func splitFilterKey(key string) (field, op string, perr *ParseError) {
	open := strings.IndexByte(key, '[')
	if open == -1 {
		return key, "", nil
	}
	if open == 0 || !strings.HasSuffix(key, "]") {
		return "", "", &ParseError{
			Kind:   ErrUnknownField,
			Field:  key,
			Reason: fmt.Sprintf("malformed filter key %q, expected field[op]", key),
		}
	}
	return key[:open], key[open+1 : len(key)-1], nil
}
