// Package membackend translates validated filter/sort specs into predicates
// and comparators over in-memory rows. Useful for small datasets, handler
// tests, and as the reference semantics for other backends.
package membackend

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"SieveAPI/internal/query"
)

// Row is one record, keyed by field name.
type Row = map[string]any

// Predicate reports whether a row matches.
type Predicate func(Row) bool

// Compare orders two rows for one sort key: negative when a sorts before b.
type Compare func(a, b Row) int

// ManualFunc supplies the meaning of one manual filter field.
type ManualFunc func(raw string) Predicate

type Translator struct {
	Manual map[string]ManualFunc // by field name
}

var _ query.Translator[Predicate, Compare] = (*Translator)(nil)

func (t *Translator) TranslateFilterClause(c query.FilterClause) (Predicate, error) {
	if c.Kind == query.ManualFilter {
		fn, ok := t.Manual[c.Field]
		if !ok {
			return nil, fmt.Errorf("no manual filter registered for field %q", c.Field)
		}
		raw, _ := c.Value.(string)
		return fn(raw), nil
	}

	field := c.Field
	switch c.Op {
	case "eq":
		return func(r Row) bool { return compareValues(r[field], c.Value) == 0 }, nil
	case "neq":
		return func(r Row) bool { return compareValues(r[field], c.Value) != 0 }, nil
	case "gt":
		return func(r Row) bool { return compareValues(r[field], c.Value) > 0 }, nil
	case "gte":
		return func(r Row) bool { return compareValues(r[field], c.Value) >= 0 }, nil
	case "lt":
		return func(r Row) bool { return compareValues(r[field], c.Value) < 0 }, nil
	case "lte":
		return func(r Row) bool { return compareValues(r[field], c.Value) <= 0 }, nil
	case "in":
		vals, ok := c.Value.([]any)
		if !ok {
			return nil, fmt.Errorf("in filter on %q carries %T, expected list", field, c.Value)
		}
		return func(r Row) bool {
			for _, v := range vals {
				if compareValues(r[field], v) == 0 {
					return true
				}
			}
			return false
		}, nil
	case "start":
		if s, ok := c.Value.(string); ok {
			return func(r Row) bool { return strings.HasPrefix(stringOf(r[field]), s) }, nil
		}
	case "end":
		if s, ok := c.Value.(string); ok {
			return func(r Row) bool { return strings.HasSuffix(stringOf(r[field]), s) }, nil
		}
	case "cnt":
		if s, ok := c.Value.(string); ok {
			return func(r Row) bool { return strings.Contains(stringOf(r[field]), s) }, nil
		}
	}
	return nil, fmt.Errorf("operator %q has no in-memory translation for field %q", c.Op, field)
}

func (t *Translator) TranslateSortItem(it query.SortItem) (Compare, error) {
	field := it.Field
	desc := it.Dir == query.Descending
	return func(a, b Row) int {
		cmp := compareValues(a[field], b[field])
		if desc {
			cmp = -cmp
		}
		return cmp
	}, nil
}

// Conjoin requires every predicate to match. Empty input yields the
// match-all predicate.
func (t *Translator) Conjoin(preds []Predicate) Predicate {
	if len(preds) == 0 {
		return func(Row) bool { return true }
	}
	return func(r Row) bool {
		for _, p := range preds {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

// The in-memory backend has no notion of SQL NULL placement; ApplySorting
// strips the modifier before it reaches TranslateSortItem.
func (t *Translator) NullOrderingSupported() bool { return false }

// SortRows orders rows by the translated terms, first term primary, later
// terms breaking ties. The sort is stable so untouched rows keep their
// relative order.
func SortRows(rows []Row, terms []Compare) {
	if len(terms) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, cmp := range terms {
			if c := cmp(rows[i], rows[j]); c != 0 {
				return c < 0
			}
		}
		return false
	})
}

// compareValues orders two field values of the same declared type. Missing
// (nil) values sort before present ones.
func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	switch av := a.(type) {
	case string:
		return strings.Compare(av, stringOf(b))
	case bool:
		bb, _ := b.(bool)
		switch {
		case av == bb:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	case time.Time:
		bt, ok := b.(time.Time)
		if !ok {
			return -1
		}
		return av.Compare(bt)
	default:
		af, aok := floatOf(a)
		bf, bok := floatOf(b)
		if aok && bok {
			switch {
			case af < bf:
				return -1
			case af > bf:
				return 1
			default:
				return 0
			}
		}
	}
	return strings.Compare(stringOf(a), stringOf(b))
}

func floatOf(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func stringOf(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}
