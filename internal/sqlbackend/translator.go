// Package sqlbackend translates validated filter/sort specs into
// PostgreSQL expressions via squirrel.
package sqlbackend

import (
	"fmt"

	"SieveAPI/internal/query"

	"github.com/Masterminds/squirrel"
)

// ManualFunc supplies the backend meaning of one manual filter field: it
// receives the raw query text and returns the predicate.
type ManualFunc func(raw string) squirrel.Sqlizer

// Translator maps clauses to squirrel Sqlizers and sort items to ORDER BY
// expressions. Stateless apart from the manual-filter table, which is fixed
// at composition time.
type Translator struct {
	Manual map[string]ManualFunc // by field name
}

var _ query.Translator[squirrel.Sqlizer, string] = (*Translator)(nil)

// TranslateFilterClause maps operator tags to SQL comparison primitives.
// squirrel renders `in` set membership from a slice value.
func (t *Translator) TranslateFilterClause(c query.FilterClause) (squirrel.Sqlizer, error) {
	if c.Kind == query.ManualFilter {
		fn, ok := t.Manual[c.Field]
		if !ok {
			return nil, fmt.Errorf("no manual filter registered for field %q", c.Field)
		}
		raw, _ := c.Value.(string)
		return fn(raw), nil
	}

	col := c.Column
	switch c.Op {
	case "eq":
		return squirrel.Eq{col: c.Value}, nil
	case "neq":
		return squirrel.NotEq{col: c.Value}, nil
	case "gt":
		return squirrel.Gt{col: c.Value}, nil
	case "gte":
		return squirrel.GtOrEq{col: c.Value}, nil
	case "lt":
		return squirrel.Lt{col: c.Value}, nil
	case "lte":
		return squirrel.LtOrEq{col: c.Value}, nil
	case "in":
		return squirrel.Eq{col: c.Value}, nil // slice value renders as IN
	case "start":
		if s, ok := c.Value.(string); ok {
			return squirrel.ILike{col: escapeLike(s) + "%"}, nil
		}
	case "end":
		if s, ok := c.Value.(string); ok {
			return squirrel.ILike{col: "%" + escapeLike(s)}, nil
		}
	case "cnt":
		if s, ok := c.Value.(string); ok {
			return squirrel.ILike{col: "%" + escapeLike(s) + "%"}, nil
		}
	}
	return nil, fmt.Errorf("operator %q has no SQL translation for field %q", c.Op, c.Field)
}

// TranslateSortItem renders one ORDER BY expression, including Postgres
// NULLS FIRST/LAST when the spec asks for it.
func (t *Translator) TranslateSortItem(it query.SortItem) (string, error) {
	expr := it.Column
	if it.Dir == query.Descending {
		expr += " DESC"
	} else {
		expr += " ASC"
	}
	switch it.Nulls {
	case query.NullsFirst:
		expr += " NULLS FIRST"
	case query.NullsLast:
		expr += " NULLS LAST"
	}
	return expr, nil
}

// Conjoin folds predicates with AND. An empty input yields nil, meaning no
// WHERE constraint at all: callers skip the clause, so every row matches.
func (t *Translator) Conjoin(preds []squirrel.Sqlizer) squirrel.Sqlizer {
	switch len(preds) {
	case 0:
		return nil
	case 1:
		return preds[0]
	}
	return squirrel.And(preds)
}

func (t *Translator) NullOrderingSupported() bool { return true }

// escapeLike guards user text against LIKE metacharacters so `cnt` matches
// literal percent signs and underscores.
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
