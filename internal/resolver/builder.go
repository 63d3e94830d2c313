package resolver

import (
	"fmt"
	"sync"

	"SieveAPI/internal/query"
	"SieveAPI/internal/sqlbackend"

	"github.com/Masterminds/squirrel"
)

var (
	manualMu      sync.Mutex
	manualFilters = map[string]map[string]sqlbackend.ManualFunc{} // resource -> field -> fn
)

// RegisterManualFilter supplies the SQL meaning of a manual filter field.
// Composition-time only, before request traffic starts.
func RegisterManualFilter(resource, field string, fn sqlbackend.ManualFunc) {
	manualMu.Lock()
	defer manualMu.Unlock()
	byField, ok := manualFilters[resource]
	if !ok {
		byField = map[string]sqlbackend.ManualFunc{}
		manualFilters[resource] = byField
	}
	byField[field] = fn
}

func translatorFor(resource string) *sqlbackend.Translator {
	manualMu.Lock()
	defer manualMu.Unlock()
	return &sqlbackend.Translator{Manual: manualFilters[resource]}
}

// BuildListQuery assembles the SELECT for one validated request.
func BuildListQuery(res *query.Resource, fspec query.FilteringSpec, sspec query.SortingSpec, limit, offset uint64) (squirrel.SelectBuilder, error) {
	tr := translatorFor(res.Name)

	cols := make([]string, 0, len(res.Fields))
	for _, f := range res.FieldSpecs() {
		if f.Manual {
			// virtual filter surface, not a table column
			continue
		}
		if f.ColumnName() != f.Name {
			cols = append(cols, fmt.Sprintf("%s AS %s", f.ColumnName(), f.Name))
		} else {
			cols = append(cols, f.Name)
		}
	}

	sb := squirrel.Select(cols...).
		From(res.Table).
		PlaceholderFormat(squirrel.Dollar)

	pred, err := query.ApplyFiltering[squirrel.Sqlizer, string](tr, fspec)
	if err != nil {
		return sb, err
	}
	if pred != nil {
		sb = sb.Where(pred)
	}

	orders, err := query.ApplySorting[squirrel.Sqlizer, string](tr, sspec)
	if err != nil {
		return sb, err
	}
	if len(orders) > 0 {
		sb = sb.OrderBy(orders...)
	}

	if limit > 0 {
		sb = sb.Limit(limit)
	}
	if offset > 0 {
		sb = sb.Offset(offset)
	}
	return sb, nil
}

// BuildCountQuery assembles the COUNT for the same filter surface.
func BuildCountQuery(res *query.Resource, fspec query.FilteringSpec) (squirrel.SelectBuilder, error) {
	tr := translatorFor(res.Name)

	sb := squirrel.Select("COUNT(*)").
		From(res.Table).
		PlaceholderFormat(squirrel.Dollar)

	pred, err := query.ApplyFiltering[squirrel.Sqlizer, string](tr, fspec)
	if err != nil {
		return sb, err
	}
	if pred != nil {
		sb = sb.Where(pred)
	}
	return sb, nil
}
