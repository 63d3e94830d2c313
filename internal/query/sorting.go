package query

import (
	"fmt"
	"strings"
)

// ParseSorting turns an ordered list of raw sort keys into a SortingSpec.
// Key syntax is `[-]field[:nullsfirst|:nullslast]`; a leading `-` means
// descending. Input order is preserved as the multi-key tie-break priority.
//
// Unlike ParseFiltering this stops at the first error: key order carries
// meaning and a duplicate invalidates the whole sequence.
func ParseSorting(keys []string, res *Resource) (SortingSpec, error) {
	var spec SortingSpec
	seen := map[string]bool{}

	for _, raw := range keys {
		key := strings.TrimSpace(raw)
		if key == "" {
			continue
		}

		dir := Ascending
		if strings.HasPrefix(key, "-") {
			dir = Descending
			key = key[1:]
		} else if strings.HasPrefix(key, "+") {
			key = key[1:]
		}

		nulls := NullsDefault
		if idx := strings.IndexByte(key, ':'); idx != -1 {
			switch key[idx+1:] {
			case "nullsfirst":
				nulls = NullsFirst
			case "nullslast":
				nulls = NullsLast
			default:
				return SortingSpec{}, &ParseError{
					Kind:   ErrBadValue,
					Field:  key[:idx],
					Raw:    raw,
					Reason: fmt.Sprintf("unknown null-ordering modifier %q", key[idx+1:]),
				}
			}
			key = key[:idx]
		}

		field, ok := res.Field(key)
		if !ok {
			return SortingSpec{}, &ParseError{
				Kind:   ErrUnknownField,
				Field:  key,
				Raw:    raw,
				Reason: fmt.Sprintf("resource %q has no field %q", res.Name, key),
			}
		}
		if !field.Sortable {
			return SortingSpec{}, &ParseError{
				Kind:   ErrUnsupportedOp,
				Field:  key,
				Raw:    raw,
				Reason: fmt.Sprintf("field %q is not sortable", key),
			}
		}
		if seen[key] {
			return SortingSpec{}, &ParseError{
				Kind:   ErrDuplicateSortKey,
				Field:  key,
				Raw:    raw,
				Reason: fmt.Sprintf("field %q named more than once in sort", key),
			}
		}
		seen[key] = true

		spec.Items = append(spec.Items, SortItem{
			Field:  field.Name,
			Column: field.ColumnName(),
			Dir:    dir,
			Nulls:  nulls,
		})
	}

	return spec, nil
}

// SplitSortParam splits the conventional `sort=` parameter value into raw
// keys. Both comma-delimited and repeated parameters are accepted; the HTTP
// layer concatenates repeated values before calling.
func SplitSortParam(values []string) []string {
	var keys []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if strings.TrimSpace(part) != "" {
				keys = append(keys, strings.TrimSpace(part))
			}
		}
	}
	return keys
}
