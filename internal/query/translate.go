package query

// Translator is the backend adapter contract. P is the backend's predicate
// type, O its ordering term. Implementations are pure and stateless: one
// value serves arbitrarily many concurrent requests.
type Translator[P, O any] interface {
	// TranslateFilterClause maps one clause to a backend predicate. For
	// ManualFilter clauses the implementation delegates to caller-registered
	// logic; a manual field without registered logic is an error.
	TranslateFilterClause(c FilterClause) (P, error)

	// TranslateSortItem maps one sort key to a backend ordering term.
	TranslateSortItem(it SortItem) (O, error)

	// Conjoin folds predicates with logical AND. An empty input must yield
	// the backend's match-all predicate.
	Conjoin(preds []P) P

	// NullOrderingSupported reports whether the backend can honor the
	// NullsFirst/NullsLast modifiers. Backends without support get the
	// modifier stripped by ApplySorting.
	NullOrderingSupported() bool
}

// ApplyFiltering folds every clause of the spec into a single backend
// predicate. An empty spec yields the backend's match-all value.
func ApplyFiltering[P, O any](tr Translator[P, O], spec FilteringSpec) (P, error) {
	preds := make([]P, 0, len(spec.Clauses))
	for _, c := range spec.Clauses {
		p, err := tr.TranslateFilterClause(c)
		if err != nil {
			var zero P
			return zero, err
		}
		preds = append(preds, p)
	}
	return tr.Conjoin(preds), nil
}

// ApplySorting translates the spec into backend ordering terms, preserving
// spec order as the multi-key sort priority. An empty spec yields no terms
// (the backend's natural order).
func ApplySorting[P, O any](tr Translator[P, O], spec SortingSpec) ([]O, error) {
	if spec.Empty() {
		return nil, nil
	}
	terms := make([]O, 0, len(spec.Items))
	for _, it := range spec.Items {
		if it.Nulls != NullsDefault && !tr.NullOrderingSupported() {
			it.Nulls = NullsDefault
		}
		o, err := tr.TranslateSortItem(it)
		if err != nil {
			return nil, err
		}
		terms = append(terms, o)
	}
	return terms, nil
}
