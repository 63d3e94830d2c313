package query

import "sort"

// FieldType tags the value type of a declared field. Catalog parsers and
// encoders are keyed by it.
type FieldType string

const (
	TypeString FieldType = "string"
	TypeInt    FieldType = "int"
	TypeFloat  FieldType = "float"
	TypeBool   FieldType = "bool"
	TypeTime   FieldType = "time"
)

// OperationKind distinguishes catalog-parsed filters from opaque pass-through
// filters whose meaning is defined by the handler.
type OperationKind int

const (
	AutoFilter OperationKind = iota
	ManualFilter
)

// Resource describes one response type: its SQL table and the fields callers
// may filter and sort on.
type Resource struct {
	Name   string                `yaml:"-"` // logical name, taken from the file name or Register call
	Table  string                `yaml:"table"`
	Fields map[string]*FieldSpec `yaml:"fields"`
}

// FieldSpec declares a single field of a resource. Immutable after registry
// init; request-time code only reads it.
type FieldSpec struct {
	Name     string    `yaml:"-"`
	Type     FieldType `yaml:"type"`
	Column   string    `yaml:"column"` // SQL column override, defaults to Name
	Filter   []string  `yaml:"filter"` // auto-filter operator tokens from the catalog
	Manual   bool      `yaml:"manual"` // raw value passed through to handler logic
	Sortable bool      `yaml:"sortable"`
}

// ColumnName returns the SQL column backing the field.
func (f *FieldSpec) ColumnName() string {
	if f.Column != "" {
		return f.Column
	}
	return f.Name
}

// Kind reports whether the field is catalog-parsed or pass-through.
func (f *FieldSpec) Kind() OperationKind {
	if f.Manual {
		return ManualFilter
	}
	return AutoFilter
}

// SupportsOperator reports whether the auto-filter operator token was declared
// for this field.
func (f *FieldSpec) SupportsOperator(token string) bool {
	for _, t := range f.Filter {
		if t == token {
			return true
		}
	}
	return false
}

// FilterClause is one validated filter: field, operator tag and the typed
// value produced by the catalog parser. For ManualFilter fields Op is empty
// and Value holds the raw query text untouched.
type FilterClause struct {
	Field  string
	Column string
	Type   FieldType
	Kind   OperationKind
	Op     string
	Value  any
}

// FilteringSpec is the ordered conjunction of all filter clauses of one
// request. Empty means match everything. Read-only after ParseFiltering.
type FilteringSpec struct {
	Clauses []FilterClause
}

// Empty reports whether no filter was requested.
func (s FilteringSpec) Empty() bool { return len(s.Clauses) == 0 }

// Direction of one sort key.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// NullOrder is the optional null-placement modifier of a sort key.
type NullOrder int

const (
	NullsDefault NullOrder = iota
	NullsFirst
	NullsLast
)

// SortItem is one validated sort key. Position in the SortingSpec is the
// multi-key priority: the first item is the primary key.
type SortItem struct {
	Field  string
	Column string
	Dir    Direction
	Nulls  NullOrder
}

// SortingSpec is the ordered list of sort keys of one request. Field names
// are unique; empty means the backend's natural order.
type SortingSpec struct {
	Items []SortItem
}

// Empty reports whether no sort was requested.
func (s SortingSpec) Empty() bool { return len(s.Items) == 0 }

// FieldSpecs returns the resource's fields sorted by name, for deterministic
// introspection output.
func (r *Resource) FieldSpecs() []*FieldSpec {
	out := make([]*FieldSpec, 0, len(r.Fields))
	for _, f := range r.Fields {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Field looks up a declared field by name.
func (r *Resource) Field(name string) (*FieldSpec, bool) {
	f, ok := r.Fields[name]
	return f, ok
}
