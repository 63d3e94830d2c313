package query

import "testing"

// personFixture builds an unregistered resource with one field per kind of
// declaration the engines care about. Tests construct it directly so the
// process-wide Registry stays untouched.
func personFixture(t *testing.T) *Resource {
	t.Helper()
	if err := ensureCatalog(); err != nil {
		t.Fatalf("ensureCatalog: %v", err)
	}
	return &Resource{
		Name:  "person",
		Table: "people",
		Fields: map[string]*FieldSpec{
			"id":       {Name: "id", Type: TypeInt, Filter: []string{"eq", "in"}, Sortable: true},
			"name":     {Name: "name", Type: TypeString, Filter: []string{"eq", "neq", "in", "start", "end", "cnt"}, Sortable: true},
			"age":      {Name: "age", Type: TypeInt, Filter: []string{"eq", "neq", "gt", "gte", "lt", "lte", "in"}, Sortable: true},
			"active":   {Name: "active", Type: TypeBool, Filter: []string{"eq"}},
			"joined":   {Name: "joined", Type: TypeTime, Column: "joined_at", Filter: []string{"gt", "lt"}, Sortable: true},
			"note":     {Name: "note", Type: TypeString, Manual: true},
			"internal": {Name: "internal", Type: TypeString},
		},
	}
}
