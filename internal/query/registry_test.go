package query

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// resetRegistry isolates tests that go through the process-wide Registry.
func resetRegistry(t *testing.T) {
	t.Helper()
	old := Registry
	Registry = map[string]*Resource{}
	t.Cleanup(func() { Registry = old })
}

func TestRegisterFillsFieldNames(t *testing.T) {
	resetRegistry(t)

	err := Register(&Resource{
		Name:  "book",
		Table: "books",
		Fields: map[string]*FieldSpec{
			"title": {Type: TypeString, Filter: []string{"eq"}},
		},
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	res, ok := GetResource("book")
	if !ok {
		t.Fatal("book not registered")
	}
	if f, _ := res.Field("title"); f.Name != "title" {
		t.Fatalf("field name not filled from map key: %#v", f)
	}
}

func TestRegisterRejectsBadDeclarations(t *testing.T) {
	cases := []struct {
		name string
		res  *Resource
	}{
		{
			"unknown type",
			&Resource{Name: "a", Table: "t", Fields: map[string]*FieldSpec{
				"x": {Type: "decimal", Filter: []string{"eq"}},
			}},
		},
		{
			"operator not defined for type",
			&Resource{Name: "b", Table: "t", Fields: map[string]*FieldSpec{
				"flag": {Type: TypeBool, Filter: []string{"gt"}},
			}},
		},
		{
			"match operator on non-string",
			&Resource{Name: "c", Table: "t", Fields: map[string]*FieldSpec{
				"age": {Type: TypeInt, Filter: []string{"cnt"}},
			}},
		},
		{
			"manual combined with auto operators",
			&Resource{Name: "d", Table: "t", Fields: map[string]*FieldSpec{
				"q": {Type: TypeString, Manual: true, Filter: []string{"eq"}},
			}},
		},
		{
			"operator declared twice",
			&Resource{Name: "e", Table: "t", Fields: map[string]*FieldSpec{
				"x": {Type: TypeInt, Filter: []string{"eq", "eq"}},
			}},
		},
		{
			"missing table",
			&Resource{Name: "f", Fields: map[string]*FieldSpec{
				"x": {Type: TypeInt, Filter: []string{"eq"}},
			}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resetRegistry(t)
			err := Register(tc.res)
			if err == nil {
				t.Fatal("expected registration to fail")
			}
			if !errors.Is(err, ErrRegistrationConflict) {
				t.Fatalf("expected ErrRegistrationConflict, got %v", err)
			}
		})
	}
}

func TestRegisterDuplicateResource(t *testing.T) {
	resetRegistry(t)

	res := func() *Resource {
		return &Resource{Name: "dup", Table: "t", Fields: map[string]*FieldSpec{
			"x": {Type: TypeInt, Filter: []string{"eq"}},
		}}
	}
	if err := Register(res()); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	if err := Register(res()); !errors.Is(err, ErrRegistrationConflict) {
		t.Fatalf("expected conflict for duplicate resource, got %v", err)
	}
}

func TestSupportedOperations(t *testing.T) {
	res := personFixture(t)

	ops, err := res.SupportedOperations("age")
	if err != nil {
		t.Fatalf("SupportedOperations: %v", err)
	}
	want := []string{"eq", "neq", "gt", "gte", "lt", "lte", "in"}
	if diff := cmp.Diff(want, ops); diff != "" {
		t.Fatalf("ops mismatch (-want +got):\n%s", diff)
	}

	ops, err = res.SupportedOperations("note")
	if err != nil {
		t.Fatalf("SupportedOperations(note): %v", err)
	}
	if diff := cmp.Diff([]string{"manual"}, ops); diff != "" {
		t.Fatalf("manual ops mismatch (-want +got):\n%s", diff)
	}

	if _, err := res.SupportedOperations("salary"); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestFieldSpecsSorted(t *testing.T) {
	res := personFixture(t)

	specs := res.FieldSpecs()
	for i := 1; i < len(specs); i++ {
		if specs[i-1].Name >= specs[i].Name {
			t.Fatalf("FieldSpecs not sorted: %q before %q", specs[i-1].Name, specs[i].Name)
		}
	}
}
