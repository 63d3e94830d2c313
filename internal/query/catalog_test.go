package query

import (
	"errors"
	"testing"
	"time"
)

func TestCatalogRegisterConflict(t *testing.T) {
	c := &Catalog{}
	op := Operator{Token: "eq", Description: "equal", Parse: parseString, Encode: encodeString}
	if err := c.Register(TypeString, op); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	err := c.Register(TypeString, Operator{Token: "eq", Description: "shadow", Parse: parseString, Encode: encodeString})
	if err == nil {
		t.Fatal("expected conflict for duplicate token, got nil")
	}
	if !errors.Is(err, ErrRegistrationConflict) {
		t.Fatalf("expected ErrRegistrationConflict, got %v", err)
	}

	// Same token on a different type is not a conflict.
	if err := c.Register(TypeInt, op); err != nil {
		t.Fatalf("Register on other type: %v", err)
	}
}

func TestNewCatalogOperatorSets(t *testing.T) {
	c, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	for _, ft := range []FieldType{TypeString, TypeInt, TypeFloat, TypeBool, TypeTime} {
		for _, token := range []string{"eq", "neq", "in"} {
			if _, ok := c.Lookup(ft, token); !ok {
				t.Errorf("type %s missing operator %q", ft, token)
			}
		}
	}
	// Ordering makes no sense for booleans.
	for _, token := range []string{"gt", "gte", "lt", "lte"} {
		if _, ok := c.Lookup(TypeBool, token); ok {
			t.Errorf("bool unexpectedly defines %q", token)
		}
	}
	// Match operators are string-only.
	for _, token := range []string{"start", "end", "cnt"} {
		if _, ok := c.Lookup(TypeString, token); !ok {
			t.Errorf("string missing operator %q", token)
		}
		if _, ok := c.Lookup(TypeInt, token); ok {
			t.Errorf("int unexpectedly defines %q", token)
		}
	}
}

func TestOperatorRoundTrip(t *testing.T) {
	c, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	cases := []struct {
		ft    FieldType
		token string
		raw   string
	}{
		{TypeString, "eq", "Alice"},
		{TypeString, "cnt", "li"},
		{TypeString, "in", "active,pending"},
		{TypeInt, "gt", "30"},
		{TypeInt, "in", "1,2,3"},
		{TypeFloat, "lte", "3.25"},
		{TypeBool, "eq", "true"},
		{TypeTime, "gte", "2024-04-01T10:00:00Z"},
		{TypeTime, "eq", "2024-04-01"},
	}

	for _, tc := range cases {
		op, ok := c.Lookup(tc.ft, tc.token)
		if !ok {
			t.Fatalf("operator %s/%s not found", tc.ft, tc.token)
		}
		v1, err := op.Parse(tc.raw)
		if err != nil {
			t.Fatalf("%s/%s: Parse(%q): %v", tc.ft, tc.token, tc.raw, err)
		}
		enc, err := op.Encode(v1)
		if err != nil {
			t.Fatalf("%s/%s: Encode: %v", tc.ft, tc.token, err)
		}
		v2, err := op.Parse(enc)
		if err != nil {
			t.Fatalf("%s/%s: re-Parse(%q): %v", tc.ft, tc.token, enc, err)
		}
		if !valuesEqual(v1, v2) {
			t.Fatalf("%s/%s: round trip changed value: %#v -> %q -> %#v", tc.ft, tc.token, v1, enc, v2)
		}
	}
}

func valuesEqual(a, b any) bool {
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}
	if as, ok := a.([]any); ok {
		bs, ok := b.([]any)
		if !ok || len(as) != len(bs) {
			return false
		}
		for i := range as {
			if !valuesEqual(as[i], bs[i]) {
				return false
			}
		}
		return true
	}
	return a == b
}

func TestParseRejectsGarbage(t *testing.T) {
	c, err := NewCatalog()
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}

	cases := []struct {
		ft    FieldType
		token string
		raw   string
	}{
		{TypeInt, "eq", "abc"},
		{TypeFloat, "gt", "1.2.3"},
		{TypeBool, "eq", "maybe"},
		{TypeTime, "lt", "yesterday"},
		{TypeInt, "in", "1,,3"},
		{TypeInt, "in", "1,x"},
	}
	for _, tc := range cases {
		op, ok := c.Lookup(tc.ft, tc.token)
		if !ok {
			t.Fatalf("operator %s/%s not found", tc.ft, tc.token)
		}
		if _, err := op.Parse(tc.raw); err == nil {
			t.Errorf("%s/%s: Parse(%q) unexpectedly succeeded", tc.ft, tc.token, tc.raw)
		}
	}
}
