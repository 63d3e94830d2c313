package query

// Introspection payloads for generated API documentation. Read-only views
// over the registry and catalog; no mutation path.

type ResourceDoc struct {
	Resource string     `json:"resource"`
	Fields   []FieldDoc `json:"fields"`
}

type FieldDoc struct {
	Name      string        `json:"name"`
	Type      FieldType     `json:"type"`
	Manual    bool          `json:"manual,omitempty"`
	Sortable  bool          `json:"sortable"`
	Operators []OperatorDoc `json:"operators,omitempty"`
}

type OperatorDoc struct {
	Token       string `json:"token"`
	Description string `json:"description"`
}

// Describe renders a resource's declared fields and their operators.
func Describe(r *Resource) ResourceDoc {
	doc := ResourceDoc{Resource: r.Name}
	for _, f := range r.FieldSpecs() {
		fd := FieldDoc{
			Name:     f.Name,
			Type:     f.Type,
			Manual:   f.Manual,
			Sortable: f.Sortable,
		}
		for _, token := range f.Filter {
			if op, ok := catalog.Lookup(f.Type, token); ok {
				fd.Operators = append(fd.Operators, OperatorDoc{Token: op.Token, Description: op.Description})
			}
		}
		if f.Manual {
			fd.Operators = append(fd.Operators, OperatorDoc{Token: "manual", Description: "raw value passed through to handler-defined logic"})
		}
		doc.Fields = append(doc.Fields, fd)
	}
	return doc
}

// EncodeFilterValue renders a typed clause value back to query-parameter
// text, for building URLs and logging. Round-trips with the operator's
// parser for any value the parser produced.
func EncodeFilterValue(c FilterClause) (string, error) {
	if c.Kind == ManualFilter {
		s, _ := c.Value.(string)
		return s, nil
	}
	op, ok := catalog.Lookup(c.Type, c.Op)
	if !ok {
		return "", &ParseError{Kind: ErrUnsupportedOp, Field: c.Field, Op: c.Op, Reason: "operator not in catalog"}
	}
	return op.Encode(c.Value)
}
