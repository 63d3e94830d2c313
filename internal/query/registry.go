package query

import (
	"fmt"
	"sort"
)

// Registry holds every registered resource, keyed by logical name. Populated
// once during startup (InitRegistry or Register calls), read-only afterwards;
// concurrent request handling shares it without locking.
var Registry = map[string]*Resource{}

var catalog *Catalog

// InitRegistry builds the operator catalog, loads resource declarations from
// dir and validates all of them. Any failure here is fatal: the process must
// not start with a half-valid registry.
func InitRegistry(dir string) error {
	if err := ensureCatalog(); err != nil {
		return err
	}
	if err := LoadResourcesFromDir(dir); err != nil {
		return fmt.Errorf("load error: %w", err)
	}
	for _, name := range registeredNames() {
		if err := validateResource(Registry[name]); err != nil {
			return fmt.Errorf("validation error: %w", err)
		}
	}
	return nil
}

// Register adds a resource programmatically, validating it against the
// catalog immediately. Used by tests and embedded deployments; must not be
// called after request traffic has started.
func Register(r *Resource) error {
	if err := ensureCatalog(); err != nil {
		return err
	}
	if r.Name == "" {
		return fmt.Errorf("%w: resource without a name", ErrRegistrationConflict)
	}
	if _, dup := Registry[r.Name]; dup {
		return fmt.Errorf("%w: resource %q already registered", ErrRegistrationConflict, r.Name)
	}
	for name, f := range r.Fields {
		if f.Name == "" {
			f.Name = name
		}
	}
	if err := validateResource(r); err != nil {
		return err
	}
	Registry[r.Name] = r
	return nil
}

// RegisterOperator extends the catalog with a custom operator, subject to the
// same token-conflict check as the defaults. Startup-time only.
func RegisterOperator(ft FieldType, op Operator) error {
	if err := ensureCatalog(); err != nil {
		return err
	}
	return catalog.Register(ft, op)
}

// GetResource looks up a registered resource.
func GetResource(name string) (*Resource, bool) {
	r, ok := Registry[name]
	return r, ok
}

// SupportedOperations returns the operator tokens declared for a field, or an
// error for a field absent from the resource. Manual fields report the single
// pseudo-token "manual".
func (r *Resource) SupportedOperations(fieldName string) ([]string, error) {
	f, ok := r.Fields[fieldName]
	if !ok {
		return nil, fmt.Errorf("resource %q has no field %q", r.Name, fieldName)
	}
	if f.Manual {
		return []string{"manual"}, nil
	}
	out := make([]string, len(f.Filter))
	copy(out, f.Filter)
	return out, nil
}

func ensureCatalog() error {
	if catalog != nil {
		return nil
	}
	c, err := NewCatalog()
	if err != nil {
		return err
	}
	catalog = c
	return nil
}

func registeredNames() []string {
	names := make([]string, 0, len(Registry))
	for name := range Registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// validateResource checks a declaration against the catalog so that every
// operation a request could ever name is known to exist before traffic
// starts. The compile-time guarantee of the field/operator pairing becomes
// this eager startup check plus exhaustive request-time lookups.
func validateResource(r *Resource) error {
	if r.Table == "" {
		return fmt.Errorf("%w: resource %q has no table", ErrRegistrationConflict, r.Name)
	}
	for name, f := range r.Fields {
		if !knownType(f.Type) {
			return fmt.Errorf("%w: field %s.%s has unknown type %q", ErrRegistrationConflict, r.Name, name, f.Type)
		}
		if f.Manual && len(f.Filter) > 0 {
			return fmt.Errorf("%w: field %s.%s is manual but declares auto operators %v", ErrRegistrationConflict, r.Name, name, f.Filter)
		}
		seen := map[string]bool{}
		for _, token := range f.Filter {
			if seen[token] {
				return fmt.Errorf("%w: field %s.%s declares operator %q twice", ErrRegistrationConflict, r.Name, name, token)
			}
			seen[token] = true
			if _, ok := catalog.Lookup(f.Type, token); !ok {
				return fmt.Errorf("%w: field %s.%s declares operator %q not defined for type %s", ErrRegistrationConflict, r.Name, name, token, f.Type)
			}
		}
	}
	return nil
}
