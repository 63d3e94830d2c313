package query

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadResourcesFromDir reads every *.yml declaration in dir into the
// Registry. The file name (without extension) becomes the resource name.
func LoadResourcesFromDir(dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.yml"))
	if err != nil {
		return err
	}

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		// Structural pass over yaml.Node first, so typos in declaration keys
		// fail startup instead of silently decoding to zero values.
		var root yaml.Node
		if err := yaml.Unmarshal(data, &root); err != nil {
			return fmt.Errorf("YAML parse error in %s: %w", path, err)
		}
		if len(root.Content) == 0 {
			return fmt.Errorf("empty YAML in %s", path)
		}
		if err := validateResourceNode(root.Content[0]); err != nil {
			return fmt.Errorf("validation error in %s: %w", path, err)
		}

		var res Resource
		if err := root.Decode(&res); err != nil {
			return fmt.Errorf("unmarshal error in %s: %w", path, err)
		}

		res.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		for name, f := range res.Fields {
			if f == nil {
				return fmt.Errorf("field %q in %s has no declaration", name, path)
			}
			f.Name = name
		}
		if _, dup := Registry[res.Name]; dup {
			return fmt.Errorf("%w: resource %q declared twice", ErrRegistrationConflict, res.Name)
		}
		Registry[res.Name] = &res
	}
	return nil
}

var resourceKeys = map[string]bool{
	"table":  true,
	"fields": true,
}

var fieldKeys = map[string]bool{
	"type":     true,
	"column":   true,
	"filter":   true,
	"manual":   true,
	"sortable": true,
}

func validateResourceNode(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("resource declaration must be a mapping")
	}
	for i := 0; i < len(node.Content)-1; i += 2 {
		key := node.Content[i].Value
		if !resourceKeys[key] {
			return fmt.Errorf("unknown resource key %q (line %d)", key, node.Content[i].Line)
		}
		if key == "fields" {
			if err := validateFieldsNode(node.Content[i+1]); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateFieldsNode(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("fields must be a mapping of field name to declaration")
	}
	for i := 0; i < len(node.Content)-1; i += 2 {
		fieldName := node.Content[i].Value
		decl := node.Content[i+1]
		if decl.Kind != yaml.MappingNode {
			return fmt.Errorf("field %q declaration must be a mapping (line %d)", fieldName, decl.Line)
		}
		for j := 0; j < len(decl.Content)-1; j += 2 {
			key := decl.Content[j].Value
			if !fieldKeys[key] {
				return fmt.Errorf("unknown key %q in field %q (line %d)", key, fieldName, decl.Content[j].Line)
			}
		}
	}
	return nil
}
