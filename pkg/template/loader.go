package template

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse parses a template from YAML bytes.
func Parse(data []byte) (*Template, error) {
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, &LoadError{
			Message: "failed to parse YAML",
			Cause:   err,
		}
	}

	if t.Name == "" {
		return nil, &LoadError{
			Message: "template name is required",
		}
	}

	for _, a := range t.Attributes {
		if a.OID == "" {
			return nil, &LoadError{
				Line:    a.Line,
				Message: "attribute oid is required",
			}
		}
		if len(a.Values) == 0 {
			return nil, &LoadError{
				Line:    a.Line,
				Message: "attribute " + a.OID + " must have at least one value",
			}
		}
	}

	return &t, nil
}

// Load loads a template from a file.
func Load(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{
			File:    path,
			Message: "failed to read file",
			Cause:   err,
		}
	}

	t, err := Parse(data)
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
			return nil, le
		}
		return nil, &LoadError{
			File:    path,
			Message: err.Error(),
		}
	}

	t.File = path
	return t, nil
}

// LoadDirectory loads all templates from a directory.
// Only files with .yaml or .yml extensions are loaded. Template names must
// be unique within the directory.
func LoadDirectory(dir string) ([]*Template, error) {
	var templates []*Template

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, &LoadError{
			File:    dir,
			Message: "failed to read directory",
			Cause:   err,
		}
	}

	seen := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(dir, name)
		t, err := Load(path)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[t.Name]; ok {
			return nil, &LoadError{
				File:    path,
				Message: "duplicate template name " + t.Name + " (also in " + prev + ")",
			}
		}
		seen[t.Name] = path

		templates = append(templates, t)
	}

	return templates, nil
}

// Find returns the template named name from templates.
func Find(templates []*Template, name string) (*Template, bool) {
	i := slices.IndexFunc(templates, func(t *Template) bool { return t.Name == name })
	if i < 0 {
		return nil, false
	}
	return templates[i], true
}
