package template

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

var (
	builtinMu    sync.RWMutex
	builtinCache = make(map[string]*Template)
)

// LoadBuiltin loads an embedded template by name (e.g. "document").
// The returned template is shared and must not be modified.
func LoadBuiltin(name string) (*Template, error) {
	builtinMu.RLock()
	if t, ok := builtinCache[name]; ok {
		builtinMu.RUnlock()
		return t, nil
	}
	builtinMu.RUnlock()

	data, err := builtinFS.ReadFile("builtin/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("builtin template %q not found: %w", name, err)
	}

	t, err := Parse(data)
	if err != nil {
		if le, ok := err.(*LoadError); ok {
			le.File = "builtin:" + name
		}
		return nil, err
	}
	t.File = "builtin:" + name

	builtinMu.Lock()
	builtinCache[name] = t
	builtinMu.Unlock()

	return t, nil
}

// BuiltinNames returns the names of all embedded templates, sorted.
func BuiltinNames() ([]string, error) {
	entries, err := builtinFS.ReadDir("builtin")
	if err != nil {
		return nil, fmt.Errorf("reading builtin templates: %w", err)
	}

	var names []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") {
			names = append(names, strings.TrimSuffix(name, ".yaml"))
		}
	}
	sort.Strings(names)
	return names, nil
}
