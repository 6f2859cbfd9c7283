package core

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// registered holds every definition added by the module packages' init funcs.
var registered = moduleSet{defs: map[string]ModuleDefinition{}}

type moduleSet struct {
	mu   sync.RWMutex
	defs map[string]ModuleDefinition
}

// Register adds def under its key. A definition without a key or Execute
// func, or a key used twice, is a programming error and panics at startup.
func Register(def ModuleDefinition) {
	if err := registered.add(def); err != nil {
		panic(err)
	}
}

func (m *moduleSet) add(def ModuleDefinition) error {
	key := def.Info.Key
	switch {
	case key == "":
		return errors.New("module registered without a key")
	case def.Execute == nil:
		return fmt.Errorf("module %s registered without an Execute func", key)
	}
	// Module info lists an empty array rather than null.
	if def.Info.ContentObjects == nil {
		def.Info.ContentObjects = []string{}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.defs[key]; dup {
		return fmt.Errorf("module already registered: %s", key)
	}
	m.defs[key] = def
	return nil
}

// Get looks up the module served under key.
func Get(key string) (ModuleDefinition, bool) {
	registered.mu.RLock()
	defer registered.mu.RUnlock()
	def, ok := registered.defs[key]
	return def, ok
}

// All lists the registered modules ordered by key.
func All() []ModuleDefinition {
	registered.mu.RLock()
	out := make([]ModuleDefinition, 0, len(registered.defs))
	for _, def := range registered.defs {
		out = append(out, def)
	}
	registered.mu.RUnlock()

	slices.SortFunc(out, func(a, b ModuleDefinition) int {
		return strings.Compare(a.Info.Key, b.Info.Key)
	})
	return out
}

// ModuleCount is reported by the health endpoint.
func ModuleCount() int {
	registered.mu.RLock()
	defer registered.mu.RUnlock()
	return len(registered.defs)
}

// unregister drops key. Tests use it to undo Register.
func unregister(key string) {
	registered.mu.Lock()
	defer registered.mu.Unlock()
	delete(registered.defs, key)
}
