package ext

import (
	"sort"
	"sync"

	"github.com/funvibe/mop/internal/dispatch"
)

// helperRegistry is a global registry of helper modules.
// Helpers are registered at startup by host code, typically from init().
//
// Thread-safe: registration happens once at startup; reads happen from any
// number of runtimes.
var helperRegistry = struct {
	mu       sync.RWMutex
	registry map[string]map[string]dispatch.Helper
}{
	registry: make(map[string]map[string]dispatch.Helper),
}

// RegisterHelpers registers the helpers of a module. Registering a module
// again replaces its helpers.
// It is safe to call from init() functions.
func RegisterHelpers(module string, helpers map[string]dispatch.Helper) {
	helperRegistry.mu.Lock()
	defer helperRegistry.mu.Unlock()
	cp := make(map[string]dispatch.Helper, len(helpers))
	for name, h := range helpers {
		cp[name] = h
	}
	helperRegistry.registry[module] = cp
}

// GetHelpers returns the helpers registered for a module.
// Returns nil if the module is not registered.
func GetHelpers(module string) map[string]dispatch.Helper {
	helperRegistry.mu.RLock()
	defer helperRegistry.mu.RUnlock()
	return helperRegistry.registry[module]
}

// HelperModules returns the names of all registered modules, sorted.
func HelperModules() []string {
	helperRegistry.mu.RLock()
	defer helperRegistry.mu.RUnlock()
	names := make([]string, 0, len(helperRegistry.registry))
	for name := range helperRegistry.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsModuleRegistered checks if a helper module is registered.
func IsModuleRegistered(module string) bool {
	helperRegistry.mu.RLock()
	defer helperRegistry.mu.RUnlock()
	_, ok := helperRegistry.registry[module]
	return ok
}

// ClearHelpers removes all registered helper modules.
// Used for testing.
func ClearHelpers() {
	helperRegistry.mu.Lock()
	defer helperRegistry.mu.Unlock()
	helperRegistry.registry = make(map[string]map[string]dispatch.Helper)
}
