package typesystem

import (
	"fmt"
	"sort"
	"sync"
)

// Universe resolves class names. It is pre-populated with the builtin classes
// and grows as user classes are defined.
type Universe struct {
	mu      sync.RWMutex
	classes map[string]*Class
}

// NewUniverse creates a Universe containing the builtin classes.
func NewUniverse() *Universe {
	u := &Universe{classes: make(map[string]*Class)}
	for _, c := range Builtins() {
		u.classes[c.Name] = c
	}
	return u
}

// Define registers a class under its name. Redefining a name with a
// different class is an error.
func (u *Universe) Define(c *Class) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if existing, ok := u.classes[c.Name]; ok && existing != c {
		return fmt.Errorf("class %s already defined", c.Name)
	}
	u.classes[c.Name] = c
	return nil
}

// Lookup finds a class by name. Array names ("int[]", "String[][]") are
// resolved to interned array classes.
func (u *Universe) Lookup(name string) (*Class, error) {
	base, depth := ParseArrayName(name)
	u.mu.RLock()
	c, ok := u.classes[base]
	u.mu.RUnlock()
	if !ok {
		return nil, NewClassNotFoundError(name)
	}
	for i := 0; i < depth; i++ {
		c = ArrayOf(c)
	}
	return c, nil
}

// MustLookup is Lookup for names known to exist.
func (u *Universe) MustLookup(name string) *Class {
	c, err := u.Lookup(name)
	if err != nil {
		panic(err)
	}
	return c
}

// Names returns every defined class name, sorted.
func (u *Universe) Names() []string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	names := make([]string, 0, len(u.classes))
	for name := range u.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
