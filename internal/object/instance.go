package object

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/funvibe/mop/internal/typesystem"
)

// Instance is an instance of a user-defined class. It participates in the
// metaobject protocol: property and method access go through its dispatcher.
type Instance struct {
	Class *typesystem.Class

	mu        sync.RWMutex
	fields    map[string]Object
	overrides MethodOverrides
	meta      Dispatcher
}

// NewInstance creates an instance dispatched by d.
func NewInstance(class *typesystem.Class, d Dispatcher) *Instance {
	return &Instance{Class: class, fields: make(map[string]Object), meta: d}
}

func (i *Instance) Type() ObjectType               { return INSTANCE_OBJ }
func (i *Instance) RuntimeType() *typesystem.Class { return i.Class }
func (i *Instance) Dispatcher() Dispatcher         { return i.meta }

func (i *Instance) Inspect() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	names := make([]string, 0, len(i.fields))
	for name := range i.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for k, name := range names {
		parts[k] = fmt.Sprintf("%s: %s", name, i.fields[name].Inspect())
	}
	return fmt.Sprintf("%s{%s}", i.Class.Name, strings.Join(parts, ", "))
}

func (i *Instance) Hash() uint32 {
	return hashString(fmt.Sprintf("%p", i))
}

// Field returns a field value.
func (i *Instance) Field(name string) (Object, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	v, ok := i.fields[name]
	return v, ok
}

// SetField sets a field value.
func (i *Instance) SetField(name string, v Object) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.fields[name] = v
}

// Overrides returns the per-instance method table, or nil.
func (i *Instance) Overrides() MethodOverrides {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.overrides
}

// SetOverrides attaches a per-instance method table.
func (i *Instance) SetOverrides(m MethodOverrides) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.overrides = m
}
