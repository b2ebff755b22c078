package coerce

import (
	"sync"

	"github.com/funvibe/mop/internal/typesystem"
)

// Table interns descriptors: exactly one Descriptor exists per class per
// table, so descriptors can be compared by identity.
type Table struct {
	mu      sync.RWMutex
	byClass map[*typesystem.Class]*Descriptor
}

// NewTable creates an empty descriptor table.
func NewTable() *Table {
	return &Table{byClass: make(map[*typesystem.Class]*Descriptor)}
}

// For returns the descriptor for c, creating it on first use.
func (t *Table) For(c *typesystem.Class) *Descriptor {
	t.mu.RLock()
	d, ok := t.byClass[c]
	t.mu.RUnlock()
	if ok {
		return d
	}

	var component *Descriptor
	if c.IsArray() {
		component = t.For(c.Component)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if d, ok := t.byClass[c]; ok {
		return d
	}
	d = build(c, component)
	t.byClass[c] = d
	return d
}

// ForAll maps For over a list of classes.
func (t *Table) ForAll(classes ...*typesystem.Class) []*Descriptor {
	out := make([]*Descriptor, len(classes))
	for i, c := range classes {
		out[i] = t.For(c)
	}
	return out
}

// Len returns the number of interned descriptors.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.byClass)
}

// Reset drops every interned descriptor. Descriptors handed out earlier stay
// usable but are no longer identical to newly created ones.
func (t *Table) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byClass = make(map[*typesystem.Class]*Descriptor)
}

func build(c *typesystem.Class, component *Descriptor) *Descriptor {
	d := &Descriptor{class: c, allowNull: !c.IsPrimitive(), component: component}
	if r, ok := ranks[c]; ok {
		d.kind = KindNumeric
		d.rank = r
		return d
	}
	switch {
	case c.IsArray():
		d.kind = KindArray
	case c.SamePair(typesystem.Boolean):
		d.kind = KindBoolean
	case c.SamePair(typesystem.Char):
		d.kind = KindChar
	case c == typesystem.String:
		d.kind = KindString
	default:
		d.kind = KindObject
	}
	return d
}
