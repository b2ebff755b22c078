// Package coerce implements type descriptors: per-class capability objects
// that decide assignability and convert argument values to declared
// parameter types.
package coerce

import (
	"fmt"

	"github.com/funvibe/mop/internal/object"
	"github.com/funvibe/mop/internal/typesystem"
)

// Kind selects the rule set a Descriptor applies.
type Kind int

const (
	KindObject Kind = iota
	KindNumeric
	KindBoolean
	KindChar
	KindString
	KindArray
)

func (k Kind) String() string {
	switch k {
	case KindObject:
		return "object"
	case KindNumeric:
		return "numeric"
	case KindBoolean:
		return "boolean"
	case KindChar:
		return "char"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	}
	return "unknown"
}

// Scoring weights. Lower is a better match.
const (
	distExact        = 0
	distNull         = 1
	distBoxing       = 1
	distWidening     = 2 // per lattice step
	distStringify    = 2
	distInheritance  = 3 // per hop
	distArrayConvert = 5
)

// Assigner is the capability every descriptor provides.
type Assigner interface {
	IsDirectlyAssignable(v object.Object) bool
	IsAssignableFrom(c *typesystem.Class) bool
	Coerce(v object.Object) (object.Object, error)
}

// Descriptor is the interned capability wrapper for one class. Descriptors
// are created by a Table and never mutated afterwards.
type Descriptor struct {
	kind      Kind
	class     *typesystem.Class
	allowNull bool
	rank      Rank        // KindNumeric
	component *Descriptor // KindArray
}

var _ Assigner = (*Descriptor)(nil)

func (d *Descriptor) Kind() Kind               { return d.kind }
func (d *Descriptor) Class() *typesystem.Class { return d.class }
func (d *Descriptor) AllowNull() bool          { return d.allowNull }
func (d *Descriptor) Component() *Descriptor   { return d.component }
func (d *Descriptor) String() string           { return d.class.Name }

// Rank returns the lattice rank for numeric descriptors.
func (d *Descriptor) Rank() (Rank, bool) {
	return d.rank, d.kind == KindNumeric
}

// IsDirectlyAssignable reports whether v can be passed without any
// conversion: its runtime class already matches, or v is null and the
// descriptor admits null.
func (d *Descriptor) IsDirectlyAssignable(v object.Object) bool {
	if object.IsNull(v) {
		return d.allowNull
	}
	c := v.RuntimeType()
	switch d.kind {
	case KindNumeric, KindBoolean, KindChar:
		return c.SamePair(d.class)
	case KindString:
		return c == typesystem.String
	case KindArray:
		return c == d.class || (c.IsArray() && c.IsSubtypeOf(d.class))
	default:
		return c.Boxed().IsSubtypeOf(d.class)
	}
}

// IsAssignableFrom reports whether a value declared as c is accepted by this
// descriptor, possibly after coercion. It is the static applicability test
// used before any value is inspected.
func (d *Descriptor) IsAssignableFrom(c *typesystem.Class) bool {
	if c == typesystem.Null || c == nil {
		// float accepts null statically even as a primitive; Coerce still
		// rejects it.
		return d.allowNull || (d.kind == KindNumeric && d.rank == RankFloat)
	}
	switch d.kind {
	case KindNumeric:
		return d.numericAssignableFrom(c)
	case KindBoolean, KindChar:
		return c.SamePair(d.class)
	case KindString:
		return c == typesystem.String || c == typesystem.GString
	case KindArray:
		return d.arrayAssignableFrom(c)
	default:
		return c.Boxed().IsSubtypeOf(d.class)
	}
}

// Distance scores how far a value of class c is from this descriptor's
// class. ok is false when the descriptor does not accept c at all.
func (d *Descriptor) Distance(c *typesystem.Class) (dist int, ok bool) {
	if c == typesystem.Null || c == nil {
		if d.allowNull {
			return distNull, true
		}
		return 0, false
	}
	switch d.kind {
	case KindNumeric:
		return d.numericDistance(c)
	case KindBoolean, KindChar:
		if c == d.class {
			return distExact, true
		}
		if c.SamePair(d.class) {
			return distBoxing, true
		}
		return 0, false
	case KindString:
		switch c {
		case typesystem.String:
			return distExact, true
		case typesystem.GString:
			return distStringify, true
		}
		return 0, false
	case KindArray:
		return d.arrayDistance(c)
	default:
		boxed := c.Boxed()
		hops := boxed.Distance(d.class)
		if hops < 0 {
			return 0, false
		}
		dist = hops * distInheritance
		if boxed != c {
			dist += distBoxing
		}
		return dist, true
	}
}

// Coerce converts v to the descriptor's class. It never mutates v; values
// that already match are returned as-is.
func (d *Descriptor) Coerce(v object.Object) (object.Object, error) {
	if object.IsNull(v) {
		if d.allowNull {
			return object.NULL, nil
		}
		return nil, newCoercionError(v, d.class, ErrNull)
	}
	switch d.kind {
	case KindNumeric:
		return d.coerceNumeric(v)
	case KindBoolean:
		if v.RuntimeType().SamePair(d.class) {
			return v, nil
		}
	case KindChar:
		if v.RuntimeType().SamePair(d.class) {
			return v, nil
		}
		if s, ok := v.(*object.String); ok && len([]rune(s.Value)) == 1 {
			return &object.Char{Value: []rune(s.Value)[0]}, nil
		}
	case KindString:
		switch s := v.(type) {
		case *object.String:
			return s, nil
		case *object.GString:
			return &object.String{Value: s.String()}, nil
		}
	case KindArray:
		return d.coerceArray(v)
	default:
		if v.RuntimeType().Boxed().IsSubtypeOf(d.class) {
			return v, nil
		}
	}
	return nil, newCoercionError(v, d.class, nil)
}

// GoString is used by %#v in test failure messages.
func (d *Descriptor) GoString() string {
	return fmt.Sprintf("coerce.Descriptor{%s %s null=%t}", d.kind, d.class.Name, d.allowNull)
}
