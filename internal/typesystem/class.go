package typesystem

import (
	"strings"
	"sync"
	"sync/atomic"
)

// ClassKind distinguishes the handful of class shapes the dispatcher cares about.
type ClassKind int

const (
	KindReference ClassKind = iota // ordinary reference class (Object, String, user classes)
	KindPrimitive                  // unboxed value class (int, double, ...)
	KindBoxed                      // boxed counterpart of a primitive (Integer, Double, ...)
	KindArray                      // array-of-T
	KindNull                       // the distinguished type of an absent value
)

func (k ClassKind) String() string {
	switch k {
	case KindReference:
		return "reference"
	case KindPrimitive:
		return "primitive"
	case KindBoxed:
		return "boxed"
	case KindArray:
		return "array"
	case KindNull:
		return "null"
	}
	return "unknown"
}

var nextClassID atomic.Uint32

// Class is an opaque type handle. Identity is pointer identity; ID is a
// process-unique number used where a comparable key is needed.
type Class struct {
	Name       string
	Kind       ClassKind
	Super      *Class
	Interfaces []*Class
	Component  *Class // arrays only

	partner *Class // primitive <-> boxed
	id      uint32
}

func newClass(name string, kind ClassKind, super *Class, interfaces ...*Class) *Class {
	return &Class{
		Name:       name,
		Kind:       kind,
		Super:      super,
		Interfaces: interfaces,
		id:         nextClassID.Add(1),
	}
}

// NewClass creates a user-defined reference class. A nil super means Object.
func NewClass(name string, super *Class, interfaces ...*Class) *Class {
	if super == nil {
		super = Object
	}
	return newClass(name, KindReference, super, interfaces...)
}

// NewInterface creates an interface-like class with no superclass.
func NewInterface(name string, extends ...*Class) *Class {
	return newClass(name, KindReference, nil, extends...)
}

func (c *Class) ID() uint32 { return c.id }

func (c *Class) String() string {
	if c == nil {
		return "<nil>"
	}
	return c.Name
}

func (c *Class) IsPrimitive() bool { return c.Kind == KindPrimitive }
func (c *Class) IsArray() bool     { return c.Kind == KindArray }
func (c *Class) IsNull() bool      { return c.Kind == KindNull }

// Boxed returns the boxed partner of a primitive class, or the class itself.
func (c *Class) Boxed() *Class {
	if c.Kind == KindPrimitive && c.partner != nil {
		return c.partner
	}
	return c
}

// Primitive returns the primitive partner of a boxed class, or the class itself.
func (c *Class) Primitive() *Class {
	if c.Kind == KindBoxed && c.partner != nil {
		return c.partner
	}
	return c
}

// SamePair reports whether c and other are the same class or a primitive/boxed pair.
func (c *Class) SamePair(other *Class) bool {
	if c == other {
		return true
	}
	return c.partner != nil && c.partner == other
}

// IsSubtypeOf reports whether a value of class c may be used where other is
// declared, without conversion.
func (c *Class) IsSubtypeOf(other *Class) bool {
	return c.Distance(other) >= 0
}

// Distance returns the number of inheritance hops from c to other, or -1 if
// c is not a subtype of other. Interface edges count one hop like superclass
// edges. Null is one hop from every non-primitive class.
func (c *Class) Distance(other *Class) int {
	if c == nil || other == nil {
		return -1
	}
	if c == other {
		return 0
	}
	if c.Kind == KindNull {
		if other.Kind == KindPrimitive {
			return -1
		}
		return 1
	}
	if c.Kind == KindPrimitive || other.Kind == KindPrimitive {
		return -1
	}
	if other == Object {
		if c.Kind == KindArray {
			return 1
		}
		// Depth along the superclass chain; interfaces sit one hop below Object.
		d := 0
		for p := c; p != Object; p = p.Super {
			if p.Super == nil {
				return d + 1
			}
			d++
		}
		return d
	}
	if c.Kind == KindArray {
		if other.Kind != KindArray {
			return -1
		}
		// Covariant over reference components only.
		if c.Component.Kind == KindPrimitive || other.Component.Kind == KindPrimitive {
			return -1
		}
		return c.Component.Distance(other.Component)
	}
	best := -1
	visit := func(parent *Class) {
		if parent == nil {
			return
		}
		if d := parent.Distance(other); d >= 0 && (best < 0 || d+1 < best) {
			best = d + 1
		}
	}
	visit(c.Super)
	for _, iface := range c.Interfaces {
		visit(iface)
	}
	return best
}

// Ancestors returns c followed by every superclass and interface reachable
// from it, nearest first, without duplicates.
func (c *Class) Ancestors() []*Class {
	var out []*Class
	seen := make(map[*Class]bool)
	queue := []*Class{c}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur == nil || seen[cur] {
			continue
		}
		seen[cur] = true
		out = append(out, cur)
		queue = append(queue, cur.Super)
		queue = append(queue, cur.Interfaces...)
	}
	if c.Kind != KindPrimitive && !seen[Object] {
		out = append(out, Object)
	}
	return out
}

var arrayClasses sync.Map // *Class -> *Class

// ArrayOf returns the interned array class with the given component.
func ArrayOf(component *Class) *Class {
	if arr, ok := arrayClasses.Load(component); ok {
		return arr.(*Class)
	}
	arr := newClass(component.Name+"[]", KindArray, Object)
	arr.Component = component
	actual, _ := arrayClasses.LoadOrStore(component, arr)
	return actual.(*Class)
}

// ParseArrayName splits "int[][]" into ("int", 2).
func ParseArrayName(name string) (string, int) {
	depth := 0
	for strings.HasSuffix(name, "[]") {
		name = strings.TrimSuffix(name, "[]")
		depth++
	}
	return name, depth
}
