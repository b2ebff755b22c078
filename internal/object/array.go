package object

import (
	"strings"

	"github.com/funvibe/mop/internal/typesystem"
)

// Array is an array value. Primitive arrays hold boxed elements but carry a
// primitive component class, so dispatch sees int[] rather than Integer[].
type Array struct {
	Class    *typesystem.Class // array class
	Elements []Object
}

// NewArray creates an array of the given component class.
func NewArray(component *typesystem.Class, elements ...Object) *Array {
	return &Array{Class: typesystem.ArrayOf(component), Elements: elements}
}

func (a *Array) Component() *typesystem.Class { return a.Class.Component }
func (a *Array) Len() int                     { return len(a.Elements) }

func (a *Array) Type() ObjectType               { return ARRAY_OBJ }
func (a *Array) RuntimeType() *typesystem.Class { return a.Class }

func (a *Array) Inspect() string {
	parts := make([]string, len(a.Elements))
	for i, el := range a.Elements {
		if el == nil {
			parts[i] = "null"
			continue
		}
		parts[i] = el.Inspect()
	}
	return a.Class.Component.Name + "[" + strings.Join(parts, ", ") + "]"
}

func (a *Array) Hash() uint32 {
	h := hashString(a.Class.Name)
	for _, el := range a.Elements {
		if el != nil {
			h = h*31 + el.Hash()
		}
	}
	return h
}
