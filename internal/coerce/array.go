package coerce

import (
	"github.com/funvibe/mop/internal/object"
	"github.com/funvibe/mop/internal/typesystem"
)

// arrayRule names the element-wise conversion needed between two array classes.
type arrayRule int

const (
	ruleNone arrayRule = iota
	ruleUnbox
	ruleStringify
	ruleBox
)

func (d *Descriptor) ruleFor(from *typesystem.Class) arrayRule {
	target := d.component.class
	src := from.Component
	switch {
	case target.IsPrimitive() && !src.IsPrimitive() && target.Boxed().IsSubtypeOf(src):
		// Integer[], Number[] and Object[] all unbox into int[].
		return ruleUnbox
	case target == typesystem.String && src == typesystem.GString:
		return ruleStringify
	case target == typesystem.Object && src.IsPrimitive():
		return ruleBox
	}
	return ruleNone
}

func (d *Descriptor) arrayAssignableFrom(c *typesystem.Class) bool {
	if !c.IsArray() {
		return false
	}
	if c == d.class || c.IsSubtypeOf(d.class) {
		return true
	}
	return d.ruleFor(c) != ruleNone
}

func (d *Descriptor) arrayDistance(c *typesystem.Class) (int, bool) {
	if !c.IsArray() {
		return 0, false
	}
	if c == d.class {
		return distExact, true
	}
	if hops := c.Distance(d.class); hops >= 0 {
		return hops * distInheritance, true
	}
	if d.ruleFor(c) != ruleNone {
		return distArrayConvert, true
	}
	return 0, false
}

// coerceArray applies at most one element-wise rule. Non-array values and
// arrays needing no rule pass through unchanged. A failing element aborts
// the whole conversion.
func (d *Descriptor) coerceArray(v object.Object) (object.Object, error) {
	arr, ok := v.(*object.Array)
	if !ok {
		return v, nil
	}
	rule := d.ruleFor(arr.Class)
	if rule == ruleNone {
		return v, nil
	}

	out := make([]object.Object, len(arr.Elements))
	switch rule {
	case ruleUnbox:
		for i, el := range arr.Elements {
			conv, err := d.component.Coerce(el)
			if err != nil {
				return nil, &CoercionError{Value: v, Target: d.class, Index: i, Err: err}
			}
			out[i] = conv
		}
	case ruleStringify:
		for i, el := range arr.Elements {
			if object.IsNull(el) {
				out[i] = object.NULL
				continue
			}
			out[i] = &object.String{Value: object.Render(el)}
		}
	case ruleBox:
		// Elements are already boxed values; only the array class changes.
		copy(out, arr.Elements)
	}
	return &object.Array{Class: d.class, Elements: out}, nil
}
