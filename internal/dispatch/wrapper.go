package dispatch

import (
	"fmt"

	"github.com/funvibe/mop/internal/object"
	"github.com/funvibe/mop/internal/typesystem"
)

// Wrapper pins the apparent class of a value for dispatch. The resolver
// scores a wrapped argument by Pinned() instead of its runtime class.
type Wrapper interface {
	object.MetaObject
	Unwrap() object.Object
	Pinned() *typesystem.Class
}

// MetaWrapper wraps a value that carries its own dispatcher. Method and
// property access is proxied to that dispatcher with the unwrapped value.
type MetaWrapper struct {
	value  object.MetaObject
	pinned *typesystem.Class
}

// HostWrapper wraps a plain value. Method and property access goes to the
// dispatcher supplied at construction.
type HostWrapper struct {
	value  object.Object
	pinned *typesystem.Class
	meta   object.Dispatcher
}

// Wrap pins v to class pinned. Values that implement object.MetaObject get
// a *MetaWrapper; anything else gets a *HostWrapper dispatched by fallback.
// Wrapping a wrapper pins the original value again. Wrap does not check
// that v conforms to pinned: a mismatch surfaces as a coercion error when
// the wrapped argument is passed.
func Wrap(v object.Object, pinned *typesystem.Class, fallback object.Dispatcher) Wrapper {
	if pinned == nil {
		panic("dispatch: Wrap with nil class")
	}
	if w, ok := v.(Wrapper); ok {
		v = w.Unwrap()
	}
	if mo, ok := v.(object.MetaObject); ok && mo.Dispatcher() != nil {
		return &MetaWrapper{value: mo, pinned: pinned}
	}
	return &HostWrapper{value: v, pinned: pinned, meta: fallback}
}

func (w *MetaWrapper) Unwrap() object.Object          { return w.value }
func (w *MetaWrapper) Pinned() *typesystem.Class      { return w.pinned }
func (w *MetaWrapper) Dispatcher() object.Dispatcher  { return w.value.Dispatcher() }
func (w *MetaWrapper) Type() object.ObjectType        { return object.TYPED_VALUE_OBJ }
func (w *MetaWrapper) RuntimeType() *typesystem.Class { return w.pinned }
func (w *MetaWrapper) Hash() uint32                   { return w.value.Hash() }

func (w *MetaWrapper) Inspect() string {
	return fmt.Sprintf("(%s) %s", w.pinned.Name, w.value.Inspect())
}

func (w *MetaWrapper) InvokeMethod(name string, args []object.Object) (object.Object, error) {
	return w.value.Dispatcher().InvokeMethod(w.value, name, args)
}

func (w *MetaWrapper) GetProperty(name string) (object.Object, error) {
	return w.value.Dispatcher().GetProperty(w.value, name)
}

func (w *MetaWrapper) SetProperty(name string, value object.Object) error {
	return w.value.Dispatcher().SetProperty(w.value, name, value)
}

func (w *HostWrapper) Unwrap() object.Object          { return w.value }
func (w *HostWrapper) Pinned() *typesystem.Class      { return w.pinned }
func (w *HostWrapper) Dispatcher() object.Dispatcher  { return w.meta }
func (w *HostWrapper) Type() object.ObjectType        { return object.TYPED_VALUE_OBJ }
func (w *HostWrapper) RuntimeType() *typesystem.Class { return w.pinned }

func (w *HostWrapper) Hash() uint32 {
	if w.value == nil {
		return 0
	}
	return w.value.Hash()
}

func (w *HostWrapper) Inspect() string {
	inner := "null"
	if w.value != nil {
		inner = w.value.Inspect()
	}
	return fmt.Sprintf("(%s) %s", w.pinned.Name, inner)
}

func (w *HostWrapper) InvokeMethod(name string, args []object.Object) (object.Object, error) {
	if w.meta == nil {
		return nil, fmt.Errorf("invoke %s on %s: no dispatcher attached", name, w.Inspect())
	}
	return w.meta.InvokeMethod(w.value, name, args)
}

func (w *HostWrapper) GetProperty(name string) (object.Object, error) {
	if w.meta == nil {
		return nil, fmt.Errorf("get %s on %s: no dispatcher attached", name, w.Inspect())
	}
	return w.meta.GetProperty(w.value, name)
}

func (w *HostWrapper) SetProperty(name string, value object.Object) error {
	if w.meta == nil {
		return fmt.Errorf("set %s on %s: no dispatcher attached", name, w.Inspect())
	}
	return w.meta.SetProperty(w.value, name, value)
}

// unwrapArg returns the original value of a wrapped argument.
func unwrapArg(v object.Object) object.Object {
	if w, ok := v.(Wrapper); ok {
		return w.Unwrap()
	}
	return v
}

// argClass is the class an argument is scored by.
func argClass(v object.Object) *typesystem.Class {
	if w, ok := v.(Wrapper); ok {
		return w.Pinned()
	}
	return object.ClassOf(v)
}
