package object

import (
	"fmt"
	"reflect"

	"github.com/funvibe/mop/internal/typesystem"
)

// HostObject wraps a plain Go value. It has no dispatch table of its own;
// its class is whatever the embedder declared for it.
type HostObject struct {
	Value interface{}
	Class *typesystem.Class
}

func (h *HostObject) Type() ObjectType { return HOST_OBJ }

func (h *HostObject) Inspect() string {
	return fmt.Sprintf("<HostObject: %T %+v>", h.Value, h.Value)
}

func (h *HostObject) RuntimeType() *typesystem.Class {
	if h.Class == nil {
		return typesystem.Object
	}
	return h.Class
}

func (h *HostObject) Hash() uint32 {
	// Best effort hash
	if h.Value == nil {
		return 0
	}
	val := reflect.ValueOf(h.Value)
	switch val.Kind() {
	case reflect.Ptr, reflect.UnsafePointer, reflect.Chan, reflect.Func, reflect.Map, reflect.Slice:
		return uint32(val.Pointer())
	default:
		return hashString(fmt.Sprintf("%v", h.Value))
	}
}
