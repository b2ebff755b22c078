package mop

import (
	"fmt"
	"math"
	"math/big"
	"reflect"
	"sync"

	"github.com/funvibe/mop/internal/object"
	"github.com/funvibe/mop/internal/typesystem"
)

var (
	objectType = reflect.TypeOf((*object.Object)(nil)).Elem()
	bigIntType = reflect.TypeOf((*big.Int)(nil))
	bigRatType = reflect.TypeOf((*big.Rat)(nil))
)

// Marshaller handles conversion between Go values and runtime objects.
type Marshaller struct {
	mu    sync.RWMutex
	hosts map[reflect.Type]*typesystem.Class
}

func NewMarshaller() *Marshaller {
	return &Marshaller{hosts: make(map[reflect.Type]*typesystem.Class)}
}

// Declare maps values of Go type t to class c. Such values are wrapped in a
// HostObject whose runtime type is c.
func (m *Marshaller) Declare(t reflect.Type, c *typesystem.Class) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hosts[t] = c
}

func (m *Marshaller) hostClass(t reflect.Type) *typesystem.Class {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hosts[t]
}

// ClassFor returns the class a parameter of Go type t is declared as.
func (m *Marshaller) ClassFor(t reflect.Type) (*typesystem.Class, bool) {
	if c := m.hostClass(t); c != nil {
		return c, true
	}
	if t == objectType || (t.Kind() == reflect.Interface && t.NumMethod() == 0) {
		return typesystem.Object, true
	}
	switch t {
	case bigIntType:
		return typesystem.BigInteger, true
	case bigRatType:
		return typesystem.BigDecimal, true
	}
	if t.Implements(objectType) && t.Kind() == reflect.Ptr {
		// The zero value of a runtime object type knows its class.
		if c := reflect.New(t.Elem()).Interface().(object.Object).RuntimeType(); c != nil {
			return c, true
		}
		return typesystem.Object, true
	}

	switch t.Kind() {
	case reflect.Bool:
		return typesystem.Boolean, true
	case reflect.Int8:
		return typesystem.Byte, true
	case reflect.Int16, reflect.Uint8:
		return typesystem.Short, true
	case reflect.Int32, reflect.Uint16:
		return typesystem.Int, true
	case reflect.Int, reflect.Int64, reflect.Uint32, reflect.Uint, reflect.Uint64:
		return typesystem.Long, true
	case reflect.Float32:
		return typesystem.Float, true
	case reflect.Float64:
		return typesystem.Double, true
	case reflect.String:
		return typesystem.String, true
	case reflect.Slice, reflect.Array:
		elem, ok := m.ClassFor(t.Elem())
		if !ok {
			return nil, false
		}
		return typesystem.ArrayOf(elem), true
	}
	return nil, false
}

// ToValue converts a Go value to a runtime Object.
func (m *Marshaller) ToValue(val interface{}) (object.Object, error) {
	if val == nil {
		return object.NULL, nil
	}
	if obj, ok := val.(object.Object); ok {
		return obj, nil
	}
	return m.toValue(reflect.ValueOf(val))
}

func (m *Marshaller) toValue(v reflect.Value) (object.Object, error) {
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return object.NULL, nil
		}
		v = v.Elem()
	}
	if !v.IsValid() {
		return object.NULL, nil
	}
	if v.CanInterface() {
		if obj, ok := v.Interface().(object.Object); ok {
			return obj, nil
		}
	}

	if c := m.hostClass(v.Type()); c != nil {
		return &object.HostObject{Value: v.Interface(), Class: c}, nil
	}

	switch v.Type() {
	case bigIntType:
		if v.IsNil() {
			return object.NULL, nil
		}
		return &object.BigInt{Value: new(big.Int).Set(v.Interface().(*big.Int))}, nil
	case bigRatType:
		if v.IsNil() {
			return object.NULL, nil
		}
		return &object.Decimal{Value: new(big.Rat).Set(v.Interface().(*big.Rat))}, nil
	}

	switch v.Kind() {
	case reflect.Bool:
		return &object.Boolean{Value: v.Bool()}, nil
	case reflect.Int8:
		return &object.Byte{Value: int8(v.Int())}, nil
	case reflect.Int16:
		return &object.Short{Value: int16(v.Int())}, nil
	case reflect.Int32:
		return &object.Int{Value: int32(v.Int())}, nil
	case reflect.Int, reflect.Int64:
		return &object.Long{Value: v.Int()}, nil
	case reflect.Uint8:
		return &object.Short{Value: int16(v.Uint())}, nil
	case reflect.Uint16:
		return &object.Int{Value: int32(v.Uint())}, nil
	case reflect.Uint32, reflect.Uint, reflect.Uint64, reflect.Uintptr:
		u := v.Uint()
		if u > math.MaxInt64 {
			return &object.BigInt{Value: new(big.Int).SetUint64(u)}, nil
		}
		return &object.Long{Value: int64(u)}, nil
	case reflect.Float32:
		return &object.Float{Value: float32(v.Float())}, nil
	case reflect.Float64:
		return &object.Double{Value: v.Float()}, nil
	case reflect.String:
		return &object.String{Value: v.String()}, nil
	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.IsNil() {
			return object.NULL, nil
		}
		return m.sliceToArray(v)
	case reflect.Ptr, reflect.Map, reflect.Func, reflect.Chan:
		if v.IsNil() {
			return object.NULL, nil
		}
	}
	// Pointers, structs, maps, funcs and channels stay opaque.
	return &object.HostObject{Value: v.Interface()}, nil
}

func (m *Marshaller) sliceToArray(v reflect.Value) (*object.Array, error) {
	component, ok := m.ClassFor(v.Type().Elem())
	if !ok {
		component = typesystem.Object
	}
	elements := make([]object.Object, v.Len())
	for i := 0; i < v.Len(); i++ {
		val, err := m.toValue(v.Index(i))
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		elements[i] = val
	}
	return object.NewArray(component, elements...), nil
}

// FromValue converts a runtime Object to a Go value.
// targetType is optional; if provided, the result is converted to it.
func (m *Marshaller) FromValue(obj object.Object, targetType reflect.Type) (interface{}, error) {
	if targetType == nil {
		return m.natural(obj)
	}
	v, err := m.fromValue(obj, targetType)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// natural converts obj to the Go type it most directly corresponds to.
func (m *Marshaller) natural(obj object.Object) (interface{}, error) {
	switch o := obj.(type) {
	case nil, *object.Nil:
		return nil, nil
	case *object.Boolean:
		return o.Value, nil
	case *object.Char:
		return o.Value, nil
	case *object.Byte:
		return o.Value, nil
	case *object.Short:
		return o.Value, nil
	case *object.Int:
		return o.Value, nil
	case *object.Long:
		return o.Value, nil
	case *object.Float:
		return o.Value, nil
	case *object.Double:
		return o.Value, nil
	case *object.BigInt:
		return new(big.Int).Set(o.Value), nil
	case *object.Decimal:
		return new(big.Rat).Set(o.Value), nil
	case *object.String:
		return o.Value, nil
	case *object.GString:
		return o.String(), nil
	case *object.HostObject:
		return o.Value, nil
	case *object.Array:
		out := make([]interface{}, len(o.Elements))
		for i, el := range o.Elements {
			val, err := m.natural(el)
			if err != nil {
				return nil, err
			}
			out[i] = val
		}
		return out, nil
	default:
		// Instances and wrappers keep their identity.
		return obj, nil
	}
}

func (m *Marshaller) fromValue(obj object.Object, t reflect.Type) (reflect.Value, error) {
	if object.IsNull(obj) {
		switch t.Kind() {
		case reflect.Ptr, reflect.Interface, reflect.Slice, reflect.Map, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("cannot convert null to %s", t)
	}
	if t.Kind() == reflect.Interface && t.NumMethod() == 0 {
		val, err := m.natural(obj)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(&val).Elem(), nil
	}
	if reflect.TypeOf(obj).AssignableTo(t) {
		return reflect.ValueOf(obj), nil
	}
	if h, ok := obj.(*object.HostObject); ok {
		return hostValue(h, t)
	}

	switch t {
	case bigIntType:
		if b, ok := object.ToBigInt(obj); ok {
			return reflect.ValueOf(b), nil
		}
		return reflect.Value{}, mismatch(obj, t)
	case bigRatType:
		if r, ok := object.ToRat(obj); ok {
			return reflect.ValueOf(r), nil
		}
		return reflect.Value{}, mismatch(obj, t)
	}

	out := reflect.New(t).Elem()
	switch t.Kind() {
	case reflect.Bool:
		b, ok := obj.(*object.Boolean)
		if !ok {
			return reflect.Value{}, mismatch(obj, t)
		}
		out.SetBool(b.Value)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		n, ok := integral(obj)
		if !ok {
			return reflect.Value{}, mismatch(obj, t)
		}
		if out.OverflowInt(n) {
			return reflect.Value{}, fmt.Errorf("%s overflows %s", obj.Inspect(), t)
		}
		out.SetInt(n)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		n, ok := integral(obj)
		if !ok {
			return reflect.Value{}, mismatch(obj, t)
		}
		if n < 0 || out.OverflowUint(uint64(n)) {
			return reflect.Value{}, fmt.Errorf("%s overflows %s", obj.Inspect(), t)
		}
		out.SetUint(uint64(n))
	case reflect.Float32, reflect.Float64:
		if !object.IsNumeric(obj) {
			return reflect.Value{}, mismatch(obj, t)
		}
		f, _ := object.ToFloat64(obj)
		out.SetFloat(f)
	case reflect.String:
		switch obj.(type) {
		case *object.String, *object.GString, *object.Char:
			out.SetString(object.Render(obj))
		default:
			return reflect.Value{}, mismatch(obj, t)
		}
	case reflect.Slice:
		arr, ok := obj.(*object.Array)
		if !ok {
			return reflect.Value{}, mismatch(obj, t)
		}
		slice := reflect.MakeSlice(t, len(arr.Elements), len(arr.Elements))
		for i, el := range arr.Elements {
			ev, err := m.fromValue(el, t.Elem())
			if err != nil {
				return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
			}
			slice.Index(i).Set(ev)
		}
		return slice, nil
	case reflect.Interface:
		val, err := m.natural(obj)
		if err != nil {
			return reflect.Value{}, err
		}
		rv := reflect.ValueOf(val)
		if !rv.Type().AssignableTo(t) {
			return reflect.Value{}, mismatch(obj, t)
		}
		out.Set(rv)
	default:
		return reflect.Value{}, mismatch(obj, t)
	}
	return out, nil
}

// integral accepts whole numbers only; fractional values are rejected
// rather than truncated.
func integral(obj object.Object) (int64, bool) {
	switch o := obj.(type) {
	case *object.Byte, *object.Short, *object.Int, *object.Long, *object.Char:
		return object.ToInt64(o)
	case *object.BigInt:
		if !o.Value.IsInt64() {
			return 0, false
		}
		return o.Value.Int64(), true
	}
	return 0, false
}

func hostValue(h *object.HostObject, t reflect.Type) (reflect.Value, error) {
	if h.Value == nil {
		return reflect.Zero(t), nil
	}
	rv := reflect.ValueOf(h.Value)
	if rv.Type().AssignableTo(t) {
		return rv, nil
	}
	if rv.Type().ConvertibleTo(t) {
		return rv.Convert(t), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot convert host value %T to %s", h.Value, t)
}

func mismatch(obj object.Object, t reflect.Type) error {
	return fmt.Errorf("cannot convert %s (%s) to %s", obj.Inspect(), object.ClassOf(obj).Name, t)
}
