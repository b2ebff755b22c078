// Package builtins installs the default method tables of the builtin
// classes: numeric arithmetic with lattice promotion, string methods and
// the Object protocol methods.
package builtins

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/funvibe/mop/internal/config"
	"github.com/funvibe/mop/internal/dispatch"
	"github.com/funvibe/mop/internal/object"
	"github.com/funvibe/mop/internal/typesystem"
)

// Install registers the builtin methods on reg. Installing twice registers
// duplicate candidates; the first registration keeps winning ties.
func Install(reg *dispatch.Registry) {
	installObject(reg)
	installNumber(reg)
	installString(reg)
}

func installObject(reg *dispatch.Registry) {
	reg.Register(typesystem.Object, config.ToStringMethodName, func(self object.Object, _ []object.Object) (object.Object, error) {
		return &object.String{Value: object.Render(self)}, nil
	})
	reg.Register(typesystem.Object, config.EqualsMethodName, func(self object.Object, args []object.Object) (object.Object, error) {
		return boolean(object.Equal(self, args[0])), nil
	}, typesystem.Object)
	reg.Register(typesystem.Object, "hashCode", func(self object.Object, _ []object.Object) (object.Object, error) {
		return &object.Int{Value: int32(self.Hash())}, nil
	})
	reg.Register(typesystem.Object, "getClass", func(self object.Object, _ []object.Object) (object.Object, error) {
		return &object.String{Value: object.ClassOf(self).Name}, nil
	})
}

func installNumber(reg *dispatch.Registry) {
	binary := []struct {
		name string
		fn   func(a, b object.Object) (object.Object, error)
	}{
		{"plus", func(a, b object.Object) (object.Object, error) { return arith(opPlus, a, b) }},
		{"minus", func(a, b object.Object) (object.Object, error) { return arith(opMinus, a, b) }},
		{"multiply", func(a, b object.Object) (object.Object, error) { return arith(opMultiply, a, b) }},
		{"div", divide},
		{"mod", func(a, b object.Object) (object.Object, error) { return arith(opMod, a, b) }},
	}
	for _, op := range binary {
		reg.Register(typesystem.Number, op.name, func(self object.Object, args []object.Object) (object.Object, error) {
			return op.fn(self, args[0])
		}, typesystem.Number)
	}

	reg.Register(typesystem.Number, config.CompareToMethodName, func(self object.Object, args []object.Object) (object.Object, error) {
		c, err := compare(self, args[0])
		if err != nil {
			return nil, err
		}
		return &object.Int{Value: int32(c)}, nil
	}, typesystem.Number)

	// Numbers of different classes are equal when their values are.
	reg.Register(typesystem.Number, config.EqualsMethodName, func(self object.Object, args []object.Object) (object.Object, error) {
		c, err := compare(self, args[0])
		if err != nil {
			return nil, err
		}
		return boolean(c == 0), nil
	}, typesystem.Number)

	reg.Register(typesystem.Number, "negative", func(self object.Object, _ []object.Object) (object.Object, error) {
		return negate(self)
	})
	reg.Register(typesystem.Number, "positive", func(self object.Object, _ []object.Object) (object.Object, error) {
		return self, nil
	})
	reg.Register(typesystem.Number, "intValue", func(self object.Object, _ []object.Object) (object.Object, error) {
		i, _ := object.ToInt64(self)
		return &object.Int{Value: int32(i)}, nil
	})
	reg.Register(typesystem.Number, "doubleValue", func(self object.Object, _ []object.Object) (object.Object, error) {
		f, _ := object.ToFloat64(self)
		return &object.Double{Value: f}, nil
	})
}

func installString(reg *dispatch.Registry) {
	reg.Register(typesystem.String, "plus", func(self object.Object, args []object.Object) (object.Object, error) {
		return &object.String{Value: self.(*object.String).Value + object.Render(args[0])}, nil
	}, typesystem.Object)
	reg.Register(typesystem.String, "size", func(self object.Object, _ []object.Object) (object.Object, error) {
		return &object.Int{Value: int32(utf8.RuneCountInString(self.(*object.String).Value))}, nil
	})
	reg.Register(typesystem.String, "length", func(self object.Object, _ []object.Object) (object.Object, error) {
		return &object.Int{Value: int32(utf8.RuneCountInString(self.(*object.String).Value))}, nil
	})
	reg.Register(typesystem.String, "toUpperCase", func(self object.Object, _ []object.Object) (object.Object, error) {
		return &object.String{Value: strings.ToUpper(self.(*object.String).Value)}, nil
	})
	reg.Register(typesystem.String, "toLowerCase", func(self object.Object, _ []object.Object) (object.Object, error) {
		return &object.String{Value: strings.ToLower(self.(*object.String).Value)}, nil
	})
	reg.Register(typesystem.String, "multiply", func(self object.Object, args []object.Object) (object.Object, error) {
		n := args[0].(*object.Int).Value
		if n < 0 {
			return nil, fmt.Errorf("negative repeat count %d", n)
		}
		return &object.String{Value: strings.Repeat(self.(*object.String).Value, int(n))}, nil
	}, typesystem.Int)
	reg.Register(typesystem.String, config.CompareToMethodName, func(self object.Object, args []object.Object) (object.Object, error) {
		return &object.Int{Value: int32(strings.Compare(self.(*object.String).Value, args[0].(*object.String).Value))}, nil
	}, typesystem.String)
	reg.Register(typesystem.String, "contains", func(self object.Object, args []object.Object) (object.Object, error) {
		return boolean(strings.Contains(self.(*object.String).Value, object.Render(args[0]))), nil
	}, typesystem.CharSequence)

	reg.Register(typesystem.GString, config.ToStringMethodName, func(self object.Object, _ []object.Object) (object.Object, error) {
		return &object.String{Value: self.(*object.GString).String()}, nil
	})
	reg.Register(typesystem.GString, "plus", func(self object.Object, args []object.Object) (object.Object, error) {
		return &object.String{Value: self.(*object.GString).String() + object.Render(args[0])}, nil
	}, typesystem.Object)
}

func boolean(b bool) *object.Boolean { return &object.Boolean{Value: b} }
