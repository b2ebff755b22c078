package builtins

import (
	"strings"
	"unicode"

	"github.com/funvibe/mop/internal/dispatch"
	"github.com/funvibe/mop/internal/object"
	"github.com/funvibe/mop/internal/typesystem"
)

// TextModule is the name the text helpers are registered under.
const TextModule = "text"

// TextHelpers returns string helpers meant to be injected into String or
// CharSequence through a mop.yaml extension.
func TextHelpers() map[string]dispatch.Helper {
	seq := typesystem.CharSequence
	return map[string]dispatch.Helper{
		"reverse": {
			Params: []*typesystem.Class{seq},
			Fn: textFn(func(s string, _ []object.Object) object.Object {
				runes := []rune(s)
				for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
					runes[i], runes[j] = runes[j], runes[i]
				}
				return &object.String{Value: string(runes)}
			}),
		},
		"capitalize": {
			Params: []*typesystem.Class{seq},
			Fn: textFn(func(s string, _ []object.Object) object.Object {
				for i, r := range s {
					return &object.String{Value: s[:i] + string(unicode.ToUpper(r)) + s[i+len(string(r)):]}
				}
				return &object.String{Value: s}
			}),
		},
		"words": {
			Params: []*typesystem.Class{seq},
			Fn: textFn(func(s string, _ []object.Object) object.Object {
				fields := strings.Fields(s)
				out := make([]object.Object, len(fields))
				for i, f := range fields {
					out[i] = &object.String{Value: f}
				}
				return object.NewArray(typesystem.String, out...)
			}),
		},
		"surround": {
			Params:   []*typesystem.Class{seq, typesystem.ArrayOf(typesystem.String)},
			Variadic: true,
			Fn: textFn(func(s string, args []object.Object) object.Object {
				left, right := "(", ")"
				marks := args[0].(*object.Array).Elements
				if len(marks) > 0 {
					left, right = object.Render(marks[0]), object.Render(marks[0])
				}
				if len(marks) > 1 {
					right = object.Render(marks[1])
				}
				return &object.String{Value: left + s + right}
			}),
		},
	}
}

// textFn adapts a function of the rendered receiver. Static use gets "".
func textFn(fn func(s string, args []object.Object) object.Object) dispatch.ExtensionFunc {
	return func(self dispatch.Receiver, args []object.Object) (object.Object, error) {
		var s string
		if v, ok := self.Get(); ok {
			s = object.Render(v)
		}
		return fn(s, args), nil
	}
}
