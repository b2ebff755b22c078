package object

import (
	"fmt"
	"strings"

	"github.com/funvibe/mop/internal/typesystem"
)

// String
type String struct {
	Value string
}

func (s *String) Type() ObjectType               { return STRING_OBJ }
func (s *String) Inspect() string                { return fmt.Sprintf("%q", s.Value) }
func (s *String) RuntimeType() *typesystem.Class { return typesystem.String }
func (s *String) Hash() uint32                   { return hashString(s.Value) }

// GString is an interpolated string: literal fragments interleaved with
// values. Strings has one more element than Values.
type GString struct {
	Strings []string
	Values  []Object
}

// NewGString builds an interpolated string from alternating fragments and values.
func NewGString(strs []string, values ...Object) *GString {
	return &GString{Strings: strs, Values: values}
}

// String renders the interpolation.
func (g *GString) String() string {
	var sb strings.Builder
	for i, s := range g.Strings {
		sb.WriteString(s)
		if i < len(g.Values) {
			sb.WriteString(Render(g.Values[i]))
		}
	}
	return sb.String()
}

func (g *GString) Type() ObjectType               { return GSTRING_OBJ }
func (g *GString) Inspect() string                { return fmt.Sprintf("%q", g.String()) }
func (g *GString) RuntimeType() *typesystem.Class { return typesystem.GString }
func (g *GString) Hash() uint32                   { return hashString(g.String()) }

// Render returns the textual form of v as it appears inside a string:
// strings and chars without quotes, everything else via Inspect.
func Render(v Object) string {
	switch o := v.(type) {
	case nil:
		return "null"
	case *String:
		return o.Value
	case *GString:
		return o.String()
	case *Char:
		return string(o.Value)
	case *Long:
		return fmt.Sprintf("%d", o.Value)
	case *Float:
		return fmt.Sprintf("%g", o.Value)
	case *BigInt:
		return o.Value.String()
	default:
		return v.Inspect()
	}
}
