package object

import (
	"hash/fnv"

	"github.com/funvibe/mop/internal/typesystem"
)

type ObjectType string

const (
	NIL_OBJ         = "NIL"
	BOOLEAN_OBJ     = "BOOLEAN"
	CHAR_OBJ        = "CHAR"
	BYTE_OBJ        = "BYTE"
	SHORT_OBJ       = "SHORT"
	INT_OBJ         = "INT"
	LONG_OBJ        = "LONG"
	FLOAT_OBJ       = "FLOAT"
	DOUBLE_OBJ      = "DOUBLE"
	BIG_INT_OBJ     = "BIG_INT"
	DECIMAL_OBJ     = "DECIMAL"
	STRING_OBJ      = "STRING"
	GSTRING_OBJ     = "GSTRING" // Interpolated string
	ARRAY_OBJ       = "ARRAY"
	INSTANCE_OBJ    = "INSTANCE"
	HOST_OBJ        = "HOST"
	TYPED_VALUE_OBJ = "TYPED_VALUE" // Value with a pinned dispatch type
)

// Object is a runtime value as seen by the dispatcher.
type Object interface {
	Type() ObjectType
	Inspect() string
	RuntimeType() *typesystem.Class // Class used for dispatch
	Hash() uint32
}

// Helper for hashing strings
func hashString(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}

// ClassOf returns the dispatch class of v; nil and *Nil map to typesystem.Null.
func ClassOf(v Object) *typesystem.Class {
	if v == nil {
		return typesystem.Null
	}
	return v.RuntimeType()
}

// IsNull reports whether v represents an absent value.
func IsNull(v Object) bool {
	if v == nil {
		return true
	}
	_, ok := v.(*Nil)
	return ok
}
