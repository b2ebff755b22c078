package coerce

import (
	"errors"
	"fmt"

	"github.com/funvibe/mop/internal/object"
	"github.com/funvibe/mop/internal/typesystem"
)

var (
	// ErrCoercion matches every *CoercionError via errors.Is.
	ErrCoercion = errors.New("coercion failed")
	// ErrRange is the cause of a conversion that would overflow to infinity.
	ErrRange = errors.New("value out of range")
	// ErrNull is the cause when null is passed where a primitive is declared.
	ErrNull = errors.New("null cannot be assigned to a primitive")
)

// CoercionError reports that a value could not be converted to a target class.
type CoercionError struct {
	Value  object.Object
	Target *typesystem.Class
	Index  int // element index for array coercion, -1 otherwise
	Err    error
}

func newCoercionError(v object.Object, target *typesystem.Class, cause error) *CoercionError {
	return &CoercionError{Value: v, Target: target, Index: -1, Err: cause}
}

func (e *CoercionError) Error() string {
	from := object.ClassOf(e.Value).Name
	msg := fmt.Sprintf("cannot coerce %s to %s", from, e.Target.Name)
	if e.Index >= 0 {
		msg = fmt.Sprintf("%s: element %d", msg, e.Index)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *CoercionError) Unwrap() error { return e.Err }

func (e *CoercionError) Is(target error) bool { return target == ErrCoercion }
