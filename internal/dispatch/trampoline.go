package dispatch

import (
	"fmt"

	"github.com/funvibe/mop/internal/object"
)

// Trampoline invokes the callable of a selected candidate with coerced
// arguments. Hosts replace it to add tracing or to run callables on a
// different executor.
type Trampoline interface {
	Invoke(c *Candidate, self Receiver, args []object.Object) (object.Object, error)
}

// TrampolineFunc adapts a function to the Trampoline interface.
type TrampolineFunc func(c *Candidate, self Receiver, args []object.Object) (object.Object, error)

func (f TrampolineFunc) Invoke(c *Candidate, self Receiver, args []object.Object) (object.Object, error) {
	return f(c, self, args)
}

// DefaultTrampoline calls the candidate directly. Errors and panics raised
// by the callable come back as *InvocationError; a nil result becomes NULL.
var DefaultTrampoline Trampoline = TrampolineFunc(invokeDirect)

func invokeDirect(c *Candidate, self Receiver, args []object.Object) (res object.Object, err error) {
	defer func() {
		if r := recover(); r != nil {
			cause, ok := r.(error)
			if !ok {
				cause = fmt.Errorf("panic: %v", r)
			}
			res, err = nil, &InvocationError{Candidate: c, Err: cause}
		}
	}()

	res, err = c.call(self, args)
	if err != nil {
		return nil, &InvocationError{Candidate: c, Err: err}
	}
	if res == nil {
		res = object.NULL
	}
	return res, nil
}
