package dispatch

import (
	"errors"
	"fmt"
	"strings"

	"github.com/funvibe/mop/internal/typesystem"
)

var (
	// ErrNoApplicableMethod matches every *NoApplicableMethodError.
	ErrNoApplicableMethod = errors.New("no applicable method")
	// ErrMissingProperty matches every *MissingPropertyError.
	ErrMissingProperty = errors.New("missing property")
)

// NoApplicableMethodError reports that no registered candidate accepts the
// argument classes of a call.
type NoApplicableMethodError struct {
	Receiver   *typesystem.Class
	Name       string
	Args       []*typesystem.Class
	Static     bool
	Considered int // candidates registered under the name
}

func (e *NoApplicableMethodError) Error() string {
	names := make([]string, len(e.Args))
	for i, a := range e.Args {
		names[i] = a.Name
	}
	kind := "method"
	if e.Static {
		kind = "static method"
	}
	return fmt.Sprintf("no applicable %s %s.%s(%s) among %d candidates",
		kind, e.Receiver.Name, e.Name, strings.Join(names, ", "), e.Considered)
}

func (e *NoApplicableMethodError) Is(target error) bool { return target == ErrNoApplicableMethod }

// InvocationError carries a failure raised by the invoked callable, tagged
// with the candidate that was selected. The cause is returned unchanged by
// Unwrap.
type InvocationError struct {
	Candidate *Candidate
	Err       error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("invoking %s: %v", e.Candidate, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// MissingPropertyError reports that neither a field nor an accessor exists.
type MissingPropertyError struct {
	Receiver *typesystem.Class
	Name     string
}

func (e *MissingPropertyError) Error() string {
	return fmt.Sprintf("no such property %s for class %s", e.Name, e.Receiver.Name)
}

func (e *MissingPropertyError) Is(target error) bool { return target == ErrMissingProperty }

// InvariantError is the panic value raised when the cache is found to hold a
// resolution for a candidate that is no longer registered. It indicates a
// bug in the registry, not a recoverable condition.
type InvariantError struct {
	Msg string
}

func (e *InvariantError) Error() string { return "dispatch invariant violated: " + e.Msg }
