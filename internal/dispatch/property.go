package dispatch

import (
	"unicode"

	"github.com/funvibe/mop/internal/config"
	"github.com/funvibe/mop/internal/object"
)

// GetProperty reads a field of an instance, or calls the getX accessor.
func (r *Resolver) GetProperty(receiver object.Object, name string) (object.Object, error) {
	if w, ok := receiver.(Wrapper); ok {
		if d := w.Dispatcher(); d != nil && d != object.Dispatcher(r) {
			return d.GetProperty(w.Unwrap(), name)
		}
		receiver = w.Unwrap()
	}
	if inst, ok := receiver.(*object.Instance); ok {
		if v, ok := inst.Field(name); ok {
			return v, nil
		}
	}
	v, err := r.ResolveAndInvoke(receiver, accessor(config.GetterPrefix, name), nil)
	if _, missing := err.(*NoApplicableMethodError); missing {
		return nil, &MissingPropertyError{Receiver: object.ClassOf(receiver), Name: name}
	}
	return v, err
}

// SetProperty writes an existing field of an instance, or calls the setX
// accessor. Fields are not created implicitly.
func (r *Resolver) SetProperty(receiver object.Object, name string, value object.Object) error {
	if w, ok := receiver.(Wrapper); ok {
		if d := w.Dispatcher(); d != nil && d != object.Dispatcher(r) {
			return d.SetProperty(w.Unwrap(), name, value)
		}
		receiver = w.Unwrap()
	}
	if inst, ok := receiver.(*object.Instance); ok {
		if _, ok := inst.Field(name); ok {
			inst.SetField(name, unwrapArg(value))
			return nil
		}
	}
	_, err := r.ResolveAndInvoke(receiver, accessor(config.SetterPrefix, name), []object.Object{value})
	if _, missing := err.(*NoApplicableMethodError); missing {
		return &MissingPropertyError{Receiver: object.ClassOf(receiver), Name: name}
	}
	return err
}

// accessor builds getName/setName from name.
func accessor(prefix, name string) string {
	if name == "" {
		return prefix
	}
	runes := []rune(name)
	return prefix + string(unicode.ToUpper(runes[0])) + string(runes[1:])
}
