package object

// Dispatcher resolves and invokes methods and properties on behalf of a value.
type Dispatcher interface {
	InvokeMethod(receiver Object, name string, args []Object) (Object, error)
	GetProperty(receiver Object, name string) (Object, error)
	SetProperty(receiver Object, name string, value Object) error
}

// MetaObject is a value that carries its own dispatch table.
type MetaObject interface {
	Object
	Dispatcher() Dispatcher
}

// MethodOverrides is a per-instance method table attached to an Instance.
// The dispatcher owns the concrete type.
type MethodOverrides interface {
	Len() int
}
