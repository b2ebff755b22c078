// Package mop embeds the dispatch runtime in Go programs.
//
// A Runtime owns a class universe, a method registry with the builtin
// methods installed, and a resolver. Go functions become methods with Bind,
// Static and Extend; Go values cross the boundary through the Marshaller.
package mop

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/funvibe/mop/internal/builtins"
	"github.com/funvibe/mop/internal/dispatch"
	"github.com/funvibe/mop/internal/ext"
	"github.com/funvibe/mop/internal/object"
	"github.com/funvibe/mop/internal/typesystem"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// Runtime wraps a registry and resolver and provides a high-level embedding API.
type Runtime struct {
	universe   *typesystem.Universe
	registry   *dispatch.Registry
	resolver   *dispatch.Resolver
	marshaller *Marshaller
	logger     *slog.Logger
}

// Option configures a Runtime.
type Option func(*options)

type options struct {
	logger   *slog.Logger
	dispatch []dispatch.Option
}

// WithLogger sets the logger used by the runtime and its dispatcher.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithDispatchOptions passes options through to the registry and resolver.
func WithDispatchOptions(opts ...dispatch.Option) Option {
	return func(o *options) { o.dispatch = append(o.dispatch, opts...) }
}

// New creates a Runtime with the builtin methods installed.
func New(opts ...Option) *Runtime {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	dopts := append([]dispatch.Option{dispatch.WithLogger(o.logger)}, o.dispatch...)

	reg := dispatch.NewRegistry(dopts...)
	builtins.Install(reg)
	return &Runtime{
		universe:   typesystem.NewUniverse(),
		registry:   reg,
		resolver:   dispatch.NewResolver(reg, dopts...),
		marshaller: NewMarshaller(),
		logger:     o.logger,
	}
}

func (rt *Runtime) Universe() *typesystem.Universe { return rt.universe }
func (rt *Runtime) Registry() *dispatch.Registry   { return rt.registry }
func (rt *Runtime) Resolver() *dispatch.Resolver   { return rt.resolver }
func (rt *Runtime) Marshaller() *Marshaller        { return rt.marshaller }

// DefineClass declares a user class extending super ("" means Object).
func (rt *Runtime) DefineClass(name, super string, interfaces ...string) (*typesystem.Class, error) {
	var sup *typesystem.Class
	if super != "" {
		c, err := rt.universe.Lookup(super)
		if err != nil {
			return nil, err
		}
		sup = c
	}
	ifaces := make([]*typesystem.Class, len(interfaces))
	for i, name := range interfaces {
		c, err := rt.universe.Lookup(name)
		if err != nil {
			return nil, err
		}
		ifaces[i] = c
	}
	cls := typesystem.NewClass(name, sup, ifaces...)
	if err := rt.universe.Define(cls); err != nil {
		return nil, err
	}
	return cls, nil
}

// DeclareHost declares a class for Go values of the same type as sample.
// Such values are passed as host objects of that class, and parameters of
// that Go type are declared with it.
func (rt *Runtime) DeclareHost(name string, sample interface{}) (*typesystem.Class, error) {
	if sample == nil {
		return nil, fmt.Errorf("declare %s: nil sample", name)
	}
	cls, err := rt.DefineClass(name, "")
	if err != nil {
		return nil, err
	}
	rt.marshaller.Declare(reflect.TypeOf(sample), cls)
	return cls, nil
}

// NewInstance creates an instance of a user class dispatched by this runtime.
func (rt *Runtime) NewInstance(class string) (*object.Instance, error) {
	cls, err := rt.universe.Lookup(class)
	if err != nil {
		return nil, err
	}
	return object.NewInstance(cls, rt.resolver), nil
}

// Bind registers fn as an instance method of class. The first parameter of
// fn receives the receiver.
func (rt *Runtime) Bind(class, name string, fn interface{}) (*dispatch.Candidate, error) {
	target, fv, err := rt.prepare(class, name, fn, 1)
	if err != nil {
		return nil, err
	}
	params, err := rt.paramClasses(fv.Type(), 1)
	if err != nil {
		return nil, fmt.Errorf("bind %s.%s: %w", class, name, err)
	}
	c, err := rt.registry.Define(target, dispatch.MethodSpec{
		Name:     name,
		Params:   params,
		Variadic: fv.Type().IsVariadic(),
		Fn: func(self object.Object, args []object.Object) (object.Object, error) {
			return rt.hostCall(fv, append([]object.Object{self}, args...))
		},
	})
	if err != nil {
		return nil, err
	}
	rt.logger.Debug("embed: bound method", "candidate", c.String())
	return c, nil
}

// Static registers fn as a static method of class.
func (rt *Runtime) Static(class, name string, fn interface{}) (*dispatch.Candidate, error) {
	target, fv, err := rt.prepare(class, name, fn, 0)
	if err != nil {
		return nil, err
	}
	params, err := rt.paramClasses(fv.Type(), 0)
	if err != nil {
		return nil, fmt.Errorf("static %s.%s: %w", class, name, err)
	}
	c, err := rt.registry.Define(target, dispatch.MethodSpec{
		Name:     name,
		Params:   params,
		Static:   true,
		Variadic: fv.Type().IsVariadic(),
		Fn: func(_ object.Object, args []object.Object) (object.Object, error) {
			return rt.hostCall(fv, args)
		},
	})
	if err != nil {
		return nil, err
	}
	rt.logger.Debug("embed: bound static method", "candidate", c.String())
	return c, nil
}

// Extend injects fn into class as an extension method. The first parameter
// of fn is the receiver slot; a static extension leaves it at its zero
// value.
func (rt *Runtime) Extend(class, name string, fn interface{}, static bool) (*dispatch.Candidate, error) {
	target, fv, err := rt.prepare(class, name, fn, 1)
	if err != nil {
		return nil, err
	}
	params, err := rt.paramClasses(fv.Type(), 0)
	if err != nil {
		return nil, fmt.Errorf("extend %s.%s: %w", class, name, err)
	}
	c, err := rt.registry.Extend(target, name, dispatch.Helper{
		Params:   params,
		Variadic: fv.Type().IsVariadic(),
		Fn: func(self dispatch.Receiver, args []object.Object) (object.Object, error) {
			recv, ok := self.Get()
			if !ok {
				recv = object.NULL
			}
			return rt.hostCall(fv, append([]object.Object{recv}, args...))
		},
	}, static)
	if err != nil {
		return nil, err
	}
	rt.logger.Debug("embed: extended class", "candidate", c.String())
	return c, nil
}

// Helper adapts fn into a dispatch.Helper for ext.RegisterHelpers. The
// first parameter of fn is the receiver slot.
func (rt *Runtime) Helper(fn interface{}) (dispatch.Helper, error) {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func || fv.Type().NumIn() == 0 {
		return dispatch.Helper{}, fmt.Errorf("helper must be a function with a receiver parameter, got %T", fn)
	}
	params, err := rt.paramClasses(fv.Type(), 0)
	if err != nil {
		return dispatch.Helper{}, err
	}
	return dispatch.Helper{
		Params:   params,
		Variadic: fv.Type().IsVariadic(),
		Fn: func(self dispatch.Receiver, args []object.Object) (object.Object, error) {
			recv, ok := self.Get()
			if !ok {
				recv = object.NULL
			}
			return rt.hostCall(fv, append([]object.Object{recv}, args...))
		},
	}, nil
}

func (rt *Runtime) prepare(class, name string, fn interface{}, minIn int) (*typesystem.Class, reflect.Value, error) {
	target, err := rt.universe.Lookup(class)
	if err != nil {
		return nil, reflect.Value{}, err
	}
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func {
		return nil, reflect.Value{}, fmt.Errorf("%s.%s: expected a function, got %T", class, name, fn)
	}
	if fv.Type().NumIn() < minIn {
		return nil, reflect.Value{}, fmt.Errorf("%s.%s: function needs a receiver parameter", class, name)
	}
	if fv.Type().IsVariadic() && fv.Type().NumIn() == minIn {
		return nil, reflect.Value{}, fmt.Errorf("%s.%s: the receiver parameter cannot be variadic", class, name)
	}
	return target, fv, nil
}

func (rt *Runtime) paramClasses(t reflect.Type, from int) ([]*typesystem.Class, error) {
	out := make([]*typesystem.Class, 0, t.NumIn()-from)
	for i := from; i < t.NumIn(); i++ {
		c, ok := rt.marshaller.ClassFor(t.In(i))
		if !ok {
			return nil, fmt.Errorf("parameter %d: Go type %s has no class", i, t.In(i))
		}
		out = append(out, c)
	}
	return out, nil
}

// hostCall converts args to the parameter types of fn, calls it and
// converts the result back. A trailing error result is returned as the
// call's error; several other results come back as an Object array.
func (rt *Runtime) hostCall(fn reflect.Value, args []object.Object) (object.Object, error) {
	fnType := fn.Type()
	if len(args) != fnType.NumIn() {
		return nil, fmt.Errorf("expected %d arguments, got %d", fnType.NumIn(), len(args))
	}

	goArgs := make([]reflect.Value, len(args))
	for i, arg := range args {
		v, err := rt.marshaller.fromValue(arg, fnType.In(i))
		if err != nil {
			return nil, fmt.Errorf("argument %d conversion failed: %w", i, err)
		}
		goArgs[i] = v
	}

	var results []reflect.Value
	if fnType.IsVariadic() {
		results = fn.CallSlice(goArgs)
	} else {
		results = fn.Call(goArgs)
	}

	if n := len(results); n > 0 && fnType.Out(n-1) == errorType {
		if err, _ := results[n-1].Interface().(error); err != nil {
			return nil, err
		}
		results = results[:n-1]
	}

	switch len(results) {
	case 0:
		return object.NULL, nil
	case 1:
		return rt.marshaller.toValue(results[0])
	}
	elements := make([]object.Object, len(results))
	for i, res := range results {
		val, err := rt.marshaller.toValue(res)
		if err != nil {
			return nil, err
		}
		elements[i] = val
	}
	return object.NewArray(typesystem.Object, elements...), nil
}

// Call invokes method name on receiver with Go arguments and converts the
// result back to Go.
func (rt *Runtime) Call(receiver interface{}, name string, args ...interface{}) (interface{}, error) {
	recv, err := rt.marshaller.ToValue(receiver)
	if err != nil {
		return nil, err
	}
	objs, err := rt.toValues(args)
	if err != nil {
		return nil, err
	}
	result, err := rt.resolver.ResolveAndInvoke(recv, name, objs)
	if err != nil {
		return nil, err
	}
	return rt.marshaller.FromValue(result, nil)
}

// CallStatic invokes a static method of class.
func (rt *Runtime) CallStatic(class, name string, args ...interface{}) (interface{}, error) {
	cls, err := rt.universe.Lookup(class)
	if err != nil {
		return nil, err
	}
	objs, err := rt.toValues(args)
	if err != nil {
		return nil, err
	}
	result, err := rt.resolver.InvokeStatic(cls, name, objs)
	if err != nil {
		return nil, err
	}
	return rt.marshaller.FromValue(result, nil)
}

// Get reads a property of receiver.
func (rt *Runtime) Get(receiver interface{}, name string) (interface{}, error) {
	recv, err := rt.marshaller.ToValue(receiver)
	if err != nil {
		return nil, err
	}
	result, err := rt.resolver.GetProperty(recv, name)
	if err != nil {
		return nil, err
	}
	return rt.marshaller.FromValue(result, nil)
}

// Set writes a property of receiver.
func (rt *Runtime) Set(receiver interface{}, name string, value interface{}) error {
	recv, err := rt.marshaller.ToValue(receiver)
	if err != nil {
		return err
	}
	val, err := rt.marshaller.ToValue(value)
	if err != nil {
		return err
	}
	return rt.resolver.SetProperty(recv, name, val)
}

// As pins value to class for dispatch, as an explicit-type wrapper.
func (rt *Runtime) As(value interface{}, class string) (dispatch.Wrapper, error) {
	cls, err := rt.universe.Lookup(class)
	if err != nil {
		return nil, err
	}
	v, err := rt.marshaller.ToValue(value)
	if err != nil {
		return nil, err
	}
	return dispatch.Wrap(v, cls, rt.resolver), nil
}

func (rt *Runtime) toValues(args []interface{}) ([]object.Object, error) {
	out := make([]object.Object, len(args))
	for i, arg := range args {
		obj, err := rt.marshaller.ToValue(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		out[i] = obj
	}
	return out, nil
}

// LoadConfig reads a mop.yaml file and applies it to the runtime. Helper
// modules it names must already be registered with ext.RegisterHelpers.
func (rt *Runtime) LoadConfig(path string) error {
	cfg, err := ext.LoadConfig(path)
	if err != nil {
		return err
	}
	return rt.ApplyConfig(cfg)
}

// ApplyConfig applies a parsed configuration to the runtime.
func (rt *Runtime) ApplyConfig(cfg *ext.Config) error {
	cands, err := cfg.Apply(rt.registry, rt.universe)
	if err != nil {
		return err
	}
	rt.logger.Info("embed: configuration applied", "path", cfg.Path(), "extensions", len(cands))
	return nil
}
