package dispatch

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/funvibe/mop/internal/coerce"
	"github.com/funvibe/mop/internal/object"
	"github.com/funvibe/mop/internal/typesystem"
)

// invalidator is implemented by caches that must drop entries when a
// candidate set changes.
type invalidator interface {
	invalidateClass(c *typesystem.Class) int
	invalidateTable(t *MethodTable) int
	invalidateAll() int
}

// Registry is the dispatch context: interned descriptors plus the method
// tables of every class. Construct one per process (or per test) and hand it
// to the Resolvers that use it.
type Registry struct {
	Descriptors *coerce.Table

	mu          sync.RWMutex
	tables      map[*typesystem.Class]*MethodTable
	seq         uint64
	generation  atomic.Uint64
	subscribers []invalidator

	logger *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	s := applyOptions(opts)
	return &Registry{
		Descriptors: coerce.NewTable(),
		tables:      make(map[*typesystem.Class]*MethodTable),
		logger:      s.logger,
	}
}

// MethodSpec describes a natively declared method.
type MethodSpec struct {
	Name       string
	Params     []*typesystem.Class
	Static     bool
	Variadic   bool
	Visibility Visibility
	Fn         NativeFunc
}

// Define registers a native method on target.
func (r *Registry) Define(target *typesystem.Class, spec MethodSpec) (*Candidate, error) {
	if spec.Fn == nil {
		return nil, fmt.Errorf("define %s.%s: nil function", target.Name, spec.Name)
	}
	if err := checkVariadic(spec.Variadic, spec.Params); err != nil {
		return nil, fmt.Errorf("define %s.%s: %w", target.Name, spec.Name, err)
	}
	c := &Candidate{
		Name:       spec.Name,
		Declaring:  target,
		Target:     target,
		Params:     r.Descriptors.ForAll(spec.Params...),
		Origin:     OriginNative,
		Variadic:   spec.Variadic,
		visibility: spec.Visibility,
		static:     spec.Static,
		native:     spec.Fn,
	}
	r.publish(target, nil, c)
	return c, nil
}

// Register is Define for a public instance method. It panics on a nil fn.
func (r *Registry) Register(target *typesystem.Class, name string, fn NativeFunc, params ...*typesystem.Class) *Candidate {
	c, err := r.Define(target, MethodSpec{Name: name, Params: params, Fn: fn})
	if err != nil {
		panic(err)
	}
	return c
}

// RegisterStatic is Define for a public static method. It panics on a nil fn.
func (r *Registry) RegisterStatic(target *typesystem.Class, name string, fn NativeFunc, params ...*typesystem.Class) *Candidate {
	c, err := r.Define(target, MethodSpec{Name: name, Params: params, Static: true, Fn: fn})
	if err != nil {
		panic(err)
	}
	return c
}

// Extend injects helper as method name of target. The helper's first
// formal parameter is the receiver slot and must accept target. Every cached
// resolution on target and its subclasses is invalidated before the new
// candidate becomes visible.
func (r *Registry) Extend(target *typesystem.Class, name string, helper Helper, static bool) (*Candidate, error) {
	if helper.Fn == nil {
		return nil, fmt.Errorf("extend %s.%s: nil helper", target.Name, name)
	}
	if len(helper.Params) == 0 {
		return nil, fmt.Errorf("extend %s.%s: helper has no receiver parameter", target.Name, name)
	}
	if !r.Descriptors.For(helper.Params[0]).IsAssignableFrom(target) {
		return nil, fmt.Errorf("extend %s.%s: receiver parameter %s does not accept %s",
			target.Name, name, helper.Params[0].Name, target.Name)
	}
	params := helper.Params[1:]
	if err := checkVariadic(helper.Variadic, params); err != nil {
		return nil, fmt.Errorf("extend %s.%s: %w", target.Name, name, err)
	}
	origin := OriginInstanceExtension
	if static {
		origin = OriginStaticExtension
	}
	declaring := helper.Declaring
	if declaring == nil {
		declaring = target
	}
	c := &Candidate{
		Name:       name,
		Declaring:  declaring,
		Target:     target,
		Params:     r.Descriptors.ForAll(params...),
		Origin:     origin,
		Variadic:   helper.Variadic,
		visibility: helper.Visibility,
		static:     static,
		extension:  helper.Fn,
	}
	r.publish(target, nil, c)
	return c, nil
}

// Override attaches a method to a single instance. It shadows class methods
// with the same parameters for that instance only.
func (r *Registry) Override(inst *object.Instance, spec MethodSpec) (*Candidate, error) {
	if spec.Fn == nil {
		return nil, fmt.Errorf("override %s.%s: nil function", inst.Class.Name, spec.Name)
	}
	if err := checkVariadic(spec.Variadic, spec.Params); err != nil {
		return nil, fmt.Errorf("override %s.%s: %w", inst.Class.Name, spec.Name, err)
	}
	c := &Candidate{
		Name:       spec.Name,
		Declaring:  inst.Class,
		Target:     inst.Class,
		Params:     r.Descriptors.ForAll(spec.Params...),
		Origin:     OriginNative,
		Variadic:   spec.Variadic,
		visibility: spec.Visibility,
		static:     spec.Static,
		native:     spec.Fn,
	}

	r.publish(inst.Class, inst, c)
	return c, nil
}

// Remove unregisters a candidate. It reports whether the candidate was found.
func (r *Registry) Remove(c *Candidate) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	table := c.table
	if table == nil || !containsCandidate(table, c) {
		return false
	}
	r.invalidateLocked(c.Target, table)
	table.remove(c)
	c.removed.Store(true)
	r.logger.Debug("dispatch: candidate removed", slog.String("candidate", c.String()))
	return true
}

// Invalidate drops every cached resolution for class c and its subclasses.
func (r *Registry) Invalidate(c *typesystem.Class) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invalidateLocked(c, nil)
}

// Generation increases on every candidate-set mutation.
func (r *Registry) Generation() uint64 { return r.generation.Load() }

// Methods returns the candidates registered directly on class, in
// registration order.
func (r *Registry) Methods(class *typesystem.Class) []*Candidate {
	r.mu.RLock()
	defer r.mu.RUnlock()
	table := r.tables[class]
	if table == nil {
		return nil
	}
	return table.all()
}

// Classes returns every class that has a method table.
func (r *Registry) Classes() []*typesystem.Class {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*typesystem.Class, 0, len(r.tables))
	for c := range r.tables {
		out = append(out, c)
	}
	return out
}

// Reset removes every method table and interned descriptor and invalidates
// all subscribed caches. Intended for test teardown.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.generation.Add(1)
	for _, s := range r.subscribers {
		s.invalidateAll()
	}
	r.tables = make(map[*typesystem.Class]*MethodTable)
	r.Descriptors.Reset()
}

func (r *Registry) subscribe(inv invalidator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers = append(r.subscribers, inv)
}

// tableLocked returns the table c is published to: the instance's override
// table when inst is set, otherwise the class table of target. Missing
// tables are created. r.mu must be held.
func (r *Registry) tableLocked(target *typesystem.Class, inst *object.Instance) *MethodTable {
	if inst != nil {
		t, _ := inst.Overrides().(*MethodTable)
		if t == nil {
			t = newMethodTable(inst.Class, true)
			inst.SetOverrides(t)
		}
		return t
	}
	t := r.tables[target]
	if t == nil {
		t = newMethodTable(target, false)
		r.tables[target] = t
	}
	return t
}

// publish makes c visible. The table is looked up in the same critical
// section, so a concurrent Reset cannot leave c in a detached table.
// Caches are invalidated before the candidate is added, and the generation
// is bumped first so that resolutions computed from the old candidate set
// cannot be stored afterwards.
func (r *Registry) publish(target *typesystem.Class, inst *object.Instance, c *Candidate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	table := r.tableLocked(target, inst)
	r.invalidateLocked(target, table)
	r.seq++
	c.seq = r.seq
	c.table = table
	table.add(c)
	r.logger.Debug("dispatch: candidate registered",
		slog.String("candidate", c.String()),
		slog.Uint64("seq", c.seq),
		slog.Uint64("generation", r.generation.Load()))
}

func (r *Registry) invalidateLocked(target *typesystem.Class, table *MethodTable) {
	r.generation.Add(1)
	dropped := 0
	for _, s := range r.subscribers {
		if table != nil && table.instance {
			dropped += s.invalidateTable(table)
		} else {
			dropped += s.invalidateClass(target)
		}
	}
	if dropped > 0 {
		r.logger.Debug("dispatch: cache invalidated",
			slog.String("class", target.Name),
			slog.Int("entries", dropped))
	}
}

// snapshot collects the candidates visible for name on a receiver of class
// recv (with optional per-instance table), most specific level first. A
// candidate is hidden when a more specific level declares the same
// parameters. The returned generation identifies the candidate set.
func (r *Registry) snapshot(recv *typesystem.Class, owner *MethodTable, name string) ([]*Candidate, uint64) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	gen := r.generation.Load()

	var levels []*MethodTable
	if owner != nil {
		levels = append(levels, owner)
	}
	for _, c := range recv.Ancestors() {
		if t := r.tables[c]; t != nil {
			levels = append(levels, t)
		}
	}

	var out []*Candidate
	for _, t := range levels {
		inherited := len(out)
		for _, c := range t.methods[name] {
			if !overridden(out[:inherited], c) {
				out = append(out, c)
			}
		}
	}
	return out, gen
}

func overridden(specific []*Candidate, c *Candidate) bool {
	for _, s := range specific {
		if s.sameSignature(c) {
			return true
		}
	}
	return false
}

func containsCandidate(t *MethodTable, c *Candidate) bool {
	for _, existing := range t.methods[c.Name] {
		if existing == c {
			return true
		}
	}
	return false
}

var errVariadic = errors.New("variadic method must end with an array parameter")

func checkVariadic(variadic bool, params []*typesystem.Class) error {
	if !variadic {
		return nil
	}
	if len(params) == 0 || !params[len(params)-1].IsArray() {
		return errVariadic
	}
	return nil
}
