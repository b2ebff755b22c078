package dispatch

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/funvibe/mop/internal/object"
	"github.com/funvibe/mop/internal/typesystem"
)

// Resolver selects, coerces and invokes methods for a Registry, memoizing
// resolutions per call site and argument classes. It is safe for concurrent
// use and implements object.Dispatcher.
type Resolver struct {
	reg          *Registry
	cache        *cache
	trampoline   Trampoline
	logger       *slog.Logger
	singleFlight bool
}

var _ object.Dispatcher = (*Resolver)(nil)

// NewResolver creates a resolver whose cache is invalidated by reg.
func NewResolver(reg *Registry, opts ...Option) *Resolver {
	s := applyOptions(opts)
	r := &Resolver{
		reg:          reg,
		cache:        newCache(reg.Generation),
		trampoline:   s.trampoline,
		logger:       s.logger,
		singleFlight: s.singleFlight,
	}
	reg.subscribe(r.cache)
	return r
}

func (r *Resolver) Registry() *Registry { return r.reg }

// Stats returns cache hit/miss counters.
func (r *Resolver) Stats() CacheStats { return r.cache.stats() }

// request is one resolution query.
type request struct {
	site   uuid.UUID
	recv   *typesystem.Class
	owner  *MethodTable
	name   string
	sig    []*typesystem.Class
	static bool
}

func (q request) key() cacheKey {
	return cacheKey{
		site:   q.site,
		recv:   q.recv,
		owner:  q.owner,
		name:   q.name,
		sig:    signature(q.sig),
		static: q.static,
	}
}

// ResolveAndInvoke resolves name against the receiver and the argument
// classes, coerces the arguments and invokes the selected candidate.
func (r *Resolver) ResolveAndInvoke(receiver object.Object, name string, args []object.Object) (object.Object, error) {
	return r.invokeAt(uuid.Nil, receiver, name, args)
}

// InvokeAt is ResolveAndInvoke with resolutions cached per call site.
func (r *Resolver) InvokeAt(site *CallSite, receiver object.Object, args []object.Object) (object.Object, error) {
	return r.invokeAt(site.ID, receiver, site.Name, args)
}

func (r *Resolver) invokeAt(site uuid.UUID, receiver object.Object, name string, args []object.Object) (object.Object, error) {
	if w, ok := receiver.(Wrapper); ok {
		if d := w.Dispatcher(); d != nil && d != object.Dispatcher(r) {
			return d.InvokeMethod(w.Unwrap(), name, args)
		}
		receiver = w.Unwrap()
	}
	res, coerced, err := r.resolveAndCoerce(site, receiver, name, args)
	if err != nil {
		return nil, err
	}
	return r.Invoke(res, receiver, coerced)
}

// ResolveAndCoerce resolves and coerces without invoking. The caller
// finishes the call with Invoke.
func (r *Resolver) ResolveAndCoerce(receiver object.Object, name string, args []object.Object) (*Resolution, []object.Object, error) {
	return r.resolveAndCoerce(uuid.Nil, unwrapArg(receiver), name, args)
}

func (r *Resolver) resolveAndCoerce(site uuid.UUID, receiver object.Object, name string, args []object.Object) (*Resolution, []object.Object, error) {
	q := request{
		site: site,
		recv: object.ClassOf(receiver),
		name: name,
		sig:  signatureOf(args),
	}
	if inst, ok := receiver.(*object.Instance); ok {
		q.owner, _ = inst.Overrides().(*MethodTable)
	}
	res, err := r.resolve(q)
	if err != nil {
		return nil, nil, err
	}
	coerced, err := res.Coerce(args)
	if err != nil {
		return nil, nil, err
	}
	return res, coerced, nil
}

// Invoke calls a resolved candidate with already coerced arguments.
func (r *Resolver) Invoke(res *Resolution, receiver object.Object, coerced []object.Object) (object.Object, error) {
	self := Some(receiver)
	if receiver == nil {
		self = NoReceiver()
	}
	return r.trampoline.Invoke(res.Candidate, self, coerced)
}

// InvokeStatic calls a static method of class. Only static candidates
// (including static extensions) are considered.
func (r *Resolver) InvokeStatic(class *typesystem.Class, name string, args []object.Object) (object.Object, error) {
	res, err := r.resolve(request{recv: class, name: name, sig: signatureOf(args), static: true})
	if err != nil {
		return nil, err
	}
	coerced, err := res.Coerce(args)
	if err != nil {
		return nil, err
	}
	return r.trampoline.Invoke(res.Candidate, NoReceiver(), coerced)
}

// Resolve returns the candidate a call with the given argument classes
// would select on a receiver of class recv. Nothing is invoked.
func (r *Resolver) Resolve(recv *typesystem.Class, name string, sig ...*typesystem.Class) (*Resolution, error) {
	return r.resolve(request{recv: recv, name: name, sig: sig})
}

func (r *Resolver) resolve(q request) (*Resolution, error) {
	k := q.key()
	if res, ok := r.cache.lookup(k); ok {
		return res, nil
	}
	if !r.singleFlight {
		return r.compute(q, k)
	}
	v, err, _ := r.cache.group.Do(k.flight(r.reg.Generation()), func() (any, error) {
		return r.compute(q, k)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Resolution), nil
}

func (r *Resolver) compute(q request, k cacheKey) (*Resolution, error) {
	cands, gen := r.reg.snapshot(q.recv, q.owner, q.name)
	res, err := selectCandidate(cands, q)
	if err != nil {
		r.logger.Debug("dispatch: no applicable method",
			slog.String("class", q.recv.Name),
			slog.String("method", q.name),
			slog.Int("candidates", len(cands)))
		return nil, err
	}
	stored := r.cache.store(k, res, gen)
	r.logger.Debug("dispatch: resolved",
		slog.String("class", q.recv.Name),
		slog.String("candidate", res.Candidate.String()),
		slog.Int("score", res.Score),
		slog.Bool("cached", stored))
	return res, nil
}

// selectCandidate picks the applicable candidate with the lowest score.
// Equal scores go to the candidate registered first.
func selectCandidate(cands []*Candidate, q request) (*Resolution, error) {
	var (
		best       *Candidate
		bestMatch  Match
		considered int
	)
	for _, c := range cands {
		if q.static && !c.Static() {
			continue
		}
		considered++
		m, ok := c.MatchScore(q.sig)
		if !ok {
			continue
		}
		if best == nil || m.Score < bestMatch.Score || (m.Score == bestMatch.Score && c.seq < best.seq) {
			best, bestMatch = c, m
		}
	}
	if best == nil {
		return nil, &NoApplicableMethodError{
			Receiver:   q.recv,
			Name:       q.name,
			Args:       q.sig,
			Static:     q.static,
			Considered: considered,
		}
	}
	return newResolution(best, bestMatch, len(q.sig)), nil
}

func signatureOf(args []object.Object) []*typesystem.Class {
	sig := make([]*typesystem.Class, len(args))
	for i, a := range args {
		sig[i] = argClass(a)
	}
	return sig
}

// InvokeMethod implements object.Dispatcher.
func (r *Resolver) InvokeMethod(receiver object.Object, name string, args []object.Object) (object.Object, error) {
	return r.ResolveAndInvoke(receiver, name, args)
}
