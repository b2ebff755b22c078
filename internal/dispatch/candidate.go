package dispatch

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/funvibe/mop/internal/coerce"
	"github.com/funvibe/mop/internal/object"
	"github.com/funvibe/mop/internal/typesystem"
)

// Origin records where a candidate came from.
type Origin int

const (
	OriginNative            Origin = iota // declared on the class itself
	OriginInstanceExtension               // helper injected with the receiver as first argument
	OriginStaticExtension                 // helper injected as a static method of the target
)

func (o Origin) String() string {
	switch o {
	case OriginNative:
		return "native"
	case OriginInstanceExtension:
		return "extension"
	case OriginStaticExtension:
		return "static extension"
	}
	return "unknown"
}

type Visibility int

const (
	Public Visibility = iota
	Protected
	Private
)

func (v Visibility) String() string {
	switch v {
	case Public:
		return "public"
	case Protected:
		return "protected"
	case Private:
		return "private"
	}
	return "unknown"
}

// Receiver is an optional receiver. Static extensions are invoked with no
// receiver; instance extensions always get one.
type Receiver struct {
	value   object.Object
	present bool
}

// Some returns a present receiver.
func Some(v object.Object) Receiver { return Receiver{value: v, present: true} }

// NoReceiver returns the absent receiver.
func NoReceiver() Receiver { return Receiver{} }

func (r Receiver) Get() (object.Object, bool) { return r.value, r.present }
func (r Receiver) IsPresent() bool            { return r.present }

func (r Receiver) String() string {
	if !r.present {
		return "<none>"
	}
	return r.value.Inspect()
}

// NativeFunc implements a method declared on a class. self is nil for
// static methods.
type NativeFunc func(self object.Object, args []object.Object) (object.Object, error)

// ExtensionFunc implements an injected helper. The receiver slot comes
// first, followed by the caller's arguments.
type ExtensionFunc func(self Receiver, args []object.Object) (object.Object, error)

// Helper is an externally declared function whose first formal parameter is
// the receiver slot.
type Helper struct {
	Declaring  *typesystem.Class   // module class the helper belongs to; nil if none
	Params     []*typesystem.Class // formal parameters including the receiver slot
	Visibility Visibility
	Variadic   bool
	Fn         ExtensionFunc
}

// Candidate is one callable signature eligible for selection.
// Candidates are immutable once registered.
type Candidate struct {
	Name       string
	Declaring  *typesystem.Class
	Target     *typesystem.Class
	Params     []*coerce.Descriptor
	Origin     Origin
	Variadic   bool // last parameter is an array that may absorb trailing arguments
	visibility Visibility
	static     bool

	native    NativeFunc
	extension ExtensionFunc

	table   *MethodTable
	seq     uint64
	removed atomic.Bool
}

// Static reports whether the candidate has no implicit receiver. Static
// extensions are always static.
func (c *Candidate) Static() bool {
	return c.static || c.Origin == OriginStaticExtension
}

// Visibility reports the exposed visibility. Static extensions are exposed
// as public static methods of the target regardless of the helper.
func (c *Candidate) Visibility() Visibility {
	if c.Origin == OriginStaticExtension {
		return Public
	}
	return c.visibility
}

// Synthetic reports whether the candidate was injected rather than declared.
func (c *Candidate) Synthetic() bool { return c.Origin != OriginNative }

// Seq is the registration order of the candidate within its registry.
func (c *Candidate) Seq() uint64 { return c.seq }

func (c *Candidate) Arity() int { return len(c.Params) }

// ParamClasses returns the declared parameter classes.
func (c *Candidate) ParamClasses() []*typesystem.Class {
	out := make([]*typesystem.Class, len(c.Params))
	for i, p := range c.Params {
		out[i] = p.Class()
	}
	return out
}

// sameSignature reports whether two candidates declare identical parameters.
func (c *Candidate) sameSignature(other *Candidate) bool {
	if len(c.Params) != len(other.Params) || c.Variadic != other.Variadic {
		return false
	}
	for i := range c.Params {
		if c.Params[i].Class() != other.Params[i].Class() {
			return false
		}
	}
	return true
}

func (c *Candidate) String() string {
	names := make([]string, len(c.Params))
	for i, p := range c.Params {
		names[i] = p.Class().Name
	}
	if c.Variadic && len(names) > 0 {
		last := names[len(names)-1]
		names[len(names)-1] = strings.TrimSuffix(last, "[]") + "..."
	}
	s := fmt.Sprintf("%s.%s(%s)", c.Target.Name, c.Name, strings.Join(names, ", "))
	if c.Static() {
		s = "static " + s
	}
	if c.Synthetic() {
		s += " [" + c.Origin.String() + "]"
	}
	return s
}

// Match is the outcome of scoring a candidate against a signature.
type Match struct {
	Score  int
	Packed bool // trailing arguments are packed into the variadic array
}

// MatchScore scores the candidate against argument classes. ok is false when
// the candidate is inapplicable. Lower scores are better.
func (c *Candidate) MatchScore(sig []*typesystem.Class) (m Match, ok bool) {
	if len(sig) == len(c.Params) {
		if score, ok := scoreParams(c.Params, sig); ok {
			return Match{Score: score}, true
		}
	}
	if !c.Variadic || len(sig) < len(c.Params)-1 {
		return Match{}, false
	}
	fixed := len(c.Params) - 1
	score, ok := scoreParams(c.Params[:fixed], sig[:fixed])
	if !ok {
		return Match{}, false
	}
	elem := c.Params[fixed].Component()
	for _, cls := range sig[fixed:] {
		d, ok := elem.Distance(cls)
		if !ok {
			return Match{}, false
		}
		score += d
	}
	return Match{Score: score + distVarargs, Packed: true}, true
}

// distVarargs keeps an exact array argument ahead of packed trailing arguments.
const distVarargs = 10

func scoreParams(params []*coerce.Descriptor, sig []*typesystem.Class) (int, bool) {
	total := 0
	for i, p := range params {
		d, ok := p.Distance(sig[i])
		if !ok {
			return 0, false
		}
		total += d
	}
	return total, true
}

// call delegates to the underlying callable, reshaping the argument list by
// origin: native callables get (receiver, args), instance extensions get
// the receiver in the first slot, static extensions get no receiver.
func (c *Candidate) call(self Receiver, args []object.Object) (object.Object, error) {
	switch c.Origin {
	case OriginInstanceExtension:
		return c.extension(self, args)
	case OriginStaticExtension:
		return c.extension(NoReceiver(), args)
	default:
		recv, _ := self.Get()
		if c.static {
			recv = nil
		}
		return c.native(recv, args)
	}
}
