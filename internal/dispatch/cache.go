package dispatch

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/funvibe/mop/internal/coerce"
	"github.com/funvibe/mop/internal/object"
	"github.com/funvibe/mop/internal/typesystem"
)

// Resolution is a selected candidate together with the descriptor each
// argument is coerced through.
type Resolution struct {
	Candidate *Candidate
	Plan      []*coerce.Descriptor // one per call argument
	Packed    bool
	Score     int
}

func newResolution(c *Candidate, m Match, nargs int) *Resolution {
	res := &Resolution{Candidate: c, Packed: m.Packed, Score: m.Score}
	if !m.Packed {
		res.Plan = c.Params
		return res
	}
	fixed := len(c.Params) - 1
	res.Plan = make([]*coerce.Descriptor, 0, nargs)
	res.Plan = append(res.Plan, c.Params[:fixed]...)
	elem := c.Params[fixed].Component()
	for i := fixed; i < nargs; i++ {
		res.Plan = append(res.Plan, elem)
	}
	return res
}

// Coerce converts args through the plan. Wrapped arguments are unwrapped
// first. Trailing arguments of a packed variadic call are collected into a
// new array. Either every argument converts or an error is returned and
// nothing is invoked.
func (res *Resolution) Coerce(args []object.Object) ([]object.Object, error) {
	if len(args) != len(res.Plan) {
		return nil, fmt.Errorf("coerce %s: got %d arguments, plan has %d",
			res.Candidate, len(args), len(res.Plan))
	}
	out := make([]object.Object, len(args))
	for i, a := range args {
		v, err := res.Plan[i].Coerce(unwrapArg(a))
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	if !res.Packed {
		return out, nil
	}
	fixed := len(res.Candidate.Params) - 1
	arr := object.NewArray(res.Candidate.Params[fixed].Component().Class(), out[fixed:]...)
	return append(out[:fixed:fixed], arr), nil
}

type cacheKey struct {
	site   uuid.UUID
	recv   *typesystem.Class
	owner  *MethodTable
	name   string
	sig    string
	static bool
}

func (k cacheKey) flight(gen uint64) string {
	return fmt.Sprintf("%s|%d|%p|%s|%s|%t|%d", k.site, k.recv.ID(), k.owner, k.name, k.sig, k.static, gen)
}

// signature renders argument classes as a string of class IDs.
func signature(sig []*typesystem.Class) string {
	var sb strings.Builder
	for i, c := range sig {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatUint(uint64(c.ID()), 10))
	}
	return sb.String()
}

// CacheStats is a snapshot of cache counters.
type CacheStats struct {
	Hits    uint64
	Misses  uint64
	Entries int
}

type cache struct {
	mu         sync.RWMutex
	entries    map[cacheKey]*Resolution
	generation func() uint64

	hits   atomic.Uint64
	misses atomic.Uint64
	group  singleflight.Group
}

func newCache(generation func() uint64) *cache {
	return &cache{entries: make(map[cacheKey]*Resolution), generation: generation}
}

// lookup returns the cached resolution for k. A hit on a removed candidate
// means an invalidation was skipped and is not recoverable.
func (c *cache) lookup(k cacheKey) (*Resolution, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	res, ok := c.entries[k]
	if !ok {
		c.misses.Add(1)
		return nil, false
	}
	if res.Candidate.removed.Load() {
		panic(&InvariantError{Msg: "cache entry references removed candidate " + res.Candidate.String()})
	}
	c.hits.Add(1)
	return res, true
}

// store records res unless the candidate set changed since gen was read.
func (c *cache) store(k cacheKey, res *Resolution, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generation() != gen {
		return false
	}
	c.entries[k] = res
	return true
}

func (c *cache) invalidateClass(target *typesystem.Class) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k := range c.entries {
		if k.recv.IsSubtypeOf(target) {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

func (c *cache) invalidateTable(t *MethodTable) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for k := range c.entries {
		if k.owner == t {
			delete(c.entries, k)
			n++
		}
	}
	return n
}

func (c *cache) invalidateAll() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = make(map[cacheKey]*Resolution)
	return n
}

func (c *cache) stats() CacheStats {
	c.mu.RLock()
	n := len(c.entries)
	c.mu.RUnlock()
	return CacheStats{Hits: c.hits.Load(), Misses: c.misses.Load(), Entries: n}
}
