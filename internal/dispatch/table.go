package dispatch

import (
	"sort"

	"github.com/funvibe/mop/internal/typesystem"
)

// MethodTable holds the candidates registered directly on one class, or on
// one instance when used as a per-instance override table. It is only
// mutated by its Registry, under the registry lock.
type MethodTable struct {
	owner    *typesystem.Class
	instance bool
	methods  map[string][]*Candidate
}

func newMethodTable(owner *typesystem.Class, instance bool) *MethodTable {
	return &MethodTable{owner: owner, instance: instance, methods: make(map[string][]*Candidate)}
}

// Len returns the number of candidates in the table.
func (t *MethodTable) Len() int {
	n := 0
	for _, cs := range t.methods {
		n += len(cs)
	}
	return n
}

func (t *MethodTable) Owner() *typesystem.Class { return t.owner }

func (t *MethodTable) add(c *Candidate) {
	t.methods[c.Name] = append(t.methods[c.Name], c)
}

func (t *MethodTable) remove(c *Candidate) bool {
	list := t.methods[c.Name]
	for i, existing := range list {
		if existing != c {
			continue
		}
		next := make([]*Candidate, 0, len(list)-1)
		next = append(next, list[:i]...)
		next = append(next, list[i+1:]...)
		if len(next) == 0 {
			delete(t.methods, c.Name)
		} else {
			t.methods[c.Name] = next
		}
		return true
	}
	return false
}

// all returns every candidate, ordered by registration.
func (t *MethodTable) all() []*Candidate {
	var out []*Candidate
	for _, cs := range t.methods {
		out = append(out, cs...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}
