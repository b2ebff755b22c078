package dispatch

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/funvibe/mop/internal/object"
	"github.com/funvibe/mop/internal/typesystem"
)

func TestCacheHitsAndMisses(t *testing.T) {
	reg, r := newTestResolver(t)
	target := typesystem.NewClass("Cached", nil)
	reg.Register(target, "m", returning("x"), typesystem.Object)
	recv := object.NewInstance(target, r)

	for i := 0; i < 3; i++ {
		if _, err := r.ResolveAndInvoke(recv, "m", []object.Object{str("a")}); err != nil {
			t.Fatal(err)
		}
	}
	st := r.Stats()
	if st.Misses != 1 || st.Hits != 2 || st.Entries != 1 {
		t.Errorf("unexpected stats %+v", st)
	}

	// A different argument class is a different signature.
	if _, err := r.ResolveAndInvoke(recv, "m", []object.Object{i32(1)}); err != nil {
		t.Fatal(err)
	}
	if st := r.Stats(); st.Entries != 2 {
		t.Errorf("expected 2 entries, got %+v", st)
	}
}

func TestNoApplicableMethodIsNotCached(t *testing.T) {
	reg, r := newTestResolver(t)
	target := typesystem.NewClass("Late", nil)
	recv := object.NewInstance(target, r)

	if _, err := r.ResolveAndInvoke(recv, "m", nil); !errors.Is(err, ErrNoApplicableMethod) {
		t.Fatalf("expected no applicable method, got %v", err)
	}
	reg.Register(target, "m", returning("now"))
	res, err := r.ResolveAndInvoke(recv, "m", nil)
	wantString(t, res, err, "now")
}

func TestExtendInvalidatesCachedResolution(t *testing.T) {
	reg, r := newTestResolver(t)
	base := typesystem.NewClass("Base", nil)
	derived := typesystem.NewClass("Derived", base)
	reg.Register(base, "show", returning("object"), typesystem.Object)
	recv := object.NewInstance(derived, r)
	args := []object.Object{str("s")}

	res, err := r.ResolveAndInvoke(recv, "show", args)
	wantString(t, res, err, "object")

	_, err = reg.Extend(base, "show", Helper{
		Params: []*typesystem.Class{base, typesystem.String},
		Fn: func(self Receiver, args []object.Object) (object.Object, error) {
			return str("string"), nil
		},
	}, false)
	if err != nil {
		t.Fatal(err)
	}
	res, err = r.ResolveAndInvoke(recv, "show", args)
	wantString(t, res, err, "string")
}

func TestRemoveAndInvalidate(t *testing.T) {
	reg, r := newTestResolver(t)
	target := typesystem.NewClass("Removable", nil)
	general := reg.Register(target, "m", returning("general"), typesystem.Object)
	specific := reg.Register(target, "m", returning("specific"), typesystem.String)
	recv := object.NewInstance(target, r)
	args := []object.Object{str("x")}

	res, err := r.ResolveAndInvoke(recv, "m", args)
	wantString(t, res, err, "specific")

	if !reg.Remove(specific) {
		t.Fatalf("Remove returned false")
	}
	if reg.Remove(specific) {
		t.Errorf("second Remove should report false")
	}
	res, err = r.ResolveAndInvoke(recv, "m", args)
	wantString(t, res, err, "general")

	reg.Remove(general)
	if _, err := r.ResolveAndInvoke(recv, "m", args); !errors.Is(err, ErrNoApplicableMethod) {
		t.Errorf("expected no applicable method after removing all, got %v", err)
	}

	reg.Register(target, "n", returning("n"))
	r.ResolveAndInvoke(recv, "n", nil)
	if r.Stats().Entries == 0 {
		t.Fatalf("expected a cached entry")
	}
	reg.Invalidate(target)
	if n := r.Stats().Entries; n != 0 {
		t.Errorf("Invalidate left %d entries", n)
	}
}

func TestInvalidateCoversSubclassesOnly(t *testing.T) {
	reg, r := newTestResolver(t)
	base := typesystem.NewClass("Shape", nil)
	circle := typesystem.NewClass("Circle", base)
	other := typesystem.NewClass("Unrelated", nil)
	reg.Register(base, "area", returning("a"))
	reg.Register(other, "area", returning("b"))

	r.ResolveAndInvoke(object.NewInstance(circle, r), "area", nil)
	r.ResolveAndInvoke(object.NewInstance(other, r), "area", nil)
	reg.Invalidate(base)
	if n := r.Stats().Entries; n != 1 {
		t.Errorf("expected only the unrelated entry to survive, got %d", n)
	}
}

func TestCallSitesCacheSeparately(t *testing.T) {
	reg, r := newTestResolver(t)
	target := typesystem.NewClass("Sites", nil)
	reg.Register(target, "m", returning("x"))
	recv := object.NewInstance(target, r)

	a := CallSiteAt("main.mop:3:5", "m")
	b := CallSiteAt("main.mop:9:1", "m")
	if a.ID != CallSiteAt("main.mop:3:5", "m").ID {
		t.Errorf("CallSiteAt should be stable for a location")
	}
	if a.ID == b.ID || NewCallSite("m").ID == NewCallSite("m").ID {
		t.Errorf("distinct call sites share an ID")
	}
	for _, site := range []*CallSite{a, b, a} {
		res, err := r.InvokeAt(site, recv, nil)
		wantString(t, res, err, "x")
	}
	st := r.Stats()
	if st.Entries != 2 || st.Hits != 1 {
		t.Errorf("unexpected stats %+v", st)
	}
}

func TestStaleEntryPanics(t *testing.T) {
	c := newCache(func() uint64 { return 7 })
	cand := &Candidate{Name: "gone", Target: typesystem.Object}
	k := cacheKey{recv: typesystem.Object, name: "gone"}
	if !c.store(k, &Resolution{Candidate: cand}, 7) {
		t.Fatalf("store with current generation rejected")
	}
	cand.removed.Store(true)

	defer func() {
		r := recover()
		if _, ok := r.(*InvariantError); !ok {
			t.Errorf("expected InvariantError panic, got %v", r)
		}
	}()
	c.lookup(k)
}

func TestStoreRejectsStaleGeneration(t *testing.T) {
	gen := uint64(1)
	c := newCache(func() uint64 { return gen })
	k := cacheKey{recv: typesystem.Object, name: "m"}
	gen = 2
	if c.store(k, &Resolution{Candidate: &Candidate{}}, 1) {
		t.Errorf("store accepted a resolution from an older generation")
	}
	if _, ok := c.lookup(k); ok {
		t.Errorf("stale resolution visible")
	}
}

func TestResetClearsEverything(t *testing.T) {
	reg, r := newTestResolver(t)
	target := typesystem.NewClass("Gone", nil)
	reg.Register(target, "m", returning("x"))
	r.ResolveAndInvoke(object.NewInstance(target, r), "m", nil)

	reg.Reset()
	if r.Stats().Entries != 0 || len(reg.Classes()) != 0 || reg.Descriptors.Len() != 0 {
		t.Errorf("Reset left state behind")
	}
	if _, err := r.ResolveAndInvoke(object.NewInstance(target, r), "m", nil); !errors.Is(err, ErrNoApplicableMethod) {
		t.Errorf("expected no applicable method after Reset, got %v", err)
	}
}

// A candidate may only end up outside the live tables when a Reset ran
// after it was published.
func TestRegisterDuringResetNeverDetaches(t *testing.T) {
	reg, r := newTestResolver(t)
	const workers, perWorker = 4, 200

	var (
		mu     sync.Mutex
		cands  []*Candidate
		resets []uint64 // seq observed right after each Reset
	)
	done := make(chan struct{})
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			class := typesystem.NewClass(fmt.Sprintf("Churn%d", w), nil)
			inst := object.NewInstance(class, r)
			for i := 0; i < perWorker; i++ {
				c := reg.Register(class, "m", returning("x"))
				o, err := reg.Override(inst, MethodSpec{Name: "o", Fn: returning("y")})
				if err != nil {
					t.Error(err)
					return
				}
				mu.Lock()
				cands = append(cands, c, o)
				mu.Unlock()
			}
		}(w)
	}
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			reg.Reset()
			reg.mu.RLock()
			seq := reg.seq
			reg.mu.RUnlock()
			mu.Lock()
			resets = append(resets, seq)
			mu.Unlock()
		}
	}()
	wg.Wait()
	<-done

	reg.mu.RLock()
	defer reg.mu.RUnlock()
	for _, c := range cands {
		if c.Origin != OriginNative || c.table == nil {
			t.Fatalf("candidate %s was not published", c)
		}
		if c.table.instance || reg.tables[c.Target] == c.table {
			continue
		}
		resetAfter := false
		for _, seq := range resets {
			if seq >= c.seq {
				resetAfter = true
				break
			}
		}
		if !resetAfter {
			t.Errorf("%s (seq %d) was published into a detached table", c, c.seq)
		}
	}
}

func TestConcurrentResolutionDuringExtension(t *testing.T) {
	for _, sf := range []bool{true, false} {
		t.Run(fmt.Sprintf("singleflight=%t", sf), func(t *testing.T) {
			reg, r := newTestResolver(t, WithSingleFlight(sf))
			target := typesystem.NewClass("Busy", nil)
			reg.Register(target, "m", returning("0"), typesystem.Object)
			recv := object.NewInstance(target, r)
			args := []object.Object{str("x")}

			const rounds = 20
			stop := make(chan struct{})
			var wg sync.WaitGroup
			errs := make(chan error, 8)
			for g := 0; g < 8; g++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for {
						select {
						case <-stop:
							return
						default:
						}
						if _, err := r.ResolveAndInvoke(recv, "m", args); err != nil {
							errs <- err
							return
						}
					}
				}()
			}

			// Each round publishes a new String candidate and removes the
			// previous one; once the registry call returns, every new call
			// must select the latest candidate.
			var prev *Candidate
			for i := 1; i < rounds; i++ {
				tag := fmt.Sprint(i)
				next := reg.Register(target, "m", returning(tag), typesystem.String)
				if prev != nil {
					reg.Remove(prev)
				}
				prev = next
				res, err := r.ResolveAndInvoke(recv, "m", args)
				if err != nil {
					t.Fatal(err)
				}
				if got := res.(*object.String).Value; got != tag {
					t.Fatalf("round %d: got %s, want %s", i, got, tag)
				}
			}
			close(stop)
			wg.Wait()
			close(errs)
			for err := range errs {
				t.Errorf("concurrent call failed: %v", err)
			}
		})
	}
}
