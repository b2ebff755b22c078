package typesystem

import "testing"

func TestDistance(t *testing.T) {
	animal := NewClass("Animal", nil)
	dog := NewClass("Dog", animal)
	runner := NewInterface("Runner")
	greyhound := NewClass("Greyhound", dog, runner)

	tests := []struct {
		from, to *Class
		want     int
	}{
		{dog, dog, 0},
		{dog, animal, 1},
		{greyhound, animal, 2},
		{greyhound, runner, 1},
		{greyhound, Object, 3},
		{animal, dog, -1},
		{Integer, Number, 1},
		{Integer, Object, 2},
		{Int, Integer, -1},
		{Int, Object, -1},
		{Null, String, 1},
		{Null, Int, -1},
		{String, CharSequence, 1},
		{ArrayOf(String), ArrayOf(CharSequence), 1},
		{ArrayOf(Int), ArrayOf(Object), -1},
		{ArrayOf(Int), Object, 1},
		{runner, Object, 1},
	}
	for _, tt := range tests {
		if got := tt.from.Distance(tt.to); got != tt.want {
			t.Errorf("%s.Distance(%s) = %d, want %d", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestArrayOfInterned(t *testing.T) {
	a := ArrayOf(Int)
	b := ArrayOf(Int)
	if a != b {
		t.Fatalf("ArrayOf(int) returned distinct handles")
	}
	if a.Component != Int || a.Name != "int[]" {
		t.Errorf("unexpected array class %s component %s", a.Name, a.Component)
	}
}

func TestBoxedPairs(t *testing.T) {
	if Int.Boxed() != Integer || Integer.Primitive() != Int {
		t.Errorf("int/Integer not paired")
	}
	if !Int.SamePair(Integer) || Int.SamePair(LongBox) {
		t.Errorf("SamePair mismatch")
	}
	if String.Boxed() != String {
		t.Errorf("reference class should box to itself")
	}
}

func TestUniverseLookup(t *testing.T) {
	u := NewUniverse()
	c, err := u.Lookup("int[][]")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c != ArrayOf(ArrayOf(Int)) {
		t.Errorf("got %s", c)
	}

	if _, err := u.Lookup("Missing"); err == nil {
		t.Fatal("expected error for missing class")
	}

	point := NewClass("Point", nil)
	if err := u.Define(point); err != nil {
		t.Fatalf("define: %v", err)
	}
	if err := u.Define(NewClass("Point", nil)); err == nil {
		t.Error("expected redefinition error")
	}
	if got := u.MustLookup("Point"); got != point {
		t.Errorf("lookup returned %p, want %p", got, point)
	}
}

func TestAncestors(t *testing.T) {
	got := Integer.Ancestors()
	want := []*Class{Integer, Number, Object}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ancestor %d = %s, want %s", i, got[i], want[i])
		}
	}
}
