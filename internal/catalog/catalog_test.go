package catalog

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/funvibe/mop/internal/dispatch"
	"github.com/funvibe/mop/internal/object"
	"github.com/funvibe/mop/internal/typesystem"
)

func testRegistry(t *testing.T) (*dispatch.Registry, *typesystem.Class) {
	t.Helper()
	reg := dispatch.NewRegistry()
	box := typesystem.NewClass("Box", nil)
	noop := func(self object.Object, args []object.Object) (object.Object, error) { return object.NULL, nil }
	reg.Register(box, "fill", noop, typesystem.Int)
	reg.Register(box, "fill", noop, typesystem.String)
	if _, err := reg.Define(box, dispatch.MethodSpec{
		Name:     "pack",
		Params:   []*typesystem.Class{typesystem.ArrayOf(typesystem.String)},
		Variadic: true,
		Fn:       noop,
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Extend(box, "make", dispatch.Helper{
		Params: []*typesystem.Class{typesystem.Object},
		Fn: func(self dispatch.Receiver, args []object.Object) (object.Object, error) {
			return object.NULL, nil
		},
	}, true); err != nil {
		t.Fatal(err)
	}
	reg.Register(typesystem.String, "shout", noop)
	return reg, box
}

func TestCollect(t *testing.T) {
	reg, _ := testRegistry(t)
	methods := Collect(reg)

	var got []string
	for _, m := range methods {
		got = append(got, m.Display)
	}
	want := []string{
		"Box.fill(int)",
		"Box.fill(String)",
		"Box.pack(String...)",
		"static Box.make() [static extension]",
		"String.shout()",
	}
	if strings.Join(got, "\n") != strings.Join(want, "\n") {
		t.Errorf("Collect =\n%s\nwant\n%s", strings.Join(got, "\n"), strings.Join(want, "\n"))
	}
	if m := methods[3]; !m.Static || m.Origin != "static extension" || m.Visibility != "public" {
		t.Errorf("unexpected static extension row %+v", m)
	}
}

func TestExportAndLookup(t *testing.T) {
	ctx := context.Background()
	reg, box := testRegistry(t)

	cat, err := Open(ctx, filepath.Join(t.TempDir(), "methods.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer cat.Close()

	if gen, err := cat.Generation(ctx); err != nil || gen != 0 {
		t.Errorf("empty catalog generation = %d, %v", gen, err)
	}

	n, err := cat.Export(ctx, reg)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if n != 5 {
		t.Errorf("exported %d methods, want 5", n)
	}

	fills, err := cat.Lookup(ctx, "Box", "fill")
	if err != nil {
		t.Fatal(err)
	}
	if len(fills) != 2 || fills[0].Params[0] != "int" || fills[1].Params[0] != "String" {
		t.Errorf("fill rows = %+v", fills)
	}
	if fills[0].Seq >= fills[1].Seq {
		t.Error("rows should come back in registration order")
	}

	all, err := cat.Lookup(ctx, "Box", "")
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Errorf("Box has %d rows, want 4", len(all))
	}
	for _, m := range all {
		if m.Name == "pack" && (!m.Variadic || m.Params[0] != "String[]") {
			t.Errorf("pack row = %+v", m)
		}
		if m.Name == "make" && len(m.Params) != 0 {
			t.Errorf("make row = %+v", m)
		}
	}

	if gen, _ := cat.Generation(ctx); gen != reg.Generation() {
		t.Errorf("generation = %d, want %d", gen, reg.Generation())
	}

	// A second export replaces the first.
	reg.Remove(reg.Methods(box)[0])
	if n, err := cat.Export(ctx, reg); err != nil || n != 4 {
		t.Fatalf("re-export = %d, %v", n, err)
	}
	fills, _ = cat.Lookup(ctx, "Box", "fill")
	if len(fills) != 1 {
		t.Errorf("after removal, fill rows = %d, want 1", len(fills))
	}
	if gen, _ := cat.Generation(ctx); gen != reg.Generation() {
		t.Errorf("generation after re-export = %d, want %d", gen, reg.Generation())
	}
}
