package mop_test

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/big"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/funvibe/mop/internal/dispatch"
	"github.com/funvibe/mop/internal/ext"
	"github.com/funvibe/mop/internal/object"
	"github.com/funvibe/mop/internal/typesystem"
	mop "github.com/funvibe/mop/pkg/embed"
)

// User represents a Go struct to be used as a Host Object
type User struct {
	Name  string
	Score int
}

var errEmptyName = errors.New("empty name")

func newRuntime(t *testing.T) *mop.Runtime {
	t.Helper()
	return mop.New(mop.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func newUserRuntime(t *testing.T) *mop.Runtime {
	t.Helper()
	rt := newRuntime(t)
	if _, err := rt.DeclareHost("User", &User{}); err != nil {
		t.Fatal(err)
	}
	bind := func(name string, fn interface{}) {
		if _, err := rt.Bind("User", name, fn); err != nil {
			t.Fatalf("bind %s: %v", name, err)
		}
	}
	bind("addScore", func(u *User, points int32) { u.Score += int(points) })
	bind("status", func(u *User) string {
		return fmt.Sprintf("User %s has %d points", u.Name, u.Score)
	})
	bind("describe", func(u *User, n int64) string { return "long" })
	bind("describe", func(u *User, s string) string { return "string" })
	bind("kind", func(u *User, v object.Object) string { return "object" })
	bind("kind", func(u *User, s string) string { return "string" })

	if _, err := rt.Static("User", "parse", func(name string) (*User, error) {
		if name == "" {
			return nil, errEmptyName
		}
		return &User{Name: name}, nil
	}); err != nil {
		t.Fatal(err)
	}
	return rt
}

func TestEmbedAPI(t *testing.T) {
	rt := newUserRuntime(t)
	user := &User{Name: "Alice", Score: 10}

	res, err := rt.Call(user, "addScore", int32(5))
	if err != nil {
		t.Fatalf("addScore: %v", err)
	}
	if res != nil {
		t.Errorf("expected nil result, got %v", res)
	}

	res, err = rt.Call(user, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if res != "User Alice has 15 points" {
		t.Errorf("status = %v", res)
	}

	// Verify side effect on Go struct
	if user.Score != 15 {
		t.Errorf("Go struct not updated! Score is %d, expected 15", user.Score)
	}
}

func TestEmbedOverloads(t *testing.T) {
	rt := newUserRuntime(t)
	user := &User{Name: "Bob"}

	tests := []struct {
		method string
		arg    interface{}
		want   string
	}{
		{"describe", 3, "long"},
		{"describe", "x", "string"},
		{"kind", "x", "string"},
		{"kind", 1.5, "object"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%s(%v)", tt.method, tt.arg), func(t *testing.T) {
			res, err := rt.Call(user, tt.method, tt.arg)
			if err != nil {
				t.Fatal(err)
			}
			if res != tt.want {
				t.Errorf("got %v, want %s", res, tt.want)
			}
		})
	}

	// Pinning the string to Object selects the Object overload.
	pinned, err := rt.As("x", "Object")
	if err != nil {
		t.Fatal(err)
	}
	res, err := rt.Call(user, "kind", pinned)
	if err != nil {
		t.Fatal(err)
	}
	if res != "object" {
		t.Errorf("pinned call = %v, want object", res)
	}

	if _, err := rt.Call(user, "describe", true); !errors.Is(err, dispatch.ErrNoApplicableMethod) {
		t.Errorf("expected no applicable method, got %v", err)
	}
}

func TestEmbedStaticAndErrors(t *testing.T) {
	rt := newUserRuntime(t)

	res, err := rt.CallStatic("User", "parse", "Carol")
	if err != nil {
		t.Fatal(err)
	}
	u, ok := res.(*User)
	if !ok || u.Name != "Carol" {
		t.Fatalf("parse = %#v", res)
	}

	_, err = rt.CallStatic("User", "parse", "")
	if !errors.Is(err, errEmptyName) {
		t.Fatalf("expected errEmptyName, got %v", err)
	}
	var invErr *dispatch.InvocationError
	if !errors.As(err, &invErr) {
		t.Errorf("expected an InvocationError, got %T", err)
	}

	if _, err := rt.CallStatic("Nowhere", "parse", "x"); err == nil {
		t.Error("expected error for unknown class")
	}
}

func TestEmbedBuiltins(t *testing.T) {
	rt := newRuntime(t)

	res, err := rt.Call(2, "plus", 3)
	if err != nil {
		t.Fatal(err)
	}
	if res != int64(5) {
		t.Errorf("2 + 3 = %#v, want int64(5)", res)
	}

	res, err = rt.Call(int32(2), "plus", 3.5)
	if err != nil {
		t.Fatal(err)
	}
	if res != 5.5 {
		t.Errorf("2 + 3.5 = %#v, want 5.5", res)
	}

	res, err = rt.Call("ab", "toUpperCase")
	if err != nil {
		t.Fatal(err)
	}
	if res != "AB" {
		t.Errorf("toUpperCase = %v", res)
	}
}

func TestEmbedVariadicExtension(t *testing.T) {
	rt := newRuntime(t)
	if _, err := rt.Extend("String", "joinWith", func(sep string, parts ...string) string {
		return strings.Join(parts, sep)
	}, false); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		args []interface{}
		want string
	}{
		{nil, ""},
		{[]interface{}{"a"}, "a"},
		{[]interface{}{"a", "b", "c"}, "a-b-c"},
		{[]interface{}{[]string{"x", "y"}}, "x-y"},
	}
	for _, tt := range tests {
		res, err := rt.Call("-", "joinWith", tt.args...)
		if err != nil {
			t.Fatalf("joinWith%v: %v", tt.args, err)
		}
		if res != tt.want {
			t.Errorf("joinWith%v = %v, want %q", tt.args, res, tt.want)
		}
	}
}

func TestEmbedStaticExtension(t *testing.T) {
	rt := newRuntime(t)
	if _, err := rt.DefineClass("Point", ""); err != nil {
		t.Fatal(err)
	}
	var sawReceiver object.Object
	if _, err := rt.Extend("Point", "origin", func(self object.Object) string {
		sawReceiver = self
		return "(0, 0)"
	}, true); err != nil {
		t.Fatal(err)
	}

	res, err := rt.CallStatic("Point", "origin")
	if err != nil {
		t.Fatal(err)
	}
	if res != "(0, 0)" {
		t.Errorf("origin = %v", res)
	}
	if sawReceiver != nil {
		t.Errorf("static extension received %v", sawReceiver)
	}
}

func TestEmbedProperties(t *testing.T) {
	rt := newRuntime(t)
	if _, err := rt.DefineClass("Point", ""); err != nil {
		t.Fatal(err)
	}
	p, err := rt.NewInstance("Point")
	if err != nil {
		t.Fatal(err)
	}
	p.SetField("x", &object.Long{Value: 1})

	if v, err := rt.Get(p, "x"); err != nil || v != int64(1) {
		t.Errorf("Get x = %v, %v", v, err)
	}
	if err := rt.Set(p, "x", int64(5)); err != nil {
		t.Fatal(err)
	}
	if v, _ := rt.Get(p, "x"); v != int64(5) {
		t.Errorf("after Set, x = %v", v)
	}
	if _, err := rt.Get(p, "y"); !errors.Is(err, dispatch.ErrMissingProperty) {
		t.Errorf("expected missing property, got %v", err)
	}
}

func TestEmbedBindErrors(t *testing.T) {
	rt := newUserRuntime(t)

	tests := []struct {
		name  string
		class string
		fn    interface{}
		want  string
	}{
		{"unknown class", "Nowhere", func(u *User) {}, "Nowhere"},
		{"not a function", "User", 42, "expected a function"},
		{"no receiver", "User", func() {}, "needs a receiver parameter"},
		{"variadic receiver", "User", func(us ...*User) {}, "receiver parameter cannot be variadic"},
		{"unmapped parameter", "User", func(u *User, ch chan int) {}, "has no class"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := rt.Bind(tt.class, "m", tt.fn)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestEmbedLoadConfig(t *testing.T) {
	rt := newRuntime(t)
	t.Cleanup(ext.ClearHelpers)

	shout, err := rt.Helper(func(s string, marks int32) string {
		return strings.ToUpper(s) + strings.Repeat("!", int(marks))
	})
	if err != nil {
		t.Fatal(err)
	}
	ext.RegisterHelpers("text", map[string]dispatch.Helper{"shout": shout})

	dir := t.TempDir()
	path := filepath.Join(dir, "mop.yaml")
	data := `
extensions:
  - module: text
    target: String
    methods:
      - helper: shout
        as: yell
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	if err := rt.LoadConfig(path); err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	res, err := rt.Call("hi", "yell", int32(2))
	if err != nil {
		t.Fatal(err)
	}
	if res != "HI!!" {
		t.Errorf("yell = %v", res)
	}
}

func TestMarshallerToValue(t *testing.T) {
	m := mop.NewMarshaller()

	arr, err := m.ToValue([]int32{1, 2})
	if err != nil {
		t.Fatal(err)
	}
	if got := arr.RuntimeType(); got != typesystem.ArrayOf(typesystem.Int) {
		t.Errorf("[]int32 class = %s, want int[]", got)
	}

	big64, _ := m.ToValue(uint64(math.MaxUint64))
	if _, ok := big64.(*object.BigInt); !ok {
		t.Errorf("max uint64 = %T, want *object.BigInt", big64)
	}

	var nilUser *User
	if v, _ := m.ToValue(nilUser); v != object.NULL {
		t.Errorf("nil pointer = %v, want null", v)
	}

	if v, _ := m.ToValue(&User{}); v.Type() != object.HOST_OBJ {
		t.Errorf("pointer = %s, want host object", v.Type())
	}

	r, _ := m.ToValue(big.NewRat(1, 4))
	if d, ok := r.(*object.Decimal); !ok || d.Inspect() != "0.25" {
		t.Errorf("rat = %v", r)
	}
}

func TestMarshallerFromValue(t *testing.T) {
	m := mop.NewMarshaller()
	int8Type := reflect.TypeOf(int8(0))

	v, err := m.FromValue(&object.Int{Value: 7}, reflect.TypeOf(int64(0)))
	if err != nil || v != int64(7) {
		t.Errorf("int -> int64 = %v, %v", v, err)
	}

	arr := object.NewArray(typesystem.Int, &object.Int{Value: 1}, &object.Int{Value: 2})
	v, err = m.FromValue(arr, reflect.TypeOf([]int64(nil)))
	if err != nil || !reflect.DeepEqual(v, []int64{1, 2}) {
		t.Errorf("int[] -> []int64 = %v, %v", v, err)
	}

	errCases := []struct {
		name string
		obj  object.Object
		typ  reflect.Type
	}{
		{"overflow", &object.Long{Value: 300}, int8Type},
		{"fraction", &object.Double{Value: 1.5}, int8Type},
		{"negative to unsigned", &object.Int{Value: -1}, reflect.TypeOf(uint(0))},
		{"null to int", object.NULL, int8Type},
		{"string to bool", &object.String{Value: "true"}, reflect.TypeOf(false)},
	}
	for _, tt := range errCases {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := m.FromValue(tt.obj, tt.typ); err == nil {
				t.Error("expected error")
			}
		})
	}

	if v, err := m.FromValue(object.NULL, reflect.TypeOf(&User{})); err != nil || v.(*User) != nil {
		t.Errorf("null -> *User = %v, %v", v, err)
	}
	if v, _ := m.FromValue(&object.String{Value: "s"}, reflect.TypeOf((*interface{})(nil)).Elem()); v != "s" {
		t.Errorf("string -> any = %#v", v)
	}
}
