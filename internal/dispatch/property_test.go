package dispatch

import (
	"errors"
	"testing"

	"github.com/funvibe/mop/internal/object"
	"github.com/funvibe/mop/internal/typesystem"
)

func TestProperties(t *testing.T) {
	reg, r := newTestResolver(t)
	target := typesystem.NewClass("Account", nil)
	var balance object.Object = i32(0)
	reg.Register(target, "getBalance", func(self object.Object, args []object.Object) (object.Object, error) {
		return balance, nil
	})
	reg.Register(target, "setBalance", func(self object.Object, args []object.Object) (object.Object, error) {
		balance = args[0]
		return nil, nil
	}, typesystem.Long)

	acct := object.NewInstance(target, r)
	acct.SetField("owner", str("ann"))

	v, err := r.GetProperty(acct, "owner")
	wantString(t, v, err, "ann")
	if err := r.SetProperty(acct, "owner", str("bo")); err != nil {
		t.Fatal(err)
	}
	v, err = r.GetProperty(acct, "owner")
	wantString(t, v, err, "bo")

	if err := r.SetProperty(acct, "balance", i32(10)); err != nil {
		t.Fatal(err)
	}
	if l, ok := balance.(*object.Long); !ok || l.Value != 10 {
		t.Errorf("setter should receive a coerced long, got %s", balance.Inspect())
	}
	v, err = r.GetProperty(acct, "balance")
	if err != nil || v != balance {
		t.Errorf("getter returned %v, %v", v, err)
	}

	_, err = r.GetProperty(acct, "missing")
	if !errors.Is(err, ErrMissingProperty) {
		t.Errorf("expected ErrMissingProperty, got %v", err)
	}
	if err := r.SetProperty(acct, "missing", i32(1)); !errors.Is(err, ErrMissingProperty) {
		t.Errorf("expected ErrMissingProperty on set, got %v", err)
	}
}

func TestAccessorName(t *testing.T) {
	tests := []struct{ prefix, name, want string }{
		{"get", "name", "getName"},
		{"set", "x", "setX"},
		{"get", "émile", "getÉmile"},
		{"get", "", "get"},
	}
	for _, tt := range tests {
		if got := accessor(tt.prefix, tt.name); got != tt.want {
			t.Errorf("accessor(%q, %q) = %q, want %q", tt.prefix, tt.name, got, tt.want)
		}
	}
}

func TestOperators(t *testing.T) {
	reg, r := newTestResolver(t)
	reg.Register(typesystem.Integer, "plus", func(self object.Object, args []object.Object) (object.Object, error) {
		return i32(self.(*object.Int).Value + args[0].(*object.Int).Value), nil
	}, typesystem.Int)
	reg.Register(typesystem.Integer, "compareTo", func(self object.Object, args []object.Object) (object.Object, error) {
		a, b := self.(*object.Int).Value, args[0].(*object.Int).Value
		switch {
		case a < b:
			return i32(-1), nil
		case a > b:
			return i32(1), nil
		}
		return i32(0), nil
	}, typesystem.Int)
	reg.Register(typesystem.Integer, "equals", func(self object.Object, args []object.Object) (object.Object, error) {
		return &object.Boolean{Value: object.Equal(self, args[0])}, nil
	}, typesystem.Object)
	reg.Register(typesystem.Integer, "negative", func(self object.Object, args []object.Object) (object.Object, error) {
		return i32(-self.(*object.Int).Value), nil
	})

	sum, err := r.Operator("+", i32(2), i32(3))
	if err != nil || sum.(*object.Int).Value != 5 {
		t.Fatalf("2 + 3 = %v, %v", sum, err)
	}

	cmp := []struct {
		op   string
		a, b int32
		want bool
	}{
		{"<", 1, 2, true},
		{"<=", 2, 2, true},
		{">", 1, 2, false},
		{">=", 3, 2, true},
		{"==", 2, 2, true},
		{"!=", 2, 2, false},
		{"!=", 1, 2, true},
	}
	for _, tt := range cmp {
		got, err := r.Operator(tt.op, i32(tt.a), i32(tt.b))
		if err != nil {
			t.Fatalf("%d %s %d: %v", tt.a, tt.op, tt.b, err)
		}
		if got.(*object.Boolean).Value != tt.want {
			t.Errorf("%d %s %d = %v, want %v", tt.a, tt.op, tt.b, got.Inspect(), tt.want)
		}
	}

	neg, err := r.Unary("-", i32(4))
	if err != nil || neg.(*object.Int).Value != -4 {
		t.Errorf("-4 = %v, %v", neg, err)
	}
	if _, err := r.Operator("???", i32(1), i32(1)); err == nil {
		t.Errorf("unknown operator should fail")
	}
	if _, err := r.Unary("!", i32(1)); err == nil {
		t.Errorf("unknown unary operator should fail")
	}
}
