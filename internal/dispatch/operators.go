package dispatch

import (
	"fmt"

	"github.com/funvibe/mop/internal/config"
	"github.com/funvibe/mop/internal/object"
)

// Operator applies a binary operator by dispatching to the method it maps
// to on the left operand. Comparisons go through compareTo; != negates
// equals.
func (r *Resolver) Operator(op string, left, right object.Object) (object.Object, error) {
	args := []object.Object{right}
	if name, ok := config.BinaryOperators[op]; ok {
		return r.ResolveAndInvoke(left, name, args)
	}
	if test, ok := config.ComparisonOperators[op]; ok {
		res, err := r.ResolveAndInvoke(left, config.CompareToMethodName, args)
		if err != nil {
			return nil, err
		}
		n, ok := object.ToInt64(res)
		if !ok {
			return nil, fmt.Errorf("operator %s: compareTo returned %s", op, res.Inspect())
		}
		return &object.Boolean{Value: test(sign(n))}, nil
	}
	if op == "!=" {
		res, err := r.ResolveAndInvoke(left, config.EqualsMethodName, args)
		if err != nil {
			return nil, err
		}
		b, ok := res.(*object.Boolean)
		if !ok {
			return nil, fmt.Errorf("operator !=: equals returned %s", res.Inspect())
		}
		return &object.Boolean{Value: !b.Value}, nil
	}
	return nil, fmt.Errorf("unknown operator %q", op)
}

// Unary applies a prefix operator.
func (r *Resolver) Unary(op string, operand object.Object) (object.Object, error) {
	name, ok := config.UnaryOperators[op]
	if !ok {
		return nil, fmt.Errorf("unknown unary operator %q", op)
	}
	return r.ResolveAndInvoke(operand, name, nil)
}

func sign(n int64) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
