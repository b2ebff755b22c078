package builtins

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/funvibe/mop/internal/coerce"
	"github.com/funvibe/mop/internal/object"
)

// ErrDivisionByZero is returned by div and mod.
var ErrDivisionByZero = errors.New("division by zero")

// arithRank is the rank binary arithmetic is carried out in. byte, short
// and int operands compute in int; float operands compute in double.
type arithRank int

const (
	arithInt arithRank = iota
	arithLong
	arithBigInteger
	arithDouble
	arithDecimal
)

func rankOf(v object.Object) (arithRank, error) {
	r, ok := coerce.RankOf(object.ClassOf(v))
	if !ok {
		return 0, fmt.Errorf("%s is not a number", v.Inspect())
	}
	switch r {
	case coerce.RankByte, coerce.RankShort, coerce.RankInt:
		return arithInt, nil
	case coerce.RankLong:
		return arithLong, nil
	case coerce.RankBigInteger:
		return arithBigInteger, nil
	case coerce.RankFloat, coerce.RankDouble:
		return arithDouble, nil
	}
	return arithDecimal, nil
}

// promote returns the rank both operands are widened to. BigInteger mixed
// with a floating operand goes to decimal so no digits are lost.
func promote(a, b object.Object) (arithRank, error) {
	ra, err := rankOf(a)
	if err != nil {
		return 0, err
	}
	rb, err := rankOf(b)
	if err != nil {
		return 0, err
	}
	if (ra == arithBigInteger && rb == arithDouble) || (ra == arithDouble && rb == arithBigInteger) {
		return arithDecimal, nil
	}
	return max(ra, rb), nil
}

type binaryOp struct {
	ints    func(a, b int64) (int64, error)
	bigs    func(a, b *big.Int) (*big.Int, error)
	doubles func(a, b float64) float64
	rats    func(a, b *big.Rat) (*big.Rat, error)
}

var (
	opPlus = binaryOp{
		ints:    func(a, b int64) (int64, error) { return a + b, nil },
		bigs:    func(a, b *big.Int) (*big.Int, error) { return new(big.Int).Add(a, b), nil },
		doubles: func(a, b float64) float64 { return a + b },
		rats:    func(a, b *big.Rat) (*big.Rat, error) { return new(big.Rat).Add(a, b), nil },
	}
	opMinus = binaryOp{
		ints:    func(a, b int64) (int64, error) { return a - b, nil },
		bigs:    func(a, b *big.Int) (*big.Int, error) { return new(big.Int).Sub(a, b), nil },
		doubles: func(a, b float64) float64 { return a - b },
		rats:    func(a, b *big.Rat) (*big.Rat, error) { return new(big.Rat).Sub(a, b), nil },
	}
	opMultiply = binaryOp{
		ints:    func(a, b int64) (int64, error) { return a * b, nil },
		bigs:    func(a, b *big.Int) (*big.Int, error) { return new(big.Int).Mul(a, b), nil },
		doubles: func(a, b float64) float64 { return a * b },
		rats:    func(a, b *big.Rat) (*big.Rat, error) { return new(big.Rat).Mul(a, b), nil },
	}
	opMod = binaryOp{
		ints: func(a, b int64) (int64, error) {
			if b == 0 {
				return 0, ErrDivisionByZero
			}
			return a % b, nil
		},
		bigs: func(a, b *big.Int) (*big.Int, error) {
			if b.Sign() == 0 {
				return nil, ErrDivisionByZero
			}
			return new(big.Int).Rem(a, b), nil
		},
	}
)

// arith applies op in the promoted rank of a and b.
func arith(op binaryOp, a, b object.Object) (object.Object, error) {
	rank, err := promote(a, b)
	if err != nil {
		return nil, err
	}
	switch rank {
	case arithInt, arithLong:
		if op.ints == nil {
			break
		}
		x, _ := object.ToInt64(a)
		y, _ := object.ToInt64(b)
		n, err := op.ints(x, y)
		if err != nil {
			return nil, err
		}
		if rank == arithInt {
			return &object.Int{Value: int32(n)}, nil
		}
		return &object.Long{Value: n}, nil
	case arithBigInteger:
		if op.bigs == nil {
			break
		}
		x, _ := object.ToBigInt(a)
		y, _ := object.ToBigInt(b)
		n, err := op.bigs(x, y)
		if err != nil {
			return nil, err
		}
		return &object.BigInt{Value: n}, nil
	case arithDouble:
		if op.doubles == nil {
			break
		}
		x, _ := object.ToFloat64(a)
		y, _ := object.ToFloat64(b)
		return &object.Double{Value: op.doubles(x, y)}, nil
	case arithDecimal:
		if op.rats == nil {
			break
		}
		x, ok := object.ToRat(a)
		if !ok {
			return nil, fmt.Errorf("%s has no exact decimal value", a.Inspect())
		}
		y, ok := object.ToRat(b)
		if !ok {
			return nil, fmt.Errorf("%s has no exact decimal value", b.Inspect())
		}
		r, err := op.rats(x, y)
		if err != nil {
			return nil, err
		}
		return &object.Decimal{Value: r}, nil
	}
	return nil, fmt.Errorf("operation not defined for %s and %s",
		object.ClassOf(a).Name, object.ClassOf(b).Name)
}

// divide returns a double for floating operands and an exact decimal
// otherwise.
func divide(a, b object.Object) (object.Object, error) {
	rank, err := promote(a, b)
	if err != nil {
		return nil, err
	}
	if rank == arithDouble {
		x, _ := object.ToFloat64(a)
		y, _ := object.ToFloat64(b)
		return &object.Double{Value: x / y}, nil
	}
	x, ok := object.ToRat(a)
	if !ok {
		return nil, fmt.Errorf("%s has no exact decimal value", a.Inspect())
	}
	y, ok := object.ToRat(b)
	if !ok {
		return nil, fmt.Errorf("%s has no exact decimal value", b.Inspect())
	}
	if y.Sign() == 0 {
		return nil, ErrDivisionByZero
	}
	return &object.Decimal{Value: new(big.Rat).Quo(x, y)}, nil
}

// compare orders two numbers in their promoted rank.
func compare(a, b object.Object) (int, error) {
	rank, err := promote(a, b)
	if err != nil {
		return 0, err
	}
	switch rank {
	case arithInt, arithLong:
		x, _ := object.ToInt64(a)
		y, _ := object.ToInt64(b)
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		}
		return 0, nil
	case arithDouble:
		x, _ := object.ToFloat64(a)
		y, _ := object.ToFloat64(b)
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		}
		return 0, nil
	}
	x, ok := object.ToRat(a)
	y, ok2 := object.ToRat(b)
	if !ok || !ok2 {
		return 0, fmt.Errorf("cannot compare %s and %s", a.Inspect(), b.Inspect())
	}
	return x.Cmp(y), nil
}

func negate(v object.Object) (object.Object, error) {
	switch n := v.(type) {
	case *object.Byte, *object.Short, *object.Int:
		i, _ := object.ToInt64(n)
		return &object.Int{Value: int32(-i)}, nil
	case *object.Long:
		return &object.Long{Value: -n.Value}, nil
	case *object.Float:
		return &object.Float{Value: -n.Value}, nil
	case *object.Double:
		return &object.Double{Value: -n.Value}, nil
	case *object.BigInt:
		return &object.BigInt{Value: new(big.Int).Neg(n.Value)}, nil
	case *object.Decimal:
		return &object.Decimal{Value: new(big.Rat).Neg(n.Value)}, nil
	}
	return nil, fmt.Errorf("%s is not a number", v.Inspect())
}
