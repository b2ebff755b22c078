package object

import (
	"math"
	"math/big"
)

// IsNumeric reports whether v is one of the numeric value types.
func IsNumeric(v Object) bool {
	switch v.(type) {
	case *Byte, *Short, *Int, *Long, *Float, *Double, *BigInt, *Decimal:
		return true
	}
	return false
}

// ToInt64 converts any numeric value to int64 with Go conversion semantics
// (truncation toward zero for fractional values).
func ToInt64(v Object) (int64, bool) {
	switch n := v.(type) {
	case *Byte:
		return int64(n.Value), true
	case *Short:
		return int64(n.Value), true
	case *Int:
		return int64(n.Value), true
	case *Long:
		return n.Value, true
	case *Float:
		return int64(n.Value), true
	case *Double:
		return int64(n.Value), true
	case *BigInt:
		return n.Value.Int64(), true
	case *Decimal:
		q := new(big.Int).Quo(n.Value.Num(), n.Value.Denom())
		return q.Int64(), true
	case *Char:
		return int64(n.Value), true
	}
	return 0, false
}

// ToFloat64 converts any numeric value to float64.
func ToFloat64(v Object) (float64, bool) {
	switch n := v.(type) {
	case *Byte:
		return float64(n.Value), true
	case *Short:
		return float64(n.Value), true
	case *Int:
		return float64(n.Value), true
	case *Long:
		return float64(n.Value), true
	case *Float:
		return float64(n.Value), true
	case *Double:
		return n.Value, true
	case *BigInt:
		f, _ := new(big.Float).SetInt(n.Value).Float64()
		return f, true
	case *Decimal:
		f, _ := n.Value.Float64()
		return f, true
	}
	return 0, false
}

// ToBigInt converts any numeric value to a new *big.Int, truncating fractions.
func ToBigInt(v Object) (*big.Int, bool) {
	switch n := v.(type) {
	case *BigInt:
		return new(big.Int).Set(n.Value), true
	case *Decimal:
		return new(big.Int).Quo(n.Value.Num(), n.Value.Denom()), true
	case *Float, *Double:
		f, _ := ToFloat64(v)
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, false
		}
		bi, _ := big.NewFloat(f).Int(nil)
		return bi, true
	}
	i, ok := ToInt64(v)
	if !ok {
		return nil, false
	}
	return big.NewInt(i), true
}

// ToRat converts any numeric value to a new *big.Rat.
func ToRat(v Object) (*big.Rat, bool) {
	switch n := v.(type) {
	case *Decimal:
		return new(big.Rat).Set(n.Value), true
	case *BigInt:
		return new(big.Rat).SetInt(n.Value), true
	case *Float, *Double:
		f, _ := ToFloat64(v)
		r := new(big.Rat)
		if r.SetFloat64(f) == nil {
			return nil, false
		}
		return r, true
	}
	i, ok := ToInt64(v)
	if !ok {
		return nil, false
	}
	return new(big.Rat).SetInt64(i), true
}
