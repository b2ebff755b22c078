package coerce

import (
	"math"

	"github.com/funvibe/mop/internal/object"
	"github.com/funvibe/mop/internal/typesystem"
)

// Rank is a position in the numeric promotion lattice.
//
//	byte < short < int < long < float < double < decimal
//	                      long < bigint < decimal
type Rank int

const (
	RankByte Rank = iota
	RankShort
	RankInt
	RankLong
	RankBigInteger
	RankFloat
	RankDouble
	RankDecimal
)

var rankNames = [...]string{"byte", "short", "int", "long", "bigint", "float", "double", "decimal"}

func (r Rank) String() string { return rankNames[r] }

// position along the widening chain; BigInteger shares the slot after long.
var chainPos = [...]int{
	RankByte:       0,
	RankShort:      1,
	RankInt:        2,
	RankLong:       3,
	RankBigInteger: 4,
	RankFloat:      4,
	RankDouble:     5,
	RankDecimal:    6,
}

var ranks = map[*typesystem.Class]Rank{
	typesystem.Byte:       RankByte,
	typesystem.ByteBox:    RankByte,
	typesystem.Short:      RankShort,
	typesystem.ShortBox:   RankShort,
	typesystem.Int:        RankInt,
	typesystem.Integer:    RankInt,
	typesystem.Long:       RankLong,
	typesystem.LongBox:    RankLong,
	typesystem.BigInteger: RankBigInteger,
	typesystem.Float:      RankFloat,
	typesystem.FloatBox:   RankFloat,
	typesystem.Double:     RankDouble,
	typesystem.DoubleBox:  RankDouble,
	typesystem.BigDecimal: RankDecimal,
}

// RankOf returns the lattice rank of a numeric class.
func RankOf(c *typesystem.Class) (Rank, bool) {
	r, ok := ranks[c]
	return r, ok
}

// Narrower reports whether a is strictly narrower than b in the lattice.
func Narrower(a, b Rank) bool {
	if a == b {
		return false
	}
	if a == RankBigInteger {
		return b == RankDecimal
	}
	if b == RankBigInteger {
		return a <= RankLong
	}
	return a < b
}

// Steps is the number of widening steps from a to b; only meaningful when
// Narrower(a, b).
func Steps(a, b Rank) int {
	return chainPos[b] - chainPos[a]
}

func (d *Descriptor) numericAssignableFrom(c *typesystem.Class) bool {
	r, ok := ranks[c]
	if !ok {
		return false
	}
	return r == d.rank || Narrower(r, d.rank)
}

func (d *Descriptor) numericDistance(c *typesystem.Class) (int, bool) {
	if c == d.class {
		return distExact, true
	}
	r, ok := ranks[c]
	if !ok {
		return 0, false
	}
	if r == d.rank {
		return distBoxing, true
	}
	if Narrower(r, d.rank) {
		return Steps(r, d.rank) * distWidening, true
	}
	return 0, false
}

func (d *Descriptor) coerceNumeric(v object.Object) (object.Object, error) {
	if object.ClassOf(v).SamePair(d.class) {
		return v, nil
	}
	if !object.IsNumeric(v) {
		return nil, newCoercionError(v, d.class, nil)
	}
	switch d.rank {
	case RankByte:
		i, _ := object.ToInt64(v)
		return &object.Byte{Value: int8(i)}, nil
	case RankShort:
		i, _ := object.ToInt64(v)
		return &object.Short{Value: int16(i)}, nil
	case RankInt:
		i, _ := object.ToInt64(v)
		return &object.Int{Value: int32(i)}, nil
	case RankLong:
		i, _ := object.ToInt64(v)
		return &object.Long{Value: i}, nil
	case RankBigInteger:
		bi, ok := object.ToBigInt(v)
		if !ok {
			return nil, newCoercionError(v, d.class, ErrRange)
		}
		return &object.BigInt{Value: bi}, nil
	case RankFloat:
		// Only decimal inputs are checked for overflow to infinity; other
		// narrowings into float follow plain conversion.
		if dec, ok := v.(*object.Decimal); ok {
			f, _ := dec.Value.Float32()
			if math.IsInf(float64(f), 0) {
				return nil, newCoercionError(v, d.class, ErrRange)
			}
			return &object.Float{Value: f}, nil
		}
		f, _ := object.ToFloat64(v)
		return &object.Float{Value: float32(f)}, nil
	case RankDouble:
		f, _ := object.ToFloat64(v)
		return &object.Double{Value: f}, nil
	case RankDecimal:
		r, ok := object.ToRat(v)
		if !ok {
			return nil, newCoercionError(v, d.class, ErrRange)
		}
		return &object.Decimal{Value: r}, nil
	}
	return nil, newCoercionError(v, d.class, nil)
}
