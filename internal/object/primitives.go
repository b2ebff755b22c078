package object

import (
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/funvibe/mop/internal/typesystem"
)

// Nil is the absent value. Its class is typesystem.Null.
type Nil struct{}

// NULL is the shared absent value.
var NULL = &Nil{}

func (n *Nil) Type() ObjectType               { return NIL_OBJ }
func (n *Nil) Inspect() string                { return "null" }
func (n *Nil) RuntimeType() *typesystem.Class { return typesystem.Null }
func (n *Nil) Hash() uint32                   { return 0 }

// Boolean
type Boolean struct {
	Value bool
}

func (b *Boolean) Type() ObjectType               { return BOOLEAN_OBJ }
func (b *Boolean) Inspect() string                { return fmt.Sprintf("%t", b.Value) }
func (b *Boolean) RuntimeType() *typesystem.Class { return typesystem.BooleanBox }
func (b *Boolean) Hash() uint32 {
	if b.Value {
		return 1
	}
	return 0
}

// Char is a single UTF-16 code unit in the host model; stored as a rune.
type Char struct {
	Value rune
}

func (c *Char) Type() ObjectType               { return CHAR_OBJ }
func (c *Char) Inspect() string                { return fmt.Sprintf("'%c'", c.Value) }
func (c *Char) RuntimeType() *typesystem.Class { return typesystem.Character }
func (c *Char) Hash() uint32                   { return uint32(c.Value) }

// Byte
type Byte struct {
	Value int8
}

func (b *Byte) Type() ObjectType               { return BYTE_OBJ }
func (b *Byte) Inspect() string                { return fmt.Sprintf("%d", b.Value) }
func (b *Byte) RuntimeType() *typesystem.Class { return typesystem.ByteBox }
func (b *Byte) Hash() uint32                   { return uint32(b.Value) }

// Short
type Short struct {
	Value int16
}

func (s *Short) Type() ObjectType               { return SHORT_OBJ }
func (s *Short) Inspect() string                { return fmt.Sprintf("%d", s.Value) }
func (s *Short) RuntimeType() *typesystem.Class { return typesystem.ShortBox }
func (s *Short) Hash() uint32                   { return uint32(s.Value) }

// Int
type Int struct {
	Value int32
}

func (i *Int) Type() ObjectType               { return INT_OBJ }
func (i *Int) Inspect() string                { return fmt.Sprintf("%d", i.Value) }
func (i *Int) RuntimeType() *typesystem.Class { return typesystem.Integer }
func (i *Int) Hash() uint32                   { return uint32(i.Value) }

// Long
type Long struct {
	Value int64
}

func (l *Long) Type() ObjectType               { return LONG_OBJ }
func (l *Long) Inspect() string                { return fmt.Sprintf("%dL", l.Value) }
func (l *Long) RuntimeType() *typesystem.Class { return typesystem.LongBox }
func (l *Long) Hash() uint32 {
	return uint32(l.Value ^ (l.Value >> 32))
}

// Float
type Float struct {
	Value float32
}

func (f *Float) Type() ObjectType               { return FLOAT_OBJ }
func (f *Float) Inspect() string                { return fmt.Sprintf("%gf", f.Value) }
func (f *Float) RuntimeType() *typesystem.Class { return typesystem.FloatBox }
func (f *Float) Hash() uint32                   { return math.Float32bits(f.Value) }

// Double
type Double struct {
	Value float64
}

func (d *Double) Type() ObjectType               { return DOUBLE_OBJ }
func (d *Double) Inspect() string                { return fmt.Sprintf("%g", d.Value) }
func (d *Double) RuntimeType() *typesystem.Class { return typesystem.DoubleBox }
func (d *Double) Hash() uint32 {
	bits := math.Float64bits(d.Value)
	return uint32(bits ^ (bits >> 32))
}

// BigInt
type BigInt struct {
	Value *big.Int
}

func (bi *BigInt) Type() ObjectType               { return BIG_INT_OBJ }
func (bi *BigInt) Inspect() string                { return bi.Value.String() + "G" }
func (bi *BigInt) RuntimeType() *typesystem.Class { return typesystem.BigInteger }
func (bi *BigInt) Hash() uint32                   { return hashString(bi.Value.String()) }

// Decimal is an arbitrary-precision decimal backed by an exact rational.
type Decimal struct {
	Value *big.Rat
}

// NewDecimal parses a decimal literal such as "3.4" or "3.4e40".
func NewDecimal(s string) (*Decimal, error) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return nil, fmt.Errorf("invalid decimal literal %q", s)
	}
	return &Decimal{Value: r}, nil
}

// MustDecimal is NewDecimal for literals known to be valid.
func MustDecimal(s string) *Decimal {
	d, err := NewDecimal(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d *Decimal) Type() ObjectType { return DECIMAL_OBJ }
func (d *Decimal) Inspect() string {
	if d.Value.IsInt() {
		return d.Value.Num().String()
	}
	s := strings.TrimRight(d.Value.FloatString(16), "0")
	return strings.TrimSuffix(s, ".")
}
func (d *Decimal) RuntimeType() *typesystem.Class { return typesystem.BigDecimal }
func (d *Decimal) Hash() uint32                   { return hashString(d.Value.String()) }
