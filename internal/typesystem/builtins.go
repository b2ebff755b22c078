package typesystem

// Builtin classes. These are process-scoped handles, like the classes of a
// host runtime; they are created once and never mutated afterwards.
var (
	Object       = newClass("Object", KindReference, nil)
	Null         = newClass("null", KindNull, nil)
	Number       = newClass("Number", KindReference, Object)
	CharSequence = NewInterface("CharSequence")
	String       = newClass("String", KindReference, Object, CharSequence)
	GString      = newClass("GString", KindReference, Object, CharSequence)
	BigInteger   = newClass("BigInteger", KindReference, Number)
	BigDecimal   = newClass("BigDecimal", KindReference, Number)

	Boolean    = newClass("boolean", KindPrimitive, nil)
	BooleanBox = newClass("Boolean", KindBoxed, Object)
	Char       = newClass("char", KindPrimitive, nil)
	Character  = newClass("Character", KindBoxed, Object)
	Byte       = newClass("byte", KindPrimitive, nil)
	ByteBox    = newClass("Byte", KindBoxed, Number)
	Short      = newClass("short", KindPrimitive, nil)
	ShortBox   = newClass("Short", KindBoxed, Number)
	Int        = newClass("int", KindPrimitive, nil)
	Integer    = newClass("Integer", KindBoxed, Number)
	Long       = newClass("long", KindPrimitive, nil)
	LongBox    = newClass("Long", KindBoxed, Number)
	Float      = newClass("float", KindPrimitive, nil)
	FloatBox   = newClass("Float", KindBoxed, Number)
	Double     = newClass("double", KindPrimitive, nil)
	DoubleBox  = newClass("Double", KindBoxed, Number)
)

func pair(prim, boxed *Class) {
	prim.partner = boxed
	boxed.partner = prim
}

func init() {
	pair(Boolean, BooleanBox)
	pair(Char, Character)
	pair(Byte, ByteBox)
	pair(Short, ShortBox)
	pair(Int, Integer)
	pair(Long, LongBox)
	pair(Float, FloatBox)
	pair(Double, DoubleBox)
}

// Builtins lists every builtin class in a stable order.
func Builtins() []*Class {
	return []*Class{
		Object, Null, Number, CharSequence, String, GString, BigInteger, BigDecimal,
		Boolean, BooleanBox, Char, Character,
		Byte, ByteBox, Short, ShortBox, Int, Integer, Long, LongBox,
		Float, FloatBox, Double, DoubleBox,
	}
}
