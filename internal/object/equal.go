package object

// Equal reports whether two values are equal: same value type and same
// contents. Arrays compare element-wise; instances and host objects by identity.
func Equal(a, b Object) bool {
	if IsNull(a) || IsNull(b) {
		return IsNull(a) && IsNull(b)
	}
	switch x := a.(type) {
	case *Boolean:
		y, ok := b.(*Boolean)
		return ok && x.Value == y.Value
	case *Char:
		y, ok := b.(*Char)
		return ok && x.Value == y.Value
	case *Byte:
		y, ok := b.(*Byte)
		return ok && x.Value == y.Value
	case *Short:
		y, ok := b.(*Short)
		return ok && x.Value == y.Value
	case *Int:
		y, ok := b.(*Int)
		return ok && x.Value == y.Value
	case *Long:
		y, ok := b.(*Long)
		return ok && x.Value == y.Value
	case *Float:
		y, ok := b.(*Float)
		return ok && x.Value == y.Value
	case *Double:
		y, ok := b.(*Double)
		return ok && x.Value == y.Value
	case *BigInt:
		y, ok := b.(*BigInt)
		return ok && x.Value.Cmp(y.Value) == 0
	case *Decimal:
		y, ok := b.(*Decimal)
		return ok && x.Value.Cmp(y.Value) == 0
	case *String:
		y, ok := b.(*String)
		return ok && x.Value == y.Value
	case *GString:
		y, ok := b.(*GString)
		return ok && x.String() == y.String()
	case *Array:
		y, ok := b.(*Array)
		if !ok || x.Class != y.Class || len(x.Elements) != len(y.Elements) {
			return false
		}
		for i := range x.Elements {
			if !Equal(x.Elements[i], y.Elements[i]) {
				return false
			}
		}
		return true
	case *HostObject:
		y, ok := b.(*HostObject)
		return ok && x == y
	}
	return a == b
}
