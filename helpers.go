package cbor

// getType classifies the item starting with the given initial byte.
func getType(b byte) Type {
	switch getMajor(b) {
	case majorUint:
		return UintType
	case majorNegInt:
		return IntType
	case majorBytes:
		return BinType
	case majorText:
		return StrType
	case majorArray:
		return ArrayType
	case majorMap:
		return MapType
	case majorTag:
		return TagType
	case majorSimple:
		switch getAddInfo(b) {
		case simpleTrue, simpleFalse:
			return BoolType
		case simpleNull:
			return NilType
		case simpleUndefined:
			return UndefType
		case simpleFloat16, simpleFloat32, simpleFloat64:
			return FloatType
		}
	}
	return InvalidType
}

// NextType returns the wire type of the next item in the slice.
func NextType(b []byte) Type {
	if len(b) == 0 {
		return InvalidType
	}
	return getType(b[0])
}

// Require ensures that b has capacity for at least n additional bytes
// without reallocation.
func Require(b []byte, n int) []byte {
	if cap(b)-len(b) >= n {
		return b
	}
	nb := make([]byte, len(b), len(b)+n)
	copy(nb, b)
	return nb
}
