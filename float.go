package cbor

import (
	"math"

	"github.com/x448/float16"
)

// AppendFloat64 appends a double-precision float (0xfb). No narrowing is
// performed; the value is written at the declared width.
func AppendFloat64(b []byte, f float64) []byte {
	o, n := ensure(b, 9)
	o[n] = makeByte(majorSimple, simpleFloat64)
	be.PutUint64(o[n+1:], math.Float64bits(f))
	return o
}

// AppendFloat32 appends a single-precision float (0xfa).
func AppendFloat32(b []byte, f float32) []byte {
	o, n := ensure(b, 5)
	o[n] = makeByte(majorSimple, simpleFloat32)
	be.PutUint32(o[n+1:], math.Float32bits(f))
	return o
}

// AppendFloat16 appends a half-precision float (0xf9). The value is
// converted with round-to-nearest-even; callers that need exactness
// should use AppendFloatCanonical or check float16.PrecisionFromfloat32.
func AppendFloat16(b []byte, f float32) []byte {
	o, n := ensure(b, 3)
	o[n] = makeByte(majorSimple, simpleFloat16)
	be.PutUint16(o[n+1:], uint16(float16.Fromfloat32(f)))
	return o
}

// AppendFloatCanonical appends f at the shortest of the three float widths
// that preserves its value. NaN canonicalizes to the half-width quiet NaN
// (f9 7e00) per RFC 8949 §4.2.2.
func AppendFloatCanonical(b []byte, f float64) []byte {
	if math.IsNaN(f) {
		o, n := ensure(b, 3)
		o[n] = makeByte(majorSimple, simpleFloat16)
		be.PutUint16(o[n+1:], 0x7e00)
		return o
	}
	f32 := float32(f)
	if float64(f32) != f {
		return AppendFloat64(b, f)
	}
	if h := float16.Fromfloat32(f32); h.Float32() == f32 {
		o, n := ensure(b, 3)
		o[n] = makeByte(majorSimple, simpleFloat16)
		be.PutUint16(o[n+1:], uint16(h))
		return o
	}
	return AppendFloat32(b, f32)
}

// ReadFloat64Bytes reads a double float (0xfb only).
func ReadFloat64Bytes(b []byte) (f float64, o []byte, err error) {
	if len(b) < 1 {
		return 0, b, ErrShortBytes
	}
	if b[0] != 0xfb {
		return 0, b, badPrefix(getMajor(b[0]), majorSimple)
	}
	if len(b) < 9 {
		return 0, b, ErrShortBytes
	}
	return math.Float64frombits(be.Uint64(b[1:])), b[9:], nil
}

// ReadFloat32Bytes reads a single float (0xfa only).
func ReadFloat32Bytes(b []byte) (f float32, o []byte, err error) {
	if len(b) < 1 {
		return 0, b, ErrShortBytes
	}
	if b[0] != 0xfa {
		return 0, b, badPrefix(getMajor(b[0]), majorSimple)
	}
	if len(b) < 5 {
		return 0, b, ErrShortBytes
	}
	return math.Float32frombits(be.Uint32(b[1:])), b[5:], nil
}

// ReadFloat16Bytes reads a half float (0xf9 only), expanded to float32.
func ReadFloat16Bytes(b []byte) (f float32, o []byte, err error) {
	if len(b) < 1 {
		return 0, b, ErrShortBytes
	}
	if b[0] != 0xf9 {
		return 0, b, badPrefix(getMajor(b[0]), majorSimple)
	}
	if len(b) < 3 {
		return 0, b, ErrShortBytes
	}
	return float16.Frombits(be.Uint16(b[1:])).Float32(), b[3:], nil
}

// ReadFloatBytes reads a float of any of the three widths and returns it
// as a float64. It rejects non-float major-7 items with a TypeError.
func ReadFloatBytes(b []byte) (f float64, o []byte, err error) {
	if len(b) < 1 {
		return 0, b, ErrShortBytes
	}
	switch b[0] {
	case 0xf9:
		v, o, err := ReadFloat16Bytes(b)
		return float64(v), o, err
	case 0xfa:
		v, o, err := ReadFloat32Bytes(b)
		return float64(v), o, err
	case 0xfb:
		return ReadFloat64Bytes(b)
	default:
		return 0, b, TypeError{Method: FloatType, Encoded: getType(b[0])}
	}
}
