package cbor

import (
	"bytes"
	"math"
	"math/big"
	"sort"
)

// Kind identifies the variant stored in a Value.
type Kind uint8

// Value variants.
const (
	KindNull Kind = iota
	KindUndefined
	KindBool
	KindInteger
	KindFloat
	KindBytes
	KindText
	KindArray
	KindMap
	KindTagged
	KindSimple
)

// Value is a dynamic CBOR item, used as a decode target when the shape of
// the data is not known statically and as a map key for programmatically
// built maps.
//
// Integers cover the full CBOR range [-2^64, 2^64-1]: the wire form
// (sign domain plus 64-bit argument) is stored directly, so extreme
// negative values survive a round trip even though they exceed int64.
// Floats are stored as float64 bits; equality is bitwise, so NaN equals
// NaN.
type Value struct {
	kind  Kind
	neg   bool   // integer is in the major-1 domain: value = -1-num
	num   uint64 // integer argument, float bits, bool, simple value, tag number
	str   string
	bin   []byte
	arr   []Value
	pairs []MapPair
	inner *Value // tagged content
}

// MapPair is one key/value entry of a map Value. Pair order is the wire
// order on decode; encoding always re-sorts canonically.
type MapPair struct {
	Key   Value
	Value Value
}

// Null returns the null value.
func Null() Value { return Value{kind: KindNull} }

// Undefined returns the undefined value.
func Undefined() Value { return Value{kind: KindUndefined} }

// Bool returns a boolean value.
func Bool(v bool) Value {
	n := uint64(0)
	if v {
		n = 1
	}
	return Value{kind: KindBool, num: n}
}

// Int returns an integer value from an int64.
func Int(i int64) Value {
	if i < 0 {
		return Value{kind: KindInteger, neg: true, num: uint64(-1 - i)}
	}
	return Value{kind: KindInteger, num: uint64(i)}
}

// Uint returns an integer value from a uint64.
func Uint(u uint64) Value { return Value{kind: KindInteger, num: u} }

// NegInt returns the integer -1-arg, covering the major-1 range below
// math.MinInt64.
func NegInt(arg uint64) Value { return Value{kind: KindInteger, neg: true, num: arg} }

// Float returns a floating point value.
func Float(f float64) Value { return Value{kind: KindFloat, num: math.Float64bits(f)} }

// Bytes returns a byte string value. The slice is not copied.
func Bytes(b []byte) Value { return Value{kind: KindBytes, bin: b} }

// Text returns a text string value.
func Text(s string) Value { return Value{kind: KindText, str: s} }

// Array returns an array value.
func Array(items ...Value) Value { return Value{kind: KindArray, arr: items} }

// Map returns a map value from its pairs.
func Map(pairs ...MapPair) Value { return Value{kind: KindMap, pairs: pairs} }

// Tagged wraps content in a semantic tag.
func Tagged(tag uint64, content Value) Value {
	return Value{kind: KindTagged, num: tag, inner: &content}
}

// Simple returns a simple value (0..19 or 32..255).
func Simple(v uint8) Value { return Value{kind: KindSimple, num: uint64(v)} }

// Kind returns the variant of the value.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Bool returns the boolean payload; it is false for other kinds.
func (v Value) Bool() bool { return v.kind == KindBool && v.num == 1 }

// Int64 returns the integer as an int64, surfacing IntOverflow when the
// value lies outside the int64 range.
func (v Value) Int64() (int64, error) {
	if v.kind != KindInteger {
		return 0, TypeError{Method: IntType, Encoded: v.wireType()}
	}
	if v.num > math.MaxInt64 {
		return 0, IntOverflow{Value: int64(v.num), FailedBitsize: 64}
	}
	if v.neg {
		return -1 - int64(v.num), nil
	}
	return int64(v.num), nil
}

// Uint64 returns the integer as a uint64; negative values surface
// UintBelowZero.
func (v Value) Uint64() (uint64, error) {
	if v.kind != KindInteger {
		return 0, TypeError{Method: UintType, Encoded: v.wireType()}
	}
	if v.neg {
		return 0, UintBelowZero{Value: -1}
	}
	return v.num, nil
}

// BigInt returns the integer as a big.Int, covering the full CBOR range.
func (v Value) BigInt() (*big.Int, error) {
	if v.kind != KindInteger {
		return nil, TypeError{Method: IntType, Encoded: v.wireType()}
	}
	z := new(big.Int).SetUint64(v.num)
	if v.neg {
		z.Add(z, big.NewInt(1))
		z.Neg(z)
	}
	return z, nil
}

// Float64 returns the float payload; zero for other kinds.
func (v Value) Float64() float64 {
	if v.kind != KindFloat {
		return 0
	}
	return math.Float64frombits(v.num)
}

// BytesValue returns the byte string payload.
func (v Value) BytesValue() []byte { return v.bin }

// Text returns the text string payload.
func (v Value) Text() string { return v.str }

// Array returns the array elements.
func (v Value) Array() []Value { return v.arr }

// Map returns the map pairs in their stored order.
func (v Value) Map() []MapPair { return v.pairs }

// Tag returns the tag number and content of a tagged value.
func (v Value) Tag() (uint64, Value) {
	if v.kind != KindTagged || v.inner == nil {
		return 0, Null()
	}
	return v.num, *v.inner
}

// SimpleValue returns the simple-value payload.
func (v Value) SimpleValue() uint8 { return uint8(v.num) }

func (v Value) wireType() Type {
	switch v.kind {
	case KindNull:
		return NilType
	case KindUndefined:
		return UndefType
	case KindBool:
		return BoolType
	case KindInteger:
		if v.neg {
			return IntType
		}
		return UintType
	case KindFloat:
		return FloatType
	case KindBytes:
		return BinType
	case KindText:
		return StrType
	case KindArray:
		return ArrayType
	case KindMap:
		return MapType
	case KindTagged:
		return TagType
	default:
		return InvalidType
	}
}

// Equal reports value-wise equality. Floats compare by bit pattern, so
// NaN equals NaN and +0 differs from -0. Maps compare as unordered
// key-to-value mappings regardless of pair order.
func (v Value) Equal(w Value) bool {
	if v.kind != w.kind {
		return false
	}
	switch v.kind {
	case KindNull, KindUndefined:
		return true
	case KindBool, KindFloat, KindSimple:
		return v.num == w.num
	case KindInteger:
		return v.neg == w.neg && v.num == w.num
	case KindBytes:
		return bytes.Equal(v.bin, w.bin)
	case KindText:
		return v.str == w.str
	case KindArray:
		if len(v.arr) != len(w.arr) {
			return false
		}
		for i := range v.arr {
			if !v.arr[i].Equal(w.arr[i]) {
				return false
			}
		}
		return true
	case KindMap:
		a := v.sortedPairs()
		b := w.sortedPairs()
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !a[i].Key.Equal(b[i].Key) || !a[i].Value.Equal(b[i].Value) {
				return false
			}
		}
		return true
	case KindTagged:
		return v.num == w.num && v.inner.Equal(*w.inner)
	default:
		return false
	}
}

// sortedPairs returns the pairs sorted canonically with later duplicates
// winning, which makes map equality insensitive to wire order.
func (v Value) sortedPairs() []MapPair {
	out := make([]MapPair, len(v.pairs))
	copy(out, v.pairs)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Key.Compare(out[j].Key) < 0 })
	// collapse duplicate keys, keeping the last occurrence
	w := 0
	for i := 0; i < len(out); i++ {
		if w > 0 && out[w-1].Key.Equal(out[i].Key) {
			out[w-1] = out[i]
			continue
		}
		out[w] = out[i]
		w++
	}
	return out[:w]
}

// Compare orders two values per RFC 8949 §4.2.3: by the first byte of the
// canonical serialization (major type), then by serialization length, then
// bytewise.
func (v Value) Compare(w Value) int {
	a := v.AppendCBOR(nil)
	b := w.AppendCBOR(nil)
	if a[0]>>5 != b[0]>>5 {
		if a[0]>>5 < b[0]>>5 {
			return -1
		}
		return 1
	}
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return bytes.Compare(a, b)
}

// AppendCBOR appends the canonical encoding of the value to b.
func (v Value) AppendCBOR(b []byte) []byte {
	switch v.kind {
	case KindNull:
		return AppendNil(b)
	case KindUndefined:
		return AppendUndefined(b)
	case KindBool:
		return AppendBool(b, v.num == 1)
	case KindInteger:
		if v.neg {
			return AppendNegUint64(b, v.num)
		}
		return AppendUint64(b, v.num)
	case KindFloat:
		return AppendFloat64(b, math.Float64frombits(v.num))
	case KindBytes:
		return AppendBytes(b, v.bin)
	case KindText:
		return AppendString(b, v.str)
	case KindArray:
		b = AppendArrayHeader(b, uint64(len(v.arr)))
		for i := range v.arr {
			b = v.arr[i].AppendCBOR(b)
		}
		return b
	case KindMap:
		pairs := make([]RawPair, len(v.pairs))
		var scratch []byte
		for i := range v.pairs {
			ks := len(scratch)
			scratch = v.pairs[i].Key.AppendCBOR(scratch)
			vs := len(scratch)
			scratch = v.pairs[i].Value.AppendCBOR(scratch)
			pairs[i] = RawPair{Key: scratch[ks:vs], Value: scratch[vs:]}
		}
		return AppendRawMap(b, pairs)
	case KindTagged:
		b = AppendTag(b, v.num)
		return v.inner.AppendCBOR(b)
	case KindSimple:
		return AppendSimpleValue(b, uint8(v.num))
	default:
		return AppendNil(b)
	}
}

// MarshalCBOR implements Marshaler.
func (v Value) MarshalCBOR(b []byte) ([]byte, error) { return v.AppendCBOR(b), nil }

// UnmarshalCBOR implements Unmarshaler.
func (v *Value) UnmarshalCBOR(b []byte) ([]byte, error) {
	val, rest, err := ReadValueBytes(b)
	if err != nil {
		return b, err
	}
	*v = val
	return rest, nil
}

// ReadValueBytes decodes one item into a Value, copying all payload bytes
// out of b. The default nesting limit applies.
func ReadValueBytes(b []byte) (Value, []byte, error) {
	return readValueDepth(b, defaultMaxDepth)
}

func readValueDepth(b []byte, depth int) (Value, []byte, error) {
	if depth <= 0 {
		return Value{}, b, ErrRecursion
	}
	h, o, err := readHead(b)
	if err != nil {
		return Value{}, b, err
	}
	switch h.major {
	case majorUint:
		return Uint(h.arg), o, nil

	case majorNegInt:
		return NegInt(h.arg), o, nil

	case majorBytes:
		var v, rest []byte
		if h.indef {
			v, rest, err = readChunks(o, majorBytes, nil)
		} else {
			v, rest, err = ReadBytesBytes(b, nil)
		}
		if err != nil {
			return Value{}, b, err
		}
		out := make([]byte, len(v))
		copy(out, v)
		return Bytes(out), rest, nil

	case majorText:
		s, rest, err := ReadStringBytes(b)
		if err != nil {
			return Value{}, b, err
		}
		return Text(s), rest, nil

	case majorArray:
		var items []Value
		if h.indef {
			for {
				if len(o) < 1 {
					return Value{}, b, ErrShortBytes
				}
				if o[0] == breakByte {
					o = o[1:]
					break
				}
				var item Value
				item, o, err = readValueDepth(o, depth-1)
				if err != nil {
					return Value{}, b, err
				}
				items = append(items, item)
			}
		} else {
			items = make([]Value, 0, minInt(int(h.arg), 1024))
			for i := uint64(0); i < h.arg; i++ {
				var item Value
				item, o, err = readValueDepth(o, depth-1)
				if err != nil {
					return Value{}, b, err
				}
				items = append(items, item)
			}
		}
		return Value{kind: KindArray, arr: items}, o, nil

	case majorMap:
		var pairs []MapPair
		readPair := func() error {
			var k, val Value
			k, o, err = readValueDepth(o, depth-1)
			if err != nil {
				return err
			}
			val, o, err = readValueDepth(o, depth-1)
			if err != nil {
				return err
			}
			pairs = append(pairs, MapPair{Key: k, Value: val})
			return nil
		}
		if h.indef {
			for {
				if len(o) < 1 {
					return Value{}, b, ErrShortBytes
				}
				if o[0] == breakByte {
					o = o[1:]
					break
				}
				if err := readPair(); err != nil {
					return Value{}, b, err
				}
			}
		} else {
			pairs = make([]MapPair, 0, minInt(int(h.arg), 1024))
			for i := uint64(0); i < h.arg; i++ {
				if err := readPair(); err != nil {
					return Value{}, b, err
				}
			}
		}
		return Value{kind: KindMap, pairs: pairs}, o, nil

	case majorTag:
		inner, rest, err := readValueDepth(o, depth-1)
		if err != nil {
			return Value{}, b, err
		}
		return Tagged(h.arg, inner), rest, nil

	default: // majorSimple
		if h.indef {
			return Value{}, b, ErrUnexpectedBreak
		}
		switch h.ai {
		case simpleFalse:
			return Bool(false), o, nil
		case simpleTrue:
			return Bool(true), o, nil
		case simpleNull:
			return Null(), o, nil
		case simpleUndefined:
			return Undefined(), o, nil
		case simpleFloat16, simpleFloat32, simpleFloat64:
			f, rest, err := ReadFloatBytes(b)
			if err != nil {
				return Value{}, b, err
			}
			return Float(f), rest, nil
		case aiUint8:
			sv, rest, err := ReadSimpleValue(b)
			if err != nil {
				return Value{}, b, err
			}
			return Simple(sv), rest, nil
		default:
			return Simple(h.ai), o, nil
		}
	}
}
