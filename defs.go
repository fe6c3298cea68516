// Package cbor implements the Concise Binary Object Representation
// (RFC 8949) with canonical encoding, a dynamic Value model, and a
// reflection bridge for user-defined struct types.
//
// The package defines three "families" of operations:
//   - AppendXxxx() appends an item to a []byte in CBOR encoding.
//   - ReadXxxxBytes() reads an item from a []byte and returns the remaining bytes.
//   - Marshal/Unmarshal and Encoder/Decoder wrap the two families with the
//     reflection bridge for arbitrary Go values and io.Reader/io.Writer streams.
//
// All output is canonical per RFC 8949 §4.2: integer arguments use the
// shortest encoding that fits, maps are written with keys sorted by the
// bytewise ordering of their canonical encodings, and containers are
// definite-length unless an indefinite form is requested explicitly.
package cbor

// CBOR major types (upper 3 bits of the initial byte).
const (
	majorUint   = 0 // unsigned integer
	majorNegInt = 1 // negative integer, encodes -1-argument
	majorBytes  = 2 // byte string
	majorText   = 3 // text string (UTF-8)
	majorArray  = 4 // array
	majorMap    = 5 // map
	majorTag    = 6 // semantic tag
	majorSimple = 7 // simple values, floats, break
)

// Additional information values (lower 5 bits of the initial byte).
const (
	aiDirect     = 23 // max value carried in the initial byte itself
	aiUint8      = 24 // 1-byte argument follows
	aiUint16     = 25 // 2-byte argument follows
	aiUint32     = 26 // 4-byte argument follows
	aiUint64     = 27 // 8-byte argument follows
	aiIndefinite = 31 // indefinite length (majors 2-5) or break (major 7)
)

// Simple values in major type 7.
const (
	simpleFalse     = 20
	simpleTrue      = 21
	simpleNull      = 22
	simpleUndefined = 23
	simpleFloat16   = 25
	simpleFloat32   = 26
	simpleFloat64   = 27
	simpleBreak     = 31
)

// Common CBOR semantic tags.
const (
	tagDateTimeString  = 0     // RFC 3339 date/time string
	tagEpochDateTime   = 1     // Unix timestamp (int or float)
	tagPosBignum       = 2     // positive bignum
	tagNegBignum       = 3     // negative bignum
	tagCBOR            = 24    // embedded CBOR data item
	tagURI             = 32    // URI
	tagBase64URLString = 33    // base64url-encoded text
	tagBase64String    = 34    // base64-encoded text
	TagSelfDescribe    = 55799 // self-describe CBOR (0xd9 0xd9 0xf7)
)

// makeByte builds a CBOR initial byte from major type and additional info.
func makeByte(major, ai uint8) byte {
	return byte((major << 5) | ai)
}

// getMajor extracts the major type from a CBOR initial byte.
func getMajor(b byte) uint8 {
	return (b >> 5) & 0x07
}

// getAddInfo extracts the additional info from a CBOR initial byte.
func getAddInfo(b byte) uint8 {
	return b & 0x1f
}

const breakByte = 0xff

// Type classifies the CBOR item starting at a given byte, as seen by a
// decoder choosing a decode method. Unlike Kind it reports the wire shape,
// not the dynamic value variant: unsigned and negative integers are
// separate types, and there is no type for other simple values.
type Type byte

// CBOR wire types.
const (
	InvalidType Type = iota

	UintType  // unsigned integer
	IntType   // negative integer
	BinType   // byte string
	StrType   // text string
	ArrayType // array
	MapType   // map
	TagType   // semantic tag
	BoolType  // true / false
	NilType   // null
	FloatType // half, single or double float
	UndefType // undefined
)

// String implements fmt.Stringer.
func (t Type) String() string {
	switch t {
	case UintType:
		return "uint"
	case IntType:
		return "int"
	case BinType:
		return "bin"
	case StrType:
		return "str"
	case ArrayType:
		return "array"
	case MapType:
		return "map"
	case TagType:
		return "tag"
	case BoolType:
		return "bool"
	case NilType:
		return "nil"
	case FloatType:
		return "float"
	case UndefType:
		return "undefined"
	default:
		return "<invalid>"
	}
}

// Marshaler is the interface implemented by types that know how to marshal
// themselves as CBOR. MarshalCBOR appends the marshalled form to the provided
// byte slice, returning the extended slice and any errors encountered.
type Marshaler interface {
	MarshalCBOR([]byte) ([]byte, error)
}

// Unmarshaler is the interface fulfilled by objects that know how to unmarshal
// themselves from CBOR. UnmarshalCBOR unmarshals the object from binary,
// returning any leftover bytes and any errors encountered.
type Unmarshaler interface {
	UnmarshalCBOR([]byte) ([]byte, error)
}

// TagUnmarshaler is the interface for types that accept a tagged item.
// When the decoder encounters a semantic tag while the target implements
// this interface, it strips the tag head and hands the tag number together
// with the content bytes to UnmarshalCBORTag. The tag number is scoped to
// this single call; it is never stored in process-wide state.
type TagUnmarshaler interface {
	UnmarshalCBORTag(tag uint64, b []byte) ([]byte, error)
}

// RawMessage is a raw, already-encoded CBOR item. It implements Marshaler
// and Unmarshaler, so it can be used to delay decoding or to splice
// pre-encoded items into a document.
type RawMessage []byte

// MarshalCBOR implements Marshaler. An empty RawMessage encodes as null.
func (r RawMessage) MarshalCBOR(b []byte) ([]byte, error) {
	if len(r) == 0 {
		return AppendNil(b), nil
	}
	return append(b, r...), nil
}

// UnmarshalCBOR implements Unmarshaler.
func (r *RawMessage) UnmarshalCBOR(b []byte) ([]byte, error) {
	rest, err := Skip(b)
	if err != nil {
		return b, err
	}
	n := len(b) - len(rest)
	if cap(*r) < n {
		*r = make(RawMessage, n)
	} else {
		*r = (*r)[:n]
	}
	copy(*r, b[:n])
	return rest, nil
}

// RawPair is an already-encoded CBOR key/value pair. Key and Value must
// each contain exactly one CBOR item.
type RawPair struct {
	Key   []byte
	Value []byte
}

// ValidateUTF8OnDecode controls whether text string decoding validates
// UTF-8. Enabled by default for spec compliance; can be disabled in hot
// paths where the input is known good.
var ValidateUTF8OnDecode = true
