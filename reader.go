package cbor

import "bytes"

// Reader is a slice-backed CBOR reader. Definite-length strings and byte
// strings can be borrowed zero-copy from the underlying buffer; decoded
// values otherwise copy out. It optionally enforces canonical encodings
// (strict mode), forbids indefinite-length items (deterministic mode),
// and bounds container lengths and nesting depth for adversarial input.
type Reader struct {
	buf           []byte
	strict        bool
	deterministic bool
	maxContainer  uint64
	maxDepth      int
}

// NewReaderBytes constructs a Reader over the provided buffer.
func NewReaderBytes(b []byte) *Reader { return &Reader{buf: b, maxDepth: defaultMaxDepth} }

// SetStrictDecode controls whether the reader rejects non-canonical
// argument encodings (integers, lengths and floats wider than needed).
func (r *Reader) SetStrictDecode(strict bool) { r.strict = strict }

// SetDeterministicDecode controls whether indefinite-length items are
// forbidden.
func (r *Reader) SetDeterministicDecode(det bool) { r.deterministic = det }

// SetMaxContainerLen configures an upper bound on the element or pair
// count of arrays and maps read through the header and start methods.
// Zero disables the limit. When exceeded, ErrContainerTooLarge is
// returned. Byte and text string lengths are not checked against it.
func (r *Reader) SetMaxContainerLen(max uint64) { r.maxContainer = max }

// SetMaxDepth configures the nesting limit used by Skip and ReadValue.
func (r *Reader) SetMaxDepth(depth int) {
	if depth > 0 {
		r.maxDepth = depth
	}
}

// Remaining returns the unread portion of the underlying buffer.
func (r *Reader) Remaining() []byte { return r.buf }

// checkCanonicalArg verifies the head of the next item uses the shortest
// argument encoding for the given major type.
func (r *Reader) checkCanonicalArg(major uint8) error {
	if !r.strict || len(r.buf) < 1 || getMajor(r.buf[0]) != major {
		return nil
	}
	h, _, err := readHead(r.buf)
	if err != nil {
		return err
	}
	if !isCanonicalHead(h) {
		return ErrNonCanonicalInteger
	}
	return nil
}

func (r *Reader) checkIndefinite(major uint8) error {
	if !r.deterministic || len(r.buf) < 1 {
		return nil
	}
	if getMajor(r.buf[0]) == major && getAddInfo(r.buf[0]) == aiIndefinite {
		return ErrIndefiniteForbidden
	}
	return nil
}

// ReadArrayHeader reads a definite-length array header.
func (r *Reader) ReadArrayHeader() (uint64, error) {
	if err := r.checkCanonicalArg(majorArray); err != nil {
		return 0, err
	}
	sz, rest, err := ReadArrayHeaderBytes(r.buf)
	if err != nil {
		return 0, err
	}
	if r.maxContainer > 0 && sz > r.maxContainer {
		return 0, ErrContainerTooLarge
	}
	r.buf = rest
	return sz, nil
}

// ReadArrayStart reads an array start and reports whether it is
// indefinite-length.
func (r *Reader) ReadArrayStart() (sz uint64, indefinite bool, err error) {
	if err := r.checkIndefinite(majorArray); err != nil {
		return 0, false, err
	}
	if err := r.checkCanonicalArg(majorArray); err != nil {
		return 0, false, err
	}
	sz, indef, rest, err := ReadArrayStartBytes(r.buf)
	if err != nil {
		return 0, false, err
	}
	if r.maxContainer > 0 && sz > r.maxContainer {
		return 0, false, ErrContainerTooLarge
	}
	r.buf = rest
	return sz, indef, nil
}

// ReadMapHeader reads a definite-length map header.
func (r *Reader) ReadMapHeader() (uint64, error) {
	if err := r.checkCanonicalArg(majorMap); err != nil {
		return 0, err
	}
	sz, rest, err := ReadMapHeaderBytes(r.buf)
	if err != nil {
		return 0, err
	}
	if r.maxContainer > 0 && sz > r.maxContainer {
		return 0, ErrContainerTooLarge
	}
	r.buf = rest
	return sz, nil
}

// ReadMapStart reads a map start and reports whether it is
// indefinite-length.
func (r *Reader) ReadMapStart() (sz uint64, indefinite bool, err error) {
	if err := r.checkIndefinite(majorMap); err != nil {
		return 0, false, err
	}
	if err := r.checkCanonicalArg(majorMap); err != nil {
		return 0, false, err
	}
	sz, indef, rest, err := ReadMapStartBytes(r.buf)
	if err != nil {
		return 0, false, err
	}
	if r.maxContainer > 0 && sz > r.maxContainer {
		return 0, false, ErrContainerTooLarge
	}
	r.buf = rest
	return sz, indef, nil
}

// ReadBreak consumes a break byte if one is next.
func (r *Reader) ReadBreak() (bool, error) {
	rest, ok, err := ReadBreakBytes(r.buf)
	if err != nil {
		return false, err
	}
	r.buf = rest
	return ok, nil
}

// ReadBool reads a bool.
func (r *Reader) ReadBool() (bool, error) {
	v, rest, err := ReadBoolBytes(r.buf)
	if err != nil {
		return false, err
	}
	r.buf = rest
	return v, nil
}

// ReadNil reads a null value.
func (r *Reader) ReadNil() error {
	rest, err := ReadNilBytes(r.buf)
	if err != nil {
		return err
	}
	r.buf = rest
	return nil
}

// ReadInt64 reads an int64, enforcing canonical integer arguments in
// strict mode.
func (r *Reader) ReadInt64() (int64, error) {
	if len(r.buf) < 1 {
		return 0, ErrShortBytes
	}
	maj := getMajor(r.buf[0])
	if maj == majorUint || maj == majorNegInt {
		if err := r.checkCanonicalArg(maj); err != nil {
			return 0, err
		}
	}
	v, rest, err := ReadInt64Bytes(r.buf)
	if err != nil {
		return 0, err
	}
	r.buf = rest
	return v, nil
}

// ReadInt reads an int.
func (r *Reader) ReadInt() (int, error) {
	v, err := r.ReadInt64()
	return int(v), err
}

// ReadUint64 reads a uint64, enforcing canonical arguments in strict mode.
func (r *Reader) ReadUint64() (uint64, error) {
	if err := r.checkCanonicalArg(majorUint); err != nil {
		return 0, err
	}
	v, rest, err := ReadUint64Bytes(r.buf)
	if err != nil {
		return 0, err
	}
	r.buf = rest
	return v, nil
}

// ReadUint reads a uint.
func (r *Reader) ReadUint() (uint, error) {
	v, err := r.ReadUint64()
	return uint(v), err
}

// ReadString reads a text string. Strict mode enforces canonical length
// encoding; deterministic mode forbids the indefinite form.
func (r *Reader) ReadString() (string, error) {
	if err := r.checkIndefinite(majorText); err != nil {
		return "", err
	}
	if err := r.checkCanonicalArg(majorText); err != nil {
		return "", err
	}
	s, rest, err := ReadStringBytes(r.buf)
	if err != nil {
		return "", err
	}
	r.buf = rest
	return s, nil
}

// ReadStringZC reads a definite-length text string zero-copy. The
// returned bytes alias the reader's buffer.
func (r *Reader) ReadStringZC() ([]byte, error) {
	v, rest, err := ReadStringZC(r.buf)
	if err != nil {
		return nil, err
	}
	if ValidateUTF8OnDecode && !isUTF8Valid(v) {
		return nil, ErrInvalidUTF8
	}
	r.buf = rest
	return v, nil
}

// ReadBytes reads a byte string, copying it out of the buffer.
func (r *Reader) ReadBytes() ([]byte, error) {
	if err := r.checkIndefinite(majorBytes); err != nil {
		return nil, err
	}
	if err := r.checkCanonicalArg(majorBytes); err != nil {
		return nil, err
	}
	v, rest, err := ReadBytesBytes(r.buf, nil)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(v))
	copy(out, v)
	r.buf = rest
	return out, nil
}

// ReadBytesZC reads a definite-length byte string zero-copy.
func (r *Reader) ReadBytesZC() ([]byte, error) {
	if len(r.buf) < 1 {
		return nil, ErrShortBytes
	}
	if getMajor(r.buf[0]) != majorBytes || getAddInfo(r.buf[0]) == aiIndefinite {
		return nil, TypeError{Method: BinType, Encoded: getType(r.buf[0])}
	}
	v, rest, err := ReadBytesBytes(r.buf, nil)
	if err != nil {
		return nil, err
	}
	r.buf = rest
	return v, nil
}

// ReadFloat64 reads a float of any width as float64. In strict mode the
// wire encoding must be the shortest width that preserves the value.
func (r *Reader) ReadFloat64() (float64, error) {
	orig := r.buf
	v, rest, err := ReadFloatBytes(r.buf)
	if err != nil {
		return 0, err
	}
	if r.strict {
		canon := AppendFloatCanonical(nil, v)
		enc := orig[:len(orig)-len(rest)]
		if !bytes.Equal(enc, canon) {
			return 0, ErrNonCanonicalFloat
		}
	}
	r.buf = rest
	return v, nil
}

// ReadFloat32 reads a single-precision float.
func (r *Reader) ReadFloat32() (float32, error) {
	v, rest, err := ReadFloat32Bytes(r.buf)
	if err != nil {
		return 0, err
	}
	r.buf = rest
	return v, nil
}

// ReadTag reads a semantic tag head.
func (r *Reader) ReadTag() (uint64, error) {
	if err := r.checkCanonicalArg(majorTag); err != nil {
		return 0, err
	}
	tag, rest, err := ReadTagBytes(r.buf)
	if err != nil {
		return 0, err
	}
	r.buf = rest
	return tag, nil
}

// ReadValue reads the next item as a dynamic Value.
func (r *Reader) ReadValue() (Value, error) {
	v, rest, err := readValueDepth(r.buf, r.maxDepth)
	if err != nil {
		return Value{}, err
	}
	r.buf = rest
	return v, nil
}

// Skip discards the next item.
func (r *Reader) Skip() error {
	rest, err := skipDepth(r.buf, r.maxDepth)
	if err != nil {
		return err
	}
	r.buf = rest
	return nil
}
