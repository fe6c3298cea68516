package cbor

import (
	"bytes"
	"math"
	"math/big"
	"time"
)

// defaultMaxDepth bounds nesting for the depth-checked entry points
// (Skip, Validate, Value decoding) when no explicit limit is configured.
const defaultMaxDepth = 256

// ReadNilBytes reads a null value.
func ReadNilBytes(b []byte) ([]byte, error) {
	if len(b) < 1 {
		return b, ErrShortBytes
	}
	if b[0] != makeByte(majorSimple, simpleNull) {
		return b, ErrNotNil
	}
	return b[1:], nil
}

// IsNil reports whether the next item is null.
func IsNil(b []byte) bool {
	return len(b) > 0 && b[0] == makeByte(majorSimple, simpleNull)
}

// ReadBoolBytes reads a bool.
func ReadBoolBytes(b []byte) (bool, []byte, error) {
	if len(b) < 1 {
		return false, b, ErrShortBytes
	}
	switch b[0] {
	case makeByte(majorSimple, simpleTrue):
		return true, b[1:], nil
	case makeByte(majorSimple, simpleFalse):
		return false, b[1:], nil
	}
	return false, b, TypeError{Method: BoolType, Encoded: getType(b[0])}
}

// ReadInt64Bytes reads an integer of either sign into an int64.
// Arguments above math.MaxInt64 surface IntOverflow.
func ReadInt64Bytes(b []byte) (i int64, o []byte, err error) {
	if len(b) < 1 {
		return 0, b, ErrShortBytes
	}
	// Fast path: direct-encoded small non-negative integers.
	if b[0] <= 0x17 {
		return int64(b[0]), b[1:], nil
	}
	h, o, err := readHead(b)
	if err != nil {
		return 0, b, err
	}
	switch h.major {
	case majorUint:
		if h.arg > math.MaxInt64 {
			return 0, b, IntOverflow{Value: int64(h.arg), FailedBitsize: 64}
		}
		return int64(h.arg), o, nil
	case majorNegInt:
		if h.arg > math.MaxInt64 {
			return 0, b, IntOverflow{Value: -1, FailedBitsize: 64}
		}
		return -1 - int64(h.arg), o, nil
	default:
		return 0, b, badPrefix(h.major, majorUint)
	}
}

// ReadInt32Bytes reads an int32.
func ReadInt32Bytes(b []byte) (int32, []byte, error) {
	i64, o, err := ReadInt64Bytes(b)
	if err != nil {
		return 0, b, err
	}
	if i64 > math.MaxInt32 || i64 < math.MinInt32 {
		return 0, b, IntOverflow{Value: i64, FailedBitsize: 32}
	}
	return int32(i64), o, nil
}

// ReadInt16Bytes reads an int16.
func ReadInt16Bytes(b []byte) (int16, []byte, error) {
	i64, o, err := ReadInt64Bytes(b)
	if err != nil {
		return 0, b, err
	}
	if i64 > math.MaxInt16 || i64 < math.MinInt16 {
		return 0, b, IntOverflow{Value: i64, FailedBitsize: 16}
	}
	return int16(i64), o, nil
}

// ReadInt8Bytes reads an int8.
func ReadInt8Bytes(b []byte) (int8, []byte, error) {
	i64, o, err := ReadInt64Bytes(b)
	if err != nil {
		return 0, b, err
	}
	if i64 > math.MaxInt8 || i64 < math.MinInt8 {
		return 0, b, IntOverflow{Value: i64, FailedBitsize: 8}
	}
	return int8(i64), o, nil
}

// ReadIntBytes reads an int.
func ReadIntBytes(b []byte) (int, []byte, error) {
	i64, o, err := ReadInt64Bytes(b)
	if err != nil {
		return 0, b, err
	}
	return int(i64), o, nil
}

// ReadUint64Bytes reads an unsigned integer. A major-1 item surfaces
// UintBelowZero.
func ReadUint64Bytes(b []byte) (u uint64, o []byte, err error) {
	if len(b) < 1 {
		return 0, b, ErrShortBytes
	}
	if b[0] <= 0x17 {
		return uint64(b[0]), b[1:], nil
	}
	h, o, err := readHead(b)
	if err != nil {
		return 0, b, err
	}
	switch h.major {
	case majorUint:
		return h.arg, o, nil
	case majorNegInt:
		v := int64(-1)
		if h.arg <= math.MaxInt64 {
			v = -1 - int64(h.arg)
		}
		return 0, b, UintBelowZero{Value: v}
	default:
		return 0, b, badPrefix(h.major, majorUint)
	}
}

// ReadUint32Bytes reads a uint32.
func ReadUint32Bytes(b []byte) (uint32, []byte, error) {
	u64, o, err := ReadUint64Bytes(b)
	if err != nil {
		return 0, b, err
	}
	if u64 > math.MaxUint32 {
		return 0, b, UintOverflow{Value: u64, FailedBitsize: 32}
	}
	return uint32(u64), o, nil
}

// ReadUint16Bytes reads a uint16.
func ReadUint16Bytes(b []byte) (uint16, []byte, error) {
	u64, o, err := ReadUint64Bytes(b)
	if err != nil {
		return 0, b, err
	}
	if u64 > math.MaxUint16 {
		return 0, b, UintOverflow{Value: u64, FailedBitsize: 16}
	}
	return uint16(u64), o, nil
}

// ReadUint8Bytes reads a uint8.
func ReadUint8Bytes(b []byte) (uint8, []byte, error) {
	u64, o, err := ReadUint64Bytes(b)
	if err != nil {
		return 0, b, err
	}
	if u64 > math.MaxUint8 {
		return 0, b, UintOverflow{Value: u64, FailedBitsize: 8}
	}
	return uint8(u64), o, nil
}

// ReadUintBytes reads a uint.
func ReadUintBytes(b []byte) (uint, []byte, error) {
	u64, o, err := ReadUint64Bytes(b)
	if err != nil {
		return 0, b, err
	}
	return uint(u64), o, nil
}

// readChunks reads the chunks of an indefinite-length string whose head
// has already been consumed, appending their payloads to out. Chunks must
// be definite-length strings of the matching major type.
func readChunks(b []byte, major uint8, out []byte) (v []byte, rest []byte, err error) {
	for {
		if len(b) < 1 {
			return nil, b, ErrShortBytes
		}
		if b[0] == breakByte {
			return out, b[1:], nil
		}
		if getMajor(b[0]) != major || getAddInfo(b[0]) == aiIndefinite {
			return nil, b, InvalidChunkError{Major: major, Lead: b[0]}
		}
		sz, o, err := readHeadExpect(b, major)
		if err != nil {
			return nil, b, err
		}
		if uint64(len(o)) < sz {
			return nil, b, ErrShortBytes
		}
		out = append(out, o[:sz]...)
		b = o[sz:]
	}
}

// ReadBytesBytes reads a byte string. Definite-length strings are
// returned as a zero-copy subslice of b; indefinite-length strings are
// assembled into scratch (which may be nil).
func ReadBytesBytes(b []byte, scratch []byte) (v []byte, o []byte, err error) {
	if len(b) < 1 {
		return nil, b, ErrShortBytes
	}
	if b[0] == makeByte(majorBytes, aiIndefinite) {
		return readChunks(b[1:], majorBytes, scratch[:0])
	}
	if getMajor(b[0]) != majorBytes {
		return nil, b, TypeError{Method: BinType, Encoded: getType(b[0])}
	}
	sz, o, err := readHeadExpect(b, majorBytes)
	if err != nil {
		return nil, b, err
	}
	if sz > uint64(len(o)) {
		return nil, b, ErrShortBytes
	}
	if sz == 0 {
		return scratch[:0], o, nil
	}
	return o[:sz], o[sz:], nil
}

// ReadStringZC reads a definite-length text string zero-copy, returning a
// subslice of the input. UTF-8 is not validated here.
func ReadStringZC(b []byte) (v []byte, o []byte, err error) {
	if len(b) < 1 {
		return nil, b, ErrShortBytes
	}
	if getMajor(b[0]) != majorText || getAddInfo(b[0]) == aiIndefinite {
		return nil, b, TypeError{Method: StrType, Encoded: getType(b[0])}
	}
	sz, o, err := readHeadExpect(b, majorText)
	if err != nil {
		return nil, b, err
	}
	if sz > uint64(len(o)) {
		return nil, b, ErrShortBytes
	}
	return o[:sz], o[sz:], nil
}

// ReadStringBytes reads a text string, assembling indefinite-length forms
// and validating UTF-8 on the final result.
func ReadStringBytes(b []byte) (s string, o []byte, err error) {
	if len(b) < 1 {
		return "", b, ErrShortBytes
	}
	if b[0] == makeByte(majorText, aiIndefinite) {
		v, o, err := readChunks(b[1:], majorText, nil)
		if err != nil {
			return "", b, err
		}
		if ValidateUTF8OnDecode && !isUTF8Valid(v) {
			return "", b, ErrInvalidUTF8
		}
		return string(v), o, nil
	}
	v, o, err := ReadStringZC(b)
	if err != nil {
		return "", b, err
	}
	if ValidateUTF8OnDecode && !isUTF8Valid(v) {
		return "", b, ErrInvalidUTF8
	}
	return string(v), o, nil
}

// ReadArrayHeaderBytes reads a definite-length array header.
func ReadArrayHeaderBytes(b []byte) (sz uint64, o []byte, err error) {
	return readHeadExpect(b, majorArray)
}

// ReadMapHeaderBytes reads a definite-length map header.
func ReadMapHeaderBytes(b []byte) (sz uint64, o []byte, err error) {
	return readHeadExpect(b, majorMap)
}

// ReadArrayStartBytes reads an array start and reports whether it is
// indefinite-length. For an indefinite array sz is zero and rest points
// just past the header byte.
func ReadArrayStartBytes(b []byte) (sz uint64, indefinite bool, rest []byte, err error) {
	if len(b) < 1 {
		return 0, false, b, ErrShortBytes
	}
	if b[0] == makeByte(majorArray, aiIndefinite) {
		return 0, true, b[1:], nil
	}
	sz, rest, err = readHeadExpect(b, majorArray)
	return sz, false, rest, err
}

// ReadMapStartBytes reads a map start and reports whether it is
// indefinite-length.
func ReadMapStartBytes(b []byte) (sz uint64, indefinite bool, rest []byte, err error) {
	if len(b) < 1 {
		return 0, false, b, ErrShortBytes
	}
	if b[0] == makeByte(majorMap, aiIndefinite) {
		return 0, true, b[1:], nil
	}
	sz, rest, err = readHeadExpect(b, majorMap)
	return sz, false, rest, err
}

// ReadBreakBytes consumes a break byte if one is next.
func ReadBreakBytes(b []byte) (rest []byte, ok bool, err error) {
	if len(b) < 1 {
		return b, false, ErrShortBytes
	}
	if b[0] == breakByte {
		return b[1:], true, nil
	}
	return b, false, nil
}

// ReadTagBytes reads a semantic tag head (major 6). The tagged item
// follows in the returned remainder.
func ReadTagBytes(b []byte) (tag uint64, o []byte, err error) {
	return readHeadExpect(b, majorTag)
}

// ReadSimpleValue reads a simple value: 0..23 from the initial byte or
// 32..255 following an 0xf8 prefix. Two-byte simple values below 32 are
// malformed per RFC 8949 §3.3.
func ReadSimpleValue(b []byte) (val uint8, o []byte, err error) {
	if len(b) < 1 {
		return 0, b, ErrShortBytes
	}
	if getMajor(b[0]) != majorSimple {
		return 0, b, badPrefix(getMajor(b[0]), majorSimple)
	}
	ai := getAddInfo(b[0])
	switch {
	case ai <= aiDirect:
		return ai, b[1:], nil
	case ai == aiUint8:
		if len(b) < 2 {
			return 0, b, ErrShortBytes
		}
		if b[1] < 32 {
			return 0, b, MalformedHeadError{Lead: b[0]}
		}
		return b[1], b[2:], nil
	default:
		return 0, b, MalformedHeadError{Lead: b[0]}
	}
}

// ReadDurationBytes reads a time.Duration from an integer item.
func ReadDurationBytes(b []byte) (time.Duration, []byte, error) {
	i64, o, err := ReadInt64Bytes(b)
	if err != nil {
		return 0, b, err
	}
	return time.Duration(i64), o, nil
}

// ReadTimeBytes reads a tag 1 epoch timestamp into a time.Time.
func ReadTimeBytes(b []byte) (t time.Time, o []byte, err error) {
	tag, o, err := ReadTagBytes(b)
	if err != nil {
		return time.Time{}, b, err
	}
	if tag != tagEpochDateTime {
		return time.Time{}, b, TypeError{Method: TagType, Encoded: TagType}
	}
	if len(o) < 1 {
		return time.Time{}, b, ErrShortBytes
	}
	switch getMajor(o[0]) {
	case majorUint, majorNegInt:
		sec, o2, err := ReadInt64Bytes(o)
		if err != nil {
			return time.Time{}, b, err
		}
		return time.Unix(sec, 0).UTC(), o2, nil
	case majorSimple:
		f, o2, err := ReadFloatBytes(o)
		if err != nil {
			return time.Time{}, b, err
		}
		sec := math.Floor(f)
		ns := int64(math.Round((f - sec) * 1e9))
		secs := int64(sec)
		if ns >= 1e9 {
			secs++
			ns -= 1e9
		}
		return time.Unix(secs, ns).UTC(), o2, nil
	default:
		return time.Time{}, b, TypeError{Method: FloatType, Encoded: getType(o[0])}
	}
}

// ReadRFC3339TimeBytes reads a tag 0 RFC 3339 string into a time.Time.
func ReadRFC3339TimeBytes(b []byte) (t time.Time, o []byte, err error) {
	tag, o, err := ReadTagBytes(b)
	if err != nil {
		return time.Time{}, b, err
	}
	if tag != tagDateTimeString {
		return time.Time{}, b, TypeError{Method: TagType, Encoded: TagType}
	}
	s, o2, err := ReadStringBytes(o)
	if err != nil {
		return time.Time{}, b, err
	}
	tt, perr := time.Parse(time.RFC3339Nano, s)
	if perr != nil {
		return time.Time{}, b, perr
	}
	return tt, o2, nil
}

// ReadBigIntBytes reads an integer of any size: plain majors 0/1 or
// bignum tags 2/3.
func ReadBigIntBytes(b []byte) (z *big.Int, o []byte, err error) {
	if len(b) < 1 {
		return nil, b, ErrShortBytes
	}
	switch getMajor(b[0]) {
	case majorUint:
		arg, o, err := readHeadExpect(b, majorUint)
		if err != nil {
			return nil, b, err
		}
		return new(big.Int).SetUint64(arg), o, nil
	case majorNegInt:
		arg, o, err := readHeadExpect(b, majorNegInt)
		if err != nil {
			return nil, b, err
		}
		z := new(big.Int).SetUint64(arg)
		z.Add(z, big.NewInt(1))
		z.Neg(z)
		return z, o, nil
	case majorTag:
		tag, o, err := ReadTagBytes(b)
		if err != nil {
			return nil, b, err
		}
		if tag != tagPosBignum && tag != tagNegBignum {
			return nil, b, TypeError{Method: TagType, Encoded: TagType}
		}
		bs, o2, err := ReadBytesBytes(o, nil)
		if err != nil {
			return nil, b, err
		}
		mag := new(big.Int).SetBytes(bs)
		if tag == tagNegBignum {
			mag.Add(mag, big.NewInt(1))
			mag.Neg(mag)
		}
		return mag, o2, nil
	default:
		return nil, b, TypeError{Method: IntType, Encoded: getType(b[0])}
	}
}

// StripSelfDescribe consumes a leading self-describe tag (0xd9 0xd9 0xf7)
// if present and reports whether it was found.
func StripSelfDescribe(b []byte) (rest []byte, found bool, err error) {
	if len(b) < 1 {
		return b, false, ErrShortBytes
	}
	if getMajor(b[0]) != majorTag {
		return b, false, nil
	}
	tag, o, err := ReadTagBytes(b)
	if err != nil {
		return b, false, err
	}
	if tag != TagSelfDescribe {
		return b, false, nil
	}
	return o, true, nil
}

// Skip skips over the next CBOR item, enforcing the default nesting limit.
func Skip(b []byte) ([]byte, error) {
	return skipDepth(b, defaultMaxDepth)
}

// skipDepth skips the next item with the given remaining depth budget.
func skipDepth(b []byte, depth int) ([]byte, error) {
	if depth <= 0 {
		return b, ErrRecursion
	}
	h, o, err := readHead(b)
	if err != nil {
		return b, err
	}
	switch h.major {
	case majorUint, majorNegInt:
		return o, nil

	case majorTag:
		return skipDepth(o, depth-1)

	case majorBytes, majorText:
		if h.indef {
			_, rest, err := readChunks(o, h.major, nil)
			return rest, err
		}
		if h.arg > uint64(len(o)) {
			return b, ErrShortBytes
		}
		return o[h.arg:], nil

	case majorArray, majorMap:
		per := 1
		if h.major == majorMap {
			per = 2
		}
		if h.indef {
			for {
				if len(o) < 1 {
					return b, ErrShortBytes
				}
				if o[0] == breakByte {
					return o[1:], nil
				}
				for i := 0; i < per; i++ {
					o, err = skipDepth(o, depth-1)
					if err != nil {
						return b, err
					}
				}
			}
		}
		for i := uint64(0); i < h.arg; i++ {
			for j := 0; j < per; j++ {
				o, err = skipDepth(o, depth-1)
				if err != nil {
					return b, err
				}
			}
		}
		return o, nil

	default: // majorSimple
		if h.indef {
			// a break with no enclosing indefinite container
			return b, ErrUnexpectedBreak
		}
		switch h.ai {
		case simpleFloat16:
			if len(b) < 3 {
				return b, ErrShortBytes
			}
			return b[3:], nil
		case simpleFloat32:
			if len(b) < 5 {
				return b, ErrShortBytes
			}
			return b[5:], nil
		case simpleFloat64:
			if len(b) < 9 {
				return b, ErrShortBytes
			}
			return b[9:], nil
		case aiUint8:
			if len(b) < 2 {
				return b, ErrShortBytes
			}
			if b[1] < 32 {
				return b, MalformedHeadError{Lead: b[0]}
			}
			return b[2:], nil
		default:
			return b[1:], nil
		}
	}
}

// ForEachSequence calls onItem for each item in a flat CBOR sequence.
// Each slice passed to onItem references b and contains exactly one item.
func ForEachSequence(b []byte, onItem func(item []byte) error) error {
	p := b
	for len(p) > 0 {
		r, err := Skip(p)
		if err != nil {
			return err
		}
		if err := onItem(p[:len(p)-len(r)]); err != nil {
			return err
		}
		p = r
	}
	return nil
}

// SplitSequence splits a flat CBOR sequence into per-item subslices of b.
func SplitSequence(b []byte) (out [][]byte, err error) {
	err = ForEachSequence(b, func(it []byte) error { out = append(out, it); return nil })
	return out, err
}

// ReadOrderedMapBytes reads the next map (definite or indefinite) and
// returns its pairs in wire order. Key and Value slices are copied.
func ReadOrderedMapBytes(b []byte) (pairs []RawPair, o []byte, err error) {
	sz, indef, p, err := ReadMapStartBytes(b)
	if err != nil {
		return nil, b, err
	}
	var scratch []byte
	capture := func(q []byte) ([]byte, []byte, error) {
		r, err := Skip(q)
		if err != nil {
			return nil, q, err
		}
		start := len(scratch)
		scratch = append(scratch, q[:len(q)-len(r)]...)
		return scratch[start:], r, nil
	}
	appendPair := func(q []byte) ([]byte, error) {
		k, r, err := capture(q)
		if err != nil {
			return q, err
		}
		v, r, err := capture(r)
		if err != nil {
			return q, err
		}
		pairs = append(pairs, RawPair{Key: k, Value: v})
		return r, nil
	}
	if indef {
		for {
			if len(p) < 1 {
				return nil, b, ErrShortBytes
			}
			if p[0] == breakByte {
				return pairs, p[1:], nil
			}
			p, err = appendPair(p)
			if err != nil {
				return nil, b, err
			}
		}
	}
	pairs = make([]RawPair, 0, minInt(int(sz), 1024))
	for i := uint64(0); i < sz; i++ {
		p, err = appendPair(p)
		if err != nil {
			return nil, b, err
		}
	}
	return pairs, p, nil
}

// ReadMapNoDupBytes checks that the next item is a map without duplicate
// keys, comparing keys by their raw encodings, and returns the bytes after
// the map.
func ReadMapNoDupBytes(b []byte) (o []byte, err error) {
	sz, indef, p, err := ReadMapStartBytes(b)
	if err != nil {
		return b, err
	}
	seen := make(map[string]struct{}, minInt(int(sz), 1024))
	checkPair := func(q []byte) ([]byte, error) {
		r, err := Skip(q)
		if err != nil {
			return q, err
		}
		key := string(q[:len(q)-len(r)])
		if _, ok := seen[key]; ok {
			return q, ErrDuplicateMapKey
		}
		seen[key] = struct{}{}
		return Skip(r)
	}
	if indef {
		for {
			if len(p) < 1 {
				return b, ErrShortBytes
			}
			if p[0] == breakByte {
				return p[1:], nil
			}
			p, err = checkPair(p)
			if err != nil {
				return b, err
			}
		}
	}
	for i := uint64(0); i < sz; i++ {
		p, err = checkPair(p)
		if err != nil {
			return b, err
		}
	}
	return p, nil
}

// ReadMapCanonicalBytes checks that the next item is a map whose keys
// arrive in strictly ascending canonical order (which also excludes
// duplicates), and returns the bytes after the map. This is the optional
// canonical-order decode check; the generic decode paths do not enforce
// ordering.
func ReadMapCanonicalBytes(b []byte) (o []byte, err error) {
	sz, indef, p, err := ReadMapStartBytes(b)
	if err != nil {
		return b, err
	}
	var prev []byte
	checkPair := func(q []byte) ([]byte, error) {
		r, err := Skip(q)
		if err != nil {
			return q, err
		}
		key := q[:len(q)-len(r)]
		if prev != nil {
			switch bytes.Compare(prev, key) {
			case 0:
				return q, ErrDuplicateMapKey
			case 1:
				return q, ErrMapNotCanonical
			}
		}
		prev = append(prev[:0], key...)
		return Skip(r)
	}
	if indef {
		for {
			if len(p) < 1 {
				return b, ErrShortBytes
			}
			if p[0] == breakByte {
				return p[1:], nil
			}
			p, err = checkPair(p)
			if err != nil {
				return b, err
			}
		}
	}
	for i := uint64(0); i < sz; i++ {
		p, err = checkPair(p)
		if err != nil {
			return b, err
		}
	}
	return p, nil
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
