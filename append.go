package cbor

import (
	"bytes"
	"math/big"
	"sort"
	"time"
)

// AppendNil appends a null value.
func AppendNil(b []byte) []byte {
	return append(b, makeByte(majorSimple, simpleNull))
}

// AppendUndefined appends the undefined simple value.
func AppendUndefined(b []byte) []byte {
	return append(b, makeByte(majorSimple, simpleUndefined))
}

// AppendBool appends a bool.
func AppendBool(b []byte, v bool) []byte {
	if v {
		return append(b, makeByte(majorSimple, simpleTrue))
	}
	return append(b, makeByte(majorSimple, simpleFalse))
}

// AppendSimpleValue appends a generic simple value. Values 0..23 are
// carried in the additional info; values 32..255 follow a 0xf8 prefix.
// Values 24..31 are not representable here (reserved for the float and
// break encodings) and fall back to the two-byte form, which decoders
// reject; callers are expected to stay in the legal ranges.
func AppendSimpleValue(b []byte, val uint8) []byte {
	if val <= aiDirect {
		return append(b, makeByte(majorSimple, val))
	}
	o, n := ensure(b, 2)
	o[n] = makeByte(majorSimple, aiUint8)
	o[n+1] = val
	return o
}

// AppendInt64 appends an int64 using canonical CBOR integer encoding.
// Non-negative values use major 0; negative values use major 1 with
// argument -1-value.
func AppendInt64(b []byte, i int64) []byte {
	if i >= 0 {
		return appendHead(b, majorUint, uint64(i))
	}
	return appendHead(b, majorNegInt, uint64(-1-i))
}

// AppendInt appends an int.
func AppendInt(b []byte, i int) []byte { return AppendInt64(b, int64(i)) }

// AppendInt8 appends an int8.
func AppendInt8(b []byte, i int8) []byte { return AppendInt64(b, int64(i)) }

// AppendInt16 appends an int16.
func AppendInt16(b []byte, i int16) []byte { return AppendInt64(b, int64(i)) }

// AppendInt32 appends an int32.
func AppendInt32(b []byte, i int32) []byte { return AppendInt64(b, int64(i)) }

// AppendUint64 appends a uint64.
func AppendUint64(b []byte, u uint64) []byte { return appendHead(b, majorUint, u) }

// AppendUint appends a uint.
func AppendUint(b []byte, u uint) []byte { return AppendUint64(b, uint64(u)) }

// AppendUint8 appends a uint8.
func AppendUint8(b []byte, u uint8) []byte { return AppendUint64(b, uint64(u)) }

// AppendUint16 appends a uint16.
func AppendUint16(b []byte, u uint16) []byte { return AppendUint64(b, uint64(u)) }

// AppendUint32 appends a uint32.
func AppendUint32(b []byte, u uint32) []byte { return AppendUint64(b, uint64(u)) }

// AppendNegUint64 appends the negative integer -1-arg (major 1). It covers
// the portion of the CBOR integer range below math.MinInt64.
func AppendNegUint64(b []byte, arg uint64) []byte { return appendHead(b, majorNegInt, arg) }

// AppendBytes appends a definite-length byte string.
func AppendBytes(b []byte, data []byte) []byte {
	sz := uint64(len(data))
	o, n := ensure(b, headSize(sz)+len(data))
	o = o[:n]
	o = appendHead(o, majorBytes, sz)
	return append(o, data...)
}

// AppendString appends a definite-length text string. The string is
// assumed to be valid UTF-8, as all Go strings produced by correct code
// are; no validation is performed on encode.
func AppendString(b []byte, s string) []byte {
	sz := uint64(len(s))
	o, n := ensure(b, headSize(sz)+len(s))
	o = o[:n]
	o = appendHead(o, majorText, sz)
	return append(o, s...)
}

// AppendStringFromBytes appends a text string from a byte slice.
func AppendStringFromBytes(b []byte, data []byte) []byte {
	b = appendHead(b, majorText, uint64(len(data)))
	return append(b, data...)
}

// AppendArrayHeader appends a definite-length array header.
func AppendArrayHeader(b []byte, sz uint64) []byte {
	return appendHead(b, majorArray, sz)
}

// AppendMapHeader appends a definite-length map header.
func AppendMapHeader(b []byte, sz uint64) []byte {
	return appendHead(b, majorMap, sz)
}

// AppendArrayHeaderIndefinite appends an indefinite-length array header
// (0x9f). The caller emits elements and terminates with AppendBreak.
func AppendArrayHeaderIndefinite(b []byte) []byte {
	return appendIndefiniteHead(b, majorArray)
}

// AppendMapHeaderIndefinite appends an indefinite-length map header (0xbf).
func AppendMapHeaderIndefinite(b []byte) []byte {
	return appendIndefiniteHead(b, majorMap)
}

// AppendBytesHeaderIndefinite appends an indefinite-length byte string
// header (0x5f). Chunks appended afterwards must be definite-length byte
// strings, terminated with AppendBreak.
func AppendBytesHeaderIndefinite(b []byte) []byte {
	return appendIndefiniteHead(b, majorBytes)
}

// AppendTextHeaderIndefinite appends an indefinite-length text string
// header (0x7f).
func AppendTextHeaderIndefinite(b []byte) []byte {
	return appendIndefiniteHead(b, majorText)
}

// AppendBytesChunk appends one definite-length chunk inside an indefinite
// byte string.
func AppendBytesChunk(b []byte, chunk []byte) []byte { return AppendBytes(b, chunk) }

// AppendTextChunk appends one definite-length chunk inside an indefinite
// text string.
func AppendTextChunk(b []byte, chunk string) []byte { return AppendString(b, chunk) }

// AppendTag appends a semantic tag head (major 6). The caller appends the
// tagged item immediately after.
func AppendTag(b []byte, tag uint64) []byte {
	return appendHead(b, majorTag, tag)
}

// AppendTagged appends a tag followed by a pre-encoded item.
func AppendTagged(b []byte, tag uint64, item []byte) []byte {
	b = AppendTag(b, tag)
	return append(b, item...)
}

// AppendSelfDescribe appends the self-describe tag head (0xd9 0xd9 0xf7).
func AppendSelfDescribe(b []byte) []byte {
	return appendHead(b, majorTag, TagSelfDescribe)
}

// AppendDuration appends a time.Duration as its int64 nanosecond count.
func AppendDuration(b []byte, d time.Duration) []byte {
	return AppendInt64(b, int64(d))
}

// AppendTime appends a time.Time as tag 1 (epoch timestamp): an integer
// when the time has no sub-second component, a double otherwise.
func AppendTime(b []byte, t time.Time) []byte {
	b = AppendTag(b, tagEpochDateTime)
	sec := t.Unix()
	nsec := t.Nanosecond()
	if nsec == 0 {
		return AppendInt64(b, sec)
	}
	return AppendFloat64(b, float64(sec)+float64(nsec)/1e9)
}

// AppendRFC3339Time appends a tag 0 RFC 3339 date/time string.
func AppendRFC3339Time(b []byte, t time.Time) []byte {
	b = AppendTag(b, tagDateTimeString)
	return AppendString(b, t.Format(time.RFC3339Nano))
}

// AppendURI appends a tag 32 URI text string.
func AppendURI(b []byte, uri string) []byte {
	b = AppendTag(b, tagURI)
	return AppendString(b, uri)
}

// AppendEmbeddedCBOR appends tag 24 with a byte string holding an
// embedded CBOR item.
func AppendEmbeddedCBOR(b []byte, payload []byte) []byte {
	b = AppendTag(b, tagCBOR)
	return AppendBytes(b, payload)
}

// AppendBigInt appends a big integer. Values that fit the plain integer
// majors use them; the rest use bignum tags 2 and 3.
func AppendBigInt(b []byte, z *big.Int) []byte {
	if z == nil {
		return AppendNil(b)
	}
	if z.IsUint64() {
		return AppendUint64(b, z.Uint64())
	}
	if z.Sign() < 0 {
		// argument of major 1 / tag 3 is -1-value
		arg := new(big.Int).Neg(z)
		arg.Sub(arg, big.NewInt(1))
		if arg.IsUint64() {
			return AppendNegUint64(b, arg.Uint64())
		}
		b = AppendTag(b, tagNegBignum)
		return AppendBytes(b, arg.Bytes())
	}
	b = AppendTag(b, tagPosBignum)
	return AppendBytes(b, z.Bytes())
}

// AppendRawMap appends a map whose entries are pre-encoded key/value
// pairs, sorted into canonical order by bytewise comparison of the key
// encodings. The sort is stable; duplicate keys are forwarded in their
// original relative order rather than deduplicated.
func AppendRawMap(b []byte, pairs []RawPair) []byte {
	order := make([]int, len(pairs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return bytes.Compare(pairs[order[i]].Key, pairs[order[j]].Key) < 0
	})
	b = AppendMapHeader(b, uint64(len(pairs)))
	for _, i := range order {
		b = append(b, pairs[i].Key...)
		b = append(b, pairs[i].Value...)
	}
	return b
}

// AppendMapCanonical appends a map[K]V in canonical key order. encKey and
// encVal append the CBOR encodings of a key and a value. Keys are encoded
// once and reused for both sorting and output.
func AppendMapCanonical[K comparable, V any](b []byte, m map[K]V,
	encKey func(dst []byte, k K) []byte,
	encVal func(dst []byte, v V) ([]byte, error),
) ([]byte, error) {
	type item struct {
		keyEnc []byte
		val    V
	}
	items := make([]item, 0, len(m))
	// One growing scratch holds every encoded key; each keyEnc is a
	// subslice taken at encode time, so later growth must not reuse the
	// region (append-only).
	var scratch []byte
	for k, v := range m {
		prev := len(scratch)
		scratch = encKey(scratch, k)
		items = append(items, item{keyEnc: scratch[prev:], val: v})
	}
	sort.SliceStable(items, func(i, j int) bool {
		return bytes.Compare(items[i].keyEnc, items[j].keyEnc) < 0
	})
	b = AppendMapHeader(b, uint64(len(items)))
	var err error
	for i := range items {
		b = append(b, items[i].keyEnc...)
		b, err = encVal(b, items[i].val)
		if err != nil {
			return b, err
		}
	}
	return b, nil
}

// AppendMapStrStr appends a map[string]string in canonical key order.
func AppendMapStrStr(b []byte, m map[string]string) []byte {
	out, _ := AppendMapCanonical(b, m,
		func(dst []byte, k string) []byte { return AppendString(dst, k) },
		func(dst []byte, v string) ([]byte, error) { return AppendString(dst, v), nil })
	return out
}

// AppendMapStrAny appends a map[string]any in canonical key order.
func AppendMapStrAny(b []byte, m map[string]any) ([]byte, error) {
	return AppendMapCanonical(b, m,
		func(dst []byte, k string) []byte { return AppendString(dst, k) },
		func(dst []byte, v any) ([]byte, error) { return appendAny(dst, v) })
}

// AppendSequence appends pre-encoded CBOR items back to back. Each item
// must be a complete CBOR data item.
func AppendSequence(b []byte, items ...[]byte) []byte {
	for _, it := range items {
		b = append(b, it...)
	}
	return b
}
