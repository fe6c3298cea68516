package cbor

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"math"
	"strconv"
)

// ToJSON converts the next CBOR item into its JSON rendering and returns
// the JSON bytes and the remainder of the input.
//
// The mapping is modelled on RFC 8949 §6.1 but differs from it in places:
// byte strings become standard (padded) base64 strings rather than
// base64url, tag 0/1 timestamps surface their content, bignums
// become number literals, other tags are unwrapped to their content, and
// non-finite floats (which JSON cannot express) become null. Map keys
// that are not text are rendered and then quoted.
func ToJSON(b []byte) (out []byte, rest []byte, err error) {
	bb := GetByteBuffer()
	defer PutByteBuffer(bb)
	rest, err = toJSON(bb, b, defaultMaxDepth)
	if err != nil {
		return nil, b, err
	}
	out = make([]byte, bb.Len())
	copy(out, bb.Bytes())
	return out, rest, nil
}

func toJSON(buf *ByteBuffer, b []byte, depth int) ([]byte, error) {
	if depth <= 0 {
		return b, ErrRecursion
	}
	h, o, err := readHead(b)
	if err != nil {
		return b, err
	}

	switch h.major {
	case majorUint:
		buf.WriteString(strconv.FormatUint(h.arg, 10))
		return o, nil

	case majorNegInt:
		if h.arg > math.MaxInt64 {
			z, o2, err := ReadBigIntBytes(b)
			if err != nil {
				return b, err
			}
			buf.WriteString(z.String())
			return o2, nil
		}
		buf.WriteString(strconv.FormatInt(-1-int64(h.arg), 10))
		return o, nil

	case majorBytes:
		bs, o, err := ReadBytesBytes(b, nil)
		if err != nil {
			return b, err
		}
		buf.WriteByte('"')
		d := buf.Extend(base64.StdEncoding.EncodedLen(len(bs)))
		base64.StdEncoding.Encode(d, bs)
		buf.WriteByte('"')
		return o, nil

	case majorText:
		s, o, err := ReadStringBytes(b)
		if err != nil {
			return b, err
		}
		enc, jerr := json.Marshal(s)
		if jerr != nil {
			return b, jerr
		}
		buf.Write(enc)
		return o, nil

	case majorArray:
		buf.WriteByte('[')
		first := true
		emit := func(p []byte) ([]byte, error) {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			return toJSON(buf, p, depth-1)
		}
		if h.indef {
			for {
				if len(o) < 1 {
					return b, ErrShortBytes
				}
				if o[0] == breakByte {
					o = o[1:]
					break
				}
				o, err = emit(o)
				if err != nil {
					return b, err
				}
			}
		} else {
			for i := uint64(0); i < h.arg; i++ {
				o, err = emit(o)
				if err != nil {
					return b, err
				}
			}
		}
		buf.WriteByte(']')
		return o, nil

	case majorMap:
		buf.WriteByte('{')
		first := true
		emitPair := func(p []byte) ([]byte, error) {
			if !first {
				buf.WriteByte(',')
			}
			first = false
			kb := GetByteBuffer()
			p, err := toJSON(kb, p, depth-1)
			if err != nil {
				PutByteBuffer(kb)
				return p, err
			}
			k := kb.Bytes()
			if len(k) > 0 && k[0] == '"' {
				buf.Write(k)
			} else {
				// non-text key: quote its JSON rendering
				q, jerr := json.Marshal(string(k))
				if jerr != nil {
					PutByteBuffer(kb)
					return p, jerr
				}
				buf.Write(q)
			}
			PutByteBuffer(kb)
			buf.WriteByte(':')
			return toJSON(buf, p, depth-1)
		}
		if h.indef {
			for {
				if len(o) < 1 {
					return b, ErrShortBytes
				}
				if o[0] == breakByte {
					o = o[1:]
					break
				}
				o, err = emitPair(o)
				if err != nil {
					return b, err
				}
			}
		} else {
			for i := uint64(0); i < h.arg; i++ {
				o, err = emitPair(o)
				if err != nil {
					return b, err
				}
			}
		}
		buf.WriteByte('}')
		return o, nil

	case majorTag:
		switch h.arg {
		case tagPosBignum, tagNegBignum:
			z, o2, err := ReadBigIntBytes(b)
			if err != nil {
				return b, err
			}
			buf.WriteString(z.String())
			return o2, nil
		default:
			// tags are unwrapped to their content
			return toJSON(buf, o, depth-1)
		}

	default: // majorSimple
		if h.indef {
			return b, ErrUnexpectedBreak
		}
		switch h.ai {
		case simpleFalse:
			buf.WriteString("false")
			return o, nil
		case simpleTrue:
			buf.WriteString("true")
			return o, nil
		case simpleNull, simpleUndefined:
			buf.WriteString("null")
			return o, nil
		case simpleFloat16, simpleFloat32, simpleFloat64:
			f, o, err := ReadFloatBytes(b)
			if err != nil {
				return b, err
			}
			if math.IsNaN(f) || math.IsInf(f, 0) {
				buf.WriteString("null")
			} else {
				buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
			}
			return o, nil
		default:
			sv, o, err := ReadSimpleValue(b)
			if err != nil {
				return b, err
			}
			buf.WriteString(strconv.Itoa(int(sv)))
			return o, nil
		}
	}
}

// FromJSON converts one JSON document into canonical CBOR, appending to
// dst. JSON numbers become integers when they parse exactly as int64 and
// doubles otherwise; objects become canonically ordered maps with text
// keys.
func FromJSON(dst []byte, src []byte) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(src))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return dst, err
	}
	return appendJSONValue(dst, v)
}

func appendJSONValue(dst []byte, v any) ([]byte, error) {
	switch x := v.(type) {
	case nil:
		return AppendNil(dst), nil
	case bool:
		return AppendBool(dst, x), nil
	case string:
		return AppendString(dst, x), nil
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return AppendInt64(dst, i), nil
		}
		f, err := x.Float64()
		if err != nil {
			return dst, err
		}
		return AppendFloat64(dst, f), nil
	case []any:
		dst = AppendArrayHeader(dst, uint64(len(x)))
		var err error
		for _, e := range x {
			dst, err = appendJSONValue(dst, e)
			if err != nil {
				return dst, err
			}
		}
		return dst, nil
	case map[string]any:
		return AppendMapCanonical(dst, x,
			func(b []byte, k string) []byte { return AppendString(b, k) },
			appendJSONValue)
	default:
		return dst, &ErrUnsupportedType{Type: "json"}
	}
}
