package cbor

import (
	"encoding/hex"
	"math"
	"strconv"
)

// Diag renders the next item in RFC 8949 §8 diagnostic notation and
// returns the remaining bytes.
func Diag(b []byte) (string, []byte, error) {
	bb := GetByteBuffer()
	defer PutByteBuffer(bb)
	rest, err := diagOne(bb, b, defaultMaxDepth)
	if err != nil {
		return "", b, err
	}
	return string(bb.Bytes()), rest, nil
}

// DiagDocument renders every item in b, separated by newlines.
func DiagDocument(b []byte) (string, error) {
	bb := GetByteBuffer()
	defer PutByteBuffer(bb)
	first := true
	for len(b) > 0 {
		if !first {
			bb.WriteByte('\n')
		}
		first = false
		var err error
		b, err = diagOne(bb, b, defaultMaxDepth)
		if err != nil {
			return "", err
		}
	}
	return string(bb.Bytes()), nil
}

func diagOne(buf *ByteBuffer, b []byte, depth int) ([]byte, error) {
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
		if h.indef {
			return diagChunks(buf, o, majorBytes)
		}
		bs, o, err := ReadBytesBytes(b, nil)
		if err != nil {
			return b, err
		}
		diagHex(buf, bs)
		return o, nil

	case majorText:
		if h.indef {
			return diagChunks(buf, o, majorText)
		}
		s, o, err := ReadStringBytes(b)
		if err != nil {
			return b, err
		}
		buf.WriteString(strconv.Quote(s))
		return o, nil

	case majorArray:
		buf.WriteByte('[')
		if h.indef {
			buf.WriteString("_ ")
		}
		first := true
		more := func() bool {
			if h.indef {
				return len(o) > 0 && o[0] != breakByte
			}
			return h.arg > 0
		}
		for more() {
			if !first {
				buf.WriteString(", ")
			}
			first = false
			o, err = diagOne(buf, o, depth-1)
			if err != nil {
				return b, err
			}
			if !h.indef {
				h.arg--
			}
		}
		if h.indef {
			if len(o) < 1 {
				return b, ErrShortBytes
			}
			o = o[1:]
		}
		buf.WriteByte(']')
		return o, nil

	case majorMap:
		buf.WriteByte('{')
		if h.indef {
			buf.WriteString("_ ")
		}
		first := true
		more := func() bool {
			if h.indef {
				return len(o) > 0 && o[0] != breakByte
			}
			return h.arg > 0
		}
		for more() {
			if !first {
				buf.WriteString(", ")
			}
			first = false
			o, err = diagOne(buf, o, depth-1)
			if err != nil {
				return b, err
			}
			buf.WriteString(": ")
			o, err = diagOne(buf, o, depth-1)
			if err != nil {
				return b, err
			}
			if !h.indef {
				h.arg--
			}
		}
		if h.indef {
			if len(o) < 1 {
				return b, ErrShortBytes
			}
			o = o[1:]
		}
		buf.WriteByte('}')
		return o, nil

	case majorTag:
		buf.WriteString(strconv.FormatUint(h.arg, 10))
		buf.WriteByte('(')
		o, err = diagOne(buf, o, depth-1)
		if err != nil {
			return b, err
		}
		buf.WriteByte(')')
		return o, nil

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
		case simpleNull:
			buf.WriteString("null")
			return o, nil
		case simpleUndefined:
			buf.WriteString("undefined")
			return o, nil
		case simpleFloat16, simpleFloat32, simpleFloat64:
			f, o, err := ReadFloatBytes(b)
			if err != nil {
				return b, err
			}
			diagFloat(buf, f)
			return o, nil
		default:
			sv, o, err := ReadSimpleValue(b)
			if err != nil {
				return b, err
			}
			buf.WriteString("simple(" + strconv.Itoa(int(sv)) + ")")
			return o, nil
		}
	}
}

// diagChunks renders an indefinite-length string as (_ chunk, chunk).
func diagChunks(buf *ByteBuffer, b []byte, major uint8) ([]byte, error) {
	buf.WriteString("(_ ")
	first := true
	for {
		if len(b) < 1 {
			return b, ErrShortBytes
		}
		if b[0] == breakByte {
			buf.WriteByte(')')
			return b[1:], nil
		}
		if getMajor(b[0]) != major || getAddInfo(b[0]) == aiIndefinite {
			return b, InvalidChunkError{Major: major, Lead: b[0]}
		}
		if !first {
			buf.WriteString(", ")
		}
		first = false
		if major == majorBytes {
			bs, o, err := ReadBytesBytes(b, nil)
			if err != nil {
				return b, err
			}
			diagHex(buf, bs)
			b = o
		} else {
			s, o, err := ReadStringBytes(b)
			if err != nil {
				return b, err
			}
			buf.WriteString(strconv.Quote(s))
			b = o
		}
	}
}

func diagHex(buf *ByteBuffer, bs []byte) {
	buf.WriteString("h'")
	d := buf.Extend(hex.EncodedLen(len(bs)))
	hex.Encode(d, bs)
	buf.WriteByte('\'')
}

func diagFloat(buf *ByteBuffer, f float64) {
	switch {
	case math.IsNaN(f):
		buf.WriteString("NaN")
	case math.IsInf(f, 1):
		buf.WriteString("Infinity")
	case math.IsInf(f, -1):
		buf.WriteString("-Infinity")
	default:
		s := strconv.FormatFloat(f, 'g', -1, 64)
		buf.WriteString(s)
		// diagnostic notation distinguishes floats from integers
		if !hasFloatMark(s) {
			buf.WriteString(".0")
		}
	}
}

func hasFloatMark(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == '.' || s[i] == 'e' || s[i] == 'E' {
			return true
		}
	}
	return false
}
