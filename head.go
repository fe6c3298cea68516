package cbor

import (
	"encoding/binary"
	"math"
)

var be = binary.BigEndian

// head is the decoded form of a CBOR item head: major type, additional
// info, the unsigned argument, and whether the item is indefinite-length.
// For an indefinite head the argument is zero. A break (0xff) decodes as
// major 7 with indefinite set.
type head struct {
	major uint8
	ai    uint8
	arg   uint64
	indef bool
}

// appendHead appends the head for (major, argument) using the shortest
// additional-info encoding that fits the argument.
func appendHead(b []byte, major uint8, arg uint64) []byte {
	switch {
	case arg <= aiDirect:
		return append(b, makeByte(major, uint8(arg)))
	case arg <= math.MaxUint8:
		o, n := ensure(b, 2)
		o[n] = makeByte(major, aiUint8)
		o[n+1] = uint8(arg)
		return o
	case arg <= math.MaxUint16:
		o, n := ensure(b, 3)
		o[n] = makeByte(major, aiUint16)
		be.PutUint16(o[n+1:], uint16(arg))
		return o
	case arg <= math.MaxUint32:
		o, n := ensure(b, 5)
		o[n] = makeByte(major, aiUint32)
		be.PutUint32(o[n+1:], uint32(arg))
		return o
	default:
		o, n := ensure(b, 9)
		o[n] = makeByte(major, aiUint64)
		be.PutUint64(o[n+1:], arg)
		return o
	}
}

// headSize returns the encoded size in bytes of the head for arg.
func headSize(arg uint64) int {
	switch {
	case arg <= aiDirect:
		return 1
	case arg <= math.MaxUint8:
		return 2
	case arg <= math.MaxUint16:
		return 3
	case arg <= math.MaxUint32:
		return 5
	default:
		return 9
	}
}

// appendIndefiniteHead appends the indefinite-length head for a major
// type. Only majors 2-5 have an indefinite form; the caller is trusted.
func appendIndefiniteHead(b []byte, major uint8) []byte {
	return append(b, makeByte(major, aiIndefinite))
}

// AppendBreak appends the break stop code (0xff) terminating an
// indefinite-length container.
func AppendBreak(b []byte) []byte {
	return append(b, breakByte)
}

// readHead reads one item head from b. It rejects the reserved
// additional-info values 28-30 with a MalformedHeadError and ai=31 on the
// integer and tag majors, which have no indefinite form. A break byte is
// returned as major 7 with indef set; distinguishing a legal terminator
// from an unexpected break is the caller's job.
func readHead(b []byte) (h head, rest []byte, err error) {
	if len(b) < 1 {
		return h, b, ErrShortBytes
	}
	lead := b[0]
	h.major = getMajor(lead)
	h.ai = getAddInfo(lead)

	switch {
	case h.ai <= aiDirect:
		h.arg = uint64(h.ai)
		return h, b[1:], nil
	case h.ai == aiUint8:
		if len(b) < 2 {
			return h, b, ErrShortBytes
		}
		h.arg = uint64(b[1])
		return h, b[2:], nil
	case h.ai == aiUint16:
		if len(b) < 3 {
			return h, b, ErrShortBytes
		}
		h.arg = uint64(be.Uint16(b[1:]))
		return h, b[3:], nil
	case h.ai == aiUint32:
		if len(b) < 5 {
			return h, b, ErrShortBytes
		}
		h.arg = uint64(be.Uint32(b[1:]))
		return h, b[5:], nil
	case h.ai == aiUint64:
		if len(b) < 9 {
			return h, b, ErrShortBytes
		}
		h.arg = be.Uint64(b[1:])
		return h, b[9:], nil
	case h.ai == aiIndefinite:
		switch h.major {
		case majorBytes, majorText, majorArray, majorMap, majorSimple:
			h.indef = true
			return h, b[1:], nil
		default:
			// majors 0, 1 and 6 have no indefinite form
			return h, b, MalformedHeadError{Lead: lead}
		}
	default:
		// ai 28, 29, 30 are reserved
		return h, b, MalformedHeadError{Lead: lead}
	}
}

// readHeadExpect reads a head and checks the major type, rejecting
// indefinite forms. Used by the integer and tag read paths.
func readHeadExpect(b []byte, major uint8) (arg uint64, rest []byte, err error) {
	h, rest, err := readHead(b)
	if err != nil {
		return 0, b, err
	}
	if h.major != major {
		return 0, b, badPrefix(h.major, major)
	}
	if h.indef {
		return 0, b, MalformedHeadError{Lead: b[0]}
	}
	return h.arg, rest, nil
}

// isCanonicalHead reports whether a decoded head used the shortest
// additional-info encoding for its argument.
func isCanonicalHead(h head) bool {
	if h.indef {
		return true
	}
	switch h.ai {
	case aiUint8:
		return h.arg > aiDirect
	case aiUint16:
		return h.arg > math.MaxUint8
	case aiUint32:
		return h.arg > math.MaxUint16
	case aiUint64:
		return h.arg > math.MaxUint32
	default:
		return true
	}
}

// ensure grows b by sz bytes and returns the extended slice together with
// the offset of the newly reserved region.
func ensure(b []byte, sz int) ([]byte, int) {
	l := len(b)
	c := cap(b)
	if c-l < sz {
		o := make([]byte, (2*c)+sz)
		n := copy(o, b)
		return o[:n+sz], n
	}
	return b[:l+sz], l
}
