package cbor

// ValidateWellFormed checks that the next item in b is well-formed per
// RFC 8949 and returns the remaining bytes. It enforces:
//   - structural correctness of containers, tags and simple values
//   - UTF-8 validity of text strings
//   - reserved additional-info values 28-30 rejected
//   - chunks of indefinite strings matching their enclosing major type
//   - the default nesting limit
func ValidateWellFormed(b []byte) (rest []byte, err error) {
	return validateWellFormed(b, defaultMaxDepth)
}

// ValidateDocument validates every item in b until the input is
// exhausted.
func ValidateDocument(b []byte) error {
	var err error
	for len(b) > 0 {
		b, err = validateWellFormed(b, defaultMaxDepth)
		if err != nil {
			return err
		}
	}
	return nil
}

func validateWellFormed(b []byte, depth int) ([]byte, error) {
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
		return validateWellFormed(o, depth-1)

	case majorBytes:
		if h.indef {
			_, rest, err := readChunks(o, majorBytes, nil)
			return rest, err
		}
		if h.arg > uint64(len(o)) {
			return b, ErrShortBytes
		}
		return o[h.arg:], nil

	case majorText:
		if h.indef {
			// every chunk must be valid text; validate each in place
			p := o
			for {
				if len(p) < 1 {
					return b, ErrShortBytes
				}
				if p[0] == breakByte {
					return p[1:], nil
				}
				if getMajor(p[0]) != majorText || getAddInfo(p[0]) == aiIndefinite {
					return b, InvalidChunkError{Major: majorText, Lead: p[0]}
				}
				chunk, q, err := ReadStringZC(p)
				if err != nil {
					return b, err
				}
				if !isUTF8Valid(chunk) {
					return b, ErrInvalidUTF8
				}
				p = q
			}
		}
		if h.arg > uint64(len(o)) {
			return b, ErrShortBytes
		}
		if !isUTF8Valid(o[:h.arg]) {
			return b, ErrInvalidUTF8
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
					o, err = validateWellFormed(o, depth-1)
					if err != nil {
						return b, err
					}
				}
			}
		}
		for i := uint64(0); i < h.arg; i++ {
			for j := 0; j < per; j++ {
				o, err = validateWellFormed(o, depth-1)
				if err != nil {
					return b, err
				}
			}
		}
		return o, nil

	default: // majorSimple
		if h.indef {
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
