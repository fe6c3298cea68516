package cbor

import (
	"errors"
	"io"

	"github.com/philhofer/fwd"
)

// Decoder reads a sequence of top-level CBOR items from an io.Reader.
// Each item is captured into a private scratch buffer before decoding, so
// decoded values never alias the source (the owning-reader strategy).
//
// Decode returns io.EOF when the source is exhausted cleanly between
// items; a source that ends mid-item surfaces ErrShortBytes. After an
// error the decoder is not resumable; construct a fresh one at a
// known-good offset.
type Decoder struct {
	r       *fwd.Reader
	opts    DecOptions
	scratch []byte
	off     int64 // total bytes consumed by completed items
	itemOff int64 // offset of the start of the last yielded item
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: fwd.NewReader(r)}
}

// SetOptions replaces the decoder's options.
func (d *Decoder) SetOptions(o DecOptions) { d.opts = o }

// InputOffset returns the number of source bytes consumed by completed
// items.
func (d *Decoder) InputOffset() int64 { return d.off }

// ItemOffset returns the byte offset at which the most recently yielded
// item started, for diagnostics.
func (d *Decoder) ItemOffset() int64 { return d.itemOff }

// Decode reads the next item into v.
func (d *Decoder) Decode(v any) error {
	raw, err := d.next()
	if err != nil {
		return err
	}
	return d.opts.Unmarshal(raw, v)
}

// DecodeValue reads the next item as a dynamic Value.
func (d *Decoder) DecodeValue() (Value, error) {
	raw, err := d.next()
	if err != nil {
		return Value{}, err
	}
	raw, _, err = StripSelfDescribe(raw)
	if err != nil {
		return Value{}, err
	}
	val, rest, err := ReadValueBytes(raw)
	if err != nil {
		return Value{}, err
	}
	if len(rest) != 0 {
		return Value{}, ErrTrailingBytes
	}
	return val, nil
}

// DecodeRaw reads the next item and returns its encoded bytes. The
// returned slice is valid until the next call on the decoder.
func (d *Decoder) DecodeRaw() (RawMessage, error) {
	return d.next()
}

// Skip discards the next item.
func (d *Decoder) Skip() error {
	_, err := d.next()
	return err
}

// next captures exactly one item into the scratch buffer. A clean EOF at
// an item boundary returns io.EOF; EOF anywhere inside an item returns
// ErrShortBytes.
func (d *Decoder) next() ([]byte, error) {
	if _, err := d.r.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, ReaderError{Err: err}
	}
	d.itemOff = d.off
	d.scratch = d.scratch[:0]
	out, err := d.captureItem(d.scratch, d.opts.maxDepth())
	if err != nil {
		return nil, err
	}
	d.scratch = out
	d.off += int64(len(out))
	return out, nil
}

// mapReadErr converts source errors encountered mid-item: EOF means the
// item was truncated.
func mapReadErr(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrShortBytes
	}
	return ReaderError{Err: err}
}

// take appends the next n source bytes to dst. Negative counts come from
// arguments that overflow int and can never be satisfied.
func (d *Decoder) take(dst []byte, n int) ([]byte, error) {
	if n < 0 {
		return dst, ErrShortBytes
	}
	for n > 0 {
		chunk := n
		// fwd buffers in fixed windows; pull at most one window at a time
		if chunk > 4096 {
			chunk = 4096
		}
		p, err := d.r.Next(chunk)
		if len(p) > 0 {
			dst = append(dst, p...)
			n -= len(p)
		}
		if err != nil {
			return dst, mapReadErr(err)
		}
	}
	return dst, nil
}

// captureHead appends one item head to dst and returns its decoded form.
func (d *Decoder) captureHead(dst []byte) ([]byte, head, error) {
	p, err := d.r.Peek(1)
	if err != nil {
		return dst, head{}, mapReadErr(err)
	}
	lead := p[0]
	h := head{major: getMajor(lead), ai: getAddInfo(lead)}
	extra := 0
	switch {
	case h.ai <= aiDirect:
		h.arg = uint64(h.ai)
	case h.ai == aiUint8:
		extra = 1
	case h.ai == aiUint16:
		extra = 2
	case h.ai == aiUint32:
		extra = 4
	case h.ai == aiUint64:
		extra = 8
	case h.ai == aiIndefinite:
		switch h.major {
		case majorBytes, majorText, majorArray, majorMap, majorSimple:
			h.indef = true
		default:
			return dst, head{}, MalformedHeadError{Lead: lead}
		}
	default:
		return dst, head{}, MalformedHeadError{Lead: lead}
	}
	raw, err := d.r.Next(1 + extra)
	if err != nil {
		return dst, head{}, mapReadErr(err)
	}
	dst = append(dst, raw...)
	switch extra {
	case 1:
		h.arg = uint64(raw[1])
	case 2:
		h.arg = uint64(be.Uint16(raw[1:]))
	case 4:
		h.arg = uint64(be.Uint32(raw[1:]))
	case 8:
		h.arg = be.Uint64(raw[1:])
	}
	return dst, h, nil
}

// captureItem appends the raw bytes of exactly one item to dst.
func (d *Decoder) captureItem(dst []byte, depth int) ([]byte, error) {
	if depth <= 0 {
		return dst, ErrRecursion
	}
	dst, h, err := d.captureHead(dst)
	if err != nil {
		return dst, err
	}

	switch h.major {
	case majorUint, majorNegInt:
		return dst, nil

	case majorTag:
		return d.captureItem(dst, depth-1)

	case majorBytes, majorText:
		if !h.indef {
			return d.take(dst, int(h.arg))
		}
		for {
			p, err := d.r.Peek(1)
			if err != nil {
				return dst, mapReadErr(err)
			}
			if p[0] == breakByte {
				if _, err := d.r.Next(1); err != nil {
					return dst, mapReadErr(err)
				}
				return append(dst, breakByte), nil
			}
			if getMajor(p[0]) != h.major || getAddInfo(p[0]) == aiIndefinite {
				return dst, InvalidChunkError{Major: h.major, Lead: p[0]}
			}
			var ch head
			dst, ch, err = d.captureHead(dst)
			if err != nil {
				return dst, err
			}
			dst, err = d.take(dst, int(ch.arg))
			if err != nil {
				return dst, err
			}
		}

	case majorArray, majorMap:
		per := 1
		if h.major == majorMap {
			per = 2
		}
		if h.indef {
			for {
				p, err := d.r.Peek(1)
				if err != nil {
					return dst, mapReadErr(err)
				}
				if p[0] == breakByte {
					if _, err := d.r.Next(1); err != nil {
						return dst, mapReadErr(err)
					}
					return append(dst, breakByte), nil
				}
				for i := 0; i < per; i++ {
					dst, err = d.captureItem(dst, depth-1)
					if err != nil {
						return dst, err
					}
				}
			}
		}
		for i := uint64(0); i < h.arg; i++ {
			for j := 0; j < per; j++ {
				dst, err = d.captureItem(dst, depth-1)
				if err != nil {
					return dst, err
				}
			}
		}
		return dst, nil

	default: // majorSimple
		if h.indef {
			return dst, ErrUnexpectedBreak
		}
		// every simple payload rides in the argument bytes captureHead
		// already consumed: one-byte simple values use ai 24 and the
		// three float widths use ai 25/26/27
		return dst, nil
	}
}

// Decode reads one item from r into v using default options.
func Decode(r io.Reader, v any) error {
	return NewDecoder(r).Decode(v)
}
