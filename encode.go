package cbor

import (
	"io"

	"github.com/philhofer/fwd"
)

// Encoder writes CBOR items to an io.Writer through a buffered sink.
// Items are encoded into a pooled buffer first, so a failed encode leaves
// nothing on the wire; once bytes start flowing, partial output on a sink
// failure is the caller's to deal with.
type Encoder struct {
	w    *fwd.Writer
	opts EncOptions
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: fwd.NewWriter(w)}
}

// SetOptions replaces the encoder's options.
func (e *Encoder) SetOptions(o EncOptions) { e.opts = o }

// Encode writes one item for v and flushes it to the sink.
func (e *Encoder) Encode(v any) error {
	bb := GetByteBuffer()
	defer PutByteBuffer(bb)
	out, err := e.opts.Append(bb.Bytes(), v)
	if err != nil {
		return err
	}
	if _, err := e.w.Write(out); err != nil {
		return WriterError{Err: err}
	}
	if err := e.w.Flush(); err != nil {
		return WriterError{Err: err}
	}
	return nil
}

// EncodeRaw writes a pre-encoded item and flushes it.
func (e *Encoder) EncodeRaw(item RawMessage) error {
	if _, err := e.w.Write(item); err != nil {
		return WriterError{Err: err}
	}
	if err := e.w.Flush(); err != nil {
		return WriterError{Err: err}
	}
	return nil
}

// Encode writes v to w as one canonical CBOR item.
func Encode(w io.Writer, v any) error {
	return NewEncoder(w).Encode(v)
}

// ToValue converts an arbitrary Go value into the dynamic Value model by
// round-tripping it through its canonical encoding.
func ToValue(v any) (Value, error) {
	b, err := Marshal(v)
	if err != nil {
		return Value{}, err
	}
	val, rest, err := ReadValueBytes(b)
	if err != nil {
		return Value{}, err
	}
	if len(rest) != 0 {
		return Value{}, ErrTrailingBytes
	}
	return val, nil
}

// FromValue decodes a dynamic Value into v through its canonical
// encoding.
func FromValue(val Value, v any) error {
	return Unmarshal(val.AppendCBOR(nil), v)
}
