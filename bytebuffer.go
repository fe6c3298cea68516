package cbor

import (
	"io"
	"sync"
)

// ByteBuffer is a reusable byte buffer with CBOR-aware appenders. It is
// the pooled sink behind the Encoder and the diagnostic renderers.
//
// Guidelines:
//   - Use Ensure(n) to grow capacity up-front when you know you will append
//     at least n more bytes.
//   - PutByteBuffer resets length before returning the buffer to the pool.
type ByteBuffer struct {
	b []byte
}

var bbPool = sync.Pool{New: func() any { return &ByteBuffer{b: make([]byte, 0, 1024)} }}

// GetByteBuffer obtains a pooled ByteBuffer with zero length.
func GetByteBuffer() *ByteBuffer {
	bb := bbPool.Get().(*ByteBuffer)
	bb.Reset()
	return bb
}

// PutByteBuffer resets the buffer and returns it to the pool.
func PutByteBuffer(bb *ByteBuffer) { bb.Reset(); bbPool.Put(bb) }

// Bytes returns the underlying bytes.
func (bb *ByteBuffer) Bytes() []byte { return bb.b }

// SetBytes replaces the underlying slice, keeping appended data that was
// produced by the package-level Append functions.
func (bb *ByteBuffer) SetBytes(b []byte) { bb.b = b }

// Len returns the current length.
func (bb *ByteBuffer) Len() int { return len(bb.b) }

// Reset truncates the buffer to zero length; capacity is kept.
func (bb *ByteBuffer) Reset() { bb.b = bb.b[:0] }

// Ensure guarantees room for at least n more bytes without reallocation.
func (bb *ByteBuffer) Ensure(n int) {
	need := len(bb.b) + n
	if cap(bb.b) >= need {
		return
	}
	c := cap(bb.b)
	if c == 0 {
		c = 1024
	}
	for c < need {
		c <<= 1
	}
	nb := make([]byte, len(bb.b), c)
	copy(nb, bb.b)
	bb.b = nb
}

// Extend grows the buffer by n bytes and returns the newly appended
// region for direct writes.
func (bb *ByteBuffer) Extend(n int) []byte {
	old := len(bb.b)
	bb.Ensure(n)
	bb.b = bb.b[:old+n]
	return bb.b[old:]
}

// Write implements io.Writer.
func (bb *ByteBuffer) Write(p []byte) (int, error) {
	bb.b = append(bb.b, p...)
	return len(p), nil
}

// WriteString appends a string.
func (bb *ByteBuffer) WriteString(s string) (int, error) {
	bb.b = append(bb.b, s...)
	return len(s), nil
}

// WriteByte appends a single byte.
func (bb *ByteBuffer) WriteByte(c byte) error {
	bb.b = append(bb.b, c)
	return nil
}

// ReadFrom implements io.ReaderFrom for streaming into the buffer.
func (bb *ByteBuffer) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	for {
		if cap(bb.b)-len(bb.b) < 32*1024 {
			bb.Ensure(32 * 1024)
		}
		n, err := r.Read(bb.b[len(bb.b):cap(bb.b)])
		if n > 0 {
			bb.b = bb.b[:len(bb.b)+n]
			total += int64(n)
		}
		if err != nil {
			if err == io.EOF {
				return total, nil
			}
			return total, err
		}
	}
}

// CBOR appenders mirroring the package-level Append functions, for a
// fluent zero-alloc style together with Ensure().

func (bb *ByteBuffer) AppendNil() *ByteBuffer          { bb.b = AppendNil(bb.b); return bb }
func (bb *ByteBuffer) AppendBool(v bool) *ByteBuffer   { bb.b = AppendBool(bb.b, v); return bb }
func (bb *ByteBuffer) AppendInt64(i int64) *ByteBuffer { bb.b = AppendInt64(bb.b, i); return bb }
func (bb *ByteBuffer) AppendUint64(u uint64) *ByteBuffer {
	bb.b = AppendUint64(bb.b, u)
	return bb
}
func (bb *ByteBuffer) AppendFloat64(f float64) *ByteBuffer { bb.b = AppendFloat64(bb.b, f); return bb }
func (bb *ByteBuffer) AppendString(s string) *ByteBuffer   { bb.b = AppendString(bb.b, s); return bb }
func (bb *ByteBuffer) AppendBytes(v []byte) *ByteBuffer    { bb.b = AppendBytes(bb.b, v); return bb }
func (bb *ByteBuffer) AppendTag(tag uint64) *ByteBuffer    { bb.b = AppendTag(bb.b, tag); return bb }
func (bb *ByteBuffer) AppendArrayHeader(sz uint64) *ByteBuffer {
	bb.b = AppendArrayHeader(bb.b, sz)
	return bb
}
func (bb *ByteBuffer) AppendMapHeader(sz uint64) *ByteBuffer {
	bb.b = AppendMapHeader(bb.b, sz)
	return bb
}
func (bb *ByteBuffer) AppendBreak() *ByteBuffer { bb.b = AppendBreak(bb.b); return bb }
