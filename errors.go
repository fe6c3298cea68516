package cbor

import (
	"errors"
	"strconv"
)

var (
	// ErrShortBytes is returned when the input ends in the middle of an
	// item (unexpected EOF on a slice).
	ErrShortBytes error = errShort{}

	// ErrUnexpectedBreak is returned when a break stop code (0xff)
	// appears where it does not terminate an indefinite-length container.
	ErrUnexpectedBreak error = errors.New("cbor: unexpected break code")

	// ErrInvalidUTF8 is returned when a text string contains bytes that
	// are not valid UTF-8.
	ErrInvalidUTF8 error = errors.New("cbor: invalid UTF-8 in text string")

	// ErrRecursion is returned when the configured maximum nesting depth
	// is exceeded. This should only realistically be seen on adversarial
	// data trying to exhaust the stack.
	ErrRecursion error = errRecursion{}

	// ErrTrailingBytes is returned by exhaust-on-decode entry points when
	// bytes remain after the single top-level item.
	ErrTrailingBytes error = errors.New("cbor: trailing bytes after top-level item")

	// ErrDuplicateMapKey is returned when a map contains duplicate keys
	// and the decoder is configured to reject them.
	ErrDuplicateMapKey error = errors.New("cbor: duplicate map key")

	// ErrIndefiniteForbidden is returned when an indefinite-length item is
	// present but deterministic decoding forbids it.
	ErrIndefiniteForbidden error = errors.New("cbor: indefinite-length item not allowed in deterministic mode")

	// ErrNonCanonicalInteger is returned in strict mode when an integer
	// argument is not encoded in the shortest form.
	ErrNonCanonicalInteger error = errors.New("cbor: non-canonical integer encoding")

	// ErrMapNotCanonical is returned by the canonical-order map check
	// when keys do not arrive in ascending canonical order.
	ErrMapNotCanonical error = errors.New("cbor: map keys not in canonical order")

	// ErrNonCanonicalFloat is returned in strict mode when a float is not
	// encoded at the shortest width that preserves its value.
	ErrNonCanonicalFloat error = errors.New("cbor: non-canonical float encoding")

	// ErrContainerTooLarge is returned when a container length exceeds the
	// configured reader limit.
	ErrContainerTooLarge error = errors.New("cbor: container too large")

	// ErrNotNil is returned when a nil value was expected on the wire.
	ErrNotNil error = errors.New("cbor: not nil")
)

// Error is the interface satisfied by all errors that originate from this
// package.
type Error interface {
	error

	// Resumable reports whether decoding can continue after the error:
	// true when the data was well-formed but unsuitable for the target,
	// false when the stream is malformed and the information is
	// unrecoverable.
	Resumable() bool
}

// contextError allows Error instances to be enhanced with additional
// context about their origin.
type contextError interface {
	Error

	// withContext must not modify the error instance - it must clone and
	// return a new error with the context added.
	withContext(ctx string) error
}

// Cause returns the underlying cause of an error that has been wrapped
// with additional context.
func Cause(e error) error {
	out := e
	if e, ok := e.(errWrapped); ok && e.cause != nil {
		out = e.cause
	}
	return out
}

// Resumable reports whether decoding can continue after e. It returns
// false for malformed data and for errors that do not originate from this
// package.
func Resumable(e error) bool {
	if e, ok := e.(Error); ok {
		return e.Resumable()
	}
	return false
}

// WrapError wraps an error with additional context that allows the part of
// the serialized type that caused the problem to be identified. Underlying
// errors can be retrieved using Cause().
//
// The input error is not modified - a new error is returned.
//
// ErrShortBytes is not wrapped with any context due to backward
// compatibility issues with the public API.
func WrapError(err error, ctx ...any) error {
	switch e := err.(type) {
	case errShort:
		return e
	case contextError:
		return e.withContext(ctxString(ctx))
	default:
		return errWrapped{cause: err, ctx: ctxString(ctx)}
	}
}

func ctxString(ctx []any) string {
	out := ""
	for _, c := range ctx {
		s := ""
		switch v := c.(type) {
		case string:
			s = v
		case int:
			s = strconv.Itoa(v)
		default:
			continue
		}
		if out == "" {
			out = s
		} else {
			out += "/" + s
		}
	}
	return out
}

func addCtx(ctx, add string) string {
	if ctx != "" {
		return add + "/" + ctx
	}
	return add
}

// errWrapped allows arbitrary errors passed to WrapError to be enhanced
// with context and unwrapped with Cause().
type errWrapped struct {
	cause error
	ctx   string
}

func (e errWrapped) Error() string {
	if e.ctx != "" {
		return e.cause.Error() + " at " + e.ctx
	}
	return e.cause.Error()
}

func (e errWrapped) Resumable() bool {
	if e, ok := e.cause.(Error); ok {
		return e.Resumable()
	}
	return false
}

// Unwrap returns the cause.
func (e errWrapped) Unwrap() error { return e.cause }

type errShort struct{}

func (e errShort) Error() string   { return "cbor: too few bytes left to read object" }
func (e errShort) Resumable() bool { return false }

type errRecursion struct{}

func (e errRecursion) Error() string   { return "cbor: recursion limit reached" }
func (e errRecursion) Resumable() bool { return false }

// MalformedHeadError is returned when the initial byte of an item is not
// well-formed: a reserved additional-information value (28-30), an
// indefinite marker on a major type that has no indefinite form, or an
// illegal simple-value encoding.
type MalformedHeadError struct {
	Lead byte
}

// Error implements the error interface.
func (m MalformedHeadError) Error() string {
	return "cbor: malformed head byte 0x" + strconv.FormatUint(uint64(m.Lead), 16)
}

// Resumable returns 'false' for MalformedHeadErrors.
func (m MalformedHeadError) Resumable() bool { return false }

// InvalidChunkError is returned when an indefinite-length string contains
// a chunk that is not a definite-length string of the matching major type.
type InvalidChunkError struct {
	Major uint8 // major type of the enclosing indefinite string
	Lead  byte  // initial byte of the offending chunk
}

// Error implements the error interface.
func (c InvalidChunkError) Error() string {
	return "cbor: invalid chunk 0x" + strconv.FormatUint(uint64(c.Lead), 16) +
		" inside indefinite-length item of major type " + strconv.Itoa(int(c.Major))
}

// Resumable returns 'false' for InvalidChunkErrors.
func (c InvalidChunkError) Resumable() bool { return false }

// InvalidPrefixError is returned when the wire carries a major type other
// than the one the decode method expects. This kind of error is
// unrecoverable.
type InvalidPrefixError struct {
	Want uint8
	Got  uint8
}

// Error implements the error interface.
func (i InvalidPrefixError) Error() string {
	return "cbor: expected major type " + strconv.Itoa(int(i.Want)) + " but got " + strconv.Itoa(int(i.Got))
}

// Resumable returns 'false' for InvalidPrefixErrors.
func (i InvalidPrefixError) Resumable() bool { return false }

func badPrefix(got, want uint8) error {
	return InvalidPrefixError{Want: want, Got: got}
}

// A TypeError is returned when a particular decoding method is unsuitable
// for the CBOR item actually present on the wire.
type TypeError struct {
	Method  Type // type expected by the method
	Encoded Type // type actually encoded

	ctx string
}

// Error implements the error interface.
func (t TypeError) Error() string {
	out := "cbor: attempted to decode type " + quoteStr(t.Encoded.String()) + " with method for " + quoteStr(t.Method.String())
	if t.ctx != "" {
		out += " at " + t.ctx
	}
	return out
}

// Resumable returns 'true' for TypeErrors.
func (t TypeError) Resumable() bool { return true }

func (t TypeError) withContext(ctx string) error { t.ctx = addCtx(t.ctx, ctx); return t }

// IntOverflow is returned when a call would downcast an integer to a type
// with too few bits to hold its value.
type IntOverflow struct {
	Value         int64 // the value of the integer
	FailedBitsize int   // the bit size that the int64 could not fit into
	ctx           string
}

// Error implements the error interface.
func (i IntOverflow) Error() string {
	str := "cbor: " + strconv.FormatInt(i.Value, 10) + " overflows int" + strconv.Itoa(i.FailedBitsize)
	if i.ctx != "" {
		str += " at " + i.ctx
	}
	return str
}

// Resumable is always 'true' for overflows.
func (i IntOverflow) Resumable() bool { return true }

func (i IntOverflow) withContext(ctx string) error { i.ctx = addCtx(i.ctx, ctx); return i }

// UintOverflow is returned when a call would downcast an unsigned integer
// to a type with too few bits to hold its value.
type UintOverflow struct {
	Value         uint64 // value of the uint
	FailedBitsize int    // the bit size that couldn't fit the value
	ctx           string
}

// Error implements the error interface.
func (u UintOverflow) Error() string {
	str := "cbor: " + strconv.FormatUint(u.Value, 10) + " overflows uint" + strconv.Itoa(u.FailedBitsize)
	if u.ctx != "" {
		str += " at " + u.ctx
	}
	return str
}

// Resumable is always 'true' for overflows.
func (u UintOverflow) Resumable() bool { return true }

func (u UintOverflow) withContext(ctx string) error { u.ctx = addCtx(u.ctx, ctx); return u }

// UintBelowZero is returned when a call would cast a negative integer to
// an unsigned type.
type UintBelowZero struct {
	Value int64 // value of the incoming int
	ctx   string
}

// Error implements the error interface.
func (u UintBelowZero) Error() string {
	str := "cbor: attempted to cast int " + strconv.FormatInt(u.Value, 10) + " to unsigned"
	if u.ctx != "" {
		str += " at " + u.ctx
	}
	return str
}

// Resumable is always 'true' for UintBelowZero.
func (u UintBelowZero) Resumable() bool { return true }

func (u UintBelowZero) withContext(ctx string) error {
	u.ctx = addCtx(u.ctx, ctx)
	return u
}

// UnknownFieldError is returned by the struct bridge when an unknown map
// key is present and the decoder is configured to reject unknown fields.
type UnknownFieldError struct {
	Field string
}

// Error implements the error interface.
func (u UnknownFieldError) Error() string {
	return "cbor: unknown field " + quoteStr(u.Field)
}

// Resumable returns 'true' for UnknownFieldErrors.
func (u UnknownFieldError) Resumable() bool { return true }

// DuplicateFieldError is returned by the struct bridge when a map key
// resolves to a field that was already set and duplicate rejection is on.
type DuplicateFieldError struct {
	Field string
}

// Error implements the error interface.
func (d DuplicateFieldError) Error() string {
	return "cbor: duplicate field " + quoteStr(d.Field)
}

// Resumable returns 'true' for DuplicateFieldErrors.
func (d DuplicateFieldError) Resumable() bool { return true }

// ReaderError wraps an error returned by the underlying byte source.
type ReaderError struct {
	Err error
}

// Error implements the error interface.
func (r ReaderError) Error() string { return "cbor: read: " + r.Err.Error() }

// Resumable returns 'false' for ReaderErrors.
func (r ReaderError) Resumable() bool { return false }

// Unwrap returns the source error.
func (r ReaderError) Unwrap() error { return r.Err }

// WriterError wraps an error returned by the underlying byte sink.
type WriterError struct {
	Err error
}

// Error implements the error interface.
func (w WriterError) Error() string { return "cbor: write: " + w.Err.Error() }

// Resumable returns 'false' for WriterErrors.
func (w WriterError) Resumable() bool { return false }

// Unwrap returns the sink error.
func (w WriterError) Unwrap() error { return w.Err }

// ErrUnsupportedType is returned when a bad argument is supplied to a
// function that accepts arbitrary values.
type ErrUnsupportedType struct {
	Type string

	ctx string
}

// Error implements error.
func (e *ErrUnsupportedType) Error() string {
	out := "cbor: type " + quoteStr(e.Type) + " not supported"
	if e.ctx != "" {
		out += " at " + e.ctx
	}
	return out
}

// Resumable returns 'true' for ErrUnsupportedType.
func (e *ErrUnsupportedType) Resumable() bool { return true }

func (e *ErrUnsupportedType) withContext(ctx string) error {
	o := *e
	o.ctx = addCtx(o.ctx, ctx)
	return &o
}

func quoteStr(s string) string { return strconv.Quote(s) }
