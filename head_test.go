package cbor

import (
	"bytes"
	"errors"
	"testing"
)

// TestMalformedHeads checks that the reserved additional-info values and
// illegal indefinite markers are rejected on every entry point.
func TestMalformedHeads(t *testing.T) {
	var malformed MalformedHeadError
	for _, ai := range []byte{28, 29, 30} {
		for major := byte(0); major < 8; major++ {
			lead := []byte{makeByte(major, ai)}
			if _, _, err := readHead(lead); !errors.As(err, &malformed) {
				t.Errorf("head %02x: got %v", lead[0], err)
			}
			if _, err := Skip(lead); !errors.As(err, &malformed) {
				t.Errorf("skip %02x: got %v", lead[0], err)
			}
			if _, err := ValidateWellFormed(lead); !errors.As(err, &malformed) {
				t.Errorf("validate %02x: got %v", lead[0], err)
			}
		}
	}

	// ai=31 is reserved on majors 0, 1 and 6
	for _, major := range []byte{majorUint, majorNegInt, majorTag} {
		lead := []byte{makeByte(major, aiIndefinite)}
		if _, _, err := readHead(lead); !errors.As(err, &malformed) {
			t.Errorf("indefinite head on major %d: got %v", major, err)
		}
	}

	// two-byte simple values below 32 are malformed
	if _, _, err := ReadSimpleValue([]byte{0xf8, 0x1f}); !errors.As(err, &malformed) {
		t.Errorf("simple(31) via 0xf8: got %v", err)
	}
	if _, _, err := ReadSimpleValue([]byte{0xf8, 0x20}); err != nil {
		t.Errorf("simple(32): %v", err)
	}
}

// TestHeadEOF checks truncation at every head width.
func TestHeadEOF(t *testing.T) {
	cases := [][]byte{
		{},
		{0x18},             // uint8 argument missing
		{0x19, 0x01},       // uint16 argument truncated
		{0x1a, 0, 0, 0},    // uint32 argument truncated
		{0x1b, 0, 0, 0, 0}, // uint64 argument truncated
		{0x62, 0x61},       // text payload truncated
		{0x42},             // bytes payload missing
		{0xf9, 0x7c},       // half float truncated
	}
	for _, c := range cases {
		if _, err := Skip(c); !errors.Is(err, ErrShortBytes) {
			t.Errorf("skip %x: got %v", c, err)
		}
	}
}

// TestHeadRoundTrip exercises appendHead/readHead across the argument
// widths.
func TestHeadRoundTrip(t *testing.T) {
	args := []uint64{0, 1, 23, 24, 255, 256, 65535, 65536, 1 << 32, 1<<64 - 1}
	for major := uint8(0); major < 7; major++ {
		for _, arg := range args {
			enc := appendHead(nil, major, arg)
			h, rest, err := readHead(enc)
			if err != nil {
				t.Fatalf("major %d arg %d: %v", major, arg, err)
			}
			if h.major != major || h.arg != arg || h.indef || len(rest) != 0 {
				t.Errorf("major %d arg %d: decoded %+v", major, arg, h)
			}
			if !isCanonicalHead(h) {
				t.Errorf("major %d arg %d: not canonical", major, arg)
			}
		}
	}
}

// TestUnexpectedBreak checks that a bare break byte is rejected
// everywhere an item is expected.
func TestUnexpectedBreak(t *testing.T) {
	brk := []byte{0xff}
	if _, err := Skip(brk); !errors.Is(err, ErrUnexpectedBreak) {
		t.Errorf("skip: %v", err)
	}
	if _, _, err := ReadValueBytes(brk); !errors.Is(err, ErrUnexpectedBreak) {
		t.Errorf("value: %v", err)
	}
	var out any
	if err := Unmarshal(brk, &out); !errors.Is(err, ErrUnexpectedBreak) {
		t.Errorf("unmarshal: %v", err)
	}
	// but it legally terminates an indefinite container
	var arr []any
	if err := Unmarshal([]byte{0x9f, 0xff}, &arr); err != nil || len(arr) != 0 {
		t.Errorf("empty indefinite array: %v %v", arr, err)
	}
}

// TestTrailingBytes verifies the exhaust-on-decode contract.
func TestTrailingBytes(t *testing.T) {
	var u uint64
	if err := Unmarshal([]byte{0x0a, 0x00}, &u); !errors.Is(err, ErrTrailingBytes) {
		t.Errorf("got %v", err)
	}
	rest, err := UnmarshalFirst([]byte{0x0a, 0x00}, &u)
	if err != nil || u != 10 || !bytes.Equal(rest, []byte{0x00}) {
		t.Errorf("UnmarshalFirst: %v %d %x", err, u, rest)
	}
}
