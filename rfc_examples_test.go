package cbor

import (
	"bytes"
	"encoding/hex"
	"math"
	"testing"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

// TestRFCAppendixAIntegers covers the integer examples of RFC 8949
// Appendix A in both directions.
func TestRFCAppendixAIntegers(t *testing.T) {
	cases := []struct {
		val int64
		hex string
	}{
		{0, "00"},
		{1, "01"},
		{10, "0a"},
		{23, "17"},
		{24, "1818"},
		{25, "1819"},
		{100, "1864"},
		{1000, "1903e8"},
		{1000000, "1a000f4240"},
		{1000000000000, "1b000000e8d4a51000"},
		{-1, "20"},
		{-10, "29"},
		{-100, "3863"},
		{-1000, "3903e7"},
	}
	for _, c := range cases {
		enc := AppendInt64(nil, c.val)
		if want := mustHex(t, c.hex); !bytes.Equal(enc, want) {
			t.Errorf("encode %d: got %x want %s", c.val, enc, c.hex)
		}
		dec, rest, err := ReadInt64Bytes(mustHex(t, c.hex))
		if err != nil {
			t.Fatalf("decode %s: %v", c.hex, err)
		}
		if dec != c.val || len(rest) != 0 {
			t.Errorf("decode %s: got %d rest %d", c.hex, dec, len(rest))
		}
	}

	// 18446744073709551615 = 2^64-1
	enc := AppendUint64(nil, math.MaxUint64)
	if want := mustHex(t, "1bffffffffffffffff"); !bytes.Equal(enc, want) {
		t.Errorf("encode MaxUint64: got %x", enc)
	}
	u, _, err := ReadUint64Bytes(enc)
	if err != nil || u != math.MaxUint64 {
		t.Errorf("decode MaxUint64: %v %d", err, u)
	}

	// -18446744073709551616 = -2^64 (major 1, argument 2^64-1)
	neg := AppendNegUint64(nil, math.MaxUint64)
	if want := mustHex(t, "3bffffffffffffffff"); !bytes.Equal(neg, want) {
		t.Errorf("encode -2^64: got %x", neg)
	}
	// below int64 range: must error on the int64 reader but round-trip
	// through Value
	if _, _, err := ReadInt64Bytes(neg); err == nil {
		t.Error("expected overflow reading -2^64 as int64")
	}
	v, _, err := ReadValueBytes(neg)
	if err != nil {
		t.Fatalf("value decode -2^64: %v", err)
	}
	if got := v.AppendCBOR(nil); !bytes.Equal(got, neg) {
		t.Errorf("-2^64 value round trip: got %x", got)
	}
}

// TestRFCAppendixAStringsAndContainers covers the string, array and map
// examples from RFC 8949 Appendix A.
func TestRFCAppendixAStringsAndContainers(t *testing.T) {
	// text "IETF"
	if got := AppendString(nil, "IETF"); !bytes.Equal(got, mustHex(t, "6449455446")) {
		t.Errorf(`encode "IETF": got %x`, got)
	}
	s, rest, err := ReadStringBytes(mustHex(t, "6449455446"))
	if err != nil || s != "IETF" || len(rest) != 0 {
		t.Errorf(`decode "IETF": %q %v`, s, err)
	}

	// array [1,2,3]
	arr := AppendArrayHeader(nil, 3)
	arr = AppendInt(arr, 1)
	arr = AppendInt(arr, 2)
	arr = AppendInt(arr, 3)
	if !bytes.Equal(arr, mustHex(t, "83010203")) {
		t.Errorf("encode [1,2,3]: got %x", arr)
	}

	// map {"a":1,"b":[2,3]} in canonical order
	b, err := Marshal(map[string]any{"b": []any{uint64(2), uint64(3)}, "a": uint64(1)})
	if err != nil {
		t.Fatalf("marshal map: %v", err)
	}
	if want := mustHex(t, "a26161016162820203"); !bytes.Equal(b, want) {
		t.Errorf("encode map: got %x want %x", b, want)
	}
	var back map[string]any
	if err := Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal map: %v", err)
	}
	if back["a"] != any(uint64(1)) {
		t.Errorf(`map["a"] = %v`, back["a"])
	}

	// empty containers
	if got := AppendString(nil, ""); !bytes.Equal(got, mustHex(t, "60")) {
		t.Errorf("empty string: %x", got)
	}
	if got := AppendBytes(nil, nil); !bytes.Equal(got, mustHex(t, "40")) {
		t.Errorf("empty bytes: %x", got)
	}
	if got := AppendArrayHeader(nil, 0); !bytes.Equal(got, mustHex(t, "80")) {
		t.Errorf("empty array: %x", got)
	}
	if got := AppendMapHeader(nil, 0); !bytes.Equal(got, mustHex(t, "a0")) {
		t.Errorf("empty map: %x", got)
	}

	// byte string h'01020304'
	if got := AppendBytes(nil, []byte{1, 2, 3, 4}); !bytes.Equal(got, mustHex(t, "4401020304")) {
		t.Errorf("bytes: %x", got)
	}
}

// TestCanonicalIntegerKeyOrder verifies that {2:"a",1:"b"} encodes with
// key 1 first.
func TestCanonicalIntegerKeyOrder(t *testing.T) {
	b, err := Marshal(map[int]string{2: "a", 1: "b"})
	if err != nil {
		t.Fatal(err)
	}
	want := mustHex(t, "a2016162026161")
	if !bytes.Equal(b, want) {
		t.Errorf("got %x want %x", b, want)
	}
}

// TestSelfDescribeTag checks tag 55799 in the outermost and nested
// positions.
func TestSelfDescribeTag(t *testing.T) {
	b, err := MarshalSelfDescribe(uint64(10))
	if err != nil {
		t.Fatal(err)
	}
	if want := mustHex(t, "d9d9f70a"); !bytes.Equal(b, want) {
		t.Fatalf("got %x want %x", b, want)
	}
	var u uint64
	if err := Unmarshal(b, &u); err != nil || u != 10 {
		t.Fatalf("decode self-describe: %v %d", err, u)
	}

	// nested: the tag is preserved as a plain tag
	nested := AppendArrayHeader(nil, 1)
	nested = AppendSelfDescribe(nested)
	nested = AppendInt(nested, 7)
	var out []any
	if err := Unmarshal(nested, &out); err != nil {
		t.Fatalf("nested: %v", err)
	}
	tag, ok := out[0].(Tag)
	if !ok || tag.Number != TagSelfDescribe || tag.Content != any(uint64(7)) {
		t.Fatalf("nested self-describe: %#v", out[0])
	}
}

// TestShortestIntegerEncodings verifies the canonical head widths at
// every boundary.
func TestShortestIntegerEncodings(t *testing.T) {
	sizes := []struct {
		v    uint64
		want int
	}{
		{0, 1}, {23, 1}, {24, 2}, {255, 2}, {256, 3},
		{65535, 3}, {65536, 5}, {math.MaxUint32, 5},
		{math.MaxUint32 + 1, 9}, {math.MaxUint64, 9},
	}
	for _, c := range sizes {
		if got := len(AppendUint64(nil, c.v)); got != c.want {
			t.Errorf("uint %d: %d bytes, want %d", c.v, got, c.want)
		}
	}
	// negative boundaries share widths through the -1-n mapping
	negs := []struct {
		v    int64
		want int
	}{
		{-1, 1}, {-24, 1}, {-25, 2}, {-256, 2}, {-257, 3},
		{-65536, 3}, {-65537, 5}, {-4294967296, 5}, {-4294967297, 9},
	}
	for _, c := range negs {
		if got := len(AppendInt64(nil, c.v)); got != c.want {
			t.Errorf("int %d: %d bytes, want %d", c.v, got, c.want)
		}
	}
}
