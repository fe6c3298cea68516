package cbor

import (
	"bytes"
	"math"
	"testing"
)

// TestHalfFloatDecode covers the RFC half-float examples: zero, the
// smallest subnormal, a normal value, the largest finite half, infinity
// and NaN.
func TestHalfFloatDecode(t *testing.T) {
	cases := []struct {
		hex  string
		want float64
	}{
		{"f90000", 0.0},
		{"f93c00", 1.0},
		{"f93e00", 1.5},
		{"f90001", 5.960464477539063e-8}, // smallest subnormal
		{"f90400", 6.103515625e-5},       // smallest normal
		{"f97bff", 65504.0},              // largest finite
		{"f9c400", -4.0},
	}
	for _, c := range cases {
		f, rest, err := ReadFloatBytes(mustHex(t, c.hex))
		if err != nil || len(rest) != 0 {
			t.Fatalf("%s: %v", c.hex, err)
		}
		if f != c.want {
			t.Errorf("%s: got %v want %v", c.hex, f, c.want)
		}
	}

	f, _, err := ReadFloatBytes(mustHex(t, "f97c00"))
	if err != nil || !math.IsInf(f, 1) {
		t.Errorf("+Inf: %v %v", f, err)
	}
	f, _, err = ReadFloatBytes(mustHex(t, "f9fc00"))
	if err != nil || !math.IsInf(f, -1) {
		t.Errorf("-Inf: %v %v", f, err)
	}
	f, _, err = ReadFloatBytes(mustHex(t, "f97e00"))
	if err != nil || !math.IsNaN(f) {
		t.Errorf("NaN: %v %v", f, err)
	}

	// negative zero keeps its sign
	f, _, err = ReadFloatBytes(mustHex(t, "f98000"))
	if err != nil || f != 0 || !math.Signbit(f) {
		t.Errorf("-0.0: %v %v", f, err)
	}
}

// TestFloatWidths checks that declared widths are preserved and the
// canonical appender picks the shortest exact width.
func TestFloatWidths(t *testing.T) {
	if got := AppendFloat64(nil, 1.1); !bytes.Equal(got, mustHex(t, "fb3ff199999999999a")) {
		t.Errorf("1.1: %x", got)
	}
	if got := AppendFloat32(nil, 100000.0); !bytes.Equal(got, mustHex(t, "fa47c35000")) {
		t.Errorf("100000.0: %x", got)
	}
	if got := AppendFloat64(nil, 1.0e300); !bytes.Equal(got, mustHex(t, "fb7e37e43c8800759c")) {
		t.Errorf("1e300: %x", got)
	}

	// canonical width selection
	if got := AppendFloatCanonical(nil, 0.0); !bytes.Equal(got, mustHex(t, "f90000")) {
		t.Errorf("canonical 0.0: %x", got)
	}
	if got := AppendFloatCanonical(nil, 1.5); !bytes.Equal(got, mustHex(t, "f93e00")) {
		t.Errorf("canonical 1.5: %x", got)
	}
	if got := AppendFloatCanonical(nil, 100000.0); !bytes.Equal(got, mustHex(t, "fa47c35000")) {
		t.Errorf("canonical 100000.0: %x", got)
	}
	if got := AppendFloatCanonical(nil, 1.1); !bytes.Equal(got, mustHex(t, "fb3ff199999999999a")) {
		t.Errorf("canonical 1.1: %x", got)
	}
	if got := AppendFloatCanonical(nil, math.NaN()); !bytes.Equal(got, mustHex(t, "f97e00")) {
		t.Errorf("canonical NaN: %x", got)
	}
	if got := AppendFloatCanonical(nil, math.Inf(1)); !bytes.Equal(got, mustHex(t, "f97c00")) {
		t.Errorf("canonical +Inf: %x", got)
	}
}

// TestFloatRoundTrip checks bit-exact round trips at every width,
// including NaN payload preservation at the declared width.
func TestFloatRoundTrip(t *testing.T) {
	for _, f := range []float64{0, -0.0, 1.5, -4.2, 6.103515625e-5, 1.0e300, math.Inf(-1)} {
		enc := AppendFloat64(nil, f)
		got, _, err := ReadFloat64Bytes(enc)
		if err != nil {
			t.Fatal(err)
		}
		if math.Float64bits(got) != math.Float64bits(f) {
			t.Errorf("%v: bits differ", f)
		}
	}
	nan := AppendFloat64(nil, math.NaN())
	got, _, err := ReadFloat64Bytes(nan)
	if err != nil || !math.IsNaN(got) || math.Float64bits(got) != math.Float64bits(math.NaN()) {
		t.Errorf("NaN round trip: %v %v", got, err)
	}
}
