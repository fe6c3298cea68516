package cbor

import (
	"testing"

	fxcbor "github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDifferentialEncode cross-checks our canonical output against the
// reference codec: whatever we encode must decode to the same data over
// there, and for map ordering the reference's core-deterministic mode
// must agree byte for byte.
func TestDifferentialEncode(t *testing.T) {
	type record struct {
		Name  string         `cbor:"name"`
		Count int64          `cbor:"count"`
		Tags  []string       `cbor:"tags"`
		Meta  map[string]int `cbor:"meta"`
	}
	in := record{
		Name:  "subject",
		Count: -42,
		Tags:  []string{"a", "b"},
		Meta:  map[string]int{"zz": 1, "a": 2, "mid": 3},
	}

	ours, err := Marshal(in)
	require.NoError(t, err)

	type fxRecord struct {
		Name  string         `cbor:"name"`
		Count int64          `cbor:"count"`
		Tags  []string       `cbor:"tags"`
		Meta  map[string]int `cbor:"meta"`
	}
	var back fxRecord
	require.NoError(t, fxcbor.Unmarshal(ours, &back))
	assert.Equal(t, in.Name, back.Name)
	assert.Equal(t, in.Count, back.Count)
	assert.Equal(t, in.Tags, back.Tags)
	assert.Equal(t, in.Meta, back.Meta)

	// core deterministic map ordering agrees bytewise
	opts, err := fxcbor.CoreDetEncOptions().EncMode()
	require.NoError(t, err)
	theirs, err := opts.Marshal(in.Meta)
	require.NoError(t, err)
	oursMap, err := Marshal(in.Meta)
	require.NoError(t, err)
	assert.Equal(t, theirs, oursMap)
}

// TestDifferentialDecode feeds reference-encoded documents through our
// decoder.
func TestDifferentialDecode(t *testing.T) {
	vals := []any{
		int64(-1000),
		uint64(18446744073709551615),
		"IETF",
		[]byte{1, 2, 3},
		[]any{int64(1), "two", true},
		map[string]any{"a": int64(1), "b": []any{int64(2), int64(3)}},
		3.14159,
	}
	for _, v := range vals {
		theirs, err := fxcbor.Marshal(v)
		require.NoError(t, err)

		ours, _, err := ReadValueBytes(theirs)
		require.NoError(t, err, "decode %x", theirs)

		// round-trip through the reference again: our canonical
		// re-encoding must decode to an equal dynamic value over there
		var a, b any
		require.NoError(t, fxcbor.Unmarshal(theirs, &a))
		require.NoError(t, fxcbor.Unmarshal(ours.AppendCBOR(nil), &b))
		assert.Equal(t, a, b, "value %v", v)
	}
}

// TestDifferentialIntegerWidths compares integer envelope encodings at
// the boundary points.
func TestDifferentialIntegerWidths(t *testing.T) {
	for _, u := range []uint64{0, 23, 24, 255, 256, 65535, 65536, 1<<32 - 1, 1 << 32, 1<<64 - 1} {
		theirs, err := fxcbor.Marshal(u)
		require.NoError(t, err)
		assert.Equal(t, theirs, AppendUint64(nil, u), "uint %d", u)
	}
	for _, i := range []int64{-1, -24, -25, -256, -257, -65536, -65537, -1 << 32, -1<<32 - 1} {
		theirs, err := fxcbor.Marshal(i)
		require.NoError(t, err)
		assert.Equal(t, theirs, AppendInt64(nil, i), "int %d", i)
	}
}
