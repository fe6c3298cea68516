package cbor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueEquality(t *testing.T) {
	assert.True(t, Null().Equal(Null()))
	assert.False(t, Null().Equal(Undefined()))
	assert.True(t, Int(-5).Equal(Int(-5)))
	assert.True(t, Int(5).Equal(Uint(5)), "5 == 5 across constructors")
	assert.True(t, Text("a").Equal(Text("a")))
	assert.False(t, Text("a").Equal(Bytes([]byte("a"))))

	// floats compare bit-equal: NaN equals NaN, +0 differs from -0
	assert.True(t, Float(math.NaN()).Equal(Float(math.NaN())))
	assert.False(t, Float(0).Equal(Float(math.Copysign(0, -1))))

	// maps compare as mappings regardless of pair order
	m1 := Map(
		MapPair{Key: Text("a"), Value: Int(1)},
		MapPair{Key: Text("b"), Value: Int(2)},
	)
	m2 := Map(
		MapPair{Key: Text("b"), Value: Int(2)},
		MapPair{Key: Text("a"), Value: Int(1)},
	)
	assert.True(t, m1.Equal(m2))

	m3 := Map(MapPair{Key: Text("a"), Value: Int(9)})
	assert.False(t, m1.Equal(m3))

	// tagged values include the tag number
	assert.True(t, Tagged(7, Int(1)).Equal(Tagged(7, Int(1))))
	assert.False(t, Tagged(7, Int(1)).Equal(Tagged(8, Int(1))))
}

func TestValueOrdering(t *testing.T) {
	// rule 1: lower major type first
	assert.Negative(t, Uint(99).Compare(Int(-1)))
	assert.Negative(t, Int(-1).Compare(Bytes(nil)))
	assert.Negative(t, Bytes(nil).Compare(Text("")))
	assert.Negative(t, Text("zzz").Compare(Array()))

	// rule 2: shorter canonical serialization first
	assert.Negative(t, Uint(1).Compare(Uint(1000)))
	assert.Negative(t, Text("z").Compare(Text("aa")))

	// rule 3: lexicographic
	assert.Negative(t, Uint(10).Compare(Uint(11)))
	assert.Negative(t, Text("aa").Compare(Text("ab")))
	assert.Zero(t, Text("aa").Compare(Text("aa")))
	assert.Positive(t, Uint(24).Compare(Uint(23)) /* 0x1818 vs 0x17 */)
}

func TestValueRoundTrip(t *testing.T) {
	vals := []Value{
		Null(),
		Undefined(),
		Bool(true),
		Bool(false),
		Int(0),
		Int(-1000),
		Uint(math.MaxUint64),
		NegInt(math.MaxUint64),
		Float(1.5),
		Float(math.NaN()),
		Bytes([]byte{1, 2, 3}),
		Text("IETF"),
		Array(Int(1), Text("x"), Null()),
		Map(MapPair{Key: Int(1), Value: Text("b")}, MapPair{Key: Int(2), Value: Text("a")}),
		Tagged(32, Text("http://example.com")),
		Simple(99),
	}
	for _, v := range vals {
		enc := v.AppendCBOR(nil)
		back, rest, err := ReadValueBytes(enc)
		require.NoError(t, err, "decode %x", enc)
		require.Empty(t, rest)
		assert.True(t, v.Equal(back), "round trip %x", enc)

		// canonical stability: re-encoding the decoded value is identical
		assert.Equal(t, enc, back.AppendCBOR(nil))
	}
}

func TestValueAccessors(t *testing.T) {
	i, err := Int(-7).Int64()
	require.NoError(t, err)
	assert.Equal(t, int64(-7), i)

	_, err = NegInt(math.MaxUint64).Int64()
	assert.Error(t, err, "below int64 range")

	z, err := NegInt(math.MaxUint64).BigInt()
	require.NoError(t, err)
	assert.Equal(t, "-18446744073709551616", z.String())

	_, err = Int(-1).Uint64()
	assert.Error(t, err)

	u, err := Uint(42).Uint64()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), u)

	tag, inner := Tagged(1, Int(3)).Tag()
	assert.Equal(t, uint64(1), tag)
	assert.True(t, inner.Equal(Int(3)))
}

func TestToFromValue(t *testing.T) {
	type point struct {
		X int    `cbor:"x"`
		Y int    `cbor:"y"`
		L string `cbor:"label,omitempty"`
	}
	v, err := ToValue(point{X: 1, Y: -2})
	require.NoError(t, err)
	require.Equal(t, KindMap, v.Kind())
	require.Len(t, v.Map(), 2)

	var back point
	require.NoError(t, FromValue(v, &back))
	assert.Equal(t, point{X: 1, Y: -2}, back)
}
