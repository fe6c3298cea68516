package cbor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiagNotation(t *testing.T) {
	cases := []struct {
		hex  string
		want string
	}{
		{"00", "0"},
		{"3903e7", "-1000"},
		{"6449455446", `"IETF"`},
		{"4401020304", "h'01020304'"},
		{"83010203", "[1, 2, 3]"},
		{"a26161016162820203", `{"a": 1, "b": [2, 3]}`},
		{"c074323031332d30332d32315432303a30343a30305a", `0("2013-03-21T20:04:00Z")`},
		{"f4", "false"},
		{"f6", "null"},
		{"f7", "undefined"},
		{"f0", "simple(16)"},
		{"f97c00", "Infinity"},
		{"f9fc00", "-Infinity"},
		{"f97e00", "NaN"},
		{"f93e00", "1.5"},
		{"fb3ff0000000000000", "1.0"},
		{"9f0102ff", "[_ 1, 2]"},
	}

	for _, c := range cases {
		got, rest, err := Diag(mustHex(t, c.hex))
		require.NoError(t, err, c.hex)
		require.Empty(t, rest)
		assert.Equal(t, c.want, got, c.hex)
	}

	// chunked text renders with chunk boundaries
	got, _, err := Diag(AppendSequence(nil,
		AppendTextHeaderIndefinite(nil), AppendTextChunk(nil, "strea"), AppendTextChunk(nil, "ming"), AppendBreak(nil)))
	require.NoError(t, err)
	assert.Equal(t, `(_ "strea", "ming")`, got)
}

func TestJSONInterop(t *testing.T) {
	// CBOR -> JSON
	out, rest, err := ToJSON(mustHex(t, "a26161016162820203"))
	require.NoError(t, err)
	require.Empty(t, rest)
	assert.JSONEq(t, `{"a":1,"b":[2,3]}`, string(out))

	out, _, err = ToJSON(AppendBytes(nil, []byte{1, 2, 3}))
	require.NoError(t, err)
	assert.Equal(t, `"AQID"`, string(out))

	// non-finite floats have no JSON form
	out, _, err = ToJSON(mustHex(t, "f97e00"))
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))

	// integer map keys are quoted
	out, _, err = ToJSON(mustHex(t, "a1016162"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"1":"b"}`, string(out))

	// JSON -> canonical CBOR
	enc, err := FromJSON(nil, []byte(`{"b":[2,3],"a":1}`))
	require.NoError(t, err)
	assert.Equal(t, mustHex(t, "a26161016162820203"), enc)

	enc, err = FromJSON(nil, []byte(`[1,2.5,"x",null,true]`))
	require.NoError(t, err)
	want := AppendArrayHeader(nil, 5)
	want = AppendInt(want, 1)
	want = AppendFloat64(want, 2.5)
	want = AppendString(want, "x")
	want = AppendNil(want)
	want = AppendBool(want, true)
	assert.Equal(t, want, enc)

	// round trip: JSON -> CBOR -> JSON
	back, _, err := ToJSON(enc)
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2.5,"x",null,true]`, string(back))
}

func TestBignumJSON(t *testing.T) {
	// tag 2 bignum surfaces as a number literal
	out, _, err := ToJSON(mustHex(t, "c249010000000000000000"))
	require.NoError(t, err)
	assert.Equal(t, "18446744073709551616", string(out))
}
