package cbor

import (
	"testing"

	fxcbor "github.com/fxamacker/cbor/v2"
	"github.com/tinylib/msgp/msgp"
)

type benchRecord struct {
	Name    string   `cbor:"name"`
	Seq     uint64   `cbor:"seq"`
	Pending int64    `cbor:"pending"`
	Active  bool     `cbor:"active"`
	Subject []string `cbor:"subject"`
}

var benchIn = benchRecord{
	Name:    "stream-snapshot",
	Seq:     88231,
	Pending: -3,
	Active:  true,
	Subject: []string{"orders.>", "events.us.*"},
}

func BenchmarkMarshalStruct(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Marshal(benchIn); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkMarshalStructFxamacker(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := fxcbor.Marshal(benchIn); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkUnmarshalStruct(b *testing.B) {
	enc, err := Marshal(benchIn)
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var out benchRecord
		if err := Unmarshal(enc, &out); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkAppendPrimitives compares the raw append family against the
// msgp runtime's equivalent, the closest relative of this package's
// design.
func BenchmarkAppendPrimitives(b *testing.B) {
	buf := make([]byte, 0, 64)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		buf = buf[:0]
		buf = AppendInt64(buf, int64(i))
		buf = AppendString(buf, "subject")
		buf = AppendBool(buf, true)
		buf = AppendFloat64(buf, 3.14)
	}
}

func BenchmarkAppendPrimitivesMsgp(b *testing.B) {
	buf := make([]byte, 0, 64)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		buf = buf[:0]
		buf = msgp.AppendInt64(buf, int64(i))
		buf = msgp.AppendString(buf, "subject")
		buf = msgp.AppendBool(buf, true)
		buf = msgp.AppendFloat64(buf, 3.14)
	}
}

func BenchmarkReadValue(b *testing.B) {
	enc, err := Marshal(map[string]any{"a": 1, "b": []any{2, 3}, "c": "text"})
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := ReadValueBytes(enc); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkCanonicalMap(b *testing.B) {
	m := make(map[string]int, 64)
	for i := 0; i < 64; i++ {
		m[string(rune('a'+i%26))+string(rune('a'+i/26))] = i
	}
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		if _, err := Marshal(m); err != nil {
			b.Fatal(err)
		}
	}
}
