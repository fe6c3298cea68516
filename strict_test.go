package cbor

import (
	"errors"
	"testing"
)

// TestStrictCanonicalDecode verifies that strict mode rejects
// non-shortest argument encodings, as recommended for canonical
// validation.
func TestStrictCanonicalDecode(t *testing.T) {
	// array of length 2 encoded with a needless uint8 argument
	r := NewReaderBytes(mustHex(t, "9802"))
	r.SetStrictDecode(true)
	if _, err := r.ReadArrayHeader(); !errors.Is(err, ErrNonCanonicalInteger) {
		t.Fatalf("array: %v", err)
	}

	// map of length 2 via uint8
	r = NewReaderBytes(mustHex(t, "b802"))
	r.SetStrictDecode(true)
	if _, err := r.ReadMapHeader(); !errors.Is(err, ErrNonCanonicalInteger) {
		t.Fatalf("map: %v", err)
	}

	// integer 10 encoded as 0x18 0x0a
	r = NewReaderBytes(mustHex(t, "180a"))
	r.SetStrictDecode(true)
	if _, err := r.ReadUint64(); !errors.Is(err, ErrNonCanonicalInteger) {
		t.Fatalf("uint: %v", err)
	}

	// the same bytes pass without strict mode
	r = NewReaderBytes(mustHex(t, "180a"))
	if u, err := r.ReadUint64(); err != nil || u != 10 {
		t.Fatalf("lenient uint: %d %v", u, err)
	}

	// 1.0 as float64 is non-canonical (half width suffices)
	r = NewReaderBytes(mustHex(t, "fb3ff0000000000000"))
	r.SetStrictDecode(true)
	if _, err := r.ReadFloat64(); !errors.Is(err, ErrNonCanonicalFloat) {
		t.Fatalf("float: %v", err)
	}
	r = NewReaderBytes(mustHex(t, "f93c00"))
	r.SetStrictDecode(true)
	if f, err := r.ReadFloat64(); err != nil || f != 1.0 {
		t.Fatalf("canonical half: %v %v", f, err)
	}
}

// TestDeterministicDecode forbids indefinite-length items.
func TestDeterministicDecode(t *testing.T) {
	r := NewReaderBytes(mustHex(t, "9fff"))
	r.SetDeterministicDecode(true)
	if _, _, err := r.ReadArrayStart(); !errors.Is(err, ErrIndefiniteForbidden) {
		t.Fatalf("array: %v", err)
	}

	r = NewReaderBytes(mustHex(t, "7f60ff"))
	r.SetDeterministicDecode(true)
	if _, err := r.ReadString(); !errors.Is(err, ErrIndefiniteForbidden) {
		t.Fatalf("string: %v", err)
	}

	// without the flag the same input is fine
	r = NewReaderBytes(mustHex(t, "9fff"))
	if _, indef, err := r.ReadArrayStart(); err != nil || !indef {
		t.Fatalf("lenient: %v", err)
	}
}

// TestContainerLimit bounds adversarial headers.
func TestContainerLimit(t *testing.T) {
	r := NewReaderBytes(mustHex(t, "9b0000000100000000")) // array of 2^32 items
	r.SetMaxContainerLen(1 << 20)
	if _, err := r.ReadArrayHeader(); !errors.Is(err, ErrContainerTooLarge) {
		t.Fatalf("got %v", err)
	}
}

// TestDuplicateKeyDetection validates ReadMapNoDupBytes on both length
// forms.
func TestDuplicateKeyDetection(t *testing.T) {
	// {"a":1,"a":2}
	dup := mustHex(t, "a2616101616102")
	if _, err := ReadMapNoDupBytes(dup); !errors.Is(err, ErrDuplicateMapKey) {
		t.Fatalf("definite: %v", err)
	}
	// {_ "a":1,"a":2}
	dupIndef := mustHex(t, "bf616101616102ff")
	if _, err := ReadMapNoDupBytes(dupIndef); !errors.Is(err, ErrDuplicateMapKey) {
		t.Fatalf("indefinite: %v", err)
	}
	// clean map passes
	if rest, err := ReadMapNoDupBytes(mustHex(t, "a2616101616202")); err != nil || len(rest) != 0 {
		t.Fatalf("clean: %v", err)
	}

	// generic map decode keeps the last duplicate by default and rejects
	// under RejectDuplicates
	var m map[string]int
	if err := Unmarshal(dup, &m); err != nil || m["a"] != 2 {
		t.Fatalf("keep-last: %v %v", m, err)
	}
	if err := (DecOptions{RejectDuplicates: true}).Unmarshal(dup, &m); !errors.Is(err, ErrDuplicateMapKey) {
		t.Fatalf("reject: %v", err)
	}
}

// TestCanonicalOrderCheck verifies the optional decode-side map ordering
// check.
func TestCanonicalOrderCheck(t *testing.T) {
	// {1:"b",2:"a"} is canonical
	if rest, err := ReadMapCanonicalBytes(mustHex(t, "a2016162026161")); err != nil || len(rest) != 0 {
		t.Fatalf("canonical: %v", err)
	}
	// {2:"a",1:"b"} is not
	if _, err := ReadMapCanonicalBytes(mustHex(t, "a2026161016162")); !errors.Is(err, ErrMapNotCanonical) {
		t.Fatalf("out of order: %v", err)
	}
	// duplicates are reported as duplicates
	if _, err := ReadMapCanonicalBytes(mustHex(t, "a2016162016161")); !errors.Is(err, ErrDuplicateMapKey) {
		t.Fatalf("duplicate: %v", err)
	}
}

// TestReaderZeroCopy checks the borrowed-decode contract of the slice
// reader.
func TestReaderZeroCopy(t *testing.T) {
	src := AppendString(nil, "borrowed")
	r := NewReaderBytes(src)
	v, err := r.ReadStringZC()
	if err != nil {
		t.Fatal(err)
	}
	if &v[0] != &src[1] {
		t.Fatal("expected a subslice of the input")
	}

	// indefinite strings may not be borrowed: the ZC reader rejects them
	ind := mustHex(t, "7f60ff")
	r = NewReaderBytes(ind)
	if _, err := r.ReadStringZC(); err == nil {
		t.Fatal("expected error for indefinite borrow")
	}
}

// TestValidateDocument runs the well-formedness checker over good and
// bad documents.
func TestValidateDocument(t *testing.T) {
	good := AppendSequence(nil,
		AppendInt(nil, 1),
		AppendString(nil, "ok"),
		mustHex(t, "9f0102ff"),
		mustHex(t, "d9d9f780"),
	)
	if err := ValidateDocument(good); err != nil {
		t.Fatalf("good doc: %v", err)
	}

	for _, bad := range []string{
		"62ffff",             // invalid utf-8 text
		"5f6161ff",           // text chunk in byte string
		"fc",                 // reserved ai 28
		"1c",                 // reserved ai on major 0
		"81",                 // truncated array
		"ff",                 // bare break
		"f800",               // two-byte simple value below 32
	} {
		if err := ValidateDocument(mustHex(t, bad)); err == nil {
			t.Errorf("expected error for %s", bad)
		}
	}
}
