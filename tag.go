package cbor

// Tag associates a semantic tag number with arbitrary content. It is the
// encode- and decode-side view of a major-6 item for users who want the
// tag preserved rather than interpreted.
//
// On encode, the bridge writes head(major 6, Number) followed by the
// content. On decode into a *Tag, the tag number and the decoded content
// are stored here; the number is held on the decoding call's own state and
// never in process-wide storage, so concurrent decodes cannot observe each
// other's tags.
type Tag struct {
	Number  uint64
	Content any
}

// MarshalCBOR implements Marshaler.
func (t Tag) MarshalCBOR(b []byte) ([]byte, error) {
	b = AppendTag(b, t.Number)
	return appendAny(b, t.Content)
}

// UnmarshalCBOR implements Unmarshaler.
func (t *Tag) UnmarshalCBOR(b []byte) ([]byte, error) {
	num, o, err := ReadTagBytes(b)
	if err != nil {
		return b, err
	}
	var content any
	rest, err := readAny(o, &content, defaultMaxDepth)
	if err != nil {
		return b, err
	}
	t.Number = num
	t.Content = content
	return rest, nil
}

// RawTag is like Tag but leaves the content encoded. Useful for routing
// on the tag number without decoding the payload.
type RawTag struct {
	Number  uint64
	Content RawMessage
}

// MarshalCBOR implements Marshaler. Empty content encodes as null.
func (t RawTag) MarshalCBOR(b []byte) ([]byte, error) {
	b = AppendTag(b, t.Number)
	return t.Content.MarshalCBOR(b)
}

// UnmarshalCBOR implements Unmarshaler.
func (t *RawTag) UnmarshalCBOR(b []byte) ([]byte, error) {
	num, o, err := ReadTagBytes(b)
	if err != nil {
		return b, err
	}
	rest, err := t.Content.UnmarshalCBOR(o)
	if err != nil {
		return b, err
	}
	t.Number = num
	return rest, nil
}

// Variant is the bridge's rendering of a sum-type case. A unit variant
// (nil Payload) encodes as its bare index or name depending on the packed
// flag; a variant with a payload encodes as the two-element array
// [variant, payload].
type Variant struct {
	Index   uint32
	Name    string
	Payload any
}

// appendVariant encodes a Variant under the given packing mode.
func appendVariant(b []byte, v Variant, packed bool) ([]byte, error) {
	sel := func(dst []byte) []byte {
		if packed {
			return AppendUint32(dst, v.Index)
		}
		return AppendString(dst, v.Name)
	}
	if v.Payload == nil {
		return sel(b), nil
	}
	b = AppendArrayHeader(b, 2)
	b = sel(b)
	return appendAny(b, v.Payload)
}
