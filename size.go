package cbor

// Worst-case encoded sizes for common items. For variable-length types
// the total encoded size is the prefix size plus the payload length.
const (
	Int64Size        = 9
	IntSize          = Int64Size
	UintSize         = Int64Size
	Uint64Size       = Int64Size
	Float64Size      = 9
	Float32Size      = 5
	Float16Size      = 3
	BoolSize         = 1
	NilSize          = 1
	BreakSize        = 1
	ArrayHeaderSize  = 9
	MapHeaderSize    = 9
	BytesPrefixSize  = 9
	StringPrefixSize = 9
	TagPrefixSize    = 9
)
