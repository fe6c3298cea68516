package cbor

import (
	"math"
	"math/big"
	"reflect"
	"strconv"
	"time"
)

// DecOptions configures the decode side of the reflection bridge.
type DecOptions struct {
	// MaxDepth bounds item nesting. Zero means the package default (256).
	MaxDepth int

	// DisallowUnknownFields makes struct decoding fail with
	// UnknownFieldError when a map key matches no field. The default is
	// to skip unknown entries.
	DisallowUnknownFields bool

	// RejectDuplicates makes struct decoding fail with
	// DuplicateFieldError when a key resolves to a field that was already
	// set, and generic map decoding fail with ErrDuplicateMapKey. The
	// default keeps the last occurrence.
	RejectDuplicates bool
}

func (o DecOptions) maxDepth() int {
	if o.MaxDepth > 0 {
		return o.MaxDepth
	}
	return defaultMaxDepth
}

// Unmarshal decodes the single item in b into v, which must be a non-nil
// pointer. A leading self-describe tag is accepted and skipped. Bytes
// remaining after the item surface ErrTrailingBytes.
func Unmarshal(b []byte, v any) error {
	return DecOptions{}.Unmarshal(b, v)
}

// UnmarshalFirst decodes the first item in b into v and returns the
// remaining bytes.
func UnmarshalFirst(b []byte, v any) (rest []byte, err error) {
	return DecOptions{}.UnmarshalFirst(b, v)
}

// Unmarshal decodes the single item in b into v under the receiver's
// options, requiring the input to be fully consumed.
func (o DecOptions) Unmarshal(b []byte, v any) error {
	rest, err := o.UnmarshalFirst(b, v)
	if err != nil {
		return err
	}
	if len(rest) != 0 {
		return ErrTrailingBytes
	}
	return nil
}

// UnmarshalFirst decodes the first item in b into v under the receiver's
// options and returns the remaining bytes.
func (o DecOptions) UnmarshalFirst(b []byte, v any) (rest []byte, err error) {
	b, _, err = StripSelfDescribe(b)
	if err != nil {
		return b, err
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return b, &ErrUnsupportedType{Type: reflect.TypeOf(v).String()}
	}
	return decodeReflect(b, rv.Elem(), &o, o.maxDepth())
}

// readAny decodes one item into a dynamic Go value: nil, bool, uint64,
// int64 (or *big.Int below the int64 range), float64, string, []byte,
// []any, map[any]any, Tag, or uint8 for simple values other than
// false, true, null and undefined.
func readAny(b []byte, out *any, depth int) (rest []byte, err error) {
	if depth <= 0 {
		return b, ErrRecursion
	}
	if len(b) < 1 {
		return b, ErrShortBytes
	}
	switch getMajor(b[0]) {
	case majorUint:
		u, o, err := ReadUint64Bytes(b)
		if err != nil {
			return b, err
		}
		*out = u
		return o, nil

	case majorNegInt:
		arg, o, err := readHeadExpect(b, majorNegInt)
		if err != nil {
			return b, err
		}
		if arg > math.MaxInt64 {
			z := new(big.Int).SetUint64(arg)
			z.Add(z, big.NewInt(1))
			z.Neg(z)
			*out = z
			return o, nil
		}
		*out = -1 - int64(arg)
		return o, nil

	case majorBytes:
		v, o, err := ReadBytesBytes(b, nil)
		if err != nil {
			return b, err
		}
		cp := make([]byte, len(v))
		copy(cp, v)
		*out = cp
		return o, nil

	case majorText:
		s, o, err := ReadStringBytes(b)
		if err != nil {
			return b, err
		}
		*out = s
		return o, nil

	case majorArray:
		sz, indef, o, err := ReadArrayStartBytes(b)
		if err != nil {
			return b, err
		}
		arr := []any{}
		if indef {
			for {
				if len(o) < 1 {
					return b, ErrShortBytes
				}
				if o[0] == breakByte {
					o = o[1:]
					break
				}
				var e any
				o, err = readAny(o, &e, depth-1)
				if err != nil {
					return b, err
				}
				arr = append(arr, e)
			}
		} else {
			for i := uint64(0); i < sz; i++ {
				var e any
				o, err = readAny(o, &e, depth-1)
				if err != nil {
					return b, err
				}
				arr = append(arr, e)
			}
		}
		*out = arr
		return o, nil

	case majorMap:
		sz, indef, o, err := ReadMapStartBytes(b)
		if err != nil {
			return b, err
		}
		m := make(map[any]any, minInt(int(sz), 1024))
		readPair := func(p []byte) ([]byte, error) {
			var k, v any
			p, err := readAny(p, &k, depth-1)
			if err != nil {
				return p, err
			}
			p, err = readAny(p, &v, depth-1)
			if err != nil {
				return p, err
			}
			switch kk := k.(type) {
			case []byte:
				// byte-string keys are legal CBOR but not hashable in Go
				m[string(kk)] = v
			case []any, map[any]any:
				return p, &ErrUnsupportedType{Type: "composite map key"}
			default:
				m[k] = v
			}
			return p, nil
		}
		if indef {
			for {
				if len(o) < 1 {
					return b, ErrShortBytes
				}
				if o[0] == breakByte {
					o = o[1:]
					break
				}
				o, err = readPair(o)
				if err != nil {
					return b, err
				}
			}
		} else {
			for i := uint64(0); i < sz; i++ {
				o, err = readPair(o)
				if err != nil {
					return b, err
				}
			}
		}
		*out = m
		return o, nil

	case majorTag:
		num, o, err := ReadTagBytes(b)
		if err != nil {
			return b, err
		}
		var content any
		o, err = readAny(o, &content, depth-1)
		if err != nil {
			return b, err
		}
		*out = Tag{Number: num, Content: content}
		return o, nil

	default: // majorSimple
		h, o, err := readHead(b)
		if err != nil {
			return b, err
		}
		if h.indef {
			return b, ErrUnexpectedBreak
		}
		switch h.ai {
		case simpleFalse:
			*out = false
			return o, nil
		case simpleTrue:
			*out = true
			return o, nil
		case simpleNull, simpleUndefined:
			*out = nil
			return o, nil
		case simpleFloat16, simpleFloat32, simpleFloat64:
			f, o, err := ReadFloatBytes(b)
			if err != nil {
				return b, err
			}
			*out = f
			return o, nil
		default:
			sv, o, err := ReadSimpleValue(b)
			if err != nil {
				return b, err
			}
			*out = sv
			return o, nil
		}
	}
}

// decodeReflect decodes one item into the addressable value rv.
func decodeReflect(b []byte, rv reflect.Value, opts *DecOptions, depth int) (rest []byte, err error) {
	if depth <= 0 {
		return b, ErrRecursion
	}
	if len(b) < 1 {
		return b, ErrShortBytes
	}

	// Custom decoders come first so user types can own their wire shape.
	if rv.CanAddr() {
		addr := rv.Addr()
		if u, ok := addr.Interface().(Unmarshaler); ok {
			return u.UnmarshalCBOR(b)
		}
		if tu, ok := addr.Interface().(TagUnmarshaler); ok && getMajor(b[0]) == majorTag {
			num, o, err := ReadTagBytes(b)
			if err != nil {
				return b, err
			}
			return tu.UnmarshalCBORTag(num, o)
		}
	}

	// Null assigns the zero value to any nullable target.
	if IsNil(b) {
		switch rv.Kind() {
		case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map:
			rv.Set(reflect.Zero(rv.Type()))
			return b[1:], nil
		}
	}

	switch rv.Type() {
	case timeType:
		return decodeTime(b, rv)
	case bigIntType:
		z, o, err := ReadBigIntBytes(b)
		if err != nil {
			return b, err
		}
		rv.Set(reflect.ValueOf(*z))
		return o, nil
	}

	// Tags are transparent for concrete targets; Tag/RawTag and
	// TagUnmarshaler implementations were handled above, and the dynamic
	// paths preserve tags.
	if getMajor(b[0]) == majorTag && rv.Kind() != reflect.Interface {
		_, o, err := ReadTagBytes(b)
		if err != nil {
			return b, err
		}
		return decodeReflect(o, rv, opts, depth-1)
	}

	switch rv.Kind() {
	case reflect.Interface:
		if rv.NumMethod() != 0 {
			return b, &ErrUnsupportedType{Type: rv.Type().String()}
		}
		var out any
		o, err := readAny(b, &out, depth)
		if err != nil {
			return b, err
		}
		rv.Set(reflect.ValueOf(&out).Elem())
		return o, nil

	case reflect.Pointer:
		if rv.IsNil() {
			rv.Set(reflect.New(rv.Type().Elem()))
		}
		return decodeReflect(b, rv.Elem(), opts, depth)

	case reflect.Bool:
		v, o, err := ReadBoolBytes(b)
		if err != nil {
			return b, err
		}
		rv.SetBool(v)
		return o, nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, o, err := ReadInt64Bytes(b)
		if err != nil {
			return b, err
		}
		if rv.OverflowInt(i) {
			return b, IntOverflow{Value: i, FailedBitsize: rv.Type().Bits()}
		}
		rv.SetInt(i)
		return o, nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u, o, err := ReadUint64Bytes(b)
		if err != nil {
			return b, err
		}
		if rv.OverflowUint(u) {
			return b, UintOverflow{Value: u, FailedBitsize: rv.Type().Bits()}
		}
		rv.SetUint(u)
		return o, nil

	case reflect.Float32, reflect.Float64:
		f, o, err := ReadFloatBytes(b)
		if err != nil {
			return b, err
		}
		rv.SetFloat(f)
		return o, nil

	case reflect.String:
		s, o, err := ReadStringBytes(b)
		if err != nil {
			return b, err
		}
		rv.SetString(s)
		return o, nil

	case reflect.Slice:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			v, o, err := ReadBytesBytes(b, nil)
			if err != nil {
				return b, err
			}
			cp := reflect.MakeSlice(rv.Type(), len(v), len(v))
			reflect.Copy(cp, reflect.ValueOf(v))
			rv.Set(cp)
			return o, nil
		}
		return decodeArrayInto(b, rv, opts, depth, true)

	case reflect.Array:
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			v, o, err := ReadBytesBytes(b, nil)
			if err != nil {
				return b, err
			}
			if len(v) != rv.Len() {
				return b, TypeError{Method: BinType, Encoded: BinType}
			}
			reflect.Copy(rv, reflect.ValueOf(v))
			return o, nil
		}
		return decodeArrayInto(b, rv, opts, depth, false)

	case reflect.Map:
		return decodeMapInto(b, rv, opts, depth)

	case reflect.Struct:
		return decodeStructInto(b, rv, opts, depth)

	default:
		return b, &ErrUnsupportedType{Type: rv.Type().String()}
	}
}

var (
	timeType   = reflect.TypeOf(time.Time{})
	bigIntType = reflect.TypeOf(big.Int{})
)

// decodeTime accepts tag 1 (epoch) and tag 0 (RFC 3339 string) items.
func decodeTime(b []byte, rv reflect.Value) (rest []byte, err error) {
	if len(b) < 1 {
		return b, ErrShortBytes
	}
	if getMajor(b[0]) == majorTag {
		tag, _, err := readHead(b)
		if err != nil {
			return b, err
		}
		if tag.arg == tagDateTimeString {
			t, o, err := ReadRFC3339TimeBytes(b)
			if err != nil {
				return b, err
			}
			rv.Set(reflect.ValueOf(t))
			return o, nil
		}
	}
	t, o, err := ReadTimeBytes(b)
	if err != nil {
		return b, err
	}
	rv.Set(reflect.ValueOf(t))
	return o, nil
}

// decodeArrayInto fills a slice (grow=true) or fixed array from a CBOR
// array of either length form.
func decodeArrayInto(b []byte, rv reflect.Value, opts *DecOptions, depth int, grow bool) (rest []byte, err error) {
	sz, indef, o, err := ReadArrayStartBytes(b)
	if err != nil {
		return b, err
	}
	et := rv.Type().Elem()
	n := 0
	store := func(p []byte) ([]byte, error) {
		ev := reflect.New(et).Elem()
		p, err := decodeReflect(p, ev, opts, depth-1)
		if err != nil {
			return p, err
		}
		if grow {
			rv.Set(reflect.Append(rv, ev))
		} else {
			if n >= rv.Len() {
				return p, TypeError{Method: ArrayType, Encoded: ArrayType}
			}
			rv.Index(n).Set(ev)
		}
		n++
		return p, nil
	}
	if grow {
		rv.Set(reflect.MakeSlice(rv.Type(), 0, minInt(int(sz), 1024)))
	}
	if indef {
		for {
			if len(o) < 1 {
				return b, ErrShortBytes
			}
			if o[0] == breakByte {
				o = o[1:]
				break
			}
			o, err = store(o)
			if err != nil {
				return b, err
			}
		}
	} else {
		for i := uint64(0); i < sz; i++ {
			o, err = store(o)
			if err != nil {
				return b, err
			}
		}
	}
	if !grow && n != rv.Len() {
		return b, TypeError{Method: ArrayType, Encoded: ArrayType}
	}
	return o, nil
}

// decodeMapInto fills a Go map from a CBOR map of either length form.
// Duplicate keys keep the last occurrence unless RejectDuplicates is set.
func decodeMapInto(b []byte, rv reflect.Value, opts *DecOptions, depth int) (rest []byte, err error) {
	sz, indef, o, err := ReadMapStartBytes(b)
	if err != nil {
		return b, err
	}
	t := rv.Type()
	if rv.IsNil() {
		rv.Set(reflect.MakeMapWithSize(t, minInt(int(sz), 1024)))
	}
	var seen map[string]struct{}
	if opts.RejectDuplicates {
		seen = make(map[string]struct{}, minInt(int(sz), 1024))
	}
	readPair := func(p []byte) ([]byte, error) {
		if seen != nil {
			r, err := Skip(p)
			if err != nil {
				return p, err
			}
			raw := string(p[:len(p)-len(r)])
			if _, dup := seen[raw]; dup {
				return p, ErrDuplicateMapKey
			}
			seen[raw] = struct{}{}
		}
		kv := reflect.New(t.Key()).Elem()
		p, err := decodeReflect(p, kv, opts, depth-1)
		if err != nil {
			return p, err
		}
		vv := reflect.New(t.Elem()).Elem()
		p, err = decodeReflect(p, vv, opts, depth-1)
		if err != nil {
			return p, err
		}
		rv.SetMapIndex(kv, vv)
		return p, nil
	}
	if indef {
		for {
			if len(o) < 1 {
				return b, ErrShortBytes
			}
			if o[0] == breakByte {
				return o[1:], nil
			}
			o, err = readPair(o)
			if err != nil {
				return b, err
			}
		}
	}
	for i := uint64(0); i < sz; i++ {
		o, err = readPair(o)
		if err != nil {
			return b, err
		}
	}
	return o, nil
}

// decodeStructInto fills a struct from a CBOR map. Text keys resolve by
// field name; integer keys resolve by declaration index, the symmetric
// form of the packed encode mode.
func decodeStructInto(b []byte, rv reflect.Value, opts *DecOptions, depth int) (rest []byte, err error) {
	sz, indef, o, err := ReadMapStartBytes(b)
	if err != nil {
		return b, err
	}
	info := cachedStructInfo(rv.Type())
	var seen []bool
	if opts.RejectDuplicates {
		seen = make([]bool, len(info.byDecl))
	}

	readEntry := func(p []byte) ([]byte, error) {
		if len(p) < 1 {
			return p, ErrShortBytes
		}
		var f *structField
		var keyName string
		switch getMajor(p[0]) {
		case majorText:
			raw, r, err := ReadStringZC(p)
			if err != nil {
				return p, err
			}
			keyName = string(raw)
			f = info.lookup[keyName]
			p = r
		case majorUint:
			idx, r, err := ReadUint64Bytes(p)
			if err != nil {
				return p, err
			}
			if idx < uint64(len(info.byDecl)) {
				f = &info.byDecl[idx]
				keyName = f.name
			} else {
				keyName = "#" + strconv.FormatUint(idx, 10)
			}
			p = r
		default:
			// keys of other types never address a field
			r, err := Skip(p)
			if err != nil {
				return p, err
			}
			keyName = "?"
			p = r
		}

		if f == nil {
			if opts.DisallowUnknownFields {
				return p, UnknownFieldError{Field: keyName}
			}
			return Skip(p)
		}
		if seen != nil {
			if seen[f.declIndex] {
				return p, DuplicateFieldError{Field: f.name}
			}
			seen[f.declIndex] = true
		}
		p, err := decodeReflect(p, rv.FieldByIndex(f.index), opts, depth-1)
		if err != nil {
			return p, WrapError(err, f.name)
		}
		return p, nil
	}

	if indef {
		for {
			if len(o) < 1 {
				return b, ErrShortBytes
			}
			if o[0] == breakByte {
				return o[1:], nil
			}
			o, err = readEntry(o)
			if err != nil {
				return b, err
			}
		}
	}
	for i := uint64(0); i < sz; i++ {
		o, err = readEntry(o)
		if err != nil {
			return b, err
		}
	}
	return o, nil
}
