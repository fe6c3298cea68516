package cbor

import (
	"bytes"
	"math/big"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"
)

// EncOptions configures the encode side of the reflection bridge.
type EncOptions struct {
	// Packed replaces struct field names with their 0-based declaration
	// indices, producing integer-keyed maps that a decoder with the same
	// schema resolves positionally.
	Packed bool

	// SelfDescribe prefixes the document with tag 55799.
	SelfDescribe bool
}

// Marshal encodes v as canonical CBOR.
func Marshal(v any) ([]byte, error) {
	return EncOptions{}.Marshal(v)
}

// MarshalPacked encodes v with struct field names packed to their
// declaration indices.
func MarshalPacked(v any) ([]byte, error) {
	return EncOptions{Packed: true}.Marshal(v)
}

// MarshalSelfDescribe encodes v prefixed with the self-describe tag.
func MarshalSelfDescribe(v any) ([]byte, error) {
	return EncOptions{SelfDescribe: true}.Marshal(v)
}

// Marshal encodes v under the receiver's options.
func (o EncOptions) Marshal(v any) ([]byte, error) {
	return o.Append(nil, v)
}

// Append encodes v under the receiver's options, appending to b.
func (o EncOptions) Append(b []byte, v any) ([]byte, error) {
	if o.SelfDescribe {
		b = AppendSelfDescribe(b)
	}
	return appendValue(b, v, o.Packed, defaultMaxDepth)
}

// appendAny encodes v with default options, used wherever the codec needs
// to recurse into arbitrary content (tag content, variant payloads, map values).
func appendAny(b []byte, v any) ([]byte, error) {
	return appendValue(b, v, false, defaultMaxDepth)
}

// appendValue dispatches on the concrete type of v, preferring direct
// type switches over reflection for the common shapes.
func appendValue(b []byte, v any, packed bool, depth int) ([]byte, error) {
	if depth <= 0 {
		return b, ErrRecursion
	}
	if v == nil {
		return AppendNil(b), nil
	}

	switch x := v.(type) {
	case Marshaler:
		return x.MarshalCBOR(b)
	case Variant:
		return appendVariant(b, x, packed)
	case bool:
		return AppendBool(b, x), nil
	case int:
		return AppendInt(b, x), nil
	case int8:
		return AppendInt8(b, x), nil
	case int16:
		return AppendInt16(b, x), nil
	case int32:
		return AppendInt32(b, x), nil
	case int64:
		return AppendInt64(b, x), nil
	case uint:
		return AppendUint(b, x), nil
	case uint8:
		return AppendUint8(b, x), nil
	case uint16:
		return AppendUint16(b, x), nil
	case uint32:
		return AppendUint32(b, x), nil
	case uint64:
		return AppendUint64(b, x), nil
	case float32:
		return AppendFloat32(b, x), nil
	case float64:
		return AppendFloat64(b, x), nil
	case string:
		return AppendString(b, x), nil
	case []byte:
		return AppendBytes(b, x), nil
	case time.Time:
		return AppendTime(b, x), nil
	case time.Duration:
		return AppendDuration(b, x), nil
	case big.Int:
		return AppendBigInt(b, &x), nil
	case *big.Int:
		return AppendBigInt(b, x), nil
	case []any:
		b = AppendArrayHeader(b, uint64(len(x)))
		var err error
		for _, e := range x {
			b, err = appendValue(b, e, packed, depth-1)
			if err != nil {
				return b, err
			}
		}
		return b, nil
	case map[string]any:
		return AppendMapCanonical(b, x,
			func(dst []byte, k string) []byte { return AppendString(dst, k) },
			func(dst []byte, v any) ([]byte, error) { return appendValue(dst, v, packed, depth-1) })
	}

	return appendReflect(b, reflect.ValueOf(v), packed, depth)
}

// appendReflect handles the shapes the type switch above did not.
func appendReflect(b []byte, rv reflect.Value, packed bool, depth int) ([]byte, error) {
	if depth <= 0 {
		return b, ErrRecursion
	}

	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return AppendNil(b), nil
		}
		return appendValue(b, rv.Elem().Interface(), packed, depth)

	case reflect.Bool:
		return AppendBool(b, rv.Bool()), nil

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return AppendInt64(b, rv.Int()), nil

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return AppendUint64(b, rv.Uint()), nil

	case reflect.Float32:
		return AppendFloat32(b, float32(rv.Float())), nil

	case reflect.Float64:
		return AppendFloat64(b, rv.Float()), nil

	case reflect.String:
		return AppendString(b, rv.String()), nil

	case reflect.Slice:
		if rv.IsNil() {
			return AppendNil(b), nil
		}
		if rv.Type().Elem().Kind() == reflect.Uint8 {
			return AppendBytes(b, rv.Bytes()), nil
		}
		fallthrough

	case reflect.Array:
		n := rv.Len()
		b = AppendArrayHeader(b, uint64(n))
		var err error
		for i := 0; i < n; i++ {
			b, err = appendValue(b, rv.Index(i).Interface(), packed, depth-1)
			if err != nil {
				return b, err
			}
		}
		return b, nil

	case reflect.Map:
		if rv.IsNil() {
			return AppendNil(b), nil
		}
		return appendReflectMap(b, rv, packed, depth)

	case reflect.Struct:
		return appendStruct(b, rv, packed, depth)

	default:
		return b, &ErrUnsupportedType{Type: rv.Type().String()}
	}
}

// appendReflectMap writes an arbitrary Go map in canonical key order.
func appendReflectMap(b []byte, rv reflect.Value, packed bool, depth int) ([]byte, error) {
	n := rv.Len()
	pairs := make([]RawPair, 0, n)
	var scratch []byte
	iter := rv.MapRange()
	for iter.Next() {
		ks := len(scratch)
		var err error
		scratch, err = appendValue(scratch, iter.Key().Interface(), packed, depth-1)
		if err != nil {
			return b, err
		}
		vs := len(scratch)
		scratch, err = appendValue(scratch, iter.Value().Interface(), packed, depth-1)
		if err != nil {
			return b, err
		}
		pairs = append(pairs, RawPair{Key: scratch[ks:vs], Value: scratch[vs:]})
	}
	return AppendRawMap(b, pairs), nil
}

// structField describes one encodable field of a struct type.
type structField struct {
	name      string
	encName   []byte // canonical text-string encoding of name
	declIndex uint64 // 0-based declaration index among encodable fields
	index     []int  // reflect field index chain
	omitEmpty bool
}

// structInfo is the cached bridge schema of a struct type. byDecl holds
// fields in declaration order (the packed-mode output order); byName is
// the same set sorted by canonical key bytes (the named-mode order).
type structInfo struct {
	byDecl []structField
	byName []structField
	lookup map[string]*structField
}

var structCache sync.Map // reflect.Type -> *structInfo

func cachedStructInfo(t reflect.Type) *structInfo {
	if v, ok := structCache.Load(t); ok {
		return v.(*structInfo)
	}
	info := buildStructInfo(t)
	actual, _ := structCache.LoadOrStore(t, info)
	return actual.(*structInfo)
}

func buildStructInfo(t reflect.Type) *structInfo {
	info := &structInfo{lookup: make(map[string]*structField)}
	var decl uint64
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := f.Tag.Get("cbor")
		if tag == "-" {
			continue
		}
		name := f.Name
		omitEmpty := false
		if tag != "" {
			parts := strings.Split(tag, ",")
			if parts[0] != "" {
				name = parts[0]
			}
			for _, p := range parts[1:] {
				if p == "omitempty" {
					omitEmpty = true
				}
			}
		}
		info.byDecl = append(info.byDecl, structField{
			name:      name,
			encName:   AppendString(nil, name),
			declIndex: decl,
			index:     f.Index,
			omitEmpty: omitEmpty,
		})
		decl++
	}
	info.byName = make([]structField, len(info.byDecl))
	copy(info.byName, info.byDecl)
	sort.SliceStable(info.byName, func(i, j int) bool {
		return bytes.Compare(info.byName[i].encName, info.byName[j].encName) < 0
	})
	for i := range info.byDecl {
		f := &info.byDecl[i]
		info.lookup[f.name] = f
	}
	return info
}

// appendStruct writes a struct as a map. In packed mode keys are the
// 0-based declaration indices (ascending order is already canonical for
// unsigned integers); otherwise keys are the field names sorted by their
// canonical encodings.
func appendStruct(b []byte, rv reflect.Value, packed bool, depth int) ([]byte, error) {
	info := cachedStructInfo(rv.Type())

	fields := info.byName
	if packed {
		fields = info.byDecl
	}

	// Count first: omitempty makes the header size data-dependent.
	selected := make([]int, 0, len(fields))
	for i := range fields {
		fv := rv.FieldByIndex(fields[i].index)
		if fields[i].omitEmpty && isEmptyValue(fv) {
			continue
		}
		selected = append(selected, i)
	}

	b = AppendMapHeader(b, uint64(len(selected)))
	var err error
	for _, i := range selected {
		f := &fields[i]
		if packed {
			b = AppendUint64(b, f.declIndex)
		} else {
			b = append(b, f.encName...)
		}
		b, err = appendValue(b, rv.FieldByIndex(f.index).Interface(), packed, depth-1)
		if err != nil {
			return b, WrapError(err, f.name)
		}
	}
	return b, nil
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Array, reflect.Map, reflect.Slice, reflect.String:
		return v.Len() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Interface, reflect.Pointer:
		return v.IsNil()
	}
	return false
}
