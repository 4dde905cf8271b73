package protocol

import (
	"fmt"
	"math"
)

// Kind identifies a big-endian fixed-width field.
type Kind uint8

const (
	Bool Kind = iota + 1
	Int8
	Uint8
	Int16
	Uint16
	Int32
	Uint32
	Int64
	Uint64
	Float32
	Float64
)

// Size returns the encoded width of the field in bytes, or 0 for an
// unknown kind.
func (k Kind) Size() int {
	switch k {
	case Bool, Int8, Uint8:
		return 1
	case Int16, Uint16:
		return 2
	case Int32, Uint32, Float32:
		return 4
	case Int64, Uint64, Float64:
		return 8
	default:
		return 0
	}
}

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Int8:
		return "int8"
	case Uint8:
		return "uint8"
	case Int16:
		return "int16"
	case Uint16:
		return "uint16"
	case Int32:
		return "int32"
	case Uint32:
		return "uint32"
	case Int64:
		return "int64"
	case Uint64:
		return "uint64"
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Layout is an ordered sequence of fixed-width fields.
type Layout []Kind

// Size returns the total encoded width of the layout in bytes.
func (l Layout) Size() int {
	n := 0
	for _, k := range l {
		n += k.Size()
	}
	return n
}

// Repeat returns a layout of n fields of kind k.
func Repeat(k Kind, n int) Layout {
	l := make(Layout, n)
	for i := range l {
		l[i] = k
	}
	return l
}

// Pack encodes values according to layout. Integer kinds accept any Go
// integer whose value fits the field; float kinds accept float32 or float64;
// Bool accepts bool. Nothing is returned unless every value encodes.
func Pack(layout Layout, values ...any) ([]byte, error) {
	return AppendPack(make([]byte, 0, layout.Size()), layout, values...)
}

// AppendPack is Pack appending onto dst. On error dst is returned unchanged.
func AppendPack(dst []byte, layout Layout, values ...any) ([]byte, error) {
	if len(values) != len(layout) {
		return dst, fmt.Errorf("%w: %d fields, %d values", ErrLayoutMismatch, len(layout), len(values))
	}
	out := dst
	for i, k := range layout {
		var err error
		out, err = appendField(out, k, values[i])
		if err != nil {
			return dst, fmt.Errorf("field %d (%s): %w", i, k, err)
		}
	}
	return out, nil
}

// Unpack decodes one value per field of layout, in order. Values carry the
// Go type named by their kind (int16 for Int16, float32 for Float32, ...).
// The cursor does not move unless the whole layout is available.
func (b *Buffer) Unpack(layout Layout) ([]any, error) {
	for _, k := range layout {
		if k.Size() == 0 {
			return nil, fmt.Errorf("%w: unknown kind %s", ErrLayoutMismatch, k)
		}
	}
	if b.Remaining() < layout.Size() {
		return nil, ErrOutOfData
	}
	out := make([]any, len(layout))
	for i, k := range layout {
		// Cannot fail: size was checked above.
		out[i], _ = b.readField(k)
	}
	return out, nil
}

// UnpackOne decodes a single field and returns it as a scalar.
func (b *Buffer) UnpackOne(k Kind) (any, error) {
	vs, err := b.Unpack(Layout{k})
	if err != nil {
		return nil, err
	}
	return vs[0], nil
}

// PackArray encodes values as a run of fields of one kind.
func PackArray(k Kind, values ...any) ([]byte, error) {
	return Pack(Repeat(k, len(values)), values...)
}

// UnpackArray decodes a run of n fields of one kind.
func (b *Buffer) UnpackArray(k Kind, n int) ([]any, error) {
	if n < 0 {
		return nil, rangeErr("array length", int64(n), 0, math.MaxInt32)
	}
	if k.Size() == 0 {
		return nil, fmt.Errorf("%w: unknown kind %s", ErrLayoutMismatch, k)
	}
	// Checked before Repeat so a hostile count allocates nothing.
	if n > b.Remaining()/k.Size() {
		return nil, ErrOutOfData
	}
	return b.Unpack(Repeat(k, n))
}

func (b *Buffer) readField(k Kind) (any, error) {
	switch k {
	case Bool:
		return b.ReadBool()
	case Int8:
		return b.ReadInt8()
	case Uint8:
		return b.ReadUint8()
	case Int16:
		return b.ReadInt16()
	case Uint16:
		return b.ReadUint16()
	case Int32:
		return b.ReadInt32()
	case Uint32:
		return b.ReadUint32()
	case Int64:
		return b.ReadInt64()
	case Uint64:
		return b.ReadUint64()
	case Float32:
		return b.ReadFloat32()
	case Float64:
		return b.ReadFloat64()
	default:
		return nil, fmt.Errorf("%w: unknown kind %s", ErrLayoutMismatch, k)
	}
}

func appendField(dst []byte, k Kind, v any) ([]byte, error) {
	switch k {
	case Bool:
		x, ok := v.(bool)
		if !ok {
			return dst, typeMismatch(k, v)
		}
		return AppendBool(dst, x), nil
	case Float32, Float64:
		var f float64
		switch x := v.(type) {
		case float32:
			f = float64(x)
		case float64:
			f = x
		default:
			return dst, typeMismatch(k, v)
		}
		if k == Float32 {
			return AppendFloat32(dst, float32(f)), nil
		}
		return AppendFloat64(dst, f), nil
	case Uint64:
		s, u, large, ok := toInteger(v)
		if !ok {
			return dst, typeMismatch(k, v)
		}
		if !large {
			if s < 0 {
				return dst, rangeErr(k.String(), s, 0, math.MaxInt64)
			}
			u = uint64(s)
		}
		return AppendUint64(dst, u), nil
	}

	lo, hi, ok := integerBounds(k)
	if !ok {
		return dst, fmt.Errorf("%w: unknown kind %s", ErrLayoutMismatch, k)
	}
	s, _, large, ok := toInteger(v)
	if !ok {
		return dst, typeMismatch(k, v)
	}
	if large {
		return dst, rangeErr(k.String(), math.MaxInt64, lo, hi)
	}
	if s < lo || s > hi {
		return dst, rangeErr(k.String(), s, lo, hi)
	}
	switch k {
	case Int8, Uint8:
		return append(dst, byte(s)), nil
	case Int16, Uint16:
		return AppendUint16(dst, uint16(s)), nil
	case Int32, Uint32:
		return AppendUint32(dst, uint32(s)), nil
	default: // Int64
		return AppendUint64(dst, uint64(s)), nil
	}
}

func integerBounds(k Kind) (lo, hi int64, ok bool) {
	switch k {
	case Int8:
		return math.MinInt8, math.MaxInt8, true
	case Uint8:
		return 0, math.MaxUint8, true
	case Int16:
		return math.MinInt16, math.MaxInt16, true
	case Uint16:
		return 0, math.MaxUint16, true
	case Int32:
		return math.MinInt32, math.MaxInt32, true
	case Uint32:
		return 0, math.MaxUint32, true
	case Int64:
		return math.MinInt64, math.MaxInt64, true
	}
	return 0, 0, false
}

// toInteger reports v as a signed value, or as u with large set when v is
// an unsigned value above math.MaxInt64.
func toInteger(v any) (s int64, u uint64, large, ok bool) {
	switch x := v.(type) {
	case int:
		return int64(x), 0, false, true
	case int8:
		return int64(x), 0, false, true
	case int16:
		return int64(x), 0, false, true
	case int32:
		return int64(x), 0, false, true
	case int64:
		return x, 0, false, true
	case uint8:
		return int64(x), 0, false, true
	case uint16:
		return int64(x), 0, false, true
	case uint32:
		return int64(x), 0, false, true
	case uint:
		return splitUnsigned(uint64(x))
	case uint64:
		return splitUnsigned(x)
	}
	return 0, 0, false, false
}

func splitUnsigned(x uint64) (int64, uint64, bool, bool) {
	if x > math.MaxInt64 {
		return 0, x, true, true
	}
	return int64(x), 0, false, true
}

func typeMismatch(k Kind, v any) error {
	return fmt.Errorf("%w: %T cannot be packed as %s", ErrLayoutMismatch, v, k)
}
