package protocol

import (
	"errors"
	"io"
	"math"
	"testing"
)

func TestBufferReadWrite(t *testing.T) {
	var b Buffer
	b.Write([]byte{0x01, 0x02})
	b.Write([]byte{0x03})

	if b.Len() != 3 || b.Position() != 0 {
		t.Fatalf("Len() = %d, Position() = %d; want 3, 0", b.Len(), b.Position())
	}

	p, err := b.Read(2)
	if err != nil || string(p) != "\x01\x02" {
		t.Errorf("Read(2) = %v, %v; want [1 2], nil", p, err)
	}

	// Writes append past the end without touching the cursor.
	b.Write([]byte{0x04})
	if b.Position() != 2 || b.Remaining() != 2 {
		t.Errorf("after Write: Position() = %d, Remaining() = %d; want 2, 2", b.Position(), b.Remaining())
	}

	rest := b.ReadRest()
	if string(rest) != "\x03\x04" {
		t.Errorf("ReadRest() = %v, want [3 4]", rest)
	}
	if b.Position() != b.Len() {
		t.Errorf("ReadRest advanced to %d, want %d", b.Position(), b.Len())
	}

	b.Reset()
	c, err := b.ReadByte()
	if err != nil || c != 0x01 {
		t.Errorf("ReadByte() after Reset = %x, %v; want 0x01, nil", c, err)
	}
}

func TestBufferReadRestFromMiddle(t *testing.T) {
	b := NewBuffer([]byte("abcdef"))
	if _, err := b.Read(4); err != nil {
		t.Fatal(err)
	}
	if got := string(b.ReadRest()); got != "ef" {
		t.Errorf("ReadRest() = %q, want %q", got, "ef")
	}
	if b.Position() != 6 {
		t.Errorf("Position() = %d, want 6", b.Position())
	}
	if got := b.ReadRest(); len(got) != 0 {
		t.Errorf("second ReadRest() = %v, want empty", got)
	}
}

func TestBufferOutOfData(t *testing.T) {
	b := NewBuffer([]byte{0x01, 0x02, 0x03})

	if _, err := b.Read(4); !errors.Is(err, ErrOutOfData) {
		t.Errorf("Read(4) error = %v, want ErrOutOfData", err)
	}
	if b.Position() != 0 {
		t.Errorf("failed Read moved cursor to %d", b.Position())
	}
	if _, err := b.ReadUint32(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("ReadUint32() error = %v, want io.ErrUnexpectedEOF", err)
	}
	if _, err := b.Read(-1); !errors.Is(err, ErrRange) {
		t.Errorf("Read(-1) error = %v, want ErrRange", err)
	}

	var empty Buffer
	if _, err := empty.ReadByte(); !errors.Is(err, ErrOutOfData) {
		t.Errorf("ReadByte() on empty buffer error = %v, want ErrOutOfData", err)
	}
}

func TestFixedWidthReaders(t *testing.T) {
	var dst []byte
	dst = AppendBool(dst, true)
	dst = AppendInt8(dst, -5)
	dst = AppendUint8(dst, 200)
	dst = AppendInt16(dst, -1234)
	dst = AppendUint16(dst, 0x1234)
	dst = AppendInt32(dst, -12345678)
	dst = AppendUint32(dst, 0x12345678)
	dst = AppendInt64(dst, -123456789012345)
	dst = AppendUint64(dst, 0x123456789ABCDEF0)
	dst = AppendFloat32(dst, 3.14159)
	dst = AppendFloat64(dst, 2.718281828459045)

	b := NewBuffer(dst)

	if v, err := b.ReadBool(); err != nil || !v {
		t.Errorf("ReadBool() = %v, %v; want true, nil", v, err)
	}
	if v, err := b.ReadInt8(); err != nil || v != -5 {
		t.Errorf("ReadInt8() = %d, %v; want -5, nil", v, err)
	}
	if v, err := b.ReadUint8(); err != nil || v != 200 {
		t.Errorf("ReadUint8() = %d, %v; want 200, nil", v, err)
	}
	if v, err := b.ReadInt16(); err != nil || v != -1234 {
		t.Errorf("ReadInt16() = %d, %v; want -1234, nil", v, err)
	}
	if v, err := b.ReadUint16(); err != nil || v != 0x1234 {
		t.Errorf("ReadUint16() = %x, %v; want 0x1234, nil", v, err)
	}
	if v, err := b.ReadInt32(); err != nil || v != -12345678 {
		t.Errorf("ReadInt32() = %d, %v; want -12345678, nil", v, err)
	}
	if v, err := b.ReadUint32(); err != nil || v != 0x12345678 {
		t.Errorf("ReadUint32() = %x, %v; want 0x12345678, nil", v, err)
	}
	if v, err := b.ReadInt64(); err != nil || v != -123456789012345 {
		t.Errorf("ReadInt64() = %d, %v; want -123456789012345, nil", v, err)
	}
	if v, err := b.ReadUint64(); err != nil || v != 0x123456789ABCDEF0 {
		t.Errorf("ReadUint64() = %x, %v; want 0x123456789ABCDEF0, nil", v, err)
	}
	if v, err := b.ReadFloat32(); err != nil || math.Abs(float64(v)-3.14159) > 0.00001 {
		t.Errorf("ReadFloat32() = %f, %v; want 3.14159, nil", v, err)
	}
	if v, err := b.ReadFloat64(); err != nil || v != 2.718281828459045 {
		t.Errorf("ReadFloat64() = %f, %v; want 2.718281828459045, nil", v, err)
	}
	if b.Remaining() != 0 {
		t.Errorf("Remaining() = %d, want 0", b.Remaining())
	}
}

func TestBigEndianLayout(t *testing.T) {
	got := AppendUint32(nil, 0x01020304)
	want := []byte{0x01, 0x02, 0x03, 0x04}
	if string(got) != string(want) {
		t.Errorf("AppendUint32 = %v, want %v", got, want)
	}
}

func TestPackUnpackBool(t *testing.T) {
	if got := PackBool(true); len(got) != 1 || got[0] != 0x01 {
		t.Errorf("PackBool(true) = %v, want [1]", got)
	}
	if got := PackBool(false); len(got) != 1 || got[0] != 0x00 {
		t.Errorf("PackBool(false) = %v, want [0]", got)
	}

	b := NewBuffer([]byte{0x00, 0x01, 0x7F})
	for i, want := range []bool{false, true, true} {
		got, err := b.UnpackBool()
		if err != nil || got != want {
			t.Errorf("UnpackBool() #%d = %v, %v; want %v, nil", i, got, err, want)
		}
	}
}

func TestPackUnpackLayout(t *testing.T) {
	layout := Layout{Bool, Int8, Uint8, Int16, Uint16, Int32, Uint32, Int64, Uint64, Float32, Float64}
	if layout.Size() != 1+1+1+2+2+4+4+8+8+4+8 {
		t.Fatalf("Layout.Size() = %d", layout.Size())
	}

	data, err := Pack(layout,
		true, -1, 255, -300, 65535, -70000, uint32(math.MaxUint32),
		int64(math.MinInt64), uint64(math.MaxUint64), float32(1.5), 2.25)
	if err != nil {
		t.Fatalf("Pack() error = %v", err)
	}
	if len(data) != layout.Size() {
		t.Fatalf("Pack() produced %d bytes, want %d", len(data), layout.Size())
	}

	got, err := NewBuffer(data).Unpack(layout)
	if err != nil {
		t.Fatalf("Unpack() error = %v", err)
	}
	want := []any{
		true, int8(-1), uint8(255), int16(-300), uint16(65535), int32(-70000),
		uint32(math.MaxUint32), int64(math.MinInt64), uint64(math.MaxUint64),
		float32(1.5), float64(2.25),
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("field %d = %v (%T), want %v (%T)", i, got[i], got[i], want[i], want[i])
		}
	}
}

func TestPackErrors(t *testing.T) {
	tests := []struct {
		name    string
		layout  Layout
		values  []any
		wantErr error
	}{
		{"arity", Layout{Int32, Int32}, []any{1}, ErrLayoutMismatch},
		{"bool type", Layout{Bool}, []any{1}, ErrLayoutMismatch},
		{"float type", Layout{Float32}, []any{"1.0"}, ErrLayoutMismatch},
		{"int type", Layout{Int16}, []any{1.0}, ErrLayoutMismatch},
		{"unknown kind", Layout{Kind(99)}, []any{1}, ErrLayoutMismatch},
		{"int8 overflow", Layout{Int8}, []any{128}, ErrRange},
		{"uint8 negative", Layout{Uint8}, []any{-1}, ErrRange},
		{"uint16 overflow", Layout{Uint16}, []any{65536}, ErrRange},
		{"int32 underflow", Layout{Int32}, []any{int64(math.MinInt32) - 1}, ErrRange},
		{"uint64 negative", Layout{Uint64}, []any{-1}, ErrRange},
		{"int64 from huge uint64", Layout{Int64}, []any{uint64(math.MaxUint64)}, ErrRange},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Pack(tc.layout, tc.values...)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("Pack() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestUnpackOne(t *testing.T) {
	b := NewBuffer(AppendInt32(nil, -42))
	v, err := b.UnpackOne(Int32)
	if err != nil {
		t.Fatalf("UnpackOne() error = %v", err)
	}
	if v != int32(-42) {
		t.Errorf("UnpackOne() = %v (%T), want int32(-42)", v, v)
	}
}

func TestUnpackIsAllOrNothing(t *testing.T) {
	b := NewBuffer([]byte{0x00, 0x01, 0x02})
	if _, err := b.Unpack(Layout{Uint16, Uint16}); !errors.Is(err, ErrOutOfData) {
		t.Fatalf("Unpack() error = %v, want ErrOutOfData", err)
	}
	if b.Position() != 0 {
		t.Errorf("failed Unpack moved cursor to %d", b.Position())
	}
}

func TestPackUnpackArray(t *testing.T) {
	data, err := PackArray(Int16, 1, -2, 3, -4)
	if err != nil {
		t.Fatalf("PackArray() error = %v", err)
	}
	if len(data) != 8 {
		t.Fatalf("PackArray() produced %d bytes, want 8", len(data))
	}

	got, err := NewBuffer(data).UnpackArray(Int16, 4)
	if err != nil {
		t.Fatalf("UnpackArray() error = %v", err)
	}
	for i, want := range []int16{1, -2, 3, -4} {
		if got[i] != want {
			t.Errorf("element %d = %v, want %d", i, got[i], want)
		}
	}

	if _, err := NewBuffer(data).UnpackArray(Int16, -1); !errors.Is(err, ErrRange) {
		t.Errorf("UnpackArray(-1) error = %v, want ErrRange", err)
	}
}

func TestKindString(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{Bool, "bool"},
		{Int32, "int32"},
		{Float64, "float64"},
		{Kind(0), "Kind(0)"},
	}
	for _, tc := range tests {
		if got := tc.kind.String(); got != tc.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tc.kind, got, tc.want)
		}
	}
}
