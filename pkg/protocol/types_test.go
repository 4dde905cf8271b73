package protocol

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestStringRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		s    string
	}{
		{"empty", ""},
		{"ascii", "hello world"},
		{"multibyte", "héllo §a wörld ✓"},
		{"emoji", "🎮⛏️"},
		{"max_length", strings.Repeat("x", MaxStringLength)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data, err := PackString(tc.s)
			if err != nil {
				t.Fatalf("PackString() error = %v", err)
			}
			// Prefix counts bytes, not characters.
			n, _ := DecodeUvarint(data)
			if int(n) != len(tc.s) {
				t.Errorf("length prefix = %d, want %d", n, len(tc.s))
			}
			got, err := NewBuffer(data).UnpackString()
			if err != nil || got != tc.s {
				t.Errorf("UnpackString() = %q, %v; want %q, nil", got, err, tc.s)
			}
		})
	}
}

func TestStringErrors(t *testing.T) {
	if _, err := PackString(strings.Repeat("x", MaxStringLength+1)); !errors.Is(err, ErrRange) {
		t.Errorf("PackString(too long) error = %v, want ErrRange", err)
	}
	if _, err := PackString("bad\xff"); !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("PackString(invalid utf8) error = %v, want ErrInvalidUTF8", err)
	}

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"invalid_utf8", []byte{0x02, 0xC3, 0x28}, ErrDecode},
		{"short", []byte{0x05, 'a', 'b'}, ErrOutOfData},
		{"negative_length", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}, ErrRange},
		{"length_over_limit", AppendUvarint(nil, MaxStringLength+1), ErrRange},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBuffer(tc.data)
			_, err := b.UnpackString()
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("UnpackString() error = %v, want %v", err, tc.wantErr)
			}
			if b.Position() != 0 {
				t.Errorf("failed UnpackString moved cursor to %d", b.Position())
			}
		})
	}

	var de *DecodeError
	_, err := NewBuffer([]byte{0x02, 0xC3, 0x28}).UnpackString()
	if !errors.As(err, &de) || !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("UnpackString() error = %v, want *DecodeError wrapping ErrInvalidUTF8", err)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	type status struct {
		Version struct {
			Name     string `json:"name"`
			Protocol int    `json:"protocol"`
		} `json:"version"`
		Description string `json:"description"`
	}

	var in status
	in.Version.Name = "1.16.5"
	in.Version.Protocol = 754
	in.Description = "A Minecraft Server"

	data, err := PackJSON(in)
	if err != nil {
		t.Fatalf("PackJSON() error = %v", err)
	}

	var out status
	if err := NewBuffer(data).UnpackJSON(&out); err != nil {
		t.Fatalf("UnpackJSON() error = %v", err)
	}
	if out != in {
		t.Errorf("UnpackJSON() = %+v, want %+v", out, in)
	}

	v, err := NewBuffer(data).UnpackJSONValue()
	if err != nil {
		t.Fatalf("UnpackJSONValue() error = %v", err)
	}
	m, ok := v.(map[string]any)
	if !ok || m["description"] != "A Minecraft Server" {
		t.Errorf("UnpackJSONValue() = %#v", v)
	}
}

func TestJSONErrors(t *testing.T) {
	bad, _ := PackString(`{"text": `)
	b := NewBuffer(bad)
	if _, err := b.UnpackJSONValue(); !errors.Is(err, ErrDecode) {
		t.Errorf("UnpackJSONValue() error = %v, want ErrDecode", err)
	}
	if b.Position() != 0 {
		t.Errorf("failed UnpackJSON moved cursor to %d", b.Position())
	}

	if _, err := PackJSON(make(chan int)); err == nil {
		t.Error("PackJSON(chan) succeeded, want error")
	}
}

func TestUUIDRoundTrip(t *testing.T) {
	for i := 0; i < 10; i++ {
		id := uuid.New()
		data := PackUUID(id)
		if len(data) != UUIDLen || !bytes.Equal(data, id[:]) {
			t.Fatalf("PackUUID() = % x, want % x", data, id[:])
		}
		got, err := NewBuffer(data).UnpackUUID()
		if err != nil || got != id {
			t.Errorf("UnpackUUID() = %v, %v; want %v, nil", got, err, id)
		}
	}

	if _, err := NewBuffer(make([]byte, 15)).UnpackUUID(); !errors.Is(err, ErrOutOfData) {
		t.Errorf("UnpackUUID() error = %v, want ErrOutOfData", err)
	}
}

func TestPositionRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		pos  Position
	}{
		{"origin", Position{0, 0, 0}},
		{"typical", Position{-1000, 50, 1000}},
		{"x_min", Position{-(1 << 25), 0, 0}},
		{"x_max", Position{1<<25 - 1, 0, 0}},
		{"y_min", Position{0, -(1 << 11), 0}},
		{"y_max", Position{0, 1<<11 - 1, 0}},
		{"z_min", Position{0, 0, -(1 << 25)}},
		{"z_max", Position{0, 0, 1<<25 - 1}},
		{"all_negative_one", Position{-1, -1, -1}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data, err := PackPosition(tc.pos.X, tc.pos.Y, tc.pos.Z)
			if err != nil {
				t.Fatalf("PackPosition%v error = %v", tc.pos, err)
			}
			if len(data) != 8 {
				t.Fatalf("PackPosition%v = %d bytes, want 8", tc.pos, len(data))
			}
			got, err := NewBuffer(data).UnpackPosition()
			if err != nil || got != tc.pos {
				t.Errorf("UnpackPosition() = %v, %v; want %v, nil", got, err, tc.pos)
			}
		})
	}
}

func TestPositionBitLayout(t *testing.T) {
	data, err := PackPosition(1, 2, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := AppendUint64(nil, 1<<38|2<<26|3)
	if !bytes.Equal(data, want) {
		t.Errorf("PackPosition(1, 2, 3) = % x, want % x", data, want)
	}

	all, _ := PackPosition(-1, -1, -1)
	if !bytes.Equal(all, bytes.Repeat([]byte{0xFF}, 8)) {
		t.Errorf("PackPosition(-1, -1, -1) = % x, want all ones", all)
	}
}

func TestPositionRange(t *testing.T) {
	tests := []Position{
		{1 << 25, 0, 0},
		{-(1 << 25) - 1, 0, 0},
		{0, 1 << 11, 0},
		{0, -(1 << 11) - 1, 0},
		{0, 0, 1 << 25},
	}
	for _, p := range tests {
		if _, err := PackPosition(p.X, p.Y, p.Z); !errors.Is(err, ErrRange) {
			t.Errorf("PackPosition%v error = %v, want ErrRange", p, err)
		}
	}
}

func TestRotationRoundTrip(t *testing.T) {
	data := PackRotation(1.5, -2.25, 0.0)
	if len(data) != 12 {
		t.Fatalf("PackRotation() = %d bytes, want 12", len(data))
	}
	got, err := NewBuffer(data).UnpackRotation()
	want := Rotation{1.5, -2.25, 0.0}
	if err != nil || got != want {
		t.Errorf("UnpackRotation() = %v, %v; want %v, nil", got, err, want)
	}

	short := NewBuffer(data[:8])
	if _, err := short.UnpackRotation(); !errors.Is(err, ErrOutOfData) {
		t.Errorf("UnpackRotation() error = %v, want ErrOutOfData", err)
	}
	if short.Position() != 0 {
		t.Errorf("failed UnpackRotation moved cursor to %d", short.Position())
	}
}

func TestDirectionRoundTrip(t *testing.T) {
	for i, name := range Directions {
		data, err := PackDirection(name)
		if err != nil {
			t.Fatalf("PackDirection(%q) error = %v", name, err)
		}
		if len(data) != 1 || int(data[0]) != i {
			t.Errorf("PackDirection(%q) = % x, want %02x", name, data, i)
		}
		got, err := NewBuffer(data).UnpackDirection()
		if err != nil || got != name {
			t.Errorf("UnpackDirection() = %q, %v; want %q, nil", got, err, name)
		}
		if Direction(i).String() != name {
			t.Errorf("Direction(%d).String() = %q, want %q", i, Direction(i).String(), name)
		}
	}
}

func TestDirectionErrors(t *testing.T) {
	if _, err := PackDirection("sideways"); !errors.Is(err, ErrUnknownDirection) {
		t.Errorf("PackDirection(sideways) error = %v, want ErrUnknownDirection", err)
	}
	b := NewBuffer(PackVarInt(6))
	if _, err := b.UnpackDirection(); !errors.Is(err, ErrRange) {
		t.Errorf("UnpackDirection() error = %v, want ErrRange", err)
	}
	if b.Position() != 0 {
		t.Errorf("failed UnpackDirection moved cursor to %d", b.Position())
	}
	if got := Direction(9).String(); got != "Direction(9)" {
		t.Errorf("Direction(9).String() = %q", got)
	}
}

func TestSlotUnsupported(t *testing.T) {
	if _, err := PackSlot(); !errors.Is(err, ErrSlotUnsupported) {
		t.Errorf("PackSlot() error = %v, want ErrSlotUnsupported", err)
	}
	b := NewBuffer([]byte{0x01})
	if err := b.UnpackSlot(); !errors.Is(err, ErrSlotUnsupported) {
		t.Errorf("UnpackSlot() error = %v, want ErrSlotUnsupported", err)
	}
	if b.Position() != 0 {
		t.Errorf("UnpackSlot moved cursor to %d", b.Position())
	}
}

// textMessage is a minimal BufferMarshaler/BufferUnmarshaler.
type textMessage struct {
	Text string `json:"text"`
}

func (m *textMessage) MarshalBuffer() ([]byte, error) {
	return PackJSON(m)
}

func (m *textMessage) UnmarshalBuffer(b *Buffer) error {
	return b.UnpackJSON(m)
}

func TestPackUnpackMsg(t *testing.T) {
	data, err := PackMsg(&textMessage{Text: "hi"})
	if err != nil {
		t.Fatalf("PackMsg() error = %v", err)
	}
	var got textMessage
	if err := NewBuffer(data).UnpackMsg(&got); err != nil {
		t.Fatalf("UnpackMsg() error = %v", err)
	}
	if got.Text != "hi" {
		t.Errorf("UnpackMsg() = %+v", got)
	}
}
