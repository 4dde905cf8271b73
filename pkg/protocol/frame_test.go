package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/klauspost/compress/zlib"
)

func TestFrameRoundTripUncompressed(t *testing.T) {
	payloads := [][]byte{
		nil,
		{0x00},
		[]byte("hello"),
		bytes.Repeat([]byte{0xAB}, 300),
	}

	for _, p := range payloads {
		b := NewBuffer(append([]byte(nil), p...))
		data, err := b.ToBytes(-1)
		if err != nil {
			t.Fatalf("ToBytes(-1) error = %v", err)
		}
		if want := UvarintLen(uint64(len(p))) + len(p); len(data) != want {
			t.Errorf("ToBytes(-1) = %d bytes, want %d", len(data), want)
		}

		got, err := FromBytes(data, -1)
		if err != nil {
			t.Fatalf("FromBytes(-1) error = %v", err)
		}
		if !bytes.Equal(got.ReadRest(), p) {
			t.Errorf("payload of %d bytes did not round-trip", len(p))
		}
	}
}

func TestFrameCompressionThreshold(t *testing.T) {
	tests := []struct {
		name           string
		payload        []byte
		wantCompressed bool
	}{
		{"above_threshold", []byte("0123456789"), true},
		{"at_threshold", []byte("01234"), true},
		{"below_threshold", []byte("abc"), false},
		{"empty", nil, false},
	}

	const threshold = 5
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data, err := NewBuffer(tc.payload).ToBytes(threshold)
			if err != nil {
				t.Fatalf("ToBytes(%d) error = %v", threshold, err)
			}

			// Inspect the inner sentinel directly.
			outer := NewBuffer(data)
			if _, err := outer.UnpackVarInt(); err != nil {
				t.Fatal(err)
			}
			sentinel, err := outer.UnpackVarInt()
			if err != nil {
				t.Fatal(err)
			}
			if tc.wantCompressed && sentinel != int32(len(tc.payload)) {
				t.Errorf("data length = %d, want %d", sentinel, len(tc.payload))
			}
			if !tc.wantCompressed {
				if sentinel != 0 {
					t.Errorf("data length = %d, want 0", sentinel)
				}
				if !bytes.Equal(outer.ReadRest(), tc.payload) {
					t.Errorf("literal payload not stored verbatim")
				}
			}

			f, rest, err := DecodeFrame(data, threshold)
			if err != nil {
				t.Fatalf("DecodeFrame() error = %v", err)
			}
			if len(rest) != 0 {
				t.Errorf("DecodeFrame() rest = %d bytes, want 0", len(rest))
			}
			if f.Compressed() != tc.wantCompressed {
				t.Errorf("Compressed() = %v, want %v", f.Compressed(), tc.wantCompressed)
			}
			if !bytes.Equal(f.Payload, tc.payload) {
				t.Errorf("Payload = %q, want %q", f.Payload, tc.payload)
			}
		})
	}
}

func TestFrameZeroThresholdEmptyPayload(t *testing.T) {
	data, err := NewBuffer(nil).ToBytes(0)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, []byte{0x01, 0x00}) {
		t.Errorf("ToBytes(0) of empty payload = % x, want 01 00", data)
	}
	b, err := FromBytes(data, 0)
	if err != nil || b.Len() != 0 {
		t.Errorf("FromBytes() = %v, %v; want empty buffer", b, err)
	}
}

func TestFromBytesResetsCursor(t *testing.T) {
	src := NewBuffer([]byte("payload"))
	if _, err := src.Read(3); err != nil {
		t.Fatal(err)
	}
	// ToBytes frames everything, including bytes already read.
	data, err := src.ToBytes(-1)
	if err != nil {
		t.Fatal(err)
	}
	got, err := FromBytes(data, -1)
	if err != nil {
		t.Fatal(err)
	}
	if got.Position() != 0 || string(got.ReadRest()) != "payload" {
		t.Errorf("FromBytes() did not yield a fresh buffer over the full payload")
	}
}

func TestDecodeFrameTrailingBytes(t *testing.T) {
	first, _ := NewBuffer([]byte("one")).ToBytes(-1)
	second, _ := NewBuffer([]byte("two")).ToBytes(-1)
	stream := append(append([]byte(nil), first...), second...)

	f, rest, err := DecodeFrame(stream, -1)
	if err != nil {
		t.Fatal(err)
	}
	if string(f.Payload) != "one" || !bytes.Equal(rest, second) {
		t.Errorf("DecodeFrame() = %q, rest % x", f.Payload, rest)
	}
}

func TestDecodeFrameErrors(t *testing.T) {
	corrupt := []byte{0x07, 0x0A, 0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x00}

	var wrongSize bytes.Buffer
	zw := zlib.NewWriter(&wrongSize)
	zw.Write([]byte("abc"))
	zw.Close()
	mismatch := AppendUvarint(nil, 10)
	mismatch = append(mismatch, wrongSize.Bytes()...)
	mismatch = append(AppendUvarint(nil, uint64(len(mismatch))), mismatch...)

	huge := AppendUvarint(nil, MaxUncompressedLength+1)
	huge = append(AppendUvarint(nil, uint64(len(huge))), huge...)

	tests := []struct {
		name      string
		data      []byte
		threshold int
		wantErr   error
	}{
		{"empty", nil, -1, ErrOutOfData},
		{"short_body", []byte{0x05, 0x01, 0x02}, -1, ErrOutOfData},
		{"negative_length", []byte{0xFF, 0xFF, 0xFF, 0xFF, 0x0F}, -1, ErrRange},
		{"missing_data_length", []byte{0x00}, 0, ErrOutOfData},
		{"corrupt_zlib", corrupt, 0, ErrCorruptPayload},
		{"frame_length_too_large", AppendUvarint(nil, MaxFrameLength+1), -1, ErrFrameTooLarge},
		{"length_mismatch", mismatch, 0, ErrLengthMismatch},
		{"data_length_too_large", huge, 0, ErrFrameTooLarge},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := DecodeFrame(tc.data, tc.threshold)
			if !errors.Is(err, tc.wantErr) {
				t.Errorf("DecodeFrame() error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestReadWriteFrame(t *testing.T) {
	var stream bytes.Buffer
	payloads := [][]byte{
		[]byte("short"),
		bytes.Repeat([]byte("compressible "), 50),
	}

	for _, p := range payloads {
		if err := WriteFrame(&stream, NewBuffer(p), 64); err != nil {
			t.Fatalf("WriteFrame() error = %v", err)
		}
	}

	for i, want := range payloads {
		f, err := ReadFrame(&stream, 64)
		if err != nil {
			t.Fatalf("ReadFrame() #%d error = %v", i, err)
		}
		if !bytes.Equal(f.Payload, want) {
			t.Errorf("ReadFrame() #%d payload mismatch", i)
		}
		if f.Compressed() != (len(want) >= 64) {
			t.Errorf("ReadFrame() #%d Compressed() = %v", i, f.Compressed())
		}
	}

	if _, err := ReadFrame(&stream, 64); err != io.EOF {
		t.Errorf("ReadFrame() at end of stream error = %v, want io.EOF", err)
	}
}

func TestReadFrameLimits(t *testing.T) {
	tooLong := AppendUvarint(nil, MaxFrameLength+1)
	if _, err := ReadFrame(bytes.NewReader(tooLong), -1); !errors.Is(err, ErrFrameTooLarge) {
		t.Errorf("ReadFrame() error = %v, want ErrFrameTooLarge", err)
	}

	truncated := append(AppendUvarint(nil, 10), 0x01, 0x02)
	if _, err := ReadFrame(bytes.NewReader(truncated), -1); !errors.Is(err, ErrOutOfData) {
		t.Errorf("ReadFrame() error = %v, want ErrOutOfData", err)
	}
}
