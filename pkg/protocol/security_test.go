package protocol

import (
	"bytes"
	"errors"
	"testing"
)

// Hostile length prefixes must be rejected before anything is allocated.

func TestAllocationLimits(t *testing.T) {
	tests := []struct {
		name    string
		run     func() error
		wantErr error
	}{
		{
			name: "string length prefix",
			run: func() error {
				_, err := NewBuffer(AppendUvarint(nil, 1<<30)).UnpackString()
				return err
			},
			wantErr: ErrRange,
		},
		{
			name: "frame length prefix on stream",
			run: func() error {
				_, err := ReadFrame(bytes.NewReader(AppendUvarint(nil, 1<<30)), -1)
				return err
			},
			wantErr: ErrFrameTooLarge,
		},
		{
			name: "frame length prefix in memory",
			run: func() error {
				_, _, err := DecodeFrame(AppendUvarint(nil, 1<<30), -1)
				return err
			},
			wantErr: ErrFrameTooLarge,
		},
		{
			name: "declared uncompressed size",
			run: func() error {
				body := AppendUvarint(nil, 1<<30)
				_, _, err := DecodeFrame(append(AppendUvarint(nil, uint64(len(body))), body...), 0)
				return err
			},
			wantErr: ErrFrameTooLarge,
		},
		{
			name: "array count",
			run: func() error {
				_, err := NewBuffer(nil).UnpackArray(Int64, 1<<30)
				return err
			},
			wantErr: ErrOutOfData,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.run(); !errors.Is(err, tc.wantErr) {
				t.Errorf("error = %v, want %v", err, tc.wantErr)
			}
		})
	}
}

func TestCompressionBombRejected(t *testing.T) {
	// 1 MiB of zeros deflates to about 1 KiB, but the header claims 16 bytes.
	zeros := make([]byte, 1<<20)
	compressed, err := deflate(nil, zeros)
	if err != nil {
		t.Fatal(err)
	}
	body := append(AppendUvarint(nil, 16), compressed...)
	frame := append(AppendUvarint(nil, uint64(len(body))), body...)

	if _, _, err := DecodeFrame(frame, 0); !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("DecodeFrame() error = %v, want ErrLengthMismatch", err)
	}
}

func TestToBytesRejectsOversizedPayload(t *testing.T) {
	tests := []struct {
		name      string
		size      int
		threshold int
	}{
		{"uncompressed", MaxFrameLength + 1, -1},
		{"below threshold", MaxFrameLength, MaxFrameLength + 1},
		{"inflated size", MaxUncompressedLength + 1, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewBuffer(make([]byte, tc.size)).ToBytes(tc.threshold)
			if !errors.Is(err, ErrRange) {
				t.Errorf("ToBytes(%d) error = %v, want ErrRange", tc.threshold, err)
			}
			if errors.Is(err, ErrDecode) || errors.Is(err, ErrOutOfData) {
				t.Errorf("ToBytes(%d) error = %v matches more than one category", tc.threshold, err)
			}
		})
	}
}

// Every frame the encoder accepts is accepted by both readers, and an outer
// length past the limit is refused the same way by both.
func TestFrameLimitsAgree(t *testing.T) {
	largest := make([]byte, MaxFrameLength)
	for i := range largest {
		largest[i] = byte(i)
	}
	// Leave room for the Data Length byte of an uncompressed body.
	sized := map[int][]byte{
		-1:                 largest,
		MaxFrameLength + 1: largest[:MaxFrameLength-1],
		0:                  largest,
	}

	for threshold, payload := range sized {
		frame, err := NewBuffer(payload).ToBytes(threshold)
		if err != nil {
			t.Fatalf("ToBytes(%d) error = %v", threshold, err)
		}
		b, err := FromBytes(frame, threshold)
		if err != nil {
			t.Fatalf("FromBytes(%d) error = %v", threshold, err)
		}
		if !bytes.Equal(b.ReadRest(), payload) {
			t.Errorf("FromBytes(%d) payload mismatch", threshold)
		}
		f, err := ReadFrame(bytes.NewReader(frame), threshold)
		if err != nil {
			t.Fatalf("ReadFrame(%d) error = %v", threshold, err)
		}
		if !bytes.Equal(f.Payload, payload) {
			t.Errorf("ReadFrame(%d) payload mismatch", threshold)
		}
	}

	// One byte past the limit, with the body present.
	over := append(AppendUvarint(nil, MaxFrameLength+1), make([]byte, MaxFrameLength+1)...)
	_, fromErr := FromBytes(over, -1)
	_, readErr := ReadFrame(bytes.NewReader(over), -1)
	for name, err := range map[string]error{"FromBytes": fromErr, "ReadFrame": readErr} {
		if !errors.Is(err, ErrFrameTooLarge) || !errors.Is(err, ErrDecode) {
			t.Errorf("%s() error = %v, want a DecodeError with ErrFrameTooLarge", name, err)
		}
	}
}
