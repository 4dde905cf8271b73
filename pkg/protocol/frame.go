package protocol

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zlib"
)

// Frame is one decoded envelope.
//
// Wire format without compression (threshold < 0):
//
//	┌──────────────────────┬──────────────────────────────┐
//	│ Length (varint)      │ Payload (Length bytes)       │
//	└──────────────────────┴──────────────────────────────┘
//
// With compression enabled (threshold >= 0):
//
//	┌──────────────────────┬──────────────────────┬──────────────────────┐
//	│ Length (varint)      │ Data Length (varint) │ zlib(Payload)        │
//	└──────────────────────┴──────────────────────┴──────────────────────┘
//
// Length covers everything after it. A Data Length of 0 means the payload
// follows uncompressed.
type Frame struct {
	// Length is the outer length prefix.
	Length int

	// DataLength is the declared uncompressed size, 0 when the payload was
	// sent literally.
	DataLength int

	// Payload is the inner record, already inflated.
	Payload []byte
}

// Compressed reports whether the payload was zlib-compressed on the wire.
func (f *Frame) Compressed() bool {
	return f.DataLength > 0
}

// Buffer returns a fresh Buffer over the payload.
func (f *Frame) Buffer() *Buffer {
	return NewBuffer(f.Payload)
}

// ToBytes wraps the whole buffer content (read or not) in a frame ready for
// the transport. A negative threshold disables compression. Otherwise a
// non-empty payload at or above threshold bytes is zlib-compressed and
// anything smaller is sent with a Data Length of 0.
//
// ToBytes never produces a frame that FromBytes or ReadFrame would refuse:
// an outer length above MaxFrameLength or a compressed payload above
// MaxUncompressedLength is a *RangeError.
func (b *Buffer) ToBytes(threshold int) ([]byte, error) {
	return AppendFrame(nil, b.buf, threshold)
}

// AppendFrame appends the framed form of payload onto dst.
func AppendFrame(dst, payload []byte, threshold int) ([]byte, error) {
	if threshold < 0 {
		return appendLengthPrefixed(dst, payload)
	}

	var inner []byte
	if len(payload) > 0 && len(payload) >= threshold {
		if len(payload) > MaxUncompressedLength {
			return dst, rangeErr("data length", int64(len(payload)), 0, MaxUncompressedLength)
		}
		inner = AppendUvarint(make([]byte, 0, len(payload)/2+8), uint64(len(payload)))
		var err error
		if inner, err = deflate(inner, payload); err != nil {
			return dst, err
		}
	} else {
		inner = make([]byte, 0, len(payload)+1)
		inner = append(inner, 0x00)
		inner = append(inner, payload...)
	}
	return appendLengthPrefixed(dst, inner)
}

// FromBytes decodes the frame at the start of data and returns a Buffer
// over its payload. Bytes following the frame are ignored; use DecodeFrame
// to get them back.
func FromBytes(data []byte, threshold int) (*Buffer, error) {
	f, _, err := DecodeFrame(data, threshold)
	if err != nil {
		return nil, err
	}
	return f.Buffer(), nil
}

// DecodeFrame decodes the frame at the start of data. It returns the frame
// and the bytes that follow it. The limits are those of ReadFrame.
func DecodeFrame(data []byte, threshold int) (*Frame, []byte, error) {
	outer := NewBuffer(data)
	n, err := outer.UnpackVarint(VarIntBits)
	if err != nil {
		return nil, nil, err
	}
	if err := checkFrameLength(n); err != nil {
		return nil, nil, err
	}
	start := outer.Position()
	body, err := outer.Read(int(n))
	if err != nil {
		return nil, nil, err
	}
	f, err := unwrapBody(body, start, threshold)
	if err != nil {
		return nil, nil, err
	}
	return f, outer.ReadRest(), nil
}

// ReadFrame reads one frame from a stream. The outer length is limited to
// MaxFrameLength before anything is allocated. A stream that ends cleanly
// before the first byte returns io.EOF.
func ReadFrame(r io.Reader, threshold int) (*Frame, error) {
	n, err := readVarint(r, VarIntBits)
	if err != nil {
		return nil, err
	}
	if err := checkFrameLength(n); err != nil {
		return nil, err
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, ErrOutOfData
		}
		return nil, err
	}
	return unwrapBody(body, UvarintLen(uint64(n)), threshold)
}

// WriteFrame frames the buffer content and writes it to w in one call.
func WriteFrame(w io.Writer, b *Buffer, threshold int) error {
	data, err := b.ToBytes(threshold)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// unwrapBody strips the Data Length header when compression is enabled.
// off is the position of body within the original frame, for error offsets.
func unwrapBody(body []byte, off, threshold int) (*Frame, error) {
	f := &Frame{Length: len(body), Payload: body}
	if threshold < 0 {
		return f, nil
	}

	inner := NewBuffer(body)
	size, err := inner.UnpackVarint(VarIntBits)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		f.Payload = inner.ReadRest()
		return f, nil
	}
	if size < 0 {
		return nil, rangeErr("data length", size, 0, MaxUncompressedLength)
	}
	if size > MaxUncompressedLength {
		return nil, decodeErr("data length", off, ErrFrameTooLarge)
	}

	at := off + inner.Position()
	payload, err := inflate(inner.ReadRest(), int(size))
	if err != nil {
		return nil, decodeErr("compressed payload", at, err)
	}
	f.DataLength = int(size)
	f.Payload = payload
	return f, nil
}

// checkFrameLength validates a decoded outer length prefix.
func checkFrameLength(n int64) error {
	if n < 0 {
		return rangeErr("frame length", n, 0, MaxFrameLength)
	}
	if n > MaxFrameLength {
		return decodeErr("frame length", 0, ErrFrameTooLarge)
	}
	return nil
}

func appendLengthPrefixed(dst, body []byte) ([]byte, error) {
	if len(body) > MaxFrameLength {
		return dst, rangeErr("frame length", int64(len(body)), 0, MaxFrameLength)
	}
	dst = AppendUvarint(dst, uint64(len(body)))
	return append(dst, body...), nil
}

var zlibWriters = sync.Pool{
	New: func() any {
		return zlib.NewWriter(io.Discard)
	},
}

func deflate(dst, p []byte) ([]byte, error) {
	out := bytes.NewBuffer(dst)
	zw := zlibWriters.Get().(*zlib.Writer)
	defer zlibWriters.Put(zw)

	zw.Reset(out)
	if _, err := zw.Write(p); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// inflate decompresses p, which must expand to exactly size bytes.
func inflate(p []byte, size int) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(p))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
	}
	defer zr.Close()

	out := bytes.NewBuffer(make([]byte, 0, min(size, 64<<10)))
	n, err := io.Copy(out, io.LimitReader(zr, int64(size)+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptPayload, err)
	}
	if n != int64(size) {
		return nil, ErrLengthMismatch
	}
	return out.Bytes(), nil
}
