package protocol

import (
	"encoding/binary"
	"math"
)

// Buffer is a byte sequence with a read cursor. Producers append to it with
// Write and the Pack* functions; consumers wrap received bytes with
// NewBuffer and call the Unpack* methods in the order the fields were
// written.
//
// Writes append past the end and never move the cursor. Reads only move it
// forward. A failed read leaves the cursor where it was.
//
// A Buffer is not safe for concurrent use; it belongs to one packet flow at
// a time.
type Buffer struct {
	buf []byte
	pos int
}

// NewBuffer creates a buffer over data with the cursor at 0.
// The buffer takes ownership of data.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{buf: data}
}

// Write appends p to the buffer. It always succeeds; the signature matches
// io.Writer so a Buffer can be handed to encoders directly.
func (b *Buffer) Write(p []byte) (int, error) {
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// Bytes returns the whole underlying sequence, including bytes already read.
// The returned slice aliases the buffer.
func (b *Buffer) Bytes() []byte {
	return b.buf
}

// Len returns the total number of bytes held.
func (b *Buffer) Len() int {
	return len(b.buf)
}

// Remaining returns the number of unread bytes.
func (b *Buffer) Remaining() int {
	return len(b.buf) - b.pos
}

// Position returns the current read position.
func (b *Buffer) Position() int {
	return b.pos
}

// Reset moves the cursor back to 0 so the same bytes can be read again.
func (b *Buffer) Reset() {
	b.pos = 0
}

// Read returns the next n bytes and advances the cursor by n.
// The returned slice references the buffer; do not modify.
func (b *Buffer) Read(n int) ([]byte, error) {
	if n < 0 {
		return nil, rangeErr("read length", int64(n), 0, int64(b.Remaining()))
	}
	if n > b.Remaining() {
		return nil, ErrOutOfData
	}
	p := b.buf[b.pos : b.pos+n]
	b.pos += n
	return p, nil
}

// ReadRest returns every unread byte and advances the cursor to the end.
func (b *Buffer) ReadRest() []byte {
	p := b.buf[b.pos:]
	b.pos = len(b.buf)
	return p
}

// ReadByte reads a single byte.
func (b *Buffer) ReadByte() (byte, error) {
	if b.pos >= len(b.buf) {
		return 0, ErrOutOfData
	}
	c := b.buf[b.pos]
	b.pos++
	return c, nil
}

// ReadBool reads a boolean byte. Any non-zero value is true.
func (b *Buffer) ReadBool() (bool, error) {
	c, err := b.ReadByte()
	if err != nil {
		return false, err
	}
	return c != 0, nil
}

// ReadUint8 reads an unsigned byte.
func (b *Buffer) ReadUint8() (uint8, error) {
	return b.ReadByte()
}

// ReadInt8 reads a signed byte.
func (b *Buffer) ReadInt8() (int8, error) {
	c, err := b.ReadByte()
	return int8(c), err
}

// ReadUint16 reads a uint16 in big-endian byte order.
func (b *Buffer) ReadUint16() (uint16, error) {
	p, err := b.Read(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(p), nil
}

// ReadUint32 reads a uint32 in big-endian byte order.
func (b *Buffer) ReadUint32() (uint32, error) {
	p, err := b.Read(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(p), nil
}

// ReadUint64 reads a uint64 in big-endian byte order.
func (b *Buffer) ReadUint64() (uint64, error) {
	p, err := b.Read(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(p), nil
}

// ReadInt16 reads an int16 in big-endian byte order.
func (b *Buffer) ReadInt16() (int16, error) {
	v, err := b.ReadUint16()
	return int16(v), err
}

// ReadInt32 reads an int32 in big-endian byte order.
func (b *Buffer) ReadInt32() (int32, error) {
	v, err := b.ReadUint32()
	return int32(v), err
}

// ReadInt64 reads an int64 in big-endian byte order.
func (b *Buffer) ReadInt64() (int64, error) {
	v, err := b.ReadUint64()
	return int64(v), err
}

// ReadFloat32 reads a float32 in IEEE 754 format (big-endian).
func (b *Buffer) ReadFloat32() (float32, error) {
	v, err := b.ReadUint32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadFloat64 reads a float64 in IEEE 754 format (big-endian).
func (b *Buffer) ReadFloat64() (float64, error) {
	v, err := b.ReadUint64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// PackBool encodes a boolean as a single 0x00 or 0x01 byte.
func PackBool(v bool) []byte {
	return AppendBool(nil, v)
}

// UnpackBool reads a boolean written by PackBool.
func (b *Buffer) UnpackBool() (bool, error) {
	return b.ReadBool()
}
