package protocol

import (
	"unicode/utf8"
)

// PackString encodes s as a varint byte length followed by its UTF-8 bytes.
// The byte length must not exceed MaxStringLength.
func PackString(s string) ([]byte, error) {
	return AppendString(make([]byte, 0, len(s)+3), s)
}

// AppendString is PackString appending onto dst. On error dst is returned
// unchanged.
func AppendString(dst []byte, s string) ([]byte, error) {
	if len(s) > MaxStringLength {
		return dst, rangeErr("string length", int64(len(s)), 0, MaxStringLength)
	}
	if !utf8.ValidString(s) {
		return dst, ErrInvalidUTF8
	}
	dst = AppendUvarint(dst, uint64(len(s)))
	return append(dst, s...), nil
}

// UnpackString reads a string written by PackString.
func (b *Buffer) UnpackString() (string, error) {
	p, err := b.unpackStringBytes()
	if err != nil {
		return "", err
	}
	return string(p), nil
}

// unpackStringBytes returns the raw bytes of a string field, aliasing the
// buffer. The cursor only moves on success.
func (b *Buffer) unpackStringBytes() ([]byte, error) {
	start := b.pos
	n, err := b.UnpackVarint(VarIntBits)
	if err != nil {
		return nil, err
	}
	if n < 0 || n > MaxStringLength {
		b.pos = start
		return nil, rangeErr("string length", n, 0, MaxStringLength)
	}
	p, err := b.Read(int(n))
	if err != nil {
		b.pos = start
		return nil, err
	}
	if !utf8.Valid(p) {
		b.pos = start
		return nil, decodeErr("string", start, ErrInvalidUTF8)
	}
	return p, nil
}
