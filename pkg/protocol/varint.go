package protocol

import (
	"io"
	"math"
)

// Bit widths of the two varint flavours used on the wire.
const (
	VarIntBits  = 32
	VarLongBits = 64
)

// A varint carries 7 payload bits per byte, least significant group first;
// the high bit of every byte but the last is set.
//
// Signed values are folded into an unsigned word before encoding: widths up
// to 32 bits use a 32-bit two's-complement word (so -1 is 5 bytes), wider
// widths use 64 bits (-1 is 10 bytes). Decoding sign-extends from the same
// word, so negative values round-trip for every width.

// PackVarint encodes v as a varint after checking it lies in the signed
// range of maxBits, [-2^(maxBits-1), 2^(maxBits-1)).
func PackVarint(v int64, maxBits int) ([]byte, error) {
	return AppendVarint(make([]byte, 0, 5), v, maxBits)
}

// AppendVarint is PackVarint appending onto dst. On error dst is returned
// unchanged.
func AppendVarint(dst []byte, v int64, maxBits int) ([]byte, error) {
	if maxBits < 1 || maxBits > 64 {
		return dst, ErrInvalidBitWidth
	}
	lo, hi := bitRange(maxBits)
	if v < lo || v > hi {
		return dst, rangeErr("varint", v, lo, hi)
	}
	return AppendUvarint(dst, fold(v, maxBits)), nil
}

// PackVarInt encodes a 32-bit varint. It cannot fail.
func PackVarInt(v int32) []byte {
	return AppendUvarint(make([]byte, 0, 5), uint64(uint32(v)))
}

// PackVarLong encodes a 64-bit varint. It cannot fail.
func PackVarLong(v int64) []byte {
	return AppendUvarint(make([]byte, 0, MaxVarintLen), uint64(v))
}

// UnpackVarint decodes a varint and checks the result against the signed
// range of maxBits.
func (b *Buffer) UnpackVarint(maxBits int) (int64, error) {
	if maxBits < 1 || maxBits > 64 {
		return 0, ErrInvalidBitWidth
	}
	start := b.pos
	u, n := DecodeUvarint(b.buf[b.pos:])
	switch n {
	case -1:
		return 0, ErrOutOfData
	case -2:
		return 0, decodeErr("varint", start, ErrVarintTooLong)
	}

	v, err := unfold(u, maxBits)
	if err != nil {
		return 0, err
	}
	b.pos += n
	return v, nil
}

// UnpackVarInt decodes a 32-bit varint.
func (b *Buffer) UnpackVarInt() (int32, error) {
	v, err := b.UnpackVarint(VarIntBits)
	return int32(v), err
}

// UnpackVarLong decodes a 64-bit varint.
func (b *Buffer) UnpackVarLong() (int64, error) {
	return b.UnpackVarint(VarLongBits)
}

// VarintLen returns the number of bytes PackVarint(v, maxBits) produces.
// The range of v is not checked.
func VarintLen(v int64, maxBits int) int {
	return UvarintLen(fold(v, maxBits))
}

func fold(v int64, maxBits int) uint64 {
	if maxBits <= VarIntBits {
		return uint64(uint32(v))
	}
	return uint64(v)
}

func unfold(u uint64, maxBits int) (int64, error) {
	lo, hi := bitRange(maxBits)
	var v int64
	if maxBits <= VarIntBits {
		if u > math.MaxUint32 {
			return 0, rangeErr("varint", clampInt64(u), lo, hi)
		}
		v = int64(int32(uint32(u)))
	} else {
		v = int64(u)
	}
	if v < lo || v > hi {
		return 0, rangeErr("varint", v, lo, hi)
	}
	return v, nil
}

func clampInt64(u uint64) int64 {
	if u > math.MaxInt64 {
		return math.MaxInt64
	}
	return int64(u)
}

// AppendUvarint appends an unsigned varint.
func AppendUvarint(dst []byte, v uint64) []byte {
	for v >= 0x80 {
		dst = append(dst, byte(v)|0x80)
		v >>= 7
	}
	return append(dst, byte(v))
}

// DecodeUvarint decodes an unsigned varint from buf.
// Returns (value, bytesRead). If bytesRead < 0, decoding failed:
//   - -1: buffer too short (incomplete varint)
//   - -2: varint overflow (more than 10 bytes, or more than 64 bits)
func DecodeUvarint(buf []byte) (uint64, int) {
	var v uint64
	var shift uint

	for i, c := range buf {
		if i == MaxVarintLen-1 && c > 1 {
			return 0, -2
		}
		v |= uint64(c&0x7F) << shift
		if c < 0x80 {
			return v, i + 1
		}
		shift += 7
	}
	return 0, -1
}

// UvarintLen returns the number of bytes needed to encode v as a varint.
func UvarintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		n++
		v >>= 7
	}
	return n
}

// readVarint reads a varint of maxBits from a stream one byte at a time.
func readVarint(r io.Reader, maxBits int) (int64, error) {
	var (
		scratch [MaxVarintLen]byte
		one     [1]byte
	)
	br, _ := r.(io.ByteReader)
	for i := 0; i < MaxVarintLen; i++ {
		var c byte
		if br != nil {
			var err error
			if c, err = br.ReadByte(); err != nil {
				return 0, streamErr(err, i)
			}
		} else {
			if _, err := io.ReadFull(r, one[:]); err != nil {
				return 0, streamErr(err, i)
			}
			c = one[0]
		}
		scratch[i] = c
		if c < 0x80 {
			u, n := DecodeUvarint(scratch[:i+1])
			if n < 0 {
				return 0, decodeErr("varint", 0, ErrVarintTooLong)
			}
			return unfold(u, maxBits)
		}
	}
	return 0, decodeErr("varint", 0, ErrVarintTooLong)
}

// streamErr keeps a clean io.EOF when no byte of the value was read, so
// callers can tell a closed stream from a truncated frame.
func streamErr(err error, read int) error {
	if err == io.EOF && read > 0 {
		return ErrOutOfData
	}
	return err
}
