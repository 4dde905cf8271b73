package protocol

import "fmt"

// Position is a block location packed into one 64-bit word:
//
//	 63             38 37        26 25              0
//	┌─────────────────┬────────────┬─────────────────┐
//	│ X (26 bits)     │ Y (12 bits)│ Z (26 bits)     │
//	└─────────────────┴────────────┴─────────────────┘
//
// Each field is two's complement within its own width.
type Position struct {
	X, Y, Z int32
}

func (p Position) String() string {
	return fmt.Sprintf("(%d, %d, %d)", p.X, p.Y, p.Z)
}

// PackPosition packs x, y, z into a big-endian 64-bit word. x and z must
// fit 26 signed bits, y 12 signed bits.
func PackPosition(x, y, z int32) ([]byte, error) {
	w, err := positionWord(x, y, z)
	if err != nil {
		return nil, err
	}
	return AppendUint64(make([]byte, 0, 8), w), nil
}

// AppendPosition is PackPosition appending onto dst. On error dst is
// returned unchanged.
func AppendPosition(dst []byte, p Position) ([]byte, error) {
	w, err := positionWord(p.X, p.Y, p.Z)
	if err != nil {
		return dst, err
	}
	return AppendUint64(dst, w), nil
}

// UnpackPosition reads a position written by PackPosition.
func (b *Buffer) UnpackPosition() (Position, error) {
	w, err := b.ReadUint64()
	if err != nil {
		return Position{}, err
	}
	return Position{
		X: int32(fromTwosComplement(w>>38, posXBits)),
		Y: int32(fromTwosComplement(w>>26&0xFFF, posYBits)),
		Z: int32(fromTwosComplement(w&0x3FFFFFF, posZBits)),
	}, nil
}

func positionWord(x, y, z int32) (uint64, error) {
	for _, f := range [...]struct {
		name string
		v    int32
		bits int
	}{{"position x", x, posXBits}, {"position y", y, posYBits}, {"position z", z, posZBits}} {
		lo, hi := bitRange(f.bits)
		if int64(f.v) < lo || int64(f.v) > hi {
			return 0, rangeErr(f.name, int64(f.v), lo, hi)
		}
	}
	return toTwosComplement(int64(x), posXBits)<<38 |
		toTwosComplement(int64(y), posYBits)<<26 |
		toTwosComplement(int64(z), posZBits), nil
}

// toTwosComplement stores v in bits bits, adding 2^bits when negative.
func toTwosComplement(v int64, bits int) uint64 {
	if v < 0 {
		v += 1 << bits
	}
	return uint64(v)
}

// fromTwosComplement reads a bits-wide field, subtracting 2^bits when the
// top bit is set.
func fromTwosComplement(u uint64, bits int) int64 {
	v := int64(u)
	if u&(1<<(bits-1)) != 0 {
		v -= 1 << bits
	}
	return v
}
