package protocol

// Rotation is an entity rotation in degrees around each axis.
type Rotation struct {
	X, Y, Z float32
}

// PackRotation encodes three consecutive big-endian float32 values.
func PackRotation(x, y, z float32) []byte {
	return AppendRotation(make([]byte, 0, 12), Rotation{X: x, Y: y, Z: z})
}

// AppendRotation appends r as three big-endian float32 values.
func AppendRotation(dst []byte, r Rotation) []byte {
	dst = AppendFloat32(dst, r.X)
	dst = AppendFloat32(dst, r.Y)
	return AppendFloat32(dst, r.Z)
}

// UnpackRotation reads a rotation written by PackRotation.
func (b *Buffer) UnpackRotation() (Rotation, error) {
	if b.Remaining() < 12 {
		return Rotation{}, ErrOutOfData
	}
	x, _ := b.ReadFloat32()
	y, _ := b.ReadFloat32()
	z, _ := b.ReadFloat32()
	return Rotation{X: x, Y: y, Z: z}, nil
}
