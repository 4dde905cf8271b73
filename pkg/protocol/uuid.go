package protocol

import (
	"github.com/google/uuid"
)

// PackUUID encodes id as its 16 raw bytes in standard (big-endian) order.
func PackUUID(id uuid.UUID) []byte {
	out := make([]byte, UUIDLen)
	copy(out, id[:])
	return out
}

// AppendUUID appends the 16 raw bytes of id.
func AppendUUID(dst []byte, id uuid.UUID) []byte {
	return append(dst, id[:]...)
}

// UnpackUUID reads 16 raw bytes as a UUID.
func (b *Buffer) UnpackUUID() (uuid.UUID, error) {
	p, err := b.Read(UUIDLen)
	if err != nil {
		return uuid.Nil, err
	}
	// FromBytes only fails on a length other than 16.
	return uuid.FromBytes(p)
}
