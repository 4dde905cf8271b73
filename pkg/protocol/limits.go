package protocol

// Size limits. Decoders use them to keep a hostile length prefix from forcing
// large allocations before any payload byte has been seen; the frame encoder
// applies the same limits so it never writes what a reader would refuse.
const (
	// MaxVarintLen is the maximum number of bytes a varint can occupy.
	// A uint64 requires at most 10 bytes in varint encoding.
	MaxVarintLen = 10

	// MaxFrameLength is the largest outer frame length accepted (2^21 - 1),
	// the most a 3-byte varint can express.
	MaxFrameLength = 1<<21 - 1

	// MaxUncompressedLength is the largest declared uncompressed payload
	// accepted in a compressed frame (8 MiB).
	MaxUncompressedLength = 1 << 23

	// MaxStringLength is the largest string byte length a length prefix
	// may declare.
	MaxStringLength = 1<<16 - 1

	// UUIDLen is the encoded size of a UUID.
	UUIDLen = 16
)

// Bit widths of the packed position fields.
const (
	posXBits = 26
	posYBits = 12
	posZBits = 26
)

// bitRange returns the signed two's-complement range of a width.
func bitRange(bits int) (lo, hi int64) {
	if bits >= 64 {
		return -1 << 63, 1<<63 - 1
	}
	return -1 << (bits - 1), 1<<(bits-1) - 1
}
