package protocol

import (
	"encoding/binary"
	"math"
)

// The Append* helpers encode fixed-width values onto dst and return the
// extended slice. They never fail and allocate only when dst must grow.

// AppendBool appends a boolean as a single byte (0x00 or 0x01).
func AppendBool(dst []byte, v bool) []byte {
	if v {
		return append(dst, 0x01)
	}
	return append(dst, 0x00)
}

// AppendUint8 appends a single byte.
func AppendUint8(dst []byte, v uint8) []byte {
	return append(dst, v)
}

// AppendInt8 appends a signed byte.
func AppendInt8(dst []byte, v int8) []byte {
	return append(dst, byte(v))
}

// AppendUint16 appends a uint16 in big-endian byte order.
func AppendUint16(dst []byte, v uint16) []byte {
	return binary.BigEndian.AppendUint16(dst, v)
}

// AppendUint32 appends a uint32 in big-endian byte order.
func AppendUint32(dst []byte, v uint32) []byte {
	return binary.BigEndian.AppendUint32(dst, v)
}

// AppendUint64 appends a uint64 in big-endian byte order.
func AppendUint64(dst []byte, v uint64) []byte {
	return binary.BigEndian.AppendUint64(dst, v)
}

// AppendInt16 appends an int16 in big-endian byte order.
func AppendInt16(dst []byte, v int16) []byte {
	return AppendUint16(dst, uint16(v))
}

// AppendInt32 appends an int32 in big-endian byte order.
func AppendInt32(dst []byte, v int32) []byte {
	return AppendUint32(dst, uint32(v))
}

// AppendInt64 appends an int64 in big-endian byte order.
func AppendInt64(dst []byte, v int64) []byte {
	return AppendUint64(dst, uint64(v))
}

// AppendFloat32 appends a float32 in IEEE 754 format (big-endian).
func AppendFloat32(dst []byte, v float32) []byte {
	return AppendUint32(dst, math.Float32bits(v))
}

// AppendFloat64 appends a float64 in IEEE 754 format (big-endian).
func AppendFloat64(dst []byte, v float64) []byte {
	return AppendUint64(dst, math.Float64bits(v))
}
