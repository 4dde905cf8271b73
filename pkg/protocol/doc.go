// Package protocol implements the binary codec for Minecraft: Java Edition
// packet payloads.
//
// A producer builds a payload by appending the output of the Pack*
// functions to a Buffer; a consumer wraps received bytes in a Buffer and
// calls the matching Unpack* methods in the same order.
//
//	var b protocol.Buffer
//	b.Write(protocol.PackVarInt(47))
//	name, _ := protocol.PackString("Notch")
//	b.Write(name)
//	frame, _ := b.ToBytes(256)
//
//	in, _ := protocol.FromBytes(frame, 256)
//	version, _ := in.UnpackVarInt()
//	player, _ := in.UnpackString()
//
// # Encoding
//
//   - Fixed width: big-endian integers and IEEE 754 floats, described by a
//     Layout of Kinds instead of a format string
//   - Varint: 7 bits per byte, low group first, continuation in the high bit,
//     at most 10 bytes; negatives in two's complement
//   - String: varint byte length (at most 65535) + UTF-8 bytes
//   - JSON: the serialized text as a string
//   - UUID: 16 raw bytes
//   - Position: x/y/z packed into one uint64 as 26/12/26 bits
//   - Rotation: three float32
//   - Direction: varint index into Directions
//
// Inventory slots have no encoding; PackSlot and UnpackSlot fail with
// ErrSlotUnsupported.
//
// # Frames
//
// ToBytes and FromBytes add and remove the length prefix, and zlib
// compression when a threshold is negotiated:
//
//	threshold < 0:   [Length: varint][Payload]
//	threshold >= 0:  [Length: varint][Data Length: varint][zlib(Payload) or Payload]
//
// Data Length is 0 when the payload is below the threshold and sent as is.
//
// # Errors
//
// Failures are synchronous and never partial: an Unpack method either
// returns a value and advances the cursor, or returns an error and leaves
// the cursor where it was. Every error matches one of ErrRange (a value
// outside its field's range), ErrOutOfData (not enough bytes) or ErrDecode
// (malformed bytes) with errors.Is; *RangeError and *DecodeError carry the
// details.
//
// # Concurrency
//
// A Buffer belongs to one packet flow at a time and has no locking. The
// package-level functions are safe for concurrent use.
package protocol
