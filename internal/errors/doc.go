// Package errors turns codec failures into coded diagnostics for the mcwire
// command line.
//
// Every diagnostic carries a code (e.g., "W004") that maps to a short
// message, a detailed explanation and an optional hint. FromError classifies
// errors returned by pkg/protocol, and when the input bytes are known the
// formatted output points at the failing byte:
//
//	err := errors.FromError(decodeErr, input)
//	fmt.Print(err.Format())
//	// Output:
//	// ERROR W004: Varint too long
//	//
//	//   protocol: decode varint at offset 3: protocol: varint exceeds 10 bytes or 64 bits
//	//
//	//   at byte 3 of 14
//	//
//	//   → 0000 │ 05 01 02 ff ff ff ff ff ff ff ff ff ff 01
//	//          │          ^
//	//
//	//   A varint may occupy at most 10 bytes and carry at most 64 bits.
//
// # Error Categories
//
//   - range: a value does not fit its field
//   - data: the input ended early or does not match a layout
//   - decode: bytes that cannot be decoded as the expected field
//   - config: mcwire.json problems
//   - cli: bad command-line input
package errors
