package protocol

// BufferMarshaler is implemented by values that know their own wire
// encoding, such as chat messages.
type BufferMarshaler interface {
	MarshalBuffer() ([]byte, error)
}

// BufferUnmarshaler is implemented by values that decode themselves from a
// Buffer.
type BufferUnmarshaler interface {
	UnmarshalBuffer(b *Buffer) error
}

// PackMsg returns the message's own encoding.
func PackMsg(m BufferMarshaler) ([]byte, error) {
	return m.MarshalBuffer()
}

// UnpackMsg lets m decode itself from the buffer.
func (b *Buffer) UnpackMsg(m BufferUnmarshaler) error {
	return m.UnmarshalBuffer(b)
}
