package protocol

// Inventory slot encoding has no defined format here. Both directions fail
// so that code depending on slots cannot silently mis-encode.

// PackSlot always returns ErrSlotUnsupported.
func PackSlot() ([]byte, error) {
	return nil, ErrSlotUnsupported
}

// UnpackSlot always returns ErrSlotUnsupported and leaves the cursor alone.
func (b *Buffer) UnpackSlot() error {
	return ErrSlotUnsupported
}
