package protocol

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// PackJSON serializes v and encodes the text as a string field.
func PackJSON(v any) ([]byte, error) {
	text, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("protocol: pack json: %w", err)
	}
	if len(text) > MaxStringLength {
		return nil, rangeErr("string length", int64(len(text)), 0, MaxStringLength)
	}
	// Marshal output is always valid UTF-8.
	out := AppendUvarint(make([]byte, 0, len(text)+3), uint64(len(text)))
	return append(out, text...), nil
}

// UnpackJSON reads a string field and unmarshals it into v.
// The cursor only moves on success.
func (b *Buffer) UnpackJSON(v any) error {
	start := b.pos
	p, err := b.unpackStringBytes()
	if err != nil {
		return err
	}
	if err := json.Unmarshal(p, v); err != nil {
		b.pos = start
		return decodeErr("json", start, err)
	}
	return nil
}

// UnpackJSONValue reads a string field holding any JSON value and returns
// it as map[string]any, []any, string, float64, bool or nil.
func (b *Buffer) UnpackJSONValue() (any, error) {
	var v any
	if err := b.UnpackJSON(&v); err != nil {
		return nil, err
	}
	return v, nil
}
