package chat

import (
	"fmt"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/pymine-dev/mcwire/pkg/protocol"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Mode selects how Render treats formatting.
type Mode int

const (
	// ModePlain drops all formatting.
	ModePlain Mode = iota

	// ModeNormal keeps legacy § codes and turns component formatting keys
	// into § codes.
	ModeNormal

	// ModeColor renders formatting as terminal escape sequences.
	ModeColor
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModePlain:
		return "plain"
	case ModeNormal:
		return "normal"
	case ModeColor:
		return "color"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode returns the mode with the given name.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(name) {
	case "plain":
		return ModePlain, nil
	case "normal":
		return ModeNormal, nil
	case "color", "colour":
		return ModeColor, nil
	}
	return 0, fmt.Errorf("chat: unknown render mode %q", name)
}

// Message is a chat message holding a decoded JSON text component.
// Component is one of string, []any, map[string]any, nil, or a JSON scalar.
type Message struct {
	Component any
}

var (
	_ protocol.BufferMarshaler   = (*Message)(nil)
	_ protocol.BufferUnmarshaler = (*Message)(nil)
)

// New wraps an already decoded component.
func New(component any) *Message {
	return &Message{Component: component}
}

// FromString builds the component {"text": text}.
func FromString(text string) *Message {
	return &Message{Component: map[string]any{"text": text}}
}

// FromBuffer reads one chat message from b.
func FromBuffer(b *protocol.Buffer) (*Message, error) {
	m := &Message{}
	if err := m.UnmarshalBuffer(b); err != nil {
		return nil, err
	}
	return m, nil
}

// MarshalBuffer encodes the component as a protocol JSON string.
func (m *Message) MarshalBuffer() ([]byte, error) {
	return protocol.PackJSON(m.Component)
}

// UnmarshalBuffer reads a protocol JSON string into the component.
func (m *Message) UnmarshalBuffer(b *protocol.Buffer) error {
	v, err := b.UnpackJSONValue()
	if err != nil {
		return err
	}
	m.Component = v
	return nil
}

// MarshalJSON encodes the component itself, so a Message nests inside other
// JSON documents unchanged.
func (m *Message) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Component)
}

// UnmarshalJSON decodes any JSON value into the component.
func (m *Message) UnmarshalJSON(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	m.Component = v
	return nil
}

// String renders the message as plain text.
func (m *Message) String() string {
	return m.Render(ModePlain)
}

// Render flattens the component tree into text. Lists concatenate their
// elements; objects render their formatting, then "text", then "extra".
// In ModeColor the output ends with a reset when any escape was written.
func (m *Message) Render(mode Mode) string {
	if m == nil {
		return ""
	}
	r := renderer{mode: mode}
	r.component(m.Component)
	if r.styled {
		r.sb.WriteString(resetSeq)
	}
	return r.sb.String()
}

type renderer struct {
	mode   Mode
	sb     strings.Builder
	styled bool
}

func (r *renderer) component(v any) {
	switch c := v.(type) {
	case nil:
	case string:
		r.text(c)
	case []any:
		for _, e := range c {
			r.component(e)
		}
	case map[string]any:
		r.object(c)
	case bool:
		r.sb.WriteString(strconv.FormatBool(c))
	case float64:
		r.sb.WriteString(strconv.FormatFloat(c, 'f', -1, 64))
	default:
		fmt.Fprint(&r.sb, c)
	}
}

func (r *renderer) object(obj map[string]any) {
	if r.mode != ModePlain {
		if name, ok := obj["color"].(string); ok {
			if code, ok := colorCodes[name]; ok {
				r.code(code)
			}
		}
		for _, f := range formatFlags {
			if on, _ := obj[f.key].(bool); on {
				r.code(f.code)
			}
		}
	}
	if text, ok := obj["text"]; ok {
		r.component(text)
	}
	if extra, ok := obj["extra"]; ok {
		r.component(extra)
	}
}

func (r *renderer) text(s string) {
	switch r.mode {
	case ModePlain:
		r.sb.WriteString(StripCodes(s))
	case ModeColor:
		if translateCodes(&r.sb, s) {
			r.styled = true
		}
	default:
		r.sb.WriteString(s)
	}
}

func (r *renderer) code(c byte) {
	if r.mode == ModeColor {
		r.sb.WriteString(terminalCodes[c])
		r.styled = true
		return
	}
	r.sb.WriteRune(Section)
	r.sb.WriteByte(c)
}
