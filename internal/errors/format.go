package errors

import (
	stderrors "errors"
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/muesli/termenv"
)

// profile decides whether Format emits ANSI styling.
var profile = termenv.ANSI

// DisableColors disables ANSI color output.
func DisableColors() {
	profile = termenv.Ascii
}

// EnableColors enables ANSI color output.
func EnableColors() {
	profile = termenv.ANSI
}

// DetectColors enables colors only when w is a terminal that accepts them.
// NO_COLOR and CLICOLOR_FORCE are honored.
func DetectColors(w io.Writer) {
	if termenv.NewOutput(w).EnvColorProfile() == termenv.Ascii {
		DisableColors()
		return
	}
	EnableColors()
}

func style(text string, c termenv.Color, bold bool) string {
	s := profile.String(text)
	if c != nil {
		s = s.Foreground(c)
	}
	if bold {
		s = s.Bold()
	}
	return s.String()
}

func red(text string) string  { return style(text, termenv.ANSIRed, false) }
func cyan(text string) string { return style(text, termenv.ANSICyan, false) }
func gray(text string) string { return style(text, termenv.ANSIBrightBlack, false) }
func bold(text string) string { return style(text, nil, true) }

// hexWidth is the number of bytes shown per hex dump row.
const hexWidth = 16

// contextRows is the number of rows shown on each side of the failing row.
const contextRows = 1

// Format returns a formatted error message for terminal display.
func (e *WireError) Format() string {
	var b strings.Builder

	// Header line
	b.WriteString("\n")
	if e.Code != "" {
		b.WriteString(style("ERROR ", termenv.ANSIRed, true))
		b.WriteString(bold(e.Code + ": "))
	} else {
		b.WriteString(style("ERROR: ", termenv.ANSIRed, true))
	}
	b.WriteString(e.Message)
	b.WriteString("\n\n")

	if e.Wrapped != nil {
		b.WriteString("  ")
		b.WriteString(gray(e.Wrapped.Error()))
		b.WriteString("\n\n")
	}

	if e.Offset >= 0 {
		b.WriteString("  ")
		b.WriteString(cyan(fmt.Sprintf("at byte %d of %d", e.Offset, len(e.Input))))
		b.WriteString("\n\n")
		if len(e.Input) > 0 {
			writeHexContext(&b, e.Input, e.Offset)
			b.WriteString("\n")
		}
	}

	// Detail
	if e.Detail != "" {
		for _, line := range wrapText(e.Detail, 70) {
			b.WriteString("  ")
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	// Suggestion
	if e.Suggestion != "" {
		b.WriteString("  ")
		b.WriteString(cyan("Hint: "))
		b.WriteString(e.Suggestion)
		b.WriteString("\n\n")
	}

	return b.String()
}

// writeHexContext dumps the rows of input around offset, marking the failing
// byte with a caret. An offset at the end of input points one past the last
// byte, where a truncated field would have continued.
func writeHexContext(b *strings.Builder, input []byte, offset int) {
	row := offset / hexWidth
	first := max(row-contextRows, 0)
	last := min(row+contextRows, (len(input)-1)/hexWidth)
	if offset >= len(input) {
		last = max(last, row)
	}

	for r := first; r <= last; r++ {
		start := r * hexWidth
		end := min(start+hexWidth, len(input))
		var hex string
		if start < end {
			hex = fmt.Sprintf("% x", input[start:end])
		}

		if r == row {
			b.WriteString("  ")
			b.WriteString(red("→ "))
		} else {
			b.WriteString("    ")
		}
		b.WriteString(fmt.Sprintf("%04x", start))
		b.WriteString(gray(" │ "))
		b.WriteString(hex)
		b.WriteString("\n")

		if r == row {
			b.WriteString("         ")
			b.WriteString(gray("│ "))
			b.WriteString(strings.Repeat(" ", 3*(offset-start)))
			b.WriteString(red("^"))
			b.WriteString("\n")
		}
	}
}

// FormatCompact returns a compact single-line error format.
func (e *WireError) FormatCompact() string {
	var b strings.Builder

	if e.Offset >= 0 {
		fmt.Fprintf(&b, "@%d: ", e.Offset)
	}

	if e.Code != "" {
		b.WriteString(e.Code)
		b.WriteString(": ")
	}

	b.WriteString(e.Message)
	if e.Wrapped != nil {
		b.WriteString(": ")
		b.WriteString(e.Wrapped.Error())
	}

	return b.String()
}

type jsonError struct {
	Code       string   `json:"code,omitempty"`
	Category   Category `json:"category"`
	Message    string   `json:"message"`
	Detail     string   `json:"detail,omitempty"`
	Cause      string   `json:"cause,omitempty"`
	Offset     *int     `json:"offset,omitempty"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// FormatJSON returns the error as a JSON object.
func (e *WireError) FormatJSON() string {
	out := jsonError{
		Code:       e.Code,
		Category:   e.Category,
		Message:    e.Message,
		Detail:     e.Detail,
		Suggestion: e.Suggestion,
	}
	if e.Wrapped != nil {
		out.Cause = e.Wrapped.Error()
	}
	if e.Offset >= 0 {
		off := e.Offset
		out.Offset = &off
	}
	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(out)
	if err != nil {
		// Only string and int fields; cannot fail.
		return fmt.Sprintf(`{"message":%q}`, e.Message)
	}
	return string(data)
}

// wrapText wraps text to the specified width.
func wrapText(text string, width int) []string {
	if text == "" {
		return nil
	}
	if len(text) <= width {
		return []string{text}
	}

	var lines []string
	var current strings.Builder

	for _, word := range strings.Fields(text) {
		if current.Len() > 0 && current.Len()+len(word)+1 > width {
			lines = append(lines, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString(" ")
		}
		current.WriteString(word)
	}

	if current.Len() > 0 {
		lines = append(lines, current.String())
	}

	return lines
}

// Fprint writes a formatted error to w.
func Fprint(w io.Writer, err error) {
	var we *WireError
	if stderrors.As(err, &we) {
		fmt.Fprint(w, we.Format())
		return
	}
	fmt.Fprintf(w, "\n%s %s\n\n", style("ERROR:", termenv.ANSIRed, true), err.Error())
}
