package chat

import (
	"strings"

	"github.com/muesli/termenv"
)

// Section is the legacy formatting code prefix.
const Section = '§'

// colorCodes maps component color names to their legacy code.
var colorCodes = map[string]byte{
	"black":        '0',
	"dark_blue":    '1',
	"dark_green":   '2',
	"dark_aqua":    '3',
	"dark_red":     '4',
	"dark_purple":  '5',
	"gold":         '6',
	"gray":         '7',
	"dark_gray":    '8',
	"blue":         '9',
	"green":        'a',
	"aqua":         'b',
	"red":          'c',
	"light_purple": 'd',
	"yellow":       'e',
	"white":        'f',
}

// formatFlags lists the boolean component keys in the order their codes
// are emitted. A color code resets formatting, so flags follow the color.
var formatFlags = []struct {
	key  string
	code byte
}{
	{"obfuscated", 'k'},
	{"bold", 'l'},
	{"strikethrough", 'm'},
	{"underlined", 'n'},
	{"italic", 'o'},
}

// terminalCodes maps legacy codes to SGR escape sequences.
var terminalCodes = map[byte]string{
	'0': sgr(termenv.ANSIBlack.Sequence(false)),
	'1': sgr(termenv.ANSIBlue.Sequence(false)),
	'2': sgr(termenv.ANSIGreen.Sequence(false)),
	'3': sgr(termenv.ANSICyan.Sequence(false)),
	'4': sgr(termenv.ANSIRed.Sequence(false)),
	'5': sgr(termenv.ANSIMagenta.Sequence(false)),
	'6': sgr(termenv.ANSIYellow.Sequence(false)),
	'7': sgr(termenv.ANSIWhite.Sequence(false)),
	'8': sgr(termenv.ANSIBrightBlack.Sequence(false)),
	'9': sgr(termenv.ANSIBrightBlue.Sequence(false)),
	'a': sgr(termenv.ANSIBrightGreen.Sequence(false)),
	'b': sgr(termenv.ANSIBrightCyan.Sequence(false)),
	'c': sgr(termenv.ANSIBrightRed.Sequence(false)),
	'd': sgr(termenv.ANSIBrightMagenta.Sequence(false)),
	'e': sgr(termenv.ANSIBrightYellow.Sequence(false)),
	'f': sgr(termenv.ANSIBrightWhite.Sequence(false)),
	'k': sgr(termenv.BlinkSeq),
	'l': sgr(termenv.BoldSeq),
	'm': sgr(termenv.CrossOutSeq),
	'n': sgr(termenv.UnderlineSeq),
	'o': sgr(termenv.ItalicSeq),
	'r': resetSeq,
}

var resetSeq = sgr(termenv.ResetSeq)

func sgr(seq string) string {
	return termenv.CSI + seq + "m"
}

// normalizeCode lowercases an ASCII code letter.
func normalizeCode(c rune) (byte, bool) {
	if c >= 'A' && c <= 'Z' {
		c += 'a' - 'A'
	}
	if c > 0x7F {
		return 0, false
	}
	_, ok := terminalCodes[byte(c)]
	return byte(c), ok
}

// StripCodes removes every § sequence from s. A trailing lone § is dropped.
func StripCodes(s string) string {
	if !strings.ContainsRune(s, Section) {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	skip := false
	for _, r := range s {
		switch {
		case skip:
			skip = false
		case r == Section:
			skip = true
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// translateCodes replaces known § sequences with terminal escapes. Unknown
// sequences are dropped along with their code character.
func translateCodes(sb *strings.Builder, s string) (styled bool) {
	pending := false
	for _, r := range s {
		if pending {
			pending = false
			if c, ok := normalizeCode(r); ok {
				sb.WriteString(terminalCodes[c])
				styled = true
			}
			continue
		}
		if r == Section {
			pending = true
			continue
		}
		sb.WriteRune(r)
	}
	return styled
}
