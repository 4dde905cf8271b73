package main

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/pymine-dev/mcwire/internal/errors"
)

// parseHex decodes hex input given as one or more arguments. Whitespace,
// colons and 0x prefixes are ignored so dumps can be pasted as is.
func parseHex(args []string) ([]byte, error) {
	s := strings.Join(args, "")
	s = strings.ReplaceAll(s, "0x", "")
	s = strings.ReplaceAll(s, "0X", "")
	s = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\n', '\r', ':':
			return -1
		}
		return r
	}, s)

	data, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.New(errors.CodeHexInput).Wrap(err)
	}
	return data, nil
}

// formatHex renders bytes as space separated hex pairs.
func formatHex(data []byte) string {
	return fmt.Sprintf("% x", data)
}

// decodeFailure wraps a codec error with the input it came from so the
// diagnostic can point at the failing byte.
func decodeFailure(err error, input []byte) error {
	return errors.FromError(err, input)
}

// argError reports an unusable command-line argument.
func argError(format string, args ...any) error {
	return errors.New(errors.CodeArgument).Wrap(fmt.Errorf(format, args...))
}
