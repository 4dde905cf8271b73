package errors

import "sort"

// Registered codes.
const (
	CodeRange         = "W001"
	CodeOutOfData     = "W002"
	CodeMalformed     = "W003"
	CodeVarintTooLong = "W004"
	CodeInvalidUTF8   = "W005"
	CodeCompression   = "W006"
	CodeFrameTooLarge = "W007"
	CodeBitWidth      = "W008"
	CodeDirection     = "W009"
	CodeSlot          = "W010"
	CodeLayout        = "W011"

	CodeConfigParse = "W020"
	CodeConfigValue = "W021"

	CodeHexInput = "W030"
	CodeArgument = "W031"

	CodeInternal = "W099"
)

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category   Category
	Message    string
	Detail     string
	Suggestion string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Codec Errors (W001-W019)
	// ============================================

	CodeRange: {
		Category: CategoryRange,
		Message:  "Value out of range",
		Detail:   "The value does not fit the signed range of its field. Varints are limited by their bit width, positions by 26/12/26 bits, strings by 65535 bytes.",
	},
	CodeOutOfData: {
		Category:   CategoryData,
		Message:    "Unexpected end of data",
		Detail:     "A field needs more bytes than remain in the input.",
		Suggestion: "Check that the whole frame was captured and that the compression threshold matches the connection.",
	},
	CodeMalformed: {
		Category: CategoryDecode,
		Message:  "Malformed data",
		Detail:   "The bytes at this offset cannot be decoded as the expected field.",
	},
	CodeVarintTooLong: {
		Category: CategoryDecode,
		Message:  "Varint too long",
		Detail:   "A varint may occupy at most 10 bytes and carry at most 64 bits.",
	},
	CodeInvalidUTF8: {
		Category: CategoryDecode,
		Message:  "String is not valid UTF-8",
		Detail:   "Protocol strings carry UTF-8 text after their varint length.",
	},
	CodeCompression: {
		Category:   CategoryDecode,
		Message:    "Compressed payload is corrupt",
		Detail:     "The zlib stream is invalid or does not inflate to the declared Data Length.",
		Suggestion: "Decode with --threshold -1 if compression was never enabled on the connection.",
	},
	CodeFrameTooLarge: {
		Category: CategoryDecode,
		Message:  "Frame too large",
		Detail:   "Frames are limited to 2097151 bytes on the wire and 8388608 bytes once inflated.",
	},
	CodeBitWidth: {
		Category: CategoryRange,
		Message:  "Invalid varint bit width",
		Detail:   "The bit width of a varint must be between 1 and 64.",
	},
	CodeDirection: {
		Category:   CategoryRange,
		Message:    "Unknown direction",
		Suggestion: "Use one of down, up, north, south, west, east.",
	},
	CodeSlot: {
		Category: CategoryData,
		Message:  "Slot encoding is not supported",
	},
	CodeLayout: {
		Category: CategoryData,
		Message:  "Values do not match the field layout",
	},

	// ============================================
	// Config Errors (W020-W029)
	// ============================================

	CodeConfigParse: {
		Category:   CategoryConfig,
		Message:    "Cannot read configuration",
		Detail:     "mcwire.json is missing, unreadable or not valid JSON.",
		Suggestion: "Run with --config to point at a specific file.",
	},
	CodeConfigValue: {
		Category: CategoryConfig,
		Message:  "Invalid configuration value",
	},

	// ============================================
	// CLI Errors (W030-W039)
	// ============================================

	CodeHexInput: {
		Category:   CategoryCLI,
		Message:    "Invalid hex input",
		Suggestion: "Pass bytes as hex digits; spaces, colons and a 0x prefix are ignored.",
	},
	CodeArgument: {
		Category: CategoryCLI,
		Message:  "Invalid argument",
	},

	CodeInternal: {
		Category: CategoryData,
		Message:  "Unexpected error",
	},
}

// GetAllCodes returns all registered error codes in order.
func GetAllCodes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// GetTemplate returns the template for an error code.
func GetTemplate(code string) (ErrorTemplate, bool) {
	t, ok := registry[code]
	return t, ok
}

// Register adds a new error template to the registry.
func Register(code string, template ErrorTemplate) {
	registry[code] = template
}
