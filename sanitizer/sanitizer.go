// FILE: lixenwraith/logtree/sanitizer/sanitizer.go
// Package sanitizer provides a fluent and composable interface for sanitizing
// strings based on configurable rules using bitwise filter flags and transforms.
package sanitizer

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/davecgh/go-spew/spew"
)

// Filter flags for character matching
const (
	FilterNonPrintable uint64 = 1 << iota // Runes not classified as printable by strconv.IsPrint
	FilterControl                         // Control characters (unicode.IsControl)
	FilterWhitespace                      // Whitespace characters (unicode.IsSpace)
	FilterShellSpecial                    // Shell metacharacters: '`', '$', ';', '|', '&', '>', '<', '(', ')', '#'
	FilterLineBreak                       // '\n' and '\r'
)

// Transform flags for character transformation
const (
	TransformStrip      uint64 = 1 << iota // Removes the character
	TransformHexEncode                     // Encodes the character's UTF-8 bytes as "<XXYY>"
	TransformJSONEscape                    // Escapes the character with JSON-style backslashes
	TransformKeep                          // Keeps the character, used to exempt runes from later rules
)

// PolicyPreset defines pre-configured sanitization policies
type PolicyPreset string

const (
	PolicyRaw   PolicyPreset = "raw"   // No-op passthrough
	PolicyTxt   PolicyPreset = "txt"   // Hex-encodes non-printables except line breaks and tabs
	PolicyLine  PolicyPreset = "line"  // Like txt but also encodes line breaks, one record per line
	PolicyJSON  PolicyPreset = "json"  // Escapes control characters for embedding in JSON
	PolicyShell PolicyPreset = "shell" // Strips shell metacharacters and whitespace
)

type rule struct {
	filter    uint64
	transform uint64
}

var policyRules = map[PolicyPreset][]rule{
	PolicyRaw: {},
	PolicyTxt: {
		{filter: FilterLineBreak, transform: TransformKeep},
		{filter: FilterNonPrintable, transform: TransformHexEncode},
	},
	PolicyLine:  {{filter: FilterNonPrintable, transform: TransformHexEncode}},
	PolicyJSON:  {{filter: FilterControl, transform: TransformJSONEscape}},
	PolicyShell: {{filter: FilterShellSpecial | FilterWhitespace, transform: TransformStrip}},
}

// filterCheckers is ordered so matching is deterministic
var filterCheckers = []struct {
	flag  uint64
	check func(rune) bool
}{
	{FilterNonPrintable, func(r rune) bool { return !strconv.IsPrint(r) && r != '\t' }},
	{FilterControl, unicode.IsControl},
	{FilterWhitespace, unicode.IsSpace},
	{FilterShellSpecial, func(r rune) bool {
		switch r {
		case '`', '$', ';', '|', '&', '>', '<', '(', ')', '#':
			return true
		}
		return false
	}},
	{FilterLineBreak, func(r rune) bool { return r == '\n' || r == '\r' }},
}

// IsPolicy reports whether name is a known preset.
func IsPolicy(name string) bool {
	_, ok := policyRules[PolicyPreset(name)]
	return ok
}

// Sanitizer provides chainable text sanitization. Not safe for concurrent use.
type Sanitizer struct {
	rules []rule
	buf   []byte
}

// New creates a passthrough Sanitizer
func New() *Sanitizer {
	return &Sanitizer{
		buf: make([]byte, 0, 256),
	}
}

// Rule appends a custom rule; the earliest matching rule wins
func (s *Sanitizer) Rule(filter uint64, transform uint64) *Sanitizer {
	s.rules = append(s.rules, rule{filter: filter, transform: transform})
	return s
}

// Policy appends the rules of a preset
func (s *Sanitizer) Policy(preset PolicyPreset) *Sanitizer {
	if rules, ok := policyRules[preset]; ok {
		s.rules = append(s.rules, rules...)
	}
	return s
}

// Sanitize applies all configured rules to the input string
func (s *Sanitizer) Sanitize(data string) string {
	if len(s.rules) == 0 {
		return data
	}
	s.buf = s.buf[:0]

	for _, r := range data {
		matched := false
		for _, rl := range s.rules {
			if matchesFilter(r, rl.filter) {
				applyTransform(&s.buf, r, rl.transform)
				matched = true
				break
			}
		}
		if !matched {
			s.buf = utf8.AppendRune(s.buf, r)
		}
	}

	return string(s.buf)
}

func matchesFilter(r rune, filterMask uint64) bool {
	for _, fc := range filterCheckers {
		if filterMask&fc.flag != 0 && fc.check(r) {
			return true
		}
	}
	return false
}

func applyTransform(buf *[]byte, r rune, transformMask uint64) {
	switch {
	case transformMask&TransformStrip != 0:

	case transformMask&TransformKeep != 0:
		*buf = utf8.AppendRune(*buf, r)

	case transformMask&TransformHexEncode != 0:
		var runeBytes [utf8.UTFMax]byte
		n := utf8.EncodeRune(runeBytes[:], r)
		*buf = append(*buf, '<')
		*buf = append(*buf, hex.EncodeToString(runeBytes[:n])...)
		*buf = append(*buf, '>')

	case transformMask&TransformJSONEscape != 0:
		appendJSONRune(buf, r)
	}
}

func appendJSONRune(buf *[]byte, r rune) {
	switch r {
	case '\n':
		*buf = append(*buf, '\\', 'n')
	case '\r':
		*buf = append(*buf, '\\', 'r')
	case '\t':
		*buf = append(*buf, '\\', 't')
	case '\b':
		*buf = append(*buf, '\\', 'b')
	case '\f':
		*buf = append(*buf, '\\', 'f')
	case '"':
		*buf = append(*buf, '\\', '"')
	case '\\':
		*buf = append(*buf, '\\', '\\')
	default:
		if r < 0x20 || r == 0x7f {
			*buf = append(*buf, fmt.Sprintf("\\u%04x", r)...)
		} else {
			*buf = utf8.AppendRune(*buf, r)
		}
	}
}

// inline renders complex values on a single line for text output
var inline = &spew.ConfigState{
	Indent:                  "",
	MaxDepth:                10,
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	DisableMethods:          false,
	SortKeys:                true,
}

// Serializer implements format-specific output behaviors
type Serializer struct {
	format    string
	sanitizer *Sanitizer
}

// NewSerializer creates a handler for "txt", "raw" or "json" output
func NewSerializer(format string, san *Sanitizer) *Serializer {
	if san == nil {
		san = New()
	}
	return &Serializer{
		format:    format,
		sanitizer: san,
	}
}

// WriteString writes a string with format-specific handling
func (se *Serializer) WriteString(buf *[]byte, s string) {
	switch se.format {
	case "json":
		*buf = append(*buf, '"')
		for _, r := range se.sanitizer.Sanitize(s) {
			if r < ' ' || r == '"' || r == '\\' || r == 0x7f {
				appendJSONRune(buf, r)
				continue
			}
			*buf = utf8.AppendRune(*buf, r)
		}
		*buf = append(*buf, '"')

	default:
		*buf = append(*buf, se.sanitizer.Sanitize(s)...)
	}
}

// WriteNumber writes a number value
func (se *Serializer) WriteNumber(buf *[]byte, n string) {
	*buf = append(*buf, n...)
}

// WriteBool writes a boolean value
func (se *Serializer) WriteBool(buf *[]byte, b bool) {
	*buf = strconv.AppendBool(*buf, b)
}

// WriteNil writes a nil value
func (se *Serializer) WriteNil(buf *[]byte) {
	switch se.format {
	case "json":
		*buf = append(*buf, "null"...)
	default:
		*buf = append(*buf, "<nil>"...)
	}
}

// WriteComplex writes maps, structs, slices and other composite values
func (se *Serializer) WriteComplex(buf *[]byte, v any) {
	switch se.format {
	case "json":
		encoded, err := json.Marshal(v)
		if err != nil {
			se.WriteString(buf, fmt.Sprintf("%+v", v))
			return
		}
		*buf = append(*buf, encoded...)

	default:
		se.WriteString(buf, inline.Sprintf("%+v", v))
	}
}
