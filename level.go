package logtree

import (
	"strconv"
	"strings"

	"github.com/lixenwraith/logtree/formatter"
)

// String returns the lowercase level name, e.g. "information".
func (l Level) String() string {
	name, err := formatter.LevelName(int(l))
	if err != nil {
		return "level(" + strconv.Itoa(int(l)) + ")"
	}
	return name
}

// Valid reports whether l is one of the defined levels including None.
func (l Level) Valid() bool {
	return l >= LevelTrace && l <= LevelNone
}

// MarshalText implements encoding.TextMarshaler
func (l Level) MarshalText() ([]byte, error) {
	name, err := formatter.LevelName(int(l))
	if err != nil {
		return nil, fmtErrorf("%w", err)
	}
	return []byte(name), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (l *Level) UnmarshalText(text []byte) error {
	parsed, err := ParseLevel(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLevel converts a level name or its common short form to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "information", "info":
		return LevelInformation, nil
	case "warning", "warn":
		return LevelWarning, nil
	case "error":
		return LevelError, nil
	case "critical", "crit":
		return LevelCritical, nil
	case "none", "off":
		return LevelNone, nil
	default:
		return 0, fmtErrorf("invalid level string: '%s' (use trace, debug, information, warning, error, critical, none)", s)
	}
}
