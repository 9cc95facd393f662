// FILE: lixenwraith/logtree/constant.go
package logtree

import (
	"time"
)

// Level is the severity of a record. Higher is more severe.
type Level int

// Log level constants
const (
	LevelTrace Level = iota
	LevelDebug
	LevelInformation
	LevelWarning
	LevelError
	LevelCritical
	// LevelNone mutes a node or transport when configured; never written.
	LevelNone
)

// Transport defaults
const (
	DefaultTransportLevel = LevelInformation

	defaultFileName        = "console.log"
	defaultMaxFileSize     = 16 * 1024 * 1024
	defaultMaxArchiveCount = 10
	defaultMaxArchiveAge   = 31 * 24 * time.Hour
)

// Supported file encodings
const (
	EncodingUTF8    = "utf8"
	EncodingUTF16LE = "utf16le"
	EncodingUTF16BE = "utf16be"
	EncodingLatin1  = "latin1"
)

// Console destinations
const (
	DestinationSplit  = "split" // below Warning to stdout, the rest to stderr
	DestinationStdout = "stdout"
	DestinationStderr = "stderr"
)

// Output formats
const (
	FormatTxt  = "txt"
	FormatJSON = "json"
	FormatRaw  = "raw"
)

// End-of-line names
const (
	EOLLF   = "lf"
	EOLCRLF = "crlf"
)

// Minimum wait time used by polling loops in the package
const minWaitTime = 10 * time.Millisecond
