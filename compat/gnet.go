package compat

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/lixenwraith/logtree"
	"github.com/panjf2000/gnet/v2/pkg/logging"
)

var _ logging.Logger = (*GnetAdapter)(nil)

// GnetAdapter writes gnet engine logs into a logtree node
type GnetAdapter struct {
	logger        *logtree.Logger
	fatalHandler  func(msg string) // Customizable fatal behavior
	extractFields bool
}

// NewGnetAdapter creates a new gnet-compatible logger adapter
func NewGnetAdapter(logger *logtree.Logger, opts ...GnetOption) *GnetAdapter {
	adapter := &GnetAdapter{
		logger: logger,
		fatalHandler: func(msg string) {
			os.Exit(1) // Default behavior matches gnet expectations
		},
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// GnetOption allows customizing adapter behavior
type GnetOption func(*GnetAdapter)

// WithFatalHandler sets a custom fatal handler
func WithFatalHandler(handler func(string)) GnetOption {
	return func(a *GnetAdapter) {
		a.fatalHandler = handler
	}
}

// WithFieldExtraction turns "key=%v" patterns in format strings into
// key/value arguments instead of a single message
func WithFieldExtraction() GnetOption {
	return func(a *GnetAdapter) {
		a.extractFields = true
	}
}

func (a *GnetAdapter) args(format string, args []any) []any {
	if a.extractFields {
		return append(parseFormat(format, args), "source", "gnet")
	}
	return []any{"msg", fmt.Sprintf(format, args...), "source", "gnet"}
}

// Debugf logs at debug level with printf-style formatting
func (a *GnetAdapter) Debugf(format string, args ...any) {
	a.logger.Debug(a.args(format, args)...)
}

// Infof logs at information level with printf-style formatting
func (a *GnetAdapter) Infof(format string, args ...any) {
	a.logger.Info(a.args(format, args)...)
}

// Warnf logs at warning level with printf-style formatting
func (a *GnetAdapter) Warnf(format string, args ...any) {
	a.logger.Warning(a.args(format, args)...)
}

// Errorf logs at error level with printf-style formatting
func (a *GnetAdapter) Errorf(format string, args ...any) {
	a.logger.Error(a.args(format, args)...)
}

// Fatalf forces a critical record past every level filter, syncs file
// transports and triggers the fatal handler
func (a *GnetAdapter) Fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	a.logger.Force(logtree.LevelCritical, "msg", msg, "source", "gnet", "fatal", true)

	syncTransports(a.logger)

	if a.fatalHandler != nil {
		a.fatalHandler(msg)
	}
}

// keyValuePattern detects structured patterns like "key=%v" or "key: %v"
var keyValuePattern = regexp.MustCompile(`(\w+)\s*[:=]\s*%[vsdqxXeEfFgGpbcU]`)

// parseFormat attempts to extract structured fields from printf-style format strings
func parseFormat(format string, args []any) []any {
	matches := keyValuePattern.FindAllStringSubmatchIndex(format, -1)
	if len(matches) == 0 || len(matches) > len(args) {
		return []any{"msg", fmt.Sprintf(format, args...)}
	}

	fields := make([]any, 0, len(matches)*2+2)
	lastEnd := 0
	argIndex := 0

	for _, match := range matches {
		// Text before the first pair becomes the message
		if match[0] > lastEnd && len(fields) == 0 {
			if prefix := strings.TrimSpace(format[lastEnd:match[0]]); prefix != "" {
				fields = append(fields, "msg", prefix)
			}
		}

		key := format[match[2]:match[3]]
		if argIndex < len(args) {
			fields = append(fields, key, args[argIndex])
			argIndex++
		}
		lastEnd = match[1]
	}

	if lastEnd < len(format) && argIndex < len(args) {
		remaining := strings.TrimSpace(fmt.Sprintf(format[lastEnd:], args[argIndex:]...))
		if remaining != "" {
			if len(fields) > 0 && fields[0] == "msg" {
				fields[1] = fmt.Sprintf("%v %s", fields[1], remaining)
			} else {
				fields = append([]any{"msg", remaining}, fields...)
			}
		}
	}

	return fields
}

// syncer is implemented by transports that buffer writes, e.g. logtree.FileTransport
type syncer interface {
	Sync() error
}

// syncTransports flushes the transports of l and of its parent chain
func syncTransports(l *logtree.Logger) {
	for n := l; n != nil; n = n.Parent() {
		for _, t := range n.Transports() {
			if s, ok := t.(syncer); ok {
				_ = s.Sync()
			}
		}
	}
}
