// FILE: lixenwraith/logtree/compat/fasthttp.go
package compat

import (
	"fmt"
	"strings"

	"github.com/lixenwraith/logtree"
	"github.com/valyala/fasthttp"
)

var _ fasthttp.Logger = (*FastHTTPAdapter)(nil)

// FastHTTPAdapter writes fasthttp server logs into a logtree node
type FastHTTPAdapter struct {
	logger        *logtree.Logger
	defaultLevel  logtree.Level
	levelDetector func(string) (logtree.Level, bool) // Function to detect log level from message
}

// NewFastHTTPAdapter creates a new fasthttp-compatible logger adapter
func NewFastHTTPAdapter(logger *logtree.Logger, opts ...FastHTTPOption) *FastHTTPAdapter {
	adapter := &FastHTTPAdapter{
		logger:        logger,
		defaultLevel:  logtree.LevelInformation,
		levelDetector: DetectLogLevel, // Default level detection
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// FastHTTPOption allows customizing adapter behavior
type FastHTTPOption func(*FastHTTPAdapter)

// WithDefaultLevel sets the level used when no level is detected
func WithDefaultLevel(level logtree.Level) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.defaultLevel = level
	}
}

// WithLevelDetector sets a custom function to detect log level from message content.
// Pass nil to always use the default level.
func WithLevelDetector(detector func(string) (logtree.Level, bool)) FastHTTPOption {
	return func(a *FastHTTPAdapter) {
		a.levelDetector = detector
	}
}

// Printf implements fasthttp's Logger interface
func (a *FastHTTPAdapter) Printf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	level := a.defaultLevel
	if a.levelDetector != nil {
		if detected, ok := a.levelDetector(msg); ok {
			level = detected
		}
	}

	a.logger.Write(level, "msg", msg, "source", "fasthttp")
}

// DetectLogLevel guesses a level from keywords in the message
func DetectLogLevel(msg string) (logtree.Level, bool) {
	msgLower := strings.ToLower(msg)

	if strings.Contains(msgLower, "error") ||
		strings.Contains(msgLower, "failed") ||
		strings.Contains(msgLower, "fatal") ||
		strings.Contains(msgLower, "panic") {
		return logtree.LevelError, true
	}

	if strings.Contains(msgLower, "warn") ||
		strings.Contains(msgLower, "deprecated") {
		return logtree.LevelWarning, true
	}

	if strings.Contains(msgLower, "trace") {
		return logtree.LevelTrace, true
	}

	if strings.Contains(msgLower, "debug") {
		return logtree.LevelDebug, true
	}

	return 0, false
}
