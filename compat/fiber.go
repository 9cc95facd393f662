package compat

import (
	"fmt"
	"os"
	"strings"

	"github.com/lixenwraith/logtree"
)

// FiberAdapter writes Fiber v2 logs into a logtree node. It implements
// Fiber's AllLogger method set (Logger, FormatLogger and WithLogger) without
// importing Fiber.
type FiberAdapter struct {
	logger       *logtree.Logger
	fatalHandler func(msg string) // Customizable fatal behavior
	panicHandler func(msg string) // Customizable panic behavior
}

// NewFiberAdapter creates a new Fiber-compatible logger adapter
func NewFiberAdapter(logger *logtree.Logger, opts ...FiberOption) *FiberAdapter {
	adapter := &FiberAdapter{
		logger: logger,
		fatalHandler: func(msg string) {
			os.Exit(1)
		},
		panicHandler: func(msg string) {
			panic(msg)
		},
	}

	for _, opt := range opts {
		opt(adapter)
	}

	return adapter
}

// FiberOption allows customizing adapter behavior
type FiberOption func(*FiberAdapter)

// WithFiberFatalHandler sets a custom fatal handler
func WithFiberFatalHandler(handler func(string)) FiberOption {
	return func(a *FiberAdapter) {
		a.fatalHandler = handler
	}
}

// WithFiberPanicHandler sets a custom panic handler
func WithFiberPanicHandler(handler func(string)) FiberOption {
	return func(a *FiberAdapter) {
		a.panicHandler = handler
	}
}

func (a *FiberAdapter) log(level logtree.Level, msg string, keysAndValues []any) {
	args := make([]any, 0, len(keysAndValues)+4)
	args = append(args, "msg", msg, "source", "fiber")
	args = append(args, keysAndValues...)
	a.logger.Write(level, args...)
}

// fatal and panic records are forced so a muted node still reports them
func (a *FiberAdapter) terminate(handler func(string), kind, msg string, keysAndValues []any) {
	args := make([]any, 0, len(keysAndValues)+6)
	args = append(args, "msg", msg, "source", "fiber", kind, true)
	args = append(args, keysAndValues...)
	a.logger.Force(logtree.LevelCritical, args...)

	syncTransports(a.logger)

	if handler != nil {
		handler(msg)
	}
}

// --- Logger ---

// Trace logs at trace level
func (a *FiberAdapter) Trace(v ...any) { a.log(logtree.LevelTrace, fmt.Sprint(v...), nil) }

// Debug logs at debug level
func (a *FiberAdapter) Debug(v ...any) { a.log(logtree.LevelDebug, fmt.Sprint(v...), nil) }

// Info logs at information level
func (a *FiberAdapter) Info(v ...any) { a.log(logtree.LevelInformation, fmt.Sprint(v...), nil) }

// Warn logs at warning level
func (a *FiberAdapter) Warn(v ...any) { a.log(logtree.LevelWarning, fmt.Sprint(v...), nil) }

// Error logs at error level
func (a *FiberAdapter) Error(v ...any) { a.log(logtree.LevelError, fmt.Sprint(v...), nil) }

// Fatal logs at critical level and triggers the fatal handler
func (a *FiberAdapter) Fatal(v ...any) {
	a.terminate(a.fatalHandler, "fatal", fmt.Sprint(v...), nil)
}

// Panic logs at critical level and triggers the panic handler
func (a *FiberAdapter) Panic(v ...any) {
	a.terminate(a.panicHandler, "panic", fmt.Sprint(v...), nil)
}

// Write makes FiberAdapter usable as Fiber's log output
func (a *FiberAdapter) Write(p []byte) (n int, err error) {
	a.log(logtree.LevelInformation, strings.TrimSuffix(string(p), "\n"), nil)
	return len(p), nil
}

// --- FormatLogger ---

// Tracef logs at trace level with printf-style formatting
func (a *FiberAdapter) Tracef(format string, v ...any) {
	a.log(logtree.LevelTrace, fmt.Sprintf(format, v...), nil)
}

// Debugf logs at debug level with printf-style formatting
func (a *FiberAdapter) Debugf(format string, v ...any) {
	a.log(logtree.LevelDebug, fmt.Sprintf(format, v...), nil)
}

// Infof logs at information level with printf-style formatting
func (a *FiberAdapter) Infof(format string, v ...any) {
	a.log(logtree.LevelInformation, fmt.Sprintf(format, v...), nil)
}

// Warnf logs at warning level with printf-style formatting
func (a *FiberAdapter) Warnf(format string, v ...any) {
	a.log(logtree.LevelWarning, fmt.Sprintf(format, v...), nil)
}

// Errorf logs at error level with printf-style formatting
func (a *FiberAdapter) Errorf(format string, v ...any) {
	a.log(logtree.LevelError, fmt.Sprintf(format, v...), nil)
}

// Fatalf logs at critical level and triggers the fatal handler
func (a *FiberAdapter) Fatalf(format string, v ...any) {
	a.terminate(a.fatalHandler, "fatal", fmt.Sprintf(format, v...), nil)
}

// Panicf logs at critical level and triggers the panic handler
func (a *FiberAdapter) Panicf(format string, v ...any) {
	a.terminate(a.panicHandler, "panic", fmt.Sprintf(format, v...), nil)
}

// --- WithLogger ---

// Tracew logs at trace level with key/value pairs
func (a *FiberAdapter) Tracew(msg string, keysAndValues ...any) {
	a.log(logtree.LevelTrace, msg, keysAndValues)
}

// Debugw logs at debug level with key/value pairs
func (a *FiberAdapter) Debugw(msg string, keysAndValues ...any) {
	a.log(logtree.LevelDebug, msg, keysAndValues)
}

// Infow logs at information level with key/value pairs
func (a *FiberAdapter) Infow(msg string, keysAndValues ...any) {
	a.log(logtree.LevelInformation, msg, keysAndValues)
}

// Warnw logs at warning level with key/value pairs
func (a *FiberAdapter) Warnw(msg string, keysAndValues ...any) {
	a.log(logtree.LevelWarning, msg, keysAndValues)
}

// Errorw logs at error level with key/value pairs
func (a *FiberAdapter) Errorw(msg string, keysAndValues ...any) {
	a.log(logtree.LevelError, msg, keysAndValues)
}

// Fatalw logs at critical level with key/value pairs and triggers the fatal handler
func (a *FiberAdapter) Fatalw(msg string, keysAndValues ...any) {
	a.terminate(a.fatalHandler, "fatal", msg, keysAndValues)
}

// Panicw logs at critical level with key/value pairs and triggers the panic handler
func (a *FiberAdapter) Panicw(msg string, keysAndValues ...any) {
	a.terminate(a.panicHandler, "panic", msg, keysAndValues)
}
