// FILE: lixenwraith/logtree/default.go
package logtree

// Global root node for package-level functions
var defaultLogger = New("")

// Default returns the package-level root node. Attach transports to it or
// create children from it.
func Default() *Logger {
	return defaultLogger
}

// Trace logs a message at trace level on the default logger
func Trace(args ...any) {
	defaultLogger.Trace(args...)
}

// Debug logs a message at debug level on the default logger
func Debug(args ...any) {
	defaultLogger.Debug(args...)
}

// Info logs a message at information level on the default logger
func Info(args ...any) {
	defaultLogger.Info(args...)
}

// Warning logs a message at warning level on the default logger
func Warning(args ...any) {
	defaultLogger.Warning(args...)
}

// Error logs a message at error level on the default logger
func Error(args ...any) {
	defaultLogger.Error(args...)
}

// Critical logs a message at critical level on the default logger
func Critical(args ...any) {
	defaultLogger.Critical(args...)
}

// Child creates a named child of the default logger
func Child(name string, opts ...Option) *Logger {
	return defaultLogger.CreateChild(name, opts...)
}
