// FILE: lixenwraith/logtree/utility.go
package logtree

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

const errPrefix = "logtree: "

// fmtErrorf wrapper
func fmtErrorf(format string, args ...any) error {
	if !strings.HasPrefix(format, errPrefix) {
		format = errPrefix + format
	}
	return fmt.Errorf(format, args...)
}

// combineErrors helper
func combineErrors(err1, err2 error) error {
	if err1 == nil {
		return err2
	}
	if err2 == nil {
		return err1
	}
	return fmt.Errorf("%v; %w", err1, err2)
}

// parseKeyValue splits a "key=value" string.
func parseKeyValue(arg string) (string, string, error) {
	parts := strings.SplitN(strings.TrimSpace(arg), "=", 2)
	if len(parts) != 2 {
		return "", "", fmtErrorf("invalid format in override string '%s', expected key=value", arg)
	}
	key := strings.TrimSpace(parts[0])
	value := strings.TrimSpace(parts[1])
	if key == "" {
		return "", "", fmtErrorf("key cannot be empty in override string '%s'", arg)
	}
	return key, value, nil
}

var (
	diagMu     sync.Mutex
	diagWriter io.Writer = os.Stderr
)

// internalLog reports library failures that are never surfaced to callers.
func internalLog(enabled bool, format string, args ...any) {
	if !enabled {
		return
	}
	diagMu.Lock()
	defer diagMu.Unlock()
	fmt.Fprintf(diagWriter, errPrefix+format+"\n", args...)
}

// setDiagnosticWriter redirects internal diagnostics, returning the previous writer.
func setDiagnosticWriter(w io.Writer) io.Writer {
	diagMu.Lock()
	defer diagMu.Unlock()
	prev := diagWriter
	diagWriter = w
	return prev
}
