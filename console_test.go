// FILE: lixenwraith/logtree/console_test.go
package logtree

import (
	"bytes"
	"strings"
	"testing"

	"github.com/lixenwraith/logtree/formatter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsole(t *testing.T, cfg *ConsoleConfig) (*ConsoleTransport, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	tr, err := NewConsoleTransportWriters(cfg, &stdout, &stderr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = tr.Close() })
	return tr, &stdout, &stderr
}

func TestConsoleSplit(t *testing.T) {
	tr, stdout, stderr := newTestConsole(t, nil)
	l := New("cli")
	tr.Attach(l)

	l.Info("to stdout")
	l.Warning("to stderr")
	l.Critical("also stderr")
	l.Debug("filtered")

	assert.Equal(t, 1, strings.Count(stdout.String(), "\n"))
	assert.Contains(t, stdout.String(), "[cli] to stdout")
	assert.Equal(t, 2, strings.Count(stderr.String(), "\n"))
	assert.Contains(t, stderr.String(), "[cli] also stderr")
	assert.NotContains(t, stdout.String()+stderr.String(), "\x1b[", "buffers are never colored")
}

func TestConsoleDestinations(t *testing.T) {
	testCases := []struct {
		destination string
		stdoutLines int
		stderrLines int
	}{
		{DestinationStdout, 2, 0},
		{DestinationStderr, 0, 2},
		{DestinationSplit, 1, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.destination, func(t *testing.T) {
			cfg := DefaultConsoleConfig()
			cfg.Destination = tc.destination
			tr, stdout, stderr := newTestConsole(t, cfg)
			l := New("")
			tr.Attach(l)

			l.Info("a")
			l.Error("b")

			assert.Equal(t, tc.stdoutLines, strings.Count(stdout.String(), "\n"))
			assert.Equal(t, tc.stderrLines, strings.Count(stderr.String(), "\n"))
		})
	}
}

func TestConsoleJSON(t *testing.T) {
	cfg := DefaultConsoleConfig()
	cfg.Format = FormatJSON
	cfg.Destination = DestinationStdout
	tr, stdout, _ := newTestConsole(t, cfg)
	l := New("api")
	tr.Attach(l)

	l.Info("ready", 8080)
	line := stdout.String()
	assert.True(t, strings.HasPrefix(line, `{"time":"`))
	assert.Contains(t, line, `"level":"information","logger":"api","fields":["ready",8080]}`)
}

func TestConsoleSanitizesByDefault(t *testing.T) {
	tr, stdout, _ := newTestConsole(t, nil)
	l := New("")
	tr.Attach(l)

	l.Info("bell\x07")
	assert.Contains(t, stdout.String(), "bell<07>")
}

func TestConsoleInvalidConfig(t *testing.T) {
	cfg := DefaultConsoleConfig()
	cfg.Destination = "printer"
	_, err := NewConsoleTransportWriters(cfg, &bytes.Buffer{}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestLevelColors(t *testing.T) {
	colors := newLevelColors(&bytes.Buffer{})
	// A non-terminal renderer has no color profile, so text passes unchanged
	assert.Equal(t, "Info", colors.Colorize(formatter.TokenLabel, int(LevelInformation), "Info"))
	assert.Equal(t, "x", colors.Colorize(formatter.TokenLabel, 99, "x"))
	assert.False(t, isTerminal(&bytes.Buffer{}))
}
