package logtree

import (
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/lixenwraith/logtree/formatter"
	"github.com/lixenwraith/logtree/sanitizer"
	"github.com/mattn/go-isatty"
)

// ConsoleTransport writes records to the process streams. With the split
// destination, records below Warning go to stdout and the rest to stderr.
type ConsoleTransport struct {
	*Base

	cfg    *ConsoleConfig
	mu     sync.Mutex
	stdout consoleStream
	stderr consoleStream
}

type consoleStream struct {
	w         io.Writer
	formatter *formatter.Formatter
}

// NewConsoleTransport creates an unattached transport writing to os.Stdout and os.Stderr.
func NewConsoleTransport(cfg *ConsoleConfig) (*ConsoleTransport, error) {
	return NewConsoleTransportWriters(cfg, os.Stdout, os.Stderr)
}

// NewConsoleTransportWriters creates an unattached transport over arbitrary writers.
// Colors are only applied to writers that are terminals.
func NewConsoleTransportWriters(cfg *ConsoleConfig, stdout, stderr io.Writer) (*ConsoleTransport, error) {
	if cfg == nil {
		cfg = DefaultConsoleConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Clone()

	t := &ConsoleTransport{
		cfg:    cfg,
		stdout: newConsoleStream(cfg, stdout),
		stderr: newConsoleStream(cfg, stderr),
	}
	t.Base = NewBase(cfg.level(), t)
	return t, nil
}

func newConsoleStream(cfg *ConsoleConfig, w io.Writer) consoleStream {
	var colors formatter.Colorizer
	if cfg.Colors && isTerminal(w) {
		colors = newLevelColors(w)
	}
	san := sanitizer.New().Policy(sanitizer.PolicyPreset(cfg.Sanitization))
	return consoleStream{
		w:         w,
		formatter: formatter.New(cfg.formatterOptions(), colors, san),
	}
}

// OnLoggerOutput writes the record to the stream chosen by destination and level
func (t *ConsoleTransport) OnLoggerOutput(rec Record) {
	t.mu.Lock()
	defer t.mu.Unlock()

	stream := &t.stdout
	switch t.cfg.Destination {
	case DestinationStderr:
		stream = &t.stderr
	case DestinationSplit:
		if rec.Level >= LevelWarning {
			stream = &t.stderr
		}
	}

	line, err := stream.formatter.Format(rec.entry())
	if err != nil {
		internalLog(true, "console dropped record: %v", err)
		return
	}
	_, _ = stream.w.Write(line)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// levelColors renders prefix tokens with lipgloss styles bound to the output writer
type levelColors struct {
	labels    [formatter.LevelCritical + 1]lipgloss.Style
	timestamp lipgloss.Style
}

func newLevelColors(w io.Writer) *levelColors {
	r := lipgloss.NewRenderer(w)
	return &levelColors{
		labels: [...]lipgloss.Style{
			formatter.LevelTrace:       r.NewStyle(),
			formatter.LevelDebug:       r.NewStyle().Foreground(lipgloss.Color("13")),
			formatter.LevelInformation: r.NewStyle().Foreground(lipgloss.Color("10")),
			formatter.LevelWarning:     r.NewStyle().Foreground(lipgloss.Color("11")),
			formatter.LevelError:       r.NewStyle().Foreground(lipgloss.Color("9")),
			formatter.LevelCritical:    r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		},
		timestamp: r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Colorize implements formatter.Colorizer
func (c *levelColors) Colorize(tok formatter.Token, level int, s string) string {
	switch tok {
	case formatter.TokenLabel:
		if level >= 0 && level < len(c.labels) {
			return c.labels[level].Render(s)
		}
	case formatter.TokenTimestamp:
		return c.timestamp.Render(s)
	}
	return s
}
