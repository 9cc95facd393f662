// Package formatter renders log entries into bytes: a bracketed prefix with
// label, timestamp and logger name, followed by the entry arguments.
package formatter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lixenwraith/logtree/sanitizer"
)

// Level values, kept numerically equal to logtree levels
const (
	LevelTrace = iota
	LevelDebug
	LevelInformation
	LevelWarning
	LevelError
	LevelCritical
	LevelNone
)

// ErrUnknownLevel is returned when a label is requested for a level outside Trace..Critical.
var ErrUnknownLevel = errors.New("formatter: unknown log level")

var levelNames = [...]string{"trace", "debug", "information", "warning", "error", "critical", "none"}

// LevelName returns the lowercase name of a level, including "none".
func LevelName(level int) (string, error) {
	if level < LevelTrace || level > LevelNone {
		return "", fmt.Errorf("%w: %d", ErrUnknownLevel, level)
	}
	return levelNames[level], nil
}

// Entry is the formatter's view of a log record
type Entry struct {
	Level int
	Name  string // empty when the logger is unnamed
	Time  time.Time
	Args  []any
}

// Token identifies a colorable part of the prefix
type Token int

const (
	TokenBracket Token = iota
	TokenNameBracket
	TokenLabel
	TokenHyphen
	TokenTimestamp
	TokenName
)

// Colorizer decorates prefix tokens, typically with terminal colors
type Colorizer interface {
	Colorize(tok Token, level int, s string) string
}

// Labels holds the display label of each writable level
type Labels struct {
	Trace       string
	Debug       string
	Information string
	Warning     string
	Error       string
	Critical    string
}

// DefaultLabels returns the standard short labels
func DefaultLabels() Labels {
	return Labels{
		Trace:       "Trace",
		Debug:       "Debug",
		Information: "Info",
		Warning:     "Warn",
		Error:       "Error",
		Critical:    "Critical",
	}
}

// Label returns the label for a level or ErrUnknownLevel
func (l Labels) Label(level int) (string, error) {
	switch level {
	case LevelTrace:
		return l.Trace, nil
	case LevelDebug:
		return l.Debug, nil
	case LevelInformation:
		return l.Information, nil
	case LevelWarning:
		return l.Warning, nil
	case LevelError:
		return l.Error, nil
	case LevelCritical:
		return l.Critical, nil
	}
	return "", fmt.Errorf("%w: %d", ErrUnknownLevel, level)
}

// alignWidth is the widest label, critical excluded
func (l Labels) alignWidth() int {
	width := 0
	for _, s := range []string{l.Trace, l.Debug, l.Information, l.Warning, l.Error} {
		if n := utf8.RuneCountInString(s); n > width {
			width = n
		}
	}
	return width
}

// Options controls prefix composition and output format
type Options struct {
	Format                string // "txt", "json" or "raw"
	IncludeLabels         bool
	IncludeLoggerNames    bool
	IncludeLabelAlignment bool
	IncludeDates          bool
	IncludeTimes          bool
	IncludeTimeMillis     bool
	IncludeTimeZone       bool
	Labels                Labels
	EOL                   string
	Location              *time.Location // nil means time.Local
}

// DefaultOptions returns the prefix defaults: labels, names, alignment, times with millis.
func DefaultOptions() Options {
	return Options{
		Format:                "txt",
		IncludeLabels:         true,
		IncludeLoggerNames:    true,
		IncludeLabelAlignment: true,
		IncludeTimes:          true,
		IncludeTimeMillis:     true,
		Labels:                DefaultLabels(),
		EOL:                   "\n",
	}
}

// Formatter renders entries into a reused buffer. Not safe for concurrent use.
type Formatter struct {
	opts       Options
	colors     Colorizer
	sanitizer  *sanitizer.Sanitizer
	labelWidth int
	buf        []byte
}

// New creates a formatter. colors may be nil for plain output; san may be nil for passthrough.
func New(opts Options, colors Colorizer, san *sanitizer.Sanitizer) *Formatter {
	if san == nil {
		san = sanitizer.New()
	}
	if opts.Format == "" {
		opts.Format = "txt"
	}
	return &Formatter{
		opts:       opts,
		colors:     colors,
		sanitizer:  san,
		labelWidth: opts.Labels.alignWidth(),
		buf:        make([]byte, 0, 1024),
	}
}

// Options returns the options the formatter was built with
func (f *Formatter) Options() Options {
	return f.opts
}

func (f *Formatter) colorize(tok Token, level int, s string) string {
	if f.colors == nil || s == "" {
		return s
	}
	return f.colors.Colorize(tok, level, s)
}

// Prefix returns "[Label - time] [name] " according to the options.
func (f *Formatter) Prefix(e Entry) (string, error) {
	label, err := f.opts.Labels.Label(e.Level)
	if err != nil {
		return "", err
	}

	var parts []string
	if f.opts.IncludeLabels && label != "" {
		width := 0
		if f.opts.IncludeLabelAlignment {
			width = f.labelWidth
		}
		if pad := width - utf8.RuneCountInString(label); pad > 0 {
			label += strings.Repeat(" ", pad)
		}
		parts = append(parts, f.colorize(TokenLabel, e.Level, label))
	}

	if ts := f.timestamp(e.Time); ts != "" {
		parts = append(parts, f.colorize(TokenTimestamp, e.Level, ts))
	}

	var sb strings.Builder
	sb.WriteString(f.colorize(TokenBracket, e.Level, "["))
	sb.WriteString(strings.Join(parts, f.colorize(TokenHyphen, e.Level, " - ")))
	sb.WriteString(f.colorize(TokenBracket, e.Level, "]"))

	if f.opts.IncludeLoggerNames && e.Name != "" {
		sb.WriteByte(' ')
		sb.WriteString(f.colorize(TokenNameBracket, e.Level, "["))
		sb.WriteString(f.colorize(TokenName, e.Level, e.Name))
		sb.WriteString(f.colorize(TokenNameBracket, e.Level, "]"))
	}
	sb.WriteByte(' ')

	return sb.String(), nil
}

func (f *Formatter) timestamp(t time.Time) string {
	loc := f.opts.Location
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)

	var parts []string
	if f.opts.IncludeDates {
		parts = append(parts, t.Format("2006-01-02"))
	}
	if f.opts.IncludeTimes {
		layout := "15:04:05"
		if f.opts.IncludeTimeMillis {
			layout += ".000"
		}
		parts = append(parts, t.Format(layout))
		if f.opts.IncludeTimeZone {
			parts = append(parts, t.Format("-07:00"))
		}
	}
	return strings.Join(parts, " ")
}

// Format renders a complete line including the end-of-line sequence. The returned
// slice is only valid until the next call.
func (f *Formatter) Format(e Entry) ([]byte, error) {
	f.buf = f.buf[:0]

	switch f.opts.Format {
	case "json":
		if _, err := f.opts.Labels.Label(e.Level); err != nil {
			return nil, err
		}
		f.formatJSON(e)

	case "raw":
		if _, err := f.opts.Labels.Label(e.Level); err != nil {
			return nil, err
		}
		f.appendArgs(sanitizer.NewSerializer("txt", f.sanitizer), e.Args)

	default:
		prefix, err := f.Prefix(e)
		if err != nil {
			return nil, err
		}
		f.buf = append(f.buf, prefix...)
		f.appendArgs(sanitizer.NewSerializer("txt", f.sanitizer), e.Args)
	}

	f.buf = append(f.buf, f.opts.EOL...)
	return f.buf, nil
}

// FormatArgs renders arguments space separated without prefix or EOL
func (f *Formatter) FormatArgs(args ...any) []byte {
	f.buf = f.buf[:0]
	f.appendArgs(sanitizer.NewSerializer("txt", f.sanitizer), args)
	return f.buf
}

func (f *Formatter) appendArgs(serializer *sanitizer.Serializer, args []any) {
	for i, arg := range args {
		if i > 0 {
			f.buf = append(f.buf, ' ')
		}
		convertValue(&f.buf, arg, serializer)
	}
}

func (f *Formatter) formatJSON(e Entry) {
	serializer := sanitizer.NewSerializer("json", f.sanitizer)

	f.buf = append(f.buf, `{"time":"`...)
	f.buf = e.Time.AppendFormat(f.buf, time.RFC3339Nano)
	f.buf = append(f.buf, `","level":"`...)
	f.buf = append(f.buf, levelNames[e.Level]...)
	f.buf = append(f.buf, '"')

	if e.Name != "" {
		f.buf = append(f.buf, `,"logger":`...)
		serializer.WriteString(&f.buf, e.Name)
	}

	if len(e.Args) > 0 {
		f.buf = append(f.buf, `,"fields":[`...)
		for i, arg := range e.Args {
			if i > 0 {
				f.buf = append(f.buf, ',')
			}
			convertValue(&f.buf, arg, serializer)
		}
		f.buf = append(f.buf, ']')
	}
	f.buf = append(f.buf, '}')
}

func convertValue(buf *[]byte, v any, serializer *sanitizer.Serializer) {
	switch val := v.(type) {
	case string:
		serializer.WriteString(buf, val)

	case []byte:
		serializer.WriteString(buf, string(val))

	case int:
		serializer.WriteNumber(buf, strconv.FormatInt(int64(val), 10))

	case int32:
		serializer.WriteNumber(buf, strconv.FormatInt(int64(val), 10))

	case int64:
		serializer.WriteNumber(buf, strconv.FormatInt(val, 10))

	case uint:
		serializer.WriteNumber(buf, strconv.FormatUint(uint64(val), 10))

	case uint64:
		serializer.WriteNumber(buf, strconv.FormatUint(val, 10))

	case float32:
		serializer.WriteNumber(buf, strconv.FormatFloat(float64(val), 'f', -1, 32))

	case float64:
		serializer.WriteNumber(buf, strconv.FormatFloat(val, 'f', -1, 64))

	case bool:
		serializer.WriteBool(buf, val)

	case nil:
		serializer.WriteNil(buf)

	case time.Time:
		serializer.WriteString(buf, val.Format(time.RFC3339Nano))

	case time.Duration:
		serializer.WriteString(buf, val.String())

	case error:
		serializer.WriteString(buf, val.Error())

	case fmt.Stringer:
		serializer.WriteString(buf, val.String())

	default:
		serializer.WriteComplex(buf, val)
	}
}
