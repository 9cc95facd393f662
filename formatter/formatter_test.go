// FILE: lixenwraith/logtree/formatter/formatter_test.go
package formatter

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/lixenwraith/logtree/sanitizer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tagColors wraps each token in a visible tag instead of ANSI codes
type tagColors struct{}

func (tagColors) Colorize(tok Token, level int, s string) string {
	return fmt.Sprintf("<%d:%s>", tok, s)
}

func testOptions() Options {
	opts := DefaultOptions()
	opts.Location = time.UTC
	return opts
}

func TestPrefix(t *testing.T) {
	timestamp := time.Date(2021, 12, 7, 15, 27, 9, 488_000_000, time.UTC)

	t.Run("defaults", func(t *testing.T) {
		f := New(testOptions(), nil, nil)
		prefix, err := f.Prefix(Entry{Level: LevelInformation, Name: "Test", Time: timestamp})
		require.NoError(t, err)
		assert.Equal(t, "[Info  - 15:27:09.488] [Test] ", prefix)
	})

	t.Run("unnamed logger omits name brackets", func(t *testing.T) {
		f := New(testOptions(), nil, nil)
		prefix, err := f.Prefix(Entry{Level: LevelWarning, Time: timestamp})
		require.NoError(t, err)
		assert.Equal(t, "[Warn  - 15:27:09.488] ", prefix)
	})

	t.Run("critical is not padded down", func(t *testing.T) {
		f := New(testOptions(), nil, nil)
		prefix, err := f.Prefix(Entry{Level: LevelCritical, Time: timestamp})
		require.NoError(t, err)
		assert.Equal(t, "[Critical - 15:27:09.488] ", prefix)
	})

	t.Run("dates and zone", func(t *testing.T) {
		opts := testOptions()
		opts.IncludeDates = true
		opts.IncludeTimeZone = true
		opts.IncludeLabelAlignment = false
		opts.Labels.Information = "CustomLabel"

		f := New(opts, nil, nil)
		prefix, err := f.Prefix(Entry{Level: LevelInformation, Name: "Test", Time: timestamp})
		require.NoError(t, err)
		assert.Equal(t, "[CustomLabel - 2021-12-07 15:27:09.488 +00:00] [Test] ", prefix)
	})

	t.Run("no labels no times", func(t *testing.T) {
		opts := testOptions()
		opts.IncludeLabels = false
		opts.IncludeTimes = false
		opts.IncludeLoggerNames = false

		f := New(opts, nil, nil)
		prefix, err := f.Prefix(Entry{Level: LevelDebug, Name: "x", Time: timestamp})
		require.NoError(t, err)
		assert.Equal(t, "[] ", prefix)
	})

	t.Run("colorizer sees every token", func(t *testing.T) {
		opts := testOptions()
		opts.IncludeLabelAlignment = false
		f := New(opts, tagColors{}, nil)
		prefix, err := f.Prefix(Entry{Level: LevelError, Name: "db", Time: timestamp})
		require.NoError(t, err)
		assert.Equal(t, "<0:[><2:Error><3: - ><4:15:27:09.488><0:]> <1:[><5:db><1:]> ", prefix)
	})

	t.Run("unknown level", func(t *testing.T) {
		f := New(testOptions(), nil, nil)
		_, err := f.Prefix(Entry{Level: LevelNone, Time: timestamp})
		assert.True(t, errors.Is(err, ErrUnknownLevel))

		_, err = f.Prefix(Entry{Level: 42, Time: timestamp})
		assert.True(t, errors.Is(err, ErrUnknownLevel))
	})
}

func TestFormat(t *testing.T) {
	timestamp := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	t.Run("txt format", func(t *testing.T) {
		f := New(testOptions(), nil, nil)
		data, err := f.Format(Entry{Level: LevelInformation, Time: timestamp, Args: []any{"Hello world!", 123, true, nil}})
		require.NoError(t, err)
		assert.Equal(t, "[Info  - 12:00:00.000] Hello world! 123 true <nil>\n", string(data))
	})

	t.Run("crlf", func(t *testing.T) {
		opts := testOptions()
		opts.EOL = "\r\n"
		f := New(opts, nil, nil)
		data, err := f.Format(Entry{Level: LevelDebug, Time: timestamp, Args: []any{"x"}})
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(string(data), "x\r\n"))
	})

	t.Run("raw format", func(t *testing.T) {
		opts := testOptions()
		opts.Format = "raw"
		f := New(opts, nil, nil)
		data, err := f.Format(Entry{Level: LevelDebug, Time: timestamp, Args: []any{"a", 1.5, errors.New("boom")}})
		require.NoError(t, err)
		assert.Equal(t, "a 1.5 boom\n", string(data))
	})

	t.Run("json format", func(t *testing.T) {
		opts := testOptions()
		opts.Format = "json"
		f := New(opts, nil, nil)

		data, err := f.Format(Entry{Level: LevelWarning, Name: "api", Time: timestamp, Args: []any{"warning", true, map[string]int{"n": 1}}})
		require.NoError(t, err)

		var result map[string]any
		require.NoError(t, json.Unmarshal(data[:len(data)-1], &result))

		assert.Equal(t, "warning", result["level"])
		assert.Equal(t, "api", result["logger"])
		assert.Equal(t, "2024-01-01T12:00:00Z", result["time"])
		fields := result["fields"].([]any)
		require.Len(t, fields, 3)
		assert.Equal(t, "warning", fields[0])
		assert.Equal(t, true, fields[1])
		assert.Equal(t, map[string]any{"n": float64(1)}, fields[2])
	})

	t.Run("txt sanitization", func(t *testing.T) {
		f := New(testOptions(), nil, sanitizer.New().Policy(sanitizer.PolicyLine))
		data, err := f.Format(Entry{Level: LevelInformation, Time: timestamp, Args: []any{"a\nb"}})
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(string(data), "a<0a>b\n"))
	})

	t.Run("unknown level is an error", func(t *testing.T) {
		f := New(testOptions(), nil, nil)
		_, err := f.Format(Entry{Level: 9, Time: timestamp})
		assert.ErrorIs(t, err, ErrUnknownLevel)
	})
}

func TestLevelName(t *testing.T) {
	name, err := LevelName(LevelInformation)
	require.NoError(t, err)
	assert.Equal(t, "information", name)

	name, err = LevelName(LevelNone)
	require.NoError(t, err)
	assert.Equal(t, "none", name)

	_, err = LevelName(-1)
	assert.ErrorIs(t, err, ErrUnknownLevel)
}

func TestFormatArgs(t *testing.T) {
	f := New(testOptions(), nil, nil)
	assert.Equal(t, "x 2 [1 2]", string(f.FormatArgs("x", 2, []int{1, 2})))
}
