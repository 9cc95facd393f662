// FILE: lixenwraith/logtree/override_test.go
package logtree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyOverrides(t *testing.T) {
	base := DefaultFileConfig()

	cfg, err := base.ApplyOverrides(
		"file_name=/var/log/app.log",
		"level=warn",
		" max_archive_count = 5 ",
		"include_dates=true",
	)
	require.NoError(t, err)
	assert.Equal(t, "/var/log/app.log", cfg.FileName)
	assert.Equal(t, "warn", cfg.Level)
	assert.Equal(t, int64(5), cfg.MaxArchiveCount)
	assert.True(t, cfg.IncludeDates)

	assert.Equal(t, "console.log", base.FileName, "receiver is not modified")
}

func TestApplyOverridesNumericLevel(t *testing.T) {
	cfg, err := DefaultFileConfig().ApplyOverrides("level=4")
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Level)

	_, err = DefaultFileConfig().ApplyOverrides("level=12")
	assert.Error(t, err)
}

func TestApplyOverridesErrors(t *testing.T) {
	testCases := []struct {
		name     string
		override string
	}{
		{"missing equals", "level"},
		{"empty key", "=value"},
		{"unknown key", "colour=red"},
		{"bad integer", "max_file_size=big"},
		{"bad bool", "include_dates=maybe"},
		{"fails validation", "format=xml"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DefaultFileConfig().ApplyOverrides(tc.override)
			assert.Error(t, err)
		})
	}
}

func TestApplyOverridesCollectsErrors(t *testing.T) {
	_, err := DefaultFileConfig().ApplyOverrides("a=1", "b=2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple configuration errors")
	assert.Contains(t, err.Error(), "1. unknown config key 'a'")
	assert.Contains(t, err.Error(), "2. unknown config key 'b'")
}

func TestConsoleApplyOverrides(t *testing.T) {
	cfg, err := DefaultConsoleConfig().ApplyOverrides("destination=stdout", "colors=false")
	require.NoError(t, err)
	assert.Equal(t, DestinationStdout, cfg.Destination)
	assert.False(t, cfg.Colors)

	_, err = DefaultConsoleConfig().ApplyOverrides("destination=printer")
	assert.Error(t, err)
}
