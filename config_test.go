// FILE: lixenwraith/logtree/config_test.go
package logtree

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigs(t *testing.T) {
	file := DefaultFileConfig()
	assert.Equal(t, "information", file.Level)
	assert.Equal(t, "console.log", file.FileName)
	assert.Equal(t, EncodingUTF8, file.Encoding)
	assert.Equal(t, int64(16*1024*1024), file.MaxFileSize)
	assert.Equal(t, int64(10), file.MaxArchiveCount)
	assert.Equal(t, (31 * 24 * time.Hour).Milliseconds(), file.MaxArchiveAgeMs)
	assert.False(t, file.DisableRotation)
	assert.NoError(t, file.Validate())
	assert.Equal(t, DefaultTransportLevel, file.level())

	console := DefaultConsoleConfig()
	assert.Equal(t, DestinationSplit, console.Destination)
	assert.Equal(t, "txt", console.Sanitization)
	assert.NoError(t, console.Validate())

	// Copies are independent
	file.Level = "error"
	assert.Equal(t, "information", DefaultFileConfig().Level)
}

func TestFileConfigValidate(t *testing.T) {
	testCases := []struct {
		name   string
		modify func(*FileConfig)
	}{
		{"bad level", func(c *FileConfig) { c.Level = "loud" }},
		{"empty file name", func(c *FileConfig) { c.FileName = "  " }},
		{"bad encoding", func(c *FileConfig) { c.Encoding = "ebcdic" }},
		{"bad eol", func(c *FileConfig) { c.EOL = "cr" }},
		{"bad format", func(c *FileConfig) { c.Format = "xml" }},
		{"bad sanitization", func(c *FileConfig) { c.Sanitization = "strict" }},
		{"negative size", func(c *FileConfig) { c.MaxFileSize = -1 }},
		{"negative count", func(c *FileConfig) { c.MaxArchiveCount = -1 }},
		{"negative age", func(c *FileConfig) { c.MaxArchiveAgeMs = -1 }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultFileConfig()
			tc.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestRotationEnabled(t *testing.T) {
	cfg := DefaultFileConfig()
	assert.True(t, cfg.rotationEnabled())

	cfg.MaxFileSize = 0
	assert.False(t, cfg.rotationEnabled())

	cfg.MaxFileSize = 1
	cfg.DisableRotation = true
	assert.False(t, cfg.rotationEnabled())
}

func TestRetentionFromConfig(t *testing.T) {
	cfg := DefaultFileConfig()
	cfg.MaxArchiveCount = 3
	cfg.MaxArchiveAgeMs = 1500
	assert.Equal(t, RetentionPolicy{MaxArchiveCount: 3, MaxArchiveAge: 1500 * time.Millisecond}, cfg.retention())
}

func TestNewFileConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logtree.toml")
	content := `
[file]
level = "warning"
file_name = "/var/log/app/app.log"
max_archive_count = 3
include_dates = true
label_information = "INFO"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := NewFileConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "warning", cfg.Level)
	assert.Equal(t, "/var/log/app/app.log", cfg.FileName)
	assert.Equal(t, int64(3), cfg.MaxArchiveCount)
	assert.True(t, cfg.IncludeDates)
	assert.Equal(t, "INFO", cfg.LabelInformation)

	// Keys absent from the file keep their defaults
	assert.Equal(t, int64(defaultMaxFileSize), cfg.MaxFileSize)
	assert.Equal(t, EncodingUTF8, cfg.Encoding)
}

func TestNewConsoleConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logtree.toml")
	content := `
[console]
destination = "stderr"
colors = false
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := NewConsoleConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, DestinationStderr, cfg.Destination)
	assert.False(t, cfg.Colors)
	assert.Equal(t, "information", cfg.Level)
}

func TestConfigFromMissingFile(t *testing.T) {
	cfg, err := NewFileConfigFromFile(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultFileConfig(), cfg)
}

func TestConfigFromFileInvalidValue(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logtree.toml")
	require.NoError(t, os.WriteFile(path, []byte("[file]\nformat = \"xml\"\n"), 0644))

	_, err := NewFileConfigFromFile(path)
	assert.Error(t, err)
}

func TestNewFileConfigFromDefaults(t *testing.T) {
	cfg, err := NewFileConfigFromDefaults(map[string]any{
		"level":              LevelDebug,
		"max_file_size":      1024,
		"max_archive_age_ms": 2 * time.Hour,
		"disable_rotation":   true,
	})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Level)
	assert.Equal(t, int64(1024), cfg.MaxFileSize)
	assert.Equal(t, (2 * time.Hour).Milliseconds(), cfg.MaxArchiveAgeMs)
	assert.True(t, cfg.DisableRotation)

	_, err = NewFileConfigFromDefaults(map[string]any{"nope": 1})
	assert.Error(t, err)

	_, err = NewFileConfigFromDefaults(map[string]any{"max_file_size": "big"})
	assert.Error(t, err)
}

func TestSaveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "saved.toml")
	file := DefaultFileConfig()
	file.FileName = "/srv/app.log"
	file.MaxArchiveCount = 7

	require.NoError(t, SaveConfig(path, file, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, toml.Unmarshal(data, &doc))
	assert.Contains(t, doc, "file")
	assert.NotContains(t, doc, "console")

	loaded, err := NewFileConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, file, loaded)
}

func TestFormatterOptionsFromConfig(t *testing.T) {
	cfg := DefaultFileConfig()
	cfg.EOL = EOLCRLF
	cfg.UTC = true
	cfg.LabelWarning = "W"

	opts := cfg.formatterOptions()
	assert.Equal(t, "\r\n", opts.EOL)
	assert.Equal(t, time.UTC, opts.Location)
	assert.Equal(t, "W", opts.Labels.Warning)
	assert.True(t, opts.IncludeTimeMillis)
}
