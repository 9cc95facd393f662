// FILE: lixenwraith/logtree/config.go
package logtree

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"runtime"
	"strings"
	"time"

	"github.com/lixenwraith/config"
	"github.com/lixenwraith/logtree/formatter"
	"github.com/lixenwraith/logtree/sanitizer"
	"github.com/pelletier/go-toml/v2"
)

// Config file sections
const (
	fileSection    = "file."
	consoleSection = "console."
)

// FileConfig holds all file transport configuration values
type FileConfig struct {
	// Basic settings
	Level        string `toml:"level"`
	FileName     string `toml:"file_name"`    // Path of the active log file
	Encoding     string `toml:"encoding"`     // utf8, utf16le, utf16be or latin1
	EOL          string `toml:"eol"`          // lf or crlf
	Format       string `toml:"format"`       // txt, json or raw
	Sanitization string `toml:"sanitization"` // sanitizer policy applied to string arguments

	// Rotation
	DisableRotation bool   `toml:"disable_rotation"`
	RotationDir     string `toml:"rotation_dir"`       // Archive directory, defaults to the log file's directory
	MaxFileSize     int64  `toml:"max_file_size"`      // Bytes at which the active file is archived, 0 disables
	MaxArchiveCount int64  `toml:"max_archive_count"`  // Archives kept, 0 for unlimited
	MaxArchiveAgeMs int64  `toml:"max_archive_age_ms"` // Archive expiry, 0 disables

	// Prefix
	IncludeLabels         bool `toml:"include_labels"`
	IncludeLoggerNames    bool `toml:"include_logger_names"`
	IncludeLabelAlignment bool `toml:"include_label_alignment"`
	IncludeDates          bool `toml:"include_dates"`
	IncludeTimes          bool `toml:"include_times"`
	IncludeTimeMillis     bool `toml:"include_time_millis"`
	IncludeTimeZone       bool `toml:"include_time_zone"`
	UTC                   bool `toml:"utc"`

	// Custom labels
	LabelTrace       string `toml:"label_trace"`
	LabelDebug       string `toml:"label_debug"`
	LabelInformation string `toml:"label_information"`
	LabelWarning     string `toml:"label_warning"`
	LabelError       string `toml:"label_error"`
	LabelCritical    string `toml:"label_critical"`

	// Internal error handling
	InternalErrorsToStderr bool `toml:"internal_errors_to_stderr"`
}

// ConsoleConfig holds all console transport configuration values
type ConsoleConfig struct {
	Level        string `toml:"level"`
	Destination  string `toml:"destination"` // split, stdout or stderr
	Colors       bool   `toml:"colors"`      // colored prefixes when writing to a terminal
	Format       string `toml:"format"`
	Sanitization string `toml:"sanitization"`

	// Prefix
	IncludeLabels         bool `toml:"include_labels"`
	IncludeLoggerNames    bool `toml:"include_logger_names"`
	IncludeLabelAlignment bool `toml:"include_label_alignment"`
	IncludeDates          bool `toml:"include_dates"`
	IncludeTimes          bool `toml:"include_times"`
	IncludeTimeMillis     bool `toml:"include_time_millis"`
	IncludeTimeZone       bool `toml:"include_time_zone"`
	UTC                   bool `toml:"utc"`

	// Custom labels
	LabelTrace       string `toml:"label_trace"`
	LabelDebug       string `toml:"label_debug"`
	LabelInformation string `toml:"label_information"`
	LabelWarning     string `toml:"label_warning"`
	LabelError       string `toml:"label_error"`
	LabelCritical    string `toml:"label_critical"`
}

// defaultFileConfig is the single source for file transport defaults
var defaultFileConfig = FileConfig{
	Level:        "information",
	FileName:     defaultFileName,
	Encoding:     EncodingUTF8,
	EOL:          platformEOL(),
	Format:       FormatTxt,
	Sanitization: string(sanitizer.PolicyRaw),

	DisableRotation: false,
	RotationDir:     "",
	MaxFileSize:     defaultMaxFileSize,
	MaxArchiveCount: defaultMaxArchiveCount,
	MaxArchiveAgeMs: defaultMaxArchiveAge.Milliseconds(),

	IncludeLabels:         true,
	IncludeLoggerNames:    true,
	IncludeLabelAlignment: true,
	IncludeDates:          false,
	IncludeTimes:          true,
	IncludeTimeMillis:     true,
	IncludeTimeZone:       false,

	LabelTrace:       "Trace",
	LabelDebug:       "Debug",
	LabelInformation: "Info",
	LabelWarning:     "Warn",
	LabelError:       "Error",
	LabelCritical:    "Critical",

	InternalErrorsToStderr: false,
}

// defaultConsoleConfig is the single source for console transport defaults
var defaultConsoleConfig = ConsoleConfig{
	Level:        "information",
	Destination:  DestinationSplit,
	Colors:       true,
	Format:       FormatTxt,
	Sanitization: string(sanitizer.PolicyTxt),

	IncludeLabels:         true,
	IncludeLoggerNames:    true,
	IncludeLabelAlignment: true,
	IncludeTimes:          true,
	IncludeTimeMillis:     true,

	LabelTrace:       "Trace",
	LabelDebug:       "Debug",
	LabelInformation: "Info",
	LabelWarning:     "Warn",
	LabelError:       "Error",
	LabelCritical:    "Critical",
}

func platformEOL() string {
	if runtime.GOOS == "windows" {
		return EOLCRLF
	}
	return EOLLF
}

// DefaultFileConfig returns a copy of the default file configuration
func DefaultFileConfig() *FileConfig {
	copiedConfig := defaultFileConfig
	return &copiedConfig
}

// DefaultConsoleConfig returns a copy of the default console configuration
func DefaultConsoleConfig() *ConsoleConfig {
	copiedConfig := defaultConsoleConfig
	return &copiedConfig
}

// NewFileConfigFromFile loads the [file] section of a TOML file over the defaults
func NewFileConfigFromFile(path string) (*FileConfig, error) {
	cfg := DefaultFileConfig()
	if err := loadSection(path, fileSection, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewConsoleConfigFromFile loads the [console] section of a TOML file over the defaults
func NewConsoleConfigFromFile(path string) (*ConsoleConfig, error) {
	cfg := DefaultConsoleConfig()
	if err := loadSection(path, consoleSection, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewFileConfigFromDefaults creates a FileConfig with default values and applies overrides
func NewFileConfigFromDefaults(overrides map[string]any) (*FileConfig, error) {
	cfg := DefaultFileConfig()
	if err := applyOverrides(cfg, overrides); err != nil {
		return nil, fmtErrorf("failed to apply overrides: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveConfig writes the given sections as TOML. Nil sections are omitted.
func SaveConfig(path string, file *FileConfig, console *ConsoleConfig) error {
	doc := struct {
		File    *FileConfig    `toml:"file,omitempty"`
		Console *ConsoleConfig `toml:"console,omitempty"`
	}{File: file, Console: console}

	data, err := toml.Marshal(doc)
	if err != nil {
		return fmtErrorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmtErrorf("failed to write config %s: %w", path, err)
	}
	return nil
}

// loadSection uses lixenwraith/config as a loader and copies one section into cfg
func loadSection(path, prefix string, cfg any) error {
	loader := config.New()

	if err := loader.RegisterStruct(prefix, reflect.ValueOf(cfg).Elem().Interface()); err != nil {
		return fmtErrorf("failed to register config struct: %w", err)
	}

	// A missing file leaves the defaults in place
	if err := loader.Load(path, nil); err != nil && !errors.Is(err, config.ErrConfigNotFound) {
		return fmtErrorf("failed to load config from %s: %w", path, err)
	}

	if err := extractConfig(loader, prefix, cfg); err != nil {
		return fmtErrorf("failed to extract config values: %w", err)
	}
	return nil
}

// extractConfig copies values found under prefix into the toml-tagged fields of cfg
func extractConfig(loader *config.Config, prefix string, cfg any) error {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tomlTag := field.Tag.Get("toml")
		if tomlTag == "" {
			continue
		}

		val, found := loader.Get(prefix + tomlTag)
		if !found {
			continue
		}

		if err := setFieldValue(v.Field(i), val); err != nil {
			return fmt.Errorf("failed to set field %s: %w", field.Name, err)
		}
	}

	return nil
}

// fieldsByTag maps toml tags to settable field values
func fieldsByTag(cfg any) map[string]reflect.Value {
	v := reflect.ValueOf(cfg).Elem()
	t := v.Type()
	fields := make(map[string]reflect.Value, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		if tag := t.Field(i).Tag.Get("toml"); tag != "" {
			fields[tag] = v.Field(i)
		}
	}
	return fields
}

// applyOverrides applies a map of overrides to a config struct
func applyOverrides(cfg any, overrides map[string]any) error {
	fields := fieldsByTag(cfg)
	for key, value := range overrides {
		field, exists := fields[key]
		if !exists {
			return fmt.Errorf("unknown config key: %s", key)
		}
		if err := setFieldValue(field, value); err != nil {
			return fmt.Errorf("failed to set %s: %w", key, err)
		}
	}
	return nil
}

// setFieldValue sets a reflect.Value with proper type conversion
func setFieldValue(field reflect.Value, value any) error {
	switch field.Kind() {
	case reflect.String:
		switch v := value.(type) {
		case string:
			field.SetString(v)
		case Level:
			field.SetString(v.String())
		default:
			return fmt.Errorf("expected string, got %T", value)
		}

	case reflect.Int64:
		switch v := value.(type) {
		case int64:
			field.SetInt(v)
		case int:
			field.SetInt(int64(v))
		case time.Duration:
			field.SetInt(v.Milliseconds())
		default:
			return fmt.Errorf("expected int64, got %T", value)
		}

	case reflect.Bool:
		boolVal, ok := value.(bool)
		if !ok {
			return fmt.Errorf("expected bool, got %T", value)
		}
		field.SetBool(boolVal)

	default:
		return fmt.Errorf("unsupported field type: %v", field.Kind())
	}

	return nil
}

// Validate performs validation on the file configuration
func (c *FileConfig) Validate() error {
	if _, err := ParseLevel(c.Level); err != nil {
		return err
	}
	if strings.TrimSpace(c.FileName) == "" {
		return fmtErrorf("file_name cannot be empty")
	}
	if _, err := newEncoder(c.Encoding); err != nil {
		return err
	}
	if c.EOL != EOLLF && c.EOL != EOLCRLF {
		return fmtErrorf("invalid eol: '%s' (use lf or crlf)", c.EOL)
	}
	if err := validateFormat(c.Format, c.Sanitization); err != nil {
		return err
	}
	if c.MaxFileSize < 0 || c.MaxArchiveCount < 0 || c.MaxArchiveAgeMs < 0 {
		return fmtErrorf("rotation limits cannot be negative")
	}
	return nil
}

// Validate performs validation on the console configuration
func (c *ConsoleConfig) Validate() error {
	if _, err := ParseLevel(c.Level); err != nil {
		return err
	}
	switch c.Destination {
	case DestinationSplit, DestinationStdout, DestinationStderr:
	default:
		return fmtErrorf("invalid destination: '%s' (use split, stdout or stderr)", c.Destination)
	}
	return validateFormat(c.Format, c.Sanitization)
}

func validateFormat(format, policy string) error {
	if format != FormatTxt && format != FormatJSON && format != FormatRaw {
		return fmtErrorf("invalid format: '%s' (use txt, json, or raw)", format)
	}
	if !sanitizer.IsPolicy(policy) {
		return fmtErrorf("invalid sanitization policy: '%s'", policy)
	}
	return nil
}

// Clone creates a copy of the configuration
func (c *FileConfig) Clone() *FileConfig {
	copiedConfig := *c
	return &copiedConfig
}

// Clone creates a copy of the configuration
func (c *ConsoleConfig) Clone() *ConsoleConfig {
	copiedConfig := *c
	return &copiedConfig
}

// level returns the parsed level; callers validate first
func (c *FileConfig) level() Level {
	lvl, err := ParseLevel(c.Level)
	if err != nil {
		return DefaultTransportLevel
	}
	return lvl
}

func (c *ConsoleConfig) level() Level {
	lvl, err := ParseLevel(c.Level)
	if err != nil {
		return DefaultTransportLevel
	}
	return lvl
}

// rotationEnabled reports whether a size threshold is in effect
func (c *FileConfig) rotationEnabled() bool {
	return !c.DisableRotation && c.MaxFileSize > 0
}

func (c *FileConfig) eolString() string {
	if c.EOL == EOLCRLF {
		return "\r\n"
	}
	return "\n"
}

func (c *FileConfig) formatterOptions() formatter.Options {
	opts := formatter.Options{
		Format:                c.Format,
		IncludeLabels:         c.IncludeLabels,
		IncludeLoggerNames:    c.IncludeLoggerNames,
		IncludeLabelAlignment: c.IncludeLabelAlignment,
		IncludeDates:          c.IncludeDates,
		IncludeTimes:          c.IncludeTimes,
		IncludeTimeMillis:     c.IncludeTimeMillis,
		IncludeTimeZone:       c.IncludeTimeZone,
		Labels: formatter.Labels{
			Trace:       c.LabelTrace,
			Debug:       c.LabelDebug,
			Information: c.LabelInformation,
			Warning:     c.LabelWarning,
			Error:       c.LabelError,
			Critical:    c.LabelCritical,
		},
		EOL: c.eolString(),
	}
	if c.UTC {
		opts.Location = time.UTC
	}
	return opts
}

func (c *ConsoleConfig) formatterOptions() formatter.Options {
	opts := formatter.Options{
		Format:                c.Format,
		IncludeLabels:         c.IncludeLabels,
		IncludeLoggerNames:    c.IncludeLoggerNames,
		IncludeLabelAlignment: c.IncludeLabelAlignment,
		IncludeDates:          c.IncludeDates,
		IncludeTimes:          c.IncludeTimes,
		IncludeTimeMillis:     c.IncludeTimeMillis,
		IncludeTimeZone:       c.IncludeTimeZone,
		Labels: formatter.Labels{
			Trace:       c.LabelTrace,
			Debug:       c.LabelDebug,
			Information: c.LabelInformation,
			Warning:     c.LabelWarning,
			Error:       c.LabelError,
			Critical:    c.LabelCritical,
		},
		EOL: "\n",
	}
	if c.UTC {
		opts.Location = time.UTC
	}
	return opts
}
