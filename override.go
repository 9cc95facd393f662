// FILE: lixenwraith/logtree/override.go
package logtree

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// ApplyOverrides applies "key=value" overrides to a copy of the configuration
// and returns the validated copy. Keys are the toml field names.
//
// Example:
//
//	cfg, err := logtree.DefaultFileConfig().ApplyOverrides(
//	    "file_name=/var/log/app/app.log",
//	    "level=warning",
//	    "max_archive_count=5",
//	)
func (c *FileConfig) ApplyOverrides(overrides ...string) (*FileConfig, error) {
	cfg := c.Clone()
	if err := applyStringOverrides(cfg, overrides); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyOverrides applies "key=value" overrides to a copy of the configuration
// and returns the validated copy.
func (c *ConsoleConfig) ApplyOverrides(overrides ...string) (*ConsoleConfig, error) {
	cfg := c.Clone()
	if err := applyStringOverrides(cfg, overrides); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyStringOverrides(cfg any, overrides []string) error {
	fields := fieldsByTag(cfg)
	var errs []error

	for _, override := range overrides {
		key, value, err := parseKeyValue(override)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		field, ok := fields[key]
		if !ok {
			errs = append(errs, fmtErrorf("unknown config key '%s'", key))
			continue
		}

		if err := applyConfigField(field, key, value); err != nil {
			errs = append(errs, err)
		}
	}

	return combineConfigErrors(errs)
}

// combineConfigErrors combines multiple configuration errors into a single error.
func combineConfigErrors(errors []error) error {
	if len(errors) == 0 {
		return nil
	}
	if len(errors) == 1 {
		return errors[0]
	}

	var sb strings.Builder
	sb.WriteString(errPrefix + "multiple configuration errors:")
	for i, err := range errors {
		errMsg := strings.TrimPrefix(err.Error(), errPrefix)
		sb.WriteString(fmt.Sprintf("\n  %d. %s", i+1, errMsg))
	}
	return fmt.Errorf("%s", sb.String())
}

// applyConfigField parses value according to the field kind.
func applyConfigField(field reflect.Value, key, value string) error {
	switch field.Kind() {
	case reflect.String:
		if key == "level" {
			// Numeric levels are accepted alongside names
			if n, err := strconv.Atoi(value); err == nil {
				lvl := Level(n)
				if !lvl.Valid() {
					return fmtErrorf("invalid level value '%s'", value)
				}
				value = lvl.String()
			}
		}
		field.SetString(value)

	case reflect.Int64:
		intVal, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return fmtErrorf("invalid integer value for %s '%s': %w", key, value, err)
		}
		field.SetInt(intVal)

	case reflect.Bool:
		boolVal, err := strconv.ParseBool(value)
		if err != nil {
			return fmtErrorf("invalid boolean value for %s '%s': %w", key, value, err)
		}
		field.SetBool(boolVal)

	default:
		return fmtErrorf("unsupported field type for %s: %v", key, field.Kind())
	}
	return nil
}
