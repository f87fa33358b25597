package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// ErrValidation is matched by the error Load returns for invalid settings.
var ErrValidation = errors.New("invalid configuration")

// ValidationError represents a single validation failure.
type ValidationError struct {
	// Path is the dot-separated path to the invalid value.
	Path string

	// Message describes what's wrong.
	Message string

	// Value is the invalid value (may be nil).
	Value any
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// ValidationErrors collects the validation failures of a configuration.
type ValidationErrors struct {
	Errors []*ValidationError
}

// Error implements the error interface.
func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, err := range e.Errors {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d validation errors:\n  - %s", len(e.Errors), strings.Join(msgs, "\n  - "))
}

// Is matches ErrValidation.
func (e *ValidationErrors) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationErrors) add(path, message string, value any) {
	e.Errors = append(e.Errors, &ValidationError{Path: path, Message: message, Value: value})
}

type settingKind int

const (
	kindString settingKind = iota
	kindBool
	kindDuration
)

// settingRule describes the values a setting accepts.
type settingRule struct {
	kind     settingKind
	nonEmpty bool
	enum     []string
}

var settingRules = map[string]settingRule{
	SettingOutputDir:           {kind: kindString, nonEmpty: true},
	SettingOutputPlatformFiles: {kind: kindBool},
	SettingLoggingLevel:        {kind: kindString, enum: []string{"debug", "info", "warn", "warning", "error"}},
	SettingConvertFailFast:     {kind: kindBool},
	SettingOSXLocaleMap:        {kind: kindString},
	SettingOSXKeycodeMap:       {kind: kindString},
	SettingOSXPlatformVersion:  {kind: kindString, nonEmpty: true},
	SettingWinLocaleMap:        {kind: kindString},
	SettingWinKeycodeMap:       {kind: kindString},
	SettingWinPlatformVersion:  {kind: kindString, nonEmpty: true},
	SettingWatchDebounce:       {kind: kindDuration},
}

// Validate checks every known setting of the merged configuration.
func (c *Config) Validate() error {
	merged := c.Merged()

	c.mu.RLock()
	file := c.layers[LayerFile]
	c.mu.RUnlock()

	errs := &ValidationErrors{}
	// Unknown settings are only reported for the file, where they are typos;
	// stray KBDCONV_ variables are ignored.
	for _, path := range leafPaths(file, "") {
		if _, ok := settingRules[path]; !ok {
			errs.add(path, "unknown setting", nil)
		}
	}

	paths := make([]string, 0, len(settingRules))
	for path := range settingRules {
		paths = append(paths, path)
	}
	slices.Sort(paths)
	for _, path := range paths {
		if v, ok := getPath(merged, path); ok {
			validateValue(path, v, settingRules[path], errs)
		}
	}

	if len(errs.Errors) > 0 {
		return errs
	}
	return nil
}

func validateValue(path string, v any, rule settingRule, errs *ValidationErrors) {
	switch rule.kind {
	case kindBool:
		if _, ok := v.(bool); !ok {
			errs.add(path, fmt.Sprintf("expected bool, got %s", typeName(v)), v)
		}
	case kindDuration:
		switch val := v.(type) {
		case time.Duration:
			if val < 0 {
				errs.add(path, "duration must not be negative", v)
			}
		case string:
			d, err := time.ParseDuration(val)
			if err != nil {
				errs.add(path, fmt.Sprintf("invalid duration %q", val), v)
			} else if d < 0 {
				errs.add(path, "duration must not be negative", v)
			}
		default:
			errs.add(path, fmt.Sprintf("expected duration, got %s", typeName(v)), v)
		}
	case kindString:
		s, ok := v.(string)
		if !ok {
			errs.add(path, fmt.Sprintf("expected string, got %s", typeName(v)), v)
			return
		}
		if rule.nonEmpty && strings.TrimSpace(s) == "" {
			errs.add(path, "must not be empty", v)
		}
		if len(rule.enum) > 0 && !slices.Contains(rule.enum, strings.ToLower(strings.TrimSpace(s))) {
			errs.add(path, fmt.Sprintf("must be one of %s", strings.Join(rule.enum, ", ")), v)
		}
	}
}

// leafPaths returns the sorted paths of the non-map values in m.
func leafPaths(m map[string]any, prefix string) []string {
	var paths []string
	for k, v := range m {
		path := k
		if prefix != "" {
			path = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			paths = append(paths, leafPaths(sub, path)...)
			continue
		}
		paths = append(paths, path)
	}
	slices.Sort(paths)
	return paths
}
