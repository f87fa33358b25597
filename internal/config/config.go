package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/cldrtools/keyboard/internal/config/loader"
)

// Layer names, lowest priority first.
const (
	LayerDefaults    = "defaults"
	LayerFile        = "file"
	LayerEnvironment = "environment"
	LayerFlags       = "flags"
)

var layerOrder = []string{LayerDefaults, LayerFile, LayerEnvironment, LayerFlags}

// Config provides layered access to the kbdconv settings.
// It is safe for concurrent use.
type Config struct {
	mu sync.RWMutex

	layers map[string]map[string]any

	fs        loader.FileSystem
	file      string
	envPrefix string
	useEnv    bool
}

// Option configures a Config instance.
type Option func(*Config)

// WithFile sets the configuration file. Its extension selects the format.
func WithFile(path string) Option {
	return func(c *Config) {
		c.file = path
	}
}

// WithFileSystem sets the file system the configuration file is read from.
func WithFileSystem(fsys loader.FileSystem) Option {
	return func(c *Config) {
		c.fs = fsys
	}
}

// WithEnvPrefix sets the prefix of the environment variables read.
func WithEnvPrefix(prefix string) Option {
	return func(c *Config) {
		c.envPrefix = prefix
	}
}

// WithEnvironment enables or disables the environment layer.
func WithEnvironment(enable bool) Option {
	return func(c *Config) {
		c.useEnv = enable
	}
}

// New creates a new Config with the built-in defaults loaded.
func New(opts ...Option) *Config {
	c := &Config{
		layers:    map[string]map[string]any{LayerDefaults: defaultConfig()},
		fs:        loader.DefaultFS(),
		envPrefix: loader.DefaultEnvPrefix,
		useEnv:    true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load reads the configuration file and the environment, then validates
// the result. Flag overrides made with Set before Load are kept.
func (c *Config) Load(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var fileData map[string]any
	if c.file != "" {
		if _, err := c.fs.Stat(c.file); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("%w: %s", ErrFileNotFound, c.file)
			}
			return fmt.Errorf("reading config file %s: %w", c.file, err)
		}
		l, err := loader.ForPath(c.fs, c.file)
		if err != nil {
			return err
		}
		if fileData, err = l.Load(); err != nil {
			return err
		}
	}

	var envData map[string]any
	if c.useEnv {
		var err error
		if envData, err = loader.NewEnvLoader(c.envPrefix).Load(); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.layers[LayerFile] = fileData
	c.layers[LayerEnvironment] = envData
	c.mu.Unlock()

	return c.Validate()
}

// File returns the configuration file path, or "" if none is used.
func (c *Config) File() string {
	return c.file
}

// Set overrides the value at path in the flags layer.
func (c *Config) Set(path string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	flags := c.layers[LayerFlags]
	if flags == nil {
		flags = make(map[string]any)
		c.layers[LayerFlags] = flags
	}
	return setPath(flags, path, value)
}

// Get returns the value at the given path from the merged configuration.
func (c *Config) Get(path string) (any, bool) {
	return getPath(c.Merged(), path)
}

// WhichLayer returns the name of the highest layer defining path.
func (c *Config) WhichLayer(path string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := len(layerOrder) - 1; i >= 0; i-- {
		if _, ok := getPath(c.layers[layerOrder[i]], path); ok {
			return layerOrder[i], true
		}
	}
	return "", false
}

// Merged returns the fully merged configuration.
func (c *Config) Merged() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var merged map[string]any
	for _, name := range layerOrder {
		merged = loader.DeepMerge(merged, loader.Clone(c.layers[name]))
	}
	return merged
}

// GetString returns a string value at the given path.
func (c *Config) GetString(path string) (string, error) {
	v, ok := c.Get(path)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrSettingNotFound, path)
	}
	s, ok := v.(string)
	if !ok {
		return "", &TypeError{Path: path, Expected: "string", Actual: typeName(v)}
	}
	return s, nil
}

// GetInt returns an integer value at the given path.
func (c *Config) GetInt(path string) (int, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrSettingNotFound, path)
	}
	switch val := v.(type) {
	case int:
		return val, nil
	case int64:
		return int(val), nil
	case float64:
		if val == float64(int(val)) {
			return int(val), nil
		}
	}
	return 0, &TypeError{Path: path, Expected: "int", Actual: typeName(v)}
}

// GetBool returns a boolean value at the given path.
func (c *Config) GetBool(path string) (bool, error) {
	v, ok := c.Get(path)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrSettingNotFound, path)
	}
	b, ok := v.(bool)
	if !ok {
		return false, &TypeError{Path: path, Expected: "bool", Actual: typeName(v)}
	}
	return b, nil
}

// GetDuration returns a duration at the given path. Strings are parsed
// with time.ParseDuration.
func (c *Config) GetDuration(path string) (time.Duration, error) {
	v, ok := c.Get(path)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrSettingNotFound, path)
	}
	switch val := v.(type) {
	case time.Duration:
		return val, nil
	case string:
		d, err := time.ParseDuration(val)
		if err != nil {
			return 0, &TypeError{Path: path, Expected: "duration", Actual: fmt.Sprintf("string %q", val)}
		}
		return d, nil
	default:
		return 0, &TypeError{Path: path, Expected: "duration", Actual: typeName(v)}
	}
}

// getPath retrieves a value from a nested map using a dot-separated path.
func getPath(m map[string]any, path string) (any, bool) {
	parts := splitPath(path)
	if len(parts) == 0 || m == nil {
		return nil, false
	}

	current := any(m)
	for _, part := range parts {
		cm, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		if current, ok = cm[part]; !ok {
			return nil, false
		}
	}
	return current, true
}

// setPath sets a value in a nested map using a dot-separated path.
func setPath(m map[string]any, path string, value any) error {
	parts := splitPath(path)
	if len(parts) == 0 {
		return fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}

	current := m
	for _, part := range parts[:len(parts)-1] {
		next, ok := current[part]
		if !ok {
			next = make(map[string]any)
			current[part] = next
		}
		nextMap, ok := next.(map[string]any)
		if !ok {
			return fmt.Errorf("%w: %s is not a section", ErrInvalidPath, part)
		}
		current = nextMap
	}

	current[parts[len(parts)-1]] = value
	return nil
}

// splitPath splits a dot-separated path into parts, ignoring empty parts.
func splitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool { return r == '.' })
}

// typeName returns the type name for error messages.
func typeName(v any) string {
	if v == nil {
		return "nil"
	}
	switch v.(type) {
	case string:
		return "string"
	case int, int64:
		return "int"
	case float64:
		return "float64"
	case bool:
		return "bool"
	case time.Duration:
		return "duration"
	case []any:
		return "[]any"
	case map[string]any:
		return "map"
	default:
		return fmt.Sprintf("%T", v)
	}
}
