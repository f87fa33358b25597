package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cldrtools/keyboard/internal/config/loader"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestNew_Defaults(t *testing.T) {
	c := New()

	tests := []struct {
		path string
		want any
	}{
		{SettingOutputDir, "ldml"},
		{SettingOutputPlatformFiles, false},
		{SettingLoggingLevel, "info"},
		{SettingConvertFailFast, false},
		{SettingOSXPlatformVersion, "10.9"},
		{SettingWinPlatformVersion, "10.0"},
		{SettingOSXLocaleMap, ""},
	}
	for _, tt := range tests {
		if got, ok := c.Get(tt.path); !ok || got != tt.want {
			t.Errorf("Get(%q) = %v, %v, want %v", tt.path, got, ok, tt.want)
		}
	}
	if d, err := c.GetDuration(SettingWatchDebounce); err != nil || d != 200*time.Millisecond {
		t.Errorf("GetDuration(%q) = %v, %v, want 200ms", SettingWatchDebounce, d, err)
	}
}

func TestConfig_LoadTOML(t *testing.T) {
	path := writeFile(t, "kbdconv.toml", `
[output]
dir = "out"

[windows]
keycodeMap = "scancodes.csv"
`)
	c := New(WithFile(path), WithEnvironment(false))
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got, _ := c.GetString(SettingOutputDir); got != "out" {
		t.Errorf("output.dir = %q, want 'out'", got)
	}
	if got, _ := c.GetString(SettingWinKeycodeMap); got != "scancodes.csv" {
		t.Errorf("windows.keycodeMap = %q, want 'scancodes.csv'", got)
	}
	// Untouched defaults survive the merge.
	if got, _ := c.GetString(SettingWinPlatformVersion); got != "10.0" {
		t.Errorf("windows.platformVersion = %q, want '10.0'", got)
	}
	if layer, _ := c.WhichLayer(SettingOutputDir); layer != LayerFile {
		t.Errorf("WhichLayer(output.dir) = %q, want %q", layer, LayerFile)
	}
}

func TestConfig_LoadYAML(t *testing.T) {
	path := writeFile(t, "kbdconv.yaml", "convert:\n  failFast: true\nwatch:\n  debounce: 1s\n")
	c := New(WithFile(path), WithEnvironment(false))
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got, err := c.GetBool(SettingConvertFailFast); err != nil || !got {
		t.Errorf("GetBool(convert.failFast) = %v, %v, want true", got, err)
	}
	if got, err := c.GetDuration(SettingWatchDebounce); err != nil || got != time.Second {
		t.Errorf("GetDuration(watch.debounce) = %v, %v, want 1s", got, err)
	}
}

func TestConfig_LoadErrors(t *testing.T) {
	ctx := context.Background()

	missing := filepath.Join(t.TempDir(), "missing.toml")
	if err := New(WithFile(missing)).Load(ctx); !errors.Is(err, ErrFileNotFound) {
		t.Errorf("Load(missing) error = %v, want ErrFileNotFound", err)
	}

	unsupported := writeFile(t, "kbdconv.ini", "dir=out\n")
	if err := New(WithFile(unsupported)).Load(ctx); !errors.Is(err, loader.ErrUnsupportedFormat) {
		t.Errorf("Load(ini) error = %v, want ErrUnsupportedFormat", err)
	}

	invalid := writeFile(t, "kbdconv.toml", "[output\n")
	var parseErr *loader.ParseError
	if err := New(WithFile(invalid)).Load(ctx); !errors.As(err, &parseErr) {
		t.Errorf("Load(invalid) error = %v, want *loader.ParseError", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if err := New().Load(cancelled); !errors.Is(err, context.Canceled) {
		t.Errorf("Load(cancelled) error = %v, want context.Canceled", err)
	}
}

func TestConfig_Precedence(t *testing.T) {
	path := writeFile(t, "kbdconv.toml", "[output]\ndir = \"from-file\"\n[logging]\nlevel = \"warn\"\n")
	t.Setenv("KBDCONV_OUTPUT_DIR", "from-env")

	c := New(WithFile(path))
	if err := c.Set(SettingLoggingLevel, "debug"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got, _ := c.GetString(SettingOutputDir); got != "from-env" {
		t.Errorf("output.dir = %q, want environment to override the file", got)
	}
	if got, _ := c.GetString(SettingLoggingLevel); got != "debug" {
		t.Errorf("logging.level = %q, want flags to override the file", got)
	}
	if layer, _ := c.WhichLayer(SettingLoggingLevel); layer != LayerFlags {
		t.Errorf("WhichLayer(logging.level) = %q, want %q", layer, LayerFlags)
	}
	if layer, _ := c.WhichLayer(SettingConvertFailFast); layer != LayerDefaults {
		t.Errorf("WhichLayer(convert.failFast) = %q, want %q", layer, LayerDefaults)
	}
}

func TestConfig_TypedGetters(t *testing.T) {
	c := New(WithEnvironment(false))
	_ = c.Set("test.count", int64(3))
	_ = c.Set("test.ratio", 2.5)
	_ = c.Set("test.bad", "soon")

	if got, err := c.GetInt("test.count"); err != nil || got != 3 {
		t.Errorf("GetInt(test.count) = %v, %v, want 3", got, err)
	}
	if _, err := c.GetInt("test.ratio"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("GetInt(test.ratio) error = %v, want ErrTypeMismatch", err)
	}
	if _, err := c.GetString("test.count"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("GetString(test.count) error = %v, want ErrTypeMismatch", err)
	}
	if _, err := c.GetBool(SettingOutputDir); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("GetBool(output.dir) error = %v, want ErrTypeMismatch", err)
	}
	if _, err := c.GetDuration("test.bad"); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("GetDuration(test.bad) error = %v, want ErrTypeMismatch", err)
	}
	if _, err := c.GetString("nope.missing"); !errors.Is(err, ErrSettingNotFound) {
		t.Errorf("GetString(missing) error = %v, want ErrSettingNotFound", err)
	}

	var typeErr *TypeError
	if _, err := c.GetString("test.count"); !errors.As(err, &typeErr) || typeErr.Actual != "int" {
		t.Errorf("GetString(test.count) error = %#v, want *TypeError with Actual int", err)
	}
}

func TestConfig_SetInvalidPath(t *testing.T) {
	c := New()
	if err := c.Set("", 1); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("Set(\"\") error = %v, want ErrInvalidPath", err)
	}
	_ = c.Set("flat", "value")
	if err := c.Set("flat.child", 1); !errors.Is(err, ErrInvalidPath) {
		t.Errorf("Set(flat.child) error = %v, want ErrInvalidPath", err)
	}
}

func TestConfig_MergedIsCopy(t *testing.T) {
	c := New()
	merged := c.Merged()
	merged["output"].(map[string]any)["dir"] = "changed"
	if got, _ := c.GetString(SettingOutputDir); got != "ldml" {
		t.Errorf("output.dir = %q after modifying Merged(), want 'ldml'", got)
	}
}

func TestGetPath(t *testing.T) {
	m := map[string]any{
		"output": map[string]any{"dir": "out"},
		"flat":   "value",
	}
	tests := []struct {
		path string
		want any
		ok   bool
	}{
		{"output.dir", "out", true},
		{"output", m["output"], true},
		{"flat", "value", true},
		{"flat.child", nil, false},
		{"output.missing", nil, false},
		{"", nil, false},
		{"..output..dir", "out", true},
	}
	for _, tt := range tests {
		got, ok := getPath(m, tt.path)
		if ok != tt.ok {
			t.Errorf("getPath(%q) ok = %v, want %v", tt.path, ok, tt.ok)
			continue
		}
		if s, isString := tt.want.(string); isString && got != s {
			t.Errorf("getPath(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		paths   []string
	}{
		{"valid", "[logging]\nlevel = \"WARN\"\n[watch]\ndebounce = \"1s\"\n", nil},
		{"unknown setting", "[output]\ndirectory = \"out\"\n", []string{"output.directory"}},
		{"bad level", "[logging]\nlevel = \"loud\"\n", []string{SettingLoggingLevel}},
		{"bad duration", "[watch]\ndebounce = \"soon\"\n", []string{SettingWatchDebounce}},
		{"wrong type", "[convert]\nfailFast = \"yes\"\n", []string{SettingConvertFailFast}},
		{"empty dir", "[output]\ndir = \"\"\n", []string{SettingOutputDir}},
		{
			"several",
			"[output]\ndir = 3\n[osx]\nplatformVersion = \" \"\n",
			[]string{SettingOSXPlatformVersion, SettingOutputDir},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "kbdconv.toml", tt.content)
			err := New(WithFile(path), WithEnvironment(false)).Load(context.Background())
			if len(tt.paths) == 0 {
				if err != nil {
					t.Fatalf("Load error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("Load error = %v, want ErrValidation", err)
			}
			var verrs *ValidationErrors
			if !errors.As(err, &verrs) || len(verrs.Errors) != len(tt.paths) {
				t.Fatalf("Load error = %v, want %d validation errors", err, len(tt.paths))
			}
			for i, p := range tt.paths {
				if verrs.Errors[i].Path != p {
					t.Errorf("Errors[%d].Path = %q, want %q", i, verrs.Errors[i].Path, p)
				}
			}
		})
	}
}

func TestConfig_ValidateIgnoresUnknownEnvironment(t *testing.T) {
	t.Setenv("KBDCONV_SOMETHING_ELSE", "1")
	if err := New().Load(context.Background()); err != nil {
		t.Errorf("Load error = %v, want unknown environment settings ignored", err)
	}
}
