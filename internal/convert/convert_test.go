package convert

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cldrtools/keyboard/internal/config"
	"github.com/cldrtools/keyboard/internal/keyboard"
)

const usLayout = `<?xml version="1.1" encoding="UTF-8"?>
<keyboard group="0" id="0" name="U.S." maxout="1">
  <layouts>
    <layout first="0" last="17" modifiers="mods" mapSet="ansi"/>
  </layouts>
  <modifierMap id="mods" defaultIndex="0">
    <keyMapSelect mapIndex="0">
      <modifier keys="command?"/>
    </keyMapSelect>
    <keyMapSelect mapIndex="1">
      <modifier keys="anyShift caps? command?"/>
    </keyMapSelect>
  </modifierMap>
  <keyMapSet id="ansi">
    <keyMap index="0">
      <key code="0" output="a"/>
      <key code="1" output="s"/>
    </keyMap>
    <keyMap index="1">
      <key code="0" output="A"/>
      <key code="1" output="S"/>
    </keyMap>
  </keyMapSet>
</keyboard>
`

const testKLC = `KBD	kbdconv	"Conversion Test"

SHIFTSTATE

0
1

LAYOUT

10	Q	1	q	Q
1e	A	1	a	A

DESCRIPTIONS

0409	Conversion Test

ENDKBD
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// newTestConverter returns a converter writing below a temporary
// directory. The Windows locale table maps "Conversion Test" to fr-FR.
func newTestConverter(t *testing.T, settings map[string]any) (*Converter, string) {
	t.Helper()
	tmp := t.TempDir()
	out := filepath.Join(tmp, "out")
	locales := writeFile(t, tmp, "locales.csv", "name,locale,attributes\nConversion Test,fr-FR,test\n")

	cfg := config.New(config.WithEnvironment(false))
	_ = cfg.Set(config.SettingOutputDir, out)
	_ = cfg.Set(config.SettingWinLocaleMap, locales)
	for k, v := range settings {
		if err := cfg.Set(k, v); err != nil {
			t.Fatalf("Set(%q) error = %v", k, err)
		}
	}
	conv, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New error = %v", err)
	}
	return conv, tmp
}

func TestConvertFile(t *testing.T) {
	conv, tmp := newTestConverter(t, nil)
	src := writeFile(t, tmp, "src/US.keylayout", usLayout)

	res, err := conv.ConvertFile(context.Background(), src)
	if err != nil {
		t.Fatalf("ConvertFile error = %v", err)
	}
	if res.Platform != keyboard.PlatformOSX {
		t.Errorf("Platform = %v, want osx", res.Platform)
	}
	if len(res.Keyboards) != 1 || res.Keyboards[0].String() != "en-US-t-k0-osx" {
		t.Fatalf("Keyboards = %v, want [en-US-t-k0-osx]", res.Keyboards)
	}
	want := filepath.Join(conv.OutputDir(), "osx", "en-US-t-k0-osx.xml")
	if len(res.Files) != 1 || res.Files[0] != want {
		t.Fatalf("Files = %v, want [%s]", res.Files, want)
	}

	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	got := string(data)
	for _, s := range []string{
		`<keyboard locale="en-US-t-k0-osx">`,
		`<version platform="10.9" number="$Revision$"/>`,
		`<name value="U.S."/>`,
		`<keyMap modifiers="cmd?">`,
		`<map iso="C01" to="a"/>`,
		`<map iso="C02" to="S"/>`,
	} {
		if !strings.Contains(got, s) {
			t.Errorf("output missing %s:\n%s", s, got)
		}
	}
}

func TestConvertFileWindowsTables(t *testing.T) {
	conv, tmp := newTestConverter(t, map[string]any{config.SettingWinPlatformVersion: "6.1"})
	src := writeFile(t, tmp, "test.klc", testKLC)

	res, err := conv.ConvertFile(context.Background(), src)
	if err != nil {
		t.Fatalf("ConvertFile error = %v", err)
	}
	if len(res.Keyboards) != 1 || res.Keyboards[0].String() != "fr-FR-t-k0-windows-test" {
		t.Fatalf("Keyboards = %v, want [fr-FR-t-k0-windows-test]", res.Keyboards)
	}
	data, err := os.ReadFile(res.Files[0])
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	if !strings.Contains(string(data), `<version platform="6.1"`) {
		t.Errorf("output does not carry the configured platform version:\n%s", data)
	}
}

func TestConvertFileErrors(t *testing.T) {
	conv, tmp := newTestConverter(t, nil)
	ctx := context.Background()

	if _, err := conv.ConvertFile(ctx, writeFile(t, tmp, "notes.txt", "x")); !errors.Is(err, ErrUnsupportedSource) {
		t.Errorf("ConvertFile(.txt) error = %v, want ErrUnsupportedSource", err)
	}

	bad := writeFile(t, tmp, "bad.keylayout", strings.Replace(usLayout, `name="U.S."`, `name="Nowhere"`, 1))
	_, err := conv.ConvertFile(ctx, bad)
	var pe *keyboard.ParseError
	if !errors.As(err, &pe) || !errors.Is(err, keyboard.ErrUnknownKeyboard) {
		t.Errorf("ConvertFile(unknown layout) error = %v, want *keyboard.ParseError wrapping ErrUnknownKeyboard", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := conv.ConvertFile(cancelled, bad); !errors.Is(err, context.Canceled) {
		t.Errorf("ConvertFile(cancelled) error = %v, want context.Canceled", err)
	}
}

func TestConvertAll(t *testing.T) {
	conv, tmp := newTestConverter(t, nil)
	src := filepath.Join(tmp, "layouts")
	writeFile(t, src, "osx/US.keylayout", usLayout)
	writeFile(t, src, "windows/test.klc", testKLC)
	writeFile(t, src, "windows/bad.klc", strings.Replace(testKLC, "Conversion Test\n\nENDKBD", "Unknown\n\nENDKBD", 1))
	writeFile(t, src, "README.md", "ignored")

	results, err := conv.ConvertAll(context.Background(), []string{src})
	if len(results) != 2 {
		t.Errorf("len(results) = %d, want 2", len(results))
	}
	if !errors.Is(err, keyboard.ErrUnknownKeyboard) {
		t.Errorf("ConvertAll error = %v, want the failure of bad.klc", err)
	}
}

func TestConvertAllFailFast(t *testing.T) {
	conv, tmp := newTestConverter(t, map[string]any{config.SettingConvertFailFast: true})
	bad := writeFile(t, tmp, "a.keylayout", strings.Replace(usLayout, `name="U.S."`, `name="Nowhere"`, 1))
	good := writeFile(t, tmp, "b.keylayout", usLayout)

	results, err := conv.ConvertAll(context.Background(), []string{bad, good})
	if err == nil {
		t.Fatal("ConvertAll error = nil, want failure")
	}
	if len(results) != 0 {
		t.Errorf("len(results) = %d, want 0 after fail-fast", len(results))
	}
}

func TestConvertAllMissingPath(t *testing.T) {
	conv, tmp := newTestConverter(t, nil)
	if _, err := conv.ConvertAll(context.Background(), []string{filepath.Join(tmp, "missing")}); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("ConvertAll(missing) error = %v, want os.ErrNotExist", err)
	}
}

func TestWritePlatformFiles(t *testing.T) {
	conv, _ := newTestConverter(t, nil)

	written, err := conv.WritePlatformFiles()
	if err != nil {
		t.Fatalf("WritePlatformFiles error = %v", err)
	}
	want := []string{
		filepath.Join(conv.OutputDir(), "osx", PlatformFileName),
		filepath.Join(conv.OutputDir(), "windows", PlatformFileName),
	}
	if len(written) != len(want) {
		t.Fatalf("written = %v, want %v", written, want)
	}
	for i := range want {
		if written[i] != want[i] {
			t.Errorf("written[%d] = %s, want %s", i, written[i], want[i])
		}
	}

	data, err := os.ReadFile(want[0])
	if err != nil {
		t.Fatalf("reading platform file: %v", err)
	}
	if !strings.Contains(string(data), `<platform id="osx">`) || !strings.Contains(string(data), `<map keycode="0" iso="C01"/>`) {
		t.Errorf("unexpected platform file:\n%s", data)
	}
}

func TestNewTableErrors(t *testing.T) {
	cfg := config.New(config.WithEnvironment(false))
	_ = cfg.Set(config.SettingOSXKeycodeMap, filepath.Join(t.TempDir(), "missing.csv"))
	if _, err := New(cfg, nil); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("New(missing keycode table) error = %v, want os.ErrNotExist", err)
	}

	bad := writeFile(t, t.TempDir(), "keycodes.csv", "wrong,header\n")
	cfg = config.New(config.WithEnvironment(false))
	_ = cfg.Set(config.SettingWinKeycodeMap, bad)
	if _, err := New(cfg, nil); !errors.Is(err, keyboard.ErrInvalidResource) {
		t.Errorf("New(bad keycode table) error = %v, want ErrInvalidResource", err)
	}
}

func TestRunID(t *testing.T) {
	a, _ := newTestConverter(t, nil)
	b, _ := newTestConverter(t, nil)
	if a.RunID() == "" || a.RunID() == b.RunID() {
		t.Errorf("RunID = %q and %q, want distinct non-empty ids", a.RunID(), b.RunID())
	}
}

func TestSupported(t *testing.T) {
	conv, _ := newTestConverter(t, nil)
	tests := []struct {
		path string
		want bool
	}{
		{"US.keylayout", true},
		{"kbdfr.KLC", true},
		{"layout.xml", false},
		{"keylayout", false},
	}
	for _, tt := range tests {
		if got := conv.Supported(tt.path); got != tt.want {
			t.Errorf("Supported(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
