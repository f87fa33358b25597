// Package convert turns platform layout sources into LDML keyboard files.
//
// A Converter detects the source kind from the file extension, parses the
// source with the matching platform parser and writes one LDML keyboard
// document per keyboard id under {output}/{platform}/{id}.xml.
//
// Example:
//
//	conv, err := convert.New(cfg, logger)
//	if err != nil {
//	    return err
//	}
//	results, err := conv.ConvertAll(ctx, []string{"layouts/"})
package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/cldrtools/keyboard/internal/config"
	"github.com/cldrtools/keyboard/internal/keyboard"
	"github.com/cldrtools/keyboard/internal/keyboard/ldml"
	"github.com/cldrtools/keyboard/internal/keyboard/osx"
	"github.com/cldrtools/keyboard/internal/keyboard/windows"
	"github.com/cldrtools/keyboard/internal/logging"
)

// Errors returned by the converter.
var (
	// ErrUnsupportedSource indicates a file whose extension no parser reads.
	ErrUnsupportedSource = errors.New("unsupported layout source")

	// ErrNoKeyboards indicates a source that produced no keyboards.
	ErrNoKeyboards = errors.New("no keyboards in source")
)

// PlatformFileName is the name of the platform document written next to
// the keyboards of each platform.
const PlatformFileName = "_platform.xml"

// Parser reads a layout source into keyboards.
type Parser interface {
	Parse(r io.Reader, source string) ([]*keyboard.Keyboard, error)
}

// Result describes one converted source file.
type Result struct {
	// Source is the path of the layout source.
	Source string
	// Platform is the platform the source belongs to.
	Platform keyboard.Platform
	// Keyboards are the ids of the keyboards written, in output order.
	Keyboards []keyboard.ID
	// Files are the paths written.
	Files []string
}

// source binds a file extension to its platform parser and keycode table.
type source struct {
	platform keyboard.Platform
	parser   Parser
	keycodes *keyboard.KeycodeMap
}

// Converter converts layout sources. A Converter is safe for sequential
// reuse across runs; ConvertFile may be called from the watcher goroutine.
type Converter struct {
	outDir   string
	failFast bool
	encoder  *ldml.Encoder
	sources  map[string]source
	logger   *logging.Logger
	runID    string
}

// New creates a converter from the settings in cfg. Locale and keycode
// tables named in cfg replace the tables embedded in the parsers.
func New(cfg *config.Config, logger *logging.Logger) (*Converter, error) {
	if logger == nil {
		logger = logging.NullLogger
	}
	outDir, err := cfg.GetString(config.SettingOutputDir)
	if err != nil {
		return nil, err
	}
	failFast, err := cfg.GetBool(config.SettingConvertFailFast)
	if err != nil {
		return nil, err
	}

	osxVersion, err := cfg.GetString(config.SettingOSXPlatformVersion)
	if err != nil {
		return nil, err
	}
	winVersion, err := cfg.GetString(config.SettingWinPlatformVersion)
	if err != nil {
		return nil, err
	}

	osxKeycodes, osxIDs, err := loadTables(cfg, keyboard.PlatformOSX,
		config.SettingOSXKeycodeMap, config.SettingOSXLocaleMap, osx.KeycodeMap, osx.KeyboardIDMap)
	if err != nil {
		return nil, err
	}
	winKeycodes, winIDs, err := loadTables(cfg, keyboard.PlatformWindows,
		config.SettingWinKeycodeMap, config.SettingWinLocaleMap, windows.KeycodeMap, windows.KeyboardIDMap)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	return &Converter{
		outDir:   outDir,
		failFast: failFast,
		encoder: ldml.NewEncoder(
			ldml.WithPlatformVersion(keyboard.PlatformOSX, osxVersion),
			ldml.WithPlatformVersion(keyboard.PlatformWindows, winVersion),
		),
		sources: map[string]source{
			".keylayout": {
				platform: keyboard.PlatformOSX,
				parser:   osx.NewParser(osx.WithKeycodeMap(osxKeycodes), osx.WithKeyboardIDMap(osxIDs)),
				keycodes: osxKeycodes,
			},
			".klc": {
				platform: keyboard.PlatformWindows,
				parser:   windows.NewParser(windows.WithKeycodeMap(winKeycodes), windows.WithKeyboardIDMap(winIDs)),
				keycodes: winKeycodes,
			},
		},
		logger: logger.WithComponent("convert").WithField("run", runID),
		runID:  runID,
	}, nil
}

// loadTables reads the keycode and locale tables named by the given
// settings, falling back to the embedded tables for empty settings.
func loadTables(cfg *config.Config, p keyboard.Platform, keycodeSetting, localeSetting string,
	keycodes *keyboard.KeycodeMap, ids *keyboard.KeyboardIDMap) (*keyboard.KeycodeMap, *keyboard.KeyboardIDMap, error) {
	if path, err := cfg.GetString(keycodeSetting); err != nil {
		return nil, nil, err
	} else if path != "" {
		if keycodes, err = readTable(path, keyboard.ReadKeycodeMap); err != nil {
			return nil, nil, err
		}
	}
	if path, err := cfg.GetString(localeSetting); err != nil {
		return nil, nil, err
	} else if path != "" {
		read := func(r io.Reader) (*keyboard.KeyboardIDMap, error) {
			return keyboard.ReadKeyboardIDMap(r, p)
		}
		if ids, err = readTable(path, read); err != nil {
			return nil, nil, err
		}
	}
	return keycodes, ids, nil
}

func readTable[T any](path string, read func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, fmt.Errorf("opening table: %w", err)
	}
	defer f.Close()

	v, err := read(f)
	if err != nil {
		return zero, fmt.Errorf("reading table %s: %w", path, err)
	}
	return v, nil
}

// RunID returns the id of this converter's run, as logged in the run field.
func (c *Converter) RunID() string {
	return c.runID
}

// OutputDir returns the root directory written to.
func (c *Converter) OutputDir() string {
	return c.outDir
}

// Supported returns true if path has an extension a parser reads.
func (c *Converter) Supported(path string) bool {
	_, ok := c.sources[strings.ToLower(filepath.Ext(path))]
	return ok
}

// ConvertFile converts a single layout source.
func (c *Converter) ConvertFile(ctx context.Context, path string) (Result, error) {
	result := Result{Source: path}
	if err := ctx.Err(); err != nil {
		return result, err
	}

	src, ok := c.sources[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return result, fmt.Errorf("%w: %s", ErrUnsupportedSource, path)
	}
	result.Platform = src.platform
	log := c.logger.WithFields(map[string]any{"file": path, "platform": src.platform})

	f, err := os.Open(path)
	if err != nil {
		return result, fmt.Errorf("opening source: %w", err)
	}
	keyboards, err := src.parser.Parse(f, path)
	f.Close()
	if err != nil {
		log.Error("parse failed: %v", err)
		return result, err
	}
	if len(keyboards) == 0 {
		return result, fmt.Errorf("%w: %s", ErrNoKeyboards, path)
	}

	dir := filepath.Join(c.outDir, string(src.platform))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return result, fmt.Errorf("creating output directory: %w", err)
	}
	for _, kb := range keyboards {
		var buf bytes.Buffer
		if err := c.encoder.EncodeKeyboard(&buf, kb); err != nil {
			return result, err
		}
		out := filepath.Join(dir, kb.ID().String()+".xml")
		if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
			return result, fmt.Errorf("writing keyboard: %w", err)
		}
		result.Keyboards = append(result.Keyboards, kb.ID())
		result.Files = append(result.Files, out)
		log.Debug("wrote %s", out)
	}

	log.Info("converted %d keyboard(s)", len(keyboards))
	return result, nil
}

// ConvertAll converts every supported source in paths. Directories are
// walked recursively. Unless fail-fast is set, a failing source does not
// stop the batch; all failures are joined in the returned error.
func (c *Converter) ConvertAll(ctx context.Context, paths []string) ([]Result, error) {
	files, err := c.collect(paths)
	if err != nil {
		return nil, err
	}

	var (
		results []Result
		errs    []error
	)
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res, err := c.ConvertFile(ctx, path)
		if err != nil {
			errs = append(errs, err)
			if c.failFast {
				break
			}
			continue
		}
		results = append(results, res)
	}

	c.logger.Info("converted %d of %d source(s)", len(results), len(files))
	return results, errors.Join(errs...)
}

// collect expands directories into the supported files they contain.
// Files named explicitly are kept even when unsupported so that
// ConvertFile reports them.
func (c *Converter) collect(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("reading source: %w", err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && c.Supported(path) {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %s: %w", p, err)
		}
	}
	return files, nil
}

// WritePlatformFiles writes the LDML platform document of every platform
// with a keycode table and returns the paths written.
func (c *Converter) WritePlatformFiles() ([]string, error) {
	var written []string
	for _, ext := range []string{".keylayout", ".klc"} {
		src := c.sources[ext]
		dir := filepath.Join(c.outDir, string(src.platform))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return written, fmt.Errorf("creating output directory: %w", err)
		}
		var buf bytes.Buffer
		if err := c.encoder.EncodePlatform(&buf, src.platform, src.keycodes); err != nil {
			return written, err
		}
		out := filepath.Join(dir, PlatformFileName)
		if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
			return written, fmt.Errorf("writing platform: %w", err)
		}
		c.logger.WithField("platform", src.platform).Debug("wrote %s", out)
		written = append(written, out)
	}
	return written, nil
}
