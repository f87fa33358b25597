// Package app wires configuration, logging and the converter together
// and runs kbdconv in batch or watch mode.
package app

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"

	"github.com/cldrtools/keyboard/internal/config"
	"github.com/cldrtools/keyboard/internal/convert"
	"github.com/cldrtools/keyboard/internal/logging"
	"github.com/cldrtools/keyboard/internal/watcher"
)

// Options configures the application. Empty strings and false booleans
// leave the configured value in place.
type Options struct {
	// ConfigPath is the path to a TOML or YAML configuration file.
	ConfigPath string

	// OutputDir overrides output.dir.
	OutputDir string

	// LogLevel overrides logging.level.
	LogLevel string

	// PlatformFiles sets output.platformFiles.
	PlatformFiles bool

	// FailFast sets convert.failFast.
	FailFast bool

	// Watch keeps converting changed sources until the context is cancelled.
	Watch bool

	// Paths are the layout files and directories to convert.
	Paths []string

	// LogOutput receives log lines. Defaults to os.Stderr.
	LogOutput io.Writer
}

// Application converts layout sources into LDML files.
type Application struct {
	opts      Options
	config    *config.Config
	logger    *logging.Logger
	converter *convert.Converter
}

// New creates an application and initializes its components.
func New(ctx context.Context, opts Options) (*Application, error) {
	app := &Application{opts: opts}
	if err := newBootstrapper(app, opts).bootstrap(ctx); err != nil {
		return nil, err
	}
	return app, nil
}

// Config returns the application configuration.
func (app *Application) Config() *config.Config {
	return app.config
}

// Logger returns the application logger.
func (app *Application) Logger() *logging.Logger {
	return app.logger
}

// Converter returns the application converter.
func (app *Application) Converter() *convert.Converter {
	return app.converter
}

// Run converts the sources. In watch mode it then converts each changed
// source until ctx is cancelled. Cancelling the watch is not an error, but
// a failed initial conversion is still reported.
func (app *Application) Run(ctx context.Context) error {
	if len(app.opts.Paths) == 0 {
		return ErrNoSources
	}

	_, convErr := app.converter.ConvertAll(ctx, app.opts.Paths)
	if convErr != nil {
		app.logger.Error("conversion failed: %v", convErr)
	}

	platformFiles, err := app.config.GetBool(config.SettingOutputPlatformFiles)
	if err != nil {
		return err
	}
	if platformFiles {
		if _, err := app.converter.WritePlatformFiles(); err != nil {
			return errors.Join(convErr, err)
		}
	}

	if !app.opts.Watch {
		return convErr
	}
	err = app.watch(ctx)
	if errors.Is(err, context.Canceled) {
		return convErr
	}
	return errors.Join(convErr, err)
}

// watch converts sources below the given paths as they change.
func (app *Application) watch(ctx context.Context) error {
	delay, err := app.config.GetDuration(config.SettingWatchDebounce)
	if err != nil {
		return err
	}
	supported := func(e watcher.Event) bool { return app.converter.Supported(e.Path) }
	fsw, err := watcher.NewFSNotifyWatcher(watcher.WithEventFilter(supported))
	if err != nil {
		return &InitError{Component: "watcher", Err: err}
	}
	w := watcher.NewDebouncedWatcher(fsw, delay)
	defer w.Close()

	for _, p := range app.opts.Paths {
		if err := w.WatchRecursive(p); err != nil {
			return err
		}
	}

	log := app.logger.WithComponent("watch")
	log.Info("watching %d path(s)", len(app.opts.Paths))
	return watcher.Run(ctx, w, func(ctx context.Context, e watcher.Event) error {
		log.Debug("%s %s", e.Op, e.Path)
		if _, err := os.Stat(e.Path); errors.Is(err, fs.ErrNotExist) {
			// Created and removed again within the debounce window.
			return nil
		}
		_, err := app.converter.ConvertFile(ctx, e.Path)
		return err
	}, func(err error) {
		log.Warn("%v", err)
	})
}
