package app

import (
	"context"

	"github.com/cldrtools/keyboard/internal/config"
	"github.com/cldrtools/keyboard/internal/convert"
	"github.com/cldrtools/keyboard/internal/logging"
)

// bootstrapper initializes the application components in dependency order.
type bootstrapper struct {
	app  *Application
	opts Options
}

func newBootstrapper(app *Application, opts Options) *bootstrapper {
	return &bootstrapper{app: app, opts: opts}
}

func (b *bootstrapper) bootstrap(ctx context.Context) error {
	if err := b.initConfig(ctx); err != nil {
		return err
	}
	if err := b.initLogging(); err != nil {
		return err
	}
	return b.initConverter()
}

// initConfig loads the configuration file and the environment, with the
// command-line options as the highest layer.
func (b *bootstrapper) initConfig(ctx context.Context) error {
	var opts []config.Option
	if b.opts.ConfigPath != "" {
		opts = append(opts, config.WithFile(b.opts.ConfigPath))
	}
	cfg := config.New(opts...)

	overrides := map[string]any{}
	if b.opts.OutputDir != "" {
		overrides[config.SettingOutputDir] = b.opts.OutputDir
	}
	if b.opts.LogLevel != "" {
		overrides[config.SettingLoggingLevel] = b.opts.LogLevel
	}
	if b.opts.PlatformFiles {
		overrides[config.SettingOutputPlatformFiles] = true
	}
	if b.opts.FailFast {
		overrides[config.SettingConvertFailFast] = true
	}
	for path, v := range overrides {
		if err := cfg.Set(path, v); err != nil {
			return &InitError{Component: "config", Err: err}
		}
	}

	if err := cfg.Load(ctx); err != nil {
		return &InitError{Component: "config", Err: err}
	}
	b.app.config = cfg
	return nil
}

func (b *bootstrapper) initLogging() error {
	name, err := b.app.config.GetString(config.SettingLoggingLevel)
	if err != nil {
		return &InitError{Component: "logging", Err: err}
	}
	level, err := logging.ParseLevel(name)
	if err != nil {
		return &InitError{Component: "logging", Err: err}
	}

	cfg := logging.DefaultConfig()
	cfg.Level = level
	if b.opts.LogOutput != nil {
		cfg.Output = b.opts.LogOutput
	}
	b.app.logger = logging.New(cfg)
	if file := b.app.config.File(); file != "" {
		b.app.logger.Debug("loaded configuration from %s", file)
	}
	return nil
}

func (b *bootstrapper) initConverter() error {
	conv, err := convert.New(b.app.config, b.app.logger)
	if err != nil {
		return &InitError{Component: "converter", Err: err}
	}
	b.app.converter = conv
	return nil
}
