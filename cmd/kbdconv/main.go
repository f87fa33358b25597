// Package main is the entry point for kbdconv, which converts OSX and
// Windows keyboard layouts into LDML keyboard files.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cldrtools/keyboard/internal/app"
	"github.com/cldrtools/keyboard/internal/logging"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	// Stop on SIGINT/SIGTERM; watch mode exits cleanly.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	if err := application.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func parseFlags() app.Options {
	var opts app.Options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "", "Path to configuration file (.toml, .yaml)")
	flag.StringVar(&opts.ConfigPath, "c", "", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.OutputDir, "out", "", "Output directory (default \"ldml\")")
	flag.StringVar(&opts.OutputDir, "o", "", "Output directory (shorthand)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.PlatformFiles, "platform", false, "Also write the LDML platform files")
	flag.BoolVar(&opts.FailFast, "fail-fast", false, "Stop at the first source that fails")
	flag.BoolVar(&opts.Watch, "watch", false, "Convert sources again when they change")
	flag.BoolVar(&opts.Watch, "w", false, "Convert sources again when they change (shorthand)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "kbdconv - convert keyboard layouts to LDML\n\n")
		fmt.Fprintf(os.Stderr, "Usage: kbdconv [options] <file-or-dir>...\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  kbdconv US.keylayout              Convert one OSX layout\n")
		fmt.Fprintf(os.Stderr, "  kbdconv -o cldr/keyboards src/    Convert every layout below src/\n")
		fmt.Fprintf(os.Stderr, "  kbdconv -platform -w src/         Write platform files and watch src/\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("kbdconv %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if err := checkLogLevel(opts.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	opts.Paths = flag.Args()
	if len(opts.Paths) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	return opts
}

// checkLogLevel accepts an empty name, which keeps the configured level.
func checkLogLevel(name string) error {
	if name == "" {
		return nil
	}
	if _, err := logging.ParseLevel(name); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	return nil
}
