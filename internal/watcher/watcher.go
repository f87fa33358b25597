// Package watcher watches layout sources and reports changes to them.
//
// An FSNotifyWatcher reports raw file system events for the watched
// directories. A DebouncedWatcher coalesces the bursts of events editors
// produce when saving a file, and Run delivers each settled change to a
// handler until its context is cancelled.
package watcher

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"time"
)

// Common errors returned by watcher operations.
var (
	ErrWatcherClosed   = errors.New("watcher is closed")
	ErrAlreadyWatching = errors.New("path is already being watched")
	ErrNotWatching     = errors.New("path is not being watched")
	ErrPathNotExist    = errors.New("path does not exist")
)

// Op represents the type of file system operation.
type Op uint32

const (
	// OpCreate indicates a file or directory was created.
	OpCreate Op = 1 << iota
	// OpWrite indicates a file was written to.
	OpWrite
	// OpRemove indicates a file or directory was removed.
	OpRemove
	// OpRename indicates a file or directory was renamed.
	OpRename
)

// String returns a human-readable representation of the operation.
func (op Op) String() string {
	var names []string
	for _, o := range []struct {
		op   Op
		name string
	}{{OpCreate, "CREATE"}, {OpWrite, "WRITE"}, {OpRemove, "REMOVE"}, {OpRename, "RENAME"}} {
		if op.Has(o.op) {
			names = append(names, o.name)
		}
	}
	if len(names) == 0 {
		return "UNKNOWN"
	}
	return strings.Join(names, "|")
}

// Has returns true if the operation includes the given op.
func (op Op) Has(o Op) bool {
	return op&o == o
}

// Event represents a file system change event.
type Event struct {
	// Path is the path of the affected file or directory.
	Path string

	// Op is the operation that occurred.
	Op Op

	// Timestamp is when the event occurred.
	Timestamp time.Time
}

// Watcher monitors file system changes.
type Watcher interface {
	// Watch starts watching a directory and its immediate children.
	Watch(path string) error

	// WatchRecursive starts watching a directory and all subdirectories.
	WatchRecursive(path string) error

	// Unwatch stops watching a path.
	Unwatch(path string) error

	// Events returns the channel of file change events.
	// The channel is closed when the watcher is closed.
	Events() <-chan Event

	// Errors returns the channel of watcher errors.
	// The channel is closed when the watcher is closed.
	Errors() <-chan error

	// Close stops the watcher and releases resources.
	Close() error
}

// EventFilter is a function that filters events.
// Return true to keep the event, false to discard it.
type EventFilter func(event Event) bool

// ExtensionFilter keeps events for files with one of the given
// extensions, compared without regard to case.
func ExtensionFilter(exts ...string) EventFilter {
	return func(event Event) bool {
		ext := filepath.Ext(event.Path)
		for _, e := range exts {
			if strings.EqualFold(ext, e) {
				return true
			}
		}
		return false
	}
}

// Config holds watcher configuration options.
type Config struct {
	// BufferSize is the size of the event and error channels.
	// Default: 100
	BufferSize int

	// IgnoreHidden ignores files and directories starting with a dot.
	// Default: true
	IgnoreHidden bool

	// EventFilter is an optional filter for events.
	EventFilter EventFilter
}

// DefaultConfig returns the default watcher configuration.
func DefaultConfig() Config {
	return Config{
		BufferSize:   100,
		IgnoreHidden: true,
	}
}

// Option configures a watcher.
type Option func(*Config)

// WithBufferSize sets the channel buffer size.
func WithBufferSize(size int) Option {
	return func(c *Config) {
		c.BufferSize = size
	}
}

// WithIgnoreHidden enables or disables ignoring hidden files.
func WithIgnoreHidden(ignore bool) Option {
	return func(c *Config) {
		c.IgnoreHidden = ignore
	}
}

// WithEventFilter sets the event filter.
func WithEventFilter(filter EventFilter) Option {
	return func(c *Config) {
		c.EventFilter = filter
	}
}

// Handler handles a settled change. Errors are passed to the ErrorHandler
// given to Run and do not stop it.
type Handler func(ctx context.Context, event Event) error

// ErrorHandler handles watcher and handler errors.
type ErrorHandler func(err error)

// Run delivers events from w to handle until ctx is cancelled or w is
// closed. Only events that created or wrote a file are delivered; a file
// removed and created again within one debounce window is delivered.
func Run(ctx context.Context, w Watcher, handle Handler, onError ErrorHandler) error {
	if onError == nil {
		onError = func(error) {}
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-w.Events():
			if !ok {
				return nil
			}
			if !event.Op.Has(OpCreate) && !event.Op.Has(OpWrite) {
				continue
			}
			if err := handle(ctx, event); err != nil {
				onError(err)
			}
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			onError(err)
		}
	}
}
