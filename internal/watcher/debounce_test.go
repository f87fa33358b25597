package watcher

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewDebouncedWatcher_DefaultDelay(t *testing.T) {
	dw := NewDebouncedWatcher(newMockWatcher(), 0)
	defer dw.Close()

	if dw.delay != DefaultDebounceDelay {
		t.Errorf("delay = %v, want %v", dw.delay, DefaultDebounceDelay)
	}
}

func TestDebouncedWatcher_PassThrough(t *testing.T) {
	mock := newMockWatcher()
	dw := NewDebouncedWatcher(mock, 50*time.Millisecond)
	defer dw.Close()

	if err := dw.WatchRecursive("/src"); err != nil {
		t.Errorf("WatchRecursive error = %v", err)
	}
	if !mock.watching["/src"] {
		t.Error("mock should be watching /src")
	}
	if err := dw.Unwatch("/src"); err != nil {
		t.Errorf("Unwatch error = %v", err)
	}
	if mock.watching["/src"] {
		t.Error("mock should not be watching /src after Unwatch")
	}
}

func TestDebouncedWatcher_EventCoalescing(t *testing.T) {
	mock := newMockWatcher()
	dw := NewDebouncedWatcher(mock, 100*time.Millisecond)
	defer dw.Close()

	path := "/src/test.klc"
	mock.events <- Event{Path: path, Op: OpCreate}
	time.Sleep(20 * time.Millisecond)
	mock.events <- Event{Path: path, Op: OpWrite}
	time.Sleep(20 * time.Millisecond)
	mock.events <- Event{Path: path, Op: OpWrite}

	select {
	case received := <-dw.Events():
		if !received.Op.Has(OpCreate) || !received.Op.Has(OpWrite) {
			t.Errorf("received.Op = %v, want CREATE|WRITE", received.Op)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for coalesced event")
	}

	select {
	case extra := <-dw.Events():
		t.Errorf("received extra event %+v, want one coalesced event", extra)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestDebouncedWatcher_RemoveAndCreate(t *testing.T) {
	mock := newMockWatcher()
	dw := NewDebouncedWatcher(mock, 20*time.Millisecond)
	defer dw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	handled := make(chan Event, 1)
	go func() {
		_ = Run(ctx, dw, func(_ context.Context, e Event) error {
			handled <- e
			return nil
		}, nil)
	}()

	mock.events <- Event{Path: "/src/a.klc", Op: OpRemove}
	mock.events <- Event{Path: "/src/a.klc", Op: OpCreate}

	select {
	case e := <-handled:
		if e.Path != "/src/a.klc" || !e.Op.Has(OpRemove) || !e.Op.Has(OpCreate) {
			t.Errorf("handled %+v, want REMOVE|CREATE for /src/a.klc", e)
		}
	case <-time.After(time.Second):
		t.Fatal("a file created again after its removal was not handled")
	}
}

func TestDebouncedWatcher_DifferentPaths(t *testing.T) {
	mock := newMockWatcher()
	dw := NewDebouncedWatcher(mock, 50*time.Millisecond)
	defer dw.Close()

	mock.events <- Event{Path: "/src/a.klc", Op: OpWrite}
	mock.events <- Event{Path: "/src/b.klc", Op: OpWrite}

	seen := make(map[string]bool)
	for len(seen) < 2 {
		select {
		case e := <-dw.Events():
			seen[e.Path] = true
		case <-time.After(500 * time.Millisecond):
			t.Fatalf("timeout, received %v", seen)
		}
	}
}

func TestDebouncedWatcher_Flush(t *testing.T) {
	mock := newMockWatcher()
	dw := NewDebouncedWatcher(mock, time.Hour)
	defer dw.Close()

	mock.events <- Event{Path: "/src/a.klc", Op: OpWrite}
	deadline := time.Now().Add(time.Second)
	for dw.PendingCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if dw.PendingCount() != 1 {
		t.Fatalf("PendingCount = %d, want 1", dw.PendingCount())
	}

	dw.Flush()
	select {
	case e := <-dw.Events():
		if e.Path != "/src/a.klc" {
			t.Errorf("Path = %q, want /src/a.klc", e.Path)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for flushed event")
	}
	if dw.PendingCount() != 0 {
		t.Errorf("PendingCount = %d after Flush, want 0", dw.PendingCount())
	}
}

func TestDebouncedWatcher_ForwardsErrors(t *testing.T) {
	mock := newMockWatcher()
	dw := NewDebouncedWatcher(mock, 50*time.Millisecond)
	defer dw.Close()

	want := errors.New("watch failed")
	mock.errors <- want

	select {
	case err := <-dw.Errors():
		if !errors.Is(err, want) {
			t.Errorf("error = %v, want %v", err, want)
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timeout waiting for error")
	}
}

func TestDebouncedWatcher_Close(t *testing.T) {
	mock := newMockWatcher()
	dw := NewDebouncedWatcher(mock, time.Hour)

	mock.events <- Event{Path: "/src/a.klc", Op: OpWrite}
	if err := dw.Close(); err != nil {
		t.Fatalf("Close error = %v", err)
	}
	if err := dw.Close(); err != nil {
		t.Errorf("second Close error = %v", err)
	}
	if !mock.closed {
		t.Error("inner watcher should be closed")
	}
	if _, ok := <-dw.Events(); ok {
		t.Error("Events channel should be closed")
	}
}
