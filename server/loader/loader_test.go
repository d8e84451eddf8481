package loader

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gto-rangeviewer/server/strategy"
)

const onePosition = `{"settings":{"handdata":{"stacks":[2000],"blinds":[100,50]}},
"nodes":{"0":{"player":7,"street":0,"sequence":[],"actions":[]}}}`

const twoPositions = `{"settings":{"handdata":{"stacks":[2000],"blinds":[100,50]}},
"nodes":{"0":{"player":7,"street":0,"sequence":[],"actions":[]},
         "1":{"player":6,"street":0,"sequence":[],"actions":[]}}}`

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	writeFile(t, path, onePosition)
	exp, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(exp.Nodes) != 1 || exp.Nodes[0].Player != strategy.BB {
		t.Fatalf("unexpected export %+v", exp)
	}
}

func TestReadFileErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := ReadFile(filepath.Join(dir, "missing.json")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
	bad := filepath.Join(dir, "bad.json")
	writeFile(t, bad, "{nope")
	if _, err := ReadFile(bad); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	writeFile(t, path, onePosition)

	loads := make(chan strategy.Export, 4)
	w, err := NewWatcher(path, func(exp strategy.Export) { loads <- exp },
		WithDebounce(20*time.Millisecond),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	select {
	case <-w.Ready():
	case err := <-done:
		t.Fatalf("watch did not start: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatalf("watch did not start in time")
	}

	writeFile(t, path, twoPositions)
	select {
	case exp := <-loads:
		if len(exp.Nodes) != 2 {
			t.Fatalf("reloaded export has %d nodes", len(exp.Nodes))
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no reload after write")
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Run did not stop")
	}
}

func TestWatcherReportsBadWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	writeFile(t, path, onePosition)

	errs := make(chan error, 4)
	w, err := NewWatcher(path, func(strategy.Export) { t.Errorf("bad payload should not load") },
		WithDebounce(20*time.Millisecond),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithOnError(func(err error) { errs <- err }),
	)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	if !filepath.IsAbs(w.Path()) || filepath.Base(w.Path()) != "export.json" {
		t.Fatalf("Path = %q", w.Path())
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Run(ctx)
	select {
	case <-w.Ready():
	case <-time.After(5 * time.Second):
		t.Fatalf("watch did not start in time")
	}

	writeFile(t, path, "{nope")
	select {
	case err := <-errs:
		if err == nil || errors.Is(err, ErrFileRemoved) {
			t.Fatalf("expected a decode error, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("decode error was not reported")
	}
}
