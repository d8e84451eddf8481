// Package loader reads strategy exports from disk and re-reads them when the
// file changes.
package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gto-rangeviewer/server/strategy"

	"github.com/fsnotify/fsnotify"
)

const DefaultDebounce = 250 * time.Millisecond

var ErrFileRemoved = errors.New("loader: watched file was removed")

// ReadFile decodes the export at path.
func ReadFile(path string) (strategy.Export, error) {
	f, err := os.Open(path)
	if err != nil {
		return strategy.Export{}, fmt.Errorf("loader: open %s: %w", path, err)
	}
	defer f.Close()
	exp, err := strategy.Decode(f)
	if err != nil {
		return strategy.Export{}, fmt.Errorf("loader: %s: %w", path, err)
	}
	return exp, nil
}

type Option func(*Watcher)

// WithDebounce sets how long the file must stay quiet before it is re-read.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

func WithLogger(log *slog.Logger) Option {
	return func(w *Watcher) { w.log = log }
}

// WithOnError is called for read, decode and watch errors. The default logs.
func WithOnError(fn func(error)) Option {
	return func(w *Watcher) { w.onError = fn }
}

// Watcher re-reads one export file whenever it is written, created or
// renamed into place, and hands the decoded export to onLoad.
type Watcher struct {
	path     string
	debounce time.Duration
	onLoad   func(strategy.Export)
	onError  func(error)
	log      *slog.Logger
	ready    chan struct{}
}

func NewWatcher(path string, onLoad func(strategy.Export), opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		path:     abs,
		debounce: DefaultDebounce,
		onLoad:   onLoad,
		log:      slog.Default(),
		ready:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.onError == nil {
		w.onError = func(err error) { w.log.Warn("export watch", "path", w.path, "err", err) }
	}
	return w, nil
}

func (w *Watcher) Path() string { return w.path }

// Ready is closed once the watch is in place.
func (w *Watcher) Ready() <-chan struct{} { return w.ready }

// Run watches until ctx is done. It watches the parent directory so editors
// that write a temp file and rename it over the export are seen.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("loader: watch %s: %w", w.path, err)
	}
	defer fsw.Close()
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("loader: watch %s: %w", w.path, err)
	}
	close(w.ready)
	w.log.Info("watching export", "path", w.path)

	target := filepath.Base(w.path)
	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != target {
				continue
			}
			switch {
			case ev.Has(fsnotify.Remove):
				w.onError(ErrFileRemoved)
			case ev.Has(fsnotify.Write), ev.Has(fsnotify.Create), ev.Has(fsnotify.Rename):
				if timer == nil {
					timer = time.NewTimer(w.debounce)
				} else {
					timer.Reset(w.debounce)
				}
				pending = timer.C
			}

		case <-pending:
			pending = nil
			w.reload()

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.onError(err)
		}
	}
}

func (w *Watcher) reload() {
	exp, err := ReadFile(w.path)
	if err != nil {
		// a rename can leave the path briefly missing
		if errors.Is(err, os.ErrNotExist) {
			return
		}
		w.onError(err)
		return
	}
	w.log.Info("export reloaded", "path", w.path, "nodes", len(exp.Nodes))
	w.onLoad(exp)
}
