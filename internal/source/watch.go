// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package source

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period used when WatcherOptions leaves it
// unset.
const DefaultDebounce = 500 * time.Millisecond

// ChangeHandler is called once per burst of changes to the watched file.
type ChangeHandler func(path string)

// WatcherOptions configures a Watcher.
type WatcherOptions struct {
	// Debounce is the quiet period after the last event before the handler
	// runs.
	Debounce time.Duration

	Logger *slog.Logger
}

// Watcher reports changes to a single local file. It watches the parent
// directory so that editors and tools that replace the file by rename are
// seen too.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	handler  ChangeHandler
	debounce time.Duration
	log      *slog.Logger

	events   chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher for path. Call Start to begin delivering
// changes.
func NewWatcher(path string, handler ChangeHandler, opts WatcherOptions) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving path %s: %w", path, err)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	return &Watcher{
		path:     abs,
		watcher:  fw,
		handler:  handler,
		debounce: opts.Debounce,
		log:      opts.Logger,
		events:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

// Start begins watching. It returns once the watch is registered; events
// are processed until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	go w.processEvents(ctx)
	go w.debounceLoop(ctx)
	return nil
}

// Stop ends the watch. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.log.Debug("graph source changed", "path", event.Name, "op", event.Op.String())
			select {
			case w.events <- struct{}{}:
			default:
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) debounceLoop(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case <-w.events:
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C
		case <-timerC:
			timerC = nil
			if w.handler != nil {
				w.handler(w.path)
			}
		}
	}
}
