// Package watcher reruns document processing when watched source files
// change, with debouncing so editor save bursts trigger one rebuild.
package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mdfx-dev/mdfx/internal/logging"
)

// ChangeEvent is one debounced file change.
type ChangeEvent struct {
	Path    string
	ModTime time.Time
}

// Handler receives each debounced batch of changes. Paths are deduplicated
// within a batch.
type Handler func(events []ChangeEvent) error

// FileFilter reports whether a path is interesting to the watcher.
type FileFilter func(path string) bool

// Watcher tails a fixed set of files. Directories are registered with
// fsnotify rather than the files themselves: most editors replace files on
// save, which drops inode-level watches.
type Watcher struct {
	fsw       *fsnotify.Watcher
	logger    logging.Logger
	debouncer *debouncer

	mu      sync.RWMutex
	files   map[string]bool
	filters []FileFilter
	handler Handler
}

// New creates a watcher with the given debounce window.
func New(debounce time.Duration, logger logging.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	return &Watcher{
		fsw:    fsw,
		logger: logger.WithComponent("watcher"),
		debouncer: &debouncer{
			delay:  debounce,
			events: make(chan ChangeEvent, 100),
			output: make(chan []ChangeEvent, 10),
		},
		files: make(map[string]bool),
	}, nil
}

// AddFilter narrows which paths produce events.
func (w *Watcher) AddFilter(filter FileFilter) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.filters = append(w.filters, filter)
}

// SetHandler installs the batch callback. Must be called before Start.
func (w *Watcher) SetHandler(handler Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handler = handler
}

// AddFile registers one file to watch. The file must exist.
func (w *Watcher) AddFile(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", path, err)
	}
	if _, err := os.Stat(abs); err != nil {
		return fmt.Errorf("watching %s: %w", path, err)
	}

	w.mu.Lock()
	w.files[abs] = true
	w.mu.Unlock()

	return w.fsw.Add(filepath.Dir(abs))
}

// Start launches the watch loops. They exit when ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) {
	go w.debouncer.run(ctx)
	go w.dispatchLoop(ctx)
	go w.watchLoop(ctx)
}

// Stop closes the underlying fsnotify watcher.
func (w *Watcher) Stop() error {
	w.debouncer.stopTimer()
	return w.fsw.Close()
}

func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn(ctx, err, "watch error")
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}

	w.mu.RLock()
	watched := w.files[abs]
	filters := w.filters
	w.mu.RUnlock()

	if !watched {
		return
	}
	for _, filter := range filters {
		if !filter(abs) {
			return
		}
	}

	change := ChangeEvent{Path: abs}
	if info, err := os.Stat(abs); err == nil {
		change.ModTime = info.ModTime()
	}

	select {
	case w.debouncer.events <- change:
	default:
		// Burst overflow; the debounced batch dedupes by path anyway.
	}
}

func (w *Watcher) dispatchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case events := <-w.debouncer.output:
			w.mu.RLock()
			handler := w.handler
			w.mu.RUnlock()
			if handler == nil {
				continue
			}
			if err := handler(events); err != nil {
				w.logger.Error(ctx, err, "change handler failed")
			}
		}
	}
}

// debouncer coalesces rapid changes into one batch per quiet period.
type debouncer struct {
	delay  time.Duration
	events chan ChangeEvent
	output chan []ChangeEvent

	mu      sync.Mutex
	timer   *time.Timer
	pending []ChangeEvent
}

func (d *debouncer) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-d.events:
			d.add(event)
		}
	}
}

func (d *debouncer) add(event ChangeEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = append(d.pending, event)
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.flush)
}

func (d *debouncer) flush() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.pending) == 0 {
		return
	}

	byPath := make(map[string]ChangeEvent, len(d.pending))
	for _, event := range d.pending {
		byPath[event.Path] = event
	}
	batch := make([]ChangeEvent, 0, len(byPath))
	for _, event := range byPath {
		batch = append(batch, event)
	}

	select {
	case d.output <- batch:
	default:
	}
	d.pending = d.pending[:0]
}

func (d *debouncer) stopTimer() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
}

// ExtensionFilter keeps paths whose extension appears in exts.
func ExtensionFilter(exts []string) FileFilter {
	allowed := make(map[string]bool, len(exts))
	for _, ext := range exts {
		allowed[ext] = true
	}
	return func(path string) bool {
		return allowed[filepath.Ext(path)]
	}
}
