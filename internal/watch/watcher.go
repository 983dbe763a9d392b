// Package watch reruns scans when snapshot or config files change.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDelay is how long the watcher waits for writes to settle
const DefaultDelay = 100 * time.Millisecond

// FileWatcher watches a fixed set of files and reports batched changes
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	files     map[string]struct{}
	dirs      []string
	logger    *zap.Logger
	changes   chan []string
}

// NewFileWatcher creates a watcher for files. Editors often replace files
// instead of writing them in place, so the parent directories are watched
// and events are filtered by path.
func NewFileWatcher(files []string, delay time.Duration, logger *zap.Logger) (*FileWatcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if delay <= 0 {
		delay = DefaultDelay
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	fw := &FileWatcher{
		watcher: w,
		files:   make(map[string]struct{}, len(files)),
		logger:  logger,
		changes: make(chan []string, 1),
	}

	seen := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			_ = w.Close()
			return nil, fmt.Errorf("failed to resolve %s: %w", f, err)
		}
		fw.files[abs] = struct{}{}
		if dir := filepath.Dir(abs); !seen[dir] {
			seen[dir] = true
			fw.dirs = append(fw.dirs, dir)
		}
	}

	fw.debouncer = NewDebouncer(delay, func(paths []string) {
		select {
		case fw.changes <- paths:
		default:
			// A batch is already pending; merge into it.
			select {
			case prev := <-fw.changes:
				fw.changes <- mergePaths(prev, paths)
			default:
				fw.changes <- paths
			}
		}
	})

	return fw, nil
}

// Run watches until ctx is done. onChange is called once per batch; its
// error is logged and does not stop the watcher.
func (fw *FileWatcher) Run(ctx context.Context, onChange func([]string) error) error {
	for _, dir := range fw.dirs {
		if err := fw.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
		fw.logger.Debug("watching directory", zap.String("dir", dir))
	}
	defer fw.close()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return nil
			}
			fw.handle(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return nil
			}
			fw.logger.Warn("watch error", zap.Error(err))

		case paths := <-fw.changes:
			fw.logger.Info("files changed", zap.Strings("files", paths))
			if err := onChange(paths); err != nil {
				fw.logger.Error("rescan failed", zap.Error(err))
			}
		}
	}
}

func (fw *FileWatcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
		return
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}
	if _, ok := fw.files[abs]; !ok {
		return
	}
	fw.debouncer.Add(abs)
}

func (fw *FileWatcher) close() {
	fw.debouncer.Stop()
	if err := fw.watcher.Close(); err != nil {
		fw.logger.Debug("closing watcher", zap.Error(err))
	}
}

func mergePaths(a, b []string) []string {
	set := make(map[string]struct{}, len(a)+len(b))
	for _, p := range a {
		set[p] = struct{}{}
	}
	for _, p := range b {
		set[p] = struct{}{}
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Debouncer collects paths and flushes them once no new path has arrived
// for the configured delay
type Debouncer struct {
	delay    time.Duration
	callback func([]string)

	mu      sync.Mutex
	timer   *time.Timer
	pending map[string]struct{}
	stopped bool
}

// NewDebouncer creates a debouncer that passes sorted paths to callback
func NewDebouncer(delay time.Duration, callback func([]string)) *Debouncer {
	return &Debouncer{
		delay:    delay,
		callback: callback,
		pending:  make(map[string]struct{}),
	}
}

// Add records a path and restarts the delay
func (d *Debouncer) Add(path string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.pending[path] = struct{}{}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.flush)
}

func (d *Debouncer) flush() {
	d.mu.Lock()
	if d.stopped || len(d.pending) == 0 {
		d.mu.Unlock()
		return
	}
	paths := make([]string, 0, len(d.pending))
	for p := range d.pending {
		paths = append(paths, p)
	}
	d.pending = make(map[string]struct{})
	d.mu.Unlock()

	sort.Strings(paths)
	d.callback(paths)
}

// Stop discards pending paths and ignores later adds
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
	}
	d.pending = make(map[string]struct{})
}
