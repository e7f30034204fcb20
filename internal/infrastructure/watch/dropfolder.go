package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// BatchFunc receives the paths of one quiet window, sorted.
type BatchFunc func(ctx context.Context, paths []string)

// DropFolder watches one directory for new or rewritten files.
type DropFolder struct {
	dir     string
	watcher *fsnotify.Watcher
	quiet   time.Duration
	filter  *PatternFilter
	onBatch BatchFunc
	logger  *slog.Logger

	mu sync.Mutex
	// seen holds the modification time each path had when it was handed
	// over, so only rewritten files are picked up again.
	seen map[string]time.Time
}

// NewDropFolder watches dir. A zero quiet window defaults to one second; a nil
// filter accepts every file except hidden and partial downloads.
func NewDropFolder(dir string, quiet time.Duration, filter *PatternFilter, onBatch BatchFunc, logger *slog.Logger) (*DropFolder, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("drop folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("drop folder: %s is not a directory", dir)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}
	if quiet == 0 {
		quiet = time.Second
	}
	if filter == nil {
		filter = NewPatternFilter(nil, nil)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &DropFolder{
		dir:     dir,
		watcher: w,
		quiet:   quiet,
		filter:  filter,
		onBatch: onBatch,
		logger:  logger.With("component", "dropfolder", "dir", dir),
		seen:    make(map[string]time.Time),
	}, nil
}

// Run starts the event loop. It blocks until the context is cancelled.
// Files still inside an open quiet window at that point are not submitted.
func (d *DropFolder) Run(ctx context.Context) error {
	defer d.watcher.Close()

	batch := newQuietBatch(d.quiet, func(paths []string) { d.flush(ctx, paths) })
	defer func() {
		if unsent := batch.Stop(); len(unsent) > 0 {
			d.logger.Warn("drop folder stopped with files pending", "files", len(unsent))
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-d.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
				continue
			}
			if d.track(event.Name) {
				batch.Add(event.Name)
			}
		case err, ok := <-d.watcher.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watcher error: %w", err)
		}
	}
}

func (d *DropFolder) track(path string) bool {
	if ignored(path) || !d.filter.Matches(path) {
		return false
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	mod, ok := d.seen[path]
	return !ok || !mod.Equal(info.ModTime())
}

// flush records the modification time of each path that still exists and
// hands the survivors over.
func (d *DropFolder) flush(ctx context.Context, paths []string) {
	d.mu.Lock()
	ready := paths[:0]
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		d.seen[p] = info.ModTime()
		ready = append(ready, p)
	}
	d.mu.Unlock()

	if len(ready) == 0 || ctx.Err() != nil {
		return
	}
	d.logger.Info("batch ready", "files", len(ready))
	d.onBatch(ctx, ready)
}

// ignored skips hidden files and the temp files browsers and editors write
// before renaming into place.
func ignored(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$") {
		return true
	}
	switch strings.ToLower(filepath.Ext(base)) {
	case ".part", ".crdownload", ".tmp", ".swp":
		return true
	}
	return false
}
