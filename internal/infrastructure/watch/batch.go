// Package watch turns a directory into a drop folder: files that land in it
// are collected and handed over as one batch once the folder goes quiet.
package watch

import (
	"sort"
	"sync"
	"time"
)

// quietBatch collects paths until no new path arrives for one quiet window,
// then emits them sorted. A path added twice is emitted once.
type quietBatch struct {
	quiet time.Duration
	emit  func(paths []string)

	mu      sync.Mutex
	pending map[string]struct{}
	timer   *time.Timer
	stopped bool
}

func newQuietBatch(quiet time.Duration, emit func(paths []string)) *quietBatch {
	return &quietBatch{quiet: quiet, emit: emit, pending: make(map[string]struct{})}
}

// Add queues path and restarts the quiet window.
func (b *quietBatch) Add(path string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopped {
		return
	}
	b.pending[path] = struct{}{}
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.quiet, b.fire)
}

// Pending returns the number of queued paths.
func (b *quietBatch) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Stop cancels the window and returns the paths that were never emitted.
func (b *quietBatch) Stop() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopped = true
	if b.timer != nil {
		b.timer.Stop()
	}
	return b.takeLocked()
}

func (b *quietBatch) fire() {
	b.mu.Lock()
	if b.stopped {
		b.mu.Unlock()
		return
	}
	paths := b.takeLocked()
	b.mu.Unlock()

	if len(paths) > 0 {
		b.emit(paths)
	}
}

func (b *quietBatch) takeLocked() []string {
	paths := make([]string, 0, len(b.pending))
	for p := range b.pending {
		paths = append(paths, p)
	}
	b.pending = make(map[string]struct{})
	sort.Strings(paths)
	return paths
}
