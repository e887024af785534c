// Package watch implements the Watch Coordinator (spec.md §4.11): it turns
// file-change notifications into debounced, single-flight rebundles. At
// most one bundling runs at a time; a change that arrives mid-bundling
// flips the coordinator back to dirty so the completion handler restarts
// the pipeline once, rather than preempting the in-flight work.
package watch

import (
	"context"
	"sync"
	"time"
)

// DebounceInterval is the fixed coalescing window for bursts of
// invalidations (spec.md §4.11, §5).
const DebounceInterval = 250 * time.Millisecond

type phase int

const (
	clean phase = iota
	dirty
)

// Coordinator drives one project's incremental rebuilds. Rebundle performs
// one full closure-loop bundling; Invalidate evicts a single path from the
// Asset Table; OnUpdate and OnError report the outcome of each rebundle.
type Coordinator struct {
	Rebundle   func(ctx context.Context) ([]byte, error)
	Invalidate func(path string)
	OnUpdate   func(artifact []byte)
	OnError    func(err error)

	debounce time.Duration

	mu      sync.Mutex
	phase   phase
	pending bool
	timer   *time.Timer
}

// New constructs a Coordinator with the spec's fixed 250ms debounce.
func New(rebundle func(ctx context.Context) ([]byte, error), invalidate func(path string), onUpdate func([]byte), onError func(error)) *Coordinator {
	return &Coordinator{
		Rebundle:   rebundle,
		Invalidate: invalidate,
		OnUpdate:   onUpdate,
		OnError:    onError,
		debounce:   DebounceInterval,
	}
}

// SetDebounce overrides the debounce window (for tests and CLI tuning).
func (c *Coordinator) SetDebounce(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.debounce = d
}

// FileChanged handles one watched-file change: mark dirty, invalidate the
// asset, and — unless a bundling or a timer is already scheduled —
// debounce a rebundle.
func (c *Coordinator) FileChanged(ctx context.Context, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.phase = dirty
	c.Invalidate(path)
	c.scheduleLocked(ctx, c.debounce)
}

// ProgramRecreated handles the compiler's "after program create" signal:
// schedule a rebundle on the next tick, unaffected by the debounce window.
func (c *Coordinator) ProgramRecreated(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.phase = dirty
	c.scheduleLocked(ctx, 0)
}

// scheduleLocked arms the debounce timer if neither a bundling nor a timer
// is already outstanding. Callers hold c.mu.
func (c *Coordinator) scheduleLocked(ctx context.Context, after time.Duration) {
	if c.pending || c.timer != nil {
		return
	}
	c.timer = time.AfterFunc(after, func() { c.fire(ctx) })
}

// fire starts one bundling if none is in flight.
func (c *Coordinator) fire(ctx context.Context) {
	c.mu.Lock()
	c.timer = nil
	if c.pending {
		c.mu.Unlock()
		return
	}
	c.phase = clean
	c.pending = true
	c.mu.Unlock()

	go c.runOnce(ctx)
}

func (c *Coordinator) runOnce(ctx context.Context) {
	artifact, err := c.Rebundle(ctx)

	c.mu.Lock()
	c.pending = false
	restart := c.phase == dirty
	c.mu.Unlock()

	if err != nil {
		c.OnError(err)
	} else {
		c.OnUpdate(artifact)
	}

	if restart {
		c.mu.Lock()
		c.scheduleLocked(ctx, 0)
		c.mu.Unlock()
	}
}

// Busy reports whether a bundling is currently in flight (test hook).
func (c *Coordinator) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}
