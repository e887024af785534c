package watch

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestFileChangedDebouncesBurst(t *testing.T) {
	var runs int32
	var invalidated int32
	done := make(chan struct{}, 4)

	c := New(
		func(ctx context.Context) ([]byte, error) {
			atomic.AddInt32(&runs, 1)
			done <- struct{}{}
			return []byte("ok"), nil
		},
		func(path string) { atomic.AddInt32(&invalidated, 1) },
		func(artifact []byte) {},
		func(err error) { t.Fatalf("unexpected error: %v", err) },
	)
	c.debounce = 20 * time.Millisecond

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		c.FileChanged(ctx, "/project/src/a.ts")
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for rebundle")
	}

	if got := atomic.LoadInt32(&invalidated); got != 5 {
		t.Fatalf("expected 5 invalidations, got %d", got)
	}
	if got := atomic.LoadInt32(&runs); got != 1 {
		t.Fatalf("expected exactly 1 rebundle for a coalesced burst, got %d", got)
	}
}

func TestChangeDuringBundlingRestartsOnce(t *testing.T) {
	var runs int32
	release := make(chan struct{})
	firstStarted := make(chan struct{})
	secondDone := make(chan struct{}, 1)

	c := New(
		func(ctx context.Context) ([]byte, error) {
			n := atomic.AddInt32(&runs, 1)
			if n == 1 {
				close(firstStarted)
				<-release
			} else {
				secondDone <- struct{}{}
			}
			return []byte("ok"), nil
		},
		func(path string) {},
		func(artifact []byte) {},
		func(err error) { t.Fatalf("unexpected error: %v", err) },
	)
	c.debounce = time.Millisecond

	ctx := context.Background()
	c.FileChanged(ctx, "/project/src/a.ts")

	select {
	case <-firstStarted:
	case <-time.After(time.Second):
		t.Fatal("first bundling never started")
	}

	// A change arriving mid-bundling must not start a second bundling
	// concurrently — it flips phase to dirty for the completion handler.
	c.FileChanged(ctx, "/project/src/b.ts")
	if !c.Busy() {
		t.Fatal("expected coordinator to report busy during in-flight bundling")
	}

	close(release)

	select {
	case <-secondDone:
	case <-time.After(time.Second):
		t.Fatal("expected exactly one follow-up rebundle after completion")
	}

	if got := atomic.LoadInt32(&runs); got != 2 {
		t.Fatalf("expected exactly 2 rebundles total, got %d", got)
	}
}
