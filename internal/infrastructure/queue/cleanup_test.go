package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type fakeRemover struct {
	mu      sync.Mutex
	removed []string
	fail    map[string]bool
}

func (f *fakeRemover) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail[key] {
		return errors.New("s3 unavailable")
	}
	f.removed = append(f.removed, key)
	return nil
}

func TestCleanup_RemovesEnqueuedKeys(t *testing.T) {
	store := &fakeRemover{fail: map[string]bool{"kontrak/bad.pdf": true}}
	c := NewCleanup(2, store, zerolog.Nop())

	var wg sync.WaitGroup
	wg.Add(3)
	var failed []string
	var mu sync.Mutex
	c.OnDone(func(key string, err error) {
		if err != nil {
			mu.Lock()
			failed = append(failed, key)
			mu.Unlock()
		}
		wg.Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)

	c.Enqueue("kontrak/a.pdf")
	c.Enqueue("")
	c.Enqueue("kontrak/b.pdf")
	c.Enqueue("kontrak/bad.pdf")

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("cleanup did not finish")
	}

	store.mu.Lock()
	defer store.mu.Unlock()
	if len(store.removed) != 2 {
		t.Fatalf("removed = %v, want 2 keys", store.removed)
	}
	if len(failed) != 1 || failed[0] != "kontrak/bad.pdf" {
		t.Fatalf("failed = %v", failed)
	}
}

func TestCleanup_ShardIndexIsStable(t *testing.T) {
	c := NewCleanup(0, &fakeRemover{}, zerolog.Nop())
	if len(c.workers) != defaultWorkers {
		t.Fatalf("workers = %d, want %d", len(c.workers), defaultWorkers)
	}
	first := c.shardIndex("kontrak/1_K-001_a.pdf")
	for i := 0; i < 10; i++ {
		if got := c.shardIndex("kontrak/1_K-001_a.pdf"); got != first {
			t.Fatalf("shard changed: %d != %d", got, first)
		}
	}
}

func TestCleanup_FullQueueDropsKey(t *testing.T) {
	c := NewCleanup(1, &fakeRemover{}, zerolog.Nop())
	for i := 0; i < channelBuffer+5; i++ {
		c.Enqueue("k" + string(rune('a'+i%26)))
	}
	if got := len(c.workers[0]); got != channelBuffer {
		t.Fatalf("buffered = %d, want %d", got, channelBuffer)
	}
}
