package queue

import (
	"context"
	"hash/fnv"
	"time"

	"github.com/rs/zerolog"

	"github.com/monitorpelanggan/billing-monitor/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	removeTimeout  = 30 * time.Second
)

// Remover is the part of the file store the cleanup pool needs.
type Remover interface {
	Remove(ctx context.Context, key string) error
}

// Cleanup removes replaced and orphaned objects off the request path. Keys are
// sharded by hash so a key is never removed by two workers at once.
type Cleanup struct {
	workers []chan string
	store   Remover
	log     zerolog.Logger
	onDone  func(key string, err error)
}

var _ ports.CleanupQueue = (*Cleanup)(nil)

// NewCleanup creates a pool with numWorkers workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewCleanup(numWorkers int, store Remover, log zerolog.Logger) *Cleanup {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	c := &Cleanup{
		workers: make([]chan string, numWorkers),
		store:   store,
		log:     log,
	}
	for i := range c.workers {
		c.workers[i] = make(chan string, channelBuffer)
	}
	return c
}

// OnDone registers a hook called after every removal attempt. Must be set
// before Start.
func (c *Cleanup) OnDone(fn func(key string, err error)) {
	c.onDone = fn
}

// Start launches the workers. They stop when ctx is cancelled.
func (c *Cleanup) Start(ctx context.Context) {
	for i, ch := range c.workers {
		go c.runWorker(ctx, i, ch)
	}
}

// Enqueue schedules key for removal. Empty keys are ignored. When the shard's
// buffer is full the key is dropped and logged; the object becomes an orphan.
func (c *Cleanup) Enqueue(key string) {
	if key == "" {
		return
	}
	select {
	case c.workers[c.shardIndex(key)] <- key:
	default:
		c.log.Warn().Str("key", key).Msg("cleanup queue full, object left behind")
	}
}

func (c *Cleanup) shardIndex(key string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(c.workers)))
}

func (c *Cleanup) runWorker(ctx context.Context, id int, ch <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case key := <-ch:
			rctx, cancel := context.WithTimeout(ctx, removeTimeout)
			err := c.store.Remove(rctx, key)
			cancel()
			if err != nil {
				c.log.Error().Err(err).
					Str("key", key).
					Int("worker_id", id).
					Msg("object cleanup failed")
			}
			if c.onDone != nil {
				c.onDone(key, err)
			}
		}
	}
}
