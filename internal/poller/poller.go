// Package poller runs a cancellable "has anything changed" loop. Each tick
// fetches the server's last-modified timestamp and calls a refresh callback
// when it moves forward.
package poller

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const DefaultInterval = 3 * time.Second

// FetchFunc returns the latest data-change timestamp known to the server.
type FetchFunc func(ctx context.Context) (time.Time, error)

// RefreshFunc re-fetches every list that depends on the polled data.
type RefreshFunc func(ctx context.Context) error

// Config tunes the tick schedule. Jitter is a fraction of Interval in [0, 1)
// added at random to each wait; zero keeps a fixed interval.
type Config struct {
	Interval time.Duration
	Jitter   float64
}

// Poller holds the last observed timestamp. It is started with Start and may
// be started again after its previous Handle was stopped.
type Poller struct {
	cfg     Config
	fetch   FetchFunc
	refresh RefreshFunc
	log     zerolog.Logger

	mu   sync.Mutex
	last time.Time
	seen bool
}

// New builds a Poller. A non-positive interval falls back to DefaultInterval.
func New(cfg Config, fetch FetchFunc, refresh RefreshFunc, log zerolog.Logger) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.Jitter < 0 || cfg.Jitter >= 1 {
		cfg.Jitter = 0
	}
	return &Poller{cfg: cfg, fetch: fetch, refresh: refresh, log: log}
}

// Handle controls a running loop.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Stop cancels the loop and waits for it to exit. Once Stop returns the
// refresh callback is never invoked again. Stop is idempotent.
func (h *Handle) Stop() {
	h.once.Do(h.cancel)
	<-h.done
}

// Done is closed when the loop has exited.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Start launches the loop on its own goroutine. It stops when Stop is called
// or ctx is cancelled.
func (p *Poller) Start(ctx context.Context) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)
		p.run(ctx)
	}()
	return h
}

// Last returns the most recent timestamp stored by the loop.
func (p *Poller) Last() (time.Time, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last, p.seen
}

func (p *Poller) run(ctx context.Context) {
	timer := time.NewTimer(p.wait())
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}

		p.Tick(ctx)
		timer.Reset(p.wait())
	}
}

// Tick performs a single poll. It reports whether a refresh was triggered.
func (p *Poller) Tick(ctx context.Context) bool {
	ts, err := p.fetch(ctx)
	if ctx.Err() != nil {
		// Late response after Stop.
		return false
	}
	if err != nil {
		p.log.Warn().Err(err).Msg("poll last-update failed")
		return false
	}

	p.mu.Lock()
	first := !p.seen
	advanced := p.seen && ts.After(p.last)
	if first {
		p.last, p.seen = ts, true
	}
	p.mu.Unlock()

	if !advanced {
		return false
	}

	p.log.Debug().Time("last_update", ts).Msg("change detected, refreshing")
	if err := p.refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
		p.log.Error().Err(err).Msg("refresh after change failed")
	}

	p.mu.Lock()
	if ts.After(p.last) {
		p.last = ts
	}
	p.mu.Unlock()
	return true
}

func (p *Poller) wait() time.Duration {
	if p.cfg.Jitter == 0 {
		return p.cfg.Interval
	}
	extra := time.Duration(rand.Float64() * p.cfg.Jitter * float64(p.cfg.Interval))
	return p.cfg.Interval + extra
}
