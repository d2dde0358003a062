package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sequence struct {
	mu    sync.Mutex
	vals  []time.Time
	errs  []error
	calls int
}

func (s *sequence) fetch(context.Context) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if i < len(s.errs) && s.errs[i] != nil {
		return time.Time{}, s.errs[i]
	}
	if i >= len(s.vals) {
		return s.vals[len(s.vals)-1], nil
	}
	return s.vals[i], nil
}

func TestTick_RefreshOnlyWhenTimestampAdvances(t *testing.T) {
	t1 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)
	seq := &sequence{vals: []time.Time{t1, t1, t2}}

	var refreshes []int
	p := New(Config{}, seq.fetch, func(context.Context) error {
		refreshes = append(refreshes, seq.calls)
		return nil
	}, zerolog.Nop())

	ctx := context.Background()
	assert.False(t, p.Tick(ctx), "first poll only stores the timestamp")
	assert.False(t, p.Tick(ctx))
	assert.True(t, p.Tick(ctx))

	assert.Equal(t, []int{3}, refreshes, "exactly one refresh, on the third poll")
	last, ok := p.Last()
	require.True(t, ok)
	assert.Equal(t, t2, last)
}

func TestTick_OlderTimestampIgnored(t *testing.T) {
	t1 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	seq := &sequence{vals: []time.Time{t1, t1.Add(-time.Hour)}}

	refreshed := false
	p := New(Config{}, seq.fetch, func(context.Context) error { refreshed = true; return nil }, zerolog.Nop())

	p.Tick(context.Background())
	p.Tick(context.Background())

	assert.False(t, refreshed)
	last, _ := p.Last()
	assert.Equal(t, t1, last)
}

func TestTick_FetchErrorKeepsState(t *testing.T) {
	t1 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Second)
	seq := &sequence{
		vals: []time.Time{t1, {}, t2},
		errs: []error{nil, errors.New("connection refused"), nil},
	}

	count := 0
	p := New(Config{}, seq.fetch, func(context.Context) error { count++; return nil }, zerolog.Nop())

	p.Tick(context.Background())
	assert.False(t, p.Tick(context.Background()))
	assert.True(t, p.Tick(context.Background()))
	assert.Equal(t, 1, count)
}

func TestTick_RefreshErrorStillAdvances(t *testing.T) {
	t1 := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Second)
	seq := &sequence{vals: []time.Time{t1, t2, t2}}

	count := 0
	p := New(Config{}, seq.fetch, func(context.Context) error {
		count++
		return errors.New("boom")
	}, zerolog.Nop())

	for i := 0; i < 3; i++ {
		p.Tick(context.Background())
	}
	assert.Equal(t, 1, count)
	last, _ := p.Last()
	assert.Equal(t, t2, last)
}

func TestStart_NoRefreshAfterStop(t *testing.T) {
	var n atomic.Int64
	fetch := func(context.Context) (time.Time, error) {
		return time.Unix(n.Add(1), 0), nil
	}

	var refreshes atomic.Int64
	var stopped atomic.Bool
	p := New(Config{Interval: time.Millisecond}, fetch, func(context.Context) error {
		if stopped.Load() {
			t.Error("refresh invoked after Stop returned")
		}
		refreshes.Add(1)
		return nil
	}, zerolog.Nop())

	h := p.Start(context.Background())
	require.Eventually(t, func() bool { return refreshes.Load() >= 2 }, time.Second, time.Millisecond)

	h.Stop()
	stopped.Store(true)
	before := refreshes.Load()

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, before, refreshes.Load())

	h.Stop()
	select {
	case <-h.Done():
	default:
		t.Fatal("done channel not closed")
	}
}

func TestStart_LateResponseDiscarded(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	fetch := func(ctx context.Context) (time.Time, error) {
		select {
		case entered <- struct{}{}:
		default:
		}
		<-release
		return time.Now(), nil
	}

	p := New(Config{Interval: time.Millisecond}, fetch, func(context.Context) error {
		t.Error("refresh must not run for a response that arrived after Stop")
		return nil
	}, zerolog.Nop())
	p.last, p.seen = time.Unix(0, 0), true

	h := p.Start(context.Background())
	<-entered

	stopDone := make(chan struct{})
	go func() {
		h.Stop()
		close(stopDone)
	}()

	time.Sleep(10 * time.Millisecond)
	select {
	case <-stopDone:
		t.Fatal("Stop returned while a fetch was still in flight")
	default:
	}

	close(release)
	<-stopDone
}

func TestNew_Defaults(t *testing.T) {
	p := New(Config{Jitter: 2}, nil, nil, zerolog.Nop())
	assert.Equal(t, DefaultInterval, p.cfg.Interval)
	assert.Zero(t, p.cfg.Jitter)
	assert.Equal(t, DefaultInterval, p.wait())

	j := New(Config{Interval: time.Second, Jitter: 0.5}, nil, nil, zerolog.Nop())
	for i := 0; i < 20; i++ {
		w := j.wait()
		assert.GreaterOrEqual(t, w, time.Second)
		assert.Less(t, w, 1500*time.Millisecond)
	}
}
