// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package recommend

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/platewise/internal/metrics"
)

// ErrFeedClosed is returned by Refresh after Close.
var ErrFeedClosed = errors.New("feed closed")

// Recommender runs a single recommendation pass.
type Recommender interface {
	Recommend(ctx context.Context, req Request) (*Result, error)
}

// Feed keeps the latest recommendation list for one user.
//
// Triggers arriving within the debounce window collapse into one pass that
// starts after the window has been quiet, so the pass reads the state left
// by the last trigger. Passes are never cancelled by new triggers. Each
// pass takes a generation number when it starts and its result is
// published only if no later-started pass has published first.
type Feed struct {
	userID string
	rec    Recommender
	window time.Duration
	limit  int
	logger zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	timer   *time.Timer
	seq     uint64
	pending int
	trigger Trigger
	closed  bool
	wg      sync.WaitGroup

	generation atomic.Uint64
	latest     atomic.Pointer[Result]
	lastAccess atomic.Int64

	notifyMu   sync.Mutex
	listenerMu sync.RWMutex
	listeners  map[uint64]func(*Result)
	nextID     uint64
}

// NewFeed creates a feed. Passes request limit items; window is the
// debounce window. No pass runs until Trigger or Refresh is called.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewFeed(userID string, rec Recommender, window time.Duration, limit int, logger zerolog.Logger) *Feed {
	ctx, cancel := context.WithCancel(context.Background())
	f := &Feed{
		userID:    userID,
		rec:       rec,
		window:    window,
		limit:     limit,
		logger:    logger.With().Str("component", "feed").Str("user_id", userID).Logger(),
		ctx:       ctx,
		cancel:    cancel,
		listeners: make(map[uint64]func(*Result)),
	}
	f.touch()
	return f
}

// UserID returns the feed owner.
func (f *Feed) UserID() string { return f.userID }

// Trigger schedules a debounced pass.
func (f *Feed) Trigger(reason Trigger) {
	metrics.RecordFeedTrigger()

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}

	f.seq++
	f.pending++
	f.trigger = reason
	if f.timer != nil {
		f.timer.Stop()
	}
	seq := f.seq
	f.timer = time.AfterFunc(f.window, func() { f.fire(seq) })
}

// fire runs the pass scheduled by trigger number seq unless a later
// trigger or Refresh has superseded it.
func (f *Feed) fire(seq uint64) {
	f.mu.Lock()
	if f.closed || seq != f.seq {
		f.mu.Unlock()
		return
	}
	triggers := f.pending
	reason := f.trigger
	f.pending = 0
	f.timer = nil
	f.wg.Add(1)
	f.mu.Unlock()

	defer f.wg.Done()
	metrics.RecordFeedPass(triggers)
	if _, err := f.run(f.ctx, reason); err != nil && !errors.Is(err, context.Canceled) {
		f.logger.Warn().Err(err).Msg("debounced pass failed")
	}
}

// Refresh runs a pass immediately, cancelling any pending debounced pass,
// and returns its result. The result is returned even when a newer result
// was already published.
func (f *Feed) Refresh(ctx context.Context) (*Result, error) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil, ErrFeedClosed
	}
	f.seq++
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.pending = 0
	f.wg.Add(1)
	f.mu.Unlock()

	defer f.wg.Done()
	f.touch()
	metrics.RecordFeedPass(0)
	return f.run(ctx, TriggerManual)
}

func (f *Feed) run(ctx context.Context, reason Trigger) (*Result, error) {
	gen := f.generation.Add(1)

	res, err := f.rec.Recommend(ctx, Request{UserID: f.userID, Limit: f.limit, Trigger: reason})
	if err != nil {
		return nil, err
	}
	res.Generation = gen
	f.publish(res)
	return res, nil
}

// publish stores res unless a result from a later-started pass is already
// published, then notifies listeners.
func (f *Feed) publish(res *Result) bool {
	for {
		cur := f.latest.Load()
		if cur != nil && cur.Generation >= res.Generation {
			metrics.RecordFeedStaleResult()
			f.logger.Debug().
				Uint64("generation", res.Generation).
				Uint64("published", cur.Generation).
				Msg("discarding stale result")
			return false
		}
		if f.latest.CompareAndSwap(cur, res) {
			break
		}
	}

	f.notifyMu.Lock()
	defer f.notifyMu.Unlock()
	// A newer result may have landed between the swap and here; it notifies on its own.
	if f.latest.Load() != res {
		return true
	}

	f.listenerMu.RLock()
	fns := make([]func(*Result), 0, len(f.listeners))
	for _, fn := range f.listeners {
		fns = append(fns, fn)
	}
	f.listenerMu.RUnlock()

	for _, fn := range fns {
		fn(res)
	}
	return true
}

// Latest returns the most recently published result, or nil.
// Results are shared and must not be modified.
func (f *Feed) Latest() *Result {
	f.touch()
	return f.latest.Load()
}

// Subscribe registers fn to receive every published result. fn runs on the
// publishing goroutine and must not block. The returned func unsubscribes.
func (f *Feed) Subscribe(fn func(*Result)) func() {
	f.listenerMu.Lock()
	id := f.nextID
	f.nextID++
	f.listeners[id] = fn
	f.listenerMu.Unlock()
	f.touch()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.listenerMu.Lock()
			delete(f.listeners, id)
			f.listenerMu.Unlock()
			f.touch()
		})
	}
}

// Listeners returns the number of active subscribers.
func (f *Feed) Listeners() int {
	f.listenerMu.RLock()
	defer f.listenerMu.RUnlock()
	return len(f.listeners)
}

// LastAccess returns when the feed was last read or subscribed to.
func (f *Feed) LastAccess() time.Time {
	return time.Unix(0, f.lastAccess.Load())
}

func (f *Feed) touch() {
	f.lastAccess.Store(time.Now().UnixNano())
}

// Close stops pending passes, cancels running ones, and waits for them.
func (f *Feed) Close() {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.closed = true
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
	f.mu.Unlock()

	f.cancel()
	f.wg.Wait()
}
