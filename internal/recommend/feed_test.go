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
	"testing"
	"time"

	"github.com/tomtom215/platewise/internal/models"
)

// countingRecommender wraps a Recommender and counts passes.
type countingRecommender struct {
	inner Recommender
	calls atomic.Int32
}

func (c *countingRecommender) Recommend(ctx context.Context, req Request) (*Result, error) {
	c.calls.Add(1)
	return c.inner.Recommend(ctx, req)
}

// gatedRecommender blocks each call until its gate is opened and reports
// the call index through TotalCandidates.
type gatedRecommender struct {
	mu      sync.Mutex
	n       int
	gates   []chan struct{}
	started chan int
}

func newGatedRecommender(calls int) *gatedRecommender {
	g := &gatedRecommender{started: make(chan int, calls)}
	for i := 0; i < calls; i++ {
		g.gates = append(g.gates, make(chan struct{}))
	}
	return g
}

func (g *gatedRecommender) Recommend(ctx context.Context, req Request) (*Result, error) {
	g.mu.Lock()
	idx := g.n
	g.n++
	g.mu.Unlock()

	g.started <- idx
	select {
	case <-g.gates[idx]:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &Result{UserID: req.UserID, Status: StatusOK, TotalCandidates: idx}, nil
}

func waitForResult(t *testing.T, ch <-chan *Result, timeout time.Duration) *Result {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(timeout):
		t.Fatal("timed out waiting for a published result")
		return nil
	}
}

func TestFeed_DebounceCoalescesBurst(t *testing.T) {
	t.Parallel()

	prefs := newFakePrefs()
	e := newTestEngine(t, testCatalog(), nil, prefs)
	rec := &countingRecommender{inner: e}

	f := NewFeed("u1", rec, 150*time.Millisecond, 10, testLogger())
	defer f.Close()

	published := make(chan *Result, 4)
	f.Subscribe(func(r *Result) { published <- r })

	cuisines := []string{"japanese", "italian", "thai"}
	for i, c := range cuisines {
		prefs.set(&models.Preferences{UserID: "u1", CuisinePreferences: []string{c}})
		f.Trigger(TriggerPreferences)
		if i < len(cuisines)-1 {
			time.Sleep(40 * time.Millisecond)
		}
	}

	res := waitForResult(t, published, 2*time.Second)
	if res.PreferencesVersion != 3 {
		t.Errorf("PreferencesVersion = %d, want 3 (state after the last event)", res.PreferencesVersion)
	}
	if res.Items[0].Restaurant.ID != "thai" {
		t.Errorf("top item = %s, want thai", res.Items[0].Restaurant.ID)
	}

	time.Sleep(300 * time.Millisecond)
	if got := rec.calls.Load(); got != 1 {
		t.Errorf("passes = %d, want exactly 1", got)
	}
}

func TestFeed_SeparatedTriggersRunSeparately(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, testCatalog(), nil, nil)
	rec := &countingRecommender{inner: e}
	f := NewFeed("u1", rec, 20*time.Millisecond, 10, testLogger())
	defer f.Close()

	published := make(chan *Result, 4)
	f.Subscribe(func(r *Result) { published <- r })

	f.Trigger(TriggerCatalog)
	first := waitForResult(t, published, time.Second)
	f.Trigger(TriggerCatalog)
	second := waitForResult(t, published, time.Second)

	if second.Generation <= first.Generation {
		t.Errorf("generations %d then %d, want increasing", first.Generation, second.Generation)
	}
	if got := rec.calls.Load(); got != 2 {
		t.Errorf("passes = %d, want 2", got)
	}
}

func TestFeed_LastStartedResultWins(t *testing.T) {
	t.Parallel()

	gated := newGatedRecommender(2)
	f := NewFeed("u1", gated, time.Hour, 10, testLogger())
	defer f.Close()

	var wg sync.WaitGroup
	results := make([]*Result, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = f.Refresh(context.Background())
	}()
	<-gated.started

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], _ = f.Refresh(context.Background())
	}()
	<-gated.started

	// The newer pass finishes first, then the older one resolves late.
	close(gated.gates[1])
	deadline := time.Now().Add(time.Second)
	for f.Latest() == nil && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	close(gated.gates[0])
	wg.Wait()

	latest := f.Latest()
	if latest == nil {
		t.Fatal("Latest() = nil")
	}
	if latest.TotalCandidates != 1 || latest.Generation != 2 {
		t.Errorf("Latest() = call %d gen %d, want call 1 gen 2", latest.TotalCandidates, latest.Generation)
	}
	if results[0] == nil || results[0].Generation != 1 {
		t.Errorf("stale Refresh should still return its own result, got %+v", results[0])
	}
}

func TestFeed_RefreshSupersedesPendingTrigger(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, testCatalog(), nil, nil)
	rec := &countingRecommender{inner: e}
	f := NewFeed("u1", rec, 100*time.Millisecond, 10, testLogger())
	defer f.Close()

	f.Trigger(TriggerCatalog)
	res, err := f.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if res.Trigger != TriggerManual {
		t.Errorf("Trigger = %s, want manual", res.Trigger)
	}

	time.Sleep(250 * time.Millisecond)
	if got := rec.calls.Load(); got != 1 {
		t.Errorf("passes = %d, want 1", got)
	}
}

func TestFeed_Close(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, testCatalog(), nil, nil)
	rec := &countingRecommender{inner: e}
	f := NewFeed("u1", rec, 30*time.Millisecond, 10, testLogger())

	f.Trigger(TriggerInitial)
	f.Close()
	f.Close()

	time.Sleep(100 * time.Millisecond)
	if got := rec.calls.Load(); got != 0 {
		t.Errorf("passes after Close = %d, want 0", got)
	}
	if _, err := f.Refresh(context.Background()); !errors.Is(err, ErrFeedClosed) {
		t.Errorf("Refresh() after Close error = %v, want ErrFeedClosed", err)
	}
	f.Trigger(TriggerCatalog)
}

func TestFeed_CloseCancelsRunningPass(t *testing.T) {
	t.Parallel()

	gated := newGatedRecommender(1)
	f := NewFeed("u1", gated, time.Millisecond, 10, testLogger())

	f.Trigger(TriggerInitial)
	<-gated.started

	done := make(chan struct{})
	go func() {
		f.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Close() did not return while a pass was blocked")
	}
	if f.Latest() != nil {
		t.Error("cancelled pass should not publish")
	}
}

func TestFeed_Subscribe(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, testCatalog(), nil, nil)
	f := NewFeed("u1", e, time.Millisecond, 10, testLogger())
	defer f.Close()

	var got atomic.Int32
	unsubscribe := f.Subscribe(func(*Result) { got.Add(1) })
	if f.Listeners() != 1 {
		t.Fatalf("Listeners() = %d, want 1", f.Listeners())
	}

	if _, err := f.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	unsubscribe()
	unsubscribe()
	if _, err := f.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}

	if got.Load() != 1 {
		t.Errorf("notifications = %d, want 1", got.Load())
	}
	if f.Listeners() != 0 {
		t.Errorf("Listeners() = %d, want 0", f.Listeners())
	}
}
