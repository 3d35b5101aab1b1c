// Platewise - Restaurant Discovery and Personalized Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package recommend

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/platewise/internal/models"
)

// fakeCatalog implements Catalog for testing.
type fakeCatalog struct {
	mu          sync.Mutex
	restaurants []models.Restaurant
	menus       []models.Menu
	restErr     error
	menuErr     error
	calls       int
}

func (f *fakeCatalog) ListActiveRestaurants(ctx context.Context) ([]models.Restaurant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.restErr != nil {
		return nil, f.restErr
	}
	return append([]models.Restaurant(nil), f.restaurants...), nil
}

func (f *fakeCatalog) ListActiveMenus(ctx context.Context) ([]models.Menu, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.menuErr != nil {
		return nil, f.menuErr
	}
	return append([]models.Menu(nil), f.menus...), nil
}

// fakeRatings implements RatingSource for testing.
type fakeRatings struct {
	values map[string][]int
	errs   map[string]error
}

func (f *fakeRatings) ListRatings(_ context.Context, restaurantID string) ([]int, error) {
	if err := f.errs[restaurantID]; err != nil {
		return nil, err
	}
	return f.values[restaurantID], nil
}

// fakePrefs implements PreferencesSource for testing. set bumps Version
// the way the real store does.
type fakePrefs struct {
	mu    sync.Mutex
	prefs map[string]*models.Preferences
	err   error
}

func newFakePrefs() *fakePrefs {
	return &fakePrefs{prefs: make(map[string]*models.Preferences)}
}

func (f *fakePrefs) GetPreferences(_ context.Context, userID string) (*models.Preferences, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.prefs[userID].Clone(), nil
}

func (f *fakePrefs) set(p *models.Preferences) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var version uint64
	if cur := f.prefs[p.UserID]; cur != nil {
		version = cur.Version
	}
	c := p.Clone()
	c.Version = version + 1
	f.prefs[p.UserID] = c
}

// fakeExternal implements ExternalScorer for testing.
type fakeExternal struct {
	mu     sync.Mutex
	scores []ExternalScore
	err    error
	calls  int
	last   ExternalRequest
}

func (f *fakeExternal) Rank(_ context.Context, req ExternalRequest) ([]ExternalScore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.last = req
	return f.scores, f.err
}

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func testCatalog() *fakeCatalog {
	return &fakeCatalog{
		restaurants: []models.Restaurant{
			{ID: "thai", Name: "Thai Orchid", CuisineType: []string{"Thai"}, PriceRange: "$$", IsActive: true},
			{ID: "pizza", Name: "Slice", CuisineType: []string{"Italian", "Pizza"}, PriceRange: "$", IsActive: true},
			{ID: "sushi", Name: "Umi", CuisineType: []string{"Japanese"}, PriceRange: "$$$$", IsActive: true},
		},
		menus: []models.Menu{
			{ID: "m1", RestaurantID: "thai", CuisineType: "thai", DietaryRestrictions: []string{"vegan"}, IsActive: true},
			{ID: "m2", RestaurantID: "pizza", CuisineType: "italian", Allergens: []string{"gluten"}, IsActive: true},
		},
	}
}

func newTestEngine(t *testing.T, catalog Catalog, ratings RatingSource, prefs PreferencesSource) *Engine {
	t.Helper()
	cfg := DefaultConfig()
	cfg.DebounceWindow = 20 * time.Millisecond
	e, err := NewEngine(cfg, catalog, ratings, prefs, testLogger())
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	e.now = func() time.Time { return noon }
	t.Cleanup(e.Close)
	return e
}

func itemIDs(items []Recommendation) []string {
	out := make([]string, len(items))
	for i := range items {
		out[i] = items[i].Restaurant.ID
	}
	return out
}

func TestNewEngine(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     *Config
		catalog Catalog
		wantErr bool
	}{
		{"nil config uses defaults", nil, &fakeCatalog{}, false},
		{"valid config", DefaultConfig(), &fakeCatalog{}, false},
		{"invalid config", &Config{}, &fakeCatalog{}, true},
		{"missing catalog", DefaultConfig(), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e, err := NewEngine(tt.cfg, tt.catalog, nil, nil, testLogger())
			if tt.wantErr {
				if err == nil {
					t.Error("NewEngine() = nil error, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewEngine() error = %v", err)
			}
			defer e.Close()
			if e.cache == nil {
				t.Error("score cache not created")
			}
		})
	}
}

func TestEngine_Recommend(t *testing.T) {
	t.Parallel()

	prefs := newFakePrefs()
	prefs.set(&models.Preferences{UserID: "u1", CuisinePreferences: []string{"thai", "italian"}, PriceRange: "$$"})
	ratings := &fakeRatings{values: map[string][]int{"thai": {4, 5, 4, 3}}}
	e := newTestEngine(t, testCatalog(), ratings, prefs)

	res, err := e.Recommend(context.Background(), Request{UserID: "u1", Trigger: TriggerManual})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	if res.Status != StatusOK || res.Source != SourceRules {
		t.Errorf("Status/Source = %s/%s, want ok/rules", res.Status, res.Source)
	}
	if want := []string{"thai", "pizza"}; !reflect.DeepEqual(itemIDs(res.Items), want) {
		t.Errorf("items = %v, want %v", itemIDs(res.Items), want)
	}
	if res.Excluded != 1 || res.TotalCandidates != 3 {
		t.Errorf("Excluded/TotalCandidates = %d/%d, want 1/3", res.Excluded, res.TotalCandidates)
	}
	if res.PreferencesVersion != 1 {
		t.Errorf("PreferencesVersion = %d, want 1", res.PreferencesVersion)
	}
	if len(res.RecoveryActions) != 0 {
		t.Errorf("RecoveryActions = %v, want none", res.RecoveryActions)
	}

	thai := res.Items[0].Rating
	if thai.Count != 4 || thai.Average == nil || *thai.Average != 4.0 {
		t.Errorf("thai rating = %+v, want 4.0/4", thai)
	}
	if pizza := res.Items[1].Rating; pizza.Count != 0 || pizza.Average != nil {
		t.Errorf("pizza rating = %+v, want unrated", pizza)
	}
	for _, item := range res.Items {
		if len(item.Reasons) > MaxDisplayReasons {
			t.Errorf("%s has %d reasons, want at most %d", item.Restaurant.ID, len(item.Reasons), MaxDisplayReasons)
		}
	}
}

func TestEngine_Recommend_CatalogUnavailable(t *testing.T) {
	t.Parallel()

	catalog := testCatalog()
	catalog.restErr = errors.New("connection refused")
	e := newTestEngine(t, catalog, nil, nil)

	res, err := e.Recommend(context.Background(), Request{UserID: "u1"})
	if err != nil {
		t.Fatalf("Recommend() error = %v, want nil", err)
	}
	if res.Status != StatusUnavailable {
		t.Errorf("Status = %s, want unavailable", res.Status)
	}
	if want := []string{ActionAdjustPreferences, ActionRefresh}; !reflect.DeepEqual(res.RecoveryActions, want) {
		t.Errorf("RecoveryActions = %v, want %v", res.RecoveryActions, want)
	}
	if res.Items == nil || len(res.Items) != 0 {
		t.Errorf("Items = %v, want empty non-nil", res.Items)
	}
	if e.Stats().Unavailable != 1 {
		t.Errorf("Stats().Unavailable = %d, want 1", e.Stats().Unavailable)
	}
}

func TestEngine_Recommend_EmptyCatalog(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, &fakeCatalog{}, nil, nil)
	res, err := e.Recommend(context.Background(), Request{UserID: "u1"})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if res.Status != StatusEmpty {
		t.Errorf("Status = %s, want empty", res.Status)
	}
	if len(res.RecoveryActions) != 2 {
		t.Errorf("RecoveryActions = %v, want two actions", res.RecoveryActions)
	}
}

func TestEngine_Recommend_MenusUnavailable(t *testing.T) {
	t.Parallel()

	catalog := testCatalog()
	catalog.menuErr = errors.New("timeout")
	prefs := newFakePrefs()
	prefs.set(&models.Preferences{UserID: "u1", CuisinePreferences: []string{"thai"}, DietaryRestrictions: []string{"vegan"}})
	e := newTestEngine(t, catalog, nil, prefs)

	res, err := e.Recommend(context.Background(), Request{UserID: "u1"})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if res.Status != StatusOK || len(res.Items) != 1 {
		t.Fatalf("Status = %s, items = %v", res.Status, itemIDs(res.Items))
	}
	if got := res.Items[0].Reasons[1]; got != "Check dietary options with the restaurant" {
		t.Errorf("Reasons[1] = %q, want dietary caution", got)
	}
}

func TestEngine_Recommend_RatingFailure(t *testing.T) {
	t.Parallel()

	ratings := &fakeRatings{
		values: map[string][]int{"pizza": {5, 5}},
		errs:   map[string]error{"thai": errors.New("boom")},
	}
	e := newTestEngine(t, testCatalog(), ratings, nil)

	res, err := e.Recommend(context.Background(), Request{UserID: "u1"})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(res.Items) != 3 {
		t.Fatalf("items = %v, want all three", itemIDs(res.Items))
	}
	for _, item := range res.Items {
		switch item.Restaurant.ID {
		case "thai":
			if item.Rating.Average != nil || item.Rating.Count != 0 {
				t.Errorf("thai rating = %+v, want unrated after failure", item.Rating)
			}
		case "pizza":
			if item.Rating.Count != 2 {
				t.Errorf("pizza rating = %+v, want count 2", item.Rating)
			}
		}
	}
	if e.Stats().RatingErrors != 1 {
		t.Errorf("Stats().RatingErrors = %d, want 1", e.Stats().RatingErrors)
	}
}

func TestEngine_Recommend_PreferencesFailure(t *testing.T) {
	t.Parallel()

	prefs := newFakePrefs()
	prefs.err = errors.New("badger closed")
	e := newTestEngine(t, testCatalog(), nil, prefs)

	res, err := e.Recommend(context.Background(), Request{UserID: "u1"})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(res.Items) != 3 || res.Excluded != 0 {
		t.Errorf("items = %v, excluded = %d, want all included", itemIDs(res.Items), res.Excluded)
	}
}

func TestEngine_Recommend_Fallback(t *testing.T) {
	t.Parallel()

	prefs := newFakePrefs()
	prefs.set(&models.Preferences{UserID: "u1", CuisinePreferences: []string{"ethiopian"}, PriceRange: "$"})
	e := newTestEngine(t, testCatalog(), nil, prefs)

	res, err := e.Recommend(context.Background(), Request{UserID: "u1"})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if !res.Fallback || res.Source != SourceFallback {
		t.Errorf("Fallback/Source = %v/%s, want true/fallback", res.Fallback, res.Source)
	}
	if len(res.Items) != 3 {
		t.Errorf("items = %d, want 3", len(res.Items))
	}
	if e.Stats().FallbackPasses != 1 {
		t.Errorf("Stats().FallbackPasses = %d, want 1", e.Stats().FallbackPasses)
	}
}

func TestEngine_Recommend_PreferencesOverride(t *testing.T) {
	t.Parallel()

	prefs := newFakePrefs()
	prefs.set(&models.Preferences{UserID: "u1", CuisinePreferences: []string{"thai"}})
	e := newTestEngine(t, testCatalog(), nil, prefs)

	res, err := e.Recommend(context.Background(), Request{
		UserID:      "u1",
		Preferences: &models.Preferences{CuisinePreferences: []string{"Japanese"}, PriceRange: "$$$$"},
	})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if want := []string{"sushi"}; !reflect.DeepEqual(itemIDs(res.Items), want) {
		t.Errorf("items = %v, want %v", itemIDs(res.Items), want)
	}
	if res.PreferencesVersion != 0 {
		t.Errorf("PreferencesVersion = %d, want 0 for an override", res.PreferencesVersion)
	}
}

func TestEngine_Recommend_Limit(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, testCatalog(), nil, nil)

	res, err := e.Recommend(context.Background(), Request{UserID: "u1", Limit: 2})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if len(res.Items) != 2 {
		t.Errorf("items = %d, want 2", len(res.Items))
	}
}

func TestEngine_Recommend_ContextCancelled(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, testCatalog(), nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := e.Recommend(ctx, Request{UserID: "u1"}); !errors.Is(err, context.Canceled) {
		t.Errorf("Recommend() error = %v, want context.Canceled", err)
	}
}

func TestEngine_ExternalScorer(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t, testCatalog(), nil, nil)
	ext := &fakeExternal{scores: []ExternalScore{
		{RestaurantID: "sushi", Score: 0.9, Reasons: []string{"Matches your sushi nights"}},
		{RestaurantID: "ghost", Score: 0.8},
		{RestaurantID: "thai", Score: 0.7, Reasons: []string{"Similar to places you liked"}},
		{RestaurantID: "sushi", Score: 0.1},
	}}
	e.SetExternalScorer(ext)

	res, err := e.Recommend(context.Background(), Request{UserID: "u1", Limit: 5})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if res.Source != SourceExternal {
		t.Errorf("Source = %s, want external", res.Source)
	}
	if want := []string{"sushi", "thai"}; !reflect.DeepEqual(itemIDs(res.Items), want) {
		t.Errorf("items = %v, want %v", itemIDs(res.Items), want)
	}
	if len(ext.last.CandidateIDs) != 3 || ext.last.Limit != 5 {
		t.Errorf("external request = %+v", ext.last)
	}
	if !e.Stats().ExternalEnabled {
		t.Error("Stats().ExternalEnabled = false, want true")
	}
}

func TestEngine_ExternalScorerFallsBack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ext  *fakeExternal
	}{
		{"error", &fakeExternal{err: errors.New("503")}},
		{"empty", &fakeExternal{}},
		{"unknown ids only", &fakeExternal{scores: []ExternalScore{{RestaurantID: "ghost", Score: 1}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			e := newTestEngine(t, testCatalog(), nil, nil)
			e.SetExternalScorer(tt.ext)

			res, err := e.Recommend(context.Background(), Request{UserID: "u1"})
			if err != nil {
				t.Fatalf("Recommend() error = %v", err)
			}
			if res.Source != SourceRules || len(res.Items) != 3 {
				t.Errorf("Source = %s, items = %d, want rules/3", res.Source, len(res.Items))
			}
		})
	}
}

func TestEngine_ScoreCacheAndInvalidate(t *testing.T) {
	t.Parallel()

	prefs := newFakePrefs()
	prefs.set(&models.Preferences{UserID: "u1", CuisinePreferences: []string{"thai"}})
	e := newTestEngine(t, testCatalog(), nil, prefs)

	for i := 0; i < 2; i++ {
		if _, err := e.Recommend(context.Background(), Request{UserID: "u1"}); err != nil {
			t.Fatalf("Recommend() error = %v", err)
		}
	}
	stats := e.Stats()
	if stats.CacheHits != 3 || stats.CachedScores != 3 {
		t.Fatalf("CacheHits/CachedScores = %d/%d, want 3/3", stats.CacheHits, stats.CachedScores)
	}

	e.Invalidate(models.ChangeEvent{Kind: models.ChangeMenu, RestaurantID: "thai"})
	if got := e.Stats().CachedScores; got != 2 {
		t.Errorf("after restaurant invalidation CachedScores = %d, want 2", got)
	}

	e.Invalidate(models.ChangeEvent{Kind: models.ChangePreferences, UserID: "u1"})
	if got := e.Stats().CachedScores; got != 0 {
		t.Errorf("after owner invalidation CachedScores = %d, want 0", got)
	}

	if _, err := e.Recommend(context.Background(), Request{UserID: "u1"}); err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	e.Invalidate(models.ChangeEvent{Kind: models.ChangeRestaurant})
	if got := e.Stats().CachedScores; got != 0 {
		t.Errorf("after catalog-wide invalidation CachedScores = %d, want 0", got)
	}
}

// stallingCatalog pauses the first ListActiveMenus call after the menus
// were read, so a test can change the catalog while a pass is in flight.
type stallingCatalog struct {
	*fakeCatalog
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (c *stallingCatalog) ListActiveMenus(ctx context.Context) ([]models.Menu, error) {
	menus, err := c.fakeCatalog.ListActiveMenus(ctx)
	c.once.Do(func() {
		close(c.entered)
		<-c.release
	})
	return menus, err
}

func allergyPrefs() *fakePrefs {
	prefs := newFakePrefs()
	prefs.set(&models.Preferences{UserID: "u1", CuisinePreferences: []string{"italian"}, Allergens: []string{"gluten"}})
	return prefs
}

func TestEngine_DegradedMenusNotCached(t *testing.T) {
	t.Parallel()

	catalog := testCatalog()
	catalog.menuErr = errors.New("menus timeout")
	e := newTestEngine(t, catalog, nil, allergyPrefs())

	res, err := e.Recommend(context.Background(), Request{UserID: "u1"})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if got := res.Items[0].Reasons[1]; got != reasonAllergenVerify {
		t.Fatalf("degraded Reasons[1] = %q, want %q", got, reasonAllergenVerify)
	}
	if got := e.Stats().CachedScores; got != 0 {
		t.Errorf("CachedScores after degraded pass = %d, want 0", got)
	}

	catalog.mu.Lock()
	catalog.menuErr = nil
	catalog.mu.Unlock()

	res, err = e.Recommend(context.Background(), Request{UserID: "u1"})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if got := res.Items[0].Reasons[1]; got != reasonAllergenCaution+"gluten" {
		t.Errorf("Reasons[1] after menus recovered = %q, want allergen caution", got)
	}
}

func TestEngine_InvalidationDuringPassNotOverwritten(t *testing.T) {
	t.Parallel()

	base := testCatalog()
	base.menus[1].Allergens = nil
	catalog := &stallingCatalog{fakeCatalog: base, entered: make(chan struct{}), release: make(chan struct{})}
	e := newTestEngine(t, catalog, nil, allergyPrefs())

	type outcome struct {
		res *Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := e.Recommend(context.Background(), Request{UserID: "u1"})
		done <- outcome{res, err}
	}()

	<-catalog.entered
	base.mu.Lock()
	base.menus[1].Allergens = []string{"gluten"}
	base.mu.Unlock()
	e.Invalidate(models.ChangeEvent{Kind: models.ChangeMenu, RestaurantID: "pizza"})
	close(catalog.release)

	var first outcome
	select {
	case first = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stalled pass did not finish")
	}
	if first.err != nil {
		t.Fatalf("Recommend() error = %v", first.err)
	}
	if got := first.res.Items[0].Reasons[1]; got != reasonAllergenSafe {
		t.Fatalf("in-flight pass Reasons[1] = %q, want its own snapshot", got)
	}
	if got := e.Stats().CachedScores; got != 0 {
		t.Errorf("CachedScores after superseded pass = %d, want 0", got)
	}

	res, err := e.Recommend(context.Background(), Request{UserID: "u1"})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if got := res.Items[0].Reasons[1]; got != reasonAllergenCaution+"gluten" {
		t.Errorf("Reasons[1] after menu change = %q, want allergen caution", got)
	}
}

func TestEngine_PreferenceSaveBypassesCache(t *testing.T) {
	t.Parallel()

	prefs := newFakePrefs()
	prefs.set(&models.Preferences{UserID: "u1", CuisinePreferences: []string{"thai"}})
	e := newTestEngine(t, testCatalog(), nil, prefs)

	if _, err := e.Recommend(context.Background(), Request{UserID: "u1"}); err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}

	prefs.set(&models.Preferences{UserID: "u1", CuisinePreferences: []string{"japanese"}})
	res, err := e.Recommend(context.Background(), Request{UserID: "u1"})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	if res.Items[0].Restaurant.ID != "sushi" {
		t.Errorf("top = %s, want sushi after preference change", res.Items[0].Restaurant.ID)
	}
}

func TestEngine_RatingSnapshot(t *testing.T) {
	t.Parallel()

	ratings := &fakeRatings{values: map[string][]int{"thai": {5, 4}}}
	e := newTestEngine(t, testCatalog(), ratings, nil)

	snap, err := e.RatingSnapshot(context.Background(), "thai")
	if err != nil {
		t.Fatalf("RatingSnapshot() error = %v", err)
	}
	if snap.Count != 2 || *snap.Average != 4.5 {
		t.Errorf("snapshot = %+v, want 4.5/2", snap)
	}

	noSource := newTestEngine(t, testCatalog(), nil, nil)
	if _, err := noSource.RatingSnapshot(context.Background(), "thai"); err == nil {
		t.Error("RatingSnapshot() without a source = nil error, want error")
	}
}

func TestEngine_StoredAnalyticsWithoutRatingSource(t *testing.T) {
	t.Parallel()

	catalog := testCatalog()
	catalog.restaurants[0].AverageRating = floatPtr(4.26)
	catalog.restaurants[0].RatingCount = 9
	e := newTestEngine(t, catalog, nil, nil)

	res, err := e.Recommend(context.Background(), Request{UserID: "u1"})
	if err != nil {
		t.Fatalf("Recommend() error = %v", err)
	}
	for _, item := range res.Items {
		if item.Restaurant.ID == "thai" {
			if item.Rating.Count != 9 || *item.Rating.Average != 4.3 {
				t.Errorf("thai rating = %+v, want 4.3/9", item.Rating)
			}
		}
	}
}
