package mapengine

import (
	"context"
	"testing"
	"time"

	"pamojaBack/internal/mapengine/feed"
	"pamojaBack/internal/mapengine/markers"
	"pamojaBack/internal/mapengine/proximity"
	"pamojaBack/internal/mapengine/search"
	"pamojaBack/internal/mapengine/selection"
	"pamojaBack/internal/mapengine/surface"
	"pamojaBack/internal/mapengine/visibility"
	"pamojaBack/internal/models"
)

type testLogger struct{}

func (testLogger) Infof(string, ...interface{})  {}
func (testLogger) Errorf(string, ...interface{}) {}

type stubBackend struct {
	feed    []models.GeoEntity
	matches []models.GeoEntity
}

func (s *stubBackend) FetchAll(ctx context.Context) ([]models.GeoEntity, error) {
	return s.feed, nil
}

func (s *stubBackend) Search(ctx context.Context, query, column string) ([]models.GeoEntity, error) {
	return s.matches, nil
}

type stubProvider struct {
	loc models.UserLocation
}

func (s *stubProvider) Current(ctx context.Context, opts proximity.LocateOptions) (models.UserLocation, error) {
	return s.loc, nil
}

func f(v float64) *float64 { return &v }

func projectAt(id string, lat, lon float64) models.GeoEntity {
	return models.GeoEntity{ID: id, Source: models.SourceProject, Name: "project " + id, Latitude: &lat, Longitude: &lon}
}

type testHarness struct {
	engine  *Engine
	backend *stubBackend
}

func newTestHarness(t *testing.T, deviceLoc models.UserLocation) *testHarness {
	t.Helper()
	backend := &stubBackend{
		feed: []models.GeoEntity{
			projectAt("feed-1", -1.2921, 36.7758),
			projectAt("feed-2", -1.20, 36.90),
			{ID: "feed-3", Source: models.SourceTrainingEvent, Name: "workshop", Latitude: f(-1.25), Longitude: f(36.85)},
		},
	}

	surf := surface.New(1280, 720, surface.View{CenterLon: 36.7758, CenterLat: -1.2921, Zoom: 10})
	filter := visibility.NewFilter()
	loader := feed.NewLoader(backend, filter, testLogger{})
	searchEng := search.NewEngine(backend, surf, testLogger{}, search.Options{Debounce: 5 * time.Millisecond})
	base := func() []models.GeoEntity {
		if results := searchEng.Results(); len(results) > 0 {
			return results
		}
		return loader.Entities()
	}
	proxEng := proximity.NewEngine(&stubProvider{loc: deviceLoc}, surf, testLogger{}, base, proximity.Options{})
	panel := selection.NewPanel()

	engine := newEngine(testLogger{}, surf, loader, searchEng, proxEng, filter, panel)
	t.Cleanup(engine.Close)
	return &testHarness{engine: engine, backend: backend}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestStartRendersFeed(t *testing.T) {
	h := newTestHarness(t, models.UserLocation{Latitude: -1.2921, Longitude: 36.7758})
	h.engine.Start(context.Background())

	overlay := h.engine.Surface().Overlay()
	if len(overlay) != 3 {
		t.Fatalf("expected the full feed rendered, got %d features", len(overlay))
	}
	for _, feat := range overlay {
		if feat.IsSearchResult {
			t.Fatal("feed markers must not carry search emphasis")
		}
	}
}

func TestDisplayPrecedence(t *testing.T) {
	h := newTestHarness(t, models.UserLocation{Latitude: -1.2921, Longitude: 36.7758})
	h.engine.Start(context.Background())

	// Search results displace the feed and carry emphasis.
	h.backend.matches = []models.GeoEntity{projectAt("hit-1", -1.29, 36.80), projectAt("hit-2", -1.28, 36.81)}
	h.engine.Search().Search("water", models.SearchColumnAll)
	waitFor(t, func() bool { return len(h.engine.Search().Results()) == 2 })

	active := h.engine.ActiveSet()
	if len(active) != 2 || active[0].ID != "hit-1" {
		t.Fatalf("expected search results active, got %+v", active)
	}
	overlay := h.engine.Surface().Overlay()
	for _, feat := range overlay {
		if feat.Type == markers.TypeProject && !feat.IsSearchResult {
			t.Fatal("expected search emphasis on rendered results")
		}
	}

	// Near-me mode with matches takes precedence over search results.
	if err := h.engine.Proximity().Activate(context.Background(), 10); err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	active = h.engine.ActiveSet()
	if len(active) != 2 {
		t.Fatalf("expected near-me results active, got %d", len(active))
	}
	for _, e := range active {
		if e.DistanceKm == nil {
			t.Fatalf("expected distances on near-me results, got %+v", e)
		}
	}

	// An empty near-me set falls through to the search results.
	h.engine.Proximity().SetRadius(0.0001)
	active = h.engine.ActiveSet()
	if len(active) != 2 || active[0].DistanceKm != nil {
		t.Fatalf("expected fall-through to search results, got %+v", active)
	}

	// Clearing both leaves the feed.
	h.engine.Proximity().Deactivate()
	h.engine.Search().Search("", models.SearchColumnAll)
	if active = h.engine.ActiveSet(); len(active) != 3 {
		t.Fatalf("expected feed active, got %d", len(active))
	}
}

func TestToggleCategoryRerenders(t *testing.T) {
	h := newTestHarness(t, models.UserLocation{Latitude: -1.2921, Longitude: 36.7758})
	h.engine.Start(context.Background())

	h.engine.ToggleCategory("training_event")
	overlay := h.engine.Surface().Overlay()
	if len(overlay) != 2 {
		t.Fatalf("expected training events hidden, got %d features", len(overlay))
	}

	h.engine.SelectAllCategories()
	if len(h.engine.Surface().Overlay()) != 3 {
		t.Fatal("expected all markers back")
	}

	h.engine.DeselectAllCategories()
	if len(h.engine.Surface().Overlay()) != 0 {
		t.Fatal("expected empty overlay")
	}
}

func TestLegendCounts(t *testing.T) {
	h := newTestHarness(t, models.UserLocation{Latitude: -1.2921, Longitude: 36.7758})
	h.engine.Start(context.Background())
	h.engine.ToggleCategory("training_event")

	perKey, total := h.engine.LegendCounts()
	if perKey["project"] != 2 || perKey["training_event"] != 1 {
		t.Fatalf("unexpected per-key counts: %v", perKey)
	}
	if total != 2 {
		t.Fatalf("expected total 2 with training hidden, got %d", total)
	}
}

func TestClickOpensSelection(t *testing.T) {
	h := newTestHarness(t, models.UserLocation{Latitude: -1.2921, Longitude: 36.7758})
	h.engine.Start(context.Background())

	// feed-1 sits at the view center.
	h.engine.Surface().Click(640, 360)
	if !h.engine.Selection().Open() {
		t.Fatal("expected open panel after marker click")
	}
	if sel := h.engine.Selection().Selected(); sel == nil || sel.ID != "feed-1" {
		t.Fatalf("unexpected selection: %+v", sel)
	}
}

func TestOnRenderHookReceivesFeatures(t *testing.T) {
	h := newTestHarness(t, models.UserLocation{Latitude: -1.2921, Longitude: 36.7758})

	var last []markers.Feature
	h.engine.OnRender(func(features []markers.Feature) { last = features })
	h.engine.Start(context.Background())

	if len(last) != 3 {
		t.Fatalf("expected hook to receive the rendered set, got %d", len(last))
	}
}
