package proximity

import (
	"context"
	"sync"
	"testing"

	"pamojaBack/internal/models"
)

type testLogger struct{}

func (testLogger) Infof(string, ...interface{})  {}
func (testLogger) Errorf(string, ...interface{}) {}

type stubProvider struct {
	loc models.UserLocation
	err error
}

func (s *stubProvider) Current(ctx context.Context, opts LocateOptions) (models.UserLocation, error) {
	return s.loc, s.err
}

type stubSurface struct {
	mu        sync.Mutex
	recenters int
	lastLon   float64
	lastLat   float64
	lastZoom  float64
}

func (s *stubSurface) Recenter(lon, lat, zoom float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recenters++
	s.lastLon, s.lastLat, s.lastZoom = lon, lat, zoom
}

// The device sits at the default center; offsets are chosen along the
// meridian so one entity lands about 3 km away and one about 15 km away.
var deviceLoc = models.UserLocation{Latitude: -1.2921, Longitude: 36.7758}

func testBase() []models.GeoEntity {
	return []models.GeoEntity{
		{ID: "far", Source: models.SourceProject, Latitude: f(-1.2921 + 0.135), Longitude: f(36.7758)},
		{ID: "near", Source: models.SourceProject, Latitude: f(-1.2921 + 0.027), Longitude: f(36.7758)},
		{ID: "nocoords", Source: models.SourceProject},
	}
}

func f(v float64) *float64 { return &v }

func TestActivateFiltersAndSorts(t *testing.T) {
	e := NewEngine(&stubProvider{loc: deviceLoc}, &stubSurface{}, testLogger{}, testBase, Options{})

	if err := e.Activate(context.Background(), 10); err != nil {
		t.Fatalf("activate failed: %v", err)
	}
	if !e.Active() {
		t.Fatal("expected near-me mode on")
	}

	results := e.Results()
	if len(results) != 1 || results[0].ID != "near" {
		t.Fatalf("expected only the 3 km entity, got %+v", results)
	}
	if results[0].DistanceKm == nil || *results[0].DistanceKm < 2.9 || *results[0].DistanceKm > 3.1 {
		t.Fatalf("unexpected distance: %+v", results[0].DistanceKm)
	}

	// Widening the radius brings the far entity in, sorted ascending.
	e.SetRadius(20)
	results = e.Results()
	if len(results) != 2 || results[0].ID != "near" || results[1].ID != "far" {
		t.Fatalf("expected ascending distances, got %+v", results)
	}
}

func TestSetRadiusShrinkToEmptyKeepsModeOn(t *testing.T) {
	e := NewEngine(&stubProvider{loc: deviceLoc}, &stubSurface{}, testLogger{}, testBase, Options{})
	if err := e.Activate(context.Background(), 10); err != nil {
		t.Fatalf("activate failed: %v", err)
	}

	e.SetRadius(1)
	if len(e.Results()) != 0 {
		t.Fatalf("expected empty results at 1 km, got %d", len(e.Results()))
	}
	if !e.Active() {
		t.Fatal("empty radius must not turn the mode off")
	}
}

func TestDeactivateResetsView(t *testing.T) {
	surf := &stubSurface{}
	e := NewEngine(&stubProvider{loc: deviceLoc}, surf, testLogger{}, testBase, Options{})
	if err := e.Activate(context.Background(), 10); err != nil {
		t.Fatalf("activate failed: %v", err)
	}

	e.Deactivate()
	if e.Active() || e.Location() != nil || len(e.Results()) != 0 || e.ErrorMessage() != "" {
		t.Fatal("expected fully cleared state")
	}

	surf.mu.Lock()
	defer surf.mu.Unlock()
	if surf.recenters != 1 {
		t.Fatalf("expected one recenter, got %d", surf.recenters)
	}
	if surf.lastLon != 36.7758 || surf.lastLat != -1.2921 || surf.lastZoom != 10 {
		t.Fatalf("expected default view, got lon=%f lat=%f zoom=%f", surf.lastLon, surf.lastLat, surf.lastZoom)
	}
}

func TestRecenterOnUser(t *testing.T) {
	surf := &stubSurface{}
	e := NewEngine(&stubProvider{loc: deviceLoc}, surf, testLogger{}, testBase, Options{})

	e.RecenterOnUser() // no cached location yet
	surf.mu.Lock()
	if surf.recenters != 0 {
		surf.mu.Unlock()
		t.Fatal("expected no recenter without a location")
	}
	surf.mu.Unlock()

	if _, err := e.Locate(context.Background()); err != nil {
		t.Fatalf("locate failed: %v", err)
	}
	e.RecenterOnUser()

	surf.mu.Lock()
	defer surf.mu.Unlock()
	if surf.recenters != 1 || surf.lastZoom != 12 {
		t.Fatalf("expected user recenter at zoom 12, got recenters=%d zoom=%f", surf.recenters, surf.lastZoom)
	}
}

func TestLocateErrorMessages(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"permission denied", ErrPermissionDenied, MsgPermissionDenied},
		{"unavailable", ErrPositionUnavailable, MsgUnavailable},
		{"timeout", ErrTimeout, MsgTimeout},
		{"deadline", context.DeadlineExceeded, MsgTimeout},
		{"other", context.Canceled, MsgGeneric},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEngine(&stubProvider{err: tc.err}, &stubSurface{}, testLogger{}, testBase, Options{})
			if _, err := e.Locate(context.Background()); err == nil {
				t.Fatal("expected an error")
			}
			if got := e.ErrorMessage(); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
			if e.Location() != nil {
				t.Fatal("expected no cached location after failure")
			}
		})
	}
}

func TestActivateFailsWithoutLocation(t *testing.T) {
	e := NewEngine(&stubProvider{err: ErrPermissionDenied}, &stubSurface{}, testLogger{}, testBase, Options{})
	if err := e.Activate(context.Background(), 10); err == nil {
		t.Fatal("expected activate to fail when locate fails")
	}
	if e.Active() {
		t.Fatal("mode must stay off after a locate failure")
	}
}
