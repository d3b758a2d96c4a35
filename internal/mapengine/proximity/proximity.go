package proximity

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/exp/slices"

	"pamojaBack/internal/mapengine/geo"
	"pamojaBack/internal/models"
)

// Failure modes of a location provider. Each maps to its own user-facing
// message; anything else gets the generic one.
var (
	ErrPermissionDenied    = errors.New("proximity: location permission denied")
	ErrPositionUnavailable = errors.New("proximity: position unavailable")
	ErrTimeout             = errors.New("proximity: location request timed out")
)

// User-facing messages for location failures.
const (
	MsgPermissionDenied = "Location access was denied. Enable location permissions and try again."
	MsgUnavailable      = "Your position is currently unavailable."
	MsgTimeout          = "Timed out while acquiring your location."
	MsgGeneric          = "Could not determine your location."
)

// Logger is the minimal logger required by the engine.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// LocateOptions mirror the one-shot geolocation request options.
type LocateOptions struct {
	HighAccuracy bool
	Timeout      time.Duration
	MaximumAge   time.Duration
}

// LocationProvider yields the device's current position once per call.
type LocationProvider interface {
	Current(ctx context.Context, opts LocateOptions) (models.UserLocation, error)
}

// Surface is the subset of the map surface the engine repositions.
type Surface interface {
	Recenter(lon, lat, zoom float64)
}

// Options tune the engine. Zero values fall back to the admin map defaults.
type Options struct {
	DefaultCenterLon float64
	DefaultCenterLat float64
	DefaultZoom      float64
	UserZoom         float64
	LocateTimeout    time.Duration
	LocateMaxAge     time.Duration
}

func (o *Options) applyDefaults() {
	if o.DefaultCenterLon == 0 {
		o.DefaultCenterLon = 36.7758
	}
	if o.DefaultCenterLat == 0 {
		o.DefaultCenterLat = -1.2921
	}
	if o.DefaultZoom == 0 {
		o.DefaultZoom = 10
	}
	if o.UserZoom == 0 {
		o.UserZoom = 12
	}
	if o.LocateTimeout <= 0 {
		o.LocateTimeout = 10 * time.Second
	}
	if o.LocateMaxAge <= 0 {
		o.LocateMaxAge = 5 * time.Minute
	}
}

// Engine filters the active result set to entities within a radius of the
// cached device location, sorted ascending by distance, and keeps that set
// live as the radius changes.
type Engine struct {
	provider LocationProvider
	surface  Surface
	logger   Logger
	base     func() []models.GeoEntity
	opts     Options

	mu       sync.Mutex
	location *models.UserLocation
	results  []models.GeoEntity
	radiusKm float64
	active   bool
	getting  bool
	errMsg   string
	onChange func()
}

// NewEngine creates a proximity engine. base returns the set the filter runs
// over: the current search results when present, otherwise the full feed.
func NewEngine(provider LocationProvider, surface Surface, logger Logger, base func() []models.GeoEntity, opts Options) *Engine {
	opts.applyDefaults()
	return &Engine{provider: provider, surface: surface, logger: logger, base: base, opts: opts}
}

// SetOnChange registers a callback invoked after the result set changes.
func (e *Engine) SetOnChange(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onChange = fn
}

// Locate requests the device position once, with high accuracy, the
// configured timeout and cache tolerance. The location is cached until
// Deactivate clears it.
func (e *Engine) Locate(ctx context.Context) (models.UserLocation, error) {
	e.mu.Lock()
	if e.getting {
		e.mu.Unlock()
		return models.UserLocation{}, ErrPositionUnavailable
	}
	e.getting = true
	e.errMsg = ""
	e.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, e.opts.LocateTimeout)
	defer cancel()

	loc, err := e.provider.Current(ctx, LocateOptions{
		HighAccuracy: true,
		Timeout:      e.opts.LocateTimeout,
		MaximumAge:   e.opts.LocateMaxAge,
	})

	e.mu.Lock()
	defer e.mu.Unlock()
	e.getting = false
	if err != nil {
		e.errMsg = messageFor(err)
		e.logger.Errorf("proximity: locate failed: %v", err)
		return models.UserLocation{}, err
	}
	e.location = &loc
	return loc, nil
}

// Activate turns near-me mode on for the given radius, locating the device
// first when no position is cached. The mode stays on even when zero
// entities match, so callers can report an empty radius instead of silently
// falling back. A no-op while a location request is already pending.
func (e *Engine) Activate(ctx context.Context, radiusKm float64) error {
	e.mu.Lock()
	if e.getting {
		e.mu.Unlock()
		return nil
	}
	cached := e.location != nil
	e.mu.Unlock()

	if !cached {
		if _, err := e.Locate(ctx); err != nil {
			return err
		}
	}

	e.mu.Lock()
	e.radiusKm = radiusKm
	e.active = true
	e.filterLocked()
	notify := e.onChange
	e.mu.Unlock()
	if notify != nil {
		notify()
	}
	return nil
}

// SetRadius re-runs the filter against the cached location whenever the
// radius changes while near-me mode is active. No fresh fetch and no fresh
// locate happen here.
func (e *Engine) SetRadius(radiusKm float64) {
	e.mu.Lock()
	e.radiusKm = radiusKm
	var notify func()
	if e.active && e.location != nil {
		e.filterLocked()
		notify = e.onChange
	}
	e.mu.Unlock()
	if notify != nil {
		notify()
	}
}

// Deactivate clears near-me mode, the cached results, the cached location
// and any location error, then resets the surface to the default view.
func (e *Engine) Deactivate() {
	e.mu.Lock()
	e.active = false
	e.results = nil
	e.location = nil
	e.errMsg = ""
	notify := e.onChange
	e.mu.Unlock()

	if e.surface != nil {
		e.surface.Recenter(e.opts.DefaultCenterLon, e.opts.DefaultCenterLat, e.opts.DefaultZoom)
	}
	if notify != nil {
		notify()
	}
}

// RecenterOnUser moves the view to the cached location; no-op without one.
func (e *Engine) RecenterOnUser() {
	e.mu.Lock()
	loc := e.location
	e.mu.Unlock()
	if loc == nil || e.surface == nil {
		return
	}
	e.surface.Recenter(loc.Longitude, loc.Latitude, e.opts.UserZoom)
}

// filterLocked recomputes results from the base set: entities without
// coordinates are skipped with a log note, the rest are kept when within the
// radius and sorted ascending by distance.
func (e *Engine) filterLocked() {
	if e.base == nil || e.location == nil {
		e.results = nil
		return
	}
	loc := *e.location
	base := e.base()

	out := make([]models.GeoEntity, 0, len(base))
	for _, ent := range base {
		if !ent.HasCoordinates() {
			e.logger.Infof("proximity: skip %s %s without coordinates", ent.Source, ent.ID)
			continue
		}
		d := geo.HaversineKm(loc.Latitude, loc.Longitude, *ent.Latitude, *ent.Longitude)
		if d <= e.radiusKm {
			dist := d
			ent.DistanceKm = &dist
			out = append(out, ent)
		}
	}
	slices.SortFunc(out, func(a, b models.GeoEntity) int {
		switch {
		case *a.DistanceKm < *b.DistanceKm:
			return -1
		case *a.DistanceKm > *b.DistanceKm:
			return 1
		}
		return 0
	})
	e.results = out
}

// Active reports whether near-me mode is on.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Results returns a copy of the current near-me result set.
func (e *Engine) Results() []models.GeoEntity {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.GeoEntity, len(e.results))
	copy(out, e.results)
	return out
}

// Location returns the cached device position, or nil.
func (e *Engine) Location() *models.UserLocation {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.location == nil {
		return nil
	}
	loc := *e.location
	return &loc
}

// RadiusKm returns the current radius.
func (e *Engine) RadiusKm() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.radiusKm
}

// ErrorMessage returns the user-facing message of the last locate failure.
func (e *Engine) ErrorMessage() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errMsg
}

// IsGettingLocation reports whether a locate request is pending.
func (e *Engine) IsGettingLocation() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.getting
}

func messageFor(err error) string {
	switch {
	case errors.Is(err, ErrPermissionDenied):
		return MsgPermissionDenied
	case errors.Is(err, ErrPositionUnavailable):
		return MsgUnavailable
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return MsgTimeout
	}
	return MsgGeneric
}
