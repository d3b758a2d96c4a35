package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"pamojaBack/internal/mapengine/geo"
	"pamojaBack/internal/models"
)

const maxErrorLen = 120

// Logger is the minimal logger required by the engine.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Backend resolves a free-text query against the platform backend.
type Backend interface {
	Search(ctx context.Context, query, column string) ([]models.GeoEntity, error)
}

// Framer is the subset of the map surface needed to auto-frame results.
type Framer interface {
	Recenter(lon, lat, zoom float64)
	FitBounds(b geo.Bounds, paddingPx, durationMs int)
}

// Options tune the engine. Zero values fall back to the defaults used by the
// admin map.
type Options struct {
	Debounce        time.Duration
	SingleHitZoom   float64
	ExtentMarginDeg float64
	FitPaddingPx    int
	FitDurationMs   int
}

func (o *Options) applyDefaults() {
	if o.Debounce <= 0 {
		o.Debounce = 300 * time.Millisecond
	}
	if o.SingleHitZoom == 0 {
		o.SingleHitZoom = 15
	}
	if o.ExtentMarginDeg == 0 {
		o.ExtentMarginDeg = 0.01
	}
	if o.FitPaddingPx == 0 {
		o.FitPaddingPx = 50
	}
	if o.FitDurationMs == 0 {
		o.FitDurationMs = 1000
	}
}

// Engine debounces keystrokes into at most one backend request per idle
// window and keeps the latest result set. Every executed request (and every
// immediate clear) bumps a sequence number; a response whose sequence is no
// longer current is discarded, so a slow response can never overwrite newer
// state.
type Engine struct {
	backend Backend
	framer  Framer
	logger  Logger
	opts    Options

	mu        sync.Mutex
	timer     *time.Timer
	issued    uint64
	query     string
	column    string
	results   []models.GeoEntity
	searching bool
	errMsg    string
	onChange  func()
}

// NewEngine creates a search engine.
func NewEngine(backend Backend, framer Framer, logger Logger, opts Options) *Engine {
	opts.applyDefaults()
	return &Engine{backend: backend, framer: framer, logger: logger, opts: opts}
}

// SetOnChange registers a callback invoked after the result set changes.
func (e *Engine) SetOnChange(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onChange = fn
}

// Search schedules a query. A trimmed-empty query clears the results
// immediately without a request; otherwise the request fires after the
// debounce window, and any pending request from an earlier keystroke is
// cancelled.
func (e *Engine) Search(query, column string) {
	query = strings.TrimSpace(query)
	if _, ok := models.AllowedSearchColumns()[column]; !ok {
		column = models.SearchColumnAll
	}

	e.mu.Lock()
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}

	if query == "" {
		e.issued++
		e.query = ""
		e.column = column
		e.results = nil
		e.errMsg = ""
		e.searching = false
		notify := e.onChange
		e.mu.Unlock()
		if notify != nil {
			notify()
		}
		return
	}

	e.query = query
	e.column = column
	e.searching = true
	e.timer = time.AfterFunc(e.opts.Debounce, func() {
		e.execute(query, column)
	})
	e.mu.Unlock()
}

func (e *Engine) execute(query, column string) {
	e.mu.Lock()
	e.issued++
	seq := e.issued
	e.mu.Unlock()

	results, err := e.backend.Search(context.Background(), query, column)

	e.mu.Lock()
	if seq != e.issued {
		e.mu.Unlock()
		return
	}
	e.searching = false
	if err != nil {
		e.logger.Errorf("search: query %q failed: %v", query, err)
		e.results = nil
		e.errMsg = truncate(err.Error())
	} else {
		e.results = results
		e.errMsg = ""
	}
	framed := make([]models.GeoEntity, len(e.results))
	copy(framed, e.results)
	notify := e.onChange
	e.mu.Unlock()

	if err == nil && len(framed) > 0 {
		e.frame(framed)
	}
	if notify != nil {
		notify()
	}
}

// frame repositions the surface over a non-empty result set: a single hit is
// centered at street zoom, several hits are framed by their extent expanded
// by the margin.
func (e *Engine) frame(results []models.GeoEntity) {
	if e.framer == nil {
		return
	}
	if len(results) == 1 {
		if results[0].HasCoordinates() {
			e.framer.Recenter(*results[0].Longitude, *results[0].Latitude, e.opts.SingleHitZoom)
		}
		return
	}
	b, ok := geo.ExtentOf(results)
	if !ok {
		return
	}
	e.framer.FitBounds(b.Expand(e.opts.ExtentMarginDeg), e.opts.FitPaddingPx, e.opts.FitDurationMs)
}

// Results returns a copy of the current result set.
func (e *Engine) Results() []models.GeoEntity {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]models.GeoEntity, len(e.results))
	copy(out, e.results)
	return out
}

// IsSearching reports whether a request is pending or in flight.
func (e *Engine) IsSearching() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.searching
}

// ErrorMessage returns the user-facing message of the last failure, if any.
func (e *Engine) ErrorMessage() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.errMsg
}

// Query returns the last scheduled query text.
func (e *Engine) Query() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.query
}

// Close cancels any pending debounce timer.
func (e *Engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func truncate(msg string) string {
	if len(msg) > maxErrorLen {
		return msg[:maxErrorLen]
	}
	return msg
}
