package surface

import (
	"math"
	"sync"

	"pamojaBack/internal/mapengine/geo"
	"pamojaBack/internal/mapengine/markers"
)

// Base layer names. Exactly one is visible at a time.
const (
	LayerOSM       = "osm"
	LayerSatellite = "satellite"
	LayerTerrain   = "terrain"
)

const (
	tileSizePx        = 256
	mercatorRadius    = 6378137.0
	originShift       = math.Pi * mercatorRadius
	initialResolution = 2 * math.Pi * mercatorRadius / tileSizePx

	minZoom = 0
	maxZoom = 19

	hitRadiusPx = 10.0
)

// View is the rendered viewport state: center in degrees plus zoom level.
type View struct {
	CenterLon float64
	CenterLat float64
	Zoom      float64
}

// Motion records the last animated transition, for clients that replay it.
type Motion struct {
	DurationMs int
	PaddingPx  int
}

// Event is delivered to click and pointer-move listeners. Feature is nil when
// nothing is under the cursor.
type Event struct {
	Feature *markers.Feature
}

// Surface models the tiled map viewport: three mutually exclusive base
// layers, one overlay layer holding all point markers, and the current view.
// All mutation goes through its methods under one lock, so the overlay is
// only ever replaced wholesale.
type Surface struct {
	mu sync.Mutex

	widthPx  int
	heightPx int

	baseLayers     map[string]bool
	overlayVisible bool
	overlay        []markers.Feature

	view       View
	lastMotion Motion

	clickListeners []func(Event)
	moveListeners  []func(Event)

	closed bool
}

// New creates a surface with the given viewport size and initial view.
func New(widthPx, heightPx int, initial View) *Surface {
	if widthPx <= 0 {
		widthPx = 1280
	}
	if heightPx <= 0 {
		heightPx = 720
	}
	return &Surface{
		widthPx:  widthPx,
		heightPx: heightPx,
		baseLayers: map[string]bool{
			LayerOSM:       true,
			LayerSatellite: false,
			LayerTerrain:   false,
		},
		overlayVisible: true,
		view:           initial,
	}
}

// SetBaseLayer makes the named base layer visible and hides the other two.
// Unknown names are a no-op.
func (s *Surface) SetBaseLayer(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.baseLayers[name]; !ok {
		return
	}
	for layer := range s.baseLayers {
		s.baseLayers[layer] = layer == name
	}
}

// BaseLayer returns the currently visible base layer.
func (s *Surface) BaseLayer() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for layer, visible := range s.baseLayers {
		if visible {
			return layer
		}
	}
	return LayerOSM
}

// SetMarkerLayerVisible toggles the overlay without touching its contents.
func (s *Surface) SetMarkerLayerVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlayVisible = visible
}

// MarkerLayerVisible reports the overlay visibility.
func (s *Surface) MarkerLayerVisible() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlayVisible
}

// Recenter repositions the view instantly, without animation.
func (s *Surface) Recenter(lon, lat, zoom float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = View{CenterLon: lon, CenterLat: lat, Zoom: clampZoom(zoom)}
	s.lastMotion = Motion{}
}

// FitBounds frames the given box with pixel padding, recording the animation
// duration for clients. The zoom is derived from the box extent against the
// padded viewport.
func (s *Surface) FitBounds(b geo.Bounds, paddingPx, durationMs int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	minX, minY := project(b.MinLon, b.MinLat)
	maxX, maxY := project(b.MaxLon, b.MaxLat)

	innerW := float64(s.widthPx - 2*paddingPx)
	innerH := float64(s.heightPx - 2*paddingPx)
	if innerW < 1 {
		innerW = float64(s.widthPx)
	}
	if innerH < 1 {
		innerH = float64(s.heightPx)
	}

	resX := (maxX - minX) / innerW
	resY := (maxY - minY) / innerH
	res := math.Max(resX, resY)

	zoom := float64(maxZoom)
	if res > 0 {
		zoom = clampZoom(math.Log2(initialResolution / res))
	}

	lon, lat := unproject((minX+maxX)/2, (minY+maxY)/2)
	s.view = View{CenterLon: lon, CenterLat: lat, Zoom: zoom}
	s.lastMotion = Motion{DurationMs: durationMs, PaddingPx: paddingPx}
}

// View returns the current viewport state.
func (s *Surface) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view
}

// LastMotion returns the parameters of the last animated transition.
func (s *Surface) LastMotion() Motion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastMotion
}

// SetOverlay replaces the whole overlay feature set. Previously added
// features are discarded first; the overlay is never patched incrementally.
func (s *Surface) SetOverlay(features []markers.Feature) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlay = nil
	s.overlay = append(s.overlay, features...)
}

// Overlay returns a copy of the current overlay feature set.
func (s *Surface) Overlay() []markers.Feature {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]markers.Feature, len(s.overlay))
	copy(out, s.overlay)
	return out
}

// OnClick registers a click listener.
func (s *Surface) OnClick(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clickListeners = append(s.clickListeners, fn)
}

// OnPointerMove registers a pointer-move listener.
func (s *Surface) OnPointerMove(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moveListeners = append(s.moveListeners, fn)
}

// Click dispatches a click at the given pixel to registered listeners.
func (s *Surface) Click(xPx, yPx float64) {
	feature, listeners := s.hitAndListeners(xPx, yPx, true)
	for _, fn := range listeners {
		fn(Event{Feature: feature})
	}
}

// PointerMove dispatches a hover at the given pixel to registered listeners.
func (s *Surface) PointerMove(xPx, yPx float64) {
	feature, listeners := s.hitAndListeners(xPx, yPx, false)
	for _, fn := range listeners {
		fn(Event{Feature: feature})
	}
}

func (s *Surface) hitAndListeners(xPx, yPx float64, click bool) (*markers.Feature, []func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var listeners []func(Event)
	if click {
		listeners = append(listeners, s.clickListeners...)
	} else {
		listeners = append(listeners, s.moveListeners...)
	}
	if s.closed {
		return nil, nil
	}
	return s.featureAtLocked(xPx, yPx), listeners
}

// FeatureAt returns the overlay feature under the pixel, or nil.
func (s *Surface) FeatureAt(xPx, yPx float64) *markers.Feature {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.featureAtLocked(xPx, yPx)
}

func (s *Surface) featureAtLocked(xPx, yPx float64) *markers.Feature {
	if !s.overlayVisible {
		return nil
	}
	var best *markers.Feature
	bestDist := hitRadiusPx
	for i := range s.overlay {
		fx, fy := s.pixelOfLocked(s.overlay[i].Lon, s.overlay[i].Lat)
		d := math.Hypot(fx-xPx, fy-yPx)
		if d <= bestDist {
			f := s.overlay[i]
			best = &f
			bestDist = d
		}
	}
	return best
}

// PixelOf projects a coordinate into viewport pixels for the current view.
func (s *Surface) PixelOf(lon, lat float64) (float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pixelOfLocked(lon, lat)
}

func (s *Surface) pixelOfLocked(lon, lat float64) (float64, float64) {
	res := initialResolution / math.Pow(2, s.view.Zoom)
	cx, cy := project(s.view.CenterLon, s.view.CenterLat)
	x, y := project(lon, lat)
	px := float64(s.widthPx)/2 + (x-cx)/res
	py := float64(s.heightPx)/2 - (y-cy)/res
	return px, py
}

// Close detaches listeners and drops the overlay. Safe to call twice.
func (s *Surface) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.clickListeners = nil
	s.moveListeners = nil
	s.overlay = nil
}

// Closed reports whether the surface has been torn down.
func (s *Surface) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func clampZoom(zoom float64) float64 {
	if zoom < minZoom {
		return minZoom
	}
	if zoom > maxZoom {
		return maxZoom
	}
	return zoom
}

// project converts degrees to Web Mercator meters (EPSG:3857).
func project(lon, lat float64) (float64, float64) {
	x := lon * originShift / 180
	y := math.Log(math.Tan((90+lat)*math.Pi/360)) / (math.Pi / 180) * originShift / 180
	return x, y
}

// unproject converts Web Mercator meters back to degrees.
func unproject(x, y float64) (float64, float64) {
	lon := x / originShift * 180
	lat := y / originShift * 180
	lat = 180 / math.Pi * (2*math.Atan(math.Exp(lat*math.Pi/180)) - math.Pi/2)
	return lon, lat
}
