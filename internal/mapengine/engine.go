package mapengine

import (
	"context"

	"pamojaBack/internal/mapengine/feed"
	"pamojaBack/internal/mapengine/markers"
	"pamojaBack/internal/mapengine/proximity"
	"pamojaBack/internal/mapengine/search"
	"pamojaBack/internal/mapengine/selection"
	"pamojaBack/internal/mapengine/surface"
	"pamojaBack/internal/mapengine/visibility"
	"pamojaBack/internal/models"
)

// Engine ties the map components together and reconciles their overlapping
// state dimensions into a single rendered feature set. Rendering always
// replaces the whole overlay; the engine is the only writer.
type Engine struct {
	logger     Logger
	surface    *surface.Surface
	feed       *feed.Loader
	search     *search.Engine
	proximity  *proximity.Engine
	visibility *visibility.Filter
	selection  *selection.Panel

	onRender []func([]markers.Feature)
}

func newEngine(logger Logger, surf *surface.Surface, loader *feed.Loader, searchEng *search.Engine, prox *proximity.Engine, filter *visibility.Filter, panel *selection.Panel) *Engine {
	e := &Engine{
		logger:     logger,
		surface:    surf,
		feed:       loader,
		search:     searchEng,
		proximity:  prox,
		visibility: filter,
		selection:  panel,
	}
	searchEng.SetOnChange(func() { e.Render() })
	prox.SetOnChange(func() { e.Render() })
	surf.OnClick(func(ev surface.Event) { panel.HandleClick(ev.Feature) })
	return e
}

// Start loads the entity feed once and renders the initial marker set.
func (e *Engine) Start(ctx context.Context) {
	e.feed.Load(ctx)
	e.Render()
}

// ActiveSet resolves the display precedence: near-me results when the mode
// is on and non-empty, else search results when non-empty, else the full
// feed. The same set drives both markers and legend counts.
func (e *Engine) ActiveSet() []models.GeoEntity {
	active, _ := e.activeSet()
	return active
}

func (e *Engine) activeSet() ([]models.GeoEntity, bool) {
	if e.proximity.Active() {
		if nearMe := e.proximity.Results(); len(nearMe) > 0 {
			return nearMe, false
		}
	}
	if results := e.search.Results(); len(results) > 0 {
		return results, true
	}
	return e.feed.Entities(), false
}

// Render rebuilds the overlay from the active set: previously added markers
// are dropped wholesale and the new feature set, plus the user-location
// marker when a position is cached, replaces them.
func (e *Engine) Render() []markers.Feature {
	active, isSearch := e.activeSet()
	features := markers.Build(active, e.visibility, isSearch, e.proximity.Location())
	e.surface.SetOverlay(features)
	for _, fn := range e.onRender {
		fn(features)
	}
	return features
}

// OnRender registers a hook receiving every rendered feature set.
func (e *Engine) OnRender(fn func([]markers.Feature)) {
	e.onRender = append(e.onRender, fn)
}

// LegendCounts returns per-key counts over the active set and the grand
// total across visible keys.
func (e *Engine) LegendCounts() (map[string]int, int) {
	return e.visibility.CountVisible(e.ActiveSet())
}

// ToggleCategory flips one legend toggle and re-renders.
func (e *Engine) ToggleCategory(key string) {
	e.visibility.Toggle(key)
	e.Render()
}

// SelectAllCategories shows every known category and re-renders.
func (e *Engine) SelectAllCategories() {
	e.visibility.SelectAll()
	e.Render()
}

// DeselectAllCategories hides every known category and re-renders.
func (e *Engine) DeselectAllCategories() {
	e.visibility.DeselectAll()
	e.Render()
}

// Reload refetches the feed, keeping existing visibility toggles, and
// re-renders.
func (e *Engine) Reload(ctx context.Context) {
	e.feed.Load(ctx)
	e.Render()
}

// Surface returns the map surface.
func (e *Engine) Surface() *surface.Surface { return e.surface }

// Feed returns the entity feed loader.
func (e *Engine) Feed() *feed.Loader { return e.feed }

// Search returns the search engine.
func (e *Engine) Search() *search.Engine { return e.search }

// Proximity returns the near-me engine.
func (e *Engine) Proximity() *proximity.Engine { return e.proximity }

// Visibility returns the category filter.
func (e *Engine) Visibility() *visibility.Filter { return e.visibility }

// Selection returns the detail panel state.
func (e *Engine) Selection() *selection.Panel { return e.selection }

// Close cancels pending timers and tears the surface down.
func (e *Engine) Close() {
	e.search.Close()
	e.surface.Close()
}
