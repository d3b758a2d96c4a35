package selection

import (
	"sync"

	"pamojaBack/internal/mapengine/markers"
	"pamojaBack/internal/models"
)

// Panel tabs.
const (
	TabInfo     = "info"
	TabLocation = "location"
)

// Panel holds at most one selected entity and the side panel state.
// Closing the panel keeps the selection, so reopening shows the last
// selected entity; that is deliberate.
type Panel struct {
	mu       sync.Mutex
	open     bool
	selected *models.GeoEntity
	tab      string
}

// NewPanel creates a closed panel with no selection.
func NewPanel() *Panel {
	return &Panel{tab: TabInfo}
}

// HandleClick reacts to a map click event: only entity markers select;
// clicks on empty map or the user-location marker are ignored.
func (p *Panel) HandleClick(f *markers.Feature) {
	if f == nil || f.Type != markers.TypeProject {
		return
	}
	p.Select(f.Entity)
}

// Select stores the entity and always opens the panel.
func (p *Panel) Select(e models.GeoEntity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	entity := e
	p.selected = &entity
	p.open = true
	p.tab = TabInfo
}

// Close hides the panel without clearing the selection.
func (p *Panel) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = false
}

// Open reports whether the panel is shown.
func (p *Panel) Open() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.open
}

// Selected returns a copy of the current selection, or nil.
func (p *Panel) Selected() *models.GeoEntity {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.selected == nil {
		return nil
	}
	e := *p.selected
	return &e
}

// SetTab switches between the info and location tabs.
func (p *Panel) SetTab(tab string) {
	if tab != TabInfo && tab != TabLocation {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tab = tab
}

// ActiveTab returns the visible tab.
func (p *Panel) ActiveTab() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tab
}
