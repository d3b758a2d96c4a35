package visibility

import (
	"sort"
	"sync"

	"pamojaBack/internal/models"
)

// Filter keeps one boolean per visibility key, independent of the search and
// near-me state. Keys are discovered from the feed; unknown keys default to
// visible.
type Filter struct {
	mu      sync.Mutex
	visible map[string]bool
}

// NewFilter creates an empty filter.
func NewFilter() *Filter {
	return &Filter{visible: make(map[string]bool)}
}

// EnsureKeys unions the keys present in the entity list into the filter.
// New keys default to visible; booleans of existing keys are preserved, so a
// feed reload never loses the user's toggle choices.
func (f *Filter) EnsureKeys(entities []models.GeoEntity) {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := make(map[string]bool, len(f.visible))
	for key, on := range f.visible {
		next[key] = on
	}
	for _, e := range entities {
		key := e.VisibilityKey()
		if _, ok := next[key]; !ok {
			next[key] = true
		}
	}
	f.visible = next
}

// Toggle flips one key's boolean.
func (f *Filter) Toggle(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := make(map[string]bool, len(f.visible))
	for k, on := range f.visible {
		next[k] = on
	}
	current, ok := next[key]
	if !ok {
		current = true
	}
	next[key] = !current
	f.visible = next
}

// SelectAll marks every currently known key visible.
func (f *Filter) SelectAll() {
	f.setAll(true)
}

// DeselectAll marks every currently known key hidden.
func (f *Filter) DeselectAll() {
	f.setAll(false)
}

func (f *Filter) setAll(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	next := make(map[string]bool, len(f.visible))
	for key := range f.visible {
		next[key] = on
	}
	f.visible = next
}

// IsVisible reports whether a key is shown. Keys not yet discovered default
// to visible.
func (f *Filter) IsVisible(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	on, ok := f.visible[key]
	if !ok {
		return true
	}
	return on
}

// Keys returns the known keys in stable order, for legend rows.
func (f *Filter) Keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.visible))
	for key := range f.visible {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// CountVisible counts, per key, how many entities in the active display set
// match that key and carry coordinates. The grand total sums only keys whose
// boolean is true.
func (f *Filter) CountVisible(active []models.GeoEntity) (map[string]int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	perKey := make(map[string]int, len(f.visible))
	total := 0
	for _, e := range active {
		if !e.HasCoordinates() {
			continue
		}
		key := e.VisibilityKey()
		perKey[key]++
		on, ok := f.visible[key]
		if !ok {
			on = true
		}
		if on {
			total++
		}
	}
	return perKey, total
}
