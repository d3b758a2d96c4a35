package feed

import (
	"context"
	"sync"

	"pamojaBack/internal/models"
)

// Logger is the minimal logger required by the loader.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// Client fetches the full mappable entity snapshot.
type Client interface {
	FetchAll(ctx context.Context) ([]models.GeoEntity, error)
}

// KeyRegistry receives the visibility keys discovered in a snapshot.
type KeyRegistry interface {
	EnsureKeys(entities []models.GeoEntity)
}

// Loader holds the canonical entity feed. A failed load degrades to an empty
// feed: logged, never surfaced, no retry (a manual reload re-runs Load).
type Loader struct {
	client Client
	keys   KeyRegistry
	logger Logger

	mu       sync.Mutex
	entities []models.GeoEntity
	loaded   bool
}

// NewLoader creates a loader.
func NewLoader(client Client, keys KeyRegistry, logger Logger) *Loader {
	return &Loader{client: client, keys: keys, logger: logger}
}

// Load fetches the snapshot and registers its visibility keys. On any
// failure the feed becomes empty and the error is only logged.
func (l *Loader) Load(ctx context.Context) []models.GeoEntity {
	entities, err := l.client.FetchAll(ctx)
	if err != nil {
		l.logger.Errorf("feed: load failed: %v", err)
		entities = nil
	} else {
		l.logger.Infof("feed: loaded %d entities", len(entities))
	}

	l.mu.Lock()
	l.entities = entities
	l.loaded = true
	l.mu.Unlock()

	if err == nil && l.keys != nil {
		l.keys.EnsureKeys(entities)
	}
	return l.Entities()
}

// Entities returns a copy of the current feed snapshot.
func (l *Loader) Entities() []models.GeoEntity {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.GeoEntity, len(l.entities))
	copy(out, l.entities)
	return out
}

// Loaded reports whether Load has completed at least once.
func (l *Loader) Loaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loaded
}
