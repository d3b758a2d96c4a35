package services

import (
	"context"
	"fmt"

	"pamojaBack/internal/models"
	"pamojaBack/internal/repositories"
)

// SearchStore resolves free-text queries; implemented by the SQL repository
// and by the Elasticsearch store.
type SearchStore interface {
	Search(ctx context.Context, query, column string) ([]models.GeoEntity, error)
}

// MapService orchestrates the map feed and search. When a Store is
// configured, search goes to Elasticsearch; otherwise it falls back to the
// SQL repository.
type MapService struct {
	Repo  *repositories.GeoEntityRepository
	Store SearchStore
}

// FetchAll returns the full mappable entity snapshot.
func (s *MapService) FetchAll(ctx context.Context) ([]models.GeoEntity, error) {
	return s.Repo.FetchAll(ctx)
}

// Search validates the column scope and runs the query against the
// configured backend.
func (s *MapService) Search(ctx context.Context, query, column string) ([]models.GeoEntity, error) {
	if _, ok := models.AllowedSearchColumns()[column]; !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidSearchColumn, column)
	}
	if s.Store != nil {
		return s.Store.Search(ctx, query, column)
	}
	return s.Repo.Search(ctx, query, column)
}
