package services

import (
	"context"
	"errors"
	"testing"

	"pamojaBack/internal/models"
)

type stubStore struct {
	results []models.GeoEntity
	query   string
	column  string
	calls   int
}

func (s *stubStore) Search(ctx context.Context, query, column string) ([]models.GeoEntity, error) {
	s.calls++
	s.query, s.column = query, column
	return s.results, nil
}

func TestSearchRejectsUnknownColumn(t *testing.T) {
	store := &stubStore{}
	svc := &MapService{Store: store}

	_, err := svc.Search(context.Background(), "borehole", "password")
	if !errors.Is(err, models.ErrInvalidSearchColumn) {
		t.Fatalf("expected ErrInvalidSearchColumn, got %v", err)
	}
	if store.calls != 0 {
		t.Fatal("invalid column must not reach the store")
	}
}

func TestSearchPrefersConfiguredStore(t *testing.T) {
	store := &stubStore{results: []models.GeoEntity{{ID: "1", Source: models.SourceProject}}}
	svc := &MapService{Store: store}

	got, err := svc.Search(context.Background(), "borehole", models.SearchColumnName)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(got) != 1 || store.calls != 1 {
		t.Fatalf("expected store-backed result, got %d results, %d calls", len(got), store.calls)
	}
	if store.query != "borehole" || store.column != models.SearchColumnName {
		t.Fatalf("unexpected store call: %q %q", store.query, store.column)
	}
}
