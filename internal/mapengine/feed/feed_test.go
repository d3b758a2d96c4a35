package feed

import (
	"context"
	"errors"
	"testing"

	"pamojaBack/internal/models"
)

type testLogger struct{}

func (testLogger) Infof(string, ...interface{})  {}
func (testLogger) Errorf(string, ...interface{}) {}

type stubClient struct {
	entities []models.GeoEntity
	err      error
	calls    int
}

func (s *stubClient) FetchAll(ctx context.Context) ([]models.GeoEntity, error) {
	s.calls++
	return s.entities, s.err
}

type stubRegistry struct {
	ensured [][]models.GeoEntity
}

func (s *stubRegistry) EnsureKeys(entities []models.GeoEntity) {
	s.ensured = append(s.ensured, entities)
}

func TestLoadRegistersKeys(t *testing.T) {
	client := &stubClient{entities: []models.GeoEntity{{ID: "1", Source: models.SourceProject}}}
	registry := &stubRegistry{}
	l := NewLoader(client, registry, testLogger{})

	if l.Loaded() {
		t.Fatal("expected unloaded loader")
	}
	got := l.Load(context.Background())
	if len(got) != 1 || !l.Loaded() {
		t.Fatalf("expected one entity after load, got %d loaded=%v", len(got), l.Loaded())
	}
	if len(registry.ensured) != 1 {
		t.Fatalf("expected one key registration, got %d", len(registry.ensured))
	}
}

func TestLoadFailureDegradesToEmpty(t *testing.T) {
	client := &stubClient{err: errors.New("backend down")}
	registry := &stubRegistry{}
	l := NewLoader(client, registry, testLogger{})

	got := l.Load(context.Background())
	if len(got) != 0 {
		t.Fatalf("expected empty feed on failure, got %d", len(got))
	}
	if !l.Loaded() {
		t.Fatal("a failed load still counts as loaded")
	}
	if len(registry.ensured) != 0 {
		t.Fatal("failed load must not register keys")
	}

	// A later reload recovers.
	client.err = nil
	client.entities = []models.GeoEntity{{ID: "1", Source: models.SourceProject}}
	if got = l.Load(context.Background()); len(got) != 1 {
		t.Fatalf("expected recovery on reload, got %d", len(got))
	}
}
