package markers

import (
	"testing"

	"pamojaBack/internal/models"
)

type stubVisibility map[string]bool

func (v stubVisibility) IsVisible(key string) bool {
	on, ok := v[key]
	if !ok {
		return true
	}
	return on
}

func f(v float64) *float64 { return &v }

func entity(id, source, category string) models.GeoEntity {
	return models.GeoEntity{ID: id, Source: source, Category: category, Latitude: f(-1.29), Longitude: f(36.78)}
}

func TestBuildDropsHiddenAndCoordless(t *testing.T) {
	entities := []models.GeoEntity{
		entity("1", models.SourceProject, ""),
		entity("2", models.SourceTrainingEvent, ""),
		{ID: "3", Source: models.SourceProject}, // no coordinates
	}
	vis := stubVisibility{"training_event": false}

	features := Build(entities, vis, false, nil)
	if len(features) != 1 {
		t.Fatalf("expected one feature, got %d", len(features))
	}
	if features[0].Entity.ID != "1" || features[0].Type != TypeProject {
		t.Fatalf("unexpected feature: %+v", features[0])
	}
}

func TestBuildSearchStyling(t *testing.T) {
	features := Build([]models.GeoEntity{entity("1", models.SourceProject, "")}, nil, true, nil)
	if len(features) != 1 {
		t.Fatalf("expected one feature, got %d", len(features))
	}
	st := features[0].Style
	if !st.OuterRing || st.StrokeWidth != strokeSearch {
		t.Fatalf("expected search emphasis, got %+v", st)
	}
	if !features[0].IsSearchResult {
		t.Fatal("expected search result flag")
	}

	plain := Build([]models.GeoEntity{entity("1", models.SourceProject, "")}, nil, false, nil)
	if plain[0].Style.OuterRing || plain[0].Style.StrokeWidth != strokeDefault {
		t.Fatalf("expected default stroke, got %+v", plain[0].Style)
	}
}

func TestBuildIconDispatch(t *testing.T) {
	cases := []struct {
		name      string
		source    string
		category  string
		wantGlyph string
		wantColor string
	}{
		{"project", models.SourceProject, "", "pin", "#2e7d32"},
		{"training", models.SourceTrainingEvent, "", "pin", "#1565c0"},
		{"farmer", models.SourceMarketplaceUser, "Dairy Farmer", "tractor", "#33691e"},
		{"vet", models.SourceMarketplaceUser, "Veterinarian", "stethoscope", "#00838f"},
		{"supplier", models.SourceMarketplaceUser, "Input Supplier", "warehouse", "#ef6c00"},
		{"buyer", models.SourceMarketplaceUser, "Produce Buyer", "cart", "#4527a0"},
		{"consultant", models.SourceMarketplaceUser, "Agri Consultant", "briefcase", "#283593"},
		{"unknown role", models.SourceMarketplaceUser, "Other", "pin", "#6a1b9a"},
		{"unknown source", "mystery", "", "pin", "#757575"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			features := Build([]models.GeoEntity{entity("1", tc.source, tc.category)}, nil, false, nil)
			st := features[0].Style
			if st.Glyph != tc.wantGlyph || st.Color != tc.wantColor {
				t.Fatalf("expected %s/%s, got %s/%s", tc.wantGlyph, tc.wantColor, st.Glyph, st.Color)
			}
		})
	}
}

func TestBuildUserMarkerIgnoresFilter(t *testing.T) {
	vis := stubVisibility{"project": false}
	loc := &models.UserLocation{Latitude: -1.2921, Longitude: 36.7758}

	features := Build([]models.GeoEntity{entity("1", models.SourceProject, "")}, vis, false, loc)
	if len(features) != 1 {
		t.Fatalf("expected only the user marker, got %d features", len(features))
	}
	user := features[len(features)-1]
	if user.Type != TypeUserLocation || user.Style.Glyph != "crosshair" {
		t.Fatalf("unexpected user marker: %+v", user)
	}
	if user.Lon != 36.7758 || user.Lat != -1.2921 {
		t.Fatalf("unexpected user position: %f %f", user.Lon, user.Lat)
	}
}
