package markers

import (
	"log"
	"strings"

	"pamojaBack/internal/models"
)

// Feature type discriminators carried in click/hover payloads.
const (
	TypeProject      = "mkProject"
	TypeUserLocation = "userLocation"
)

// Style describes how a marker is drawn.
type Style struct {
	Glyph       string  `json:"glyph"`
	Color       string  `json:"color"`
	StrokeWidth float64 `json:"stroke_width"`
	OuterRing   bool    `json:"outer_ring"`
}

// Feature is one renderable point on the overlay layer.
type Feature struct {
	Type           string           `json:"type"`
	Entity         models.GeoEntity `json:"entity"`
	Lon            float64          `json:"lon"`
	Lat            float64          `json:"lat"`
	IsSearchResult bool             `json:"is_search_result,omitempty"`
	Style          Style            `json:"style"`
}

// Visibility answers whether a visibility key is currently shown.
type Visibility interface {
	IsVisible(key string) bool
}

const (
	colorProject     = "#2e7d32" // green
	colorTraining    = "#1565c0" // blue
	colorMarketplace = "#6a1b9a" // purple
	colorUnknown     = "#757575" // gray
	colorUser        = "#d32f2f"

	strokeDefault = 1.5
	strokeSearch  = 3.0
)

// Build maps the active entity list to overlay features. It is a pure
// transform: entities without coordinates or with a hidden visibility key are
// dropped, and when a user location is present its marker is appended last,
// ignoring the visibility filter.
func Build(entities []models.GeoEntity, vis Visibility, isSearchResult bool, userLoc *models.UserLocation) []Feature {
	features := make([]Feature, 0, len(entities)+1)
	for _, e := range entities {
		if !e.HasCoordinates() {
			log.Printf("markers: skip %s %s without coordinates", e.Source, e.ID)
			continue
		}
		if vis != nil && !vis.IsVisible(e.VisibilityKey()) {
			continue
		}
		st := styleFor(e)
		if isSearchResult {
			st.OuterRing = true
			st.StrokeWidth = strokeSearch
		}
		features = append(features, Feature{
			Type:           TypeProject,
			Entity:         e,
			Lon:            *e.Longitude,
			Lat:            *e.Latitude,
			IsSearchResult: isSearchResult,
			Style:          st,
		})
	}
	if userLoc != nil {
		features = append(features, Feature{
			Type: TypeUserLocation,
			Lon:  userLoc.Longitude,
			Lat:  userLoc.Latitude,
			Style: Style{
				Glyph:       "crosshair",
				Color:       colorUser,
				StrokeWidth: strokeDefault,
			},
		})
	}
	return features
}

func styleFor(e models.GeoEntity) Style {
	switch e.Source {
	case models.SourceMarketplaceUser:
		role := strings.ToLower(e.Category)
		switch {
		case strings.Contains(role, "farmer"):
			return Style{Glyph: "tractor", Color: "#33691e", StrokeWidth: strokeDefault}
		case strings.Contains(role, "vet"):
			return Style{Glyph: "stethoscope", Color: "#00838f", StrokeWidth: strokeDefault}
		case strings.Contains(role, "input"), strings.Contains(role, "supplier"):
			return Style{Glyph: "warehouse", Color: "#ef6c00", StrokeWidth: strokeDefault}
		case strings.Contains(role, "buyer"):
			return Style{Glyph: "cart", Color: "#4527a0", StrokeWidth: strokeDefault}
		case strings.Contains(role, "consultant"):
			return Style{Glyph: "briefcase", Color: "#283593", StrokeWidth: strokeDefault}
		}
		return Style{Glyph: "pin", Color: colorMarketplace, StrokeWidth: strokeDefault}
	case models.SourceProject:
		return Style{Glyph: "pin", Color: colorProject, StrokeWidth: strokeDefault}
	case models.SourceTrainingEvent:
		return Style{Glyph: "pin", Color: colorTraining, StrokeWidth: strokeDefault}
	}
	return Style{Glyph: "pin", Color: colorUnknown, StrokeWidth: strokeDefault}
}
