package models

// Source values for mappable entities.
const (
	SourceProject         = "project"
	SourceTrainingEvent   = "training_event"
	SourceMarketplaceUser = "marketplace_user"
)

// GeoEntity is a point-located record eligible for mapping: a project, a
// training event or a marketplace user. Snapshots are read-only on this side;
// the backend is the only writer.
type GeoEntity struct {
	ID          string   `json:"id"`
	Source      string   `json:"source"`
	Category    string   `json:"category,omitempty"`
	Name        string   `json:"name"`
	Description *string  `json:"description,omitempty"`
	Location    *string  `json:"location,omitempty"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	DistanceKm  *float64 `json:"distance,omitempty"`
}

// HasCoordinates reports whether both coordinates are present. Entities
// missing either one are excluded from mapping and distance computation.
func (e GeoEntity) HasCoordinates() bool {
	return e.Latitude != nil && e.Longitude != nil
}

// VisibilityKey is the grouping key for show/hide toggles and legend rows:
// the source for projects and training events, source:category for
// marketplace users so each role gets its own toggle.
func (e GeoEntity) VisibilityKey() string {
	if e.Source == SourceMarketplaceUser {
		return e.Source + ":" + e.Category
	}
	return e.Source
}

// UserLocation is the device position cached per near-me activation.
type UserLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// MapLocationsResponse is the wire shape of /api/map/locations.
type MapLocationsResponse struct {
	Success bool        `json:"success"`
	Data    []GeoEntity `json:"data"`
}

// Search columns accepted by the locations endpoint.
const (
	SearchColumnAll      = "all"
	SearchColumnName     = "name"
	SearchColumnCategory = "category"
	SearchColumnLocation = "location"
)

// AllowedSearchColumns returns the set of valid column scopes.
func AllowedSearchColumns() map[string]struct{} {
	return map[string]struct{}{
		SearchColumnAll:      {},
		SearchColumnName:     {},
		SearchColumnCategory: {},
		SearchColumnLocation: {},
	}
}
