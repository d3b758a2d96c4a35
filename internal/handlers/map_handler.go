package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"pamojaBack/internal/mapengine/geo"
	"pamojaBack/internal/models"
	"pamojaBack/internal/services"
)

// MapHandler exposes the map locations endpoints consumed by the admin map.
type MapHandler struct {
	Service *services.MapService
	Locator *geo.EntityLocator
}

// GetMapLocations returns the full feed, or a server-filtered subset when a
// search parameter is present.
func (h *MapHandler) GetMapLocations(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("search"))

	var entities []models.GeoEntity
	var err error
	if query == "" {
		entities, err = h.Service.FetchAll(r.Context())
	} else {
		column := r.URL.Query().Get("column")
		if column == "" {
			column = models.SearchColumnAll
		}
		entities, err = h.Service.Search(r.Context(), query, column)
		if errors.Is(err, models.ErrInvalidSearchColumn) {
			http.Error(w, "Invalid column", http.StatusBadRequest)
			return
		}
	}
	if err != nil {
		http.Error(w, "Failed to fetch map locations", http.StatusInternalServerError)
		return
	}

	if entities == nil {
		entities = []models.GeoEntity{}
	}
	_ = json.NewEncoder(w).Encode(models.MapLocationsResponse{Success: true, Data: entities})
}

// GetNearbyLocations answers a server-side radius query from the Redis GEO
// mirror, sorted ascending by distance.
func (h *MapHandler) GetNearbyLocations(w http.ResponseWriter, r *http.Request) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLon != nil {
		http.Error(w, "lat and lon are required", http.StatusBadRequest)
		return
	}
	radiusKm := 10.0
	if v := r.URL.Query().Get("radius_km"); v != "" {
		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil || parsed <= 0 {
			http.Error(w, "Invalid radius_km", http.StatusBadRequest)
			return
		}
		radiusKm = parsed
	}

	nearby, err := h.Locator.Nearby(r.Context(), lon, lat, radiusKm, 500)
	if err != nil {
		http.Error(w, "Failed to query nearby locations", http.StatusInternalServerError)
		return
	}

	entities, err := h.Service.FetchAll(r.Context())
	if err != nil {
		http.Error(w, "Failed to fetch map locations", http.StatusInternalServerError)
		return
	}
	byMember := make(map[string]models.GeoEntity, len(entities))
	for _, e := range entities {
		byMember[e.Source+":"+e.ID] = e
	}

	result := make([]models.GeoEntity, 0, len(nearby))
	for _, n := range nearby {
		e, ok := byMember[n.Source+":"+n.ID]
		if !ok {
			continue
		}
		dist := n.DistKm
		e.DistanceKm = &dist
		result = append(result, e)
	}
	_ = json.NewEncoder(w).Encode(models.MapLocationsResponse{Success: true, Data: result})
}
