package geo

import (
	"math"

	"pamojaBack/internal/models"
)

const earthRadiusKm = 6371.0

// HaversineKm returns the great-circle distance between two points in
// kilometers. Inputs are degrees.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Sin(dLon/2)*math.Sin(dLon/2)*math.Cos(lat1Rad)*math.Cos(lat2Rad)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}

// Bounds is a longitude/latitude bounding box in degrees.
type Bounds struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// CenterLon returns the horizontal center of the box.
func (b Bounds) CenterLon() float64 { return (b.MinLon + b.MaxLon) / 2 }

// CenterLat returns the vertical center of the box.
func (b Bounds) CenterLat() float64 { return (b.MinLat + b.MaxLat) / 2 }

// Expand grows the box by margin degrees on every side.
func (b Bounds) Expand(margin float64) Bounds {
	return Bounds{
		MinLon: b.MinLon - margin,
		MinLat: b.MinLat - margin,
		MaxLon: b.MaxLon + margin,
		MaxLat: b.MaxLat + margin,
	}
}

// ExtentOf computes the bounding box over all entities that carry
// coordinates. ok is false when none do.
func ExtentOf(entities []models.GeoEntity) (Bounds, bool) {
	var b Bounds
	found := false
	for _, e := range entities {
		if !e.HasCoordinates() {
			continue
		}
		lon, lat := *e.Longitude, *e.Latitude
		if !found {
			b = Bounds{MinLon: lon, MinLat: lat, MaxLon: lon, MaxLat: lat}
			found = true
			continue
		}
		if lon < b.MinLon {
			b.MinLon = lon
		}
		if lon > b.MaxLon {
			b.MaxLon = lon
		}
		if lat < b.MinLat {
			b.MinLat = lat
		}
		if lat > b.MaxLat {
			b.MaxLat = lat
		}
	}
	return b, found
}
