package geo

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/redis/go-redis/v9"

	"pamojaBack/internal/models"
)

const entityKey = "map:entities"

// NearbyEntity is an entity returned from Redis GEO queries.
type NearbyEntity struct {
	Source string
	ID     string
	DistKm float64
	Lon    float64
	Lat    float64
}

// EntityLocator mirrors the mappable entity feed into a Redis GEO set and
// answers server-side radius queries from it.
type EntityLocator struct {
	rdb *redis.Client
}

// NewEntityLocator creates a new locator.
func NewEntityLocator(rdb *redis.Client) *EntityLocator {
	return &EntityLocator{rdb: rdb}
}

func memberName(source, id string) string {
	return fmt.Sprintf("%s:%s", source, id)
}

func parseEntityMember(member string) (string, string, error) {
	idx := strings.LastIndex(member, ":")
	if idx <= 0 || idx == len(member)-1 {
		return "", "", fmt.Errorf("invalid member %q", member)
	}
	return member[:idx], member[idx+1:], nil
}

// SyncEntities replaces the GEO set with the given feed snapshot. Entities
// without coordinates are skipped.
func (l *EntityLocator) SyncEntities(ctx context.Context, entities []models.GeoEntity) error {
	pipe := l.rdb.TxPipeline()
	pipe.Del(ctx, entityKey)
	added := 0
	for _, e := range entities {
		if !e.HasCoordinates() {
			log.Printf("geo sync: skip %s %s without coordinates", e.Source, e.ID)
			continue
		}
		pipe.GeoAdd(ctx, entityKey, &redis.GeoLocation{
			Name:      memberName(e.Source, e.ID),
			Longitude: *e.Longitude,
			Latitude:  *e.Latitude,
		})
		added++
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("geo sync: %w", err)
	}
	log.Printf("geo sync: indexed %d of %d entities", added, len(entities))
	return nil
}

// Nearby returns entities within radiusKm sorted by distance (ascending).
func (l *EntityLocator) Nearby(ctx context.Context, lon, lat, radiusKm float64, limit int) ([]NearbyEntity, error) {
	res, err := l.rdb.GeoSearchLocation(ctx, entityKey, &redis.GeoSearchLocationQuery{
		GeoSearchQuery: redis.GeoSearchQuery{
			Longitude:  lon,
			Latitude:   lat,
			Radius:     radiusKm,
			RadiusUnit: "km",
			Sort:       "ASC",
			Count:      limit,
		},
		WithCoord: true,
		WithDist:  true,
	}).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	entities := make([]NearbyEntity, 0, len(res))
	for _, item := range res {
		source, id, err := parseEntityMember(item.Name)
		if err != nil {
			log.Printf("geo nearby: skip invalid member %s: %v", item.Name, err)
			continue
		}
		entities = append(entities, NearbyEntity{
			Source: source,
			ID:     id,
			DistKm: item.Dist,
			Lon:    item.Longitude,
			Lat:    item.Latitude,
		})
	}
	return entities, nil
}
