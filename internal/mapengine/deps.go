package mapengine

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/olivere/elastic/v7"
	"github.com/redis/go-redis/v9"

	"pamojaBack/internal/mapengine/proximity"
	"pamojaBack/internal/models"
)

// Logger provides minimal logging required by the map module.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// MapDeps groups external dependencies needed by the map module.
type MapDeps struct {
	DB         *sql.DB
	RDB        *redis.Client
	ES         *elastic.Client
	Locations  proximity.LocationProvider
	Logger     Logger
	Config     MapConfig
	HTTPClient *http.Client
	module     *moduleState
}

// Validate ensures required dependencies are provided.
func (d *MapDeps) Validate() error {
	if d.DB == nil {
		return errors.New("map deps: DB is required")
	}
	if d.RDB == nil {
		return errors.New("map deps: RDB is required")
	}
	if d.Logger == nil {
		return errors.New("map deps: Logger is required")
	}
	if d.HTTPClient == nil {
		d.HTTPClient = http.DefaultClient
	}
	if d.Locations == nil {
		d.Locations = noLocationProvider{}
	}
	return nil
}

// noLocationProvider is the default when no device location source is wired.
type noLocationProvider struct{}

func (noLocationProvider) Current(context.Context, proximity.LocateOptions) (models.UserLocation, error) {
	return models.UserLocation{}, proximity.ErrPositionUnavailable
}
