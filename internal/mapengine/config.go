package mapengine

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

const (
	defaultCenterLon       = 36.7758
	defaultCenterLat       = -1.2921
	defaultZoom            = 10.0
	defaultSearchDebounce  = 300 * time.Millisecond
	defaultSearchZoom      = 15.0
	defaultFitPaddingPx    = 50
	defaultFitDurationMs   = 1000
	defaultExtentMarginDeg = 0.01
	defaultLocateTimeout   = 10 * time.Second
	defaultLocateMaxAge    = 5 * time.Minute
	defaultUserZoom        = 12.0
	defaultRadiusKm        = 10.0
	defaultViewportWidth   = 1280
	defaultViewportHeight  = 720
	defaultFeedRefresh     = 5 * time.Minute
)

// MapConfig holds runtime configuration for the map module.
type MapConfig struct {
	DefaultCenterLon float64
	DefaultCenterLat float64
	DefaultZoom      float64
	SearchDebounce   time.Duration
	SearchZoom       float64
	FitPaddingPx     int
	FitDurationMs    int
	ExtentMarginDeg  float64
	LocateTimeout    time.Duration
	LocateMaxAge     time.Duration
	UserZoom         float64
	DefaultRadiusKm  float64
	ViewportWidthPx  int
	ViewportHeightPx int
	ElasticIndex     string
	FeedRefresh      time.Duration
}

// LoadMapConfig reads configuration from environment variables and applies
// defaults.
func LoadMapConfig() (MapConfig, error) {
	cfg := MapConfig{
		DefaultCenterLon: defaultCenterLon,
		DefaultCenterLat: defaultCenterLat,
		DefaultZoom:      defaultZoom,
		SearchDebounce:   defaultSearchDebounce,
		SearchZoom:       defaultSearchZoom,
		FitPaddingPx:     defaultFitPaddingPx,
		FitDurationMs:    defaultFitDurationMs,
		ExtentMarginDeg:  defaultExtentMarginDeg,
		LocateTimeout:    defaultLocateTimeout,
		LocateMaxAge:     defaultLocateMaxAge,
		UserZoom:         defaultUserZoom,
		DefaultRadiusKm:  defaultRadiusKm,
		ViewportWidthPx:  defaultViewportWidth,
		ViewportHeightPx: defaultViewportHeight,
		ElasticIndex:     "map_locations",
		FeedRefresh:      defaultFeedRefresh,
	}

	if v, err := readFloatEnv("MAP_CENTER_LON"); err != nil {
		return MapConfig{}, fmt.Errorf("parse MAP_CENTER_LON: %w", err)
	} else if v != nil {
		cfg.DefaultCenterLon = *v
	}

	if v, err := readFloatEnv("MAP_CENTER_LAT"); err != nil {
		return MapConfig{}, fmt.Errorf("parse MAP_CENTER_LAT: %w", err)
	} else if v != nil {
		cfg.DefaultCenterLat = *v
	}

	if v, err := readFloatEnv("MAP_DEFAULT_ZOOM"); err != nil {
		return MapConfig{}, fmt.Errorf("parse MAP_DEFAULT_ZOOM: %w", err)
	} else if v != nil {
		cfg.DefaultZoom = *v
	}

	if v := os.Getenv("MAP_SEARCH_DEBOUNCE_MS"); v != "" {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return MapConfig{}, fmt.Errorf("parse MAP_SEARCH_DEBOUNCE_MS: %w", err)
		}
		cfg.SearchDebounce = time.Duration(ms) * time.Millisecond
	}

	if v, err := readFloatEnv("MAP_DEFAULT_RADIUS_KM"); err != nil {
		return MapConfig{}, fmt.Errorf("parse MAP_DEFAULT_RADIUS_KM: %w", err)
	} else if v != nil {
		cfg.DefaultRadiusKm = *v
	}

	if v, err := readIntEnv("MAP_VIEWPORT_WIDTH"); err != nil {
		return MapConfig{}, fmt.Errorf("parse MAP_VIEWPORT_WIDTH: %w", err)
	} else if v != nil {
		cfg.ViewportWidthPx = *v
	}

	if v, err := readIntEnv("MAP_VIEWPORT_HEIGHT"); err != nil {
		return MapConfig{}, fmt.Errorf("parse MAP_VIEWPORT_HEIGHT: %w", err)
	} else if v != nil {
		cfg.ViewportHeightPx = *v
	}

	if v := os.Getenv("MAP_FEED_REFRESH_SECONDS"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return MapConfig{}, fmt.Errorf("parse MAP_FEED_REFRESH_SECONDS: %w", err)
		}
		cfg.FeedRefresh = time.Duration(secs) * time.Second
	}

	if v := os.Getenv("MAP_ELASTIC_INDEX"); v != "" {
		cfg.ElasticIndex = v
	}

	if cfg.DefaultRadiusKm <= 0 {
		return MapConfig{}, fmt.Errorf("MAP_DEFAULT_RADIUS_KM must be positive")
	}
	if cfg.ViewportWidthPx <= 0 || cfg.ViewportHeightPx <= 0 {
		return MapConfig{}, fmt.Errorf("viewport dimensions must be positive")
	}

	return cfg, nil
}

func readIntEnv(name string) (*int, error) {
	val := os.Getenv(name)
	if val == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(val)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func readFloatEnv(name string) (*float64, error) {
	val := os.Getenv(name)
	if val == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
