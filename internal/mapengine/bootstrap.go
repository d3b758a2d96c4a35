package mapengine

import (
	"context"
	"time"

	"pamojaBack/internal/mapengine/feed"
	"pamojaBack/internal/mapengine/geo"
	"pamojaBack/internal/mapengine/proximity"
	"pamojaBack/internal/mapengine/search"
	"pamojaBack/internal/mapengine/selection"
	"pamojaBack/internal/mapengine/surface"
	"pamojaBack/internal/mapengine/visibility"
	"pamojaBack/internal/mapengine/ws"
	"pamojaBack/internal/models"
	"pamojaBack/internal/repositories"
	"pamojaBack/internal/services"
)

type moduleState struct {
	repo      *repositories.GeoEntityRepository
	service   *services.MapService
	store     *services.ElasticStore
	locator   *geo.EntityLocator
	surface   *surface.Surface
	loader    *feed.Loader
	searchEng *search.Engine
	proxEng   *proximity.Engine
	filter    *visibility.Filter
	panel     *selection.Panel
	engine    *Engine
	hub       *ws.Hub
}

func ensureModule(deps *MapDeps) (*moduleState, error) {
	if err := deps.Validate(); err != nil {
		return nil, err
	}
	if deps.module != nil {
		return deps.module, nil
	}

	cfg := deps.Config

	repo := &repositories.GeoEntityRepository{DB: deps.DB}
	var store *services.ElasticStore
	svc := &services.MapService{Repo: repo}
	if deps.ES != nil {
		store = services.NewElasticStoreWithClient(deps.ES, cfg.ElasticIndex)
		svc.Store = store
	}

	locator := geo.NewEntityLocator(deps.RDB)

	surf := surface.New(cfg.ViewportWidthPx, cfg.ViewportHeightPx, surface.View{
		CenterLon: cfg.DefaultCenterLon,
		CenterLat: cfg.DefaultCenterLat,
		Zoom:      cfg.DefaultZoom,
	})

	filter := visibility.NewFilter()
	loader := feed.NewLoader(svc, filter, deps.Logger)

	searchEng := search.NewEngine(svc, surf, deps.Logger, search.Options{
		Debounce:        cfg.SearchDebounce,
		SingleHitZoom:   cfg.SearchZoom,
		ExtentMarginDeg: cfg.ExtentMarginDeg,
		FitPaddingPx:    cfg.FitPaddingPx,
		FitDurationMs:   cfg.FitDurationMs,
	})

	base := func() []models.GeoEntity {
		if results := searchEng.Results(); len(results) > 0 {
			return results
		}
		return loader.Entities()
	}
	proxEng := proximity.NewEngine(deps.Locations, surf, deps.Logger, base, proximity.Options{
		DefaultCenterLon: cfg.DefaultCenterLon,
		DefaultCenterLat: cfg.DefaultCenterLat,
		DefaultZoom:      cfg.DefaultZoom,
		UserZoom:         cfg.UserZoom,
		LocateTimeout:    cfg.LocateTimeout,
		LocateMaxAge:     cfg.LocateMaxAge,
	})

	panel := selection.NewPanel()
	engine := newEngine(deps.Logger, surf, loader, searchEng, proxEng, filter, panel)

	hub := ws.NewHub(deps.Logger)
	engine.OnRender(hub.BroadcastFeatures)

	deps.module = &moduleState{
		repo:      repo,
		service:   svc,
		store:     store,
		locator:   locator,
		surface:   surf,
		loader:    loader,
		searchEng: searchEng,
		proxEng:   proxEng,
		filter:    filter,
		panel:     panel,
		engine:    engine,
		hub:       hub,
	}
	return deps.module, nil
}

// Bootstrap wires the map module once and returns its engine. Repeated
// calls with the same deps return the same instance.
func Bootstrap(deps *MapDeps) (*Engine, error) {
	module, err := ensureModule(deps)
	if err != nil {
		return nil, err
	}
	return module.engine, nil
}

// Hub returns the live-update hub of the module.
func Hub(deps *MapDeps) (*ws.Hub, error) {
	module, err := ensureModule(deps)
	if err != nil {
		return nil, err
	}
	return module.hub, nil
}

// Service returns the map service used by HTTP handlers.
func Service(deps *MapDeps) (*services.MapService, error) {
	module, err := ensureModule(deps)
	if err != nil {
		return nil, err
	}
	return module.service, nil
}

// Locator returns the Redis GEO locator used by the nearby endpoint.
func Locator(deps *MapDeps) (*geo.EntityLocator, error) {
	module, err := ensureModule(deps)
	if err != nil {
		return nil, err
	}
	return module.locator, nil
}

// StartMapWorkers loads the feed, primes the search and GEO mirrors and
// launches the hub plus the periodic mirror refresh.
func StartMapWorkers(ctx context.Context, deps *MapDeps) error {
	module, err := ensureModule(deps)
	if err != nil {
		return err
	}

	go module.hub.Run(ctx)

	module.engine.Start(ctx)
	module.syncMirrors(ctx, deps.Logger)

	go module.refreshLoop(ctx, deps.Logger, deps.Config.FeedRefresh)
	return nil
}

func (m *moduleState) refreshLoop(ctx context.Context, logger Logger, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.engine.Reload(ctx)
			m.syncMirrors(ctx, logger)
		}
	}
}

// syncMirrors pushes the current feed snapshot into the Redis GEO set and,
// when configured, the Elasticsearch index.
func (m *moduleState) syncMirrors(ctx context.Context, logger Logger) {
	entities := m.loader.Entities()
	if err := m.locator.SyncEntities(ctx, entities); err != nil {
		logger.Errorf("map: geo mirror sync failed: %v", err)
	}
	if m.store != nil {
		if err := m.store.EnsureIndex(ctx); err != nil {
			logger.Errorf("map: elastic index check failed: %v", err)
			return
		}
		if err := m.store.IndexEntities(ctx, entities); err != nil {
			logger.Errorf("map: elastic index sync failed: %v", err)
		}
	}
}
