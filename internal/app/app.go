// Package app wires the server process together.
package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/MrSnakeDoc/newtab/internal/config"
	"github.com/MrSnakeDoc/newtab/internal/domain"
	"github.com/MrSnakeDoc/newtab/internal/httpserver"
	"github.com/MrSnakeDoc/newtab/internal/httpserver/deps"
	"github.com/MrSnakeDoc/newtab/internal/kv"
	"github.com/MrSnakeDoc/newtab/internal/logger"
	"github.com/MrSnakeDoc/newtab/internal/scheduler"
	"github.com/MrSnakeDoc/newtab/internal/session"
	"github.com/MrSnakeDoc/newtab/internal/sources/homepage"
	"github.com/MrSnakeDoc/newtab/internal/store"
	"github.com/MrSnakeDoc/newtab/internal/utils"
	"github.com/MrSnakeDoc/newtab/internal/version"
	"github.com/MrSnakeDoc/newtab/internal/weather"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	storage     kv.Storage
	redisClient *goredis.Client
	store       *store.Store
	importer    *scheduler.Importer
	refresher   *scheduler.WeatherRefresher
}

// New builds the server process. Storage is opened and the collection
// loaded here, so a broken backend fails before anything listens.
func New(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	sort, err := domain.ParseSortMode(cfg.DefaultSort)
	if err != nil {
		return nil, fmt.Errorf("invalid default sort: %w", err)
	}

	st, storage, redisClient, err := OpenStore(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:         cfg,
		logger:      log,
		storage:     storage,
		redisClient: redisClient,
		store:       st,
	}

	d := deps.Deps{
		Logger:        log,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		TimeNow:       time.Now,
		AllowedHosts:  cfg.AllowedHosts,
		AllowedCIDRS:  cfg.AllowedCIDRS,
		TrustProxy:    cfg.TrustProxy,
		RateBurst:     cfg.RateBurst,
		RatePerMinute: cfg.RatePerMinute,
		Store:         st,
		Session:       session.New(sort),
		RedisClient:   redisClient,
		SearchURL:     cfg.SearchURL,
	}

	if cfg.WeatherEnabled {
		client := weather.NewClient(cfg.WeatherURL, cfg.WeatherTimeout, log)
		panel := weather.NewPanel(client, weather.Coord{Lat: cfg.WeatherLat, Lon: cfg.WeatherLon}, cfg.WeatherLocation, log)
		d.Weather = panel
		d.WeatherTrigger = make(chan struct{}, 1)
		a.refresher = scheduler.NewWeatherRefresher(panel, log, cfg.WeatherInterval, d.WeatherTrigger)
	} else {
		log.Info("weather disabled, temperature panel shows placeholders")
	}

	if sources := homepageSources(cfg); len(sources) > 0 {
		d.ReloadTrigger = make(chan struct{}, 1)
		a.importer = scheduler.NewImporter(sources, st, log, cfg.ReloadInterval, d.ReloadTrigger, cfg.WatchSources)
		d.Importer = a.importer
	}

	a.server = httpserver.New(cfg, log, d)
	return a, nil
}

func homepageSources(cfg *config.Config) []homepage.Source {
	var sources []homepage.Source
	if cfg.ServiceFile != "" {
		sources = append(sources, homepage.NewServicesFile(cfg.ServiceFile))
	}
	if cfg.BookmarkFile != "" {
		sources = append(sources, homepage.NewBookmarksFile(cfg.BookmarkFile))
	}
	return sources
}

// Run serves until ctx is cancelled or the server fails, then shuts
// everything down.
func (a *App) Run(ctx context.Context) error {
	a.logger.Infof("🚀 Starting newtab %s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.String())

	if a.refresher != nil {
		if err := a.refresher.Start(ctx); err != nil {
			return fmt.Errorf("failed to start weather refresher: %w", err)
		}
		a.logger.Info("weather refresher started", logger.Duration("interval", a.cfg.WeatherInterval))
	}
	if a.importer != nil {
		if err := a.importer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start source importer: %w", err)
		}
		a.logger.Info("source importer started",
			logger.Duration("interval", a.cfg.ReloadInterval),
			logger.Bool("watch", a.cfg.WatchSources))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := a.server.Start(); err != nil {
			return fmt.Errorf("http server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("⏳ Shutting down gracefully...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
		defer cancel()
		if err := a.server.Stop(shutdownCtx); err != nil {
			return fmt.Errorf("failed to stop server: %w", err)
		}
		return nil
	})

	err := g.Wait()
	a.close()
	return err
}

func (a *App) close() {
	if a.importer != nil {
		a.importer.Stop()
	}
	if a.refresher != nil {
		a.refresher.Stop()
	}

	// kv.Redis closes the shared client
	utils.MustClose(a.storage, a.storage.Name()+" storage", a.logger)
	a.logger.Info("✅ newtab stopped cleanly")
}
