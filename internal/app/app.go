package app

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/yungbote/transfermarket-backend/internal/data/db"
	httpapi "github.com/yungbote/transfermarket-backend/internal/http"
	"github.com/yungbote/transfermarket-backend/internal/observability"
	"github.com/yungbote/transfermarket-backend/internal/platform/logger"
	"github.com/yungbote/transfermarket-backend/internal/realtime"
	"github.com/yungbote/transfermarket-backend/internal/temporalx/temporalworker"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	PG       *db.PostgresService
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  Clients
	Hub      *realtime.Hub
	Metrics  *observability.Metrics
	Server   *httpapi.Server

	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
	})
	metrics := observability.Init(log)

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := db.AutoMigrateAll(pg.DB()); err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	clients, err := wireClients(log)
	if err != nil {
		_ = pg.Close()
		log.Sync()
		return nil, err
	}

	hub := realtime.NewHub(log, metrics)
	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, clients, hub, metrics)
	handlerset := wireHandlers(theDB, serviceset, hub)
	middleware := wireMiddleware(log, serviceset)
	server := wireServer(log, cfg, metrics, handlerset, middleware)

	return &App{
		Log:          log,
		DB:           theDB,
		PG:           pg,
		Cfg:          cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		Hub:          hub,
		Metrics:      metrics,
		Server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP and the background loops until ctx is done or one of them
// fails.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	g, gctx := errgroup.WithContext(ctx)

	if a.Metrics != nil {
		a.Metrics.StartServer(gctx, a.Log, a.Cfg.MetricsAddr)
		a.Metrics.StartPostgresCollector(gctx, a.Log, a.DB)
		if a.Clients.TransferBus != nil {
			a.Metrics.StartRedisCollector(gctx, a.Log, a.Clients.TransferBus.Client())
		}
	}

	if a.Clients.TransferBus != nil {
		if err := a.Clients.TransferBus.StartForwarder(gctx, a.Hub.Broadcast); err != nil {
			return fmt.Errorf("start transfer forwarder: %w", err)
		}
	}

	if a.Clients.Temporal != nil && a.Cfg.RunTemporalWorker {
		runner, err := temporalworker.NewRunner(a.Log, a.Clients.Temporal, a.Services.ValueGrowth, a.Metrics)
		if err != nil {
			return fmt.Errorf("init temporal worker: %w", err)
		}
		g.Go(func() error {
			return runner.Start(gctx)
		})
	}

	g.Go(func() error {
		a.Log.Info("HTTP server listening", "addr", a.Cfg.HTTPAddr)
		return a.Server.Serve(gctx, a.Cfg.HTTPAddr)
	})

	return g.Wait()
}

func (a *App) Close() {
	if a == nil {
		return
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.PG != nil {
		_ = a.PG.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
