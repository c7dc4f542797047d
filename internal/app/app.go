package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yungbote/greenscape-backend/internal/data/db"
	apphttp "github.com/yungbote/greenscape-backend/internal/http"
	"github.com/yungbote/greenscape-backend/internal/observability"
	"github.com/yungbote/greenscape-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Repos    Repos
	Services Services
	Clients  Clients
	Metrics  *observability.Metrics

	dbService    *db.Service
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New(cfg *Config) (*App, error) {
	log, err := logger.New(cfg.Server.LogMode, logger.WithHashSalt(cfg.Server.LogHashSalt))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		Enabled:     cfg.Otel.Enabled,
		ServiceName: cfg.Otel.ServiceName,
		Environment: cfg.Server.Environment,
		Version:     cfg.Version,
		Endpoint:    cfg.Otel.Endpoint,
		Insecure:    cfg.Otel.Insecure,
		Headers:     cfg.Otel.Headers,
		SampleRatio: cfg.Otel.SampleRatio,
	})

	dbService, err := openDatabase(log, cfg.Database)
	if err != nil {
		log.Sync()
		return nil, err
	}
	theDB := dbService.DB()

	clients, err := wireClients(log, *cfg)
	if err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}

	metrics := observability.NewMetrics(observability.MetricsConfig{
		Enabled:        cfg.Metrics.Enabled,
		Addr:           cfg.Metrics.Addr,
		ScrapeInterval: time.Duration(cfg.Metrics.ScrapeIntervalSeconds) * time.Second,
	})

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, *cfg, reposet, clients, metrics)
	handlerset := wireHandlers(theDB, log, serviceset)
	router := wireRouter(log, *cfg, handlerset, metrics)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       router,
		Cfg:          *cfg,
		Repos:        reposet,
		Services:     serviceset,
		Clients:      clients,
		Metrics:      metrics,
		dbService:    dbService,
		otelShutdown: otelShutdown,
	}, nil
}

// openDatabase connects and migrates. Used by the API server and the catalog loader.
func openDatabase(log *logger.Logger, cfg DatabaseConfig) (*db.Service, error) {
	dbService, err := db.NewService(log, db.Config{
		Driver:     cfg.Driver,
		Host:       cfg.Host,
		Port:       cfg.Port,
		User:       cfg.User,
		Password:   cfg.Password,
		Name:       cfg.Name,
		SSLMode:    cfg.SSLMode,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		_ = dbService.Close()
		return nil, fmt.Errorf("database automigrate: %w", err)
	}
	return dbService, nil
}

// Start launches background collectors.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Metrics != nil {
		a.Metrics.StartServer(ctx, a.Log, a.Cfg.Metrics.Addr)
		if sqlDB, err := a.DB.DB(); err == nil {
			a.Metrics.StartDBCollector(ctx, a.Log, sqlDB)
		}
		a.Metrics.StartRedisCollector(ctx, a.Log, a.Clients.Redis)
	}
}

func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Router == nil {
		return fmt.Errorf("app not initialized")
	}
	srv := &apphttp.Server{Engine: a.Router}
	a.Log.Info("HTTP server listening", "addr", a.Cfg.Server.Address())
	return srv.Run(ctx, a.Cfg.Server.Address())
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := a.otelShutdown(ctx); err != nil && a.Log != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
		cancel()
	}
	if a.dbService != nil {
		_ = a.dbService.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
