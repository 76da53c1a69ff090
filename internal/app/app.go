package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	httpserver "github.com/teecraft/storefront/internal/http"
	"github.com/teecraft/storefront/internal/observability"
	"github.com/teecraft/storefront/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Router   *gin.Engine
	Cfg      Config
	Clients  Clients
	Repos    Repos
	Services Services

	server       *httpserver.Server
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New(log *logger.Logger, cfg Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
		ServiceName: cfg.ServiceName,
		Environment: cfg.LogMode,
	})

	clients, err := wireClients(context.Background(), log, cfg)
	if err != nil {
		_ = otelShutdown(context.Background())
		return nil, err
	}
	theDB := clients.DB.DB()

	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, clients, reposet)
	server := wireServer(log, cfg, serviceset)

	return &App{
		Log:          log,
		DB:           theDB,
		Router:       server.Engine,
		Cfg:          cfg,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

// Start subscribes the session manager to cross-client auth events.
func (a *App) Start() error {
	if a == nil || a.cancel != nil {
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	if err := a.Services.Sessions.Subscribe(ctx, a.Clients.AuthBus); err != nil {
		cancel()
		return fmt.Errorf("subscribe auth events: %w", err)
	}
	a.cancel = cancel
	return nil
}

func (a *App) Run(addr string) error {
	if a == nil || a.server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.server.Run(addr)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if a.server != nil {
		if err := a.server.Shutdown(ctx); err != nil {
			a.Log.Warn("HTTP shutdown failed", "error", err)
		}
	}
	a.Clients.Close(a.Log)
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("OTel shutdown failed", "error", err)
		}
	}
	a.Log.Sync()
}
