package app

import (
	"github.com/gin-gonic/gin"

	httpserver "github.com/teecraft/storefront/internal/http"
	httpH "github.com/teecraft/storefront/internal/http/handlers"
	httpMW "github.com/teecraft/storefront/internal/http/middleware"
	"github.com/teecraft/storefront/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, s Services) *httpserver.Server {
	log.Info("Wiring router...")
	if cfg.LogMode == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	gateMW := httpMW.NewGateMiddleware(log, s.Sessions, s.Snapshots)
	return httpserver.NewServer(httpserver.RouterConfig{
		Log:          log,
		ServiceName:  cfg.ServiceName,
		CORSOrigins:  cfg.CORSAllowedOrigins,
		SecureCookie: cfg.SecureCookies,

		AuthMiddleware: httpMW.NewAuthMiddleware(log, s.Auth),
		GateMiddleware: gateMW,

		AuthHandler:    httpH.NewAuthHandler(s.Auth),
		SessionHandler: httpH.NewSessionHandler(gateMW),
		PagesHandler:   httpH.NewPagesHandler(gateMW),
		CartHandler:    httpH.NewCartHandler(s.Cart),
		StoreHandler:   httpH.NewStoreHandler(s.Catalog, s.Favorites, s.StoreCart),
		ProfileHandler: httpH.NewProfileHandler(s.Profile),
		AdminHandler:   httpH.NewAdminHandler(s.Admin),
		HealthHandler:  httpH.NewHealthHandler(),
	})
}
