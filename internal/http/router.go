package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/teecraft/storefront/internal/gate"
	httpH "github.com/teecraft/storefront/internal/http/handlers"
	httpMW "github.com/teecraft/storefront/internal/http/middleware"
	"github.com/teecraft/storefront/internal/platform/logger"
)

type RouterConfig struct {
	Log          *logger.Logger
	ServiceName  string
	CORSOrigins  []string
	SecureCookie bool

	AuthMiddleware *httpMW.AuthMiddleware
	GateMiddleware *httpMW.GateMiddleware

	AuthHandler    *httpH.AuthHandler
	SessionHandler *httpH.SessionHandler
	PagesHandler   *httpH.PagesHandler
	CartHandler    *httpH.CartHandler
	StoreHandler   *httpH.StoreHandler
	ProfileHandler *httpH.ProfileHandler
	AdminHandler   *httpH.AdminHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.AttachClientID(cfg.SecureCookie))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	// Views
	if cfg.PagesHandler != nil {
		for _, route := range gate.Routes {
			r.GET(route.View, cfg.PagesHandler.View)
		}
		r.NoRoute(cfg.PagesHandler.NoRoute)
	}

	api := r.Group("/api")
	{
		// Public
		if cfg.AuthHandler != nil {
			api.POST("/signup", cfg.AuthHandler.Signup)
			api.POST("/login", cfg.AuthHandler.Login)
			api.POST("/refresh", cfg.AuthHandler.Refresh)
		}
		if cfg.StoreHandler != nil {
			api.GET("/products", cfg.StoreHandler.ListProducts)
			api.GET("/catalog/options", cfg.StoreHandler.Options)
		}
		if cfg.SessionHandler != nil {
			api.GET("/session", cfg.SessionHandler.Get)
		}
		if cfg.AuthHandler != nil && cfg.AuthMiddleware != nil {
			api.POST("/logout", cfg.AuthMiddleware.OptionalAuth(), cfg.AuthHandler.Logout)
		}
	}

	// Local cart: any session the gate admits to the cart view.
	if cfg.CartHandler != nil && cfg.GateMiddleware != nil {
		cart := api.Group("/cart", cfg.GateMiddleware.Require(gate.ViewCart, ""))
		cart.GET("", cfg.CartHandler.Get)
		cart.DELETE("", cfg.CartHandler.Clear)
		cart.POST("/lines", cfg.CartHandler.AddLine)
		cart.PATCH("/selected", cfg.CartHandler.SetSelectedAll)
		cart.PATCH("/lines/:key/quantity", cfg.CartHandler.SetQuantity)
		cart.PATCH("/lines/:key/selected", cfg.CartHandler.SetSelected)
		cart.PATCH("/lines/:key/variant", cfg.CartHandler.EditVariant)
		cart.DELETE("/lines/:key", cfg.CartHandler.RemoveLine)
	}

	protected := api.Group("/")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		if cfg.StoreHandler != nil {
			protected.POST("/store-cart/items", cfg.StoreHandler.AddToCart)
			protected.GET("/store-cart/items", cfg.StoreHandler.ListCartItems)
			protected.GET("/store-cart/count", cfg.StoreHandler.CartCount)
			protected.DELETE("/store-cart", cfg.StoreHandler.ClearCart)
			protected.GET("/favorites", cfg.StoreHandler.ListFavorites)
			protected.GET("/favorites/products", cfg.StoreHandler.ListFavoriteProducts)
			protected.POST("/favorites/:productId/toggle", cfg.StoreHandler.ToggleFavorite)
		}

		if cfg.ProfileHandler != nil {
			protected.GET("/profile", cfg.ProfileHandler.Get)
		}

		// Admin
		if cfg.AdminHandler != nil && cfg.GateMiddleware != nil {
			admin := protected.Group("/admin", cfg.GateMiddleware.Require(gate.ViewAdmin, gate.RoleAdmin))
			admin.GET("/users", cfg.AdminHandler.ListUsers)
			admin.PATCH("/users/:id", cfg.AdminHandler.UpdateUser)
			admin.GET("/users/:id/orders", cfg.AdminHandler.UserOrders)
			admin.GET("/orders", cfg.AdminHandler.ListOrders)
			admin.PATCH("/orders/:id/status", cfg.AdminHandler.UpdateOrderStatus)
			admin.DELETE("/orders/:id", cfg.AdminHandler.DeleteOrder)
			admin.GET("/summary", cfg.AdminHandler.Summary)
		}
	}

	return r
}
