package app

import (
	"gorm.io/gorm"

	"github.com/teecraft/storefront/internal/platform/logger"
	"github.com/teecraft/storefront/internal/services"
	"github.com/teecraft/storefront/internal/session"
	"github.com/teecraft/storefront/internal/snapshot"
)

type Services struct {
	Auth      services.AuthService
	Cart      services.CartService
	StoreCart services.StoreCartService
	Catalog   services.CatalogService
	Favorites services.FavoriteService
	Admin     services.AdminService
	Profile   services.ProfileService

	Sessions  *session.Manager
	Snapshots *snapshot.Snapshots
}

// managerRef lets the auth service invalidate sessions on a manager that is
// built after it.
type managerRef struct {
	m *session.Manager
}

func (r *managerRef) Invalidate(clientID string) {
	if r.m != nil {
		r.m.Invalidate(clientID)
	}
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, clients Clients, r Repos) Services {
	log.Info("Wiring services...")

	snaps := snapshot.New(clients.Snapshots, log)
	ref := &managerRef{}

	auth := services.NewAuthService(
		db, log,
		r.User, r.Profile, r.UserToken,
		snaps, clients.AuthBus, ref,
		cfg.JWTSecretKey, cfg.AccessTokenTTL, cfg.RefreshTokenTTL,
	)

	policy := session.DefaultRetryPolicy()
	policy.MaxAttempts = cfg.ProfileRetryAttempts
	policy.Backoff = session.FixedBackoff(cfg.ProfileRetryDelay)
	loader := session.NewProfileLoader(log, r.Profile, policy)
	manager := session.NewManager(log, auth, loader, snaps)
	ref.m = manager

	return Services{
		Auth:      auth,
		Cart:      services.NewCartService(log, r.Product, clients.Images, snaps),
		StoreCart: services.NewStoreCartService(log, r.ProductVariant, r.CartItem),
		Catalog:   services.NewCatalogService(log, r.Product, clients.Images),
		Favorites: services.NewFavoriteService(log, r.Favorite, r.Product, clients.Images),
		Admin:     services.NewAdminService(log, r.Profile, r.Order, r.UserToken),
		Profile:   services.NewProfileService(log, r.Profile, r.Order),
		Sessions:  manager,
		Snapshots: snaps,
	}
}
