package app

import (
	"gorm.io/gorm"

	"github.com/teecraft/storefront/internal/data/repos"
	"github.com/teecraft/storefront/internal/platform/logger"
)

type Repos struct {
	User           repos.UserRepo
	Profile        repos.ProfileRepo
	UserToken      repos.UserTokenRepo
	Product        repos.ProductRepo
	ProductVariant repos.ProductVariantRepo
	Favorite       repos.FavoriteRepo
	CartItem       repos.CartItemRepo
	Order          repos.OrderRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:           repos.NewUserRepo(db, log),
		Profile:        repos.NewProfileRepo(db, log),
		UserToken:      repos.NewUserTokenRepo(db, log),
		Product:        repos.NewProductRepo(db, log),
		ProductVariant: repos.NewProductVariantRepo(db, log),
		Favorite:       repos.NewFavoriteRepo(db, log),
		CartItem:       repos.NewCartItemRepo(db, log),
		Order:          repos.NewOrderRepo(db, log),
	}
}
