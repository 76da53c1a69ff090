package repos

import (
	"gorm.io/gorm"

	"github.com/teecraft/storefront/internal/data/repos/auth"
	"github.com/teecraft/storefront/internal/data/repos/cart"
	"github.com/teecraft/storefront/internal/data/repos/catalog"
	"github.com/teecraft/storefront/internal/data/repos/order"
	"github.com/teecraft/storefront/internal/data/repos/user"
	"github.com/teecraft/storefront/internal/platform/logger"
)

type UserRepo = user.UserRepo
type ProfileRepo = user.ProfileRepo
type UserTokenRepo = auth.UserTokenRepo

type ProductRepo = catalog.ProductRepo
type ProductVariantRepo = catalog.ProductVariantRepo
type FavoriteRepo = catalog.FavoriteRepo

type CartItemRepo = cart.CartItemRepo
type OrderRepo = order.OrderRepo

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo { return user.NewUserRepo(db, log) }
func NewProfileRepo(db *gorm.DB, log *logger.Logger) ProfileRepo {
	return user.NewProfileRepo(db, log)
}
func NewUserTokenRepo(db *gorm.DB, log *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, log)
}
func NewProductRepo(db *gorm.DB, log *logger.Logger) ProductRepo {
	return catalog.NewProductRepo(db, log)
}
func NewProductVariantRepo(db *gorm.DB, log *logger.Logger) ProductVariantRepo {
	return catalog.NewProductVariantRepo(db, log)
}
func NewFavoriteRepo(db *gorm.DB, log *logger.Logger) FavoriteRepo {
	return catalog.NewFavoriteRepo(db, log)
}
func NewCartItemRepo(db *gorm.DB, log *logger.Logger) CartItemRepo {
	return cart.NewCartItemRepo(db, log)
}
func NewOrderRepo(db *gorm.DB, log *logger.Logger) OrderRepo { return order.NewOrderRepo(db, log) }
