package domain

import (
	"github.com/teecraft/storefront/internal/domain/auth"
	"github.com/teecraft/storefront/internal/domain/cart"
	"github.com/teecraft/storefront/internal/domain/catalog"
	"github.com/teecraft/storefront/internal/domain/order"
	"github.com/teecraft/storefront/internal/domain/user"
)

type User = user.User
type Profile = user.Profile
type UserToken = auth.UserToken

type Product = catalog.Product
type ProductVariant = catalog.ProductVariant
type Favorite = catalog.Favorite

type CartItem = cart.CartItem

type Order = order.Order
type OrderItem = order.OrderItem

// Models lists every table owned by the storefront, in migration order.
func Models() []any {
	return []any{
		&User{},
		&UserToken{},
		&Profile{},
		&Product{},
		&ProductVariant{},
		&Favorite{},
		&CartItem{},
		&Order{},
		&OrderItem{},
	}
}
