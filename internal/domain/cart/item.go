package cart

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CartItem rows live in the remote "cart" table, one per (user, product, variant).
type CartItem struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product_variant" json:"user_id"`
	ProductID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product_variant" json:"product_id"`
	ProductVariantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_cart_user_product_variant" json:"product_variant_id"`
	Quantity         int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt        time.Time `gorm:"not null;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (CartItem) TableName() string { return "cart" }

func (c *CartItem) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
