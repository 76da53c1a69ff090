package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/teecraft/storefront/internal/domain/catalog"
	"github.com/teecraft/storefront/internal/domain/user"
	"gorm.io/gorm"
)

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusShipped   = "shipped"
	StatusDelivered = "delivered"
	StatusCancelled = "cancelled"
)

var Statuses = []string{StatusPending, StatusCompleted, StatusShipped, StatusDelivered, StatusCancelled}

func IsValidStatus(s string) bool {
	for _, v := range Statuses {
		if v == s {
			return true
		}
	}
	return false
}

// CountsAsRevenue reports whether an order in status s contributes to revenue.
func CountsAsRevenue(s string) bool {
	return s == StatusCompleted || s == StatusDelivered
}

type Order struct {
	ID        uuid.UUID     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID     `gorm:"type:uuid;not null;index" json:"user_id"`
	Profile   *user.Profile `gorm:"foreignKey:UserID;references:ID" json:"profile,omitempty"`
	Total     float64       `gorm:"type:numeric(10,2);not null;default:0" json:"total"`
	Status    string        `gorm:"not null;default:'pending';index" json:"status"`
	Items     []OrderItem   `gorm:"foreignKey:OrderID;references:ID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt time.Time     `gorm:"not null;autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time     `gorm:"not null;autoUpdateTime" json:"updated_at"`
}

func (Order) TableName() string { return "orders" }

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

type OrderItem struct {
	ID               uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID          uuid.UUID        `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID        uuid.UUID        `gorm:"type:uuid;not null" json:"product_id"`
	Product          *catalog.Product `gorm:"foreignKey:ProductID;references:ID" json:"product,omitempty"`
	ProductVariantID *uuid.UUID       `gorm:"type:uuid" json:"product_variant_id,omitempty"`
	Quantity         int              `gorm:"not null;default:1" json:"quantity"`
	Price            float64          `gorm:"type:numeric(10,2);not null" json:"price"`
	CreatedAt        time.Time        `gorm:"not null;autoCreateTime" json:"created_at"`
}

func (OrderItem) TableName() string { return "order_items" }

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
