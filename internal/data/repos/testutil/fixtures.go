package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/teecraft/storefront/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{ID: uuid.New(), Email: email, Password: "pw"}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedProfile(tb testing.TB, ctx context.Context, tx *gorm.DB, id uuid.UUID, email, role string) *types.Profile {
	tb.Helper()
	p := &types.Profile{ID: id, Email: email, Role: role}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed profile: %v", err)
	}
	return p
}

func SeedProduct(tb testing.TB, ctx context.Context, tx *gorm.DB, name, category string, price float64) *types.Product {
	tb.Helper()
	p := &types.Product{ID: uuid.New(), Name: name, Category: category, Price: price, IsActive: true}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed product: %v", err)
	}
	return p
}

func SeedVariant(tb testing.TB, ctx context.Context, tx *gorm.DB, productID uuid.UUID, color, size string) *types.ProductVariant {
	tb.Helper()
	v := &types.ProductVariant{ID: uuid.New(), ProductID: productID, Color: color, Size: size, Stock: 10}
	if err := tx.WithContext(ctx).Create(v).Error; err != nil {
		tb.Fatalf("seed variant: %v", err)
	}
	return v
}

func SeedOrder(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, status string, total float64, items int) *types.Order {
	tb.Helper()
	o := &types.Order{ID: uuid.New(), UserID: userID, Status: status, Total: total}
	for i := 0; i < items; i++ {
		o.Items = append(o.Items, types.OrderItem{ID: uuid.New(), ProductID: uuid.New(), Quantity: 1, Price: total})
	}
	if err := tx.WithContext(ctx).Create(o).Error; err != nil {
		tb.Fatalf("seed order: %v", err)
	}
	return o
}
