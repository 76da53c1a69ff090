package cart

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/teecraft/storefront/internal/domain"
	"github.com/teecraft/storefront/internal/platform/dbctx"
	"github.com/teecraft/storefront/internal/platform/logger"
)

type CartItemRepo interface {
	// AddOrIncrement inserts a quantity 1 row or bumps the existing row for
	// (user, product, variant) in a single statement.
	AddOrIncrement(dbc dbctx.Context, userID, productID, variantID uuid.UUID) (*types.CartItem, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.CartItem, error)
	SumQuantity(dbc dbctx.Context, userID uuid.UUID) (int, error)
	DeleteByUser(dbc dbctx.Context, userID uuid.UUID) error
}

type cartItemRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCartItemRepo(db *gorm.DB, baseLog *logger.Logger) CartItemRepo {
	return &cartItemRepo{db: db, log: baseLog.With("repo", "CartItemRepo")}
}

func (cr *cartItemRepo) AddOrIncrement(dbc dbctx.Context, userID, productID, variantID uuid.UUID) (*types.CartItem, error) {
	transaction := dbc.Pick(cr.db)
	item := &types.CartItem{UserID: userID, ProductID: productID, ProductVariantID: variantID, Quantity: 1}
	if err := transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "product_id"}, {Name: "product_variant_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"quantity":   gorm.Expr("cart.quantity + ?", 1),
				"updated_at": time.Now(),
			}),
		}).
		Create(item).Error; err != nil {
		return nil, err
	}

	var stored types.CartItem
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND product_id = ? AND product_variant_id = ?", userID, productID, variantID).
		First(&stored).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (cr *cartItemRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.CartItem, error) {
	transaction := dbc.Pick(cr.db)
	var results []*types.CartItem
	if err := transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *cartItemRepo) SumQuantity(dbc dbctx.Context, userID uuid.UUID) (int, error) {
	transaction := dbc.Pick(cr.db)
	var total int64
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.CartItem{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(quantity), 0)").
		Scan(&total).Error; err != nil {
		return 0, err
	}
	return int(total), nil
}

func (cr *cartItemRepo) DeleteByUser(dbc dbctx.Context, userID uuid.UUID) error {
	transaction := dbc.Pick(cr.db)
	return transaction.WithContext(dbc.Ctx).
		Where("user_id = ?", userID).
		Delete(&types.CartItem{}).Error
}
