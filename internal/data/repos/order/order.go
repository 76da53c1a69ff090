package order

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/teecraft/storefront/internal/domain"
	"github.com/teecraft/storefront/internal/platform/dbctx"
	"github.com/teecraft/storefront/internal/platform/logger"
)

type OrderRepo interface {
	Create(dbc dbctx.Context, orders []*types.Order) ([]*types.Order, error)
	// ListNewestFirst loads every order with its customer profile and items.
	ListNewestFirst(dbc dbctx.Context) ([]*types.Order, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Order, error)
	UpdateStatus(dbc dbctx.Context, orderID uuid.UUID, status string) error
	// DeleteWithItems removes the order and its items; absent orders are
	// reported as gorm.ErrRecordNotFound.
	DeleteWithItems(dbc dbctx.Context, orderID uuid.UUID) error
}

type orderRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewOrderRepo(db *gorm.DB, baseLog *logger.Logger) OrderRepo {
	return &orderRepo{db: db, log: baseLog.With("repo", "OrderRepo")}
}

func (or *orderRepo) Create(dbc dbctx.Context, orders []*types.Order) ([]*types.Order, error) {
	transaction := dbc.Pick(or.db)
	if len(orders) == 0 {
		return []*types.Order{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (or *orderRepo) ListNewestFirst(dbc dbctx.Context) ([]*types.Order, error) {
	transaction := dbc.Pick(or.db)
	var results []*types.Order
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Profile").
		Preload("Items").
		Preload("Items.Product").
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (or *orderRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID) ([]*types.Order, error) {
	transaction := dbc.Pick(or.db)
	var results []*types.Order
	if err := transaction.WithContext(dbc.Ctx).
		Preload("Items").
		Preload("Items.Product").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (or *orderRepo) UpdateStatus(dbc dbctx.Context, orderID uuid.UUID, status string) error {
	transaction := dbc.Pick(or.db)
	res := transaction.WithContext(dbc.Ctx).
		Model(&types.Order{}).
		Where("id = ?", orderID).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (or *orderRepo) DeleteWithItems(dbc dbctx.Context, orderID uuid.UUID) error {
	run := func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", orderID).Delete(&types.OrderItem{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", orderID).Delete(&types.Order{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}
	if dbc.Tx != nil {
		return run(dbc.Tx.WithContext(dbc.Ctx))
	}
	return or.db.WithContext(dbc.Ctx).Transaction(run)
}
