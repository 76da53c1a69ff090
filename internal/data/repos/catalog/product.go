package catalog

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/teecraft/storefront/internal/domain"
	domaincatalog "github.com/teecraft/storefront/internal/domain/catalog"
	"github.com/teecraft/storefront/internal/platform/dbctx"
	"github.com/teecraft/storefront/internal/platform/logger"
)

type ProductRepo interface {
	Create(dbc dbctx.Context, products []*types.Product) ([]*types.Product, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Product, error)
	// ListActive returns active products, newest first.
	ListActive(dbc dbctx.Context, category string) ([]*types.Product, error)
}

type productRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductRepo(db *gorm.DB, baseLog *logger.Logger) ProductRepo {
	return &productRepo{db: db, log: baseLog.With("repo", "ProductRepo")}
}

func (pr *productRepo) Create(dbc dbctx.Context, products []*types.Product) ([]*types.Product, error) {
	transaction := dbc.Pick(pr.db)
	if len(products) == 0 {
		return []*types.Product{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (pr *productRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Product, error) {
	transaction := dbc.Pick(pr.db)
	var results []*types.Product
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *productRepo) ListActive(dbc dbctx.Context, category string) ([]*types.Product, error) {
	transaction := dbc.Pick(pr.db)
	q := transaction.WithContext(dbc.Ctx).Where("is_active = ?", true)
	if category != "" && category != domaincatalog.CategoryAll {
		q = q.Where("category = ?", category)
	}
	var results []*types.Product
	if err := q.Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

type ProductVariantRepo interface {
	Create(dbc dbctx.Context, variants []*types.ProductVariant) ([]*types.ProductVariant, error)
	// Find returns nil, nil when no variant matches.
	Find(dbc dbctx.Context, productID uuid.UUID, color, size string) (*types.ProductVariant, error)
}

type productVariantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductVariantRepo(db *gorm.DB, baseLog *logger.Logger) ProductVariantRepo {
	return &productVariantRepo{db: db, log: baseLog.With("repo", "ProductVariantRepo")}
}

func (vr *productVariantRepo) Create(dbc dbctx.Context, variants []*types.ProductVariant) ([]*types.ProductVariant, error) {
	transaction := dbc.Pick(vr.db)
	if len(variants) == 0 {
		return []*types.ProductVariant{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&variants).Error; err != nil {
		return nil, err
	}
	return variants, nil
}

func (vr *productVariantRepo) Find(dbc dbctx.Context, productID uuid.UUID, color, size string) (*types.ProductVariant, error) {
	transaction := dbc.Pick(vr.db)
	var v types.ProductVariant
	err := transaction.WithContext(dbc.Ctx).
		Where("product_id = ? AND color = ? AND size = ?", productID, color, size).
		First(&v).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}
