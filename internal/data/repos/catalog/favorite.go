package catalog

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/teecraft/storefront/internal/domain"
	"github.com/teecraft/storefront/internal/platform/dbctx"
	"github.com/teecraft/storefront/internal/platform/logger"
)

type FavoriteRepo interface {
	ListProductIDs(dbc dbctx.Context, userID uuid.UUID) ([]uuid.UUID, error)
	Add(dbc dbctx.Context, userID, productID uuid.UUID) error
	// Remove reports whether a row was deleted.
	Remove(dbc dbctx.Context, userID, productID uuid.UUID) (bool, error)
}

type favoriteRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFavoriteRepo(db *gorm.DB, baseLog *logger.Logger) FavoriteRepo {
	return &favoriteRepo{db: db, log: baseLog.With("repo", "FavoriteRepo")}
}

func (fr *favoriteRepo) ListProductIDs(dbc dbctx.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	transaction := dbc.Pick(fr.db)
	ids := []uuid.UUID{}
	if err := transaction.WithContext(dbc.Ctx).
		Model(&types.Favorite{}).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Pluck("product_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (fr *favoriteRepo) Add(dbc dbctx.Context, userID, productID uuid.UUID) error {
	transaction := dbc.Pick(fr.db)
	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "product_id"}},
			DoNothing: true,
		}).
		Create(&types.Favorite{UserID: userID, ProductID: productID}).Error
}

func (fr *favoriteRepo) Remove(dbc dbctx.Context, userID, productID uuid.UUID) (bool, error) {
	transaction := dbc.Pick(fr.db)
	res := transaction.WithContext(dbc.Ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&types.Favorite{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
