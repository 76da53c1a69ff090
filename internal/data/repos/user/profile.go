package user

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/teecraft/storefront/internal/domain"
	domainuser "github.com/teecraft/storefront/internal/domain/user"
	"github.com/teecraft/storefront/internal/platform/dbctx"
	"github.com/teecraft/storefront/internal/platform/logger"
)

type ProfileRepo interface {
	Create(dbc dbctx.Context, profiles []*types.Profile) ([]*types.Profile, error)
	// GetByID returns nil, nil when the row does not exist.
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Profile, error)
	GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Profile, error)
	GetByEmail(dbc dbctx.Context, email string) (*types.Profile, error)
	// InsertDefault creates a role "user" row unless one already exists.
	InsertDefault(dbc dbctx.Context, id uuid.UUID, email string) error
	ListNewestFirst(dbc dbctx.Context) ([]*types.Profile, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	repoLog := baseLog.With("repo", "ProfileRepo")
	return &profileRepo{db: db, log: repoLog}
}

func (pr *profileRepo) Create(dbc dbctx.Context, profiles []*types.Profile) ([]*types.Profile, error) {
	transaction := dbc.Pick(pr.db)
	if len(profiles) == 0 {
		return []*types.Profile{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

func (pr *profileRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.Profile, error) {
	transaction := dbc.Pick(pr.db)
	var p types.Profile
	err := transaction.WithContext(dbc.Ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (pr *profileRepo) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Profile, error) {
	transaction := dbc.Pick(pr.db)
	var results []*types.Profile
	if len(ids) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Where("id IN ?", ids).Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *profileRepo) GetByEmail(dbc dbctx.Context, email string) (*types.Profile, error) {
	transaction := dbc.Pick(pr.db)
	var p types.Profile
	err := transaction.WithContext(dbc.Ctx).Where("email = ?", email).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (pr *profileRepo) InsertDefault(dbc dbctx.Context, id uuid.UUID, email string) error {
	transaction := dbc.Pick(pr.db)
	p := &types.Profile{ID: id, Email: email, Role: domainuser.RoleUser}
	return transaction.WithContext(dbc.Ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(p).Error
}

func (pr *profileRepo) ListNewestFirst(dbc dbctx.Context) ([]*types.Profile, error) {
	transaction := dbc.Pick(pr.db)
	var results []*types.Profile
	if err := transaction.WithContext(dbc.Ctx).Order("created_at DESC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *profileRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Pick(pr.db)
	if len(updates) == 0 {
		return nil
	}
	res := transaction.WithContext(dbc.Ctx).Model(&types.Profile{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
