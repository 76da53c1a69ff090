package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/teecraft/storefront/internal/data/repos"
	types "github.com/teecraft/storefront/internal/domain"
	"github.com/teecraft/storefront/internal/domain/user"
	"github.com/teecraft/storefront/internal/platform/apierr"
	"github.com/teecraft/storefront/internal/platform/dbctx"
	"github.com/teecraft/storefront/internal/platform/logger"
)

type ProfileView struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	Role        string         `json:"role"`
	DisplayName string         `json:"display_name"`
	Joined      time.Time      `json:"joined"`
	Orders      []*types.Order `json:"orders"`
}

type ProfileService interface {
	Get(ctx context.Context, userID uuid.UUID) (*ProfileView, error)
}

type profileService struct {
	log      *logger.Logger
	profiles repos.ProfileRepo
	orders   repos.OrderRepo
}

func NewProfileService(log *logger.Logger, profiles repos.ProfileRepo, orders repos.OrderRepo) ProfileService {
	return &profileService{
		log:      log.With("service", "ProfileService"),
		profiles: profiles,
		orders:   orders,
	}
}

func (s *profileService) Get(ctx context.Context, userID uuid.UUID) (*ProfileView, error) {
	dbc := dbctx.New(ctx)
	p, err := s.profiles.GetByID(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if p == nil {
		return nil, apierr.NotFound("profile_not_found", ErrProfileNotFound)
	}
	orders, err := s.orders.ListByUser(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	if orders == nil {
		orders = []*types.Order{}
	}
	return &ProfileView{
		ID:          p.ID,
		Email:       p.Email,
		Role:        user.NormalizeRole(p.Role),
		DisplayName: p.DisplayName(),
		Joined:      p.CreatedAt,
		Orders:      orders,
	}, nil
}
