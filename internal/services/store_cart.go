package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/teecraft/storefront/internal/data/repos"
	types "github.com/teecraft/storefront/internal/domain"
	"github.com/teecraft/storefront/internal/platform/apierr"
	"github.com/teecraft/storefront/internal/platform/dbctx"
	"github.com/teecraft/storefront/internal/platform/logger"
)

var ErrVariantNotFound = errors.New("product variant not found")

type StoreCartResult struct {
	Item  *types.CartItem `json:"item"`
	Count int             `json:"count"`
}

// StoreCartService manages the signed-in user's cart rows in the database.
type StoreCartService interface {
	Add(ctx context.Context, userID uuid.UUID, productID uuid.UUID, color, size string) (*StoreCartResult, error)
	Count(ctx context.Context, userID uuid.UUID) (int, error)
	List(ctx context.Context, userID uuid.UUID) ([]*types.CartItem, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type storeCartService struct {
	log      *logger.Logger
	variants repos.ProductVariantRepo
	items    repos.CartItemRepo
}

func NewStoreCartService(log *logger.Logger, variants repos.ProductVariantRepo, items repos.CartItemRepo) StoreCartService {
	return &storeCartService{
		log:      log.With("service", "StoreCartService"),
		variants: variants,
		items:    items,
	}
}

func (s *storeCartService) Add(ctx context.Context, userID uuid.UUID, productID uuid.UUID, color, size string) (*StoreCartResult, error) {
	color = strings.TrimSpace(color)
	size = strings.TrimSpace(size)
	if color == "" {
		return nil, invalid("color", MsgSelectColor)
	}
	if size == "" {
		return nil, invalid("size", MsgSelectSize)
	}
	dbc := dbctx.New(ctx)
	variant, err := s.variants.Find(dbc, productID, color, size)
	if err != nil {
		return nil, fmt.Errorf("resolve variant: %w", err)
	}
	if variant == nil {
		return nil, apierr.NotFound("variant_not_found", ErrVariantNotFound)
	}
	item, err := s.items.AddOrIncrement(dbc, userID, productID, variant.ID)
	if err != nil {
		return nil, fmt.Errorf("add to cart: %w", err)
	}
	count, err := s.items.SumQuantity(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("count cart: %w", err)
	}
	s.log.Debug("Added to store cart", "user_id", userID, "variant_id", variant.ID, "quantity", item.Quantity)
	return &StoreCartResult{Item: item, Count: count}, nil
}

func (s *storeCartService) Count(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.items.SumQuantity(dbctx.New(ctx), userID)
}

func (s *storeCartService) List(ctx context.Context, userID uuid.UUID) ([]*types.CartItem, error) {
	items, err := s.items.ListByUser(dbctx.New(ctx), userID)
	if err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}
	if items == nil {
		items = []*types.CartItem{}
	}
	return items, nil
}

func (s *storeCartService) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.items.DeleteByUser(dbctx.New(ctx), userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	s.log.Debug("Cleared store cart", "user_id", userID)
	return nil
}
