package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/teecraft/storefront/internal/data/repos"
	types "github.com/teecraft/storefront/internal/domain"
	"github.com/teecraft/storefront/internal/domain/catalog"
	"github.com/teecraft/storefront/internal/platform/apierr"
	"github.com/teecraft/storefront/internal/platform/dbctx"
	"github.com/teecraft/storefront/internal/platform/gcp"
	"github.com/teecraft/storefront/internal/platform/logger"
)

type CatalogOptions struct {
	Categories []string `json:"categories"`
	Colors     []string `json:"colors"`
	Sizes      []string `json:"sizes"`
}

type CatalogService interface {
	ListProducts(ctx context.Context, category string) ([]*types.Product, error)
	Options() CatalogOptions
}

type catalogService struct {
	log      *logger.Logger
	products repos.ProductRepo
	images   gcp.ImageStore
}

func NewCatalogService(log *logger.Logger, products repos.ProductRepo, images gcp.ImageStore) CatalogService {
	return &catalogService{
		log:      log.With("service", "CatalogService"),
		products: products,
		images:   images,
	}
}

func (s *catalogService) ListProducts(ctx context.Context, category string) ([]*types.Product, error) {
	list, err := s.products.ListActive(dbctx.New(ctx), category)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	resolveImages(s.images, list)
	return list, nil
}

func (s *catalogService) Options() CatalogOptions {
	return CatalogOptions{
		Categories: catalog.Categories,
		Colors:     catalog.Colors,
		Sizes:      catalog.Sizes,
	}
}

func resolveImages(images gcp.ImageStore, products []*types.Product) {
	if images == nil {
		return
	}
	for _, p := range products {
		if p != nil && p.ImageURL != "" {
			p.ImageURL = images.PublicURL(p.ImageURL)
		}
	}
}

type FavoriteService interface {
	ListIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
	// ListProducts returns the user's active favorite products in category.
	ListProducts(ctx context.Context, userID uuid.UUID, category string) ([]*types.Product, error)
	// Toggle removes the favorite when present, otherwise adds it, and
	// reports whether the product is now a favorite.
	Toggle(ctx context.Context, userID, productID uuid.UUID) (bool, error)
}

type favoriteService struct {
	log       *logger.Logger
	favorites repos.FavoriteRepo
	products  repos.ProductRepo
	images    gcp.ImageStore
}

func NewFavoriteService(log *logger.Logger, favorites repos.FavoriteRepo, products repos.ProductRepo, images gcp.ImageStore) FavoriteService {
	return &favoriteService{
		log:       log.With("service", "FavoriteService"),
		favorites: favorites,
		products:  products,
		images:    images,
	}
}

func (s *favoriteService) ListIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	ids, err := s.favorites.ListProductIDs(dbctx.New(ctx), userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	if ids == nil {
		ids = []uuid.UUID{}
	}
	return ids, nil
}

func (s *favoriteService) ListProducts(ctx context.Context, userID uuid.UUID, category string) ([]*types.Product, error) {
	dbc := dbctx.New(ctx)
	ids, err := s.favorites.ListProductIDs(dbc, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	found, err := s.products.GetByIDs(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("load favorite products: %w", err)
	}
	active := make([]*types.Product, 0, len(found))
	for _, p := range found {
		if p.IsActive {
			active = append(active, p)
		}
	}
	out := catalog.FilterByCategory(active, category)
	resolveImages(s.images, out)
	return out, nil
}

func (s *favoriteService) Toggle(ctx context.Context, userID, productID uuid.UUID) (bool, error) {
	dbc := dbctx.New(ctx)
	removed, err := s.favorites.Remove(dbc, userID, productID)
	if err != nil {
		return false, fmt.Errorf("remove favorite: %w", err)
	}
	if removed {
		return false, nil
	}
	found, err := s.products.GetByIDs(dbc, []uuid.UUID{productID})
	if err != nil {
		return false, fmt.Errorf("load product: %w", err)
	}
	if len(found) == 0 {
		return false, apierr.NotFound("product_not_found", ErrProductNotFound)
	}
	if err := s.favorites.Add(dbc, userID, productID); err != nil {
		return false, fmt.Errorf("add favorite: %w", err)
	}
	return true, nil
}
