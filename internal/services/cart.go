package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/teecraft/storefront/internal/data/repos"
	domaincart "github.com/teecraft/storefront/internal/domain/cart"
	"github.com/teecraft/storefront/internal/domain/catalog"
	"github.com/teecraft/storefront/internal/platform/apierr"
	"github.com/teecraft/storefront/internal/platform/dbctx"
	"github.com/teecraft/storefront/internal/platform/gcp"
	"github.com/teecraft/storefront/internal/platform/logger"
	"github.com/teecraft/storefront/internal/snapshot"
)

var ErrProductNotFound = errors.New("product not found")

type CartView struct {
	Lines     []domaincart.Line `json:"lines"`
	Subtotal  float64           `json:"subtotal"`
	ItemCount int               `json:"item_count"`
	LineCount int               `json:"line_count"`
}

func viewOf(c domaincart.Cart) CartView {
	lines := c.Lines
	if lines == nil {
		lines = []domaincart.Line{}
	}
	return CartView{
		Lines:     lines,
		Subtotal:  c.Subtotal(),
		ItemCount: c.ItemCount(),
		LineCount: c.Len(),
	}
}

type AddLineInput struct {
	ProductID string
	Color     string
	Size      string
}

// CartService applies reconciler operations to a client's cart snapshot. Each
// mutation loads the snapshot, applies the operation and persists the result
// before returning.
type CartService interface {
	View(ctx context.Context, clientID string) CartView
	Add(ctx context.Context, clientID string, in AddLineInput) (CartView, domaincart.Line, error)
	SetQuantity(ctx context.Context, clientID, key string, delta int) (CartView, error)
	Remove(ctx context.Context, clientID, key string) (CartView, error)
	Clear(ctx context.Context, clientID string) (CartView, error)
	SetSelected(ctx context.Context, clientID, key string, selected bool) (CartView, error)
	SetSelectedAll(ctx context.Context, clientID string, selected bool) (CartView, error)
	EditVariant(ctx context.Context, clientID, key, color, size string) (CartView, *domaincart.Line, error)
}

type cartService struct {
	log       *logger.Logger
	products  repos.ProductRepo
	images    gcp.ImageStore
	snapshots *snapshot.Snapshots

	locks sync.Map
}

func NewCartService(log *logger.Logger, products repos.ProductRepo, images gcp.ImageStore, snapshots *snapshot.Snapshots) CartService {
	return &cartService{
		log:       log.With("service", "CartService"),
		products:  products,
		images:    images,
		snapshots: snapshots,
	}
}

func (cs *cartService) lock(clientID string) func() {
	v, _ := cs.locks.LoadOrStore(clientID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (cs *cartService) View(ctx context.Context, clientID string) CartView {
	return viewOf(cs.snapshots.LoadCart(ctx, clientID))
}

func (cs *cartService) mutate(ctx context.Context, clientID string, op func(domaincart.Cart) domaincart.Cart) (CartView, error) {
	unlock := cs.lock(clientID)
	defer unlock()
	next := op(cs.snapshots.LoadCart(ctx, clientID))
	if err := cs.snapshots.SaveCart(ctx, clientID, next); err != nil {
		return CartView{}, err
	}
	return viewOf(next), nil
}

func (cs *cartService) Add(ctx context.Context, clientID string, in AddLineInput) (CartView, domaincart.Line, error) {
	in.Color = strings.TrimSpace(in.Color)
	in.Size = strings.TrimSpace(in.Size)
	if in.Color == "" {
		return CartView{}, domaincart.Line{}, invalid("color", MsgSelectColor)
	}
	if in.Size == "" {
		return CartView{}, domaincart.Line{}, invalid("size", MsgSelectSize)
	}
	product, err := cs.lookupProduct(ctx, in.ProductID)
	if err != nil {
		return CartView{}, domaincart.Line{}, err
	}

	var added domaincart.Line
	view, err := cs.mutate(ctx, clientID, func(c domaincart.Cart) domaincart.Cart {
		next, line := c.AddOrIncrement(domaincart.Item{
			ProductID: product.ID.String(),
			Name:      product.Name,
			Image:     cs.imageURL(product.ImageURL),
			Color:     in.Color,
			Size:      in.Size,
			UnitPrice: product.Price,
		})
		added = line
		return next
	})
	if err != nil {
		return CartView{}, domaincart.Line{}, err
	}
	return view, added, nil
}

func (cs *cartService) lookupProduct(ctx context.Context, rawID string) (*catalog.Product, error) {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return nil, apierr.BadRequest("invalid_product_id", fmt.Errorf("invalid product id %q", rawID))
	}
	found, err := cs.products.GetByIDs(dbctx.New(ctx), []uuid.UUID{id})
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	if len(found) == 0 || !found[0].IsActive {
		return nil, apierr.NotFound("product_not_found", ErrProductNotFound)
	}
	return found[0], nil
}

func (cs *cartService) imageURL(key string) string {
	if cs.images == nil || key == "" {
		return key
	}
	return cs.images.PublicURL(key)
}

func (cs *cartService) SetQuantity(ctx context.Context, clientID, key string, delta int) (CartView, error) {
	return cs.mutate(ctx, clientID, func(c domaincart.Cart) domaincart.Cart {
		return c.SetQuantity(key, delta)
	})
}

func (cs *cartService) Remove(ctx context.Context, clientID, key string) (CartView, error) {
	return cs.mutate(ctx, clientID, func(c domaincart.Cart) domaincart.Cart {
		return c.Remove(key)
	})
}

func (cs *cartService) Clear(ctx context.Context, clientID string) (CartView, error) {
	return cs.mutate(ctx, clientID, func(c domaincart.Cart) domaincart.Cart {
		return c.ClearAll()
	})
}

func (cs *cartService) SetSelected(ctx context.Context, clientID, key string, selected bool) (CartView, error) {
	return cs.mutate(ctx, clientID, func(c domaincart.Cart) domaincart.Cart {
		return c.SetSelected(key, selected)
	})
}

func (cs *cartService) SetSelectedAll(ctx context.Context, clientID string, selected bool) (CartView, error) {
	return cs.mutate(ctx, clientID, func(c domaincart.Cart) domaincart.Cart {
		return c.SetSelectedAll(selected)
	})
}

// EditVariant returns a nil line when key is not in the cart.
func (cs *cartService) EditVariant(ctx context.Context, clientID, key, color, size string) (CartView, *domaincart.Line, error) {
	var edited *domaincart.Line
	view, err := cs.mutate(ctx, clientID, func(c domaincart.Cart) domaincart.Cart {
		next, line, ok := c.EditVariant(key, strings.TrimSpace(color), strings.TrimSpace(size))
		if ok {
			edited = &line
		}
		return next
	})
	if err != nil {
		return CartView{}, nil, err
	}
	return view, edited, nil
}
