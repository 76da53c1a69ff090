package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/teecraft/storefront/internal/http/response"
	"github.com/teecraft/storefront/internal/services"
)

var errMissingSelected = errors.New("selected is required")

type StoreHandler struct {
	catalog   services.CatalogService
	favorites services.FavoriteService
	storeCart services.StoreCartService
}

func NewStoreHandler(catalog services.CatalogService, favorites services.FavoriteService, storeCart services.StoreCartService) *StoreHandler {
	return &StoreHandler{catalog: catalog, favorites: favorites, storeCart: storeCart}
}

// GET /api/products?category=
func (h *StoreHandler) ListProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context(), c.Query("category"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"products": products})
}

// GET /api/catalog/options
func (h *StoreHandler) Options(c *gin.Context) {
	response.RespondOK(c, h.catalog.Options())
}

// POST /api/store-cart/items
func (h *StoreHandler) AddToCart(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	var req struct {
		ProductID string `json:"product_id"`
		Color     string `json:"color"`
		Size      string `json:"size"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_product_id", err)
		return
	}
	res, err := h.storeCart.Add(c.Request.Context(), userID, productID, req.Color, req.Size)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/store-cart/count
func (h *StoreHandler) CartCount(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	n, err := h.storeCart.Count(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"count": n})
}

// GET /api/store-cart/items
func (h *StoreHandler) ListCartItems(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	items, err := h.storeCart.List(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"items": items})
}

// DELETE /api/store-cart
func (h *StoreHandler) ClearCart(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	if err := h.storeCart.Clear(c.Request.Context(), userID); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"count": 0})
}

// GET /api/favorites
func (h *StoreHandler) ListFavorites(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	ids, err := h.favorites.ListIDs(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"product_ids": ids})
}

// GET /api/favorites/products?category=
func (h *StoreHandler) ListFavoriteProducts(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	products, err := h.favorites.ListProducts(c.Request.Context(), userID, c.Query("category"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"products": products})
}

// POST /api/favorites/:productId/toggle
func (h *StoreHandler) ToggleFavorite(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	productID, ok := uuidParam(c, "productId")
	if !ok {
		return
	}
	on, err := h.favorites.Toggle(c.Request.Context(), userID, productID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"product_id": productID, "favorite": on})
}
