package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teecraft/storefront/internal/http/response"
	"github.com/teecraft/storefront/internal/platform/ctxutil"
	"github.com/teecraft/storefront/internal/services"
)

// CartHandler exposes the client-local cart kept in the cart snapshot.
type CartHandler struct {
	cart services.CartService
}

func NewCartHandler(cart services.CartService) *CartHandler {
	return &CartHandler{cart: cart}
}

func clientID(c *gin.Context) string {
	return ctxutil.GetClientID(c.Request.Context())
}

func (h *CartHandler) respond(c *gin.Context, view services.CartView, err error) {
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// GET /api/cart
func (h *CartHandler) Get(c *gin.Context) {
	response.RespondOK(c, h.cart.View(c.Request.Context(), clientID(c)))
}

// POST /api/cart/lines
func (h *CartHandler) AddLine(c *gin.Context) {
	var req struct {
		ProductID string `json:"product_id"`
		Color     string `json:"color"`
		Size      string `json:"size"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	view, line, err := h.cart.Add(c.Request.Context(), clientID(c), services.AddLineInput{
		ProductID: req.ProductID,
		Color:     req.Color,
		Size:      req.Size,
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"cart": view, "line": line})
}

// PATCH /api/cart/lines/:key/quantity
func (h *CartHandler) SetQuantity(c *gin.Context) {
	var req struct {
		Delta int `json:"delta"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	view, err := h.cart.SetQuantity(c.Request.Context(), clientID(c), c.Param("key"), req.Delta)
	h.respond(c, view, err)
}

// PATCH /api/cart/lines/:key/selected
func (h *CartHandler) SetSelected(c *gin.Context) {
	var req struct {
		Selected *bool `json:"selected"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Selected == nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errMissingSelected)
		return
	}
	view, err := h.cart.SetSelected(c.Request.Context(), clientID(c), c.Param("key"), *req.Selected)
	h.respond(c, view, err)
}

// PATCH /api/cart/selected
func (h *CartHandler) SetSelectedAll(c *gin.Context) {
	var req struct {
		Selected *bool `json:"selected"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Selected == nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errMissingSelected)
		return
	}
	view, err := h.cart.SetSelectedAll(c.Request.Context(), clientID(c), *req.Selected)
	h.respond(c, view, err)
}

// PATCH /api/cart/lines/:key/variant
func (h *CartHandler) EditVariant(c *gin.Context) {
	var req struct {
		Color string `json:"color"`
		Size  string `json:"size"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	view, line, err := h.cart.EditVariant(c.Request.Context(), clientID(c), c.Param("key"), req.Color, req.Size)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"cart": view, "line": line})
}

// DELETE /api/cart/lines/:key
func (h *CartHandler) RemoveLine(c *gin.Context) {
	view, err := h.cart.Remove(c.Request.Context(), clientID(c), c.Param("key"))
	h.respond(c, view, err)
}

// DELETE /api/cart
func (h *CartHandler) Clear(c *gin.Context) {
	view, err := h.cart.Clear(c.Request.Context(), clientID(c))
	h.respond(c, view, err)
}
