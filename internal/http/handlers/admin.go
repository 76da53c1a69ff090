package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teecraft/storefront/internal/http/response"
	"github.com/teecraft/storefront/internal/services"
)

type AdminHandler struct {
	admin services.AdminService
}

func NewAdminHandler(admin services.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// GET /api/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	users, err := h.admin.ListUsers(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"users": users})
}

// PATCH /api/admin/users/:id
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Role     *string `json:"role"`
		FullName *string `json:"full_name"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	p, err := h.admin.UpdateUser(c.Request.Context(), id, services.UpdateUserInput{Role: req.Role, FullName: req.FullName})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": p})
}

// GET /api/admin/users/:id/orders
func (h *AdminHandler) UserOrders(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	orders, err := h.admin.UserOrders(c.Request.Context(), id)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"orders": orders})
}

// GET /api/admin/orders?status=&search=
func (h *AdminHandler) ListOrders(c *gin.Context) {
	orders, err := h.admin.ListOrders(c.Request.Context(), c.Query("status"), c.Query("search"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"orders": orders})
}

// PATCH /api/admin/orders/:id/status
func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if err := h.admin.UpdateOrderStatus(c.Request.Context(), id, req.Status); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"id": id, "status": req.Status})
}

// DELETE /api/admin/orders/:id
func (h *AdminHandler) DeleteOrder(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.admin.DeleteOrder(c.Request.Context(), id); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"ok": true})
}

// GET /api/admin/summary
func (h *AdminHandler) Summary(c *gin.Context) {
	sum, err := h.admin.Summary(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, sum)
}
