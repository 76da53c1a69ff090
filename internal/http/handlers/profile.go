package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/teecraft/storefront/internal/http/response"
	"github.com/teecraft/storefront/internal/services"
)

type ProfileHandler struct {
	profiles services.ProfileService
}

func NewProfileHandler(profiles services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GET /api/profile
func (h *ProfileHandler) Get(c *gin.Context) {
	userID, ok := requestUserID(c)
	if !ok {
		return
	}
	view, err := h.profiles.Get(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, view)
}
