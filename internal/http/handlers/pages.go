package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/teecraft/storefront/internal/gate"
	"github.com/teecraft/storefront/internal/http/middleware"
	"github.com/teecraft/storefront/internal/http/response"
)

// PagesHandler answers view navigations with the gate's decision.
type PagesHandler struct {
	gate *middleware.GateMiddleware
}

func NewPagesHandler(gate *middleware.GateMiddleware) *PagesHandler {
	return &PagesHandler{gate: gate}
}

func (h *PagesHandler) View(c *gin.Context) {
	d := h.gate.Navigate(c, c.Request.URL.Path)
	sess, _ := middleware.SessionFrom(c)
	middleware.WriteDecision(c, d, gin.H{"view": d.View, "session": sess})
}

// NoRoute sends unknown views to the landing page and unknown API paths a 404.
func (h *PagesHandler) NoRoute(c *gin.Context) {
	if strings.HasPrefix(c.Request.URL.Path, "/api/") {
		response.RespondError(c, http.StatusNotFound, "not_found", errNotFound)
		return
	}
	response.RespondRedirect(c, gate.ViewLanding)
}
