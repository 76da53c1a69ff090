package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/teecraft/storefront/internal/http/middleware"
	"github.com/teecraft/storefront/internal/http/response"
)

type SessionHandler struct {
	gate *middleware.GateMiddleware
}

func NewSessionHandler(gate *middleware.GateMiddleware) *SessionHandler {
	return &SessionHandler{gate: gate}
}

// GET /api/session
func (h *SessionHandler) Get(c *gin.Context) {
	st := h.gate.Current(c)
	response.RespondOK(c, gin.H{
		"phase":   st.Phase.String(),
		"session": st.Session,
	})
}
