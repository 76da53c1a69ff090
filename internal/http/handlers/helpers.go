package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/teecraft/storefront/internal/http/response"
	"github.com/teecraft/storefront/internal/platform/ctxutil"
)

var (
	errNotFound     = errors.New("not found")
	errUnauthorized = errors.New("missing or invalid token")
)

// requestUserID returns the authenticated user or writes a 401.
func requestUserID(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errUnauthorized)
		return uuid.Nil, false
	}
	return rd.UserID, true
}

// uuidParam parses a path parameter or writes a 400.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_"+name, err)
		return uuid.Nil, false
	}
	return id, true
}
