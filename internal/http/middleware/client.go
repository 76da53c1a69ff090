package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/teecraft/storefront/internal/platform/ctxutil"
)

const (
	ClientCookie   = "sf_client"
	HeaderClientID = "X-Client-Id"

	clientCookieMaxAge = 365 * 24 * 60 * 60
)

// AttachClientID identifies the browser that owns the local auth and cart
// snapshots. A missing or malformed id is replaced and set as a cookie.
func AttachClientID(secureCookie bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		clientID := strings.TrimSpace(c.GetHeader(HeaderClientID))
		if clientID == "" {
			clientID, _ = c.Cookie(ClientCookie)
		}
		if _, err := uuid.Parse(clientID); err != nil {
			clientID = uuid.NewString()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(ClientCookie, clientID, clientCookieMaxAge, "/", "", secureCookie, true)
		}
		c.Set("client_id", clientID)
		c.Writer.Header().Set(HeaderClientID, clientID)
		c.Request = c.Request.WithContext(ctxutil.WithClientID(c.Request.Context(), clientID))
		c.Next()
	}
}
