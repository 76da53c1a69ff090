package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teecraft/storefront/internal/platform/ctxutil"
)

func clientRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachClientID(false))
	r.GET("/who", func(c *gin.Context) {
		c.String(http.StatusOK, ctxutil.GetClientID(c.Request.Context()))
	})
	return r
}

func TestAttachClientIDIssuesCookie(t *testing.T) {
	r := clientRouter()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/who", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	_, err := uuid.Parse(rec.Body.String())
	require.NoError(t, err)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, ClientCookie, cookies[0].Name)
	assert.Equal(t, rec.Body.String(), cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
}

func TestAttachClientIDReusesCookieAndHeader(t *testing.T) {
	r := clientRouter()
	id := uuid.NewString()

	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	req.AddCookie(&http.Cookie{Name: ClientCookie, Value: id})
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, id, rec.Body.String())
	assert.Empty(t, rec.Result().Cookies())

	other := uuid.NewString()
	req = httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set(HeaderClientID, other)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, other, rec.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set(HeaderClientID, "../../etc")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.NotEqual(t, "../../etc", rec.Body.String())
	assert.Len(t, rec.Result().Cookies(), 1)
}
