package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teecraft/storefront/internal/app"
	"github.com/teecraft/storefront/internal/data/repos/testutil"
	"github.com/teecraft/storefront/internal/gate"
	"github.com/teecraft/storefront/internal/platform/dbctx"
	"github.com/teecraft/storefront/internal/platform/logger"
	"github.com/teecraft/storefront/internal/snapshot"
)

var dbSeq atomic.Int64

func newTestApp(t *testing.T) *app.App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := app.DefaultConfig()
	cfg.ServiceName = ""
	cfg.JWTSecretKey = "router-test-secret"
	cfg.DB.SQLitePath = fmt.Sprintf("file:router_test_%d?mode=memory&cache=shared", dbSeq.Add(1))
	cfg.SnapshotMode = snapshot.ModeMemory
	cfg.RedisAddr = ""
	cfg.ObjectStorageMode = "disabled"
	cfg.ProfileRetryAttempts = 1
	cfg.ProfileRetryDelay = 0

	a, err := app.New(logger.NewNop(), cfg)
	require.NoError(t, err)
	require.NoError(t, a.Start())
	t.Cleanup(a.Close)
	return a
}

type client struct {
	t     *testing.T
	a     *app.App
	id    string
	token string
}

func newClient(t *testing.T, a *app.App) *client {
	return &client{t: t, a: a, id: uuid.NewString()}
}

func (c *client) do(method, path string, body any) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Client-Id", c.id)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	w := httptest.NewRecorder()
	c.a.Router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (c *client) signup(email string) map[string]any {
	c.t.Helper()
	w := c.do(http.MethodPost, "/api/signup", map[string]string{
		"full_name":        "Test Shopper",
		"email":            email,
		"password":         "secret123",
		"confirm_password": "secret123",
	})
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())
	out := decode(c.t, w)
	c.token = out["access_token"].(string)
	return out
}

func (c *client) login(email string) map[string]any {
	c.t.Helper()
	w := c.do(http.MethodPost, "/api/login", map[string]string{"email": email, "password": "secret123"})
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())
	out := decode(c.t, w)
	c.token = out["access_token"].(string)
	return out
}

func TestHealthcheck(t *testing.T) {
	a := newTestApp(t)
	w := newClient(t, a).do(http.MethodGet, "/healthcheck", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAnonymousNavigation(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, a)

	for _, view := range []string{gate.ViewLanding, gate.ViewLogin, gate.ViewSignup} {
		w := c.do(http.MethodGet, view, nil)
		assert.Equal(t, http.StatusOK, w.Code, view)
	}
	for _, view := range []string{gate.ViewDashboard, gate.ViewProfile, gate.ViewCart, gate.ViewAdmin} {
		w := c.do(http.MethodGet, view, nil)
		assert.Equal(t, http.StatusFound, w.Code, view)
		assert.Equal(t, gate.ViewLanding, w.Header().Get("Location"), view)
	}
}

func TestUnknownPaths(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, a)

	w := c.do(http.MethodGet, "/no/such/page", nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, gate.ViewLanding, w.Header().Get("Location"))

	w = c.do(http.MethodGet, "/api/no-such-endpoint", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClientIDIssuedWhenMissing(t *testing.T) {
	a := newTestApp(t)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	id := w.Header().Get("X-Client-Id")
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "sf_client="+id)
}

func TestSignupThenNavigate(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, a)

	out := c.signup("shopper@teecraft.test")
	assert.Equal(t, gate.ViewDashboard, out["redirect_to"])
	assert.Equal(t, gate.RoleUser, out["role"])

	w := c.do(http.MethodGet, gate.ViewDashboard, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	sess := decode(t, w)["session"].(map[string]any)
	assert.Equal(t, "shopper@teecraft.test", sess["email"])

	// Role mismatch lands on the dashboard.
	w = c.do(http.MethodGet, gate.ViewAdmin, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, gate.ViewDashboard, w.Header().Get("Location"))

	w = c.do(http.MethodGet, "/api/admin/users", nil)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestCachedSnapshotAdmitsClientWithoutToken(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, a)
	c.signup("cached@teecraft.test")

	c.token = ""
	w := c.do(http.MethodGet, gate.ViewProfile, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// A different browser has no snapshot.
	other := newClient(t, a)
	w = other.do(http.MethodGet, gate.ViewProfile, nil)
	assert.Equal(t, http.StatusFound, w.Code)
}

func TestLogoutClearsSession(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, a)
	c.signup("leaver@teecraft.test")

	w := c.do(http.MethodPost, "/api/logout", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "/", decode(t, w)["redirect_to"])

	c.token = ""
	w = c.do(http.MethodGet, gate.ViewDashboard, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, gate.ViewLanding, w.Header().Get("Location"))
}

func TestAdminGate(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, a)
	out := c.signup("boss@teecraft.test")

	userID := uuid.MustParse(out["user"].(map[string]any)["id"].(string))
	require.NoError(t, a.Repos.Profile.UpdateFields(dbctx.New(t.Context()), userID, map[string]interface{}{"role": gate.RoleAdmin}))

	out = c.login("boss@teecraft.test")
	assert.Equal(t, gate.ViewAdmin, out["redirect_to"])
	assert.Equal(t, gate.RoleAdmin, out["role"])

	w := c.do(http.MethodGet, gate.ViewAdmin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = c.do(http.MethodGet, "/api/admin/summary", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	summary := decode(t, w)
	assert.EqualValues(t, 1, summary["users"])
}

func TestLocalCartFlow(t *testing.T) {
	a := newTestApp(t)
	product := testutil.SeedProduct(t, t.Context(), a.DB, "Classic Tee", "T-Shirts", 20)

	anon := newClient(t, a)
	w := anon.do(http.MethodGet, "/api/cart", nil)
	assert.Equal(t, http.StatusFound, w.Code)

	c := newClient(t, a)
	c.signup("cart@teecraft.test")

	add := map[string]string{"product_id": product.ID.String(), "color": "Black", "size": "M"}
	w = c.do(http.MethodPost, "/api/cart/lines", add)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = c.do(http.MethodPost, "/api/cart/lines", add)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	line := decode(t, w)["line"].(map[string]any)
	key := line["cartId"].(string)
	assert.EqualValues(t, 2, line["quantity"])

	w = c.do(http.MethodPatch, "/api/cart/lines/"+key+"/quantity", map[string]int{"delta": -1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	view := decode(t, w)
	assert.EqualValues(t, 1, view["item_count"])
	assert.EqualValues(t, 20, view["subtotal"])

	w = c.do(http.MethodPost, "/api/cart/lines", map[string]string{"product_id": product.ID.String(), "color": "", "size": "M"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = c.do(http.MethodDelete, "/api/cart", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode(t, w)["line_count"])
}

func TestStoreEndpointsRequireBearer(t *testing.T) {
	a := newTestApp(t)
	c := newClient(t, a)

	for _, path := range []string{"/api/favorites", "/api/store-cart/count", "/api/profile"} {
		w := c.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
	}

	c.signup("fan@teecraft.test")
	w := c.do(http.MethodGet, "/api/profile", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, strings.Contains(w.Body.String(), "fan@teecraft.test"))
}

func TestStoreCartListAndClear(t *testing.T) {
	a := newTestApp(t)
	product := testutil.SeedProduct(t, t.Context(), a.DB, "Classic Tee", "T-Shirts", 20)
	testutil.SeedVariant(t, t.Context(), a.DB, product.ID, "Black", "M")

	w := newClient(t, a).do(http.MethodDelete, "/api/store-cart", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c := newClient(t, a)
	c.signup("rows@teecraft.test")
	add := map[string]string{"product_id": product.ID.String(), "color": "Black", "size": "M"}
	for i := 0; i < 2; i++ {
		w = c.do(http.MethodPost, "/api/store-cart/items", add)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w = c.do(http.MethodGet, "/api/store-cart/items", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	items := decode(t, w)["items"].([]any)
	require.Len(t, items, 1)
	assert.EqualValues(t, 2, items[0].(map[string]any)["quantity"])

	w = c.do(http.MethodDelete, "/api/store-cart", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 0, decode(t, w)["count"])

	w = c.do(http.MethodGet, "/api/store-cart/items", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode(t, w)["items"])

	w = c.do(http.MethodGet, "/api/store-cart/count", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, decode(t, w)["count"])
}
