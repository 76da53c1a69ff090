package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/teecraft/storefront/internal/gate"
	"github.com/teecraft/storefront/internal/http/response"
	"github.com/teecraft/storefront/internal/platform/ctxutil"
	"github.com/teecraft/storefront/internal/platform/logger"
	"github.com/teecraft/storefront/internal/session"
	"github.com/teecraft/storefront/internal/snapshot"
)

const sessionKey = "gate_session"

type decideFunc func(cur gate.State, cachedAuth []byte) (gate.Decision, gate.State)

// GateMiddleware runs the role gate for the calling client.
type GateMiddleware struct {
	log       *logger.Logger
	sessions  *session.Manager
	snapshots *snapshot.Snapshots
}

func NewGateMiddleware(log *logger.Logger, sessions *session.Manager, snapshots *snapshot.Snapshots) *GateMiddleware {
	return &GateMiddleware{
		log:       log.With("Middleware", "GateMiddleware"),
		sessions:  sessions,
		snapshots: snapshots,
	}
}

// Require guards a group of endpoints belonging to view. Render continues
// the chain; Redirect and ShowLoading answer the request directly.
func (gm *GateMiddleware) Require(view, requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		d := gm.decide(c, func(cur gate.State, cached []byte) (gate.Decision, gate.State) {
			return gate.Authorize(cur, cached, view, requiredRole)
		})
		if d.Kind == gate.KindRender {
			c.Next()
			return
		}
		WriteDecision(c, d, nil)
		c.Abort()
	}
}

// Navigate evaluates an arbitrary view path.
func (gm *GateMiddleware) Navigate(c *gin.Context, path string) gate.Decision {
	return gm.decide(c, func(cur gate.State, cached []byte) (gate.Decision, gate.State) {
		return gate.Navigate(cur, cached, path)
	})
}

// Current returns the client's session state without running the gate.
func (gm *GateMiddleware) Current(c *gin.Context) gate.State {
	ctx := c.Request.Context()
	return gm.sessions.Current(ctx, ctxutil.GetClientID(ctx), BearerToken(c))
}

func (gm *GateMiddleware) decide(c *gin.Context, fn decideFunc) gate.Decision {
	ctx := c.Request.Context()
	clientID := ctxutil.GetClientID(ctx)
	token := BearerToken(c)

	cur := gm.sessions.Current(ctx, clientID, token)
	var cached []byte
	if !cur.Pending() && !cur.Session.Authenticated {
		cached = gm.snapshots.RawAuth(ctx, clientID)
	}
	d, next := fn(cur, cached)
	if next != cur {
		gm.log.Debug("Session recovered from cached snapshot", "client_id", clientID, "role", next.Session.Role)
		gm.sessions.Adopt(clientID, token, next)
	}
	c.Set(sessionKey, next.Session)
	return d
}

// SessionFrom returns the session the gate admitted for this request.
func SessionFrom(c *gin.Context) (gate.Session, bool) {
	v, ok := c.Get(sessionKey)
	if !ok {
		return gate.Session{}, false
	}
	s, ok := v.(gate.Session)
	return s, ok
}

// WriteDecision answers with the gate's decision. payload is only used for
// Render.
func WriteDecision(c *gin.Context, d gate.Decision, payload any) {
	switch d.Kind {
	case gate.KindShowLoading:
		response.RespondLoading(c)
	case gate.KindRedirect:
		response.RespondRedirect(c, d.View)
	default:
		response.RespondOK(c, payload)
	}
}
