// Package gate decides, per navigation request, whether a storefront view
// renders, redirects, or waits for session resolution.
package gate

import (
	"strings"

	"github.com/teecraft/storefront/internal/snapshot"
)

const (
	ViewLanding   = "/"
	ViewLogin     = "/login"
	ViewSignup    = "/signup"
	ViewDashboard = "/dashboard"
	ViewProfile   = "/profile"
	ViewCart      = "/cart"
	ViewAdmin     = "/admin"

	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Kind says what the caller should do with a navigation attempt.
type Kind int

const (
	KindRender Kind = iota
	KindRedirect
	KindShowLoading
)

func (k Kind) String() string {
	switch k {
	case KindRender:
		return "render"
	case KindRedirect:
		return "redirect"
	case KindShowLoading:
		return "loading"
	default:
		return "unknown"
	}
}

// Decision is the gate's answer for one navigation attempt. View is empty
// for ShowLoading.
type Decision struct {
	Kind Kind
	View string
}

// Render admits the caller to view.
func Render(view string) Decision { return Decision{Kind: KindRender, View: view} }

// Redirect sends the caller to view instead of the requested one.
func Redirect(view string) Decision { return Decision{Kind: KindRedirect, View: view} }

// ShowLoading holds the caller while its session is still pending.
func ShowLoading() Decision { return Decision{Kind: KindShowLoading} }

// Authorize applies the gate to a protected view. cachedAuth is the raw auth
// snapshot for the client, possibly nil or corrupt. The returned State equals
// cur unless the cached snapshot was adopted.
func Authorize(cur State, cachedAuth []byte, target, requiredRole string) (Decision, State) {
	if cur.Pending() {
		return ShowLoading(), cur
	}

	next := cur
	if !cur.Session.Authenticated {
		recovered, ok := recoverSession(cachedAuth)
		if !ok {
			return Redirect(ViewLanding), cur
		}
		next = State{Phase: Resolved, Session: recovered}
	}

	if requiredRole != "" && next.Session.Role != requiredRole {
		return Redirect(ViewDashboard), next
	}
	return Render(target), next
}

func recoverSession(raw []byte) (Session, bool) {
	snap, err := snapshot.ParseAuth(raw)
	if err != nil || !snap.IsAuthenticated {
		return Session{}, false
	}
	s := Session{
		UserID:        snap.UserID,
		Role:          snap.Role,
		Authenticated: true,
	}
	if snap.User != nil {
		if s.UserID == "" {
			s.UserID = snap.User.ID
		}
		s.Email = snap.User.Email
	}
	if strings.TrimSpace(s.Role) == "" {
		s.Role = RoleUser
	}
	return s, true
}

// DefaultViewFor is where a freshly signed-in session lands.
func DefaultViewFor(role string) string {
	if role == RoleAdmin {
		return ViewAdmin
	}
	return ViewDashboard
}

// Route describes one entry of the view table.
type Route struct {
	View         string
	Protected    bool
	RequiredRole string
}

var Routes = []Route{
	{View: ViewLanding},
	{View: ViewLogin},
	{View: ViewSignup},
	{View: ViewDashboard, Protected: true},
	{View: ViewProfile, Protected: true},
	{View: ViewCart, Protected: true},
	{View: ViewAdmin, Protected: true, RequiredRole: RoleAdmin},
}

func Lookup(path string) (Route, bool) {
	if path != "/" {
		path = strings.TrimRight(path, "/")
	}
	for _, r := range Routes {
		if r.View == path {
			return r, true
		}
	}
	return Route{}, false
}

// Navigate resolves any path: public views always render, protected views go
// through Authorize and unknown paths redirect to the landing view.
func Navigate(cur State, cachedAuth []byte, path string) (Decision, State) {
	route, ok := Lookup(path)
	if !ok {
		return Redirect(ViewLanding), cur
	}
	if !route.Protected {
		return Render(route.View), cur
	}
	return Authorize(cur, cachedAuth, route.View, route.RequiredRole)
}
