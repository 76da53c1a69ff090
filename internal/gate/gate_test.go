package gate

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func resolved(s Session) State { return State{Phase: Resolved, Session: s} }

func TestAuthorizeRoleMismatchRedirectsToDashboard(t *testing.T) {
	cur := resolved(Session{UserID: "u1", Role: RoleUser, Authenticated: true})
	got, next := Authorize(cur, nil, ViewAdmin, RoleAdmin)
	if got != Redirect(ViewDashboard) {
		t.Fatalf("got %+v want redirect to dashboard", got)
	}
	if next != cur {
		t.Fatalf("state changed on mismatch: %+v", next)
	}
}

func TestAuthorizeUnauthenticatedWithoutCacheRedirectsToLanding(t *testing.T) {
	cur := resolved(Anonymous)
	got, next := Authorize(cur, nil, ViewDashboard, "")
	if got != Redirect(ViewLanding) {
		t.Fatalf("got %+v want redirect to landing", got)
	}
	if next != cur {
		t.Fatalf("state changed: %+v", next)
	}
}

func TestAuthorizeRecoversFromCachedSnapshot(t *testing.T) {
	cached := []byte(`{"user":{"id":"u9","email":"boss@example.com"},"role":"admin","isAuthenticated":true,"userId":"u9"}`)
	got, next := Authorize(resolved(Anonymous), cached, ViewAdmin, RoleAdmin)
	if got != Render(ViewAdmin) {
		t.Fatalf("got %+v want render admin", got)
	}
	want := resolved(Session{UserID: "u9", Email: "boss@example.com", Role: RoleAdmin, Authenticated: true})
	if diff := cmp.Diff(want, next); diff != "" {
		t.Fatalf("adopted session mismatch (-want +got):\n%s", diff)
	}
}

func TestAuthorizeCachedSnapshotStillRoleChecked(t *testing.T) {
	cached := []byte(`{"user":{"id":"u2"},"isAuthenticated":true}`)
	got, next := Authorize(resolved(Anonymous), cached, ViewAdmin, RoleAdmin)
	if got != Redirect(ViewDashboard) {
		t.Fatalf("got %+v want redirect to dashboard", got)
	}
	if next.Session.Role != RoleUser || next.Session.UserID != "u2" || !next.Session.Authenticated {
		t.Fatalf("cached session not adopted with default role: %+v", next.Session)
	}
}

func TestAuthorizeIgnoresCorruptOrSignedOutCache(t *testing.T) {
	for _, raw := range [][]byte{
		[]byte("{garbage"),
		[]byte(`{"isAuthenticated":false,"role":"admin"}`),
		[]byte(""),
	} {
		got, next := Authorize(resolved(Anonymous), raw, ViewCart, "")
		if got != Redirect(ViewLanding) {
			t.Fatalf("cache %q: got %+v want redirect to landing", raw, got)
		}
		if next.Session.Authenticated {
			t.Fatalf("cache %q: session should stay anonymous", raw)
		}
	}
}

func TestAuthorizePendingShowsLoading(t *testing.T) {
	cached := []byte(`{"isAuthenticated":true,"role":"admin"}`)
	for _, phase := range []Phase{Unresolved, Resolving} {
		cur := State{Phase: phase}
		got, next := Authorize(cur, cached, ViewAdmin, RoleAdmin)
		if got != ShowLoading() {
			t.Fatalf("phase %s: got %+v want loading", phase, got)
		}
		if next != cur {
			t.Fatalf("phase %s: state changed", phase)
		}
	}
}

func TestAuthorizeAnyRoleWithoutRequirement(t *testing.T) {
	for _, role := range []string{RoleUser, RoleAdmin} {
		got, _ := Authorize(resolved(Session{UserID: "u", Role: role, Authenticated: true}), nil, ViewProfile, "")
		if got != Render(ViewProfile) {
			t.Fatalf("role %s: got %+v want render", role, got)
		}
	}
}

func TestNavigate(t *testing.T) {
	user := resolved(Session{UserID: "u", Role: RoleUser, Authenticated: true})
	cases := []struct {
		name string
		cur  State
		path string
		want Decision
	}{
		{"landing is public", resolved(Anonymous), "/", Render(ViewLanding)},
		{"login is public while resolving", State{Phase: Resolving}, "/login", Render(ViewLogin)},
		{"signup trailing slash", resolved(Anonymous), "/signup/", Render(ViewSignup)},
		{"unknown path", user, "/does-not-exist", Redirect(ViewLanding)},
		{"cart needs auth", resolved(Anonymous), "/cart", Redirect(ViewLanding)},
		{"cart for user", user, "/cart", Render(ViewCart)},
		{"admin for user", user, "/admin", Redirect(ViewDashboard)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, _ := Navigate(tc.cur, nil, tc.path)
			if got != tc.want {
				t.Fatalf("Navigate(%q)=%+v want %+v", tc.path, got, tc.want)
			}
		})
	}
}

func TestDefaultViewFor(t *testing.T) {
	if DefaultViewFor(RoleAdmin) != ViewAdmin || DefaultViewFor(RoleUser) != ViewDashboard || DefaultViewFor("") != ViewDashboard {
		t.Fatalf("unexpected default views")
	}
}

func TestDecisionConstructors(t *testing.T) {
	got := []Decision{Render(ViewCart), Redirect(ViewLanding), ShowLoading()}
	want := []Decision{
		{Kind: KindRender, View: ViewCart},
		{Kind: KindRedirect, View: ViewLanding},
		{Kind: KindShowLoading},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decisions mismatch (-want +got):\n%s", diff)
	}
	if s := ShowLoading().Kind.String(); s != "loading" {
		t.Fatalf("ShowLoading kind = %q, want loading", s)
	}
	if s := Kind(42).String(); s != "unknown" {
		t.Fatalf("Kind(42) = %q, want unknown", s)
	}
}
