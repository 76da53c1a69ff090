package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/teecraft/storefront/internal/domain"
	"github.com/teecraft/storefront/internal/gate"
	"github.com/teecraft/storefront/internal/platform/dbctx"
	"github.com/teecraft/storefront/internal/platform/logger"
	"github.com/teecraft/storefront/internal/realtime/bus"
	"github.com/teecraft/storefront/internal/snapshot"
)

type managerFixture struct {
	mgr       *Manager
	profiles  *fakeProfiles
	verifier  *fakeVerifier
	snapshots *snapshot.Snapshots
	userID    uuid.UUID
}

func newManagerFixture(t *testing.T) *managerFixture {
	t.Helper()
	log := logger.NewNop()
	id := uuid.New()
	profiles := newFakeProfiles()
	profiles.rows[id] = &types.Profile{ID: id, Email: "shopper@example.com", Role: "user"}
	verifier := &fakeVerifier{idents: map[string]*Identity{
		"good-token": {UserID: id, Email: "shopper@example.com"},
	}}
	loader := NewProfileLoader(log, profiles, DefaultRetryPolicy())
	loader.sleep = (&recordingSleep{}).sleep
	snaps := snapshot.New(snapshot.NewMemoryStore(), log)
	return &managerFixture{
		mgr:       NewManager(log, verifier, loader, snaps),
		profiles:  profiles,
		verifier:  verifier,
		snapshots: snaps,
		userID:    id,
	}
}

func TestManagerResolvesAuthenticatedAndCaches(t *testing.T) {
	f := newManagerFixture(t)
	ctx := context.Background()

	st := f.mgr.Current(ctx, "c1", "good-token")
	require.Equal(t, gate.Resolved, st.Phase)
	assert.True(t, st.Session.Authenticated)
	assert.Equal(t, "user", st.Session.Role)
	assert.Equal(t, f.userID.String(), st.Session.UserID)

	snap, err := snapshot.ParseAuth(f.snapshots.RawAuth(ctx, "c1"))
	require.NoError(t, err)
	assert.True(t, snap.IsAuthenticated)

	// Same token: no second profile fetch.
	gets := f.profiles.gets
	_ = f.mgr.Current(ctx, "c1", "good-token")
	assert.Equal(t, gets, f.profiles.gets)
}

func TestManagerAnonymousWithoutOrWithBadToken(t *testing.T) {
	f := newManagerFixture(t)
	ctx := context.Background()

	st := f.mgr.Current(ctx, "c1", "")
	assert.Equal(t, gate.State{Phase: gate.Resolved, Session: gate.Anonymous}, st)

	st = f.mgr.Current(ctx, "c1", "forged")
	assert.Equal(t, gate.State{Phase: gate.Resolved, Session: gate.Anonymous}, st)
}

func TestManagerFailsClosedWhenProfileUnavailable(t *testing.T) {
	f := newManagerFixture(t)
	ctx := context.Background()
	delete(f.profiles.rows, f.userID)
	f.profiles.insertErr = assert.AnError
	require.NoError(t, f.snapshots.SaveAuth(ctx, "c1", snapshot.AuthSnapshot{IsAuthenticated: true, Role: "user"}))

	st := f.mgr.Current(ctx, "c1", "good-token")
	assert.Equal(t, gate.Resolved, st.Phase)
	assert.False(t, st.Session.Authenticated)
	assert.Nil(t, f.snapshots.RawAuth(ctx, "c1"), "anomalous session must clear the cached snapshot")
}

func TestManagerConcurrentCallerSeesResolving(t *testing.T) {
	f := newManagerFixture(t)
	f.verifier.block = make(chan struct{})
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	var first gate.State
	go func() {
		defer wg.Done()
		first = f.mgr.Current(ctx, "c1", "good-token")
	}()

	require.Eventually(t, func() bool { return f.mgr.Peek("c1").Phase == gate.Resolving }, time.Second, 5*time.Millisecond)
	second := f.mgr.Current(ctx, "c1", "good-token")
	assert.Equal(t, gate.Resolving, second.Phase)

	close(f.verifier.block)
	wg.Wait()
	assert.Equal(t, gate.Resolved, first.Phase)
	assert.True(t, first.Session.Authenticated)
}

func TestManagerNewTokenDuringResolutionIsNotKeptWaiting(t *testing.T) {
	f := newManagerFixture(t)
	f.verifier.block = make(chan struct{})
	f.verifier.blockOn = "good-token"
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = f.mgr.Current(ctx, "c1", "good-token")
	}()
	require.Eventually(t, func() bool { return f.mgr.Peek("c1").Phase == gate.Resolving }, time.Second, 5*time.Millisecond)

	st := f.mgr.Current(ctx, "c1", "other-token")
	assert.Equal(t, gate.Resolved, st.Phase)
	assert.False(t, st.Session.Authenticated)

	close(f.verifier.block)
	wg.Wait()
	// The stale resolution for good-token must not overwrite the newer entry.
	assert.Equal(t, st, f.mgr.Peek("c1"))
}

func TestManagerCancelledResolutionIsRetried(t *testing.T) {
	f := newManagerFixture(t)
	f.profiles.script = []error{errTransient}
	f.mgr.loader.sleep = func(dbc dbctx.Context, d time.Duration) error { return sleepCtx(dbc.Ctx, d) }
	require.NoError(t, f.snapshots.SaveAuth(context.Background(), "c1", snapshot.AuthSnapshot{IsAuthenticated: true, Role: "user"}))

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	st := f.mgr.Current(cancelled, "c1", "good-token")
	assert.Equal(t, gate.Unresolved, st.Phase)
	assert.Equal(t, gate.Unresolved, f.mgr.Peek("c1").Phase)
	assert.NotNil(t, f.snapshots.RawAuth(context.Background(), "c1"), "an aborted request must keep the cached snapshot")
	assert.Zero(t, f.profiles.inserts)

	st = f.mgr.Current(context.Background(), "c1", "good-token")
	require.Equal(t, gate.Resolved, st.Phase)
	assert.True(t, st.Session.Authenticated)
}

func TestManagerHandlesAuthEvents(t *testing.T) {
	f := newManagerFixture(t)
	ctx := context.Background()

	_ = f.mgr.Current(ctx, "c1", "good-token")
	require.NotNil(t, f.snapshots.RawAuth(ctx, "c1"))

	f.mgr.HandleEvent(ctx, bus.AuthEvent{Type: bus.EventSignedOut, ClientID: "c1"})
	assert.Equal(t, gate.Unresolved, f.mgr.Peek("c1").Phase)
	assert.Nil(t, f.snapshots.RawAuth(ctx, "c1"))

	_ = f.mgr.Current(ctx, "c1", "good-token")
	f.mgr.HandleEvent(ctx, bus.AuthEvent{Type: bus.EventSignedIn, ClientID: "c1"})
	assert.Equal(t, gate.Unresolved, f.mgr.Peek("c1").Phase)

	gets := f.profiles.gets
	st := f.mgr.Current(ctx, "c1", "good-token")
	assert.True(t, st.Session.Authenticated)
	assert.Greater(t, f.profiles.gets, gets, "signed_in must force a fresh resolution")
}

func TestManagerSubscribeThroughBus(t *testing.T) {
	f := newManagerFixture(t)
	b := bus.NewMemoryBus(logger.NewNop())
	defer b.Close()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_ = f.mgr.Current(ctx, "c1", "good-token")
	require.NoError(t, f.mgr.Subscribe(ctx, b))
	require.NoError(t, b.Publish(ctx, bus.AuthEvent{Type: bus.EventSignedOut, ClientID: "c1"}))

	require.Eventually(t, func() bool { return f.mgr.Peek("c1").Phase == gate.Unresolved }, time.Second, 5*time.Millisecond)
}

func TestManagerAdopt(t *testing.T) {
	f := newManagerFixture(t)
	adopted := gate.State{Phase: gate.Resolved, Session: gate.Session{UserID: "u", Role: "admin", Authenticated: true}}
	f.mgr.Adopt("c1", "", adopted)
	assert.Equal(t, adopted, f.mgr.Current(context.Background(), "c1", ""))
}
