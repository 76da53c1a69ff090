// Package session resolves which identity, if any, each browser client is
// acting as and keeps that answer until an auth-state change invalidates it.
package session

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/teecraft/storefront/internal/domain/user"
	"github.com/teecraft/storefront/internal/gate"
	"github.com/teecraft/storefront/internal/platform/dbctx"
	"github.com/teecraft/storefront/internal/platform/logger"
	"github.com/teecraft/storefront/internal/realtime/bus"
	"github.com/teecraft/storefront/internal/snapshot"
)

// Identity is what a verified access token proves.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// IdentityVerifier checks an access token against the auth service.
type IdentityVerifier interface {
	VerifyAccessToken(ctx context.Context, token string) (*Identity, error)
}

type entry struct {
	state gate.State
	token string
}

type Manager struct {
	log       *logger.Logger
	verifier  IdentityVerifier
	loader    *ProfileLoader
	snapshots *snapshot.Snapshots

	mu      sync.Mutex
	entries map[string]entry
}

func NewManager(log *logger.Logger, verifier IdentityVerifier, loader *ProfileLoader, snapshots *snapshot.Snapshots) *Manager {
	return &Manager{
		log:       log.With("service", "SessionManager"),
		verifier:  verifier,
		loader:    loader,
		snapshots: snapshots,
		entries:   make(map[string]entry),
	}
}

// Current returns the client's session state, resolving it when the client
// is new, was invalidated, or presents a different token. A caller with the
// same token arriving while another request resolves the client gets the
// Resolving state. A resolution cut short by ctx leaves the client
// Unresolved so the next request tries again.
func (m *Manager) Current(ctx context.Context, clientID, token string) gate.State {
	m.mu.Lock()
	e, ok := m.entries[clientID]
	if ok && e.token == token && (e.state.Phase == gate.Resolving || e.state.Phase == gate.Resolved) {
		m.mu.Unlock()
		return e.state
	}
	m.entries[clientID] = entry{state: gate.State{Phase: gate.Resolving}, token: token}
	m.mu.Unlock()

	sess, err := m.resolve(ctx, clientID, token)

	m.mu.Lock()
	defer m.mu.Unlock()
	// Drop the result if an auth event or another token replaced this entry.
	cur, ok := m.entries[clientID]
	mine := ok && cur.state.Phase == gate.Resolving && cur.token == token
	if err != nil {
		m.log.Debug("Session resolution aborted", "client_id", clientID, "error", err)
		if mine {
			delete(m.entries, clientID)
		}
		return gate.State{Phase: gate.Unresolved}
	}
	st := gate.State{Phase: gate.Resolved, Session: sess}
	if mine {
		m.entries[clientID] = entry{state: st, token: token}
	}
	return st
}

// Peek returns the stored state without triggering resolution.
func (m *Manager) Peek(clientID string) gate.State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entries[clientID].state
}

// resolve returns an error only when ctx ended before an answer was reached.
func (m *Manager) resolve(ctx context.Context, clientID, token string) (gate.Session, error) {
	if token == "" {
		return gate.Anonymous, nil
	}
	ident, err := m.verifier.VerifyAccessToken(ctx, token)
	if err != nil || ident == nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return gate.Anonymous, ctxErr
		}
		m.log.Debug("Access token rejected during session resolution", "client_id", clientID, "error", err)
		return gate.Anonymous, nil
	}

	profile, outcome, err := m.loader.Load(dbctx.New(ctx), ident.UserID, ident.Email)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return gate.Anonymous, ctxErr
		}
		m.log.Warn("Session resolved anonymous: profile could not be loaded",
			"client_id", clientID, "user_id", ident.UserID, "outcome", outcome.String(), "error", err)
		if clearErr := m.snapshots.ClearAuth(ctx, clientID); clearErr != nil {
			m.log.Warn("Failed to clear auth snapshot", "client_id", clientID, "error", clearErr)
		}
		return gate.Anonymous, nil
	}

	sess := gate.Session{
		UserID:        ident.UserID.String(),
		Email:         ident.Email,
		Role:          user.NormalizeRole(profile.Role),
		Authenticated: true,
	}
	if err := m.snapshots.SaveAuth(ctx, clientID, AuthSnapshotFor(sess)); err != nil {
		m.log.Warn("Failed to cache auth snapshot", "client_id", clientID, "error", err)
	}
	return sess, nil
}

// Adopt replaces the client's state, used when the gate recovers a session
// from the cached snapshot.
func (m *Manager) Adopt(clientID, token string, st gate.State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[clientID] = entry{state: st, token: token}
}

// Invalidate forgets the client's session so the next request resolves again.
func (m *Manager) Invalidate(clientID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, clientID)
}

// HandleEvent applies an auth-state change notification.
func (m *Manager) HandleEvent(ctx context.Context, evt bus.AuthEvent) {
	if evt.ClientID == "" {
		return
	}
	switch evt.Type {
	case bus.EventSignedOut:
		m.Invalidate(evt.ClientID)
		if err := m.snapshots.ClearAuth(ctx, evt.ClientID); err != nil {
			m.log.Warn("Failed to clear auth snapshot on sign-out", "client_id", evt.ClientID, "error", err)
		}
	case bus.EventSignedIn:
		m.mu.Lock()
		m.entries[evt.ClientID] = entry{state: gate.State{Phase: gate.Unresolved}}
		m.mu.Unlock()
	default:
		m.log.Debug("Ignoring unknown auth event", "type", evt.Type)
	}
}

// Subscribe starts consuming auth events until ctx ends.
func (m *Manager) Subscribe(ctx context.Context, b bus.Bus) error {
	return b.StartForwarder(ctx, func(evt bus.AuthEvent) {
		m.HandleEvent(ctx, evt)
	})
}

// AuthSnapshotFor builds the cached blob for an authenticated session.
func AuthSnapshotFor(s gate.Session) snapshot.AuthSnapshot {
	return snapshot.AuthSnapshot{
		User:            &snapshot.AuthUser{ID: s.UserID, Email: s.Email},
		Role:            s.Role,
		IsAuthenticated: s.Authenticated,
		UserID:          s.UserID,
	}
}
