package snapshot

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/teecraft/storefront/internal/domain/cart"
	"github.com/teecraft/storefront/internal/platform/logger"
)

// AuthUser is the identity part of the auth snapshot.
type AuthUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// AuthSnapshot is the cached session blob: {user, role, isAuthenticated, userId}.
type AuthSnapshot struct {
	User            *AuthUser `json:"user"`
	Role            string    `json:"role"`
	IsAuthenticated bool      `json:"isAuthenticated"`
	UserID          string    `json:"userId"`
}

// ParseAuth decodes a cached auth blob. Empty input is an error.
func ParseAuth(raw []byte) (AuthSnapshot, error) {
	var snap AuthSnapshot
	if len(raw) == 0 {
		return snap, fmt.Errorf("empty auth snapshot")
	}
	if err := json.Unmarshal(raw, &snap); err != nil {
		return AuthSnapshot{}, fmt.Errorf("decode auth snapshot: %w", err)
	}
	return snap, nil
}

func AuthKey(clientID string) string { return "auth:" + clientID }
func CartKey(clientID string) string { return "cart:" + clientID }

// Snapshots reads and writes the per-client blobs. Read failures and corrupt
// blobs are logged and reported as absent.
type Snapshots struct {
	store Store
	log   *logger.Logger
}

func New(store Store, log *logger.Logger) *Snapshots {
	return &Snapshots{store: store, log: log.With("service", "Snapshots")}
}

// RawAuth returns the cached auth blob or nil.
func (s *Snapshots) RawAuth(ctx context.Context, clientID string) []byte {
	raw, err := s.store.Get(ctx, AuthKey(clientID))
	if err != nil {
		s.log.Warn("Auth snapshot read failed, treating as absent", "client_id", clientID, "error", err)
		return nil
	}
	return raw
}

func (s *Snapshots) SaveAuth(ctx context.Context, clientID string, snap AuthSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode auth snapshot: %w", err)
	}
	if err := s.store.Put(ctx, AuthKey(clientID), raw); err != nil {
		return fmt.Errorf("save auth snapshot: %w", err)
	}
	return nil
}

func (s *Snapshots) ClearAuth(ctx context.Context, clientID string) error {
	if err := s.store.Delete(ctx, AuthKey(clientID)); err != nil {
		return fmt.Errorf("clear auth snapshot: %w", err)
	}
	return nil
}

// LoadCart returns the persisted cart, or an empty cart when the blob is
// missing or unreadable.
func (s *Snapshots) LoadCart(ctx context.Context, clientID string) cart.Cart {
	raw, err := s.store.Get(ctx, CartKey(clientID))
	if err != nil {
		s.log.Warn("Cart snapshot read failed, treating as empty", "client_id", clientID, "error", err)
		return cart.New(nil)
	}
	if len(raw) == 0 {
		return cart.New(nil)
	}
	var lines []cart.Line
	if err := json.Unmarshal(raw, &lines); err != nil {
		s.log.Warn("Cart snapshot corrupt, treating as empty", "client_id", clientID, "error", err)
		return cart.New(nil)
	}
	return cart.Normalize(lines)
}

func (s *Snapshots) SaveCart(ctx context.Context, clientID string, c cart.Cart) error {
	lines := c.Lines
	if lines == nil {
		lines = []cart.Line{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		return fmt.Errorf("encode cart snapshot: %w", err)
	}
	if err := s.store.Put(ctx, CartKey(clientID), raw); err != nil {
		return fmt.Errorf("save cart snapshot: %w", err)
	}
	return nil
}
