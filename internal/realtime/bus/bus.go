package bus

import (
	"context"
	"time"
)

const (
	EventSignedIn  = "signed_in"
	EventSignedOut = "signed_out"
)

// AuthEvent is an auth-state change for one browser client.
type AuthEvent struct {
	Type     string    `json:"type"`
	ClientID string    `json:"client_id"`
	UserID   string    `json:"user_id,omitempty"`
	At       time.Time `json:"at"`
}

type Bus interface {
	Publish(ctx context.Context, evt AuthEvent) error
	// StartForwarder delivers every published event to onMsg until ctx ends.
	StartForwarder(ctx context.Context, onMsg func(evt AuthEvent)) error
	Close() error
}
