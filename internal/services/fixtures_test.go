package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/teecraft/storefront/internal/data/repos"
	"github.com/teecraft/storefront/internal/data/repos/testutil"
	"github.com/teecraft/storefront/internal/platform/logger"
	"github.com/teecraft/storefront/internal/realtime/bus"
	"github.com/teecraft/storefront/internal/snapshot"
)

type recordingBus struct {
	mu     sync.Mutex
	events []bus.AuthEvent
}

func (b *recordingBus) Publish(_ context.Context, evt bus.AuthEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, evt)
	return nil
}

func (b *recordingBus) StartForwarder(context.Context, func(bus.AuthEvent)) error { return nil }
func (b *recordingBus) Close() error                                             { return nil }

func (b *recordingBus) types() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]string, 0, len(b.events))
	for _, e := range b.events {
		out = append(out, e.Type)
	}
	return out
}

type recordingInvalidator struct {
	mu      sync.Mutex
	clients []string
}

func (r *recordingInvalidator) Invalidate(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients = append(r.clients, clientID)
}

type env struct {
	db        *gorm.DB
	log       *logger.Logger
	snapshots *snapshot.Snapshots
	events    *recordingBus
	sessions  *recordingInvalidator

	users    repos.UserRepo
	profiles repos.ProfileRepo
	tokens   repos.UserTokenRepo
	products repos.ProductRepo
	variants repos.ProductVariantRepo
	favs     repos.FavoriteRepo
	items    repos.CartItemRepo
	orders   repos.OrderRepo
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	return &env{
		db:        db,
		log:       log,
		snapshots: snapshot.New(snapshot.NewMemoryStore(), log),
		events:    &recordingBus{},
		sessions:  &recordingInvalidator{},
		users:     repos.NewUserRepo(db, log),
		profiles:  repos.NewProfileRepo(db, log),
		tokens:    repos.NewUserTokenRepo(db, log),
		products:  repos.NewProductRepo(db, log),
		variants:  repos.NewProductVariantRepo(db, log),
		favs:      repos.NewFavoriteRepo(db, log),
		items:     repos.NewCartItemRepo(db, log),
		orders:    repos.NewOrderRepo(db, log),
	}
}

func (e *env) auth() AuthService {
	return NewAuthService(e.db, e.log, e.users, e.profiles, e.tokens, e.snapshots, e.events, e.sessions,
		"test-secret", 15*time.Minute, 24*time.Hour)
}
