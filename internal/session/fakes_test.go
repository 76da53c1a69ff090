package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	types "github.com/teecraft/storefront/internal/domain"
	"github.com/teecraft/storefront/internal/platform/dbctx"
)

var errTransient = errors.New("connection reset")

// fakeProfiles scripts GetByID results; once the script runs out it answers
// from rows.
type fakeProfiles struct {
	mu        sync.Mutex
	script    []error
	rows      map[uuid.UUID]*types.Profile
	gets      int
	inserts   int
	insertErr error
}

func newFakeProfiles(script ...error) *fakeProfiles {
	return &fakeProfiles{script: script, rows: map[uuid.UUID]*types.Profile{}}
}

func (f *fakeProfiles) Create(_ dbctx.Context, ps []*types.Profile) ([]*types.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range ps {
		f.rows[p.ID] = p
	}
	return ps, nil
}

func (f *fakeProfiles) GetByID(_ dbctx.Context, id uuid.UUID) (*types.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if len(f.script) > 0 {
		err := f.script[0]
		f.script = f.script[1:]
		if err != nil {
			return nil, err
		}
	}
	return f.rows[id], nil
}

func (f *fakeProfiles) GetByIDs(dbc dbctx.Context, ids []uuid.UUID) ([]*types.Profile, error) {
	return nil, nil
}

func (f *fakeProfiles) GetByEmail(dbctx.Context, string) (*types.Profile, error) { return nil, nil }

func (f *fakeProfiles) InsertDefault(_ dbctx.Context, id uuid.UUID, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	if f.insertErr != nil {
		return f.insertErr
	}
	if _, ok := f.rows[id]; !ok {
		f.rows[id] = &types.Profile{ID: id, Email: email, Role: "user"}
	}
	return nil
}

func (f *fakeProfiles) ListNewestFirst(dbctx.Context) ([]*types.Profile, error) { return nil, nil }

func (f *fakeProfiles) UpdateFields(dbctx.Context, uuid.UUID, map[string]interface{}) error {
	return nil
}

type fakeVerifier struct {
	idents map[string]*Identity
	block  chan struct{}
	// blockOn limits block to one token; empty blocks every call.
	blockOn string
}

func (v *fakeVerifier) VerifyAccessToken(_ context.Context, token string) (*Identity, error) {
	if v.block != nil && (v.blockOn == "" || v.blockOn == token) {
		<-v.block
	}
	if id, ok := v.idents[token]; ok {
		return id, nil
	}
	return nil, errors.New("invalid token")
}

type recordingSleep struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (r *recordingSleep) sleep(_ dbctx.Context, d time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.waits = append(r.waits, d)
	return nil
}
