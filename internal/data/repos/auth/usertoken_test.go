package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/teecraft/storefront/internal/data/repos/testutil"
	types "github.com/teecraft/storefront/internal/domain"
	"github.com/teecraft/storefront/internal/platform/dbctx"
)

func TestUserTokenRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}

	repo := NewUserTokenRepo(db, testutil.Logger(t))
	u := testutil.SeedUser(t, ctx, tx, "tokens-"+uuid.NewString()+"@example.com")

	tok := &types.UserToken{
		UserID:       u.ID,
		AccessToken:  "access-" + uuid.NewString(),
		RefreshToken: "refresh-" + uuid.NewString(),
		ExpiresAt:    time.Now().Add(time.Hour),
	}
	if _, err := repo.Create(dbc, []*types.UserToken{tok}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	byAccess, err := repo.GetByAccessTokens(dbc, []string{tok.AccessToken})
	if err != nil || len(byAccess) != 1 || byAccess[0].ID != tok.ID {
		t.Fatalf("GetByAccessTokens: got=%+v err=%v", byAccess, err)
	}
	byRefresh, err := repo.GetByRefreshTokens(dbc, []string{tok.RefreshToken})
	if err != nil || len(byRefresh) != 1 {
		t.Fatalf("GetByRefreshTokens: got=%+v err=%v", byRefresh, err)
	}
	byUser, err := repo.GetByUserIDs(dbc, []uuid.UUID{u.ID})
	if err != nil || len(byUser) != 1 {
		t.Fatalf("GetByUserIDs: got=%+v err=%v", byUser, err)
	}

	if err := repo.FullDeleteByTokens(dbc, []*types.UserToken{tok}); err != nil {
		t.Fatalf("FullDeleteByTokens: %v", err)
	}
	byAccess, err = repo.GetByAccessTokens(dbc, []string{tok.AccessToken})
	if err != nil || len(byAccess) != 0 {
		t.Fatalf("GetByAccessTokens after delete: got=%+v err=%v", byAccess, err)
	}

	empty, err := repo.GetByAccessTokens(dbc, nil)
	if err != nil || len(empty) != 0 {
		t.Fatalf("GetByAccessTokens(nil): got=%+v err=%v", empty, err)
	}
}
