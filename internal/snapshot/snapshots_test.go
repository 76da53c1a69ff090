package snapshot

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teecraft/storefront/internal/domain/cart"
	"github.com/teecraft/storefront/internal/platform/logger"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	got, err := s.Get(ctx, "missing")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.Put(ctx, "k", []byte("v1")))
	require.NoError(t, s.Put(ctx, "k", []byte("v2")))
	got, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), got)

	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))
	got, err = s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore())
}

func TestBoltStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.db")
	s, err := NewBoltStore(path)
	require.NoError(t, err)
	exerciseStore(t, s)

	// Values survive a reopen.
	require.NoError(t, s.Put(context.Background(), "persist", []byte("yes")))
	require.NoError(t, s.Close())
	s, err = NewBoltStore(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.Get(context.Background(), "persist")
	require.NoError(t, err)
	assert.Equal(t, []byte("yes"), got)
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis snapshot tests")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	s := NewRedisStore(rdb, "storefront-test:"+time.Now().Format("150405.000")+":", time.Minute)
	defer s.Close()
	exerciseStore(t, s)
}

func TestParseAuth(t *testing.T) {
	_, err := ParseAuth(nil)
	assert.Error(t, err)
	_, err = ParseAuth([]byte("{not json"))
	assert.Error(t, err)

	snap, err := ParseAuth([]byte(`{"user":{"id":"u1","email":"a@b.c"},"role":"admin","isAuthenticated":true,"userId":"u1"}`))
	require.NoError(t, err)
	assert.True(t, snap.IsAuthenticated)
	assert.Equal(t, "admin", snap.Role)
	assert.Equal(t, "a@b.c", snap.User.Email)
}

func TestSnapshotsAuthRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New(NewMemoryStore(), logger.NewNop())

	assert.Nil(t, s.RawAuth(ctx, "c1"))
	require.NoError(t, s.SaveAuth(ctx, "c1", AuthSnapshot{Role: "user", IsAuthenticated: true, UserID: "u1"}))

	snap, err := ParseAuth(s.RawAuth(ctx, "c1"))
	require.NoError(t, err)
	assert.Equal(t, "u1", snap.UserID)
	assert.Nil(t, s.RawAuth(ctx, "c2"))

	require.NoError(t, s.ClearAuth(ctx, "c1"))
	assert.Nil(t, s.RawAuth(ctx, "c1"))
}

func TestSnapshotsCorruptCartIsEmpty(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	s := New(store, logger.NewNop())

	require.NoError(t, store.Put(ctx, CartKey("c1"), []byte("not-json")))
	assert.Equal(t, 0, s.LoadCart(ctx, "c1").Len())

	c, _ := cart.New(nil).AddOrIncrement(cart.Item{ProductID: "p", Color: "Red", Size: "S", UnitPrice: 9})
	require.NoError(t, s.SaveCart(ctx, "c1", c))
	loaded := s.LoadCart(ctx, "c1")
	require.Equal(t, 1, loaded.Len())
	assert.Equal(t, "p-Red-S", loaded.Lines[0].Key)

	raw, err := store.Get(ctx, CartKey("c1"))
	require.NoError(t, err)
	assert.JSONEq(t, `[{"cartId":"p-Red-S","id":"p","color":"Red","size":"S","price":9,"quantity":1}]`, string(raw))

	require.NoError(t, s.SaveCart(ctx, "c1", c.ClearAll()))
	raw, err = store.Get(ctx, CartKey("c1"))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}
