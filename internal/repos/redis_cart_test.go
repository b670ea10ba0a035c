package repos

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"joyeria/internal/cart"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		mr.Close()
	})
	return mr, client
}

func TestRedisCartRepo_SaveLoad(t *testing.T) {
	mr, client := setupRedis(t)
	ctx := context.Background()
	r := NewRedisCartRepo(client, time.Hour)

	_, ok, err := r.LoadCart(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)

	lines := []cart.Line{{Product: cart.ProductSnapshot{ID: "p1", Name: "Anillo", Price: 45990}, Quantity: 2}}
	require.NoError(t, r.SaveCart(ctx, "s1", lines))
	assert.True(t, mr.Exists("cart:s1"))

	ttl := mr.TTL("cart:s1")
	assert.GreaterOrEqual(t, ttl, time.Hour)
	assert.Less(t, ttl, 2*time.Hour)

	got, ok, err := r.LoadCart(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, lines, got)
}

func TestRedisCartRepo_Expiry(t *testing.T) {
	mr, client := setupRedis(t)
	ctx := context.Background()
	r := NewRedisCartRepo(client, time.Hour)

	require.NoError(t, r.SaveCart(ctx, "s1", nil))
	got, ok, err := r.LoadCart(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, got)

	mr.FastForward(3 * time.Hour)
	_, ok, err = r.LoadCart(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisCartRepo_ServerDown(t *testing.T) {
	mr, client := setupRedis(t)
	r := NewRedisCartRepo(client, time.Hour)
	mr.Close()

	_, _, err := r.LoadCart(context.Background(), "s1")
	assert.Error(t, err)
	assert.Error(t, r.SaveCart(context.Background(), "s1", nil))
}
