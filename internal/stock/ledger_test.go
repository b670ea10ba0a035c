package stock

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingStore struct {
	*MemoryStore
	loadErr, saveErr error
}

func (f *failingStore) LoadStock(ctx context.Context, key Key) (int, bool, error) {
	if f.loadErr != nil {
		return 0, false, f.loadErr
	}
	return f.MemoryStore.LoadStock(ctx, key)
}

func (f *failingStore) SaveStock(ctx context.Context, key Key, n int) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.MemoryStore.SaveStock(ctx, key, n)
}

func TestLedger_UnknownIsZero(t *testing.T) {
	l := NewLedger(NewMemoryStore())
	n, err := l.GetStock(context.Background(), ProductKey("ring-01"))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	ok, err := l.HasStock(context.Background(), ProductKey("ring-01"), 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLedger_SetClampsAndHasStock(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(NewMemoryStore())
	key := ProductKey("ring-01")

	require.NoError(t, l.SetStock(ctx, key, -4))
	n, _ := l.GetStock(ctx, key)
	assert.Equal(t, 0, n)

	require.NoError(t, l.SetStock(ctx, key, 5))
	ok, err := l.HasStock(ctx, key, 5)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = l.HasStock(ctx, key, 6)
	assert.False(t, ok)
}

func TestLedger_DecrementFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(NewMemoryStore())
	key := Key{ProductID: "chain-01", VariationID: "v-45"}

	require.NoError(t, l.SetStock(ctx, key, 5))
	require.NoError(t, l.DecrementStock(ctx, key, 3))
	n, _ := l.GetStock(ctx, key)
	assert.Equal(t, 2, n)

	require.NoError(t, l.DecrementStock(ctx, key, 10))
	n, _ = l.GetStock(ctx, key)
	assert.Equal(t, 0, n)

	// the product's own stock is a separate entry
	n, _ = l.GetStock(ctx, ProductKey("chain-01"))
	assert.Equal(t, 0, n)
}

func TestLedger_ConcurrentDecrements(t *testing.T) {
	ctx := context.Background()
	l := NewLedger(NewMemoryStore())
	key := ProductKey("earring-02")
	require.NoError(t, l.SetStock(ctx, key, 100))

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = l.DecrementStock(ctx, key, 2)
		}()
	}
	wg.Wait()
	n, _ := l.GetStock(ctx, key)
	assert.Equal(t, 20, n)
}

func TestLedger_PropagatesStoreErrors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk gone")

	l := NewLedger(&failingStore{MemoryStore: NewMemoryStore(), loadErr: boom})
	_, err := l.GetStock(ctx, ProductKey("x"))
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, l.DecrementStock(ctx, ProductKey("x"), 1), boom)

	l = NewLedger(&failingStore{MemoryStore: NewMemoryStore(), saveErr: boom})
	assert.ErrorIs(t, l.SetStock(ctx, ProductKey("x"), 3), boom)
}

func TestKeyString(t *testing.T) {
	assert.Equal(t, "p1", ProductKey("p1").String())
	assert.Equal(t, "p1/v2", Key{ProductID: "p1", VariationID: "v2"}.String())
}
