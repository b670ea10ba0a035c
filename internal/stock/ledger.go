// Package stock keeps the authoritative per-product and per-variation
// available quantities.
package stock

import (
	"context"
	"fmt"
	"sync"
)

// Key addresses a product's own stock, or one of its variations when
// VariationID is set.
type Key struct {
	ProductID   string
	VariationID string
}

func ProductKey(productID string) Key { return Key{ProductID: productID} }

func (k Key) String() string {
	if k.VariationID == "" {
		return k.ProductID
	}
	return k.ProductID + "/" + k.VariationID
}

// Store is the persistence behind a Ledger. LoadStock reports ok=false for
// unknown keys.
type Store interface {
	LoadStock(ctx context.Context, key Key) (n int, ok bool, err error)
	SaveStock(ctx context.Context, key Key, n int) error
}

// Ledger serializes read-modify-write updates within one process. Writers in
// other processes sharing the same Store are last-write-wins.
type Ledger struct {
	mu    sync.Mutex
	store Store
}

func NewLedger(store Store) *Ledger { return &Ledger{store: store} }

// GetStock returns 0 for unknown keys.
func (l *Ledger) GetStock(ctx context.Context, key Key) (int, error) {
	n, ok, err := l.store.LoadStock(ctx, key)
	if err != nil {
		return 0, fmt.Errorf("load stock %s: %w", key, err)
	}
	if !ok || n < 0 {
		return 0, nil
	}
	return n, nil
}

func (l *Ledger) HasStock(ctx context.Context, key Key, qty int) (bool, error) {
	n, err := l.GetStock(ctx, key)
	if err != nil {
		return false, err
	}
	return n >= qty, nil
}

func (l *Ledger) SetStock(ctx context.Context, key Key, n int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.set(ctx, key, n)
}

func (l *Ledger) DecrementStock(ctx context.Context, key Key, qty int) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	cur, err := l.GetStock(ctx, key)
	if err != nil {
		return err
	}
	return l.set(ctx, key, cur-qty)
}

func (l *Ledger) set(ctx context.Context, key Key, n int) error {
	if n < 0 {
		n = 0
	}
	if err := l.store.SaveStock(ctx, key, n); err != nil {
		return fmt.Errorf("save stock %s: %w", key, err)
	}
	return nil
}
