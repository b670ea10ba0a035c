// Package cart holds a session's ordered cart lines and enforces the stock
// ceiling when lines are added or changed.
package cart

import (
	"context"
	"errors"
	"fmt"

	"joyeria/internal/domain"
	"joyeria/internal/events"
	"joyeria/internal/stock"
)

var (
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrInactiveProduct  = errors.New("product is not available")
	ErrInvalidVariation = errors.New("variation is not available for this product")
)

// Persistence loads and saves the full line list of one cart. LoadCart reports
// ok=false when nothing was saved yet.
type Persistence interface {
	LoadCart(ctx context.Context, cartID string) (lines []Line, ok bool, err error)
	SaveCart(ctx context.Context, cartID string, lines []Line) error
}

// Store is one cart, identified by its id (the session id). Every operation
// reads from and writes through to Persistence.
type Store struct {
	id     string
	p      Persistence
	ledger *stock.Ledger
	pub    events.Publisher
}

func New(id string, p Persistence, ledger *stock.Ledger, pub events.Publisher) *Store {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Store{id: id, p: p, ledger: ledger, pub: pub}
}

func (s *Store) ID() string { return s.id }

func (s *Store) Lines(ctx context.Context) ([]Line, error) {
	lines, ok, err := s.p.LoadCart(ctx, s.id)
	if err != nil {
		return nil, fmt.Errorf("load cart %s: %w", s.id, err)
	}
	if !ok || lines == nil {
		return []Line{}, nil
	}
	return lines, nil
}

// Add returns false without changing anything when the stock of the
// (product, variation) pair cannot cover the merged quantity.
func (s *Store) Add(ctx context.Context, p domain.Product, qty int, v *domain.Variation) (bool, error) {
	if qty < 1 {
		return false, ErrInvalidQuantity
	}
	if !p.IsActive {
		return false, ErrInactiveProduct
	}
	if v != nil && (!v.IsActive || v.ProductID != p.ID) {
		return false, ErrInvalidVariation
	}

	lines, err := s.Lines(ctx)
	if err != nil {
		return false, err
	}
	line := Line{Product: SnapshotProduct(p), Quantity: qty}
	if v != nil {
		line.Variation = SnapshotVariation(*v)
	}

	idx := find(lines, line.key())
	want := qty
	if idx >= 0 {
		want += lines[idx].Quantity
	}
	ok, err := s.ledger.HasStock(ctx, line.StockKey(), want)
	if err != nil || !ok {
		return false, err
	}

	if idx >= 0 {
		lines[idx].Quantity = want
	} else {
		lines = append(lines, line)
	}
	if err := s.save(ctx, lines); err != nil {
		return false, err
	}
	return true, nil
}

// UpdateQuantity sets a line's quantity exactly. Quantities <= 0 remove the
// line. A missing line or insufficient stock returns false.
func (s *Store) UpdateQuantity(ctx context.Context, productID, variationID string, qty int) (bool, error) {
	if qty <= 0 {
		if err := s.Remove(ctx, productID, variationID); err != nil {
			return false, err
		}
		return true, nil
	}
	lines, err := s.Lines(ctx)
	if err != nil {
		return false, err
	}
	idx := find(lines, lineKey(productID, variationID))
	if idx < 0 {
		return false, nil
	}
	ok, err := s.ledger.HasStock(ctx, lines[idx].StockKey(), qty)
	if err != nil || !ok {
		return false, err
	}
	if lines[idx].Quantity == qty {
		return true, nil
	}
	lines[idx].Quantity = qty
	if err := s.save(ctx, lines); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) Remove(ctx context.Context, productID, variationID string) error {
	lines, err := s.Lines(ctx)
	if err != nil {
		return err
	}
	idx := find(lines, lineKey(productID, variationID))
	if idx < 0 {
		return nil
	}
	lines = append(lines[:idx], lines[idx+1:]...)
	return s.save(ctx, lines)
}

func (s *Store) Clear(ctx context.Context) error {
	lines, err := s.Lines(ctx)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		return nil
	}
	return s.save(ctx, []Line{})
}

func (s *Store) Total(ctx context.Context) (int64, error) {
	lines, err := s.Lines(ctx)
	if err != nil {
		return 0, err
	}
	return Total(lines), nil
}

func (s *Store) ItemCount(ctx context.Context) (int, error) {
	lines, err := s.Lines(ctx)
	if err != nil {
		return 0, err
	}
	return ItemCount(lines), nil
}

func Total(lines []Line) int64 {
	var total int64
	for _, l := range lines {
		total += l.Subtotal()
	}
	return total
}

func ItemCount(lines []Line) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func (s *Store) save(ctx context.Context, lines []Line) error {
	if err := s.p.SaveCart(ctx, s.id, lines); err != nil {
		return fmt.Errorf("save cart %s: %w", s.id, err)
	}
	s.pub.Publish(ctx, events.Event{Name: events.CartChanged, CartID: s.id})
	return nil
}

func find(lines []Line, key string) int {
	for i, l := range lines {
		if l.key() == key {
			return i
		}
	}
	return -1
}
