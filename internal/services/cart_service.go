package services

import (
	"context"

	"joyeria/internal/cart"
	"joyeria/internal/events"
	"joyeria/internal/pricing"
	"joyeria/internal/stock"
)

// CartService opens the cart of a session. Carts live in Persistence; the
// stores built here hold no state of their own.
type CartService struct {
	Carts   cart.Persistence
	Ledger  *stock.Ledger
	Pub     events.Publisher
	Catalog *CatalogService
}

func NewCartService(carts cart.Persistence, ledger *stock.Ledger, pub events.Publisher, catalog *CatalogService) *CartService {
	return &CartService{Carts: carts, Ledger: ledger, Pub: pub, Catalog: catalog}
}

func (s *CartService) For(sessionID string) *cart.Store {
	return cart.New(sessionID, s.Carts, s.Ledger, s.Pub)
}

// Add reports false when stock cannot cover the merged quantity.
func (s *CartService) Add(ctx context.Context, sessionID, productID, variationID string, qty int) (bool, error) {
	p, err := s.Catalog.load(productID)
	if err != nil {
		return false, err
	}
	v, err := s.Catalog.Variation(variationID)
	if err != nil {
		return false, err
	}
	return s.For(sessionID).Add(ctx, p, qty, v)
}

func (s *CartService) Update(ctx context.Context, sessionID, productID, variationID string, qty int) (bool, error) {
	return s.For(sessionID).UpdateQuantity(ctx, productID, variationID, qty)
}

func (s *CartService) Remove(ctx context.Context, sessionID, productID, variationID string) error {
	return s.For(sessionID).Remove(ctx, productID, variationID)
}

func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	return s.For(sessionID).Clear(ctx)
}

type CartLineView struct {
	cart.Line
	VariationID  string `json:"variation_id,omitempty"`
	Label        string `json:"label,omitempty"`
	UnitPrice    int64  `json:"unit_price"`
	DisplayPrice int64  `json:"display_price"`
	Subtotal     int64  `json:"subtotal"`
}

type CartView struct {
	Lines []CartLineView `json:"lines"`
	Total int64          `json:"total"`
	Count int            `json:"count"`
}

func (s *CartService) View(ctx context.Context, sessionID string) (CartView, error) {
	lines, err := s.For(sessionID).Lines(ctx)
	if err != nil {
		return CartView{}, err
	}
	cv := CartView{Lines: make([]CartLineView, 0, len(lines)), Total: cart.Total(lines), Count: cart.ItemCount(lines)}
	for _, l := range lines {
		cv.Lines = append(cv.Lines, CartLineView{
			Line:         l,
			VariationID:  l.VariationID(),
			Label:        l.VariationLabel(),
			UnitPrice:    l.UnitPrice(),
			DisplayPrice: pricing.RoundToProfessionalPrice(l.UnitPrice()),
			Subtotal:     l.Subtotal(),
		})
	}
	return cv, nil
}
