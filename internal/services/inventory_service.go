package services

import (
	"context"
	"fmt"

	"joyeria/internal/domain"
	"joyeria/internal/repos"
	"joyeria/internal/stock"
	"joyeria/internal/validate"
)

const lowStockBelow = 5

type InventoryService struct {
	Ledger *stock.Ledger
	Store  *repos.StockStore
}

func NewInventoryService(ledger *stock.Ledger, store *repos.StockStore) *InventoryService {
	return &InventoryService{Ledger: ledger, Store: store}
}

// CheckAvailability converts qty  IN_STOCK / LOW_STOCK / OUT_OF_STOCK.
func (s *InventoryService) CheckAvailability(ctx context.Context, key stock.Key) (domain.Availability, error) {
	qty, err := s.Ledger.GetStock(ctx, key)
	if err != nil {
		return domain.Availability{}, err
	}
	status := "OUT_OF_STOCK"
	switch {
	case qty >= lowStockBelow:
		status = "IN_STOCK"
	case qty > 0:
		status = "LOW_STOCK"
	}
	return domain.Availability{Status: status, Qty: qty}, nil
}

// SetStock is the admin's absolute stock edit. Unknown keys are not created.
func (s *InventoryService) SetStock(ctx context.Context, key stock.Key, qty int) error {
	if qty < 0 {
		return fmt.Errorf("%w: stock cannot be negative", validate.ErrInvalid)
	}
	return s.Ledger.SetStock(ctx, key, qty)
}

func (s *InventoryService) ListAll(ctx context.Context) ([]repos.InventoryRow, error) {
	return s.Store.ListAll(ctx)
}
