// Package checkout finalizes a paid cart: stock goes down, the cart is emptied.
package checkout

import (
	"context"
	"errors"
	"fmt"

	"joyeria/internal/cart"
	applog "joyeria/internal/log"
	"joyeria/internal/stock"
)

type LineFailure struct {
	Key stock.Key
	Qty int
	Err error
}

func (f LineFailure) Error() string {
	return fmt.Sprintf("decrement %s by %d: %v", f.Key, f.Qty, f.Err)
}

func (f LineFailure) Unwrap() error { return f.Err }

type Result struct {
	Lines    []cart.Line
	Failures []LineFailure
}

type Finalizer struct {
	Ledger *stock.Ledger
}

func NewFinalizer(ledger *stock.Ledger) *Finalizer { return &Finalizer{Ledger: ledger} }

// ProcessPurchase decrements stock line by line and then clears the cart.
// Lines are independent: a failed decrement is logged and reported but does not
// undo the others, and the cart is cleared regardless.
func (f *Finalizer) ProcessPurchase(ctx context.Context, c *cart.Store) (Result, error) {
	lines, err := c.Lines(ctx)
	if err != nil {
		return Result{}, err
	}
	res := Result{Lines: lines}

	var errs []error
	for _, l := range lines {
		key := l.StockKey()
		if err := f.Ledger.DecrementStock(ctx, key, l.Quantity); err != nil {
			lf := LineFailure{Key: key, Qty: l.Quantity, Err: err}
			res.Failures = append(res.Failures, lf)
			errs = append(errs, lf)
			applog.Failure("checkout.stock.decrement.fail", err, map[string]any{
				"cart_id": c.ID(), "product": key.ProductID, "variation": key.VariationID, "qty": l.Quantity,
			})
		}
	}

	if err := c.Clear(ctx); err != nil {
		errs = append(errs, fmt.Errorf("clear cart: %w", err))
	}
	applog.Event("checkout.purchase.processed", map[string]any{
		"cart_id": c.ID(), "lines": len(lines), "failed": len(res.Failures),
	})
	return res, errors.Join(errs...)
}
