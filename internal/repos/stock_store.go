package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"joyeria/internal/stock"
)

// StockStore backs the stock ledger with products.stock and
// product_variations.stock.
type StockStore struct{ db *sqlx.DB }

func NewStockStore(db *sqlx.DB) *StockStore { return &StockStore{db: db} }

func (s *StockStore) LoadStock(ctx context.Context, key stock.Key) (int, bool, error) {
	var n int
	var err error
	if key.VariationID == "" {
		err = s.db.GetContext(ctx, &n, `SELECT stock FROM products WHERE id = ?`, key.ProductID)
	} else {
		err = s.db.GetContext(ctx, &n, `SELECT stock FROM product_variations WHERE id = ? AND product_id = ?`,
			key.VariationID, key.ProductID)
	}
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

// SaveStock returns ErrNotFound when the product or variation row is missing.
func (s *StockStore) SaveStock(ctx context.Context, key stock.Key, n int) error {
	var res sql.Result
	var err error
	if key.VariationID == "" {
		res, err = s.db.ExecContext(ctx, `UPDATE products SET stock = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
			n, key.ProductID)
	} else {
		res, err = s.db.ExecContext(ctx, `UPDATE product_variations SET stock = ? WHERE id = ? AND product_id = ?`,
			n, key.VariationID, key.ProductID)
	}
	if err != nil {
		return err
	}
	if rows, _ := res.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

// InventoryRow is one stock line for the admin inventory view.
type InventoryRow struct {
	ProductID   string `db:"product_id" json:"product_id"`
	VariationID string `db:"variation_id" json:"variation_id,omitempty"`
	Name        string `db:"name" json:"name"`
	Label       string `db:"label" json:"label,omitempty"`
	Qty         int    `db:"qty" json:"qty"`
}

func (s *StockStore) ListAll(ctx context.Context) ([]InventoryRow, error) {
	rows := []InventoryRow{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id AS product_id, '' AS variation_id, name, '' AS label, stock AS qty
		FROM products
		UNION ALL
		SELECT v.product_id, v.id, p.name, v.brand || ' ' || v.thickness || ' / ' || v.length, v.stock
		FROM product_variations v JOIN products p ON p.id = v.product_id
		ORDER BY name, variation_id
	`)
	return rows, err
}
