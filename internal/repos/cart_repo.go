package repos

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"joyeria/internal/cart"
)

// CartRepo persists cart lines in SQLite, one row per line, ordered by position.
type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

func (r *CartRepo) LoadCart(ctx context.Context, cartID string) ([]cart.Line, bool, error) {
	var id string
	err := r.db.GetContext(ctx, &id, `SELECT id FROM carts WHERE id = ?`, cartID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var raw []string
	if err := r.db.SelectContext(ctx, &raw, `
		SELECT line_json FROM cart_lines WHERE cart_id = ? ORDER BY position
	`, cartID); err != nil {
		return nil, false, err
	}
	lines := make([]cart.Line, 0, len(raw))
	for _, s := range raw {
		var l cart.Line
		if err := json.Unmarshal([]byte(s), &l); err != nil {
			return nil, false, fmt.Errorf("decode cart line: %w", err)
		}
		lines = append(lines, l)
	}
	return lines, true, nil
}

// SaveCart replaces the whole line set in one transaction.
func (r *CartRepo) SaveCart(ctx context.Context, cartID string, lines []cart.Line) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO carts(id, updated_at) VALUES (?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET updated_at = CURRENT_TIMESTAMP
	`, cartID); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_lines WHERE cart_id = ?`, cartID); err != nil {
		return err
	}
	for i, l := range lines {
		b, err := json.Marshal(l)
		if err != nil {
			return fmt.Errorf("encode cart line: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO cart_lines(cart_id, position, product_id, variation_id, qty, line_json)
			VALUES (?, ?, ?, ?, ?, ?)
		`, cartID, i, l.Product.ID, l.VariationID(), l.Quantity, string(b)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// DeleteStale drops carts untouched for the given number of days.
func (r *CartRepo) DeleteStale(ctx context.Context, days int) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM carts WHERE datetime(updated_at) < datetime('now', ?)
	`, fmt.Sprintf("-%d days", days))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
