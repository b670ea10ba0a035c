package repos

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"joyeria/internal/domain"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

const orderCols = `
    id, cart_id, customer_name, customer_email, customer_phone, shipping_address, total, status,
    payment_provider, payment_ref, payment_url,
    COALESCE(created_at,'') AS created_at, COALESCE(updated_at,'') AS updated_at`

// Create inserts the order header and its items in one transaction.
func (r *OrderRepo) Create(ctx context.Context, o domain.Order) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
	  INSERT INTO orders
	    (id, cart_id, customer_name, customer_email, customer_phone, shipping_address, total, status, payment_provider, created_at)
	  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, o.ID, o.CartID, o.CustomerName, o.CustomerEmail, o.CustomerPhone, o.ShippingAddress, o.Total, o.Status, o.PaymentProvider); err != nil {
		return err
	}
	for i, it := range o.Items {
		if _, err := tx.ExecContext(ctx, `
		  INSERT INTO order_items(order_id, position, product_id, variation_id, name, variation_label, unit_price, qty)
		  VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, o.ID, i, it.ProductID, it.VariationID, it.Name, it.VariationLabel, it.UnitPrice, it.Qty); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *OrderRepo) Get(ctx context.Context, id string) (domain.Order, error) {
	var o domain.Order
	err := r.db.GetContext(ctx, &o, `SELECT `+orderCols+` FROM orders WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return o, ErrNotFound
	}
	if err != nil {
		return o, err
	}
	o.Items = []domain.OrderItem{}
	err = r.db.SelectContext(ctx, &o.Items, `
		SELECT order_id, product_id, variation_id, name, variation_label, unit_price, qty
		FROM order_items WHERE order_id = ? ORDER BY position
	`, id)
	return o, err
}

// List returns the latest orders, optionally filtered by status.
func (r *OrderRepo) List(ctx context.Context, status string, limit int) ([]domain.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	out := []domain.Order{}
	q := `SELECT ` + orderCols + ` FROM orders`
	args := []any{}
	if status != "" {
		q += ` WHERE status = ?`
		args = append(args, status)
	}
	q += ` ORDER BY datetime(created_at) DESC, id LIMIT ?`
	args = append(args, limit)
	err := r.db.SelectContext(ctx, &out, q, args...)
	return out, err
}

func (r *OrderRepo) SetPayment(ctx context.Context, id, ref, url string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE orders SET payment_ref = ?, payment_url = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, ref, url, id)
	return err
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Transition moves an order from one status to another only if it is still in
// the expected status. It reports whether this call made the change.
func (r *OrderRepo) Transition(ctx context.Context, id, from, to string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?
	`, to, id, from)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

type StatusCount struct {
	Status string `db:"status" json:"status"`
	Count  int    `db:"n" json:"count"`
	Total  int64  `db:"total" json:"total"`
}

func (r *OrderRepo) CountByStatus(ctx context.Context) ([]StatusCount, error) {
	out := []StatusCount{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT status, COUNT(*) AS n, COALESCE(SUM(total), 0) AS total
		FROM orders GROUP BY status ORDER BY status`)
	return out, err
}
