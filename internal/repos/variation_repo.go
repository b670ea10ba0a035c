package repos

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"joyeria/internal/domain"
)

type VariationRepo struct{ db *sqlx.DB }

func NewVariationRepo(db *sqlx.DB) *VariationRepo { return &VariationRepo{db: db} }

const variationCols = `id, product_id, brand, thickness, length, stock, price_modifier, is_active`

func (r *VariationRepo) ListByProduct(productID string, activeOnly bool) ([]domain.Variation, error) {
	out := []domain.Variation{}
	q := `SELECT ` + variationCols + ` FROM product_variations WHERE product_id = ?`
	if activeOnly {
		q += ` AND is_active = 1`
	}
	q += ` ORDER BY brand, thickness, length`
	err := r.db.Select(&out, q, productID)
	return out, err
}

func (r *VariationRepo) Get(id string) (domain.Variation, error) {
	var v domain.Variation
	err := r.db.Get(&v, `SELECT `+variationCols+` FROM product_variations WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return v, ErrNotFound
	}
	return v, err
}

func (r *VariationRepo) Create(v domain.Variation) error {
	_, err := r.db.Exec(`
		INSERT INTO product_variations(id, product_id, brand, thickness, length, stock, price_modifier, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, v.ID, v.ProductID, v.Brand, v.Thickness, v.Length, v.Stock, v.PriceModifier, v.IsActive)
	return err
}

// Update leaves stock alone; see StockStore.
func (r *VariationRepo) Update(v domain.Variation) error {
	res, err := r.db.Exec(`
		UPDATE product_variations SET brand = ?, thickness = ?, length = ?, price_modifier = ?, is_active = ?
		WHERE id = ? AND product_id = ?
	`, v.Brand, v.Thickness, v.Length, v.PriceModifier, v.IsActive, v.ID, v.ProductID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *VariationRepo) Delete(productID, id string) error {
	res, err := r.db.Exec(`DELETE FROM product_variations WHERE id = ? AND product_id = ?`, id, productID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
