package repos

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"joyeria/internal/domain"
)

type CategoryRepo struct{ db *sqlx.DB }

func NewCategoryRepo(db *sqlx.DB) *CategoryRepo { return &CategoryRepo{db: db} }

func (r *CategoryRepo) List(activeOnly bool) ([]domain.Category, error) {
	out := []domain.Category{}
	q := `SELECT slug, name, is_active, sort_order, COALESCE(created_at,'') AS created_at FROM categories`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY sort_order, name`
	err := r.db.Select(&out, q)
	return out, err
}

func (r *CategoryRepo) Get(slug string) (domain.Category, error) {
	var c domain.Category
	err := r.db.Get(&c, `
		SELECT slug, name, is_active, sort_order, COALESCE(created_at,'') AS created_at
		FROM categories WHERE slug = ?`, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return c, ErrNotFound
	}
	return c, err
}

// Save inserts or updates a category by slug.
func (r *CategoryRepo) Save(c domain.Category) error {
	_, err := r.db.Exec(`
		INSERT INTO categories(slug, name, is_active, sort_order, created_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(slug) DO UPDATE SET
		  name = excluded.name, is_active = excluded.is_active, sort_order = excluded.sort_order
	`, c.Slug, c.Name, c.IsActive, c.SortOrder)
	return err
}

// Delete returns ErrInUse while products still reference the category.
func (r *CategoryRepo) Delete(slug string) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var n int
	if err := tx.Get(&n, `SELECT COUNT(*) FROM products WHERE category = ?`, slug); err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("category %q has %d products: %w", slug, n, ErrInUse)
	}
	res, err := tx.Exec(`DELETE FROM categories WHERE slug = ?`, slug)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}
