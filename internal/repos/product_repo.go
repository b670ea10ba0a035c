package repos

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"joyeria/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `
    id, name, description, price, stock, category, image_url,
    is_new, is_featured, is_active,
    COALESCE(created_at,'') AS created_at, COALESCE(updated_at,'') AS updated_at`

// ProductFilter narrows storefront listings. Zero values mean "any".
type ProductFilter struct {
	Category     string
	Query        string
	FeaturedOnly bool
	NewOnly      bool
	IncludeOff   bool // include inactive products (admin)
	Limit        int
	Offset       int
}

// likeEscaper makes user text match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *ProductRepo) List(f ProductFilter) ([]domain.Product, error) {
	where := `1 = 1`
	args := []any{}
	if !f.IncludeOff {
		where += ` AND is_active = 1`
	}
	if f.Category != "" {
		where += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.Query != "" {
		where += ` AND (LOWER(name) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\')`
		pat := "%" + likeEscaper.Replace(f.Query) + "%"
		args = append(args, pat, pat)
	}
	if f.FeaturedOnly {
		where += ` AND is_featured = 1`
	}
	if f.NewOnly {
		where += ` AND is_new = 1`
	}
	if f.Limit <= 0 {
		f.Limit = 24
	}
	args = append(args, f.Limit, f.Offset)

	out := []domain.Product{}
	err := r.db.Select(&out, `SELECT `+productCols+` FROM products WHERE `+where+`
	  ORDER BY is_featured DESC, created_at DESC, name
	  LIMIT ? OFFSET ?`, args...)
	return out, err
}

func (r *ProductRepo) Get(id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	return p, err
}

func (r *ProductRepo) Create(p domain.Product) error {
	_, err := r.db.Exec(`
		INSERT INTO products(id, name, description, price, stock, category, image_url,
		  is_new, is_featured, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, p.ID, p.Name, p.Description, p.Price, p.Stock, p.Category, p.ImageURL, p.IsNew, p.IsFeatured, p.IsActive)
	return err
}

// Update writes every catalog field except stock, which only moves through
// the stock ledger.
func (r *ProductRepo) Update(p domain.Product) error {
	res, err := r.db.Exec(`
		UPDATE products SET
		  name = ?, description = ?, price = ?, category = ?, image_url = ?,
		  is_new = ?, is_featured = ?, is_active = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, p.Name, p.Description, p.Price, p.Category, p.ImageURL, p.IsNew, p.IsFeatured, p.IsActive, p.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ProductRepo) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

type ProductCounts struct {
	Total      int `db:"total"`
	Active     int `db:"active"`
	OutOfStock int `db:"out_of_stock"`
}

func (r *ProductRepo) Counts() (ProductCounts, error) {
	var c ProductCounts
	err := r.db.Get(&c, `
		SELECT COUNT(*) AS total,
		       COALESCE(SUM(is_active), 0) AS active,
		       COALESCE(SUM(CASE WHEN stock = 0 AND NOT EXISTS (
		         SELECT 1 FROM product_variations v WHERE v.product_id = products.id AND v.stock > 0
		       ) THEN 1 ELSE 0 END), 0) AS out_of_stock
		FROM products`)
	return c, err
}
