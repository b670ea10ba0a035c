package repos

import (
	"context"

	"github.com/jmoiron/sqlx"

	"joyeria/internal/domain"
)

type NewsletterRepo struct{ db *sqlx.DB }

func NewNewsletterRepo(db *sqlx.DB) *NewsletterRepo { return &NewsletterRepo{db: db} }

// Subscribe reports false when the address was already subscribed.
func (r *NewsletterRepo) Subscribe(ctx context.Context, email string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO newsletter_subscribers(email, created_at) VALUES (?, CURRENT_TIMESTAMP)
		ON CONFLICT(email) DO NOTHING
	`, email)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n == 1, nil
}

func (r *NewsletterRepo) List(ctx context.Context) ([]domain.Subscriber, error) {
	out := []domain.Subscriber{}
	err := r.db.SelectContext(ctx, &out, `
		SELECT email, COALESCE(created_at,'') AS created_at
		FROM newsletter_subscribers ORDER BY datetime(created_at) DESC, email`)
	return out, err
}

func (r *NewsletterRepo) Unsubscribe(ctx context.Context, email string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM newsletter_subscribers WHERE email = ?`, email)
	return err
}
