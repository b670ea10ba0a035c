package repos

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"joyeria/internal/cart"
	"joyeria/internal/stock"
)

func setupMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return sqlx.NewDb(db, "sqlite"), mock
}

func TestCartRepo_SaveRollsBackOnFailure(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCartRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO carts(id, updated_at)`)).
		WithArgs("sid-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM cart_lines WHERE cart_id = ?`)).
		WithArgs("sid-1").
		WillReturnError(errors.New("disk I/O error"))
	mock.ExpectRollback()

	err := repo.SaveCart(context.Background(), "sid-1", []cart.Line{
		{Product: cart.ProductSnapshot{ID: "aros-perla", Price: 19990}, Quantity: 1},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk I/O")
}

func TestOrderRepo_TransitionLosesRace(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewOrderRepo(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`)).
		WithArgs("PAID", "o-1", "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 0))

	won, err := repo.Transition(context.Background(), "o-1", "PENDING", "PAID")
	require.NoError(t, err)
	assert.False(t, won)
}

func TestOrderRepo_GetMissing(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewOrderRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta(`FROM orders WHERE id = ?`)).
		WithArgs("o-404").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.Get(context.Background(), "o-404")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStockStore_PropagatesErrors(t *testing.T) {
	db, mock := setupMockDB(t)
	ledger := stock.NewLedger(NewStockStore(db))
	key := stock.Key{ProductID: "anillo-solitario"}

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT stock FROM products WHERE id = ?`)).
		WithArgs("anillo-solitario").
		WillReturnError(errors.New("database is locked"))

	_, err := ledger.GetStock(context.Background(), key)
	require.Error(t, err)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE products SET stock = ?`)).
		WithArgs(4, "anillo-solitario").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = ledger.SetStock(context.Background(), key, 4)
	assert.ErrorIs(t, err, ErrNotFound)
}
