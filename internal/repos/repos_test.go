package repos

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"joyeria/internal/cart"
	"joyeria/internal/domain"
	"joyeria/internal/stock"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestOpenDB_MigratesAndSeeds(t *testing.T) {
	db := memdb(t)
	cats, err := NewCategoryRepo(db).List(true)
	require.NoError(t, err)
	assert.Len(t, cats, 4)
	assert.Equal(t, "anillos", cats[0].Slug)

	vars, err := NewVariationRepo(db).ListByProduct("cadena-plata", true)
	require.NoError(t, err)
	assert.Len(t, vars, 4)

	// seeding runs once
	require.NoError(t, seedIfEmpty(db))
	cats, _ = NewCategoryRepo(db).List(false)
	assert.Len(t, cats, 4)
}

func TestProductRepo_ListAndUpdate(t *testing.T) {
	db := memdb(t)
	r := NewProductRepo(db)

	featured, err := r.List(ProductFilter{FeaturedOnly: true})
	require.NoError(t, err)
	assert.Len(t, featured, 3)

	found, err := r.List(ProductFilter{Query: "perla"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "aros-perla", found[0].ID)

	// wildcards in the query are literal
	for _, q := range []string{"p_rla", "per%", "_"} {
		found, err = r.List(ProductFilter{Query: q})
		require.NoError(t, err)
		assert.Empty(t, found, "query %q", q)
	}

	p, err := r.Get("aros-perla")
	require.NoError(t, err)
	p.Price = 21000
	p.Stock = 999 // ignored by Update
	require.NoError(t, r.Update(p))

	p, _ = r.Get("aros-perla")
	assert.Equal(t, int64(21000), p.Price)
	assert.Equal(t, 12, p.Stock)

	_, err = r.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, r.Update(domain.Product{ID: "nope", Category: "anillos"}), ErrNotFound)

	counts, err := r.Counts()
	require.NoError(t, err)
	assert.Equal(t, 5, counts.Total)
	assert.Equal(t, 0, counts.OutOfStock) // the chain has stocked variations
}

func TestCategoryRepo_DeleteRestrictedWhileInUse(t *testing.T) {
	db := memdb(t)
	r := NewCategoryRepo(db)
	assert.ErrorIs(t, r.Delete("anillos"), ErrInUse)
	_, err := r.Get("anillos")
	require.NoError(t, err)

	require.NoError(t, r.Save(domain.Category{Slug: "pulseras", Name: "Pulseras", IsActive: true}))
	require.NoError(t, r.Delete("pulseras"))
	assert.ErrorIs(t, r.Delete("pulseras"), ErrNotFound)
}

func TestStockStore_WithLedger(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	ledger := stock.NewLedger(NewStockStore(db))

	n, err := ledger.GetStock(ctx, stock.ProductKey("anillo-solitario"))
	require.NoError(t, err)
	assert.Equal(t, 15, n)

	key := stock.Key{ProductID: "cadena-plata", VariationID: "cadena-plata-cub-2-50"}
	require.NoError(t, ledger.DecrementStock(ctx, key, 3))
	n, _ = ledger.GetStock(ctx, key)
	assert.Equal(t, 1, n)
	require.NoError(t, ledger.DecrementStock(ctx, key, 3))
	n, _ = ledger.GetStock(ctx, key)
	assert.Equal(t, 0, n)

	// a variation is only addressed through its own product
	n, _ = ledger.GetStock(ctx, stock.Key{ProductID: "anillo-solitario", VariationID: "cadena-plata-ven-1-45"})
	assert.Equal(t, 0, n)
	assert.ErrorIs(t, ledger.SetStock(ctx, stock.ProductKey("ghost"), 1), ErrNotFound)

	rows, err := NewStockStore(db).ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 9)
}

func TestCartRepo_RoundTrip(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	r := NewCartRepo(db)

	_, ok, err := r.LoadCart(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)

	lines := []cart.Line{
		{Product: cart.ProductSnapshot{ID: "b", Name: "B", Price: 200}, Quantity: 1},
		{Product: cart.ProductSnapshot{ID: "a", Name: "A", Price: 100}, Quantity: 2,
			Variation: &cart.VariationSnapshot{ID: "v1", Brand: "X", PriceModifier: 50}},
	}
	require.NoError(t, r.SaveCart(ctx, "s1", lines))

	got, ok, err := r.LoadCart(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, lines, got)

	require.NoError(t, r.SaveCart(ctx, "s1", []cart.Line{}))
	got, ok, _ = r.LoadCart(ctx, "s1")
	assert.True(t, ok)
	assert.Empty(t, got)

	n, err := r.DeleteStale(ctx, 30)
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestOrderRepo_CreateGetTransition(t *testing.T) {
	db := memdb(t)
	ctx := context.Background()
	r := NewOrderRepo(db)

	o := domain.Order{
		ID: "o1", CartID: "s1", CustomerName: "Ana", CustomerEmail: "ana@example.com",
		ShippingAddress: "Calle 1", Total: 61990, Status: domain.OrderPending, PaymentProvider: "sandbox",
		Items: []domain.OrderItem{
			{ProductID: "colgante-luna", Name: "Colgante Luna", UnitPrice: 15990, Qty: 1},
			{ProductID: "anillo-solitario", Name: "Anillo", UnitPrice: 45990, Qty: 1},
		},
	}
	require.NoError(t, r.Create(ctx, o))
	require.NoError(t, r.SetPayment(ctx, "o1", "ref-1", "http://pay"))

	got, err := r.Get(ctx, "o1")
	require.NoError(t, err)
	assert.Equal(t, "ref-1", got.PaymentRef)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "colgante-luna", got.Items[0].ProductID)

	won, err := r.Transition(ctx, "o1", domain.OrderPending, domain.OrderPaid)
	require.NoError(t, err)
	assert.True(t, won)
	won, err = r.Transition(ctx, "o1", domain.OrderPending, domain.OrderPaid)
	require.NoError(t, err)
	assert.False(t, won)

	list, err := r.List(ctx, domain.OrderPaid, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	counts, err := r.CountByStatus(ctx)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, int64(61990), counts[0].Total)

	_, err = r.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, r.UpdateStatus(ctx, "missing", domain.OrderShipped), ErrNotFound)
}

func TestUserRepo_EnsureAdminAndSessions(t *testing.T) {
	db := memdb(t)
	r := NewUserRepo(db)
	require.NoError(t, r.EnsureAdmin("admin@example.com", "Secret!123"))
	require.NoError(t, r.EnsureAdmin("admin@example.com", "Other!1234"))

	u, err := r.ByEmail("ADMIN@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, u.Role)

	require.NoError(t, r.BindSession("sid-1", u.ID))
	su, err := r.SessionUser("sid-1")
	require.NoError(t, err)
	assert.Equal(t, u.ID, su.ID)

	require.NoError(t, r.UnbindSession("sid-1"))
	_, err = r.SessionUser("sid-1")
	assert.Error(t, err)
}
