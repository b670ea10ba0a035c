package handlers

import (
	"joyeria/internal/cart"
	"joyeria/internal/checkout"
	"joyeria/internal/config"
	"joyeria/internal/events"
	"joyeria/internal/mail"
	"joyeria/internal/payments"
	"joyeria/internal/repos"
	"joyeria/internal/services"
	"joyeria/internal/stock"

	"github.com/jmoiron/sqlx"
)

// Backends are the swappable collaborators. Nil fields fall back to SQLite
// carts, no event fan-out, the sandbox gateway and log-only mail.
type Backends struct {
	Carts    cart.Persistence
	Events   events.Publisher
	Payments payments.Gateway
	Mail     mail.Sender
}

type Deps struct {
	CategoryHandler   *CategoryHandler
	ProductHandler    *ProductHandler
	InventoryHandler  *InventoryHandler
	SearchHandler     *SearchHandler
	CartHandler       *CartHandler
	OrderHandler      *OrderHandler
	NewsletterHandler *NewsletterHandler
	AdminHandler      *AdminHandler

	Ledger *stock.Ledger
	Carts  *services.CartService
	Orders *services.OrderService
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService, b Backends) *Deps {
	if b.Carts == nil {
		b.Carts = repos.NewCartRepo(db)
	}
	if b.Events == nil {
		b.Events = events.Nop{}
	}
	if b.Payments == nil {
		b.Payments = payments.NewSandboxGateway(cfg.PublicBaseURL)
	}
	if b.Mail == nil {
		b.Mail = mail.LogSender{}
	}

	catRepo := repos.NewCategoryRepo(db)
	prodRepo := repos.NewProductRepo(db)
	varRepo := repos.NewVariationRepo(db)
	stockStore := repos.NewStockStore(db)
	orderRepo := repos.NewOrderRepo(db)
	newsRepo := repos.NewNewsletterRepo(db)

	ledger := stock.NewLedger(stockStore)
	catalogSvc := services.NewCatalogService(catRepo, prodRepo, varRepo)
	invSvc := services.NewInventoryService(ledger, stockStore)
	cartSvc := services.NewCartService(b.Carts, ledger, b.Events, catalogSvc)
	orderSvc := services.NewOrderService(cartSvc, orderRepo, checkout.NewFinalizer(ledger), b.Payments, b.Mail)
	newsSvc := services.NewNewsletterService(newsRepo, b.Mail)

	return &Deps{
		CategoryHandler:   &CategoryHandler{Catalog: catalogSvc},
		ProductHandler:    &ProductHandler{Catalog: catalogSvc},
		InventoryHandler:  &InventoryHandler{Inv: invSvc},
		SearchHandler:     &SearchHandler{Catalog: catalogSvc},
		CartHandler:       &CartHandler{Cart: cartSvc},
		OrderHandler:      &OrderHandler{Cart: cartSvc, Order: orderSvc, Auth: auth},
		NewsletterHandler: &NewsletterHandler{News: newsSvc},
		AdminHandler: &AdminHandler{
			Catalog: catalogSvc, Inv: invSvc, Orders: orderSvc, News: newsSvc,
			Products: prodRepo, OrderRepo: orderRepo,
		},
		Ledger: ledger,
		Carts:  cartSvc,
		Orders: orderSvc,
	}
}
