package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"joyeria/internal/cart"
	"joyeria/internal/checkout"
	"joyeria/internal/domain"
	applog "joyeria/internal/log"
	"joyeria/internal/mail"
	"joyeria/internal/payments"
	"joyeria/internal/repos"
	"joyeria/internal/validate"
)

var (
	ErrEmptyCart         = errors.New("cart empty")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidContact    = errors.New("invalid contact details")
)

type OrderService struct {
	Carts     *CartService
	Orders    *repos.OrderRepo
	Finalizer *checkout.Finalizer
	Payments  payments.Gateway
	Mail      mail.Sender
}

func NewOrderService(carts *CartService, orders *repos.OrderRepo, fin *checkout.Finalizer, gw payments.Gateway, m mail.Sender) *OrderService {
	if m == nil {
		m = mail.LogSender{}
	}
	return &OrderService{Carts: carts, Orders: orders, Finalizer: fin, Payments: gw, Mail: m}
}

// Place turns the session's cart into a PENDING order and asks the gateway for
// a payment link. The lines move to the order's own cart and the session cart
// is emptied. Stock is only checked here; it moves when the payment is
// confirmed.
func (s *OrderService) Place(ctx context.Context, sessionID string, contact domain.Contact) (domain.Order, error) {
	if err := validate.Struct(contact); err != nil {
		return domain.Order{}, fmt.Errorf("%w: %v", ErrInvalidContact, err)
	}
	lines, err := s.Carts.For(sessionID).Lines(ctx)
	if err != nil {
		return domain.Order{}, err
	}
	if len(lines) == 0 {
		return domain.Order{}, ErrEmptyCart
	}

	// pre-check stock
	for _, l := range lines {
		ok, err := s.Carts.Ledger.HasStock(ctx, l.StockKey(), l.Quantity)
		if err != nil {
			return domain.Order{}, err
		}
		if !ok {
			return domain.Order{}, fmt.Errorf("%w for %s (need %d)", ErrInsufficientStock, l.Product.Name, l.Quantity)
		}
	}

	o := domain.Order{
		ID:              uuid.NewString(),
		CartID:          sessionID,
		CustomerName:    contact.Name,
		CustomerEmail:   contact.Email,
		CustomerPhone:   contact.Phone,
		ShippingAddress: contact.Address,
		Total:           cart.Total(lines),
		Status:          domain.OrderPending,
		PaymentProvider: s.Payments.Name(),
		Items:           itemsFrom(lines),
	}
	if err := s.Orders.Create(ctx, o); err != nil {
		return domain.Order{}, err
	}
	if err := s.Carts.Carts.SaveCart(ctx, OrderCartID(o.ID), lines); err != nil {
		return domain.Order{}, fmt.Errorf("save order cart: %w", err)
	}
	if err := s.Carts.Clear(ctx, sessionID); err != nil {
		return domain.Order{}, err
	}

	link, err := s.Payments.CreatePayment(ctx, o)
	if err != nil {
		if uerr := s.Orders.UpdateStatus(ctx, o.ID, domain.OrderFailed); uerr != nil {
			applog.Failure("order.status.fail", uerr, map[string]any{"order_id": o.ID})
		}
		s.restoreCart(ctx, o)
		return domain.Order{}, fmt.Errorf("create payment: %w", err)
	}
	if err := s.Orders.SetPayment(ctx, o.ID, link.Ref, link.URL); err != nil {
		return domain.Order{}, err
	}
	o.PaymentRef, o.PaymentURL = link.Ref, link.URL
	return o, nil
}

// OrderCartID is the cart holding the lines an order was placed for.
func OrderCartID(orderID string) string { return "order:" + orderID }

func itemsFrom(lines []cart.Line) []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, domain.OrderItem{
			ProductID:      l.Product.ID,
			VariationID:    l.VariationID(),
			Name:           l.Product.Name,
			VariationLabel: l.VariationLabel(),
			UnitPrice:      l.UnitPrice(),
			Qty:            l.Quantity,
		})
	}
	return items
}

// Confirm asks the gateway for the payment outcome of a PENDING order and
// applies it. Only the call that moves the order out of PENDING finalizes the
// purchase, so repeated confirmations are harmless.
func (s *OrderService) Confirm(ctx context.Context, orderID string) (domain.Order, error) {
	o, err := s.Get(ctx, orderID)
	if err != nil {
		return o, err
	}
	if o.Status != domain.OrderPending {
		return o, nil
	}

	st, err := s.Payments.PaymentStatus(ctx, o.PaymentRef)
	if err != nil {
		return o, fmt.Errorf("payment status: %w", err)
	}
	target := st.OrderStatus()
	if target == domain.OrderPending {
		return o, nil
	}
	won, err := s.Orders.Transition(ctx, o.ID, domain.OrderPending, target)
	if err != nil {
		return o, err
	}
	if !won {
		return s.Get(ctx, orderID)
	}
	applog.Event("order.status.change", map[string]any{"order_id": o.ID, "from": domain.OrderPending, "to": target})

	switch target {
	case domain.OrderPaid:
		if err := s.finalize(ctx, o); err != nil {
			// the order is paid; stock drift is reconciled by the back office
			applog.Failure("order.finalize.partial", err, map[string]any{"order_id": o.ID})
		}
		s.sendConfirmation(ctx, o)
	case domain.OrderCancelled, domain.OrderFailed:
		s.restoreCart(ctx, o)
	}
	return s.Get(ctx, orderID)
}

// finalize runs the purchase on the order's own cart. A cart lost to expiry is
// rebuilt from the order items.
func (s *OrderService) finalize(ctx context.Context, o domain.Order) error {
	id := OrderCartID(o.ID)
	_, ok, err := s.Carts.Carts.LoadCart(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		if err := s.Carts.Carts.SaveCart(ctx, id, linesFrom(o.Items)); err != nil {
			return err
		}
	}
	_, err = s.Finalizer.ProcessPurchase(ctx, s.Carts.For(id))
	return err
}

func linesFrom(items []domain.OrderItem) []cart.Line {
	lines := make([]cart.Line, 0, len(items))
	for _, it := range items {
		l := cart.Line{
			Product:  cart.ProductSnapshot{ID: it.ProductID, Name: it.Name, Price: it.UnitPrice},
			Quantity: it.Qty,
		}
		if it.VariationID != "" {
			l.Variation = &cart.VariationSnapshot{ID: it.VariationID}
		}
		lines = append(lines, l)
	}
	return lines
}

// restoreCart puts an unpaid order's items back into the session cart. Items
// that are gone or no longer in stock are skipped.
func (s *OrderService) restoreCart(ctx context.Context, o domain.Order) {
	for _, it := range o.Items {
		fields := map[string]any{"order_id": o.ID, "product": it.ProductID, "variation": it.VariationID, "qty": it.Qty}
		ok, err := s.Carts.Add(ctx, o.CartID, it.ProductID, it.VariationID, it.Qty)
		switch {
		case err != nil:
			applog.Failure("order.cart.restore.fail", err, fields)
		case !ok:
			applog.Event("order.cart.restore.skip", fields)
		}
	}
	if err := s.Carts.Carts.SaveCart(ctx, OrderCartID(o.ID), nil); err != nil {
		applog.Failure("order.cart.release.fail", err, map[string]any{"order_id": o.ID})
	}
}

func (s *OrderService) sendConfirmation(ctx context.Context, o domain.Order) {
	msg, err := mail.OrderConfirmation(o)
	if err == nil {
		err = s.Mail.Send(ctx, msg)
	}
	if err != nil {
		applog.Failure("order.mail.fail", err, map[string]any{"order_id": o.ID})
	}
}

func (s *OrderService) Get(ctx context.Context, orderID string) (domain.Order, error) {
	o, err := s.Orders.Get(ctx, orderID)
	if errors.Is(err, repos.ErrNotFound) {
		return o, ErrOrderNotFound
	}
	return o, err
}

// ForSession returns the order only to the session that placed it.
func (s *OrderService) ForSession(ctx context.Context, sessionID, orderID string) (domain.Order, error) {
	o, err := s.Get(ctx, orderID)
	if err != nil {
		return o, err
	}
	if sessionID == "" || o.CartID != sessionID {
		return domain.Order{}, ErrOrderNotFound
	}
	return o, nil
}

func (s *OrderService) List(ctx context.Context, status string, limit int) ([]domain.Order, error) {
	return s.Orders.List(ctx, status, limit)
}

func (s *OrderService) SetStatus(ctx context.Context, orderID, status string) error {
	if !domain.ValidOrderStatus(status) {
		return fmt.Errorf("unknown status %q", status)
	}
	err := s.Orders.UpdateStatus(ctx, orderID, status)
	if errors.Is(err, repos.ErrNotFound) {
		return ErrOrderNotFound
	}
	return err
}
