// Package payments creates payment links for orders and reads back their
// status from the provider.
package payments

import (
	"context"
	"errors"

	"joyeria/internal/domain"
)

var ErrUnknownPayment = errors.New("unknown payment reference")

// Status values are mapped onto order statuses by the caller.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusPaid      Status = "PAID"
	StatusCancelled Status = "CANCELLED"
	StatusFailed    Status = "FAILED"
)

type Link struct {
	Ref string
	URL string
}

type Gateway interface {
	Name() string
	CreatePayment(ctx context.Context, o domain.Order) (Link, error)
	PaymentStatus(ctx context.Context, ref string) (Status, error)
}

// OrderStatus maps a payment status onto the order status it implies.
func (s Status) OrderStatus() string {
	switch s {
	case StatusPaid:
		return domain.OrderPaid
	case StatusCancelled:
		return domain.OrderCancelled
	case StatusFailed:
		return domain.OrderFailed
	default:
		return domain.OrderPending
	}
}
