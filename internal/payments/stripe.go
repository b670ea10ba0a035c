package payments

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/checkout/session"

	"joyeria/internal/domain"
)

// CLP is a zero-decimal currency for Stripe, so amounts go out as-is.
const currencyCLP = "clp"

type StripeGateway struct {
	baseURL string
}

func NewStripeGateway(secretKey, publicBaseURL string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{baseURL: publicBaseURL}
}

func (g *StripeGateway) Name() string { return "stripe" }

func (g *StripeGateway) CreatePayment(ctx context.Context, o domain.Order) (Link, error) {
	params := &stripe.CheckoutSessionParams{
		Mode:              stripe.String(string(stripe.CheckoutSessionModePayment)),
		ClientReferenceID: stripe.String(o.ID),
		CustomerEmail:     stripe.String(o.CustomerEmail),
		SuccessURL:        stripe.String(g.baseURL + "/checkout/return?order=" + o.ID),
		CancelURL:         stripe.String(g.baseURL + "/checkout/return?order=" + o.ID),
	}
	params.Context = ctx
	for _, it := range o.Items {
		name := it.Name
		if it.VariationLabel != "" {
			name += " (" + it.VariationLabel + ")"
		}
		params.LineItems = append(params.LineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(currencyCLP),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(name),
				},
				UnitAmount: stripe.Int64(it.UnitPrice),
			},
			Quantity: stripe.Int64(int64(it.Qty)),
		})
	}
	params.AddMetadata("order_id", o.ID)

	s, err := session.New(params)
	if err != nil {
		return Link{}, fmt.Errorf("stripe checkout session: %w", err)
	}
	return Link{Ref: s.ID, URL: s.URL}, nil
}

func (g *StripeGateway) PaymentStatus(ctx context.Context, ref string) (Status, error) {
	if ref == "" {
		return "", ErrUnknownPayment
	}
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := session.Get(ref, params)
	if err != nil {
		return "", fmt.Errorf("stripe get session %s: %w", ref, err)
	}
	return mapStripeSession(s.Status, s.PaymentStatus), nil
}

func mapStripeSession(st stripe.CheckoutSessionStatus, ps stripe.CheckoutSessionPaymentStatus) Status {
	switch {
	case ps == stripe.CheckoutSessionPaymentStatusPaid,
		ps == stripe.CheckoutSessionPaymentStatusNoPaymentRequired:
		return StatusPaid
	case st == stripe.CheckoutSessionStatusExpired:
		return StatusCancelled
	default:
		return StatusPending
	}
}
