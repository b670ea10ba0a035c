package payments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker/v2"

	"joyeria/internal/domain"
	applog "joyeria/internal/log"
)

// Breaker wraps a Gateway so a provider outage fails checkout fast instead of
// stalling every request on the provider's timeout.
type Breaker struct {
	gw     Gateway
	create *gobreaker.CircuitBreaker[Link]
	status *gobreaker.CircuitBreaker[Status]
}

// WithBreaker opens after the given number of consecutive failures and lets a
// single trial call through to the provider after cooldown.
func WithBreaker(gw Gateway, failures uint32, cooldown time.Duration) *Breaker {
	if failures == 0 {
		failures = 5
	}
	settings := func(name string) gobreaker.Settings {
		return gobreaker.Settings{
			Name:        gw.Name() + "." + name,
			MaxRequests: 1,
			Timeout:     cooldown,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= failures
			},
			// an unknown reference is the caller's problem, not the provider's
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrUnknownPayment)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				applog.Event("payments.breaker", map[string]any{"breaker": name, "from": from.String(), "to": to.String()})
			},
		}
	}
	return &Breaker{
		gw:     gw,
		create: gobreaker.NewCircuitBreaker[Link](settings("create")),
		status: gobreaker.NewCircuitBreaker[Status](settings("status")),
	}
}

func (b *Breaker) Name() string { return b.gw.Name() }

func (b *Breaker) CreatePayment(ctx context.Context, o domain.Order) (Link, error) {
	link, err := b.create.Execute(func() (Link, error) {
		return b.gw.CreatePayment(ctx, o)
	})
	if isOpen(err) {
		return Link{}, fmt.Errorf("%s unavailable: %w", b.gw.Name(), err)
	}
	return link, err
}

func (b *Breaker) PaymentStatus(ctx context.Context, ref string) (Status, error) {
	st, err := b.status.Execute(func() (Status, error) {
		return b.gw.PaymentStatus(ctx, ref)
	})
	if isOpen(err) {
		return "", fmt.Errorf("%s unavailable: %w", b.gw.Name(), err)
	}
	return st, err
}

func isOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
