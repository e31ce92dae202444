// Package payment creates hosted checkout sessions with the payment provider.
package payment

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/example/eshop-backend/domain/apperr"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// ErrDisabled is returned when no provider key is configured.
var ErrDisabled = fmt.Errorf("%w: payments are not configured", apperr.ErrUnavailable)

// LineItem is one priced cart line. UnitAmount is in minor currency units.
type LineItem struct {
	Name       string
	UnitAmount int64
	Quantity   int64
}

// Gateway opens checkout sessions.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, lines []LineItem) (string, error)
}

// Config configures the Stripe gateway.
type Config struct {
	SecretKey   string
	Currency    string
	SuccessURL  string
	CancelURL   string
	MaxAttempts uint64
}

// sessionCreator is the subset of the Stripe client used here.
type sessionCreator interface {
	New(params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// StripeGateway creates Stripe Checkout sessions.
type StripeGateway struct {
	cfg      Config
	sessions sessionCreator
}

// New returns a Stripe gateway, or a disabled gateway when no secret key is set.
func New(cfg Config) Gateway {
	if cfg.SecretKey == "" {
		return disabledGateway{}
	}
	sc := client.New(cfg.SecretKey, nil)
	return newStripeGateway(cfg, sc.CheckoutSessions)
}

func newStripeGateway(cfg Config, sessions sessionCreator) *StripeGateway {
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.Currency == "" {
		cfg.Currency = "inr"
	}
	return &StripeGateway{cfg: cfg, sessions: sessions}
}

// CreateCheckoutSession opens a card payment session for the given lines and
// returns its id. Transient provider failures are retried with the same
// idempotency key.
func (g *StripeGateway) CreateCheckoutSession(ctx context.Context, lines []LineItem) (string, error) {
	if len(lines) == 0 {
		return "", fmt.Errorf("%w: checkout needs at least one line", apperr.ErrInvalidArgument)
	}

	params := g.buildParams(lines)
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey(lines))

	var session *stripe.CheckoutSession
	operation := func() error {
		s, err := g.sessions.New(params)
		if err != nil {
			if !retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}
		session = s
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(
			backoff.WithInitialInterval(200*time.Millisecond),
			backoff.WithMaxElapsedTime(10*time.Second),
		), g.cfg.MaxAttempts-1),
		ctx,
	)
	err := backoff.RetryNotify(operation, policy, func(err error, next time.Duration) {
		log.Printf("[payment] Checkout session failed, retrying in %s: %v", next, err)
	})
	if err != nil {
		return "", fmt.Errorf("%w: checkout session: %v", apperr.ErrUnavailable, err)
	}
	return session.ID, nil
}

func (g *StripeGateway) buildParams(lines []LineItem) *stripe.CheckoutSessionParams {
	items := make([]*stripe.CheckoutSessionLineItemParams, 0, len(lines))
	for _, l := range lines {
		items = append(items, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency: stripe.String(g.cfg.Currency),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(l.Name),
				},
				UnitAmount: stripe.Int64(l.UnitAmount),
			},
			Quantity: stripe.Int64(l.Quantity),
		})
	}

	return &stripe.CheckoutSessionParams{
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems:          items,
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL:         stripe.String(g.cfg.SuccessURL),
		CancelURL:          stripe.String(g.cfg.CancelURL),
	}
}

func retryable(err error) bool {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return stripeErr.HTTPStatusCode == 0 ||
			stripeErr.HTTPStatusCode == 429 ||
			stripeErr.HTTPStatusCode >= 500
	}
	return true
}

// idempotencyKey derives a stable key from the cart within a one minute window.
func idempotencyKey(lines []LineItem) string {
	var b strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&b, "%s|%d|%d;", l.Name, l.UnitAmount, l.Quantity)
	}
	fmt.Fprintf(&b, "%d", time.Now().Unix()/60)
	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:16])
}

type disabledGateway struct{}

func (disabledGateway) CreateCheckoutSession(context.Context, []LineItem) (string, error) {
	return "", ErrDisabled
}
