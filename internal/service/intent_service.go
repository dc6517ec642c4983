package service

import (
	"context"
	"errors"
	"fmt"
	"math"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
)

var ErrInvalidAmount = errors.New("total amount must be greater than zero")

// IntentService converts a monetary total into a provider-side payment
// intent and returns the client secret needed to complete the charge.
// No idempotency key is applied: submitting twice creates two intents.
type IntentService interface {
	CreateIntent(ctx context.Context, totalAmount float64) (string, error)
}

type stripeIntentService struct{}

// NewStripeIntentService configures the global Stripe key and returns the
// payment intent gateway.
func NewStripeIntentService(secretKey string) IntentService {
	stripe.Key = secretKey
	return &stripeIntentService{}
}

// CreateIntent charges in USD. The decimal total is converted to minor
// units (cents) before the provider call.
func (s *stripeIntentService) CreateIntent(ctx context.Context, totalAmount float64) (string, error) {
	if totalAmount <= 0 {
		return "", ErrInvalidAmount
	}

	amount := int64(math.Round(totalAmount * 100))
	params := &stripe.PaymentIntentParams{
		Params:   stripe.Params{Context: ctx},
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(string(stripe.CurrencyUSD)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("create payment intent: %w", err)
	}

	return pi.ClientSecret, nil
}
