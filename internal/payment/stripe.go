// internal/payment/stripe.go
package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"

	"github.com/vibing/vibing-client/internal/config"
)

// StripeProvider charges a Stripe test-mode payment method directly.
type StripeProvider struct {
	intents paymentintent.Client
	method  string
	log     *logrus.Entry
}

// NewStripeProvider creates the provider. backend may be nil for the
// default Stripe API backend.
func NewStripeProvider(cfg config.PaymentConfig, backend stripe.Backend) *StripeProvider {
	log := logrus.WithField("component", "payment")
	if backend == nil {
		backend = stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
			LeveledLogger: log,
		})
	}
	return &StripeProvider{
		intents: paymentintent.Client{B: backend, Key: cfg.StripeSecretKey},
		method:  cfg.StripeMethod,
		log:     log,
	}
}

// NewStripeBackend returns an API backend at baseURL.
func NewStripeBackend(baseURL string, hc *http.Client) stripe.Backend {
	return stripe.GetBackendWithConfig(stripe.APIBackend, &stripe.BackendConfig{
		URL:               stripe.String(baseURL),
		HTTPClient:        hc,
		MaxNetworkRetries: stripe.Int64(0),
		LeveledLogger:     logrus.WithField("component", "payment"),
	})
}

func (p *StripeProvider) Name() string { return "stripe" }

func (p *StripeProvider) RequestPayment(ctx context.Context, req Request) (*Result, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.Amount),
		Currency:           stripe.String(strings.ToLower(req.Currency)),
		PaymentMethod:      stripe.String(p.method),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Confirm:            stripe.Bool(true),
		Description:        stripe.String(req.OrderName),
	}
	if req.CustomerEmail != "" {
		params.ReceiptEmail = stripe.String(req.CustomerEmail)
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.PaymentID)
	params.AddMetadata("payment_id", req.PaymentID)
	params.AddMetadata("product_id", req.ProductID)

	pi, err := p.intents.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			return nil, &ProviderError{Code: string(stripeErr.Code), Message: stripeErr.Msg}
		}
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	p.log.WithFields(logrus.Fields{
		"payment_intent": pi.ID,
		"status":         pi.Status,
	}).Info("Payment intent confirmed")

	if pi.Status != stripe.PaymentIntentStatusSucceeded {
		return nil, &ProviderError{
			Code:    "PAYMENT_INCOMPLETE",
			Message: fmt.Sprintf("payment intent is %s", pi.Status),
		}
	}
	var txID string
	if pi.LatestCharge != nil {
		txID = pi.LatestCharge.ID
	}
	return &Result{
		PaymentID: pi.ID,
		TxID:      txID,
		Amount:    pi.Amount,
		Status:    "completed",
	}, nil
}
