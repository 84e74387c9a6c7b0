// internal/payment/payment.go
package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/vibing/vibing-client/internal/config"
	"github.com/vibing/vibing-client/internal/utils"
)

const marketplaceName = "Vibing Marketplace"

// Request describes one payment to collect.
type Request struct {
	PaymentID     string
	OrderName     string
	Amount        int64
	Currency      string
	CustomerEmail string
	CustomerName  string
	ProductID     string
}

// Result is a payment the provider reports as collected. It still has to be
// verified with the API.
type Result struct {
	PaymentID string
	TxID      string
	Amount    int64
	Status    string
}

// ProviderError is a payment the provider declined or the user abandoned.
type ProviderError struct {
	Code    string
	Message string
}

func (e *ProviderError) Error() string {
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type Provider interface {
	Name() string
	RequestPayment(ctx context.Context, req Request) (*Result, error)
}

// OrderName formats the order name the backend parses during verification.
func OrderName(title, productID string) string {
	return fmt.Sprintf("%s - %s - %s", title, productID, marketplaceName)
}

// NewRequest builds a request with a fresh payment ID.
func NewRequest(title, productID string, amountKRW int64, email, currency string, now time.Time) Request {
	return Request{
		PaymentID:     utils.GeneratePaymentID(now),
		OrderName:     OrderName(title, productID),
		Amount:        amountKRW,
		Currency:      currency,
		CustomerEmail: email,
		ProductID:     productID,
	}
}

// NewProvider returns the provider selected by cfg.Provider.
func NewProvider(cfg config.PaymentConfig, hub *Hub, server CallbackServer, open Opener) (Provider, error) {
	switch cfg.Provider {
	case "redirect", "":
		return NewRedirectProvider(cfg, hub, server, open), nil
	case "stripe":
		return NewStripeProvider(cfg, nil), nil
	default:
		return nil, fmt.Errorf("unsupported payment provider %q", cfg.Provider)
	}
}
