// internal/payment/redirect.go
package payment

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vibing/vibing-client/internal/config"
)

// CallbackServer is the loopback HTTP server receiving checkout redirects.
type CallbackServer interface {
	EnsureRunning() error
}

// Opener presents the checkout URL to the user.
type Opener func(checkoutURL string) error

// RedirectProvider sends the user to a hosted checkout page and waits for it
// to redirect back to the local callback server.
type RedirectProvider struct {
	checkoutURL  string
	callbackBase string
	timeout      time.Duration
	hub          *Hub
	server       CallbackServer
	open         Opener
	log          *logrus.Entry
}

func NewRedirectProvider(cfg config.PaymentConfig, hub *Hub, server CallbackServer, open Opener) *RedirectProvider {
	return &RedirectProvider{
		checkoutURL:  cfg.CheckoutURL,
		callbackBase: cfg.CallbackBaseURL(),
		timeout:      cfg.CallbackWait(),
		hub:          hub,
		server:       server,
		open:         open,
		log:          logrus.WithField("component", "payment"),
	}
}

func (p *RedirectProvider) Name() string { return "redirect" }

// CheckoutURL is the hosted checkout page for req.
func (p *RedirectProvider) CheckoutURL(req Request) (string, error) {
	u, err := url.Parse(p.checkoutURL)
	if err != nil {
		return "", fmt.Errorf("invalid checkout URL: %w", err)
	}

	success := url.Values{}
	success.Set("payment_id", req.PaymentID)
	success.Set("order_name", req.OrderName)
	success.Set("amount", strconv.FormatInt(req.Amount, 10))
	success.Set("customer_email", req.CustomerEmail)

	fail := url.Values{}
	fail.Set("payment_id", req.PaymentID)

	q := u.Query()
	q.Set("paymentId", req.PaymentID)
	q.Set("orderName", req.OrderName)
	q.Set("totalAmount", strconv.FormatInt(req.Amount, 10))
	q.Set("currency", req.Currency)
	q.Set("customerEmail", req.CustomerEmail)
	q.Set("redirectUrl", p.callbackBase+"/purchase/success?"+success.Encode())
	q.Set("failUrl", p.callbackBase+"/purchase/fail?"+fail.Encode())
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (p *RedirectProvider) RequestPayment(ctx context.Context, req Request) (*Result, error) {
	checkout, err := p.CheckoutURL(req)
	if err != nil {
		return nil, err
	}
	if err := p.server.EnsureRunning(); err != nil {
		return nil, fmt.Errorf("failed to start payment callback server: %w", err)
	}

	p.hub.Expect(req.PaymentID)
	if err := p.open(checkout); err != nil {
		p.hub.forget(req.PaymentID)
		return nil, fmt.Errorf("failed to open checkout: %w", err)
	}
	p.log.WithField("payment_id", req.PaymentID).Info("Waiting for checkout callback")

	wctx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		wctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	cb, err := p.hub.Wait(wctx, req.PaymentID)
	if err != nil {
		if ctx.Err() == nil && wctx.Err() != nil {
			return nil, &ProviderError{Code: "TIMEOUT", Message: "payment window timed out"}
		}
		return nil, err
	}
	if !cb.Success {
		return nil, &ProviderError{Code: cb.Code, Message: cb.Message}
	}

	id := cb.PaymentID
	if id == "" {
		id = req.PaymentID
	}
	return &Result{
		PaymentID: id,
		TxID:      cb.TxID,
		Amount:    req.Amount,
		Status:    "completed",
	}, nil
}
