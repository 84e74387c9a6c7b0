// internal/payment/payment_test.go
package payment

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibing/vibing-client/internal/config"
)

type noopServer struct{ err error }

func (s noopServer) EnsureRunning() error { return s.err }

func redirectConfig() config.PaymentConfig {
	return config.PaymentConfig{
		CheckoutURL:     "https://pay.vibing.test/checkout",
		CallbackHost:    "127.0.0.1",
		CallbackPort:    "8787",
		CallbackTimeout: 5,
		Currency:        "KRW",
	}
}

func TestNewRequest(t *testing.T) {
	req := NewRequest("JWT Kit", "prod-1", 14290, "kim@example.com", "KRW", time.UnixMilli(1700000000000))
	assert.Equal(t, "JWT Kit - prod-1 - Vibing Marketplace", req.OrderName)
	assert.Regexp(t, regexp.MustCompile(`^payment-1700000000000-[0-9a-z]{9}$`), req.PaymentID)
	assert.Equal(t, int64(14290), req.Amount)
}

func TestCheckoutURL(t *testing.T) {
	p := NewRedirectProvider(redirectConfig(), NewHub(), noopServer{}, nil)
	raw, err := p.CheckoutURL(Request{PaymentID: "payment-1-abc", OrderName: "Kit - p1 - Vibing Marketplace", Amount: 2590, Currency: "KRW", CustomerEmail: "kim@example.com"})
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "payment-1-abc", q.Get("paymentId"))
	assert.Equal(t, "2590", q.Get("totalAmount"))

	redirect, err := url.Parse(q.Get("redirectUrl"))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8787", redirect.Host)
	assert.Equal(t, "/purchase/success", redirect.Path)
	assert.Equal(t, "payment-1-abc", redirect.Query().Get("payment_id"))
}

func TestRedirectProviderSuccess(t *testing.T) {
	hub := NewHub()
	opened := make(chan string, 1)
	p := NewRedirectProvider(redirectConfig(), hub, noopServer{}, func(u string) error {
		opened <- u
		return nil
	})

	go func() {
		<-opened
		assert.NoError(t, hub.Deliver(Callback{PaymentID: "payment-1-abc", TxID: "tx-9", Success: true}))
	}()

	res, err := p.RequestPayment(context.Background(), Request{PaymentID: "payment-1-abc", Amount: 2590})
	require.NoError(t, err)
	assert.Equal(t, "payment-1-abc", res.PaymentID)
	assert.Equal(t, "tx-9", res.TxID)
	assert.Equal(t, int64(2590), res.Amount)
	assert.Equal(t, 0, hub.Pending())
}

func TestRedirectProviderFailureAndTimeout(t *testing.T) {
	hub := NewHub()
	opened := make(chan string, 1)
	p := NewRedirectProvider(redirectConfig(), hub, noopServer{}, func(u string) error {
		opened <- u
		return nil
	})

	go func() {
		<-opened
		// The fail redirect may omit the payment ID.
		assert.NoError(t, hub.Deliver(Callback{Code: "PAY_PROCESS_CANCELED", Message: "사용자가 결제를 취소하였습니다"}))
	}()
	_, err := p.RequestPayment(context.Background(), Request{PaymentID: "payment-2-abc"})
	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "PAY_PROCESS_CANCELED", perr.Code)

	p.timeout = 20 * time.Millisecond
	_, err = p.RequestPayment(context.Background(), Request{PaymentID: "payment-3-abc"})
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "TIMEOUT", perr.Code)
	<-opened
}

func TestRedirectProviderServerError(t *testing.T) {
	p := NewRedirectProvider(redirectConfig(), NewHub(), noopServer{err: errors.New("address in use")}, nil)
	_, err := p.RequestPayment(context.Background(), Request{PaymentID: "payment-4-abc"})
	assert.ErrorContains(t, err, "address in use")
}

func TestHubDeliverWithoutWaiter(t *testing.T) {
	hub := NewHub()
	assert.ErrorIs(t, hub.Deliver(Callback{PaymentID: "nobody"}), ErrNoPendingPayment)

	hub.Expect("a")
	hub.Expect("b")
	assert.ErrorIs(t, hub.Deliver(Callback{}), ErrNoPendingPayment)

	require.NoError(t, hub.Deliver(Callback{PaymentID: "a", Success: true}))
	assert.ErrorIs(t, hub.Deliver(Callback{PaymentID: "a", Success: true}), ErrNoPendingPayment)
}

func TestStripeProvider(t *testing.T) {
	forms := make(chan url.Values, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, r.ParseForm())
		forms <- r.PostForm
		assert.Equal(t, "/v1/payment_intents", r.URL.Path)
		assert.Equal(t, "payment-5-abc", r.Header.Get("Idempotency-Key"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"pi_123","object":"payment_intent","amount":14290,"currency":"krw","status":"succeeded","latest_charge":"ch_456"}`))
	}))
	defer srv.Close()

	cfg := config.PaymentConfig{StripeSecretKey: "sk_test_123", StripeMethod: "pm_card_visa"}
	p := NewStripeProvider(cfg, NewStripeBackend(srv.URL, srv.Client()))

	res, err := p.RequestPayment(context.Background(), Request{
		PaymentID: "payment-5-abc",
		OrderName: "JWT Kit - prod-1 - Vibing Marketplace",
		Amount:    14290,
		Currency:  "KRW",
		ProductID: "prod-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "pi_123", res.PaymentID)
	assert.Equal(t, "ch_456", res.TxID)
	form := <-forms
	assert.Equal(t, "14290", form.Get("amount"))
	assert.Equal(t, "krw", form.Get("currency"))
	assert.Equal(t, "true", form.Get("confirm"))
	assert.Equal(t, "prod-1", form.Get("metadata[product_id]"))
}

func TestStripeProviderDeclined(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`))
	}))
	defer srv.Close()

	p := NewStripeProvider(config.PaymentConfig{StripeSecretKey: "sk_test_123", StripeMethod: "pm_card_chargeDeclined"}, NewStripeBackend(srv.URL, srv.Client()))
	_, err := p.RequestPayment(context.Background(), Request{PaymentID: "payment-6-abc", Amount: 100, Currency: "KRW"})

	var perr *ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "card_declined", perr.Code)
	assert.Equal(t, "Your card was declined.", perr.Message)
}
