// internal/router/router_test.go
package router

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibing/vibing-client/internal/config"
	"github.com/vibing/vibing-client/internal/i18n"
	"github.com/vibing/vibing-client/internal/payment"
)

func newTestServer(t *testing.T) (*Server, *payment.Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tr, err := i18n.New("ko")
	require.NoError(t, err)

	cfg := &config.Config{
		Payment: config.PaymentConfig{
			CheckoutURL:  "http://localhost:5173/checkout",
			CallbackHost: "127.0.0.1",
			CallbackPort: "0",
		},
		I18n: config.I18nConfig{DefaultLocale: "ko"},
	}
	hub := payment.NewHub()
	s := New(cfg, hub, tr)
	t.Cleanup(func() { s.Shutdown(context.Background()) })
	return s, hub
}

func get(s *Server, path, lang string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if lang != "" {
		req.Header.Set("Accept-Language", lang)
	}
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)
	return w
}

func waitFor(t *testing.T, hub *payment.Hub, id string) payment.Callback {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	cb, err := hub.Wait(ctx, id)
	require.NoError(t, err)
	return cb
}

func TestHealth(t *testing.T) {
	s, hub := newTestServer(t)
	hub.Expect("pay_1")

	w := get(s, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, float64(1), body["pending"])
}

func TestSuccessCallbackDeliversToWaitingPayment(t *testing.T) {
	s, hub := newTestServer(t)
	hub.Expect("pay_1")

	w := get(s, "/purchase/success?payment_id=pay_1&txId=tx_9&amount=14277", "en-US,en;q=0.9")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Payment complete. You can return to the terminal.", w.Body.String())

	cb := waitFor(t, hub, "pay_1")
	assert.True(t, cb.Success)
	assert.Equal(t, "tx_9", cb.TxID)
}

func TestFailCallbackWithoutPaymentIDGoesToOnlyPending(t *testing.T) {
	s, hub := newTestServer(t)
	hub.Expect("pay_2")

	w := get(s, "/purchase/fail?code=PAY_PROCESS_CANCELED&message=cancelled", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "결제가 취소되었거나 실패했습니다. 터미널로 돌아가주세요.", w.Body.String())

	cb := waitFor(t, hub, "pay_2")
	assert.False(t, cb.Success)
	assert.Equal(t, "PAY_PROCESS_CANCELED", cb.Code)
	assert.Equal(t, "cancelled", cb.Message)
}

func TestCallbackIsDeliveredOnce(t *testing.T) {
	s, hub := newTestServer(t)
	hub.Expect("pay_3")

	assert.Equal(t, http.StatusOK, get(s, "/purchase/success?payment_id=pay_3", "").Code)

	w := get(s, "/purchase/success?payment_id=pay_3", "en")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "This payment is no longer waiting for confirmation.", w.Body.String())
}

func TestCallbackWithoutPendingPayment(t *testing.T) {
	s, _ := newTestServer(t)

	w := get(s, "/purchase/fail?payment_id=unknown", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSAllowsCheckoutOrigin(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/purchase/success", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	s.Engine().ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestEnsureRunningListensOnce(t *testing.T) {
	s, _ := newTestServer(t)

	require.NoError(t, s.EnsureRunning())
	addr := s.Addr()
	require.NoError(t, s.EnsureRunning())
	assert.Equal(t, addr, s.Addr())

	resp, err := http.Get("http://" + addr + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "healthy")

	require.NoError(t, s.Shutdown(context.Background()))
	assert.Equal(t, "127.0.0.1:0", s.Addr())
}
