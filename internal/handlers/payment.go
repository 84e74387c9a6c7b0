// internal/handlers/payment.go
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vibing/vibing-client/internal/i18n"
	"github.com/vibing/vibing-client/internal/middleware"
	"github.com/vibing/vibing-client/internal/payment"
)

// Translator renders the confirmation page text.
type Translator interface {
	T(lang, key string, args ...interface{}) string
}

// PaymentHandler receives the checkout page's success and fail redirects.
type PaymentHandler struct {
	hub *payment.Hub
	tr  Translator
	log *logrus.Entry
}

func NewPaymentHandler(hub *payment.Hub, tr Translator) *PaymentHandler {
	return &PaymentHandler{
		hub: hub,
		tr:  tr,
		log: logrus.WithField("component", "payment_callback"),
	}
}

// GET /purchase/success
func (h *PaymentHandler) Success(c *gin.Context) {
	cb := payment.Callback{
		PaymentID: firstQuery(c, "payment_id", "paymentId", "imp_uid", "merchant_uid"),
		TxID:      firstQuery(c, "txId", "tx_id", "imp_uid"),
		Success:   true,
	}
	h.deliver(c, cb, i18n.KeyPaymentCallbackOK)
}

// GET /purchase/fail
func (h *PaymentHandler) Fail(c *gin.Context) {
	cb := payment.Callback{
		PaymentID: firstQuery(c, "payment_id", "paymentId", "merchant_uid"),
		Code:      firstQuery(c, "code", "error_code"),
		Message:   firstQuery(c, "message", "error_msg"),
	}
	if cb.Code == "" {
		cb.Code = "USER_CANCEL"
	}
	h.deliver(c, cb, i18n.KeyPaymentCallbackFail)
}

func (h *PaymentHandler) deliver(c *gin.Context, cb payment.Callback, key string) {
	lang := middleware.Lang(c)

	if err := h.hub.Deliver(cb); err != nil {
		if errors.Is(err, payment.ErrNoPendingPayment) {
			h.log.WithField("payment_id", cb.PaymentID).Warn("Callback for a payment nobody is waiting on")
			c.String(http.StatusNotFound, h.tr.T(lang, i18n.KeyPaymentCallbackStale))
			return
		}
		c.Error(err)
		c.String(http.StatusInternalServerError, h.tr.T(lang, i18n.KeyPaymentCallbackFail))
		return
	}

	h.log.WithFields(logrus.Fields{
		"payment_id": cb.PaymentID,
		"success":    cb.Success,
	}).Info("Checkout callback delivered")
	c.String(http.StatusOK, h.tr.T(lang, key))
}

func firstQuery(c *gin.Context, keys ...string) string {
	for _, k := range keys {
		if v := c.Query(k); v != "" {
			return v
		}
	}
	return ""
}
