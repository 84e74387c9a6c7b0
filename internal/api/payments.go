// internal/api/payments.go
package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/vibing/vibing-client/internal/models"
)

type PaymentService struct {
	c *Client
}

// VerifyParams are the optional query parameters of payment verification.
type VerifyParams struct {
	OrderName     string
	Amount        int64
	CustomerEmail string
}

func (s *PaymentService) Verify(ctx context.Context, paymentID string, p VerifyParams) (*models.PaymentVerification, error) {
	q := url.Values{}
	if p.OrderName != "" {
		q.Set("orderName", p.OrderName)
	}
	if p.Amount != 0 {
		q.Set("amount", strconv.FormatInt(p.Amount, 10))
	}
	if p.CustomerEmail != "" {
		q.Set("customerEmail", p.CustomerEmail)
	}

	var resp models.PaymentVerification
	if err := s.c.Do(ctx, http.MethodPost, "/payments/verify/"+url.PathEscape(paymentID), q, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *PaymentService) Cancel(ctx context.Context, orderID string) error {
	return s.c.Get(ctx, "/payment/cancel/"+url.PathEscape(orderID), nil, nil)
}
