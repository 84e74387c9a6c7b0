// internal/api/seller.go
package api

import (
	"context"
	"net/url"

	"github.com/vibing/vibing-client/internal/models"
	"github.com/vibing/vibing-client/internal/utils"
)

type SellerService struct {
	c *Client
}

func (s *SellerService) Dashboard(ctx context.Context) (*models.SellerDashboard, error) {
	var resp models.SellerDashboard
	if err := s.c.Get(ctx, "/seller/dashboard", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *SellerService) Products(ctx context.Context, page, limit int, status string) (*models.ProductList, error) {
	var resp models.ProductList
	q := utils.NormalizePagination(page, limit, 10).Apply(nil)
	if status != "" {
		q.Set("status", status)
	}
	if err := s.c.Get(ctx, "/seller/products", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *SellerService) Sales(ctx context.Context, page, limit int) (*models.SaleList, error) {
	var resp models.SaleList
	q := utils.NormalizePagination(page, limit, 10).Apply(nil)
	if err := s.c.Get(ctx, "/seller/sales", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *SellerService) Analytics(ctx context.Context, period string) (models.SellerAnalytics, error) {
	resp := models.SellerAnalytics{}
	var q url.Values
	if period != "" {
		q = url.Values{"period": {period}}
	}
	if err := s.c.Get(ctx, "/seller/analytics", q, &resp); err != nil {
		return nil, err
	}
	return resp, nil
}
