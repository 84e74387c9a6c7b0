// internal/api/purchase.go
package api

import (
	"context"
	"net/url"

	"github.com/vibing/vibing-client/internal/models"
	"github.com/vibing/vibing-client/internal/utils"
)

type PurchaseService struct {
	c *Client
}

func (s *PurchaseService) History(ctx context.Context, page, limit int) (*models.PurchaseHistory, error) {
	var resp models.PurchaseHistory
	q := utils.NormalizePagination(page, limit, 10).Apply(nil)
	if err := s.c.Get(ctx, "/purchase/history", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *PurchaseService) DownloadURL(ctx context.Context, purchaseID string) (*models.DownloadInfo, error) {
	var resp models.DownloadInfo
	if err := s.c.Get(ctx, "/purchase/"+url.PathEscape(purchaseID)+"/download", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *PurchaseService) GenerateLicense(ctx context.Context, purchaseID string) (*models.LicenseInfo, error) {
	var resp models.LicenseInfo
	if err := s.c.Post(ctx, "/purchase/"+url.PathEscape(purchaseID)+"/generate-license", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *PurchaseService) Stats(ctx context.Context) (*models.PurchaseStats, error) {
	var resp struct {
		Stats models.PurchaseStats `json:"stats"`
	}
	if err := s.c.Get(ctx, "/purchase/stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Stats, nil
}

// CheckStatus reports whether the current user owns productID.
func (s *PurchaseService) CheckStatus(ctx context.Context, productID string) (*models.PurchaseCheck, error) {
	var resp models.PurchaseCheck
	if err := s.c.Get(ctx, "/purchase/check/"+url.PathEscape(productID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *PurchaseService) RequestDispute(ctx context.Context, purchaseID, reason string) error {
	body := models.DisputeRequest{Reason: reason}
	return s.c.Post(ctx, "/purchase/"+url.PathEscape(purchaseID)+"/dispute", body, nil)
}
