// internal/api/admin.go
package api

import (
	"context"
	"net/url"

	"github.com/vibing/vibing-client/internal/models"
	"github.com/vibing/vibing-client/internal/utils"
)

type AdminService struct {
	c *Client
}

// AdminListParams filters the admin list endpoints.
type AdminListParams struct {
	Page     int
	Limit    int
	Role     string
	Status   string
	Category string
	Search   string
}

func (p AdminListParams) values() url.Values {
	q := utils.NormalizePagination(p.Page, p.Limit, 20).Apply(nil)
	if p.Role != "" {
		q.Set("role", p.Role)
	}
	if p.Status != "" {
		q.Set("status", p.Status)
	}
	if p.Category != "" {
		q.Set("category", p.Category)
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	return q
}

func (s *AdminService) Stats(ctx context.Context) (*models.AdminStats, error) {
	var resp struct {
		Stats models.AdminStats `json:"stats"`
	}
	if err := s.c.Get(ctx, "/admin/stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Stats, nil
}

func (s *AdminService) Users(ctx context.Context, p AdminListParams) (*models.UserList, error) {
	var resp models.UserList
	if err := s.c.Get(ctx, "/admin/users", p.values(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *AdminService) UpdateUserRole(ctx context.Context, userID string, role models.UserRole) error {
	body := models.RoleUpdateRequest{Role: role}
	return s.c.Put(ctx, "/admin/users/"+url.PathEscape(userID)+"/role", body, nil)
}

func (s *AdminService) DeleteUser(ctx context.Context, userID string) error {
	return s.c.Delete(ctx, "/admin/users/"+url.PathEscape(userID), nil)
}

func (s *AdminService) Products(ctx context.Context, p AdminListParams) (*models.ProductList, error) {
	var resp models.ProductList
	if err := s.c.Get(ctx, "/admin/products", p.values(), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *AdminService) UpdateProductStatus(ctx context.Context, productID string, status models.ProductStatus) error {
	body := models.ProductStatusRequest{Status: status}
	return s.c.Put(ctx, "/admin/products/"+url.PathEscape(productID)+"/status", body, nil)
}

func (s *AdminService) DeleteProduct(ctx context.Context, productID string) error {
	return s.c.Delete(ctx, "/admin/products/"+url.PathEscape(productID), nil)
}

func (s *AdminService) Sales(ctx context.Context, page, limit int) (*models.SaleList, error) {
	var resp models.SaleList
	q := utils.NormalizePagination(page, limit, 20).Apply(nil)
	if err := s.c.Get(ctx, "/admin/sales", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *AdminService) Disputes(ctx context.Context, page, limit int) (*models.DisputeList, error) {
	var resp models.DisputeList
	q := utils.NormalizePagination(page, limit, 20).Apply(nil)
	if err := s.c.Get(ctx, "/admin/disputes", q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *AdminService) ProcessDispute(ctx context.Context, purchaseID string) error {
	return s.c.Put(ctx, "/admin/disputes/"+url.PathEscape(purchaseID)+"/process", nil, nil)
}

func (s *AdminService) ResolveDispute(ctx context.Context, purchaseID string, req models.ResolveDisputeRequest) error {
	return s.c.Put(ctx, "/admin/disputes/"+url.PathEscape(purchaseID)+"/resolve", req, nil)
}
