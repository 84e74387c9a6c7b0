// internal/api/products.go
package api

import (
	"context"
	"net/url"
	"strconv"

	"github.com/vibing/vibing-client/internal/models"
)

type ProductService struct {
	c *Client
}

// EncodeProductQuery builds the GET /products query string. The "all"
// category and zero values are left out.
func EncodeProductQuery(q models.ProductQuery) url.Values {
	v := url.Values{}
	if q.Category != "" && q.Category != "all" {
		v.Set("category", q.Category)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.MinPrice != nil {
		v.Set("minPrice", strconv.FormatFloat(*q.MinPrice, 'f', -1, 64))
	}
	if q.MaxPrice != nil {
		v.Set("maxPrice", strconv.FormatFloat(*q.MaxPrice, 'f', -1, 64))
	}
	if q.SortBy != "" {
		v.Set("sortBy", q.SortBy)
	}
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	return v
}

func (s *ProductService) List(ctx context.Context, q models.ProductQuery) (*models.ProductList, error) {
	var resp models.ProductList
	if err := s.c.Get(ctx, "/products", EncodeProductQuery(q), &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := s.c.Get(ctx, "/products/"+url.PathEscape(id), nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductService) Create(ctx context.Context, form models.ProductForm) (*models.Product, error) {
	var product models.Product
	if err := s.c.Post(ctx, "/products", form, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductService) Update(ctx context.Context, id string, form models.ProductForm) (*models.Product, error) {
	var product models.Product
	if err := s.c.Put(ctx, "/products/"+url.PathEscape(id), form, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	return s.c.Delete(ctx, "/products/"+url.PathEscape(id), nil)
}

func (s *ProductService) Categories(ctx context.Context) ([]models.Category, error) {
	var resp struct {
		Categories []models.Category `json:"categories"`
	}
	if err := s.c.Get(ctx, "/products/categories", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Categories, nil
}

func (s *ProductService) ToggleLike(ctx context.Context, id string) (*models.LikeResponse, error) {
	var resp models.LikeResponse
	if err := s.c.Post(ctx, "/products/"+url.PathEscape(id)+"/like", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
