// internal/api/reviews.go
package api

import (
	"context"
	"net/url"

	"github.com/vibing/vibing-client/internal/models"
	"github.com/vibing/vibing-client/internal/utils"
)

type ReviewService struct {
	c *Client
}

func (s *ReviewService) ForProduct(ctx context.Context, productID string, page, limit int) (*models.ReviewList, error) {
	var resp models.ReviewList
	q := utils.NormalizePagination(page, limit, 10).Apply(nil)
	if err := s.c.Get(ctx, "/reviews/product/"+url.PathEscape(productID), q, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Mine returns the current user's review of productID, or nil if there is none.
func (s *ReviewService) Mine(ctx context.Context, productID string) (*models.Review, error) {
	var review models.Review
	if err := s.c.Get(ctx, "/reviews/user/product/"+url.PathEscape(productID), nil, &review); err != nil {
		if IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &review, nil
}

func (s *ReviewService) Create(ctx context.Context, form models.ReviewForm) (*models.Review, error) {
	var review models.Review
	if err := s.c.Post(ctx, "/reviews", form, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

func (s *ReviewService) Update(ctx context.Context, reviewID string, form models.ReviewForm) (*models.Review, error) {
	var review models.Review
	if err := s.c.Put(ctx, "/reviews/"+url.PathEscape(reviewID), form, &review); err != nil {
		return nil, err
	}
	return &review, nil
}

func (s *ReviewService) Delete(ctx context.Context, reviewID string) error {
	return s.c.Delete(ctx, "/reviews/"+url.PathEscape(reviewID), nil)
}

func (s *ReviewService) CanReview(ctx context.Context, productID string) (bool, error) {
	var resp struct {
		CanReview bool `json:"canReview"`
	}
	if err := s.c.Get(ctx, "/reviews/can-review/"+url.PathEscape(productID), nil, &resp); err != nil {
		return false, err
	}
	return resp.CanReview, nil
}

func (s *ReviewService) RatingDistribution(ctx context.Context, productID string) (models.RatingDistribution, error) {
	dist := models.RatingDistribution{}
	if err := s.c.Get(ctx, "/reviews/product/"+url.PathEscape(productID)+"/rating-distribution", nil, &dist); err != nil {
		return nil, err
	}
	if dist == nil {
		dist = models.RatingDistribution{}
	}
	return dist, nil
}
