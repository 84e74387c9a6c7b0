// internal/review/review.go
package review

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/vibing/vibing-client/internal/models"
	"github.com/vibing/vibing-client/internal/utils"
)

type ReviewAPI interface {
	ForProduct(ctx context.Context, productID string, page, limit int) (*models.ReviewList, error)
	Mine(ctx context.Context, productID string) (*models.Review, error)
	Create(ctx context.Context, form models.ReviewForm) (*models.Review, error)
	Update(ctx context.Context, reviewID string, form models.ReviewForm) (*models.Review, error)
	Delete(ctx context.Context, reviewID string) error
	CanReview(ctx context.Context, productID string) (bool, error)
	RatingDistribution(ctx context.Context, productID string) (models.RatingDistribution, error)
}

// Reviews validates review input locally before it reaches the API.
type Reviews struct {
	api ReviewAPI
	log *logrus.Entry
}

func New(reviewAPI ReviewAPI) *Reviews {
	return &Reviews{api: reviewAPI, log: logrus.WithField("component", "review")}
}

func form(productID string, rating int, comment string) (models.ReviewForm, error) {
	f := models.ReviewForm{
		ProductID: productID,
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
	}
	if err := utils.ValidateStruct(f); err != nil {
		return models.ReviewForm{}, err
	}
	return f, nil
}

// Submit posts a new review of productID.
func (r *Reviews) Submit(ctx context.Context, productID string, rating int, comment string) (*models.Review, error) {
	f, err := form(productID, rating, comment)
	if err != nil {
		return nil, err
	}
	created, err := r.api.Create(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to submit review: %w", err)
	}
	r.log.WithFields(logrus.Fields{"product_id": productID, "rating": rating}).Info("Review submitted")
	return created, nil
}

func (r *Reviews) Update(ctx context.Context, reviewID string, rating int, comment string) (*models.Review, error) {
	f, err := form("", rating, comment)
	if err != nil {
		return nil, err
	}
	updated, err := r.api.Update(ctx, reviewID, f)
	if err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}
	return updated, nil
}

func (r *Reviews) Delete(ctx context.Context, reviewID string) error {
	if err := r.api.Delete(ctx, reviewID); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return nil
}

func (r *Reviews) List(ctx context.Context, productID string, page int) (*models.ReviewList, error) {
	return r.api.ForProduct(ctx, productID, page, 0)
}

// Mine is the signed-in user's review of productID, nil when there is none.
func (r *Reviews) Mine(ctx context.Context, productID string) (*models.Review, error) {
	return r.api.Mine(ctx, productID)
}

func (r *Reviews) CanReview(ctx context.Context, productID string) (bool, error) {
	return r.api.CanReview(ctx, productID)
}

// Summary is the rating distribution with its derived totals.
type Summary struct {
	Distribution models.RatingDistribution
	Total        int64
	Average      float64
}

func (r *Reviews) Distribution(ctx context.Context, productID string) (*Summary, error) {
	dist, err := r.api.RatingDistribution(ctx, productID)
	if err != nil {
		return nil, err
	}
	if dist == nil {
		dist = models.RatingDistribution{}
	}
	for star := 1; star <= 5; star++ {
		if _, ok := dist[star]; !ok {
			dist[star] = 0
		}
	}
	return &Summary{Distribution: dist, Total: dist.Total(), Average: dist.Average()}, nil
}
