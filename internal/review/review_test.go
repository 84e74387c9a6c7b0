// internal/review/review_test.go
package review_test

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vibing/vibing-client/internal/models"
	"github.com/vibing/vibing-client/internal/review"
	"github.com/vibing/vibing-client/internal/testutil"
	"github.com/vibing/vibing-client/internal/utils"
)

func newReviews(t *testing.T) (*review.Reviews, *int32) {
	t.Helper()
	var calls int32
	fake := testutil.NewFakeAPI(t, func(r *gin.RouterGroup) {
		r.Use(func(c *gin.Context) {
			atomic.AddInt32(&calls, 1)
			c.Next()
		})
		r.POST("/reviews", func(c *gin.Context) {
			var f models.ReviewForm
			_ = c.ShouldBindJSON(&f)
			c.JSON(http.StatusCreated, gin.H{"id": "rev-1", "productId": f.ProductID, "rating": f.Rating, "comment": f.Comment})
		})
		r.GET("/reviews/user/product/:id", func(c *gin.Context) {
			testutil.ErrorJSON(c, http.StatusNotFound, "NOT_FOUND", "Review not found")
		})
		r.GET("/reviews/product/:id/rating-distribution", func(c *gin.Context) {
			if c.Param("id") == "prod-unrated" {
				c.Data(http.StatusOK, "application/json", []byte("null"))
				return
			}
			c.JSON(http.StatusOK, gin.H{"5": 3, "4": 1})
		})
	})
	return review.New(fake.Client("token").Reviews), &calls
}

func TestSubmitRejectedBeforeNetwork(t *testing.T) {
	r, calls := newReviews(t)
	ctx := context.Background()

	_, err := r.Submit(ctx, "prod-1", 0, "Solid library")
	assert.True(t, utils.IsValidationError(err))

	_, err = r.Submit(ctx, "prod-1", 6, "Solid library")
	assert.True(t, utils.IsValidationError(err))

	_, err = r.Submit(ctx, "prod-1", 4, "   ")
	assert.True(t, utils.IsValidationError(err))

	_, err = r.Submit(ctx, "prod-1", 4, strings.Repeat("x", 1001))
	assert.True(t, utils.IsValidationError(err))

	_, err = r.Update(ctx, "rev-1", 0, "fine")
	assert.True(t, utils.IsValidationError(err))

	assert.EqualValues(t, 0, atomic.LoadInt32(calls))
}

func TestSubmitTrimsComment(t *testing.T) {
	r, _ := newReviews(t)
	created, err := r.Submit(context.Background(), "prod-1", 5, "  Great CLI tooling  ")
	require.NoError(t, err)
	assert.Equal(t, "Great CLI tooling", created.Comment)
	assert.Equal(t, "prod-1", created.ProductID)
}

func TestMineNotFoundIsNil(t *testing.T) {
	r, _ := newReviews(t)
	mine, err := r.Mine(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.Nil(t, mine)
}

func TestDistribution(t *testing.T) {
	r, _ := newReviews(t)
	sum, err := r.Distribution(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.Equal(t, int64(4), sum.Total)
	assert.InDelta(t, 4.75, sum.Average, 0.001)
	assert.Len(t, sum.Distribution, 5)
	assert.Equal(t, int64(0), sum.Distribution[1])
}

func TestDistributionNullBody(t *testing.T) {
	r, _ := newReviews(t)
	sum, err := r.Distribution(context.Background(), "prod-unrated")
	require.NoError(t, err)
	assert.Equal(t, int64(0), sum.Total)
	assert.Equal(t, float64(0), sum.Average)
	assert.Len(t, sum.Distribution, 5)
}
