// internal/models/review.go
package models

import "time"

type ReviewAuthor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Review struct {
	ID        string        `json:"id"`
	ProductID string        `json:"productId"`
	UserID    string        `json:"userId"`
	Rating    int           `json:"rating"`
	Comment   string        `json:"comment"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
	User      *ReviewAuthor `json:"user,omitempty"`
}

type ReviewList struct {
	Reviews []Review `json:"reviews"`
	Total   int      `json:"total"`
	Page    int      `json:"page"`
	Limit   int      `json:"limit"`
	HasMore bool     `json:"hasMore"`
}

type ReviewForm struct {
	ProductID string `json:"productId,omitempty"`
	Rating    int    `json:"rating" validate:"required,min=1,max=5"`
	Comment   string `json:"comment" validate:"required,notblank,max=1000"`
}

// RatingDistribution maps star rating (1..5) to review count.
type RatingDistribution map[int]int64

func (d RatingDistribution) Total() int64 {
	var total int64
	for _, n := range d {
		total += n
	}
	return total
}

func (d RatingDistribution) Average() float64 {
	total := d.Total()
	if total == 0 {
		return 0
	}
	var sum int64
	for rating, n := range d {
		sum += int64(rating) * n
	}
	return float64(sum) / float64(total)
}
