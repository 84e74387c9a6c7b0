// internal/utils/pagination.go
package utils

import (
	"net/url"
	"strconv"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

type PaginationParams struct {
	Page  int
	Limit int
}

// NormalizePagination applies the same defaults the API uses: page below 1
// becomes 1, a limit outside 1..100 becomes the fallback.
func NormalizePagination(page, limit, fallback int) PaginationParams {
	if fallback < 1 || fallback > MaxLimit {
		fallback = DefaultLimit
	}
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 || limit > MaxLimit {
		limit = fallback
	}
	return PaginationParams{Page: page, Limit: limit}
}

// Apply writes page and limit into q.
func (p PaginationParams) Apply(q url.Values) url.Values {
	if q == nil {
		q = url.Values{}
	}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("limit", strconv.Itoa(p.Limit))
	return q
}
