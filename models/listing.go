package models

import "math"

// ArticleFilter holds exact-match filters. Empty fields do not filter.
type ArticleFilter struct {
	Name string
}

// SortField is one resolved key of a sort spec. Column is a whitelisted storage column.
type SortField struct {
	Column     string
	Descending bool
}

// ListingQuery is a validated, fully resolved listing request. Sort always ends with
// the id column so that ordering is total.
type ListingQuery struct {
	Filter ArticleFilter
	Sort   []SortField
	Page   int
	Limit  int
}

// Offset saturates at math.MaxInt when the page lies beyond any addressable row.
func (q ListingQuery) Offset() int {
	if q.Page < 1 || q.Limit < 1 {
		return 0
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return math.MaxInt
	}
	return (q.Page - 1) * q.Limit
}

// PagedResult is the listing envelope returned by GET /articles.
type PagedResult[T any] struct {
	Results      []T   `json:"results"`
	Page         int   `json:"page"`
	Limit        int   `json:"limit"`
	TotalPages   int   `json:"totalPages"`
	TotalResults int64 `json:"totalResults"`
}
