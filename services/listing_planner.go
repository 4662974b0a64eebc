package services

import (
	"context"
	"strconv"
	"strings"

	"article-api/models"
	"article-api/repositories"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// sortColumns maps accepted sortBy keys to storage columns.
var sortColumns = map[string]string{
	"id":         "id",
	"_id":        "id",
	"name":       "name",
	"content":    "content",
	"image":      "image",
	"createdAt":  "created_at",
	"created_at": "created_at",
	"updatedAt":  "updated_at",
	"updated_at": "updated_at",
}

var defaultSort = []models.SortField{{Column: "created_at"}, {Column: "id"}}

// ListingPlanner turns a listing request into a deterministic paged result.
type ListingPlanner struct {
	articleRepo  repositories.ArticleRepository
	defaultLimit int
	maxLimit     int
}

// NewListingPlanner creates a planner. A maxLimit of 0 disables the page size ceiling.
func NewListingPlanner(articleRepo repositories.ArticleRepository, defaultLimit, maxLimit int) *ListingPlanner {
	if defaultLimit < 1 {
		defaultLimit = DefaultLimit
	}
	return &ListingPlanner{
		articleRepo:  articleRepo,
		defaultLimit: defaultLimit,
		maxLimit:     maxLimit,
	}
}

// ParsePaging reads raw page and limit query values. Absent values take the defaults.
func (p *ListingPlanner) ParsePaging(page, limit string) (int, int, error) {
	pageN, limitN := DefaultPage, p.defaultLimit

	if page != "" {
		n, err := strconv.Atoi(page)
		if err != nil {
			return 0, 0, models.NewInvalidArgument("page must be an integer")
		}
		pageN = n
	}
	if limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil {
			return 0, 0, models.NewInvalidArgument("limit must be an integer")
		}
		limitN = n
	}
	return pageN, limitN, nil
}

// BuildQuery validates the request and resolves the sort spec. The resulting sort always
// ends with the id column.
func (p *ListingPlanner) BuildQuery(filter models.ArticleFilter, sortBy string, page, limit int) (models.ListingQuery, error) {
	if page < 1 {
		return models.ListingQuery{}, models.NewInvalidArgument("page must be at least 1")
	}
	if limit < 1 {
		return models.ListingQuery{}, models.NewInvalidArgument("limit must be at least 1")
	}
	if p.maxLimit > 0 && limit > p.maxLimit {
		return models.ListingQuery{}, models.NewInvalidArgument("limit must not exceed %d", p.maxLimit)
	}

	sort, err := parseSort(sortBy)
	if err != nil {
		return models.ListingQuery{}, err
	}

	return models.ListingQuery{
		Filter: filter,
		Sort:   sort,
		Page:   page,
		Limit:  limit,
	}, nil
}

// Plan runs the listing: filter, sort with id tiebreak, count, slice, page count.
func (p *ListingPlanner) Plan(ctx context.Context, filter models.ArticleFilter, sortBy string, page, limit int) (*models.PagedResult[models.Article], error) {
	q, err := p.BuildQuery(filter, sortBy, page, limit)
	if err != nil {
		return nil, err
	}

	items, total, err := p.articleRepo.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []models.Article{}
	}

	return &models.PagedResult[models.Article]{
		Results:      items,
		Page:         q.Page,
		Limit:        q.Limit,
		TotalPages:   TotalPages(total, q.Limit),
		TotalResults: total,
	}, nil
}

// TotalPages is ceil(total / limit), and 0 for an empty set.
func TotalPages(total int64, limit int) int {
	if total <= 0 {
		return 0
	}
	return int((total + int64(limit) - 1) / int64(limit))
}

// parseSort reads "field:dir[,field:dir...]". A bare field sorts ascending.
func parseSort(spec string) ([]models.SortField, error) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return append([]models.SortField(nil), defaultSort...), nil
	}

	var fields []models.SortField
	seen := map[string]bool{}
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return nil, models.NewInvalidArgument("sortBy has an empty entry")
		}

		key, dir, hasDir := strings.Cut(part, ":")
		column, ok := sortColumns[key]
		if !ok {
			return nil, models.NewInvalidArgument("cannot sort by %q", key)
		}

		desc := false
		if hasDir {
			switch strings.ToLower(dir) {
			case "asc":
			case "desc":
				desc = true
			default:
				return nil, models.NewInvalidArgument("sort direction must be asc or desc, got %q", dir)
			}
		}

		if seen[column] {
			continue
		}
		seen[column] = true
		fields = append(fields, models.SortField{Column: column, Descending: desc})
	}

	if !seen["id"] {
		fields = append(fields, models.SortField{Column: "id"})
	}
	return fields, nil
}
