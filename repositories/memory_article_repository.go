package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"article-api/models"

	"github.com/google/uuid"
)

// memoryArticleRepository keeps articles in process memory. It backs the "memory" store
// and the end-to-end tests.
type memoryArticleRepository struct {
	mu       sync.RWMutex
	articles map[string]models.Article
	now      func() time.Time
}

func NewMemoryArticleRepository() ArticleRepository {
	return &memoryArticleRepository{
		articles: make(map[string]models.Article),
		now:      time.Now,
	}
}

func (r *memoryArticleRepository) Create(_ context.Context, article *models.Article) error {
	if article.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return models.NewUpstream("create article", err)
		}
		article.ID = id.String()
	}

	now := r.now()
	article.CreatedAt = now
	article.UpdatedAt = now

	r.mu.Lock()
	defer r.mu.Unlock()
	r.articles[article.ID] = *article
	return nil
}

func (r *memoryArticleRepository) GetByID(_ context.Context, id string) (*models.Article, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	article, ok := r.articles[id]
	if !ok {
		return nil, models.NewNotFound("article", id)
	}
	return &article, nil
}

func (r *memoryArticleRepository) Query(_ context.Context, q models.ListingQuery) ([]models.Article, int64, error) {
	r.mu.RLock()
	matched := make([]models.Article, 0, len(r.articles))
	for _, a := range r.articles {
		if q.Filter.Name != "" && a.Name != q.Filter.Name {
			continue
		}
		matched = append(matched, a)
	}
	r.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return lessArticle(matched[i], matched[j], q.Sort)
	})

	total := int64(len(matched))
	start := q.Offset()
	if start < 0 || start >= len(matched) {
		return []models.Article{}, total, nil
	}
	end := start + q.Limit
	if end > len(matched) || end < start {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (r *memoryArticleRepository) Update(_ context.Context, article *models.Article, patch models.ArticlePatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.articles[article.ID]
	if !ok {
		return models.NewNotFound("article", article.ID)
	}
	if patch.IsEmpty() {
		*article = stored
		return nil
	}

	patch.Apply(&stored)
	stored.UpdatedAt = r.now()
	r.articles[article.ID] = stored
	*article = stored
	return nil
}

func (r *memoryArticleRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.articles[id]; !ok {
		return models.NewNotFound("article", id)
	}
	delete(r.articles, id)
	return nil
}

func lessArticle(a, b models.Article, keys []models.SortField) bool {
	for _, k := range keys {
		c := compareColumn(a, b, k.Column)
		if c == 0 {
			continue
		}
		if k.Descending {
			return c > 0
		}
		return c < 0
	}
	return false
}

func compareColumn(a, b models.Article, column string) int {
	switch column {
	case "name":
		return strings.Compare(a.Name, b.Name)
	case "content":
		return strings.Compare(a.Content, b.Content)
	case "image":
		return strings.Compare(a.Image, b.Image)
	case "created_at":
		return a.CreatedAt.Compare(b.CreatedAt)
	case "updated_at":
		return a.UpdatedAt.Compare(b.UpdatedAt)
	default:
		return strings.Compare(a.ID, b.ID)
	}
}
