package repositories

import (
	"context"
	"errors"

	"article-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ArticleRepository owns persisted articles. Every method touches at most one row for
// writes; store failures come back as models.ErrorUpstream and missing rows as
// models.ErrorNotFound.
type ArticleRepository interface {
	Create(ctx context.Context, article *models.Article) error
	GetByID(ctx context.Context, id string) (*models.Article, error)
	Query(ctx context.Context, q models.ListingQuery) ([]models.Article, int64, error)
	Update(ctx context.Context, article *models.Article, patch models.ArticlePatch) error
	Delete(ctx context.Context, id string) error
}

type articleRepository struct {
	db *gorm.DB
}

func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

func (r *articleRepository) Create(ctx context.Context, article *models.Article) error {
	if err := r.db.WithContext(ctx).Create(article).Error; err != nil {
		return models.NewUpstream("create article", err)
	}
	return nil
}

func (r *articleRepository) GetByID(ctx context.Context, id string) (*models.Article, error) {
	var article models.Article
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&article).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFound("article", id)
	}
	if err != nil {
		return nil, models.NewUpstream("get article", err)
	}
	return &article, nil
}

func (r *articleRepository) Query(ctx context.Context, q models.ListingQuery) ([]models.Article, int64, error) {
	var articles []models.Article
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Article{})
	if q.Filter.Name != "" {
		query = query.Where("name = ?", q.Filter.Name)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, models.NewUpstream("count articles", err)
	}
	if total == 0 {
		return []models.Article{}, 0, nil
	}

	// columns come from the planner whitelist
	for _, s := range q.Sort {
		query = query.Order(clause.OrderByColumn{Column: clause.Column{Name: s.Column}, Desc: s.Descending})
	}

	err := query.Offset(q.Offset()).Limit(q.Limit).Find(&articles).Error
	if err != nil {
		return nil, 0, models.NewUpstream("list articles", err)
	}
	return articles, total, nil
}

// Update writes only the patched columns. Concurrent updates to the same row are last
// write wins.
func (r *articleRepository) Update(ctx context.Context, article *models.Article, patch models.ArticlePatch) error {
	cols := patch.Columns()
	if len(cols) == 0 {
		return nil
	}

	res := r.db.WithContext(ctx).Model(article).Updates(cols)
	if res.Error != nil {
		return models.NewUpstream("update article", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFound("article", article.ID)
	}
	patch.Apply(article)
	return nil
}

func (r *articleRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Article{})
	if res.Error != nil {
		return models.NewUpstream("delete article", res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFound("article", id)
	}
	return nil
}
