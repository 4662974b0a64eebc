package services

import (
	"context"
	"log/slog"
	"strings"

	"article-api/models"
	"article-api/repositories"
)

type ArticleService interface {
	CreateArticle(ctx context.Context, req models.CreateArticleRequest) (*models.Article, error)
	GetArticle(ctx context.Context, id string) (*models.Article, error)
	GetArticles(ctx context.Context, filter models.ArticleFilter, sortBy string, page, limit int) (*models.PagedResult[models.Article], error)
	UpdateArticle(ctx context.Context, id string, patch models.ArticlePatch) (*models.Article, error)
	DeleteArticle(ctx context.Context, id string) (*models.Article, error)
}

type articleService struct {
	articleRepo repositories.ArticleRepository
	planner     *ListingPlanner
	logger      *slog.Logger
}

func NewArticleService(articleRepo repositories.ArticleRepository, planner *ListingPlanner, logger *slog.Logger) ArticleService {
	return &articleService{
		articleRepo: articleRepo,
		planner:     planner,
		logger:      logger.With("service", "article"),
	}
}

// CreateArticle stores a new article. Names are not unique.
func (s *articleService) CreateArticle(ctx context.Context, req models.CreateArticleRequest) (*models.Article, error) {
	name, content := strings.TrimSpace(req.Name), strings.TrimSpace(req.Content)
	if name == "" {
		return nil, models.NewInvalidArgument("name is required")
	}
	if content == "" {
		return nil, models.NewInvalidArgument("content is required")
	}

	article := &models.Article{
		Name:    name,
		Content: content,
		Image:   strings.TrimSpace(req.Image),
	}
	if err := s.articleRepo.Create(ctx, article); err != nil {
		return nil, err
	}

	s.logger.Info("article created", "article_id", article.ID)
	return article, nil
}

func (s *articleService) GetArticle(ctx context.Context, id string) (*models.Article, error) {
	return s.articleRepo.GetByID(ctx, id)
}

func (s *articleService) GetArticles(ctx context.Context, filter models.ArticleFilter, sortBy string, page, limit int) (*models.PagedResult[models.Article], error) {
	return s.planner.Plan(ctx, filter, sortBy, page, limit)
}

// UpdateArticle overwrites only the fields present in patch.
func (s *articleService) UpdateArticle(ctx context.Context, id string, patch models.ArticlePatch) (*models.Article, error) {
	patch, err := normalizePatch(patch)
	if err != nil {
		return nil, err
	}

	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return article, nil
	}

	if err := s.articleRepo.Update(ctx, article, patch); err != nil {
		return nil, err
	}

	s.logger.Info("article updated", "article_id", article.ID)
	return article, nil
}

// DeleteArticle hard deletes the article and returns what was removed.
func (s *articleService) DeleteArticle(ctx context.Context, id string) (*models.Article, error) {
	article, err := s.articleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.articleRepo.Delete(ctx, id); err != nil {
		return nil, err
	}

	s.logger.Info("article deleted", "article_id", article.ID)
	return article, nil
}

func normalizePatch(p models.ArticlePatch) (models.ArticlePatch, error) {
	if p.Name != nil {
		v := strings.TrimSpace(*p.Name)
		if v == "" {
			return p, models.NewInvalidArgument("name must not be empty")
		}
		p.Name = &v
	}
	if p.Content != nil {
		v := strings.TrimSpace(*p.Content)
		if v == "" {
			return p, models.NewInvalidArgument("content must not be empty")
		}
		p.Content = &v
	}
	if p.Image != nil {
		v := strings.TrimSpace(*p.Image)
		p.Image = &v
	}
	return p, nil
}
