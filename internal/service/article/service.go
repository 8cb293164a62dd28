package article

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/telehealth-api/internal/model"
	"github.com/jwalitptl/telehealth-api/internal/repository"
	apperrors "github.com/jwalitptl/telehealth-api/pkg/errors"
)

var ErrArticleNotFound = apperrors.NotFound("Article not found")

type Service struct {
	repo repository.ArticleRepository
}

func NewService(repo repository.ArticleRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListPublished(ctx context.Context, filter model.ArticleFilter) ([]*model.HealthArticle, error) {
	articles, err := s.repo.ListPublished(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return articles, nil
}

func (s *Service) GetPublished(ctx context.Context, id uuid.UUID) (*model.HealthArticle, error) {
	article, err := s.repo.GetPublished(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, apperrors.Internal(err)
	}
	return article, nil
}

func (s *Service) ListAll(ctx context.Context) ([]*model.HealthArticle, error) {
	articles, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return articles, nil
}

func (s *Service) Create(ctx context.Context, authorID uuid.UUID, req *model.CreateArticleRequest) (*model.HealthArticle, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || strings.TrimSpace(req.Content) == "" {
		return nil, apperrors.BadRequest("Title and content are required")
	}

	article := &model.HealthArticle{
		Title:       title,
		Content:     req.Content,
		Category:    req.Category,
		AuthorID:    &authorID,
		IsPublished: req.IsPublished,
	}
	if err := s.repo.Create(ctx, article); err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to create article: %w", err))
	}

	log.Info().
		Str("article_id", article.ID.String()).
		Bool("published", article.IsPublished).
		Msg("health article created")
	return article, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateArticleRequest) (*model.HealthArticle, error) {
	article, err := s.repo.Update(ctx, id, req)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrArticleNotFound
		}
		return nil, apperrors.Internal(fmt.Errorf("failed to update article: %w", err))
	}
	return article, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrArticleNotFound
		}
		return apperrors.Internal(err)
	}
	log.Info().Str("article_id", id.String()).Msg("health article deleted")
	return nil
}
