package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/telehealth-api/internal/model"
	"github.com/jwalitptl/telehealth-api/internal/repository"
)

const articleColumns = `ha.id, ha.title, ha.content, ha.category, ha.author_id, ha.is_published,
	ha.created_at, ha.updated_at, u.first_name, u.last_name`

type articleRepository struct {
	BaseRepository
}

func NewArticleRepository(db *sqlx.DB) repository.ArticleRepository {
	return &articleRepository{NewBaseRepository(db)}
}

func (r *articleRepository) ListPublished(ctx context.Context, filter model.ArticleFilter) ([]*model.HealthArticle, error) {
	query := `
		SELECT ` + articleColumns + `
		FROM health_articles ha
		LEFT JOIN users u ON ha.author_id = u.id
		WHERE ha.is_published = TRUE
	`
	args := []interface{}{}
	if filter.Category != "" {
		query += " AND ha.category = $1"
		args = append(args, filter.Category)
	}
	query += " ORDER BY ha.created_at DESC"

	articles := []*model.HealthArticle{}
	if err := r.db.SelectContext(ctx, &articles, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	return articles, nil
}

func (r *articleRepository) GetPublished(ctx context.Context, id uuid.UUID) (*model.HealthArticle, error) {
	var article model.HealthArticle
	query := `
		SELECT ` + articleColumns + `
		FROM health_articles ha
		LEFT JOIN users u ON ha.author_id = u.id
		WHERE ha.id = $1 AND ha.is_published = TRUE
	`
	if err := r.db.GetContext(ctx, &article, query, id); err != nil {
		return nil, fmt.Errorf("failed to get article: %w", translate(err))
	}
	return &article, nil
}

func (r *articleRepository) ListAll(ctx context.Context) ([]*model.HealthArticle, error) {
	query := `
		SELECT ` + articleColumns + `
		FROM health_articles ha
		LEFT JOIN users u ON ha.author_id = u.id
		ORDER BY ha.created_at DESC
	`
	articles := []*model.HealthArticle{}
	if err := r.db.SelectContext(ctx, &articles, query); err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	return articles, nil
}

func (r *articleRepository) Create(ctx context.Context, article *model.HealthArticle) error {
	article.Touch(time.Now())

	query := `
		INSERT INTO health_articles (id, title, content, category, author_id, is_published, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := r.db.ExecContext(ctx, query,
		article.ID,
		article.Title,
		article.Content,
		article.Category,
		article.AuthorID,
		article.IsPublished,
		article.CreatedAt,
		article.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create article: %w", translate(err))
	}
	return nil
}

func (r *articleRepository) Update(ctx context.Context, id uuid.UUID, req *model.UpdateArticleRequest) (*model.HealthArticle, error) {
	query := `
		UPDATE health_articles
		SET title = COALESCE($1, title),
			content = COALESCE($2, content),
			category = COALESCE($3, category),
			is_published = COALESCE($4, is_published),
			updated_at = NOW()
		WHERE id = $5
	`
	result, err := r.db.ExecContext(ctx, query, req.Title, req.Content, req.Category, req.IsPublished, id)
	if err != nil {
		return nil, fmt.Errorf("failed to update article: %w", err)
	}
	if err := expectRows(result); err != nil {
		return nil, err
	}

	var article model.HealthArticle
	if err := r.db.GetContext(ctx, &article, `
		SELECT `+articleColumns+`
		FROM health_articles ha
		LEFT JOIN users u ON ha.author_id = u.id
		WHERE ha.id = $1
	`, id); err != nil {
		return nil, fmt.Errorf("failed to reload article: %w", translate(err))
	}
	return &article, nil
}

func (r *articleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM health_articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete article: %w", err)
	}
	return expectRows(result)
}
