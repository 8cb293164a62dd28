package model

import (
	"github.com/google/uuid"
)

type HealthArticle struct {
	Base
	Title           string     `db:"title" json:"title"`
	Content         string     `db:"content" json:"content"`
	Category        *string    `db:"category" json:"category,omitempty"`
	AuthorID        *uuid.UUID `db:"author_id" json:"author_id,omitempty"`
	IsPublished     bool       `db:"is_published" json:"is_published"`
	AuthorFirstName *string    `db:"first_name" json:"first_name,omitempty"`
	AuthorLastName  *string    `db:"last_name" json:"last_name,omitempty"`
}

type ArticleFilter struct {
	Category string `form:"category" binding:"omitempty,max=100"`
}

type CreateArticleRequest struct {
	Title       string  `json:"title" binding:"required,max=300"`
	Content     string  `json:"content" binding:"required"`
	Category    *string `json:"category" binding:"omitempty,max=100"`
	IsPublished bool    `json:"is_published"`
}

type UpdateArticleRequest struct {
	Title       *string `json:"title" binding:"omitempty,min=1,max=300"`
	Content     *string `json:"content" binding:"omitempty,min=1"`
	Category    *string `json:"category" binding:"omitempty,max=100"`
	IsPublished *bool   `json:"is_published"`
}
