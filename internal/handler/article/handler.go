package article

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/telehealth-api/internal/handler"
	"github.com/jwalitptl/telehealth-api/internal/model"
	"github.com/jwalitptl/telehealth-api/internal/service/article"
)

// Handler serves the published articles to anyone.
type Handler struct {
	service *article.Service
}

func NewHandler(service *article.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r gin.IRouter, cache gin.HandlerFunc) {
	articles := r.Group("/health-articles", cache)
	{
		articles.GET("", h.ListArticles)
		articles.GET("/:id", h.GetArticle)
	}
}

func (h *Handler) ListArticles(c *gin.Context) {
	var filter model.ArticleFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	articles, err := h.service.ListPublished(c.Request.Context(), filter)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(articles))
}

func (h *Handler) GetArticle(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id", "article")
	if !ok {
		return
	}

	a, err := h.service.GetPublished(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(a))
}
