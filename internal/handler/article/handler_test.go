package article

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/telehealth-api/internal/handler/handlertest"
	"github.com/jwalitptl/telehealth-api/internal/model"
	"github.com/jwalitptl/telehealth-api/internal/repository/memory"
	"github.com/jwalitptl/telehealth-api/internal/service/article"
)

func TestPublishedArticles(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	nutrition, sleep := "nutrition", "sleep"

	published := &model.HealthArticle{Title: "Eat greens", Content: "...", Category: &nutrition, IsPublished: true}
	other := &model.HealthArticle{Title: "Sleep well", Content: "...", Category: &sleep, IsPublished: true}
	draft := &model.HealthArticle{Title: "Draft", Content: "...", Category: &nutrition}
	for _, a := range []*model.HealthArticle{published, other, draft} {
		require.NoError(t, store.Articles().Create(ctx, a))
	}

	r := handlertest.Router(nil)
	NewHandler(article.NewService(store.Articles())).RegisterRoutes(r.Group("/api"), func(c *gin.Context) { c.Next() })

	w := handlertest.Do(r, http.MethodGet, "/api/health-articles", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var articles []model.HealthArticle
	handlertest.Decode(t, w, &articles)
	assert.Len(t, articles, 2)

	w = handlertest.Do(r, http.MethodGet, "/api/health-articles?category=nutrition", nil)
	require.Equal(t, http.StatusOK, w.Code)
	handlertest.Decode(t, w, &articles)
	require.Len(t, articles, 1)
	assert.Equal(t, published.ID, articles[0].ID)

	w = handlertest.Do(r, http.MethodGet, "/api/health-articles/"+published.ID.String(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = handlertest.Do(r, http.MethodGet, "/api/health-articles/"+draft.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Article not found", handlertest.Decode(t, w, nil).Message)
}
