package admin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/telehealth-api/internal/handler"
	"github.com/jwalitptl/telehealth-api/internal/middleware"
	"github.com/jwalitptl/telehealth-api/internal/model"
	"github.com/jwalitptl/telehealth-api/internal/service/admin"
	"github.com/jwalitptl/telehealth-api/internal/service/article"
)

type Handler struct {
	service  *admin.Service
	articles *article.Service
}

func NewHandler(service *admin.Service, articles *article.Service) *Handler {
	return &Handler{service: service, articles: articles}
}

func (h *Handler) RegisterRoutes(r gin.IRouter, authenticate gin.HandlerFunc) {
	admins := r.Group("/admin", authenticate, middleware.RequireRoles(model.RoleAdmin))
	{
		admins.GET("/stats", h.GetStats)
		admins.GET("/users", h.ListUsers)
		admins.GET("/doctors/pending", h.ListPendingDoctors)
		admins.POST("/doctors/:id/approve", h.ApproveDoctor)
		admins.POST("/users/:id/deactivate", h.DeactivateUser)
		admins.POST("/users/:id/activate", h.ActivateUser)

		articles := admins.Group("/health-articles")
		articles.GET("", h.ListArticles)
		articles.POST("", h.CreateArticle)
		articles.PUT("/:id", h.UpdateArticle)
		articles.DELETE("/:id", h.DeleteArticle)
	}
}

func (h *Handler) GetStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(stats))
}

func (h *Handler) ListUsers(c *gin.Context) {
	var filter model.UserFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	users, err := h.service.Users(c.Request.Context(), filter)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(users))
}

func (h *Handler) ListPendingDoctors(c *gin.Context) {
	doctors, err := h.service.PendingDoctors(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(doctors))
}

func (h *Handler) ApproveDoctor(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id", "doctor")
	if !ok {
		return
	}

	user, err := h.service.ApproveDoctor(c.Request.Context(), id)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewMessageResponse("Doctor approved successfully", user))
}

func (h *Handler) DeactivateUser(c *gin.Context) {
	h.setActive(c, false, "User deactivated successfully")
}

func (h *Handler) ActivateUser(c *gin.Context) {
	h.setActive(c, true, "User activated successfully")
}

func (h *Handler) setActive(c *gin.Context, active bool, message string) {
	id, ok := handler.ParamUUID(c, "id", "user")
	if !ok {
		return
	}

	user, err := h.service.SetActive(c.Request.Context(), id, active)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewMessageResponse(message, user))
}

func (h *Handler) ListArticles(c *gin.Context) {
	articles, err := h.articles.ListAll(c.Request.Context())
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(articles))
}

func (h *Handler) CreateArticle(c *gin.Context) {
	var req model.CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	a, err := h.articles.Create(c.Request.Context(), handler.CurrentUser(c).ID, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewMessageResponse("Health article created successfully", a))
}

func (h *Handler) UpdateArticle(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id", "article")
	if !ok {
		return
	}

	var req model.UpdateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return
	}

	a, err := h.articles.Update(c.Request.Context(), id, &req)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewMessageResponse("Health article updated successfully", a))
}

func (h *Handler) DeleteArticle(c *gin.Context) {
	id, ok := handler.ParamUUID(c, "id", "article")
	if !ok {
		return
	}

	if err := h.articles.Delete(c.Request.Context(), id); err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewMessageResponse("Health article deleted successfully", nil))
}
