package video

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/telehealth-api/internal/handler"
	"github.com/jwalitptl/telehealth-api/internal/middleware"
	"github.com/jwalitptl/telehealth-api/internal/model"
	"github.com/jwalitptl/telehealth-api/internal/service/video"
	apperrors "github.com/jwalitptl/telehealth-api/pkg/errors"
)

type Handler struct {
	service *video.Service
}

func NewHandler(service *video.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r gin.IRouter, authenticate gin.HandlerFunc) {
	v := r.Group("/video", authenticate, middleware.RequireRoles(model.RolePatient, model.RoleDoctor))
	{
		v.POST("/token", h.Token)
		v.POST("/end-call", h.EndCall)
	}
}

func bindSession(c *gin.Context) (uuid.UUID, bool) {
	var req model.VideoSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.RespondBindError(c, err)
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.AppointmentID)
	if err != nil {
		handler.RespondError(c, apperrors.BadRequest("Invalid appointment ID"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) Token(c *gin.Context) {
	id, ok := bindSession(c)
	if !ok {
		return
	}

	token, err := h.service.IssueToken(c.Request.Context(), id, handler.CurrentUser(c))
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(token))
}

func (h *Handler) EndCall(c *gin.Context) {
	id, ok := bindSession(c)
	if !ok {
		return
	}

	apt, err := h.service.EndCall(c.Request.Context(), id, handler.CurrentUser(c).ID)
	if err != nil {
		handler.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, handler.NewMessageResponse("Call ended successfully", apt))
}
