package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/telehealth-api/internal/model"
	apperrors "github.com/jwalitptl/telehealth-api/pkg/errors"
)

// Context keys shared by middleware and handlers.
const (
	ContextRequestID = "request_id"
	ContextUser      = "user"
)

func SetUser(c *gin.Context, user *model.User) {
	c.Set(ContextUser, user)
}

// CurrentUser returns the authenticated principal, or nil on public routes.
func CurrentUser(c *gin.Context) *model.User {
	v, ok := c.Get(ContextUser)
	if !ok {
		return nil
	}
	user, _ := v.(*model.User)
	return user
}

// ParamUUID parses a path parameter, answering 400 when it is not a UUID.
func ParamUUID(c *gin.Context, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, apperrors.BadRequest("Invalid "+label+" ID"))
		return uuid.Nil, false
	}
	return id, true
}
