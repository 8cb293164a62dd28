package middleware

import (
	"context"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/telehealth-api/internal/handler"
	"github.com/jwalitptl/telehealth-api/internal/model"
	apperrors "github.com/jwalitptl/telehealth-api/pkg/errors"
)

var (
	ErrTokenRequired   = apperrors.Unauthorized("Access token required")
	ErrMalformedHeader = apperrors.Unauthorized("Invalid authorization header")
	ErrAccessDenied    = apperrors.Forbidden("Access denied")
	ErrPendingApproval = apperrors.PendingApproval("Your account is pending admin approval")
)

// Authenticator resolves a bearer token to a fresh, active principal.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.User, error)
}

type AuthMiddleware struct {
	auth Authenticator
}

func NewAuthMiddleware(auth Authenticator) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// Authenticate verifies the bearer token and stores the principal in the context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			handler.RespondError(c, ErrTokenRequired)
			return
		}

		scheme, token, ok := strings.Cut(authHeader, " ")
		token = strings.TrimSpace(token)
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			handler.RespondError(c, ErrMalformedHeader)
			return
		}

		user, err := m.auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			handler.RespondError(c, err)
			return
		}

		handler.SetUser(c, user)
		c.Next()
	}
}

// RequireRoles admits principals whose role is one of roles. Doctors must
// also be approved.
func RequireRoles(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := handler.CurrentUser(c)
		if user == nil {
			handler.RespondError(c, ErrTokenRequired)
			return
		}
		if !slices.Contains(roles, user.Role) {
			handler.RespondError(c, ErrAccessDenied)
			return
		}
		if user.Role == model.RoleDoctor && !user.IsApproved {
			handler.RespondError(c, ErrPendingApproval)
			return
		}
		c.Next()
	}
}
