package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/telehealth-api/internal/handler"
	apperrors "github.com/jwalitptl/telehealth-api/pkg/errors"
)

// ErrorHandler renders errors attached with c.Error when the handler did
// not write a response itself.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		requestID := c.GetString(handler.ContextRequestID)
		for _, e := range c.Errors {
			log.Debug().
				Err(e.Err).
				Str("request_id", requestID).
				Str("path", c.Request.URL.Path).
				Str("method", c.Request.Method).
				Msg("request error")
		}

		if c.Writer.Written() {
			return
		}
		handler.RespondError(c, c.Errors.Last().Err)
	}
}

// NoRoute answers unknown paths with the standard error envelope.
func NoRoute() gin.HandlerFunc {
	return func(c *gin.Context) {
		handler.RespondError(c, apperrors.NotFound("Route not found"))
	}
}
