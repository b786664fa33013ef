package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/jwalitptl/pharmacy-portal/internal/service/auth"
)

// Recovery turns a panic into a 500 and logs the stack with the request's
// logger. Responses already started (including upgraded sockets) are only
// aborted.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			err := recover()
			if err == nil {
				return
			}

			event := zerolog.Ctx(c.Request.Context()).Error().
				Interface("error", err).
				Str("stack", string(debug.Stack())).
				Str("method", c.Request.Method).
				Str("host", c.Request.Host).
				Str("path", c.Request.URL.Path)
			if user := auth.UserFromContext(c.Request.Context()); user != nil {
				event = event.Str("user_id", user.ID.String())
			}
			event.Msg("request panic recovered")

			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
				Code:    http.StatusInternalServerError,
				Message: "Internal server error",
				TraceID: c.GetString(ContextRequestID),
			})
		}()
		c.Next()
	}
}
