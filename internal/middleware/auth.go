package middleware

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/pharmacy-portal/internal/handler"
	"github.com/jwalitptl/pharmacy-portal/internal/model"
	"github.com/jwalitptl/pharmacy-portal/internal/repository"
	"github.com/jwalitptl/pharmacy-portal/internal/service/auth"
	apperrors "github.com/jwalitptl/pharmacy-portal/pkg/errors"
)

// ContextProfile is the gin key holding the caller's *model.Profile once a
// role check has passed.
const ContextProfile = "profile"

// HeaderAPIKey carries the public platform key on realtime requests.
const HeaderAPIKey = "apikey"

type AuthMiddleware struct {
	profiles repository.ProfileRepository
}

func NewAuthMiddleware(profiles repository.ProfileRepository) *AuthMiddleware {
	return &AuthMiddleware{profiles: profiles}
}

// RequireUser rejects requests without a resolved session. It must run after
// SessionRefresher.
func (m *AuthMiddleware) RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if auth.UserFromContext(c.Request.Context()) == nil {
			abortWith(c, apperrors.Unauthorized(nil))
			return
		}
		c.Next()
	}
}

// RequireRole only admits users whose profile carries one of roles.
func (m *AuthMiddleware) RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := auth.UserFromContext(c.Request.Context())
		if user == nil {
			abortWith(c, apperrors.Unauthorized(nil))
			return
		}

		profile, err := m.profiles.Get(c.Request.Context(), user.ID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				abortWith(c, apperrors.Forbidden("profile missing", err))
			} else {
				abortWith(c, apperrors.Internal(err))
			}
			return
		}

		for _, r := range roles {
			if profile.Role == r {
				c.Set(ContextProfile, profile)
				c.Next()
				return
			}
		}

		abortWith(c, apperrors.Forbidden("permission denied", nil))
	}
}

// abortWith stops the chain with err rendered in the handler envelope.
// Internal causes are logged and replaced with a generic message.
func abortWith(c *gin.Context, err *apperrors.AppError) {
	message := err.Message
	if apperrors.HasCode(err, apperrors.ErrInternal) {
		log.Error().Err(err).Str("request_id", c.GetString(ContextRequestID)).Msg("authorization failed")
		message = "failed to load profile"
	}
	c.AbortWithStatusJSON(err.StatusCode(), handler.NewErrorResponse(message))
}

// APIKey checks the public platform key sent in the apikey header or query
// parameter.
func APIKey(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(HeaderAPIKey)
		if got == "" {
			got = c.Query(HeaderAPIKey)
		}
		if key == "" || subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid api key"))
			c.Abort()
			return
		}
		c.Next()
	}
}
