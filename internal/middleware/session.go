package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/pharmacy-portal/internal/service/auth"
)

// ContextUser is the gin key holding the signed-in *model.User.
const ContextUser = "user"

// SessionRefresher resolves the current user from the session cookies and
// renews them when the access token has lapsed. Renewed cookies are written
// to the request, so downstream handlers read the fresh session, and to the
// response. It never rejects a request.
func SessionRefresher(svc auth.Service, cookies auth.CookieConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		access, refresh := cookies.Read(c.Request)
		if access == "" && refresh == "" {
			c.Next()
			return
		}

		user, session, err := svc.GetUser(c.Request.Context(), access, refresh)
		if err != nil {
			log.Debug().Err(err).Str("request_id", c.GetString(ContextRequestID)).Msg("no active session")
			c.Next()
			return
		}

		if session != nil {
			renewed := cookies.Cookies(session)
			auth.SetOnRequest(c.Request, renewed)
			for _, ck := range renewed {
				http.SetCookie(c.Writer, ck)
			}
		}

		c.Set(ContextUser, user)
		c.Request = c.Request.WithContext(auth.WithUser(c.Request.Context(), user))
		c.Next()
	}
}
