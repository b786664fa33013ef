package auth

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/pharmacy-portal/internal/handler"
	"github.com/jwalitptl/pharmacy-portal/internal/model"
	"github.com/jwalitptl/pharmacy-portal/internal/service/actions"
	"github.com/jwalitptl/pharmacy-portal/internal/service/auth"
)

// Actions is the session slice of the action service.
type Actions interface {
	Login(ctx context.Context, in actions.LoginInput) (model.ActionResult, *model.Session)
	Signup(ctx context.Context, in actions.SignupInput) (model.ActionResult, *model.Session)
	Signout(ctx context.Context, accessToken, refreshToken string) model.ActionResult
}

type Handler struct {
	actions Actions
	cookies auth.CookieConfig
}

func NewHandler(a Actions, cookies auth.CookieConfig) *Handler {
	return &Handler{actions: a, cookies: cookies}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/login", h.LoginPage)
	r.POST("/login", h.Login)
	r.GET("/signup", h.SignupHub)
	r.GET("/signup/:portal", h.SignupPage)
	r.POST("/signup", h.Signup)
	r.POST("/signout", h.Signout)
}

func (h *Handler) LoginPage(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{
		"next":    c.Query("next"),
		"portals": model.Portals(),
	}))
}

func (h *Handler) SignupHub(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(model.Portals()))
}

func (h *Handler) SignupPage(c *gin.Context) {
	role, ok := model.RoleForSubdomain(c.Param("portal"))
	if !ok {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("unknown portal"))
		return
	}
	portal, _ := model.PortalFor(role)
	c.JSON(http.StatusOK, handler.NewSuccessResponse(portal))
}

func (h *Handler) Login(c *gin.Context) {
	var in actions.LoginInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	result, session := h.actions.Login(c.Request.Context(), in)
	if session != nil {
		h.setSession(c, session)
		if next := c.Query("next"); result.Redirect != "" && isLocalPath(next) {
			result.Redirect = next
		}
	}
	handler.RespondAction(c, result)
}

func (h *Handler) Signup(c *gin.Context) {
	var in actions.SignupInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	result, session := h.actions.Signup(c.Request.Context(), in)
	if session != nil {
		h.setSession(c, session)
	}
	handler.RespondAction(c, result)
}

func (h *Handler) Signout(c *gin.Context) {
	access, refresh := h.cookies.Read(c.Request)
	result := h.actions.Signout(c.Request.Context(), access, refresh)
	for _, ck := range h.cookies.Cleared() {
		http.SetCookie(c.Writer, ck)
	}
	handler.RespondAction(c, result)
}

func (h *Handler) setSession(c *gin.Context, session *model.Session) {
	for _, ck := range h.cookies.Cookies(session) {
		http.SetCookie(c.Writer, ck)
	}
}

// isLocalPath guards the post-login redirect against off-site targets.
func isLocalPath(p string) bool {
	return len(p) > 1 && p[0] == '/' && p[1] != '/' && p[1] != '\\'
}
