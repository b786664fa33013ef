package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/pharmacy-portal/internal/model"
)

type Response struct {
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func NewSuccessResponse(data interface{}) *Response {
	return &Response{
		Status: "success",
		Data:   data,
	}
}

func NewErrorResponse(message string) *Response {
	return &Response{
		Status:  "error",
		Message: message,
	}
}

// WantsJSON reports whether the client asked for a JSON reply instead of a
// browser redirect.
func WantsJSON(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "application/json")
}

// RespondAction writes an action result. Redirects become 303s for browser
// form posts and plain JSON for API clients.
func RespondAction(c *gin.Context, r model.ActionResult) {
	switch {
	case r.Redirect != "" && !WantsJSON(c):
		c.Redirect(http.StatusSeeOther, r.Redirect)
	case len(r.FieldErrors) > 0:
		c.JSON(http.StatusUnprocessableEntity, r)
	case r.Error == "Not authenticated":
		c.JSON(http.StatusUnauthorized, r)
	case r.Error != "":
		c.JSON(http.StatusBadRequest, r)
	default:
		c.JSON(http.StatusOK, r)
	}
}

// RedirectTo sends browsers to path and tells API clients where to go.
func RedirectTo(c *gin.Context, path string) {
	if WantsJSON(c) {
		c.JSON(http.StatusOK, model.RedirectTo(path))
		return
	}
	c.Redirect(http.StatusSeeOther, path)
}
