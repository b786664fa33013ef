// Package chat serves message history, message posting and the realtime
// chat socket.
package chat

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	chatsvc "github.com/jwalitptl/pharmacy-portal/internal/chat"
	"github.com/jwalitptl/pharmacy-portal/internal/handler"
	"github.com/jwalitptl/pharmacy-portal/internal/model"
	"github.com/jwalitptl/pharmacy-portal/internal/service/actions"
	"github.com/jwalitptl/pharmacy-portal/internal/service/auth"
)

type Actions interface {
	SendMessage(ctx context.Context, in actions.SendMessageInput) model.ActionResult
	GetMessages(ctx context.Context, otherID string) []*model.Message
}

// Realtime runs a chat session over an upgraded connection.
type Realtime interface {
	Serve(ctx context.Context, self uuid.UUID, conn chatsvc.Conn)
}

type Handler struct {
	actions  Actions
	realtime Realtime
	upgrade  func(w http.ResponseWriter, r *http.Request) (chatsvc.Conn, error)
}

func NewHandler(a Actions, rt Realtime) *Handler {
	return &Handler{actions: a, realtime: rt, upgrade: chatsvc.Upgrade}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/messages/:user_id", h.ListMessages)
	r.POST("/messages", h.SendMessage)
}

// RegisterRealtime mounts the socket endpoint. Callers gate it on the API key
// and a signed-in user.
func (h *Handler) RegisterRealtime(r gin.IRouter) {
	r.GET("/realtime/chat", h.Connect)
}

func (h *Handler) ListMessages(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(h.actions.GetMessages(c.Request.Context(), c.Param("user_id"))))
}

func (h *Handler) SendMessage(c *gin.Context) {
	var in actions.SendMessageInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	handler.RespondAction(c, h.actions.SendMessage(c.Request.Context(), in))
}

func (h *Handler) Connect(c *gin.Context) {
	user := auth.UserFromContext(c.Request.Context())
	if user == nil {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("Not authenticated"))
		return
	}

	conn, err := h.upgrade(c.Writer, c.Request)
	if err != nil {
		log.Warn().Err(err).Str("user_id", user.ID.String()).Msg("websocket upgrade failed")
		return
	}
	h.realtime.Serve(c.Request.Context(), user.ID, conn)
}
