// Package patient serves the patient's form actions.
package patient

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/pharmacy-portal/internal/handler"
	"github.com/jwalitptl/pharmacy-portal/internal/model"
)

type Actions interface {
	PayBill(ctx context.Context, billID string) model.ActionResult
}

type Handler struct {
	actions Actions
}

func NewHandler(a Actions) *Handler {
	return &Handler{actions: a}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.POST("/bills/:id/pay", h.PayBill)
}

func (h *Handler) PayBill(c *gin.Context) {
	handler.RespondAction(c, h.actions.PayBill(c.Request.Context(), c.Param("id")))
}
