// Package pharmacy serves the pharmacist's form actions.
package pharmacy

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/pharmacy-portal/internal/handler"
	"github.com/jwalitptl/pharmacy-portal/internal/model"
	"github.com/jwalitptl/pharmacy-portal/internal/service/actions"
)

const maxUploadSize = 5 << 20

type Actions interface {
	AddInventoryItem(ctx context.Context, in model.NewInventoryItem) model.ActionResult
	BulkAddInventory(ctx context.Context, items []model.NewInventoryItem) model.ActionResult
	UpdateInventory(ctx context.Context, id string, update model.InventoryUpdate) model.ActionResult
	GetInventory(ctx context.Context) []*model.InventoryItem
	UpdateOrderStatus(ctx context.Context, orderID, status string) model.ActionResult
	CreateBill(ctx context.Context, in actions.CreateBillInput) model.ActionResult
	RegisterWalkInPatient(ctx context.Context, in actions.WalkInInput) model.ActionResult
}

type Handler struct {
	actions Actions
}

func NewHandler(a Actions) *Handler {
	return &Handler{actions: a}
}

// RegisterRoutes mounts the actions under the pharmacy portal. Callers gate
// the group on the pharmacist role.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	inventory := r.Group("/inventory")
	{
		inventory.GET("", h.ListInventory)
		inventory.POST("", h.AddInventoryItem)
		inventory.POST("/bulk", h.BulkAddInventory)
		inventory.POST("/upload", h.UploadInventory)
		inventory.PATCH("/:id", h.UpdateInventory)
	}
	r.PATCH("/orders/:id/status", h.UpdateOrderStatus)
	r.POST("/bills", h.CreateBill)
	r.POST("/walk-in", h.RegisterWalkIn)
}

func (h *Handler) ListInventory(c *gin.Context) {
	c.JSON(http.StatusOK, handler.NewSuccessResponse(h.actions.GetInventory(c.Request.Context())))
}

func (h *Handler) AddInventoryItem(c *gin.Context) {
	var in model.NewInventoryItem
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	handler.RespondAction(c, h.actions.AddInventoryItem(c.Request.Context(), in))
}

func (h *Handler) BulkAddInventory(c *gin.Context) {
	var items []model.NewInventoryItem
	if err := c.ShouldBindJSON(&items); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	handler.RespondAction(c, h.actions.BulkAddInventory(c.Request.Context(), items))
}

// UploadInventory accepts a name,quantity,price CSV in the "file" field.
func (h *Handler) UploadInventory(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("file is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("failed to read upload"))
		return
	}
	defer f.Close()

	items, err := actions.ParseInventoryCSV(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	handler.RespondAction(c, h.actions.BulkAddInventory(c.Request.Context(), items))
}

func (h *Handler) UpdateInventory(c *gin.Context) {
	var update model.InventoryUpdate
	if err := c.ShouldBind(&update); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	handler.RespondAction(c, h.actions.UpdateInventory(c.Request.Context(), c.Param("id"), update))
}

func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" form:"status"`
	}
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	handler.RespondAction(c, h.actions.UpdateOrderStatus(c.Request.Context(), c.Param("id"), req.Status))
}

// CreateBill takes a JSON body, or a form whose "items" field holds the item
// list as JSON.
func (h *Handler) CreateBill(c *gin.Context) {
	var in actions.CreateBillInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	if raw := c.PostForm("items"); len(in.Items) == 0 && raw != "" {
		if err := json.Unmarshal([]byte(raw), &in.Items); err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("items must be a JSON list"))
			return
		}
	}
	handler.RespondAction(c, h.actions.CreateBill(c.Request.Context(), in))
}

func (h *Handler) RegisterWalkIn(c *gin.Context) {
	var in actions.WalkInInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}
	handler.RespondAction(c, h.actions.RegisterWalkInPatient(c.Request.Context(), in))
}
