// Package portal serves the role dashboards and the pharmacy invite page.
package portal

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jwalitptl/pharmacy-portal/internal/handler"
	"github.com/jwalitptl/pharmacy-portal/internal/model"
	"github.com/jwalitptl/pharmacy-portal/internal/service/dashboard"
	apperrors "github.com/jwalitptl/pharmacy-portal/pkg/errors"
)

type Dashboards interface {
	Home(ctx context.Context) (string, error)
	Pharmacy(ctx context.Context) (*dashboard.PharmacyDashboard, error)
	Patient(ctx context.Context) (*dashboard.PatientDashboard, error)
	Doctor(ctx context.Context) (*dashboard.DoctorDashboard, error)
	Connect(ctx context.Context, pharmacyID string) (*dashboard.ConnectPage, error)
}

type Connector interface {
	ConnectToPharmacy(ctx context.Context, pharmacyID string) model.ActionResult
}

type Handler struct {
	dashboards Dashboards
	connector  Connector
}

func NewHandler(d Dashboards, c Connector) *Handler {
	return &Handler{dashboards: d, connector: c}
}

// RegisterRoutes mounts the pages. cache applies to the dashboard GETs.
func (h *Handler) RegisterRoutes(r gin.IRouter, cache gin.HandlerFunc) {
	r.GET("/", h.Home)
	r.GET("/pharmacy", cache, h.Pharmacy)
	r.GET("/patient", cache, h.Patient)
	r.GET("/doctor", cache, h.Doctor)
}

// RegisterConnect mounts the pharmacy link flow. It is shared by every portal,
// so the router mounts it once per role prefix as well as at the root.
func (h *Handler) RegisterConnect(r gin.IRouter) {
	r.GET("/connect", h.ConnectPage)
	r.POST("/connect", h.Connect)
}

func (h *Handler) Home(c *gin.Context) {
	target, err := h.dashboards.Home(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	handler.RedirectTo(c, target)
}

func (h *Handler) Pharmacy(c *gin.Context) {
	d, err := h.dashboards.Pharmacy(c.Request.Context())
	h.render(c, d, err)
}

func (h *Handler) Patient(c *gin.Context) {
	d, err := h.dashboards.Patient(c.Request.Context())
	h.render(c, d, err)
}

func (h *Handler) Doctor(c *gin.Context) {
	d, err := h.dashboards.Doctor(c.Request.Context())
	h.render(c, d, err)
}

func (h *Handler) ConnectPage(c *gin.Context) {
	page, err := h.dashboards.Connect(c.Request.Context(), c.Query("pharmacy_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	if page.Redirect != "" {
		handler.RedirectTo(c, page.Redirect)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(page))
}

func (h *Handler) Connect(c *gin.Context) {
	pharmacyID := c.PostForm("pharmacy_id")
	if pharmacyID == "" {
		pharmacyID = c.Query("pharmacy_id")
	}
	handler.RespondAction(c, h.connector.ConnectToPharmacy(c.Request.Context(), pharmacyID))
}

func (h *Handler) render(c *gin.Context, payload interface{}, err error) {
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, handler.NewSuccessResponse(payload))
}

func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, dashboard.ErrSignInRequired):
		handler.RedirectTo(c, "/login")
	case errors.Is(err, dashboard.ErrProfileMissing):
		c.Error(apperrors.NotFound("profile", err))
	case errors.Is(err, dashboard.ErrInvalidLink):
		c.Error(apperrors.BadRequest("Invalid pharmacy link", err))
	case errors.Is(err, dashboard.ErrPharmacyMissing):
		c.Error(apperrors.NotFound("pharmacy", err))
	default:
		c.Error(apperrors.Internal(err))
	}
}
