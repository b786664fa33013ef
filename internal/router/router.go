package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/pharmacy-portal/internal/handler/auth"
	"github.com/jwalitptl/pharmacy-portal/internal/handler/chat"
	"github.com/jwalitptl/pharmacy-portal/internal/handler/health"
	"github.com/jwalitptl/pharmacy-portal/internal/handler/patient"
	"github.com/jwalitptl/pharmacy-portal/internal/handler/pharmacy"
	"github.com/jwalitptl/pharmacy-portal/internal/handler/portal"
	"github.com/jwalitptl/pharmacy-portal/internal/middleware"
	"github.com/jwalitptl/pharmacy-portal/internal/model"
	authsvc "github.com/jwalitptl/pharmacy-portal/internal/service/auth"
	"github.com/jwalitptl/pharmacy-portal/pkg/metrics"
)

type RouterConfig struct {
	RateLimit rate.Limit
	RateBurst int
	APIKey    string
	Cookies   authsvc.CookieConfig
}

type Handlers struct {
	Auth     *auth.Handler
	Portal   *portal.Handler
	Pharmacy *pharmacy.Handler
	Patient  *patient.Handler
	Chat     *chat.Handler
	Health   *health.Handler
}

type Router struct {
	engine  *gin.Engine
	h       Handlers
	auth    *middleware.AuthMiddleware
	session authsvc.Service
	metrics *metrics.Metrics
	config  RouterConfig
}

func NewRouter(
	h Handlers,
	authMW *middleware.AuthMiddleware,
	session authsvc.Service,
	m *metrics.Metrics,
	config RouterConfig,
) *Router {
	engine := gin.New()

	r := &Router{
		engine:  engine,
		h:       h,
		auth:    authMW,
		session: session,
		metrics: m,
		config:  config,
	}

	engine.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.ErrorHandler(),
	)
	if m != nil {
		engine.Use(middleware.Metrics(m))
	}
	if config.RateLimit > 0 {
		engine.Use(middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:  config.RateLimit,
			Burst: config.RateBurst,
		}).RateLimit())
	}

	return r
}

func (r *Router) Setup() {
	r.h.Health.RegisterRoutes(r.engine)

	app := r.engine.Group("")
	app.Use(middleware.SessionRefresher(r.session, r.config.Cookies))

	r.h.Portal.RegisterRoutes(app, middleware.Cache(middleware.DashboardCacheConfig()))

	pharmacyGroup := app.Group("/pharmacy")
	pharmacyGroup.Use(r.auth.RequireRole(model.RolePharmacist))
	r.h.Pharmacy.RegisterRoutes(pharmacyGroup)

	patientGroup := app.Group("/patient")
	patientGroup.Use(r.auth.RequireRole(model.RolePatient))
	r.h.Patient.RegisterRoutes(patientGroup)

	// A role subdomain rewrites every path under its prefix, so the routes
	// every portal shares are mounted there too.
	r.registerShared(app.Group(""))
	for _, role := range model.Roles {
		r.registerShared(app.Group("/" + role.Subdomain()))
	}
}

func (r *Router) registerShared(g *gin.RouterGroup) {
	r.h.Auth.RegisterRoutes(g)
	r.h.Portal.RegisterConnect(g)

	signedIn := g.Group("")
	signedIn.Use(r.auth.RequireUser())
	r.h.Chat.RegisterRoutes(signedIn)

	realtime := g.Group("")
	realtime.Use(middleware.APIKey(r.config.APIKey), r.auth.RequireUser())
	r.h.Chat.RegisterRealtime(realtime)
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

// Handler is the server entry point: host-based portal rewriting in front of
// the routes.
func (r *Router) Handler() http.Handler {
	return middleware.RewriteSubdomain(r.engine)
}
