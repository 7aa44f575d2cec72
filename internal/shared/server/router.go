package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobtrack-backend/internal/account"
	"jobtrack-backend/internal/analyses"
	"jobtrack-backend/internal/applications"
	googleauth "jobtrack-backend/internal/auth"
	"jobtrack-backend/internal/resumes"
	"jobtrack-backend/internal/shared/config"
	"jobtrack-backend/internal/shared/metrics"
	"jobtrack-backend/internal/shared/server/middleware"
	"jobtrack-backend/internal/shared/server/respond"
	"jobtrack-backend/internal/users"
)

// RouterDeps carries the handlers the router wires up. Bootstrap builds the
// dependency graph; the router only attaches middleware and routes.
type RouterDeps struct {
	Config             config.Config
	ResumeHandler      *resumes.Handler
	ApplicationHandler *applications.Handler
	AnalysisHandler    *analyses.Handler
	UserHandler        *users.Handler
	AccountHandler     *account.Handler
	GoogleAuth         *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(deps.Config.Env),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				"DEFAULT": {Rate: 10, Burst: 30},
				// Analysis starts are expensive upstream calls; keep bursts small.
				"ANALYZE": {Rate: 0.5, Burst: 3},
			},
			GroupFor: func(c *gin.Context) string {
				if c.Request.Method == http.MethodPost && strings.HasPrefix(c.FullPath(), "/api/v1/analyses/") {
					return "ANALYZE"
				}
				return ""
			},
		}),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.OK(c, gin.H{"ok": true})
	})
	api.GET("/metrics", metrics.Handler())

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.ResumeHandler != nil {
		deps.ResumeHandler.RegisterRoutes(api)
	}
	if deps.ApplicationHandler != nil {
		deps.ApplicationHandler.RegisterRoutes(api)
	}
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.RegisterRoutes(api)
	}
	if deps.AccountHandler != nil {
		deps.AccountHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
