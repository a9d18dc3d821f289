package server

import (
	"database/sql"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"checkcontrat-backend/internal/checks"
	"checkcontrat-backend/internal/files"
	"checkcontrat-backend/internal/services/health"
	"checkcontrat-backend/internal/shared/cache"
	"checkcontrat-backend/internal/shared/config"
	"checkcontrat-backend/internal/shared/metrics"
	"checkcontrat-backend/internal/shared/server/middleware"
	"checkcontrat-backend/internal/shared/server/respond"
	"checkcontrat-backend/internal/uploads"
)

const (
	rateLimitDefault  = "DEFAULT"
	rateLimitAnalysis = "ANALYSIS"
)

// RouterDeps lists everything the HTTP layer needs.
type RouterDeps struct {
	Config        config.Config
	DB            *sql.DB
	Redis         cache.Counter
	Limiter       middleware.Limiter
	UploadHandler *uploads.Handler
	CheckHandler  *checks.Handler
	FileHandler   *files.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Identity(),
		middleware.RateLimit(middleware.RateLimitConfig{
			DefaultGroup: rateLimitDefault,
			GroupFor:     rateLimitGroup,
			Limiter:      deps.Limiter,
			Rules: map[string]middleware.RateLimitRule{
				rateLimitDefault:  {Rate: 5, Burst: 20},
				rateLimitAnalysis: {Rate: 0.2, Burst: 3},
			},
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	healthSvc := health.NewService(deps.DB, nil)
	if deps.Redis != nil {
		healthSvc.Redis = deps.Redis
	}
	api.GET("/health", healthHandler(healthSvc))
	if deps.UploadHandler != nil {
		deps.UploadHandler.RegisterRoutes(api)
	}
	if deps.CheckHandler != nil {
		deps.CheckHandler.RegisterRoutes(api)
	}
	if deps.FileHandler != nil {
		deps.FileHandler.RegisterRoutes(api)
	}

	return r
}

func rateLimitGroup(c *gin.Context) string {
	if c.Request.Method == http.MethodPost && strings.HasPrefix(c.FullPath(), "/api/v1/checks/") {
		return rateLimitAnalysis
	}
	return rateLimitDefault
}

func healthHandler(svc *health.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := svc.Status(c.Request.Context())
		status := http.StatusOK
		if !st.OK {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, st)
	}
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
