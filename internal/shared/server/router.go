package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"diagnosis-backend/internal/diagnosis"
	"diagnosis-backend/internal/services/health"
	"diagnosis-backend/internal/shared/config"
	"diagnosis-backend/internal/shared/metrics"
	"diagnosis-backend/internal/shared/server/middleware"
	"diagnosis-backend/internal/shared/server/respond"
)

// RouterDeps holds the handlers the router mounts.
type RouterDeps struct {
	Config           config.Config
	DiagnosisHandler *diagnosis.Handler
	Health           *health.Service
	Limiter          *middleware.RateLimiter
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	limiter := deps.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(nil)
	}

	r.Use(
		middleware.RequestID(),
		middleware.Session(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				middleware.RateLimitGroupDiagnose: {
					Rate:  deps.Config.DiagnoseRateLimitRPS,
					Burst: deps.Config.DiagnoseRateBurst,
				},
			},
			GroupFor: rateLimitGroup,
			Limiter:  limiter,
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		if deps.Health == nil {
			respond.JSON(c, http.StatusOK, gin.H{"ok": true})
			return
		}
		respond.JSON(c, http.StatusOK, deps.Health.Status())
	})
	registerSessionRoutes(api)
	if deps.DiagnosisHandler != nil {
		deps.DiagnosisHandler.RegisterRoutes(api)
	}

	return r
}

func rateLimitGroup(c *gin.Context) string {
	if c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/diagnoses" {
		return middleware.RateLimitGroupDiagnose
	}
	return ""
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
