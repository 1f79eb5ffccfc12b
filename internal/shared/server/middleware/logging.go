package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"diagnosis-backend/internal/shared/telemetry"
)

// DiagnosisIDKey is set by handlers that create or read a diagnosis.
const DiagnosisIDKey = "diagnosisId"

// Logging emits a structured log per request.
func Logging() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		diagnosisID, _ := c.Get(DiagnosisIDKey)
		fields := map[string]any{
			"request_id":   RequestIDFromContext(c),
			"session_id":   SessionIDFromContext(c),
			"diagnosis_id": diagnosisID,
			"method":       c.Request.Method,
			"path":         c.Request.URL.Path,
			"route":        c.FullPath(),
			"status":       c.Writer.Status(),
			"duration_ms":  float64(time.Since(start).Microseconds()) / 1000.0,
			"client_ip":    c.ClientIP(),
			"user_agent":   c.Request.UserAgent(),
		}
		if len(c.Errors) > 0 {
			fields["errors"] = c.Errors.String()
		}
		telemetry.Info("request.complete", fields)
	}
}
