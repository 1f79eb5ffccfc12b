package middleware

import (
	"io"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"diagnosis-backend/internal/shared/server/respond"
	"diagnosis-backend/internal/shared/telemetry"
)

// Recovery turns a handler panic into a logged 500 with the standard envelope.
// gin's own writer is discarded so the panic is logged once, as JSON.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecoveryWithWriter(io.Discard, func(c *gin.Context, rec any) {
		telemetry.Error("http.panic", map[string]any{
			"request_id": RequestIDFromContext(c),
			"session_id": SessionIDFromContext(c),
			"panic":      rec,
			"stack":      string(debug.Stack()),
			"route":      c.FullPath(),
			"method":     c.Request.Method,
		})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "Unexpected server error", nil)
	})
}
