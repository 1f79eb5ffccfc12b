package server

import (
	"github.com/gin-gonic/gin"

	"diagnosis-backend/internal/shared/server/middleware"
	"diagnosis-backend/internal/shared/server/respond"
)

// registerSessionRoutes attaches the /session endpoint, letting a client
// obtain an id before its first diagnosis.
func registerSessionRoutes(rg *gin.RouterGroup) {
	rg.GET("/session", sessionHandler)
}

func sessionHandler(c *gin.Context) {
	respond.OK(c, gin.H{"sessionId": middleware.SessionIDFromContext(c)})
}
