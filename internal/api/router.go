package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// maxBodyBytes caps request bodies at 2 MiB; avatars travel base64 inside
// JSON and must fit.
const maxBodyBytes = 2 << 20

// NewRouter builds the gin engine with every relay route registered.
// corsOrigin, when non-empty, enables single-origin CORS handling.
func NewRouter(h *Handler, corsOrigin string) *gin.Engine {
	r := gin.Default()

	r.Use(func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
		c.Next()
	})
	if corsOrigin != "" {
		r.Use(corsMiddleware(corsOrigin))
	}

	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	r.POST("/presence/update", h.UpdatePresence)
	r.POST("/presence/get", h.GetPresence)

	r.POST("/requests/create", h.CreateRequest)
	r.GET("/requests/inbox", h.RequestInbox)
	r.POST("/requests/respond", h.RespondRequest)

	r.GET("/tokens/inbox", h.TokenGrants)
	r.POST("/tokens/ack", h.AckToken)

	r.POST("/profile/update", h.UpdateProfile)
	r.GET("/profile/get", h.GetProfile)

	return r
}

// corsMiddleware echoes exactly one configured origin, never a wildcard.
// Preflight requests are answered with 204 and no body.
func corsMiddleware(origin string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
