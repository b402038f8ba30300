package ranking

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the public results endpoint.
func RegisterRoutes(r gin.IRouter, h *Handler) {
	r.GET("/api/rankings", h.Results)
}

// RegisterAdminRoutes expects a group already guarded by the admin gate.
func RegisterAdminRoutes(admin *gin.RouterGroup, h *Handler) {
	admin.GET("/ranking", h.Get)
	admin.PUT("/ranking", h.Update)
}
