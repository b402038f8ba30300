package photo

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the public feed.
func RegisterRoutes(r gin.IRouter, h *Handler) {
	r.GET("/api/photos", h.List)
}

// RegisterAdminRoutes expects a group already guarded by the admin gate.
func RegisterAdminRoutes(admin *gin.RouterGroup, h *Handler) {
	photos := admin.Group("/photos")
	{
		photos.GET("", h.AdminList)
		photos.DELETE("/:id", h.AdminDelete)
	}
}
