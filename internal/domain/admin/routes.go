package admin

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts login/logout on r and returns the /admin group guarded
// by RequireAdmin for the other domains to register on.
func RegisterRoutes(r gin.IRouter, h *AuthHandler, service *Service) *gin.RouterGroup {
	r.POST("/admin/login", h.Login)
	r.POST("/admin/logout", h.Logout)

	protected := r.Group("/admin", RequireAdmin(service))
	protected.GET("/me", h.Me)
	return protected
}
