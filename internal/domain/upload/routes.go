package upload

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the public upload endpoint.
func RegisterRoutes(r gin.IRouter, h *Handler) {
	r.POST("/upload", h.Upload)
}
