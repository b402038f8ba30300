package photo

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventphotos/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// List godoc
// @Summary Photo feed for slideshows
// @Tags Photos
// @Produce json
// @Param sort query string false "name (default) or recent"
// @Success 200 {object} ListingResponse
// @Router /api/photos [get]
func (h *Handler) List(c *gin.Context) {
	listing, err := h.service.Listing(ParseSortBy(c.Query("sort")))
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list photos")
		return
	}
	c.JSON(http.StatusOK, listing)
}

// AdminList godoc
// @Summary Photos with stable ids for the admin panel
// @Tags Admin Photos
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /admin/photos [get]
func (h *Handler) AdminList(c *gin.Context) {
	items, err := h.service.AdminPhotos()
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list photos")
		return
	}
	response.Success(c, http.StatusOK, items)
}

// AdminDelete godoc
// @Summary Delete a photo by id
// @Tags Admin Photos
// @Produce json
// @Param id path string true "Photo ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404,500 {object} map[string]interface{}
// @Router /admin/photos/{id} [delete]
func (h *Handler) AdminDelete(c *gin.Context) {
	filename, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrIdentityNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "invalid photo id")
		case errors.Is(err, ErrPhotoNotFound):
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "photo file not found")
		default:
			_ = c.Error(err)
			response.Error(c, http.StatusInternalServerError, "DELETE_FAILED", "failed to delete photo")
		}
		return
	}
	response.Success(c, http.StatusOK, gin.H{"filename": filename})
}
