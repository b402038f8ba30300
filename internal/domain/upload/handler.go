package upload

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventphotos/internal/pkg/response"
)

// Handler accepts photo uploads from event staff. Uploading needs no login.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Upload godoc
// @Summary Upload a photo
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param photo formData file true "Photo to upload"
// @Success 200 {object} map[string]interface{}
// @Failure 400,413,500 {object} map[string]interface{}
// @Router /upload [post]
func (h *Handler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("photo")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "no file provided")
		return
	}
	if fileHeader.Filename == "" {
		response.Fail(c, http.StatusBadRequest, "no file selected")
		return
	}

	result, err := h.service.Upload(c.Request.Context(), fileHeader)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyFile), errors.Is(err, ErrInvalidMimeType):
			response.Fail(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrFileTooLarge):
			response.Fail(c, http.StatusRequestEntityTooLarge, err.Error())
		default:
			_ = c.Error(err)
			response.Fail(c, http.StatusInternalServerError, "upload failed")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"filename":  result.Filename,
		"photo_url": result.PhotoURL,
	})
}
