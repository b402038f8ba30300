package ranking

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventphotos/internal/pkg/response"
)

type Handler struct {
	store    *Store
	notifier Notifier
}

func NewHandler(store *Store, notifier Notifier) *Handler {
	return &Handler{store: store, notifier: notifier}
}

// Results godoc
// @Summary Ranking results in display order
// @Tags Rankings
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /api/rankings [get]
func (h *Handler) Results(c *gin.Context) {
	view, err := h.store.ResolvedView(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load rankings")
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Get godoc
// @Summary Ranking document for the editor
// @Tags Admin Rankings
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /admin/ranking [get]
func (h *Handler) Get(c *gin.Context) {
	cfg, err := h.store.Load(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load ranking")
		return
	}
	response.Success(c, http.StatusOK, AdminView{Config: cfg, Schema: h.store.Schema()})
}

// Update godoc
// @Summary Replace the ranking document
// @Tags Admin Rankings
// @Accept json
// @Produce json
// @Param request body UpdateRequest true "Full ranking"
// @Success 200 {object} map[string]interface{}
// @Failure 400,409,500 {object} map[string]interface{}
// @Router /admin/ranking [put]
func (h *Handler) Update(c *gin.Context) {
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	cfg, err := h.store.Update(c.Request.Context(), req)
	if err != nil {
		switch {
		case IsValidation(err):
			response.Fail(c, http.StatusBadRequest, err.Error())
		case errors.Is(err, ErrStaleRevision):
			response.Fail(c, http.StatusConflict, err.Error())
		default:
			_ = c.Error(err)
			response.Fail(c, http.StatusInternalServerError, ErrWriteFailed.Error())
		}
		return
	}

	if h.notifier != nil {
		h.notifier.RankingChanged()
	}
	response.Success(c, http.StatusOK, cfg)
}
