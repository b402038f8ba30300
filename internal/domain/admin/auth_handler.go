package admin

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"eventphotos/internal/pkg/ratelimit"
	"eventphotos/internal/pkg/response"
	"eventphotos/internal/pkg/validator"
)

type AuthHandler struct {
	service      *Service
	limiter      *ratelimit.KeyedRateLimiter
	cookieSecure bool
	logger       *slog.Logger
}

func NewAuthHandler(service *Service, limiter *ratelimit.KeyedRateLimiter, cookieSecure bool, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{service: service, limiter: limiter, cookieSecure: cookieSecure, logger: logger}
}

type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required,max=128"`
	Password string `json:"password" form:"password" validate:"required,max=256"`
}

// Login godoc
// @Summary Admin login
// @Description Checks the shared admin credential and sets the session cookie
// @Tags Admin Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} map[string]interface{}
// @Failure 400,401,429 {object} map[string]interface{}
// @Router /admin/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	if h.limiter != nil && !h.limiter.Allow(c.ClientIP()) {
		response.Error(c, http.StatusTooManyRequests, "RATE_LIMITED", "Too many login attempts, try again later")
		return
	}

	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid login request", errs)
		return
	}

	token, err := h.service.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			h.logger.Warn("admin login failed", "client_ip", c.ClientIP())
			response.Error(c, http.StatusUnauthorized, "AUTH_FAILED", "Invalid username or password")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Login failed")
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, h.service.TokenTTLSeconds(), "/", "", h.cookieSecure, true)
	h.logger.Info("admin logged in", "client_ip", c.ClientIP())
	response.Success(c, http.StatusOK, gin.H{"access_token": token})
}

// Logout godoc
// @Summary Admin logout
// @Tags Admin Auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /admin/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", h.cookieSecure, true)
	response.Success(c, http.StatusOK, gin.H{"logged_out": true})
}

// Me godoc
// @Summary Current admin session
// @Tags Admin Auth
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /admin/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{"username": c.GetString(ctxAdmin)})
}
