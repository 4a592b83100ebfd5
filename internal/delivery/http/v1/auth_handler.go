package v1

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"iisa-recruitment-backend/internal/delivery/http/middleware"
	"iisa-recruitment-backend/internal/delivery/http/response"
	"iisa-recruitment-backend/internal/domain"
	"iisa-recruitment-backend/internal/navigation"
	"iisa-recruitment-backend/pkg/apperror"
	"iisa-recruitment-backend/pkg/logger"
	"iisa-recruitment-backend/pkg/security"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authUC       domain.AuthUsecase
	registry     *navigation.Registry
	guard        *security.LoginGuard
	cookieSecure bool
	clock        domain.Clock
}

func NewAuthHandler(public *gin.RouterGroup, protected *gin.RouterGroup, deps RouterDeps, loginLimit gin.HandlerFunc) {
	handler := &AuthHandler{
		authUC:       deps.AuthUC,
		registry:     deps.Registry,
		guard:        deps.LoginGuard,
		cookieSecure: deps.Config.CookieSecure,
		clock:        deps.Clock,
	}

	// Public Routes
	public.POST("/auth/login", loginLimit, handler.Login)

	// Protected Routes
	protectedAuth := protected.Group("/auth")
	{
		protectedAuth.POST("/logout", handler.Logout)
		protectedAuth.GET("/me", handler.Me)
	}
}

// Login godoc
// @Summary      Admin login
// @Description  Email and password, plus a TOTP code when the account has one. Sets the auth_token cookie.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        login  body      domain.LoginRequest  true  "Credentials"
// @Success      200    {object}  response.Response{data=domain.LoginResult}
// @Failure      400    {object}  response.Response
// @Failure      401    {object}  response.Response
// @Failure      429    {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest("Invalid request body"))
		return
	}

	meta := security.RequestMeta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
		RequestID: c.GetString(response.RequestIDKey),
	}
	if h.guard != nil {
		ttl, blocked, err := h.guard.Blocked(c, req.Email, meta)
		if err != nil {
			logger.Log.Warn("login guard unavailable", "error", err)
		} else if blocked {
			c.Header("Retry-After", strconv.Itoa(int(ttl.Seconds())+1))
			c.Error(apperror.TooManyRequests("Too many failed login attempts, try again later"))
			return
		}
	}

	result, err := h.authUC.Login(c, req)
	if err != nil {
		if h.guard != nil && countsAsFailure(err) {
			if _, gerr := h.guard.RecordFailure(c, req.Email, meta); gerr != nil {
				logger.Log.Warn("failed to record login failure", "error", gerr)
			}
		}
		c.Error(err)
		return
	}
	if h.guard != nil {
		if err := h.guard.RecordSuccess(c, req.Email, meta); err != nil {
			logger.Log.Warn("failed to reset login failures", "error", err)
		}
	}

	maxAge := int(result.ExpiresAt.Sub(h.clock.Now()) / time.Second)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AuthCookie, result.Token, maxAge, "/", "", h.cookieSecure, true)

	response.Success(c, http.StatusOK, "Login successful", result)
}

// countsAsFailure is true for rejected credentials. A missing one-time code
// is a prompt, not a failed attempt.
func countsAsFailure(err error) bool {
	var appErr *apperror.AppError
	if !errors.As(err, &appErr) || appErr.Code != http.StatusUnauthorized {
		return false
	}
	if details, ok := appErr.Details.(map[string]any); ok && details["otpRequired"] == true {
		return false
	}
	return true
}

// Logout godoc
// @Summary      Admin logout
// @Description  Clears the auth_token cookie and the caller's navigation state.
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response
// @Router       /auth/logout [post]
// @Security     BearerAuth
func (h *AuthHandler) Logout(c *gin.Context) {
	h.registry.Drop(c.GetString(string(domain.KeyAdminID)))

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AuthCookie, "", -1, "/", "", h.cookieSecure, true)
	response.Success(c, http.StatusOK, "Logged out", nil)
}

// Me godoc
// @Summary      Current admin
// @Tags         auth
// @Produce      json
// @Success      200  {object}  response.Response{data=domain.Admin}
// @Failure      401  {object}  response.Response
// @Router       /auth/me [get]
// @Security     BearerAuth
func (h *AuthHandler) Me(c *gin.Context) {
	admin, err := h.authUC.GetCurrentAdmin(c, c.GetString(string(domain.KeyAdminID)))
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Current admin", admin)
}
