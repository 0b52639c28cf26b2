// internal/handlers/auth/auth_handler.go
package auth

import (
	"context"
	"net/http"

	"ustaad-service/internal/domain/auth"
	"ustaad-service/internal/middleware"
	"ustaad-service/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Service is the slice of the auth service the HTTP layer drives.
type Service interface {
	Register(ctx context.Context, req *auth.RegisterRequest) (*auth.LoginResponse, error)
	Login(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResponse, error)
	Logout(ctx context.Context, identityID int64, jti string) error
	GetMe(ctx context.Context, identityID int64) (*auth.Me, error)
	UpdateProfile(ctx context.Context, identityID int64, req *auth.UpdateProfileRequest) (*auth.Me, error)
	UpdateSettings(ctx context.Context, identityID int64, settings map[string]interface{}) (*auth.Me, error)
	ChangePassword(ctx context.Context, identityID int64, req *auth.ChangePasswordRequest) error
}

type AuthHandler struct {
	authService Service
	logger      *zap.Logger
}

func NewAuthHandler(authService Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// ========== Registration ==========

// Register handles customer and provider sign-up (public endpoint)
func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	req.IPAddress = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	loginResp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		h.logger.Warn("registration failed",
			zap.String("role", req.Role),
			zap.Error(err),
		)
		response.HandleError(c, "registration failed", err)
		return
	}

	response.Success(c, http.StatusCreated, "registration successful", loginResp)
}

// ========== Login ==========

// Login accepts a phone number or email as the identifier.
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	req.IPAddress = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")

	loginResp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.logger.Warn("login failed",
			zap.String("ip", req.IPAddress),
			zap.Error(err),
		)
		response.HandleError(c, "login failed", err)
		return
	}

	h.logger.Info("user logged in",
		zap.Int64("identity_id", loginResp.User.IdentityID),
		zap.String("role", loginResp.User.Role),
	)

	response.Success(c, http.StatusOK, "login successful", loginResp)
}

// ========== Logout ==========

func (h *AuthHandler) Logout(c *gin.Context) {
	user := middleware.MustGetCurrentUser(c)

	if err := h.authService.Logout(c.Request.Context(), user.IdentityID, user.JTI); err != nil {
		h.logger.Error("logout failed",
			zap.Int64("identity_id", user.IdentityID),
			zap.Error(err),
		)
		response.HandleError(c, "logout failed", err)
		return
	}

	response.Success(c, http.StatusOK, "logout successful", nil)
}

// ========== Password Management ==========

// ChangePassword ends every session of the caller on success.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	user := middleware.MustGetCurrentUser(c)

	var req auth.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), user.IdentityID, &req); err != nil {
		response.HandleError(c, "password change failed", err)
		return
	}

	response.Success(c, http.StatusOK, "password changed successfully", nil)
}

// ========== Profile ==========

func (h *AuthHandler) GetMe(c *gin.Context) {
	user := middleware.MustGetCurrentUser(c)

	me, err := h.authService.GetMe(c.Request.Context(), user.IdentityID)
	if err != nil {
		response.HandleError(c, "failed to get profile", err)
		return
	}

	response.Success(c, http.StatusOK, "profile retrieved", me)
}

func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	user := middleware.MustGetCurrentUser(c)

	var req auth.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	me, err := h.authService.UpdateProfile(c.Request.Context(), user.IdentityID, &req)
	if err != nil {
		response.HandleError(c, "failed to update profile", err)
		return
	}

	response.Success(c, http.StatusOK, "profile updated", me)
}

func (h *AuthHandler) UpdateSettings(c *gin.Context) {
	user := middleware.MustGetCurrentUser(c)

	var req auth.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BindError(c, err)
		return
	}

	me, err := h.authService.UpdateSettings(c.Request.Context(), user.IdentityID, req.Settings)
	if err != nil {
		response.HandleError(c, "failed to update settings", err)
		return
	}

	response.Success(c, http.StatusOK, "settings updated", me)
}
