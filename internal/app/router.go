// internal/app/router.go
package app

import (
	"net/http"

	"ustaad-service/internal/domain/auth"
	authHandler "ustaad-service/internal/handlers/auth"
	requestHandler "ustaad-service/internal/handlers/request"
	validationHandler "ustaad-service/internal/handlers/validation"
	wsHandler "ustaad-service/internal/handlers/websocket"
	"ustaad-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	AuthHandler       *authHandler.AuthHandler
	RequestHandler    *requestHandler.RequestHandler
	ValidationHandler *validationHandler.ValidationHandler
	WSHandler         *wsHandler.WebSocketHandler
	AuthMiddleware    *middleware.AuthMiddleware
	Metrics           http.Handler
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": "1.0.0"})
	})

	if h.Metrics != nil {
		r.GET("/metrics", gin.WrapH(h.Metrics))
	}

	// ==================== WebSocket ====================
	r.GET("/ws", h.WSHandler.HandleConnection)
	r.GET("/ws/stats", h.WSHandler.GetStats)

	// ==================== Field Validation ====================
	api.POST("/validate/:field", h.ValidationHandler.Check)

	// ==================== Public Auth Routes ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/register", h.AuthHandler.Register)
		authPublic.POST("/login", h.AuthHandler.Login)
	}

	// ==================== Authenticated Auth Routes ====================
	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.POST("/logout", h.AuthHandler.Logout)
		authProtected.GET("/me", h.AuthHandler.GetMe)
		authProtected.PUT("/profile", h.AuthHandler.UpdateProfile)
		authProtected.PUT("/settings", h.AuthHandler.UpdateSettings)
		authProtected.PUT("/change-password", h.AuthHandler.ChangePassword)
	}

	// ==================== Service Requests ====================
	requests := api.Group("/requests")
	requests.Use(h.AuthMiddleware.Auth())
	{
		customerOnly := h.AuthMiddleware.RequireRole(auth.RoleCustomer)
		providerOnly := h.AuthMiddleware.RequireRole(auth.RoleProvider)

		requests.POST("", customerOnly, h.RequestHandler.Create)
		requests.GET("/mine", customerOnly, h.RequestHandler.Mine)
		requests.POST("/:id/cancel", customerOnly, h.RequestHandler.Cancel)

		requests.GET("/open", providerOnly, h.RequestHandler.Open)
		requests.POST("/:id/accept", providerOnly, h.RequestHandler.Accept)
		requests.POST("/:id/reject", providerOnly, h.RequestHandler.Reject)

		requests.GET("/:id", h.RequestHandler.Get)
	}
}
