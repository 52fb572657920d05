package v1

import (
	"github.com/gin-gonic/gin"

	"genbot-api/internal/infrastructure/auth"
	"genbot-api/internal/interfaces/httpserver/handlers"
)

// Register attaches the v1 management API routes behind auth.
func Register(engine *gin.Engine, h *handlers.Provider, authValidator *auth.Validator) {
	group := engine.Group("/v1")
	group.Use(authValidator.Middleware())

	group.POST("/messages/send", h.Message.Send)
	group.GET("/conversations", h.Message.List)
	group.GET("/conversations/:user_id/history", h.Message.History)
}
