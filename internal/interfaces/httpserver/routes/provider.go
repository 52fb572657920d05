package routes

import (
	"github.com/gin-gonic/gin"

	"genbot-api/internal/infrastructure/auth"
	"genbot-api/internal/interfaces/httpserver/handlers"
	v1 "genbot-api/internal/interfaces/httpserver/routes/v1"
)

// Provider registers all route groups.
type Provider struct {
	handlers *handlers.Provider
	auth     *auth.Validator
}

// NewProvider builds the route provider.
func NewProvider(handlerProvider *handlers.Provider, authValidator *auth.Validator) *Provider {
	return &Provider{
		handlers: handlerProvider,
		auth:     authValidator,
	}
}

// Register attaches webhook and management routes to the engine. The webhook
// stays public; the platform authenticates with the verify token, not a JWT.
func (p *Provider) Register(engine *gin.Engine) {
	engine.GET("/webhook", p.handlers.Webhook.Verify)
	engine.POST("/webhook", p.handlers.Webhook.Receive)

	v1.Register(engine, p.handlers, p.auth)
}
