// Package routes assembles the versioned API route groups.
package routes

import (
	"github.com/gin-gonic/gin"

	"tee-chat/services/chat-gateway/internal/infrastructure/auth"
	"tee-chat/services/chat-gateway/internal/interfaces/httpserver/handlers"
	v1 "tee-chat/services/chat-gateway/internal/interfaces/httpserver/routes/v1"
)

// Provider mounts every API version on the engine. Auth applies to the
// versioned groups only; core routes (health, metrics, swagger) stay open.
type Provider struct {
	v1   *v1.Routes
	auth *auth.Validator
}

// NewProvider builds the route provider over the handler set.
func NewProvider(handlerProvider *handlers.Provider, authValidator *auth.Validator) *Provider {
	return &Provider{
		v1:   v1.NewRoutes(handlerProvider),
		auth: authValidator,
	}
}

// Register mounts the route groups on the engine.
func (p *Provider) Register(engine *gin.Engine) {
	var guard gin.HandlerFunc
	if p.auth != nil {
		guard = p.auth.Middleware()
	}
	p.v1.Register(engine, guard)
}
