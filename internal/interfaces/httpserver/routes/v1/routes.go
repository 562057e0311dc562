package v1

import (
	"github.com/gin-gonic/gin"

	"tee-chat/services/chat-gateway/internal/infrastructure/auth"
	"tee-chat/services/chat-gateway/internal/interfaces/httpserver/handlers"
)

// Routes holds the v1 route configuration.
type Routes struct {
	handlers *handlers.Provider
}

// NewRoutes creates a new v1 routes instance.
func NewRoutes(handlerProvider *handlers.Provider) *Routes {
	return &Routes{
		handlers: handlerProvider,
	}
}

// Register registers all v1 routes on the engine.
// If authMiddleware is provided, it will be applied to all v1 routes.
func (r *Routes) Register(engine *gin.Engine, authMiddleware gin.HandlerFunc) {
	v1 := engine.Group("/v1")
	if authMiddleware != nil {
		v1.Use(authMiddleware)
	}
	RegisterRealtimeRoutes(v1, r.handlers.Session)
	RegisterConversationRoutes(v1, r.handlers.Conversation)
	RegisterProjectRoutes(v1, r.handlers.Project)
	RegisterPreferenceRoutes(v1, r.handlers.Preference)
	RegisterExportRoutes(v1, r.handlers.Export)
	RegisterStatusRoutes(v1, r.handlers.Status)
}

// Helper functions shared by the v1 route handlers.

func extractUserID(c *gin.Context) string {
	if userID, exists := c.Get("user_id"); exists {
		if id, ok := userID.(string); ok && id != "" {
			return id
		}
	}
	return "anonymous"
}

func extractNumericUserID(c *gin.Context) uint {
	return auth.NumericUserID(extractUserID(c))
}
