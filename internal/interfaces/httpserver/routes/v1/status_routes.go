package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tee-chat/services/chat-gateway/internal/interfaces/httpserver/handlers"
	"tee-chat/services/chat-gateway/internal/interfaces/httpserver/responses"
)

// RegisterStatusRoutes registers the provider status routes.
func RegisterStatusRoutes(router gin.IRoutes, handler *handlers.StatusHandler) {
	router.GET("/realtime/provider", providerStatus(handler))
}

// providerStatus godoc
// @Summary      Realtime provider status
// @Description  Reports which realtime provider backs the gateway and its active room count.
// @Tags         Realtime API
// @Produce      json
// @Success      200 {object} handlers.ProviderStatus
// @Failure      502 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /realtime/provider [get]
func providerStatus(handler *handlers.StatusHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, err := handler.ProviderStatus(c.Request.Context())
		if err != nil {
			responses.HandleError(c, err, "failed to get provider status")
			return
		}

		c.JSON(http.StatusOK, status)
	}
}
