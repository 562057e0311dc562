package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tee-chat/services/chat-gateway/internal/interfaces/httpserver/handlers"
	"tee-chat/services/chat-gateway/internal/interfaces/httpserver/requests/preferencereq"
	"tee-chat/services/chat-gateway/internal/interfaces/httpserver/responses"
	"tee-chat/services/chat-gateway/internal/utils/platformerrors"
)

// RegisterPreferenceRoutes registers the preference routes.
func RegisterPreferenceRoutes(router gin.IRoutes, handler *handlers.PreferenceHandler) {
	router.GET("/preferences", getPreferences(handler))
	router.PUT("/preferences", updatePreferences(handler))
}

// getPreferences godoc
// @Summary      Get preferences
// @Description  Returns the user's preferences. Provider API keys are masked.
// @Tags         Preferences
// @Produce      json
// @Success      200 {object} preference.Preferences
// @Security     BearerAuth
// @Router       /preferences [get]
func getPreferences(handler *handlers.PreferenceHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		prefs, err := handler.GetPreferences(c.Request.Context(), extractNumericUserID(c))
		if err != nil {
			responses.HandleError(c, err, "failed to get preferences")
			return
		}

		c.JSON(http.StatusOK, prefs)
	}
}

// updatePreferences godoc
// @Summary      Update preferences
// @Description  Replaces the stored preferences. Provider API keys merge per provider.
// @Tags         Preferences
// @Accept       json
// @Produce      json
// @Param        request body preferencereq.UpdatePreferencesRequest true "Preference fields"
// @Success      200 {object} preference.Preferences
// @Failure      400 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /preferences [put]
func updatePreferences(handler *handlers.PreferenceHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req preferencereq.UpdatePreferencesRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			platformerrors.WriteValidationError(c, "invalid request body: "+err.Error())
			return
		}

		prefs, err := handler.UpdatePreferences(c.Request.Context(), extractNumericUserID(c), req)
		if err != nil {
			responses.HandleError(c, err, "failed to update preferences")
			return
		}

		c.JSON(http.StatusOK, prefs)
	}
}
