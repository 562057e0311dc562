package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tee-chat/services/chat-gateway/internal/interfaces/httpserver/handlers"
	"tee-chat/services/chat-gateway/internal/interfaces/httpserver/requests/exportreq"
	"tee-chat/services/chat-gateway/internal/interfaces/httpserver/responses"
	"tee-chat/services/chat-gateway/internal/utils/platformerrors"
)

// RegisterExportRoutes registers the export routes.
func RegisterExportRoutes(router gin.IRoutes, handler *handlers.ExportHandler) {
	router.POST("/exports", runExport(handler))
}

// runExport godoc
// @Summary      Export conversations
// @Description  Exports conversations in the requested scope and format and returns the file as a download.
// @Tags         Exports
// @Accept       json
// @Produce      application/octet-stream
// @Param        request body exportreq.ExportRequest true "Export request"
// @Success      200 {file} file
// @Failure      400 {object} responses.ErrorResponse
// @Failure      403 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /exports [post]
func runExport(handler *handlers.ExportHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req exportreq.ExportRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			platformerrors.WriteValidationError(c, "invalid request body: "+err.Error())
			return
		}

		result, err := handler.RunExport(c.Request.Context(), extractNumericUserID(c), req)
		if err != nil {
			responses.HandleError(c, err, "failed to run export")
			return
		}

		c.Header("Content-Disposition", `attachment; filename="`+result.Filename+`"`)
		c.Header("X-Export-Conversations", strconv.Itoa(result.Stats.TotalConversations))
		c.Header("X-Export-Messages", strconv.Itoa(result.Stats.TotalMessages))
		c.Data(http.StatusOK, result.ContentType, result.Data)
	}
}
