package v1

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tee-chat/services/chat-gateway/internal/interfaces/httpserver/handlers"
	"tee-chat/services/chat-gateway/internal/interfaces/httpserver/requests/conversationreq"
	"tee-chat/services/chat-gateway/internal/interfaces/httpserver/responses"
	"tee-chat/services/chat-gateway/internal/interfaces/httpserver/responses/conversationres"
	"tee-chat/services/chat-gateway/internal/utils/platformerrors"
)

// RegisterConversationRoutes registers the conversation routes.
func RegisterConversationRoutes(router gin.IRoutes, handler *handlers.ConversationHandler) {
	router.POST("/conversations", createConversation(handler))
	router.GET("/conversations", listConversations(handler))
	router.GET("/conversations/:id", getConversation(handler))
	router.PATCH("/conversations/:id", updateConversation(handler))
	router.DELETE("/conversations/:id", deleteConversation(handler))

	router.GET("/conversations/:id/messages", listMessages(handler))
	router.POST("/conversations/:id/messages", appendMessage(handler))
	router.POST("/conversations/:id/branch", switchBranch(handler))
}

// createConversation godoc
// @Summary      Create a conversation
// @Description  Creates an empty conversation with a main branch, optionally attached to a project.
// @Tags         Conversations
// @Accept       json
// @Produce      json
// @Param        request body conversationreq.CreateConversationRequest false "Conversation fields"
// @Success      201 {object} conversationres.ConversationResponse
// @Failure      400 {object} responses.ErrorResponse
// @Failure      403 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /conversations [post]
func createConversation(handler *handlers.ConversationHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req conversationreq.CreateConversationRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				platformerrors.WriteValidationError(c, "invalid request body: "+err.Error())
				return
			}
		}

		conv, err := handler.CreateConversation(c.Request.Context(), extractNumericUserID(c), req)
		if err != nil {
			responses.HandleError(c, err, "failed to create conversation")
			return
		}

		c.JSON(http.StatusCreated, conversationres.NewConversationResponse(conv))
	}
}

// listConversations godoc
// @Summary      List conversations
// @Description  Lists the user's conversations newest first, optionally filtered by project.
// @Tags         Conversations
// @Produce      json
// @Param        limit query int false "Page size (max 100)"
// @Param        offset query int false "Page offset"
// @Param        order query string false "Sort order: asc or desc"
// @Param        project_id query string false "Filter by project"
// @Success      200 {object} conversationres.ListConversationsResponse
// @Failure      400 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /conversations [get]
func listConversations(handler *handlers.ConversationHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params conversationreq.ListConversationsQueryParams
		if err := c.ShouldBindQuery(&params); err != nil {
			platformerrors.WriteValidationError(c, "invalid query parameters: "+err.Error())
			return
		}

		convs, hasMore, err := handler.ListConversations(c.Request.Context(), extractNumericUserID(c), params)
		if err != nil {
			responses.HandleError(c, err, "failed to list conversations")
			return
		}

		c.JSON(http.StatusOK, conversationres.NewListConversationsResponse(convs, hasMore))
	}
}

// getConversation godoc
// @Summary      Get a conversation
// @Description  Returns the conversation with its display-visible history: base messages plus the active branch.
// @Tags         Conversations
// @Produce      json
// @Param        id path string true "Conversation ID"
// @Success      200 {object} conversationres.ConversationResponse
// @Failure      403 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /conversations/{id} [get]
func getConversation(handler *handlers.ConversationHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		conv, err := handler.GetConversation(c.Request.Context(), extractNumericUserID(c), c.Param("id"))
		if err != nil {
			responses.HandleError(c, err, "failed to get conversation")
			return
		}

		c.JSON(http.StatusOK, conversationres.NewConversationResponse(conv))
	}
}

// updateConversation godoc
// @Summary      Update a conversation
// @Description  Updates the title and metadata of a conversation.
// @Tags         Conversations
// @Accept       json
// @Produce      json
// @Param        id path string true "Conversation ID"
// @Param        request body conversationreq.UpdateConversationRequest true "Fields to update"
// @Success      200 {object} conversationres.ConversationResponse
// @Failure      400 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /conversations/{id} [patch]
func updateConversation(handler *handlers.ConversationHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req conversationreq.UpdateConversationRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			platformerrors.WriteValidationError(c, "invalid request body: "+err.Error())
			return
		}

		conv, err := handler.UpdateConversation(c.Request.Context(), extractNumericUserID(c), c.Param("id"), req)
		if err != nil {
			responses.HandleError(c, err, "failed to update conversation")
			return
		}

		c.JSON(http.StatusOK, conversationres.NewConversationResponse(conv))
	}
}

// deleteConversation godoc
// @Summary      Delete a conversation
// @Tags         Conversations
// @Produce      json
// @Param        id path string true "Conversation ID"
// @Success      200 {object} conversationres.DeleteConversationResponse
// @Failure      403 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /conversations/{id} [delete]
func deleteConversation(handler *handlers.ConversationHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := handler.DeleteConversation(c.Request.Context(), extractNumericUserID(c), id); err != nil {
			responses.HandleError(c, err, "failed to delete conversation")
			return
		}

		c.JSON(http.StatusOK, conversationres.NewDeleteConversationResponse(id))
	}
}

// listMessages godoc
// @Summary      List conversation messages
// @Description  Returns the visible message history (base messages plus the active branch, streaming and empty entries excluded). Pass raw=1 for the unfiltered sequence.
// @Tags         Conversations
// @Produce      json
// @Param        id path string true "Conversation ID"
// @Param        raw query bool false "Include streaming and empty-content entries"
// @Success      200 {object} conversationres.MessageListResponse
// @Failure      403 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /conversations/{id}/messages [get]
func listMessages(handler *handlers.ConversationHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		conv, err := handler.GetConversation(c.Request.Context(), extractNumericUserID(c), c.Param("id"))
		if err != nil {
			responses.HandleError(c, err, "failed to list messages")
			return
		}

		messages := conv.VisibleMessages()
		if raw, _ := strconv.ParseBool(c.Query("raw")); raw {
			messages = conv.RawMessages()
		}

		c.JSON(http.StatusOK, conversationres.NewMessageListResponse(messages))
	}
}

// appendMessage godoc
// @Summary      Append a message
// @Description  Appends one message to the active branch, or to an explicit branch when branch_id is set.
// @Tags         Conversations
// @Accept       json
// @Produce      json
// @Param        id path string true "Conversation ID"
// @Param        request body conversationreq.AppendMessageRequest true "Message"
// @Success      201 {object} conversation.Message
// @Failure      400 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /conversations/{id}/messages [post]
func appendMessage(handler *handlers.ConversationHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req conversationreq.AppendMessageRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			platformerrors.WriteValidationError(c, "invalid request body: "+err.Error())
			return
		}

		msg, err := handler.AppendMessage(c.Request.Context(), extractNumericUserID(c), c.Param("id"), req)
		if err != nil {
			responses.HandleError(c, err, "failed to append message")
			return
		}

		c.JSON(http.StatusCreated, msg)
	}
}

// switchBranch godoc
// @Summary      Switch the active branch
// @Description  Changes which branch forms the visible continuation of the conversation.
// @Tags         Conversations
// @Accept       json
// @Produce      json
// @Param        id path string true "Conversation ID"
// @Param        request body conversationreq.SwitchBranchRequest true "Target branch"
// @Success      200 {object} conversationres.ConversationResponse
// @Failure      400 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /conversations/{id}/branch [post]
func switchBranch(handler *handlers.ConversationHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req conversationreq.SwitchBranchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			platformerrors.WriteValidationError(c, "invalid request body: "+err.Error())
			return
		}

		conv, err := handler.SwitchBranch(c.Request.Context(), extractNumericUserID(c), c.Param("id"), req.BranchID)
		if err != nil {
			responses.HandleError(c, err, "failed to switch branch")
			return
		}

		c.JSON(http.StatusOK, conversationres.NewConversationResponse(conv))
	}
}
