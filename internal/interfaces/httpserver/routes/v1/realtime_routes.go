package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	domainsession "tee-chat/services/chat-gateway/internal/domain/session"
	"tee-chat/services/chat-gateway/internal/interfaces/httpserver/handlers"
	"tee-chat/services/chat-gateway/internal/interfaces/httpserver/requests/sessionreq"
	"tee-chat/services/chat-gateway/internal/interfaces/httpserver/responses"
	"tee-chat/services/chat-gateway/internal/interfaces/httpserver/responses/sessionres"
	"tee-chat/services/chat-gateway/internal/utils/platformerrors"
)

// RegisterRealtimeRoutes registers the realtime session routes.
func RegisterRealtimeRoutes(router gin.IRoutes, handler *handlers.SessionHandler) {
	router.POST("/realtime/sessions", createSession(handler))
	router.GET("/realtime/sessions", listSessions(handler))
	router.GET("/realtime/sessions/:id", getSession(handler))
	router.DELETE("/realtime/sessions/:id", deleteSession(handler))

	// In-call controls
	router.POST("/realtime/sessions/:id/mute", toggleMute(handler))
	router.POST("/realtime/sessions/:id/audio-mute", toggleAudioMute(handler))
	router.PUT("/realtime/sessions/:id/video-mode", setVideoMode(handler))
}

// createSession godoc
// @Summary      Create a realtime session
// @Description  Starts a voice/video session: fetches provider credentials, opens media and connects the chosen transport.
// @Tags         Realtime API
// @Accept       json
// @Produce      json
// @Param        request body sessionreq.CreateSessionRequest false "Session configuration"
// @Success      201 {object} sessionres.SessionResponse
// @Failure      400 {object} responses.ErrorResponse
// @Failure      401 {object} responses.ErrorResponse
// @Failure      403 {object} responses.ErrorResponse
// @Failure      502 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /realtime/sessions [post]
func createSession(handler *handlers.SessionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := extractUserID(c)

		var req sessionreq.CreateSessionRequest
		if c.Request.ContentLength > 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				platformerrors.WriteValidationError(c, "invalid request body: "+err.Error())
				return
			}
		}

		sess, err := handler.CreateSession(c.Request.Context(), userID, req)
		if err != nil {
			responses.HandleError(c, err, "failed to create session")
			return
		}

		c.JSON(http.StatusCreated, sessionres.NewSessionResponse(sess))
	}
}

// listSessions godoc
// @Summary      List realtime sessions
// @Description  Lists all active sessions for the current user
// @Tags         Realtime API
// @Produce      json
// @Success      200 {object} sessionres.ListSessionsResponse
// @Failure      401 {object} responses.ErrorResponse
// @Failure      500 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /realtime/sessions [get]
func listSessions(handler *handlers.SessionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := extractUserID(c)

		sessions, err := handler.ListUserSessions(c.Request.Context(), userID)
		if err != nil {
			responses.HandleError(c, err, "failed to list sessions")
			return
		}

		c.JSON(http.StatusOK, sessionres.NewListSessionsResponse(sessions))
	}
}

// getSession godoc
// @Summary      Get a realtime session
// @Description  Retrieves a specific session by ID. Users can only access their own sessions.
// @Tags         Realtime API
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} sessionres.SessionResponse
// @Failure      403 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /realtime/sessions/{id} [get]
func getSession(handler *handlers.SessionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := ownedSession(c, handler)
		if !ok {
			return
		}

		c.JSON(http.StatusOK, sessionres.NewSessionResponseForGet(sess))
	}
}

// deleteSession godoc
// @Summary      Delete a realtime session
// @Description  Stops the session, releasing media and transport resources. Idempotent.
// @Tags         Realtime API
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} sessionres.DeleteSessionResponse
// @Failure      403 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /realtime/sessions/{id} [delete]
func deleteSession(handler *handlers.SessionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := ownedSession(c, handler)
		if !ok {
			return
		}

		if err := handler.DeleteSession(c.Request.Context(), sess.ID); err != nil {
			responses.HandleError(c, err, "failed to delete session")
			return
		}

		c.JSON(http.StatusOK, sessionres.NewDeleteSessionResponse(sess.ID))
	}
}

// toggleMute godoc
// @Summary      Toggle microphone mute
// @Description  Flips microphone forwarding for the session and returns the new state.
// @Tags         Realtime API
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} sessionres.MuteResponse
// @Failure      403 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /realtime/sessions/{id}/mute [post]
func toggleMute(handler *handlers.SessionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := ownedSession(c, handler)
		if !ok {
			return
		}

		muted, err := handler.ToggleMute(c.Request.Context(), sess.ID)
		if err != nil {
			responses.HandleError(c, err, "failed to toggle mute")
			return
		}

		c.JSON(http.StatusOK, sessionres.MuteResponse{ID: sess.ID, Muted: muted})
	}
}

// toggleAudioMute godoc
// @Summary      Toggle playback mute
// @Description  Flips assistant audio playback for the session and returns the new state.
// @Tags         Realtime API
// @Produce      json
// @Param        id path string true "Session ID"
// @Success      200 {object} sessionres.MuteResponse
// @Failure      403 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /realtime/sessions/{id}/audio-mute [post]
func toggleAudioMute(handler *handlers.SessionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := ownedSession(c, handler)
		if !ok {
			return
		}

		muted, err := handler.ToggleAudioMute(c.Request.Context(), sess.ID)
		if err != nil {
			responses.HandleError(c, err, "failed to toggle audio mute")
			return
		}

		c.JSON(http.StatusOK, sessionres.MuteResponse{ID: sess.ID, Muted: muted})
	}
}

// setVideoMode godoc
// @Summary      Switch video mode
// @Description  Switches the session's video source between none, camera and screen. The previous capture stops before the new one starts.
// @Tags         Realtime API
// @Accept       json
// @Produce      json
// @Param        id path string true "Session ID"
// @Param        request body sessionreq.SetVideoModeRequest true "Target video mode"
// @Success      200 {object} sessionres.SessionResponse
// @Failure      400 {object} responses.ErrorResponse
// @Failure      403 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /realtime/sessions/{id}/video-mode [put]
func setVideoMode(handler *handlers.SessionHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		sess, ok := ownedSession(c, handler)
		if !ok {
			return
		}

		var req sessionreq.SetVideoModeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			platformerrors.WriteValidationError(c, "invalid request body: "+err.Error())
			return
		}

		if err := handler.SetVideoMode(c.Request.Context(), sess.ID, domainsession.VideoMode(req.Mode)); err != nil {
			responses.HandleError(c, err, "failed to switch video mode")
			return
		}

		updated, err := handler.GetSession(c.Request.Context(), sess.ID)
		if err != nil {
			responses.HandleError(c, err, "failed to get session")
			return
		}
		c.JSON(http.StatusOK, sessionres.NewSessionResponseForGet(updated))
	}
}

// ownedSession loads the session from the path parameter and enforces that it
// belongs to the authenticated user. It writes the error response itself.
func ownedSession(c *gin.Context, handler *handlers.SessionHandler) (*domainsession.Session, bool) {
	id := c.Param("id")
	userID := extractUserID(c)

	sess, err := handler.GetSession(c.Request.Context(), id)
	if err != nil {
		responses.HandleError(c, err, "failed to get session")
		return nil, false
	}

	if sess.UserID != userID {
		responses.HandleNewError(c, platformerrors.ErrorTypeForbidden, "access denied")
		return nil, false
	}
	return sess, true
}
