package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tee-chat/services/chat-gateway/internal/interfaces/httpserver/handlers"
	"tee-chat/services/chat-gateway/internal/interfaces/httpserver/requests/projectreq"
	"tee-chat/services/chat-gateway/internal/interfaces/httpserver/responses"
	"tee-chat/services/chat-gateway/internal/interfaces/httpserver/responses/projectres"
	"tee-chat/services/chat-gateway/internal/utils/platformerrors"
)

// RegisterProjectRoutes registers the project routes.
func RegisterProjectRoutes(router gin.IRoutes, handler *handlers.ProjectHandler) {
	router.POST("/projects", createProject(handler))
	router.GET("/projects", listProjects(handler))
	router.GET("/projects/:id", getProject(handler))
	router.PATCH("/projects/:id", updateProject(handler))
	router.DELETE("/projects/:id", deleteProject(handler))
}

// createProject godoc
// @Summary      Create a project
// @Tags         Projects
// @Accept       json
// @Produce      json
// @Param        request body projectreq.CreateProjectRequest true "Project fields"
// @Success      201 {object} projectres.ProjectResponse
// @Failure      400 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /projects [post]
func createProject(handler *handlers.ProjectHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req projectreq.CreateProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			platformerrors.WriteValidationError(c, "invalid request body: "+err.Error())
			return
		}

		proj, err := handler.CreateProject(c.Request.Context(), extractNumericUserID(c), req)
		if err != nil {
			responses.HandleError(c, err, "failed to create project")
			return
		}

		c.JSON(http.StatusCreated, projectres.NewProjectResponse(proj))
	}
}

// listProjects godoc
// @Summary      List projects
// @Tags         Projects
// @Produce      json
// @Success      200 {object} projectres.ListProjectsResponse
// @Security     BearerAuth
// @Router       /projects [get]
func listProjects(handler *handlers.ProjectHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		projects, err := handler.ListProjects(c.Request.Context(), extractNumericUserID(c))
		if err != nil {
			responses.HandleError(c, err, "failed to list projects")
			return
		}

		c.JSON(http.StatusOK, projectres.NewListProjectsResponse(projects))
	}
}

// getProject godoc
// @Summary      Get a project
// @Tags         Projects
// @Produce      json
// @Param        id path string true "Project ID"
// @Success      200 {object} projectres.ProjectResponse
// @Failure      403 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id} [get]
func getProject(handler *handlers.ProjectHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		proj, err := handler.GetProject(c.Request.Context(), extractNumericUserID(c), c.Param("id"))
		if err != nil {
			responses.HandleError(c, err, "failed to get project")
			return
		}

		c.JSON(http.StatusOK, projectres.NewProjectResponse(proj))
	}
}

// updateProject godoc
// @Summary      Update a project
// @Tags         Projects
// @Accept       json
// @Produce      json
// @Param        id path string true "Project ID"
// @Param        request body projectreq.UpdateProjectRequest true "Fields to update"
// @Success      200 {object} projectres.ProjectResponse
// @Failure      400 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id} [patch]
func updateProject(handler *handlers.ProjectHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req projectreq.UpdateProjectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			platformerrors.WriteValidationError(c, "invalid request body: "+err.Error())
			return
		}

		proj, err := handler.UpdateProject(c.Request.Context(), extractNumericUserID(c), c.Param("id"), req)
		if err != nil {
			responses.HandleError(c, err, "failed to update project")
			return
		}

		c.JSON(http.StatusOK, projectres.NewProjectResponse(proj))
	}
}

// deleteProject godoc
// @Summary      Delete a project
// @Tags         Projects
// @Produce      json
// @Param        id path string true "Project ID"
// @Success      200 {object} projectres.DeleteProjectResponse
// @Failure      403 {object} responses.ErrorResponse
// @Failure      404 {object} responses.ErrorResponse
// @Security     BearerAuth
// @Router       /projects/{id} [delete]
func deleteProject(handler *handlers.ProjectHandler) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if err := handler.DeleteProject(c.Request.Context(), extractNumericUserID(c), id); err != nil {
			responses.HandleError(c, err, "failed to delete project")
			return
		}

		c.JSON(http.StatusOK, projectres.NewDeleteProjectResponse(id))
	}
}
