package handlers

import (
	"context"
	"time"

	"tee-chat/services/chat-gateway/internal/domain/project"
	"tee-chat/services/chat-gateway/internal/interfaces/httpserver/requests/projectreq"
	"tee-chat/services/chat-gateway/internal/utils/idgen"
	"tee-chat/services/chat-gateway/internal/utils/platformerrors"
)

const projectIDLength = 16

// ProjectHandler handles project HTTP requests.
type ProjectHandler struct {
	projects project.ProjectRepository
}

// NewProjectHandler creates a new project handler.
func NewProjectHandler(projects project.ProjectRepository) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// CreateProject creates a project owned by the user.
func (h *ProjectHandler) CreateProject(
	ctx context.Context,
	userID uint,
	req projectreq.CreateProjectRequest,
) (*project.Project, error) {
	publicID, err := idgen.GenerateSecureID("proj", projectIDLength)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err,
			"could not generate project id")
	}

	proj := project.NewProject(publicID, userID, req.Name)
	proj.Description = req.Description

	if err := h.projects.Create(ctx, proj); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err,
			"failed to create project")
	}
	return proj, nil
}

// GetProject retrieves a project owned by the user.
func (h *ProjectHandler) GetProject(ctx context.Context, userID uint, publicID string) (*project.Project, error) {
	return h.owned(ctx, userID, publicID)
}

// ListProjects lists the user's projects.
func (h *ProjectHandler) ListProjects(ctx context.Context, userID uint) ([]*project.Project, error) {
	projects, err := h.projects.FindByUser(ctx, userID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err,
			"failed to list projects")
	}
	return projects, nil
}

// UpdateProject updates the name and description of a project.
func (h *ProjectHandler) UpdateProject(
	ctx context.Context,
	userID uint,
	publicID string,
	req projectreq.UpdateProjectRequest,
) (*project.Project, error) {
	proj, err := h.owned(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil && *req.Name != "" {
		proj.Name = *req.Name
	}
	if req.Description != nil {
		proj.Description = req.Description
	}
	proj.UpdatedAt = time.Now()

	if err := h.projects.Update(ctx, proj); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err,
			"failed to update project")
	}
	return proj, nil
}

// DeleteProject removes a project owned by the user.
func (h *ProjectHandler) DeleteProject(ctx context.Context, userID uint, publicID string) error {
	proj, err := h.owned(ctx, userID, publicID)
	if err != nil {
		return err
	}

	if err := h.projects.Delete(ctx, proj.ID); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerHandler, err,
			"failed to delete project")
	}
	return nil
}

func (h *ProjectHandler) owned(ctx context.Context, userID uint, publicID string) (*project.Project, error) {
	proj, err := h.projects.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err,
			"failed to get project")
	}
	if proj.UserID != userID {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerHandler,
			platformerrors.ErrorTypeForbidden, "access denied", nil, publicID)
	}
	return proj, nil
}
