// Package projectres contains HTTP response DTOs for project endpoints.
package projectres

import (
	"time"

	"tee-chat/services/chat-gateway/internal/domain/project"
)

// ProjectResponse represents a project in API responses.
type ProjectResponse struct {
	ID          string    `json:"id"`
	Object      string    `json:"object"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListProjectsResponse represents the response for listing projects.
type ListProjectsResponse struct {
	Object string             `json:"object"`
	Data   []*ProjectResponse `json:"data"`
}

// DeleteProjectResponse represents the response for deleting a project.
type DeleteProjectResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

// NewProjectResponse creates a ProjectResponse from a domain Project.
func NewProjectResponse(p *project.Project) *ProjectResponse {
	return &ProjectResponse{
		ID:          p.PublicID,
		Object:      "project",
		Name:        p.Name,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// NewListProjectsResponse creates a ListProjectsResponse.
func NewListProjectsResponse(projects []*project.Project) *ListProjectsResponse {
	data := make([]*ProjectResponse, len(projects))
	for i, p := range projects {
		data[i] = NewProjectResponse(p)
	}

	return &ListProjectsResponse{
		Object: "list",
		Data:   data,
	}
}

// NewDeleteProjectResponse creates a DeleteProjectResponse.
func NewDeleteProjectResponse(id string) *DeleteProjectResponse {
	return &DeleteProjectResponse{
		ID:      id,
		Object:  "project.deleted",
		Deleted: true,
	}
}
