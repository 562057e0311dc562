// Package projectreq contains HTTP request DTOs for project endpoints.
package projectreq

// CreateProjectRequest represents the request to create a project.
type CreateProjectRequest struct {
	Name        string  `json:"name" binding:"required,max=120"`
	Description *string `json:"description,omitempty"`
}

// UpdateProjectRequest represents the request to update a project.
type UpdateProjectRequest struct {
	Name        *string `json:"name,omitempty" binding:"omitempty,max=120"`
	Description *string `json:"description,omitempty"`
}
