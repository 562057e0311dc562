// Package project groups conversations for project- and workspace-scoped
// operations.
package project

import (
	"context"
	"time"
)

// Project groups conversations under one workspace.
type Project struct {
	ID          uint      `json:"-"`
	PublicID    string    `json:"id"` // "proj_abc123"
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	UserID      uint      `json:"-"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewProject creates a project owned by the given user.
func NewProject(publicID string, userID uint, name string) *Project {
	now := time.Now()
	return &Project{
		PublicID:  publicID,
		Name:      name,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

type ProjectFilter struct {
	ID       *uint
	PublicID *string
	UserID   *uint
}

type ProjectRepository interface {
	Create(ctx context.Context, project *Project) error
	FindByPublicID(ctx context.Context, publicID string) (*Project, error)
	FindByUser(ctx context.Context, userID uint) ([]*Project, error)
	Update(ctx context.Context, project *Project) error
	Delete(ctx context.Context, id uint) error
}
