package dbschema

import (
	"tee-chat/services/chat-gateway/internal/domain/project"
)

// Project stores a project row.
type Project struct {
	BaseModel
	PublicID    string  `gorm:"type:varchar(64);uniqueIndex;not null"`
	Name        string  `gorm:"type:varchar(256);not null"`
	Description *string `gorm:"type:text"`
	UserID      uint    `gorm:"index;not null"`
}

func (Project) TableName() string {
	return "projects"
}

// NewSchemaProject creates a row from the domain project.
func NewSchemaProject(p *project.Project) *Project {
	return &Project{
		BaseModel: BaseModel{
			ID:        p.ID,
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		},
		PublicID:    p.PublicID,
		Name:        p.Name,
		Description: p.Description,
		UserID:      p.UserID,
	}
}

// EtoD converts the row to the domain project.
func (p *Project) EtoD() *project.Project {
	return &project.Project{
		ID:          p.ID,
		PublicID:    p.PublicID,
		Name:        p.Name,
		Description: p.Description,
		UserID:      p.UserID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
