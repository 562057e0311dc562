// Package projectrepo persists projects with GORM.
package projectrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"tee-chat/services/chat-gateway/internal/domain/project"
	"tee-chat/services/chat-gateway/internal/infrastructure/database/dbschema"
	"tee-chat/services/chat-gateway/internal/utils/platformerrors"
)

// Repository handles project persistence.
type Repository struct {
	db *gorm.DB
}

var _ project.ProjectRepository = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, proj *project.Project) error {
	entity := dbschema.NewSchemaProject(proj)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to create project", err, "")
	}
	proj.ID = entity.ID
	return nil
}

func (r *Repository) FindByPublicID(ctx context.Context, publicID string) (*project.Project, error) {
	var entity dbschema.Project
	err := r.db.WithContext(ctx).Where("public_id = ?", publicID).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound, "project not found", err, "")
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to find project", err, "")
	}
	return entity.EtoD(), nil
}

func (r *Repository) FindByUser(ctx context.Context, userID uint) ([]*project.Project, error) {
	var entities []dbschema.Project
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&entities).Error
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to list projects", err, "")
	}

	result := make([]*project.Project, 0, len(entities))
	for i := range entities {
		result = append(result, entities[i].EtoD())
	}
	return result, nil
}

func (r *Repository) Update(ctx context.Context, proj *project.Project) error {
	entity := dbschema.NewSchemaProject(proj)
	if err := r.db.WithContext(ctx).Save(entity).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to update project", err, "")
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&dbschema.Project{}, id)
	if result.Error != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to delete project", result.Error, "")
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound, "project not found", nil, "")
	}
	return nil
}
