// Package preferencerepo persists workspace settings with GORM.
package preferencerepo

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tee-chat/services/chat-gateway/internal/domain/preference"
	"tee-chat/services/chat-gateway/internal/infrastructure/database/dbschema"
	"tee-chat/services/chat-gateway/internal/utils/platformerrors"
)

// Repository handles preference persistence.
type Repository struct {
	db *gorm.DB
}

var _ preference.PreferenceRepository = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindByUser returns the user's settings, or defaults when none are stored.
func (r *Repository) FindByUser(ctx context.Context, userID uint) (*preference.Preferences, error) {
	var entity dbschema.Preference
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &preference.Preferences{UserID: userID}, nil
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to load preferences", err, "")
	}
	return entity.EtoD(), nil
}

// Upsert writes the full settings row for the user.
func (r *Repository) Upsert(ctx context.Context, prefs *preference.Preferences) error {
	entity := dbschema.NewSchemaPreference(prefs)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			UpdateAll: true,
		}).
		Create(entity).Error
	if err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to save preferences", err, "")
	}
	return nil
}
