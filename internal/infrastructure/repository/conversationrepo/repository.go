// Package conversationrepo persists conversation documents with GORM.
package conversationrepo

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"tee-chat/services/chat-gateway/internal/domain/conversation"
	"tee-chat/services/chat-gateway/internal/domain/query"
	"tee-chat/services/chat-gateway/internal/infrastructure/database/dbschema"
	"tee-chat/services/chat-gateway/internal/utils/platformerrors"
)

// Repository handles conversation persistence.
type Repository struct {
	db *gorm.DB
}

var _ conversation.ConversationRepository = (*Repository)(nil)

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, conv *conversation.Conversation) error {
	entity := dbschema.NewSchemaConversation(conv)
	if err := r.db.WithContext(ctx).Create(entity).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to create conversation", err, "")
	}
	conv.ID = entity.ID
	return nil
}

func (r *Repository) FindByFilter(ctx context.Context, filter conversation.ConversationFilter, pagination *query.Pagination) ([]*conversation.Conversation, error) {
	var entities []dbschema.Conversation
	tx := r.applyFilter(r.db.WithContext(ctx), filter)
	tx = applyPagination(tx, pagination)
	if err := tx.Find(&entities).Error; err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to list conversations", err, "")
	}

	result := make([]*conversation.Conversation, 0, len(entities))
	for i := range entities {
		result = append(result, entities[i].EtoD())
	}
	return result, nil
}

func (r *Repository) Count(ctx context.Context, filter conversation.ConversationFilter) (int64, error) {
	var count int64
	tx := r.applyFilter(r.db.WithContext(ctx).Model(&dbschema.Conversation{}), filter)
	if err := tx.Count(&count).Error; err != nil {
		return 0, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to count conversations", err, "")
	}
	return count, nil
}

func (r *Repository) FindByPublicID(ctx context.Context, publicID string) (*conversation.Conversation, error) {
	var entity dbschema.Conversation
	err := r.db.WithContext(ctx).Where("public_id = ?", publicID).First(&entity).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
				platformerrors.ErrorTypeNotFound, "conversation not found", err, "")
		}
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to find conversation", err, "")
	}
	return entity.EtoD(), nil
}

func (r *Repository) FindByProjectID(ctx context.Context, projectID uint) ([]*conversation.Conversation, error) {
	var entities []dbschema.Conversation
	err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&entities).Error
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to list project conversations", err, "")
	}

	result := make([]*conversation.Conversation, 0, len(entities))
	for i := range entities {
		result = append(result, entities[i].EtoD())
	}
	return result, nil
}

func (r *Repository) Update(ctx context.Context, conv *conversation.Conversation) error {
	entity := dbschema.NewSchemaConversation(conv)
	if err := r.db.WithContext(ctx).Save(entity).Error; err != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to update conversation", err, "")
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&dbschema.Conversation{}, id)
	if result.Error != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to delete conversation", result.Error, "")
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound, "conversation not found", nil, "")
	}
	return nil
}

// AppendMessage adds a message to the base sequence or to one branch. The
// document row is read, mutated and saved in a transaction.
func (r *Repository) AppendMessage(ctx context.Context, conversationID uint, branchID string, msg *conversation.Message) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var entity dbschema.Conversation
		if err := tx.First(&entity, conversationID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return platformerrors.NewError(ctx, platformerrors.LayerRepository,
					platformerrors.ErrorTypeNotFound, "conversation not found", err, "")
			}
			return err
		}

		if branchID == "" {
			entity.BaseMessages = append(entity.BaseMessages, *msg)
		} else {
			found := false
			for i := range entity.Branches {
				if entity.Branches[i].ID == branchID {
					entity.Branches[i].Messages = append(entity.Branches[i].Messages, *msg)
					found = true
					break
				}
			}
			if !found {
				return platformerrors.NewError(ctx, platformerrors.LayerRepository,
					platformerrors.ErrorTypeNotFound,
					fmt.Sprintf("branch %s not found", branchID), nil, "")
			}
		}
		return tx.Save(&entity).Error
	})
}

func (r *Repository) SetActiveBranch(ctx context.Context, conversationID uint, branchID string) error {
	result := r.db.WithContext(ctx).
		Model(&dbschema.Conversation{}).
		Where("id = ?", conversationID).
		Update("active_branch_id", branchID)
	if result.Error != nil {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeDatabaseError, "failed to switch branch", result.Error, "")
	}
	if result.RowsAffected == 0 {
		return platformerrors.NewError(ctx, platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound, "conversation not found", nil, "")
	}
	return nil
}

func (r *Repository) applyFilter(tx *gorm.DB, filter conversation.ConversationFilter) *gorm.DB {
	if filter.ID != nil {
		tx = tx.Where("id = ?", *filter.ID)
	}
	if filter.PublicID != nil {
		tx = tx.Where("public_id = ?", *filter.PublicID)
	}
	if filter.UserID != nil {
		tx = tx.Where("user_id = ?", *filter.UserID)
	}
	if filter.ProjectID != nil {
		tx = tx.Where("project_id = ?", *filter.ProjectID)
	}
	return tx
}

func applyPagination(tx *gorm.DB, pagination *query.Pagination) *gorm.DB {
	if pagination == nil {
		return tx.Order("created_at ASC")
	}
	if pagination.After != nil {
		tx = tx.Where("id > ?", *pagination.After)
	}
	order := "ASC"
	if pagination.Order == "desc" {
		order = "DESC"
	}
	tx = tx.Order("created_at " + order)
	if pagination.Limit != nil {
		tx = tx.Limit(*pagination.Limit)
	}
	if pagination.Offset != nil {
		tx = tx.Offset(*pagination.Offset)
	}
	return tx
}
