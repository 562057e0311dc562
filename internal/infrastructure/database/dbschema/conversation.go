package dbschema

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"gorm.io/datatypes"

	"tee-chat/services/chat-gateway/internal/domain/conversation"
)

// Conversation stores a conversation document: the base message sequence and
// every branch live in jsonb columns, branch resolution happens in the
// domain layer.
type Conversation struct {
	BaseModel
	PublicID        string                          `gorm:"type:varchar(50);uniqueIndex;not null"`
	Object          string                          `gorm:"type:varchar(50);not null;default:'conversation'"`
	Title           *string                         `gorm:"type:varchar(256)"`
	UserID          uint                            `gorm:"index:idx_conversation_user_status;not null"`
	ProjectID       *uint                           `gorm:"index:idx_conversation_project"`
	ProjectPublicID *string                         `gorm:"type:varchar(64);index:idx_conversation_project_public_id"`
	Status          conversation.ConversationStatus `gorm:"type:varchar(20);index:idx_conversation_user_status;not null;default:'active'"`
	ActiveBranchID  string                          `gorm:"type:varchar(50);not null;default:'main'"`
	BaseMessages    JSONMessages                    `gorm:"type:jsonb"`
	Branches        JSONBranches                    `gorm:"type:jsonb"`
	Metadata        datatypes.JSON                  `gorm:"type:jsonb"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// JSONMessages stores []conversation.Message as JSON.
type JSONMessages []conversation.Message

func (j JSONMessages) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONMessages) Scan(value any) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("expected []byte, got %T", value)
	}
	return json.Unmarshal(bytes, j)
}

// JSONBranches stores []conversation.Branch as JSON.
type JSONBranches []conversation.Branch

func (j JSONBranches) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONBranches) Scan(value any) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("expected []byte, got %T", value)
	}
	return json.Unmarshal(bytes, j)
}

// JSONMap stores map[string]string as JSON.
type JSONMap map[string]string

func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONMap) Scan(value any) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return fmt.Errorf("expected []byte, got %T", value)
	}
	return json.Unmarshal(bytes, j)
}

// NewSchemaConversation creates a row from the domain conversation.
func NewSchemaConversation(c *conversation.Conversation) *Conversation {
	var metadataJSON datatypes.JSON
	if len(c.Metadata) > 0 {
		if data, err := json.Marshal(c.Metadata); err == nil {
			metadataJSON = datatypes.JSON(data)
		}
	}
	return &Conversation{
		BaseModel: BaseModel{
			ID:        c.ID,
			CreatedAt: c.CreatedAt,
			UpdatedAt: c.UpdatedAt,
		},
		PublicID:        c.PublicID,
		Object:          c.Object,
		Title:           c.Title,
		UserID:          c.UserID,
		ProjectID:       c.ProjectID,
		ProjectPublicID: c.ProjectPublicID,
		Status:          c.Status,
		ActiveBranchID:  c.ActiveBranchID,
		BaseMessages:    JSONMessages(c.BaseMessages),
		Branches:        JSONBranches(c.Branches),
		Metadata:        metadataJSON,
	}
}

// EtoD converts the row to the domain conversation (Entity to Domain).
func (c *Conversation) EtoD() *conversation.Conversation {
	metadata := make(map[string]string)
	if len(c.Metadata) > 0 {
		_ = json.Unmarshal(c.Metadata, &metadata)
	}
	return &conversation.Conversation{
		ID:              c.ID,
		PublicID:        c.PublicID,
		Object:          c.Object,
		Title:           c.Title,
		UserID:          c.UserID,
		ProjectID:       c.ProjectID,
		ProjectPublicID: c.ProjectPublicID,
		Status:          c.Status,
		BaseMessages:    []conversation.Message(c.BaseMessages),
		Branches:        []conversation.Branch(c.Branches),
		ActiveBranchID:  c.ActiveBranchID,
		Metadata:        metadata,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}
