// Package conversation models branching chat histories: a shared message
// prefix plus one active divergent continuation per conversation.
package conversation

import (
	"context"
	"fmt"
	"time"

	"tee-chat/services/chat-gateway/internal/domain/query"
)

// ===============================================
// Conversation Types
// ===============================================

type ConversationStatus string

const (
	ConversationStatusActive   ConversationStatus = "active"
	ConversationStatusArchived ConversationStatus = "archived"
	ConversationStatusDeleted  ConversationStatus = "deleted"
)

// ===============================================
// Conversation Structure
// ===============================================

// Conversation owns its messages and branches exclusively; branches are
// never shared across conversations. The visible history is BaseMessages
// followed by the active branch's messages, time-ordered.
type Conversation struct {
	ID              uint               `json:"-"`
	PublicID        string             `json:"id"` // "conv_abc123"
	Object          string             `json:"object"`
	Title           *string            `json:"title,omitempty"`
	UserID          uint               `json:"-"`
	ProjectID       *uint              `json:"-"`
	ProjectPublicID *string            `json:"project_id,omitempty"`
	Status          ConversationStatus `json:"status"`
	BaseMessages    []Message          `json:"base_messages,omitempty"`
	Branches        []Branch           `json:"branches,omitempty"`
	ActiveBranchID  string             `json:"active_branch_id,omitempty"`
	Metadata        map[string]string  `json:"metadata,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// NewConversation creates an active conversation with an empty main branch.
func NewConversation(publicID string, userID uint, title *string) *Conversation {
	now := time.Now()
	main := Branch{ID: "main", Name: "main", CreatedAt: now}
	return &Conversation{
		PublicID:       publicID,
		Object:         "conversation",
		Title:          title,
		UserID:         userID,
		Status:         ConversationStatusActive,
		Branches:       []Branch{main},
		ActiveBranchID: main.ID,
		Metadata:       make(map[string]string),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// ActiveBranch returns the branch selected by ActiveBranchID, or nil when
// the conversation has no branches yet.
func (c *Conversation) ActiveBranch() *Branch {
	for i := range c.Branches {
		if c.Branches[i].ID == c.ActiveBranchID {
			return &c.Branches[i]
		}
	}
	return nil
}

// Branch returns the branch with the given ID.
func (c *Conversation) Branch(branchID string) (*Branch, error) {
	for i := range c.Branches {
		if c.Branches[i].ID == branchID {
			return &c.Branches[i], nil
		}
	}
	return nil, fmt.Errorf("branch not found: %s", branchID)
}

// SwitchBranch changes the active branch.
func (c *Conversation) SwitchBranch(branchID string) error {
	if _, err := c.Branch(branchID); err != nil {
		return err
	}
	c.ActiveBranchID = branchID
	c.UpdatedAt = time.Now()
	return nil
}

// DisplayTitle returns the title or a fallback.
func (c *Conversation) DisplayTitle() string {
	if c.Title != nil && *c.Title != "" {
		return *c.Title
	}
	return "Untitled chat"
}

// ===============================================
// Conversation Repository
// ===============================================

type ConversationFilter struct {
	ID        *uint
	PublicID  *string
	UserID    *uint
	ProjectID *uint
}

type ConversationRepository interface {
	Create(ctx context.Context, conversation *Conversation) error
	FindByFilter(ctx context.Context, filter ConversationFilter, pagination *query.Pagination) ([]*Conversation, error)
	Count(ctx context.Context, filter ConversationFilter) (int64, error)
	FindByPublicID(ctx context.Context, publicID string) (*Conversation, error)
	FindByProjectID(ctx context.Context, projectID uint) ([]*Conversation, error)
	Update(ctx context.Context, conversation *Conversation) error
	Delete(ctx context.Context, id uint) error

	// Message operations on the stored model
	AppendMessage(ctx context.Context, conversationID uint, branchID string, msg *Message) error
	SetActiveBranch(ctx context.Context, conversationID uint, branchID string) error
}
