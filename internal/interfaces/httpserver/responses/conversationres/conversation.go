// Package conversationres contains HTTP response DTOs for conversation endpoints.
package conversationres

import (
	"time"

	"tee-chat/services/chat-gateway/internal/domain/conversation"
)

// BranchSummary describes one conversation-level branch without its messages.
type BranchSummary struct {
	ID           string    `json:"id"`
	Name         string    `json:"name,omitempty"`
	MessageCount int       `json:"message_count"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// ConversationResponse represents a conversation in API responses. Messages
// are the display-visible history: base messages plus the active branch.
type ConversationResponse struct {
	ID             string                 `json:"id"`
	Object         string                 `json:"object"`
	Title          string                 `json:"title"`
	ProjectID      *string                `json:"project_id,omitempty"`
	Status         string                 `json:"status"`
	ActiveBranchID string                 `json:"active_branch_id,omitempty"`
	Branches       []BranchSummary        `json:"branches,omitempty"`
	Messages       []conversation.Message `json:"messages,omitempty"`
	Metadata       map[string]string      `json:"metadata,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// ListConversationsResponse represents the response for listing conversations.
type ListConversationsResponse struct {
	Object  string                  `json:"object"`
	Data    []*ConversationResponse `json:"data"`
	HasMore bool                    `json:"has_more"`
}

// MessageListResponse represents the message history of one conversation.
type MessageListResponse struct {
	Object string                 `json:"object"`
	Data   []conversation.Message `json:"data"`
}

// DeleteConversationResponse represents the response for deleting a conversation.
type DeleteConversationResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

// NewConversationResponse builds the full response including visible messages.
func NewConversationResponse(conv *conversation.Conversation) *ConversationResponse {
	resp := NewConversationSummary(conv)
	resp.Messages = conv.VisibleMessages()
	return resp
}

// NewConversationSummary builds the response without the message history.
// Use this for list endpoints.
func NewConversationSummary(conv *conversation.Conversation) *ConversationResponse {
	branches := make([]BranchSummary, 0, len(conv.Branches))
	for i := range conv.Branches {
		b := &conv.Branches[i]
		branches = append(branches, BranchSummary{
			ID:           b.ID,
			Name:         b.Name,
			MessageCount: len(b.Messages),
			Active:       b.ID == conv.ActiveBranchID,
			CreatedAt:    b.CreatedAt,
		})
	}

	return &ConversationResponse{
		ID:             conv.PublicID,
		Object:         conv.Object,
		Title:          conv.DisplayTitle(),
		ProjectID:      conv.ProjectPublicID,
		Status:         string(conv.Status),
		ActiveBranchID: conv.ActiveBranchID,
		Branches:       branches,
		Metadata:       conv.Metadata,
		CreatedAt:      conv.CreatedAt,
		UpdatedAt:      conv.UpdatedAt,
	}
}

// NewListConversationsResponse creates a list response.
func NewListConversationsResponse(convs []*conversation.Conversation, hasMore bool) *ListConversationsResponse {
	data := make([]*ConversationResponse, len(convs))
	for i, conv := range convs {
		data[i] = NewConversationSummary(conv)
	}

	return &ListConversationsResponse{
		Object:  "list",
		Data:    data,
		HasMore: hasMore,
	}
}

// NewMessageListResponse creates a message list response.
func NewMessageListResponse(messages []conversation.Message) *MessageListResponse {
	if messages == nil {
		messages = []conversation.Message{}
	}
	return &MessageListResponse{Object: "list", Data: messages}
}

// NewDeleteConversationResponse creates a DeleteConversationResponse.
func NewDeleteConversationResponse(id string) *DeleteConversationResponse {
	return &DeleteConversationResponse{
		ID:      id,
		Object:  "conversation.deleted",
		Deleted: true,
	}
}
