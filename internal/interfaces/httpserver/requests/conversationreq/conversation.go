// Package conversationreq contains HTTP request DTOs for conversation endpoints.
package conversationreq

// CreateConversationRequest represents the request to create a conversation.
type CreateConversationRequest struct {
	Title     *string           `json:"title,omitempty"`
	ProjectID *string           `json:"project_id,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// UpdateConversationRequest represents the request to update a conversation.
type UpdateConversationRequest struct {
	Title    *string           `json:"title,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// AppendMessageRequest adds one message to a conversation branch.
// An empty branch_id targets the shared base history.
type AppendMessageRequest struct {
	Role     string  `json:"role" binding:"required,oneof=user assistant"`
	Content  string  `json:"content" binding:"required"`
	Model    *string `json:"model,omitempty"`
	BranchID *string `json:"branch_id,omitempty"`
}

// SwitchBranchRequest changes the active branch of a conversation.
type SwitchBranchRequest struct {
	BranchID string `json:"branch_id" binding:"required"`
}

// ListConversationsQueryParams represents query parameters for listing conversations.
type ListConversationsQueryParams struct {
	Limit     *int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset    *int    `form:"offset" binding:"omitempty,min=0"`
	Order     *string `form:"order" binding:"omitempty,oneof=asc desc"`
	ProjectID *string `form:"project_id"`
}
