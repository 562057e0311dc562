package handlers

import (
	"context"
	"time"

	"tee-chat/services/chat-gateway/internal/domain/conversation"
	"tee-chat/services/chat-gateway/internal/domain/project"
	"tee-chat/services/chat-gateway/internal/domain/query"
	"tee-chat/services/chat-gateway/internal/interfaces/httpserver/requests/conversationreq"
	"tee-chat/services/chat-gateway/internal/utils/idgen"
	"tee-chat/services/chat-gateway/internal/utils/platformerrors"
)

const (
	conversationIDLength = 24
	messageIDLength      = 16
	defaultListLimit     = 20
)

// ConversationHandler handles conversation HTTP requests.
type ConversationHandler struct {
	conversations conversation.ConversationRepository
	projects      project.ProjectRepository
}

// NewConversationHandler creates a new conversation handler.
func NewConversationHandler(
	conversations conversation.ConversationRepository,
	projects project.ProjectRepository,
) *ConversationHandler {
	return &ConversationHandler{
		conversations: conversations,
		projects:      projects,
	}
}

// CreateConversation creates a new conversation, optionally attached to a project.
func (h *ConversationHandler) CreateConversation(
	ctx context.Context,
	userID uint,
	req conversationreq.CreateConversationRequest,
) (*conversation.Conversation, error) {
	publicID, err := idgen.GenerateSecureID("conv", conversationIDLength)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err,
			"could not generate conversation id")
	}

	conv := conversation.NewConversation(publicID, userID, req.Title)
	if len(req.Metadata) > 0 {
		conv.Metadata = req.Metadata
	}

	if req.ProjectID != nil && *req.ProjectID != "" {
		proj, err := h.ownedProject(ctx, userID, *req.ProjectID)
		if err != nil {
			return nil, err
		}
		conv.ProjectID = &proj.ID
		conv.ProjectPublicID = &proj.PublicID
	}

	if err := h.conversations.Create(ctx, conv); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err,
			"failed to create conversation")
	}

	return conv, nil
}

// GetConversation retrieves a conversation owned by the user.
func (h *ConversationHandler) GetConversation(
	ctx context.Context,
	userID uint,
	publicID string,
) (*conversation.Conversation, error) {
	return h.ownedConversation(ctx, userID, publicID)
}

// ListConversations lists the user's conversations, newest first by default.
// It returns the page plus a has-more flag.
func (h *ConversationHandler) ListConversations(
	ctx context.Context,
	userID uint,
	params conversationreq.ListConversationsQueryParams,
) ([]*conversation.Conversation, bool, error) {
	limit := defaultListLimit
	if params.Limit != nil {
		limit = *params.Limit
	}
	offset := 0
	if params.Offset != nil {
		offset = *params.Offset
	}

	// Fetch one extra row to detect a further page.
	probe := limit + 1
	pagination := &query.Pagination{Limit: &probe, Offset: &offset, Order: "desc"}
	if params.Order != nil {
		pagination.Order = *params.Order
	}

	filter := conversation.ConversationFilter{UserID: &userID}
	if params.ProjectID != nil && *params.ProjectID != "" {
		proj, err := h.ownedProject(ctx, userID, *params.ProjectID)
		if err != nil {
			return nil, false, err
		}
		filter.ProjectID = &proj.ID
	}

	convs, err := h.conversations.FindByFilter(ctx, filter, pagination)
	if err != nil {
		return nil, false, platformerrors.AsError(ctx, platformerrors.LayerHandler, err,
			"failed to list conversations")
	}

	hasMore := len(convs) > limit
	if hasMore {
		convs = convs[:limit]
	}
	return convs, hasMore, nil
}

// UpdateConversation updates the title and metadata of a conversation.
func (h *ConversationHandler) UpdateConversation(
	ctx context.Context,
	userID uint,
	publicID string,
	req conversationreq.UpdateConversationRequest,
) (*conversation.Conversation, error) {
	conv, err := h.ownedConversation(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		conv.Title = req.Title
	}
	if req.Metadata != nil {
		conv.Metadata = req.Metadata
	}
	conv.UpdatedAt = time.Now()

	if err := h.conversations.Update(ctx, conv); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err,
			"failed to update conversation")
	}
	return conv, nil
}

// DeleteConversation removes a conversation owned by the user.
func (h *ConversationHandler) DeleteConversation(ctx context.Context, userID uint, publicID string) error {
	conv, err := h.ownedConversation(ctx, userID, publicID)
	if err != nil {
		return err
	}

	if err := h.conversations.Delete(ctx, conv.ID); err != nil {
		return platformerrors.AsError(ctx, platformerrors.LayerHandler, err,
			"failed to delete conversation")
	}
	return nil
}

// AppendMessage adds one message to a conversation. Without an explicit
// branch_id the message lands on the active branch.
func (h *ConversationHandler) AppendMessage(
	ctx context.Context,
	userID uint,
	publicID string,
	req conversationreq.AppendMessageRequest,
) (*conversation.Message, error) {
	conv, err := h.ownedConversation(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}

	if !conversation.ValidateMessageRole(req.Role) {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerHandler,
			platformerrors.ErrorTypeValidation, "invalid message role", nil, "role")
	}

	msgID, err := idgen.GenerateSecureID("msg", messageIDLength)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err,
			"could not generate message id")
	}

	branchID := conv.ActiveBranchID
	if req.BranchID != nil {
		branchID = *req.BranchID
	}

	msg := &conversation.Message{
		ID:        msgID,
		Role:      conversation.MessageRole(req.Role),
		Content:   req.Content,
		Timestamp: time.Now(),
		Model:     req.Model,
	}

	if err := h.conversations.AppendMessage(ctx, conv.ID, branchID, msg); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err,
			"failed to append message")
	}
	return msg, nil
}

// SwitchBranch changes the active branch of a conversation.
func (h *ConversationHandler) SwitchBranch(
	ctx context.Context,
	userID uint,
	publicID string,
	branchID string,
) (*conversation.Conversation, error) {
	conv, err := h.ownedConversation(ctx, userID, publicID)
	if err != nil {
		return nil, err
	}

	if err := conv.SwitchBranch(branchID); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerHandler,
			platformerrors.ErrorTypeNotFound, "branch not found", err, branchID)
	}

	if err := h.conversations.SetActiveBranch(ctx, conv.ID, branchID); err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err,
			"failed to switch branch")
	}
	return conv, nil
}

func (h *ConversationHandler) ownedConversation(ctx context.Context, userID uint, publicID string) (*conversation.Conversation, error) {
	conv, err := h.conversations.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err,
			"failed to get conversation")
	}
	if conv.UserID != userID {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerHandler,
			platformerrors.ErrorTypeForbidden, "access denied", nil, publicID)
	}
	return conv, nil
}

func (h *ConversationHandler) ownedProject(ctx context.Context, userID uint, publicID string) (*project.Project, error) {
	proj, err := h.projects.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerHandler, err,
			"invalid or inaccessible project_id")
	}
	if proj.UserID != userID {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerHandler,
			platformerrors.ErrorTypeForbidden, "access denied", nil, publicID)
	}
	return proj, nil
}
