package export

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"tee-chat/services/chat-gateway/internal/domain/conversation"
	"tee-chat/services/chat-gateway/internal/domain/preference"
	"tee-chat/services/chat-gateway/internal/domain/project"
	"tee-chat/services/chat-gateway/internal/infrastructure/metrics"
	"tee-chat/services/chat-gateway/internal/utils/platformerrors"
	"tee-chat/services/chat-gateway/internal/utils/stringutils"
)

// Limits bounds a single export run.
type Limits struct {
	MaxConversations int
	FetchConcurrency int
}

// Service assembles export documents from the stored conversation model and
// hands them to a format serializer.
type Service struct {
	conversations conversation.ConversationRepository
	projects      project.ProjectRepository
	preferences   preference.PreferenceRepository
	serializers   map[Format]Serializer
	limits        Limits
	now           func() time.Time
	log           zerolog.Logger
}

func NewService(
	conversations conversation.ConversationRepository,
	projects project.ProjectRepository,
	preferences preference.PreferenceRepository,
	serializers []Serializer,
	limits Limits,
	log zerolog.Logger,
) *Service {
	byFormat := make(map[Format]Serializer, len(serializers))
	for _, s := range serializers {
		byFormat[s.Format()] = s
	}
	if limits.FetchConcurrency <= 0 {
		limits.FetchConcurrency = 4
	}
	return &Service{
		conversations: conversations,
		projects:      projects,
		preferences:   preferences,
		serializers:   byFormat,
		limits:        limits,
		now:           time.Now,
		log:           log.With().Str("component", "export-service").Logger(),
	}
}

// Export runs one export for the given user. The same data always produces
// the same bytes for a given generation timestamp.
func (s *Service) Export(ctx context.Context, userID uint, req Request) (*Result, error) {
	serializer, ok := s.serializers[req.Format]
	if !ok {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			fmt.Sprintf("unsupported export format %q", req.Format), nil, "")
	}

	started := s.now()
	doc, err := s.buildDocument(ctx, userID, req)
	if err != nil {
		metrics.RecordExport(string(req.Format), "error", s.now().Sub(started).Seconds())
		return nil, err
	}

	data, err := serializer.Serialize(doc)
	if err != nil {
		metrics.RecordExport(string(req.Format), "error", s.now().Sub(started).Seconds())
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeSerialization, "export serialization failed", err, "",
			map[string]any{"format": string(req.Format), "scope": string(req.Scope)})
	}

	metrics.RecordExport(string(req.Format), "success", s.now().Sub(started).Seconds())
	s.log.Info().
		Str("scope", string(req.Scope)).
		Str("format", string(req.Format)).
		Int("conversations", doc.Stats.TotalConversations).
		Msg("export completed")

	return &Result{
		Filename:    stringutils.ExportFilename(doc.Title, doc.GeneratedAt, serializer.Extension()),
		ContentType: serializer.ContentType(),
		Data:        data,
		Stats:       doc.Stats,
	}, nil
}

func (s *Service) buildDocument(ctx context.Context, userID uint, req Request) (*Document, error) {
	var (
		convs []*conversation.Conversation
		title string
		err   error
	)

	switch req.Scope {
	case ScopeSingleChat:
		convs, title, err = s.fetchSingle(ctx, userID, req)
	case ScopeChatSet:
		convs, title, err = s.fetchSet(ctx, userID, req)
	case ScopeProject:
		convs, title, err = s.fetchProject(ctx, userID, req)
	case ScopeWorkspace:
		convs, title, err = s.fetchWorkspace(ctx, userID)
	default:
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			fmt.Sprintf("unsupported export scope %q", req.Scope), nil, "")
	}
	if err != nil {
		return nil, err
	}
	if len(convs) == 0 {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeExportUnavailable,
			"no conversations available for export", nil, "")
	}
	if max := s.limits.MaxConversations; max > 0 && len(convs) > max {
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			fmt.Sprintf("export exceeds the %d conversation limit", max), nil, "",
			map[string]any{"requested": len(convs)})
	}

	projectNames, err := s.projectNames(ctx, userID, convs)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Scope:       req.Scope,
		GeneratedAt: s.now().UTC(),
		Title:       title,
	}
	for _, conv := range convs {
		doc.Conversations = append(doc.Conversations, exportConversation(conv, projectNames))
	}
	// Stable output ordering regardless of fetch order.
	sort.SliceStable(doc.Conversations, func(i, j int) bool {
		a, b := doc.Conversations[i], doc.Conversations[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	doc.Stats = computeStats(doc.Conversations)

	if req.Scope == ScopeWorkspace && req.IncludeSettings {
		settings, err := s.workspaceSettings(ctx, userID)
		if err != nil {
			return nil, err
		}
		doc.Settings = settings
	}
	return doc, nil
}

func (s *Service) fetchSingle(ctx context.Context, userID uint, req Request) ([]*conversation.Conversation, string, error) {
	if len(req.ConversationIDs) != 1 {
		return nil, "", platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			"single_chat export requires exactly one conversation id", nil, "")
	}
	conv, err := s.fetchOwned(ctx, userID, req.ConversationIDs[0])
	if err != nil {
		return nil, "", err
	}
	return []*conversation.Conversation{conv}, conv.DisplayTitle(), nil
}

func (s *Service) fetchSet(ctx context.Context, userID uint, req Request) ([]*conversation.Conversation, string, error) {
	if len(req.ConversationIDs) == 0 {
		return nil, "", platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			"chat_set export requires at least one conversation id", nil, "")
	}

	convs := make([]*conversation.Conversation, len(req.ConversationIDs))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.limits.FetchConcurrency)
	for i, id := range req.ConversationIDs {
		g.Go(func() error {
			conv, err := s.fetchOwned(gctx, userID, id)
			if err != nil {
				return err
			}
			mu.Lock()
			convs[i] = conv
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, "", err
	}
	return convs, "chat_export", nil
}

func (s *Service) fetchProject(ctx context.Context, userID uint, req Request) ([]*conversation.Conversation, string, error) {
	if req.ProjectID == "" {
		return nil, "", platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			"project export requires a project id", nil, "")
	}
	proj, err := s.projects.FindByPublicID(ctx, req.ProjectID)
	if err != nil {
		return nil, "", platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeExportUnavailable, "project not found", err, "",
			map[string]any{"project_id": req.ProjectID})
	}
	if proj.UserID != userID {
		return nil, "", platformerrors.NewError(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeForbidden, "project belongs to another user", nil, "")
	}
	convs, err := s.conversations.FindByProjectID(ctx, proj.ID)
	if err != nil {
		return nil, "", platformerrors.AsError(ctx, platformerrors.LayerDomain, err,
			"could not load project conversations")
	}
	return convs, proj.Name, nil
}

func (s *Service) fetchWorkspace(ctx context.Context, userID uint) ([]*conversation.Conversation, string, error) {
	convs, err := s.conversations.FindByFilter(ctx,
		conversation.ConversationFilter{UserID: &userID}, nil)
	if err != nil {
		return nil, "", platformerrors.AsError(ctx, platformerrors.LayerDomain, err,
			"could not load workspace conversations")
	}
	return convs, "workspace_export", nil
}

func (s *Service) fetchOwned(ctx context.Context, userID uint, publicID string) (*conversation.Conversation, error) {
	conv, err := s.conversations.FindByPublicID(ctx, publicID)
	if err != nil {
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeExportUnavailable, "conversation not found", err, "",
			map[string]any{"conversation_id": publicID})
	}
	if conv.UserID != userID {
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeForbidden, "conversation belongs to another user", nil, "",
			map[string]any{"conversation_id": publicID})
	}
	return conv, nil
}

// projectNames resolves the project display names referenced by the export.
func (s *Service) projectNames(ctx context.Context, userID uint, convs []*conversation.Conversation) (map[string]string, error) {
	referenced := false
	for _, conv := range convs {
		if conv.ProjectPublicID != nil {
			referenced = true
			break
		}
	}
	if !referenced {
		return nil, nil
	}
	projects, err := s.projects.FindByUser(ctx, userID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err,
			"could not resolve project names")
	}
	names := make(map[string]string, len(projects))
	for _, proj := range projects {
		names[proj.PublicID] = proj.Name
	}
	return names, nil
}

func (s *Service) workspaceSettings(ctx context.Context, userID uint) (*WorkspaceSettings, error) {
	prefs, err := s.preferences.FindByUser(ctx, userID)
	if err != nil {
		return nil, platformerrors.AsError(ctx, platformerrors.LayerDomain, err,
			"could not load workspace settings")
	}
	masked := prefs.Masked()
	return &WorkspaceSettings{
		Voice:           masked.Voice,
		Language:        masked.Language,
		DefaultModel:    masked.DefaultModel,
		NotificationsOn: masked.NotificationsOn,
		ProviderAPIKeys: masked.ProviderAPIKeys,
	}, nil
}

// exportConversation flattens one conversation: visible messages of the base
// sequence plus the active branch, in timestamp order, with branch stats.
func exportConversation(conv *conversation.Conversation, projectNames map[string]string) ConversationExport {
	out := ConversationExport{
		ID:               conv.PublicID,
		Title:            conv.DisplayTitle(),
		CreatedAt:        conv.CreatedAt,
		UpdatedAt:        conv.UpdatedAt,
		HasBranches:      conv.HasBranchDivergence(),
		BranchCount:      conv.BranchCount(),
		BranchPointCount: conv.BranchPointCount(),
		ActiveBranchID:   conv.ActiveBranchID,
	}
	if conv.ProjectPublicID != nil {
		out.ProjectID = *conv.ProjectPublicID
		out.ProjectName = projectNames[*conv.ProjectPublicID]
	}
	for _, msg := range conv.VisibleMessages() {
		entry := MessageExport{
			ID:        msg.ID,
			Role:      string(msg.Role),
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		}
		if msg.Model != nil {
			entry.Model = *msg.Model
		}
		if msg.BranchID != nil {
			entry.BranchID = *msg.BranchID
		}
		out.Messages = append(out.Messages, entry)
	}
	return out
}

func computeStats(convs []ConversationExport) Stats {
	stats := Stats{TotalConversations: len(convs)}
	for _, conv := range convs {
		stats.TotalMessages += len(conv.Messages)
		stats.TotalBranches += conv.BranchPointCount
		if conv.HasBranches {
			stats.BranchedConversations++
		}
	}
	return stats
}
