package handlers

import (
	"context"
	"errors"
	"testing"

	"tee-chat/services/chat-gateway/internal/domain/conversation"
	"tee-chat/services/chat-gateway/internal/domain/project"
	"tee-chat/services/chat-gateway/internal/domain/query"
	"tee-chat/services/chat-gateway/internal/interfaces/httpserver/requests/conversationreq"
	"tee-chat/services/chat-gateway/internal/utils/platformerrors"
)

var errNotFound = errors.New("record not found")

type fakeConversationRepo struct {
	byPublicID map[string]*conversation.Conversation
	created    []*conversation.Conversation
	appended   map[string][]*conversation.Message // keyed by branch id, "" for base
	active     string
	nextID     uint
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{
		byPublicID: make(map[string]*conversation.Conversation),
		appended:   make(map[string][]*conversation.Message),
	}
}

func (f *fakeConversationRepo) add(conv *conversation.Conversation) {
	f.byPublicID[conv.PublicID] = conv
}

func (f *fakeConversationRepo) Create(_ context.Context, conv *conversation.Conversation) error {
	f.nextID++
	conv.ID = f.nextID
	f.created = append(f.created, conv)
	f.byPublicID[conv.PublicID] = conv
	return nil
}

func (f *fakeConversationRepo) FindByFilter(_ context.Context, filter conversation.ConversationFilter, pagination *query.Pagination) ([]*conversation.Conversation, error) {
	var out []*conversation.Conversation
	for _, conv := range f.byPublicID {
		if filter.UserID != nil && conv.UserID != *filter.UserID {
			continue
		}
		if filter.ProjectID != nil && (conv.ProjectID == nil || *conv.ProjectID != *filter.ProjectID) {
			continue
		}
		out = append(out, conv)
	}
	if pagination != nil && pagination.Limit != nil && len(out) > *pagination.Limit {
		out = out[:*pagination.Limit]
	}
	return out, nil
}

func (f *fakeConversationRepo) Count(context.Context, conversation.ConversationFilter) (int64, error) {
	return int64(len(f.byPublicID)), nil
}

func (f *fakeConversationRepo) FindByPublicID(_ context.Context, publicID string) (*conversation.Conversation, error) {
	conv, ok := f.byPublicID[publicID]
	if !ok {
		return nil, platformerrors.NewError(context.Background(), platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound, "conversation not found", errNotFound, publicID)
	}
	return conv, nil
}

func (f *fakeConversationRepo) FindByProjectID(context.Context, uint) ([]*conversation.Conversation, error) {
	return nil, nil
}

func (f *fakeConversationRepo) Update(context.Context, *conversation.Conversation) error { return nil }
func (f *fakeConversationRepo) Delete(context.Context, uint) error                       { return nil }

func (f *fakeConversationRepo) AppendMessage(_ context.Context, _ uint, branchID string, msg *conversation.Message) error {
	f.appended[branchID] = append(f.appended[branchID], msg)
	return nil
}

func (f *fakeConversationRepo) SetActiveBranch(_ context.Context, _ uint, branchID string) error {
	f.active = branchID
	return nil
}

type fakeProjectRepo struct {
	byPublicID map[string]*project.Project
}

func (f *fakeProjectRepo) Create(context.Context, *project.Project) error { return nil }
func (f *fakeProjectRepo) FindByPublicID(_ context.Context, publicID string) (*project.Project, error) {
	proj, ok := f.byPublicID[publicID]
	if !ok {
		return nil, platformerrors.NewError(context.Background(), platformerrors.LayerRepository,
			platformerrors.ErrorTypeNotFound, "project not found", errNotFound, publicID)
	}
	return proj, nil
}
func (f *fakeProjectRepo) FindByUser(context.Context, uint) ([]*project.Project, error) {
	return nil, nil
}
func (f *fakeProjectRepo) Update(context.Context, *project.Project) error { return nil }
func (f *fakeProjectRepo) Delete(context.Context, uint) error             { return nil }

func newConversationFixture(t *testing.T) (*ConversationHandler, *fakeConversationRepo, *fakeProjectRepo) {
	t.Helper()
	convs := newFakeConversationRepo()
	projs := &fakeProjectRepo{byPublicID: make(map[string]*project.Project)}
	return NewConversationHandler(convs, projs), convs, projs
}

func assertErrorType(t *testing.T, err error, want platformerrors.ErrorType) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", want)
	}
	if !platformerrors.IsType(err, want) {
		t.Fatalf("expected %s error, got %v", want, err)
	}
}

func strPtr(s string) *string { return &s }

func TestCreateConversationAttachesProject(t *testing.T) {
	handler, convs, projs := newConversationFixture(t)
	projs.byPublicID["proj_1"] = &project.Project{ID: 7, PublicID: "proj_1", UserID: 42, Name: "Research"}

	conv, err := handler.CreateConversation(context.Background(), 42, conversationreq.CreateConversationRequest{
		Title:     strPtr("Notes"),
		ProjectID: strPtr("proj_1"),
	})
	if err != nil {
		t.Fatalf("CreateConversation: %v", err)
	}

	if conv.ProjectID == nil || *conv.ProjectID != 7 {
		t.Fatalf("expected project id 7, got %v", conv.ProjectID)
	}
	if conv.ActiveBranchID != "main" {
		t.Fatalf("expected main branch active, got %q", conv.ActiveBranchID)
	}
	if len(convs.created) != 1 {
		t.Fatalf("expected one stored conversation, got %d", len(convs.created))
	}
}

func TestCreateConversationRejectsForeignProject(t *testing.T) {
	handler, _, projs := newConversationFixture(t)
	projs.byPublicID["proj_1"] = &project.Project{ID: 7, PublicID: "proj_1", UserID: 99, Name: "Other"}

	_, err := handler.CreateConversation(context.Background(), 42, conversationreq.CreateConversationRequest{
		ProjectID: strPtr("proj_1"),
	})
	assertErrorType(t, err, platformerrors.ErrorTypeForbidden)
}

func TestGetConversationEnforcesOwnership(t *testing.T) {
	handler, convs, _ := newConversationFixture(t)
	convs.add(conversation.NewConversation("conv_1", 42, strPtr("Mine")))

	if _, err := handler.GetConversation(context.Background(), 42, "conv_1"); err != nil {
		t.Fatalf("owner lookup: %v", err)
	}

	_, err := handler.GetConversation(context.Background(), 7, "conv_1")
	assertErrorType(t, err, platformerrors.ErrorTypeForbidden)
}

func TestGetConversationNotFound(t *testing.T) {
	handler, _, _ := newConversationFixture(t)

	_, err := handler.GetConversation(context.Background(), 42, "conv_missing")
	assertErrorType(t, err, platformerrors.ErrorTypeNotFound)
}

func TestListConversationsReportsHasMore(t *testing.T) {
	handler, convs, _ := newConversationFixture(t)
	convs.add(conversation.NewConversation("conv_1", 42, nil))
	convs.add(conversation.NewConversation("conv_2", 42, nil))
	convs.add(conversation.NewConversation("conv_3", 42, nil))

	limit := 2
	page, hasMore, err := handler.ListConversations(context.Background(), 42,
		conversationreq.ListConversationsQueryParams{Limit: &limit})
	if err != nil {
		t.Fatalf("ListConversations: %v", err)
	}
	if len(page) != 2 {
		t.Fatalf("expected page of 2, got %d", len(page))
	}
	if !hasMore {
		t.Fatal("expected hasMore for a third conversation")
	}
}

func TestAppendMessageTargetsActiveBranch(t *testing.T) {
	handler, convs, _ := newConversationFixture(t)
	conv := conversation.NewConversation("conv_1", 42, nil)
	conv.ID = 3
	convs.add(conv)

	msg, err := handler.AppendMessage(context.Background(), 42, "conv_1", conversationreq.AppendMessageRequest{
		Role:    "user",
		Content: "hello",
	})
	if err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}

	if msg.ID == "" || msg.Role != conversation.MessageRoleUser {
		t.Fatalf("unexpected message: %+v", msg)
	}
	if got := len(convs.appended["main"]); got != 1 {
		t.Fatalf("expected message on main branch, appended=%v", convs.appended)
	}
}

func TestAppendMessageExplicitBranch(t *testing.T) {
	handler, convs, _ := newConversationFixture(t)
	conv := conversation.NewConversation("conv_1", 42, nil)
	conv.ID = 3
	convs.add(conv)

	_, err := handler.AppendMessage(context.Background(), 42, "conv_1", conversationreq.AppendMessageRequest{
		Role:     "assistant",
		Content:  "alternative take",
		BranchID: strPtr("b2"),
	})
	if err != nil {
		t.Fatalf("AppendMessage: %v", err)
	}
	if got := len(convs.appended["b2"]); got != 1 {
		t.Fatalf("expected message on b2, appended=%v", convs.appended)
	}
}

func TestSwitchBranchUnknownBranch(t *testing.T) {
	handler, convs, _ := newConversationFixture(t)
	convs.add(conversation.NewConversation("conv_1", 42, nil))

	_, err := handler.SwitchBranch(context.Background(), 42, "conv_1", "nope")
	assertErrorType(t, err, platformerrors.ErrorTypeNotFound)
}

func TestSwitchBranchUpdatesActive(t *testing.T) {
	handler, convs, _ := newConversationFixture(t)
	conv := conversation.NewConversation("conv_1", 42, nil)
	conv.Branches = append(conv.Branches, conversation.Branch{ID: "b2", Name: "retry"})
	convs.add(conv)

	updated, err := handler.SwitchBranch(context.Background(), 42, "conv_1", "b2")
	if err != nil {
		t.Fatalf("SwitchBranch: %v", err)
	}
	if updated.ActiveBranchID != "b2" {
		t.Fatalf("expected active branch b2, got %q", updated.ActiveBranchID)
	}
	if convs.active != "b2" {
		t.Fatalf("expected persisted active branch b2, got %q", convs.active)
	}
}
