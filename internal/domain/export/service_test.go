package export

import (
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tee-chat/services/chat-gateway/internal/domain/conversation"
	"tee-chat/services/chat-gateway/internal/domain/preference"
	"tee-chat/services/chat-gateway/internal/domain/project"
	"tee-chat/services/chat-gateway/internal/domain/query"
	"tee-chat/services/chat-gateway/internal/utils/platformerrors"
)

var errNotFound = errors.New("record not found")

type fakeConversationRepo struct {
	byPublicID map[string]*conversation.Conversation
	byProject  map[uint][]*conversation.Conversation
}

func (f *fakeConversationRepo) Create(context.Context, *conversation.Conversation) error {
	return nil
}

func (f *fakeConversationRepo) FindByFilter(_ context.Context, filter conversation.ConversationFilter, _ *query.Pagination) ([]*conversation.Conversation, error) {
	var out []*conversation.Conversation
	for _, conv := range f.byPublicID {
		if filter.UserID != nil && conv.UserID != *filter.UserID {
			continue
		}
		out = append(out, conv)
	}
	return out, nil
}

func (f *fakeConversationRepo) Count(context.Context, conversation.ConversationFilter) (int64, error) {
	return int64(len(f.byPublicID)), nil
}

func (f *fakeConversationRepo) FindByPublicID(_ context.Context, publicID string) (*conversation.Conversation, error) {
	conv, ok := f.byPublicID[publicID]
	if !ok {
		return nil, errNotFound
	}
	return conv, nil
}

func (f *fakeConversationRepo) FindByProjectID(_ context.Context, projectID uint) ([]*conversation.Conversation, error) {
	return f.byProject[projectID], nil
}

func (f *fakeConversationRepo) Update(context.Context, *conversation.Conversation) error {
	return nil
}
func (f *fakeConversationRepo) Delete(context.Context, uint) error { return nil }
func (f *fakeConversationRepo) AppendMessage(context.Context, uint, string, *conversation.Message) error {
	return nil
}
func (f *fakeConversationRepo) SetActiveBranch(context.Context, uint, string) error { return nil }

type fakeProjectRepo struct {
	byPublicID map[string]*project.Project
}

func (f *fakeProjectRepo) Create(context.Context, *project.Project) error { return nil }
func (f *fakeProjectRepo) FindByPublicID(_ context.Context, publicID string) (*project.Project, error) {
	proj, ok := f.byPublicID[publicID]
	if !ok {
		return nil, errNotFound
	}
	return proj, nil
}
func (f *fakeProjectRepo) FindByUser(_ context.Context, userID uint) ([]*project.Project, error) {
	var out []*project.Project
	for _, proj := range f.byPublicID {
		if proj.UserID == userID {
			out = append(out, proj)
		}
	}
	return out, nil
}
func (f *fakeProjectRepo) Update(context.Context, *project.Project) error { return nil }
func (f *fakeProjectRepo) Delete(context.Context, uint) error             { return nil }

type fakePreferenceRepo struct {
	prefs *preference.Preferences
}

func (f *fakePreferenceRepo) FindByUser(context.Context, uint) (*preference.Preferences, error) {
	if f.prefs == nil {
		return nil, errNotFound
	}
	return f.prefs, nil
}
func (f *fakePreferenceRepo) Upsert(context.Context, *preference.Preferences) error { return nil }

func strPtr(s string) *string { return &s }

// branchedFixture builds a conversation whose second message carries three
// branches: one branch point.
func branchedFixture(publicID string, userID uint, base time.Time) *conversation.Conversation {
	conv := conversation.NewConversation(publicID, userID, strPtr("Q3 plans"))
	conv.CreatedAt = base
	conv.UpdatedAt = base
	conv.BaseMessages = []conversation.Message{
		{ID: publicID + "-m1", Role: conversation.MessageRoleUser, Content: "Hello", Timestamp: base},
		{
			ID: publicID + "-m2", Role: conversation.MessageRoleAssistant,
			Content: "Hi there", Timestamp: base.Add(time.Minute),
			Model: strPtr("gpt-4o"),
			Branches: []conversation.Branch{
				{ID: "b1"}, {ID: "b2"}, {ID: "b3"},
			},
			ActiveBranchID: strPtr("b1"),
		},
	}
	return conv
}

func newTestService(convRepo *fakeConversationRepo, projRepo *fakeProjectRepo, prefRepo *fakePreferenceRepo) *Service {
	svc := NewService(convRepo, projRepo, prefRepo,
		[]Serializer{JSONSerializer{}, MarkdownSerializer{}, CSVSerializer{}, TextSerializer{}, PDFSerializer{}, DOCXSerializer{}},
		Limits{MaxConversations: 100, FetchConcurrency: 2}, zerolog.Nop())
	svc.now = func() time.Time { return time.Date(2024, 5, 17, 9, 30, 0, 0, time.UTC) }
	return svc
}

func TestExportAggregatesBranchPoints(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeConversationRepo{byPublicID: map[string]*conversation.Conversation{
		"conv_a": branchedFixture("conv_a", 7, base),
		"conv_b": branchedFixture("conv_b", 7, base.Add(time.Hour)),
	}}
	svc := newTestService(repo, &fakeProjectRepo{}, &fakePreferenceRepo{})

	doc, err := svc.buildDocument(context.Background(), 7, Request{
		Scope:           ScopeChatSet,
		Format:          FormatJSON,
		ConversationIDs: []string{"conv_a", "conv_b"},
	})
	if err != nil {
		t.Fatalf("buildDocument failed: %v", err)
	}

	// Each conversation has one message with three branches: one branch
	// point apiece.
	if doc.Stats.TotalBranches != 2 {
		t.Errorf("TotalBranches = %d, want 2", doc.Stats.TotalBranches)
	}
	if doc.Stats.BranchedConversations != 2 {
		t.Errorf("BranchedConversations = %d, want 2", doc.Stats.BranchedConversations)
	}
	if doc.Stats.TotalConversations != 2 || doc.Stats.TotalMessages != 4 {
		t.Errorf("stats = %+v, want 2 conversations / 4 messages", doc.Stats)
	}
	if doc.Conversations[0].BranchCount != 3 {
		t.Errorf("per-conversation BranchCount = %d, want 3", doc.Conversations[0].BranchCount)
	}
	if doc.Conversations[0].ID != "conv_a" {
		t.Errorf("conversations not ordered by creation time: %s first", doc.Conversations[0].ID)
	}
}

func TestExportUnknownConversation(t *testing.T) {
	svc := newTestService(&fakeConversationRepo{byPublicID: map[string]*conversation.Conversation{}},
		&fakeProjectRepo{}, &fakePreferenceRepo{})

	_, err := svc.Export(context.Background(), 7, Request{
		Scope:           ScopeSingleChat,
		Format:          FormatJSON,
		ConversationIDs: []string{"conv_missing"},
	})
	if !platformerrors.IsType(err, platformerrors.ErrorTypeExportUnavailable) {
		t.Fatalf("error = %v, want EXPORT_DATA_UNAVAILABLE", err)
	}
}

func TestExportForeignConversationForbidden(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeConversationRepo{byPublicID: map[string]*conversation.Conversation{
		"conv_a": branchedFixture("conv_a", 42, base),
	}}
	svc := newTestService(repo, &fakeProjectRepo{}, &fakePreferenceRepo{})

	_, err := svc.Export(context.Background(), 7, Request{
		Scope:           ScopeSingleChat,
		Format:          FormatJSON,
		ConversationIDs: []string{"conv_a"},
	})
	if !platformerrors.IsType(err, platformerrors.ErrorTypeForbidden) {
		t.Fatalf("error = %v, want FORBIDDEN", err)
	}
}

func TestExportUnsupportedFormat(t *testing.T) {
	svc := newTestService(&fakeConversationRepo{}, &fakeProjectRepo{}, &fakePreferenceRepo{})
	_, err := svc.Export(context.Background(), 7, Request{Scope: ScopeWorkspace, Format: Format("yaml")})
	if !platformerrors.IsType(err, platformerrors.ErrorTypeValidation) {
		t.Fatalf("error = %v, want VALIDATION", err)
	}
}

func TestExportIsDeterministic(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeConversationRepo{byPublicID: map[string]*conversation.Conversation{
		"conv_a": branchedFixture("conv_a", 7, base),
		"conv_b": branchedFixture("conv_b", 7, base.Add(time.Hour)),
	}}
	svc := newTestService(repo, &fakeProjectRepo{}, &fakePreferenceRepo{})
	req := Request{Scope: ScopeWorkspace, Format: FormatJSON}

	first, err := svc.Export(context.Background(), 7, req)
	if err != nil {
		t.Fatalf("first export failed: %v", err)
	}
	second, err := svc.Export(context.Background(), 7, req)
	if err != nil {
		t.Fatalf("second export failed: %v", err)
	}
	if string(first.Data) != string(second.Data) {
		t.Error("identical input produced different export bytes")
	}
	if first.Filename != "workspace_export_20240517_093000.json" {
		t.Errorf("filename = %q", first.Filename)
	}
}

func TestExportStreamingAndEmptyMessagesExcluded(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	conv := branchedFixture("conv_a", 7, base)
	conv.BaseMessages = append(conv.BaseMessages,
		conversation.Message{ID: "m-streaming", Role: conversation.MessageRoleAssistant,
			Content: "partial", Timestamp: base.Add(2 * time.Minute), IsStreaming: true},
		conversation.Message{ID: "m-empty", Role: conversation.MessageRoleAssistant,
			Content: "   ", Timestamp: base.Add(3 * time.Minute)},
	)
	repo := &fakeConversationRepo{byPublicID: map[string]*conversation.Conversation{"conv_a": conv}}
	svc := newTestService(repo, &fakeProjectRepo{}, &fakePreferenceRepo{})

	doc, err := svc.buildDocument(context.Background(), 7, Request{
		Scope: ScopeSingleChat, Format: FormatJSON, ConversationIDs: []string{"conv_a"},
	})
	if err != nil {
		t.Fatalf("buildDocument failed: %v", err)
	}
	if got := len(doc.Conversations[0].Messages); got != 2 {
		t.Errorf("exported messages = %d, want 2 (streaming and empty excluded)", got)
	}
}

func TestExportProjectScopeResolvesNames(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	conv := branchedFixture("conv_a", 7, base)
	projID := uint(3)
	conv.ProjectID = &projID
	conv.ProjectPublicID = strPtr("proj_research")

	repo := &fakeConversationRepo{
		byPublicID: map[string]*conversation.Conversation{"conv_a": conv},
		byProject:  map[uint][]*conversation.Conversation{3: {conv}},
	}
	projRepo := &fakeProjectRepo{byPublicID: map[string]*project.Project{
		"proj_research": {ID: 3, PublicID: "proj_research", Name: "Research", UserID: 7},
	}}
	svc := newTestService(repo, projRepo, &fakePreferenceRepo{})

	doc, err := svc.buildDocument(context.Background(), 7, Request{
		Scope: ScopeProject, Format: FormatJSON, ProjectID: "proj_research",
	})
	if err != nil {
		t.Fatalf("buildDocument failed: %v", err)
	}
	if doc.Title != "Research" {
		t.Errorf("document title = %q, want project name", doc.Title)
	}
	if doc.Conversations[0].ProjectName != "Research" {
		t.Errorf("ProjectName = %q, want Research", doc.Conversations[0].ProjectName)
	}
}

func TestExportWorkspaceIncludesMaskedSettings(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeConversationRepo{byPublicID: map[string]*conversation.Conversation{
		"conv_a": branchedFixture("conv_a", 7, base),
	}}
	prefRepo := &fakePreferenceRepo{prefs: &preference.Preferences{
		UserID:          7,
		Voice:           "alloy",
		ProviderAPIKeys: map[string]string{"openai": "sk-verysecretkey1234"},
	}}
	svc := newTestService(repo, &fakeProjectRepo{}, prefRepo)

	doc, err := svc.buildDocument(context.Background(), 7, Request{
		Scope: ScopeWorkspace, Format: FormatJSON, IncludeSettings: true,
	})
	if err != nil {
		t.Fatalf("buildDocument failed: %v", err)
	}
	if doc.Settings == nil {
		t.Fatal("settings missing from workspace export")
	}
	key := doc.Settings.ProviderAPIKeys["openai"]
	if strings.Contains(key, "verysecret") {
		t.Errorf("API key leaked into export: %q", key)
	}
	if !strings.HasSuffix(key, "1234") {
		t.Errorf("masked key = %q, want suffix hint retained", key)
	}
}

func TestCSVQuotedContentRoundTrips(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	conv := branchedFixture("conv_a", 7, base)
	content := `Said "Hello, world" and
moved on`
	conv.BaseMessages[0].Content = content

	repo := &fakeConversationRepo{byPublicID: map[string]*conversation.Conversation{"conv_a": conv}}
	svc := newTestService(repo, &fakeProjectRepo{}, &fakePreferenceRepo{})

	res, err := svc.Export(context.Background(), 7, Request{
		Scope: ScopeSingleChat, Format: FormatCSV, ConversationIDs: []string{"conv_a"},
	})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(res.Data))).ReadAll()
	if err != nil {
		t.Fatalf("exported CSV does not parse: %v", err)
	}
	if len(records) != 3 { // header + 2 messages
		t.Fatalf("rows = %d, want 3", len(records))
	}
	header := strings.Join(records[0], ", ")
	want := "Chat ID, Chat Title, Role, Content, Timestamp, Model, Project ID, Project Name, Has Branches, Branch Count, Branch ID, Active Branch"
	if header != want {
		t.Errorf("header = %q, want %q", header, want)
	}
	if records[1][3] != content {
		t.Errorf("content did not round-trip: %q", records[1][3])
	}
	if records[2][8] != "true" || records[2][9] != "3" {
		t.Errorf("branch columns = %q/%q, want true/3", records[2][8], records[2][9])
	}
}

func TestMarkdownStructure(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeConversationRepo{byPublicID: map[string]*conversation.Conversation{
		"conv_a": branchedFixture("conv_a", 7, base),
	}}
	svc := newTestService(repo, &fakeProjectRepo{}, &fakePreferenceRepo{})

	res, err := svc.Export(context.Background(), 7, Request{
		Scope: ScopeSingleChat, Format: FormatMarkdown, ConversationIDs: []string{"conv_a"},
	})
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	out := string(res.Data)
	for _, want := range []string{
		"# Q3 plans",
		"## Q3 plans",
		"**User**",
		"**Assistant**",
		"Branch points: 1",
		"gpt-4o",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q", want)
		}
	}
}

func TestBinaryFormatsProduceOutput(t *testing.T) {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	repo := &fakeConversationRepo{byPublicID: map[string]*conversation.Conversation{
		"conv_a": branchedFixture("conv_a", 7, base),
	}}
	svc := newTestService(repo, &fakeProjectRepo{}, &fakePreferenceRepo{})

	cases := []struct {
		format Format
		magic  string
	}{
		{FormatPDF, "%PDF"},
		{FormatDOCX, "PK"}, // zip container
	}
	for _, tc := range cases {
		t.Run(string(tc.format), func(t *testing.T) {
			res, err := svc.Export(context.Background(), 7, Request{
				Scope: ScopeSingleChat, Format: tc.format, ConversationIDs: []string{"conv_a"},
			})
			if err != nil {
				t.Fatalf("Export(%s) failed: %v", tc.format, err)
			}
			if !strings.HasPrefix(string(res.Data), tc.magic) {
				t.Errorf("%s output missing %q magic", tc.format, tc.magic)
			}
		})
	}
}
