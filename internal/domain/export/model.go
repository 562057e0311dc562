// Package export turns stored conversations into downloadable documents in
// several formats, with branch-aware statistics.
package export

import (
	"time"
)

// Scope selects which conversations an export covers.
type Scope string

const (
	ScopeSingleChat Scope = "single_chat"
	ScopeChatSet    Scope = "chat_set"
	ScopeProject    Scope = "project"
	ScopeWorkspace  Scope = "workspace"
)

func ValidateScope(input string) bool {
	switch Scope(input) {
	case ScopeSingleChat, ScopeChatSet, ScopeProject, ScopeWorkspace:
		return true
	default:
		return false
	}
}

// Format selects the output serialization.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatText     Format = "txt"
	FormatPDF      Format = "pdf"
	FormatDOCX     Format = "docx"
)

func ValidateFormat(input string) bool {
	switch Format(input) {
	case FormatJSON, FormatMarkdown, FormatCSV, FormatText, FormatPDF, FormatDOCX:
		return true
	default:
		return false
	}
}

// Request describes one export run.
type Request struct {
	Scope           Scope
	Format          Format
	ConversationIDs []string // single_chat and chat_set
	ProjectID       string   // project scope
	IncludeSettings bool     // workspace scope only
}

// Stats aggregates branch information across the exported conversations.
// TotalBranches counts branch points: messages holding more than one branch.
type Stats struct {
	TotalConversations    int `json:"totalConversations"`
	TotalMessages         int `json:"totalMessages"`
	TotalBranches         int `json:"totalBranches"`
	BranchedConversations int `json:"branchedConversations"`
}

// MessageExport is one flattened, display-visible message.
type MessageExport struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Model     string    `json:"model,omitempty"`
	BranchID  string    `json:"branchId,omitempty"`
}

// ConversationExport is one conversation with its resolved message sequence
// and branch statistics.
type ConversationExport struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	ProjectID        string          `json:"projectId,omitempty"`
	ProjectName      string          `json:"projectName,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
	Messages         []MessageExport `json:"messages"`
	HasBranches      bool            `json:"hasBranches"`
	BranchCount      int             `json:"branchCount"`
	BranchPointCount int             `json:"branchPointCount"`
	ActiveBranchID   string          `json:"activeBranchId,omitempty"`
}

// WorkspaceSettings is the sanitized preference block included in workspace
// exports on request. API keys are already masked.
type WorkspaceSettings struct {
	Voice           string            `json:"voice,omitempty"`
	Language        string            `json:"language,omitempty"`
	DefaultModel    string            `json:"defaultModel,omitempty"`
	NotificationsOn bool              `json:"notificationsOn"`
	ProviderAPIKeys map[string]string `json:"providerApiKeys,omitempty"`
}

// Document is the serializer input: everything an export contains, fully
// resolved and deterministic for a given data set and timestamp.
type Document struct {
	Scope         Scope                `json:"scope"`
	GeneratedAt   time.Time            `json:"generatedAt"`
	Title         string               `json:"title"`
	Settings      *WorkspaceSettings   `json:"settings,omitempty"`
	Conversations []ConversationExport `json:"conversations"`
	Stats         Stats                `json:"stats"`
}

// Result is a finished export ready for download.
type Result struct {
	Filename    string
	ContentType string
	Data        []byte
	Stats       Stats
}

// Serializer renders a Document into one output format.
type Serializer interface {
	Format() Format
	ContentType() string
	Extension() string
	Serialize(doc *Document) ([]byte, error)
}
