package conversation

import (
	"strings"
	"time"
)

// ===============================================
// Message Types and Enums
// ===============================================

// @Enum(user, assistant)
type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

func ValidateMessageRole(input string) bool {
	switch MessageRole(input) {
	case MessageRoleUser, MessageRoleAssistant:
		return true
	default:
		return false
	}
}

// ===============================================
// Message Metadata (closed tagged union)
// ===============================================

// MetadataKind discriminates the known metadata payloads a message can carry.
// Anything unrecognized is preserved under the opaque fallback so exports can
// handle every kind exhaustively.
type MetadataKind string

const (
	MetadataKindSearchResults MetadataKind = "search_results"
	MetadataKindTranscription MetadataKind = "transcription"
	MetadataKindImagePrompt   MetadataKind = "image_prompt"
	MetadataKindOpaque        MetadataKind = "opaque"
)

// SearchResult is one web-search hit attached to an assistant message.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

// Transcription carries voice-session transcription details.
type Transcription struct {
	Language   string  `json:"language,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	DurationMS int64   `json:"duration_ms,omitempty"`
}

// ImagePrompt records the prompt used for an image-generation message.
type ImagePrompt struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model,omitempty"`
}

// Metadata is the tagged union of known message metadata variants.
type Metadata struct {
	Kind          MetadataKind   `json:"kind"`
	SearchResults []SearchResult `json:"search_results,omitempty"`
	Transcription *Transcription `json:"transcription,omitempty"`
	ImagePrompt   *ImagePrompt   `json:"image_prompt,omitempty"`
	Opaque        map[string]any `json:"opaque,omitempty"`
}

// ===============================================
// Message Structure
// ===============================================

// Attachment is a file reference carried by a message.
type Attachment struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	MimeType string `json:"mime_type,omitempty"`
	URL      string `json:"url,omitempty"`
	Bytes    int64  `json:"bytes,omitempty"`
}

// Message is a single conversation entry. A message that was regenerated or
// retried carries its alternative continuations in Branches, with
// ActiveBranchID selecting the canonical one for display and export.
type Message struct {
	ID             string       `json:"id"`
	Role           MessageRole  `json:"role"`
	Content        string       `json:"content"`
	Timestamp      time.Time    `json:"timestamp"`
	Model          *string      `json:"model,omitempty"`
	Attachments    []Attachment `json:"attachments,omitempty"`
	Metadata       *Metadata    `json:"metadata,omitempty"`
	BranchID       *string      `json:"branch_id,omitempty"`
	Branches       []Branch     `json:"branches,omitempty"`
	ActiveBranchID *string      `json:"active_branch_id,omitempty"`
	IsStreaming    bool         `json:"is_streaming,omitempty"`
}

// HasContent reports whether the message carries any non-whitespace text.
func (m *Message) HasContent() bool {
	return strings.TrimSpace(m.Content) != ""
}

// Exportable reports whether the message belongs in AI-call history and
// default exports: finished streaming and non-empty.
func (m *Message) Exportable() bool {
	return !m.IsStreaming && m.HasContent()
}

// Branch is one divergent continuation: an ordered message sequence forked
// from a shared prefix. Branches belong to exactly one conversation.
type Branch struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Messages  []Message `json:"messages,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
