package export

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// TextSerializer renders a plain-text transcript.
type TextSerializer struct{}

func (TextSerializer) Format() Format      { return FormatText }
func (TextSerializer) ContentType() string { return "text/plain" }
func (TextSerializer) Extension() string   { return "txt" }

func (TextSerializer) Serialize(doc *Document) ([]byte, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", doc.Title)
	fmt.Fprintf(&b, "Exported %s (scope: %s)\n", doc.GeneratedAt.Format(time.RFC3339), doc.Scope)
	fmt.Fprintf(&b, "Conversations: %d, messages: %d, branch points: %d\n\n",
		doc.Stats.TotalConversations, doc.Stats.TotalMessages, doc.Stats.TotalBranches)

	for _, conv := range doc.Conversations {
		b.WriteString(strings.Repeat("=", 60))
		b.WriteString("\n")
		b.WriteString(conv.Title)
		b.WriteString("\n")
		if conv.ProjectName != "" {
			fmt.Fprintf(&b, "Project: %s\n", conv.ProjectName)
		}
		if conv.HasBranches {
			fmt.Fprintf(&b, "Branches: %d (active: %s)\n", conv.BranchCount, conv.ActiveBranchID)
		}
		b.WriteString("\n")
		for _, msg := range conv.Messages {
			fmt.Fprintf(&b, "[%s] %s:\n%s\n\n",
				msg.Timestamp.UTC().Format(time.RFC3339), msg.Role, msg.Content)
		}
	}
	return []byte(b.String()), nil
}

// sortedMapKeys returns the map's keys in lexicographic order so settings
// render deterministically.
func sortedMapKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
