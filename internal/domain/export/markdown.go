package export

import (
	"fmt"
	"strings"
	"time"
)

// MarkdownSerializer renders a readable document: one section per
// conversation, messages as role-tagged blocks.
type MarkdownSerializer struct{}

func (MarkdownSerializer) Format() Format      { return FormatMarkdown }
func (MarkdownSerializer) ContentType() string { return "text/markdown" }
func (MarkdownSerializer) Extension() string   { return "md" }

func (MarkdownSerializer) Serialize(doc *Document) ([]byte, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", doc.Title)
	fmt.Fprintf(&b, "Exported %s · scope: %s\n\n", doc.GeneratedAt.Format(time.RFC3339), doc.Scope)
	fmt.Fprintf(&b, "- Conversations: %d\n", doc.Stats.TotalConversations)
	fmt.Fprintf(&b, "- Messages: %d\n", doc.Stats.TotalMessages)
	fmt.Fprintf(&b, "- Branch points: %d\n", doc.Stats.TotalBranches)
	fmt.Fprintf(&b, "- Branched conversations: %d\n\n", doc.Stats.BranchedConversations)

	if doc.Settings != nil {
		b.WriteString("## Workspace settings\n\n")
		if doc.Settings.Voice != "" {
			fmt.Fprintf(&b, "- Voice: %s\n", doc.Settings.Voice)
		}
		if doc.Settings.Language != "" {
			fmt.Fprintf(&b, "- Language: %s\n", doc.Settings.Language)
		}
		if doc.Settings.DefaultModel != "" {
			fmt.Fprintf(&b, "- Default model: %s\n", doc.Settings.DefaultModel)
		}
		fmt.Fprintf(&b, "- Notifications: %t\n", doc.Settings.NotificationsOn)
		for _, provider := range sortedMapKeys(doc.Settings.ProviderAPIKeys) {
			fmt.Fprintf(&b, "- API key (%s): %s\n", provider, doc.Settings.ProviderAPIKeys[provider])
		}
		b.WriteString("\n")
	}

	for _, conv := range doc.Conversations {
		fmt.Fprintf(&b, "## %s\n\n", conv.Title)
		if conv.ProjectName != "" {
			fmt.Fprintf(&b, "Project: %s\n\n", conv.ProjectName)
		}
		if conv.HasBranches {
			fmt.Fprintf(&b, "Branches: %d across %d branch point(s), active branch `%s`\n\n",
				conv.BranchCount, conv.BranchPointCount, conv.ActiveBranchID)
		}
		for _, msg := range conv.Messages {
			role := strings.ToUpper(msg.Role[:1]) + msg.Role[1:]
			fmt.Fprintf(&b, "**%s** · %s", role, msg.Timestamp.UTC().Format(time.RFC3339))
			if msg.Model != "" {
				fmt.Fprintf(&b, " · %s", msg.Model)
			}
			b.WriteString("\n\n")
			b.WriteString(msg.Content)
			b.WriteString("\n\n")
		}
		b.WriteString("---\n\n")
	}
	return []byte(b.String()), nil
}
