package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/fumiama/go-docx"
)

// DOCXSerializer renders a Word document transcript.
type DOCXSerializer struct{}

func (DOCXSerializer) Format() Format { return FormatDOCX }
func (DOCXSerializer) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
}
func (DOCXSerializer) Extension() string { return "docx" }

func (DOCXSerializer) Serialize(doc *Document) ([]byte, error) {
	w := docx.New().WithDefaultTheme()

	w.AddParagraph().AddText(doc.Title).Size("32").Bold()
	w.AddParagraph().AddText(fmt.Sprintf("Exported %s (scope: %s)",
		doc.GeneratedAt.Format(time.RFC3339), doc.Scope)).Size("18")
	w.AddParagraph().AddText(fmt.Sprintf("%d conversation(s), %d message(s), %d branch point(s)",
		doc.Stats.TotalConversations, doc.Stats.TotalMessages, doc.Stats.TotalBranches)).Size("18")
	w.AddParagraph()

	for _, conv := range doc.Conversations {
		w.AddParagraph().AddText(conv.Title).Size("26").Bold()
		if conv.ProjectName != "" {
			w.AddParagraph().AddText("Project: " + conv.ProjectName).Size("18").Italic()
		}
		if conv.HasBranches {
			w.AddParagraph().AddText(fmt.Sprintf("%d branch(es), active %s",
				conv.BranchCount, conv.ActiveBranchID)).Size("18").Italic()
		}
		for _, msg := range conv.Messages {
			header := fmt.Sprintf("%s - %s", msg.Role, msg.Timestamp.UTC().Format(time.RFC3339))
			if msg.Model != "" {
				header += " - " + msg.Model
			}
			w.AddParagraph().AddText(header).Size("20").Bold()
			w.AddParagraph().AddText(msg.Content).Size("20")
			w.AddParagraph()
		}
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
