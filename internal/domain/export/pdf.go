package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// PDFSerializer renders a paginated PDF transcript.
type PDFSerializer struct{}

func (PDFSerializer) Format() Format      { return FormatPDF }
func (PDFSerializer) ContentType() string { return "application/pdf" }
func (PDFSerializer) Extension() string   { return "pdf" }

func (PDFSerializer) Serialize(doc *Document) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(doc.GeneratedAt)
	pdf.SetModificationDate(doc.GeneratedAt)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 8, tr(doc.Title), "", "L", false)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(110, 110, 110)
	pdf.MultiCell(0, 5, fmt.Sprintf("Exported %s · scope: %s · %d conversation(s), %d message(s), %d branch point(s)",
		doc.GeneratedAt.Format(time.RFC3339), doc.Scope,
		doc.Stats.TotalConversations, doc.Stats.TotalMessages, doc.Stats.TotalBranches),
		"", "L", false)
	pdf.Ln(4)

	for _, conv := range doc.Conversations {
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "B", 13)
		pdf.MultiCell(0, 7, tr(conv.Title), "", "L", false)
		if conv.ProjectName != "" || conv.HasBranches {
			pdf.SetFont("Helvetica", "I", 9)
			pdf.SetTextColor(110, 110, 110)
			meta := ""
			if conv.ProjectName != "" {
				meta = "Project: " + conv.ProjectName
			}
			if conv.HasBranches {
				if meta != "" {
					meta += " · "
				}
				meta += fmt.Sprintf("%d branch(es), active %s", conv.BranchCount, conv.ActiveBranchID)
			}
			pdf.MultiCell(0, 5, tr(meta), "", "L", false)
		}
		pdf.Ln(2)

		for _, msg := range conv.Messages {
			pdf.SetTextColor(0, 0, 0)
			pdf.SetFont("Helvetica", "B", 10)
			header := fmt.Sprintf("%s · %s", msg.Role, msg.Timestamp.UTC().Format(time.RFC3339))
			if msg.Model != "" {
				header += " · " + msg.Model
			}
			pdf.MultiCell(0, 5, tr(header), "", "L", false)
			pdf.SetFont("Helvetica", "", 10)
			pdf.MultiCell(0, 5, tr(msg.Content), "", "L", false)
			pdf.Ln(3)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
