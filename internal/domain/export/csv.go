package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"
)

// csvColumns is the fixed column set; consumers rely on this exact order.
var csvColumns = []string{
	"Chat ID", "Chat Title", "Role", "Content", "Timestamp", "Model",
	"Project ID", "Project Name", "Has Branches", "Branch Count",
	"Branch ID", "Active Branch",
}

// CSVSerializer emits one row per message. Quoting and escaping are left to
// encoding/csv so any reader round-trips the content.
type CSVSerializer struct{}

func (CSVSerializer) Format() Format      { return FormatCSV }
func (CSVSerializer) ContentType() string { return "text/csv" }
func (CSVSerializer) Extension() string   { return "csv" }

func (CSVSerializer) Serialize(doc *Document) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvColumns); err != nil {
		return nil, err
	}
	for _, conv := range doc.Conversations {
		for _, msg := range conv.Messages {
			row := []string{
				conv.ID,
				conv.Title,
				msg.Role,
				msg.Content,
				msg.Timestamp.UTC().Format(time.RFC3339),
				msg.Model,
				conv.ProjectID,
				conv.ProjectName,
				strconv.FormatBool(conv.HasBranches),
				strconv.Itoa(conv.BranchCount),
				msg.BranchID,
				conv.ActiveBranchID,
			}
			if err := w.Write(row); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
