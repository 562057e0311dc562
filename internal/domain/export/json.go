package export

import (
	"encoding/json"
)

// JSONSerializer emits the full document model as indented JSON.
type JSONSerializer struct{}

func (JSONSerializer) Format() Format      { return FormatJSON }
func (JSONSerializer) ContentType() string { return "application/json" }
func (JSONSerializer) Extension() string   { return "json" }

func (JSONSerializer) Serialize(doc *Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}
