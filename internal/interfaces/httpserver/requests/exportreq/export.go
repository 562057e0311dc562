// Package exportreq contains HTTP request DTOs for export endpoints.
package exportreq

import (
	"github.com/go-playground/validator/v10"

	"tee-chat/services/chat-gateway/internal/domain/export"
)

var validate = validator.New()

// ExportRequest describes one export run over the wire.
type ExportRequest struct {
	Scope           string   `json:"scope" validate:"required,oneof=single_chat chat_set project workspace"`
	Format          string   `json:"format" validate:"required,oneof=json markdown csv txt pdf docx"`
	ConversationIDs []string `json:"conversation_ids,omitempty" validate:"omitempty,dive,required"`
	ProjectID       string   `json:"project_id,omitempty"`
	IncludeSettings bool     `json:"include_settings,omitempty"`
}

// Validate checks cross-field constraints the scope imposes.
func (r *ExportRequest) Validate() error {
	return validate.Struct(r)
}

// ToDomain converts the wire request into the domain export request.
func (r *ExportRequest) ToDomain() export.Request {
	return export.Request{
		Scope:           export.Scope(r.Scope),
		Format:          export.Format(r.Format),
		ConversationIDs: r.ConversationIDs,
		ProjectID:       r.ProjectID,
		IncludeSettings: r.IncludeSettings,
	}
}
