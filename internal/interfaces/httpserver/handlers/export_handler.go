package handlers

import (
	"context"

	"tee-chat/services/chat-gateway/internal/domain/export"
	"tee-chat/services/chat-gateway/internal/interfaces/httpserver/requests/exportreq"
	"tee-chat/services/chat-gateway/internal/utils/platformerrors"
)

// ExportHandler handles conversation export HTTP requests.
type ExportHandler struct {
	service *export.Service
}

// NewExportHandler creates a new export handler.
func NewExportHandler(service *export.Service) *ExportHandler {
	return &ExportHandler{service: service}
}

// RunExport validates the request and produces a downloadable export.
func (h *ExportHandler) RunExport(ctx context.Context, userID uint, req exportreq.ExportRequest) (*export.Result, error) {
	if err := req.Validate(); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerHandler,
			platformerrors.ErrorTypeValidation, "invalid export request", err, "")
	}

	return h.service.Export(ctx, userID, req.ToDomain())
}
