package handler

import (
	"log/slog"
	"net/http"

	"credit-approval/internal/api/handler/dto"
	"credit-approval/internal/ingest"
)

// IngestHandler exposes the spreadsheet ingestion trigger.
type IngestHandler struct {
	trigger ingest.Trigger
	logger  *slog.Logger
}

func NewIngestHandler(trigger ingest.Trigger, logger *slog.Logger) *IngestHandler {
	return &IngestHandler{trigger: trigger, logger: logger}
}

// TriggerIngestion godoc
// @Summary Trigger spreadsheet ingestion
// @Description Starts a background run that loads the configured customer and loan workbooks. Returns immediately.
// @Tags ingestion
// @Produce json
// @Success 202 {object} dto.MessageResponse "Ingestion started"
// @Security BearerAuth
// @Router /ingest [post]
func (h *IngestHandler) TriggerIngestion(w http.ResponseWriter, r *http.Request) {
	h.logger.InfoContext(r.Context(), "Ingestion triggered over HTTP")
	h.trigger.TriggerAll()
	respondJSON(w, http.StatusAccepted, dto.MessageResponse{Message: "Ingestion started"})
}
