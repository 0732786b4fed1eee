package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/atominnolab/opensift/models"
	"github.com/atominnolab/opensift/types"
	"go.uber.org/zap"
)

// BatchEngine is the subset of engine.Engine the batch handler depends on.
type BatchEngine interface {
	BatchSearch(ctx context.Context, request models.BatchSearchRequest) models.BatchSearchResponse
}

// BatchHandler serves POST /v1/search/batch.
type BatchHandler struct {
	engine BatchEngine
	logger *zap.Logger
}

// NewBatchHandler builds a BatchHandler over engine.
func NewBatchHandler(engine BatchEngine, logger *zap.Logger) *BatchHandler {
	return &BatchHandler{engine: engine, logger: logger}
}

var validExportFormats = []string{"csv", "json"}

// HandleBatchSearch handles POST /v1/search/batch.
// @Summary Run multiple search queries concurrently
// @Description Executes 1-20 independent queries sharing the same options and context
// @Tags search
// @Accept json
// @Produce json
// @Param request body models.BatchSearchRequest true "Batch search request"
// @Success 200 {object} models.BatchSearchResponse
// @Failure 422 {object} Response
// @Router /v1/search/batch [post]
func (h *BatchHandler) HandleBatchSearch(w http.ResponseWriter, r *http.Request) {
	var req models.BatchSearchRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	if len(req.Queries) == 0 {
		WriteErrorMessage(w, http.StatusUnprocessableEntity, types.ErrValidation, "queries must not be empty", h.logger)
		return
	}
	if len(req.Queries) > models.MaxBatchQueries {
		msg := fmt.Sprintf("queries must not exceed %d", models.MaxBatchQueries)
		WriteErrorMessage(w, http.StatusUnprocessableEntity, types.ErrValidation, msg, h.logger)
		return
	}
	if req.ExportFormat != nil && !ValidateEnum(*req.ExportFormat, validExportFormats) {
		WriteErrorMessage(w, http.StatusUnprocessableEntity, types.ErrValidation, "export_format must be csv or json", h.logger)
		return
	}

	resp := h.engine.BatchSearch(r.Context(), req)
	WriteSuccess(w, resp)
}
