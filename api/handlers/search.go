package handlers

import (
	"context"
	"net/http"

	"github.com/atominnolab/opensift/models"
	"github.com/atominnolab/opensift/sse"
	"github.com/atominnolab/opensift/types"
	"go.uber.org/zap"
)

// SearchEngine is the subset of engine.Engine the search handler depends on.
type SearchEngine interface {
	Search(ctx context.Context, request models.SearchRequest) models.SearchResponse
	SearchStream(ctx context.Context, request models.SearchRequest) <-chan models.StreamEvent
}

// SearchHandler serves POST /v1/search.
type SearchHandler struct {
	engine SearchEngine
	logger *zap.Logger
}

// NewSearchHandler builds a SearchHandler over engine.
func NewSearchHandler(engine SearchEngine, logger *zap.Logger) *SearchHandler {
	return &SearchHandler{engine: engine, logger: logger}
}

// HandleSearch handles POST /v1/search. When options.stream is true the
// response is an SSE stream per the engine's streaming event sequence;
// otherwise it is a single JSON SearchResponse body.
// @Summary Run the search funnel
// @Description Plans, searches, verifies and classifies a query, returned complete or as an SSE stream
// @Tags search
// @Accept json
// @Produce json
// @Produce text/event-stream
// @Param request body models.SearchRequest true "Search request"
// @Success 200 {object} models.SearchResponse
// @Failure 422 {object} Response
// @Router /v1/search [post]
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	if req.Query == "" {
		WriteErrorMessage(w, http.StatusUnprocessableEntity, types.ErrValidation, "query must not be empty", h.logger)
		return
	}

	if req.Options.Stream {
		h.handleStream(w, r, req)
		return
	}

	resp := h.engine.Search(r.Context(), req)
	WriteSuccess(w, resp)
}

func (h *SearchHandler) handleStream(w http.ResponseWriter, r *http.Request, req models.SearchRequest) {
	writer, err := sse.NewWriter(w)
	if err != nil {
		WriteErrorMessage(w, http.StatusInternalServerError, types.ErrInternal, "streaming not supported", h.logger)
		return
	}

	events := h.engine.SearchStream(r.Context(), req)
	if err := writer.WriteAll(events); err != nil {
		h.logger.Warn("sse stream write failed", zap.Error(err))
	}
}
