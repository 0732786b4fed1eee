package handlers

import (
	"context"
	"net/http"

	"github.com/atominnolab/opensift/models"
	"github.com/atominnolab/opensift/types"
	"go.uber.org/zap"
)

// PlanEngine is the planning-only subset of engine.Engine.
type PlanEngine interface {
	Plan(ctx context.Context, request models.SearchRequest) models.PlanResponse
}

// PlanHandler serves POST /v1/plan.
type PlanHandler struct {
	engine PlanEngine
	logger *zap.Logger
}

// NewPlanHandler builds a PlanHandler over engine.
func NewPlanHandler(engine PlanEngine, logger *zap.Logger) *PlanHandler {
	return &PlanHandler{engine: engine, logger: logger}
}

// HandlePlan handles POST /v1/plan.
// @Summary Generate search queries and criteria
// @Description Decomposes a natural-language query into search queries and weighted screening criteria
// @Tags search
// @Accept json
// @Produce json
// @Param request body models.SearchRequest true "Plan request"
// @Success 200 {object} models.PlanResponse
// @Failure 422 {object} Response
// @Router /v1/plan [post]
func (h *PlanHandler) HandlePlan(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if err := DecodeJSONBody(w, r, &req, h.logger); err != nil {
		return
	}

	if req.Query == "" {
		WriteErrorMessage(w, http.StatusUnprocessableEntity, types.ErrValidation, "query must not be empty", h.logger)
		return
	}

	resp := h.engine.Plan(r.Context(), req)
	WriteSuccess(w, resp)
}
