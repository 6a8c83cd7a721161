package handlers

import (
	"net/http"
	"strconv"

	"github.com/engramhq/engram/pkg/api/models"
	"github.com/engramhq/engram/pkg/api/response"
	"github.com/engramhq/engram/pkg/logger"
	"github.com/engramhq/engram/pkg/memory"
)

// StatsHandler handles aggregate views and maintenance endpoints.
type StatsHandler struct {
	engine *memory.Engine
	logger logger.Logger
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(eng *memory.Engine, log logger.Logger) *StatsHandler {
	return &StatsHandler{
		engine: eng,
		logger: log,
	}
}

// TypeHealth handles GET /api/v1/stats/types
// @Summary Per-type health
// @Description Aggregate counts, average importance, and average relevance per memory type over active memories
// @Tags stats
// @Produce json
// @Success 200 {object} models.TypeHealthResponse "One row per memory type"
// @Router /api/v1/stats/types [get]
func (h *StatsHandler) TypeHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	types, err := h.engine.TypeHealth(ctx)
	if err != nil {
		h.logger.Error("Failed to compute type health", "error", err)
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusOK, models.TypeHealthResponse{Types: types})
}

// Procedures handles GET /api/v1/stats/procedures
// @Summary Procedure effectiveness ranking
// @Description Rank active procedural memories by success rate, then attempt volume
// @Tags stats
// @Produce json
// @Param limit query int false "Maximum number of procedures" default(20)
// @Success 200 {object} models.ProcedureRankingResponse "Ranked procedures"
// @Router /api/v1/stats/procedures [get]
func (h *StatsHandler) Procedures(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 20
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			limit = n
		}
	}

	procedures, err := h.engine.ProcedureRanking(ctx, limit)
	if err != nil {
		h.logger.Error("Failed to rank procedures", "error", err)
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusOK, models.ProcedureRankingResponse{
		Procedures: procedures,
		Total:      len(procedures),
	})
}

// Sweep handles POST /api/v1/sweep
// @Summary Run a pruning sweep now
// @Description Trigger one archive/invalidate pass immediately, independent of the background schedule
// @Tags stats
// @Produce json
// @Success 200 {object} memory.SweepResult "Counts for this sweep"
// @Router /api/v1/sweep [post]
func (h *StatsHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	result, err := h.engine.Sweep(ctx)
	if err != nil {
		h.logger.Error("Manual sweep failed", "error", err)
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	h.logger.Info("Manual sweep completed",
		"scanned", result.Scanned,
		"archived", result.Archived,
		"invalidated", result.Invalidated,
	)
	response.JSON(w, http.StatusOK, result)
}
