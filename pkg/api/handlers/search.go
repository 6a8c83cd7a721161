package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/engramhq/engram/pkg/api/models"
	"github.com/engramhq/engram/pkg/api/response"
	"github.com/engramhq/engram/pkg/logger"
	"github.com/engramhq/engram/pkg/memory"
)

// SearchHandler handles similarity and text search endpoints.
type SearchHandler struct {
	engine    *memory.Engine
	logger    logger.Logger
	validator *validator.Validate
}

// NewSearchHandler creates a new search handler.
func NewSearchHandler(eng *memory.Engine, log logger.Logger) *SearchHandler {
	return &SearchHandler{
		engine:    eng,
		logger:    log,
		validator: validator.New(),
	}
}

// Recall handles POST /api/v1/recall
// @Summary Recall memories by embedding
// @Description Search by embedding similarity and reinforce every hit. Recalled memories are accessed memories.
// @Tags search
// @Accept json
// @Produce json
// @Param query body models.RecallRequest true "Query embedding and filters"
// @Success 200 {object} models.RecallResponse "Hits ascending by distance"
// @Failure 400 {object} response.ErrorResponse "Invalid request body"
// @Failure 422 {object} response.ErrorResponse "Embedding dimension mismatch"
// @Failure 501 {object} response.ErrorResponse "No searcher configured"
// @Router /api/v1/recall [post]
func (h *SearchHandler) Recall(w http.ResponseWriter, r *http.Request) {
	h.searchWith(w, r, h.engine.Recall)
}

// Search handles POST /api/v1/search
// @Summary Search memories by embedding
// @Description Read-only embedding similarity query. Unlike recall it never reinforces.
// @Tags search
// @Accept json
// @Produce json
// @Param query body models.RecallRequest true "Query embedding and filters"
// @Success 200 {object} models.RecallResponse "Hits ascending by distance"
// @Failure 400 {object} response.ErrorResponse "Invalid request body"
// @Failure 422 {object} response.ErrorResponse "Embedding dimension mismatch"
// @Failure 501 {object} response.ErrorResponse "No searcher configured"
// @Router /api/v1/search [post]
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	h.searchWith(w, r, h.engine.Search)
}

// searchWith decodes an embedding query and runs it through the given
// engine search function. Recall and Search differ only in whether hits
// are reinforced.
func (h *SearchHandler) searchWith(w http.ResponseWriter, r *http.Request, fn func(context.Context, []float32, int, memory.SearchFilter) ([]memory.RecallResult, error)) {
	ctx := r.Context()

	var req models.RecallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "Invalid request body", getRequestID(ctx))
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeValidationFailed, err.Error(), getRequestID(ctx))
		return
	}

	results, err := fn(ctx, req.Embedding, req.K, req.Filter())
	if err != nil {
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusOK, models.RecallResponse{
		Results: results,
		Total:   len(results),
	})
}

// SearchText handles GET /api/v1/search/text
// @Summary Search memories by text
// @Description Read-only fuzzy text query over record content
// @Tags search
// @Produce json
// @Param q query string true "Query text"
// @Param limit query int false "Maximum number of hits" default(10)
// @Param type query string false "Filter by memory type" Enums(episodic, semantic, procedural, strategic)
// @Param status query string false "Filter by lifecycle status" Enums(active, archived, invalidated)
// @Success 200 {object} models.RecallResponse "Hits descending by match quality"
// @Failure 400 {object} response.ErrorResponse "Missing query"
// @Failure 501 {object} response.ErrorResponse "No searcher configured"
// @Router /api/v1/search/text [get]
func (h *SearchHandler) SearchText(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query().Get("q")
	if query == "" {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "Query parameter 'q' is required", getRequestID(ctx))
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			limit = n
		}
	}

	filter, err := searchFilterFromQuery(r)
	if err != nil {
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	results, err := h.engine.SearchText(ctx, query, limit, filter)
	if err != nil {
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusOK, models.RecallResponse{
		Results: results,
		Total:   len(results),
	})
}

// searchFilterFromQuery builds a search filter from type and status query
// parameters.
func searchFilterFromQuery(r *http.Request) (memory.SearchFilter, error) {
	var filter memory.SearchFilter

	if t := r.URL.Query().Get("type"); t != "" {
		typ := memory.Type(t)
		if !typ.IsValid() {
			return filter, &memory.ValidationError{Field: "type", Reason: "unknown memory type " + strconv.Quote(t)}
		}
		filter.Type = typ
	}
	if s := r.URL.Query().Get("status"); s != "" {
		status := memory.Status(s)
		if !status.IsValid() {
			return filter, &memory.ValidationError{Field: "status", Reason: "unknown status " + strconv.Quote(s)}
		}
		filter.Status = status
	}

	return filter, nil
}
