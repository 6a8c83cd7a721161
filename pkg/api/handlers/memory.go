package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/engramhq/engram/pkg/api/models"
	"github.com/engramhq/engram/pkg/api/response"
	"github.com/engramhq/engram/pkg/logger"
	"github.com/engramhq/engram/pkg/memory"
)

// MemoryHandler handles long-term memory endpoints.
type MemoryHandler struct {
	engine    *memory.Engine
	logger    logger.Logger
	validator *validator.Validate
}

// NewMemoryHandler creates a new memory handler.
func NewMemoryHandler(eng *memory.Engine, log logger.Logger) *MemoryHandler {
	return &MemoryHandler{
		engine:    eng,
		logger:    log,
		validator: validator.New(),
	}
}

// Get handles GET /api/v1/memories/{id}
// @Summary Get a memory
// @Description Get a memory record with its relevance derived at read time. Reading never reinforces.
// @Tags memories
// @Produce json
// @Param id path string true "Memory ID"
// @Success 200 {object} memory.ScoredRecord "Scored memory record"
// @Failure 404 {object} response.ErrorResponse "Memory not found"
// @Router /api/v1/memories/{id} [get]
func (h *MemoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	memoryID := chi.URLParam(r, "id")

	if memoryID == "" {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "Memory ID is required", getRequestID(ctx))
		return
	}

	sr, err := h.engine.Get(ctx, memoryID)
	if err != nil {
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusOK, sr)
}

// List handles GET /api/v1/memories
// @Summary List memories
// @Description List memory records newest first with optional type and status filters
// @Tags memories
// @Produce json
// @Param type query string false "Filter by memory type" Enums(episodic, semantic, procedural, strategic)
// @Param status query string false "Filter by lifecycle status" Enums(active, archived, invalidated)
// @Param limit query int false "Maximum number of results" default(20)
// @Param offset query int false "Offset for pagination" default(0)
// @Success 200 {object} models.MemoryListResponse "Paginated scored records"
// @Failure 422 {object} response.ErrorResponse "Unknown type or status"
// @Router /api/v1/memories [get]
func (h *MemoryHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := listFilterFromQuery(r)
	if err != nil {
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	memories, err := h.engine.List(ctx, filter)
	if err != nil {
		h.logger.Error("Failed to list memories", "error", err)
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	total, err := h.engine.Count(ctx, filter)
	if err != nil {
		h.logger.Error("Failed to count memories", "error", err)
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusOK, models.MemoryListResponse{
		Memories: memories,
		Total:    total,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	})
}

// Reinforce handles POST /api/v1/memories/{id}/reinforce
// @Summary Reinforce a memory
// @Description Register a meaningful access: the access count increments and importance grows logarithmically
// @Tags memories
// @Produce json
// @Param id path string true "Memory ID"
// @Success 200 {object} memory.ScoredRecord "Reinforced record with fresh relevance"
// @Failure 404 {object} response.ErrorResponse "Memory not found"
// @Failure 409 {object} response.ErrorResponse "Contended update exhausted retries"
// @Failure 422 {object} response.ErrorResponse "Memory is not active"
// @Router /api/v1/memories/{id}/reinforce [post]
func (h *MemoryHandler) Reinforce(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	memoryID := chi.URLParam(r, "id")

	if memoryID == "" {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "Memory ID is required", getRequestID(ctx))
		return
	}

	sr, err := h.engine.Reinforce(ctx, memoryID)
	if err != nil {
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusOK, sr)
}

// RecordAttempt handles POST /api/v1/memories/{id}/attempts
// @Summary Record an execution attempt
// @Description Fold one execution outcome into a procedural memory's counters and running mean duration
// @Tags memories
// @Accept json
// @Produce json
// @Param id path string true "Memory ID"
// @Param attempt body models.AttemptRequest true "Attempt outcome"
// @Success 200 {object} memory.Record "Updated procedural record"
// @Failure 400 {object} response.ErrorResponse "Invalid request body"
// @Failure 404 {object} response.ErrorResponse "Memory not found"
// @Failure 422 {object} response.ErrorResponse "Memory is not an active procedural memory"
// @Router /api/v1/memories/{id}/attempts [post]
func (h *MemoryHandler) RecordAttempt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	memoryID := chi.URLParam(r, "id")

	if memoryID == "" {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "Memory ID is required", getRequestID(ctx))
		return
	}

	var req models.AttemptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "Invalid request body", getRequestID(ctx))
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeValidationFailed, err.Error(), getRequestID(ctx))
		return
	}

	rec, err := h.engine.RecordAttempt(ctx, memoryID, req.Outcome())
	if err != nil {
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusOK, rec)
}

// Validate handles POST /api/v1/memories/{id}/validate
// @Summary Validate a semantic memory
// @Description Re-grade a semantic memory's confidence and stamp the validation time
// @Tags memories
// @Accept json
// @Produce json
// @Param id path string true "Memory ID"
// @Param validation body models.ValidationRequest true "New confidence and optional source"
// @Success 200 {object} memory.Record "Updated semantic record"
// @Failure 400 {object} response.ErrorResponse "Invalid request body"
// @Failure 404 {object} response.ErrorResponse "Memory not found"
// @Failure 422 {object} response.ErrorResponse "Memory is not an active semantic memory"
// @Router /api/v1/memories/{id}/validate [post]
func (h *MemoryHandler) Validate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	memoryID := chi.URLParam(r, "id")

	if memoryID == "" {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "Memory ID is required", getRequestID(ctx))
		return
	}

	var req models.ValidationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "Invalid request body", getRequestID(ctx))
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeValidationFailed, err.Error(), getRequestID(ctx))
		return
	}

	rec, err := h.engine.ValidateSemantic(ctx, memoryID, req.Confidence, req.Source)
	if err != nil {
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusOK, rec)
}

// Link handles POST /api/v1/memories/{id}/links
// @Summary Link two memories
// @Description Create or refresh a typed relationship from this memory to another. Re-linking the same triple overwrites properties and keeps the original identity.
// @Tags memories
// @Accept json
// @Produce json
// @Param id path string true "Source memory ID"
// @Param link body models.LinkRequest true "Target and relationship type"
// @Success 201 {object} memory.Relationship "Created or refreshed relationship"
// @Failure 400 {object} response.ErrorResponse "Invalid request body"
// @Failure 404 {object} response.ErrorResponse "Either memory not found"
// @Router /api/v1/memories/{id}/links [post]
func (h *MemoryHandler) Link(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	memoryID := chi.URLParam(r, "id")

	if memoryID == "" {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "Memory ID is required", getRequestID(ctx))
		return
	}

	var req models.LinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "Invalid request body", getRequestID(ctx))
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeValidationFailed, err.Error(), getRequestID(ctx))
		return
	}

	rel, err := h.engine.Link(ctx, memoryID, req.ToID, req.Type, memory.Properties(req.Properties))
	if err != nil {
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusCreated, rel)
}

// Links handles GET /api/v1/memories/{id}/links
// @Summary List a memory's relationships
// @Description List relationships in creation order, filtered by direction and relationship type
// @Tags memories
// @Produce json
// @Param id path string true "Memory ID"
// @Param direction query string false "Edge direction" Enums(out, in, both) default(both)
// @Param type query string false "Filter by relationship type"
// @Success 200 {object} models.LinksResponse "Relationships"
// @Failure 404 {object} response.ErrorResponse "Memory not found"
// @Failure 422 {object} response.ErrorResponse "Unknown direction"
// @Router /api/v1/memories/{id}/links [get]
func (h *MemoryHandler) Links(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	memoryID := chi.URLParam(r, "id")

	if memoryID == "" {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "Memory ID is required", getRequestID(ctx))
		return
	}

	direction := memory.DirectionBoth
	if d := r.URL.Query().Get("direction"); d != "" {
		direction = memory.Direction(d)
	}

	links, err := h.engine.Links(ctx, memoryID, direction, r.URL.Query().Get("type"))
	if err != nil {
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusOK, models.LinksResponse{
		Links: links,
		Total: len(links),
	})
}

// History handles GET /api/v1/memories/{id}/history
// @Summary Get a memory's audit trail
// @Description List the memory's append-only change records ordered by sequence
// @Tags memories
// @Produce json
// @Param id path string true "Memory ID"
// @Success 200 {object} models.HistoryResponse "Change records"
// @Failure 404 {object} response.ErrorResponse "Memory not found"
// @Router /api/v1/memories/{id}/history [get]
func (h *MemoryHandler) History(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	memoryID := chi.URLParam(r, "id")

	if memoryID == "" {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "Memory ID is required", getRequestID(ctx))
		return
	}

	changes, err := h.engine.History(ctx, memoryID)
	if err != nil {
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusOK, models.HistoryResponse{
		Changes: changes,
		Total:   len(changes),
	})
}

// listFilterFromQuery builds a record filter from list query parameters.
func listFilterFromQuery(r *http.Request) (memory.RecordFilter, error) {
	filter := memory.RecordFilter{Limit: 20}

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
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if offset, err := strconv.Atoi(offsetStr); err == nil && offset >= 0 {
			filter.Offset = offset
		}
	}

	return filter, nil
}
