// Package handlers provides HTTP request handlers.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/engramhq/engram/pkg/api/middleware"
	"github.com/engramhq/engram/pkg/api/models"
	"github.com/engramhq/engram/pkg/api/response"
	"github.com/engramhq/engram/pkg/logger"
	"github.com/engramhq/engram/pkg/memory"
)

// WorkingHandler handles working-buffer endpoints.
type WorkingHandler struct {
	engine    *memory.Engine
	logger    logger.Logger
	validator *validator.Validate
}

// NewWorkingHandler creates a new working-buffer handler.
func NewWorkingHandler(eng *memory.Engine, log logger.Logger) *WorkingHandler {
	return &WorkingHandler{
		engine:    eng,
		logger:    log,
		validator: validator.New(),
	}
}

// Ingest handles POST /api/v1/working
// @Summary Stage a candidate memory
// @Description Stage a candidate memory in the working buffer awaiting a promotion decision
// @Tags working
// @Accept json
// @Produce json
// @Param item body models.WorkingItemRequest true "Candidate memory"
// @Success 201 {object} memory.WorkingItem "Staged working item"
// @Failure 400 {object} response.ErrorResponse "Invalid request body or validation error"
// @Failure 422 {object} response.ErrorResponse "Domain validation error"
// @Router /api/v1/working [post]
func (h *WorkingHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req models.WorkingItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request", "error", err)
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "Invalid request body", getRequestID(ctx))
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeValidationFailed, err.Error(), getRequestID(ctx))
		return
	}

	staged, err := h.engine.Ingest(ctx, req.Item(time.Now()))
	if err != nil {
		h.logger.Error("Failed to stage working item", "error", err)
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusCreated, staged)
}

// List handles GET /api/v1/working
// @Summary List staged items
// @Description List the unexpired items currently staged in the working buffer
// @Tags working
// @Produce json
// @Success 200 {object} models.WorkingListResponse "Staged working items"
// @Failure 500 {object} response.ErrorResponse "Internal server error"
// @Router /api/v1/working [get]
func (h *WorkingHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	items, err := h.engine.Working(ctx)
	if err != nil {
		h.logger.Error("Failed to list working items", "error", err)
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusOK, models.WorkingListResponse{
		Items: items,
		Total: len(items),
	})
}

// Get handles GET /api/v1/working/{id}
// @Summary Get a staged item
// @Description Get one staged working item by id
// @Tags working
// @Produce json
// @Param id path string true "Working item ID"
// @Success 200 {object} memory.WorkingItem "Staged working item"
// @Failure 404 {object} response.ErrorResponse "Item not found or expired"
// @Router /api/v1/working/{id} [get]
func (h *WorkingHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	itemID := chi.URLParam(r, "id")

	if itemID == "" {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "Item ID is required", getRequestID(ctx))
		return
	}

	item, err := h.engine.GetWorking(ctx, itemID)
	if err != nil {
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusOK, item)
}

// Discard handles DELETE /api/v1/working/{id}
// @Summary Discard a staged item
// @Description Remove a staged item from the working buffer without promoting it
// @Tags working
// @Produce json
// @Param id path string true "Working item ID"
// @Success 204 "Item discarded"
// @Failure 404 {object} response.ErrorResponse "Item not found or expired"
// @Router /api/v1/working/{id} [delete]
func (h *WorkingHandler) Discard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	itemID := chi.URLParam(r, "id")

	if itemID == "" {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "Item ID is required", getRequestID(ctx))
		return
	}

	if err := h.engine.DiscardWorking(ctx, itemID); err != nil {
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	response.NoContent(w)
}

// Consolidate handles POST /api/v1/working/{id}/consolidate
// @Summary Promote a staged item
// @Description Promote a staged item into a typed long-term memory record. The item is consumed exactly once.
// @Tags working
// @Accept json
// @Produce json
// @Param id path string true "Working item ID"
// @Param consolidation body models.ConsolidateRequest true "Promotion decision and typed payload"
// @Success 201 {object} memory.Record "Created memory record"
// @Failure 400 {object} response.ErrorResponse "Invalid request body or validation error"
// @Failure 409 {object} response.ErrorResponse "Item already consumed"
// @Failure 422 {object} response.ErrorResponse "Payload does not satisfy the type's bounds"
// @Router /api/v1/working/{id}/consolidate [post]
func (h *WorkingHandler) Consolidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	itemID := chi.URLParam(r, "id")

	if itemID == "" {
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "Item ID is required", getRequestID(ctx))
		return
	}

	var req models.ConsolidateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("Failed to decode request", "error", err)
		response.Error(w, http.StatusBadRequest, response.ErrCodeBadRequest, "Invalid request body", getRequestID(ctx))
		return
	}

	if err := h.validator.Struct(&req); err != nil {
		response.Error(w, http.StatusBadRequest, response.ErrCodeValidationFailed, err.Error(), getRequestID(ctx))
		return
	}

	rec, err := h.engine.Consolidate(ctx, itemID, memory.Type(req.Type), req.Payload(), req.Decision.Decision())
	if err != nil {
		h.logger.Error("Failed to consolidate working item", "item_id", itemID, "error", err)
		response.HandleError(w, err, getRequestID(ctx))
		return
	}

	response.JSON(w, http.StatusCreated, rec)
}

// getRequestID extracts the request id for error responses.
func getRequestID(ctx context.Context) string {
	if id := middleware.GetRequestID(ctx); id != "" {
		return id
	}
	return "unknown"
}
