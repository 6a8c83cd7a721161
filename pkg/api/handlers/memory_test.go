package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/engramhq/engram/pkg/api/models"
	"github.com/engramhq/engram/pkg/logger"
	"github.com/engramhq/engram/pkg/memory"
)

// consolidateTestMemory promotes a fresh working item into a record of the
// given type bypassing HTTP.
func consolidateTestMemory(t *testing.T, eng *memory.Engine, typ memory.Type, content string) *memory.Record {
	t.Helper()

	item := stageTestItem(t, eng, content)

	var payload memory.SubtypePayload
	switch typ {
	case memory.TypeEpisodic:
		payload = &memory.EpisodicMemory{EmotionalValence: 0.2}
	case memory.TypeSemantic:
		payload = &memory.SemanticMemory{Confidence: 0.8}
	case memory.TypeProcedural:
		payload = &memory.ProceduralMemory{Steps: []memory.Properties{{"action": "retry"}}}
	case memory.TypeStrategic:
		payload = &memory.StrategicMemory{ConfidenceScore: 0.6}
	}

	rec, err := eng.Consolidate(context.Background(), item.ID, typ, payload, memory.Decision{Importance: 5})
	if err != nil {
		t.Fatalf("Failed to consolidate: %v", err)
	}
	return rec
}

func TestMemoryHandler_Get_Success(t *testing.T) {
	eng, cleanup := createTestEngine(t)
	defer cleanup()

	log := logger.New(&logger.Config{
		Level:  logger.InfoLevel,
		Format: "json",
		Output: "stdout",
	})
	handler := NewMemoryHandler(eng, log)

	rec := consolidateTestMemory(t, eng, memory.TypeSemantic, "chi routers compose middleware")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/memories/"+rec.ID, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", rec.ID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	handler.Get(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Get() status = %v, want %v, body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var sr memory.ScoredRecord
	if err := json.NewDecoder(w.Body).Decode(&sr); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if sr.Record == nil || sr.Record.ID != rec.ID {
		t.Errorf("Response record = %+v, want ID %v", sr.Record, rec.ID)
	}
	if sr.RelevanceScore <= 0 {
		t.Errorf("Expected positive relevance score, got %v", sr.RelevanceScore)
	}
}

func TestMemoryHandler_Get_DoesNotReinforce(t *testing.T) {
	eng, cleanup := createTestEngine(t)
	defer cleanup()

	log := logger.New(&logger.Config{
		Level:  logger.InfoLevel,
		Format: "json",
		Output: "stdout",
	})
	handler := NewMemoryHandler(eng, log)

	rec := consolidateTestMemory(t, eng, memory.TypeSemantic, "reads are free")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/memories/"+rec.ID, nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", rec.ID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	handler.Get(w, req)

	sr, err := eng.Get(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("Failed to reload record: %v", err)
	}
	if sr.Record.AccessCount != 0 {
		t.Errorf("Get() must not reinforce, access count = %v", sr.Record.AccessCount)
	}
}

func TestMemoryHandler_Get_NotFound(t *testing.T) {
	eng, cleanup := createTestEngine(t)
	defer cleanup()

	log := logger.New(&logger.Config{
		Level:  logger.InfoLevel,
		Format: "json",
		Output: "stdout",
	})
	handler := NewMemoryHandler(eng, log)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/memories/nonexistent", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "nonexistent")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	handler.Get(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Get() with nonexistent ID status = %v, want %v", w.Code, http.StatusNotFound)
	}
}

func TestMemoryHandler_List_WithPagination(t *testing.T) {
	eng, cleanup := createTestEngine(t)
	defer cleanup()

	log := logger.New(&logger.Config{
		Level:  logger.InfoLevel,
		Format: "json",
		Output: "stdout",
	})
	handler := NewMemoryHandler(eng, log)

	for i := 0; i < 5; i++ {
		consolidateTestMemory(t, eng, memory.TypeSemantic, "fact")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/memories?limit=2&offset=0", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("List() status = %v, want %v", w.Code, http.StatusOK)
	}

	var resp models.MemoryListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Total != 5 {
		t.Errorf("List() total = %v, want 5", resp.Total)
	}
	if len(resp.Memories) != 2 {
		t.Errorf("List() memories count = %v, want 2", len(resp.Memories))
	}
	if resp.Limit != 2 {
		t.Errorf("List() limit = %v, want 2", resp.Limit)
	}
}

func TestMemoryHandler_List_FiltersByType(t *testing.T) {
	eng, cleanup := createTestEngine(t)
	defer cleanup()

	log := logger.New(&logger.Config{
		Level:  logger.InfoLevel,
		Format: "json",
		Output: "stdout",
	})
	handler := NewMemoryHandler(eng, log)

	consolidateTestMemory(t, eng, memory.TypeSemantic, "fact")
	consolidateTestMemory(t, eng, memory.TypeEpisodic, "event")
	consolidateTestMemory(t, eng, memory.TypeEpisodic, "another event")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/memories?type=episodic", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("List() status = %v, want %v", w.Code, http.StatusOK)
	}

	var resp models.MemoryListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Total != 2 {
		t.Errorf("List() total = %v, want 2", resp.Total)
	}
	for _, sr := range resp.Memories {
		if sr.Record.Type != memory.TypeEpisodic {
			t.Errorf("List() returned type %v, want %v", sr.Record.Type, memory.TypeEpisodic)
		}
	}
}

func TestMemoryHandler_List_UnknownType(t *testing.T) {
	eng, cleanup := createTestEngine(t)
	defer cleanup()

	log := logger.New(&logger.Config{
		Level:  logger.InfoLevel,
		Format: "json",
		Output: "stdout",
	})
	handler := NewMemoryHandler(eng, log)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/memories?type=muscle", nil)
	w := httptest.NewRecorder()

	handler.List(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("List() with unknown type status = %v, want %v", w.Code, http.StatusUnprocessableEntity)
	}
}

func TestMemoryHandler_Reinforce_Success(t *testing.T) {
	eng, cleanup := createTestEngine(t)
	defer cleanup()

	log := logger.New(&logger.Config{
		Level:  logger.InfoLevel,
		Format: "json",
		Output: "stdout",
	})
	handler := NewMemoryHandler(eng, log)

	rec := consolidateTestMemory(t, eng, memory.TypeSemantic, "reinforce me")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/memories/"+rec.ID+"/reinforce", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", rec.ID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	handler.Reinforce(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Reinforce() status = %v, want %v, body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var sr memory.ScoredRecord
	if err := json.NewDecoder(w.Body).Decode(&sr); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if sr.Record.AccessCount != 1 {
		t.Errorf("Reinforce() access count = %v, want 1", sr.Record.AccessCount)
	}
	if sr.Record.LastAccessed == nil {
		t.Error("Expected last accessed to be stamped")
	}
}

func TestMemoryHandler_Reinforce_NotFound(t *testing.T) {
	eng, cleanup := createTestEngine(t)
	defer cleanup()

	log := logger.New(&logger.Config{
		Level:  logger.InfoLevel,
		Format: "json",
		Output: "stdout",
	})
	handler := NewMemoryHandler(eng, log)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/memories/nonexistent/reinforce", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "nonexistent")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	handler.Reinforce(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Reinforce() with nonexistent ID status = %v, want %v", w.Code, http.StatusNotFound)
	}
}

func TestMemoryHandler_RecordAttempt_Success(t *testing.T) {
	eng, cleanup := createTestEngine(t)
	defer cleanup()

	log := logger.New(&logger.Config{
		Level:  logger.InfoLevel,
		Format: "json",
		Output: "stdout",
	})
	handler := NewMemoryHandler(eng, log)

	rec := consolidateTestMemory(t, eng, memory.TypeProcedural, "how to roll back a deploy")

	reqBody := models.AttemptRequest{
		Success:    true,
		DurationMS: 1500,
	}

	body, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/memories/"+rec.ID+"/attempts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", rec.ID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	handler.RecordAttempt(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("RecordAttempt() status = %v, want %v, body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var got memory.Record
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got.Procedural == nil {
		t.Fatal("Expected procedural payload in response")
	}
	if got.Procedural.TotalAttempts != 1 || got.Procedural.SuccessCount != 1 {
		t.Errorf("Attempt counters = %d/%d, want 1/1",
			got.Procedural.SuccessCount, got.Procedural.TotalAttempts)
	}
}

func TestMemoryHandler_RecordAttempt_WrongType(t *testing.T) {
	eng, cleanup := createTestEngine(t)
	defer cleanup()

	log := logger.New(&logger.Config{
		Level:  logger.InfoLevel,
		Format: "json",
		Output: "stdout",
	})
	handler := NewMemoryHandler(eng, log)

	rec := consolidateTestMemory(t, eng, memory.TypeSemantic, "not a procedure")

	reqBody := models.AttemptRequest{Success: true}
	body, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/memories/"+rec.ID+"/attempts", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", rec.ID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	handler.RecordAttempt(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("RecordAttempt() on semantic memory status = %v, want %v", w.Code, http.StatusUnprocessableEntity)
	}
}

func TestMemoryHandler_Validate_Success(t *testing.T) {
	eng, cleanup := createTestEngine(t)
	defer cleanup()

	log := logger.New(&logger.Config{
		Level:  logger.InfoLevel,
		Format: "json",
		Output: "stdout",
	})
	handler := NewMemoryHandler(eng, log)

	rec := consolidateTestMemory(t, eng, memory.TypeSemantic, "validated fact")

	reqBody := models.ValidationRequest{
		Confidence: 0.95,
		Source:     "doc-review",
	}

	body, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/memories/"+rec.ID+"/validate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", rec.ID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	handler.Validate(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Validate() status = %v, want %v, body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var got memory.Record
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if got.Semantic == nil {
		t.Fatal("Expected semantic payload in response")
	}
	if got.Semantic.Confidence != 0.95 {
		t.Errorf("Confidence = %v, want 0.95", got.Semantic.Confidence)
	}
	if got.Semantic.LastValidated == nil {
		t.Error("Expected last validated to be stamped")
	}
}

func TestMemoryHandler_Validate_OutOfRange(t *testing.T) {
	eng, cleanup := createTestEngine(t)
	defer cleanup()

	log := logger.New(&logger.Config{
		Level:  logger.InfoLevel,
		Format: "json",
		Output: "stdout",
	})
	handler := NewMemoryHandler(eng, log)

	rec := consolidateTestMemory(t, eng, memory.TypeSemantic, "confidence bounds")

	reqBody := models.ValidationRequest{Confidence: 1.5}
	body, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/memories/"+rec.ID+"/validate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", rec.ID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	handler.Validate(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Validate() with out-of-range confidence status = %v, want %v", w.Code, http.StatusBadRequest)
	}
}

func TestMemoryHandler_Link_Success(t *testing.T) {
	eng, cleanup := createTestEngine(t)
	defer cleanup()

	log := logger.New(&logger.Config{
		Level:  logger.InfoLevel,
		Format: "json",
		Output: "stdout",
	})
	handler := NewMemoryHandler(eng, log)

	from := consolidateTestMemory(t, eng, memory.TypeSemantic, "cause")
	to := consolidateTestMemory(t, eng, memory.TypeEpisodic, "effect")

	reqBody := models.LinkRequest{
		ToID:       to.ID,
		Type:       "caused_by",
		Properties: map[string]interface{}{"strength": 0.8},
	}

	body, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/memories/"+from.ID+"/links", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", from.ID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	handler.Link(w, req)

	if w.Code != http.StatusCreated {
		t.Errorf("Link() status = %v, want %v, body: %s", w.Code, http.StatusCreated, w.Body.String())
	}

	var rel memory.Relationship
	if err := json.NewDecoder(w.Body).Decode(&rel); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if rel.ID == "" {
		t.Error("Expected relationship ID in response")
	}
	if rel.FromID != from.ID || rel.ToID != to.ID {
		t.Errorf("Relationship endpoints = %v -> %v, want %v -> %v", rel.FromID, rel.ToID, from.ID, to.ID)
	}
}

func TestMemoryHandler_Link_TargetNotFound(t *testing.T) {
	eng, cleanup := createTestEngine(t)
	defer cleanup()

	log := logger.New(&logger.Config{
		Level:  logger.InfoLevel,
		Format: "json",
		Output: "stdout",
	})
	handler := NewMemoryHandler(eng, log)

	from := consolidateTestMemory(t, eng, memory.TypeSemantic, "dangling edge")

	reqBody := models.LinkRequest{
		ToID: "nonexistent",
		Type: "supports",
	}

	body, _ := json.Marshal(reqBody)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/memories/"+from.ID+"/links", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", from.ID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	handler.Link(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Link() with missing target status = %v, want %v", w.Code, http.StatusNotFound)
	}
}

func TestMemoryHandler_Links_FiltersByDirection(t *testing.T) {
	eng, cleanup := createTestEngine(t)
	defer cleanup()

	log := logger.New(&logger.Config{
		Level:  logger.InfoLevel,
		Format: "json",
		Output: "stdout",
	})
	handler := NewMemoryHandler(eng, log)

	a := consolidateTestMemory(t, eng, memory.TypeSemantic, "a")
	b := consolidateTestMemory(t, eng, memory.TypeSemantic, "b")

	ctx := context.Background()
	if _, err := eng.Link(ctx, a.ID, b.ID, "supports", nil); err != nil {
		t.Fatalf("Failed to link: %v", err)
	}
	if _, err := eng.Link(ctx, b.ID, a.ID, "contradicts", nil); err != nil {
		t.Fatalf("Failed to link: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/memories/"+a.ID+"/links?direction=out", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", a.ID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	handler.Links(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Links() status = %v, want %v, body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp models.LinksResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Total != 1 {
		t.Fatalf("Links() total = %v, want 1", resp.Total)
	}
	if resp.Links[0].RelType != "supports" {
		t.Errorf("Links() relationship type = %v, want supports", resp.Links[0].RelType)
	}
}

func TestMemoryHandler_Links_DefaultsToBoth(t *testing.T) {
	eng, cleanup := createTestEngine(t)
	defer cleanup()

	log := logger.New(&logger.Config{
		Level:  logger.InfoLevel,
		Format: "json",
		Output: "stdout",
	})
	handler := NewMemoryHandler(eng, log)

	a := consolidateTestMemory(t, eng, memory.TypeSemantic, "a")
	b := consolidateTestMemory(t, eng, memory.TypeSemantic, "b")

	ctx := context.Background()
	if _, err := eng.Link(ctx, a.ID, b.ID, "supports", nil); err != nil {
		t.Fatalf("Failed to link: %v", err)
	}
	if _, err := eng.Link(ctx, b.ID, a.ID, "contradicts", nil); err != nil {
		t.Fatalf("Failed to link: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/memories/"+a.ID+"/links", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", a.ID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	handler.Links(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Links() status = %v, want %v", w.Code, http.StatusOK)
	}

	var resp models.LinksResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Total != 2 {
		t.Errorf("Links() total = %v, want 2", resp.Total)
	}
}

func TestMemoryHandler_Links_UnknownDirection(t *testing.T) {
	eng, cleanup := createTestEngine(t)
	defer cleanup()

	log := logger.New(&logger.Config{
		Level:  logger.InfoLevel,
		Format: "json",
		Output: "stdout",
	})
	handler := NewMemoryHandler(eng, log)

	rec := consolidateTestMemory(t, eng, memory.TypeSemantic, "direction check")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/memories/"+rec.ID+"/links?direction=sideways", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", rec.ID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	handler.Links(w, req)

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("Links() with unknown direction status = %v, want %v", w.Code, http.StatusUnprocessableEntity)
	}
}

func TestMemoryHandler_History_Success(t *testing.T) {
	eng, cleanup := createTestEngine(t)
	defer cleanup()

	log := logger.New(&logger.Config{
		Level:  logger.InfoLevel,
		Format: "json",
		Output: "stdout",
	})
	handler := NewMemoryHandler(eng, log)

	rec := consolidateTestMemory(t, eng, memory.TypeSemantic, "audited")
	if _, err := eng.Reinforce(context.Background(), rec.ID); err != nil {
		t.Fatalf("Failed to reinforce: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/memories/"+rec.ID+"/history", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", rec.ID)
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	handler.History(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("History() status = %v, want %v, body: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp models.HistoryResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if resp.Total != 2 {
		t.Fatalf("History() total = %v, want 2", resp.Total)
	}
	if resp.Changes[0].Change != memory.ChangeCreate {
		t.Errorf("First change = %v, want %v", resp.Changes[0].Change, memory.ChangeCreate)
	}
	if resp.Changes[1].Change != memory.ChangeAccess {
		t.Errorf("Second change = %v, want %v", resp.Changes[1].Change, memory.ChangeAccess)
	}
}

func TestMemoryHandler_History_NotFound(t *testing.T) {
	eng, cleanup := createTestEngine(t)
	defer cleanup()

	log := logger.New(&logger.Config{
		Level:  logger.InfoLevel,
		Format: "json",
		Output: "stdout",
	})
	handler := NewMemoryHandler(eng, log)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/memories/nonexistent/history", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "nonexistent")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	w := httptest.NewRecorder()

	handler.History(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("History() with nonexistent ID status = %v, want %v", w.Code, http.StatusNotFound)
	}
}
