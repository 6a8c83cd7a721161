package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/engramhq/engram/config"
	"github.com/engramhq/engram/pkg/api/handlers"
	"github.com/engramhq/engram/pkg/api/models"
	"github.com/engramhq/engram/pkg/logger"
	"github.com/engramhq/engram/pkg/memory"
	badgerstore "github.com/engramhq/engram/pkg/store/badger"
)

// TestBadgerBackedAPIIntegration drives the API against a Badger store and
// verifies that consolidated memories survive a store reopen.
func TestBadgerBackedAPIIntegration(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	cfg := config.DefaultConfig()
	cfg.Memory.EmbeddingDimension = 3

	log := logger.New(&logger.Config{
		Level:  logger.InfoLevel,
		Format: "json",
		Output: "stdout",
	})

	newRouterOnStore := func(store memory.Store) (*memory.Engine, http.Handler) {
		eng := memory.New(&cfg.Memory, store, nil)
		if err := eng.Start(ctx); err != nil {
			t.Fatalf("start engine: %v", err)
		}
		httpHandlers := &Handlers{
			Working: handlers.NewWorkingHandler(eng, log),
			Memory:  handlers.NewMemoryHandler(eng, log),
			Health:  handlers.NewHealthHandler(eng),
		}
		return eng, NewRouter(cfg, log, httpHandlers)
	}

	store, err := badgerstore.NewBadgerStore(&badgerstore.Config{Path: dir})
	if err != nil {
		t.Fatalf("open badger store: %v", err)
	}
	eng, router := newRouterOnStore(store)

	// Stage a working item
	ingestBody, _ := json.Marshal(models.WorkingItemRequest{
		Content:   "the billing queue stalls when redis runs out of memory",
		Embedding: []float32{1, 0, 0},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/working", bytes.NewReader(ingestBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("ingest status = %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
	}

	var item memory.WorkingItem
	if err := json.NewDecoder(w.Body).Decode(&item); err != nil {
		t.Fatalf("decode ingest response: %v", err)
	}

	// Consolidate it into a semantic memory
	conBody, _ := json.Marshal(models.ConsolidateRequest{
		Type:     "semantic",
		Semantic: &memory.SemanticMemory{Confidence: 0.9},
		Decision: models.DecisionRequest{Importance: 7, Reason: "recurring production incident"},
	})
	req = httptest.NewRequest(http.MethodPost, "/api/v1/working/"+item.ID+"/consolidate", bytes.NewReader(conBody))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("consolidate status = %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
	}

	var rec memory.Record
	if err := json.NewDecoder(w.Body).Decode(&rec); err != nil {
		t.Fatalf("decode consolidate response: %v", err)
	}

	// Reinforce so the reopened store must also carry the access change
	req = httptest.NewRequest(http.MethodPost, "/api/v1/memories/"+rec.ID+"/reinforce", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("reinforce status = %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}

	// Tear everything down and reopen the same path
	if err := eng.Stop(ctx); err != nil {
		t.Fatalf("stop engine: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close store: %v", err)
	}

	store, err = badgerstore.NewBadgerStore(&badgerstore.Config{Path: dir})
	if err != nil {
		t.Fatalf("reopen badger store: %v", err)
	}
	defer store.Close()

	eng, router = newRouterOnStore(store)
	defer eng.Stop(ctx)

	// The memory and its full audit trail survived the restart
	req = httptest.NewRequest(http.MethodGet, "/api/v1/memories/"+rec.ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("get after reopen status = %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}

	var scored memory.ScoredRecord
	if err := json.NewDecoder(w.Body).Decode(&scored); err != nil {
		t.Fatalf("decode get response: %v", err)
	}
	if scored.Record.Content != item.Content {
		t.Errorf("content after reopen = %q, want %q", scored.Record.Content, item.Content)
	}
	if scored.Record.AccessCount != 1 {
		t.Errorf("access count after reopen = %d, want 1", scored.Record.AccessCount)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/memories/"+rec.ID+"/history", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("history after reopen status = %d, want %d", w.Code, http.StatusOK)
	}

	var histResp models.HistoryResponse
	if err := json.NewDecoder(w.Body).Decode(&histResp); err != nil {
		t.Fatalf("decode history response: %v", err)
	}
	if histResp.Total != 2 {
		t.Fatalf("history total after reopen = %d, want 2", histResp.Total)
	}
	if histResp.Changes[0].Change != memory.ChangeCreate || histResp.Changes[1].Change != memory.ChangeAccess {
		t.Errorf("history changes = %v, %v, want %v, %v",
			histResp.Changes[0].Change, histResp.Changes[1].Change,
			memory.ChangeCreate, memory.ChangeAccess)
	}

	// The staged item was consumed, not persisted
	req = httptest.NewRequest(http.MethodGet, "/api/v1/working/"+item.ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("working item after reopen status = %d, want %d", w.Code, http.StatusNotFound)
	}
}
