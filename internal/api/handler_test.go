package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newTestRouter(svc *Service) *chi.Mux {
	h := NewHandler(svc, testLogger())
	r := chi.NewRouter()
	h.Routes(r)
	return r
}

func startTestRun(t *testing.T, r *chi.Mux, duration float64) runResponse {
	t.Helper()
	body, _ := json.Marshal(map[string]float64{"duration": duration})
	req := httptest.NewRequest(http.MethodPost, "/videos/v1/runs", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp runResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestHandler_StartRun(t *testing.T) {
	svc := newTestService(quickEngines()...)
	r := newTestRouter(svc)

	resp := startTestRun(t, r, 600)
	if resp.RunID == "" {
		t.Error("response must carry a run id")
	}
	if resp.Status != RunRunning {
		t.Errorf("expected running, got %s", resp.Status)
	}
	if resp.VideoID != "v1" {
		t.Errorf("expected video id v1, got %s", resp.VideoID)
	}
}

func TestHandler_StartRun_bad_request(t *testing.T) {
	svc := newTestService(quickEngines()...)
	r := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/videos/v1/runs", strings.NewReader("not json"))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid body: expected 400, got %d", rec.Code)
	}

	body, _ := json.Marshal(map[string]float64{"duration": -5})
	req = httptest.NewRequest(http.MethodPost, "/videos/v1/runs", bytes.NewReader(body))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("invalid duration: expected 400, got %d", rec.Code)
	}
}

func TestHandler_GetRun_lifecycle(t *testing.T) {
	svc := newTestService(quickEngines()...)
	r := newTestRouter(svc)

	started := startTestRun(t, r, 600)
	run, err := svc.GetRun(started.RunID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	waitForStatus(t, run, RunComplete)

	req := httptest.NewRequest(http.MethodGet, "/runs/"+started.RunID, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp runResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Status != RunComplete {
		t.Errorf("expected complete, got %s", resp.Status)
	}
	if resp.Report == nil {
		t.Fatal("completed run response must carry the report")
	}
	if len(resp.Report.Highlights) != 1 {
		t.Errorf("expected 1 highlight, got %d", len(resp.Report.Highlights))
	}
	if len(resp.Report.ConsensusLog) == 0 {
		t.Error("report must carry the consensus log")
	}
}

func TestHandler_GetRun_not_found(t *testing.T) {
	svc := newTestService(quickEngines()...)
	r := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/runs/nope", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandler_CancelRun(t *testing.T) {
	blocked := &stubEngine{name: "text", block: make(chan struct{})}
	svc := newTestService(blocked, &stubEngine{name: "heatmap"}, &stubEngine{name: "curation"})
	r := newTestRouter(svc)

	started := startTestRun(t, r, 600)

	req := httptest.NewRequest(http.MethodDelete, "/runs/"+started.RunID, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", rec.Code)
	}

	run, _ := svc.GetRun(started.RunID)
	waitForStatus(t, run, RunCancelled)

	req = httptest.NewRequest(http.MethodDelete, "/runs/nope", nil)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("cancel unknown run: expected 404, got %d", rec.Code)
	}
}

func TestHandler_StreamEvents_replays_finished_run(t *testing.T) {
	svc := newTestService(quickEngines()...)
	r := newTestRouter(svc)

	started := startTestRun(t, r, 600)
	run, _ := svc.GetRun(started.RunID)
	waitForStatus(t, run, RunComplete)

	req := httptest.NewRequest(http.MethodGet, "/runs/"+started.RunID+"/events", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("expected text/event-stream, got %s", ct)
	}

	body := rec.Body.String()
	for _, want := range []string{"event: engine_start", "event: engine_complete", "event: consolidating", "event: complete"} {
		if !strings.Contains(body, want) {
			t.Errorf("stream missing %q:\n%s", want, body)
		}
	}
	if strings.Count(body, "event: engine_complete") != 3 {
		t.Errorf("expected 3 engine_complete events:\n%s", body)
	}
}

func TestHandler_StreamEvents_not_found(t *testing.T) {
	svc := newTestService(quickEngines()...)
	r := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/runs/nope/events", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}
