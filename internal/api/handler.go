package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/david-erel/short-tube/internal/highlight"
)

// Handler exposes the run lifecycle over HTTP using go-chi.
type Handler struct {
	svc *Service
	log *slog.Logger
}

// NewHandler returns a Handler over the given Service.
func NewHandler(svc *Service, log *slog.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Routes mounts the run endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/videos/{video_id}/runs", h.StartRun)
	r.Route("/runs/{run_id}", func(r chi.Router) {
		r.Get("/", h.GetRun)
		r.Get("/events", h.StreamEvents)
		r.Delete("/", h.CancelRun)
	})
}

type startRunRequest struct {
	Duration float64 `json:"duration"`
}

type runResponse struct {
	RunID    string            `json:"runId"`
	VideoID  string            `json:"videoId"`
	Duration float64           `json:"duration"`
	Status   RunStatus         `json:"status"`
	Error    string            `json:"error,omitempty"`
	Report   *highlight.Report `json:"report,omitempty"`
}

// StartRun handles POST /videos/{video_id}/runs.
// Body: { "duration": 600 } (seconds, must be > 0).
func (h *Handler) StartRun(w http.ResponseWriter, r *http.Request) {
	videoID := chi.URLParam(r, "video_id")
	if videoID == "" {
		writeError(w, http.StatusBadRequest, "video id required")
		return
	}

	var req startRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid start run body", slog.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	run, err := h.svc.StartRun(videoID, req.Duration)
	if err != nil {
		if errors.Is(err, highlight.ErrInvalidDuration) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.log.Error("start run failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusAccepted, runResponse{
		RunID:    run.ID,
		VideoID:  run.VideoID,
		Duration: run.Duration,
		Status:   RunRunning,
	})
}

// GetRun handles GET /runs/{run_id}.
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.svc.GetRun(chi.URLParam(r, "run_id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	status, report, errMsg := run.Snapshot()
	writeJSON(w, http.StatusOK, runResponse{
		RunID:    run.ID,
		VideoID:  run.VideoID,
		Duration: run.Duration,
		Status:   status,
		Error:    errMsg,
		Report:   report,
	})
}

// CancelRun handles DELETE /runs/{run_id}. Cancellation is asynchronous: the
// run flips to cancelled once the runner observes it.
func (h *Handler) CancelRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "run_id")
	if err := h.svc.CancelRun(runID); err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	h.log.Info("run cancel requested", slog.String("run_id", runID))
	w.WriteHeader(http.StatusAccepted)
}

// StreamEvents handles GET /runs/{run_id}/events as a server-sent event
// stream: buffered events are replayed first, then live events until the run
// finishes or the client disconnects.
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	run, err := h.svc.GetRun(chi.URLParam(r, "run_id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	replay, live, unsubscribe := run.Subscribe()
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	for _, ev := range replay {
		writeSSE(w, ev)
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev, open := <-live:
			if !open {
				return
			}
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev highlight.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Type, data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
