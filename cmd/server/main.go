package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/david-erel/short-tube/internal/api"
	"github.com/david-erel/short-tube/internal/engines/curation"
	"github.com/david-erel/short-tube/internal/engines/heatmap"
	"github.com/david-erel/short-tube/internal/engines/llm"
	"github.com/david-erel/short-tube/internal/engines/text"
	"github.com/david-erel/short-tube/internal/highlight"
	"github.com/david-erel/short-tube/internal/platform/config"
	"github.com/david-erel/short-tube/internal/platform/logger"
	"github.com/david-erel/short-tube/internal/platform/metrics"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = config.Load()

	port := config.GetEnv("PORT", "8080")
	logLevel := config.GetEnv("LOG_LEVEL", "info")
	logFormat := config.GetEnv("LOG_FORMAT", "json")

	transcriptURL := config.GetEnv("TRANSCRIPT_BASE_URL", "http://localhost:8091")
	heatmapURL := config.GetEnv("HEATMAP_BASE_URL", "http://localhost:8092")
	curationFile := config.GetEnv("CURATION_FILE", "curated.yaml")
	llmBaseURL := config.GetEnv("LLM_BASE_URL", "https://openrouter.ai/api/v1")
	llmAPIKey := config.GetEnv("LLM_API_KEY", "")
	llmModel := config.GetEnv("LLM_MODEL", "anthropic/claude-3.5-sonnet")

	log := logger.New(logLevel, logFormat)

	model := llm.New(llmBaseURL, llmAPIKey, llmModel)
	runner := highlight.NewRunner(log,
		text.New(text.NewHTTPSource(transcriptURL), model),
		heatmap.New(heatmap.NewHTTPSource(heatmapURL)),
		curation.New(curationFile),
	)

	registry := api.NewRegistry()
	met := metrics.New()
	svc := api.NewService(registry, runner, log, met)
	h := api.NewHandler(svc, log)

	r := chi.NewRouter()
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		met.Handler(func() { met.SetActiveRuns(svc.ActiveRunCount()) }).ServeHTTP(w, req)
	})
	h.Routes(r)

	addr := ":" + port
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("server starting",
		"port", port,
		"curation_file", curationFile,
		"llm_model", llmModel,
		"log_level", logLevel,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
