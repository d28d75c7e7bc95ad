// Package api exposes sift's HTTP surface: health and status probes, run
// lookup, and a synchronous extraction endpoint.
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/siftlabs/sift/internal/extract"
	"github.com/siftlabs/sift/internal/ingest"
	"github.com/siftlabs/sift/internal/store"
)

type Server struct {
	router *chi.Mux
	port   int
	store  *store.Store
	loader *ingest.Loader
	orch   *extract.Orchestrator
	cfg    extract.Config
}

// NewServer builds the router. The store may be nil (batch-only deployments
// without Postgres); run lookup then reports 503.
func NewServer(port int, s *store.Store, loader *ingest.Loader, orch *extract.Orchestrator, cfg extract.Config) *Server {
	router := chi.NewRouter()
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	srv := &Server{
		router: router,
		port:   port,
		store:  s,
		loader: loader,
		orch:   orch,
		cfg:    cfg,
	}

	router.Get("/health", srv.health)
	router.Get("/api/v1/status", srv.status)
	router.Get("/api/v1/runs/{id}", srv.getRun)
	router.Post("/api/v1/extract", srv.extract)

	return srv
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	slog.Info("API server starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}

// Handler returns the underlying router, for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	features, targets, err := extract.KnownNames(s.cfg)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"service":  "sift",
		"status":   "ok",
		"features": features,
		"targets":  targets,
	})
}

func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no store configured"})
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid run id"})
		return
	}

	run, err := s.store.GetRun(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "run not found"})
		return
	}

	result, err := s.store.GetRunResult(r.Context(), id)
	if err != nil {
		slog.Error("failed to load run result", "run_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load result"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"run":    runPayload(run),
		"result": result,
	})
}

// extract runs the engine synchronously over a posted batch of raw
// conversations. Nothing is persisted; this is the dry-run surface.
func (s *Server) extract(w http.ResponseWriter, r *http.Request) {
	var raw []json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "body must be a JSON array of conversations"})
		return
	}

	convs := s.loader.Normalize(raw)
	result := s.orch.Run(r.Context(), convs)

	writeJSON(w, http.StatusOK, map[string]any{
		"features": result.Features,
		"targets":  result.Targets,
		"failures": result.Failures,
	})
}

func runPayload(run *store.Run) map[string]any {
	payload := map[string]any{
		"id":            run.ID.String(),
		"batch_id":      run.BatchID,
		"source":        run.Source,
		"conversations": run.Conversations,
		"features":      run.Features,
		"targets":       run.Targets,
		"failures":      run.Failures,
		"started_at":    run.StartedAt,
	}
	if run.CompletedAt != nil {
		payload["completed_at"] = *run.CompletedAt
	}
	return payload
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
