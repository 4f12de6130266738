package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mantisproject/mantis/internal/core/domain"
	"github.com/mantisproject/mantis/internal/core/ports"
	"github.com/mantisproject/mantis/internal/observability/metrics"
)

// Router exposes the query and rebuild entry points to the surrounding
// network, plus health and metrics endpoints.
type Router struct {
	queryUC   ports.QueryService
	builderUC ports.KnowledgeBuilder
	metrics   *metrics.Metrics

	// listManuals resolves an empty rebuild request to the configured
	// manuals directory.
	listManuals func() ([]string, error)
}

func NewRouter(
	queryUC ports.QueryService,
	builderUC ports.KnowledgeBuilder,
	m *metrics.Metrics,
	listManuals func() ([]string, error),
) *Router {
	return &Router{
		queryUC:     queryUC,
		builderUC:   builderUC,
		metrics:     m,
		listManuals: listManuals,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/query", rt.query)
	mux.HandleFunc("/v1/rebuild", rt.rebuild)
	mux.Handle("/metrics", rt.metrics.Handler())
	return requestIDMiddleware(accessLogMiddleware(mux))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) query(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Question  string   `json:"question"`
		Limit     int      `json:"limit"`
		Platforms []string `json:"platforms"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	start := time.Now()
	answer, err := rt.queryUC.Query(r.Context(), req.Question, req.Limit, domain.SearchFilter{
		PlatformTags: req.Platforms,
	})
	if err != nil {
		rt.metrics.ObserveQuery(time.Since(start), 0, err)
		writeJSON(w, queryErrorStatus(err), map[string]string{"error": err.Error()})
		return
	}

	rt.metrics.ObserveQuery(time.Since(start), len(answer.Sources), nil)
	writeJSON(w, http.StatusOK, answer)
}

func (rt *Router) rebuild(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		Paths []string `json:"paths"`
	}
	// A bare POST means "rebuild everything"; only malformed bodies are
	// rejected.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	paths := req.Paths
	if len(paths) == 0 {
		var err error
		paths, err = rt.listManuals()
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
			return
		}
	}

	start := time.Now()
	report, err := rt.builderUC.Rebuild(r.Context(), paths)
	chunks := 0
	if report != nil {
		chunks = report.Chunks
	}
	rt.metrics.ObserveBuild(time.Since(start), chunks, err)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrEmptyBuild) || errors.Is(err, domain.ErrInvalidInput) {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, map[string]any{"error": err.Error(), "report": report})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func queryErrorStatus(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyQuery), errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrGenerationUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
