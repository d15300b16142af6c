// Package handler exposes recorded simulation runs over a versioned REST API.
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/domain"
	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/port"
	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/service"
)

// ScenarioRunner executes one scenario on demand
type ScenarioRunner interface {
	Run(ctx context.Context, sc service.Scenario, kind service.StrategyKind) (*domain.RunResult, error)
}

// HealthCheck reports whether a backing store is reachable
type HealthCheck func(ctx context.Context) error

type Handler struct {
	repo      port.RunRepository
	runner    ScenarioRunner
	scenarios []service.Scenario
	health    HealthCheck
	log       *zap.Logger
}

func New(repo port.RunRepository, runner ScenarioRunner, scenarios []service.Scenario, health HealthCheck, log *zap.Logger) *Handler {
	return &Handler{
		repo:      repo,
		runner:    runner,
		scenarios: scenarios,
		health:    health,
		log:       log,
	}
}

// Router builds the root router and mounts the v1 API under /api/v1
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", h.healthz)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "Use a versioned path like /api/v1/...")
	})

	r.Route("/api", func(api chi.Router) {
		api.Mount("/v1", h.v1())
	})
	return r
}

func (h *Handler) v1() chi.Router {
	r := chi.NewRouter()

	r.Get("/runs", h.listRuns)
	r.Get("/runs/{runId}", h.getRun)

	r.Get("/scenarios", h.listScenarios)
	r.Post("/scenarios/{scenarioId}/runs", h.runScenario)

	return r
}

// requestLogger logs every request through zap
func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.log.Info("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		if err := h.health(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "unavailable", err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
