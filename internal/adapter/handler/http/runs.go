package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/domain"
	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/service"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// listRuns handles GET /runs?limit=N
func (h *Handler) listRuns(w http.ResponseWriter, r *http.Request) {
	limit := uint64(defaultListLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || n == 0 {
			writeError(w, http.StatusBadRequest, "bad_request", "limit must be a positive integer")
			return
		}
		limit = min(n, maxListLimit)
	}

	runs, err := h.repo.List(r.Context(), limit)
	if err != nil {
		h.log.Error("Failed to list runs", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", "failed to list runs")
		return
	}
	if runs == nil {
		runs = []*domain.RunResult{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": runs})
}

// getRun handles GET /runs/{runId}
func (h *Handler) getRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "runId")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "runId must be a UUID")
		return
	}

	run, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrRunNotFound) {
			writeError(w, http.StatusNotFound, "not_found", fmt.Sprintf("run %s not found", id))
			return
		}
		h.log.Error("Failed to load run", zap.String("run_id", id), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal", "failed to load run")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// listScenarios handles GET /scenarios
func (h *Handler) listScenarios(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"items": h.scenarios})
}

// runScenario handles POST /scenarios/{scenarioId}/runs?strategy=static
func (h *Handler) runScenario(w http.ResponseWriter, r *http.Request) {
	if h.runner == nil {
		writeError(w, http.StatusNotImplemented, "not_implemented", "scenario execution is disabled")
		return
	}

	id, err := strconv.Atoi(chi.URLParam(r, "scenarioId"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "scenarioId must be an integer")
		return
	}
	sc, ok := h.scenario(id)
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", fmt.Sprintf("scenario %d not found", id))
		return
	}

	kind, err := service.ParseStrategyKind(r.URL.Query().Get("strategy"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return
	}

	run, err := h.runner.Run(r.Context(), sc, kind)
	if err != nil {
		h.log.Error("Scenario run failed", zap.Int("scenario_id", id), zap.Error(err))
		writeError(w, http.StatusUnprocessableEntity, "run_failed", err.Error())
		return
	}

	w.Header().Set("Location", "/api/v1/runs/"+run.ID)
	writeJSON(w, http.StatusCreated, run)
}

func (h *Handler) scenario(id int) (service.Scenario, bool) {
	for _, sc := range h.scenarios {
		if sc.ID == id {
			return sc, true
		}
	}
	return service.Scenario{}, false
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{"error": code, "message": message})
}
