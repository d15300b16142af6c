package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/domain"
	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/service"
)

const knownID = "7b1d2c7e-0f51-4c1a-9d5e-3f1a2b3c4d5e"

type fakeRepo struct {
	runs      []*domain.RunResult
	err       error
	lastLimit uint64
}

func (f *fakeRepo) Save(context.Context, *domain.RunResult) error { return f.err }

func (f *fakeRepo) GetByID(_ context.Context, id string) (*domain.RunResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, r := range f.runs {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, domain.ErrRunNotFound
}

func (f *fakeRepo) List(_ context.Context, limit uint64) ([]*domain.RunResult, error) {
	f.lastLimit = limit
	return f.runs, f.err
}

type fakeRunner struct {
	got service.StrategyKind
	err error
}

func (f *fakeRunner) Run(_ context.Context, sc service.Scenario, kind service.StrategyKind) (*domain.RunResult, error) {
	f.got = kind
	if f.err != nil {
		return nil, f.err
	}
	return &domain.RunResult{ID: knownID, ScenarioID: sc.ID, Strategy: string(kind)}, nil
}

func newTestRouter(t *testing.T, repo *fakeRepo, runner ScenarioRunner, health HealthCheck) http.Handler {
	t.Helper()
	return New(repo, runner, service.DefaultScenarios(), health, zaptest.NewLogger(t)).Router()
}

func do(h http.Handler, method, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestListRuns(t *testing.T) {
	repo := &fakeRepo{runs: []*domain.RunResult{{ID: knownID, Strategy: "static"}}}
	h := newTestRouter(t, repo, nil, nil)

	rec := do(h, http.MethodGet, "/api/v1/runs?limit=1000")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if repo.lastLimit != maxListLimit {
		t.Fatalf("limit = %d, want capped at %d", repo.lastLimit, maxListLimit)
	}

	var body struct {
		Items []domain.RunResult `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if len(body.Items) != 1 || body.Items[0].ID != knownID {
		t.Fatalf("unexpected items %+v", body.Items)
	}
}

func TestListRunsRejectsBadLimit(t *testing.T) {
	h := newTestRouter(t, &fakeRepo{}, nil, nil)
	if rec := do(h, http.MethodGet, "/api/v1/runs?limit=-3"); rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestListRunsEmptyIsArray(t *testing.T) {
	h := newTestRouter(t, &fakeRepo{}, nil, nil)
	rec := do(h, http.MethodGet, "/api/v1/runs")
	if rec.Body.String() != "{\"items\":[]}\n" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
}

func TestGetRun(t *testing.T) {
	repo := &fakeRepo{runs: []*domain.RunResult{{ID: knownID, Makespan: 7}}}
	h := newTestRouter(t, repo, nil, nil)

	cases := []struct {
		path string
		want int
	}{
		{"/api/v1/runs/" + knownID, http.StatusOK},
		{"/api/v1/runs/00000000-0000-0000-0000-000000000000", http.StatusNotFound},
		{"/api/v1/runs/not-a-uuid", http.StatusBadRequest},
	}
	for _, tc := range cases {
		if rec := do(h, http.MethodGet, tc.path); rec.Code != tc.want {
			t.Fatalf("GET %s = %d, want %d", tc.path, rec.Code, tc.want)
		}
	}
}

func TestGetRunRepositoryFailure(t *testing.T) {
	h := newTestRouter(t, &fakeRepo{err: errors.New("db down")}, nil, nil)
	if rec := do(h, http.MethodGet, "/api/v1/runs/"+knownID); rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestRunScenario(t *testing.T) {
	runner := &fakeRunner{}
	h := newTestRouter(t, &fakeRepo{}, runner, nil)

	rec := do(h, http.MethodPost, "/api/v1/scenarios/2/runs?strategy=intelligent")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	if rec.Header().Get("Location") != "/api/v1/runs/"+knownID || runner.got != service.StrategyIntelligent {
		t.Fatalf("unexpected response headers %v, strategy %q", rec.Header(), runner.got)
	}

	for path, want := range map[string]int{
		"/api/v1/scenarios/99/runs?strategy=static": http.StatusNotFound,
		"/api/v1/scenarios/x/runs?strategy=static":  http.StatusBadRequest,
		"/api/v1/scenarios/1/runs?strategy=random":  http.StatusBadRequest,
	} {
		if rec := do(h, http.MethodPost, path); rec.Code != want {
			t.Fatalf("POST %s = %d, want %d", path, rec.Code, want)
		}
	}
}

func TestRunScenarioDisabled(t *testing.T) {
	h := newTestRouter(t, &fakeRepo{}, nil, nil)
	if rec := do(h, http.MethodPost, "/api/v1/scenarios/1/runs?strategy=static"); rec.Code != http.StatusNotImplemented {
		t.Fatalf("status = %d, want 501", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	ok := newTestRouter(t, &fakeRepo{}, nil, func(context.Context) error { return nil })
	if rec := do(ok, http.MethodGet, "/healthz"); rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	down := newTestRouter(t, &fakeRepo{}, nil, func(context.Context) error { return errors.New("db down") })
	if rec := do(down, http.MethodGet, "/healthz"); rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}

func TestUnversionedPathIsNotFound(t *testing.T) {
	h := newTestRouter(t, &fakeRepo{}, nil, nil)
	if rec := do(h, http.MethodGet, "/runs"); rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}
