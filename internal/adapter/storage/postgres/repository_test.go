package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/domain"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

func TestInsertRun(t *testing.T) {
	run := &domain.RunResult{
		ID:           "7b1d2c7e-0f51-4c1a-9d5e-3f1a2b3c4d5e",
		ScenarioID:   3,
		ScenarioName: "High Battery, Slow Wireless, Mixed Workload",
		Strategy:     "intelligent",
		Makespan:     42.5,
		Offload:      domain.OffloadStats{Local: 5, Remote: 15, PercentageOffloaded: 75},
		CreatedAt:    time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	query, args, err := insertRun(psql, run)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(query, "INSERT INTO runs") || !strings.HasSuffix(query, "ON CONFLICT (id) DO NOTHING") {
		t.Fatalf("unexpected query %q", query)
	}
	if !strings.Contains(query, "$12") {
		t.Fatalf("expected dollar placeholders, got %q", query)
	}
	if len(args) != 12 || args[0] != run.ID || args[7] != 75.0 {
		t.Fatalf("unexpected args %v", args)
	}
	payload, ok := args[10].([]byte)
	if !ok || !strings.Contains(string(payload), `"strategy":"intelligent"`) {
		t.Fatalf("payload should carry the full run, got %T", args[10])
	}
}

func TestSelectRunsByID(t *testing.T) {
	query, args, err := selectRuns(psql).Where(squirrel.Eq{"id": "abc"}).ToSql()
	if err != nil {
		t.Fatal(err)
	}
	if query != "SELECT payload FROM runs WHERE id = $1" || len(args) != 1 {
		t.Fatalf("unexpected query %q %v", query, args)
	}
}

func TestDecodeRun(t *testing.T) {
	run, err := decodeRun([]byte(`{"id":"x","scenario_id":2,"makespan":9.5}`))
	if err != nil {
		t.Fatal(err)
	}
	if run.ID != "x" || run.ScenarioID != 2 || run.Makespan != 9.5 {
		t.Fatalf("unexpected run %+v", run)
	}
	if _, err := decodeRun([]byte(`{`)); err == nil {
		t.Fatalf("expected decode error")
	}
}
