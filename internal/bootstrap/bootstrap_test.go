package bootstrap

import (
	"context"
	"testing"

	"github.com/spf13/viper"
	"go.uber.org/zap/zaptest"

	config "github.com/CasperJasper/OS-Scheduling-Simulator/config/utils"
	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/domain"
	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/service"
)

func loadDefaults(t *testing.T) *config.AppConfig {
	t.Helper()
	v := viper.New()
	v.SetConfigName("does-not-exist")
	v.AddConfigPath(t.TempDir())
	cfg, err := config.Load(v)
	if err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestRunnerConfigFromDefaults(t *testing.T) {
	rc := RunnerConfig(loadDefaults(t).Simulation)

	if rc.Seed != 42 || rc.NumTasks != 20 || rc.WiredSpeed != 1000 {
		t.Fatalf("unexpected runner config %+v", rc)
	}
	if len(rc.Servers) != 3 || rc.Servers[2].Class != domain.ClassCloud || rc.Servers[0].ComputeRate != 3 {
		t.Fatalf("unexpected servers %+v", rc.Servers)
	}
	if rc.Wireless["fast"] != 100 || rc.Wireless["slow"] != 10 {
		t.Fatalf("unexpected wireless profiles %v", rc.Wireless)
	}
	if rc.Energy != (domain.EnergyModel{BaseCost: 1, PerUnitCost: 0.5}) {
		t.Fatalf("unexpected energy model %+v", rc.Energy)
	}
}

func TestStrategies(t *testing.T) {
	kinds, err := Strategies(&config.Simulation{Strategies: []string{"intelligent", "static"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(kinds) != 2 || kinds[0] != service.StrategyIntelligent {
		t.Fatalf("unexpected kinds %v", kinds)
	}
	if _, err := Strategies(&config.Simulation{Strategies: []string{"greedy"}}); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
	if _, err := Strategies(&config.Simulation{}); err == nil {
		t.Fatalf("expected error for empty list")
	}
}

func TestScenariosDefaultToReferenceSet(t *testing.T) {
	scenarios, err := Scenarios(loadDefaults(t).Simulation)
	if err != nil {
		t.Fatal(err)
	}
	if len(scenarios) != len(service.DefaultScenarios()) {
		t.Fatalf("expected the reference scenarios, got %d", len(scenarios))
	}
}

func TestScenariosFromConfig(t *testing.T) {
	sim := loadDefaults(t).Simulation
	sim.Scenarios = []config.Scenario{
		{ID: 7, Battery: "LOW", Wireless: "Fast", Workload: "many_large"},
		{ID: 8, Name: "Slow link", Battery: "high", Wireless: "slow", Workload: "mixed"},
	}
	scenarios, err := Scenarios(sim)
	if err != nil {
		t.Fatal(err)
	}
	if len(scenarios) != 2 {
		t.Fatalf("got %d scenarios, want 2", len(scenarios))
	}
	first := scenarios[0]
	if first.Battery != service.BatteryLow || first.Wireless != "fast" || first.Workload != service.WorkloadManyLarge {
		t.Fatalf("unexpected scenario %+v", first)
	}
	if first.Name != "Scenario 7" || scenarios[1].Name != "Slow link" {
		t.Fatalf("unexpected names %q, %q", first.Name, scenarios[1].Name)
	}
}

func TestScenariosRejectInvalidEntries(t *testing.T) {
	cases := map[string]config.Scenario{
		"battery":  {ID: 1, Battery: "medium", Wireless: "fast", Workload: "mixed"},
		"wireless": {ID: 1, Battery: "high", Wireless: "satellite", Workload: "mixed"},
		"workload": {ID: 1, Battery: "high", Wireless: "fast", Workload: "bursty"},
	}
	for name, sc := range cases {
		sim := loadDefaults(t).Simulation
		sim.Scenarios = []config.Scenario{sc}
		if _, err := Scenarios(sim); err == nil {
			t.Fatalf("expected error for invalid %s", name)
		}
	}

	sim := loadDefaults(t).Simulation
	sim.Scenarios = []config.Scenario{
		{ID: 1, Battery: "high", Wireless: "fast", Workload: "mixed"},
		{ID: 1, Battery: "low", Wireless: "slow", Workload: "mixed"},
	}
	if _, err := Scenarios(sim); err == nil {
		t.Fatalf("expected error for duplicate ids")
	}
}

func TestConnectWithEverythingDisabled(t *testing.T) {
	a, err := Connect(context.Background(), loadDefaults(t), zaptest.NewLogger(t))
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()
	if a.Repo != nil || a.Cache != nil || a.Publisher != nil || a.Monitor != nil {
		t.Fatalf("disabled backends must leave ports nil: %+v", a)
	}
}
