package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"

	"github.com/CasperJasper/OS-Scheduling-Simulator/config/logger"
	config "github.com/CasperJasper/OS-Scheduling-Simulator/config/utils"
	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/bootstrap"
	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/service"
)

// _publishDrainDelay gives the broker time to flush confirms before the connection closes
const _publishDrainDelay = 1 * time.Second

func main() {
	rootCtx, rootCtxCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCtxCancel()

	// Init config
	appConfig := config.New()
	baseLogger := logger.Build(appConfig.Logger)
	zap.L().Debug("Logger Builded successfully")

	zap.L().Info("Starting the simulator", zap.String("app", appConfig.App.Name), zap.String("env", appConfig.App.Env))

	kinds, err := bootstrap.Strategies(appConfig.Simulation)
	if err != nil {
		zap.L().Error("Invalid strategy configuration", zap.Error(err))
		os.Exit(1)
	}

	scenarios, err := bootstrap.Scenarios(appConfig.Simulation)
	if err != nil {
		zap.L().Error("Invalid scenario configuration", zap.Error(err))
		os.Exit(1)
	}

	adapters, err := bootstrap.Connect(rootCtx, appConfig, baseLogger)
	if err != nil {
		zap.L().Error("Error initializing adapters", zap.Error(err))
		os.Exit(1)
	}
	defer adapters.Close()

	runner := service.NewScenarioRunner(
		bootstrap.RunnerConfig(appConfig.Simulation),
		adapters.Repo,
		adapters.Cache,
		adapters.Publisher,
		adapters.Monitor,
		baseLogger.Named("Runner"),
	)

	summary, err := runner.RunAll(rootCtx, scenarios, kinds)
	if err != nil {
		zap.L().Error("Simulation aborted", zap.Error(err), zap.Int("completed_runs", len(summary.Runs)))
		adapters.Close()
		os.Exit(1)
	}

	printSummary(summary, kinds)

	if adapters.Publisher != nil {
		time.Sleep(_publishDrainDelay)
	}
	zap.L().Info("Simulation complete", zap.Int("runs", len(summary.Runs)))
}

func printSummary(summary *service.Summary, kinds []service.StrategyKind) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SCENARIO\tSTRATEGY\tMAKESPAN\tENERGY\tBATTERY\tOFFLOADED %\tDROPPED\tSHORTFALLS")
	for _, run := range summary.Runs {
		fmt.Fprintf(w, "%d %s\t%s\t%.2f\t%.2f\t%.2f\t%.1f\t%d\t%d\n",
			run.ScenarioID, run.ScenarioName, run.Strategy,
			run.Makespan, run.TotalEnergyConsumed, run.BatteryRemaining,
			run.Offload.PercentageOffloaded, run.TasksDropped, run.EnergyShortfalls)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "STRATEGY\tRUNS\tMEAN MAKESPAN\tMEAN ENERGY\tMEAN OFFLOADED %")
	for _, kind := range kinds {
		s, ok := summary.ByStrategy[string(kind)]
		if !ok {
			continue
		}
		fmt.Fprintf(w, "%s\t%d\t%.2f\t%.2f\t%.1f\n", kind, s.Runs, s.MeanMakespan, s.MeanEnergy, s.MeanOffloaded)
	}
	w.Flush()
}
