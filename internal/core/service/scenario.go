package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/domain"
	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/port"
)

// Battery levels of a scenario
const (
	BatteryHigh = "high"
	BatteryLow  = "low"
)

// Scenario is one combination of battery, wireless profile and workload
type Scenario struct {
	ID       int          `json:"id"`
	Name     string       `json:"name"`
	Battery  string       `json:"battery"`
	Wireless string       `json:"wireless"`
	Workload WorkloadKind `json:"workload"`
}

// DefaultScenarios are the six reference comparisons
func DefaultScenarios() []Scenario {
	return []Scenario{
		{ID: 1, Name: "High Battery, Fast Wireless, Mixed Workload", Battery: BatteryHigh, Wireless: "fast", Workload: WorkloadMixed},
		{ID: 2, Name: "High Battery, Fast Wireless, Many Large Tasks", Battery: BatteryHigh, Wireless: "fast", Workload: WorkloadManyLarge},
		{ID: 3, Name: "High Battery, Slow Wireless, Mixed Workload", Battery: BatteryHigh, Wireless: "slow", Workload: WorkloadMixed},
		{ID: 4, Name: "Low Battery, Fast Wireless, Mixed Workload", Battery: BatteryLow, Wireless: "fast", Workload: WorkloadMixed},
		{ID: 5, Name: "Low Battery, Slow Wireless, Mixed Workload", Battery: BatteryLow, Wireless: "slow", Workload: WorkloadMixed},
		{ID: 6, Name: "High Battery, Slow Wireless, Many Small Tasks", Battery: BatteryHigh, Wireless: "slow", Workload: WorkloadManySmall},
	}
}

// DeviceSpec describes the local device of a topology
type DeviceSpec struct {
	Name            string
	ComputeRate     float64
	BatteryCapacity float64
	LowBattery      float64
}

// ServerSpec describes an edge or cloud resource of a topology
type ServerSpec struct {
	Name        string
	Class       domain.Class
	ComputeRate float64
	AccessDelay float64
}

// RunnerConfig is everything a scenario run needs besides the scenario itself
type RunnerConfig struct {
	Seed          int64
	NumTasks      int
	CurrentTime   float64
	StrictRouting bool
	Device        DeviceSpec
	Servers       []ServerSpec
	Energy        domain.EnergyModel
	Wireless      map[string]float64 // profile -> MB per time unit
	WiredSpeed    float64
	SizeThreshold float64
	DataThreshold float64
}

// StrategySummary aggregates every run of one strategy
type StrategySummary struct {
	Runs          int     `json:"runs"`
	MeanMakespan  float64 `json:"mean_makespan"`
	MeanEnergy    float64 `json:"mean_energy"`
	MeanOffloaded float64 `json:"mean_offloaded"`
}

// Summary is the outcome of RunAll
type Summary struct {
	Runs       []*domain.RunResult        `json:"runs"`
	ByStrategy map[string]StrategySummary `json:"by_strategy"`
}

// ScenarioRunner executes scenarios and hands results to the optional adapters.
// Adapter failures are logged and never fail a run.
type ScenarioRunner struct {
	cfg       RunnerConfig
	cfgHash   string
	repo      port.RunRepository
	cache     port.ResultCache
	publisher port.ResultPublisher
	monitor   port.LinkMonitor
	log       *zap.Logger
	now       func() time.Time
}

func NewScenarioRunner(
	cfg RunnerConfig,
	repo port.RunRepository,
	cache port.ResultCache,
	publisher port.ResultPublisher,
	monitor port.LinkMonitor,
	log *zap.Logger,
) *ScenarioRunner {
	if log == nil {
		log = zap.NewNop()
	}
	return &ScenarioRunner{
		cfg:       cfg,
		cfgHash:   configHash(cfg),
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		monitor:   monitor,
		log:       log,
		now:       time.Now,
	}
}

// CacheKey identifies a deterministic run. The trailing hash covers the
// whole runner configuration so a changed topology never reuses a stale run.
func (r *ScenarioRunner) CacheKey(sc Scenario, kind StrategyKind) string {
	return fmt.Sprintf("run:%d:%s:%d:%d:%s", sc.ID, kind, r.cfg.Seed, r.cfg.NumTasks, r.cfgHash)
}

// configHash is a short fingerprint of cfg; %v prints map keys in sorted order
func configHash(cfg RunnerConfig) string {
	h := fnv.New64a()
	fmt.Fprintf(h, "%+v", cfg)
	return fmt.Sprintf("%016x", h.Sum64())
}

// Run executes one scenario under one strategy
func (r *ScenarioRunner) Run(ctx context.Context, sc Scenario, kind StrategyKind) (*domain.RunResult, error) {
	log := r.log.With(zap.Int("scenario_id", sc.ID), zap.String("strategy", string(kind)))
	key := r.CacheKey(sc, kind)

	if r.cache != nil {
		cached, ok, err := r.cache.Get(ctx, key)
		if err != nil {
			log.Warn("Result cache lookup failed", zap.Error(err))
		} else if ok {
			log.Info("Reusing cached run", zap.String("run_id", cached.ID))
			return cached, nil
		}
	}

	device, resources, err := r.topology(sc)
	if err != nil {
		return nil, err
	}

	wireless, err := r.wirelessSpeed(ctx, sc.Wireless)
	if err != nil {
		return nil, err
	}

	strategy, err := NewStrategy(kind, StrategyParams{
		SizeThreshold: r.cfg.SizeThreshold,
		DataThreshold: r.cfg.DataThreshold,
		WirelessSpeed: wireless,
		WiredSpeed:    r.cfg.WiredSpeed,
	})
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(r.cfg.Seed + int64(sc.ID)))
	tasks := GenerateWorkload(sc.Workload, r.cfg.NumTasks, r.cfg.CurrentTime, rng)

	sched := NewScheduler(device, resources, strategy, log.Named("scheduler"), WithStrictRouting(r.cfg.StrictRouting))
	if _, err := sched.ScheduleTasks(tasks, r.cfg.CurrentTime); err != nil {
		return nil, fmt.Errorf("scenario %d (%s): %w", sc.ID, kind, err)
	}
	sched.ProcessAllQueues()

	offload := sched.OffloadingStats()
	energy := sched.EnergyStats()
	result := &domain.RunResult{
		ID:                  uuid.NewString(),
		ScenarioID:          sc.ID,
		ScenarioName:        sc.Name,
		Strategy:            string(kind),
		Seed:                r.cfg.Seed,
		Makespan:            sched.Makespan(),
		TotalEnergyConsumed: energy.Consumed,
		BatteryRemaining:    energy.Remaining,
		Offload:             offload,
		QueueStats:          sched.QueueStats(),
		TasksProcessed:      offload.Local + offload.Remote,
		TasksDropped:        sched.CountEvents(domain.EventUnresolvedResource),
		EnergyShortfalls:    sched.CountEvents(domain.EventEnergyShortfall),
		WirelessSpeed:       sc.Wireless,
		WirelessRate:        wireless,
		BatteryLevel:        sc.Battery,
		WorkloadType:        string(sc.Workload),
		TaskDistribution:    sched.TaskDistribution(),
		Events:              sched.Events(),
		CreatedAt:           r.now().UTC(),
	}

	log.Info("Scenario completed",
		zap.String("run_id", result.ID),
		zap.Float64("makespan", result.Makespan),
		zap.Float64("energy", result.TotalEnergyConsumed),
		zap.Float64("offloaded_pct", result.Offload.PercentageOffloaded),
		zap.Int("dropped", result.TasksDropped))

	r.record(ctx, log, key, result)
	return result, nil
}

// RunAll executes every scenario under every strategy, scenarios outermost
func (r *ScenarioRunner) RunAll(ctx context.Context, scenarios []Scenario, kinds []StrategyKind) (*Summary, error) {
	summary := &Summary{ByStrategy: make(map[string]StrategySummary)}
	for _, sc := range scenarios {
		for _, kind := range kinds {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			result, err := r.Run(ctx, sc, kind)
			if err != nil {
				return summary, err
			}
			summary.Runs = append(summary.Runs, result)
		}
	}

	for _, kind := range kinds {
		var makespans, energies, offloaded []float64
		for _, run := range summary.Runs {
			if run.Strategy != string(kind) {
				continue
			}
			makespans = append(makespans, run.Makespan)
			energies = append(energies, run.TotalEnergyConsumed)
			offloaded = append(offloaded, run.Offload.PercentageOffloaded)
		}
		if len(makespans) == 0 {
			continue
		}
		summary.ByStrategy[string(kind)] = StrategySummary{
			Runs:          len(makespans),
			MeanMakespan:  stat.Mean(makespans, nil),
			MeanEnergy:    stat.Mean(energies, nil),
			MeanOffloaded: stat.Mean(offloaded, nil),
		}
	}
	return summary, nil
}

// topology builds fresh resources for one run
func (r *ScenarioRunner) topology(sc Scenario) (*domain.Device, []*domain.Resource, error) {
	spec := r.cfg.Device
	battery := domain.NewBattery(spec.BatteryCapacity, r.cfg.Energy)
	if sc.Battery == BatteryLow {
		battery.SetRemaining(spec.LowBattery)
	}
	device, err := domain.NewDevice(spec.Name, spec.ComputeRate, battery)
	if err != nil {
		return nil, nil, err
	}

	resources := make([]*domain.Resource, 0, len(r.cfg.Servers))
	for _, srv := range r.cfg.Servers {
		res, err := domain.NewResource(srv.Name, srv.Class, srv.ComputeRate, srv.AccessDelay)
		if err != nil {
			return nil, nil, err
		}
		resources = append(resources, res)
	}
	return device, resources, nil
}

// wirelessSpeed prefers a measured speed and falls back to the configured profile
func (r *ScenarioRunner) wirelessSpeed(ctx context.Context, profile string) (float64, error) {
	if r.monitor != nil {
		speed, err := r.monitor.WirelessSpeed(ctx, profile)
		if err == nil && speed > 0 {
			return speed, nil
		}
		r.log.Warn("Measured wireless speed unavailable, using configured profile",
			zap.String("profile", profile), zap.Error(err))
	}
	speed, ok := r.cfg.Wireless[profile]
	if !ok || speed <= 0 {
		return 0, fmt.Errorf("no wireless speed configured for profile %q", profile)
	}
	return speed, nil
}

// record hands a fresh result to the repository, the cache and the publisher
func (r *ScenarioRunner) record(ctx context.Context, log *zap.Logger, key string, result *domain.RunResult) {
	if r.repo != nil {
		if err := r.repo.Save(ctx, result); err != nil {
			log.Error("Failed to save run", zap.String("run_id", result.ID), zap.Error(err))
		}
	}
	if r.cache != nil {
		if err := r.cache.Set(ctx, key, result); err != nil {
			log.Warn("Failed to cache run", zap.String("run_id", result.ID), zap.Error(err))
		}
	}
	if r.publisher != nil {
		if err := r.publisher.PublishRun(ctx, result); err != nil {
			log.Error("Failed to publish run", zap.String("run_id", result.ID), zap.Error(err))
		}
	}
}
