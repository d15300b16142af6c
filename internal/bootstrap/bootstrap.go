// Package bootstrap turns the loaded configuration into scenario runner settings and connected adapters.
package bootstrap

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	pgstore "github.com/CasperJasper/OS-Scheduling-Simulator/config/storage/postgresql"
	redisstore "github.com/CasperJasper/OS-Scheduling-Simulator/config/storage/redis"
	config "github.com/CasperJasper/OS-Scheduling-Simulator/config/utils"
	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/adapter/monitoring/prometheus"
	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/adapter/queue/rabbitmq"
	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/adapter/storage/postgres"
	redisAdapter "github.com/CasperJasper/OS-Scheduling-Simulator/internal/adapter/storage/redis"
	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/domain"
	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/port"
	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/service"
)

// RunnerConfig maps the simulation section onto the scenario runner settings
func RunnerConfig(sim *config.Simulation) service.RunnerConfig {
	servers := make([]service.ServerSpec, 0, len(sim.Servers))
	for _, srv := range sim.Servers {
		servers = append(servers, service.ServerSpec{
			Name:        srv.Name,
			Class:       domain.ParseClass(srv.Class, srv.Name),
			ComputeRate: srv.ComputeRate,
			AccessDelay: srv.AccessDelay,
		})
	}

	return service.RunnerConfig{
		Seed:          sim.Seed,
		NumTasks:      sim.NumTasks,
		CurrentTime:   sim.CurrentTime,
		StrictRouting: sim.StrictRouting,
		Device: service.DeviceSpec{
			Name:            sim.Device.Name,
			ComputeRate:     sim.Device.ComputeRate,
			BatteryCapacity: sim.Device.BatteryCapacity,
			LowBattery:      sim.Device.LowBattery,
		},
		Servers: servers,
		Energy: domain.EnergyModel{
			BaseCost:    sim.Energy.BaseCost,
			PerUnitCost: sim.Energy.PerUnitCost,
		},
		Wireless:      wirelessProfiles(sim.Network),
		WiredSpeed:    sim.Network.WiredBackhaul,
		SizeThreshold: sim.Static.SizeThreshold,
		DataThreshold: sim.Static.DataThreshold,
	}
}

func wirelessProfiles(n config.Network) map[string]float64 {
	profiles := make(map[string]float64, len(config.WirelessProfiles))
	for _, name := range config.WirelessProfiles {
		if speed, ok := n.WirelessSpeed(name); ok {
			profiles[name] = speed
		}
	}
	return profiles
}

// Scenarios returns the configured scenarios, or the reference six when none are configured
func Scenarios(sim *config.Simulation) ([]service.Scenario, error) {
	if len(sim.Scenarios) == 0 {
		return service.DefaultScenarios(), nil
	}

	seen := make(map[int]bool, len(sim.Scenarios))
	scenarios := make([]service.Scenario, 0, len(sim.Scenarios))
	for _, sc := range sim.Scenarios {
		if seen[sc.ID] {
			return nil, fmt.Errorf("simulation.scenarios: duplicate id %d", sc.ID)
		}
		seen[sc.ID] = true

		battery := strings.ToLower(sc.Battery)
		if battery != service.BatteryHigh && battery != service.BatteryLow {
			return nil, fmt.Errorf("simulation.scenarios[%d]: battery must be high or low, got %q", sc.ID, sc.Battery)
		}
		wireless := strings.ToLower(sc.Wireless)
		if _, ok := sim.Network.WirelessSpeed(wireless); !ok {
			return nil, fmt.Errorf("simulation.scenarios[%d]: unknown wireless profile %q", sc.ID, sc.Wireless)
		}
		workload, err := service.ParseWorkloadKind(sc.Workload)
		if err != nil {
			return nil, fmt.Errorf("simulation.scenarios[%d]: %w", sc.ID, err)
		}

		name := sc.Name
		if name == "" {
			name = fmt.Sprintf("Scenario %d", sc.ID)
		}
		scenarios = append(scenarios, service.Scenario{
			ID:       sc.ID,
			Name:     name,
			Battery:  battery,
			Wireless: wireless,
			Workload: workload,
		})
	}
	return scenarios, nil
}

// Strategies parses the configured policy names, keeping their order
func Strategies(sim *config.Simulation) ([]service.StrategyKind, error) {
	if len(sim.Strategies) == 0 {
		return nil, fmt.Errorf("simulation.strategies is empty")
	}
	kinds := make([]service.StrategyKind, 0, len(sim.Strategies))
	for _, name := range sim.Strategies {
		kind, err := service.ParseStrategyKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// Adapters holds every optional backend. Disabled backends leave their port nil.
type Adapters struct {
	DB    *pgstore.DB
	Redis *redisstore.Redis
	Queue *rabbitmq.RunQueue

	Repo      port.RunRepository
	Cache     port.ResultCache
	Publisher port.ResultPublisher
	Monitor   port.LinkMonitor
}

// Connect opens the enabled backends. On failure everything opened so far is closed.
func Connect(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (*Adapters, error) {
	a := &Adapters{}

	if cfg.DB.Enabled {
		db, err := pgstore.New(ctx, cfg.DB, log.Named("DB"))
		if err != nil {
			return nil, fmt.Errorf("init postgres: %w", err)
		}
		a.DB = db
		if err := db.Migrate(); err != nil {
			a.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		a.Repo = postgres.NewRunRepository(db, log.Named("RunRepository"))
		log.Info("Successfully connected to the database", zap.String("db", cfg.DB.Connection))
	}

	if cfg.Redis.Enabled {
		rdb, err := redisstore.New(ctx, cfg.Redis, log.Named("Redis"))
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init redis: %w", err)
		}
		a.Redis = rdb
		a.Cache = redisAdapter.NewResultCache(rdb.Client, rdb.TTL, log.Named("ResultCache"))
		log.Info("Successfully connected to the cache server", zap.String("address", cfg.Redis.Addr))
	}

	if cfg.MQ.Enabled {
		q, err := rabbitmq.NewRunQueue(cfg.MQ.AMQPURL(), log.Named("RabbitMQ"))
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init rabbitmq: %w", err)
		}
		a.Queue = q
		a.Publisher = q
		log.Info("Successfully connected to the broker", zap.String("host", cfg.MQ.Host))
	}

	if cfg.Prometheus.Enabled {
		a.Monitor = prometheus.NewLinkMonitor(cfg.Prometheus.URL, log.Named("Prometheus"))
	}
	return a, nil
}

// Close releases every opened backend
func (a *Adapters) Close() {
	if a.Queue != nil {
		a.Queue.Close()
	}
	if a.Redis != nil {
		a.Redis.Close()
	}
	if a.DB != nil {
		a.DB.Close()
	}
}
