package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CasperJasper/OS-Scheduling-Simulator/config/logger"
	pgstore "github.com/CasperJasper/OS-Scheduling-Simulator/config/storage/postgresql"
	redisstore "github.com/CasperJasper/OS-Scheduling-Simulator/config/storage/redis"
	config "github.com/CasperJasper/OS-Scheduling-Simulator/config/utils"
	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/adapter/monitoring/prometheus"
	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/adapter/queue/rabbitmq"
	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/adapter/storage/postgres"
	redisAdapter "github.com/CasperJasper/OS-Scheduling-Simulator/internal/adapter/storage/redis"
	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/domain"
)

func main() {
	// 1. Setup Logger & Config
	appConfig := config.New()
	log := logger.Build(appConfig.Logger)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	log.Info("Starting Verification...")

	run := &domain.RunResult{
		ID:           uuid.NewString(),
		ScenarioID:   0,
		ScenarioName: "Verification Run",
		Strategy:     "static",
		Makespan:     1,
		CreatedAt:    time.Now().UTC(),
	}

	// 2. Test Postgres
	log.Info("--- Testing Postgres ---")
	dbService, err := pgstore.New(ctx, appConfig.DB, log)
	if err != nil {
		log.Error("X Postgres: Connection Failed", zap.Error(err))
	} else {
		defer dbService.Close()
		if err := dbService.Migrate(); err != nil {
			log.Error("X Postgres: Migrate Failed", zap.Error(err))
		}
		repo := postgres.NewRunRepository(dbService, log)

		if err := repo.Save(ctx, run); err != nil {
			log.Error("X Postgres: Save Run Failed", zap.Error(err))
		} else {
			log.Info("✓ Postgres: Save Run Success")
		}

		if fetched, err := repo.GetByID(ctx, run.ID); err != nil {
			log.Error("X Postgres: Get Run Failed", zap.Error(err))
		} else {
			log.Info("✓ Postgres: Get Run Success", zap.String("FetchedID", fetched.ID))
		}
	}

	// 3. Test Redis
	log.Info("--- Testing Redis ---")
	rdb, err := redisstore.New(ctx, appConfig.Redis, log)
	if err != nil {
		log.Error("X Redis: Connection Failed", zap.Error(err))
	} else {
		defer rdb.Close()
		cache := redisAdapter.NewResultCache(rdb.Client, time.Minute, log)
		key := "verification:" + run.ID

		if err := cache.Set(ctx, key, run); err != nil {
			log.Error("X Redis: Cache Run Failed", zap.Error(err))
		} else {
			log.Info("✓ Redis: Cache Run Success")
		}

		if _, ok, err := cache.Get(ctx, key); err != nil || !ok {
			log.Error("X Redis: Cached Run Missing", zap.Bool("hit", ok), zap.Error(err))
		} else {
			log.Info("✓ Redis: Cached Run Hit")
		}
	}

	// 4. Test RabbitMQ
	log.Info("--- Testing RabbitMQ ---")
	queue, err := rabbitmq.NewRunQueue(appConfig.MQ.AMQPURL(), log)
	if err != nil {
		log.Error("X RabbitMQ: Connection Failed", zap.Error(err))
	} else {
		defer queue.Close()
		if err := queue.PublishRun(ctx, run); err != nil {
			log.Error("X RabbitMQ: Publish Failed", zap.Error(err))
		} else {
			log.Info("✓ RabbitMQ: Publish Success")
		}
	}

	// 5. Test Prometheus
	log.Info("--- Testing Prometheus ---")
	monitor := prometheus.NewLinkMonitor(appConfig.Prometheus.URL, log)
	for _, profile := range []string{"fast", "slow"} {
		speed, err := monitor.WirelessSpeed(ctx, profile)
		if err != nil {
			log.Warn("! Prometheus: Query Failed (Expected if no link exporter is running)", zap.String("profile", profile), zap.Error(err))
		} else {
			log.Info("✓ Prometheus: Query Success", zap.String("profile", profile), zap.Float64("speed", speed))
		}
	}

	log.Info("Verification Complete.")
}
