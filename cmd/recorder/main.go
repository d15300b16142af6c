package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/CasperJasper/OS-Scheduling-Simulator/config/logger"
	config "github.com/CasperJasper/OS-Scheduling-Simulator/config/utils"
	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/bootstrap"
	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/service"
)

func main() {
	rootCtx, rootCtxCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCtxCancel()

	// 1. Init Config & Logger
	appConfig := config.New()
	log := logger.Build(appConfig.Logger)

	recorderID := os.Getenv("RECORDER_NAME")
	if recorderID == "" {
		recorderID = fmt.Sprintf("recorder-%d", time.Now().Unix())
	}
	log = log.With(zap.String("service", "recorder"), zap.String("recorder", recorderID))
	log.Info("Starting run recorder")

	// 2. Init Adapters; the recorder needs the database and the broker
	if !appConfig.DB.Enabled || !appConfig.MQ.Enabled {
		log.Fatal("Recorder requires db.enabled and mq.enabled")
	}
	adapters, err := bootstrap.Connect(rootCtx, appConfig, log)
	if err != nil {
		log.Fatal("Failed to init adapters", zap.Error(err))
	}

	// 3. Start Recorder
	recorder := service.NewRecorderService(recorderID, adapters.Repo, adapters.Publisher, log)
	if err := recorder.Start(rootCtx); err != nil {
		adapters.Close()
		log.Fatal("Failed to start recorder", zap.Error(err))
	}

	log.Info("Recorder started successfully. Waiting for runs...")

	// 4. Wait for Shutdown
	<-rootCtx.Done()
	log.Info("Shutting down...")

	adapters.Close()

	saved, failed := recorder.Recorded()
	log.Info("Shutdown complete", zap.Int64("saved", saved), zap.Int64("failed", failed))
}
