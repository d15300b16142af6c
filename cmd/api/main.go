package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/CasperJasper/OS-Scheduling-Simulator/config/logger"
	config "github.com/CasperJasper/OS-Scheduling-Simulator/config/utils"
	handler "github.com/CasperJasper/OS-Scheduling-Simulator/internal/adapter/handler/http"
	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/bootstrap"
	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/service"
)

// _shutdownPeriod is time to wait before gracefully shutting server
// _shutdownHardPeriod is time to wait beofre force closing server
// _readinessDrainDelay is time to sleep while context shutdown message propagate
const (
	_shutdownPeriod      = 10 * time.Second
	_shutdownHardPeriod  = 3 * time.Second
	_readinessDrainDelay = 5 * time.Second
)

func main() {
	rootCtx, rootCtxCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCtxCancel()

	appConfig := config.New()
	baseLogger := logger.Build(appConfig.Logger)
	zap.L().Info("Starting the API", zap.String("app", appConfig.App.Name), zap.String("env", appConfig.App.Env))

	if !appConfig.DB.Enabled {
		zap.L().Error("The API serves recorded runs and requires db.enabled")
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

	h := handler.New(adapters.Repo, runner, scenarios, adapters.DB.DBHealth, baseLogger.Named("HTTP"))

	ongoingCtx, stopOngoingGracefully := context.WithCancel(context.Background())
	server := &http.Server{
		Addr:    ":" + appConfig.HTTP.Port,
		Handler: h.Router(),
		BaseContext: func(_ net.Listener) context.Context {
			return ongoingCtx
		},
	}

	go func() {
		zap.L().Info("Listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zap.L().Error("HTTP server failed", zap.Error(err))
			rootCtxCancel()
		}
	}()

	// Wait for ctx cancelation
	<-rootCtx.Done()
	rootCtxCancel()

	// Wait for signal propagation
	time.Sleep(_readinessDrainDelay)
	zap.L().Info("Readiness check propagated, now waiting for ongoing requests to finish")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), _shutdownPeriod)
	defer cancel()
	err = server.Shutdown(shutdownCtx)
	stopOngoingGracefully()
	if err != nil {
		zap.L().Error("Failed to wait for ongoing requests to finish, waiting for forced cancellation", zap.Error(err))
		time.Sleep(_shutdownHardPeriod)
	}

	zap.L().Info("Graceful shutdown complete.")
}
