package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/domain"
	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/port"
)

// RecorderService consumes published runs and persists them
type RecorderService struct {
	recorderID string
	repo       port.RunRepository
	queue      port.ResultPublisher
	interval   time.Duration
	recorded   atomic.Int64
	failed     atomic.Int64
	log        *zap.Logger
}

func NewRecorderService(
	recorderID string,
	repo port.RunRepository,
	queue port.ResultPublisher,
	log *zap.Logger,
) *RecorderService {
	if log == nil {
		log = zap.NewNop()
	}
	return &RecorderService{
		recorderID: recorderID,
		repo:       repo,
		queue:      queue,
		interval:   10 * time.Second,
		log:        log,
	}
}

// Start begins the progress loop and the consumer
func (r *RecorderService) Start(ctx context.Context) error {
	r.log.Info("Starting recorder", zap.String("id", r.recorderID))

	go r.progressLoop(ctx)

	if err := r.queue.ConsumeRuns(ctx, r.Record); err != nil {
		return fmt.Errorf("failed to start consumer: %w", err)
	}
	return nil
}

// Record persists one run. Runs carrying no id are rejected.
func (r *RecorderService) Record(run *domain.RunResult) error {
	if run == nil || run.ID == "" {
		r.failed.Add(1)
		return errors.New("run without id")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.repo.Save(ctx, run); err != nil {
		r.failed.Add(1)
		r.log.Error("Failed to record run", zap.String("run_id", run.ID), zap.Error(err))
		return err
	}

	r.recorded.Add(1)
	r.log.Info("Run recorded",
		zap.String("run_id", run.ID),
		zap.Int("scenario_id", run.ScenarioID),
		zap.String("strategy", run.Strategy))
	return nil
}

// Recorded returns how many runs were saved and how many were rejected
func (r *RecorderService) Recorded() (saved, failed int64) {
	return r.recorded.Load(), r.failed.Load()
}

func (r *RecorderService) progressLoop(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			saved, failed := r.Recorded()
			r.log.Debug("Recorder progress",
				zap.String("id", r.recorderID),
				zap.Int64("saved", saved),
				zap.Int64("failed", failed))
		}
	}
}
