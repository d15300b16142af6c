// Package port provides behavior interfaces that connect the scheduling core to storage, cache, queue and monitoring adapters.
package port

import (
	"context"

	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/domain"
)

// RunRepository defines how run results are persisted (Postgres)
type RunRepository interface {
	Save(ctx context.Context, run *domain.RunResult) error
	GetByID(ctx context.Context, id string) (*domain.RunResult, error)
	List(ctx context.Context, limit uint64) ([]*domain.RunResult, error)
}

// ResultCache memoises deterministic runs (Redis)
type ResultCache interface {
	Get(ctx context.Context, key string) (*domain.RunResult, bool, error)
	Set(ctx context.Context, key string, run *domain.RunResult) error
}

// ResultPublisher defines how run results are published and consumed (RabbitMQ)
type ResultPublisher interface {
	PublishRun(ctx context.Context, run *domain.RunResult) error
	ConsumeRuns(ctx context.Context, handler func(run *domain.RunResult) error) error
}

// LinkMonitor defines how measured link speeds are fetched (Prometheus)
type LinkMonitor interface {
	WirelessSpeed(ctx context.Context, profile string) (float64, error)
}
