package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	pgstore "github.com/CasperJasper/OS-Scheduling-Simulator/config/storage/postgresql"
	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/domain"
	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/port"
)

const runsTable = "runs"

// uniqueViolation is the postgres error code raised on duplicate keys
const uniqueViolation = "23505"

type runRepository struct {
	db  *pgstore.DB
	log *zap.Logger
}

// NewRunRepository creates a new postgres repository for simulation runs
func NewRunRepository(db *pgstore.DB, log *zap.Logger) port.RunRepository {
	return &runRepository{
		db:  db,
		log: log,
	}
}

// insertRun builds the upsert of one run; saving the same run twice is a no-op
func insertRun(qb squirrel.StatementBuilderType, run *domain.RunResult) (string, []any, error) {
	payload, err := json.Marshal(run)
	if err != nil {
		return "", nil, err
	}
	return qb.Insert(runsTable).
		Columns(
			"id", "scenario_id", "scenario_name", "strategy", "makespan",
			"energy_consumed", "battery_remaining", "offload_percentage",
			"tasks_processed", "tasks_dropped", "payload", "created_at",
		).
		Values(
			run.ID, run.ScenarioID, run.ScenarioName, run.Strategy, run.Makespan,
			run.TotalEnergyConsumed, run.BatteryRemaining, run.Offload.PercentageOffloaded,
			run.TasksProcessed, run.TasksDropped, payload, run.CreatedAt,
		).
		Suffix("ON CONFLICT (id) DO NOTHING").
		ToSql()
}

func selectRuns(qb squirrel.StatementBuilderType) squirrel.SelectBuilder {
	return qb.Select("payload").From(runsTable)
}

func (r *runRepository) Save(ctx context.Context, run *domain.RunResult) error {
	query, args, err := insertRun(*r.db.QueryBuilder, run)
	if err != nil {
		return err
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		if r.db.ErrorCode(err) == uniqueViolation {
			return nil
		}
		r.log.Error("Failed to save run", zap.String("run_id", run.ID), zap.Error(err))
		return err
	}
	return nil
}

func (r *runRepository) GetByID(ctx context.Context, id string) (*domain.RunResult, error) {
	query, args, err := selectRuns(*r.db.QueryBuilder).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var payload []byte
	if err := r.db.QueryRow(ctx, query, args...).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrRunNotFound, id)
		}
		return nil, err
	}
	return decodeRun(payload)
}

func (r *runRepository) List(ctx context.Context, limit uint64) ([]*domain.RunResult, error) {
	builder := selectRuns(*r.db.QueryBuilder).OrderBy("created_at DESC", "scenario_id", "strategy")
	if limit > 0 {
		builder = builder.Limit(limit)
	}
	query, args, err := builder.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*domain.RunResult
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		run, err := decodeRun(payload)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func decodeRun(payload []byte) (*domain.RunResult, error) {
	var run domain.RunResult
	if err := json.Unmarshal(payload, &run); err != nil {
		return nil, fmt.Errorf("decode run payload: %w", err)
	}
	return &run, nil
}
