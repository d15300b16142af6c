package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/domain"
	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/port"
)

// kvStorage is the subset of a fiber storage the cache needs
type kvStorage interface {
	Get(key string) ([]byte, error)
	Set(key string, val []byte, exp time.Duration) error
}

type resultCache struct {
	store kvStorage
	ttl   time.Duration
	log   *zap.Logger
}

// NewResultCache creates a Redis backed cache of deterministic runs.
// A zero ttl keeps entries until evicted.
func NewResultCache(store kvStorage, ttl time.Duration, log *zap.Logger) port.ResultCache {
	return &resultCache{
		store: store,
		ttl:   ttl,
		log:   log,
	}
}

func (c *resultCache) Get(_ context.Context, key string) (*domain.RunResult, bool, error) {
	data, err := c.store.Get(key)
	if err != nil {
		return nil, false, err
	}
	if len(data) == 0 {
		return nil, false, nil
	}

	var run domain.RunResult
	if err := json.Unmarshal(data, &run); err != nil {
		// a corrupt entry counts as a miss and is overwritten by the next Set
		c.log.Warn("Discarding unreadable cache entry", zap.String("key", key), zap.Error(err))
		return nil, false, nil
	}
	return &run, true, nil
}

func (c *resultCache) Set(_ context.Context, key string, run *domain.RunResult) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("encode run %s: %w", run.ID, err)
	}
	return c.store.Set(key, data, c.ttl)
}
