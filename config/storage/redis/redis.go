// Package redis provides the Redis connection backing the run result cache.
package redis

import (
	"context"
	"time"

	"github.com/gofiber/storage/redis/v3"
	redigo "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	config "github.com/CasperJasper/OS-Scheduling-Simulator/config/utils"
)

// Redis holds the fiber storage used by adapters and the raw client for health checks
type Redis struct {
	Client *redis.Storage
	Univ   redigo.UniversalClient
	TTL    time.Duration
}

const maxConnectAttempts = 5

// New connects to Redis, retrying with incremental backoff, and wraps the client in a fiber storage
func New(ctx context.Context, cfg *config.Redis, log *zap.Logger) (*Redis, error) {
	client := redigo.NewUniversalClient(&redigo.UniversalOptions{
		Addrs:           []string{cfg.Addr},
		Password:        cfg.Password,
		DB:              0,
		MaxRetries:      3,
		MinRetryBackoff: 100 * time.Millisecond,
		MaxRetryBackoff: 1 * time.Second,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     3 * time.Second,
		WriteTimeout:    3 * time.Second,
		PoolSize:        10,
		MinIdleConns:    2,
		ConnMaxIdleTime: 5 * time.Minute,
	})

	var err error
	for i := 1; i <= maxConnectAttempts; i++ {
		if err = client.Ping(ctx).Err(); err == nil {
			break
		}
		log.Warn("Failed to connect to Redis, retrying...", zap.Int("attempt", i), zap.Error(err))
		select {
		case <-ctx.Done():
			client.Close()
			return nil, ctx.Err()
		case <-time.After(time.Duration(i) * time.Second):
		}
	}
	if err != nil {
		client.Close()
		return nil, err
	}

	return &Redis{
		Client: redis.NewFromConnection(client),
		Univ:   client,
		TTL:    time.Duration(cfg.TTL) * time.Second,
	}, nil
}

// Close releases the underlying connection pool
func (r *Redis) Close() error {
	return r.Univ.Close()
}
