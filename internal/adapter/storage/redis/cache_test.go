package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	fiberredis "github.com/gofiber/storage/redis/v3"
	redigo "github.com/redis/go-redis/v9"
	"go.uber.org/zap/zaptest"

	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/domain"
)

func newTestStorage(t *testing.T) (*miniredis.Miniredis, *fiberredis.Storage) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redigo.NewUniversalClient(&redigo.UniversalOptions{Addrs: []string{mr.Addr()}})
	t.Cleanup(func() { client.Close() })
	return mr, fiberredis.NewFromConnection(client)
}

func TestResultCacheRoundTrip(t *testing.T) {
	_, store := newTestStorage(t)
	cache := NewResultCache(store, time.Minute, zaptest.NewLogger(t))
	ctx := context.Background()

	if _, ok, err := cache.Get(ctx, "run:1:static:42:20"); err != nil || ok {
		t.Fatalf("empty cache should miss, got ok=%v err=%v", ok, err)
	}

	run := &domain.RunResult{ID: "r1", ScenarioID: 1, Strategy: "static", Makespan: 12.5,
		TaskDistribution: map[string]int{"EdgeServer1": 3}}
	if err := cache.Set(ctx, "run:1:static:42:20", run); err != nil {
		t.Fatal(err)
	}

	got, ok, err := cache.Get(ctx, "run:1:static:42:20")
	if err != nil || !ok {
		t.Fatalf("expected hit, got ok=%v err=%v", ok, err)
	}
	if got.ID != "r1" || got.Makespan != 12.5 || got.TaskDistribution["EdgeServer1"] != 3 {
		t.Fatalf("unexpected cached run %+v", got)
	}
}

func TestResultCacheExpires(t *testing.T) {
	mr, store := newTestStorage(t)
	cache := NewResultCache(store, time.Minute, zaptest.NewLogger(t))
	ctx := context.Background()

	if err := cache.Set(ctx, "k", &domain.RunResult{ID: "r"}); err != nil {
		t.Fatal(err)
	}
	mr.FastForward(2 * time.Minute)

	if _, ok, _ := cache.Get(ctx, "k"); ok {
		t.Fatalf("entry should have expired")
	}
}

func TestResultCacheCorruptEntryIsMiss(t *testing.T) {
	mr, store := newTestStorage(t)
	cache := NewResultCache(store, 0, zaptest.NewLogger(t))

	if err := mr.Set("k", "{not json"); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := cache.Get(context.Background(), "k"); ok || err != nil {
		t.Fatalf("corrupt entry should be a miss, got ok=%v err=%v", ok, err)
	}
}
