package redis_client

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// NewRedisClient connects to Redis and verifies the connection with a PING
// bounded by ctx and a 5 s timeout.
func NewRedisClient(ctx context.Context, host string, port int) (*redis.Client, error) {

	maxPool := runtime.NumCPU() * 8
	if maxPool > 512 {
		maxPool = 512
	}

	rc := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", host, port),
		PoolSize: maxPool,
	})

	pingCtx, cancelFunc := context.WithTimeout(ctx, 5*time.Second)
	defer cancelFunc()
	if err := rc.Ping(pingCtx).Err(); err != nil {
		_ = rc.Close()
		err = errors.New("Redis connection failed: " + err.Error())
		zap.L().Error("redis_connect", zap.String("addr", rc.Options().Addr), zap.Error(err))
		return nil, err
	}

	// The auction watcher relies on expired-key notifications. Managed Redis
	// offerings often forbid CONFIG SET, so a failure here is not fatal.
	if err := rc.ConfigSet(pingCtx, "notify-keyspace-events", "Ex").Err(); err != nil {
		zap.L().Warn("redis_keyspace_events_unavailable", zap.Error(err))
	}
	return rc, nil
}
