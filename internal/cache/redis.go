// Package cache provides the Redis client and the rendered-page cache.
package cache

import (
	"context"
	"errors"
	"strings"
	"time"

	"quill/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const connectTimeout = 5 * time.Second

// NewRedisClient connects to Redis at addr (host:port or a redis:// URL) and
// returns a ready client. An unreachable or misconfigured Redis yields nil:
// the app then runs with the page cache disabled rather than failing startup.
func NewRedisClient(addr string) *redis.Client {
	opts, err := redisOptions(addr)
	if err != nil {
		middleware.Logger.Warn("invalid redis address, page cache disabled",
			"addr", addr, "error", err)
		return nil
	}

	client := redis.NewClient(opts)
	client.AddHook(errorCounterHook{})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		middleware.Logger.Warn("redis unreachable, page cache disabled",
			"addr", addr, "error", err)
		_ = client.Close()
		return nil
	}

	middleware.Logger.Info("redis connected", "addr", opts.Addr)
	return client
}

func redisOptions(addr string) (*redis.Options, error) {
	if strings.Contains(addr, "://") {
		return redis.ParseURL(addr)
	}
	return &redis.Options{Addr: addr}, nil
}

// errorCounterHook feeds command failures into the redis error counter.
// A cache miss (redis.Nil) is not a failure.
type errorCounterHook struct{}

func (errorCounterHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (errorCounterHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (errorCounterHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}
