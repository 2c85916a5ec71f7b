package keylock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/neurobridge-intelligence/internal/platform/logger"
)

// releaseScript deletes the key only if this holder still owns it.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisLocker struct {
	rdb    goredis.UniversalClient
	log    *logger.Logger
	prefix string
	ttl    time.Duration
	retry  time.Duration
}

type RedisOptions struct {
	Prefix string
	TTL    time.Duration
	Retry  time.Duration
}

func NewRedis(log *logger.Logger, rdb goredis.UniversalClient, opts RedisOptions) *RedisLocker {
	if opts.Prefix == "" {
		opts.Prefix = "intelligence:lock:"
	}
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Second
	}
	if opts.Retry <= 0 {
		opts.Retry = 25 * time.Millisecond
	}
	return &RedisLocker{
		rdb:    rdb,
		log:    log.With("component", "RedisLocker"),
		prefix: opts.Prefix,
		ttl:    opts.TTL,
		retry:  opts.Retry,
	}
}

func (l *RedisLocker) Mode() string { return "redis" }

func (l *RedisLocker) Lock(ctx context.Context, key string) (func(), error) {
	full := l.prefix + key
	token := uuid.NewString()

	wait := l.retry
	for {
		ok, err := l.rdb.SetNX(ctx, full, token, l.ttl).Result()
		if err != nil {
			return func() {}, fmt.Errorf("redis lock %s: %w", key, err)
		}
		if ok {
			break
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return func() {}, ctx.Err()
		case <-t.C:
		}
		if wait < 250*time.Millisecond {
			wait *= 2
		}
	}

	released := false
	return func() {
		if released {
			return
		}
		released = true
		// release on a fresh context so a cancelled request still frees the key
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.rdb, []string{full}, token).Err(); err != nil {
			l.log.Warn("redis unlock failed", "key", key, "error", err)
		}
	}, nil
}
