package keylock

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/neurobridge-intelligence/internal/platform/logger"
)

func TestKey(t *testing.T) {
	if got := Key("u1", "trees"); got != "u1|trees" {
		t.Fatalf("Key: want=u1|trees got=%s", got)
	}
}

func TestLocalLockerSerializesSameKey(t *testing.T) {
	l := NewLocal(8)
	ctx := context.Background()

	var mu sync.Mutex
	inside, maxInside := 0, 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(ctx, "u1|trees")
			if err != nil {
				t.Errorf("Lock: %v", err)
				return
			}
			defer unlock()
			mu.Lock()
			inside++
			if inside > maxInside {
				maxInside = inside
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
		}()
	}
	wg.Wait()
	if maxInside != 1 {
		t.Fatalf("concurrent holders: want=1 got=%d", maxInside)
	}
}

func TestLocalLockerHonorsContext(t *testing.T) {
	l := NewLocal(1)
	unlock, err := l.Lock(context.Background(), "a")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}
	defer unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, "b"); err == nil {
		t.Fatalf("Lock on held stripe: want context error")
	}

	unlock()
	unlock()
	if u, err := l.Lock(context.Background(), "b"); err != nil {
		t.Fatalf("Lock after release: %v", err)
	} else {
		u()
	}
}

func TestRedisLocker(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set TEST_REDIS_ADDR to run redis lock tests")
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	defer rdb.Close()

	l := NewRedis(logger.Nop(), rdb, RedisOptions{Prefix: "test:lock:", TTL: time.Second})
	ctx := context.Background()
	unlock, err := l.Lock(ctx, "u1|trees")
	if err != nil {
		t.Fatalf("Lock: %v", err)
	}

	short, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(short, "u1|trees"); err == nil {
		t.Fatalf("second Lock: want timeout")
	}
	unlock()

	u2, err := l.Lock(ctx, "u1|trees")
	if err != nil {
		t.Fatalf("Lock after release: %v", err)
	}
	u2()
}
