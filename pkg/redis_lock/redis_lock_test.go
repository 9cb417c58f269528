package redis_lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func newTestLock(t *testing.T, ttl, maxWait time.Duration) (*RedisLock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisLock(client, "test:lock:", ttl, maxWait, nil), mr
}

func TestLockExcludesSecondHolder(t *testing.T) {
	lock, _ := newTestLock(t, time.Minute, 100*time.Millisecond)
	ctx := context.Background()

	release, err := lock.Lock(ctx, "owner:1")
	if err != nil {
		t.Fatalf("first lock: %v", err)
	}
	if _, err := lock.Lock(ctx, "owner:1"); !errors.Is(err, ErrLockTimeout) {
		t.Fatalf("second lock err = %v, want ErrLockTimeout", err)
	}

	// 其他key不受影响
	other, err := lock.Lock(ctx, "owner:2")
	if err != nil {
		t.Fatalf("other key: %v", err)
	}
	other()

	release()
	if locked, _ := lock.IsLocked(ctx, "owner:1"); locked {
		t.Fatal("lock should be released")
	}
}

func TestReleaseIgnoresForeignToken(t *testing.T) {
	lock, mr := newTestLock(t, time.Minute, time.Second)
	ctx := context.Background()

	token, ok, err := lock.TryAcquire(ctx, "k")
	if err != nil || !ok {
		t.Fatalf("acquire: %v %v", ok, err)
	}
	lock.Release(ctx, "k", "not-the-owner")
	if !mr.Exists("test:lock:k") {
		t.Fatal("foreign token released the lock")
	}
	lock.Release(ctx, "k", token)
	if mr.Exists("test:lock:k") {
		t.Fatal("owner token did not release the lock")
	}
}

func TestLockExpires(t *testing.T) {
	lock, mr := newTestLock(t, time.Second, time.Second)
	ctx := context.Background()

	if _, ok, _ := lock.TryAcquire(ctx, "k"); !ok {
		t.Fatal("acquire failed")
	}
	mr.FastForward(2 * time.Second)
	if _, ok, _ := lock.TryAcquire(ctx, "k"); !ok {
		t.Fatal("expired lock should be acquirable")
	}
}

func TestLockSerializesWaiters(t *testing.T) {
	lock, _ := newTestLock(t, time.Minute, 5*time.Second)
	ctx := context.Background()

	var mu sync.Mutex
	inside, maxInside := 0, 0
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := lock.Lock(ctx, "shared")
			if err != nil {
				t.Errorf("lock: %v", err)
				return
			}
			mu.Lock()
			inside++
			if inside > maxInside {
				maxInside = inside
			}
			mu.Unlock()

			time.Sleep(10 * time.Millisecond)

			mu.Lock()
			inside--
			mu.Unlock()
			release()
		}()
	}
	wg.Wait()
	if maxInside != 1 {
		t.Fatalf("max concurrent holders = %d, want 1", maxInside)
	}
}
