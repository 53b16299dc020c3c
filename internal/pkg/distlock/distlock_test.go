package distlock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestRedisLock_AcquireRelease(t *testing.T) {
	ctx := context.Background()
	client := newTestRedis(t)

	a := newRedisLock(client, "sweep:c1", time.Minute)
	b := newRedisLock(client, "sweep:c1", time.Minute)

	ok, err := a.Acquire(ctx)
	if err != nil || !ok {
		t.Fatalf("first Acquire = %v, %v", ok, err)
	}

	ok, err = b.Acquire(ctx)
	if err != nil {
		t.Fatalf("second Acquire error: %v", err)
	}
	if ok {
		t.Error("second holder acquired a held lock")
	}

	if err := a.Release(ctx); err != nil {
		t.Fatalf("Release: %v", err)
	}

	ok, err = b.Acquire(ctx)
	if err != nil || !ok {
		t.Errorf("Acquire after release = %v, %v", ok, err)
	}
}

func TestRedisLock_ReleaseOnlyIfOwned(t *testing.T) {
	ctx := context.Background()
	client := newTestRedis(t)

	a := newRedisLock(client, "sweep:c1", time.Minute)
	b := newRedisLock(client, "sweep:c1", time.Minute)

	if ok, _ := a.Acquire(ctx); !ok {
		t.Fatal("Acquire failed")
	}
	// b never held the lock, releasing must not free a's lock.
	if err := b.Release(ctx); err != nil {
		t.Fatalf("foreign Release: %v", err)
	}
	if ok, _ := b.Acquire(ctx); ok {
		t.Error("lock was freed by a non-owner")
	}
}

func TestRedisLock_DifferentKeysIndependent(t *testing.T) {
	ctx := context.Background()
	client := newTestRedis(t)

	a := newRedisLock(client, "sweep:c1", time.Minute)
	b := newRedisLock(client, "sweep:c2", time.Minute)

	if ok, _ := a.Acquire(ctx); !ok {
		t.Fatal("Acquire c1 failed")
	}
	if ok, _ := b.Acquire(ctx); !ok {
		t.Error("Acquire c2 should be independent of c1")
	}
}

func TestLocalLock(t *testing.T) {
	ctx := context.Background()

	a := NewSweepLock(nil, nil, "c1", time.Minute)
	b := NewSweepLock(nil, nil, "c1", time.Minute)
	other := NewSweepLock(nil, nil, "c2", time.Minute)

	if ok, _ := a.Acquire(ctx); !ok {
		t.Fatal("first Acquire failed")
	}
	if ok, _ := b.Acquire(ctx); ok {
		t.Error("same-campaign lock acquired twice")
	}
	if ok, _ := other.Acquire(ctx); !ok {
		t.Error("other campaign should lock independently")
	}
	if err := a.Release(ctx); err != nil {
		t.Fatal(err)
	}
	if ok, _ := b.Acquire(ctx); !ok {
		t.Error("Acquire after release failed")
	}
	b.Release(ctx)
	other.Release(ctx)
}
