// Package distlock serializes campaign sweeps across processes. A sweep
// already in flight on another host must not be started again, so the runner
// takes a per-campaign lock before touching any prospect.
package distlock

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"
	"hash/fnv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DistLock is the interface for distributed locking.
// Implementations must be safe for use from a single goroutine;
// concurrent use across goroutines requires separate lock instances.
type DistLock interface {
	// Acquire tries to acquire the lock. Returns true if successful.
	Acquire(ctx context.Context) (bool, error)
	// Release releases the lock if we still own it.
	Release(ctx context.Context) error
}

// NewSweepLock creates the per-campaign sweep lock using the best available
// backend: Redis when configured (cross-host), PostgreSQL advisory locks when
// running against a database, and an in-process lock otherwise.
func NewSweepLock(redisClient *redis.Client, db *sql.DB, campaignID string, ttl time.Duration) DistLock {
	key := "sweep:" + campaignID
	if redisClient != nil {
		return newRedisLock(redisClient, key, ttl)
	}
	if db != nil {
		return NewPGAdvisoryLock(db, key)
	}
	return newLocalLock(key)
}

// =============================================================================
// Redis lock (multi-host deployments)
// =============================================================================
// SET NX with a TTL, so a sweep that dies with the lock held frees its
// campaign when the TTL lapses. Every lock instance carries a random owner
// token and release is a compare-and-delete Lua script: one host can never
// free a sweep started by another.

type redisLock struct {
	client *redis.Client
	key    string
	owner  string
	ttl    time.Duration
}

func newRedisLock(client *redis.Client, key string, ttl time.Duration) *redisLock {
	tok := make([]byte, 16)
	rand.Read(tok)
	return &redisLock{
		client: client,
		key:    "lock:" + key,
		owner:  hex.EncodeToString(tok),
		ttl:    ttl,
	}
}

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	end
	return 0
`)

func (l *redisLock) Acquire(ctx context.Context) (bool, error) {
	held, err := l.client.SetNX(ctx, l.key, l.owner, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire %s: %w", l.key, err)
	}
	return held, nil
}

func (l *redisLock) Release(ctx context.Context) error {
	return releaseScript.Run(ctx, l.client, []string{l.key}, l.owner).Err()
}

// =============================================================================
// PostgreSQL Advisory Lock (fallback when Redis is unavailable)
// =============================================================================
// Uses pg_try_advisory_lock / pg_advisory_unlock which are session-scoped.
// The lock is automatically released if the DB connection drops, providing
// crash-safety similar to Redis TTL expiration.

// PGAdvisoryLock implements DistLock using PostgreSQL advisory locks.
type PGAdvisoryLock struct {
	db     *sql.DB
	lockID int64
}

// NewPGAdvisoryLock creates a PG advisory lock with a deterministic lock ID
// derived from the given key string.
func NewPGAdvisoryLock(db *sql.DB, key string) *PGAdvisoryLock {
	h := fnv.New64a()
	h.Write([]byte(key))
	return &PGAdvisoryLock{
		db:     db,
		lockID: int64(h.Sum64()),
	}
}

// Acquire tries to acquire the advisory lock. Returns true if successful.
// Uses pg_try_advisory_lock which returns immediately (non-blocking).
func (l *PGAdvisoryLock) Acquire(ctx context.Context) (bool, error) {
	var acquired bool
	err := l.db.QueryRowContext(ctx, "SELECT pg_try_advisory_lock($1)", l.lockID).Scan(&acquired)
	return acquired, err
}

// Release releases the advisory lock.
func (l *PGAdvisoryLock) Release(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", l.lockID)
	return err
}

// =============================================================================
// In-process lock (single-instance deployments with the memory store)
// =============================================================================

var (
	localMu   sync.Mutex
	localHeld = make(map[string]bool)
)

type localLock struct {
	key string
}

func newLocalLock(key string) *localLock { return &localLock{key: key} }

func (l *localLock) Acquire(ctx context.Context) (bool, error) {
	localMu.Lock()
	defer localMu.Unlock()
	if localHeld[l.key] {
		return false, nil
	}
	localHeld[l.key] = true
	return true, nil
}

func (l *localLock) Release(ctx context.Context) error {
	localMu.Lock()
	defer localMu.Unlock()
	delete(localHeld, l.key)
	return nil
}
