package security

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// GuardConfig holds configuration for login tracking
type GuardConfig struct {
	MaxAttempts   int           // failed attempts before a block
	AttemptWindow time.Duration // window in which failures are counted
	BlockDuration time.Duration
}

func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		MaxAttempts:   5,
		AttemptWindow: 15 * time.Minute,
		BlockDuration: 15 * time.Minute,
	}
}

// Redis key patterns
const (
	failLoginPrefix    = "fail:login:"
	blockedLoginPrefix = "blocked:login:"
)

// attemptStore counts failures and holds blocks.
type attemptStore interface {
	incr(ctx context.Context, key string, window time.Duration) (int, error)
	block(ctx context.Context, key string, d time.Duration) error
	// blockedFor returns the remaining block time, zero when not blocked.
	blockedFor(ctx context.Context, key string) (time.Duration, error)
	clear(ctx context.Context, key string) error
}

// LoginGuard blocks an account after repeated failed logins.
type LoginGuard struct {
	config GuardConfig
	store  attemptStore
	audit  *AuditLogger
}

// NewLoginGuard keeps its counters in Redis when client is non-nil and in
// process memory otherwise.
func NewLoginGuard(config GuardConfig, client *goredis.Client, audit *AuditLogger) *LoginGuard {
	var store attemptStore = newMemoryAttemptStore(time.Now)
	if client != nil {
		store = &redisAttemptStore{client: client}
	}
	return &LoginGuard{config: config, store: store, audit: audit}
}

func subjectKey(email string) string {
	return HashValue(strings.ToLower(strings.TrimSpace(email)))
}

// Blocked reports whether email is currently locked out and for how long.
func (g *LoginGuard) Blocked(ctx context.Context, email string, meta RequestMeta) (time.Duration, bool, error) {
	ttl, err := g.store.blockedFor(ctx, blockedLoginPrefix+subjectKey(email))
	if err != nil {
		return 0, false, fmt.Errorf("failed to check login block: %w", err)
	}
	if ttl <= 0 {
		return 0, false, nil
	}
	g.audit.Log(Event{Type: EventLoginBlocked, Email: email, Meta: meta})
	return ttl, true, nil
}

// RecordFailure counts a failed attempt and creates a block once the limit
// is reached. It returns true when the account is now blocked.
func (g *LoginGuard) RecordFailure(ctx context.Context, email string, meta RequestMeta) (bool, error) {
	key := subjectKey(email)
	count, err := g.store.incr(ctx, failLoginPrefix+key, g.config.AttemptWindow)
	if err != nil {
		return false, fmt.Errorf("failed to count login failure: %w", err)
	}
	g.audit.Log(Event{Type: EventLoginFailed, Email: email, Meta: meta,
		Details: map[string]interface{}{"attempts": count}})

	if count < g.config.MaxAttempts {
		return false, nil
	}
	if err := g.store.block(ctx, blockedLoginPrefix+key, g.config.BlockDuration); err != nil {
		return false, fmt.Errorf("failed to create login block: %w", err)
	}
	_ = g.store.clear(ctx, failLoginPrefix+key)
	g.audit.Log(Event{Type: EventBlockCreated, Email: email, Meta: meta,
		Details: map[string]interface{}{"duration_minutes": int(g.config.BlockDuration.Minutes())}})
	return true, nil
}

// RecordSuccess clears the failure counter.
func (g *LoginGuard) RecordSuccess(ctx context.Context, email string, meta RequestMeta) error {
	g.audit.Log(Event{Type: EventLoginSuccess, Email: email, Meta: meta})
	return g.store.clear(ctx, failLoginPrefix+subjectKey(email))
}

// Lua script for atomic increment with TTL on first set
// KEYS[1] = counter key, ARGV[1] = TTL in seconds
const incrWithTTLScript = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
    redis.call('EXPIRE', KEYS[1], ARGV[1])
end
return count
`

type redisAttemptStore struct {
	client *goredis.Client
}

func (s *redisAttemptStore) incr(ctx context.Context, key string, window time.Duration) (int, error) {
	result, err := s.client.Eval(ctx, incrWithTTLScript, []string{key}, int(window.Seconds())).Result()
	if err != nil {
		return 0, err
	}
	count, ok := result.(int64)
	if !ok {
		return 0, errors.New("unexpected result type from Lua script")
	}
	return int(count), nil
}

func (s *redisAttemptStore) block(ctx context.Context, key string, d time.Duration) error {
	return s.client.Set(ctx, key, "1", d).Err()
}

func (s *redisAttemptStore) blockedFor(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := s.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	// -2: missing key, -1: no expiry (never set by us)
	if ttl < 0 {
		return 0, nil
	}
	return ttl, nil
}

func (s *redisAttemptStore) clear(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

type memoryAttemptStore struct {
	mu       sync.Mutex
	now      func() time.Time
	counts   map[string]int
	countEnd map[string]time.Time
	blocks   map[string]time.Time
}

func newMemoryAttemptStore(now func() time.Time) *memoryAttemptStore {
	return &memoryAttemptStore{
		now:      now,
		counts:   make(map[string]int),
		countEnd: make(map[string]time.Time),
		blocks:   make(map[string]time.Time),
	}
}

func (s *memoryAttemptStore) incr(_ context.Context, key string, window time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if end, ok := s.countEnd[key]; !ok || !now.Before(end) {
		s.counts[key] = 0
		s.countEnd[key] = now.Add(window)
	}
	s.counts[key]++
	return s.counts[key], nil
}

func (s *memoryAttemptStore) block(_ context.Context, key string, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks[key] = s.now().Add(d)
	return nil
}

func (s *memoryAttemptStore) blockedFor(_ context.Context, key string) (time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.blocks[key]
	if !ok {
		return 0, nil
	}
	left := until.Sub(s.now())
	if left <= 0 {
		delete(s.blocks, key)
		return 0, nil
	}
	return left, nil
}

func (s *memoryAttemptStore) clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.counts, key)
	delete(s.countEnd, key)
	return nil
}
