package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/edumaster/edumaster-web/internal/edumaster"
)

// ErrNotFound is returned when no session record exists for an ID.
var ErrNotFound = errors.New("session: not found")

// Record is one browser session: the API token plus the cached user it was
// last validated against. The token is the SPA-era localStorage value moved
// server-side; the remote API remains the authority on its validity.
type Record struct {
	ID          string          `json:"id"`
	Token       string          `json:"token"`
	User        *edumaster.User `json:"user,omitempty"`
	RefreshedAt time.Time       `json:"refreshed_at"`
}

// Store persists session records.
type Store interface {
	Get(ctx context.Context, id string) (*Record, error)
	Save(ctx context.Context, rec *Record) error
	Delete(ctx context.Context, id string) error
}

// ─── Redis store ────────────────────────────────────────────────────

const redisKeyPrefix = "edumaster:session:"

// RedisStore keeps session records in Redis with a TTL.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore creates a RedisStore.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, id string) (*Record, error) {
	raw, err := s.rdb.Get(ctx, redisKeyPrefix+id).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *RedisStore) Save(ctx context.Context, rec *Record) error {
	raw, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, redisKeyPrefix+rec.ID, raw, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, redisKeyPrefix+id).Err()
}

// ─── Memory store ───────────────────────────────────────────────────

// MemoryStore is the in-process fallback used when no REDIS_URL is
// configured, and by tests. Sessions do not survive a restart.
type MemoryStore struct {
	mu      sync.RWMutex
	ttl     time.Duration
	records map[string]memoryEntry
}

type memoryEntry struct {
	rec       Record
	expiresAt time.Time
}

// NewMemoryStore creates a MemoryStore.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, records: make(map[string]memoryEntry)}
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	entry, ok := s.records[id]
	s.mu.RUnlock()
	if !ok || time.Now().After(entry.expiresAt) {
		return nil, ErrNotFound
	}
	rec := entry.rec
	return &rec, nil
}

func (s *MemoryStore) Save(_ context.Context, rec *Record) error {
	s.mu.Lock()
	s.records[rec.ID] = memoryEntry{rec: *rec, expiresAt: time.Now().Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.records, id)
	s.mu.Unlock()
	return nil
}
