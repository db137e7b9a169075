package repository

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/room-timeline/internal/selection"
)

// ErrSessionNotFound is returned when a selection session expired or was
// never created.
var ErrSessionNotFound = errors.New("selection session not found")

// RedisSelectionStore keeps each selection session as a JSON snapshot under
// "<prefix>:<session id>".  Every save refreshes the TTL, so a session
// lives as long as the user keeps clicking.
type RedisSelectionStore struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisSelectionStore returns a store writing keys under prefix.
func NewRedisSelectionStore(rdb *redis.Client, prefix string, ttl time.Duration) *RedisSelectionStore {
	if prefix == "" {
		prefix = "selection"
	}
	return &RedisSelectionStore{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *RedisSelectionStore) key(id string) string { return s.prefix + ":" + id }

// Load returns the saved slots of a session.
func (s *RedisSelectionStore) Load(ctx context.Context, id string) ([]selection.Slot, error) {
	bs, err := s.rdb.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	var slots []selection.Slot
	if err := json.Unmarshal(bs, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// Save overwrites the session snapshot and refreshes its TTL.
func (s *RedisSelectionStore) Save(ctx context.Context, id string, slots []selection.Slot) error {
	if slots == nil {
		slots = []selection.Slot{}
	}
	bs, err := json.Marshal(slots)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.key(id), bs, s.ttl).Err()
}

// Delete drops the session.  Deleting a missing session is not an error.
func (s *RedisSelectionStore) Delete(ctx context.Context, id string) error {
	return s.rdb.Del(ctx, s.key(id)).Err()
}

// MemorySelectionStore is the in-process store used when Redis is not
// configured.  Sessions expire after ttl of inactivity; a zero ttl never
// expires.
type MemorySelectionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]memorySession
}

type memorySession struct {
	slots     []selection.Slot
	expiresAt time.Time
}

func NewMemorySelectionStore(ttl time.Duration) *MemorySelectionStore {
	return &MemorySelectionStore{ttl: ttl, now: time.Now, sessions: make(map[string]memorySession)}
}

func (s *MemorySelectionStore) Load(_ context.Context, id string) ([]selection.Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if s.ttl > 0 && !s.now().Before(sess.expiresAt) {
		delete(s.sessions, id)
		return nil, ErrSessionNotFound
	}
	out := make([]selection.Slot, len(sess.slots))
	copy(out, sess.slots)
	return out, nil
}

func (s *MemorySelectionStore) Save(_ context.Context, id string, slots []selection.Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]selection.Slot, len(slots))
	copy(cp, slots)
	s.sessions[id] = memorySession{slots: cp, expiresAt: s.now().Add(s.ttl)}
	return nil
}

func (s *MemorySelectionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
