package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// TrackerState is the in-flight practice session of one user.
type TrackerState struct {
	ToolName     string    `json:"tool_name"`
	StartedAt    time.Time `json:"started_at"`
	Interactions int       `json:"interactions"`
}

// TrackerStore keeps active practice sessions. Take must read and delete atomically
// so concurrent ends observe the state at most once.
type TrackerStore interface {
	Put(ctx context.Context, userID uuid.UUID, st TrackerState) error
	Get(ctx context.Context, userID uuid.UUID) (*TrackerState, error)
	Incr(ctx context.Context, userID uuid.UUID) (bool, error)
	Take(ctx context.Context, userID uuid.UUID) (*TrackerState, error)
}

type memoryTrackerStore struct {
	mu     sync.Mutex
	active map[uuid.UUID]TrackerState
}

func NewMemoryTrackerStore() TrackerStore {
	return &memoryTrackerStore{active: make(map[uuid.UUID]TrackerState)}
}

func (s *memoryTrackerStore) Put(_ context.Context, userID uuid.UUID, st TrackerState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active[userID] = st
	return nil
}

func (s *memoryTrackerStore) Get(_ context.Context, userID uuid.UUID) (*TrackerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.active[userID]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (s *memoryTrackerStore) Incr(_ context.Context, userID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.active[userID]
	if !ok {
		return false, nil
	}
	st.Interactions++
	s.active[userID] = st
	return true, nil
}

func (s *memoryTrackerStore) Take(_ context.Context, userID uuid.UUID) (*TrackerState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.active[userID]
	if !ok {
		return nil, nil
	}
	delete(s.active, userID)
	return &st, nil
}

const trackerKeyPrefix = "practice:tracker:"

// incrIfExists bumps the interaction counter only for an active session.
var incrIfExists = goredis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 1 then
  return redis.call('HINCRBY', KEYS[1], 'interactions', 1)
end
return -1
`)

type redisTrackerStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

// NewRedisTrackerStore shares tracker state across API replicas. Entries expire after ttl.
func NewRedisTrackerStore(rdb *goredis.Client, ttl time.Duration) TrackerStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &redisTrackerStore{rdb: rdb, ttl: ttl}
}

func trackerKey(userID uuid.UUID) string { return trackerKeyPrefix + userID.String() }

func (s *redisTrackerStore) Put(ctx context.Context, userID uuid.UUID, st TrackerState) error {
	key := trackerKey(userID)
	_, err := s.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		p.Del(ctx, key)
		p.HSet(ctx, key,
			"tool_name", st.ToolName,
			"started_at", strconv.FormatInt(st.StartedAt.UnixNano(), 10),
			"interactions", st.Interactions,
		)
		p.Expire(ctx, key, s.ttl)
		return nil
	})
	return err
}

func (s *redisTrackerStore) Get(ctx context.Context, userID uuid.UUID) (*TrackerState, error) {
	fields, err := s.rdb.HGetAll(ctx, trackerKey(userID)).Result()
	if err != nil {
		return nil, err
	}
	return decodeTrackerState(fields)
}

func (s *redisTrackerStore) Incr(ctx context.Context, userID uuid.UUID) (bool, error) {
	n, err := incrIfExists.Run(ctx, s.rdb, []string{trackerKey(userID)}).Int64()
	if err != nil {
		return false, err
	}
	return n >= 0, nil
}

func (s *redisTrackerStore) Take(ctx context.Context, userID uuid.UUID) (*TrackerState, error) {
	key := trackerKey(userID)
	var get *goredis.MapStringStringCmd
	_, err := s.rdb.TxPipelined(ctx, func(p goredis.Pipeliner) error {
		get = p.HGetAll(ctx, key)
		p.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return decodeTrackerState(get.Val())
}

func decodeTrackerState(fields map[string]string) (*TrackerState, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	nanos, err := strconv.ParseInt(fields["started_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("tracker state: bad started_at: %w", err)
	}
	interactions, _ := strconv.Atoi(fields["interactions"])
	return &TrackerState{
		ToolName:     fields["tool_name"],
		StartedAt:    time.Unix(0, nanos).UTC(),
		Interactions: interactions,
	}, nil
}
