package results

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/coocood/freecache"
)

// freecache refuses entries above 1/1024 of its size, so the outcome body
// lives next to the cache and only its expiry marker goes in.
const memoryStoreSize = 512 * 1024

// MemoryStore is the in-process variant of RedisStore.
type MemoryStore struct {
	expiry        *freecache.Cache
	expireSeconds int

	mu     sync.RWMutex
	seq    uint64
	latest []byte
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		expiry:        freecache.NewCache(memoryStoreSize),
		expireSeconds: int(ttl.Seconds()),
	}
}

func (s *MemoryStore) Publish(_ context.Context, outcome Outcome) error {
	outcomeBytes, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	marker := binary.BigEndian.AppendUint64(nil, s.seq)
	if err := s.expiry.Set([]byte(latestOutcomeKey), marker, s.expireSeconds); err != nil {
		return fmt.Errorf("cache latest outcome: %w", err)
	}
	s.latest = outcomeBytes

	return nil
}

func (s *MemoryStore) Latest(context.Context) (*Outcome, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	marker, err := s.expiry.Get([]byte(latestOutcomeKey))
	if errors.Is(err, freecache.ErrNotFound) {
		return nil, ErrNoOutcome
	}
	if err != nil {
		return nil, fmt.Errorf("get latest outcome: %w", err)
	}
	if len(marker) != 8 || binary.BigEndian.Uint64(marker) != s.seq || s.latest == nil {
		return nil, ErrNoOutcome
	}

	outcome := &Outcome{}
	if err := json.Unmarshal(s.latest, outcome); err != nil {
		return nil, fmt.Errorf("unmarshal latest outcome: %w", err)
	}
	return outcome, nil
}
