package results

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/exercisetracker/internal/telemetry/tracing"

	"github.com/go-redis/redis/v8"
)

const latestOutcomeKey = "tracker::latest-outcome"

// RedisStore keeps the latest outcome in redis, so it survives restarts and is
// visible to other instances.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		rdb: rdb,
		ttl: ttl,
	}
}

func (s *RedisStore) Publish(ctx context.Context, outcome Outcome) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "results.redis.publish")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	outcomeBytes, err := json.Marshal(outcome)
	if err != nil {
		return fmt.Errorf("marshal outcome: %w", err)
	}

	if err := s.rdb.Set(ctx, latestOutcomeKey, string(outcomeBytes), s.ttl).Err(); err != nil {
		return fmt.Errorf("store latest outcome: %w", err)
	}
	return nil
}

func (s *RedisStore) Latest(ctx context.Context) (_ *Outcome, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "results.redis.latest")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	val, err := s.rdb.Get(ctx, latestOutcomeKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoOutcome
	}
	if err != nil {
		return nil, fmt.Errorf("get latest outcome: %w", err)
	}

	outcome := &Outcome{}
	if err := json.Unmarshal([]byte(val), outcome); err != nil {
		return nil, fmt.Errorf("unmarshal latest outcome: %w", err)
	}
	return outcome, nil
}
