package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gdugdh24/kindred-backend/internal/domain"
	"github.com/redis/go-redis/v9"
)

// CachedCandidates is the cached form of one selection result.
type CachedCandidates struct {
	Candidates []domain.ScoredCandidate `json:"candidates"`
	Degraded   bool                     `json:"degraded"`
}

// CandidateCache keeps ranked candidate lists per requester in a hash keyed by
// limit. Each hash belongs to one generation of the requester; Invalidate
// moves the requester to a new generation, so a list computed before the
// bump lands in a hash nobody reads and expires with its TTL.
type CandidateCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewCandidateCache(client *redis.Client, ttl time.Duration) *CandidateCache {
	return &CandidateCache{client: client, ttl: ttl}
}

func generationKey(requesterID int) string {
	return fmt.Sprintf("candidates:%d:gen", requesterID)
}

func candidateKey(requesterID int, generation int64) string {
	return fmt.Sprintf("candidates:%d:%d", requesterID, generation)
}

// Generation returns the requester's current generation, 0 if never bumped.
func (c *CandidateCache) Generation(ctx context.Context, requesterID int) (int64, error) {
	gen, err := c.client.Get(ctx, generationKey(requesterID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, fmt.Errorf("read candidate generation: %w", err)
	}
	return gen, nil
}

// Get reports ok=false on a miss.
func (c *CandidateCache) Get(ctx context.Context, requesterID int, generation int64, limit int) (*CachedCandidates, bool, error) {
	raw, err := c.client.HGet(ctx, candidateKey(requesterID, generation), strconv.Itoa(limit)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read candidate cache: %w", err)
	}

	var cached CachedCandidates
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false, fmt.Errorf("decode candidate cache: %w", err)
	}
	return &cached, true, nil
}

func (c *CandidateCache) Set(ctx context.Context, requesterID int, generation int64, limit int, value *CachedCandidates) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode candidate cache: %w", err)
	}

	key := candidateKey(requesterID, generation)
	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, strconv.Itoa(limit), raw)
		pipe.Expire(ctx, key, c.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("write candidate cache: %w", err)
	}
	return nil
}

// Invalidate bumps the requester's generation and drops the lists cached
// under the old one.
func (c *CandidateCache) Invalidate(ctx context.Context, requesterID int) error {
	gen, err := c.client.Incr(ctx, generationKey(requesterID)).Result()
	if err != nil {
		return fmt.Errorf("invalidate candidate cache: %w", err)
	}
	if err := c.client.Del(ctx, candidateKey(requesterID, gen-1)).Err(); err != nil {
		return fmt.Errorf("invalidate candidate cache: %w", err)
	}
	return nil
}
