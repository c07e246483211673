package candidate

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/safetrip/travel-circle/internal/matching"
)

const (
	// Redis key patterns for the candidate index.
	keyCandidateOrder    = "candidates:order" // Sorted set, score = insertion sequence
	keyCandidateSeq      = "candidates:seq"   // Counter backing the order scores
	keyDestinationPrefix = "candidates:dest:" // + <destination> -> Set of candidate IDs
	keyCandidatePrefix   = "candidate:"       // + <id> -> Hash
)

// RedisProvider keeps candidates in Redis so they can be seeded and shared
// between processes.
type RedisProvider struct {
	rdb *redis.Client
}

// NewRedisProvider creates a provider backed by Redis.
func NewRedisProvider(rdb *redis.Client) *RedisProvider {
	return &RedisProvider{rdb: rdb}
}

// Put adds or replaces a candidate. A candidate that is already indexed
// keeps its original position.
func (p *RedisProvider) Put(ctx context.Context, c matching.Candidate) error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("candidate: id is required")
	}

	fields, err := toHash(c)
	if err != nil {
		return err
	}

	// Drop stale destination membership when a candidate moves.
	if old, err := p.get(ctx, c.ID); err != nil {
		return err
	} else if old != nil && old.Destination != c.Destination {
		if err := p.rdb.SRem(ctx, keyDestinationPrefix+old.Destination, c.ID).Err(); err != nil {
			return fmt.Errorf("candidate: unindex %s from %s: %w", c.ID, old.Destination, err)
		}
	}

	seq, err := p.rdb.Incr(ctx, keyCandidateSeq).Result()
	if err != nil {
		return fmt.Errorf("candidate: next sequence: %w", err)
	}

	pipe := p.rdb.Pipeline()
	pipe.ZAddNX(ctx, keyCandidateOrder, redis.Z{Score: float64(seq), Member: c.ID})
	pipe.SAdd(ctx, keyDestinationPrefix+c.Destination, c.ID)
	pipe.HSet(ctx, keyCandidatePrefix+c.ID, fields)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("candidate: put %s: %w", c.ID, err)
	}
	return nil
}

// Remove deletes a candidate and its index entries.
func (p *RedisProvider) Remove(ctx context.Context, id string) error {
	c, err := p.get(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return nil // already removed
	}

	pipe := p.rdb.Pipeline()
	pipe.ZRem(ctx, keyCandidateOrder, id)
	pipe.SRem(ctx, keyDestinationPrefix+c.Destination, id)
	pipe.Del(ctx, keyCandidatePrefix+id)
	_, err = pipe.Exec(ctx)
	return err
}

// ListCandidates returns candidates in insertion order.
func (p *RedisProvider) ListCandidates(ctx context.Context, filter Filter) ([]matching.Candidate, error) {
	ids, err := p.rdb.ZRange(ctx, keyCandidateOrder, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("candidate: list order: %w", err)
	}

	if filter.Destination != "" {
		members, err := p.rdb.SMembers(ctx, keyDestinationPrefix+filter.Destination).Result()
		if err != nil {
			return nil, fmt.Errorf("candidate: list destination: %w", err)
		}
		inDest := make(map[string]bool, len(members))
		for _, m := range members {
			inDest[m] = true
		}
		kept := ids[:0]
		for _, id := range ids {
			if inDest[id] {
				kept = append(kept, id)
			}
		}
		ids = kept
	}

	pipe := p.rdb.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.HGetAll(ctx, keyCandidatePrefix+id)
	}
	if len(ids) > 0 {
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("candidate: load: %w", err)
		}
	}

	out := make([]matching.Candidate, 0, len(ids))
	for i, id := range ids {
		fields := cmds[i].Val()
		if len(fields) == 0 {
			continue // hash removed between ZRANGE and HGETALL
		}
		c, err := fromHash(id, fields)
		if err != nil {
			return nil, err
		}
		if filter.Matches(c) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (p *RedisProvider) get(ctx context.Context, id string) (*matching.Candidate, error) {
	fields, err := p.rdb.HGetAll(ctx, keyCandidatePrefix+id).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, nil
	}
	c, err := fromHash(id, fields)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// toHash flattens a candidate into hash fields. Interests are a JSON array
// so that tags containing commas survive the round trip.
func toHash(c matching.Candidate) (map[string]interface{}, error) {
	interests, err := json.Marshal(c.Interests)
	if err != nil {
		return nil, fmt.Errorf("candidate: encode interests of %s: %w", c.ID, err)
	}
	return map[string]interface{}{
		"name":        c.Name,
		"interests":   string(interests),
		"budget":      string(c.Budget),
		"destination": c.Destination,
		"start":       formatDate(c.Dates.Start),
		"end":         formatDate(c.Dates.End),
		"age":         c.Age,
		"experience":  c.Experience,
	}, nil
}

func fromHash(id string, fields map[string]string) (matching.Candidate, error) {
	var interests []string
	if raw := fields["interests"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &interests); err != nil {
			return matching.Candidate{}, fmt.Errorf("candidate: decode interests of %s: %w", id, err)
		}
	}
	age, _ := strconv.Atoi(fields["age"])

	return matching.Candidate{
		ID:          id,
		Name:        fields["name"],
		Interests:   interests,
		Dates:       matching.DateRange{Start: parseDate(fields["start"]), End: parseDate(fields["end"])},
		Budget:      matching.BudgetTier(fields["budget"]),
		Destination: fields["destination"],
		Age:         age,
		Experience:  fields["experience"],
	}, nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(matching.DateLayout)
}

func parseDate(s string) time.Time {
	t, _ := time.Parse(matching.DateLayout, s)
	return t
}
