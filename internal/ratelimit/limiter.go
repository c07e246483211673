// Package ratelimit throttles the actions that append to persisted
// sequences, which otherwise grow without bound. Each rule is a fixed window
// counter in Redis; the HTTP API reports the outcome in X-RateLimit-* and
// Retry-After headers.
package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// Rule is one throttled action: its key prefix, how many times a client may
// perform it, and the window the count resets after.
type Rule struct {
	Key    string        // Redis key prefix (e.g., "rl:match:", "rl:join:")
	Limit  int           // max count in the window
	Window time.Duration // time window
}

var (
	// RuleMatchRequest allows 10 match requests per minute per client.
	RuleMatchRequest = Rule{Key: "rl:match:", Limit: 10, Window: 1 * time.Minute}

	// RuleJoinRequest allows 10 join requests per minute per client.
	RuleJoinRequest = Rule{Key: "rl:join:", Limit: 10, Window: 1 * time.Minute}

	// RuleCreate allows 5 circles or tribes created per 10 minutes per client.
	RuleCreate = Rule{Key: "rl:create:", Limit: 5, Window: 10 * time.Minute}
)

// Decision is the outcome of one Take.
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int           // actions left in the current window
	ResetIn   time.Duration // until the window restarts
}

// windowLua counts the action and starts the window on first use. A counter
// found without a TTL gets one. Returns {count, pttl}.
const windowLua = `
local count = redis.call('INCR', KEYS[1])
if count == 1 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
end
local ttl = redis.call('PTTL', KEYS[1])
if ttl < 0 then
  redis.call('PEXPIRE', KEYS[1], ARGV[1])
  ttl = tonumber(ARGV[1])
end
return {count, ttl}
`

// Limiter performs rate limiting checks against Redis.
type Limiter struct {
	client *redis.Client
	window *redis.Script
}

// NewLimiter creates a Limiter backed by the given Redis client.
func NewLimiter(client *redis.Client) *Limiter {
	return &Limiter{client: client, window: redis.NewScript(windowLua)}
}

// Take counts one action by identifier under rule and reports whether it is
// allowed. Redis errors fail open: the action is allowed with the full
// limit remaining and the error is returned for logging.
func (l *Limiter) Take(ctx context.Context, identifier string, rule Rule) (Decision, error) {
	key := rule.Key + identifier

	res, err := l.window.Run(ctx, l.client, []string{key}, rule.Window.Milliseconds()).Int64Slice()
	if err == nil && len(res) != 2 {
		err = fmt.Errorf("unexpected reply %v", res)
	}
	if err != nil {
		log.Printf("[ratelimit] window error key=%s: %v (failing open)", key, err)
		return Decision{Allowed: true, Limit: rule.Limit, Remaining: rule.Limit, ResetIn: rule.Window}, err
	}

	return decide(rule, res[0], time.Duration(res[1])*time.Millisecond), nil
}

func decide(rule Rule, count int64, resetIn time.Duration) Decision {
	remaining := rule.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   int(count) <= rule.Limit,
		Limit:     rule.Limit,
		Remaining: remaining,
		ResetIn:   resetIn,
	}
}
