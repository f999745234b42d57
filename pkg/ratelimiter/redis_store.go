package ratelimiter

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// consumeScript is the MemoryStore algorithm run atomically in Redis.
// Times are unix milliseconds.
var consumeScript = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local interval = tonumber(ARGV[3])
local tokens = tonumber(ARGV[4])
local now = tonumber(ARGV[5])

local state = redis.call('HMGET', KEYS[1], 'tokens', 'refilled')
local have = tonumber(state[1])
local refilled = tonumber(state[2])
if have == nil or refilled == nil then
  have = capacity
  refilled = now
end

local cap = math.floor(capacity / rate) + 1
local intervals = math.min(math.floor((now - refilled) / interval), cap)
if intervals > 0 then
  have = math.min(have + intervals * rate, capacity)
  refilled = now
end
local remaining = have - tokens
if remaining >= 0 then
  have = remaining
end

redis.call('HSET', KEYS[1], 'tokens', have, 'refilled', refilled)
redis.call('PEXPIRE', KEYS[1], interval * (cap + 1))
return {remaining, refilled + interval}
`)

// RedisStore keeps buckets in Redis so every server instance applies the
// same limit to a device.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisStore stores buckets under prefix. An empty prefix defaults to
// "dealdocs:ratelimit:".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "dealdocs:ratelimit:"
	}
	return &RedisStore{client: client, prefix: prefix, now: time.Now}
}

func (s *RedisStore) ConsumeTokens(ctx context.Context, key string, tokens int, cfg Config) (int, time.Time, error) {
	interval := max(1, cfg.RefillInterval.Milliseconds())
	res, err := consumeScript.Run(ctx, s.client, []string{s.prefix + key},
		cfg.Capacity, cfg.RefillRate, interval, tokens, s.now().UnixMilli(),
	).Int64Slice()
	if err != nil {
		return 0, time.Time{}, errors.Join(ErrStoreUnavailable, err)
	}
	if len(res) != 2 {
		return 0, time.Time{}, errors.Join(ErrStoreUnavailable, errors.New("unexpected script reply"))
	}
	return int(res[0]), time.UnixMilli(res[1]), nil
}

func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.prefix+key).Err(); err != nil {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return nil
}
