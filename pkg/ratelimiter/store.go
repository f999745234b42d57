package ratelimiter

import (
	"context"
	"time"
)

// Store keeps bucket state.
type Store interface {
	// ConsumeTokens refills the bucket for the elapsed time and spends
	// tokens. A negative remaining count means the request is refused and
	// nothing was spent. Zero tokens only refills.
	ConsumeTokens(ctx context.Context, key string, tokens int, cfg Config) (remaining int, resetAt time.Time, err error)
	Reset(ctx context.Context, key string) error
}

// refill returns the token count after the intervals elapsed since
// lastRefill, and whether any interval elapsed.
func refill(have int, lastRefill, now time.Time, cfg Config) (int, bool) {
	// capped so a long idle period cannot overflow
	maxIntervals := int64(cfg.Capacity/cfg.RefillRate + 1)
	intervals := int(min(int64(now.Sub(lastRefill)/cfg.RefillInterval), maxIntervals))
	if intervals <= 0 {
		return have, false
	}
	return min(have+intervals*cfg.RefillRate, cfg.Capacity), true
}
