package ratelimiter

import "time"

// Result is the outcome of one check.
type Result struct {
	Limit     int
	Remaining int // negative when the request was refused
	ResetAt   time.Time
}

// Allowed reports whether the request may proceed.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter is zero for allowed requests.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(0, time.Until(r.ResetAt))
}

// Config describes a bucket.
type Config struct {
	Capacity       int           `env:"SHARE_RATE_CAPACITY" envDefault:"10"`
	RefillRate     int           `env:"SHARE_RATE_REFILL" envDefault:"1"`
	RefillInterval time.Duration `env:"SHARE_RATE_INTERVAL" envDefault:"6s"`
}
