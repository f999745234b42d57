// Package ratelimiter throttles document shares with a token bucket.
//
// A bucket holds up to Capacity tokens and gains RefillRate tokens every
// RefillInterval. Each share spends one token; once the bucket runs dry the
// request is refused until the next refill. Bucket state lives in a Store:
// MemoryStore for a single process, RedisStore when several server
// instances share devices.
//
//	bucket, err := ratelimiter.NewBucket(ratelimiter.NewMemoryStore(), cfg)
//	r.With(ratelimiter.Middleware(bucket, keyFunc, nil)).Post("/share", h)
package ratelimiter
