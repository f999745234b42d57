package clipboard

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/dealdocs/pkg/payload"
)

const (
	fieldID       = "id"
	fieldCopiedAt = "copied_at"
)

// Relay stores one clipboard entry per device in Redis so a browser can
// paste what the server prepared.
type Relay struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// RelayOption configures a Relay.
type RelayOption func(*Relay)

// WithKeyPrefix sets the key prefix. Defaults to "dealdocs:clipboard:".
func WithKeyPrefix(prefix string) RelayOption {
	return func(r *Relay) {
		if prefix != "" {
			r.prefix = prefix
		}
	}
}

// WithTTL sets how long an entry stays pasteable. Defaults to 15 minutes.
func WithTTL(ttl time.Duration) RelayOption {
	return func(r *Relay) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

func NewRelay(client redis.UniversalClient, opts ...RelayOption) *Relay {
	r := &Relay{client: client, prefix: "dealdocs:clipboard:", ttl: 15 * time.Minute}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Device returns the clipboard of one device.
func (r *Relay) Device(id string) *Redis {
	return &Redis{relay: r, key: r.prefix + id}
}

// Redis is the clipboard of one device inside a Relay.
type Redis struct {
	relay *Relay
	key   string
}

// Write replaces the entry inside one MULTI/EXEC transaction.
func (c *Redis) Write(ctx context.Context, p payload.Payload) error {
	if err := Validate(p); err != nil {
		return err
	}
	_, err := c.relay.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, c.key)
		pipe.HSet(ctx, c.key,
			fieldID, uuid.NewString(),
			string(FormatHTML), p.HTML,
			string(FormatPlain), p.PlainText,
			fieldCopiedAt, time.Now().UTC().Format(time.RFC3339Nano),
		)
		pipe.Expire(ctx, c.key, c.relay.ttl)
		return nil
	})
	if err != nil {
		return fail(classifyRedis(err))
	}
	return nil
}

func (c *Redis) Read(ctx context.Context) (Entry, error) {
	vals, err := c.relay.client.HGetAll(ctx, c.key).Result()
	if err != nil {
		return Entry{}, classifyRedis(err)
	}
	if len(vals) == 0 {
		return Entry{}, ErrEmpty
	}
	e := Entry{
		ID:        vals[fieldID],
		HTML:      vals[string(FormatHTML)],
		PlainText: vals[string(FormatPlain)],
	}
	if ts, err := time.Parse(time.RFC3339Nano, vals[fieldCopiedAt]); err == nil {
		e.CopiedAt = ts
	}
	return e, nil
}

func classifyRedis(err error) error {
	if strings.HasPrefix(err.Error(), "NOPERM") {
		return errors.Join(ErrPermissionDenied, err)
	}
	return err
}
