package redis

import "time"

// Config configures the Redis connection used by the clipboard relay and
// the per-device preference store.
type Config struct {
	ConnectionURL  string        `env:"REDIS_URL"`                        // redis://:password@localhost:6379/0
	RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
	RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"2s"`
	ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"15s"`
	ClipboardTTL   time.Duration `env:"REDIS_CLIPBOARD_TTL" envDefault:"15m"`
}

// Enabled reports whether a connection URL is configured.
func (c Config) Enabled() bool { return c.ConnectionURL != "" }
