package opensearch

// Config configures the OpenSearch cluster that receives activity events.
// An empty address list disables the integration.
type Config struct {
	Addresses    []string `env:"OPENSEARCH_ADDRESSES" envSeparator:","`
	Username     string   `env:"OPENSEARCH_USERNAME"`
	Password     string   `env:"OPENSEARCH_PASSWORD"`
	Index        string   `env:"OPENSEARCH_ACTIVITY_INDEX" envDefault:"dealdocs-activity"`
	MaxRetries   int      `env:"OPENSEARCH_MAX_RETRIES" envDefault:"3"`
	DisableRetry bool     `env:"OPENSEARCH_DISABLE_RETRY" envDefault:"false"`
}

// Enabled reports whether at least one address is configured.
func (c Config) Enabled() bool { return len(c.Addresses) > 0 }
