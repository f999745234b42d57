package cookie

import (
	"net/http"
	"strings"
)

// Config configures the device cookie. Secrets is a comma separated list;
// the first entry signs.
type Config struct {
	Secrets  string `env:"COOKIE_SECRETS"`
	Domain   string `env:"COOKIE_DOMAIN"`
	MaxAge   int    `env:"COOKIE_MAX_AGE" envDefault:"31536000"`
	Secure   bool   `env:"COOKIE_SECURE" envDefault:"false"`
	SameSite string `env:"COOKIE_SAME_SITE" envDefault:"lax"`
}

// SecretList returns the non-empty entries of Secrets.
func (c Config) SecretList() []string {
	var out []string
	for s := range strings.SplitSeq(c.Secrets, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (c Config) sameSite() http.SameSite {
	switch strings.ToLower(c.SameSite) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

// NewFromConfig creates a Manager from cfg; opts override it.
func NewFromConfig(cfg Config, opts ...Option) (*Manager, error) {
	base := []Option{
		WithSecure(cfg.Secure),
		WithSameSite(cfg.sameSite()),
	}
	if cfg.Domain != "" {
		base = append(base, WithDomain(cfg.Domain))
	}
	if cfg.MaxAge != 0 {
		base = append(base, WithMaxAge(cfg.MaxAge))
	}
	return New(cfg.SecretList(), append(base, opts...)...)
}
