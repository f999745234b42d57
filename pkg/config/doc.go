// Package config loads typed configuration from environment variables.
//
// Structs declare their variables with caarlos0/env tags. Load parses each
// struct type once and caches it, so packages can ask for their own config
// without passing it around. Dotenv files are read through godotenv; values
// already present in the environment take precedence.
//
//	type Config struct {
//		Env       string `env:"DEALDOCS_ENV" envDefault:"development"`
//		DealStore string `env:"DEALDOCS_DEAL_STORE" envDefault:"dir"`
//	}
//
//	var cfg Config
//	config.MustLoad(&cfg)
package config
