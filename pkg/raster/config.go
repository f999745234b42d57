package raster

import "time"

// Config controls the transformer. Values are read from the environment via
// pkg/config.
type Config struct {
	DefaultWidth   int           `env:"RASTER_DEFAULT_WIDTH" envDefault:"175"`
	Timeout        time.Duration `env:"RASTER_TIMEOUT" envDefault:"5s"`
	CacheSize      int           `env:"RASTER_CACHE_SIZE" envDefault:"256"`
	MaxBytes       int64         `env:"RASTER_MAX_BYTES" envDefault:"10485760"`
	MaxPixels      int           `env:"RASTER_MAX_PIXELS" envDefault:"40000000"`
	JPEGQuality    int           `env:"RASTER_JPEG_QUALITY" envDefault:"85"`
	AllowedOrigins []string      `env:"RASTER_ALLOWED_ORIGINS" envSeparator:","`
	LocalDir       string        `env:"RASTER_LOCAL_DIR"`
}

// S3Config configures the s3:// source.
type S3Config struct {
	Region         string `env:"RASTER_S3_REGION"`
	AccessKeyID    string `env:"RASTER_S3_ACCESS_KEY_ID"`
	SecretKey      string `env:"RASTER_S3_SECRET_KEY"`
	Endpoint       string `env:"RASTER_S3_ENDPOINT"`
	ForcePathStyle bool   `env:"RASTER_S3_FORCE_PATH_STYLE" envDefault:"false"`
}

// Enabled reports whether an S3 source should be registered.
func (c S3Config) Enabled() bool {
	return c.Region != ""
}
