// Package config loads process configuration for the contagion binaries
// from an optional YAML file and CONTAGION_* environment variables.
package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ilyakaznacheev/cleanenv"
)

// ErrInvalid is returned for configurations that fail validation.
var ErrInvalid = errors.New("config: invalid configuration")

// Store kinds.
const (
	StoreBuiltin = "builtin"
	StoreDisk    = "disk"
	StoreS3      = "s3"
	StoreGCS     = "gcs"
)

// Config is the process configuration.
type Config struct {
	LogLevel string `yaml:"log_level" env:"CONTAGION_LOG_LEVEL" env-default:"info" env-description:"debug, info, warn or error"`

	HTTP   HTTP   `yaml:"http"`
	Store  Store  `yaml:"store"`
	Engine Engine `yaml:"engine"`
	Sweep  Sweep  `yaml:"sweep"`
}

// HTTP configures the serve command.
type HTTP struct {
	Addr           string   `yaml:"addr" env:"CONTAGION_HTTP_ADDR" env-default:":8080" env-description:"listen address"`
	AllowedOrigins []string `yaml:"allowed_origins" env:"CONTAGION_HTTP_ALLOWED_ORIGINS" env-separator:"," env-default:"*" env-description:"CORS origins"`
}

// Store selects where scenario documents are read from.
type Store struct {
	Kind      string `yaml:"kind" env:"CONTAGION_STORE" env-default:"builtin" env-description:"builtin, disk, s3 or gcs"`
	Dir       string `yaml:"dir" env:"CONTAGION_STORE_DIR" env-description:"root directory for the disk store"`
	Bucket    string `yaml:"bucket" env:"CONTAGION_STORE_BUCKET" env-description:"bucket for the s3 and gcs stores"`
	Prefix    string `yaml:"prefix" env:"CONTAGION_STORE_PREFIX" env-description:"key prefix inside the bucket"`
	Region    string `yaml:"region" env:"CONTAGION_STORE_REGION" env-description:"AWS region"`
	Endpoint  string `yaml:"endpoint" env:"CONTAGION_STORE_ENDPOINT" env-description:"S3-compatible endpoint"`
	Codec     string `yaml:"codec" env:"CONTAGION_STORE_CODEC" env-default:"none" env-description:"none, gzip or zstd"`
	CacheSize int    `yaml:"cache_size" env:"CONTAGION_STORE_CACHE_SIZE" env-default:"32" env-description:"scenario documents kept in memory, 0 disables"`
}

// Engine configures the projection engine.
type Engine struct {
	ResultCacheSize int `yaml:"result_cache_size" env:"CONTAGION_RESULT_CACHE_SIZE" env-default:"64" env-description:"projections kept in memory, 0 disables"`
}

// Sweep configures sensitivity sweeps.
type Sweep struct {
	Concurrency int `yaml:"concurrency" env:"CONTAGION_SWEEP_CONCURRENCY" env-default:"0" env-description:"parallel runs, 0 means GOMAXPROCS"`
}

// Load reads the configuration. Values from path, when given, are
// overridden by the environment.
func Load(path string) (*Config, error) {
	var cfg Config
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field combinations the struct tags cannot express.
func (c *Config) Validate() error {
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.LogLevel) {
		return fmt.Errorf("%w: unknown log level %q", ErrInvalid, c.LogLevel)
	}
	if !slices.Contains([]string{"none", "gzip", "zstd"}, c.Store.Codec) {
		return fmt.Errorf("%w: unknown codec %q", ErrInvalid, c.Store.Codec)
	}

	switch c.Store.Kind {
	case StoreBuiltin:
	case StoreDisk:
		if c.Store.Dir == "" {
			return fmt.Errorf("%w: disk store needs a directory", ErrInvalid)
		}
	case StoreS3, StoreGCS:
		if c.Store.Bucket == "" {
			return fmt.Errorf("%w: %s store needs a bucket", ErrInvalid, c.Store.Kind)
		}
	default:
		return fmt.Errorf("%w: unknown store kind %q", ErrInvalid, c.Store.Kind)
	}

	switch {
	case c.Store.CacheSize < 0:
		return fmt.Errorf("%w: negative store cache size", ErrInvalid)
	case c.Engine.ResultCacheSize < 0:
		return fmt.Errorf("%w: negative result cache size", ErrInvalid)
	case c.Sweep.Concurrency < 0:
		return fmt.Errorf("%w: negative sweep concurrency", ErrInvalid)
	}
	return nil
}

// Describe lists the environment variables Load reads.
func Describe() (string, error) {
	header := "Environment variables:"
	return cleanenv.GetDescription(&Config{}, &header)
}
