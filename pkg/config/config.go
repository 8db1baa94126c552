// Package config loads boelex settings from a YAML file, a .env file and the
// environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/coolbeans/boelex/pkg/boe"
	"github.com/coolbeans/boelex/pkg/snapshot"
	"github.com/coolbeans/boelex/pkg/watch"
)

// ErrMissingDatabaseURL is returned by DatabaseURL when no connection string
// is configured.
var ErrMissingDatabaseURL = errors.New("database url is not configured (set BOELEX_DATABASE_URL or database.url)")

// Config is the complete boelex configuration.
type Config struct {
	BOE      boe.Config     `yaml:"boe"`
	Database DatabaseConfig `yaml:"database"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Server   ServerConfig   `yaml:"server"`
	Watch    WatchConfig    `yaml:"watch"`
}

// DatabaseConfig holds the PostgreSQL connection string.
type DatabaseConfig struct {
	URL string `yaml:"url"`
}

// SnapshotConfig enables page archiving.
type SnapshotConfig struct {
	Enabled         bool `yaml:"enabled"`
	snapshot.Config `yaml:",inline"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr string `yaml:"addr"`

	// Mode is the gin mode: debug, release or test.
	Mode string `yaml:"mode"`
}

// WatchConfig holds directory watcher settings.
type WatchConfig struct {
	Dir      string        `yaml:"dir"`
	Debounce time.Duration `yaml:"debounce"`
}

// Default returns a configuration that works without any file.
func Default() Config {
	return Config{
		BOE: boe.DefaultConfig(),
		Snapshot: SnapshotConfig{
			Config: snapshot.Config{
				Type:      snapshot.TypeLocal,
				LocalPath: "./data/snapshots",
				S3Region:  "eu-west-1",
			},
		},
		Server: ServerConfig{Addr: ":8080", Mode: "release"},
		Watch:  WatchConfig{Dir: ".", Debounce: watch.DefaultDebounce},
	}
}

// Load builds the configuration. The .env file at envPath is loaded first
// (a missing default ".env" is ignored); then the YAML file at path, if any,
// is laid over the defaults; then environment variables override both.
func Load(path, envPath string) (*Config, error) {
	if err := loadDotEnv(envPath); err != nil {
		return nil, err
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return &cfg, nil
}

func loadDotEnv(envPath string) error {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", envPath, err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}

// applyEnv overrides file values with environment variables.
func (c *Config) applyEnv() {
	setString := func(target *string, keys ...string) {
		for _, key := range keys {
			if value := os.Getenv(key); value != "" {
				*target = value
				return
			}
		}
	}

	setString(&c.Database.URL, "BOELEX_DATABASE_URL", "DATABASE_URL")
	setString(&c.BOE.BaseURL, "BOELEX_BASE_URL")
	setString(&c.BOE.UserAgent, "BOELEX_USER_AGENT")
	setString(&c.BOE.CacheDir, "BOELEX_CACHE_DIR")
	setString(&c.Snapshot.S3Bucket, "AWS_S3_BUCKET")
	setString(&c.Snapshot.S3Region, "AWS_REGION")
	setString(&c.Snapshot.AWSAccessKey, "AWS_ACCESS_KEY_ID")
	setString(&c.Snapshot.AWSSecretKey, "AWS_SECRET_ACCESS_KEY")
	setString(&c.Watch.Dir, "BOELEX_WATCH_DIR")

	if value := os.Getenv("BOELEX_SNAPSHOT_TYPE"); value != "" {
		c.Snapshot.Type = snapshot.Type(value)
		c.Snapshot.Enabled = true
	}
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
}

// Validate reports every invalid or missing value, grouped by section.
func (c *Config) Validate() error {
	var errs []error

	if c.BOE.BaseURL == "" {
		errs = append(errs, errors.New("boe: base_url is required"))
	} else if parsed, err := url.Parse(c.BOE.BaseURL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		errs = append(errs, fmt.Errorf("boe: base_url %q is not an absolute URL", c.BOE.BaseURL))
	}
	if c.BOE.RateLimit < 0 {
		errs = append(errs, errors.New("boe: rate_limit must not be negative"))
	}
	if c.BOE.MaxRetries < 0 {
		errs = append(errs, errors.New("boe: max_retries must not be negative"))
	}

	if c.Snapshot.Enabled {
		switch c.Snapshot.Type {
		case snapshot.TypeLocal:
			if c.Snapshot.LocalPath == "" {
				errs = append(errs, errors.New("snapshot: local_path is required for local archives"))
			}
		case snapshot.TypeS3:
			if c.Snapshot.S3Bucket == "" {
				errs = append(errs, errors.New("snapshot: s3_bucket is required for s3 archives (or set AWS_S3_BUCKET)"))
			}
		default:
			errs = append(errs, fmt.Errorf("snapshot: unknown type %q", c.Snapshot.Type))
		}
	}

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server: addr is required"))
	}
	switch c.Server.Mode {
	case "", "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("server: unknown mode %q", c.Server.Mode))
	}

	if c.Watch.Debounce < 0 {
		errs = append(errs, errors.New("watch: debounce must not be negative"))
	}

	return errors.Join(errs...)
}

// DatabaseURL returns the connection string or ErrMissingDatabaseURL.
func (c *Config) DatabaseURL() (string, error) {
	if c.Database.URL == "" {
		return "", ErrMissingDatabaseURL
	}
	return c.Database.URL, nil
}
