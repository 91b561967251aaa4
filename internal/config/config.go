// Package config loads the healthd daemon configuration.
//
// Sources, lowest to highest precedence:
//
//  1. built-in defaults
//  2. the YAML file, with ${VAR} expanded in its values
//  3. HEALTHD_* environment variables
//
// Credential fields (dsn, password, url, jwt_secret, api_keys) may hold a
// secretref:file:<path> or secretref:env:<name> reference instead of the
// value itself.
//
// Before any of that, .env files are loaded into the process environment:
// the file named by ENV_FILE if set, otherwise .env.local then .env.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/healthkit/observe"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "HEALTHD_"

// Check types understood by the daemon.
const (
	TypeHTTP     = "http"
	TypeTCP      = "tcp"
	TypePostgres = "postgres"
	TypeRedis    = "redis"
	TypeKafka    = "kafka"
	TypeMemory   = "memory"
)

// Frameworks the daemon can serve with.
const (
	FrameworkHTTP = "http"
	FrameworkGin  = "gin"
	FrameworkEcho = "echo"
)

// Config is the daemon configuration.
type Config struct {
	Server  ServerConfig   `yaml:"server"`
	Auth    AuthConfig     `yaml:"auth"`
	Cache   CacheConfig    `yaml:"cache"`
	Observe observe.Config `yaml:"observe"`
	Checks  []CheckConfig  `yaml:"checks"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"             env:"ADDR"`
	Framework       string        `yaml:"framework"        env:"FRAMEWORK"`
	RequestTimeout  time.Duration `yaml:"request_timeout"  env:"REQUEST_TIMEOUT"`
	CheckTimeout    time.Duration `yaml:"check_timeout"    env:"CHECK_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	MetricsPath     string        `yaml:"metrics_path"     env:"METRICS_PATH"`
}

// AuthConfig gates per-check detail. With neither keys nor a secret,
// every caller sees the full report.
type AuthConfig struct {
	APIKeys      []string `yaml:"api_keys"       env:"API_KEYS" envSeparator:","`
	APIKeyHeader string   `yaml:"api_key_header" env:"API_KEY_HEADER"`
	JWTSecret    string   `yaml:"jwt_secret"     env:"JWT_SECRET"`
	JWTIssuer    string   `yaml:"jwt_issuer"     env:"JWT_ISSUER"`
	JWTAudience  string   `yaml:"jwt_audience"   env:"JWT_AUDIENCE"`
}

// Enabled reports whether any credential is configured.
func (a AuthConfig) Enabled() bool {
	return len(a.APIKeys) > 0 || a.JWTSecret != ""
}

// CacheConfig configures report caching. A zero TTL disables it.
type CacheConfig struct {
	TTL time.Duration `yaml:"ttl" env:"TTL"`
}

// CheckConfig declares one check.
type CheckConfig struct {
	Name     string         `yaml:"name"`
	Type     string         `yaml:"type"`
	Optional bool           `yaml:"optional"`
	Timeout  time.Duration  `yaml:"timeout"`
	Breaker  *BreakerConfig `yaml:"breaker"`

	// http
	URL          string `yaml:"url"`
	ExpectStatus []int  `yaml:"expect_status"`

	// tcp, redis
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`

	// postgres
	DSN string `yaml:"dsn"`

	// kafka
	Brokers []string `yaml:"brokers"`

	// memory
	Threshold float64 `yaml:"threshold"`
	Limit     uint64  `yaml:"limit"`
}

// BreakerConfig enables a circuit breaker on a check.
type BreakerConfig struct {
	MaxFailures int           `yaml:"max_failures"`
	Cooldown    time.Duration `yaml:"cooldown"`
}

// Default returns the configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":8080",
			Framework:       FrameworkHTTP,
			RequestTimeout:  10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			MetricsPath:     "/metrics",
		},
		Observe: observe.Config{
			ServiceName: "healthd",
			Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// path is empty) and the environment, then validates it.
func Load(path string) (Config, error) {
	if err := loadEnvFiles(); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return Config{}, fmt.Errorf("open config: %w", err)
		}
		defer f.Close()
		if err := decode(f, &cfg); err != nil {
			return Config{}, fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.resolveSecrets(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envOverrides points at the sections that accept environment overrides.
// Checks are file-only.
type envOverrides struct {
	Server  *ServerConfig
	Auth    *AuthConfig     `envPrefix:"AUTH_"`
	Cache   *CacheConfig    `envPrefix:"CACHE_"`
	Observe *observe.Config `envPrefix:"OBSERVE_"`
}

func applyEnv(cfg *Config) error {
	o := envOverrides{
		Server:  &cfg.Server,
		Auth:    &cfg.Auth,
		Cache:   &cfg.Cache,
		Observe: &cfg.Observe,
	}
	if err := env.ParseWithOptions(&o, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("environment overrides: %w", err)
	}
	return nil
}

// decode parses the YAML document, expands ${VAR} in its values, and
// decodes the result strictly into cfg.
func decode(r io.Reader, cfg *Config) error {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("parse yaml: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil
	}
	if err := expandNode(&doc); err != nil {
		return err
	}

	expanded, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("re-encode yaml: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse yaml: %w", err)
	}
	return nil
}

func loadEnvFiles() error {
	if f := os.Getenv("ENV_FILE"); f != "" {
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("load env file %s: %w", f, err)
		}
		return nil
	}
	for _, f := range []string{".env.local", ".env"} {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Validate reports the first configuration problem found.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("%w: server.addr is required", ErrInvalid)
	}
	if !slices.Contains([]string{FrameworkHTTP, FrameworkGin, FrameworkEcho}, c.Server.Framework) {
		return fmt.Errorf("%w: server.framework %q", ErrInvalid, c.Server.Framework)
	}
	if c.Server.MetricsPath != "" && !strings.HasPrefix(c.Server.MetricsPath, "/") {
		return fmt.Errorf("%w: server.metrics_path must start with /", ErrInvalid)
	}
	if err := c.Observe.Validate(); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Checks))
	for i, chk := range c.Checks {
		if err := chk.Validate(); err != nil {
			return fmt.Errorf("checks[%d]: %w", i, err)
		}
		if seen[chk.Name] {
			return fmt.Errorf("checks[%d]: %w: duplicate name %q", i, ErrInvalid, chk.Name)
		}
		seen[chk.Name] = true
	}
	return nil
}

// Validate checks that the fields required by Type are present.
func (c CheckConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}

	var missing string
	switch c.Type {
	case TypeHTTP:
		if c.URL == "" {
			missing = "url"
		}
	case TypeTCP, TypeRedis:
		if c.Addr == "" {
			missing = "addr"
		}
	case TypePostgres:
		if c.DSN == "" {
			missing = "dsn"
		}
	case TypeKafka:
		if len(c.Brokers) == 0 {
			missing = "brokers"
		}
	case TypeMemory:
	default:
		return fmt.Errorf("%w: %q: unknown type %q", ErrInvalid, c.Name, c.Type)
	}
	if missing != "" {
		return fmt.Errorf("%w: %q: %s check requires %s", ErrInvalid, c.Name, c.Type, missing)
	}
	return nil
}
