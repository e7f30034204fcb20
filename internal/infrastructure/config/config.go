// Package config loads rfpdesk settings. Precedence: environment
// (RFPDESK_*) > config file > defaults.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/oauth2"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/rfpdesk/pkg/domain/trust"
)

const (
	envPrefix = "RFPDESK"
	dirName   = ".rfpdesk"
	fileName  = "config.yaml"
)

// ErrUnknownKey indicates a key that Set does not know.
var ErrUnknownKey = errors.New("unknown config key")

// Cache selects the read cache.
type Cache struct {
	Backend  string `mapstructure:"backend" yaml:"backend"`
	RedisURL string `mapstructure:"redis_url" yaml:"redis_url,omitempty"`
	TTLSec   int    `mapstructure:"ttl_sec" yaml:"ttl_sec"`
}

// Config is the full rfpdesk configuration.
type Config struct {
	APIURL       string           `mapstructure:"api_url" yaml:"api_url"`
	Token        string           `mapstructure:"token" yaml:"token,omitempty"`
	TokenExpiry  string           `mapstructure:"token_expiry" yaml:"token_expiry,omitempty"`
	Organization string           `mapstructure:"organization" yaml:"organization"`
	PageSize     int              `mapstructure:"page_size" yaml:"page_size"`
	Trust        trust.Thresholds `mapstructure:"trust" yaml:"trust"`

	HTTPTimeoutSec   int `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	RetryMaxAttempts int `mapstructure:"retry_max_attempts" yaml:"retry_max_attempts"`
	RetryBaseDelayMs int `mapstructure:"retry_base_delay_ms" yaml:"retry_base_delay_ms"`

	Cache     Cache  `mapstructure:"cache" yaml:"cache"`
	ExportDir string `mapstructure:"export_dir" yaml:"export_dir"`
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
}

var defaults = map[string]any{
	"api_url":             "http://127.0.0.1:8000",
	"organization":        "",
	"page_size":           25,
	"trust.high":          trust.DefaultThresholds().High,
	"trust.low":           trust.DefaultThresholds().Low,
	"http_timeout_sec":    30,
	"retry_max_attempts":  3,
	"retry_base_delay_ms": 500,
	"cache.backend":       "memory",
	"cache.ttl_sec":       60,
	"export_dir":          ".",
	"log_level":           "warn",
}

var extraKeys = []string{"token", "token_expiry", "cache.redis_url"}

// Keys lists every settable key in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(defaults)+len(extraKeys))
	for k := range defaults {
		keys = append(keys, k)
	}
	keys = append(keys, extraKeys...)
	sort.Strings(keys)
	return keys
}

// DefaultPath returns ~/.rfpdesk/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName, fileName), nil
}

func newViper(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	// AutomaticEnv only sees keys viper already knows.
	for _, k := range extraKeys {
		_ = v.BindEnv(k)
	}

	if cfgFile == "" {
		path, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		cfgFile = path
	}
	v.SetConfigFile(cfgFile)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}
	return v, nil
}

// Load reads configuration. A missing file is not an error.
func Load(cfgFile string) (*Config, error) {
	v, err := newViper(cfgFile)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if err := c.Trust.Validate(); err != nil {
		return fmt.Errorf("trust: %w", err)
	}
	if c.HTTPTimeoutSec <= 0 {
		return fmt.Errorf("http_timeout_sec must be positive, got %d", c.HTTPTimeoutSec)
	}
	if c.RetryMaxAttempts < 1 {
		return fmt.Errorf("retry_max_attempts must be at least 1, got %d", c.RetryMaxAttempts)
	}
	switch c.Cache.Backend {
	case "memory", "none":
	case "redis":
		if c.Cache.RedisURL == "" {
			return errors.New("cache.redis_url is required for the redis backend")
		}
	default:
		return fmt.Errorf("cache.backend must be memory, redis or none, got %q", c.Cache.Backend)
	}
	if c.TokenExpiry != "" {
		if _, err := time.Parse(time.RFC3339, c.TokenExpiry); err != nil {
			return fmt.Errorf("token_expiry must be RFC 3339: %w", err)
		}
	}
	return nil
}

// HTTPTimeout returns the per-call timeout.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTPTimeoutSec) * time.Second
}

// RetryBaseDelay returns the first retry delay.
func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.RetryBaseDelayMs) * time.Millisecond
}

// CacheTTL returns the cache entry lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSec) * time.Second
}

// TokenSource returns the configured bearer credential, or nil when no token
// is configured.
func (c *Config) TokenSource() oauth2.TokenSource {
	if c.Token == "" {
		return nil
	}
	tok := &oauth2.Token{AccessToken: c.Token, TokenType: "Bearer"}
	if c.TokenExpiry != "" {
		if exp, err := time.Parse(time.RFC3339, c.TokenExpiry); err == nil {
			tok.Expiry = exp
		}
	}
	return oauth2.StaticTokenSource(tok)
}

// Masked returns a copy safe to print.
func (c Config) Masked() Config {
	if len(c.Token) > 8 {
		c.Token = c.Token[:4] + strings.Repeat("*", 8)
	} else if c.Token != "" {
		c.Token = "********"
	}
	return c
}

// Save writes c as YAML to cfgFile, or the default path when empty.
func Save(c *Config, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Set updates one key in the file at cfgFile and validates the result.
// Environment overrides are not written back.
func Set(cfgFile, key, value string) (*Config, error) {
	if !knownKey(key) {
		return nil, fmt.Errorf("%w: %s (known: %s)", ErrUnknownKey, key, strings.Join(Keys(), ", "))
	}
	c, err := loadFileOnly(cfgFile)
	if err != nil {
		return nil, err
	}
	if err := assign(c, key, value); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if err := Save(c, cfgFile); err != nil {
		return nil, err
	}
	return c, nil
}

func knownKey(key string) bool {
	for _, k := range Keys() {
		if k == key {
			return true
		}
	}
	return false
}

// loadFileOnly reads defaults and the file, ignoring the environment, so
// Set never persists a value that only came from RFPDESK_*.
func loadFileOnly(cfgFile string) (*Config, error) {
	if cfgFile == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		cfgFile = p
	}
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetConfigFile(cfgFile)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

func assign(c *Config, key, value string) error {
	atoi := func() (int, error) {
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer: %w", key, err)
		}
		return n, nil
	}
	var err error
	switch key {
	case "api_url":
		c.APIURL = value
	case "token":
		c.Token = value
	case "token_expiry":
		c.TokenExpiry = value
	case "organization":
		c.Organization = value
	case "page_size":
		c.PageSize, err = atoi()
	case "trust.high":
		c.Trust.High, err = atoi()
	case "trust.low":
		c.Trust.Low, err = atoi()
	case "http_timeout_sec":
		c.HTTPTimeoutSec, err = atoi()
	case "retry_max_attempts":
		c.RetryMaxAttempts, err = atoi()
	case "retry_base_delay_ms":
		c.RetryBaseDelayMs, err = atoi()
	case "cache.backend":
		c.Cache.Backend = value
	case "cache.redis_url":
		c.Cache.RedisURL = value
	case "cache.ttl_sec":
		c.Cache.TTLSec, err = atoi()
	case "export_dir":
		c.ExportDir = value
	case "log_level":
		c.LogLevel = value
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return err
}
