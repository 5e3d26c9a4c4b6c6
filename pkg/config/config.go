// Package config holds the service configuration: defaults, YAML config
// files, and environment overrides, applied in that order.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Defaults.
const (
	DefaultHost         = "0.0.0.0"
	DefaultPort         = 3000
	DefaultReadTimeout  = 15  // seconds
	DefaultWriteTimeout = 15  // seconds
	DefaultIdleTimeout  = 60  // seconds
	DefaultStoreTimeout = 10  // seconds, per-request budget for store work
	DefaultMaxBodyBytes = 1 << 20
)

// CORSConfig controls cross-origin access for the browser UI.
type CORSConfig struct {
	// Permissive allows any origin. Overrides AllowedOrigins.
	Permissive bool `yaml:"permissive"`

	// AllowedOrigins is the explicit origin allowlist.
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// Config is the full service configuration.
type Config struct {
	// Host and Port form the listen address.
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// BaseURL, when set, is used verbatim to build webhook URLs. When
	// empty the base is derived per request from forwarding headers.
	BaseURL string `yaml:"baseUrl"`

	// DataDir is the database directory. Empty or ":memory:" runs the
	// store in memory (nothing survives a restart).
	DataDir string `yaml:"dataDir"`

	// LogLevel and LogFormat configure operational logging.
	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`

	// Server timeouts, in seconds.
	ReadTimeout  int `yaml:"readTimeout"`
	WriteTimeout int `yaml:"writeTimeout"`
	IdleTimeout  int `yaml:"idleTimeout"`

	// StoreTimeout bounds the store-facing work of a single request, in
	// seconds. Zero disables the bound.
	StoreTimeout int `yaml:"storeTimeout"`

	// MaxBodyBytes caps the size of a captured request body.
	MaxBodyBytes int64 `yaml:"maxBodyBytes"`

	CORS CORSConfig `yaml:"cors"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Host:         DefaultHost,
		Port:         DefaultPort,
		DataDir:      "data",
		LogLevel:     "info",
		LogFormat:    "text",
		ReadTimeout:  DefaultReadTimeout,
		WriteTimeout: DefaultWriteTimeout,
		IdleTimeout:  DefaultIdleTimeout,
		StoreTimeout: DefaultStoreTimeout,
		MaxBodyBytes: DefaultMaxBodyBytes,
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:3000"},
		},
	}
}

// Load reads a YAML config file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables onto cfg. PORT is honored alongside
// the prefixed names for platform compatibility.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("HOOKCATCH_HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv("HOOKCATCH_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			c.Port = p
		}
	}
	if v := os.Getenv("BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("HOOKCATCH_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if _, ok := os.LookupEnv("CORS_PERMISSIVE"); ok {
		c.CORS.Permissive = true
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.CORS.AllowedOrigins = origins
	}
}

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("maxBodyBytes must be positive, got %d", c.MaxBodyBytes)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.IdleTimeout < 0 || c.StoreTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}

// ListenAddr returns the host:port the server binds to.
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
