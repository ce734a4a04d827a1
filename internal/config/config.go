// Package config provides configuration loading, defaults, and validation.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the gateway and the client library need to talk
// to the three backend instances (auth, general data, recordings).
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Backends BackendsConfig `mapstructure:"backends"`
	Session  SessionConfig  `mapstructure:"session"`
}

type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Environment string `mapstructure:"env"`
}

type BackendsConfig struct {
	Auth      BackendConfig `mapstructure:"auth"`
	Data      BackendConfig `mapstructure:"data"`
	Recording BackendConfig `mapstructure:"recording"`

	// LoginTimeout is the hard deadline on the login call only; all other
	// calls use the per-backend timeout.
	LoginTimeout time.Duration `mapstructure:"login_timeout"`
}

type BackendConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type SessionConfig struct {
	// CookieName is the http-only, server-side session cookie.
	CookieName string `mapstructure:"cookie_name"`
	// AccessCookieName and RefreshCookieName are the client-readable slots.
	AccessCookieName  string        `mapstructure:"access_cookie_name"`
	RefreshCookieName string        `mapstructure:"refresh_cookie_name"`
	CookieTTL         time.Duration `mapstructure:"cookie_ttl"`
	// CookieDomain, when set, is the parent domain also cleared on logout
	// so the session dies across subdomains.
	CookieDomain string `mapstructure:"cookie_domain"`
	CookieSecure bool   `mapstructure:"cookie_secure"`
	// MaxAuthRetries bounds refresh-and-retry cycles per request.
	MaxAuthRetries int `mapstructure:"max_auth_retries"`
}

// Load reads config.yaml (optional) and CONSOLE_* environment variables.
func Load() (*Config, error) {
	setDefaults()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/console-gateway")

	viper.SetEnvPrefix("console")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("server.listen_addr", ":8180")

	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.env", "development")

	viper.SetDefault("backends.auth.base_url", "")
	viper.SetDefault("backends.auth.timeout", 5*time.Second)
	viper.SetDefault("backends.data.base_url", "")
	viper.SetDefault("backends.data.timeout", 5*time.Second)
	viper.SetDefault("backends.recording.base_url", "")
	viper.SetDefault("backends.recording.timeout", 5*time.Second)
	viper.SetDefault("backends.login_timeout", 10*time.Second)

	viper.SetDefault("session.cookie_name", "token")
	viper.SetDefault("session.access_cookie_name", "access_token")
	viper.SetDefault("session.refresh_cookie_name", "refresh_token")
	viper.SetDefault("session.cookie_ttl", 30*time.Minute)
	viper.SetDefault("session.cookie_domain", "")
	viper.SetDefault("session.cookie_secure", false)
	viper.SetDefault("session.max_auth_retries", 3)
}

// Validate checks the parts that cannot limp along with defaults.
func (c *Config) Validate() error {
	for name, b := range map[string]BackendConfig{
		"auth":      c.Backends.Auth,
		"data":      c.Backends.Data,
		"recording": c.Backends.Recording,
	} {
		if b.BaseURL == "" {
			return fmt.Errorf("backends.%s.base_url is required", name)
		}
		if _, err := url.Parse(b.BaseURL); err != nil {
			return fmt.Errorf("backends.%s.base_url is not a valid URL: %w", name, err)
		}
		if b.Timeout <= 0 {
			return fmt.Errorf("backends.%s.timeout must be positive", name)
		}
	}
	if c.Backends.LoginTimeout <= 0 {
		return fmt.Errorf("backends.login_timeout must be positive")
	}
	if c.Session.MaxAuthRetries < 0 {
		return fmt.Errorf("session.max_auth_retries must not be negative")
	}
	if c.Session.CookieName == c.Session.AccessCookieName {
		return fmt.Errorf("session cookie and access cookie must use distinct names")
	}
	return nil
}
