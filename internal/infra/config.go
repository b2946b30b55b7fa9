package infra

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// GetPlatformUserAgent generates a browser-like User-Agent string based on current OS.
// The location endpoint serves a different payload (or none) to non-browser clients.
func GetPlatformUserAgent() string {
	chromeVer := "120.0.0.0"

	switch runtime.GOOS {
	case "windows":
		return fmt.Sprintf("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%s Safari/537.36", chromeVer)
	case "linux":
		linuxArch := "x86_64"
		if runtime.GOARCH == "arm64" {
			linuxArch = "aarch64"
		}
		return fmt.Sprintf("Mozilla/5.0 (X11; Linux %s) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%s Safari/537.36", linuxArch, chromeVer)
	case "darwin":
		return fmt.Sprintf("Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%s Safari/537.36", chromeVer)
	default:
		return fmt.Sprintf("Mozilla/5.0 AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%s Safari/537.36", chromeVer)
	}
}

// SessionConfig carries the per-session request parameters.
// It is passed explicitly to the client; nothing reads it from globals.
type SessionConfig struct {
	CookiesFile string `yaml:"cookies_file"`
	Language    string `yaml:"language"`
	Country     string `yaml:"country"`
	AuthUser    int    `yaml:"auth_user"`
	UserAgent   string `yaml:"user_agent"`
}

// Config holds every setting of the application.
// LoadConfig overlays environment variables on top of the file values.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Session SessionConfig `yaml:"session"`

	API struct {
		BaseURL    string  `yaml:"base_url"`
		TimeoutSec int     `yaml:"timeout_sec"`
		RateBurst  int     `yaml:"rate_burst"`
		RatePerSec float64 `yaml:"rate_per_sec"`
	} `yaml:"api"`

	Breaker struct {
		FailureThreshold int `yaml:"failure_threshold"`
		SuccessThreshold int `yaml:"success_threshold"`
		TimeoutSec       int `yaml:"timeout_sec"`
	} `yaml:"breaker"`

	Poll struct {
		IntervalSec   int  `yaml:"interval_sec"`
		MaxBackoffSec int  `yaml:"max_backoff_sec"`
		Capture       bool `yaml:"capture"`
		CaptureKeep   int  `yaml:"capture_keep"`
	} `yaml:"poll"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Storage struct {
		Dir string `yaml:"dir"` // Empty means GetWorkspaceDir()
	} `yaml:"storage"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}

// DefaultConfig returns a configuration usable without any file on disk.
func DefaultConfig() *Config {
	var cfg Config
	cfg.App.Name = AppName
	cfg.App.Version = "0.1.0"

	cfg.Session.CookiesFile = "cookies.txt"
	cfg.Session.Language = "en"
	cfg.Session.Country = "US"
	cfg.Session.AuthUser = 2

	cfg.API.BaseURL = "https://www.google.com"
	cfg.API.TimeoutSec = 10
	cfg.API.RateBurst = 2
	cfg.API.RatePerSec = 0.2

	cfg.Breaker.FailureThreshold = 5
	cfg.Breaker.SuccessThreshold = 1
	cfg.Breaker.TimeoutSec = 60

	cfg.Poll.IntervalSec = 60
	cfg.Poll.MaxBackoffSec = 600
	cfg.Poll.CaptureKeep = 20

	cfg.Server.Addr = ":8080"

	cfg.Logging.Level = "info"
	cfg.Logging.Format = "text"
	return &cfg
}

// LoadConfig reads the YAML file at path on top of DefaultConfig.
// A missing file is not an error; the defaults (plus env overrides) are used.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// fall through with defaults
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	overrideWithEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks configuration validity.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid API base URL: %q", c.API.BaseURL)
	}
	if c.Session.CookiesFile == "" {
		return fmt.Errorf("session cookies file is required")
	}
	if c.Session.Language == "" || c.Session.Country == "" {
		return fmt.Errorf("session language and country are required")
	}
	if c.Session.AuthUser < 0 {
		return fmt.Errorf("auth user index must not be negative")
	}
	if c.API.TimeoutSec <= 0 {
		return fmt.Errorf("API timeout must be positive")
	}
	if c.API.RateBurst <= 0 || c.API.RatePerSec <= 0 {
		return fmt.Errorf("rate limit must be positive")
	}
	if c.Breaker.FailureThreshold <= 0 || c.Breaker.SuccessThreshold <= 0 {
		return fmt.Errorf("breaker thresholds must be positive")
	}
	if c.Poll.IntervalSec <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if c.Poll.MaxBackoffSec < c.Poll.IntervalSec {
		return fmt.Errorf("max backoff (%ds) must not be shorter than poll interval (%ds)",
			c.Poll.MaxBackoffSec, c.Poll.IntervalSec)
	}
	if c.Poll.CaptureKeep < 0 {
		return fmt.Errorf("capture_keep must not be negative")
	}
	if _, err := ParseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("unknown log format: %q", c.Logging.Format)
	}
	return nil
}

// UserAgent returns the configured User-Agent or the platform default.
func (c *Config) UserAgent() string {
	if c.Session.UserAgent != "" {
		return c.Session.UserAgent
	}
	return GetPlatformUserAgent()
}

// RequestTimeout returns the per-request HTTP timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.API.TimeoutSec) * time.Second
}

// PollInterval returns the steady-state refresh period.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.Poll.IntervalSec) * time.Second
}

// BreakerConfig maps the breaker section onto a CircuitBreakerConfig.
func (c *Config) BreakerConfig(name string) CircuitBreakerConfig {
	return CircuitBreakerConfig{
		Name:             name,
		FailureThreshold: c.Breaker.FailureThreshold,
		SuccessThreshold: c.Breaker.SuccessThreshold,
		Timeout:          time.Duration(c.Breaker.TimeoutSec) * time.Second,
	}
}

// overrideWithEnv overwrites config values with environment variables when set.
// Environment variables take precedence over the config file.
func overrideWithEnv(cfg *Config) {
	if v := os.Getenv("LOCSHARE_COOKIES_FILE"); v != "" {
		cfg.Session.CookiesFile = v
	}
	if v := os.Getenv("LOCSHARE_LANGUAGE"); v != "" {
		cfg.Session.Language = v
	}
	if v := os.Getenv("LOCSHARE_COUNTRY"); v != "" {
		cfg.Session.Country = v
	}
	if v := os.Getenv("LOCSHARE_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("LOCSHARE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
