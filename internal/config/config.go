// Package config loads the service configuration.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Config is the root configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Backend   BackendConfig   `yaml:"backend"`
	Tokenizer TokenizerConfig `yaml:"tokenizer"`
	Session   SessionConfig   `yaml:"session"`
	Options   OptionsConfig   `yaml:"options"`
	Leads     LeadsConfig     `yaml:"leads"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr              string        `yaml:"addr"`
	ReadTimeout       time.Duration `yaml:"read_timeout"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	IdleTimeout       time.Duration `yaml:"idle_timeout"`
	RequestTimeout    time.Duration `yaml:"request_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// BackendConfig points at the collaborator endpoints.
type BackendConfig struct {
	BaseURL string `yaml:"base_url"`
	// Timeouts overrides the deadline of single calls, keyed by call name
	// (check-zip, get-pricing, submit-free-quote, get-form-options,
	// submit-quote).
	Timeouts map[string]time.Duration `yaml:"timeouts"`
}

// TokenizerConfig points at the card tokenization service.
type TokenizerConfig struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

// SessionConfig controls wizard session lifetime.
type SessionConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// OptionsConfig controls the form-options cache. MountWait bounds how
// long a new session waits for a fetch before starting on the fallback.
type OptionsConfig struct {
	CacheTTL     time.Duration `yaml:"cache_ttl"`
	RetryAfter   time.Duration `yaml:"retry_after"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	MountWait    time.Duration `yaml:"mount_wait"`
}

// LeadsConfig bounds quote-lead delivery.
type LeadsConfig struct {
	Slots   int           `yaml:"slots"`
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level       string `yaml:"level"` // debug, info, warn, error
	Development bool   `yaml:"development"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":8080",
			ReadTimeout:       10 * time.Second,
			ReadHeaderTimeout: 3 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
			RequestTimeout:    25 * time.Second,
			ShutdownTimeout:   10 * time.Second,
		},
		Backend: BackendConfig{
			BaseURL: "http://localhost:3000/api",
		},
		Tokenizer: TokenizerConfig{
			BaseURL: "http://localhost:4000",
			Timeout: 15 * time.Second,
		},
		Session: SessionConfig{
			TTL:           30 * time.Minute,
			SweepInterval: time.Minute,
		},
		Options: OptionsConfig{
			CacheTTL:     5 * time.Minute,
			RetryAfter:   30 * time.Second,
			FetchTimeout: 5 * time.Second,
			MountWait:    500 * time.Millisecond,
		},
		Leads: LeadsConfig{
			Slots:   8,
			Timeout: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the YAML file at path over the defaults and applies the
// environment overrides. An empty path or a missing file yields the
// defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("WIZARD_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("WIZARD_BACKEND_URL"); v != "" {
		c.Backend.BaseURL = v
	}
	if v := os.Getenv("WIZARD_TOKENIZER_URL"); v != "" {
		c.Tokenizer.BaseURL = v
	}
	if v := os.Getenv("WIZARD_TOKENIZER_KEY"); v != "" {
		c.Tokenizer.APIKey = v
	}
	if v := os.Getenv("WIZARD_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

// Validate checks the values the service cannot start without.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is required"))
	}
	if err := checkURL("backend.base_url", c.Backend.BaseURL); err != nil {
		errs = append(errs, err)
	}
	if err := checkURL("tokenizer.base_url", c.Tokenizer.BaseURL); err != nil {
		errs = append(errs, err)
	}
	if c.Leads.Slots < 1 || c.Leads.Slots > 128 {
		errs = append(errs, fmt.Errorf("leads.slots must be in [1, 128], got %d", c.Leads.Slots))
	}
	if c.Session.TTL <= 0 {
		errs = append(errs, errors.New("session.ttl must be positive"))
	}
	if _, err := zapcore.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	if c.Options.MountWait < 0 || c.Options.RetryAfter < 0 || c.Options.FetchTimeout < 0 {
		errs = append(errs, errors.New("options durations must not be negative"))
	}
	for call, d := range c.Backend.Timeouts {
		if d < 0 {
			errs = append(errs, fmt.Errorf("backend.timeouts.%s must not be negative", call))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

func checkURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an http(s) URL, got %q", field, raw)
	}
	return nil
}
