// Package config loads the stockalert configuration from
// ~/.stockalert/config.yaml: which secret-storage backend to use, which
// symbols to watch, and where alerts go.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"stockalert/internal/secrets"
)

// Config holds persistent configuration loaded from config.yaml.
type Config struct {
	// SecretStorage is a selector policy string ("auto" picks the
	// platform-native backend).
	SecretStorage string `yaml:"secret_storage"`

	QuoteEndpoint string  `yaml:"quote_endpoint"`
	PollInterval  string  `yaml:"poll_interval"`
	Watchlist     []Watch `yaml:"watchlist"`
	Notify        Notify  `yaml:"notify"`
}

// Watch is one symbol with its alert thresholds. A zero threshold is
// disabled.
type Watch struct {
	Symbol string  `yaml:"symbol"`
	Above  float64 `yaml:"above,omitempty"`
	Below  float64 `yaml:"below,omitempty"`
}

// Notify selects the alert channels.
type Notify struct {
	Console bool         `yaml:"console"`
	SMTP    SMTPConfig   `yaml:"smtp"`
	Twilio  TwilioConfig `yaml:"twilio"`
}

// SMTPConfig configures the mail channel. The account password comes
// from the secret store under the "smtp" key, never from this file.
type SMTPConfig struct {
	Enabled bool     `yaml:"enabled"`
	Host    string   `yaml:"host"`
	Port    int      `yaml:"port"`
	From    string   `yaml:"from"`
	To      []string `yaml:"to"`
}

// TwilioConfig configures the SMS channel. Account SID and auth token
// come from the secret store under the "twilio" key.
type TwilioConfig struct {
	Enabled bool   `yaml:"enabled"`
	From    string `yaml:"from"`
	To      string `yaml:"to"`
}

const (
	defaultQuoteEndpoint = "https://stooq.com/q/l/"
	defaultPollInterval  = time.Minute
)

// DefaultPath returns the default config file path: ~/.stockalert/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".stockalert", "config.yaml")
}

// Load reads a YAML config file from path. A missing, empty or
// all-comment file yields the defaults with no error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg.applyDefaults()
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.SecretStorage == "" {
		c.SecretStorage = secrets.PolicyAuto
	}
	if c.QuoteEndpoint == "" {
		c.QuoteEndpoint = defaultQuoteEndpoint
	}
}

// Interval returns the parsed poll interval, defaulting to one minute.
func (c *Config) Interval() time.Duration {
	if c.PollInterval == "" {
		return defaultPollInterval
	}
	d, err := time.ParseDuration(c.PollInterval)
	if err != nil || d <= 0 {
		return defaultPollInterval
	}
	return d
}

// Validate rejects configurations the daemon cannot act on.
func (c *Config) Validate() error {
	if !secrets.ValidPolicy(c.SecretStorage) {
		return fmt.Errorf("unknown secret_storage %q (valid: %v)", c.SecretStorage, secrets.Policies())
	}
	if c.PollInterval != "" {
		d, err := time.ParseDuration(c.PollInterval)
		if err != nil {
			return fmt.Errorf("invalid poll_interval %q: %w", c.PollInterval, err)
		}
		if d <= 0 {
			return fmt.Errorf("poll_interval must be positive, got %q", c.PollInterval)
		}
	}
	for _, w := range c.Watchlist {
		if w.Symbol == "" {
			return errors.New("watchlist entry missing symbol")
		}
	}
	if c.Notify.SMTP.Enabled {
		if c.Notify.SMTP.Host == "" || c.Notify.SMTP.From == "" || len(c.Notify.SMTP.To) == 0 {
			return errors.New("smtp channel enabled but host, from or to missing")
		}
	}
	if c.Notify.Twilio.Enabled {
		if c.Notify.Twilio.From == "" || c.Notify.Twilio.To == "" {
			return errors.New("twilio channel enabled but from or to missing")
		}
	}
	return nil
}
