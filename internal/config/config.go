package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultConfigFile    = "config.yaml"
	DefaultFetchCount    = 10
	DefaultTimezone      = "UTC"
	DefaultLedgerPath    = "seen_posts.json"
	DefaultSessionFile   = ".tapline/instagram_session.json"
	DefaultSlackTokenEnv = "SLACK_BOT_TOKEN"
)

// Profile identifies one monitored Instagram account.
type Profile struct {
	Username    string `yaml:"username"`
	DisplayName string `yaml:"display_name"`

	// BreweryName, when set, is used verbatim as the producer name and
	// caption-based brewery inference is skipped.
	BreweryName string `yaml:"brewery_name"`
}

type Config struct {
	Profiles  []Profile       `yaml:"profiles"`
	Fetch     FetchConfig     `yaml:"fetch"`
	Instagram InstagramConfig `yaml:"instagram"`
	Slack     SlackConfig     `yaml:"slack"`
	Ledger    LedgerConfig    `yaml:"ledger"`
}

type FetchConfig struct {
	Count    int       `yaml:"count"`
	Since    time.Time `yaml:"since"`
	Timezone string    `yaml:"timezone"`
}

type InstagramConfig struct {
	UsernameEnv string `yaml:"username_env"`
	PasswordEnv string `yaml:"password_env"`
	SessionFile string `yaml:"session_file"`

	// Resolved from env vars at load time.
	Username string `yaml:"-"`
	Password string `yaml:"-"`
}

type SlackConfig struct {
	ChannelID string `yaml:"channel_id"`
	TokenEnv  string `yaml:"token_env"`

	// Resolved from env var at load time.
	Token string `yaml:"-"`
}

type LedgerConfig struct {
	Path string `yaml:"path"`

	// LegacyProfile owns ledger entries written before keys carried a
	// profile prefix.
	LegacyProfile string `yaml:"legacy_profile"`
}

// Load reads config.yaml from dir, applies defaults, resolves env vars, and validates.
func Load(dir string) (*Config, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, errors.New("config dir is required")
	}

	path := filepath.Join(dir, DefaultConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyDefaults(&cfg)
	resolveEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// Location returns the timezone used to render post timestamps.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Fetch.Timezone)
}

func applyDefaults(cfg *Config) {
	if cfg.Fetch.Count == 0 {
		cfg.Fetch.Count = DefaultFetchCount
	}
	if cfg.Fetch.Timezone == "" {
		cfg.Fetch.Timezone = DefaultTimezone
	}
	if cfg.Instagram.SessionFile == "" {
		cfg.Instagram.SessionFile = DefaultSessionFile
	}
	if cfg.Slack.TokenEnv == "" {
		cfg.Slack.TokenEnv = DefaultSlackTokenEnv
	}
	if cfg.Ledger.Path == "" {
		cfg.Ledger.Path = DefaultLedgerPath
	}
	if cfg.Ledger.LegacyProfile == "" && len(cfg.Profiles) > 0 {
		cfg.Ledger.LegacyProfile = cfg.Profiles[0].Username
	}
}

func resolveEnv(cfg *Config) {
	if cfg.Instagram.UsernameEnv != "" {
		cfg.Instagram.Username = os.Getenv(cfg.Instagram.UsernameEnv)
	}
	if cfg.Instagram.PasswordEnv != "" {
		cfg.Instagram.Password = os.Getenv(cfg.Instagram.PasswordEnv)
	}
	if cfg.Slack.TokenEnv != "" {
		cfg.Slack.Token = os.Getenv(cfg.Slack.TokenEnv)
	}
}

func validate(cfg *Config) error {
	if len(cfg.Profiles) == 0 {
		return errors.New("profiles: at least one profile must be configured")
	}

	seen := make(map[string]bool, len(cfg.Profiles))
	for i, p := range cfg.Profiles {
		if strings.TrimSpace(p.Username) == "" {
			return fmt.Errorf("profiles[%d]: username is required", i)
		}
		if strings.TrimSpace(p.DisplayName) == "" {
			return fmt.Errorf("profiles[%d]: display_name is required", i)
		}
		if seen[p.Username] {
			return fmt.Errorf("profiles[%d]: duplicate username %q", i, p.Username)
		}
		seen[p.Username] = true
	}

	if cfg.Fetch.Count < 1 {
		return fmt.Errorf("fetch.count: must be at least 1, got %d", cfg.Fetch.Count)
	}
	if _, err := time.LoadLocation(cfg.Fetch.Timezone); err != nil {
		return fmt.Errorf("fetch.timezone: %w", err)
	}

	if strings.TrimSpace(cfg.Slack.ChannelID) == "" {
		return errors.New("slack.channel_id is required")
	}

	return nil
}
