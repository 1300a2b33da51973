package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/CIDgravity/snakelet"
	"github.com/adrg/xdg"
	"github.com/zalando/go-keyring"
)

// AppName is used for the XDG config directory and the keyring service name
const AppName = "github-profile-mcp"

// DefaultCommitFanOutLimit bounds how many repositories are inspected when
// recent commits are requested without a repository name
const DefaultCommitFanOutLimit = 10

var (
	ErrMissingToken    = errors.New("github token is required (GITHUB_TOKEN or keyring entry)")
	ErrMissingUsername = errors.New("github username is required (GITHUB_USERNAME)")
)

// config structure
type Config struct {
	API       APIConfig       `mapstructure:"API"`
	Github    GithubConfig    `mapstructure:"GITHUB"`
	Cache     CacheConfig     `mapstructure:"CACHE"`
	Tasks     TasksConfig     `mapstructure:"TASKS"`
	Logs      LogsConfig      `mapstructure:"LOGS"`
	Portfolio PortfolioConfig `mapstructure:"PORTFOLIO"`
}

type APIConfig struct {
	ListenPort string `mapstructure:"ListenPort"`
}

type GithubConfig struct {
	Token                string `mapstructure:"Token"`
	Username             string `mapstructure:"Username"`
	BaseURL              string `mapstructure:"BaseURL"`    // empty means api.github.com
	GraphQLURL           string `mapstructure:"GraphQLURL"` // empty means api.github.com/graphql
	RequestsPerHour      int    `mapstructure:"RequestsPerHour"`
	CommitFanOutLimit    int    `mapstructure:"CommitFanOutLimit"`
	CommitsPerRepository int    `mapstructure:"CommitsPerRepository"`
}

type CacheConfig struct {
	TTLSeconds         int `mapstructure:"TTLSeconds"`
	CheckPeriodSeconds int `mapstructure:"CheckPeriodSeconds"`
}

type TasksConfig struct {
	MaxParallelTasksAllowed int `mapstructure:"MaxParallelTasksAllowed"`
}

type LogsConfig struct {
	Level            string `mapstructure:"Level"` // error | warn | info | debug - case insensitive
	OutputLogsAsJSON bool   `mapstructure:"OutputLogsAsJSON"`
	File             string `mapstructure:"File"` // empty means stderr
}

// PinnedProject is always shown first in the portfolio featured projects
type PinnedProject struct {
	Name        string `mapstructure:"Name"`
	Description string `mapstructure:"Description"`
	URL         string `mapstructure:"URL"`
}

type PortfolioConfig struct {
	PinnedProjects []PinnedProject `mapstructure:"PinnedProjects"`
}

// TTL returns the default cache entry lifetime
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// CheckPeriod returns the cache sweep period
func (c CacheConfig) CheckPeriod() time.Duration {
	return time.Duration(c.CheckPeriodSeconds) * time.Second
}

// Load reads defaults, the optional config file and environment overrides,
// then validates that credentials and identity are present
func Load() (*Config, error) {
	cfg := GetDefault()

	if configFilePath, found := findConfigFile(); found {
		if _, err := snakelet.InitAndLoad(cfg, configFilePath); err != nil {
			return nil, fmt.Errorf("unable to load config file %s: %w", configFilePath, err)
		}
	}

	if err := applyEnv(cfg, os.Getenv); err != nil {
		return nil, err
	}

	// token can be stored in the OS keyring instead of the environment
	if cfg.Github.Token == "" && cfg.Github.Username != "" {
		if token, err := keyring.Get(AppName, cfg.Github.Username); err == nil {
			cfg.Github.Token = token
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the settings required to start serving
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Github.Token) == "" {
		return ErrMissingToken
	}

	if strings.TrimSpace(c.Github.Username) == "" {
		return ErrMissingUsername
	}

	if c.Cache.TTLSeconds <= 0 {
		return fmt.Errorf("cache ttl must be positive, got %d", c.Cache.TTLSeconds)
	}

	if c.Cache.CheckPeriodSeconds <= 0 {
		return fmt.Errorf("cache check period must be positive, got %d", c.Cache.CheckPeriodSeconds)
	}

	return nil
}

// GetDefault
func GetDefault() *Config {
	return &Config{
		API: APIConfig{
			ListenPort: "5000",
		},
		Github: GithubConfig{
			RequestsPerHour:      5000,
			CommitFanOutLimit:    DefaultCommitFanOutLimit,
			CommitsPerRepository: 5,
		},
		Cache: CacheConfig{
			TTLSeconds:         300,
			CheckPeriodSeconds: 60,
		},
		Tasks: TasksConfig{
			MaxParallelTasksAllowed: 8,
		},
		Logs: LogsConfig{
			Level:            "info",
			OutputLogsAsJSON: false,
		},
	}
}

// findConfigFile looks next to the binary, then in the working directory,
// then in the XDG config home
func findConfigFile() (string, bool) {
	if dir, err := filepath.Abs(filepath.Dir(os.Args[0])); err == nil {
		candidate := filepath.Join(dir, "config", "config.toml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}

	if _, err := os.Stat("config/config.toml"); err == nil {
		return "config/config.toml", true
	}

	if candidate, err := xdg.SearchConfigFile(filepath.Join(AppName, "config.toml")); err == nil {
		return candidate, true
	}

	return "", false
}

// applyEnv overrides the loaded values with environment variables
func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv("GITHUB_TOKEN"); v != "" {
		cfg.Github.Token = v
	}

	if v := getenv("GITHUB_USERNAME"); v != "" {
		cfg.Github.Username = v
	}

	if v := getenv("GITHUB_API_BASE_URL"); v != "" {
		cfg.Github.BaseURL = v
	}

	if v := getenv("GITHUB_GRAPHQL_URL"); v != "" {
		cfg.Github.GraphQLURL = v
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		cfg.Logs.Level = v
	}

	if v := getenv("LOG_FILE"); v != "" {
		cfg.Logs.File = v
	}

	if v := getenv("CACHE_TTL"); v != "" {
		ttl, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid CACHE_TTL %q: %w", v, err)
		}
		cfg.Cache.TTLSeconds = ttl
	}

	if v := getenv("CACHE_CHECK_PERIOD"); v != "" {
		period, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid CACHE_CHECK_PERIOD %q: %w", v, err)
		}
		cfg.Cache.CheckPeriodSeconds = period
	}

	return nil
}
