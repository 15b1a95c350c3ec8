// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL         = "https://compositemicroservice-608197196549.us-central1.run.app/composite"
	DefaultPollInterval    = 2 * time.Second
	DefaultMaxAttempts     = 10
	DefaultMoviesPageSize  = 12
	DefaultReviewsPageSize = 40
)

type RuntimeConfig struct {
	Dev bool
}

type APIConfig struct {
	BaseURL   string        `yaml:"base_url" split_words:"true"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent" split_words:"true"`
}

type PollConfig struct {
	Interval    time.Duration `yaml:"interval"`
	MaxAttempts int           `yaml:"max_attempts" split_words:"true"`
	LockTTL     time.Duration `yaml:"lock_ttl" split_words:"true"` // redis lease lifetime, renewed while a session runs
}

type PagingConfig struct {
	Movies  int `yaml:"movies"`
	Reviews int `yaml:"reviews"`
}

type LogConfig struct {
	Level    string `yaml:"level"`  // trace|debug|info|warn|error
	Format   string `yaml:"format"` // json|console
	Sampling bool   `yaml:"sampling"`
}

type AdminConfig struct {
	Port int `yaml:"port"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	URL      string `yaml:"url"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type CacheConfig struct {
	TTL     time.Duration `yaml:"ttl"`
	MaxCost int64         `yaml:"max_cost" split_words:"true"`
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id" split_words:"true"`
}

type SessionConfig struct {
	Path string `yaml:"path"` // credential file, default in user config dir
}

type SchedulerConfig struct {
	RecheckInterval time.Duration `yaml:"recheck_interval" split_words:"true"`
	RecheckBatch    int           `yaml:"recheck_batch" split_words:"true"`
	// MaxAttempts caps the polls recorded on a job; past it the job is marked exhausted.
	MaxAttempts int `yaml:"max_attempts" split_words:"true"`
	// RecheckCancelled also resumes sessions the user interrupted.
	RecheckCancelled bool `yaml:"recheck_cancelled" split_words:"true"`
	Workers          int  `yaml:"workers"`
}

type Config struct {
	API       APIConfig       `yaml:"api"`
	Poll      PollConfig      `yaml:"poll"`
	Paging    PagingConfig    `yaml:"paging"`
	Log       LogConfig       `yaml:"log"`
	Admin     AdminConfig     `yaml:"admin"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Cache     CacheConfig     `yaml:"cache"`
	Telegram  TelegramConfig  `yaml:"telegram"`
	Session   SessionConfig   `yaml:"session"`
	Scheduler SchedulerConfig `yaml:"scheduler"`

	Runtime RuntimeConfig `yaml:"-" ignored:"true"`
}

// LoadConfig reads the YAML file at path (a missing file yields defaults), then applies
// .env and COMPOSITE_* environment overrides.
func LoadConfig(path string, dev bool) (*Config, error) {
	var cfg Config
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &cfg); err != nil {
				return nil, fmt.Errorf("parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	env := strings.ToLower(os.Getenv("ENV"))
	if env != "production" && env != "prod" {
		_ = godotenv.Load(".env")
	}
	if err := envconfig.Process("COMPOSITE", &cfg); err != nil {
		return nil, fmt.Errorf("env config: %w", err)
	}

	applyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Runtime.Dev = dev
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

func applyDefaults(cfg *Config) {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultBaseURL
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	if cfg.API.Timeout <= 0 {
		cfg.API.Timeout = 15 * time.Second
	}
	if cfg.API.UserAgent == "" {
		cfg.API.UserAgent = "composite-client/1.0"
	}
	if cfg.Poll.Interval <= 0 {
		cfg.Poll.Interval = DefaultPollInterval
	}
	if cfg.Poll.MaxAttempts <= 0 {
		cfg.Poll.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Poll.LockTTL <= 0 {
		cfg.Poll.LockTTL = cfg.Poll.Interval*time.Duration(cfg.Poll.MaxAttempts) + 30*time.Second
	}
	if cfg.Paging.Movies <= 0 {
		cfg.Paging.Movies = DefaultMoviesPageSize
	}
	if cfg.Paging.Reviews <= 0 {
		cfg.Paging.Reviews = DefaultReviewsPageSize
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Admin.Port == 0 {
		cfg.Admin.Port = 9090
	}
	if cfg.Cache.TTL <= 0 {
		cfg.Cache.TTL = 5 * time.Minute
	}
	if cfg.Cache.MaxCost <= 0 {
		cfg.Cache.MaxCost = 1 << 12
	}
	if cfg.Scheduler.RecheckInterval <= 0 {
		cfg.Scheduler.RecheckInterval = time.Minute
	}
	if cfg.Scheduler.RecheckBatch <= 0 {
		cfg.Scheduler.RecheckBatch = 20
	}
	if cfg.Scheduler.MaxAttempts <= 0 {
		// the first session plus three rechecks
		cfg.Scheduler.MaxAttempts = 4 * cfg.Poll.MaxAttempts
	}
	if cfg.Scheduler.Workers <= 0 {
		cfg.Scheduler.Workers = 4
	}
}

// Validate performs minimal sanity checks.
func (c *Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil {
		return fmt.Errorf("api.base_url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return errors.New("api.base_url must be an absolute URL")
	}
	if c.Poll.Interval <= 0 {
		return errors.New("poll.interval must be positive")
	}
	if c.Telegram.Token != "" && c.Telegram.ChatID == 0 {
		return errors.New("telegram.chat_id is required when telegram.token is set")
	}
	return nil
}
