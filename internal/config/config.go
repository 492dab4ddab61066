// Package config loads application configuration from config.yaml and the
// DISPUTE_ environment, and owns the global logger setup.
package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Patterns   PatternsConfig   `yaml:"patterns" mapstructure:"patterns"`
	Match      MatchConfig      `yaml:"match" mapstructure:"match"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Fetch      FetchConfig      `yaml:"fetch" mapstructure:"fetch"`
	LegalRef   LegalRefConfig   `yaml:"legalref" mapstructure:"legalref"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the learning store backend.
type StoreConfig struct {
	Backend     string `yaml:"backend" mapstructure:"backend"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// PatternsConfig selects the pattern catalog. An empty file means the
// built-in catalog.
type PatternsConfig struct {
	File string `yaml:"file" mapstructure:"file"`
}

// MatchConfig configures the matcher.
type MatchConfig struct {
	BudgetMS int `yaml:"budget_ms" mapstructure:"budget_ms"`
}

// BatchConfig configures batch analysis.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// FetchConfig configures the letter fetcher.
type FetchConfig struct {
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	PerSecond   float64 `yaml:"per_second" mapstructure:"per_second"`
}

// LegalRefConfig configures the legal-reference lookup decorators.
type LegalRefConfig struct {
	CacheTTLMinutes int     `yaml:"cache_ttl_minutes" mapstructure:"cache_ttl_minutes"`
	PerSecond       float64 `yaml:"per_second" mapstructure:"per_second"`
}

// NotionConfig holds the Notion integration token and findings database.
type NotionConfig struct {
	Token      string `yaml:"token" mapstructure:"token"`
	FindingsDB string `yaml:"findings_db" mapstructure:"findings_db"`
}

// SalesforceConfig holds Salesforce JWT auth settings for outcome import.
type SalesforceConfig struct {
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	Username string `yaml:"username" mapstructure:"username"`
	KeyPath  string `yaml:"key_path" mapstructure:"key_path"`
	LoginURL string `yaml:"login_url" mapstructure:"login_url"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("DISPUTE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.backend", "sqlite")
	v.SetDefault("store.path", "dispute.db")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("patterns.file", "")
	v.SetDefault("match.budget_ms", 50)
	v.SetDefault("batch.concurrency", 4)
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.per_second", 5)
	v.SetDefault("legalref.cache_ttl_minutes", 60)
	v.SetDefault("legalref.per_second", 0)
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the prerequisites for a given command mode: "store" for
// commands touching the learning store, "analyze" for the analysis
// commands, "export" for the Notion export, "salesforce" for the
// Salesforce outcome import. Every violation is reported, not just the
// first.
func (c *Config) Validate(mode string) error {
	var problems []string
	switch mode {
	case "store":
		problems = c.storeProblems()
	case "analyze":
		problems = append(c.storeProblems(), c.analysisProblems()...)
	case "export":
		if c.Notion.Token == "" {
			problems = append(problems, "notion.token is required")
		}
		if c.Notion.FindingsDB == "" {
			problems = append(problems, "notion.findings_db is required")
		}
	case "salesforce":
		if c.Salesforce.Username == "" {
			problems = append(problems, "salesforce.username is required")
		}
		if c.Salesforce.ClientID == "" {
			problems = append(problems, "salesforce.client_id is required")
		}
		if c.Salesforce.KeyPath == "" {
			problems = append(problems, "salesforce.key_path is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (c *Config) storeProblems() []string {
	var problems []string
	switch c.Store.Backend {
	case "sqlite":
		if c.Store.Path == "" {
			problems = append(problems, "store.path is required")
		}
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required")
		}
	case "memory":
	default:
		problems = append(problems, fmt.Sprintf("store.backend must be sqlite, postgres or memory, got %q", c.Store.Backend))
	}
	return problems
}

func (c *Config) analysisProblems() []string {
	var problems []string
	if c.Batch.Concurrency < 1 || c.Batch.Concurrency > 32 {
		problems = append(problems, "batch.concurrency must be between 1 and 32")
	}
	if c.Match.BudgetMS <= 0 {
		problems = append(problems, "match.budget_ms must be > 0")
	}
	if c.Fetch.TimeoutSecs <= 0 {
		problems = append(problems, "fetch.timeout_secs must be > 0")
	}
	if c.Fetch.MaxRetries < 0 || c.Fetch.MaxRetries > 10 {
		problems = append(problems, "fetch.max_retries must be between 0 and 10")
	}
	if c.LegalRef.CacheTTLMinutes < 0 {
		problems = append(problems, "legalref.cache_ttl_minutes must be >= 0")
	}
	return problems
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
