package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Engine EngineConfig `yaml:"engine" mapstructure:"engine"`
	Source SourceConfig `yaml:"source" mapstructure:"source"`
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// EngineConfig tunes filing selection and XBRL fetching.
type EngineConfig struct {
	MaxConcurrentFetches  int `yaml:"max_concurrent_fetches" mapstructure:"max_concurrent_fetches"`
	FetchDelayMs          int `yaml:"fetch_delay_ms" mapstructure:"fetch_delay_ms"`
	RetryAttempts         int `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	RetryBackoffMs        int `yaml:"retry_backoff_ms" mapstructure:"retry_backoff_ms"`
	SplitCacheTTLSecs     int `yaml:"split_cache_ttl_secs" mapstructure:"split_cache_ttl_secs"`
	SearchLimitMultiplier int `yaml:"search_limit_multiplier" mapstructure:"search_limit_multiplier"`
}

// FetchDelay is the pause taken before each XBRL fetch.
func (c EngineConfig) FetchDelay() time.Duration {
	return time.Duration(c.FetchDelayMs) * time.Millisecond
}

// SplitCacheTTL is how long split history stays cached; zero means forever.
func (c EngineConfig) SplitCacheTTL() time.Duration {
	return time.Duration(c.SplitCacheTTLSecs) * time.Second
}

// SourceConfig holds upstream API settings.
type SourceConfig struct {
	Name          string  `yaml:"name" mapstructure:"name"`
	BaseURL       string  `yaml:"base_url" mapstructure:"base_url"`
	APIKey        string  `yaml:"api_key" mapstructure:"api_key"`
	SplitsBaseURL string  `yaml:"splits_base_url" mapstructure:"splits_base_url"`
	SplitsAPIKey  string  `yaml:"splits_api_key" mapstructure:"splits_api_key"`
	TimeoutSecs   int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimit     float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
	UserAgent     string  `yaml:"user_agent" mapstructure:"user_agent"`
}

// StoreConfig configures the filing cache and run log. Driver is one of
// none, sqlite or postgres; DatabaseURL is a file path for sqlite.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// Enabled reports whether a store backend is configured.
func (c StoreConfig) Enabled() bool {
	return c.Driver != "" && c.Driver != "none"
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file. An empty path searches the
// working directory for an optional config.yaml; a named file must exist.
func LoadFile(path string) (*Config, error) {
	v := viper.New()

	// Config file
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("FINSTMT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("engine.max_concurrent_fetches", 8)
	v.SetDefault("engine.fetch_delay_ms", 50)
	v.SetDefault("engine.retry_attempts", 3)
	v.SetDefault("engine.retry_backoff_ms", 2000)
	v.SetDefault("engine.split_cache_ttl_secs", 0)
	v.SetDefault("engine.search_limit_multiplier", 2)
	v.SetDefault("source.name", "sec-api")
	v.SetDefault("source.base_url", "https://api.sec-api.io")
	v.SetDefault("source.api_key", "")
	v.SetDefault("source.splits_base_url", "https://api.polygon.io")
	v.SetDefault("source.splits_api_key", "")
	v.SetDefault("source.timeout_secs", 30)
	v.SetDefault("source.rate_limit", 10.0)
	v.SetDefault("source.user_agent", "finstmt/1.0")
	v.SetDefault("store.driver", "none")
	v.SetDefault("store.database_url", "")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
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

// Validate checks the settings a financials run depends on.
func (c *Config) Validate() error {
	var problems []string
	if c.Source.APIKey == "" {
		problems = append(problems, "source.api_key is required")
	}
	if c.Source.BaseURL == "" {
		problems = append(problems, "source.base_url is required")
	}
	if c.Engine.MaxConcurrentFetches < 1 {
		problems = append(problems, fmt.Sprintf("engine.max_concurrent_fetches must be positive, got %d", c.Engine.MaxConcurrentFetches))
	}
	if c.Engine.SearchLimitMultiplier < 1 {
		problems = append(problems, fmt.Sprintf("engine.search_limit_multiplier must be positive, got %d", c.Engine.SearchLimitMultiplier))
	}
	if c.Engine.SplitCacheTTLSecs < 0 {
		problems = append(problems, "engine.split_cache_ttl_secs must not be negative")
	}
	switch c.Store.Driver {
	case "", "none", "sqlite":
	case "postgres":
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required for postgres")
		}
	default:
		problems = append(problems, fmt.Sprintf("store.driver must be none, sqlite or postgres, got %q", c.Store.Driver))
	}
	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
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
