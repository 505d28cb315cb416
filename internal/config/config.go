package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	A2A        A2AConfig        `yaml:"a2a" mapstructure:"a2a"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Enrich     EnrichConfig     `yaml:"enrich" mapstructure:"enrich"`
	Valuation  ValuationConfig  `yaml:"valuation" mapstructure:"valuation"`
	MarketData MarketDataConfig `yaml:"marketdata" mapstructure:"marketdata"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the A2A HTTP server.
type ServerConfig struct {
	Port               int      `yaml:"port" mapstructure:"port"`
	RequestTimeoutSecs int      `yaml:"request_timeout_secs" mapstructure:"request_timeout_secs"`
	AllowedOrigins     []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// A2AConfig configures agent-to-agent communication.
type A2AConfig struct {
	Enabled        bool        `yaml:"enabled" mapstructure:"enabled"`
	AgentName      string      `yaml:"agent_name" mapstructure:"agent_name"`
	TimeoutSecs    int         `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RateLimitRPS   float64     `yaml:"rate_limit_rps" mapstructure:"rate_limit_rps"`
	RateLimitBurst int         `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
	Retry          RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// RetryConfig configures backoff for outbound peer calls.
type RetryConfig struct {
	MaxAttempts      int `yaml:"max_attempts" mapstructure:"max_attempts"`
	InitialBackoffMs int `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
}

// AnthropicConfig holds Anthropic API settings for advisory summaries.
type AnthropicConfig struct {
	Key         string  `yaml:"key" mapstructure:"key"`
	Model       string  `yaml:"model" mapstructure:"model"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
	MaxTokens   int64   `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// EnrichConfig selects and tunes the advisory summary provider.
type EnrichConfig struct {
	Provider          string  `yaml:"provider" mapstructure:"provider"` // deterministic or anthropic
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	CircuitThreshold  int     `yaml:"circuit_threshold" mapstructure:"circuit_threshold"`
	CircuitResetSecs  int     `yaml:"circuit_reset_secs" mapstructure:"circuit_reset_secs"`
}

// ValuationConfig holds pipeline policy.
type ValuationConfig struct {
	Routing               string  `yaml:"routing" mapstructure:"routing"`                       // linear or conditional
	ComparableQuality     string  `yaml:"comparable_quality" mapstructure:"comparable_quality"` // fixed or derived
	MaxComparables        int     `yaml:"max_comparables" mapstructure:"max_comparables"`
	MarketAdjustmentLimit float64 `yaml:"market_adjustment_limit" mapstructure:"market_adjustment_limit"`
	ConfidenceThreshold   string  `yaml:"confidence_threshold" mapstructure:"confidence_threshold"`
}

// MarketDataConfig selects the comparable sales source.
type MarketDataConfig struct {
	Source      string `yaml:"source" mapstructure:"source"` // synthetic, sqlite, or postgres
	SQLitePath  string `yaml:"sqlite_path" mapstructure:"sqlite_path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	Seed        uint64 `yaml:"seed" mapstructure:"seed"`
}

// BatchConfig configures batch valuation.
type BatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// Load reads configuration from config.yaml (optional) and VALUATION_*
// environment variables.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("VALUATION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.request_timeout_secs", 150)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("a2a.enabled", true)
	v.SetDefault("a2a.agent_name", "property_valuation_agent")
	v.SetDefault("a2a.timeout_secs", 120)
	v.SetDefault("a2a.rate_limit_rps", 10)
	v.SetDefault("a2a.rate_limit_burst", 20)
	v.SetDefault("a2a.retry.max_attempts", 3)
	v.SetDefault("a2a.retry.initial_backoff_ms", 500)
	v.SetDefault("a2a.retry.max_backoff_ms", 10000)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-sonnet-4-5-20250929")
	v.SetDefault("anthropic.temperature", 0.1)
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("enrich.provider", "deterministic")
	v.SetDefault("enrich.timeout_secs", 30)
	v.SetDefault("enrich.requests_per_second", 2)
	v.SetDefault("enrich.circuit_threshold", 5)
	v.SetDefault("enrich.circuit_reset_secs", 60)
	v.SetDefault("valuation.routing", "linear")
	v.SetDefault("valuation.comparable_quality", "fixed")
	v.SetDefault("valuation.max_comparables", 5)
	v.SetDefault("valuation.market_adjustment_limit", 20)
	v.SetDefault("valuation.confidence_threshold", "MEDIUM")
	v.SetDefault("marketdata.source", "synthetic")
	v.SetDefault("marketdata.sqlite_path", "sales.db")
	v.SetDefault("marketdata.database_url", "")
	v.SetDefault("marketdata.max_conns", 4)
	v.SetDefault("marketdata.seed", 0)
	v.SetDefault("batch.max_concurrent", 5)

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
