package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	YouTube   YouTubeConfig   `yaml:"youtube" mapstructure:"youtube"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Registry  RegistryConfig  `yaml:"registry" mapstructure:"registry"`
	Exa       ExaConfig       `yaml:"exa" mapstructure:"exa"`
	Hunter    HunterConfig    `yaml:"hunter" mapstructure:"hunter"`
	Snov      SnovConfig      `yaml:"snov" mapstructure:"snov"`
	Pricing   PricingConfig   `yaml:"pricing" mapstructure:"pricing"`
	Gate      GateConfig      `yaml:"gate" mapstructure:"gate"`
	Discovery DiscoveryConfig `yaml:"discovery" mapstructure:"discovery"`
	Specialty SpecialtyConfig `yaml:"specialty" mapstructure:"specialty"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// YouTubeConfig holds YouTube Data API settings.
type YouTubeConfig struct {
	Key               string `yaml:"key" mapstructure:"key"`
	BaseURL           string `yaml:"base_url" mapstructure:"base_url"`
	RegionCode        string `yaml:"region_code" mapstructure:"region_code"`
	RelevanceLanguage string `yaml:"relevance_language" mapstructure:"relevance_language"`
	PageSize          int    `yaml:"page_size" mapstructure:"page_size"`
	BatchSize         int    `yaml:"batch_size" mapstructure:"batch_size"`
	RecentVideos      int    `yaml:"recent_videos" mapstructure:"recent_videos"`
}

// AnthropicConfig holds Anthropic API settings for identity extraction.
type AnthropicConfig struct {
	Key         string      `yaml:"key" mapstructure:"key"`
	BaseURL     string      `yaml:"base_url" mapstructure:"base_url"`
	Model       string      `yaml:"model" mapstructure:"model"`
	MaxTokens   int64       `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64     `yaml:"temperature" mapstructure:"temperature"`
	Retry       RetryConfig `yaml:"retry" mapstructure:"retry"`
}

// RetryConfig configures retry with exponential backoff.
type RetryConfig struct {
	MaxRetries  int `yaml:"max_retries" mapstructure:"max_retries"`
	BaseDelayMs int `yaml:"base_delay_ms" mapstructure:"base_delay_ms"`
	MaxJitterMs int `yaml:"max_jitter_ms" mapstructure:"max_jitter_ms"`
}

// RegistryConfig holds NPI registry settings.
type RegistryConfig struct {
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	Limit     int     `yaml:"limit" mapstructure:"limit"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// ExaConfig holds Exa search settings.
type ExaConfig struct {
	Key        string  `yaml:"key" mapstructure:"key"`
	BaseURL    string  `yaml:"base_url" mapstructure:"base_url"`
	NumResults int     `yaml:"num_results" mapstructure:"num_results"`
	RateLimit  float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// HunterConfig holds Hunter email finder settings.
type HunterConfig struct {
	Key       string  `yaml:"key" mapstructure:"key"`
	BaseURL   string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// SnovConfig holds Snov email finder OAuth settings.
type SnovConfig struct {
	ClientID     string  `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string  `yaml:"client_secret" mapstructure:"client_secret"`
	BaseURL      string  `yaml:"base_url" mapstructure:"base_url"`
	RateLimit    float64 `yaml:"rate_limit" mapstructure:"rate_limit"`
}

// PricingConfig holds per-provider pricing rates.
type PricingConfig struct {
	Anthropic   map[string]ModelPricing `yaml:"anthropic" mapstructure:"anthropic"`
	Exa         ExaPricing              `yaml:"exa" mapstructure:"exa"`
	EmailFinder EmailFinderPricing      `yaml:"email_finder" mapstructure:"email_finder"`
	YouTube     QuotaPricing            `yaml:"youtube" mapstructure:"youtube"`
}

// ModelPricing holds per-model token pricing (USD per million tokens).
type ModelPricing struct {
	Input  float64 `yaml:"input" mapstructure:"input"`
	Output float64 `yaml:"output" mapstructure:"output"`
}

// ExaPricing holds Exa pricing.
type ExaPricing struct {
	PerSearch  float64 `yaml:"per_search" mapstructure:"per_search"`
	PerContent float64 `yaml:"per_content" mapstructure:"per_content"`
}

// EmailFinderPricing holds per-lookup email finder pricing.
type EmailFinderPricing struct {
	Hunter float64 `yaml:"hunter" mapstructure:"hunter"`
	Snov   float64 `yaml:"snov" mapstructure:"snov"`
}

// QuotaPricing holds YouTube quota units per call type.
type QuotaPricing struct {
	Search       int `yaml:"search" mapstructure:"search"`
	ChannelBatch int `yaml:"channel_batch" mapstructure:"channel_batch"`
	VideoList    int `yaml:"video_list" mapstructure:"video_list"`
}

// GateConfig configures candidate admission thresholds.
type GateConfig struct {
	MinReach        int64  `yaml:"min_reach" mapstructure:"min_reach"`
	MaxInactiveDays int    `yaml:"max_inactive_days" mapstructure:"max_inactive_days"`
	DomesticCountry string `yaml:"domestic_country" mapstructure:"domestic_country"`
}

// DiscoveryConfig configures the search query catalog.
type DiscoveryConfig struct {
	QueriesFile       string `yaml:"queries_file" mapstructure:"queries_file"`
	DefaultMaxQueries int    `yaml:"default_max_queries" mapstructure:"default_max_queries"`
}

// SpecialtyConfig describes the target specialty.
type SpecialtyConfig struct {
	Taxonomy      string   `yaml:"taxonomy" mapstructure:"taxonomy"`
	Title         string   `yaml:"title" mapstructure:"title"`
	TitleKeywords []string `yaml:"title_keywords" mapstructure:"title_keywords"`
}

// PipelineConfig configures run behavior.
type PipelineConfig struct {
	TimeoutSecs      int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	ProgressEvery    int `yaml:"progress_every" mapstructure:"progress_every"`
	EventBufferSize  int `yaml:"event_buffer_size" mapstructure:"event_buffer_size"`
	DescriptionChars int `yaml:"description_chars" mapstructure:"description_chars"`
}

// Timeout returns the run wall-clock ceiling.
func (p PipelineConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSecs) * time.Second
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
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("youtube.key", "")
	v.SetDefault("youtube.base_url", "https://www.googleapis.com/youtube/v3")
	v.SetDefault("youtube.region_code", "US")
	v.SetDefault("youtube.relevance_language", "en")
	v.SetDefault("youtube.page_size", 50)
	v.SetDefault("youtube.batch_size", 50)
	v.SetDefault("youtube.recent_videos", 5)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.base_url", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("anthropic.temperature", 0.0)
	v.SetDefault("anthropic.retry.max_retries", 2)
	v.SetDefault("anthropic.retry.base_delay_ms", 1000)
	v.SetDefault("anthropic.retry.max_jitter_ms", 500)
	v.SetDefault("registry.base_url", "https://npiregistry.cms.hhs.gov/api")
	v.SetDefault("registry.limit", 10)
	v.SetDefault("registry.rate_limit", 5.0)
	v.SetDefault("exa.key", "")
	v.SetDefault("exa.base_url", "https://api.exa.ai")
	v.SetDefault("exa.num_results", 5)
	v.SetDefault("exa.rate_limit", 5.0)
	v.SetDefault("hunter.key", "")
	v.SetDefault("hunter.base_url", "https://api.hunter.io/v2")
	v.SetDefault("hunter.rate_limit", 10.0)
	v.SetDefault("snov.client_id", "")
	v.SetDefault("snov.client_secret", "")
	v.SetDefault("snov.base_url", "https://api.snov.io/v1")
	v.SetDefault("snov.rate_limit", 1.0)
	v.SetDefault("pricing.anthropic", map[string]any{
		"claude-haiku-4-5-20251001":  map[string]any{"input": 0.80, "output": 4.00},
		"claude-sonnet-4-5-20250929": map[string]any{"input": 3.00, "output": 15.00},
	})
	v.SetDefault("pricing.exa.per_search", 0.005)
	v.SetDefault("pricing.exa.per_content", 0.001)
	v.SetDefault("pricing.email_finder.hunter", 0.0)
	v.SetDefault("pricing.email_finder.snov", 0.0)
	v.SetDefault("pricing.youtube.search", 100)
	v.SetDefault("pricing.youtube.channel_batch", 1)
	v.SetDefault("pricing.youtube.video_list", 1)
	v.SetDefault("gate.min_reach", 5000)
	v.SetDefault("gate.max_inactive_days", 90)
	v.SetDefault("gate.domestic_country", "US")
	v.SetDefault("discovery.queries_file", "")
	v.SetDefault("discovery.default_max_queries", 3)
	v.SetDefault("specialty.taxonomy", "Dermatology")
	v.SetDefault("specialty.title", "dermatologist")
	v.SetDefault("specialty.title_keywords", []string{"dermatolog", "derm ", "skin", "mohs"})
	v.SetDefault("pipeline.timeout_secs", 300)
	v.SetDefault("pipeline.progress_every", 5)
	v.SetDefault("pipeline.event_buffer_size", 64)
	v.SetDefault("pipeline.description_chars", 800)
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

// Validate checks the settings a command mode depends on. Provider
// credentials are not checked here; a missing key fails the first call made
// to that provider.
func (c *Config) Validate(mode string) error {
	var errs []string

	switch mode {
	case "run":
	case "serve":
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.YouTube.PageSize < 1 || c.YouTube.PageSize > 50 {
		errs = append(errs, "youtube.page_size must be between 1 and 50")
	}
	if c.YouTube.BatchSize < 1 || c.YouTube.BatchSize > 50 {
		errs = append(errs, "youtube.batch_size must be between 1 and 50")
	}
	if c.Gate.MinReach < 0 {
		errs = append(errs, "gate.min_reach must be >= 0")
	}
	if c.Gate.MaxInactiveDays < 0 {
		errs = append(errs, "gate.max_inactive_days must be >= 0")
	}
	if c.Discovery.DefaultMaxQueries < 1 {
		errs = append(errs, "discovery.default_max_queries must be > 0")
	}
	if c.Pipeline.TimeoutSecs < 1 {
		errs = append(errs, "pipeline.timeout_secs must be > 0")
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
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
