package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	AI         AIConfig         `mapstructure:"ai"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Cache      CacheConfig      `mapstructure:"cache"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Feed       FeedConfig       `mapstructure:"feed"`
	Logging    LoggingConfig    `mapstructure:"logging"`
	Monitoring MonitoringConfig `mapstructure:"monitoring"`
	I18n       I18nConfig       `mapstructure:"i18n"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type AIConfig struct {
	BaseURL         string           `mapstructure:"base_url"`
	APIKey          string           `mapstructure:"api_key"`
	Models          []string         `mapstructure:"models"`
	FastModel       string           `mapstructure:"fast_model"`
	RequestTimeout  time.Duration    `mapstructure:"request_timeout"`
	SafetyThreshold string           `mapstructure:"safety_threshold"`
	Generation      GenerationConfig `mapstructure:"generation"`
}

type GenerationConfig struct {
	Temperature     float64 `mapstructure:"temperature"`
	MaxOutputTokens int     `mapstructure:"max_output_tokens"`
	TopP            float64 `mapstructure:"top_p"`
	TopK            int     `mapstructure:"top_k"`
}

type StorageConfig struct {
	Type   string       `mapstructure:"type"`
	Redis  RedisConfig  `mapstructure:"redis"`
	Memory MemoryConfig `mapstructure:"memory"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type MemoryConfig struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
	MaxSize int           `mapstructure:"max_size"`
}

type RateLimitConfig struct {
	Enabled           bool `mapstructure:"enabled"`
	RequestsPerMinute int  `mapstructure:"requests_per_minute"`
	Burst             int  `mapstructure:"burst"`
}

type FeedConfig struct {
	PageSize      int           `mapstructure:"page_size"`
	OwnerCacheTTL time.Duration `mapstructure:"owner_cache_ttl"`
}

type LoggingConfig struct {
	Level  string     `mapstructure:"level"`
	Format string     `mapstructure:"format"`
	Output string     `mapstructure:"output"`
	File   FileConfig `mapstructure:"file"`
}

type FileConfig struct {
	Path       string `mapstructure:"path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

type MonitoringConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port"`
	Path    string `mapstructure:"path"`
}

type I18nConfig struct {
	DefaultLanguage string   `mapstructure:"default_language"`
	Languages       []string `mapstructure:"languages"`
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	// Enable environment variable substitution
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Set environment variable overrides
	viper.SetEnvPrefix("") // No prefix
	viper.BindEnv("ai.api_key", "GEMINI_API_KEY")
	viper.BindEnv("server.port", "SERVER_PORT")
	viper.BindEnv("storage.redis.addr", "REDIS_HOST", "REDIS_PORT")
	viper.BindEnv("storage.redis.password", "REDIS_PASSWORD")
	viper.BindEnv("storage.redis.db", "REDIS_DB")

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Handle Redis address special case
	if redisHost := viper.GetString("REDIS_HOST"); redisHost != "" {
		redisPort := viper.GetString("REDIS_PORT")
		if redisPort == "" {
			redisPort = "6379"
		}
		config.Storage.Redis.Addr = fmt.Sprintf("%s:%s", redisHost, redisPort)
	}

	applyDefaults(&config)

	// Validate required fields
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func applyDefaults(cfg *Config) {
	if cfg.AI.RequestTimeout == 0 {
		cfg.AI.RequestTimeout = 30 * time.Second
	}
	if cfg.AI.FastModel == "" && len(cfg.AI.Models) > 1 {
		cfg.AI.FastModel = cfg.AI.Models[1]
	}
	if cfg.AI.SafetyThreshold == "" {
		cfg.AI.SafetyThreshold = "BLOCK_MEDIUM_AND_ABOVE"
	}
	if cfg.Feed.PageSize == 0 {
		cfg.Feed.PageSize = 12
	}
	if cfg.Feed.OwnerCacheTTL == 0 {
		cfg.Feed.OwnerCacheTTL = 5 * time.Minute
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
}

func validateConfig(cfg *Config) error {
	if len(cfg.AI.Models) == 0 {
		return fmt.Errorf("at least one model is required")
	}
	if cfg.AI.BaseURL == "" {
		return fmt.Errorf("ai base url is required")
	}
	return nil
}
