package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log       Logger        `mapstructure:"logger"`
	DB        Database      `mapstructure:"database"`
	API       API           `mapstructure:"api"`
	Scheduler Scheduler     `mapstructure:"scheduler"`
	Exchange  Exchange      `mapstructure:"exchange"`
	Cache     Cache         `mapstructure:"cache"`
	Alerting  Alerting      `mapstructure:"alerting"`
	Gemini    Gemini        `mapstructure:"gemini"`
	Telegram  Telegram      `mapstructure:"telegram"`
	SMTP      SMTP          `mapstructure:"smtp"`
	OpsAlert  OpsAlert      `mapstructure:"ops_alert"`
	Auth      Auth          `mapstructure:"auth"`
	Cleanup   CleanupPolicy `mapstructure:"cleanup"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type API struct {
	Port int `mapstructure:"port"`
}

type Scheduler struct {
	MaxConcurrency  int           `mapstructure:"max_concurrency"`
	TimeoutDuration time.Duration `mapstructure:"timeout_duration"`
}

// Exchange configures the futures market data REST client.
type Exchange struct {
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	SyncSymbolLimit     int           `mapstructure:"sync_symbol_limit"`
	SyncConcurrency     int           `mapstructure:"sync_concurrency"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

// Alerting configures user alert dispatch.
type Alerting struct {
	WebhookTimeout          time.Duration `mapstructure:"webhook_timeout"`
	MaxWebhookPerSecond     int           `mapstructure:"max_webhook_per_second"`
	DefaultCooldownDuration time.Duration `mapstructure:"default_cooldown_duration"`
}

type Gemini struct {
	APIKey              string        `mapstructure:"api_key"`
	BaseURL             string        `mapstructure:"base_url"`
	BaseModel           string        `mapstructure:"base_model"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int           `mapstructure:"max_token_per_minute"`
	PredictionTTL       time.Duration `mapstructure:"prediction_ttl"`
}

type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
}

type SMTP struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	FromName string `mapstructure:"from_name"`
}

// OpsAlert configures the webhook that receives error-level log alerts.
type OpsAlert struct {
	WebhookURL string `mapstructure:"webhook_url"`
	MinLevel   string `mapstructure:"min_level"`
}

type Auth struct {
	BcryptCost int `mapstructure:"bcrypt_cost"`
}

type CleanupPolicy struct {
	AlertRetentionDays      int `mapstructure:"alert_retention_days"`
	PredictionRetentionDays int `mapstructure:"prediction_retention_days"`
}

func Load() (*Config, error) {
	// .env is optional, environment variables win either way.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	setDefaults()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "json")
	viper.SetDefault("api.port", 8080)
	viper.SetDefault("scheduler.max_concurrency", 5)
	viper.SetDefault("scheduler.timeout_duration", "5m")
	viper.SetDefault("exchange.base_url", "https://fapi.binance.com")
	viper.SetDefault("exchange.timeout", "10s")
	viper.SetDefault("exchange.max_request_per_minute", 1200)
	viper.SetDefault("exchange.sync_symbol_limit", 200)
	viper.SetDefault("exchange.sync_concurrency", 4)
	viper.SetDefault("cache.default_expiration", "5m")
	viper.SetDefault("cache.cleanup_interval", "10m")
	viper.SetDefault("alerting.webhook_timeout", "5s")
	viper.SetDefault("alerting.max_webhook_per_second", 5)
	viper.SetDefault("alerting.default_cooldown_duration", "15m")
	viper.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta/models")
	viper.SetDefault("gemini.base_model", "gemini-2.0-flash")
	viper.SetDefault("gemini.timeout", "30s")
	viper.SetDefault("gemini.max_request_per_minute", 10)
	viper.SetDefault("gemini.max_token_per_minute", 250000)
	viper.SetDefault("gemini.prediction_ttl", "1h")
	viper.SetDefault("ops_alert.min_level", "error")
	viper.SetDefault("auth.bcrypt_cost", 10)
	viper.SetDefault("cleanup.alert_retention_days", 30)
	viper.SetDefault("cleanup.prediction_retention_days", 7)
}
