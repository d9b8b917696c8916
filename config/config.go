package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// HTTP server
	Server ServerConfig `mapstructure:"server"`

	// Analytics event store and admission rules
	Analytics AnalyticsConfig `mapstructure:"analytics"`

	// Profile / links / videos document
	Content ContentConfig `mapstructure:"content"`

	// Admin gate
	Admin AdminConfig `mapstructure:"admin"`

	// Redis
	Redis RedisConfig `mapstructure:"redis"`

	// Per-IP request limit on the public API
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// Live-status probes
	Live LiveConfig `mapstructure:"live"`

	// Prometheus
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	CORSOrigin      string        `mapstructure:"cors_origin"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type AnalyticsConfig struct {
	DataFile         string        `mapstructure:"data_file"`
	ViewDedupWindow  time.Duration `mapstructure:"view_dedup_window"`
	ClickDedupWindow time.Duration `mapstructure:"click_dedup_window"`
	ClickRateWindow  time.Duration `mapstructure:"click_rate_window"`
	ClickRateLimit   int           `mapstructure:"click_rate_limit"`
	Retention        time.Duration `mapstructure:"retention"`
	BotPatterns      []string      `mapstructure:"bot_patterns"`
	Timezone         string        `mapstructure:"timezone"`
}

type ContentConfig struct {
	DataFile string `mapstructure:"data_file"`
}

type AdminConfig struct {
	Password      string        `mapstructure:"password"`
	SessionSecret string        `mapstructure:"session_secret"`
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type RateLimitConfig struct {
	MaxRequests int           `mapstructure:"max_requests"`
	Window      time.Duration `mapstructure:"window"`
}

type LiveConfig struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	CacheTTL       time.Duration `mapstructure:"cache_ttl"`
	KickBaseURL    string        `mapstructure:"kick_base_url"`
	YouTubeBaseURL string        `mapstructure:"youtube_base_url"`
}

type PrometheusConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

// DefaultBotPatterns lists the client signatures skipped by analytics.
var DefaultBotPatterns = []string{
	"bot", "crawler", "spider", "scraper",
	"googlebot", "bingbot", "slurp", "duckduckbot",
	"baiduspider", "yandexbot", "sogou", "exabot",
	"facebot", "ia_archiver", "curl", "wget",
	"python", "java", "node", "postman",
	"headless", "phantom", "selenium", "puppeteer",
}

func Load() (*Config, error) {
	// Load local .env for development (ignored when missing).
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// Search for config/config.yaml (plus root for overrides).
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Allow environment variables to override YAML entries.
	v.SetEnvPrefix("")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Preserve legacy env variable names.
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Location resolves the analytics timezone, falling back to the process local zone.
func (c AnalyticsConfig) Location() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: invalid analytics timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c *Config) validate() error {
	if c.Analytics.ClickRateLimit <= 0 {
		return fmt.Errorf("config: analytics.click_rate_limit must be positive, got %d", c.Analytics.ClickRateLimit)
	}
	if c.Analytics.Retention <= 0 {
		return fmt.Errorf("config: analytics.retention must be positive")
	}
	if _, err := c.Analytics.Location(); err != nil {
		return err
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cors_origin", "*")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("analytics.data_file", "data/analytics.json")
	v.SetDefault("analytics.view_dedup_window", 5*time.Minute)
	v.SetDefault("analytics.click_dedup_window", 10*time.Second)
	v.SetDefault("analytics.click_rate_window", time.Minute)
	v.SetDefault("analytics.click_rate_limit", 10)
	v.SetDefault("analytics.retention", 30*24*time.Hour)
	v.SetDefault("analytics.bot_patterns", DefaultBotPatterns)
	v.SetDefault("analytics.timezone", "local")

	v.SetDefault("content.data_file", "data/links.json")

	v.SetDefault("admin.password", "")
	v.SetDefault("admin.session_secret", "")
	v.SetDefault("admin.session_ttl", 12*time.Hour)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)

	v.SetDefault("rate_limit.max_requests", 120)
	v.SetDefault("rate_limit.window", time.Minute)

	v.SetDefault("live.timeout", 8*time.Second)
	v.SetDefault("live.cache_ttl", 5*time.Minute)
	v.SetDefault("live.kick_base_url", "https://kick.com")
	v.SetDefault("live.youtube_base_url", "https://www.youtube.com")

	v.SetDefault("prometheus.enabled", false)
	v.SetDefault("prometheus.port", 9090)
}

func bindEnvVars(v *viper.Viper) {
	// Server
	v.BindEnv("server.addr", "ADDR")
	v.BindEnv("server.cors_origin", "CORS_ORIGIN")

	// Analytics
	v.BindEnv("analytics.data_file", "ANALYTICS_FILE")
	v.BindEnv("analytics.timezone", "ANALYTICS_TZ")

	// Content
	v.BindEnv("content.data_file", "CONTENT_FILE")

	// Admin
	v.BindEnv("admin.password", "ADMIN_PASSWORD")
	v.BindEnv("admin.session_secret", "ADMIN_SESSION_SECRET")
	v.BindEnv("admin.session_ttl", "ADMIN_SESSION_TTL")

	// Redis
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")

	// Prometheus
	v.BindEnv("prometheus.enabled", "PROM_ENABLED")
	v.BindEnv("prometheus.port", "PROM_PORT")
}
