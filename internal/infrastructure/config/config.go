package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"recipe-matcher/internal/core/recipe"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Session 儲存方式
const (
	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	Dataset     DatasetConfig   `mapstructure:"dataset"`
	Matcher     MatcherConfig   `mapstructure:"matcher"`
	Session     SessionConfig   `mapstructure:"session"`
	Redis       RedisConfig     `mapstructure:"redis"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
	LogLevel    string          `mapstructure:"log_level"`
	LogDir      string          `mapstructure:"log_dir"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
}

// DatasetConfig 資料集來源設定
type DatasetConfig struct {
	URL        string        `mapstructure:"url"`
	Path       string        `mapstructure:"path"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RetryCount int           `mapstructure:"retry_count"`
}

// MatcherConfig 食材比對設定
type MatcherConfig struct {
	Policy              string `mapstructure:"policy"`
	Containment         string `mapstructure:"containment"`
	TopN                int    `mapstructure:"top_n"`
	MaxTopN             int    `mapstructure:"max_top_n"`
	Stem                bool   `mapstructure:"stem"`
	CleanEncoding       bool   `mapstructure:"clean_encoding"`
	IncludeTitle        bool   `mapstructure:"include_title"`
	IncludeInstructions bool   `mapstructure:"include_instructions"`
}

// SessionConfig 對話 session 設定
type SessionConfig struct {
	Store           string        `mapstructure:"store"`
	CookieName      string        `mapstructure:"cookie_name"`
	TTL             time.Duration `mapstructure:"ttl"`
	MaxSize         int           `mapstructure:"max_size"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	Secure          bool          `mapstructure:"secure"`
}

// RedisConfig Redis 連線設定
type RedisConfig struct {
	Addr      string `mapstructure:"addr"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	KeyPrefix string `mapstructure:"key_prefix"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// .env 不存在時不視為錯誤
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	_ = v.BindEnv("server.port", "PORT", "APP_SERVER_PORT")
	_ = v.BindEnv("dataset.url", "DATASET_URL", "APP_DATASET_URL")
	_ = v.BindEnv("dataset.path", "DATASET_PATH", "APP_DATASET_PATH")
	_ = v.BindEnv("matcher.policy", "MATCH_POLICY", "APP_MATCHER_POLICY")
	_ = v.BindEnv("matcher.containment", "MATCH_CONTAINMENT", "APP_MATCHER_CONTAINMENT")
	_ = v.BindEnv("matcher.top_n", "MATCH_TOP_N", "APP_MATCHER_TOP_N")
	_ = v.BindEnv("session.store", "SESSION_STORE", "APP_SESSION_STORE")
	_ = v.BindEnv("redis.addr", "REDIS_ADDR", "APP_REDIS_ADDR")
	_ = v.BindEnv("redis.password", "REDIS_PASSWORD", "APP_REDIS_PASSWORD")
	_ = v.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED", "APP_RATE_LIMIT_ENABLED")
	_ = v.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS", "APP_RATE_LIMIT_REQUESTS")
	_ = v.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW", "APP_RATE_LIMIT_WINDOW")
	_ = v.BindEnv("dedup_window", "DEDUP_WINDOW", "APP_DEDUP_WINDOW")
	_ = v.BindEnv("log_level", "LOG_LEVEL", "APP_LOG_LEVEL")
	_ = v.BindEnv("log_dir", "LOG_DIR", "APP_LOG_DIR")

	// 解析設定
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.Matcher.Policy = strings.ToLower(strings.TrimSpace(config.Matcher.Policy))
	config.Matcher.Containment = strings.ToLower(strings.TrimSpace(config.Matcher.Containment))
	config.Session.Store = strings.ToLower(strings.TrimSpace(config.Session.Store))

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "recipe-matcher")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "10s")
	v.SetDefault("server.max_body_bytes", 1<<20) // 1MB

	// 資料集設定
	v.SetDefault("dataset.url", "https://drive.google.com/uc?export=download&id=1FGgsRPERabERU9dh10dl6GxLaYzme5me")
	v.SetDefault("dataset.path", "")
	v.SetDefault("dataset.timeout", "60s")
	v.SetDefault("dataset.retry_count", 2)

	// 比對設定
	v.SetDefault("matcher.policy", recipe.PolicyFullFirst)
	v.SetDefault("matcher.containment", recipe.ContainmentSubstring)
	v.SetDefault("matcher.top_n", 5)
	v.SetDefault("matcher.max_top_n", 50)
	v.SetDefault("matcher.stem", true)
	v.SetDefault("matcher.clean_encoding", true)
	v.SetDefault("matcher.include_title", false)
	v.SetDefault("matcher.include_instructions", false)

	// Session 設定
	v.SetDefault("session.store", SessionStoreMemory)
	v.SetDefault("session.cookie_name", "recipe_session")
	v.SetDefault("session.ttl", "30m")
	v.SetDefault("session.max_size", 10000)
	v.SetDefault("session.cleanup_interval", "5m")
	v.SetDefault("session.secure", false)

	// Redis 設定
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "chat:session:")

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", "1m")

	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_dir", "logs")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 {
		return fmt.Errorf("server port is required")
	}

	if config.Dataset.URL == "" && config.Dataset.Path == "" {
		return fmt.Errorf("dataset url or path is required")
	}

	if err := recipe.ValidatePolicy(config.Matcher.Policy); err != nil {
		return err
	}
	if err := recipe.ValidateContainment(config.Matcher.Containment); err != nil {
		return err
	}
	if config.Matcher.TopN <= 0 {
		return fmt.Errorf("invalid matcher top_n")
	}
	if config.Matcher.MaxTopN < config.Matcher.TopN {
		return fmt.Errorf("matcher max_top_n must be >= top_n")
	}

	switch config.Session.Store {
	case SessionStoreMemory:
		if config.Session.MaxSize <= 0 {
			return fmt.Errorf("invalid session max size")
		}
		if config.Session.CleanupInterval <= 0 {
			return fmt.Errorf("invalid session cleanup interval")
		}
	case SessionStoreRedis:
		if config.Redis.Addr == "" {
			return fmt.Errorf("redis addr is required for redis session store")
		}
	default:
		return fmt.Errorf("unknown session store %q", config.Session.Store)
	}
	if config.Session.TTL <= 0 {
		return fmt.Errorf("invalid session ttl")
	}

	if config.RateLimit.Enabled {
		if config.RateLimit.Requests <= 0 {
			return fmt.Errorf("invalid rate limit requests")
		}
		if config.RateLimit.Window <= 0 {
			return fmt.Errorf("invalid rate limit window")
		}
	}

	return nil
}
