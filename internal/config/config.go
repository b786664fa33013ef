package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Cookies    CookieConfig     `mapstructure:"cookies"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Cache      CacheConfig      `mapstructure:"cache"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Reconciler ReconcilerConfig `mapstructure:"reconciler"`
	SMTP       SMTPConfig       `mapstructure:"smtp"`
	Platform   PlatformConfig   `mapstructure:"-"`
}

type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Issuer     string        `mapstructure:"issuer"`
	AccessTTL  time.Duration `mapstructure:"access_ttl"`
	RefreshTTL time.Duration `mapstructure:"refresh_ttl"`

	// RefreshReuseWindow is how long a spent refresh token still resolves to
	// the session that replaced it.
	RefreshReuseWindow time.Duration `mapstructure:"refresh_reuse_window"`
}

type CookieConfig struct {
	AccessName  string `mapstructure:"access_name"`
	RefreshName string `mapstructure:"refresh_name"`
	Domain      string `mapstructure:"domain"`
	Secure      bool   `mapstructure:"secure"`
}

// RedisConfig selects the realtime broker. An empty URL keeps delivery in
// process, which only works with a single API node.
type RedisConfig struct {
	URL          string        `mapstructure:"url"`
	MaxRetries   int           `mapstructure:"max_retries"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
}

type CacheConfig struct {
	PageTTL         time.Duration `mapstructure:"page_ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

type ReconcilerConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	BatchSize     int           `mapstructure:"batch_size"`
	PollInterval  time.Duration `mapstructure:"poll_interval"`
	GracePeriod   time.Duration `mapstructure:"grace_period"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryDelay    time.Duration `mapstructure:"retry_delay"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

// PlatformConfig holds the two variables every process needs to reach the
// data store and to gate realtime clients.
type PlatformConfig struct {
	DataStoreURL string `envconfig:"DATA_STORE_URL" required:"true"`
	APIKey       string `envconfig:"API_KEY" required:"true"`
}

// EnvPrefix namespaces every environment override.
const EnvPrefix = "PHARMACY"

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "pharmacy-portal")
	v.SetDefault("jwt.access_ttl", time.Hour)
	v.SetDefault("jwt.refresh_ttl", 7*24*time.Hour)
	v.SetDefault("jwt.refresh_reuse_window", 10*time.Second)
	v.SetDefault("cookies.access_name", "sb-access-token")
	v.SetDefault("cookies.refresh_name", "sb-refresh-token")
	v.SetDefault("cookies.domain", "")
	v.SetDefault("cookies.secure", false)
	v.SetDefault("redis.url", "")
	v.SetDefault("cache.page_ttl", 5*time.Minute)
	v.SetDefault("cache.cleanup_interval", 10*time.Minute)
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 20.0)
	v.SetDefault("rate_limit.burst", 40)
	v.SetDefault("reconciler.enabled", false)
	v.SetDefault("reconciler.batch_size", 50)
	v.SetDefault("reconciler.poll_interval", time.Minute)
	v.SetDefault("reconciler.grace_period", 2*time.Minute)
	v.SetDefault("reconciler.retry_attempts", 3)
	v.SetDefault("reconciler.retry_delay", time.Second)
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "")
}

// LoadConfig reads config.yaml from the working directory or ./config when
// present, applies PHARMACY_* overrides, then loads the required platform
// variables.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	platform, err := LoadPlatform()
	if err != nil {
		return nil, err
	}
	config.Platform = *platform

	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// LoadPlatform reads PHARMACY_DATA_STORE_URL and PHARMACY_API_KEY.
func LoadPlatform() (*PlatformConfig, error) {
	var p PlatformConfig
	if err := envconfig.Process(EnvPrefix, &p); err != nil {
		return nil, fmt.Errorf("missing platform configuration: %w", err)
	}
	// envconfig accepts a variable that is set but empty
	if p.DataStoreURL == "" {
		return nil, fmt.Errorf("missing platform configuration: %s_DATA_STORE_URL is empty", EnvPrefix)
	}
	if p.APIKey == "" {
		return nil, fmt.Errorf("missing platform configuration: %s_API_KEY is empty", EnvPrefix)
	}
	return &p, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("jwt.secret is required (set %s_JWT_SECRET)", EnvPrefix)
	}
	if c.JWT.AccessTTL <= 0 || c.JWT.RefreshTTL <= 0 {
		return fmt.Errorf("jwt token lifetimes must be positive")
	}
	if c.JWT.RefreshReuseWindow < 0 {
		return fmt.Errorf("jwt.refresh_reuse_window must not be negative")
	}
	// the reconciler runs in its own process; its bill messages only reach
	// open chats through a shared broker
	if c.Reconciler.Enabled && c.Redis.URL == "" {
		return fmt.Errorf("reconciler.enabled requires redis.url (set %s_REDIS_URL)", EnvPrefix)
	}
	return nil
}
