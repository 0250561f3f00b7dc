package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Database DatabaseConfig `mapstructure:"db"`
	Redis    RedisConfig    `mapstructure:"redis"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Log      LogConfig      `mapstructure:"log"`
	Feed     FeedConfig     `mapstructure:"feed"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"env"`
	HTTPPort    string `mapstructure:"http_port"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`

	ConnectTimeout        time.Duration `mapstructure:"connect_timeout"`
	PoolMaxConns          int32         `mapstructure:"pool_max_conns"`
	PoolMinConns          int32         `mapstructure:"pool_min_conns"`
	PoolMaxConnLifetime   time.Duration `mapstructure:"pool_max_conn_lifetime"`
	PoolMaxConnIdleTime   time.Duration `mapstructure:"pool_max_conn_idle_time"`
	PoolHealthCheckPeriod time.Duration `mapstructure:"pool_health_check_period"`
}

type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type JWTConfig struct {
	AccessSecret     string        `mapstructure:"access_secret"`
	RefreshSecret    string        `mapstructure:"refresh_secret"`
	AccessExpiresIn  time.Duration `mapstructure:"access_expires_in"`
	RefreshExpiresIn time.Duration `mapstructure:"refresh_expires_in"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type FeedConfig struct {
	RecentNotifications int `mapstructure:"recent_notifications"`
	PageSize            int `mapstructure:"page_size"`
}

// Load reads config.yaml (if present) and TUTORHUB_-prefixed environment
// variables on top of the defaults. Env wins over file, file wins over defaults.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("app.name", "tutorhub")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.http_port", "8080")

	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.name", "tutorhub")
	v.SetDefault("db.user", "postgres")
	v.SetDefault("db.password", "")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.connect_timeout", "5s")
	v.SetDefault("db.pool_max_conns", 16)
	v.SetDefault("db.pool_min_conns", 2)
	v.SetDefault("db.pool_max_conn_lifetime", "1h")
	v.SetDefault("db.pool_max_conn_idle_time", "30m")
	v.SetDefault("db.pool_health_check_period", "1m")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.cache_ttl", "10m")

	v.SetDefault("jwt.access_expires_in", "15m")
	v.SetDefault("jwt.refresh_expires_in", "168h")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("feed.recent_notifications", 5)
	v.SetDefault("feed.page_size", 20)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("TUTORHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.App.HTTPPort) == "" {
		return fmt.Errorf("config: app.http_port must not be empty")
	}
	if strings.TrimSpace(c.JWT.AccessSecret) == "" {
		return fmt.Errorf("config: jwt.access_secret must not be empty")
	}
	if strings.TrimSpace(c.JWT.RefreshSecret) == "" {
		return fmt.Errorf("config: jwt.refresh_secret must not be empty")
	}
	if c.Feed.RecentNotifications <= 0 {
		return fmt.Errorf("config: feed.recent_notifications must be positive")
	}
	return nil
}
