package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Log      LogConfig
	Worker   WorkerConfig
	Route    RouteConfig
}

type ServerConfig struct {
	Host string
	Port int
	Env  string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CacheConfig struct {
	RouteCacheTTL time.Duration
	StatsCacheTTL time.Duration
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	Enabled       bool
	ConsumerGroup string
}

// RouteConfig - guardrails нормализатора маршрутов
type RouteConfig struct {
	DefaultSpacingM float64
	MaxPoints       int
	MinRouteM       float64
	MaxRouteM       float64
	MaxSegmentM     float64
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: viper.GetString("API_HOST"),
			Port: viper.GetInt("API_PORT"),
			Env:  viper.GetString("API_ENV"),
		},
		Database: DatabaseConfig{
			Host:            viper.GetString("DB_HOST"),
			Port:            viper.GetInt("DB_PORT"),
			User:            viper.GetString("DB_USER"),
			Password:        viper.GetString("DB_PASSWORD"),
			DBName:          viper.GetString("DB_NAME"),
			SSLMode:         viper.GetString("DB_SSLMODE"),
			MaxConns:        viper.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    viper.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(viper.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(viper.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetInt("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			RouteCacheTTL: time.Duration(viper.GetInt("ROUTE_CACHE_TTL")) * time.Second,
			StatsCacheTTL: time.Duration(viper.GetInt("STATS_CACHE_TTL")) * time.Second,
		},
		Log: LogConfig{
			Level: viper.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			Enabled:       viper.GetBool("WORKER_ENABLED"),
			ConsumerGroup: viper.GetString("WORKER_CONSUMER_GROUP"),
		},
		Route: RouteConfig{
			DefaultSpacingM: viper.GetFloat64("ROUTE_DEFAULT_SPACING_M"),
			MaxPoints:       viper.GetInt("ROUTE_MAX_POINTS"),
			MinRouteM:       viper.GetFloat64("ROUTE_MIN_LENGTH_M"),
			MaxRouteM:       viper.GetFloat64("ROUTE_MAX_LENGTH_M"),
			MaxSegmentM:     viper.GetFloat64("ROUTE_MAX_SEGMENT_M"),
		},
	}

	// Set default values if not provided
	if cfg.Cache.RouteCacheTTL == 0 {
		cfg.Cache.RouteCacheTTL = 10 * time.Minute
	}
	if cfg.Cache.StatsCacheTTL == 0 {
		cfg.Cache.StatsCacheTTL = time.Minute
	}
	if cfg.Worker.ConsumerGroup == "" {
		cfg.Worker.ConsumerGroup = "route-normalize-workers"
	}
	if cfg.Route.DefaultSpacingM == 0 {
		cfg.Route.DefaultSpacingM = 250.0
	}
	if cfg.Route.MaxPoints == 0 {
		cfg.Route.MaxPoints = 2500
	}
	if cfg.Route.MinRouteM == 0 {
		cfg.Route.MinRouteM = 25.0
	}
	if cfg.Route.MaxRouteM == 0 {
		cfg.Route.MaxRouteM = 500_000.0
	}
	if cfg.Route.MaxSegmentM == 0 {
		cfg.Route.MaxSegmentM = 50_000.0
	}

	return cfg, nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
