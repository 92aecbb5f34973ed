package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server  ServerConfig
	IMGW    IMGWConfig
	Sync    SyncConfig
	Worker  WorkerConfig
	DB      DatabaseConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Host string
	Port int
	// RateLimitRPS caps sustained requests per second across all clients;
	// RateLimitBurst is the short-term allowance above it.
	RateLimitRPS   int
	RateLimitBurst int
}

type IMGWConfig struct {
	BaseURL     string
	WarningsURL string
	Timeout     time.Duration
}

type SyncConfig struct {
	// Days is the default measurement query window.
	Days int
	// Schedule is a cron expression for the flood-sync binary. Empty
	// disables scheduling.
	Schedule string
}

type WorkerConfig struct {
	Count      int
	BufferSize int
}

type DatabaseConfig struct {
	Path string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:           getEnv("SERVER_HOST", "localhost"),
			Port:           getEnvInt("SERVER_PORT", 8080),
			RateLimitRPS:   getEnvInt("SERVER_RATE_LIMIT_RPS", 5),
			RateLimitBurst: getEnvInt("SERVER_RATE_LIMIT_BURST", 10),
		},
		IMGW: IMGWConfig{
			BaseURL:     getEnv("IMGW_API_URL", "https://danepubliczne.imgw.pl/api/data/hydro2"),
			WarningsURL: getEnv("IMGW_WARNINGS_URL", "https://danepubliczne.imgw.pl/api/data/warningshydro"),
			Timeout:     getEnvDuration("IMGW_TIMEOUT", 15*time.Second),
		},
		Sync: SyncConfig{
			Days:     getEnvInt("SYNC_DAYS", 7),
			Schedule: getEnv("SYNC_SCHEDULE", "0 * * * *"),
		},
		Worker: WorkerConfig{
			Count:      getEnvInt("WORKER_COUNT", 1),
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 4),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/flood-monitoring.db"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.RateLimitRPS < 1 || c.Server.RateLimitBurst < c.Server.RateLimitRPS {
		return fmt.Errorf("invalid rate limit: %d rps, burst %d", c.Server.RateLimitRPS, c.Server.RateLimitBurst)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.IMGW.BaseURL == "" {
		return fmt.Errorf("IMGW API URL must not be empty")
	}
	if c.IMGW.Timeout < time.Second {
		return fmt.Errorf("IMGW timeout must be at least 1 second")
	}

	if c.Sync.Days < 1 {
		return fmt.Errorf("sync window must be at least 1 day")
	}
	if c.Worker.Count < 1 {
		return fmt.Errorf("worker count must be at least 1")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
