package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv       string
	LogLevel     string
	HTTPAddr     string
	MetricsAddr  string
	DBDriver     string
	MySQLDSN     string
	SQLitePath   string
	RedisAddr    string
	RedisDB      int
	RedisPass    string
	RowCacheTTL  time.Duration
	RateLimitRPS int
}

// DSN returns the connection string for the configured driver.
func (c Config) DSN() string {
	if c.DBDriver == "mysql" {
		return c.MySQLDSN
	}
	return c.SQLitePath
}

// Load reads the environment, after applying an optional .env file from the
// working directory. Variables already set win over the file.
func Load() Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg(".env could not be read")
	}
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}
	c := Config{
		AppEnv:       env("APP_ENV", "prod"),
		LogLevel:     env("LOG_LEVEL", "info"),
		HTTPAddr:     env("HTTP_ADDR", ":8080"),
		MetricsAddr:  env("METRICS_ADDR", ""),
		DBDriver:     env("DB_DRIVER", "sqlite"),
		MySQLDSN:     env("MYSQL_DSN", "root:root@tcp(localhost:3306)/company?parseTime=true&charset=utf8mb4&loc=UTC"),
		SQLitePath:   env("SQLITE_PATH", "company.db"),
		RedisAddr:    env("REDIS_ADDR", ""),
		RedisPass:    env("REDIS_PASSWORD", ""),
		RedisDB:      atoi("REDIS_DB", 0),
		RowCacheTTL:  time.Duration(atoi("ROW_CACHE_TTL_SECONDS", 300)) * time.Second,
		RateLimitRPS: atoi("RATE_LIMIT_RPS", 50),
	}
	if c.DBDriver != "mysql" && c.DBDriver != "sqlite" {
		log.Warn().Str("driver", c.DBDriver).Msg("unknown DB_DRIVER")
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
