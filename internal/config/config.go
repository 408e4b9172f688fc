package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Config struct {
	HTTPAddr      string
	MySQLDSN      string
	RedisAddr     string
	RedisPoolSize int
	CacheTTL      time.Duration
	BatchSize     int
	RetryAttempts int
	RetryDelay    time.Duration
	LogLevel      string
}

// Load reads the configuration from the environment, picking up a .env file
// when present. Every value has a default suitable for local development.
func Load() Config {
	godotenv.Load()

	return Config{
		HTTPAddr:      stringFromEnv("HTTP_ADDR", ":8080"),
		MySQLDSN:      stringFromEnv("MYSQL_DSN", "root:root@tcp(localhost:3306)/artikelstamm?parseTime=true"),
		RedisAddr:     stringFromEnv("REDIS_ADDR", "localhost:6379"),
		RedisPoolSize: intFromEnv("REDIS_POOL_SIZE", 100),
		CacheTTL:      time.Duration(intFromEnv("CACHE_TTL_SECONDS", 3600)) * time.Second,
		BatchSize:     intFromEnv("BATCH_SIZE", 1000),
		RetryAttempts: intFromEnv("RETRY_ATTEMPTS", 3),
		RetryDelay:    time.Duration(intFromEnv("RETRY_DELAY_MS", 1000)) * time.Millisecond,
		LogLevel:      stringFromEnv("LOG_LEVEL", "info"),
	}
}

func NewLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	return log
}

func stringFromEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intFromEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
