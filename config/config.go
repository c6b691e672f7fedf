package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	LogMode     string
	CORSOrigins []string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	DBTimeZone string
	DBLogLevel string

	DBMaxIdleConns    int
	DBMaxOpenConns    int
	DBConnMaxLifetime time.Duration
	DBConnMaxIdleTime time.Duration

	JWTSecret string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	ReindexKey    string
	ReindexEvery  time.Duration

	ElasticAddresses []string
	ElasticUsername  string
	ElasticPassword  string
	ElasticIndex     string

	RequestTimeout time.Duration
	SearchTimeout  time.Duration
}

// Load reads the process environment. Call godotenv.Load first to pick up a .env file.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        str("PORT", "8080"),
		LogMode:     str("LOG_MODE", "dev"),
		CORSOrigins: list("CORS_ORIGINS", "http://localhost:5173"),

		DBHost:     str("DB_HOST", "localhost"),
		DBPort:     str("DB_PORT", "5432"),
		DBUser:     str("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     str("DB_NAME", "ecourse"),
		DBSSLMode:  str("DB_SSLMODE", "disable"),
		DBTimeZone: str("DB_TIMEZONE", "UTC"),
		DBLogLevel: str("DB_LOG_LEVEL", "warn"),

		DBMaxIdleConns:    integer("DB_MAX_IDLE_CONNS", 10),
		DBMaxOpenConns:    integer("DB_MAX_OPEN_CONNS", 100),
		DBConnMaxLifetime: duration("DB_CONN_MAX_LIFETIME", time.Hour),
		DBConnMaxIdleTime: duration("DB_CONN_MAX_IDLE_TIME", 10*time.Minute),

		JWTSecret: os.Getenv("JWT_SECRET"),

		RedisAddr:     strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       integer("REDIS_DB", 0),
		ReindexKey:    str("REINDEX_QUEUE_KEY", "search:reindex"),
		ReindexEvery:  duration("REINDEX_EVERY", time.Minute),

		ElasticAddresses: list("ELASTICSEARCH_URLS", ""),
		ElasticUsername:  os.Getenv("ELASTICSEARCH_USERNAME"),
		ElasticPassword:  os.Getenv("ELASTICSEARCH_PASSWORD"),
		ElasticIndex:     str("ELASTICSEARCH_INDEX", "courses"),

		RequestTimeout: duration("REQUEST_TIMEOUT", 10*time.Second),
		SearchTimeout:  duration("SEARCH_TIMEOUT", 5*time.Second),
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing JWT_SECRET")
	}
	return cfg, nil
}

func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode, c.DBTimeZone,
	)
}

func str(name, def string) string {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		return v
	}
	return def
}

func integer(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// duration accepts Go duration strings ("750ms", "2m") or a bare number of seconds.
func duration(name string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}

func list(name, def string) []string {
	raw := str(name, def)
	out := []string{}
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
