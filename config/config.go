package config

import (
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds the process-wide settings loaded by LoadConfig.
var AppConfig struct {
	// Server
	Port             string
	Mode             string // debug or release
	CORSAllowOrigins []string

	// Admin session
	SessionSecret    string
	SessionTTLHours  int
	AdminEmailDomain string
	AdminCookieName  string

	// Admin live notifications
	MaxConnections int

	// Redis: public page cache and rate limiting
	RedisAddr          string
	RedisPassword      string
	RedisDB            int
	RedisPoolSize      int
	RateLimitPerMinute int

	// Kafka: revalidation notices
	KafkaEnabled           bool
	KafkaBootstrapServers  []string
	KafkaConsumerGroup     string
	KafkaRevalidationTopic string

	// Database
	DBConnectionString string
	DBMaxIdleConns     int
	DBMaxOpenConns     int

	// Page cache TTL in seconds
	CacheExpiration int
}

// LoadConfig reads the environment (and an optional .env file) into AppConfig.
func LoadConfig() {
	// .env is optional
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using process environment")
	}

	AppConfig.Port = getEnv("PORT", "8080")
	AppConfig.Mode = getEnv("MODE", "debug")
	AppConfig.CORSAllowOrigins = splitList(getEnv("CORS_ALLOW_ORIGINS", "*"))

	AppConfig.SessionSecret = getEnv("SESSION_SECRET", "change-me")
	AppConfig.SessionTTLHours = getEnvInt("SESSION_TTL_HOURS", 24*7)
	AppConfig.AdminEmailDomain = strings.TrimPrefix(getEnv("ADMIN_EMAIL_DOMAIN", "villaregia.org"), "@")
	AppConfig.AdminCookieName = getEnv("ADMIN_COOKIE_NAME", "adminAuth")

	AppConfig.MaxConnections = getEnvInt("MAX_CONNECTIONS", 200)

	AppConfig.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	AppConfig.RedisPassword = getEnv("REDIS_PASSWORD", "")
	AppConfig.RedisDB = getEnvInt("REDIS_DB", 0)
	AppConfig.RedisPoolSize = getEnvInt("REDIS_POOL_SIZE", runtime.NumCPU()*10)
	AppConfig.RateLimitPerMinute = getEnvInt("RATE_LIMIT_PER_MINUTE", 120)

	AppConfig.KafkaEnabled = getEnv("KAFKA_ENABLED", "false") == "true"
	AppConfig.KafkaBootstrapServers = splitList(getEnv("KAFKA_BOOTSTRAP_SERVERS", "localhost:9092"))
	AppConfig.KafkaConsumerGroup = getEnv("KAFKA_CONSUMER_GROUP", "livro-admin")
	AppConfig.KafkaRevalidationTopic = getEnv("KAFKA_REVALIDATION_TOPIC", "livro-revalidacao")

	AppConfig.DBConnectionString = getEnv("DB_CONNECTION_STRING", "root:password@tcp(127.0.0.1:3306)/livro?charset=utf8mb4&parseTime=True&loc=Local")
	AppConfig.DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 10)
	AppConfig.DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 50)

	AppConfig.CacheExpiration = getEnvInt("CACHE_EXPIRATION", 3600)
}

// getEnv returns the variable or defaultValue when unset.
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
