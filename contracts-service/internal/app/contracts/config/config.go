package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Хранилища нарушений
const (
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

type Config struct {
	Service   ServiceConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Mongo     MongoConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Cron      CronConfig
}

type ServiceConfig struct {
	Name          string
	Version       string
	PublicURL     string // Базовый URL для ServiceInfo.healthCheck
	Documentation string // Ссылка на документацию (может быть пустой)
	LogLevel      string
	LogstashAddr  string
}

type ServerConfig struct {
	Host string // Адрес хоста (по умолчанию 0.0.0.0)
	Port string // Порт сервера (по умолчанию 8086)
}

type DatabaseConfig struct {
	Store    string // postgres или mongo
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type MongoConfig struct {
	URI      string
	Database string
}

type RedisConfig struct {
	Host       string
	Port       string
	Password   string
	DB         int
	VerdictTTL time.Duration // Время жизни закешированного вердикта
}

type KafkaConfig struct {
	Brokers []string // Список брокеров Kafka (host:port)
	Topic   string   // Топик для событий CONTRACT_VIOLATION
}

type JWTConfig struct {
	Secret string // Должен совпадать с секретом сервиса, выпускающего токены
}

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

type CronConfig struct {
	HealthSchedule string        // Расписание проверки зависимостей
	ProbeTimeout   time.Duration // Таймаут одной проверки
}

func Load() (*Config, error) {
	cfg := &Config{
		Service: ServiceConfig{
			Name:          getEnv("SERVICE_NAME", "contracts-service"),
			Version:       getEnv("SERVICE_VERSION", "1.0.0"),
			PublicURL:     getEnv("SERVICE_PUBLIC_URL", "http://localhost:8086"),
			Documentation: getEnv("SERVICE_DOCS_URL", ""),
			LogLevel:      getEnv("LOG_LEVEL", "info"),
			LogstashAddr:  getEnv("LOGSTASH_ADDR", ""),
		},
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: getEnv("SERVER_PORT", "8086"),
		},
		Database: DatabaseConfig{
			Store:    strings.ToLower(getEnv("VIOLATION_STORE", StorePostgres)),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "contracts_service"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGODB_DATABASE", "contracts_db"),
		},
		Redis: RedisConfig{
			Host:       getEnv("REDIS_HOST", "localhost"),
			Port:       getEnv("REDIS_PORT", "6379"),
			Password:   getEnv("REDIS_PASSWORD", ""),
			DB:         getEnvInt("REDIS_DB", 0),
			VerdictTTL: getEnvDuration("VERDICT_TTL", 10*time.Minute),
		},
		Kafka: KafkaConfig{
			Brokers: splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),
			Topic:   getEnv("KAFKA_TOPIC", "contract_events"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key-change-this-in-production"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: getEnvFloat("RATE_LIMIT_RPS", 50),
			Burst:             getEnvInt("RATE_LIMIT_BURST", 100),
		},
		Cron: CronConfig{
			HealthSchedule: getEnv("HEALTH_CRON_SCHEDULE", "@every 30s"),
			ProbeTimeout:   getEnvDuration("HEALTH_PROBE_TIMEOUT", 3*time.Second),
		},
	}

	if cfg.Database.Store != StorePostgres && cfg.Database.Store != StoreMongo {
		return nil, fmt.Errorf("unsupported VIOLATION_STORE %q", cfg.Database.Store)
	}
	if cfg.RateLimit.RequestsPerSecond <= 0 || cfg.RateLimit.Burst <= 0 {
		return nil, fmt.Errorf("rate limit must be positive, got %v/%d", cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	return cfg, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func (c *RedisConfig) Address() string {
	return c.Host + ":" + c.Port
}

func (c *ServerConfig) Address() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
