package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Kafka     KafkaConfig
	Reminder  ReminderConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host          string
	Port          string
	User          string
	Password      string
	Database      string
	Schema        string
	MigrationsDir string
	MaxOpenConns  int
	MaxIdleConns  int
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port for the redis client
func (c RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// RateLimitConfig controls the /graphql limiter. Requests == 0 disables it.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// KafkaConfig lists brokers and topics for domain events.
// Without brokers events are dropped.
type KafkaConfig struct {
	Brokers        []string
	OrdersTopic    string
	CustomersTopic string
}

type ReminderConfig struct {
	GraphQLURL   string
	LogPath      string
	LookbackDays int
	HTTPTimeout  time.Duration
	Schedule     string
}

func Load() *Config {
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("SERVER_PORT", "8000")
	viper.SetDefault("SERVER_ENV", "development")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_SCHEMA", "public")
	viper.SetDefault("DB_MIGRATIONS_DIR", "migrations")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_WINDOW_SECONDS", 60)
	viper.SetDefault("KAFKA_BROKERS", "")
	viper.SetDefault("KAFKA_TOPIC_ORDERS", "crm.orders")
	viper.SetDefault("KAFKA_TOPIC_CUSTOMERS", "crm.customers")
	viper.SetDefault("REMINDER_GRAPHQL_URL", "http://localhost:8000/graphql")
	viper.SetDefault("REMINDER_LOG_PATH", "/tmp/order_reminders_log.txt")
	viper.SetDefault("REMINDER_LOOKBACK_DAYS", 7)
	viper.SetDefault("REMINDER_HTTP_TIMEOUT_SECONDS", 30)
	viper.SetDefault("REMINDER_CRON", "")

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:           viper.GetString("SERVER_PORT"),
			Env:            viper.GetString("SERVER_ENV"),
			AllowedOrigins: splitList(viper.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:          viper.GetString("DB_HOST"),
			Port:          viper.GetString("DB_PORT"),
			User:          viper.GetString("DB_USER"),
			Password:      viper.GetString("DB_PASSWORD"),
			Database:      viper.GetString("DB_DATABASE"),
			Schema:        viper.GetString("DB_SCHEMA"),
			MigrationsDir: viper.GetString("DB_MIGRATIONS_DIR"),
			MaxOpenConns:  viper.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:  viper.GetInt("DB_MAX_IDLE_CONNS"),
		},
		Redis: RedisConfig{
			Host:     viper.GetString("REDIS_HOST"),
			Port:     viper.GetString("REDIS_PORT"),
			Password: viper.GetString("REDIS_PASSWORD"),
			DB:       viper.GetInt("REDIS_DB"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Window:   time.Duration(viper.GetInt("RATE_LIMIT_WINDOW_SECONDS")) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers:        splitList(viper.GetString("KAFKA_BROKERS")),
			OrdersTopic:    viper.GetString("KAFKA_TOPIC_ORDERS"),
			CustomersTopic: viper.GetString("KAFKA_TOPIC_CUSTOMERS"),
		},
		Reminder: ReminderConfig{
			GraphQLURL:   viper.GetString("REMINDER_GRAPHQL_URL"),
			LogPath:      viper.GetString("REMINDER_LOG_PATH"),
			LookbackDays: viper.GetInt("REMINDER_LOOKBACK_DAYS"),
			HTTPTimeout:  time.Duration(viper.GetInt("REMINDER_HTTP_TIMEOUT_SECONDS")) * time.Second,
			Schedule:     viper.GetString("REMINDER_CRON"),
		},
	}
}

// splitList parses a comma separated env value, dropping blanks
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
