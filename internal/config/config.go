package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cypherlabdev/parlay-calculator-service/internal/models"
)

// Config holds all configuration for parlay-calculator-service
type Config struct {
	Server     ServerConfig
	Kafka      KafkaConfig
	Redis      RedisConfig
	Calculator CalculatorConfig
	Logging    LoggingConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Brokers []string
	Topic   string // Topic to consume from (wager_requests)
	GroupID string `mapstructure:"group_id"`
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// CalculatorConfig holds wager calculator parameters
type CalculatorConfig struct {
	DefaultOdds string `mapstructure:"default_odds"` // Odds assigned to a freshly added leg
	MaxLegs     int    `mapstructure:"max_legs"`     // Upper bound on legs per wager
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
}

// LoadConfig loads configuration from file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("server.port", 8082)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "wager_requests")
	v.SetDefault("kafka.group_id", "parlay-calculator")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)

	v.SetDefault("calculator.default_odds", "-110")
	v.SetDefault("calculator.max_legs", 20)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Read config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Override with environment variables
	v.SetEnvPrefix("PARLAY_CALC")
	v.AutomaticEnv()
	// Replace . with _ for environment variables
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Unmarshal to struct
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

// ToCalculatorParams converts config to calculator parameters
func (c *CalculatorConfig) ToCalculatorParams() models.CalculatorParams {
	return models.CalculatorParams{
		DefaultOdds: c.DefaultOdds,
		MaxLegs:     c.MaxLegs,
	}
}
