package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the water monitoring backend
type Config struct {
	Server    ServerConfig
	MQTT      MQTTConfig
	Database  DatabaseConfig
	Simulator SimulatorConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// MQTTConfig holds MQTT broker configuration
type MQTTConfig struct {
	BrokerURL      string
	ClientID       string
	Username       string
	Password       string
	KeepAlive      time.Duration
	PingTimeout    time.Duration
	ConnectRetry   bool
	TopicTelemetry string
	TopicProcessed string
}

// DatabaseConfig holds PostgreSQL database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// SimulatorConfig holds synthetic station simulator configuration
type SimulatorConfig struct {
	Enabled      bool
	Interval     time.Duration
	StationCount int
	NoiseFactor  float64
	Seed         int64
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
		},
		MQTT: MQTTConfig{
			BrokerURL:      getMQTTBrokerURL(),
			ClientID:       getEnv("MQTT_CLIENT_ID", "hydrotrack_backend"),
			Username:       getEnv("MQTT_USERNAME", ""),
			Password:       getEnv("MQTT_PASSWORD", ""),
			KeepAlive:      getDurationEnv("MQTT_KEEP_ALIVE", 30*time.Second),
			PingTimeout:    getDurationEnv("MQTT_PING_TIMEOUT", 10*time.Second),
			ConnectRetry:   getBoolEnv("MQTT_CONNECT_RETRY", true),
			TopicTelemetry: getEnv("MQTT_TOPIC_TELEMETRY", "hydrotrack/stations/+/raw"),
			TopicProcessed: getEnv("MQTT_TOPIC_PROCESSED", "hydrotrack/stations/%d/processed"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "hydrotrack"),
			SSLMode:  getEnv("DB_SSLMODE", "require"),
		},
		Simulator: SimulatorConfig{
			Enabled:      getBoolEnv("SIMULATOR_ENABLED", false),
			Interval:     getDurationEnv("SIMULATOR_INTERVAL", 10*time.Second),
			StationCount: getIntEnv("SIMULATOR_STATIONS", 3),
			NoiseFactor:  getFloatEnv("SIMULATOR_NOISE_FACTOR", 0.02),
			Seed:         int64(getIntEnv("SIMULATOR_SEED", 0)),
		},
	}
}

// getEnv returns environment variable value or default if not set
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDurationEnv returns duration environment variable value or default if not set
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getBoolEnv returns boolean environment variable value or default if not set
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

// getIntEnv returns integer environment variable value or default if not set
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getFloatEnv returns float environment variable value or default if not set
func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getMQTTBrokerURL returns MQTT broker URL with tcp:// prefix if not present
// Supports both "localhost:1883" and "tcp://localhost:1883" formats
func getMQTTBrokerURL() string {
	broker := getEnv("MQTT_BROKER", getEnv("MQTT_BROKER_URL", "tcp://localhost:1883"))

	if broker != "" && broker[:4] != "tcp:" && broker[:3] != "ssl" {
		return "tcp://" + broker
	}
	return broker
}
