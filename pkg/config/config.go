package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	ReconnectFixed       = "fixed"
	ReconnectExponential = "exponential"
)

type Config struct {
	ServerPort  string
	Environment string
	LogLevel    string

	APIBaseURL     string
	WSBaseURL      string
	AuthToken      string
	UserID         string
	RequestTimeout time.Duration

	ReconnectDelay    time.Duration
	ReconnectStrategy string
	ReconnectMaxDelay time.Duration

	TypingQuietInterval time.Duration
	TypingExpiry        time.Duration
	HeartbeatInterval   time.Duration
	SweepInterval       time.Duration
	HistoryLimit        int

	SendRatePerMinute   int
	TypingRatePerMinute int
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:  getEnv("SERVER_PORT", "8090"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		APIBaseURL:     strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:8080"), "/"),
		WSBaseURL:      strings.TrimRight(getEnv("WS_BASE_URL", "ws://localhost:8080/ws"), "/"),
		AuthToken:      getEnv("AUTH_TOKEN", ""),
		UserID:         getEnv("USER_ID", ""),
		RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 10*time.Second),

		ReconnectDelay:    getEnvAsDuration("RECONNECT_DELAY", 3*time.Second),
		ReconnectStrategy: strings.ToLower(getEnv("RECONNECT_STRATEGY", ReconnectFixed)),
		ReconnectMaxDelay: getEnvAsDuration("RECONNECT_MAX_DELAY", time.Minute),

		TypingQuietInterval: getEnvAsDuration("TYPING_QUIET_INTERVAL", time.Second),
		TypingExpiry:        getEnvAsDuration("TYPING_EXPIRY", 0),
		HeartbeatInterval:   getEnvAsDuration("HEARTBEAT_INTERVAL", 2*time.Minute),
		SweepInterval:       getEnvAsDuration("SWEEP_INTERVAL", 30*time.Second),
		HistoryLimit:        getEnvAsInt("HISTORY_LIMIT", 50),

		SendRatePerMinute:   getEnvAsInt("SEND_RATE_PER_MINUTE", 10),
		TypingRatePerMinute: getEnvAsInt("TYPING_RATE_PER_MINUTE", 30),
	}

	if config.ReconnectStrategy != ReconnectFixed && config.ReconnectStrategy != ReconnectExponential {
		config.ReconnectStrategy = ReconnectFixed
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
