package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	Env      string
	LogLevel string

	// Remote visit-records API
	VisitAPIBaseURL string
	VisitAPIKey     string

	// Resilient request client
	RequestTimeout     time.Duration
	RequestMaxAttempts int
	RequestBackoff     time.Duration

	// Loading indicator debounce (telemetry listener)
	LoadingShowDelay time.Duration

	// Scheduling rules
	SlotGranularity time.Duration
	SlotCapacity    int
	HorizonDays     int

	// Session cache
	SessionTTL time.Duration

	// Clinic info cache
	ClinicCacheTTL time.Duration

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	CORSAllowedOrigins []string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		VisitAPIBaseURL: getEnv("VISIT_API_BASE_URL", ""),
		VisitAPIKey:     getEnv("VISIT_API_KEY", ""),

		RequestTimeout:     getEnvAsDuration("REQUEST_TIMEOUT", 10*time.Second),
		RequestMaxAttempts: getEnvAsInt("REQUEST_MAX_ATTEMPTS", 3),
		RequestBackoff:     getEnvAsDuration("REQUEST_RETRY_BACKOFF", 250*time.Millisecond),

		LoadingShowDelay: getEnvAsDuration("LOADING_SHOW_DELAY", 300*time.Millisecond),

		SlotGranularity: getEnvAsDuration("SLOT_GRANULARITY", 30*time.Minute),
		SlotCapacity:    getEnvAsInt("SLOT_CAPACITY", 2),
		HorizonDays:     getEnvAsInt("BOOKING_HORIZON_DAYS", 14),

		SessionTTL: getEnvAsDuration("SESSION_TTL", 30*24*time.Hour),

		ClinicCacheTTL: getEnvAsDuration("CLINIC_CACHE_TTL", 10*time.Minute),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		CORSAllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", nil),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
