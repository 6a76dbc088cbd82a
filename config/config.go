package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// FallbackPolicy controls what the conversation engine does when a release
// link passes the URL check but the lookup service cannot resolve it.
type FallbackPolicy string

const (
	// FallbackPlaceholder stores the record with "update me" sentinels and
	// the raw user input as the URL, then continues the conversation.
	FallbackPlaceholder FallbackPolicy = "placeholder"
	// FallbackReject refuses the link and re-prompts for another one.
	FallbackReject FallbackPolicy = "reject"
)

// Config stores the application configuration.
type Config struct {
	BotToken string // required, ALBUMBOT_TOKEN

	LedgerPath string // JSON ledger file, created empty if absent

	ResolverAPIURL   string // Odesli API base URL
	ResolverCountry  string // two-letter userCountry passed to the lookup
	ResolverPlatform string // platform tag the resolver filters for
	ResolverFallback FallbackPolicy
	ResolverCacheTTL time.Duration

	// Redis is optional; the resolver cache is enabled only when RedisHost
	// is set.
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// StatusAddr is optional; empty disables the status HTTP listener.
	StatusAddr string

	LogLevel      string
	LogPath       string
	LogMaxSize    int
	LogMaxBackups int
	LogMaxAge     int
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt gets an environment variable as int or returns a default value.
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvDuration gets an environment variable as a duration or returns a
// default value.
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

// Load loads configuration from environment variables (via .env file) or
// defaults. The bot token is deliberately left without a default: an empty
// token is a fatal startup condition checked by the caller.
func Load() *Config {
	// godotenv.Load() will not override existing env vars.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on existing environment variables and defaults.")
	}

	fallback := FallbackPolicy(getEnv("RESOLVER_FALLBACK", string(FallbackPlaceholder)))
	if fallback != FallbackPlaceholder && fallback != FallbackReject {
		log.Printf("Unknown RESOLVER_FALLBACK %q, using %q.", fallback, FallbackPlaceholder)
		fallback = FallbackPlaceholder
	}

	return &Config{
		BotToken: os.Getenv("ALBUMBOT_TOKEN"),

		LedgerPath: getEnv("LEDGER_PATH", "data/ledger.json"),

		ResolverAPIURL:   getEnv("RESOLVER_API_URL", "https://api.song.link"),
		ResolverCountry:  getEnv("RESOLVER_COUNTRY", "RU"),
		ResolverPlatform: getEnv("RESOLVER_PLATFORM", "YANDEX"),
		ResolverFallback: fallback,
		ResolverCacheTTL: getEnvDuration("RESOLVER_CACHE_TTL", 24*time.Hour),

		RedisHost:     getEnv("REDIS_HOST", ""),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		StatusAddr: getEnv("STATUS_ADDR", ""),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogPath:       getEnv("LOG_PATH", ""),
		LogMaxSize:    getEnvInt("LOG_MAX_SIZE", 100),
		LogMaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
		LogMaxAge:     getEnvInt("LOG_MAX_AGE", 28),
	}
}
